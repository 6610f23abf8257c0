package meme

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Meme is a single post returned by the meme API.
type Meme struct {
	PostLink  string   `json:"postLink"`
	Subreddit string   `json:"subreddit"`
	Title     string   `json:"title"`
	URL       string   `json:"url"`
	NSFW      bool     `json:"nsfw"`
	Spoiler   bool     `json:"spoiler"`
	Author    string   `json:"author"`
	Ups       int      `json:"ups"`
	Preview   []string `json:"preview"`
}

// PreviewURL returns the fourth preview image, falling back to the largest
// preview available and finally to the post URL.
func (m *Meme) PreviewURL() string {
	if len(m.Preview) > 3 {
		return m.Preview[3]
	}
	if len(m.Preview) > 0 {
		return m.Preview[len(m.Preview)-1]
	}
	return m.URL
}

// FetchError describes a failed call to the meme API.
type FetchError struct {
	Op     string
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("meme %s: status %d: %v", e.Op, e.Status, e.Err)
	}
	return fmt.Sprintf("meme %s: %v", e.Op, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Client fetches random memes.
type Client struct {
	url        string
	httpClient *http.Client
}

// NewClient creates a meme client for the given endpoint.
func NewClient(url string, timeout time.Duration) *Client {
	return &Client{
		url: url,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Random fetches one random meme.
func (c *Client) Random(ctx context.Context) (*Meme, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, &FetchError{Op: "request", Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &FetchError{Op: "get", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &FetchError{Op: "get", Status: resp.StatusCode, Err: fmt.Errorf("unexpected status %s", resp.Status)}
	}

	var m Meme
	if err := json.NewDecoder(resp.Body).Decode(&m); err != nil {
		return nil, &FetchError{Op: "decode", Err: err}
	}

	if m.URL == "" {
		return nil, &FetchError{Op: "decode", Err: fmt.Errorf("response has no url")}
	}

	return &m, nil
}
