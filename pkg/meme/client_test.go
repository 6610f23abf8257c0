package meme

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRandom(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"postLink":"https://redd.it/x","subreddit":"memes","title":"T","url":"U","nsfw":false,"spoiler":false,"author":"a","ups":12,"preview":["p0","p1","p2","p3"]}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second)
	m, err := client.Random(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "T", m.Title)
	assert.Equal(t, "U", m.URL)
	assert.Equal(t, "p3", m.PreviewURL())
	assert.Equal(t, 12, m.Ups)
}

func TestPreviewURL(t *testing.T) {
	tests := []struct {
		name     string
		meme     Meme
		expected string
	}{
		{name: "fourth preview", meme: Meme{URL: "u", Preview: []string{"a", "b", "c", "d", "e"}}, expected: "d"},
		{name: "short preview list", meme: Meme{URL: "u", Preview: []string{"a", "b"}}, expected: "b"},
		{name: "no previews", meme: Meme{URL: "u"}, expected: "u"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.meme.PreviewURL())
		})
	}
}

func TestRandomErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		op     string
	}{
		{name: "server error", status: http.StatusInternalServerError, body: `{}`, op: "get"},
		{name: "malformed json", status: http.StatusOK, body: `{"title":`, op: "decode"},
		{name: "missing url", status: http.StatusOK, body: `{"title":"T"}`, op: "decode"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := NewClient(server.URL, 5*time.Second).Random(context.Background())
			require.Error(t, err)

			var fetchErr *FetchError
			require.True(t, errors.As(err, &fetchErr))
			assert.Equal(t, tt.op, fetchErr.Op)
		})
	}
}
