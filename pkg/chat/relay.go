// Package chat relays a single message to an OpenAI-compatible chat-completion
// endpoint, prefixed by a system prompt read from disk on every call.
package chat

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// Kind classifies relay failures.
type Kind int

const (
	KindConfig Kind = iota
	KindPrompt
	KindRequest
	KindResponse
)

func (k Kind) String() string {
	switch k {
	case KindConfig:
		return "config"
	case KindPrompt:
		return "prompt"
	case KindRequest:
		return "request"
	case KindResponse:
		return "response"
	default:
		return "unknown"
	}
}

// Error is returned by Relay.Reply for every failure.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("chat %s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

var (
	ErrMissingKey   = errors.New("api key not set")
	ErrEmptyMessage = errors.New("empty message")
	ErrNoChoices    = errors.New("no response choices returned")
)

// Options configures a Relay.
type Options struct {
	APIKey           string
	BaseURL          string
	Model            string
	SystemPromptPath string
	Timeout          time.Duration
}

type Relay struct {
	client     *openai.Client
	apiKey     string
	model      string
	promptPath string
	timeout    time.Duration
	logger     *zap.Logger
}

func NewRelay(opts Options, logger *zap.Logger) *Relay {
	cfg := openai.DefaultConfig(opts.APIKey)
	if opts.BaseURL != "" {
		cfg.BaseURL = opts.BaseURL
	}

	return &Relay{
		client:     openai.NewClientWithConfig(cfg),
		apiKey:     opts.APIKey,
		model:      opts.Model,
		promptPath: opts.SystemPromptPath,
		timeout:    opts.Timeout,
		logger:     logger,
	}
}

// Messages builds the request conversation: the system prompt followed by the
// user's text. Nothing is carried over between calls.
func (r *Relay) Messages(text string) ([]openai.ChatCompletionMessage, error) {
	prompt, err := os.ReadFile(r.promptPath)
	if err != nil {
		return nil, &Error{Kind: KindPrompt, Err: err}
	}

	return []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: string(prompt)},
		{Role: openai.ChatMessageRoleUser, Content: text},
	}, nil
}

// Reply sends text to the chat-completion endpoint and returns the first choice.
func (r *Relay) Reply(ctx context.Context, text string) (string, error) {
	if r.apiKey == "" {
		return "", &Error{Kind: KindConfig, Err: ErrMissingKey}
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", &Error{Kind: KindRequest, Err: ErrEmptyMessage}
	}

	messages, err := r.Messages(text)
	if err != nil {
		return "", err
	}

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := r.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    r.model,
		Messages: messages,
	})
	if err != nil {
		return "", &Error{Kind: KindRequest, Err: err}
	}

	if len(resp.Choices) == 0 {
		return "", &Error{Kind: KindResponse, Err: ErrNoChoices}
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", &Error{Kind: KindResponse, Err: errors.New("empty message content")}
	}

	r.logger.Debug("chat completion received",
		zap.String("model", r.model),
		zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		zap.Int("total_tokens", resp.Usage.TotalTokens))

	return content, nil
}
