package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/latoulicious/Ru/internal/voice"
	"github.com/latoulicious/Ru/pkg/chat"
	"github.com/latoulicious/Ru/pkg/meme"
)

// UserMessage converts an error from a command or relay into the text shown
// in the channel. Raw errors are never sent as-is, except voice backend
// failures which are reported as "Failed: <cause>".
func UserMessage(err error) string {
	var (
		chatErr    *chat.Error
		fetchErr   *meme.FetchError
		backendErr *voice.BackendError
	)

	switch {
	case errors.As(err, &backendErr):
		if backendErr.Op == "resolve" {
			return "Error Sourcing FFMPEG"
		}
		return fmt.Sprintf("Failed: %v", backendErr.Err)
	case errors.As(err, &chatErr):
		switch chatErr.Kind {
		case chat.KindConfig, chat.KindPrompt:
			return "I'm not set up to chat right now."
		default:
			return "Sorry, I couldn't come up with a reply right now. Try again later."
		}
	case errors.As(err, &fetchErr):
		return "Couldn't fetch a meme right now, try again later."
	case errors.Is(err, context.DeadlineExceeded):
		return "That took too long, try again later."
	default:
		return "Something went wrong while running that command."
	}
}
