package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/latoulicious/Ru/internal/voice"
)

// PlayCommand resolves a URL or search keywords and plays it, replacing the
// current source.
func PlayCommand(v Voice) *Command {
	return &Command{
		Name:        "play",
		Group:       GroupMusic,
		Description: "Play a audio using video or audio url",
		Usage:       "play <url-or-keyword>",
		GuildOnly:   true,
		Run: func(c *Context) error {
			if len(c.Args) == 0 {
				return c.Say("Must provide a Keyword OR URL to a video or audio.")
			}
			c.Typing()

			query := strings.Join(c.Args, " ")
			src, err := v.Play(c.Ctx, c.GuildID(), query)
			if errors.Is(err, voice.ErrNotConnected) {
				return c.Say("Not in a Voice channel to play in")
			}
			if err != nil {
				return err
			}

			title := src.Title
			if title == "" {
				title = "Unknown"
			}
			return c.Say(fmt.Sprintf("Playing %s", title))
		},
	}
}
