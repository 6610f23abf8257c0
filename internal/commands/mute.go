package commands

import (
	"errors"

	"github.com/latoulicious/Ru/internal/voice"
)

// MuteCommand mutes the bot in the guild's voice channel.
func MuteCommand(v Voice) *Command {
	return &Command{
		Name:        "mute",
		Group:       GroupMusic,
		Description: "Mute Bot in Voice channel",
		GuildOnly:   true,
		Run: func(c *Context) error {
			c.Typing()

			err := v.Mute(c.GuildID())
			switch {
			case errors.Is(err, voice.ErrNotConnected):
				return c.Reply("Not in a voice channel")
			case errors.Is(err, voice.ErrAlreadyMuted):
				return c.Reply("Already muted.")
			case err != nil:
				return err
			}
			return c.Say("Now muted.")
		},
	}
}

// UnmuteCommand unmutes the bot in the guild's voice channel.
func UnmuteCommand(v Voice) *Command {
	return &Command{
		Name:        "unmute",
		Group:       GroupMusic,
		Description: "Unmute Bot in Voice channel",
		GuildOnly:   true,
		Run: func(c *Context) error {
			c.Typing()

			err := v.Unmute(c.GuildID())
			switch {
			case errors.Is(err, voice.ErrNotConnected):
				return c.Reply("Not in a voice channel to unmute in")
			case errors.Is(err, voice.ErrNotMuted):
				return c.Reply("Not muted.")
			case err != nil:
				return err
			}
			return c.Say("Unmuted")
		},
	}
}
