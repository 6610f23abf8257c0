package commands

import (
	"errors"

	"github.com/latoulicious/Ru/internal/voice"
)

// LeaveCommand disconnects from the guild's voice channel.
func LeaveCommand(v Voice) *Command {
	return &Command{
		Name:        "leave",
		Group:       GroupMusic,
		Description: "Leave Voice Channel",
		GuildOnly:   true,
		Run: func(c *Context) error {
			err := v.Leave(c.GuildID())
			if errors.Is(err, voice.ErrNotConnected) {
				return c.Reply("Not in a Voice Channel.")
			}
			if err != nil {
				return err
			}
			return c.Say("Left Voice Channel.")
		},
	}
}
