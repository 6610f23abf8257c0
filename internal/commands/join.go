package commands

import (
	"context"
	"errors"

	"github.com/latoulicious/Ru/pkg/common"
)

// Voice is the per-guild voice session table.
type Voice interface {
	Join(ctx context.Context, guildID, channelID string) error
	Leave(guildID string) error
	Play(ctx context.Context, guildID, query string) (*common.Source, error)
	Mute(guildID string) error
	Unmute(guildID string) error
}

// JoinCommand joins the invoking user's voice channel.
func JoinCommand(v Voice) *Command {
	return &Command{
		Name:        "join",
		Group:       GroupMusic,
		Description: "Join Voice Channel",
		GuildOnly:   true,
		Run: func(c *Context) error {
			channelID, err := common.FindUserVoiceChannel(c.State, c.GuildID(), c.AuthorID())
			if errors.Is(err, common.ErrUserNotInVoice) {
				return c.Reply("Not in a Voice Channel.")
			}
			if err != nil {
				return err
			}

			if err := v.Join(c.Ctx, c.GuildID(), channelID); err != nil {
				return err
			}
			return c.Reply("Joined Voice Channel.")
		},
	}
}
