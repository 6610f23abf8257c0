package commands

import (
	"context"

	"github.com/bwmarrin/discordgo"
	"github.com/latoulicious/Ru/pkg/meme"
)

const gifColor = 0x607D8B

// MemeSource fetches random memes.
type MemeSource interface {
	Random(ctx context.Context) (*meme.Meme, error)
}

// MemeCommand replies with a random meme image.
func MemeCommand(memes MemeSource) *Command {
	return &Command{
		Name:        "meme",
		Group:       GroupGeneral,
		Description: "Reply With random meme image",
		Run: func(c *Context) error {
			c.Typing()

			m, err := memes.Random(c.Ctx)
			if err != nil {
				return err
			}
			return c.Reply(m.PreviewURL())
		},
	}
}

// GifCommand posts a random meme as an embed.
func GifCommand(memes MemeSource) *Command {
	return &Command{
		Name:        "gif",
		Group:       GroupGeneral,
		Description: "Reply with random meme gif",
		Run: func(c *Context) error {
			c.Typing()

			m, err := memes.Random(c.Ctx)
			if err != nil {
				return err
			}
			return c.SendEmbed(GifEmbed(m))
		},
	}
}

func GifEmbed(m *meme.Meme) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title: m.Title,
		Image: &discordgo.MessageEmbedImage{URL: m.URL},
		Color: gifColor,
	}
}
