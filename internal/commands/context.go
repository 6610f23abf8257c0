package commands

import (
	"context"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

// Session is the subset of *discordgo.Session used by commands and handlers.
// *discordgo.Session satisfies it.
type Session interface {
	ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageSendReply(channelID string, content string, reference *discordgo.MessageReference, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelTyping(channelID string, options ...discordgo.RequestOption) error
	User(userID string, options ...discordgo.RequestOption) (*discordgo.User, error)
}

var _ Session = (*discordgo.Session)(nil)

// Context carries one command invocation.
type Context struct {
	Ctx     context.Context
	Session Session
	State   *discordgo.State
	Message *discordgo.MessageCreate
	Args    []string
	Logger  *zap.Logger
}

// Reply answers the invoking message with a reference to it.
func (c *Context) Reply(content string) error {
	_, err := c.Session.ChannelMessageSendReply(c.Message.ChannelID, content, c.Message.Reference())
	return err
}

// Say posts content to the invoking channel.
func (c *Context) Say(content string) error {
	_, err := c.Session.ChannelMessageSend(c.Message.ChannelID, content)
	return err
}

// SendEmbed posts an embed to the invoking channel.
func (c *Context) SendEmbed(embed *discordgo.MessageEmbed) error {
	_, err := c.Session.ChannelMessageSendEmbed(c.Message.ChannelID, embed)
	return err
}

// Typing shows the typing indicator. Failures only matter for debugging.
func (c *Context) Typing() {
	if err := c.Session.ChannelTyping(c.Message.ChannelID); err != nil {
		c.Logger.Debug("failed to broadcast typing", zap.Error(err))
	}
}

func (c *Context) GuildID() string {
	return c.Message.GuildID
}

func (c *Context) AuthorID() string {
	return c.Message.Author.ID
}
