// Package handlers wires gateway events to the bot's behavior.
package handlers

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/latoulicious/Ru/internal/commands"
	"go.uber.org/zap"
)

const guildListLimit = 100

// Session is what the handlers need from *discordgo.Session.
type Session interface {
	commands.Session
	UserGuilds(limit int, beforeID, afterID string, withCounts bool, options ...discordgo.RequestOption) ([]*discordgo.UserGuild, error)
}

var _ Session = (*discordgo.Session)(nil)

type Dispatcher interface {
	Dispatch(s commands.Session, state *discordgo.State, m *discordgo.MessageCreate) bool
}

type Relay interface {
	Reply(ctx context.Context, text string) (string, error)
}

type Presence interface {
	UpdateDefaultPresence()
}

// Handler reacts to ready, message and member-join events.
type Handler struct {
	router   Dispatcher
	relay    Relay
	presence Presence
	greeting string
	timeout  time.Duration
	logger   *zap.Logger
}

func New(router Dispatcher, relay Relay, presence Presence, greeting string, timeout time.Duration, logger *zap.Logger) *Handler {
	return &Handler{
		router:   router,
		relay:    relay,
		presence: presence,
		greeting: strings.ToLower(greeting),
		timeout:  timeout,
		logger:   logger,
	}
}

// Register adds the handler's callbacks to the session.
func (h *Handler) Register(dg *discordgo.Session) {
	dg.AddHandler(h.OnReady)
	dg.AddHandler(h.OnMessageCreate)
	dg.AddHandler(h.OnGuildMemberAdd)
}

func (h *Handler) OnReady(s *discordgo.Session, r *discordgo.Ready) {
	h.ready(s, r)
}

func (h *Handler) OnMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	h.message(s, s.State, m)
}

func (h *Handler) OnGuildMemberAdd(s *discordgo.Session, m *discordgo.GuildMemberAdd) {
	h.memberAdd(s, s.State, m)
}

func (h *Handler) ready(s Session, r *discordgo.Ready) {
	h.logger.Info(fmt.Sprintf("%s is connected.", r.User.Username))

	guilds, err := s.UserGuilds(guildListLimit, "", "", false)
	if err != nil {
		h.logger.Warn("failed to list guilds", zap.Error(err))
	}
	for _, g := range guilds {
		h.logger.Info("connected guild", zap.String("name", g.Name), zap.String("guild_id", g.ID))
	}

	h.presence.UpdateDefaultPresence()
}

func (h *Handler) message(s Session, state *discordgo.State, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot {
		return
	}
	botID := ""
	if state != nil && state.User != nil {
		botID = state.User.ID
	}
	if m.Author.ID == botID {
		return
	}

	if h.greeting != "" && strings.HasPrefix(strings.ToLower(m.Content), h.greeting) {
		h.typing(s, m.ChannelID)
		if _, err := s.ChannelMessageSendReply(m.ChannelID, fmt.Sprintf("Hello <@%s>", m.Author.ID), m.Reference()); err != nil {
			h.logger.Error("failed to send greeting", zap.Error(err))
		}
		return
	}

	if h.router.Dispatch(s, state, m) {
		return
	}

	if botID != "" && mentions(m.Mentions, botID) {
		h.relayMention(s, m)
	}
}

func (h *Handler) relayMention(s Session, m *discordgo.MessageCreate) {
	h.typing(s, m.ChannelID)

	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()

	reply, err := h.relay.Reply(ctx, m.Content)
	if err != nil {
		h.logger.Error("chat relay failed",
			zap.String("channel_id", m.ChannelID),
			zap.String("author_id", m.Author.ID),
			zap.Error(err))
		reply = commands.UserMessage(err)
	}

	if _, err := s.ChannelMessageSend(m.ChannelID, reply); err != nil {
		h.logger.Error("failed to send relay reply", zap.Error(err))
	}
}

func (h *Handler) memberAdd(s Session, state *discordgo.State, m *discordgo.GuildMemberAdd) {
	if m.Member == nil || m.User == nil {
		return
	}

	channelID, ok := DefaultChannel(state, m.GuildID, m.User.ID)
	if !ok {
		h.logger.Debug("no default channel for new member", zap.String("guild_id", m.GuildID))
		return
	}

	if _, err := s.ChannelMessageSend(channelID, fmt.Sprintf("<@%s> Joined in.", m.User.ID)); err != nil {
		h.logger.Error("failed to announce new member", zap.Error(err))
	}
}

// DefaultChannel returns the lowest-positioned text channel in the guild the
// user can view.
func DefaultChannel(state *discordgo.State, guildID, userID string) (string, bool) {
	guild, err := state.Guild(guildID)
	if err != nil {
		return "", false
	}

	channels := make([]*discordgo.Channel, 0, len(guild.Channels))
	for _, c := range guild.Channels {
		if c.Type == discordgo.ChannelTypeGuildText {
			channels = append(channels, c)
		}
	}
	sort.SliceStable(channels, func(i, j int) bool {
		return channels[i].Position < channels[j].Position
	})

	for _, c := range channels {
		perms, err := state.UserChannelPermissions(userID, c.ID)
		if err != nil {
			continue
		}
		if perms&discordgo.PermissionViewChannel != 0 {
			return c.ID, true
		}
	}
	return "", false
}

func (h *Handler) typing(s Session, channelID string) {
	if err := s.ChannelTyping(channelID); err != nil {
		h.logger.Debug("failed to broadcast typing", zap.Error(err))
	}
}

func mentions(users []*discordgo.User, id string) bool {
	for _, u := range users {
		if u != nil && u.ID == id {
			return true
		}
	}
	return false
}
