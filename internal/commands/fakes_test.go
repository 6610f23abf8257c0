package commands

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/latoulicious/Ru/internal/voice"
	"github.com/latoulicious/Ru/pkg/common"
	"github.com/latoulicious/Ru/pkg/meme"
	"go.uber.org/zap"
)

type sent struct {
	channelID string
	content   string
	embed     *discordgo.MessageEmbed
	reply     bool
}

type fakeSession struct {
	mu     sync.Mutex
	sent   []sent
	typing int
	users  map[string]*discordgo.User
}

func (s *fakeSession) ChannelMessageSend(channelID string, content string, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, sent{channelID: channelID, content: content})
	return &discordgo.Message{ChannelID: channelID, Content: content}, nil
}

func (s *fakeSession) ChannelMessageSendReply(channelID string, content string, _ *discordgo.MessageReference, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, sent{channelID: channelID, content: content, reply: true})
	return &discordgo.Message{ChannelID: channelID, Content: content}, nil
}

func (s *fakeSession) ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, sent{channelID: channelID, embed: embed})
	return &discordgo.Message{ChannelID: channelID}, nil
}

func (s *fakeSession) ChannelTyping(string, ...discordgo.RequestOption) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.typing++
	return nil
}

func (s *fakeSession) User(userID string, _ ...discordgo.RequestOption) (*discordgo.User, error) {
	if u, ok := s.users[userID]; ok {
		return u, nil
	}
	return nil, errors.New("unknown user")
}

func (s *fakeSession) messages() []sent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]sent(nil), s.sent...)
}

type fakeMemes struct {
	meme *meme.Meme
	err  error
}

func (f *fakeMemes) Random(context.Context) (*meme.Meme, error) {
	return f.meme, f.err
}

type fakeVoice struct {
	calls    []string
	err      error
	source   *common.Source
	joinedTo string
}

func (v *fakeVoice) Join(_ context.Context, _, channelID string) error {
	v.calls = append(v.calls, "join")
	v.joinedTo = channelID
	return v.err
}

func (v *fakeVoice) Leave(string) error {
	v.calls = append(v.calls, "leave")
	return v.err
}

func (v *fakeVoice) Play(_ context.Context, _, query string) (*common.Source, error) {
	v.calls = append(v.calls, "play "+query)
	if v.err != nil {
		return nil, v.err
	}
	return v.source, nil
}

func (v *fakeVoice) Mute(string) error {
	v.calls = append(v.calls, "mute")
	return v.err
}

func (v *fakeVoice) Unmute(string) error {
	v.calls = append(v.calls, "unmute")
	return v.err
}

var _ Voice = (*voice.Manager)(nil)

func newTestRouter(memes MemeSource, v Voice) *Router {
	r := NewRouter("Ru ", time.Second, zap.NewNop())
	RegisterDefaults(r, Deps{Memes: memes, Voice: v, AdminRole: "Admin"})
	return r
}

func guildMessage(content string) *discordgo.MessageCreate {
	return &discordgo.MessageCreate{Message: &discordgo.Message{
		ID:        "m1",
		ChannelID: "c1",
		GuildID:   "g1",
		Content:   content,
		Author:    &discordgo.User{ID: "u1", Username: "alice"},
		Member:    &discordgo.Member{Roles: []string{}},
	}}
}

func directMessage(content string) *discordgo.MessageCreate {
	return &discordgo.MessageCreate{Message: &discordgo.Message{
		ID:        "m1",
		ChannelID: "dm1",
		Content:   content,
		Author:    &discordgo.User{ID: "u1", Username: "alice"},
	}}
}
