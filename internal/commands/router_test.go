package commands

import (
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestParse(t *testing.T) {
	r := NewRouter("Ru ", time.Second, zap.NewNop())

	tests := []struct {
		content string
		name    string
		args    []string
		ok      bool
	}{
		{"Ru ping", "ping", []string{}, true},
		{"Ru    play  never gonna", "play", []string{"never", "gonna"}, true},
		{"Ru PING", "ping", []string{}, true},
		{"Ru", "", nil, true},
		{"Ru   ", "", nil, true},
		{"Ruping", "", nil, false},
		{"ru ping", "", nil, false},
		{"hello ru", "", nil, false},
		{"", "", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.content, func(t *testing.T) {
			name, args, ok := r.Parse(tt.content)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.name, name)
			if tt.args != nil {
				assert.Equal(t, tt.args, args)
			} else {
				assert.Empty(t, args)
			}
		})
	}
}

func TestRegisterReplacesByName(t *testing.T) {
	r := NewRouter("Ru ", time.Second, zap.NewNop())
	first := &Command{Name: "ping", Run: func(*Context) error { return nil }}
	second := &Command{Name: "PING", Run: func(*Context) error { return nil }}

	r.Register(first)
	r.Register(second)

	cmd, ok := r.Lookup("ping")
	require.True(t, ok)
	assert.Same(t, second, cmd)
	assert.Len(t, r.Commands(), 2) // help + ping
}

func TestDispatchIgnoresNonCommands(t *testing.T) {
	r := newTestRouter(&fakeMemes{}, &fakeVoice{})
	s := &fakeSession{}

	assert.False(t, r.Dispatch(s, discordgo.NewState(), guildMessage("just chatting")))
	assert.Empty(t, s.messages())
}

func TestDispatchUnknownCommandShowsHelp(t *testing.T) {
	r := newTestRouter(&fakeMemes{}, &fakeVoice{})
	s := &fakeSession{}

	assert.True(t, r.Dispatch(s, discordgo.NewState(), guildMessage("Ru dance")))

	msgs := s.messages()
	require.Len(t, msgs, 1)
	require.NotNil(t, msgs[0].embed)
	assert.Contains(t, msgs[0].embed.Description, "Unknown command `dance`.")

	var groups []string
	for _, f := range msgs[0].embed.Fields {
		groups = append(groups, f.Name)
	}
	assert.Equal(t, []string{"Help", GroupGeneral, GroupMusic}, groups)
}

func TestDispatchBarePrefixShowsHelp(t *testing.T) {
	r := newTestRouter(&fakeMemes{}, &fakeVoice{})
	s := &fakeSession{}

	assert.True(t, r.Dispatch(s, discordgo.NewState(), guildMessage("Ru")))

	msgs := s.messages()
	require.Len(t, msgs, 1)
	require.NotNil(t, msgs[0].embed)
	assert.NotContains(t, msgs[0].embed.Description, "Unknown command")
}

func TestHelpForSingleCommand(t *testing.T) {
	r := newTestRouter(&fakeMemes{}, &fakeVoice{})

	t.Run("known", func(t *testing.T) {
		s := &fakeSession{}
		r.Dispatch(s, discordgo.NewState(), guildMessage("Ru help play"))

		msgs := s.messages()
		require.Len(t, msgs, 1)
		require.NotNil(t, msgs[0].embed)
		assert.Equal(t, "play", msgs[0].embed.Title)
		assert.Equal(t, "`Ru play <url-or-keyword>`", msgs[0].embed.Fields[0].Value)
	})

	t.Run("unknown", func(t *testing.T) {
		s := &fakeSession{}
		r.Dispatch(s, discordgo.NewState(), guildMessage("Ru help dance"))

		msgs := s.messages()
		require.Len(t, msgs, 1)
		assert.Equal(t, "Could not find command `dance`.", msgs[0].content)
	})
}

func TestDispatchGuildOnlyInDirectMessage(t *testing.T) {
	v := &fakeVoice{}
	r := newTestRouter(&fakeMemes{}, v)
	s := &fakeSession{}

	r.Dispatch(s, discordgo.NewState(), directMessage("Ru mute"))

	msgs := s.messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "This command can only be used in a server.", msgs[0].content)
	assert.Empty(t, v.calls)
}

func TestDispatchReportsHandlerError(t *testing.T) {
	r := NewRouter("Ru ", time.Second, zap.NewNop())
	runs := 0
	r.Register(&Command{Name: "boom", Run: func(*Context) error {
		runs++
		return errors.New("database exploded")
	}})
	s := &fakeSession{}

	r.Dispatch(s, discordgo.NewState(), guildMessage("Ru boom"))

	assert.Equal(t, 1, runs)
	msgs := s.messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "Something went wrong while running that command.", msgs[0].content)
	assert.NotContains(t, msgs[0].content, "database exploded")
}

func TestDispatchCarriesDeadline(t *testing.T) {
	r := NewRouter("Ru ", 50*time.Millisecond, zap.NewNop())
	var hasDeadline bool
	r.Register(&Command{Name: "wait", Run: func(c *Context) error {
		_, hasDeadline = c.Ctx.Deadline()
		return nil
	}})

	r.Dispatch(&fakeSession{}, discordgo.NewState(), guildMessage("Ru wait"))
	assert.True(t, hasDeadline)
}
