package commands

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Command is a named text command.
type Command struct {
	Name        string
	Group       string
	Description string
	Usage       string
	// GuildOnly rejects invocations from direct messages.
	GuildOnly bool
	// AllowedRoles restricts the command to members holding one of these role names.
	AllowedRoles []string
	Run          func(c *Context) error
}

// Router maps prefixed messages to registered commands.
type Router struct {
	prefix   string
	timeout  time.Duration
	logger   *zap.Logger
	commands []*Command
	byName   map[string]*Command
}

func NewRouter(prefix string, timeout time.Duration, logger *zap.Logger) *Router {
	r := &Router{
		prefix:  prefix,
		timeout: timeout,
		logger:  logger,
		byName:  make(map[string]*Command),
	}
	r.Register(r.helpCommand())
	return r
}

// Register adds commands to the registry. Later registrations replace earlier
// ones with the same name.
func (r *Router) Register(cmds ...*Command) {
	for _, cmd := range cmds {
		name := strings.ToLower(cmd.Name)
		if existing, ok := r.byName[name]; ok {
			for i := range r.commands {
				if r.commands[i] == existing {
					r.commands[i] = cmd
				}
			}
		} else {
			r.commands = append(r.commands, cmd)
		}
		r.byName[name] = cmd
	}
}

// Lookup finds a command by case-insensitive name.
func (r *Router) Lookup(name string) (*Command, bool) {
	cmd, ok := r.byName[strings.ToLower(name)]
	return cmd, ok
}

// Commands returns the registry in registration order.
func (r *Router) Commands() []*Command {
	return r.commands
}

func (r *Router) Prefix() string {
	return r.prefix
}

// Parse reports whether content carries the prefix and splits it into a
// lowercased command name and its arguments. Whitespace between the prefix
// and the command, and between arguments, is tolerated.
func (r *Router) Parse(content string) (name string, args []string, ok bool) {
	trigger := strings.TrimRightFunc(r.prefix, unicode.IsSpace)
	if trigger == "" || !strings.HasPrefix(content, trigger) {
		return "", nil, false
	}

	rest := content[len(trigger):]
	if trigger != r.prefix && rest != "" {
		first, _ := utf8.DecodeRuneInString(rest)
		if !unicode.IsSpace(first) {
			return "", nil, false
		}
	}

	fields := strings.Fields(rest)
	if len(fields) == 0 {
		return "", nil, true
	}
	return strings.ToLower(fields[0]), fields[1:], true
}

// Dispatch runs the command addressed by m, if any, and reports whether the
// message was a command. Each command runs once. A handler error is logged and
// reported to the channel.
func (r *Router) Dispatch(s Session, state *discordgo.State, m *discordgo.MessageCreate) bool {
	name, args, ok := r.Parse(m.Content)
	if !ok {
		return false
	}

	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	logger := r.logger.With(
		zap.String("invocation_id", uuid.NewString()),
		zap.String("command", name),
		zap.String("guild_id", m.GuildID),
		zap.String("channel_id", m.ChannelID),
		zap.String("author_id", m.Author.ID),
	)

	c := &Context{
		Ctx:     ctx,
		Session: s,
		State:   state,
		Message: m,
		Args:    args,
		Logger:  logger,
	}

	cmd, found := r.Lookup(name)
	if !found {
		note := ""
		if name != "" {
			note = fmt.Sprintf("Unknown command `%s`.", name)
		}
		r.report(c, r.sendHelpListing(c, note))
		return true
	}

	if cmd.GuildOnly && m.GuildID == "" {
		r.report(c, c.Say("This command can only be used in a server."))
		return true
	}

	if len(cmd.AllowedRoles) > 0 && !memberHasRole(state, m.GuildID, m.Member, cmd.AllowedRoles) {
		r.report(c, c.Reply(fmt.Sprintf("You need the `%s` role to use this command.", strings.Join(cmd.AllowedRoles, "` or `"))))
		return true
	}

	start := time.Now()
	err := cmd.Run(c)
	if err != nil {
		logger.Error("command failed", zap.Error(err))
		r.report(c, c.Say(UserMessage(err)))
		return true
	}

	logger.Debug("command executed", zap.Duration("duration", time.Since(start)))
	return true
}

// report logs a failure to deliver a reply.
func (r *Router) report(c *Context, err error) {
	if err != nil {
		c.Logger.Error("failed to send message", zap.Error(err))
	}
}

func memberHasRole(state *discordgo.State, guildID string, member *discordgo.Member, allowed []string) bool {
	if member == nil || guildID == "" || state == nil {
		return false
	}

	for _, roleID := range member.Roles {
		role, err := state.Role(guildID, roleID)
		if err != nil {
			continue
		}
		for _, name := range allowed {
			if strings.EqualFold(role.Name, name) {
				return true
			}
		}
	}
	return false
}
