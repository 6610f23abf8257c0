package commands

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
)

const (
	helpGroup = "Help"
	helpColor = 0x00ff00
)

func (r *Router) helpCommand() *Command {
	return &Command{
		Name:        "help",
		Group:       helpGroup,
		Description: "Lists all commands, or shows details for one command",
		Usage:       "help [command]",
		Run: func(c *Context) error {
			c.Typing()
			if len(c.Args) > 0 {
				return r.sendCommandHelp(c, c.Args[0])
			}
			return r.sendHelpListing(c, "")
		},
	}
}

// HelpEmbed builds the command listing, grouped in registration order.
func (r *Router) HelpEmbed(note string) *discordgo.MessageEmbed {
	var groups []string
	lines := make(map[string][]string)

	for _, cmd := range r.commands {
		group := cmd.Group
		if group == "" {
			group = "General"
		}
		if _, seen := lines[group]; !seen {
			groups = append(groups, group)
		}
		lines[group] = append(lines[group], fmt.Sprintf("• `%s` - %s", cmd.Name, cmd.Description))
	}

	description := fmt.Sprintf("Prefix: `%s`. Use `%shelp <command>` for details.", strings.TrimSpace(r.prefix), r.prefix)
	if note != "" {
		description = note + "\n" + description
	}

	embed := &discordgo.MessageEmbed{
		Title:       "Commands",
		Description: description,
		Color:       helpColor,
	}
	for _, group := range groups {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  group,
			Value: strings.Join(lines[group], "\n"),
		})
	}
	return embed
}

func (r *Router) sendHelpListing(c *Context, note string) error {
	return c.SendEmbed(r.HelpEmbed(note))
}

func (r *Router) sendCommandHelp(c *Context, name string) error {
	cmd, ok := r.Lookup(name)
	if !ok {
		return c.Say(fmt.Sprintf("Could not find command `%s`.", name))
	}

	usage := cmd.Usage
	if usage == "" {
		usage = cmd.Name
	}

	embed := &discordgo.MessageEmbed{
		Title:       cmd.Name,
		Description: cmd.Description,
		Color:       helpColor,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Usage", Value: fmt.Sprintf("`%s%s`", r.prefix, usage), Inline: true},
			{Name: "Group", Value: cmd.Group, Inline: true},
		},
	}
	if cmd.GuildOnly {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "Only in servers", Value: "Yes", Inline: true})
	}
	if len(cmd.AllowedRoles) > 0 {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "Allowed roles", Value: strings.Join(cmd.AllowedRoles, ", "), Inline: true})
	}

	return c.SendEmbed(embed)
}
