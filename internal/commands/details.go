package commands

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/bwmarrin/discordgo"
)

const detailsColor = 0xFAB1ED

// DetailsCommand sends the server's information followed by one message per
// cached member. Restricted to adminRole when it is set.
func DetailsCommand(adminRole string) *Command {
	cmd := &Command{
		Name:        "details",
		Group:       GroupGeneral,
		Description: "Sends Server's Information",
		GuildOnly:   true,
		Run:         runDetails,
	}
	if adminRole != "" {
		cmd.AllowedRoles = []string{adminRole}
	}
	return cmd
}

func runDetails(c *Context) error {
	c.Typing()

	guild, err := c.State.Guild(c.GuildID())
	if err != nil {
		return fmt.Errorf("guild %s not in state: %w", c.GuildID(), err)
	}

	owner, err := c.Session.User(guild.OwnerID)
	if err != nil {
		return fmt.Errorf("failed to fetch guild owner: %w", err)
	}

	members := sortedMembers(guild.Members)

	if err := c.SendEmbed(DetailsEmbed(guild, owner, len(members))); err != nil {
		return err
	}

	for _, member := range members {
		if err := c.Say(memberLine(member)); err != nil {
			return err
		}
	}

	return nil
}

// DetailsEmbed builds the server info embed.
func DetailsEmbed(guild *discordgo.Guild, owner *discordgo.User, memberCount int) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title: fmt.Sprintf("%s Server's Info:", guild.Name),
		Color: detailsColor,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Owner", Value: owner.Username},
			{Name: "Server ID", Value: guild.ID},
			{Name: "Member Count", Value: strconv.Itoa(memberCount)},
		},
	}

	if icon := guild.IconURL(""); icon != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: icon}
	} else {
		embed.Footer = &discordgo.MessageEmbedFooter{Text: "No Icon"}
	}

	return embed
}

func sortedMembers(members []*discordgo.Member) []*discordgo.Member {
	sorted := make([]*discordgo.Member, 0, len(members))
	for _, m := range members {
		if m != nil && m.User != nil {
			sorted = append(sorted, m)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].JoinedAt.Before(sorted[j].JoinedAt)
	})
	return sorted
}

func memberLine(member *discordgo.Member) string {
	joined := "Unknown"
	if !member.JoinedAt.IsZero() {
		joined = member.JoinedAt.UTC().Format(time.RFC3339)
	}
	return fmt.Sprintf("Member name: %s\nID: %s\nJoined at: %s", member.User.Username, member.User.ID, joined)
}
