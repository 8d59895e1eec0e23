package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/motortown-bot/internal/auth"
	"github.com/keshon/motortown-bot/internal/config"
	"github.com/keshon/motortown-bot/pkg/cmd"
	"github.com/keshon/motortown-bot/pkg/util"
)

const noUserGiven = "❌ No user given. Mention the user, e.g. @JohnDoe."

func userOpt(name, description string) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionUser,
		Name:        name,
		Description: description,
		Required:    true,
	}
}

type ListAdminsCommand struct{ deps *Deps }

func (c *ListAdminsCommand) Name() string        { return "listadmins" }
func (c *ListAdminsCommand) Description() string { return "List Discord users who can use admin commands" }
func (c *ListAdminsCommand) Category() string    { return config.CategoryRoles }

func (c *ListAdminsCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return slashDef(c.Name(), c.Description())
}

func (c *ListAdminsCommand) Run(ctx context.Context, inv *cmd.Invocation) error {
	ids := c.deps.Admins.List()
	if len(ids) == 0 {
		return inv.ReplyText(ctx, "⚠️ No admin users configured. Set ADMIN_USER_IDS in your .env file.")
	}

	tags := util.ParallelMap(ctx, ids, resolveWorkers, func(ctx context.Context, id string) string {
		rec, err := c.deps.Directory.User(ctx, id)
		if err != nil || rec == nil {
			return "Unknown User"
		}
		return rec.Tag
	})

	embed := c.deps.embed(helpColor, "👑 Bot Admin Users")
	embed.Description = "Users who can execute admin commands:"
	for i, id := range ids {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   orDash(tags[i]),
			Value:  fmt.Sprintf("ID: `%s`", id),
			Inline: true,
		})
	}
	return inv.ReplyEmbed(ctx, embed)
}

type AddAdminCommand struct{ deps *Deps }

func (c *AddAdminCommand) Name() string { return "addadmin" }
func (c *AddAdminCommand) Description() string {
	return "Add a Discord user as bot admin (requires current admin)"
}
func (c *AddAdminCommand) Category() string { return config.CategoryAdmin }
func (c *AddAdminCommand) Usage() (string, string) {
	return "addadmin @user", "addadmin @JohnDoe"
}

func (c *AddAdminCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return slashDef(c.Name(), c.Description(), userOpt("user", "User to add as admin"))
}

func (c *AddAdminCommand) Run(ctx context.Context, inv *cmd.Invocation) error {
	target, ok := inv.Args.User("user")
	if !ok {
		return inv.ReplyText(ctx, noUserGiven)
	}

	err := c.deps.Admins.Add(inv.InvokerID, target.ID)
	switch {
	case errors.Is(err, auth.ErrNotAuthorized):
		return inv.ReplyText(ctx, "❌ You must be an admin to add other admins.")
	case errors.Is(err, auth.ErrAlreadyAdmin):
		return inv.ReplyText(ctx, fmt.Sprintf("ℹ️ %s is already an admin.", target.Tag))
	case err != nil:
		return err
	}

	embed := c.deps.embed(0x00FF00, "✅ Admin Added")
	embed.Description = fmt.Sprintf("%s has been added as a bot admin.", target.Tag)
	embed.Fields = []*discordgo.MessageEmbedField{{
		Name: "Note",
		Value: "⚠️ This change is temporary. To make it permanent, add their ID to the ADMIN_USER_IDS in your .env file:\n" +
			"```\nADMIN_USER_IDS=" + strings.Join(c.deps.Admins.List(), ",") + "\n```",
	}}
	return inv.ReplyEmbed(ctx, embed)
}

type RemoveAdminCommand struct{ deps *Deps }

func (c *RemoveAdminCommand) Name() string { return "removeadmin" }
func (c *RemoveAdminCommand) Description() string {
	return "Remove a Discord user from bot admins (requires current admin)"
}
func (c *RemoveAdminCommand) Category() string { return config.CategoryAdmin }
func (c *RemoveAdminCommand) Usage() (string, string) {
	return "removeadmin @user", "removeadmin @JohnDoe"
}

func (c *RemoveAdminCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return slashDef(c.Name(), c.Description(), userOpt("user", "User to remove from admins"))
}

func (c *RemoveAdminCommand) Run(ctx context.Context, inv *cmd.Invocation) error {
	target, ok := inv.Args.User("user")
	if !ok {
		return inv.ReplyText(ctx, noUserGiven)
	}

	err := c.deps.Admins.Remove(inv.InvokerID, target.ID)
	switch {
	case errors.Is(err, auth.ErrNotAuthorized):
		return inv.ReplyText(ctx, "❌ You must be an admin to remove other admins.")
	case errors.Is(err, auth.ErrLastAdminProtected):
		return inv.ReplyText(ctx, "❌ Cannot remove yourself as the last admin.")
	case errors.Is(err, auth.ErrNotAnAdmin):
		return inv.ReplyText(ctx, fmt.Sprintf("ℹ️ %s is not an admin.", target.Tag))
	case err != nil:
		return err
	}

	embed := c.deps.embed(0xFF6600, "✅ Admin Removed")
	embed.Description = fmt.Sprintf("%s has been removed from bot admins.", target.Tag)
	embed.Fields = []*discordgo.MessageEmbedField{{
		Name:  "Note",
		Value: "⚠️ This change is temporary. To make it permanent, remove their ID from the ADMIN_USER_IDS in your .env file.",
	}}
	return inv.ReplyEmbed(ctx, embed)
}
