package commands

import (
	"context"
	"fmt"
	"strconv"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/motortown-bot/internal/config"
	"github.com/keshon/motortown-bot/internal/gameapi"
	"github.com/keshon/motortown-bot/pkg/cmd"
)

// replyResult renders a write endpoint's outcome: the success embed, or the
// server's message when it reports failure.
func replyResult(ctx context.Context, inv *cmd.Invocation, res *gameapi.Result, action string, success *discordgo.MessageEmbed) error {
	if !res.Succeeded {
		return inv.ReplyText(ctx, fmt.Sprintf("Failed to %s: %s", action, res.Message))
	}
	return inv.ReplyEmbed(ctx, success)
}

type KickCommand struct{ deps *Deps }

func (c *KickCommand) Name() string        { return "kick" }
func (c *KickCommand) Description() string { return "Kick a player from the server" }
func (c *KickCommand) Category() string    { return config.CategoryAdmin }
func (c *KickCommand) Usage() (string, string) {
	return "kick <unique_id>", "kick 12345"
}

func (c *KickCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return slashDef(c.Name(), c.Description(),
		stringOpt("unique_id", "Player unique ID", true))
}

func (c *KickCommand) Run(ctx context.Context, inv *cmd.Invocation) error {
	id := stringArg(inv, "unique_id")
	res, err := c.deps.API.Kick(ctx, id)
	if err != nil {
		return err
	}
	embed := c.deps.embed(0xFFA500, "✅ Player Kicked")
	embed.Description = fmt.Sprintf("Player with ID `%s` has been kicked from the server.", id)
	return replyResult(ctx, inv, res, "kick player", embed)
}

type BanCommand struct{ deps *Deps }

func (c *BanCommand) Name() string        { return "ban" }
func (c *BanCommand) Description() string { return "Ban a player from the server" }
func (c *BanCommand) Category() string    { return config.CategoryAdmin }
func (c *BanCommand) Usage() (string, string) {
	return "ban <unique_id> [hours] [reason]", "ban 12345 24 Cheating"
}

func (c *BanCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return slashDef(c.Name(), c.Description(),
		stringOpt("unique_id", "Player unique ID", true),
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionInteger,
			Name:        "hours",
			Description: "Ban duration in hours (leave empty for permanent)",
		},
		stringOpt("reason", "Reason for ban", false))
}

func (c *BanCommand) Run(ctx context.Context, inv *cmd.Invocation) error {
	id := stringArg(inv, "unique_id")
	hours, _ := inv.Args.Integer("hours")
	reason := stringArg(inv, "reason")

	res, err := c.deps.API.Ban(ctx, id, hours, reason)
	if err != nil {
		return err
	}

	duration := "permanently"
	if hours != 0 {
		duration = "for " + strconv.FormatInt(hours, 10) + " hours"
	}
	embed := c.deps.embed(0xFF0000, "🚫 Player Banned")
	embed.Description = fmt.Sprintf("Player with ID `%s` has been banned %s.", id, duration)
	if reason != "" {
		embed.Description += "\nReason: " + reason
	}
	return replyResult(ctx, inv, res, "ban player", embed)
}

type UnbanCommand struct{ deps *Deps }

func (c *UnbanCommand) Name() string        { return "unban" }
func (c *UnbanCommand) Description() string { return "Unban a player" }
func (c *UnbanCommand) Category() string    { return config.CategoryAdmin }
func (c *UnbanCommand) Usage() (string, string) {
	return "unban <unique_id>", "unban 12345"
}

func (c *UnbanCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return slashDef(c.Name(), c.Description(),
		stringOpt("unique_id", "Player unique ID", true))
}

func (c *UnbanCommand) Run(ctx context.Context, inv *cmd.Invocation) error {
	id := stringArg(inv, "unique_id")
	res, err := c.deps.API.Unban(ctx, id)
	if err != nil {
		return err
	}
	embed := c.deps.embed(0x00FF00, "✅ Player Unbanned")
	embed.Description = fmt.Sprintf("Player with ID `%s` has been unbanned.", id)
	return replyResult(ctx, inv, res, "unban player", embed)
}

type AnnounceCommand struct{ deps *Deps }

func (c *AnnounceCommand) Name() string        { return "announce" }
func (c *AnnounceCommand) Description() string { return "Send an announcement to the server" }
func (c *AnnounceCommand) Category() string    { return config.CategoryAdmin }
func (c *AnnounceCommand) Usage() (string, string) {
	return "announce <message>", "announce Server restart in 10 minutes"
}

func (c *AnnounceCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return slashDef(c.Name(), c.Description(),
		stringOpt("message", "Message to send", true))
}

func (c *AnnounceCommand) Run(ctx context.Context, inv *cmd.Invocation) error {
	msg := stringArg(inv, "message")
	res, err := c.deps.API.Announce(ctx, msg)
	if err != nil {
		return err
	}
	embed := c.deps.embed(0x00FF00, "📢 Announcement Sent")
	embed.Description = msg
	return replyResult(ctx, inv, res, "send announcement", embed)
}

type ServerChatCommand struct{ deps *Deps }

func (c *ServerChatCommand) Name() string        { return "serverchat" }
func (c *ServerChatCommand) Description() string { return "Send a chat message to the server" }
func (c *ServerChatCommand) Category() string    { return config.CategoryAdmin }
func (c *ServerChatCommand) Usage() (string, string) {
	return "serverchat <message> [color]", "serverchat Hello! FF0000"
}

func (c *ServerChatCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return slashDef(c.Name(), c.Description(),
		stringOpt("message", "Message to send", true),
		stringOpt("color", "Text color in hex (e.g., FF00FF)", false))
}

func (c *ServerChatCommand) Run(ctx context.Context, inv *cmd.Invocation) error {
	msg := stringArg(inv, "message")
	color := stringArg(inv, "color")
	res, err := c.deps.API.ServerChat(ctx, msg, color)
	if err != nil {
		return err
	}

	embedColor := 0xFFFFFF
	if n, err := strconv.ParseInt(color, 16, 32); err == nil {
		embedColor = int(n)
	}
	embed := c.deps.embed(embedColor, "💬 Message Sent")
	embed.Description = msg
	return replyResult(ctx, inv, res, "send message", embed)
}
