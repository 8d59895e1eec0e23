package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/motortown-bot/internal/config"
	"github.com/keshon/motortown-bot/internal/identity"
	"github.com/keshon/motortown-bot/pkg/cmd"
	"github.com/keshon/motortown-bot/pkg/util"
)

const (
	mappingColor = 0x00AAFF
	// embedFieldLimit is Discord's maximum length of an embed field value.
	embedFieldLimit = 1024
)

type PlayerMappingCommand struct{ deps *Deps }

func (c *PlayerMappingCommand) Name() string        { return "playermapping" }
func (c *PlayerMappingCommand) Description() string { return "View current player ID to name mappings" }
func (c *PlayerMappingCommand) Category() string    { return config.CategoryRoles }

func (c *PlayerMappingCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return slashDef(c.Name(), c.Description())
}

func (c *PlayerMappingCommand) Run(ctx context.Context, inv *cmd.Invocation) error {
	mappings := c.deps.Resolver.Table().All()
	if len(mappings) == 0 {
		embed := c.deps.embed(0xFFA500, "🎮 Player Mapping")
		embed.Description = "No player mappings configured."
		embed.Fields = []*discordgo.MessageEmbedField{{
			Name: "How to Add Mappings",
			Value: "Edit your `.env` file and add:\n```\nPLAYER_MAPPING=12345:Jerry|67890:Bob|11111:123456789012345678\n```\n" +
				"Format: `unique_id:name` or `unique_id:discordUserID`\nSeparate with `|` for multiple mappings.",
		}}
		return inv.ReplyEmbed(ctx, embed)
	}

	lines := util.ParallelMap(ctx, mappings, resolveWorkers, func(ctx context.Context, m identity.Mapping) string {
		res, _ := c.deps.Resolver.Lookup(ctx, m.UniqueID, inv.ScopeID)
		return MappingLine(res)
	})

	embed := c.deps.embed(mappingColor, fmt.Sprintf("🎮 Player Mapping (%d mapped)", len(mappings)))
	embed.Description = "Current player ID to name mappings:"
	for i, chunk := range chunkLines(lines, embedFieldLimit) {
		name := "Mappings"
		if i > 0 {
			name = "Mappings (continued)"
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: name, Value: chunk})
	}
	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
		Name: "Usage",
		Value: "These names will appear in `/players` command.\n**With name:** `Jerry (InGameName)`\n" +
			"**With Discord user:** `Nickname (InGameName)` or `Username#1234 (InGameName)`\n\n💡 Server nicknames are used when available!",
	})
	embed.Footer = &discordgo.MessageEmbedFooter{Text: "Mappings are configured in the .env file"}
	return inv.ReplyEmbed(ctx, embed)
}

// MappingLine renders one resolved mapping for the mapping overview.
func MappingLine(res identity.Resolution) string {
	m := res.Mapping
	if m.Kind == identity.KindName {
		return fmt.Sprintf("`%s` → **%s**", m.UniqueID, m.Value)
	}
	if res.UserErr != nil || res.User == nil {
		return fmt.Sprintf("`%s` → **Discord User ID: %s** (User not found)", m.UniqueID, m.Value)
	}
	display := res.User.Tag
	if res.Member != nil && res.Member.Nick != "" {
		display = fmt.Sprintf("%s (%s)", res.Member.Nick, res.User.Username)
	}
	return fmt.Sprintf("`%s` → **%s** (Discord User)", m.UniqueID, display)
}

// chunkLines joins lines with newlines into chunks no longer than limit bytes.
func chunkLines(lines []string, limit int) []string {
	var (
		chunks []string
		sb     strings.Builder
	)
	for _, line := range lines {
		if len(line) > limit {
			line = line[:limit]
		}
		if sb.Len() > 0 && sb.Len()+1+len(line) > limit {
			chunks = append(chunks, sb.String())
			sb.Reset()
		}
		if sb.Len() > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(line)
	}
	if sb.Len() > 0 {
		chunks = append(chunks, sb.String())
	}
	if len(chunks) == 0 {
		chunks = []string{"None"}
	}
	return chunks
}

type TestMappingCommand struct{ deps *Deps }

func (c *TestMappingCommand) Name() string        { return "testmapping" }
func (c *TestMappingCommand) Description() string { return "Test a specific player mapping (admin only)" }
func (c *TestMappingCommand) Category() string    { return config.CategoryAdmin }
func (c *TestMappingCommand) Usage() (string, string) {
	return "testmapping <unique_id>", "testmapping 12345"
}

func (c *TestMappingCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return slashDef(c.Name(), c.Description(),
		stringOpt("unique_id", "Player unique ID to test", true))
}

func (c *TestMappingCommand) Run(ctx context.Context, inv *cmd.Invocation) error {
	id := stringArg(inv, "unique_id")
	res, ok := c.deps.Resolver.Lookup(ctx, id, inv.ScopeID)
	if !ok {
		return inv.ReplyText(ctx, fmt.Sprintf("❌ No mapping found for player ID: `%s`\n\nUse `%splayermapping` to see all mappings.", id, inv.Prefix))
	}

	embed := c.deps.embed(mappingColor, "🔍 Player Mapping Test")
	embed.Description = fmt.Sprintf("Testing mapping for player ID: `%s`", id)
	embed.Fields = TraceFields(res, inv.ScopeName)
	return inv.ReplyEmbed(ctx, embed)
}

// TraceFields explains each step of a resolution as embed fields.
func TraceFields(res identity.Resolution, scopeName string) []*discordgo.MessageEmbedField {
	m := res.Mapping
	field := func(name, value string) *discordgo.MessageEmbedField {
		return &discordgo.MessageEmbedField{Name: name, Value: value}
	}

	if m.Kind == identity.KindName {
		return []*discordgo.MessageEmbedField{
			field("Mapping Type", "Custom Name"),
			field("Mapped Name", fmt.Sprintf("**%s**", m.Value)),
			field("Display", fmt.Sprintf("Will display as: `%s`", res.DisplayName("InGameName"))),
		}
	}

	fields := []*discordgo.MessageEmbedField{
		field("Mapping Type", "Discord User ID"),
		field("Discord User ID", fmt.Sprintf("`%s`", m.Value)),
	}
	if res.UserErr != nil || res.User == nil {
		return append(fields, field("❌ User Not Found", fmt.Sprintf(
			"Failed to fetch Discord user.\n**Will display as:** `%s`\n\n**Error:** %s",
			res.DisplayName("InGameName"), errText(res.UserErr))))
	}
	fields = append(fields, field("✅ User Found", fmt.Sprintf("**%s**\nID: %s", res.User.Tag, res.User.ID)))

	if scopeName == "" {
		scopeName = "Unknown Server"
	}
	switch {
	case !res.Scoped:
		fields = append(fields, field("⚠️ No Guild Context", "Command not used in a server, cannot check nickname"))
	case res.ScopeUnknown():
		fields = append(fields, field("⚠️ Guild Not Found", "Could not find guild in cache"))
	case res.MemberErr != nil || res.Member == nil:
		fields = append(fields, field(fmt.Sprintf("❌ Not a Member of %q", scopeName), fmt.Sprintf(
			"User is not in this Discord server.\n**Will display as:** `%s`\n\n**Error:** %s",
			res.DisplayName("InGameName"), errText(res.MemberErr))))
	case res.Member.Nick != "":
		fields = append(fields, field(fmt.Sprintf("✅ Member of %q", scopeName), fmt.Sprintf(
			"**Server Nickname:** %s\n**Will display as:** `%s`", res.Member.Nick, res.DisplayName("InGameName"))))
	default:
		fields = append(fields, field(fmt.Sprintf("✅ Member of %q", scopeName), fmt.Sprintf(
			"**No server nickname set**\n**Will display as:** `%s`", res.DisplayName("InGameName"))))
	}
	return fields
}

func errText(err error) string {
	if err == nil {
		return "unknown"
	}
	return err.Error()
}
