package commands

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/motortown-bot/internal/command"
	"github.com/keshon/motortown-bot/internal/config"
	"github.com/keshon/motortown-bot/pkg/cmd"
)

const helpColor = 0x5865F2

type HelpCommand struct {
	deps     *Deps
	registry *cmd.Registry
}

func (c *HelpCommand) Name() string        { return "help" }
func (c *HelpCommand) Description() string { return "Show all available commands and their descriptions" }
func (c *HelpCommand) Category() string    { return config.CategoryInformation }

func (c *HelpCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return slashDef(c.Name(), c.Description())
}

func (c *HelpCommand) Run(ctx context.Context, inv *cmd.Invocation) error {
	return inv.ReplyEmbed(ctx, c.build(inv))
}

func (c *HelpCommand) build(inv *cmd.Invocation) *discordgo.MessageEmbed {
	d := c.deps
	p := inv.Prefix
	textPrefix := d.TextPrefix
	if textPrefix == "" {
		textPrefix = "!!"
	}

	embed := d.embed(helpColor, "📖 Bot Commands Help")
	embed.Description = fmt.Sprintf("Here are all available commands:\n\n💡 **Tip:** You can also use `%s` prefix for any command!\nExample: `%sstatus` or `/status`", textPrefix, textPrefix)

	byCategory := map[string][]cmd.Command{}
	var restricted []cmd.Command
	for _, cm := range c.registry.GetAll() {
		if d.Gate.IsRestricted(cm.Name()) {
			restricted = append(restricted, cm)
			continue
		}
		cat := command.Category(cm)
		byCategory[cat] = append(byCategory[cat], cm)
	}

	cats := make([]string, 0, len(byCategory))
	for cat := range byCategory {
		cats = append(cats, cat)
	}
	sort.Slice(cats, func(i, j int) bool {
		wi, wj := config.CategoryWeights[cats[i]], config.CategoryWeights[cats[j]]
		if wi != wj {
			return wi < wj
		}
		return cats[i] < cats[j]
	})

	for _, cat := range cats {
		var sb strings.Builder
		for _, cm := range byCategory[cat] {
			fmt.Fprintf(&sb, "`%s%s` - %s\n", p, cm.Name(), cm.Description())
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  cat,
			Value: strings.TrimSuffix(sb.String(), "\n"),
		})
	}

	if len(restricted) > 0 {
		embed.Fields = append(embed.Fields, adminHelpField(p, restricted, d.Gate.IsAdmin(inv.InvokerID)))
	}

	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
		Name: "💡 Tips",
		Value: fmt.Sprintf("• Use `%splayers` to get player unique_ids for kick/ban commands\n"+
			"• Color codes for `%sserverchat` are in hex format (e.g., FF0000 for red)\n"+
			"• Admin permissions are managed via Discord User IDs in the bot configuration\n"+
			"• **Slash commands slow?** Use `%s` prefix instead (e.g., `%shelp`, `%sstatus`)",
			p, p, textPrefix, textPrefix, textPrefix),
	})
	embed.Footer = &discordgo.MessageEmbedFooter{Text: "Bot connected to: " + d.APIHost}
	return embed
}

func adminHelpField(prefix string, restricted []cmd.Command, isAdmin bool) *discordgo.MessageEmbedField {
	var sb strings.Builder
	if isAdmin {
		for _, cm := range restricted {
			usage := cm.Name()
			if u, _, ok := command.Usage(cm); ok {
				usage = u
			}
			fmt.Fprintf(&sb, "`%s%s` - %s\n", prefix, usage, cm.Description())
		}
		return &discordgo.MessageEmbedField{
			Name:  "🔒 Admin Commands (You have access)",
			Value: strings.TrimSuffix(sb.String(), "\n"),
		}
	}

	names := make([]string, len(restricted))
	for i, cm := range restricted {
		names[i] = fmt.Sprintf("`%s%s`", prefix, cm.Name())
	}
	sb.WriteString(strings.Join(names, ", "))
	sb.WriteString("\n\n❌ You need admin permissions to use these commands.")
	return &discordgo.MessageEmbedField{
		Name:  "🔒 Admin Commands (Restricted)",
		Value: sb.String(),
	}
}

type JoinCommand struct{ deps *Deps }

func (c *JoinCommand) Name() string        { return "join" }
func (c *JoinCommand) Description() string { return "Get instructions on how to join the server" }
func (c *JoinCommand) Category() string    { return config.CategoryInformation }

func (c *JoinCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return slashDef(c.Name(), c.Description())
}

func (c *JoinCommand) Run(ctx context.Context, inv *cmd.Invocation) error {
	name, password := c.deps.JoinServerName, c.deps.JoinServerPassword

	embed := c.deps.embed(0x00FF00, "🎮 How to Join the Server")
	embed.Description = "Follow these simple steps to connect to our server:"
	embed.Fields = []*discordgo.MessageEmbedField{
		{Name: "1️⃣ Launch the Game", Value: "Start up the game and wait for it to load completely."},
		{Name: "2️⃣ Open Multiplayer", Value: "Click on the **Join** button in the main menu."},
		{Name: "3️⃣ Search for Server", Value: fmt.Sprintf("Look up **%s** in the server list.", name)},
		{Name: "4️⃣ Enter Password", Value: fmt.Sprintf("🔑 Password: `%s`", password)},
		{Name: "5️⃣ Connect!", Value: "Click join and you'll be in the server! 🎉"},
		{Name: "📋 Quick Reference", Value: fmt.Sprintf("**Server Name:** %s\n**Password:** `%s`", name, password)},
	}
	embed.Footer = &discordgo.MessageEmbedFooter{Text: "See you in-game!"}
	return inv.ReplyEmbed(ctx, embed)
}
