package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/gertd/go-pluralize"
	"golang.org/x/sync/errgroup"

	"github.com/keshon/motortown-bot/internal/config"
	"github.com/keshon/motortown-bot/internal/gameapi"
	"github.com/keshon/motortown-bot/pkg/cmd"
	"github.com/keshon/motortown-bot/pkg/util"
)

const (
	infoColor = 0x0099FF
	// maxEmbedSites keeps the deliveries embed under Discord's field limit.
	maxEmbedSites = 10
	// resolveWorkers bounds concurrent directory lookups per command.
	resolveWorkers = 4
)

type StatusCommand struct{ deps *Deps }

func (c *StatusCommand) Name() string        { return "status" }
func (c *StatusCommand) Description() string { return "Get server status information" }
func (c *StatusCommand) Category() string    { return config.CategoryServer }

func (c *StatusCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return slashDef(c.Name(), c.Description())
}

func (c *StatusCommand) Run(ctx context.Context, inv *cmd.Invocation) error {
	var (
		count   *gameapi.PlayerCount
		version *gameapi.VersionInfo
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		count, err = c.deps.API.PlayerCount(gctx)
		return err
	})
	g.Go(func() (err error) {
		version, err = c.deps.API.Version(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	embed := c.deps.embed(infoColor, "🖥️ Server Status")
	embed.Fields = []*discordgo.MessageEmbedField{
		{Name: "👥 Players Online", Value: fmt.Sprint(count.NumPlayers), Inline: true},
		{Name: "📦 Version", Value: orDash(version.Version), Inline: true},
		{Name: "🌐 Host", Value: orDash(c.deps.APIHost), Inline: true},
	}
	return inv.ReplyEmbed(ctx, embed)
}

type PlayersCommand struct{ deps *Deps }

func (c *PlayersCommand) Name() string        { return "players" }
func (c *PlayersCommand) Description() string { return "Get list of online players" }
func (c *PlayersCommand) Category() string    { return config.CategoryServer }

func (c *PlayersCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return slashDef(c.Name(), c.Description())
}

func (c *PlayersCommand) Run(ctx context.Context, inv *cmd.Invocation) error {
	players, ok, err := c.deps.API.Players(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return inv.ReplyText(ctx, "Failed to fetch player list.")
	}
	if len(players) == 0 {
		return inv.ReplyText(ctx, "No players currently online.")
	}

	names := util.ParallelMap(ctx, players, resolveWorkers, func(ctx context.Context, e gameapi.Entry[gameapi.Player]) string {
		return c.deps.Resolver.Resolve(ctx, e.Value.UniqueID.String(), e.Value.Name, inv.ScopeID)
	})

	embed := c.deps.embed(0x00FF00, fmt.Sprintf("👥 Online Players (%d)", len(players)))
	for i, e := range players {
		p := e.Value
		value := fmt.Sprintf("ID: `%s`\n📍 %s", p.UniqueID, p.Location)
		if p.Vehicle != nil {
			value += "\n🚗 Vehicle: " + p.Vehicle.Name
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: orDash(names[i]), Value: value})
	}
	return inv.ReplyEmbed(ctx, embed)
}

type PlayerCountCommand struct{ deps *Deps }

func (c *PlayerCountCommand) Name() string        { return "playercount" }
func (c *PlayerCountCommand) Description() string { return "Get the number of online players" }
func (c *PlayerCountCommand) Category() string    { return config.CategoryServer }

func (c *PlayerCountCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return slashDef(c.Name(), c.Description())
}

func (c *PlayerCountCommand) Run(ctx context.Context, inv *cmd.Invocation) error {
	count, err := c.deps.API.PlayerCount(ctx)
	if err != nil {
		return err
	}
	embed := c.deps.embed(infoColor, "👥 Player Count")
	embed.Description = fmt.Sprintf("**%d** players online", count.NumPlayers)
	return inv.ReplyEmbed(ctx, embed)
}

type VersionCommand struct{ deps *Deps }

func (c *VersionCommand) Name() string        { return "version" }
func (c *VersionCommand) Description() string { return "Get server version" }
func (c *VersionCommand) Category() string    { return config.CategoryServer }

func (c *VersionCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return slashDef(c.Name(), c.Description())
}

func (c *VersionCommand) Run(ctx context.Context, inv *cmd.Invocation) error {
	v, err := c.deps.API.Version(ctx)
	if err != nil {
		return err
	}
	embed := c.deps.embed(infoColor, "📦 Server Version")
	embed.Description = orDash(v.Version)
	return inv.ReplyEmbed(ctx, embed)
}

type DeliveriesCommand struct{ deps *Deps }

func (c *DeliveriesCommand) Name() string        { return "deliveries" }
func (c *DeliveriesCommand) Description() string { return "Get delivery site information" }
func (c *DeliveriesCommand) Category() string    { return config.CategoryServer }

func (c *DeliveriesCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return slashDef(c.Name(), c.Description())
}

func (c *DeliveriesCommand) Run(ctx context.Context, inv *cmd.Invocation) error {
	sites, ok, err := c.deps.API.DeliverySites(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return inv.ReplyText(ctx, "Failed to fetch delivery information.")
	}
	if len(sites) == 0 {
		return inv.ReplyText(ctx, "No delivery sites available.")
	}

	embed := c.deps.embed(0xFFAA00, fmt.Sprintf("📦 Delivery Sites (%d)", len(sites)))
	for i, e := range sites {
		if i >= maxEmbedSites {
			break
		}
		s := e.Value
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  orDash(s.Name),
			Value: fmt.Sprintf("📍 %s\n📦 Active Deliveries: %d\n📤 Output Items: %d", s.Location, s.Deliveries, s.OutputInventory),
		})
	}
	if len(sites) > maxEmbedSites {
		embed.Footer = &discordgo.MessageEmbedFooter{Text: fmt.Sprintf("Showing %d of %d sites", maxEmbedSites, len(sites))}
	}
	return inv.ReplyEmbed(ctx, embed)
}

type HousingCommand struct{ deps *Deps }

func (c *HousingCommand) Name() string        { return "housing" }
func (c *HousingCommand) Description() string { return "Get housing information" }
func (c *HousingCommand) Category() string    { return config.CategoryServer }

func (c *HousingCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return slashDef(c.Name(), c.Description())
}

func (c *HousingCommand) Run(ctx context.Context, inv *cmd.Invocation) error {
	houses, ok, err := c.deps.API.Housing(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return inv.ReplyText(ctx, "Failed to fetch housing information.")
	}
	if len(houses) == 0 {
		return inv.ReplyText(ctx, "No houses owned.")
	}

	embed := c.deps.embed(0x00AAFF, fmt.Sprintf("🏠 Housing (%d owned)", len(houses)))
	for _, e := range houses {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  orDash(e.Key),
			Value: fmt.Sprintf("👤 Owner ID: `%s`\n⏱️ Expires: %s", e.Value.OwnerUniqueID, e.Value.ExpireTime),
		})
	}
	return inv.ReplyEmbed(ctx, embed)
}

type BanListCommand struct{ deps *Deps }

func (c *BanListCommand) Name() string        { return "banlist" }
func (c *BanListCommand) Description() string { return "Get list of banned players" }
func (c *BanListCommand) Category() string    { return config.CategoryServer }

func (c *BanListCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return slashDef(c.Name(), c.Description())
}

func (c *BanListCommand) Run(ctx context.Context, inv *cmd.Invocation) error {
	bans, ok, err := c.deps.API.BanList(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return inv.ReplyText(ctx, "Failed to fetch ban list.")
	}
	if len(bans) == 0 {
		return inv.ReplyText(ctx, "No players are currently banned.")
	}

	embed := c.deps.embed(0xFF0000, fmt.Sprintf("🚫 Banned Players (%d)", len(bans)))
	for _, e := range bans {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   orDash(e.Value.Name),
			Value:  fmt.Sprintf("ID: `%s`", e.Value.UniqueID),
			Inline: true,
		})
	}
	return inv.ReplyEmbed(ctx, embed)
}

// RoleCommand lists the in-game holders of one role.
type RoleCommand struct {
	deps        *Deps
	name        string
	role        string
	description string
	plural      *pluralize.Client
}

func NewRoleCommand(d *Deps, name, role, description string) *RoleCommand {
	p := pluralize.NewClient()
	p.AddUncountableRule("police")
	return &RoleCommand{deps: d, name: name, role: role, description: description, plural: p}
}

func (c *RoleCommand) Name() string        { return c.name }
func (c *RoleCommand) Description() string { return c.description }
func (c *RoleCommand) Category() string    { return config.CategoryRoles }

func (c *RoleCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return slashDef(c.Name(), c.Description())
}

// Title is the pluralized, capitalized role name ("Admins", "Police").
func (c *RoleCommand) Title() string {
	p := c.plural.Plural(c.role)
	if p == "" {
		return p
	}
	return strings.ToUpper(p[:1]) + p[1:]
}

func (c *RoleCommand) Run(ctx context.Context, inv *cmd.Invocation) error {
	members, ok, err := c.deps.API.RoleList(ctx, c.role)
	if err != nil {
		return err
	}
	if !ok {
		return inv.ReplyText(ctx, fmt.Sprintf("Failed to fetch %s list.", c.role))
	}
	if len(members) == 0 {
		return inv.ReplyText(ctx, fmt.Sprintf("No %s currently assigned.", c.plural.Plural(c.role)))
	}

	emoji, color := "👮", 0x0066FF
	if c.role == "admin" {
		emoji, color = "👑", 0xFFD700
	}
	embed := c.deps.embed(color, fmt.Sprintf("%s %s (%d)", emoji, c.Title(), len(members)))
	for _, e := range members {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   orDash(e.Value.Nickname),
			Value:  fmt.Sprintf("ID: `%s`", e.Value.UniqueID),
			Inline: true,
		})
	}
	return inv.ReplyEmbed(ctx, embed)
}

// orDash keeps embed names and values non-empty, which Discord requires.
func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
