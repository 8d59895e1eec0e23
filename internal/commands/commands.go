// Package commands implements the bot's command handlers. Each handler makes
// at most one logical call to the game API and renders the result as an embed.
package commands

import (
	"context"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/motortown-bot/internal/auth"
	"github.com/keshon/motortown-bot/internal/gameapi"
	"github.com/keshon/motortown-bot/internal/identity"
	"github.com/keshon/motortown-bot/pkg/cmd"
)

// GameAPI is the subset of the game API client the handlers use.
type GameAPI interface {
	BaseURL() string
	PlayerCount(ctx context.Context) (*gameapi.PlayerCount, error)
	Version(ctx context.Context) (*gameapi.VersionInfo, error)
	Players(ctx context.Context) (gameapi.Collection[gameapi.Player], bool, error)
	DeliverySites(ctx context.Context) (gameapi.Collection[gameapi.DeliverySite], bool, error)
	Housing(ctx context.Context) (gameapi.Collection[gameapi.House], bool, error)
	BanList(ctx context.Context) (gameapi.Collection[gameapi.BannedPlayer], bool, error)
	RoleList(ctx context.Context, role string) (gameapi.Collection[gameapi.RoleMember], bool, error)
	Kick(ctx context.Context, uniqueID string) (*gameapi.Result, error)
	Ban(ctx context.Context, uniqueID string, hours int64, reason string) (*gameapi.Result, error)
	Unban(ctx context.Context, uniqueID string) (*gameapi.Result, error)
	Announce(ctx context.Context, message string) (*gameapi.Result, error)
	ServerChat(ctx context.Context, message, color string) (*gameapi.Result, error)
}

// Deps is everything the handlers need.
type Deps struct {
	API       GameAPI
	Admins    *auth.AdminSet
	Gate      *auth.Gate
	Resolver  *identity.Resolver
	Directory identity.Directory

	// APIHost is shown in status and help footers.
	APIHost string
	// TextPrefix is the prefix of the text surface, advertised in help.
	TextPrefix string

	JoinServerName     string
	JoinServerPassword string

	// Now stamps embeds; time.Now when nil.
	Now func() time.Time
}

func (d *Deps) timestamp() string {
	now := time.Now
	if d.Now != nil {
		now = d.Now
	}
	return now().Format(time.RFC3339)
}

func (d *Deps) embed(color int, title string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:     title,
		Color:     color,
		Timestamp: d.timestamp(),
	}
}

// All returns every handler, unwrapped.
func All(d *Deps, reg *cmd.Registry) []cmd.Command {
	return []cmd.Command{
		&HelpCommand{deps: d, registry: reg},
		&JoinCommand{deps: d},
		&StatusCommand{deps: d},
		&PlayersCommand{deps: d},
		&PlayerCountCommand{deps: d},
		&VersionCommand{deps: d},
		&DeliveriesCommand{deps: d},
		&HousingCommand{deps: d},
		&BanListCommand{deps: d},
		NewRoleCommand(d, "admins", "admin", "Get list of server admins"),
		NewRoleCommand(d, "police", "police", "Get list of server police"),
		&KickCommand{deps: d},
		&BanCommand{deps: d},
		&UnbanCommand{deps: d},
		&AnnounceCommand{deps: d},
		&ServerChatCommand{deps: d},
		&ListAdminsCommand{deps: d},
		&AddAdminCommand{deps: d},
		&RemoveAdminCommand{deps: d},
		&PlayerMappingCommand{deps: d},
		&TestMappingCommand{deps: d},
	}
}

// Register adds every handler to reg, wrapped in mws.
func Register(reg *cmd.Registry, d *Deps, mws ...cmd.Middleware) {
	for _, c := range All(d, reg) {
		reg.Register(cmd.Apply(c, mws...))
	}
}

func slashDef(name, description string, opts ...*discordgo.ApplicationCommandOption) *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        name,
		Description: description,
		Type:        discordgo.ChatApplicationCommand,
		Options:     opts,
	}
}

func stringOpt(name, description string, required bool) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        name,
		Description: description,
		Required:    required,
	}
}

func stringArg(inv *cmd.Invocation, name string) string {
	s, _ := inv.Args.String(name)
	return s
}
