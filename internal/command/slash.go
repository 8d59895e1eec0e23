package command

import (
	"context"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/motortown-bot/internal/identity"
	"github.com/keshon/motortown-bot/pkg/cmd"
)

// InteractionEditor is the part of the Discord session used to answer a deferred interaction.
type InteractionEditor interface {
	InteractionResponseEdit(interaction *discordgo.Interaction, newresp *discordgo.WebhookEdit, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// SlashArguments reads the typed options of an application command interaction.
type SlashArguments struct {
	options  map[string]*discordgo.ApplicationCommandInteractionDataOption
	resolved *discordgo.ApplicationCommandInteractionDataResolved
}

// NewSlashArguments indexes the top-level options of data by name.
func NewSlashArguments(data discordgo.ApplicationCommandInteractionData) SlashArguments {
	opts := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(data.Options))
	for _, opt := range data.Options {
		opts[opt.Name] = opt
	}
	return SlashArguments{options: opts, resolved: data.Resolved}
}

func (a SlashArguments) String(name string) (string, bool) {
	opt, ok := a.options[name]
	if !ok || opt.Type != discordgo.ApplicationCommandOptionString {
		return "", false
	}
	s, ok := opt.Value.(string)
	return s, ok
}

func (a SlashArguments) Integer(name string) (int64, bool) {
	opt, ok := a.options[name]
	if !ok || opt.Type != discordgo.ApplicationCommandOptionInteger {
		return 0, false
	}
	// Discord delivers integers as JSON numbers.
	switch v := opt.Value.(type) {
	case float64:
		return int64(v), true
	case int64:
		return v, true
	case int:
		return int64(v), true
	default:
		return 0, false
	}
}

func (a SlashArguments) User(name string) (*cmd.User, bool) {
	opt, ok := a.options[name]
	if !ok || opt.Type != discordgo.ApplicationCommandOptionUser {
		return nil, false
	}
	id, ok := opt.Value.(string)
	if !ok || id == "" {
		return nil, false
	}
	if a.resolved != nil {
		if u, ok := a.resolved.Users[id]; ok && u != nil {
			return userFromDiscord(u), true
		}
	}
	return &cmd.User{ID: id, Username: id, Tag: id}, true
}

// InvokerOf returns the user behind an interaction, in a guild or a DM.
func InvokerOf(i *discordgo.Interaction) *discordgo.User {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User
	}
	return i.User
}

// FromInteraction normalizes an application command interaction. The reply
// edits the interaction's deferred response, so the caller must defer first.
func FromInteraction(s InteractionEditor, i *discordgo.InteractionCreate) *cmd.Invocation {
	data := i.ApplicationCommandData()

	invokerID := ""
	if u := InvokerOf(i.Interaction); u != nil {
		invokerID = u.ID
	}

	reply := func(ctx context.Context, resp cmd.Response) error {
		edit := &discordgo.WebhookEdit{}
		content := resp.Content
		edit.Content = &content
		if len(resp.Embeds) > 0 {
			embeds := resp.Embeds
			edit.Embeds = &embeds
		}
		_, err := s.InteractionResponseEdit(i.Interaction, edit, discordgo.WithContext(ctx))
		return err
	}

	return cmd.NewInvocation(data.Name, invokerID, i.GuildID, cmd.SurfaceSlash, NewSlashArguments(data), reply)
}

func userFromDiscord(u *discordgo.User) *cmd.User {
	return &cmd.User{ID: u.ID, Username: u.Username, Tag: identity.Tag(u)}
}
