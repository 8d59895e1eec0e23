package command

import (
	"context"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keshon/motortown-bot/pkg/cmd"
)

type fakeEditor struct {
	edits []*discordgo.WebhookEdit
}

func (f *fakeEditor) InteractionResponseEdit(_ *discordgo.Interaction, edit *discordgo.WebhookEdit, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.edits = append(f.edits, edit)
	return &discordgo.Message{}, nil
}

func slashEvent(name, guildID string, opts ...*discordgo.ApplicationCommandInteractionDataOption) *discordgo.InteractionCreate {
	return &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		Type:    discordgo.InteractionApplicationCommand,
		GuildID: guildID,
		Member:  &discordgo.Member{User: &discordgo.User{ID: "u1", Username: "admin"}},
		Data: discordgo.ApplicationCommandInteractionData{
			Name:    name,
			Options: opts,
			Resolved: &discordgo.ApplicationCommandInteractionDataResolved{
				Users: map[string]*discordgo.User{
					"123456789012345678": {ID: "123456789012345678", Username: "jerry", Discriminator: "0420"},
				},
			},
		},
	}}
}

func strOpt(name, v string) *discordgo.ApplicationCommandInteractionDataOption {
	return &discordgo.ApplicationCommandInteractionDataOption{Name: name, Type: discordgo.ApplicationCommandOptionString, Value: v}
}

func intOpt(name string, v float64) *discordgo.ApplicationCommandInteractionDataOption {
	return &discordgo.ApplicationCommandInteractionDataOption{Name: name, Type: discordgo.ApplicationCommandOptionInteger, Value: v}
}

func userOpt(name, id string) *discordgo.ApplicationCommandInteractionDataOption {
	return &discordgo.ApplicationCommandInteractionDataOption{Name: name, Type: discordgo.ApplicationCommandOptionUser, Value: id}
}

func TestFromInteraction(t *testing.T) {
	ed := &fakeEditor{}
	inv := FromInteraction(ed, slashEvent("ban", "g1", strOpt("unique_id", "42"), intOpt("hours", 24), strOpt("reason", "Cheating engine")))

	assert.Equal(t, "ban", inv.Name)
	assert.Equal(t, "u1", inv.InvokerID)
	assert.Equal(t, "g1", inv.ScopeID)
	assert.Equal(t, cmd.SurfaceSlash, inv.Surface)
	assert.Equal(t, "/", inv.Prefix)

	id, ok := inv.Args.String("unique_id")
	require.True(t, ok)
	assert.Equal(t, "42", id)
	hours, ok := inv.Args.Integer("hours")
	require.True(t, ok)
	assert.Equal(t, int64(24), hours)
	reason, ok := inv.Args.String("reason")
	require.True(t, ok)
	assert.Equal(t, "Cheating engine", reason)
}

func TestSlashAndTextArgumentsAgree(t *testing.T) {
	slash := FromInteraction(&fakeEditor{}, slashEvent("ban", "", strOpt("unique_id", "42"), intOpt("hours", 24), strOpt("reason", "Cheating engine")))
	text, ok := FromMessage(&fakeSender{}, nil, "!!", &discordgo.Message{Content: "!!ban 42 24 Cheating engine", Author: &discordgo.User{ID: "u1"}})
	require.True(t, ok)

	assert.Equal(t, slash.Name, text.Name)
	for _, name := range []string{"unique_id", "reason"} {
		sv, sok := slash.Args.String(name)
		tv, tok := text.Args.String(name)
		assert.Equal(t, sok, tok, name)
		assert.Equal(t, sv, tv, name)
	}
	sh, _ := slash.Args.Integer("hours")
	th, _ := text.Args.Integer("hours")
	assert.Equal(t, sh, th)
}

func TestSlashArguments_TypeMismatchIsAbsent(t *testing.T) {
	inv := FromInteraction(&fakeEditor{}, slashEvent("ban", "", intOpt("unique_id", 42), strOpt("hours", "24")))

	_, ok := inv.Args.String("unique_id")
	assert.False(t, ok)
	_, ok = inv.Args.Integer("hours")
	assert.False(t, ok)
	_, ok = inv.Args.User("unique_id")
	assert.False(t, ok)
	_, ok = inv.Args.String("missing")
	assert.False(t, ok)
}

func TestSlashArguments_User(t *testing.T) {
	inv := FromInteraction(&fakeEditor{}, slashEvent("addadmin", "g1", userOpt("user", "123456789012345678")))
	u, ok := inv.Args.User("user")
	require.True(t, ok)
	assert.Equal(t, "jerry#0420", u.Tag)

	inv = FromInteraction(&fakeEditor{}, slashEvent("addadmin", "g1", userOpt("user", "555")))
	u, ok = inv.Args.User("user")
	require.True(t, ok)
	assert.Equal(t, "555", u.ID, "unresolved users keep their id")
}

func TestFromInteraction_ReplyEditsDeferredResponse(t *testing.T) {
	ed := &fakeEditor{}
	inv := FromInteraction(ed, slashEvent("status", ""))

	embed := &discordgo.MessageEmbed{Title: "Status"}
	require.NoError(t, inv.Reply(context.Background(), cmd.Response{Embeds: []*discordgo.MessageEmbed{embed}}))
	require.NoError(t, inv.ReplyText(context.Background(), "plain"))

	require.Len(t, ed.edits, 2)
	require.NotNil(t, ed.edits[0].Embeds)
	assert.Equal(t, []*discordgo.MessageEmbed{embed}, *ed.edits[0].Embeds)
	assert.Equal(t, "plain", *ed.edits[1].Content)
	assert.Nil(t, ed.edits[1].Embeds)
}

func TestInvokerOf_DM(t *testing.T) {
	i := &discordgo.Interaction{User: &discordgo.User{ID: "dm-user"}}
	assert.Equal(t, "dm-user", InvokerOf(i).ID)
}
