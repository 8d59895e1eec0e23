package middleware

import (
	"context"
	"errors"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/keshon/motortown-bot/internal/command"
	"github.com/keshon/motortown-bot/pkg/cmd"
)

type kickCommand struct {
	ran int
	err error
}

func (k *kickCommand) Name() string        { return "kick" }
func (k *kickCommand) Description() string { return "Kick a player" }
func (k *kickCommand) Usage() (string, string) {
	return "kick <unique_id>", "kick 12345"
}
func (k *kickCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name: "kick",
		Options: []*discordgo.ApplicationCommandOption{
			{Name: "unique_id", Type: discordgo.ApplicationCommandOptionString, Required: true},
		},
	}
}
func (k *kickCommand) Run(context.Context, *cmd.Invocation) error {
	k.ran++
	return k.err
}

type replies struct{ got []string }

func (r *replies) reply(_ context.Context, resp cmd.Response) error {
	r.got = append(r.got, resp.Content)
	return nil
}

func textInvocation(r *replies, args ...string) *cmd.Invocation {
	inv := cmd.NewInvocation("kick", "u1", "g1", cmd.SurfaceText, command.NewTextArguments("kick", args, "g1", nil), r.reply)
	inv.Prefix = "!!"
	return inv
}

func TestWithRequiredArgs_MissingOnText(t *testing.T) {
	k := &kickCommand{}
	c := cmd.Apply(k, WithRequiredArgs())

	var r replies
	require.NoError(t, c.Run(context.Background(), textInvocation(&r)))
	assert.Zero(t, k.ran)
	assert.Equal(t, []string{"❌ Usage: `!!kick <unique_id>`\nExample: `!!kick 12345`"}, r.got)
}

func TestWithRequiredArgs_Present(t *testing.T) {
	k := &kickCommand{}
	c := cmd.Apply(k, WithRequiredArgs())

	var r replies
	require.NoError(t, c.Run(context.Background(), textInvocation(&r, "42")))
	assert.Equal(t, 1, k.ran)
	assert.Empty(t, r.got)
}

func TestWithRequiredArgs_SlashUntouched(t *testing.T) {
	k := &kickCommand{}
	c := cmd.Apply(k, WithRequiredArgs())

	require.NoError(t, c.Run(context.Background(), cmd.NewInvocation("kick", "u1", "", cmd.SurfaceSlash, nil, nil)))
	assert.Equal(t, 1, k.ran)
}

func TestWithCommandLogger(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	k := &kickCommand{}
	c := cmd.Apply(k, WithCommandLogger(zap.New(core)), WithRequiredArgs())

	var r replies
	require.NoError(t, c.Run(context.Background(), textInvocation(&r, "42")))
	k.err = errors.New("boom")
	require.EqualError(t, c.Run(context.Background(), textInvocation(&r, "42")), "boom")

	entries := logs.AllUntimed()
	require.Len(t, entries, 2)
	assert.Equal(t, "command handled", entries[0].Message)
	assert.Equal(t, "kick", entries[0].ContextMap()["command"])
	assert.Equal(t, "text", entries[0].ContextMap()["surface"])
	assert.Equal(t, "g1", entries[0].ContextMap()["scope"])
	assert.Equal(t, "command returned error", entries[1].Message)

	k.err = nil
	require.NoError(t, c.Run(context.Background(), cmd.NewInvocation("kick", "u1", "", cmd.SurfaceSlash, nil, nil)))
	require.Len(t, logs.AllUntimed(), 3)
	assert.NotContains(t, logs.AllUntimed()[2].ContextMap(), "scope", "direct messages have no scope")

	_, isKick := cmd.Root(c).(*kickCommand)
	assert.True(t, isKick, "metadata stays reachable through Root")
}
