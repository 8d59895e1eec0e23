package discord

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keshon/motortown-bot/internal/auth"
	"github.com/keshon/motortown-bot/internal/command"
	"github.com/keshon/motortown-bot/internal/identity"
	"github.com/keshon/motortown-bot/pkg/cmd"
	"github.com/keshon/motortown-bot/pkg/retrylimit"
)

const (
	adminID  = "111111111111111111"
	playerID = "222222222222222222"
	selfID   = "999000999000999000"
)

type fakeSession struct {
	mu          sync.Mutex
	responses   []*discordgo.InteractionResponse
	edits       []string
	sent        []*discordgo.MessageSend
	overwrites  []string
	nicknames   map[string]string
	status      string
	overwriteFn func() error
}

func (f *fakeSession) InteractionRespond(_ *discordgo.Interaction, resp *discordgo.InteractionResponse, _ ...discordgo.RequestOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses = append(f.responses, resp)
	return nil
}

func (f *fakeSession) InteractionResponseEdit(_ *discordgo.Interaction, edit *discordgo.WebhookEdit, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.edits = append(f.edits, *edit.Content)
	return &discordgo.Message{}, nil
}

func (f *fakeSession) ChannelMessageSendComplex(_ string, data *discordgo.MessageSend, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, data)
	return &discordgo.Message{}, nil
}

func (f *fakeSession) ApplicationCommandBulkOverwrite(appID string, _ string, cmds []*discordgo.ApplicationCommand, _ ...discordgo.RequestOption) ([]*discordgo.ApplicationCommand, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.overwrites = append(f.overwrites, appID)
	if f.overwriteFn != nil {
		if err := f.overwriteFn(); err != nil {
			return nil, err
		}
	}
	return cmds, nil
}

func (f *fakeSession) GuildMemberNickname(guildID, userID, nickname string, _ ...discordgo.RequestOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.nicknames == nil {
		f.nicknames = make(map[string]string)
	}
	f.nicknames[guildID] = userID + "=" + nickname
	return nil
}

func (f *fakeSession) UpdateGameStatus(_ int, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status = name
	return nil
}

type fakeState struct {
	guilds  map[string]string
	members map[string]*discordgo.Member
}

func (s *fakeState) Guild(guildID string) (*discordgo.Guild, error) {
	name, ok := s.guilds[guildID]
	if !ok {
		return nil, discordgo.ErrStateNotFound
	}
	return &discordgo.Guild{ID: guildID, Name: name}, nil
}

func (s *fakeState) Member(guildID, userID string) (*discordgo.Member, error) {
	m, ok := s.members[guildID+"/"+userID]
	if !ok {
		return nil, discordgo.ErrStateNotFound
	}
	return m, nil
}

type fakeDirectory struct {
	users   map[string]identity.Record
	members map[string]identity.Member
}

func (d *fakeDirectory) User(_ context.Context, id string) (*identity.Record, error) {
	r, ok := d.users[id]
	if !ok {
		return nil, errors.New("Unknown User")
	}
	return &r, nil
}

func (d *fakeDirectory) Member(_ context.Context, scopeID, userID string) (*identity.Member, error) {
	m, ok := d.members[scopeID+"/"+userID]
	if !ok {
		return nil, errors.New("Unknown Member")
	}
	return &m, nil
}

type slashStub struct {
	name string
	runs int
	mu   sync.Mutex
}

func (s *slashStub) Name() string        { return s.name }
func (s *slashStub) Description() string { return "stub " + s.name }
func (s *slashStub) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{Name: s.name, Description: s.Description()}
}
func (s *slashStub) Run(ctx context.Context, inv *cmd.Invocation) error {
	s.mu.Lock()
	s.runs++
	s.mu.Unlock()
	return inv.ReplyText(ctx, s.name+" in "+inv.ScopeName)
}

type fixture struct {
	bot     *Bot
	session *fakeSession
	state   *fakeState
	kick    *slashStub
	players *slashStub
}

func newFixture(t *testing.T, opts Options) *fixture {
	t.Helper()
	f := &fixture{
		session: &fakeSession{},
		state: &fakeState{
			guilds: map[string]string{"g1": "Bjs Discord", "g2": "Other"},
			members: map[string]*discordgo.Member{
				"g2/" + selfID: {User: &discordgo.User{ID: selfID}, Nick: "MT Bot"},
			},
		},
		kick:    &slashStub{name: "kick"},
		players: &slashStub{name: "players"},
	}

	reg := cmd.NewRegistry()
	reg.Register(f.kick)
	reg.Register(f.players)
	gate := auth.NewGate(auth.NewAdminSet([]string{adminID}))

	opts.Registry = reg
	opts.Dispatcher = command.NewDispatcher(reg, gate, nil)
	if opts.Prefix == "" {
		opts.Prefix = "!!"
	}
	f.bot = newBot(f.session, f.state, opts)
	f.bot.limiter = retrylimit.NewAdaptiveLimiter(1000, 1000, 1000, 0, 1)
	f.bot.retry.InitialDelay = time.Millisecond
	f.bot.retry.RateLimitDelay = time.Millisecond
	f.bot.retry.Jitter = false
	return f
}

func ready() *discordgo.Ready {
	return &discordgo.Ready{
		User:   &discordgo.User{ID: selfID, Username: "mtbot"},
		Guilds: []*discordgo.Guild{{ID: "g1"}, {ID: "g2"}},
	}
}

func TestOnReady(t *testing.T) {
	f := newFixture(t, Options{ClientID: "app1", Nickname: "MT Bot", Activity: "Motortown"})

	f.bot.onReady(ready())
	f.bot.jobs.Wait()

	assert.Equal(t, "Motortown", f.session.status)
	assert.Equal(t, []string{"app1"}, f.session.overwrites)
	// g2 already carries the nickname
	assert.Equal(t, map[string]string{"g1": "@me=MT Bot"}, f.session.nicknames)

	// a reconnect with unchanged definitions does not re-register
	f.bot.onReady(ready())
	f.bot.jobs.Wait()
	assert.Equal(t, []string{"app1"}, f.session.overwrites)
}

func TestOnReadyFallsBackToSessionUser(t *testing.T) {
	f := newFixture(t, Options{Activity: "Motortown"})

	f.bot.onReady(ready())
	f.bot.jobs.Wait()

	assert.Equal(t, []string{selfID}, f.session.overwrites)
	assert.Empty(t, f.session.nicknames)
}

func TestRegisterCommandsRetriesServerErrors(t *testing.T) {
	f := newFixture(t, Options{})
	calls := 0
	f.session.overwriteFn = func() error {
		calls++
		if calls == 1 {
			return &discordgo.RESTError{Response: &http.Response{StatusCode: http.StatusBadGateway}}
		}
		return nil
	}

	require.NoError(t, f.bot.registerCommands(context.Background(), "app1"))
	assert.Equal(t, 2, calls)
}

func TestRegisterCommandsGivesUpOnClientErrors(t *testing.T) {
	f := newFixture(t, Options{})
	f.session.overwriteFn = func() error {
		return &discordgo.RESTError{Response: &http.Response{StatusCode: http.StatusForbidden}}
	}

	err := f.bot.registerCommands(context.Background(), "app1")
	require.Error(t, err)
	assert.Len(t, f.session.overwrites, 1)

	// a failed registration is attempted again on the next ready
	f.session.overwriteFn = nil
	require.NoError(t, f.bot.registerCommands(context.Background(), "app1"))
	assert.Len(t, f.session.overwrites, 2)
}

func TestOnGuildCreateSetsNickname(t *testing.T) {
	f := newFixture(t, Options{Nickname: "MT Bot"})

	f.bot.onGuildCreate(&discordgo.GuildCreate{Guild: &discordgo.Guild{ID: "g3", Name: "New"}})
	f.bot.onGuildCreate(&discordgo.GuildCreate{Guild: &discordgo.Guild{ID: "g4", Unavailable: true}})
	f.bot.jobs.Wait()

	assert.Equal(t, map[string]string{"g3": "@me=MT Bot"}, f.session.nicknames)
}

func interaction(name, guildID, userID string) *discordgo.InteractionCreate {
	return &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		Type:    discordgo.InteractionApplicationCommand,
		GuildID: guildID,
		Member:  &discordgo.Member{User: &discordgo.User{ID: userID}},
		Data:    discordgo.ApplicationCommandInteractionData{Name: name},
	}}
}

func TestInteractionDeniedIsEphemeral(t *testing.T) {
	f := newFixture(t, Options{})

	f.bot.onInteractionCreate(interaction("kick", "g1", playerID))

	require.Len(t, f.session.responses, 1)
	resp := f.session.responses[0]
	assert.Equal(t, discordgo.InteractionResponseChannelMessageWithSource, resp.Type)
	assert.Equal(t, command.PermissionDenied, resp.Data.Content)
	assert.Equal(t, discordgo.MessageFlagsEphemeral, resp.Data.Flags)
	assert.Empty(t, f.session.edits)
	assert.Zero(t, f.kick.runs)
}

func TestInteractionDefersThenDispatches(t *testing.T) {
	f := newFixture(t, Options{})

	f.bot.onInteractionCreate(interaction("kick", "g1", adminID))

	require.Len(t, f.session.responses, 1)
	assert.Equal(t, discordgo.InteractionResponseDeferredChannelMessageWithSource, f.session.responses[0].Type)
	assert.Equal(t, []string{"kick in Bjs Discord"}, f.session.edits)
	assert.Equal(t, 1, f.kick.runs)
}

func TestInteractionUnknownCommand(t *testing.T) {
	f := newFixture(t, Options{})

	f.bot.onInteractionCreate(interaction("nope", "g1", playerID))

	require.Len(t, f.session.responses, 1)
	assert.Equal(t, discordgo.InteractionResponseDeferredChannelMessageWithSource, f.session.responses[0].Type)
	assert.Equal(t, []string{"Unknown command."}, f.session.edits)
}

func TestInteractionIgnoresComponents(t *testing.T) {
	f := newFixture(t, Options{})
	i := interaction("players", "g1", adminID)
	i.Type = discordgo.InteractionMessageComponent

	f.bot.onInteractionCreate(i)

	assert.Empty(t, f.session.responses)
}

func message(content, authorID string, bot bool) *discordgo.MessageCreate {
	return &discordgo.MessageCreate{Message: &discordgo.Message{
		ID:        "m1",
		ChannelID: "c1",
		GuildID:   "g1",
		Content:   content,
		Author:    &discordgo.User{ID: authorID, Bot: bot},
	}}
}

func TestOnMessageCreate(t *testing.T) {
	f := newFixture(t, Options{})

	f.bot.onMessageCreate(message("!!players", selfID, true))
	f.bot.onMessageCreate(message("players", playerID, false))
	assert.Empty(t, f.session.sent)

	f.bot.onMessageCreate(message("!!PLAYERS", playerID, false))
	require.Len(t, f.session.sent, 1)
	assert.Equal(t, "players in Bjs Discord", f.session.sent[0].Content)
	require.NotNil(t, f.session.sent[0].Reference)
	assert.Equal(t, "m1", f.session.sent[0].Reference.MessageID)

	f.bot.onMessageCreate(message("!!kick 123", playerID, false))
	require.Len(t, f.session.sent, 2)
	assert.Equal(t, command.PermissionDenied, f.session.sent[1].Content)
	assert.Zero(t, f.kick.runs)

	f.bot.onMessageCreate(message("!!", playerID, false))
	require.Len(t, f.session.sent, 3)
	assert.Equal(t, "❓ Unknown command: `!!`\nUse `!!help` to see available commands.", f.session.sent[2].Content)
}

func TestMappingReport(t *testing.T) {
	table := identity.NewTable(
		identity.NewMapping("76561198000000001", "Jerry"),
		identity.NewMapping("76561198000000002", adminID),
		identity.NewMapping("76561198000000003", playerID),
		identity.NewMapping("76561198000000004", "333333333333333333"),
	)
	dir := &fakeDirectory{
		users: map[string]identity.Record{
			adminID:  {ID: adminID, Username: "boss", Tag: "boss"},
			playerID: {ID: playerID, Username: "jerry", Tag: "jerry#0420"},
		},
		members: map[string]identity.Member{
			"g1/" + adminID: {User: identity.Record{ID: adminID, Username: "boss"}, Nick: "Big Boss"},
			"g2/" + adminID: {User: identity.Record{ID: adminID, Username: "boss"}},
		},
	}
	f := newFixture(t, Options{Resolver: identity.NewResolver(table, dir, nil)})

	got := f.bot.mappingReport(context.Background(), []string{"g1", "g2"})

	want := []reportLine{
		{UniqueID: "76561198000000001", Value: "Jerry", Note: "custom name"},
		{UniqueID: "76561198000000002", Value: "boss", Note: "discord user"},
		{UniqueID: "76561198000000002", Value: "boss", Guild: "Bjs Discord", Note: `nickname "Big Boss"`},
		{UniqueID: "76561198000000002", Value: "boss", Guild: "Other", Note: "no nickname, will show boss"},
		{UniqueID: "76561198000000003", Value: "jerry#0420", Note: "discord user"},
		{UniqueID: "76561198000000003", Value: "jerry#0420", Guild: "Bjs Discord", Note: "user not a member of this server"},
		{UniqueID: "76561198000000003", Value: "jerry#0420", Guild: "Other", Note: "user not a member of this server"},
		{UniqueID: "76561198000000003", Value: "jerry#0420", Note: "user not found in any guild, will show jerry#0420"},
		{UniqueID: "76561198000000004", Value: "333333333333333333", Note: "error: Unknown User"},
	}
	assert.Equal(t, want, got)
}

func TestMappingReportStopsOnCancel(t *testing.T) {
	table := identity.NewTable(identity.NewMapping("1", adminID), identity.NewMapping("2", "Jerry"))
	f := newFixture(t, Options{Resolver: identity.NewResolver(table, &fakeDirectory{}, nil)})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Empty(t, f.bot.mappingReport(ctx, []string{"g1"}))
}

func TestOnReadyLeavesRunningMappingReport(t *testing.T) {
	table := identity.NewTable(identity.NewMapping("1", "Jerry"))
	f := newFixture(t, Options{Resolver: identity.NewResolver(table, &fakeDirectory{}, nil)})

	stopped := make(chan struct{})
	require.NoError(t, f.bot.jobs.StartAsync("mapping-report", func(ctx context.Context) error {
		<-ctx.Done()
		close(stopped)
		return ctx.Err()
	}))

	f.bot.onReady(ready())
	select {
	case <-stopped:
		t.Fatal("running report was replaced")
	case <-time.After(20 * time.Millisecond):
	}
	assert.Contains(t, f.bot.jobs.List(), "mapping-report")

	f.bot.jobs.Shutdown()
	<-stopped
}

func TestOnGuildDeleteStopsNickname(t *testing.T) {
	f := newFixture(t, Options{Nickname: "MT Bot"})

	stopped := make(chan error, 1)
	f.bot.jobs.Restart(nicknameJob("g3"), func(ctx context.Context) error {
		<-ctx.Done()
		stopped <- ctx.Err()
		return ctx.Err()
	})

	f.bot.onGuildDelete(&discordgo.GuildDelete{Guild: &discordgo.Guild{ID: "g3"}})
	f.bot.onGuildDelete(&discordgo.GuildDelete{})

	select {
	case err := <-stopped:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("nickname job still running")
	}
	assert.NotContains(t, f.bot.jobs.List(), nicknameJob("g3"))
}

func TestRestStatus(t *testing.T) {
	wrapped := errors.Join(errors.New("ctx"), &discordgo.RESTError{Response: &http.Response{StatusCode: 429}})
	assert.Equal(t, 429, restStatus(wrapped))
	assert.Equal(t, 0, restStatus(&discordgo.RESTError{}))
	assert.Equal(t, 0, restStatus(errors.New("dial tcp: refused")))
}

func TestHashCommandsStable(t *testing.T) {
	defs := []*discordgo.ApplicationCommand{{
		Name:        "ban",
		Description: "Ban a player",
		Options: []*discordgo.ApplicationCommandOption{
			{Type: discordgo.ApplicationCommandOptionString, Name: "unique_id", Description: "id", Required: true},
		},
	}}
	a, err := hashCommands(defs)
	require.NoError(t, err)

	withID := *defs[0]
	withID.ID = "runtime-id"
	b, err := hashCommands([]*discordgo.ApplicationCommand{&withID})
	require.NoError(t, err)
	assert.Equal(t, a, b)

	changed := *defs[0]
	changed.Description = "Ban a player from the server"
	c, err := hashCommands([]*discordgo.ApplicationCommand{&changed})
	require.NoError(t, err)
	assert.NotEqual(t, a, c)
}
