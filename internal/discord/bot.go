// Package discord owns the Discord session lifecycle: event handlers, slash
// command registration, presence and nickname upkeep, and the startup report
// of how every mapped player resolves.
package discord

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/keshon/motortown-bot/internal/command"
	"github.com/keshon/motortown-bot/internal/identity"
	"github.com/keshon/motortown-bot/pkg/cmd"
	"github.com/keshon/motortown-bot/pkg/jobmgr"
	"github.com/keshon/motortown-bot/pkg/retrylimit"
)

// Intents are the gateway intents the bot needs: guild metadata, guild
// messages and their content for the text surface.
const Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages | discordgo.IntentsMessageContent

const eventTimeout = time.Minute

// Session is the part of *discordgo.Session the bot calls.
type Session interface {
	command.InteractionEditor
	command.MessageSender
	InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
	ApplicationCommandBulkOverwrite(appID string, guildID string, commands []*discordgo.ApplicationCommand, options ...discordgo.RequestOption) ([]*discordgo.ApplicationCommand, error)
	GuildMemberNickname(guildID, userID, nickname string, options ...discordgo.RequestOption) error
	UpdateGameStatus(idle int, name string) error
}

// State is the part of *discordgo.State the bot reads.
type State interface {
	Guild(guildID string) (*discordgo.Guild, error)
	Member(guildID, userID string) (*discordgo.Member, error)
}

// Options configures a Bot.
type Options struct {
	// ClientID is the application id slash commands are registered under.
	// Empty means the id of the logged-in bot user.
	ClientID string
	Nickname string
	Activity string
	Prefix   string

	Registry   *cmd.Registry
	Dispatcher *command.Dispatcher
	Resolver   *identity.Resolver
	Logger     *zap.Logger
}

// Bot is a Discord bot
type Bot struct {
	dg    *discordgo.Session
	api   Session
	state State
	opts  Options
	log   *zap.Logger

	limiter *retrylimit.AdaptiveLimiter
	retry   retrylimit.RetryConfig

	ctx  context.Context
	jobs *jobmgr.Manager

	mu         sync.Mutex
	selfID     string
	registered map[string]string
}

// New wraps an unopened session. The session's intents are set here.
func New(dg *discordgo.Session, opts Options) *Bot {
	dg.Identify.Intents = Intents
	b := newBot(dg, dg.State, opts)
	b.dg = dg
	return b
}

func newBot(api Session, state State, opts Options) *Bot {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	retry := retrylimit.DefaultRetryConfig()
	retry.StatusOf = restStatus

	b := &Bot{
		api:        api,
		state:      state,
		opts:       opts,
		log:        log,
		limiter:    retrylimit.NewAdaptiveLimiter(2, 1, 5, 1, 0.5),
		retry:      retry,
		ctx:        context.Background(),
		registered: make(map[string]string),
	}
	b.jobs = jobmgr.NewManager(b.ctx, b.reportJob)
	return b
}

// Run opens the gateway connection and blocks until ctx is done.
func (b *Bot) Run(ctx context.Context) error {
	if b.dg == nil {
		return errors.New("bot has no session")
	}
	b.ctx = ctx
	b.jobs = jobmgr.NewManager(ctx, b.reportJob)

	b.dg.AddHandler(func(_ *discordgo.Session, r *discordgo.Ready) { b.onReady(r) })
	b.dg.AddHandler(func(_ *discordgo.Session, g *discordgo.GuildCreate) { b.onGuildCreate(g) })
	b.dg.AddHandler(func(_ *discordgo.Session, g *discordgo.GuildDelete) { b.onGuildDelete(g) })
	b.dg.AddHandler(func(_ *discordgo.Session, i *discordgo.InteractionCreate) { b.onInteractionCreate(i) })
	b.dg.AddHandler(func(_ *discordgo.Session, m *discordgo.MessageCreate) { b.onMessageCreate(m) })

	if err := b.dg.Open(); err != nil {
		return fmt.Errorf("failed to open Discord session: %w", err)
	}

	<-ctx.Done()
	b.log.Info("shutdown signal received, cleaning up", zap.String("jobs", b.jobs.Status()))
	b.jobs.Shutdown()
	if err := b.dg.Close(); err != nil {
		return fmt.Errorf("close Discord session: %w", err)
	}
	return nil
}

func (b *Bot) reportJob(name string, err error) {
	switch {
	case err == nil:
		b.log.Debug("background job finished", zap.String("job", name))
	case errors.Is(err, context.Canceled):
		b.log.Debug("background job cancelled", zap.String("job", name))
	default:
		b.log.Warn("background job failed", zap.String("job", name), zap.Error(err))
	}
}

// withRetry paces fn through the shared limiter and retries transient failures.
func (b *Bot) withRetry(ctx context.Context, op string, fn func() error) error {
	cfg := b.retry
	cfg.OnRetry = func(attempt int, err error, delay time.Duration) {
		b.log.Warn("discord request failed, retrying",
			zap.String("op", op),
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay),
			zap.Float64("rate", b.limiter.CurrentLimit()),
			zap.Error(err))
	}
	return retrylimit.WithRetryConfig(ctx, fn, b.limiter, cfg)
}

func restStatus(err error) int {
	var rest *discordgo.RESTError
	if errors.As(err, &rest) && rest.Response != nil {
		return rest.Response.StatusCode
	}
	return 0
}

func (b *Bot) guildName(guildID string) string {
	if guildID == "" {
		return ""
	}
	if g, err := b.state.Guild(guildID); err == nil {
		return g.Name
	}
	return ""
}

func (b *Bot) self() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.selfID
}
