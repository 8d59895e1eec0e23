package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/keshon/motortown-bot/internal/command"
	"github.com/keshon/motortown-bot/internal/identity"
)

// onReady is called when the gateway session is established. Ready fires
// again after every reconnect, so each startup task runs as a named job:
// registration and nicknames replace any previous run, while a mapping report
// still in progress is left to finish.
func (b *Bot) onReady(r *discordgo.Ready) {
	b.mu.Lock()
	b.selfID = r.User.ID
	b.mu.Unlock()

	appID := b.opts.ClientID
	if appID == "" {
		appID = r.User.ID
	}

	guildIDs := make([]string, 0, len(r.Guilds))
	for _, g := range r.Guilds {
		guildIDs = append(guildIDs, g.ID)
	}

	b.log.Info("discord session ready",
		zap.String("user", identity.Tag(r.User)),
		zap.String("application_id", appID),
		zap.Int("guilds", len(guildIDs)))

	if err := b.api.UpdateGameStatus(0, b.opts.Activity); err != nil {
		b.log.Warn("failed to set activity", zap.String("activity", b.opts.Activity), zap.Error(err))
	} else {
		b.log.Info("activity set", zap.String("playing", b.opts.Activity))
	}

	b.jobs.Restart("register-commands", func(ctx context.Context) error {
		return b.registerCommands(ctx, appID)
	})

	if b.opts.Nickname != "" {
		for _, id := range guildIDs {
			b.scheduleNickname(id)
		}
	}

	if b.opts.Resolver != nil {
		err := b.jobs.StartAsync("mapping-report", func(ctx context.Context) error {
			b.logMappingReport(b.mappingReport(ctx, guildIDs))
			return ctx.Err()
		})
		if err != nil {
			b.log.Debug("mapping report skipped", zap.Error(err))
		}
	}
}

// onGuildCreate is called for every guild on connect and whenever the bot
// joins a new one.
func (b *Bot) onGuildCreate(g *discordgo.GuildCreate) {
	if g.Guild == nil || g.Unavailable {
		return
	}
	b.log.Info("guild available", zap.String("guild_id", g.ID), zap.String("guild", g.Name))
	if b.opts.Nickname != "" {
		b.scheduleNickname(g.ID)
	}
}

// onGuildDelete is called when the bot leaves a guild or it becomes
// unavailable. A pending nickname update for it is dropped.
func (b *Bot) onGuildDelete(g *discordgo.GuildDelete) {
	if g.Guild == nil {
		return
	}
	if err := b.jobs.Stop(nicknameJob(g.ID)); err == nil {
		b.log.Info("nickname update cancelled", zap.String("guild_id", g.ID))
	}
	b.log.Info("guild gone", zap.String("guild_id", g.ID), zap.Bool("unavailable", g.Unavailable))
}

func nicknameJob(guildID string) string { return "nickname:" + guildID }

func (b *Bot) scheduleNickname(guildID string) {
	b.jobs.Restart(nicknameJob(guildID), func(ctx context.Context) error {
		return b.setNickname(ctx, guildID)
	})
}

// onInteractionCreate answers slash commands. Denials for known restricted
// commands are sent ephemerally before acknowledging; everything else is
// deferred and handed to the dispatcher, which edits the deferred reply.
func (b *Bot) onInteractionCreate(i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	ctx, cancel := context.WithTimeout(b.ctx, eventTimeout)
	defer cancel()

	inv := command.FromInteraction(b.api, i)
	inv.ScopeName = b.guildName(inv.ScopeID)

	if _, known := b.opts.Dispatcher.Lookup(inv.Name); known && !b.opts.Dispatcher.Authorized(inv) {
		b.log.Info("command denied",
			zap.String("command", inv.Name),
			zap.String("invoker", inv.InvokerID),
			zap.Stringer("surface", inv.Surface))
		if err := respondEphemeral(ctx, b.api, i.Interaction, command.PermissionDenied); err != nil {
			b.log.Warn("failed to send denial", zap.String("command", inv.Name), zap.Error(err))
		}
		return
	}

	if err := respondDeferred(ctx, b.api, i.Interaction); err != nil {
		b.log.Warn("failed to acknowledge interaction", zap.String("command", inv.Name), zap.Error(err))
		return
	}
	b.opts.Dispatcher.Dispatch(ctx, inv)
}

// onMessageCreate handles the prefixed text surface. Messages from bots,
// including this one, are ignored.
func (b *Bot) onMessageCreate(m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot {
		return
	}

	inv, ok := command.FromMessage(b.api, b.state, b.opts.Prefix, m.Message)
	if !ok {
		return
	}
	inv.ScopeName = b.guildName(inv.ScopeID)

	ctx, cancel := context.WithTimeout(b.ctx, eventTimeout)
	defer cancel()
	b.opts.Dispatcher.Dispatch(ctx, inv)
}

// setNickname sets the bot's nickname in guildID unless it already has it.
func (b *Bot) setNickname(ctx context.Context, guildID string) error {
	nick := b.opts.Nickname
	if self := b.self(); self != "" {
		if m, err := b.state.Member(guildID, self); err == nil && m.Nick == nick {
			return nil
		}
	}

	err := b.withRetry(ctx, "nickname", func() error {
		return b.api.GuildMemberNickname(guildID, "@me", nick, discordgo.WithContext(ctx))
	})
	if err != nil {
		b.log.Warn("failed to set nickname",
			zap.String("guild_id", guildID),
			zap.String("guild", b.guildName(guildID)),
			zap.Error(err))
		return fmt.Errorf("set nickname in %s: %w", guildID, err)
	}
	b.log.Info("nickname set",
		zap.String("guild_id", guildID),
		zap.String("guild", b.guildName(guildID)),
		zap.String("nickname", nick))
	return nil
}
