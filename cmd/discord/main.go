// cmd/discord/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/keshon/motortown-bot/internal/auth"
	"github.com/keshon/motortown-bot/internal/command"
	"github.com/keshon/motortown-bot/internal/commands"
	"github.com/keshon/motortown-bot/internal/config"
	"github.com/keshon/motortown-bot/internal/discord"
	"github.com/keshon/motortown-bot/internal/gameapi"
	"github.com/keshon/motortown-bot/internal/identity"
	"github.com/keshon/motortown-bot/internal/logging"
	"github.com/keshon/motortown-bot/internal/middleware"
	"github.com/keshon/motortown-bot/pkg/cmd"
)

func main() {
	config.LoadDotEnv()

	cfg, err := config.New()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	log, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logging:", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Error("discord bot error", zap.Error(err))
		_ = log.Sync()
		os.Exit(1)
	}
	log.Info("discord bot exited cleanly")
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dg, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	mapping := cfg.MappingTable()
	admins := auth.NewAdminSet(cfg.AdminIDs)
	gate := auth.NewGate(admins)
	api := gameapi.New(cfg.BaseURL(), cfg.APIPassword,
		gameapi.WithTimeout(cfg.APITimeout),
		gameapi.WithLogger(log.Named("gameapi")))
	directory := identity.NewDiscordDirectory(dg, dg.State, cfg.DirectoryCacheTTL)
	resolver := identity.NewResolver(mapping, directory, log.Named("identity"))

	log.Info("starting motortown bot",
		zap.String("api", api.BaseURL()),
		zap.Int("admins", admins.Len()),
		zap.Strings("admin_ids", admins.List()),
		zap.Int("mappings", mapping.Len()))

	reg := cmd.NewRegistry()
	commands.Register(reg, &commands.Deps{
		API:                api,
		Admins:             admins,
		Gate:               gate,
		Resolver:           resolver,
		Directory:          directory,
		APIHost:            cfg.APIHost,
		TextPrefix:         cfg.Prefix,
		JoinServerName:     cfg.JoinServerName,
		JoinServerPassword: cfg.JoinServerPassword,
	},
		middleware.WithCommandLogger(log.Named("commands")),
		middleware.WithRequiredArgs(),
	)

	bot := discord.New(dg, discord.Options{
		ClientID:   cfg.ClientID,
		Nickname:   cfg.BotNickname,
		Activity:   cfg.BotActivity,
		Prefix:     cfg.Prefix,
		Registry:   reg,
		Dispatcher: command.NewDispatcher(reg, gate, log.Named("dispatch")),
		Resolver:   resolver,
		Logger:     log.Named("discord"),
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- bot.Run(ctx)
		close(errCh)
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sig)

	select {
	case s := <-sig:
		log.Info("received signal, shutting down", zap.Stringer("signal", s))
		cancel()
		return <-errCh
	case err := <-errCh:
		return err
	}
}
