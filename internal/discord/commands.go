package discord

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/keshon/motortown-bot/internal/command"
)

// registerCommands overwrites the global slash command set for appID. The
// overwrite is skipped when the same definitions were already sent during
// this process, which keeps reconnects from re-registering.
func (b *Bot) registerCommands(ctx context.Context, appID string) error {
	defs := command.SlashDefinitions(b.opts.Registry)
	sum, err := hashCommands(defs)
	if err != nil {
		return err
	}

	b.mu.Lock()
	unchanged := b.registered[appID] == sum
	b.mu.Unlock()
	if unchanged {
		b.log.Debug("slash commands unchanged, skipping registration", zap.String("application_id", appID))
		return nil
	}

	err = b.withRetry(ctx, "register-commands", func() error {
		_, err := b.api.ApplicationCommandBulkOverwrite(appID, "", defs, discordgo.WithContext(ctx))
		return err
	})
	if err != nil {
		b.log.Error("failed to register slash commands", zap.String("application_id", appID), zap.Error(err))
		return fmt.Errorf("register slash commands: %w", err)
	}

	b.mu.Lock()
	b.registered[appID] = sum
	b.mu.Unlock()
	b.log.Info("slash commands registered", zap.String("application_id", appID), zap.Int("count", len(defs)))
	return nil
}

// hashCommands creates a deterministic hash for a set of definitions. Only the
// fields sent on registration are included.
func hashCommands(defs []*discordgo.ApplicationCommand) (string, error) {
	normalized := make([]map[string]any, len(defs))
	for i, def := range defs {
		normalized[i] = normalizeForHash(def)
	}
	data, err := json.Marshal(normalized)
	if err != nil {
		return "", fmt.Errorf("hash slash commands: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

func normalizeForHash(def *discordgo.ApplicationCommand) map[string]any {
	obj := map[string]any{
		"name":        def.Name,
		"description": def.Description,
		"type":        def.Type,
	}
	if len(def.Options) > 0 {
		obj["options"] = normalizeOptions(def.Options)
	}
	return obj
}

func normalizeOptions(opts []*discordgo.ApplicationCommandOption) []map[string]any {
	normalized := make([]map[string]any, len(opts))
	for i, o := range opts {
		entry := map[string]any{
			"name":        o.Name,
			"description": o.Description,
			"type":        o.Type,
			"required":    o.Required,
		}
		if len(o.Options) > 0 {
			entry["options"] = normalizeOptions(o.Options)
		}
		normalized[i] = entry
	}
	return normalized
}
