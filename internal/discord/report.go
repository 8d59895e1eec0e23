package discord

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/keshon/motortown-bot/internal/identity"
)

// reportLine is one row of the startup mapping report. Guild is empty for
// rows that describe the mapping as a whole.
type reportLine struct {
	UniqueID string
	Value    string
	Guild    string
	Note     string
}

// mappingReport resolves every mapping against every guild the bot is in.
// Directory calls are paced through the shared limiter.
func (b *Bot) mappingReport(ctx context.Context, guildIDs []string) []reportLine {
	var lines []reportLine
	for _, m := range b.opts.Resolver.Table().All() {
		if ctx.Err() != nil {
			return lines
		}
		if m.Kind == identity.KindName {
			lines = append(lines, reportLine{UniqueID: m.UniqueID, Value: m.Value, Note: "custom name"})
			continue
		}

		if err := b.limiter.Wait(ctx); err != nil {
			return lines
		}
		global, _ := b.opts.Resolver.Lookup(ctx, m.UniqueID, "")
		if global.UserErr != nil || global.User == nil {
			lines = append(lines, reportLine{
				UniqueID: m.UniqueID,
				Value:    m.Value,
				Note:     "error: " + errText(global.UserErr),
			})
			continue
		}
		lines = append(lines, reportLine{UniqueID: m.UniqueID, Value: global.User.Tag, Note: "discord user"})

		foundAnywhere := false
		for _, guildID := range guildIDs {
			if err := b.limiter.Wait(ctx); err != nil {
				return lines
			}
			res, _ := b.opts.Resolver.Lookup(ctx, m.UniqueID, guildID)
			line := reportLine{UniqueID: m.UniqueID, Value: global.User.Tag, Guild: b.guildLabel(guildID)}
			switch {
			case res.MemberErr != nil || res.Member == nil:
				line.Note = "user not a member of this server"
			case res.Member.Nick != "":
				foundAnywhere = true
				line.Note = fmt.Sprintf("nickname %q", res.Member.Nick)
			default:
				foundAnywhere = true
				line.Note = "no nickname, will show " + res.User.Username
			}
			lines = append(lines, line)
		}
		if !foundAnywhere {
			lines = append(lines, reportLine{
				UniqueID: m.UniqueID,
				Value:    global.User.Tag,
				Note:     "user not found in any guild, will show " + global.User.Tag,
			})
		}
	}
	return lines
}

func (b *Bot) logMappingReport(lines []reportLine) {
	b.log.Info("player mappings loaded", zap.Int("count", b.opts.Resolver.Table().Len()))
	for _, l := range lines {
		fields := []zap.Field{
			zap.String("unique_id", l.UniqueID),
			zap.String("value", l.Value),
			zap.String("note", l.Note),
		}
		if l.Guild != "" {
			fields = append(fields, zap.String("guild", l.Guild))
		}
		b.log.Info("player mapping", fields...)
	}
}

func (b *Bot) guildLabel(guildID string) string {
	if name := b.guildName(guildID); name != "" {
		return name
	}
	return guildID
}

func errText(err error) string {
	if err == nil {
		return "unknown"
	}
	return err.Error()
}
