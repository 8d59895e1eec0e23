package middleware

import (
	"context"
	"fmt"

	"github.com/keshon/motortown-bot/internal/command"
	"github.com/keshon/motortown-bot/pkg/cmd"
)

// UsageMessage formats the reply for a text command missing an argument.
func UsageMessage(prefix, usage, example string) string {
	return fmt.Sprintf("❌ Usage: `%s%s`\nExample: `%s%s`", prefix, usage, prefix, example)
}

// WithRequiredArgs replies with the command's usage instead of running it when
// a text invocation lacks an option its slash definition marks required.
// Discord enforces required options on slash invocations itself.
func WithRequiredArgs() cmd.Middleware {
	return func(c cmd.Command) cmd.Command {
		required := command.RequiredOptions(c)
		usage, example, hasUsage := command.Usage(c)
		if len(required) == 0 || !hasUsage {
			return c
		}
		return cmd.Wrap(c, func(ctx context.Context, inv *cmd.Invocation) error {
			if inv.Surface == cmd.SurfaceText {
				for _, opt := range required {
					if !command.HasOption(inv.Args, opt) {
						return inv.ReplyText(ctx, UsageMessage(inv.Prefix, usage, example))
					}
				}
			}
			return c.Run(ctx, inv)
		})
	}
}
