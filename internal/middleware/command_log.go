// Package middleware holds command middlewares shared by every surface.
package middleware

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/keshon/motortown-bot/pkg/cmd"
)

// WithCommandLogger logs every run of the wrapped command with its outcome.
func WithCommandLogger(log *zap.Logger) cmd.Middleware {
	if log == nil {
		log = zap.NewNop()
	}
	return func(c cmd.Command) cmd.Command {
		return cmd.Wrap(c, func(ctx context.Context, inv *cmd.Invocation) error {
			start := time.Now()
			err := c.Run(ctx, inv)

			fields := []zap.Field{
				zap.String("command", c.Name()),
				zap.String("invoker", inv.InvokerID),
				zap.Stringer("surface", inv.Surface),
				zap.Duration("took", time.Since(start)),
			}
			if inv.HasScope() {
				fields = append(fields, zap.String("scope", inv.ScopeID))
			}
			if err != nil {
				log.Warn("command returned error", append(fields, zap.Error(err))...)
				return err
			}
			log.Info("command handled", fields...)
			return nil
		})
	}
}
