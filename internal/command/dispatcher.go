package command

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"

	"go.uber.org/zap"

	"github.com/keshon/motortown-bot/internal/auth"
	"github.com/keshon/motortown-bot/pkg/cmd"
)

const (
	PermissionDenied    = "❌ You do not have permission to use this command."
	GenericErrorMessage = "An error occurred"
)

// PayloadMessenger is implemented by errors carrying a message from a remote payload.
type PayloadMessenger interface {
	PayloadMessage() string
}

// ErrorMessage picks the text shown to users for err: a nested payload message
// when present, else the error's own text, else a generic fallback.
func ErrorMessage(err error) string {
	if err == nil {
		return GenericErrorMessage
	}
	var pm PayloadMessenger
	if errors.As(err, &pm) {
		if msg := pm.PayloadMessage(); msg != "" {
			return msg
		}
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return GenericErrorMessage
}

// UnknownCommandMessage is the reply for a name no handler is registered under.
func UnknownCommandMessage(inv *cmd.Invocation) string {
	if inv.Surface == cmd.SurfaceSlash {
		return "Unknown command."
	}
	return fmt.Sprintf("❓ Unknown command: `%s%s`\nUse `%shelp` to see available commands.", inv.Prefix, inv.Name, inv.Prefix)
}

// Dispatcher routes invocations to registered commands after checking the gate.
type Dispatcher struct {
	registry *cmd.Registry
	gate     *auth.Gate
	log      *zap.Logger
}

func NewDispatcher(reg *cmd.Registry, gate *auth.Gate, log *zap.Logger) *Dispatcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Dispatcher{registry: reg, gate: gate, log: log}
}

// Authorized reports whether inv may run. Surfaces that want to deny before
// acknowledging the platform event call this ahead of Dispatch.
func (d *Dispatcher) Authorized(inv *cmd.Invocation) bool {
	return d.gate.IsAuthorized(inv.InvokerID, inv.Name)
}

// Lookup returns the command registered for name.
func (d *Dispatcher) Lookup(name string) (cmd.Command, bool) {
	return d.registry.Get(name)
}

// Dispatch runs inv. Every outcome that needs the user's attention (unknown
// command, denial, handler failure) is turned into exactly one reply; nothing
// is returned to the caller.
func (d *Dispatcher) Dispatch(ctx context.Context, inv *cmd.Invocation) {
	c, ok := d.registry.Get(inv.Name)
	if !ok {
		d.reply(ctx, inv, UnknownCommandMessage(inv))
		return
	}

	if !d.Authorized(inv) {
		d.log.Info("command denied",
			zap.String("command", inv.Name),
			zap.String("invoker", inv.InvokerID),
			zap.Stringer("surface", inv.Surface))
		d.reply(ctx, inv, PermissionDenied)
		return
	}

	if err := d.run(ctx, c, inv); err != nil {
		d.log.Warn("command failed",
			zap.String("command", inv.Name),
			zap.String("invoker", inv.InvokerID),
			zap.Stringer("surface", inv.Surface),
			zap.Error(err))
		d.reply(ctx, inv, "Error: "+ErrorMessage(err))
	}
}

func (d *Dispatcher) run(ctx context.Context, c cmd.Command, inv *cmd.Invocation) (err error) {
	defer func() {
		if r := recover(); r != nil {
			d.log.Error("command panicked",
				zap.String("command", inv.Name),
				zap.Any("panic", r),
				zap.ByteString("stack", debug.Stack()))
			err = fmt.Errorf("internal error in %s", inv.Name)
		}
	}()
	return c.Run(ctx, inv)
}

func (d *Dispatcher) reply(ctx context.Context, inv *cmd.Invocation, content string) {
	if err := inv.ReplyText(ctx, content); err != nil {
		d.log.Warn("reply failed",
			zap.String("command", inv.Name),
			zap.Stringer("surface", inv.Surface),
			zap.Error(err))
	}
}
