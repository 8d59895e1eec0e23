package cmd

import "context"

// Unwrappable is implemented by wrapped commands so adapters can reach the
// underlying command (e.g. to type-assert to a slash definition provider).
type Unwrappable interface {
	Command
	Unwrap() Command
}

// RunFunc is the signature of Command.Run.
type RunFunc func(ctx context.Context, inv *Invocation) error

type wrapped struct {
	inner Command
	run   RunFunc
}

func (w *wrapped) Name() string        { return w.inner.Name() }
func (w *wrapped) Description() string { return w.inner.Description() }
func (w *wrapped) Unwrap() Command     { return w.inner }

func (w *wrapped) Run(ctx context.Context, inv *Invocation) error {
	if w.run == nil {
		return w.inner.Run(ctx, inv)
	}
	return w.run(ctx, inv)
}

// Wrap returns a command that runs run instead of c.Run, delegating Name and
// Description to c. Middlewares use it; the result implements Unwrappable.
func Wrap(c Command, run RunFunc) Command {
	return &wrapped{inner: c, run: run}
}

// Root unwraps a command until the underlying command is not Unwrappable.
func Root(c Command) Command {
	for {
		u, ok := c.(Unwrappable)
		if !ok {
			return c
		}
		c = u.Unwrap()
	}
}
