package cmd

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCommand struct {
	name string
	runs int
}

func (s *stubCommand) Name() string        { return s.name }
func (s *stubCommand) Description() string { return "stub " + s.name }
func (s *stubCommand) Run(context.Context, *Invocation) error {
	s.runs++
	return nil
}

func TestRegistry_GetAndSorted(t *testing.T) {
	r := NewRegistry()
	r.Register(&stubCommand{name: "version"})
	r.Register(&stubCommand{name: "ban"})
	r.Register(&stubCommand{name: "help"})

	c, ok := r.Get("help")
	require.True(t, ok)
	assert.Equal(t, "help", c.Name())

	_, ok = r.Get("nope")
	assert.False(t, ok)

	assert.Equal(t, []string{"ban", "help", "version"}, r.Names())
}

func TestApply_FirstMiddlewareIsOutermost(t *testing.T) {
	var order []string
	mw := func(tag string) Middleware {
		return func(c Command) Command {
			return Wrap(c, func(ctx context.Context, inv *Invocation) error {
				order = append(order, tag)
				return c.Run(ctx, inv)
			})
		}
	}

	inner := &stubCommand{name: "kick"}
	c := Apply(inner, mw("outer"), mw("inner"))
	require.NoError(t, c.Run(context.Background(), NewInvocation("kick", "u", "", SurfaceSlash, nil, nil)))

	assert.Equal(t, []string{"outer", "inner"}, order)
	assert.Equal(t, 1, inner.runs)
	assert.Equal(t, "kick", c.Name())
	assert.Same(t, inner, Root(c))
}

func TestInvocation_ReplyWithoutChannel(t *testing.T) {
	inv := NewInvocation("help", "u", "", SurfaceText, nil, nil)
	assert.ErrorIs(t, inv.ReplyText(context.Background(), "hi"), ErrNoReplyChannel)
}

func TestInvocation_ReplyDelivers(t *testing.T) {
	var got Response
	inv := NewInvocation("help", "u", "g", SurfaceSlash, nil, func(_ context.Context, r Response) error {
		got = r
		return nil
	})
	require.NoError(t, inv.ReplyText(context.Background(), "hello"))
	assert.Equal(t, "hello", got.Content)
	assert.True(t, inv.HasScope())
	assert.Equal(t, "/", inv.Prefix)
}

func TestNoArguments(t *testing.T) {
	var a Arguments = NoArguments{}
	_, ok := a.String("unique_id")
	assert.False(t, ok)
	_, ok = a.Integer("hours")
	assert.False(t, ok)
	_, ok = a.User("user")
	assert.False(t, ok)
}

func TestSurfaceString(t *testing.T) {
	assert.Equal(t, "slash", SurfaceSlash.String())
	assert.Equal(t, "text", SurfaceText.String())
}
