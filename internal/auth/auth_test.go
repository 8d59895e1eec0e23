package auth

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestNewAdminSet_DropsBlanksAndDuplicates(t *testing.T) {
	a := NewAdminSet([]string{"1", "", "2", "1"})
	assert.Equal(t, []string{"1", "2"}, a.List())
	assert.Equal(t, 2, a.Len())
}

func TestAdd(t *testing.T) {
	a := NewAdminSet([]string{"1"})

	require.NoError(t, a.Add("1", "2"))
	assert.True(t, a.Contains("2"))

	assert.ErrorIs(t, a.Add("1", "2"), ErrAlreadyAdmin)
	assert.Equal(t, []string{"1", "2"}, a.List())

	assert.ErrorIs(t, a.Add("3", "4"), ErrNotAuthorized)
	assert.False(t, a.Contains("4"))
}

func TestRemove(t *testing.T) {
	a := NewAdminSet([]string{"1", "2"})

	assert.ErrorIs(t, a.Remove("1", "9"), ErrNotAnAdmin)
	assert.ErrorIs(t, a.Remove("9", "1"), ErrNotAuthorized)

	require.NoError(t, a.Remove("1", "2"))
	assert.Equal(t, []string{"1"}, a.List())
}

func TestRemove_SelfWhenOthersRemain(t *testing.T) {
	a := NewAdminSet([]string{"1", "2"})
	require.NoError(t, a.Remove("1", "1"))
	assert.Equal(t, []string{"2"}, a.List())
}

func TestRemove_LastAdminProtected(t *testing.T) {
	a := NewAdminSet([]string{"1"})
	assert.ErrorIs(t, a.Remove("1", "1"), ErrLastAdminProtected)
	assert.Equal(t, []string{"1"}, a.List())
}

func TestGate(t *testing.T) {
	g := NewGate(NewAdminSet([]string{"admin"}))

	assert.True(t, g.IsAuthorized("anyone", "status"))
	assert.True(t, g.IsAuthorized("admin", "ban"))
	assert.False(t, g.IsAuthorized("anyone", "ban"))
	assert.True(t, g.IsAuthorized("anyone", "not-a-command"))
	assert.True(t, g.IsAdmin("admin"))
}

func TestPropertyRestrictedDeniedForNonMembers(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		seed := rapid.SliceOf(rapid.StringMatching(`[0-9]{17,19}`)).Draw(t, "seed")
		invoker := rapid.StringMatching(`[a-z]{1,8}`).Draw(t, "invoker")
		name := rapid.SampledFrom(AdminCommands).Draw(t, "command")

		g := NewGate(NewAdminSet(seed))
		if g.IsAuthorized(invoker, name) {
			t.Fatalf("non-member %q authorized for %q", invoker, name)
		}
	})
}

func TestPropertyLastAdminNeverRemovesSelf(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		id := rapid.StringMatching(`[0-9]{17,19}`).Draw(t, "id")
		a := NewAdminSet([]string{id})
		if err := a.Remove(id, id); err != ErrLastAdminProtected {
			t.Fatalf("expected ErrLastAdminProtected, got %v", err)
		}
		if !slices.Equal(a.List(), []string{id}) {
			t.Fatalf("set changed: %v", a.List())
		}
	})
}
