// Package identity resolves game-world player ids into display names using the
// configured mapping table and the chat platform's user directory.
package identity

import (
	"context"
	"errors"
)

// ErrUnknownScope is returned by Member when the scope cannot be resolved.
var ErrUnknownScope = errors.New("scope not found")

// Record is a directory profile for a platform user.
type Record struct {
	ID       string
	Username string
	// Tag is the canonical human tag, "name#1234" or the bare username.
	Tag string
}

// Member is a scope-local view of a user.
type Member struct {
	User Record
	// Nick is the scope-local nickname override, empty when none is set.
	Nick string
}

// Directory looks users up by platform id.
type Directory interface {
	User(ctx context.Context, userID string) (*Record, error)
	Member(ctx context.Context, scopeID, userID string) (*Member, error)
}
