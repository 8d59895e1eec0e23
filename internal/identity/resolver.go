package identity

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// Resolution records every step taken while resolving one mapped player.
// It is what DisplayName renders and what diagnostics commands print.
type Resolution struct {
	Mapping Mapping

	// User and UserErr are set only for KindUser mappings.
	User    *Record
	UserErr error

	// Scoped is true when a scope was supplied and the user lookup succeeded,
	// i.e. a member lookup was attempted.
	Scoped    bool
	Member    *Member
	MemberErr error
}

// DisplayName renders the resolution next to the player's in-game name.
func (r Resolution) DisplayName(originalName string) string {
	return fmt.Sprintf("%s (%s)", r.Label(), originalName)
}

// Label is the display part without the in-game name suffix.
func (r Resolution) Label() string {
	if r.Mapping.Kind == KindName {
		return r.Mapping.Value
	}
	if r.UserErr != nil || r.User == nil {
		return "<@" + r.Mapping.Value + ">"
	}
	if !r.Scoped || r.MemberErr != nil || r.Member == nil {
		return r.User.Tag
	}
	if r.Member.Nick != "" {
		return r.Member.Nick
	}
	return r.User.Username
}

// ScopeUnknown reports whether the member lookup failed because the scope
// itself could not be resolved.
func (r Resolution) ScopeUnknown() bool {
	return errors.Is(r.MemberErr, ErrUnknownScope)
}

// Resolver turns game unique ids into display names.
type Resolver struct {
	table *Table
	dir   Directory
	log   *zap.Logger
}

// NewResolver returns a resolver over table and dir.
func NewResolver(table *Table, dir Directory, log *zap.Logger) *Resolver {
	if log == nil {
		log = zap.NewNop()
	}
	return &Resolver{table: table, dir: dir, log: log}
}

// Table returns the mapping table the resolver reads from.
func (r *Resolver) Table() *Table { return r.table }

// Lookup walks the fallback chain for uniqueID. The boolean is false when the
// id is not mapped at all. Directory failures are recorded, never returned.
func (r *Resolver) Lookup(ctx context.Context, uniqueID, scopeID string) (Resolution, bool) {
	m, ok := r.table.Lookup(uniqueID)
	if !ok {
		return Resolution{}, false
	}
	return r.resolve(ctx, m, scopeID), true
}

// Resolve returns the display name for a player. Unmapped players keep their
// in-game name; every directory failure degrades to a weaker fallback.
func (r *Resolver) Resolve(ctx context.Context, uniqueID, originalName, scopeID string) string {
	res, ok := r.Lookup(ctx, uniqueID, scopeID)
	if !ok {
		return originalName
	}
	return res.DisplayName(originalName)
}

func (r *Resolver) resolve(ctx context.Context, m Mapping, scopeID string) Resolution {
	res := Resolution{Mapping: m}
	if m.Kind != KindUser {
		return res
	}

	res.User, res.UserErr = r.dir.User(ctx, m.Value)
	if res.UserErr != nil {
		r.log.Warn("directory user lookup failed",
			zap.String("user_id", m.Value), zap.Error(res.UserErr))
		return res
	}
	if scopeID == "" {
		return res
	}

	res.Scoped = true
	res.Member, res.MemberErr = r.dir.Member(ctx, scopeID, m.Value)
	if res.MemberErr != nil {
		r.log.Debug("member lookup failed, using global tag",
			zap.String("user_id", m.Value),
			zap.String("scope_id", scopeID),
			zap.Error(res.MemberErr))
	}
	return res
}
