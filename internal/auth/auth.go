// Package auth holds the bot admin set and the gate deciding which commands a user may run.
//
// The admin set is seeded from configuration and mutated only through Add and
// Remove. Mutations live in memory and are lost on restart.
package auth

import (
	"errors"
	"slices"
	"sync"
)

var (
	ErrNotAuthorized      = errors.New("actor is not an admin")
	ErrAlreadyAdmin       = errors.New("user is already an admin")
	ErrNotAnAdmin         = errors.New("user is not an admin")
	ErrLastAdminProtected = errors.New("cannot remove yourself as the last admin")
)

// AdminCommands lists the commands restricted to admins. Both chat surfaces
// consult this one list through the Gate.
var AdminCommands = []string{
	"kick",
	"ban",
	"unban",
	"announce",
	"serverchat",
	"addadmin",
	"removeadmin",
	"testmapping",
}

// AdminSet is an ordered set of platform user ids.
type AdminSet struct {
	mu  sync.RWMutex
	ids []string
}

// NewAdminSet seeds a set from ids, dropping blanks and duplicates while keeping order.
func NewAdminSet(seed []string) *AdminSet {
	a := &AdminSet{}
	for _, id := range seed {
		if id == "" || slices.Contains(a.ids, id) {
			continue
		}
		a.ids = append(a.ids, id)
	}
	return a
}

// Contains reports whether id is an admin.
func (a *AdminSet) Contains(id string) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return slices.Contains(a.ids, id)
}

// List returns a copy of the admin ids in insertion order.
func (a *AdminSet) List() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return slices.Clone(a.ids)
}

// Len returns the number of admins.
func (a *AdminSet) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.ids)
}

// Add makes target an admin on behalf of actor.
func (a *AdminSet) Add(actor, target string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !slices.Contains(a.ids, actor) {
		return ErrNotAuthorized
	}
	if slices.Contains(a.ids, target) {
		return ErrAlreadyAdmin
	}
	a.ids = append(a.ids, target)
	return nil
}

// Remove revokes target's admin rights on behalf of actor. The last admin
// cannot remove themself.
func (a *AdminSet) Remove(actor, target string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !slices.Contains(a.ids, actor) {
		return ErrNotAuthorized
	}
	if target == actor && len(a.ids) == 1 {
		return ErrLastAdminProtected
	}
	i := slices.Index(a.ids, target)
	if i < 0 {
		return ErrNotAnAdmin
	}
	a.ids = slices.Delete(a.ids, i, i+1)
	return nil
}

// Gate decides whether a user may run a command.
type Gate struct {
	admins     *AdminSet
	restricted map[string]struct{}
}

// NewGate returns a gate restricting AdminCommands to members of admins.
func NewGate(admins *AdminSet) *Gate {
	restricted := make(map[string]struct{}, len(AdminCommands))
	for _, name := range AdminCommands {
		restricted[name] = struct{}{}
	}
	return &Gate{admins: admins, restricted: restricted}
}

// IsRestricted reports whether commandName requires admin rights.
func (g *Gate) IsRestricted(commandName string) bool {
	_, ok := g.restricted[commandName]
	return ok
}

// IsAdmin reports whether userID is in the admin set.
func (g *Gate) IsAdmin(userID string) bool {
	return g.admins.Contains(userID)
}

// IsAuthorized is true iff commandName is unrestricted or invokerID is an admin.
func (g *Gate) IsAuthorized(invokerID, commandName string) bool {
	return !g.IsRestricted(commandName) || g.admins.Contains(invokerID)
}
