package identity

import (
	"regexp"
	"strings"
)

// Kind tells how a mapped value should be interpreted.
type Kind int

const (
	// KindName is a free-form display name.
	KindName Kind = iota
	// KindUser is a platform user id to be looked up in the directory.
	KindUser
)

func (k Kind) String() string {
	if k == KindUser {
		return "user"
	}
	return "name"
}

var userIDPattern = regexp.MustCompile(`^\d{17,19}$`)

// IsUserID reports whether s has the shape of a platform user id.
func IsUserID(s string) bool {
	return userIDPattern.MatchString(s)
}

// Mapping is one entry of the player mapping table.
type Mapping struct {
	UniqueID string
	Value    string
	Kind     Kind
}

// NewMapping classifies value once, at load time.
func NewMapping(uniqueID, value string) Mapping {
	kind := KindName
	if IsUserID(value) {
		kind = KindUser
	}
	return Mapping{UniqueID: uniqueID, Value: value, Kind: kind}
}

// Table is the fixed, ordered mapping of game unique ids to display values.
type Table struct {
	order   []string
	entries map[string]Mapping
}

// NewTable builds a table from mappings. A later duplicate unique id
// overwrites the earlier value but keeps the earlier position.
func NewTable(mappings ...Mapping) *Table {
	t := &Table{entries: make(map[string]Mapping, len(mappings))}
	for _, m := range mappings {
		if _, ok := t.entries[m.UniqueID]; !ok {
			t.order = append(t.order, m.UniqueID)
		}
		t.entries[m.UniqueID] = m
	}
	return t
}

// ParseTable parses the "uniqueId:value|uniqueId:value" configuration format.
// Entries missing either side are skipped; anything after a second colon is ignored.
func ParseTable(raw string) *Table {
	var mappings []Mapping
	for _, part := range strings.Split(raw, "|") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		fields := strings.Split(part, ":")
		if len(fields) < 2 {
			continue
		}
		id, value := strings.TrimSpace(fields[0]), strings.TrimSpace(fields[1])
		if id == "" || value == "" {
			continue
		}
		mappings = append(mappings, NewMapping(id, value))
	}
	return NewTable(mappings...)
}

// Lookup returns the mapping for uniqueID.
func (t *Table) Lookup(uniqueID string) (Mapping, bool) {
	m, ok := t.entries[uniqueID]
	return m, ok
}

// All returns the mappings in load order.
func (t *Table) All() []Mapping {
	out := make([]Mapping, 0, len(t.order))
	for _, id := range t.order {
		out = append(out, t.entries[id])
	}
	return out
}

// Len returns the number of mappings.
func (t *Table) Len() int { return len(t.order) }
