package gameapi

import (
	"bytes"
	"sort"
	"strconv"

	json "github.com/goccy/go-json"
)

// Text accepts any JSON scalar and keeps its textual form. The game server is
// loose about whether ids, locations and timestamps are strings or numbers.
type Text string

func (t *Text) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*t = ""
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*t = Text(s)
	default:
		*t = Text(b)
	}
	return nil
}

func (t Text) String() string { return string(t) }

// Count is the number of entries of a JSON object or array; null counts as zero.
type Count int

func (c *Count) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*c = 0
		return nil
	}
	if b[0] == '[' {
		var items []json.RawMessage
		if err := json.Unmarshal(b, &items); err != nil {
			return err
		}
		*c = Count(len(items))
		return nil
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(b, &m); err != nil {
		return err
	}
	*c = Count(len(m))
	return nil
}

// Entry is one keyed item of a Collection.
type Entry[T any] struct {
	Key   string
	Value T
}

// Collection decodes either a JSON array or a JSON object of T. Object entries
// are ordered with integer keys first, ascending, then the remaining keys lexically.
type Collection[T any] []Entry[T]

func (c *Collection[T]) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*c = nil
		return nil
	}
	if b[0] == '[' {
		var items []T
		if err := json.Unmarshal(b, &items); err != nil {
			return err
		}
		out := make(Collection[T], len(items))
		for i, v := range items {
			out[i] = Entry[T]{Key: strconv.Itoa(i), Value: v}
		}
		*c = out
		return nil
	}

	var m map[string]T
	if err := json.Unmarshal(b, &m); err != nil {
		return err
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sortKeys(keys)
	out := make(Collection[T], len(keys))
	for i, k := range keys {
		out[i] = Entry[T]{Key: k, Value: m[k]}
	}
	*c = out
	return nil
}

func sortKeys(keys []string) {
	sort.SliceStable(keys, func(i, j int) bool {
		ni, erri := strconv.ParseUint(keys[i], 10, 64)
		nj, errj := strconv.ParseUint(keys[j], 10, 64)
		switch {
		case erri == nil && errj == nil:
			return ni < nj
		case erri == nil:
			return true
		case errj == nil:
			return false
		default:
			return keys[i] < keys[j]
		}
	})
}

// PlayerCount is the payload of GET /player/count.
type PlayerCount struct {
	NumPlayers int `json:"num_players"`
}

// VersionInfo is the payload of GET /version.
type VersionInfo struct {
	Version string `json:"version"`
}

type Vehicle struct {
	Name string `json:"name"`
}

// Player is one online player from GET /player/list.
type Player struct {
	UniqueID Text     `json:"unique_id"`
	Name     string   `json:"name"`
	Location Text     `json:"location"`
	Vehicle  *Vehicle `json:"vehicle"`
}

// DeliverySite is one entry of GET /delivery/sites.
type DeliverySite struct {
	Name            string `json:"name"`
	Location        Text   `json:"location"`
	Deliveries      Count  `json:"Deliveries"`
	OutputInventory Count  `json:"OutputInventory"`
}

// House is one owned house from GET /housing/list, keyed by house name.
type House struct {
	OwnerUniqueID Text `json:"owner_unique_id"`
	ExpireTime    Text `json:"expire_time"`
}

// BannedPlayer is one entry of GET /player/banlist.
type BannedPlayer struct {
	Name     string `json:"name"`
	UniqueID Text   `json:"unique_id"`
}

// RoleMember is one entry of GET /player/role/list.
type RoleMember struct {
	Nickname string `json:"nickname"`
	UniqueID Text   `json:"unique_id"`
}
