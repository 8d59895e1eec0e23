package identity

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	cache "github.com/go-pkgz/expirable-cache/v3"
)

// UserFetcher is the subset of *discordgo.Session used for directory lookups.
type UserFetcher interface {
	User(userID string, options ...discordgo.RequestOption) (*discordgo.User, error)
	GuildMember(guildID, userID string, options ...discordgo.RequestOption) (*discordgo.Member, error)
}

// GuildCache is the subset of *discordgo.State used to resolve scopes and cached members.
type GuildCache interface {
	Guild(guildID string) (*discordgo.Guild, error)
	Member(guildID, userID string) (*discordgo.Member, error)
}

// DiscordDirectory implements Directory on top of a Discord session.
// Successful user lookups are cached for ttl; member lookups are never cached
// so nickname changes show up immediately.
type DiscordDirectory struct {
	api   UserFetcher
	state GuildCache
	users cache.Cache[string, Record]
}

// NewDiscordDirectory returns a directory backed by api. state may be nil, in
// which case every scope is assumed resolvable. A ttl of zero disables caching.
func NewDiscordDirectory(api UserFetcher, state GuildCache, ttl time.Duration) *DiscordDirectory {
	d := &DiscordDirectory{api: api, state: state}
	if ttl > 0 {
		d.users = cache.NewCache[string, Record]().WithTTL(ttl).WithMaxKeys(1024)
	}
	return d
}

// User fetches the directory record for userID.
func (d *DiscordDirectory) User(ctx context.Context, userID string) (*Record, error) {
	if d.users != nil {
		if rec, ok := d.users.Get(userID); ok {
			return &rec, nil
		}
	}

	u, err := d.api.User(userID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("fetch user %s: %w", userID, err)
	}
	rec := RecordFromUser(u)
	if d.users != nil {
		d.users.Set(userID, rec, 0)
	}
	return &rec, nil
}

// Member fetches userID's membership in scopeID.
func (d *DiscordDirectory) Member(ctx context.Context, scopeID, userID string) (*Member, error) {
	if d.state != nil {
		if _, err := d.state.Guild(scopeID); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrUnknownScope, scopeID)
		}
		if m, err := d.state.Member(scopeID, userID); err == nil && m.User != nil {
			return memberFromDiscord(m), nil
		}
	}

	m, err := d.api.GuildMember(scopeID, userID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("fetch member %s in %s: %w", userID, scopeID, err)
	}
	if m.User == nil {
		m.User = &discordgo.User{ID: userID}
	}
	return memberFromDiscord(m), nil
}

// RecordFromUser converts a Discord user into a directory record.
func RecordFromUser(u *discordgo.User) Record {
	return Record{ID: u.ID, Username: u.Username, Tag: Tag(u)}
}

// Tag renders a user the way Discord clients do: "name#1234" for legacy
// accounts, the bare username once discriminators were dropped.
func Tag(u *discordgo.User) string {
	if u.Discriminator == "" || u.Discriminator == "0" {
		return u.Username
	}
	return u.Username + "#" + u.Discriminator
}

func memberFromDiscord(m *discordgo.Member) *Member {
	return &Member{User: RecordFromUser(m.User), Nick: m.Nick}
}
