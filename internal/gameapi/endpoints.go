package gameapi

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	json "github.com/goccy/go-json"
)

// PlayerCount returns the number of online players.
func (c *Client) PlayerCount(ctx context.Context) (*PlayerCount, error) {
	var out PlayerCount
	if _, err := c.get(ctx, "/player/count", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Version returns the server version.
func (c *Client) Version(ctx context.Context) (*VersionInfo, error) {
	var out VersionInfo
	if _, err := c.get(ctx, "/version", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Players lists online players. ok is false when the server reports failure.
func (c *Client) Players(ctx context.Context) (players Collection[Player], ok bool, err error) {
	res, err := c.get(ctx, "/player/list", nil, &players)
	if err != nil {
		return nil, false, err
	}
	return players, res.Succeeded, nil
}

// DeliverySites lists delivery sites.
func (c *Client) DeliverySites(ctx context.Context) (sites Collection[DeliverySite], ok bool, err error) {
	res, err := c.get(ctx, "/delivery/sites", nil, &sites)
	if err != nil {
		return nil, false, err
	}
	return sites, res.Succeeded, nil
}

// Housing lists owned houses keyed by house name.
func (c *Client) Housing(ctx context.Context) (houses Collection[House], ok bool, err error) {
	res, err := c.get(ctx, "/housing/list", nil, &houses)
	if err != nil {
		return nil, false, err
	}
	return houses, res.Succeeded, nil
}

// BanList lists banned players.
func (c *Client) BanList(ctx context.Context) (bans Collection[BannedPlayer], ok bool, err error) {
	res, err := c.get(ctx, "/player/banlist", nil, &bans)
	if err != nil {
		return nil, false, err
	}
	return bans, res.Succeeded, nil
}

// RoleList lists the players holding role ("admin", "police").
func (c *Client) RoleList(ctx context.Context, role string) (members Collection[RoleMember], ok bool, err error) {
	const endpoint = "/player/role/list"
	var byRole map[string]json.RawMessage
	res, err := c.get(ctx, endpoint, url.Values{"role": {role}}, &byRole)
	if err != nil {
		return nil, false, err
	}
	if raw, found := byRole[role]; found {
		if err := json.Unmarshal(raw, &members); err != nil {
			return nil, false, &Error{Method: http.MethodGet, Endpoint: endpoint, Err: err}
		}
	}
	return members, res.Succeeded, nil
}

// Kick removes a player from the server.
func (c *Client) Kick(ctx context.Context, uniqueID string) (*Result, error) {
	return c.post(ctx, "/player/kick", url.Values{"unique_id": {uniqueID}})
}

// Ban bans a player. Zero hours means permanent; an empty reason is omitted.
func (c *Client) Ban(ctx context.Context, uniqueID string, hours int64, reason string) (*Result, error) {
	params := url.Values{"unique_id": {uniqueID}}
	if hours != 0 {
		params.Set("hours", strconv.FormatInt(hours, 10))
	}
	if reason != "" {
		params.Set("reason", reason)
	}
	return c.post(ctx, "/player/ban", params)
}

// Unban lifts a ban.
func (c *Client) Unban(ctx context.Context, uniqueID string) (*Result, error) {
	return c.post(ctx, "/player/unban", url.Values{"unique_id": {uniqueID}})
}

// Announce broadcasts an announcement to everyone in game.
func (c *Client) Announce(ctx context.Context, message string) (*Result, error) {
	return c.post(ctx, "/chat", url.Values{"message": {message}, "type": {"announce"}})
}

// ServerChat posts a chat message in game. An empty color is omitted.
func (c *Client) ServerChat(ctx context.Context, message, color string) (*Result, error) {
	params := url.Values{"message": {message}, "type": {"message"}}
	if color != "" {
		params.Set("color", color)
	}
	return c.post(ctx, "/chat", params)
}
