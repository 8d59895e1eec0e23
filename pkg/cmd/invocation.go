// Package cmd provides the canonical command core shared by every chat surface:
// a command is something with a name, description, and Run(ctx, invocation).
// How an invocation is produced (slash interaction, prefixed text message) is
// defined by adapters that build an *Invocation and hand it to the dispatcher.
package cmd

import (
	"context"
	"errors"

	"github.com/bwmarrin/discordgo"
)

// Surface identifies which user-facing entry point produced an invocation.
type Surface int

const (
	// SurfaceSlash is a structured application command interaction.
	SurfaceSlash Surface = iota
	// SurfaceText is a prefixed text message.
	SurfaceText
)

func (s Surface) String() string {
	switch s {
	case SurfaceSlash:
		return "slash"
	case SurfaceText:
		return "text"
	default:
		return "unknown"
	}
}

// User is the minimal user shape exposed to commands through Arguments.
type User struct {
	ID       string
	Username string
	Tag      string
}

// Arguments is the typed accessor capability every surface implements.
// Accessors are total: a missing or malformed argument reports false, never an error.
type Arguments interface {
	String(name string) (string, bool)
	Integer(name string) (int64, bool)
	User(name string) (*User, bool)
}

// Response is what a command hands back to the surface that invoked it.
// Surfaces that cannot mix plain content with embeds send only the embeds.
type Response struct {
	Content string
	Embeds  []*discordgo.MessageEmbed
}

// ReplyFunc delivers a response through the originating surface.
type ReplyFunc func(ctx context.Context, resp Response) error

// ErrNoReplyChannel is returned when an invocation was built without a reply sink.
var ErrNoReplyChannel = errors.New("invocation has no reply channel")

// Invocation is the canonical, surface-agnostic representation of one command request.
type Invocation struct {
	// Name is the lower-cased logical command name.
	Name string
	// InvokerID is the platform user id of whoever issued the command.
	InvokerID string
	// ScopeID is the guild the command was issued in, empty for direct messages.
	ScopeID string
	// ScopeName is the display name of the guild when known.
	ScopeName string
	Surface   Surface
	// Prefix is what the user typed before the command name ("/" for slash).
	Prefix string
	Args   Arguments

	reply ReplyFunc
}

// NewInvocation assembles an invocation. A nil args is replaced by an empty accessor.
func NewInvocation(name, invokerID, scopeID string, surface Surface, args Arguments, reply ReplyFunc) *Invocation {
	if args == nil {
		args = NoArguments{}
	}
	prefix := "/"
	if surface == SurfaceText {
		prefix = ""
	}
	return &Invocation{
		Name:      name,
		InvokerID: invokerID,
		ScopeID:   scopeID,
		Surface:   surface,
		Prefix:    prefix,
		Args:      args,
		reply:     reply,
	}
}

// HasScope reports whether the invocation happened inside a guild.
func (inv *Invocation) HasScope() bool { return inv.ScopeID != "" }

// Reply sends resp through the originating surface.
func (inv *Invocation) Reply(ctx context.Context, resp Response) error {
	if inv.reply == nil {
		return ErrNoReplyChannel
	}
	return inv.reply(ctx, resp)
}

// ReplyText sends a plain text response.
func (inv *Invocation) ReplyText(ctx context.Context, content string) error {
	return inv.Reply(ctx, Response{Content: content})
}

// ReplyEmbed sends a single embed.
func (inv *Invocation) ReplyEmbed(ctx context.Context, embed *discordgo.MessageEmbed) error {
	return inv.Reply(ctx, Response{Embeds: []*discordgo.MessageEmbed{embed}})
}

// Command is the universal contract: identity plus execution. Permissions, slash
// definitions and usage hints stay in optional interfaces discovered via Root.
type Command interface {
	Name() string
	Description() string
	Run(ctx context.Context, inv *Invocation) error
}

// NoArguments is an Arguments that never holds a value.
type NoArguments struct{}

func (NoArguments) String(string) (string, bool) { return "", false }
func (NoArguments) Integer(string) (int64, bool) { return 0, false }
func (NoArguments) User(string) (*User, bool)    { return nil, false }
