package command

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/motortown-bot/pkg/cmd"
)

var (
	mentionRe = regexp.MustCompile(`^<@!?(\d+)>$`)
	colorRe   = regexp.MustCompile(`^[0-9A-Fa-f]{6}$`)
)

// chatCommand reads a trailing hex token as its color.
const chatCommand = "serverchat"

// ParsedText is a prefixed message split into a command name and positional tokens.
type ParsedText struct {
	Name string
	Args []string
}

// ParseText strips prefix from content and splits the rest on whitespace. The
// first token, lower-cased, names the command. ok is false only when content
// does not start with prefix; a bare prefix parses with an empty name so it
// is answered as an unknown command.
func ParseText(prefix, content string) (ParsedText, bool) {
	if prefix == "" || !strings.HasPrefix(content, prefix) {
		return ParsedText{}, false
	}
	fields := strings.Fields(content[len(prefix):])
	if len(fields) == 0 {
		return ParsedText{Args: []string{}}, true
	}
	return ParsedText{Name: strings.ToLower(fields[0]), Args: fields[1:]}, true
}

// MemberCache is the locally cached guild member list used to resolve mentions.
type MemberCache interface {
	Member(guildID, userID string) (*discordgo.Member, error)
}

// TextArguments maps named accessors onto positional tokens:
//
//	unique_id  first token
//	message    all tokens joined by one space (serverchat drops a trailing color)
//	reason     tokens from the third on, when there are more than two
//	color      serverchat only: a trailing six hex digit token
//	hours      leading base-10 digits of the second token ("24h" is 24)
//	user       first token when it mentions a user carried by the message
//	           or a cached member
type TextArguments struct {
	command  string
	args     []string
	scopeID  string
	members  MemberCache
	mentions []*discordgo.User
}

// NewTextArguments builds the accessor for command with positional args.
// members may be nil.
func NewTextArguments(command string, args []string, scopeID string, members MemberCache) TextArguments {
	return TextArguments{command: command, args: args, scopeID: scopeID, members: members}
}

// WithMentions returns a copy that resolves mentions against users, the
// mentioned users a message arrives with.
func (a TextArguments) WithMentions(users []*discordgo.User) TextArguments {
	a.mentions = users
	return a
}

func (a TextArguments) String(name string) (string, bool) {
	switch name {
	case "unique_id":
		if len(a.args) == 0 {
			return "", false
		}
		return a.args[0], true
	case "message":
		words := a.args
		if a.command == chatCommand {
			if _, ok := a.trailingColor(); ok {
				words = words[:len(words)-1]
			}
		}
		if len(words) == 0 {
			return "", false
		}
		return strings.Join(words, " "), true
	case "reason":
		if len(a.args) <= 2 {
			return "", false
		}
		return strings.Join(a.args[2:], " "), true
	case "color":
		if a.command != chatCommand {
			return "", false
		}
		return a.trailingColor()
	}
	return "", false
}

func (a TextArguments) trailingColor() (string, bool) {
	if len(a.args) == 0 {
		return "", false
	}
	last := a.args[len(a.args)-1]
	if !colorRe.MatchString(last) {
		return "", false
	}
	return last, true
}

func (a TextArguments) Integer(name string) (int64, bool) {
	if name != "hours" || len(a.args) < 2 {
		return 0, false
	}
	return leadingInt(a.args[1])
}

// leadingInt parses an optional sign followed by the longest run of decimal
// digits at the start of s, ignoring whatever comes after.
func leadingInt(s string) (int64, bool) {
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0, false
	}
	n, err := strconv.ParseInt(s[:end], 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

func (a TextArguments) User(string) (*cmd.User, bool) {
	if len(a.args) == 0 {
		return nil, false
	}
	m := mentionRe.FindStringSubmatch(a.args[0])
	if m == nil {
		return nil, false
	}
	id := m[1]

	for _, u := range a.mentions {
		if u != nil && u.ID == id {
			return userFromDiscord(u), true
		}
	}

	if a.members == nil || a.scopeID == "" {
		return nil, false
	}
	member, err := a.members.Member(a.scopeID, id)
	if err != nil || member == nil || member.User == nil {
		return nil, false
	}
	return userFromDiscord(member.User), true
}

// MessageSender is the part of the Discord session used to answer a text command.
type MessageSender interface {
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// FromMessage normalizes a prefixed text message. ok is false when the message
// is not a command. Replies quote the originating message; a response with
// embeds is sent as the embeds alone.
func FromMessage(s MessageSender, members MemberCache, prefix string, m *discordgo.Message) (*cmd.Invocation, bool) {
	parsed, ok := ParseText(prefix, m.Content)
	if !ok {
		return nil, false
	}

	invokerID := ""
	if m.Author != nil {
		invokerID = m.Author.ID
	}

	reply := func(ctx context.Context, resp cmd.Response) error {
		send := &discordgo.MessageSend{Reference: m.Reference()}
		if len(resp.Embeds) > 0 {
			send.Embeds = resp.Embeds
		} else {
			send.Content = resp.Content
		}
		_, err := s.ChannelMessageSendComplex(m.ChannelID, send, discordgo.WithContext(ctx))
		return err
	}

	args := NewTextArguments(parsed.Name, parsed.Args, m.GuildID, members).WithMentions(m.Mentions)
	inv := cmd.NewInvocation(parsed.Name, invokerID, m.GuildID, cmd.SurfaceText, args, reply)
	inv.Prefix = prefix
	return inv, true
}
