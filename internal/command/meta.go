// Package command adapts Discord events to the canonical invocation in pkg/cmd
// and dispatches them to registered handlers.
package command

import (
	"github.com/bwmarrin/discordgo"

	"github.com/keshon/motortown-bot/pkg/cmd"
)

// SlashProvider is implemented by commands exposed as Discord application commands.
type SlashProvider interface {
	SlashDefinition() *discordgo.ApplicationCommand
}

// CategoryProvider groups commands in help and docs.
type CategoryProvider interface {
	Category() string
}

// UsageProvider supplies the usage line and example shown when a text command
// is missing a required argument. Both are written without the prefix.
type UsageProvider interface {
	Usage() (usage, example string)
}

// SlashDefinition returns the slash definition of c, looking through middlewares.
func SlashDefinition(c cmd.Command) *discordgo.ApplicationCommand {
	if sp, ok := cmd.Root(c).(SlashProvider); ok {
		return sp.SlashDefinition()
	}
	return nil
}

// Category returns the category of c or "" when it has none.
func Category(c cmd.Command) string {
	if cp, ok := cmd.Root(c).(CategoryProvider); ok {
		return cp.Category()
	}
	return ""
}

// Usage returns the usage hint of c.
func Usage(c cmd.Command) (usage, example string, ok bool) {
	up, ok := cmd.Root(c).(UsageProvider)
	if !ok {
		return "", "", false
	}
	usage, example = up.Usage()
	return usage, example, true
}

// SlashDefinitions collects the definitions of every registered slash command.
func SlashDefinitions(reg *cmd.Registry) []*discordgo.ApplicationCommand {
	var defs []*discordgo.ApplicationCommand
	for _, c := range reg.GetAll() {
		if def := SlashDefinition(c); def != nil {
			defs = append(defs, def)
		}
	}
	return defs
}

// RequiredOptions lists the required options of c's slash definition.
func RequiredOptions(c cmd.Command) []*discordgo.ApplicationCommandOption {
	def := SlashDefinition(c)
	if def == nil {
		return nil
	}
	var req []*discordgo.ApplicationCommandOption
	for _, opt := range def.Options {
		if opt.Required {
			req = append(req, opt)
		}
	}
	return req
}

// HasOption reports whether args holds a value for opt, using the accessor that matches its type.
func HasOption(args cmd.Arguments, opt *discordgo.ApplicationCommandOption) bool {
	switch opt.Type {
	case discordgo.ApplicationCommandOptionInteger:
		_, ok := args.Integer(opt.Name)
		return ok
	case discordgo.ApplicationCommandOptionUser:
		_, ok := args.User(opt.Name)
		return ok
	default:
		s, ok := args.String(opt.Name)
		return ok && s != ""
	}
}
