package discord

import (
	"context"

	"github.com/bwmarrin/discordgo"
)

// interactionResponder is the part of the session that acknowledges interactions.
type interactionResponder interface {
	InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
}

// respondEphemeral answers an interaction with a message only the invoker sees.
func respondEphemeral(ctx context.Context, s interactionResponder, i *discordgo.Interaction, content string) error {
	return s.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	}, discordgo.WithContext(ctx))
}

// respondDeferred acknowledges an interaction publicly without an immediate
// reply; the single reply is delivered later by editing the response.
func respondDeferred(ctx context.Context, s interactionResponder, i *discordgo.Interaction) error {
	return s.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	}, discordgo.WithContext(ctx))
}
