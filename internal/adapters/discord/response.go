package discord

import (
	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	"hypebot/internal/domain"
	pkgdiscord "hypebot/pkg/discord"
)

// Nick > GlobalName > Username
func resolveDisplayName(member *discordgo.Member) string {
	if member == nil || member.User == nil {
		return ""
	}
	if member.Nick != "" {
		return member.Nick
	}
	if member.User.GlobalName != "" {
		return member.User.GlobalName
	}
	return member.User.Username
}

func respondEphemeral(s *discordgo.Session, i *discordgo.Interaction, content string) {
	err := s.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		log.Warn().Err(err).Str("interaction_id", i.ID).Msg("discord: respond failed")
	}
}

func respondEmbed(s *discordgo.Session, i *discordgo.Interaction, content string, embed *discordgo.MessageEmbed) {
	err := s.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content:         content,
			Embeds:          []*discordgo.MessageEmbed{embed},
			AllowedMentions: &discordgo.MessageAllowedMentions{},
		},
	})
	if err != nil {
		log.Warn().Err(err).Str("interaction_id", i.ID).Msg("discord: respond failed")
	}
}

// deferEphemeral acknowledges i so slower work can follow with editResponse.
func deferEphemeral(s *discordgo.Session, i *discordgo.Interaction) bool {
	err := s.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Flags: discordgo.MessageFlagsEphemeral},
	})
	if err != nil {
		log.Warn().Err(err).Str("interaction_id", i.ID).Msg("discord: defer failed")
		return false
	}
	return true
}

func editResponse(s *discordgo.Session, i *discordgo.Interaction, content string) {
	if _, err := s.InteractionResponseEdit(i, &discordgo.WebhookEdit{Content: &content}); err != nil {
		log.Warn().Err(err).Str("interaction_id", i.ID).Msg("discord: edit response failed")
	}
}

// errorMessage translates err for the invoking user and logs anything that
// is not a plain domain error.
func (h *Handler) errorMessage(err error, command string) string {
	if !domain.IsUserFacing(err) {
		log.Error().Err(err).Str("command", command).Msg("command failed")
	}
	return h.translate(pkgdiscord.ErrorKey(err), nil)
}
