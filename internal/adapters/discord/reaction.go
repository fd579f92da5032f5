package discord

import (
	"context"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	pkgdiscord "hypebot/pkg/discord"
)

// HandleReactionAdd sends the signup DM when someone reacts as interested
// on an announcement.
func (h *Handler) HandleReactionAdd(parent context.Context, s *discordgo.Session, r *discordgo.MessageReactionAdd) {
	botID := ""
	if s.State != nil && s.State.User != nil {
		botID = s.State.User.ID
	}
	if !h.isSignup(r, botID) {
		return
	}

	ctx, cancel := requestContext(parent)
	defer cancel()
	if err := h.eventUseCase.AcknowledgeSignup(ctx, r.MessageID, r.UserID); err != nil {
		log.Error().Err(err).Str("message_id", r.MessageID).Str("user_id", r.UserID).Msg("signup acknowledgement failed")
	}
}

func (h *Handler) isSignup(r *discordgo.MessageReactionAdd, botID string) bool {
	if r == nil || r.MessageReaction == nil {
		return false
	}
	if r.Emoji.Name != pkgdiscord.InterestedEmoji || r.ChannelID != h.eventChannelID {
		return false
	}
	if r.UserID == "" || r.UserID == botID {
		return false
	}
	return r.Member == nil || r.Member.User == nil || !r.Member.User.Bot
}
