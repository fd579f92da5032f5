package discord

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	"hypebot/internal/domain"
	"hypebot/internal/domain/entities"
	"hypebot/internal/ports/output"
	pkgdiscord "hypebot/pkg/discord"
)

// reactionPageSize is the largest page Discord serves for reaction users.
const reactionPageSize = 100

// restClient is the part of *discordgo.Session the notifier calls.
type restClient interface {
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
	MessageReactionAdd(channelID, messageID, emojiID string, options ...discordgo.RequestOption) error
	ChannelMessageDelete(channelID, messageID string, options ...discordgo.RequestOption) error
	MessageReactions(channelID, messageID, emojiID string, limit int, beforeID, afterID string, options ...discordgo.RequestOption) ([]*discordgo.User, error)
	UserChannelCreate(recipientID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	ChannelMessageSend(channelID, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

var _ output.Notifier = (*Notifier)(nil)

// Notifier posts announcements to the event channel and DMs users.
type Notifier struct {
	client    restClient
	channelID string
	t         output.T
	locale    string
	loc       *time.Location
}

func NewNotifier(client restClient, channelID string, translator output.T, locale string, loc *time.Location) *Notifier {
	return &Notifier{client: client, channelID: channelID, t: translator, locale: locale, loc: loc}
}

func (n *Notifier) PostAnnouncement(ctx context.Context, event *entities.Event) (string, error) {
	embed := pkgdiscord.BuildEventEmbed(event, n.loc, pkgdiscord.EmbedLabels{
		ReactHint: n.t.T(n.locale, "embed.react_hint", map[string]any{"Emoji": pkgdiscord.InterestedEmoji}),
		Footer:    n.t.T(n.locale, "embed.footer", nil),
		Location:  n.t.T(n.locale, "embed.location", nil),
		Organizer: n.t.T(n.locale, "embed.organizer", nil),
	})
	msg, err := n.client.ChannelMessageSendComplex(n.channelID, &discordgo.MessageSend{
		Embeds:          []*discordgo.MessageEmbed{embed},
		AllowedMentions: &discordgo.MessageAllowedMentions{},
	}, discordgo.WithContext(ctx))
	if err != nil {
		return "", &domain.TransportError{Op: "post announcement", Err: err}
	}

	// The announcement stands even if a reaction fails; users can add their own.
	for _, emoji := range []string{pkgdiscord.InterestedEmoji, pkgdiscord.UninterestedEmoji} {
		if err := n.client.MessageReactionAdd(n.channelID, msg.ID, emoji, discordgo.WithContext(ctx)); err != nil {
			log.Warn().Err(err).Str("message_id", msg.ID).Str("emoji", emoji).Msg("discord: add reaction failed")
		}
	}
	return msg.ID, nil
}

func (n *Notifier) DeleteAnnouncement(ctx context.Context, messageID string) error {
	if !pkgdiscord.IsSnowflake(messageID) {
		return domain.ErrInvalidMessageID
	}
	err := n.client.ChannelMessageDelete(n.channelID, messageID, discordgo.WithContext(ctx))
	if err != nil && !pkgdiscord.IsUnknownMessage(err) {
		return &domain.TransportError{Op: "delete announcement", Err: err}
	}
	return nil
}

// ListInterestedUsers pages through every ✅ reaction, skipping bots.
func (n *Notifier) ListInterestedUsers(ctx context.Context, messageID string) ([]string, error) {
	if !pkgdiscord.IsSnowflake(messageID) {
		return nil, domain.ErrInvalidMessageID
	}
	var (
		ids   []string
		after string
	)
	for {
		page, err := n.client.MessageReactions(n.channelID, messageID, pkgdiscord.InterestedEmoji,
			reactionPageSize, "", after, discordgo.WithContext(ctx))
		if err != nil {
			if pkgdiscord.IsUnknownMessage(err) {
				return ids, nil
			}
			return nil, &domain.TransportError{Op: "list reactions", Err: err}
		}
		for _, u := range page {
			if u == nil || u.Bot {
				continue
			}
			ids = append(ids, u.ID)
		}
		if len(page) < reactionPageSize {
			return ids, nil
		}
		after = page[len(page)-1].ID
	}
}

func (n *Notifier) SendDirectMessage(ctx context.Context, userID, text string) error {
	ch, err := n.client.UserChannelCreate(userID, discordgo.WithContext(ctx))
	if err != nil {
		return &domain.TransportError{Op: "open dm channel", Err: err}
	}
	if _, err := n.client.ChannelMessageSend(ch.ID, text, discordgo.WithContext(ctx)); err != nil {
		return &domain.TransportError{Op: fmt.Sprintf("dm user %s", userID), Err: err}
	}
	return nil
}
