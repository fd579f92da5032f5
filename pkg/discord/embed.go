package discord

import (
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"hypebot/internal/domain/entities"
	"hypebot/pkg/eventtime"
)

const (
	embedColor = 0x9B59B6

	InterestedEmoji   = "✅"
	UninterestedEmoji = "❌"
)

// EmbedLabels carries the translated strings an announcement needs.
type EmbedLabels struct {
	ReactHint string
	Footer    string
	Location  string
	Organizer string
}

// BuildEventEmbed renders an event as the announcement (or draft preview)
// embed. The start time is printed in loc and attached as the embed
// timestamp so clients also show it in the reader's own zone.
func BuildEventEmbed(event *entities.Event, loc *time.Location, labels EmbedLabels) *discordgo.MessageEmbed {
	var b strings.Builder
	if when := eventtime.Format(event.ScheduledAt, loc); when != "" {
		b.WriteString(fmt.Sprintf("**%s**\n", when))
	}
	b.WriteString(event.Description)
	if labels.ReactHint != "" {
		b.WriteString("\n\n")
		b.WriteString(labels.ReactHint)
	}

	embed := &discordgo.MessageEmbed{
		Title:       event.Name,
		Description: b.String(),
		Color:       embedColor,
		Footer:      &discordgo.MessageEmbedFooter{Text: labels.Footer},
	}
	if !event.ScheduledAt.IsZero() {
		embed.Timestamp = event.ScheduledAt.UTC().Format(time.RFC3339)
	}
	if event.ThumbnailURL != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: event.ThumbnailURL}
	}
	if event.Location != "" {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: labels.Location, Value: event.Location, Inline: true})
	}
	if event.Organizer != "" {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: labels.Organizer, Value: event.Organizer, Inline: true})
	}
	return embed
}
