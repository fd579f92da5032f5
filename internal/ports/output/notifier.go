package output

import (
	"context"

	"hypebot/internal/domain/entities"
)

// Notifier is the chat platform transport for announcements and DMs.
type Notifier interface {
	// PostAnnouncement publishes the event and returns the message id.
	PostAnnouncement(ctx context.Context, event *entities.Event) (string, error)
	// DeleteAnnouncement removes the message. A missing message is not an error.
	DeleteAnnouncement(ctx context.Context, messageID string) error
	// ListInterestedUsers returns the users who reacted as interested.
	ListInterestedUsers(ctx context.Context, messageID string) ([]string, error)
	// SendDirectMessage is best-effort; callers log failures and carry on.
	SendDirectMessage(ctx context.Context, userID, text string) error
}
