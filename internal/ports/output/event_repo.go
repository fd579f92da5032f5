package output

import (
	"context"

	"hypebot/internal/domain/entities"
)

// EventRepository is the durable store of confirmed events.
//
// Lookups return domain.ErrEventNotFound when no row matches. Delete of a
// missing row is not an error. SetReminderSent never moves the flag backward.
type EventRepository interface {
	Create(ctx context.Context, event *entities.Event) error
	FindByID(ctx context.Context, id uint) (*entities.Event, error)
	FindByName(ctx context.Context, name string) (*entities.Event, error)
	FindByMessageID(ctx context.Context, messageID string) (*entities.Event, error)
	ListOrderedByTime(ctx context.Context) ([]entities.Event, error)
	SetReminderSent(ctx context.Context, id uint, flag entities.ReminderFlag) error
	Delete(ctx context.Context, id uint) error
	Ping(ctx context.Context) error
}
