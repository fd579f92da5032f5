package database

import (
	"time"

	"github.com/jackc/pgx/v5/pgtype"

	"hypebot/internal/domain/entities"
)

const eventColumns = `id, name, description, location, organizer, thumbnail_url, creator_id,
	scheduled_at, message_id, reminder_sent, created_at`

// eventRow mirrors the events table; pgx.RowToStructByName fills it.
type eventRow struct {
	ID           int64              `db:"id"`
	Name         string             `db:"name"`
	Description  string             `db:"description"`
	Location     string             `db:"location"`
	Organizer    string             `db:"organizer"`
	ThumbnailURL string             `db:"thumbnail_url"`
	CreatorID    string             `db:"creator_id"`
	ScheduledAt  pgtype.Timestamptz `db:"scheduled_at"`
	MessageID    string             `db:"message_id"`
	ReminderSent int16              `db:"reminder_sent"`
	CreatedAt    pgtype.Timestamptz `db:"created_at"`
}

// pgtypeTimestamptzToTime returns t.Time in UTC when Valid, else zero time.
func pgtypeTimestamptzToTime(t pgtype.Timestamptz) time.Time {
	if !t.Valid {
		return time.Time{}
	}
	return t.Time.UTC()
}

func timeToTimestamptz(t time.Time) pgtype.Timestamptz {
	if t.IsZero() {
		return pgtype.Timestamptz{}
	}
	return pgtype.Timestamptz{Time: t.UTC(), Valid: true}
}

func eventToDomain(r eventRow) entities.Event {
	return entities.Event{
		ID:           uint(r.ID),
		Name:         r.Name,
		Description:  r.Description,
		Location:     r.Location,
		Organizer:    r.Organizer,
		ThumbnailURL: r.ThumbnailURL,
		CreatorID:    r.CreatorID,
		ScheduledAt:  pgtypeTimestamptzToTime(r.ScheduledAt),
		MessageID:    r.MessageID,
		ReminderSent: entities.ReminderFlag(r.ReminderSent),
		CreatedAt:    pgtypeTimestamptzToTime(r.CreatedAt),
	}
}
