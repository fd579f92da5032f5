package entities

import "time"

// ReminderFlag is the persisted reminder guard. It only ever moves from
// ReminderPending to ReminderSent.
type ReminderFlag int

const (
	ReminderPending ReminderFlag = 0
	ReminderSent    ReminderFlag = 1
)

type Event struct {
	ID           uint
	Name         string
	Description  string
	Location     string
	Organizer    string
	ThumbnailURL string
	CreatorID    string
	ScheduledAt  time.Time // UTC
	MessageID    string    // announcement message, empty until posted
	ReminderSent ReminderFlag
	CreatedAt    time.Time
}

// IsPosted reports whether the public announcement exists.
func (e *Event) IsPosted() bool {
	return e.MessageID != ""
}

// Draft is an event template waiting for its creator to confirm it.
type Draft struct {
	Event     Event
	CreatorID string
	Scope     string
	Revision  uint64
	UpdatedAt time.Time
}
