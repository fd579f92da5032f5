package domain

import (
	"time"

	"hypebot/internal/domain/entities"
)

const (
	// ReminderLead is how long before the start the reminder becomes due.
	ReminderLead = 10 * time.Minute
	// RetirementWindow is how long after the start an event is removed.
	RetirementWindow = 60 * time.Minute
)

// State is the lifecycle state derived from stored fields and the clock.
type State int

const (
	StatePending State = iota
	StateReminded
	StateRetired
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateReminded:
		return "reminded"
	case StateRetired:
		return "retired"
	default:
		return "unknown"
	}
}

// Transition is the action a trigger should take for an event.
type Transition int

const (
	TransitionNone Transition = iota
	TransitionRemind
	TransitionRetire
)

func (t Transition) String() string {
	switch t {
	case TransitionRemind:
		return "remind"
	case TransitionRetire:
		return "retire"
	default:
		return "none"
	}
}

// Decision is the result of evaluating the transition guard at one instant.
type Decision struct {
	ReminderDue  bool
	RetireDue    bool
	ShouldRemind bool
	ShouldRetire bool
}

// Evaluate computes the transition guard for e at now. It is a pure function
// of the stored fields; callers must evaluate a freshly read row.
func Evaluate(e *entities.Event, now time.Time) Decision {
	start := e.ScheduledAt
	reminderDue := !now.Before(start.Add(-ReminderLead)) && now.Before(start)
	retireDue := !now.Before(start.Add(RetirementWindow))
	return Decision{
		ReminderDue:  reminderDue,
		RetireDue:    retireDue,
		ShouldRemind: reminderDue && e.ReminderSent == entities.ReminderPending,
		ShouldRetire: retireDue,
	}
}

// Next returns the single transition to apply. Retirement wins over a
// reminder that is due at the same time.
func (d Decision) Next() Transition {
	switch {
	case d.ShouldRetire:
		return TransitionRetire
	case d.ShouldRemind:
		return TransitionRemind
	default:
		return TransitionNone
	}
}

// StateOf reports the lifecycle state of a stored event. An event whose
// retirement is due is reported as retired even before a trigger removes it.
func StateOf(e *entities.Event, now time.Time) State {
	if Evaluate(e, now).RetireDue {
		return StateRetired
	}
	if e.ReminderSent == entities.ReminderSent {
		return StateReminded
	}
	return StatePending
}

// ReminderAt is the instant the reminder becomes due.
func ReminderAt(e *entities.Event) time.Time {
	return e.ScheduledAt.Add(-ReminderLead)
}

// RetireAt is the instant the event becomes eligible for retirement.
func RetireAt(e *entities.Event) time.Time {
	return e.ScheduledAt.Add(RetirementWindow)
}
