package input

import (
	"context"
	"time"

	"hypebot/internal/domain"
	"hypebot/internal/domain/entities"
)

// EventStatus is a stored event together with its derived lifecycle state.
type EventStatus struct {
	Event entities.Event
	State domain.State
	Next  domain.Transition
}

// SweepReport summarizes one full rescan of the store.
type SweepReport struct {
	Scanned  int
	Reminded int
	Retired  int
	Failed   int
}

type LifecycleUseCase interface {
	Remind(ctx context.Context, id uint) error
	Retire(ctx context.Context, id uint) error
	Sweep(ctx context.Context) (SweepReport, error)
	Resume(ctx context.Context) error
	ListStatuses(ctx context.Context, now time.Time) ([]EventStatus, error)
}
