// Package memory is an in-process EventRepository. It backs the tests and
// DATABASE_URL=memory:// for local runs; data is lost on restart.
package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"hypebot/internal/domain"
	"hypebot/internal/domain/entities"
	"hypebot/internal/ports/output"
)

var _ output.EventRepository = (*EventRepository)(nil)

type EventRepository struct {
	mu     sync.RWMutex
	nextID uint
	rows   map[uint]entities.Event
}

func NewEventRepository() *EventRepository {
	return &EventRepository{rows: make(map[uint]entities.Event)}
}

func (r *EventRepository) Create(ctx context.Context, event *entities.Event) error {
	if event.MessageID == "" {
		return &domain.StoreError{Op: "create event", Err: errors.New("message id is required")}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	event.ID = r.nextID
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}
	r.rows[event.ID] = *event
	return nil
}

func (r *EventRepository) FindByID(ctx context.Context, id uint) (*entities.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.rows[id]
	if !ok {
		return nil, domain.ErrEventNotFound
	}
	return &e, nil
}

// FindByName returns the earliest event called name.
func (r *EventRepository) FindByName(ctx context.Context, name string) (*entities.Event, error) {
	return r.findFirst(func(e *entities.Event) bool { return e.Name == name })
}

func (r *EventRepository) FindByMessageID(ctx context.Context, messageID string) (*entities.Event, error) {
	return r.findFirst(func(e *entities.Event) bool { return e.MessageID == messageID })
}

func (r *EventRepository) findFirst(match func(*entities.Event) bool) (*entities.Event, error) {
	for _, e := range r.snapshot() {
		if match(&e) {
			return &e, nil
		}
	}
	return nil, domain.ErrEventNotFound
}

func (r *EventRepository) ListOrderedByTime(ctx context.Context) ([]entities.Event, error) {
	return r.snapshot(), nil
}

func (r *EventRepository) snapshot() []entities.Event {
	r.mu.RLock()
	out := make([]entities.Event, 0, len(r.rows))
	for _, e := range r.rows {
		out = append(out, e)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].ScheduledAt.Equal(out[j].ScheduledAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].ScheduledAt.Before(out[j].ScheduledAt)
	})
	return out
}

func (r *EventRepository) SetReminderSent(ctx context.Context, id uint, flag entities.ReminderFlag) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.rows[id]
	if !ok || e.ReminderSent >= flag {
		return nil
	}
	e.ReminderSent = flag
	r.rows[id] = e
	return nil
}

func (r *EventRepository) Delete(ctx context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rows, id)
	return nil
}

func (r *EventRepository) Ping(ctx context.Context) error {
	return nil
}
