package application

import (
	"sync"
	"time"

	"hypebot/internal/domain"
	"hypebot/internal/domain/entities"
)

type draftEntry struct {
	mu       sync.Mutex
	draft    *entities.Draft
	revision uint64
}

// DraftSlots holds at most one pending draft per scope (guild + channel).
// Every scope is locked on its own, so creators in different channels never
// evict each other.
type DraftSlots struct {
	mu    sync.RWMutex
	slots map[string]*draftEntry
	now   func() time.Time
}

func NewDraftSlots() *DraftSlots {
	return &DraftSlots{
		slots: make(map[string]*draftEntry),
		now:   time.Now,
	}
}

func (d *DraftSlots) entry(scope string, create bool) *draftEntry {
	d.mu.RLock()
	e := d.slots[scope]
	d.mu.RUnlock()
	if e != nil || !create {
		return e
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if e = d.slots[scope]; e == nil {
		e = &draftEntry{}
		d.slots[scope] = e
	}
	return e
}

// Set replaces the draft of draft.Scope unconditionally and returns the
// stored copy. A previous unconfirmed draft in that scope is discarded.
func (d *DraftSlots) Set(draft entities.Draft) entities.Draft {
	e := d.entry(draft.Scope, true)

	e.mu.Lock()
	defer e.mu.Unlock()
	e.revision++
	draft.Revision = e.revision
	draft.UpdatedAt = d.now()
	draft.Event.ID = 0
	draft.Event.MessageID = ""
	draft.Event.ReminderSent = entities.ReminderPending
	e.draft = &draft
	return draft
}

// Get returns the current draft of scope, if any.
func (d *DraftSlots) Get(scope string) (entities.Draft, bool) {
	e := d.entry(scope, false)
	if e == nil {
		return entities.Draft{}, false
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.draft == nil {
		return entities.Draft{}, false
	}
	return *e.draft, true
}

// Confirm hands the draft of scope to its creator for posting. It does not
// clear the slot; call Clear once the event is persisted.
func (d *DraftSlots) Confirm(scope, requesterID string) (entities.Draft, error) {
	draft, ok := d.Get(scope)
	if !ok {
		return entities.Draft{}, domain.ErrDraftNotFound
	}
	if draft.CreatorID != requesterID {
		return entities.Draft{}, domain.ErrUnauthorized
	}
	return draft, nil
}

// Clear empties scope if it still holds revision. It reports whether the
// slot was cleared; a draft replaced in the meantime is kept.
func (d *DraftSlots) Clear(scope string, revision uint64) bool {
	e := d.entry(scope, false)
	if e == nil {
		return false
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.draft == nil || e.draft.Revision != revision {
		return false
	}
	e.draft = nil
	return true
}
