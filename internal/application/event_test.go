package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"hypebot/internal/domain"
	"hypebot/internal/domain/entities"
	"hypebot/internal/infrastructure/memory"
	"hypebot/internal/ports/input"
)

const scope = "guild-1:channel-1"

type eventFixture struct {
	*lifecycleFixture
	drafts *DraftSlots
	events *EventService
}

func newEventFixture(t *testing.T) *eventFixture {
	t.Helper()
	lf := newLifecycleFixture(t)
	drafts := NewDraftSlots()
	svc := NewEventService(lf.store, lf.notifier, drafts, lf.svc, fakeT{},
		WithClock(lf.clock.Now), WithDefaultThumbnail("https://cdn.example/default.png"), quietLogger())
	return &eventFixture{lifecycleFixture: lf, drafts: drafts, events: svc}
}

func (f *eventFixture) request(creator, name string, start time.Time) input.DraftRequest {
	return input.DraftRequest{
		Scope:       scope,
		CreatorID:   creator,
		Name:        name,
		When:        start.Format("3:04pm 2006-01-02"),
		Description: "Bring snacks",
		Location:    "Room 4",
	}
}

func TestCreateDraft(t *testing.T) {
	f := newEventFixture(t)
	ctx := context.Background()
	start := f.clock.Now().Add(2 * time.Hour)

	req := f.request("alice", "  Movie night ", start)
	req.ThumbnailURL = "<https://img.example/poster.png>"
	draft, err := f.events.CreateDraft(ctx, req)
	require.NoError(t, err)

	assert.Equal(t, "Movie night", draft.Event.Name)
	assert.Equal(t, "<@alice>", draft.Event.Organizer)
	assert.Equal(t, "https://img.example/poster.png", draft.Event.ThumbnailURL)
	assert.True(t, start.Equal(draft.Event.ScheduledAt))
	assert.Equal(t, time.UTC, draft.Event.ScheduledAt.Location())

	got, err := f.events.GetDraft(ctx, scope)
	require.NoError(t, err)
	assert.Equal(t, draft.Revision, got.Revision)
}

func TestCreateDraft_Validation(t *testing.T) {
	f := newEventFixture(t)
	ctx := context.Background()
	now := f.clock.Now()

	_, err := f.events.CreateDraft(ctx, input.DraftRequest{Scope: scope, CreatorID: "alice", Name: "x"})
	assert.ErrorIs(t, err, domain.ErrMissingArgument)

	req := f.request("alice", "Past", now.Add(-time.Hour))
	_, err = f.events.CreateDraft(ctx, req)
	assert.ErrorIs(t, err, domain.ErrDateTimeInPast)

	req = f.request("alice", "Bad", now.Add(time.Hour))
	req.When = "next friday"
	_, err = f.events.CreateDraft(ctx, req)
	assert.ErrorIs(t, err, domain.ErrInvalidDateTime)

	req = f.request("alice", "Thumb", now.Add(time.Hour))
	req.ThumbnailURL = "ftp://nope"
	draft, err := f.events.CreateDraft(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example/default.png", draft.Event.ThumbnailURL)

	_, err = f.events.GetDraft(ctx, "other-scope")
	assert.ErrorIs(t, err, domain.ErrDraftNotFound)
}

func TestConfirmDraft_Ownership(t *testing.T) {
	f := newEventFixture(t)
	ctx := context.Background()
	_, err := f.events.CreateDraft(ctx, f.request("alice", "Hike", f.clock.Now().Add(3*time.Hour)))
	require.NoError(t, err)

	_, err = f.events.ConfirmDraft(ctx, scope, "bob")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	assert.Empty(t, f.notifier.posted)

	ev, err := f.events.ConfirmDraft(ctx, scope, "alice")
	require.NoError(t, err)
	assert.NotZero(t, ev.ID)
	assert.NotEmpty(t, ev.MessageID)
	assert.Equal(t, "alice", ev.CreatorID)
	assert.Equal(t, entities.ReminderPending, ev.ReminderSent)

	_, err = f.events.GetDraft(ctx, scope)
	assert.ErrorIs(t, err, domain.ErrDraftNotFound, "draft is cleared on confirm")

	_, err = f.events.ConfirmDraft(ctx, scope, "alice")
	assert.ErrorIs(t, err, domain.ErrDraftNotFound)
}

func TestConfirmDraft_PostFailureKeepsDraft(t *testing.T) {
	ctx := context.Background()
	c := newClock(time.Date(2026, 7, 4, 18, 0, 0, 0, time.UTC))
	store := memory.NewEventRepository()
	notifier := new(mockNotifier)
	sched := &manualScheduler{}
	drafts := NewDraftSlots()
	lifecycle := NewLifecycleService(store, notifier, sched, fakeT{}, WithClock(c.Now), quietLogger())
	svc := NewEventService(store, notifier, drafts, lifecycle, fakeT{}, WithClock(c.Now), quietLogger())

	_, err := svc.CreateDraft(ctx, input.DraftRequest{
		Scope: scope, CreatorID: "alice", Name: "Hike", Description: "d", Location: "l",
		When: "9:00pm 2026-07-04",
	})
	require.NoError(t, err)

	transportErr := &domain.TransportError{Op: "post announcement", Err: errors.New("429")}
	notifier.On("PostAnnouncement", mock.Anything, mock.AnythingOfType("*entities.Event")).Return("", transportErr).Once()

	_, err = svc.ConfirmDraft(ctx, scope, "alice")
	var te *domain.TransportError
	require.ErrorAs(t, err, &te)

	_, ok := drafts.Get(scope)
	assert.True(t, ok)
	assert.Empty(t, sched.queued())
	notifier.AssertExpectations(t)
}

type createFailingStore struct {
	*memory.EventRepository
}

func (createFailingStore) Create(ctx context.Context, event *entities.Event) error {
	return &domain.StoreError{Op: "create event", Err: errors.New("disk full")}
}

func TestConfirmDraft_StoreFailureRemovesAnnouncement(t *testing.T) {
	ctx := context.Background()
	c := newClock(time.Date(2026, 7, 4, 18, 0, 0, 0, time.UTC))
	store := createFailingStore{memory.NewEventRepository()}
	notifier := newFakeNotifier()
	drafts := NewDraftSlots()
	lifecycle := NewLifecycleService(store, notifier, &manualScheduler{}, fakeT{}, WithClock(c.Now), quietLogger())
	svc := NewEventService(store, notifier, drafts, lifecycle, fakeT{}, WithClock(c.Now), quietLogger())

	_, err := svc.CreateDraft(ctx, input.DraftRequest{
		Scope: scope, CreatorID: "alice", Name: "Hike", Description: "d", Location: "l",
		When: "9:00pm 2026-07-04",
	})
	require.NoError(t, err)

	_, err = svc.ConfirmDraft(ctx, scope, "alice")
	var se *domain.StoreError
	require.ErrorAs(t, err, &se)
	assert.Empty(t, notifier.posted, "announcement without a row is removed")
	assert.Len(t, notifier.deleted, 1)
}

func TestCancelEvent(t *testing.T) {
	f := newEventFixture(t)
	ctx := context.Background()
	_, err := f.events.CreateDraft(ctx, f.request("alice", "Concert", f.clock.Now().Add(5*time.Hour)))
	require.NoError(t, err)
	ev, err := f.events.ConfirmDraft(ctx, scope, "alice")
	require.NoError(t, err)
	f.notifier.setInterested(ev.MessageID, "u9")

	_, err = f.events.CancelEvent(ctx, "Concert", "bob")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = f.events.CancelEvent(ctx, "Nope", "alice")
	assert.ErrorIs(t, err, domain.ErrEventNotFound)

	cancelled, err := f.events.CancelEvent(ctx, "Concert", "alice")
	require.NoError(t, err)
	assert.Equal(t, ev.ID, cancelled.ID)
	assert.Equal(t, []dm{{UserID: "u9", Text: "dm.cancelled Name=Concert"}}, f.notifier.sent())

	_, err = f.store.FindByID(ctx, ev.ID)
	assert.ErrorIs(t, err, domain.ErrEventNotFound)
}

func TestAcknowledgeSignup(t *testing.T) {
	f := newEventFixture(t)
	ctx := context.Background()
	ev := f.addEvent(t, "Quiz", "900", f.clock.Now().Add(time.Hour), entities.ReminderPending)

	require.NoError(t, f.events.AcknowledgeSignup(ctx, ev.MessageID, "u1"))
	require.NoError(t, f.events.AcknowledgeSignup(ctx, "unrelated", "u2"))
	assert.Equal(t, []dm{{UserID: "u1", Text: "dm.signup Name=Quiz"}}, f.notifier.sent())
}

// Draft at T for T+30m, confirm, reminder at T+20m, retirement at T+90m.
func TestEventLifecycle_EndToEnd(t *testing.T) {
	f := newEventFixture(t)
	ctx := context.Background()
	T := f.clock.Now()

	_, err := f.events.CreateDraft(ctx, f.request("alice", "Launch party", T.Add(30*time.Minute)))
	require.NoError(t, err)
	ev, err := f.events.ConfirmDraft(ctx, scope, "alice")
	require.NoError(t, err)
	require.True(t, f.notifier.isPosted(ev.MessageID))
	f.notifier.setInterested(ev.MessageID, "u1", "u2", "u3")

	tasks := f.scheduler.queued()
	require.Len(t, tasks, 1)
	assert.Equal(t, T.Add(20*time.Minute), tasks[0].At)

	// Nothing is due before the reminder lead.
	f.clock.Set(T.Add(19 * time.Minute))
	assert.Empty(t, f.scheduler.runDue(ctx, f.clock.Now()))
	assert.Empty(t, f.notifier.sent())

	f.clock.Set(T.Add(20 * time.Minute))
	assert.Empty(t, f.scheduler.runDue(ctx, f.clock.Now()))
	require.Len(t, f.notifier.sent(), 3)
	stored, err := f.store.FindByID(ctx, ev.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.ReminderSent, stored.ReminderSent)

	tasks = f.scheduler.queued()
	require.Len(t, tasks, 1)
	assert.Equal(t, T.Add(90*time.Minute), tasks[0].At)

	// A sweep between the two tasks changes nothing.
	f.clock.Set(T.Add(45 * time.Minute))
	report, err := f.events.lifecycle.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Reminded+report.Retired)

	f.clock.Set(T.Add(90 * time.Minute))
	assert.Empty(t, f.scheduler.runDue(ctx, f.clock.Now()))
	assert.False(t, f.notifier.isPosted(ev.MessageID))
	_, err = f.store.FindByID(ctx, ev.ID)
	assert.ErrorIs(t, err, domain.ErrEventNotFound)
	assert.Len(t, f.notifier.sent(), 3)
}
