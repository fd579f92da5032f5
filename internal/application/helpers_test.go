package application

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"

	"hypebot/internal/domain"
	"hypebot/internal/domain/entities"
)

// clock is a settable time source shared by a test and the services.
type clock struct {
	mu  sync.Mutex
	now time.Time
}

func newClock(t time.Time) *clock { return &clock{now: t} }

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}

type fakeT struct{}

func (fakeT) T(locale, key string, data map[string]any) string {
	if len(data) == 0 {
		return key
	}
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := key
	for _, k := range keys {
		out += fmt.Sprintf(" %s=%v", k, data[k])
	}
	return out
}

type dm struct {
	UserID string
	Text   string
}

// fakeNotifier keeps announcements in memory. beforeList, when set, runs at
// the start of every ListInterestedUsers call.
type fakeNotifier struct {
	mu         sync.Mutex
	nextID     int
	posted     map[string]entities.Event
	deleted    []string
	interested map[string][]string
	dms        []dm
	beforeList func()
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{
		nextID:     1000,
		posted:     make(map[string]entities.Event),
		interested: make(map[string][]string),
	}
}

func (n *fakeNotifier) PostAnnouncement(ctx context.Context, event *entities.Event) (string, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.nextID++
	id := strconv.Itoa(n.nextID)
	n.posted[id] = *event
	return id, nil
}

func (n *fakeNotifier) DeleteAnnouncement(ctx context.Context, messageID string) error {
	if _, err := strconv.ParseUint(messageID, 10, 64); err != nil {
		return domain.ErrInvalidMessageID
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	delete(n.posted, messageID)
	n.deleted = append(n.deleted, messageID)
	return nil
}

func (n *fakeNotifier) ListInterestedUsers(ctx context.Context, messageID string) ([]string, error) {
	if n.beforeList != nil {
		n.beforeList()
	}
	if _, err := strconv.ParseUint(messageID, 10, 64); err != nil {
		return nil, domain.ErrInvalidMessageID
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.interested[messageID]...), nil
}

func (n *fakeNotifier) SendDirectMessage(ctx context.Context, userID, text string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.dms = append(n.dms, dm{UserID: userID, Text: text})
	return nil
}

func (n *fakeNotifier) setInterested(messageID string, users ...string) {
	n.mu.Lock()
	n.interested[messageID] = users
	n.mu.Unlock()
}

func (n *fakeNotifier) sent() []dm {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]dm(nil), n.dms...)
}

func (n *fakeNotifier) isPosted(messageID string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	_, ok := n.posted[messageID]
	return ok
}

// mockNotifier is used where a test needs a transport failure.
type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) PostAnnouncement(ctx context.Context, event *entities.Event) (string, error) {
	args := m.Called(ctx, event)
	return args.String(0), args.Error(1)
}

func (m *mockNotifier) DeleteAnnouncement(ctx context.Context, messageID string) error {
	return m.Called(ctx, messageID).Error(0)
}

func (m *mockNotifier) ListInterestedUsers(ctx context.Context, messageID string) ([]string, error) {
	args := m.Called(ctx, messageID)
	users, _ := args.Get(0).([]string)
	return users, args.Error(1)
}

func (m *mockNotifier) SendDirectMessage(ctx context.Context, userID, text string) error {
	return m.Called(ctx, userID, text).Error(0)
}

type queuedTask struct {
	At     time.Time
	Name   string
	Action func(ctx context.Context) error
}

// manualScheduler records tasks; the test decides when they run.
type manualScheduler struct {
	mu    sync.Mutex
	tasks []queuedTask
}

func (m *manualScheduler) Schedule(at time.Time, name string, action func(ctx context.Context) error) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tasks = append(m.tasks, queuedTask{At: at, Name: name, Action: action})
	return name
}

func (m *manualScheduler) queued() []queuedTask {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]queuedTask(nil), m.tasks...)
}

// runDue removes and runs every task due at now, in time order.
func (m *manualScheduler) runDue(ctx context.Context, now time.Time) []error {
	m.mu.Lock()
	sort.SliceStable(m.tasks, func(i, j int) bool { return m.tasks[i].At.Before(m.tasks[j].At) })
	var due, rest []queuedTask
	for _, t := range m.tasks {
		if !t.At.After(now) {
			due = append(due, t)
		} else {
			rest = append(rest, t)
		}
	}
	m.tasks = rest
	m.mu.Unlock()

	var errs []error
	for _, t := range due {
		if err := t.Action(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

func quietLogger() Option {
	return WithLogger(zerolog.Nop())
}
