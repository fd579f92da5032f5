// Package scheduler implements an in-memory, time-ordered queue of one-shot
// tasks. Nothing is persisted: tasks queued when the process stops are lost
// and must be recovered by the caller (see jobs.SweepLoop).
package scheduler

import (
	"container/heap"
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"
)

const DefaultWorkers = 4

// Action is the closure run when a task fires. Its error is logged and
// dropped; the scheduler never retries.
type Action func(ctx context.Context) error

// Task is a queued one-shot action.
type Task struct {
	ID     string
	Name   string
	FireAt time.Time
	Action Action

	seq   uint64
	index int
}

// TaskInfo is a read-only view of a queued task.
type TaskInfo struct {
	ID     string    `json:"id"`
	Name   string    `json:"name"`
	FireAt time.Time `json:"fire_at"`
}

// Scheduler dispatches each due task to its own goroutine, bounded by a
// weighted semaphore, so a slow action never delays the heap scan.
type Scheduler struct {
	mu    sync.Mutex
	queue taskHeap
	seq   uint64
	wake  chan struct{}

	sem      *semaphore.Weighted
	inflight sync.WaitGroup
	logger   zerolog.Logger
}

type Option func(*Scheduler)

// WithWorkers bounds the number of actions running at once.
func WithWorkers(n int) Option {
	return func(s *Scheduler) {
		if n > 0 {
			s.sem = semaphore.NewWeighted(int64(n))
		}
	}
}

func WithLogger(l zerolog.Logger) Option {
	return func(s *Scheduler) { s.logger = l }
}

func New(opts ...Option) *Scheduler {
	s := &Scheduler{
		wake:   make(chan struct{}, 1),
		sem:    semaphore.NewWeighted(DefaultWorkers),
		logger: log.Logger.With().Str("component", "scheduler").Logger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Schedule queues action to run at (or after) at and returns the task id.
// A time already in the past is still queued and runs on the next cycle.
func (s *Scheduler) Schedule(at time.Time, name string, action func(ctx context.Context) error) string {
	t := &Task{
		ID:     uuid.NewString(),
		Name:   name,
		FireAt: at,
		Action: action,
	}

	s.mu.Lock()
	s.seq++
	t.seq = s.seq
	heap.Push(&s.queue, t)
	isHead := s.queue[0] == t
	s.mu.Unlock()

	if isHead {
		s.notify()
	}
	s.logger.Debug().Str("task", name).Str("task_id", t.ID).Time("fire_at", at).Msg("task scheduled")
	return t.ID
}

func (s *Scheduler) notify() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// Run dispatches tasks until ctx is cancelled, then waits for running
// actions to return. Tasks still queued at that point are dropped.
func (s *Scheduler) Run(ctx context.Context) error {
	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer s.inflight.Wait()

	for {
		due, wait := s.popDue(time.Now())
		for _, t := range due {
			s.dispatch(ctx, t)
		}

		var fire <-chan time.Time
		if wait >= 0 {
			timer.Reset(wait)
			fire = timer.C
		}

		select {
		case <-ctx.Done():
			timer.Stop()
			s.logger.Info().Int("dropped", s.Len()).Msg("scheduler stopped")
			return nil
		case <-s.wake:
			timer.Stop()
		case <-fire:
		}
	}
}

// popDue removes every task due at now. wait is the delay until the next
// task, or -1 when the queue is empty.
func (s *Scheduler) popDue(now time.Time) ([]*Task, time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var due []*Task
	for s.queue.Len() > 0 && !s.queue[0].FireAt.After(now) {
		due = append(due, heap.Pop(&s.queue).(*Task))
	}
	if s.queue.Len() == 0 {
		return due, -1
	}
	return due, s.queue[0].FireAt.Sub(now)
}

func (s *Scheduler) dispatch(ctx context.Context, t *Task) {
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		if err := s.sem.Acquire(ctx, 1); err != nil {
			s.logger.Warn().Str("task", t.Name).Str("task_id", t.ID).Msg("task dropped on shutdown")
			return
		}
		defer s.sem.Release(1)
		s.execute(ctx, t)
	}()
}

func (s *Scheduler) execute(ctx context.Context, t *Task) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error().Str("task", t.Name).Str("task_id", t.ID).Interface("panic", r).Msg("task panicked")
		}
	}()

	start := time.Now()
	if err := t.Action(ctx); err != nil {
		s.logger.Error().Err(err).Str("task", t.Name).Str("task_id", t.ID).Msg("task failed")
		return
	}
	s.logger.Debug().Str("task", t.Name).Str("task_id", t.ID).
		Dur("late_by", start.Sub(t.FireAt)).Dur("took", time.Since(start)).Msg("task done")
}

// Len returns the number of queued tasks.
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queue.Len()
}

// Pending returns the queued tasks ordered by fire time.
func (s *Scheduler) Pending() []TaskInfo {
	s.mu.Lock()
	out := make([]TaskInfo, 0, len(s.queue))
	seqs := make(map[string]uint64, len(s.queue))
	for _, t := range s.queue {
		out = append(out, TaskInfo{ID: t.ID, Name: t.Name, FireAt: t.FireAt})
		seqs[t.ID] = t.seq
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].FireAt.Equal(out[j].FireAt) {
			return seqs[out[i].ID] < seqs[out[j].ID]
		}
		return out[i].FireAt.Before(out[j].FireAt)
	})
	return out
}
