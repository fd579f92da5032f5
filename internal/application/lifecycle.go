package application

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"hypebot/internal/domain"
	"hypebot/internal/domain/entities"
	"hypebot/internal/ports/input"
	"hypebot/internal/ports/output"
)

var _ input.LifecycleUseCase = (*LifecycleService)(nil)

// LifecycleService applies the reminder and retirement transitions. Both the
// precise scheduler and the periodic sweep go through it, and every
// transition re-reads the row right before acting.
//
// Reminders are at-least-once: the flag is written after the DMs go out, so
// two triggers that read the row before either writes both deliver.
type LifecycleService struct {
	events    output.EventRepository
	notifier  output.Notifier
	scheduler output.TaskScheduler
	t         output.T
	opts      serviceOptions
}

func NewLifecycleService(
	events output.EventRepository,
	notifier output.Notifier,
	scheduler output.TaskScheduler,
	translator output.T,
	opts ...Option,
) *LifecycleService {
	return &LifecycleService{
		events:    events,
		notifier:  notifier,
		scheduler: scheduler,
		t:         translator,
		opts:      newServiceOptions("lifecycle", opts),
	}
}

// Remind runs the due transition of event id. Retirement wins when both are
// due; nothing happens when the reminder was already sent.
func (s *LifecycleService) Remind(ctx context.Context, id uint) error {
	_, err := s.advance(ctx, id)
	return err
}

// Retire deletes the announcement and the row of event id. A missing row or
// message counts as already retired.
func (s *LifecycleService) Retire(ctx context.Context, id uint) error {
	ev, err := s.events.FindByID(ctx, id)
	if errors.Is(err, domain.ErrEventNotFound) {
		s.opts.logger.Debug().Uint("event_id", id).Msg("retire: event already gone")
		return nil
	}
	if err != nil {
		return err
	}
	return s.retire(ctx, ev)
}

// Cancel notifies every interested user, then retires the event at once.
// Tasks still queued for it find no row when they fire.
func (s *LifecycleService) Cancel(ctx context.Context, ev *entities.Event) error {
	users, err := s.interestedUsers(ctx, ev)
	if err != nil {
		return err
	}
	text := s.t.T(s.opts.locale, "dm.cancelled", map[string]any{"Name": ev.Name})
	s.sendAll(ctx, ev, users, text)
	return s.retire(ctx, ev)
}

// Sweep re-evaluates every stored event in start-time order and applies any
// due transition. One failing event never stops the sweep.
func (s *LifecycleService) Sweep(ctx context.Context) (input.SweepReport, error) {
	var report input.SweepReport

	events, err := s.events.ListOrderedByTime(ctx)
	if err != nil {
		return report, fmt.Errorf("sweep: %w", err)
	}

	now := s.opts.now()
	for i := range events {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		report.Scanned++
		if domain.Evaluate(&events[i], now).Next() == domain.TransitionNone {
			continue
		}

		applied, err := s.advance(ctx, events[i].ID)
		if err != nil {
			report.Failed++
			s.opts.logger.Error().Err(err).Uint("event_id", events[i].ID).Str("name", events[i].Name).Msg("sweep: transition failed")
			continue
		}
		switch applied {
		case domain.TransitionRemind:
			report.Reminded++
		case domain.TransitionRetire:
			report.Retired++
		}
	}
	return report, nil
}

// Resume recovers after a restart: one sweep catches up on missed
// transitions, then every remaining event gets its scheduler tasks back.
func (s *LifecycleService) Resume(ctx context.Context) error {
	report, err := s.Sweep(ctx)
	if err != nil {
		return err
	}
	events, err := s.events.ListOrderedByTime(ctx)
	if err != nil {
		return fmt.Errorf("resume: %w", err)
	}
	for i := range events {
		s.ScheduleTransitions(&events[i])
	}
	s.opts.logger.Info().
		Int("scanned", report.Scanned).Int("reminded", report.Reminded).Int("retired", report.Retired).
		Int("rescheduled", len(events)).Msg("lifecycle resumed")
	return nil
}

// ScheduleTransitions queues the next precise trigger of ev: the reminder
// while it can still be sent, otherwise the retirement.
func (s *LifecycleService) ScheduleTransitions(ev *entities.Event) {
	id := ev.ID
	retireAt := domain.RetireAt(ev)
	if ev.ReminderSent == entities.ReminderPending && s.opts.now().Before(ev.ScheduledAt) {
		s.scheduler.Schedule(domain.ReminderAt(ev), fmt.Sprintf("remind:%d", id), func(ctx context.Context) error {
			err := s.Remind(ctx, id)
			s.scheduleRetire(id, retireAt)
			return err
		})
		return
	}
	s.scheduleRetire(id, retireAt)
}

func (s *LifecycleService) scheduleRetire(id uint, at time.Time) {
	s.scheduler.Schedule(at, fmt.Sprintf("retire:%d", id), func(ctx context.Context) error {
		return s.Retire(ctx, id)
	})
}

// ListStatuses returns every stored event with its derived state.
func (s *LifecycleService) ListStatuses(ctx context.Context, now time.Time) ([]input.EventStatus, error) {
	events, err := s.events.ListOrderedByTime(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]input.EventStatus, len(events))
	for i := range events {
		out[i] = input.EventStatus{
			Event: events[i],
			State: domain.StateOf(&events[i], now),
			Next:  domain.Evaluate(&events[i], now).Next(),
		}
	}
	return out, nil
}

// advance re-reads event id, evaluates the guard and applies the result.
func (s *LifecycleService) advance(ctx context.Context, id uint) (domain.Transition, error) {
	ev, err := s.events.FindByID(ctx, id)
	if errors.Is(err, domain.ErrEventNotFound) {
		return domain.TransitionNone, nil
	}
	if err != nil {
		return domain.TransitionNone, err
	}

	now := s.opts.now()
	switch next := domain.Evaluate(ev, now).Next(); next {
	case domain.TransitionRetire:
		return next, s.retire(ctx, ev)
	case domain.TransitionRemind:
		return next, s.remind(ctx, ev, now)
	default:
		return next, nil
	}
}

func (s *LifecycleService) remind(ctx context.Context, ev *entities.Event, now time.Time) error {
	users, err := s.interestedUsers(ctx, ev)
	if err != nil {
		return err
	}

	minutes := int(math.Ceil(ev.ScheduledAt.Sub(now).Minutes()))
	text := s.t.T(s.opts.locale, "dm.reminder", map[string]any{"Name": ev.Name, "Minutes": minutes})
	s.sendAll(ctx, ev, users, text)

	if err := s.events.SetReminderSent(ctx, ev.ID, entities.ReminderSent); err != nil {
		return fmt.Errorf("remind event %d: %w", ev.ID, err)
	}
	s.opts.logger.Info().Uint("event_id", ev.ID).Str("name", ev.Name).Int("recipients", len(users)).Msg("reminder sent")
	return nil
}

func (s *LifecycleService) retire(ctx context.Context, ev *entities.Event) error {
	if ev.MessageID != "" {
		err := s.notifier.DeleteAnnouncement(ctx, ev.MessageID)
		switch {
		case errors.Is(err, domain.ErrInvalidMessageID):
			s.opts.logger.Warn().Uint("event_id", ev.ID).Str("message_id", ev.MessageID).Msg("retire: malformed message id, dropping row only")
		case err != nil:
			return fmt.Errorf("retire event %d: %w", ev.ID, err)
		}
	}
	if err := s.events.Delete(ctx, ev.ID); err != nil {
		return fmt.Errorf("retire event %d: %w", ev.ID, err)
	}
	s.opts.logger.Info().Uint("event_id", ev.ID).Str("name", ev.Name).Msg("event retired")
	return nil
}

func (s *LifecycleService) interestedUsers(ctx context.Context, ev *entities.Event) ([]string, error) {
	if ev.MessageID == "" {
		return nil, nil
	}
	users, err := s.notifier.ListInterestedUsers(ctx, ev.MessageID)
	if errors.Is(err, domain.ErrInvalidMessageID) {
		s.opts.logger.Warn().Uint("event_id", ev.ID).Str("message_id", ev.MessageID).Msg("malformed message id, nobody to notify")
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("event %d: %w", ev.ID, err)
	}
	return users, nil
}

func (s *LifecycleService) sendAll(ctx context.Context, ev *entities.Event, users []string, text string) {
	for _, userID := range users {
		if err := s.notifier.SendDirectMessage(ctx, userID, text); err != nil {
			s.opts.logger.Warn().Err(err).Uint("event_id", ev.ID).Str("user_id", userID).Msg("direct message failed")
		}
	}
}
