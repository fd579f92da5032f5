package application

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"hypebot/internal/domain"
	"hypebot/internal/domain/entities"
	"hypebot/internal/ports/input"
	"hypebot/internal/ports/output"
	"hypebot/pkg/eventtime"
)

var _ input.EventUseCase = (*EventService)(nil)

type EventService struct {
	events    output.EventRepository
	notifier  output.Notifier
	drafts    *DraftSlots
	lifecycle *LifecycleService
	t         output.T
	opts      serviceOptions
}

func NewEventService(
	events output.EventRepository,
	notifier output.Notifier,
	drafts *DraftSlots,
	lifecycle *LifecycleService,
	translator output.T,
	opts ...Option,
) *EventService {
	return &EventService{
		events:    events,
		notifier:  notifier,
		drafts:    drafts,
		lifecycle: lifecycle,
		t:         translator,
		opts:      newServiceOptions("events", opts),
	}
}

// CreateDraft validates a create command and stores it as the draft of
// req.Scope, replacing whatever draft was there.
func (s *EventService) CreateDraft(ctx context.Context, req input.DraftRequest) (*entities.Draft, error) {
	name := strings.TrimSpace(req.Name)
	desc := strings.TrimSpace(req.Description)
	location := strings.TrimSpace(req.Location)
	if name == "" || desc == "" || location == "" || strings.TrimSpace(req.When) == "" {
		return nil, domain.ErrMissingArgument
	}

	scheduledAt, err := eventtime.Parse(req.When, s.opts.location)
	if err != nil {
		return nil, err
	}
	if !scheduledAt.After(s.opts.now()) {
		return nil, domain.ErrDateTimeInPast
	}

	organizer := strings.TrimSpace(req.Organizer)
	if organizer == "" {
		organizer = fmt.Sprintf("<@%s>", req.CreatorID)
	}

	stored := s.drafts.Set(entities.Draft{
		Scope:     req.Scope,
		CreatorID: req.CreatorID,
		Event: entities.Event{
			Name:         name,
			Description:  desc,
			Location:     location,
			Organizer:    organizer,
			ThumbnailURL: s.thumbnail(req.ThumbnailURL),
			CreatorID:    req.CreatorID,
			ScheduledAt:  scheduledAt.UTC(),
		},
	})
	s.opts.logger.Info().Str("scope", req.Scope).Str("creator_id", req.CreatorID).Str("name", name).
		Uint64("revision", stored.Revision).Msg("draft stored")
	return &stored, nil
}

func (s *EventService) thumbnail(raw string) string {
	raw = strings.Trim(strings.TrimSpace(raw), "<>")
	if raw == "" {
		return s.opts.defaultThumbnail
	}
	u, err := url.Parse(raw)
	if err != nil || !u.IsAbs() || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return s.opts.defaultThumbnail
	}
	return u.String()
}

func (s *EventService) GetDraft(ctx context.Context, scope string) (*entities.Draft, error) {
	draft, ok := s.drafts.Get(scope)
	if !ok {
		return nil, domain.ErrDraftNotFound
	}
	return &draft, nil
}

// ConfirmDraft posts the requester's draft, persists it, clears the slot and
// queues the reminder.
func (s *EventService) ConfirmDraft(ctx context.Context, scope, requesterID string) (*entities.Event, error) {
	draft, err := s.drafts.Confirm(scope, requesterID)
	if err != nil {
		return nil, err
	}

	event := draft.Event
	event.CreatorID = requesterID
	if !event.ScheduledAt.After(s.opts.now()) {
		return nil, domain.ErrDateTimeInPast
	}

	messageID, err := s.notifier.PostAnnouncement(ctx, &event)
	if err != nil {
		return nil, fmt.Errorf("confirm draft: %w", err)
	}
	event.MessageID = messageID

	if err := s.events.Create(ctx, &event); err != nil {
		if derr := s.notifier.DeleteAnnouncement(ctx, messageID); derr != nil {
			s.opts.logger.Error().Err(derr).Str("message_id", messageID).Msg("orphan announcement left behind")
		}
		return nil, fmt.Errorf("confirm draft: %w", err)
	}

	s.drafts.Clear(scope, draft.Revision)
	s.lifecycle.ScheduleTransitions(&event)

	s.opts.logger.Info().Uint("event_id", event.ID).Str("name", event.Name).Str("message_id", messageID).
		Time("scheduled_at", event.ScheduledAt).Msg("event posted")
	return &event, nil
}

// CancelEvent retires the event called name on behalf of requesterID. Only
// the creator may cancel; events stored without a creator are open to any
// permitted user.
func (s *EventService) CancelEvent(ctx context.Context, name, requesterID string) (*entities.Event, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.ErrMissingArgument
	}
	event, err := s.events.FindByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if event.CreatorID != "" && event.CreatorID != requesterID {
		return nil, domain.ErrUnauthorized
	}
	if err := s.lifecycle.Cancel(ctx, event); err != nil {
		return nil, fmt.Errorf("cancel event: %w", err)
	}
	s.opts.logger.Info().Uint("event_id", event.ID).Str("name", event.Name).Str("requester_id", requesterID).Msg("event cancelled")
	return event, nil
}

// AcknowledgeSignup tells a user who reacted as interested that they will
// be reminded. Reactions on other messages are ignored.
func (s *EventService) AcknowledgeSignup(ctx context.Context, messageID, userID string) error {
	event, err := s.events.FindByMessageID(ctx, messageID)
	if errors.Is(err, domain.ErrEventNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	text := s.t.T(s.opts.locale, "dm.signup", map[string]any{"Name": event.Name})
	if err := s.notifier.SendDirectMessage(ctx, userID, text); err != nil {
		s.opts.logger.Warn().Err(err).Str("user_id", userID).Uint("event_id", event.ID).Msg("signup DM failed")
	}
	return nil
}
