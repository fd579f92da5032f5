package discord

import (
	"context"
	"time"

	"hypebot/internal/ports/input"
	"hypebot/internal/ports/output"
)

// interactionTimeout bounds the work done for a single command or reaction.
const interactionTimeout = 30 * time.Second

// Handler handles Discord interactions using use cases.
type Handler struct {
	eventUseCase   input.EventUseCase
	translator     output.T
	locale         string
	location       *time.Location
	eventChannelID string
	eventRoles     map[string]struct{}
}

// NewHandler creates a Handler. An empty eventRoles lets every member use
// the commands.
func NewHandler(
	eventUseCase input.EventUseCase,
	translator output.T,
	locale string,
	location *time.Location,
	eventChannelID string,
	eventRoles []string,
) *Handler {
	roles := make(map[string]struct{}, len(eventRoles))
	for _, r := range eventRoles {
		roles[r] = struct{}{}
	}
	return &Handler{
		eventUseCase:   eventUseCase,
		translator:     translator,
		locale:         locale,
		location:       location,
		eventChannelID: eventChannelID,
		eventRoles:     roles,
	}
}

func (h *Handler) translate(key string, data map[string]any) string {
	return h.translator.T(h.locale, key, data)
}

// requestContext bounds one interaction and ends it early when parent,
// the bot's run context, is done.
func requestContext(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, interactionTimeout)
}

// permitted reports whether a member holding memberRoles may run event
// commands.
func (h *Handler) permitted(memberRoles []string) bool {
	if len(h.eventRoles) == 0 {
		return true
	}
	for _, r := range memberRoles {
		if _, ok := h.eventRoles[r]; ok {
			return true
		}
	}
	return false
}
