package input

import (
	"context"

	"hypebot/internal/domain/entities"
)

// DraftRequest carries the raw fields of a create command.
type DraftRequest struct {
	Scope        string
	CreatorID    string
	CreatorName  string
	Name         string
	When         string
	Description  string
	Location     string
	ThumbnailURL string
	Organizer    string
}

type EventUseCase interface {
	CreateDraft(ctx context.Context, req DraftRequest) (*entities.Draft, error)
	GetDraft(ctx context.Context, scope string) (*entities.Draft, error)
	ConfirmDraft(ctx context.Context, scope, requesterID string) (*entities.Event, error)
	CancelEvent(ctx context.Context, name, requesterID string) (*entities.Event, error)
	AcknowledgeSignup(ctx context.Context, messageID, userID string) error
}
