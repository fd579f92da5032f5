package domain

import (
	"errors"
	"fmt"
)

// Domain errors.
var (
	ErrUnauthorized     = errors.New("only the creator can perform this action")
	ErrDraftNotFound    = errors.New("no pending draft")
	ErrEventNotFound    = errors.New("event not found")
	ErrInvalidDateTime  = errors.New("invalid date/time, expected HH:MMam YYYY-MM-DD")
	ErrDateTimeInPast   = errors.New("the scheduled time has already passed")
	ErrMissingArgument  = errors.New("missing required argument")
	ErrInvalidMessageID = errors.New("malformed announcement message id")
)

// StoreError wraps a failure of the durable event store.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }

func (e *StoreError) Unwrap() error { return e.Err }

// TransportError wraps a failure of the chat platform.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }

func (e *TransportError) Unwrap() error { return e.Err }

// Code returns the stable code of a user-facing domain error, or "" when err
// is not one. Codes double as i18n keys under "errors.".
func Code(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrDraftNotFound):
		return "draft_not_found"
	case errors.Is(err, ErrEventNotFound):
		return "event_not_found"
	case errors.Is(err, ErrDateTimeInPast):
		return "datetime_in_past"
	case errors.Is(err, ErrInvalidDateTime):
		return "invalid_datetime"
	case errors.Is(err, ErrMissingArgument):
		return "missing_argument"
	default:
		return ""
	}
}

// IsUserFacing reports whether err should be answered to the invoking user
// rather than logged as an internal failure.
func IsUserFacing(err error) bool {
	return Code(err) != ""
}
