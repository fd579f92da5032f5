package discord

import (
	"errors"
	"net/http"

	"github.com/bwmarrin/discordgo"

	"hypebot/internal/domain"
)

// ErrorKey resolves err to the i18n key of its user-facing message.
// Anything that is not a domain error maps to errors.generic.
func ErrorKey(err error) string {
	if err == nil {
		return ""
	}
	if code := domain.Code(err); code != "" {
		return "errors." + code
	}
	return "errors.generic"
}

// IsUnknownMessage reports whether Discord answered that the message (or
// its channel) no longer exists.
func IsUnknownMessage(err error) bool {
	var rest *discordgo.RESTError
	if !errors.As(err, &rest) {
		return false
	}
	if rest.Message != nil {
		switch rest.Message.Code {
		case discordgo.ErrCodeUnknownMessage, discordgo.ErrCodeUnknownChannel:
			return true
		}
	}
	return rest.Response != nil && rest.Response.StatusCode == http.StatusNotFound
}

// IsSnowflake reports whether id looks like a Discord ID.
func IsSnowflake(id string) bool {
	if id == "" || len(id) > 20 {
		return false
	}
	for _, r := range id {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
