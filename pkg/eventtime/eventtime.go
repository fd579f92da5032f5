// Package eventtime reads and prints event start times.
package eventtime

import (
	"strings"
	"time"

	"hypebot/internal/domain"
)

// Layouts accepted by Parse, tried in order. Input is lowercased first so
// AM/PM may be written in any case.
var layouts = []string{
	"3:04pm 2006-01-02",
	"3:04 pm 2006-01-02",
	"15:04 2006-01-02",
	"2006-01-02 15:04",
	"2006-01-02 3:04pm",
}

// Parse reads a wall-clock time like "04:20pm 2026-04-20" in loc.
func Parse(input string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	s := strings.ToLower(strings.Join(strings.Fields(strings.Trim(input, `"`)), " "))
	if s == "" {
		return time.Time{}, domain.ErrInvalidDateTime
	}
	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, domain.ErrInvalidDateTime
}

// Format prints t in loc the way announcements show it.
func Format(t time.Time, loc *time.Location) string {
	if t.IsZero() {
		return ""
	}
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format("Monday, January 02 @ 03:04 pm MST")
}
