package tz

import (
	"fmt"
	"strings"
	"time"
)

// Load resolves an IANA zone name such as "America/New_York". An empty name
// means UTC.
func Load(name string) (*time.Location, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("tz: load %q: %w", name, err)
	}
	return loc, nil
}
