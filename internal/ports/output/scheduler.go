package output

import (
	"context"
	"time"
)

// TaskScheduler runs one-shot actions at (or after) a given instant.
type TaskScheduler interface {
	Schedule(at time.Time, name string, action func(ctx context.Context) error) string
}
