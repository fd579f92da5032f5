package application

import (
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type serviceOptions struct {
	now              func() time.Time
	locale           string
	location         *time.Location
	defaultThumbnail string
	logger           zerolog.Logger
}

// Option tunes EventService and LifecycleService.
type Option func(*serviceOptions)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(o *serviceOptions) { o.now = now }
}

// WithLocale sets the locale of messages sent to users.
func WithLocale(locale string) Option {
	return func(o *serviceOptions) { o.locale = locale }
}

// WithLocation sets the timezone used to read event times.
func WithLocation(loc *time.Location) Option {
	return func(o *serviceOptions) {
		if loc != nil {
			o.location = loc
		}
	}
}

func WithDefaultThumbnail(url string) Option {
	return func(o *serviceOptions) { o.defaultThumbnail = url }
}

func WithLogger(l zerolog.Logger) Option {
	return func(o *serviceOptions) { o.logger = l }
}

func newServiceOptions(component string, opts []Option) serviceOptions {
	o := serviceOptions{
		now:      time.Now,
		locale:   "en",
		location: time.UTC,
		logger:   log.Logger,
	}
	for _, opt := range opts {
		opt(&o)
	}
	o.logger = o.logger.With().Str("component", component).Logger()
	return o
}
