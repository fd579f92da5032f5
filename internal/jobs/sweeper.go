// Package jobs holds the periodic background work of the bot.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"hypebot/internal/ports/input"
)

// Sweeper is the part of the lifecycle use case the loop drives.
type Sweeper interface {
	Sweep(ctx context.Context) (input.SweepReport, error)
}

// SweepLoop re-evaluates every stored event on a fixed interval. It is the
// fallback for precision tasks lost to a restart or a failed attempt.
type SweepLoop struct {
	sweeper  Sweeper
	interval time.Duration
	logger   zerolog.Logger
}

func NewSweepLoop(sweeper Sweeper, interval time.Duration) *SweepLoop {
	return &SweepLoop{
		sweeper:  sweeper,
		interval: interval,
		logger:   log.With().Str("component", "sweep").Logger(),
	}
}

// Run schedules the sweep and blocks until ctx is done. A sweep that
// overruns the interval delays the next one instead of overlapping it.
func (l *SweepLoop) Run(ctx context.Context) error {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("sweep scheduler: %w", err)
	}

	_, err = scheduler.NewJob(
		gocron.DurationJob(l.interval),
		gocron.NewTask(func() { l.runOnce(ctx) }),
		gocron.WithName("event-sweep"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = scheduler.Shutdown()
		return fmt.Errorf("sweep job: %w", err)
	}

	l.logger.Info().Dur("interval", l.interval).Msg("starting sweep loop")
	scheduler.Start()

	<-ctx.Done()
	return scheduler.Shutdown()
}

func (l *SweepLoop) runOnce(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	report, err := l.sweeper.Sweep(ctx)
	if err != nil {
		l.logger.Error().Err(err).Msg("sweep failed")
		return
	}
	ev := l.logger.Debug()
	if report.Reminded > 0 || report.Retired > 0 || report.Failed > 0 {
		ev = l.logger.Info()
	}
	ev.Int("scanned", report.Scanned).Int("reminded", report.Reminded).
		Int("retired", report.Retired).Int("failed", report.Failed).Msg("sweep done")
}
