package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"hypebot/internal/adapters/discord"
	"hypebot/internal/application"
	"hypebot/internal/config"
	"hypebot/internal/httpserver"
	"hypebot/internal/infrastructure/database"
	"hypebot/internal/infrastructure/i18n"
	"hypebot/internal/infrastructure/memory"
	"hypebot/internal/jobs"
	"hypebot/internal/ports/output"
	"hypebot/internal/scheduler"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Connect to Discord and run the bot",
	RunE:  runBot,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runBot(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	setupLogging(cfg.LogLevel, cfg.IsDevelopment())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	translator := i18n.NewTranslator(cfg.Locale)

	session, err := discord.NewSession(cfg.Token)
	if err != nil {
		return err
	}
	notifier := discord.NewNotifier(session, cfg.EventChannelID, translator, cfg.Locale, cfg.Location)

	sched := scheduler.New(scheduler.WithWorkers(cfg.SchedulerWorkers))

	opts := []application.Option{
		application.WithLocale(cfg.Locale),
		application.WithLocation(cfg.Location),
		application.WithDefaultThumbnail(cfg.DefaultThumbnailURL),
	}
	lifecycle := application.NewLifecycleService(store, notifier, sched, translator, opts...)
	events := application.NewEventService(store, notifier, application.NewDraftSlots(), lifecycle, translator, opts...)

	handler := discord.NewHandler(events, translator, cfg.Locale, cfg.Location, cfg.EventChannelID, cfg.EventRoles)
	bot := discord.NewBot(session, handler, cfg.GuildID)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error { return sched.Run(ctx) })

	// Catch up on whatever came due while the bot was down, then re-queue
	// precision tasks for everything still stored.
	g.Go(func() error {
		if err := lifecycle.Resume(ctx); err != nil {
			log.Error().Err(err).Msg("resume failed, relying on the sweep loop")
		}
		return nil
	})

	g.Go(func() error { return jobs.NewSweepLoop(lifecycle, cfg.SweepInterval).Run(ctx) })

	g.Go(func() error { return bot.Run(ctx) })

	if cfg.HTTPAddr != "" {
		router := httpserver.NewRouter(lifecycle, store, sched, nil)
		g.Go(func() error { return httpserver.Serve(ctx, cfg.HTTPAddr, router) })
	}

	log.Info().Str("channel_id", cfg.EventChannelID).Str("timezone", cfg.Location.String()).
		Bool("memory_store", cfg.UsesMemoryStore()).Msg("🚀 hypebot starting")

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("bot stopped with an error")
		return err
	}
	log.Info().Msg("bot shut down gracefully")
	return nil
}

// openStore returns the configured event store and a func releasing it.
// PostgreSQL is migrated before use.
func openStore(ctx context.Context, cfg *config.Config) (output.EventRepository, func(), error) {
	if cfg.UsesMemoryStore() {
		log.Warn().Msg("⚠️ using the in-memory store, events are lost on restart")
		return memory.NewEventRepository(), func() {}, nil
	}

	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		return nil, nil, err
	}
	pool, err := database.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	return database.NewEventRepository(pool), pool.Close, nil
}
