package main

import (
	"errors"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"hypebot/internal/config"
	"hypebot/internal/infrastructure/database"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations and exit",
	RunE:  runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Read(configPath)
	if err != nil {
		return err
	}
	setupLogging(cfg.LogLevel, cfg.IsDevelopment())

	if err := cfg.ValidateDatabase(); err != nil {
		return err
	}
	if cfg.UsesMemoryStore() {
		return errors.New("migrate: DATABASE_URL selects the in-memory store, nothing to migrate")
	}
	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		return err
	}
	log.Info().Msg("✅ database is up to date")
	return nil
}
