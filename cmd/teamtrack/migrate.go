package main

import (
	"github.com/spf13/cobra"

	"github.com/teamtrack/teamtrack/internal/config"
	"github.com/teamtrack/teamtrack/internal/logger"
	"github.com/teamtrack/teamtrack/migrations"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations",
	RunE:  runMigrate,
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Rollback all migrations",
	RunE:  runMigrateDown,
}

func init() {
	migrateCmd.AddCommand(migrateDownCmd)
	rootCmd.AddCommand(migrateCmd)
}

// Migrations only need the database URL, so the full Validate is skipped.
func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	if err := migrations.Up(cfg.DatabaseURLForMigrate()); err != nil {
		return err
	}
	logger.New("migrate", cfg.Log.Level).Info().Msg("migrations applied successfully")
	return nil
}

func runMigrateDown(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	if err := migrations.Down(cfg.DatabaseURLForMigrate()); err != nil {
		return err
	}
	logger.New("migrate", cfg.Log.Level).Info().Msg("migrations rolled back successfully")
	return nil
}
