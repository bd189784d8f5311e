package main

import (
	"fmt"
	"log/slog"
	"strconv"

	"github.com/Sehgal-Arjun/Lucid/internal/pkg/env"
	"github.com/Sehgal-Arjun/Lucid/internal/services/journal/db"
	"github.com/Sehgal-Arjun/Lucid/internal/services/journal/internal/store"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply or roll back database migrations",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		sqlDB, err := store.NewPostgresDB(dbConfigFromEnv())
		if err != nil {
			return err
		}
		defer sqlDB.Close()

		if err := store.MigrateUp(cmd.Context(), sqlDB, db.Migrations, db.MigrationsDir); err != nil {
			return err
		}
		slog.Info("migrations applied")
		return nil
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down [steps]",
	Short: "Roll back the given number of migrations, or all of them",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		steps := 0
		if len(args) == 1 {
			n, err := strconv.Atoi(args[0])
			if err != nil || n < 1 {
				return fmt.Errorf("steps must be a positive integer, got %q", args[0])
			}
			steps = n
		}

		sqlDB, err := store.NewPostgresDB(dbConfigFromEnv())
		if err != nil {
			return err
		}
		defer sqlDB.Close()

		if err := store.MigrateDown(cmd.Context(), sqlDB, db.Migrations, db.MigrationsDir, steps); err != nil {
			return err
		}
		slog.Info("migrations rolled back", "steps", steps)
		return nil
	},
}

func init() {
	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd)
}

// dbConfigFromEnv reads only the database settings, so migrations run
// without AUTH_SECRET.
func dbConfigFromEnv() store.PostgresConfig {
	return store.PostgresConfig{
		Host:     env.String("DB_HOST", "localhost"),
		Port:     env.String("DB_PORT", "5432"),
		User:     env.String("DB_USER", "postgres"),
		Password: env.String("DB_PASSWORD", "password"),
		DB:       env.String("DB_NAME", "lucid"),
	}
}
