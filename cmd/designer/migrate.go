package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/nerrad567/gray-logic-designer/internal/infrastructure/database"
)

func newMigrateCmd(a *app) *cobra.Command {
	var (
		down   bool
		status bool
	)
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply, roll back or list schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if down && status {
				return fmt.Errorf("--down and --status are mutually exclusive")
			}
			ctx := cmd.Context()
			db, err := database.Open(ctx, database.Config{
				Path:        a.cfg.Database.Path,
				WALMode:     a.cfg.Database.WALMode,
				BusyTimeout: a.cfg.Database.BusyTimeout,
			})
			if err != nil {
				return fmt.Errorf("opening database: %w", err)
			}
			defer db.Close()

			switch {
			case status:
				applied, pending, err := db.GetMigrationStatus(ctx)
				if err != nil {
					return fmt.Errorf("reading migration status: %w", err)
				}
				for _, m := range applied {
					fmt.Fprintf(a.stdout, "applied  %s  %s\n", m.Version, m.AppliedAt.Format(time.RFC3339))
				}
				for _, m := range pending {
					fmt.Fprintf(a.stdout, "pending  %s  %s\n", m.Version, m.Name)
				}
				return nil
			case down:
				if err := db.MigrateDown(ctx); err != nil {
					return fmt.Errorf("rolling back migration: %w", err)
				}
				a.log.Info("rolled back latest migration", "path", db.Path())
				return nil
			default:
				if err := db.Migrate(ctx); err != nil {
					return fmt.Errorf("running migrations: %w", err)
				}
				a.log.Info("database migrated", "path", db.Path())
				return nil
			}
		},
	}
	cmd.Flags().BoolVar(&down, "down", false, "roll back the most recent migration")
	cmd.Flags().BoolVar(&status, "status", false, "list applied and pending migrations")
	return cmd
}
