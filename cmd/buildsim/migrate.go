package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/urbanforge/buildsim/internal/persist"
)

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:       "migrate [up|down|status]",
		Short:     "Apply or inspect database migrations",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"up", "down", "status"},
		RunE: func(cmd *cobra.Command, args []string) error {
			action := "up"
			if len(args) == 1 {
				action = args[0]
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			log, err := newLogger(cfg.Logging)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			defer log.Sync()

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			cfg.Database.Enabled = true
			db, err := persist.NewDB(ctx, cfg.Database, log)
			if err != nil {
				return fmt.Errorf("database: %w", err)
			}
			defer db.Close()

			switch action {
			case "up":
				if err := persist.RunMigrations(ctx, db.Pool, log); err != nil {
					return err
				}
			case "down":
				if err := persist.RollbackMigration(ctx, db.Pool, log); err != nil {
					return err
				}
			}
			v, err := persist.MigrationVersion(ctx, db.Pool)
			if err != nil {
				return err
			}
			printOK(fmt.Sprintf("schema version %d", v))
			return nil
		},
	}
}
