package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/astromusic/astromusic/internal/config"
	"github.com/astromusic/astromusic/internal/repository"
)

func newMigrateCmd(logger func(*cobra.Command) *slog.Logger) *cobra.Command {
	var databaseURL string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireFlag("database-url", databaseURL); err != nil {
				return err
			}

			db, err := repository.OpenSQL(databaseURL)
			if err != nil {
				return fmt.Errorf("open database: %s", config.SanitizeError(err, databaseURL))
			}
			defer db.Close()

			applied, err := repository.Migrate(cmd.Context(), db, logger(cmd))
			if err != nil {
				return fmt.Errorf("migrate: %s", config.SanitizeError(err, databaseURL))
			}

			fmt.Fprintf(cmd.OutOrStdout(), "applied %d migration(s) to %s\n", applied, config.RedactURL(databaseURL))
			return nil
		},
	}
	cmd.Flags().StringVar(&databaseURL, "database-url", envOr("DATABASE_URL", ""), "PostgreSQL connection URL")
	return cmd
}
