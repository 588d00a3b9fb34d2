// Command astroctl is the operator CLI for AstroMusic: schema migrations,
// superuser bootstrap and offline chart derivation.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/astromusic/astromusic/internal/config"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var logLevel string

	root := &cobra.Command{
		Use:          "astroctl",
		Short:        "Operate the AstroMusic backend",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", envOr("LOG_LEVEL", "info"), "log level (debug, info, warn, error)")

	logger := func(cmd *cobra.Command) *slog.Logger {
		return newLogger(cmd.ErrOrStderr(), logLevel)
	}

	root.AddCommand(
		newMigrateCmd(logger),
		newZodiacCmd(),
		newDeriveCmd(logger),
		newCreateSuperuserCmd(logger),
	)
	return root
}

func newLogger(w io.Writer, level string) *slog.Logger {
	cfg := &config.Config{LogLevel: level, LogFormat: "text"}
	return cfg.NewLogger(w)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func requireFlag(name, value string) error {
	if value == "" {
		return fmt.Errorf("--%s is required", name)
	}
	return nil
}
