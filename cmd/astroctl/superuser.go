package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/astromusic/astromusic/internal/auth"
	"github.com/astromusic/astromusic/internal/config"
	"github.com/astromusic/astromusic/internal/repository"
	"github.com/astromusic/astromusic/internal/service"
)

// passwordEnv carries the superuser password so it stays out of shell history.
const passwordEnv = "ASTROCTL_PASSWORD"

func newCreateSuperuserCmd(logger func(*cobra.Command) *slog.Logger) *cobra.Command {
	var databaseURL, email, name string

	cmd := &cobra.Command{
		Use:   "create-superuser",
		Short: "Create an administrator account",
		Long:  "Create an administrator account. The password is read from " + passwordEnv + ".",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, f := range []struct{ name, value string }{
				{"database-url", databaseURL}, {"email", email}, {"name", name},
			} {
				if err := requireFlag(f.name, f.value); err != nil {
					return err
				}
			}
			password := os.Getenv(passwordEnv)
			if password == "" {
				return fmt.Errorf("%s is not set", passwordEnv)
			}

			repo, err := repository.New(cmd.Context(), databaseURL)
			if err != nil {
				return fmt.Errorf("connect to database: %s", config.SanitizeError(err, databaseURL))
			}
			defer repo.Close()

			accounts := service.NewAccountService(service.AccountDeps{
				Users:  repo,
				Charts: repo,
				Hasher: auth.NewPasswordHasher(auth.DefaultParams),
				Logger: logger(cmd),
			})
			user, err := accounts.Create(cmd.Context(), service.CreateAccountInput{
				Email:     email,
				Name:      name,
				Password:  password,
				Superuser: true,
			})
			if errors.Is(err, service.ErrEmailExists) {
				return fmt.Errorf("an account with email %s already exists", email)
			}
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "created superuser %s (%s)\n", user.Email, user.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&databaseURL, "database-url", envOr("DATABASE_URL", ""), "PostgreSQL connection URL")
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&name, "name", "", "display name")
	return cmd
}
