package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AlibekovAA/recipebook/backend/internal/common/config"
	"github.com/AlibekovAA/recipebook/backend/internal/common/db"
	commonerrors "github.com/AlibekovAA/recipebook/backend/internal/common/errors"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMigrator(func(m *db.Migrator) error {
			return m.Up(cmd.Context())
		})
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back the most recent migration",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMigrator(func(m *db.Migrator) error {
			return m.Down(cmd.Context())
		})
	},
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print the state of every migration",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMigrator(func(m *db.Migrator) error {
			if err := m.Status(cmd.Context()); err != nil {
				return err
			}
			v, err := m.Version(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "schema version: %d\n", v)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd, migrateStatusCmd)
}

// withMigrator only needs DATABASE_URL, whatever STORE_DRIVER is set to.
func withMigrator(fn func(m *db.Migrator) error) error {
	cfg, err := config.LoadAuthConfig()
	if err != nil {
		return err
	}
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("%w: DATABASE_URL", commonerrors.ErrMissingRequiredEnv)
	}

	m, err := db.NewMigrator(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer m.Close()

	return fn(m)
}
