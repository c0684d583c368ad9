package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "recipebook",
	Short: "Recipe book authentication service",
	Long: `Recipe book authentication service.

Configuration is read from the environment (and a .env file when APP_ENV is
dev or unset). See "recipebook serve --help".`,
	SilenceUsage: true,
}

// Execute runs the root command and exits non-zero on failure.
func Execute(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
