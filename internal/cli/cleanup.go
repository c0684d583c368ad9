package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AlibekovAA/recipebook/backend/internal/common/bootstrap"
)

var cleanupTokensCmd = &cobra.Command{
	Use:   "cleanup-tokens",
	Short: "Delete expired refresh tokens once and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := bootstrap.NewAuthApp(cmd.Context(), "cleanup")
		if err != nil {
			return err
		}
		defer app.Close()

		n, err := app.Auth.CleanupExpiredTokens(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "deleted %d expired refresh tokens\n", n)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(cleanupTokensCmd)
}
