package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	authdomain "github.com/AlibekovAA/recipebook/backend/internal/auth/domain"
	"github.com/AlibekovAA/recipebook/backend/internal/common/bootstrap"
	commonhttp "github.com/AlibekovAA/recipebook/backend/internal/common/http"
)

type createUserInput struct {
	Username string `json:"username" validate:"required,username"`
	Password string `json:"password" validate:"required,password"`
}

var (
	userCreateUsername      string
	userCreatePassword      string
	userCreatePasswordStdin bool
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage user accounts",
}

var userCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a user account",
	RunE: func(cmd *cobra.Command, args []string) error {
		password := userCreatePassword
		if userCreatePasswordStdin {
			p, err := readPassword(cmd.InOrStdin())
			if err != nil {
				return err
			}
			password = p
		}

		input := createUserInput{Username: userCreateUsername, Password: password}
		if err := commonhttp.ValidateStruct(input); err != nil {
			return err
		}

		app, err := bootstrap.NewAuthApp(cmd.Context(), "cli")
		if err != nil {
			return err
		}
		defer app.Close()

		user, err := app.Auth.CreateUser(cmd.Context(), authdomain.Credentials{
			Username: input.Username,
			Password: input.Password,
		})
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "created user %q with id %d\n", user.Username, user.ID)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(userCmd)
	userCmd.AddCommand(userCreateCmd)

	userCreateCmd.Flags().StringVar(&userCreateUsername, "username", "", "username of the new account")
	userCreateCmd.Flags().StringVar(&userCreatePassword, "password", "", "password of the new account")
	userCreateCmd.Flags().BoolVar(&userCreatePasswordStdin, "password-stdin", false, "read the password from stdin")
	_ = userCreateCmd.MarkFlagRequired("username")
	userCreateCmd.MarkFlagsMutuallyExclusive("password", "password-stdin")
}

func readPassword(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
