package service

import (
	"fmt"

	"github.com/AlibekovAA/recipebook/backend/internal/common/constants"
	commonerrors "github.com/AlibekovAA/recipebook/backend/internal/common/errors"
)

func validateCredentials(username, password string) error {
	if len(username) < constants.UsernameMinLength || len(username) > constants.UsernameMaxLength {
		return commonerrors.ErrInvalidPayload.WithCause(
			fmt.Errorf("username must be %d to %d bytes", constants.UsernameMinLength, constants.UsernameMaxLength),
		)
	}
	return validatePassword(password)
}

// validatePassword bounds the length in bytes; bcrypt rejects anything past 72.
func validatePassword(password string) error {
	if len(password) < constants.PasswordMinLength || len(password) > constants.PasswordMaxLength {
		return commonerrors.ErrInvalidPayload.WithCause(
			fmt.Errorf("password must be %d to %d bytes", constants.PasswordMinLength, constants.PasswordMaxLength),
		)
	}
	return nil
}
