package service

import (
	"net/http"

	commonerrors "github.com/AlibekovAA/recipebook/backend/internal/common/errors"
)

var (
	ErrInvalidCredentials = commonerrors.NewDomainError(
		"INVALID_CREDENTIALS",
		commonerrors.CategoryUnauthorized,
		http.StatusUnauthorized,
		"invalid username or password",
	)

	ErrUsernameTaken = commonerrors.NewDomainError(
		"USERNAME_TAKEN",
		commonerrors.CategoryConflict,
		http.StatusConflict,
		"username already exists",
	)

	ErrInvalidRefreshToken = commonerrors.NewDomainError(
		"INVALID_REFRESH_TOKEN",
		commonerrors.CategoryUnauthorized,
		http.StatusUnauthorized,
		"invalid refresh token",
	)

	ErrRefreshTokenExpired = commonerrors.NewDomainError(
		"REFRESH_TOKEN_EXPIRED",
		commonerrors.CategoryUnauthorized,
		http.StatusUnauthorized,
		"refresh token expired",
	)

	ErrUserNotFound = commonerrors.ErrUserNotFound
	ErrInvalidToken = commonerrors.ErrInvalidToken
)
