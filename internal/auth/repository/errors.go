package repository

import (
	"net/http"

	commonerrors "github.com/AlibekovAA/recipebook/backend/internal/common/errors"
)

var (
	ErrRefreshTokenNotFound = commonerrors.NewDomainError(
		"REFRESH_TOKEN_NOT_FOUND",
		commonerrors.CategoryNotFound,
		http.StatusNotFound,
		"refresh token not found",
	)
	ErrRefreshTokenAlreadyExists = commonerrors.NewDomainError(
		"REFRESH_TOKEN_ALREADY_EXISTS",
		commonerrors.CategoryConflict,
		http.StatusConflict,
		"refresh token already exists",
	)
)
