package repository

import (
	"context"

	commonerrors "github.com/AlibekovAA/recipebook/backend/internal/common/errors"
	"github.com/AlibekovAA/recipebook/backend/internal/user/domain"
)

type Repository interface {
	Create(ctx context.Context, user domain.User) (domain.User, error)
	FindByID(ctx context.Context, id domain.ID) (domain.User, error)
	FindByUsername(ctx context.Context, username string) (domain.User, error)
	Update(ctx context.Context, user domain.User) (domain.User, error)
	UpdateLastLogin(ctx context.Context, id domain.ID) error
	Delete(ctx context.Context, id domain.ID) (bool, error)
}

var (
	ErrUserNotFound          = commonerrors.ErrUserNotFound
	ErrUsernameAlreadyExists = commonerrors.ErrUsernameAlreadyExists
)
