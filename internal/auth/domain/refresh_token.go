package domain

import (
	"time"

	userdomain "github.com/AlibekovAA/recipebook/backend/internal/user/domain"
)

type RefreshTokenID int64

// RefreshToken is the persisted record of an issued refresh token. Only the
// hash of the signed token is stored.
type RefreshToken struct {
	ID        RefreshTokenID
	UserID    userdomain.ID
	TokenHash string
	ExpiresAt time.Time
	CreatedAt time.Time
}

func (t RefreshToken) IsExpired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}
