package domain

import userdomain "github.com/AlibekovAA/recipebook/backend/internal/user/domain"

type AccessToken string

// RawRefreshToken is the signed refresh token handed to the client.
type RawRefreshToken string

type TokenPayload struct {
	UserID   userdomain.ID
	Username string
}

type TokenPair struct {
	AccessToken  AccessToken
	RefreshToken RawRefreshToken
}

type Credentials struct {
	Username string
	Password string
}
