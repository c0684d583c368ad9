package token

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	authdomain "github.com/AlibekovAA/recipebook/backend/internal/auth/domain"
	"github.com/AlibekovAA/recipebook/backend/internal/common/clock"
	commoncrypto "github.com/AlibekovAA/recipebook/backend/internal/common/crypto"
	commonerrors "github.com/AlibekovAA/recipebook/backend/internal/common/errors"
	userdomain "github.com/AlibekovAA/recipebook/backend/internal/user/domain"
)

type claims struct {
	UserID   int64  `json:"userId"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// signer issues and verifies one kind of token with a single key.
type signer struct {
	secret      []byte
	ttl         time.Duration
	idGenerator commoncrypto.IDGenerator
	clock       clock.Clock
	parser      *jwt.Parser
}

func newSigner(secret string, ttl time.Duration, idGenerator commoncrypto.IDGenerator, clk clock.Clock) *signer {
	return &signer{
		secret:      []byte(secret),
		ttl:         ttl,
		idGenerator: idGenerator,
		clock:       clk,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithExpirationRequired(),
			jwt.WithIssuedAt(),
			jwt.WithTimeFunc(clk.Now),
		),
	}
}

func (s *signer) issue(payload authdomain.TokenPayload) (string, error) {
	jti, err := s.idGenerator.NewID()
	if err != nil {
		return "", fmt.Errorf("failed to generate token id: %w", err)
	}

	now := s.clock.Now()
	c := claims{
		UserID:   int64(payload.UserID),
		Username: payload.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func (s *signer) verify(tokenString string) (authdomain.TokenPayload, error) {
	var c claims
	parsed, err := s.parser.ParseWithClaims(tokenString, &c, func(*jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil {
		return authdomain.TokenPayload{}, fmt.Errorf("%w: %v", commonerrors.ErrInvalidToken, err)
	}
	if !parsed.Valid {
		return authdomain.TokenPayload{}, commonerrors.ErrInvalidToken
	}
	if c.UserID <= 0 || c.Username == "" {
		return authdomain.TokenPayload{}, fmt.Errorf("%w: missing subject claims", commonerrors.ErrInvalidToken)
	}

	return authdomain.TokenPayload{
		UserID:   userdomain.ID(c.UserID),
		Username: c.Username,
	}, nil
}

// Signer holds separate keys for access and refresh tokens so that a token
// of one kind never verifies as the other.
type Signer struct {
	access  *signer
	refresh *signer
}

type Config struct {
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

func NewSigner(cfg Config, idGenerator commoncrypto.IDGenerator, clk clock.Clock) *Signer {
	if clk == nil {
		clk = clock.NewRealClock()
	}
	if idGenerator == nil {
		idGenerator = commoncrypto.NewUUIDGenerator()
	}
	return &Signer{
		access:  newSigner(cfg.AccessSecret, cfg.AccessTTL, idGenerator, clk),
		refresh: newSigner(cfg.RefreshSecret, cfg.RefreshTTL, idGenerator, clk),
	}
}

func (s *Signer) IssueAccessToken(payload authdomain.TokenPayload) (authdomain.AccessToken, error) {
	t, err := s.access.issue(payload)
	return authdomain.AccessToken(t), err
}

func (s *Signer) IssueRefreshToken(payload authdomain.TokenPayload) (authdomain.RawRefreshToken, error) {
	t, err := s.refresh.issue(payload)
	return authdomain.RawRefreshToken(t), err
}

func (s *Signer) VerifyAccessToken(t authdomain.AccessToken) (authdomain.TokenPayload, error) {
	return s.access.verify(string(t))
}

func (s *Signer) VerifyRefreshToken(t authdomain.RawRefreshToken) (authdomain.TokenPayload, error) {
	return s.refresh.verify(string(t))
}

func (s *Signer) RefreshTokenTTL() time.Duration {
	return s.refresh.ttl
}

// HashRefreshToken returns the hex SHA-256 digest stored in place of the
// token itself.
func HashRefreshToken(t authdomain.RawRefreshToken) string {
	sum := sha256.Sum256([]byte(t))
	return hex.EncodeToString(sum[:])
}
