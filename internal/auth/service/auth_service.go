package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	authdomain "github.com/AlibekovAA/recipebook/backend/internal/auth/domain"
	authrepo "github.com/AlibekovAA/recipebook/backend/internal/auth/repository"
	"github.com/AlibekovAA/recipebook/backend/internal/auth/token"
	"github.com/AlibekovAA/recipebook/backend/internal/common/clock"
	commoncrypto "github.com/AlibekovAA/recipebook/backend/internal/common/crypto"
	"github.com/AlibekovAA/recipebook/backend/internal/common/logger"
	userdomain "github.com/AlibekovAA/recipebook/backend/internal/user/domain"
	userrepo "github.com/AlibekovAA/recipebook/backend/internal/user/repository"
)

type TokenSigner interface {
	IssueAccessToken(payload authdomain.TokenPayload) (authdomain.AccessToken, error)
	IssueRefreshToken(payload authdomain.TokenPayload) (authdomain.RawRefreshToken, error)
	VerifyAccessToken(t authdomain.AccessToken) (authdomain.TokenPayload, error)
	VerifyRefreshToken(t authdomain.RawRefreshToken) (authdomain.TokenPayload, error)
	RefreshTokenTTL() time.Duration
}

type AuthServiceDeps struct {
	Users         userrepo.Repository
	RefreshTokens authrepo.RefreshTokenRepository
	Hasher        commoncrypto.PasswordHasher
	Signer        TokenSigner
	Clock         clock.Clock
	Log           *logger.Logger
}

// AuthService holds no mutable state of its own and is safe for concurrent use.
type AuthService struct {
	users         userrepo.Repository
	refreshTokens authrepo.RefreshTokenRepository
	hasher        commoncrypto.PasswordHasher
	signer        TokenSigner
	clock         clock.Clock
	log           *logger.Logger
}

func NewAuthService(deps AuthServiceDeps) *AuthService {
	clk := deps.Clock
	if clk == nil {
		clk = clock.NewRealClock()
	}
	return &AuthService{
		users:         deps.Users,
		refreshTokens: deps.RefreshTokens,
		hasher:        deps.Hasher,
		signer:        deps.Signer,
		clock:         clk,
		log:           deps.Log,
	}
}

func (s *AuthService) Login(ctx context.Context, creds authdomain.Credentials) (authdomain.TokenPair, error) {
	user, err := s.users.FindByUsername(ctx, creds.Username)
	if err != nil {
		if errors.Is(err, userrepo.ErrUserNotFound) {
			s.log.WithFields(ctx, logger.Fields{
				"username": creds.Username,
				"action":   "login_user_not_found",
			}).Warn("login failed: user not found")
			incrementLoginAttempts("unknown_user")
			return authdomain.TokenPair{}, ErrInvalidCredentials
		}
		s.log.WithFields(ctx, logger.Fields{
			"username": creds.Username,
			"action":   "login_fetch_failed",
		}).Errorf("login failed: %v", err)
		incrementLoginAttempts("error")
		return authdomain.TokenPair{}, err
	}

	// A password outside the accepted length can never match a stored hash.
	if validatePassword(creds.Password) != nil {
		s.log.WithFields(ctx, logger.Fields{
			"user_id": user.ID,
			"action":  "login_invalid_password",
		}).Warn("login failed: invalid password")
		incrementLoginAttempts("invalid_password")
		return authdomain.TokenPair{}, ErrInvalidCredentials
	}

	ok, err := s.hasher.Verify(creds.Password, user.PasswordHash)
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"user_id": user.ID,
			"action":  "login_verify_failed",
		}).Errorf("login failed: stored hash unusable: %v", err)
		incrementLoginAttempts("error")
		return authdomain.TokenPair{}, err
	}
	if !ok {
		s.log.WithFields(ctx, logger.Fields{
			"user_id": user.ID,
			"action":  "login_invalid_password",
		}).Warn("login failed: invalid password")
		incrementLoginAttempts("invalid_password")
		return authdomain.TokenPair{}, ErrInvalidCredentials
	}

	if err := s.users.UpdateLastLogin(ctx, user.ID); err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"user_id": user.ID,
			"action":  "login_update_last_login_failed",
		}).Errorf("login failed: %v", err)
		incrementLoginAttempts("error")
		return authdomain.TokenPair{}, err
	}

	pair, err := s.mint(ctx, user)
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"user_id": user.ID,
			"action":  "login_token_issue_failed",
		}).Errorf("login failed: token issue error: %v", err)
		incrementLoginAttempts("error")
		return authdomain.TokenPair{}, err
	}

	s.log.WithFields(ctx, logger.Fields{
		"user_id":  user.ID,
		"username": user.Username,
		"action":   "login_success",
	}).Info("login success")
	incrementLoginAttempts("success")
	return pair, nil
}

// RefreshTokens consumes a refresh token and mints a new pair. A token can
// be exchanged once: the record is deleted before the new pair is issued and
// a delete that removes nothing means another caller already used it.
func (s *AuthService) RefreshTokens(ctx context.Context, raw authdomain.RawRefreshToken) (authdomain.TokenPair, error) {
	payload, err := s.signer.VerifyRefreshToken(raw)
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"action": "refresh_token_invalid_signature",
		}).Warnf("refresh token rejected: %v", err)
		incrementRefreshTokensRejected("invalid_signature")
		return authdomain.TokenPair{}, ErrInvalidRefreshToken.WithCause(err)
	}

	stored, err := s.refreshTokens.FindByTokenHash(ctx, token.HashRefreshToken(raw))
	if err != nil {
		if errors.Is(err, authrepo.ErrRefreshTokenNotFound) {
			s.log.WithFields(ctx, logger.Fields{
				"user_id": payload.UserID,
				"action":  "refresh_token_not_found",
			}).Warn("refresh token rejected: not found")
			incrementRefreshTokensRejected("not_found")
			return authdomain.TokenPair{}, ErrInvalidRefreshToken
		}
		s.log.WithFields(ctx, logger.Fields{
			"user_id": payload.UserID,
			"action":  "refresh_token_lookup_failed",
		}).Errorf("refresh token lookup failed: %v", err)
		return authdomain.TokenPair{}, err
	}

	if stored.UserID != payload.UserID {
		s.log.WithFields(ctx, logger.Fields{
			"user_id":        payload.UserID,
			"stored_user_id": stored.UserID,
			"action":         "refresh_token_user_mismatch",
		}).Warn("refresh token rejected: user mismatch")
		incrementRefreshTokensRejected("user_mismatch")
		return authdomain.TokenPair{}, ErrInvalidRefreshToken
	}

	if stored.IsExpired(s.clock.Now()) {
		if _, err := s.refreshTokens.Delete(ctx, stored.ID); err != nil {
			s.log.WithFields(ctx, logger.Fields{
				"user_id": stored.UserID,
				"action":  "refresh_token_delete_expired_failed",
			}).Errorf("refresh token failed to delete expired record: %v", err)
			return authdomain.TokenPair{}, err
		}
		s.log.WithFields(ctx, logger.Fields{
			"user_id": stored.UserID,
			"action":  "refresh_token_expired",
		}).Warn("refresh token expired")
		incrementRefreshTokensExpired()
		return authdomain.TokenPair{}, ErrRefreshTokenExpired
	}

	user, err := s.users.FindByID(ctx, stored.UserID)
	if err != nil {
		if errors.Is(err, userrepo.ErrUserNotFound) {
			s.log.WithFields(ctx, logger.Fields{
				"user_id": stored.UserID,
				"action":  "refresh_token_user_missing",
			}).Warn("refresh token rejected: user no longer exists")
			incrementRefreshTokensRejected("user_missing")
			return authdomain.TokenPair{}, ErrInvalidRefreshToken
		}
		s.log.WithFields(ctx, logger.Fields{
			"user_id": stored.UserID,
			"action":  "refresh_token_user_lookup_failed",
		}).Errorf("refresh token failed: user lookup error: %v", err)
		return authdomain.TokenPair{}, err
	}

	consumed, err := s.refreshTokens.Delete(ctx, stored.ID)
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"user_id": stored.UserID,
			"action":  "refresh_token_delete_old_failed",
		}).Errorf("refresh token failed to delete old record: %v", err)
		return authdomain.TokenPair{}, err
	}
	if !consumed {
		s.log.WithFields(ctx, logger.Fields{
			"user_id": stored.UserID,
			"action":  "refresh_token_reuse_detected",
		}).Warn("refresh token rejected: already consumed")
		incrementRefreshTokensRejected("reused")
		return authdomain.TokenPair{}, ErrInvalidRefreshToken
	}
	incrementRefreshTokensUsed()

	pair, err := s.mint(ctx, user)
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"user_id": user.ID,
			"action":  "refresh_token_issue_failed",
		}).Errorf("refresh token failed to issue new tokens: %v", err)
		return authdomain.TokenPair{}, err
	}

	s.log.WithFields(ctx, logger.Fields{
		"user_id": user.ID,
		"action":  "refresh_token_success",
	}).Info("refresh token success")
	return pair, nil
}

// Logout revokes every refresh token of the user.
func (s *AuthService) Logout(ctx context.Context, userID userdomain.ID) error {
	n, err := s.refreshTokens.DeleteByUserID(ctx, userID)
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"user_id": userID,
			"action":  "logout_failed",
		}).Errorf("logout failed: %v", err)
		return err
	}

	s.log.WithFields(ctx, logger.Fields{
		"user_id": userID,
		"revoked": n,
		"action":  "logout_success",
	}).Info("logout success")
	incrementSessionsRevoked("logout")
	return nil
}

func (s *AuthService) CreateUser(ctx context.Context, creds authdomain.Credentials) (userdomain.User, error) {
	if err := validateCredentials(creds.Username, creds.Password); err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"username": creds.Username,
			"action":   "register_invalid_credentials",
		}).Warnf("register failed: %v", err)
		return userdomain.User{}, err
	}

	_, err := s.users.FindByUsername(ctx, creds.Username)
	switch {
	case err == nil:
		s.log.WithFields(ctx, logger.Fields{
			"username": creds.Username,
			"action":   "register_username_exists",
		}).Warn("register failed: username already exists")
		return userdomain.User{}, ErrUsernameTaken
	case !errors.Is(err, userrepo.ErrUserNotFound):
		s.log.WithFields(ctx, logger.Fields{
			"username": creds.Username,
			"action":   "register_lookup_failed",
		}).Errorf("register failed: %v", err)
		return userdomain.User{}, err
	}

	hash, err := s.hasher.Hash(creds.Password)
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"username": creds.Username,
			"action":   "register_hash_failed",
		}).Errorf("register failed: password hash error: %v", err)
		return userdomain.User{}, err
	}

	user, err := s.users.Create(ctx, userdomain.User{
		Username:     creds.Username,
		PasswordHash: hash,
	})
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"username": creds.Username,
			"action":   "register_create_failed",
		}).Errorf("register failed: %v", err)
		return userdomain.User{}, err
	}

	s.log.WithFields(ctx, logger.Fields{
		"user_id":  user.ID,
		"username": user.Username,
		"action":   "register_success",
	}).Info("register success")
	incrementUsersCreated()
	return user, nil
}

// ChangePassword revokes every outstanding refresh token of the user and then
// replaces the password hash.
func (s *AuthService) ChangePassword(ctx context.Context, userID userdomain.ID, oldPassword, newPassword string) error {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, userrepo.ErrUserNotFound) {
			s.log.WithFields(ctx, logger.Fields{
				"user_id": userID,
				"action":  "change_password_user_not_found",
			}).Warn("change password failed: user not found")
			return ErrUserNotFound
		}
		s.log.WithFields(ctx, logger.Fields{
			"user_id": userID,
			"action":  "change_password_fetch_failed",
		}).Errorf("change password failed: %v", err)
		return err
	}

	ok, err := s.hasher.Verify(oldPassword, user.PasswordHash)
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"user_id": userID,
			"action":  "change_password_verify_failed",
		}).Errorf("change password failed: stored hash unusable: %v", err)
		return err
	}
	if !ok {
		s.log.WithFields(ctx, logger.Fields{
			"user_id": userID,
			"action":  "change_password_invalid_password",
		}).Warn("change password failed: invalid current password")
		return ErrInvalidCredentials
	}

	if err := validatePassword(newPassword); err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"user_id": userID,
			"action":  "change_password_invalid_new_password",
		}).Warnf("change password failed: %v", err)
		return err
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"user_id": userID,
			"action":  "change_password_hash_failed",
		}).Errorf("change password failed: password hash error: %v", err)
		return err
	}

	// Sessions go first: if the update then fails the old password stays
	// valid, but no refresh token issued under it survives.
	n, err := s.refreshTokens.DeleteByUserID(ctx, userID)
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"user_id": userID,
			"action":  "change_password_revoke_failed",
		}).Errorf("change password failed to revoke sessions: %v", err)
		return fmt.Errorf("failed to revoke sessions: %w", err)
	}
	incrementSessionsRevoked("password_change")

	user.PasswordHash = hash
	if _, err := s.users.Update(ctx, user); err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"user_id": userID,
			"revoked": n,
			"action":  "change_password_update_failed",
		}).Errorf("change password failed after revoking sessions: %v", err)
		return err
	}

	s.log.WithFields(ctx, logger.Fields{
		"user_id": userID,
		"revoked": n,
		"action":  "change_password_success",
	}).Info("password changed")
	incrementPasswordChanges()
	return nil
}

// ValidateAccessToken resolves a bearer token to the identity of an existing
// user. Any authentication failure is reported as ErrInvalidToken; store
// failures are returned as they are.
func (s *AuthService) ValidateAccessToken(ctx context.Context, t authdomain.AccessToken) (userdomain.Identity, error) {
	payload, err := s.signer.VerifyAccessToken(t)
	if err != nil {
		observeAccessTokenValidation(false)
		return userdomain.Identity{}, ErrInvalidToken.WithCause(err)
	}

	user, err := s.users.FindByID(ctx, payload.UserID)
	if err != nil {
		observeAccessTokenValidation(false)
		if errors.Is(err, userrepo.ErrUserNotFound) {
			s.log.WithFields(ctx, logger.Fields{
				"user_id": payload.UserID,
				"action":  "validate_token_user_missing",
			}).Debug("access token references a missing user")
			return userdomain.Identity{}, ErrInvalidToken
		}
		s.log.WithFields(ctx, logger.Fields{
			"user_id": payload.UserID,
			"action":  "validate_token_lookup_failed",
		}).Errorf("access token validation failed: %v", err)
		return userdomain.Identity{}, err
	}

	observeAccessTokenValidation(true)
	return user.Identity(), nil
}

func (s *AuthService) CleanupExpiredTokens(ctx context.Context) (int64, error) {
	n, err := s.refreshTokens.DeleteExpired(ctx)
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"action": "cleanup_expired_tokens_failed",
		}).Errorf("failed to cleanup expired refresh tokens: %v", err)
		return 0, err
	}

	if n > 0 {
		s.log.WithFields(ctx, logger.Fields{
			"deleted": n,
			"action":  "cleanup_expired_tokens",
		}).Info("expired refresh tokens removed")
	}
	addRefreshTokensCleanupDeleted(n)
	return n, nil
}

// mint issues both tokens and records the refresh token hash. The record
// expires after the same TTL the signer embeds in the refresh token.
func (s *AuthService) mint(ctx context.Context, user userdomain.User) (authdomain.TokenPair, error) {
	payload := authdomain.TokenPayload{UserID: user.ID, Username: user.Username}

	access, err := s.signer.IssueAccessToken(payload)
	if err != nil {
		return authdomain.TokenPair{}, err
	}
	incrementAccessTokensIssued()

	refresh, err := s.signer.IssueRefreshToken(payload)
	if err != nil {
		return authdomain.TokenPair{}, err
	}

	_, err = s.refreshTokens.Create(ctx, authdomain.RefreshToken{
		UserID:    user.ID,
		TokenHash: token.HashRefreshToken(refresh),
		ExpiresAt: s.clock.Now().Add(s.signer.RefreshTokenTTL()),
	})
	if err != nil {
		return authdomain.TokenPair{}, err
	}
	incrementRefreshTokensIssued()

	return authdomain.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
