package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	authdomain "github.com/AlibekovAA/recipebook/backend/internal/auth/domain"
	"github.com/AlibekovAA/recipebook/backend/internal/common/constants"
	commonerrors "github.com/AlibekovAA/recipebook/backend/internal/common/errors"
	commonhttp "github.com/AlibekovAA/recipebook/backend/internal/common/http"
	"github.com/AlibekovAA/recipebook/backend/internal/common/logger"
	"github.com/AlibekovAA/recipebook/backend/internal/observability/metrics"
	userdomain "github.com/AlibekovAA/recipebook/backend/internal/user/domain"
)

type TokenValidator interface {
	ValidateAccessToken(ctx context.Context, t authdomain.AccessToken) (userdomain.Identity, error)
}

type contextKey string

const identityKey contextKey = "auth_identity"

// Gate authorizes requests carrying an access token.
type Gate struct {
	validator TokenValidator
	log       *logger.Logger
}

func NewGate(validator TokenValidator, log *logger.Logger) *Gate {
	return &Gate{validator: validator, log: log}
}

// RequireAuth rejects requests without a valid bearer token. A missing or
// non-bearer header gets UNAUTHORIZED; a bearer token that fails validation
// gets INVALID_TOKEN.
func (g *Gate) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		raw, ok := bearerToken(r)
		if !ok {
			metrics.GateRejectionsTotal.WithLabelValues("missing_bearer").Inc()
			writeDomainError(w, r, commonerrors.ErrUnauthorized)
			return
		}

		identity, err := g.validator.ValidateAccessToken(ctx, raw)
		if err != nil {
			if errors.Is(err, commonerrors.ErrInvalidToken) {
				g.log.WithFields(ctx, logger.Fields{
					"action": "auth_gate_invalid_token",
					"path":   r.URL.Path,
				}).Warn("request rejected: invalid token")
				metrics.GateRejectionsTotal.WithLabelValues("invalid_token").Inc()
				writeDomainError(w, r, commonerrors.ErrInvalidToken)
				return
			}
			g.log.WithFields(ctx, logger.Fields{
				"action": "auth_gate_validation_failed",
				"path":   r.URL.Path,
			}).Errorf("token validation failed: %v", err)
			metrics.GateRejectionsTotal.WithLabelValues("error").Inc()
			writeDomainError(w, r, commonerrors.ErrInternalError)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithIdentity(ctx, identity)))
	})
}

// OptionalAuth attaches the identity when the request carries a valid token
// and otherwise passes the request through untouched.
func (g *Gate) OptionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := bearerToken(r)
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		ctx := r.Context()
		identity, err := g.validator.ValidateAccessToken(ctx, raw)
		if err != nil {
			if !errors.Is(err, commonerrors.ErrInvalidToken) {
				g.log.WithFields(ctx, logger.Fields{
					"action": "auth_gate_optional_validation_failed",
					"path":   r.URL.Path,
				}).Errorf("token validation failed: %v", err)
			}
			next.ServeHTTP(w, r)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithIdentity(ctx, identity)))
	})
}

func WithIdentity(ctx context.Context, identity userdomain.Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

func IdentityFromContext(ctx context.Context) (userdomain.Identity, bool) {
	identity, ok := ctx.Value(identityKey).(userdomain.Identity)
	return identity, ok
}

func bearerToken(r *http.Request) (authdomain.AccessToken, bool) {
	header := r.Header.Get(constants.AuthorizationHeader)
	if !strings.HasPrefix(header, constants.BearerPrefix) {
		return "", false
	}
	return authdomain.AccessToken(strings.TrimPrefix(header, constants.BearerPrefix)), true
}

func writeDomainError(w http.ResponseWriter, r *http.Request, err commonerrors.DomainError) {
	commonhttp.WriteErrorEnvelope(w, err.HTTPStatus(), err.Code(), err.Message(), nil, commonhttp.TraceIDFromContext(r.Context()))
}
