package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	authdomain "github.com/AlibekovAA/recipebook/backend/internal/auth/domain"
	"github.com/AlibekovAA/recipebook/backend/internal/auth/middleware"
	"github.com/AlibekovAA/recipebook/backend/internal/common/constants"
	commonhttp "github.com/AlibekovAA/recipebook/backend/internal/common/http"
	"github.com/AlibekovAA/recipebook/backend/internal/common/httpmetrics"
	"github.com/AlibekovAA/recipebook/backend/internal/common/logger"
	userdomain "github.com/AlibekovAA/recipebook/backend/internal/user/domain"
)

type AuthService interface {
	Login(ctx context.Context, creds authdomain.Credentials) (authdomain.TokenPair, error)
	RefreshTokens(ctx context.Context, raw authdomain.RawRefreshToken) (authdomain.TokenPair, error)
	Logout(ctx context.Context, userID userdomain.ID) error
	CreateUser(ctx context.Context, creds authdomain.Credentials) (userdomain.User, error)
	ChangePassword(ctx context.Context, userID userdomain.ID, oldPassword, newPassword string) error
	ValidateAccessToken(ctx context.Context, t authdomain.AccessToken) (userdomain.Identity, error)
}

type Config struct {
	RequestTimeout time.Duration
	Ping           commonhttp.Pinger
}

type Handler struct {
	auth   AuthService
	log    *logger.Logger
	errors *commonhttp.ErrorHandler
}

func NewRouter(auth AuthService, log *logger.Logger, cfg Config) http.Handler {
	h := &Handler{
		auth:   auth,
		log:    log,
		errors: commonhttp.NewErrorHandler(log),
	}
	gate := middleware.NewGate(auth, log)

	r := chi.NewRouter()
	r.Use(httpmetrics.New().Wrap)
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		commonhttp.WriteErrorEnvelope(w, http.StatusNotFound, commonhttp.CodeNotFound, "not found", nil, commonhttp.TraceIDFromContext(r.Context()))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		commonhttp.WriteErrorEnvelope(w, http.StatusMethodNotAllowed, commonhttp.CodeMethodNotAllowed, "method not allowed", nil, commonhttp.TraceIDFromContext(r.Context()))
	})

	r.Get(constants.HealthPath, commonhttp.HealthHandler(log, cfg.Ping))
	r.Handle(constants.MetricsPath, promhttp.Handler())

	r.Route("/api/auth", func(r chi.Router) {
		r.Use(commonhttp.WithTimeout(cfg.RequestTimeout))

		r.Post("/register", h.register)
		r.Post("/login", h.login)
		r.Post("/refresh", h.refresh)

		r.Group(func(r chi.Router) {
			r.Use(gate.RequireAuth)
			r.Post("/logout", h.logout)
			r.Post("/password", h.changePassword)
			r.Get("/me", h.me)
		})

		r.With(gate.OptionalAuth).Get("/session", h.session)
	})

	return r
}

type credentialsRequest struct {
	Username string `json:"username" validate:"required,username"`
	Password string `json:"password" validate:"required,password"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required,username"`
	Password string `json:"password" validate:"required,password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password" validate:"required,password"`
	NewPassword string `json:"new_password" validate:"required,password"`
}

type tokenPairResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type userResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

type sessionResponse struct {
	Authenticated bool          `json:"authenticated"`
	User          *userResponse `json:"user,omitempty"`
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !h.decode(w, r, &req) {
		return
	}

	user, err := h.auth.CreateUser(r.Context(), authdomain.Credentials{Username: req.Username, Password: req.Password})
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}

	commonhttp.WriteJSON(w, http.StatusCreated, userResponse{ID: int64(user.ID), Username: user.Username})
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !h.decode(w, r, &req) {
		return
	}

	pair, err := h.auth.Login(r.Context(), authdomain.Credentials{Username: req.Username, Password: req.Password})
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}

	commonhttp.WriteJSON(w, http.StatusOK, toPairResponse(pair))
}

func (h *Handler) refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if !h.decode(w, r, &req) {
		return
	}

	pair, err := h.auth.RefreshTokens(r.Context(), authdomain.RawRefreshToken(req.RefreshToken))
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}

	commonhttp.WriteJSON(w, http.StatusOK, toPairResponse(pair))
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	identity, _ := middleware.IdentityFromContext(r.Context())
	if err := h.auth.Logout(r.Context(), identity.ID); err != nil {
		h.errors.HandleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) changePassword(w http.ResponseWriter, r *http.Request) {
	var req changePasswordRequest
	if !h.decode(w, r, &req) {
		return
	}

	identity, _ := middleware.IdentityFromContext(r.Context())
	if err := h.auth.ChangePassword(r.Context(), identity.ID, req.OldPassword, req.NewPassword); err != nil {
		h.errors.HandleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	identity, _ := middleware.IdentityFromContext(r.Context())
	commonhttp.WriteJSON(w, http.StatusOK, toUserResponse(identity))
}

func (h *Handler) session(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		commonhttp.WriteJSON(w, http.StatusOK, sessionResponse{Authenticated: false})
		return
	}
	user := toUserResponse(identity)
	commonhttp.WriteJSON(w, http.StatusOK, sessionResponse{Authenticated: true, User: &user})
}

// decode reads and validates the request body, writing the 4xx response
// itself when it returns false.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	traceID := commonhttp.TraceIDFromContext(r.Context())

	if err := commonhttp.DecodeJSON(r, v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			commonhttp.WriteErrorEnvelope(w, http.StatusRequestEntityTooLarge, commonhttp.CodeRequestTooLarge, "request body too large", nil, traceID)
			return false
		}
		h.log.WithFields(r.Context(), logger.Fields{
			"path":   r.URL.Path,
			"action": "decode_request_failed",
		}).Warnf("invalid json: %v", err)
		commonhttp.WriteErrorEnvelope(w, http.StatusBadRequest, commonhttp.CodeInvalidJSON, "invalid json", nil, traceID)
		return false
	}

	if err := commonhttp.ValidateStruct(v); err != nil {
		var fields commonhttp.FieldErrors
		if errors.As(err, &fields) {
			commonhttp.WriteErrorEnvelope(w, http.StatusBadRequest, commonhttp.CodeValidationFailed, "validation failed", fields, traceID)
			return false
		}
		h.errors.HandleError(w, r, err)
		return false
	}
	return true
}

func toPairResponse(pair authdomain.TokenPair) tokenPairResponse {
	return tokenPairResponse{
		AccessToken:  string(pair.AccessToken),
		RefreshToken: string(pair.RefreshToken),
	}
}

func toUserResponse(identity userdomain.Identity) userResponse {
	return userResponse{ID: int64(identity.ID), Username: identity.Username}
}
