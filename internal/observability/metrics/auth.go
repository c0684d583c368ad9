package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	AuthRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_requests_total",
			Help: "Total number of auth HTTP requests",
		},
		[]string{"method", "path"},
	)

	AuthRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "auth_requests_in_flight",
			Help: "Number of auth HTTP requests currently being processed",
		},
	)

	AuthRequestDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "auth_request_duration_seconds",
			Help:    "Duration of auth HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	LoginAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_login_attempts_total",
			Help: "Login attempts by outcome",
		},
		[]string{"outcome"},
	)

	UsersCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "auth_users_created_total",
			Help: "Total number of registered users",
		},
	)

	PasswordChanges = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "auth_password_changes_total",
			Help: "Total number of successful password changes",
		},
	)

	AccessTokensIssued = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "access_tokens_issued_total",
			Help: "Total number of access tokens issued",
		},
	)

	RefreshTokensIssued = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "refresh_tokens_issued_total",
			Help: "Total number of refresh tokens issued",
		},
	)

	RefreshTokensUsed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "refresh_tokens_used_total",
			Help: "Total number of refresh tokens consumed by rotation",
		},
	)

	RefreshTokensRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "refresh_tokens_rejected_total",
			Help: "Refresh attempts rejected, by reason",
		},
		[]string{"reason"},
	)

	RefreshTokensExpired = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "refresh_tokens_expired_total",
			Help: "Total number of expired refresh tokens deleted on use",
		},
	)

	SessionsRevoked = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_sessions_revoked_total",
			Help: "Bulk refresh token revocations, by trigger",
		},
		[]string{"trigger"},
	)

	RefreshTokensCleanupDeleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "refresh_tokens_cleanup_deleted_total",
			Help: "Total number of expired refresh tokens deleted by the sweeper",
		},
	)

	AccessTokenValidationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "access_token_validations_total",
			Help: "Total number of access token validations",
		},
	)

	AccessTokenValidationsFailed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "access_token_validations_failed_total",
			Help: "Total number of failed access token validations",
		},
	)
)
