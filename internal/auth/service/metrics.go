package service

import (
	"github.com/AlibekovAA/recipebook/backend/internal/observability/metrics"
)

func incrementLoginAttempts(outcome string) {
	metrics.LoginAttemptsTotal.WithLabelValues(outcome).Inc()
}

func incrementUsersCreated() {
	metrics.UsersCreated.Inc()
}

func incrementPasswordChanges() {
	metrics.PasswordChanges.Inc()
}

func incrementAccessTokensIssued() {
	metrics.AccessTokensIssued.Inc()
}

func incrementRefreshTokensIssued() {
	metrics.RefreshTokensIssued.Inc()
}

func incrementRefreshTokensUsed() {
	metrics.RefreshTokensUsed.Inc()
}

func incrementRefreshTokensRejected(reason string) {
	metrics.RefreshTokensRejected.WithLabelValues(reason).Inc()
}

func incrementRefreshTokensExpired() {
	metrics.RefreshTokensExpired.Inc()
}

func incrementSessionsRevoked(trigger string) {
	metrics.SessionsRevoked.WithLabelValues(trigger).Inc()
}

func addRefreshTokensCleanupDeleted(n int64) {
	metrics.RefreshTokensCleanupDeleted.Add(float64(n))
}

func observeAccessTokenValidation(ok bool) {
	metrics.AccessTokenValidationsTotal.Inc()
	if !ok {
		metrics.AccessTokenValidationsFailed.Inc()
	}
}
