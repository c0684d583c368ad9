package http

import (
	"context"
	"net/http"
	"time"

	"github.com/AlibekovAA/recipebook/backend/internal/common/logger"
)

// Pinger reports whether a backing store is reachable.
type Pinger func(ctx context.Context) error

func HealthHandler(log *logger.Logger, ping Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ping != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := ping(ctx); err != nil {
				log.WithFields(r.Context(), logger.Fields{"action": "health_check_failed"}).Warnf("health check failed: %v", err)
				WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
