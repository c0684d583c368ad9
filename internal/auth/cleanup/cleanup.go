package cleanup

import (
	"context"
	"time"

	"github.com/AlibekovAA/recipebook/backend/internal/common/logger"
)

type ExpiredTokenCleaner interface {
	CleanupExpiredTokens(ctx context.Context) (int64, error)
}

// Run sweeps expired refresh tokens every interval until ctx is cancelled.
// A failed sweep is logged and retried on the next tick.
func Run(ctx context.Context, cleaner ExpiredTokenCleaner, interval time.Duration, log *logger.Logger) {
	if interval <= 0 {
		log.Warnf("refresh token cleanup disabled: interval %v", interval)
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Infof("refresh token cleanup started: interval=%v", interval)
	for {
		select {
		case <-ctx.Done():
			log.Info("refresh token cleanup stopped")
			return
		case <-ticker.C:
			if _, err := cleaner.CleanupExpiredTokens(ctx); err != nil && ctx.Err() == nil {
				log.Errorf("refresh token cleanup failed: %v", err)
			}
		}
	}
}
