package db

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgconn"
	pgx "github.com/jackc/pgx/v4"

	commonerrors "github.com/AlibekovAA/recipebook/backend/internal/common/errors"
	"github.com/AlibekovAA/recipebook/backend/internal/observability/metrics"
)

const uniqueViolationCode = "23505"

func extractTableFromOperation(operation string) string {
	operation = strings.ToLower(operation)
	if strings.Contains(operation, "refresh") || strings.Contains(operation, "token") {
		return "refresh_tokens"
	}
	if strings.Contains(operation, "user") {
		return "users"
	}
	return "unknown"
}

func observe(operation string, startTime time.Time) string {
	table := extractTableFromOperation(operation)
	metrics.DBQueryDurationSeconds.WithLabelValues(operation, table).Observe(time.Since(startTime).Seconds())
	return table
}

// HandleQueryError maps pgx.ErrNoRows to notFoundErr and wraps anything else
// in ErrDatabaseError.
func HandleQueryError(err error, notFoundErr error, operation string, startTime time.Time) error {
	table := observe(operation, startTime)

	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return notFoundErr
	}
	metrics.DBQueryErrors.WithLabelValues(operation, table, fmt.Sprintf("%T", err)).Inc()
	return commonerrors.ErrDatabaseError.WithCause(fmt.Errorf("failed to %s: %w", operation, err))
}

// HandleExecError wraps a failed statement. A unique violation becomes
// conflictErr when one is given.
func HandleExecError(err error, conflictErr error, operation string, startTime time.Time) error {
	table := observe(operation, startTime)

	if err == nil {
		return nil
	}
	if conflictErr != nil && IsUniqueViolation(err) {
		return conflictErr
	}
	metrics.DBQueryErrors.WithLabelValues(operation, table, fmt.Sprintf("%T", err)).Inc()
	return commonerrors.ErrDatabaseError.WithCause(fmt.Errorf("failed to %s: %w", operation, err))
}

func MeasureQueryDuration(operation string, startTime time.Time) {
	observe(operation, startTime)
}

func ObserveRowsAffected(operation string, rows int64) {
	metrics.DBRowsAffected.WithLabelValues(operation, extractTableFromOperation(operation)).Observe(float64(rows))
}

func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}
