package db

import (
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgconn"
	pgx "github.com/jackc/pgx/v4"

	commonerrors "github.com/AlibekovAA/recipebook/backend/internal/common/errors"
)

var errNotFound = errors.New("not found")

func TestHandleQueryError_NoRowsMapsToNotFound(t *testing.T) {
	err := HandleQueryError(pgx.ErrNoRows, errNotFound, "find user by id", time.Now())
	if !errors.Is(err, errNotFound) {
		t.Fatalf("expected errNotFound, got %v", err)
	}
}

func TestHandleQueryError_WrapsOtherErrors(t *testing.T) {
	cause := errors.New("connection reset")
	err := HandleQueryError(cause, errNotFound, "find user by id", time.Now())
	if !errors.Is(err, cause) {
		t.Fatalf("expected wrapped cause, got %v", err)
	}
	if !errors.Is(err, commonerrors.ErrDatabaseError) {
		t.Fatalf("expected ErrDatabaseError, got %v", err)
	}
	if err.Error() != "database operation failed: failed to find user by id: connection reset" {
		t.Errorf("unexpected message: %q", err.Error())
	}
}

func TestHandleQueryError_Nil(t *testing.T) {
	if err := HandleQueryError(nil, errNotFound, "find user by id", time.Now()); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
}

func TestHandleExecError_UniqueViolation(t *testing.T) {
	conflict := errors.New("conflict")
	pgErr := &pgconn.PgError{Code: "23505"}

	err := HandleExecError(pgErr, conflict, "create user", time.Now())
	if !errors.Is(err, conflict) {
		t.Fatalf("expected conflict error, got %v", err)
	}

	err = HandleExecError(pgErr, nil, "create user", time.Now())
	if errors.Is(err, conflict) || !errors.Is(err, pgErr) {
		t.Fatalf("expected wrapped pg error without conflict mapping, got %v", err)
	}
}

func TestExtractTableFromOperation(t *testing.T) {
	cases := map[string]string{
		"create user":                   "users",
		"update user last login":        "users",
		"create refresh token":          "refresh_tokens",
		"delete refresh tokens by user": "refresh_tokens",
		"ping":                          "unknown",
	}
	for op, want := range cases {
		if got := extractTableFromOperation(op); got != want {
			t.Errorf("%q: expected %q, got %q", op, want, got)
		}
	}
}
