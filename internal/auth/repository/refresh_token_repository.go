package repository

import (
	"context"
	"time"

	authdomain "github.com/AlibekovAA/recipebook/backend/internal/auth/domain"
	"github.com/AlibekovAA/recipebook/backend/internal/common/clock"
	"github.com/AlibekovAA/recipebook/backend/internal/common/db"
	userdomain "github.com/AlibekovAA/recipebook/backend/internal/user/domain"
)

type RefreshTokenRepository interface {
	Create(ctx context.Context, token authdomain.RefreshToken) (authdomain.RefreshToken, error)
	FindByID(ctx context.Context, id authdomain.RefreshTokenID) (authdomain.RefreshToken, error)
	FindByTokenHash(ctx context.Context, hash string) (authdomain.RefreshToken, error)
	FindByUserID(ctx context.Context, userID userdomain.ID) ([]authdomain.RefreshToken, error)
	// Delete reports whether a record was removed. Callers use it as the
	// single-use gate when consuming a token.
	Delete(ctx context.Context, id authdomain.RefreshTokenID) (bool, error)
	DeleteByUserID(ctx context.Context, userID userdomain.ID) (int64, error)
	DeleteExpired(ctx context.Context) (int64, error)
}

const refreshTokenColumns = `id, user_id, token_hash, expires_at, created_at`

type PgRefreshTokenRepository struct {
	pool  db.Pool
	clock clock.Clock
}

func NewPgRefreshTokenRepository(pool db.Pool, clk clock.Clock) *PgRefreshTokenRepository {
	if clk == nil {
		clk = clock.NewRealClock()
	}
	return &PgRefreshTokenRepository{pool: pool, clock: clk}
}

func (r *PgRefreshTokenRepository) Create(ctx context.Context, token authdomain.RefreshToken) (authdomain.RefreshToken, error) {
	ctx, cancel := db.WithQueryTimeout(ctx)
	defer cancel()

	start := time.Now()
	row := r.pool.QueryRow(
		ctx,
		`INSERT INTO refresh_tokens (user_id, token_hash, expires_at)
		 VALUES ($1, $2, $3)
		 RETURNING `+refreshTokenColumns,
		int64(token.UserID),
		token.TokenHash,
		token.ExpiresAt,
	)

	created, err := scanRefreshToken(row)
	if err != nil {
		return authdomain.RefreshToken{}, db.HandleExecError(err, ErrRefreshTokenAlreadyExists, "create refresh token", start)
	}
	db.MeasureQueryDuration("create refresh token", start)
	return created, nil
}

func (r *PgRefreshTokenRepository) FindByID(ctx context.Context, id authdomain.RefreshTokenID) (authdomain.RefreshToken, error) {
	ctx, cancel := db.WithQueryTimeout(ctx)
	defer cancel()

	start := time.Now()
	row := r.pool.QueryRow(ctx, `SELECT `+refreshTokenColumns+` FROM refresh_tokens WHERE id = $1`, int64(id))

	token, err := scanRefreshToken(row)
	if err := db.HandleQueryError(err, ErrRefreshTokenNotFound, "find refresh token by id", start); err != nil {
		return authdomain.RefreshToken{}, err
	}
	return token, nil
}

func (r *PgRefreshTokenRepository) FindByTokenHash(ctx context.Context, hash string) (authdomain.RefreshToken, error) {
	ctx, cancel := db.WithQueryTimeout(ctx)
	defer cancel()

	start := time.Now()
	row := r.pool.QueryRow(ctx, `SELECT `+refreshTokenColumns+` FROM refresh_tokens WHERE token_hash = $1`, hash)

	token, err := scanRefreshToken(row)
	if err := db.HandleQueryError(err, ErrRefreshTokenNotFound, "find refresh token by hash", start); err != nil {
		return authdomain.RefreshToken{}, err
	}
	return token, nil
}

func (r *PgRefreshTokenRepository) FindByUserID(ctx context.Context, userID userdomain.ID) ([]authdomain.RefreshToken, error) {
	ctx, cancel := db.WithQueryTimeout(ctx)
	defer cancel()

	start := time.Now()
	rows, err := r.pool.Query(
		ctx,
		`SELECT `+refreshTokenColumns+`
		 FROM refresh_tokens
		 WHERE user_id = $1
		 ORDER BY created_at DESC, id DESC`,
		int64(userID),
	)
	if err != nil {
		return nil, db.HandleQueryError(err, nil, "find refresh tokens by user", start)
	}
	defer rows.Close()

	tokens := make([]authdomain.RefreshToken, 0)
	for rows.Next() {
		token, err := scanRefreshToken(rows)
		if err != nil {
			return nil, db.HandleQueryError(err, nil, "scan refresh token", start)
		}
		tokens = append(tokens, token)
	}
	if err := rows.Err(); err != nil {
		return nil, db.HandleQueryError(err, nil, "iterate refresh tokens", start)
	}

	db.MeasureQueryDuration("find refresh tokens by user", start)
	return tokens, nil
}

func (r *PgRefreshTokenRepository) Delete(ctx context.Context, id authdomain.RefreshTokenID) (bool, error) {
	ctx, cancel := db.WithQueryTimeout(ctx)
	defer cancel()

	start := time.Now()
	res, err := r.pool.Exec(ctx, `DELETE FROM refresh_tokens WHERE id = $1`, int64(id))
	if err != nil {
		return false, db.HandleExecError(err, nil, "delete refresh token", start)
	}
	db.MeasureQueryDuration("delete refresh token", start)
	return res.RowsAffected() > 0, nil
}

func (r *PgRefreshTokenRepository) DeleteByUserID(ctx context.Context, userID userdomain.ID) (int64, error) {
	ctx, cancel := db.WithQueryTimeout(ctx)
	defer cancel()

	start := time.Now()
	res, err := r.pool.Exec(ctx, `DELETE FROM refresh_tokens WHERE user_id = $1`, int64(userID))
	if err != nil {
		return 0, db.HandleExecError(err, nil, "delete refresh tokens by user", start)
	}
	db.MeasureQueryDuration("delete refresh tokens by user", start)
	db.ObserveRowsAffected("delete refresh tokens by user", res.RowsAffected())
	return res.RowsAffected(), nil
}

// DeleteExpired removes every record with expires_at at or before now.
func (r *PgRefreshTokenRepository) DeleteExpired(ctx context.Context) (int64, error) {
	ctx, cancel := db.WithQueryTimeout(ctx)
	defer cancel()

	start := time.Now()
	res, err := r.pool.Exec(ctx, `DELETE FROM refresh_tokens WHERE expires_at <= $1`, r.clock.Now())
	if err != nil {
		return 0, db.HandleExecError(err, nil, "delete expired refresh tokens", start)
	}
	db.MeasureQueryDuration("delete expired refresh tokens", start)
	db.ObserveRowsAffected("delete expired refresh tokens", res.RowsAffected())
	return res.RowsAffected(), nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRefreshToken(row rowScanner) (authdomain.RefreshToken, error) {
	var (
		token  authdomain.RefreshToken
		id     int64
		userID int64
	)
	if err := row.Scan(&id, &userID, &token.TokenHash, &token.ExpiresAt, &token.CreatedAt); err != nil {
		return authdomain.RefreshToken{}, err
	}
	token.ID = authdomain.RefreshTokenID(id)
	token.UserID = userdomain.ID(userID)
	return token, nil
}
