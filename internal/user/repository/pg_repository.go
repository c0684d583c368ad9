package repository

import (
	"context"
	"time"

	"github.com/AlibekovAA/recipebook/backend/internal/common/db"
	"github.com/AlibekovAA/recipebook/backend/internal/user/domain"
)

const userColumns = `id, username, password_hash, created_at, updated_at, last_login`

type PgRepository struct {
	pool db.Pool
}

func NewPgRepository(pool db.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

func (r *PgRepository) Create(ctx context.Context, user domain.User) (domain.User, error) {
	ctx, cancel := db.WithQueryTimeout(ctx)
	defer cancel()

	start := time.Now()
	row := r.pool.QueryRow(
		ctx,
		`INSERT INTO users (username, password_hash)
		 VALUES ($1, $2)
		 RETURNING `+userColumns,
		user.Username,
		user.PasswordHash,
	)

	created, err := scanUser(row)
	if err != nil {
		return domain.User{}, db.HandleExecError(err, ErrUsernameAlreadyExists, "create user", start)
	}
	db.MeasureQueryDuration("create user", start)
	return created, nil
}

func (r *PgRepository) FindByID(ctx context.Context, id domain.ID) (domain.User, error) {
	ctx, cancel := db.WithQueryTimeout(ctx)
	defer cancel()

	start := time.Now()
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, int64(id))

	user, err := scanUser(row)
	if err := db.HandleQueryError(err, ErrUserNotFound, "find user by id", start); err != nil {
		return domain.User{}, err
	}
	return user, nil
}

func (r *PgRepository) FindByUsername(ctx context.Context, username string) (domain.User, error) {
	ctx, cancel := db.WithQueryTimeout(ctx)
	defer cancel()

	start := time.Now()
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username)

	user, err := scanUser(row)
	if err := db.HandleQueryError(err, ErrUserNotFound, "find user by username", start); err != nil {
		return domain.User{}, err
	}
	return user, nil
}

func (r *PgRepository) Update(ctx context.Context, user domain.User) (domain.User, error) {
	ctx, cancel := db.WithQueryTimeout(ctx)
	defer cancel()

	start := time.Now()
	row := r.pool.QueryRow(
		ctx,
		`UPDATE users
		 SET username = $2, password_hash = $3, updated_at = NOW()
		 WHERE id = $1
		 RETURNING `+userColumns,
		int64(user.ID),
		user.Username,
		user.PasswordHash,
	)

	updated, err := scanUser(row)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return domain.User{}, db.HandleExecError(err, ErrUsernameAlreadyExists, "update user", start)
		}
		return domain.User{}, db.HandleQueryError(err, ErrUserNotFound, "update user", start)
	}
	db.MeasureQueryDuration("update user", start)
	return updated, nil
}

// UpdateLastLogin succeeds even when no row matches id.
func (r *PgRepository) UpdateLastLogin(ctx context.Context, id domain.ID) error {
	ctx, cancel := db.WithQueryTimeout(ctx)
	defer cancel()

	start := time.Now()
	_, err := r.pool.Exec(ctx, `UPDATE users SET last_login = NOW() WHERE id = $1`, int64(id))
	return db.HandleExecError(err, nil, "update user last login", start)
}

func (r *PgRepository) Delete(ctx context.Context, id domain.ID) (bool, error) {
	ctx, cancel := db.WithQueryTimeout(ctx)
	defer cancel()

	start := time.Now()
	res, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, int64(id))
	if err != nil {
		return false, db.HandleExecError(err, nil, "delete user", start)
	}
	db.MeasureQueryDuration("delete user", start)
	db.ObserveRowsAffected("delete user", res.RowsAffected())
	return res.RowsAffected() > 0, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanUser(row rowScanner) (domain.User, error) {
	var (
		user      domain.User
		id        int64
		lastLogin *time.Time
	)
	err := row.Scan(&id, &user.Username, &user.PasswordHash, &user.CreatedAt, &user.UpdatedAt, &lastLogin)
	if err != nil {
		return domain.User{}, err
	}
	user.ID = domain.ID(id)
	user.LastLogin = lastLogin
	return user, nil
}
