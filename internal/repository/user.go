// Package repository provides the PostgreSQL persistence of user accounts.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/atinyakov/profilepanel/internal/models"
	"github.com/lib/pq"
)

// uniqueViolation is the Postgres error code for a unique constraint failure.
const uniqueViolation = "23505"

const userColumns = `id, username, email, profile_picture, is_admin, created_at, updated_at`

// PostgresUserRepository reads and updates users in a PostgreSQL database.
type PostgresUserRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresUserRepository creates a new PostgresUserRepository with the given database connection.
func NewPostgresUserRepository(db *sql.DB) *PostgresUserRepository {
	return &PostgresUserRepository{DB: db}
}

// GetUser fetches the user with the given id. It returns
// models.ErrUserNotFound when there is none.
func (r *PostgresUserRepository) GetUser(ctx context.Context, id string) (*models.User, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	user, err := scanUser(row)
	if err != nil {
		return nil, fmt.Errorf("GetUser: %w", err)
	}
	return user, nil
}

// UpdateUser applies the non-nil fields of upd to the user and returns the
// stored record. A username or email already used by another account yields
// models.ErrUserConflict.
func (r *PostgresUserRepository) UpdateUser(ctx context.Context, id string, upd models.UserUpdate) (*models.User, error) {
	row := r.DB.QueryRowContext(ctx, `
		UPDATE users SET
			username = COALESCE($2, username),
			email = COALESCE($3, email),
			password_hash = COALESCE($4, password_hash),
			profile_picture = COALESCE($5, profile_picture),
			updated_at = now()
		WHERE id = $1
		RETURNING `+userColumns,
		id, upd.Username, upd.Email, upd.PasswordHash, upd.ProfilePicture,
	)
	user, err := scanUser(row)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			err = models.ErrUserConflict
		}
		return nil, fmt.Errorf("UpdateUser: %w", err)
	}
	return user, nil
}

func scanUser(row *sql.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.ProfilePicture, &u.IsAdmin, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}
