package store

import (
	"context"
	"errors"

	"sheetdrop/internal/errs"
	"sheetdrop/internal/model"

	"github.com/jackc/pgx/v5"
)

// Constraint names declared in the schema; conflict mapping keys on them.
const (
	usernameConstraint = "users_username_key"
	emailConstraint    = "users_email_key"
)

// Users is the PostgreSQL credential store.
type Users struct{ db *DB }

// NewUsers constructs a user repository.
func NewUsers(db *DB) *Users { return &Users{db: db} }

// Create inserts a new user row and fills in the assigned id. The
// insert commits before returning; a unique violation from a lost
// duplicate-check race comes back as the matching conflict sentinel.
func (r *Users) Create(ctx context.Context, u *model.User) error {
	const q = `
INSERT INTO users (username, email, password_hash)
VALUES ($1, $2, $3)
RETURNING id, created_at`
	err := r.db.Pool.QueryRow(ctx, q, u.Username, u.Email, u.PasswordHash).
		Scan(&u.ID, &u.CreatedAt)
	switch uniqueViolation(err) {
	case usernameConstraint:
		return errs.ErrDuplicateUsername
	case emailConstraint:
		return errs.ErrDuplicateEmail
	}
	return err
}

// GetByUsername selects a user by exact, case-sensitive username.
func (r *Users) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	const q = `
SELECT id, username, email, password_hash, created_at
FROM users WHERE username = $1`
	row := r.db.Pool.QueryRow(ctx, q, username)
	var u model.User
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// UsernameTaken reports whether a user with this username exists.
func (r *Users) UsernameTaken(ctx context.Context, username string) (bool, error) {
	const q = `SELECT EXISTS(SELECT 1 FROM users WHERE username = $1)`
	var taken bool
	err := r.db.Pool.QueryRow(ctx, q, username).Scan(&taken)
	return taken, err
}

// EmailTaken reports whether a user with this email exists.
func (r *Users) EmailTaken(ctx context.Context, email string) (bool, error) {
	const q = `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`
	var taken bool
	err := r.db.Pool.QueryRow(ctx, q, email).Scan(&taken)
	return taken, err
}
