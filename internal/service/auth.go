// Package service contains the application services sitting between the
// HTTP handlers and the store.
package service

import (
	"context"
	"errors"
	"fmt"

	"sheetdrop/internal/crypto"
	"sheetdrop/internal/errs"
	"sheetdrop/internal/model"
)

// UserStore is the credential store interface the auth service depends on.
type UserStore interface {
	// Create inserts a new user, filling in the assigned id.
	Create(ctx context.Context, u *model.User) error
	// GetByUsername loads a user by exact username.
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	// UsernameTaken reports whether the username is already registered.
	UsernameTaken(ctx context.Context, username string) (bool, error)
	// EmailTaken reports whether the email is already registered.
	EmailTaken(ctx context.Context, email string) (bool, error)
}

// Auth implements registration and login.
type Auth struct {
	users UserStore
}

// NewAuth constructs the auth service.
func NewAuth(users UserStore) *Auth { return &Auth{users: users} }

// Register validates the form fields, hashes the password, and inserts
// the user. The pre-checks give precise conflict errors; the store's
// unique constraints remain authoritative, so a duplicate slipping past
// the pre-check still comes back as the matching conflict sentinel.
func (s *Auth) Register(ctx context.Context, username, email, password string) (*model.User, error) {
	switch {
	case username == "":
		return nil, errs.ErrMissingUsername
	case email == "":
		return nil, errs.ErrMissingEmail
	case password == "":
		return nil, errs.ErrMissingPassword
	}

	if taken, err := s.users.UsernameTaken(ctx, username); err != nil {
		return nil, fmt.Errorf("check username: %w", err)
	} else if taken {
		return nil, errs.ErrDuplicateUsername
	}
	if taken, err := s.users.EmailTaken(ctx, email); err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	} else if taken {
		return nil, errs.ErrDuplicateEmail
	}

	hash, err := crypto.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &model.User{Username: username, Email: email, PasswordHash: hash}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Login authenticates a username/password pair. It distinguishes
// ErrUnknownUser from ErrBadPassword because the forms render different
// messages for them.
func (s *Auth) Login(ctx context.Context, username, password string) (*model.User, error) {
	u, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return nil, errs.ErrUnknownUser
		}
		return nil, err
	}
	if !crypto.VerifyPassword(u.PasswordHash, password) {
		return nil, errs.ErrBadPassword
	}
	return u, nil
}
