package service

import (
	"context"
	"errors"
	"testing"

	"sheetdrop/internal/crypto"
	"sheetdrop/internal/errs"
	"sheetdrop/internal/model"

	"github.com/stretchr/testify/require"
)

type fakeUsers struct {
	byName map[string]*model.User
	nextID int64

	createErr error
	getErr    error
}

var _ UserStore = (*fakeUsers)(nil)

func (f *fakeUsers) Create(_ context.Context, u *model.User) error {
	if f.createErr != nil {
		return f.createErr
	}
	if f.byName == nil {
		f.byName = map[string]*model.User{}
	}
	for _, ex := range f.byName {
		if ex.Username == u.Username {
			return errs.ErrDuplicateUsername
		}
		if ex.Email == u.Email {
			return errs.ErrDuplicateEmail
		}
	}
	f.nextID++
	u.ID = f.nextID
	cpy := *u
	f.byName[u.Username] = &cpy
	return nil
}

func (f *fakeUsers) GetByUsername(_ context.Context, username string) (*model.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	u, ok := f.byName[username]
	if !ok {
		return nil, errs.ErrNotFound
	}
	c := *u
	return &c, nil
}

func (f *fakeUsers) UsernameTaken(_ context.Context, username string) (bool, error) {
	_, ok := f.byName[username]
	return ok, nil
}

func (f *fakeUsers) EmailTaken(_ context.Context, email string) (bool, error) {
	for _, u := range f.byName {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func TestRegister_MissingFields(t *testing.T) {
	s := NewAuth(&fakeUsers{})
	ctx := context.Background()

	_, err := s.Register(ctx, "", "a@x.com", "pw")
	require.ErrorIs(t, err, errs.ErrMissingUsername)
	_, err = s.Register(ctx, "alice", "", "pw")
	require.ErrorIs(t, err, errs.ErrMissingEmail)
	_, err = s.Register(ctx, "alice", "a@x.com", "")
	require.ErrorIs(t, err, errs.ErrMissingPassword)
}

func TestRegister_SuccessAndDuplicates(t *testing.T) {
	f := &fakeUsers{}
	s := NewAuth(f)
	ctx := context.Background()

	u, err := s.Register(ctx, "alice", "a@x.com", "pw123456")
	require.NoError(t, err)
	require.Equal(t, int64(1), u.ID)
	require.NotEqual(t, "pw123456", u.PasswordHash)
	require.True(t, crypto.VerifyPassword(u.PasswordHash, "pw123456"))

	// Same username, different email.
	_, err = s.Register(ctx, "alice", "other@x.com", "pw123456")
	require.ErrorIs(t, err, errs.ErrDuplicateUsername)

	// Same email, new username.
	_, err = s.Register(ctx, "alice2", "a@x.com", "pw123456")
	require.ErrorIs(t, err, errs.ErrDuplicateEmail)
}

func TestRegister_ConstraintBackstop(t *testing.T) {
	// A duplicate that slips past the pre-check (lost race) surfaces
	// as the conflict sentinel from Create, not a generic failure.
	f := &fakeUsers{createErr: errs.ErrDuplicateUsername}
	s := NewAuth(f)

	_, err := s.Register(context.Background(), "alice", "a@x.com", "pw")
	require.ErrorIs(t, err, errs.ErrDuplicateUsername)
}

func TestLogin(t *testing.T) {
	f := &fakeUsers{}
	s := NewAuth(f)
	ctx := context.Background()

	_, err := s.Register(ctx, "bob", "b@x.com", "pw")
	require.NoError(t, err)

	u, err := s.Login(ctx, "bob", "pw")
	require.NoError(t, err)
	require.Equal(t, "bob", u.Username)
	require.Positive(t, u.ID)

	_, err = s.Login(ctx, "bob", "wrong")
	require.ErrorIs(t, err, errs.ErrBadPassword)

	_, err = s.Login(ctx, "nobody", "pw")
	require.ErrorIs(t, err, errs.ErrUnknownUser)
}

func TestLogin_StoreFailure(t *testing.T) {
	boom := errors.New("connection refused")
	s := NewAuth(&fakeUsers{getErr: boom})

	_, err := s.Login(context.Background(), "bob", "pw")
	require.ErrorIs(t, err, boom)
	require.NotErrorIs(t, err, errs.ErrUnknownUser)
}
