package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/chatwire/chatwire/internal/data"

	"go.mongodb.org/mongo-driver/v2/mongo"
)

// Sentinel errors carrying the exact user-facing messages. Handlers
// serialize err.Error() as the error payload and discriminate with
// errors.Is for status mapping.
var (
	ErrSaveUser           = errors.New("Failed to save user")
	ErrUserNotFound       = errors.New("User not found")
	ErrFetchUser          = errors.New("Error fetching user")
	ErrInvalidCredentials = errors.New("Invalid username or password")
	ErrLoginFailed        = errors.New("Login failed")
	ErrDeleteUser         = errors.New("Failed to delete user")
	ErrUpdateUser         = errors.New("Failed to update user")
	ErrResetPassword      = errors.New("Failed to reset password")
)

// UserStore is the slice of the users store this service needs. Each
// mutation is a single atomic find-and-mutate at the backend.
type UserStore interface {
	Insert(ctx context.Context, user *data.User) (*data.User, error)
	FindByUsername(ctx context.Context, username string) (*data.User, error)
	FindByCredentials(ctx context.Context, username, password string) (*data.User, error)
	DeleteByUsername(ctx context.Context, username string) (*data.User, error)
	UpdateByUsername(ctx context.Context, username string, fields data.UserUpdate) (*data.User, error)
	SetPassword(ctx context.Context, username, newPassword string) (*data.User, error)
}

// Users exposes the account lifecycle operations. Every success value is
// the safe projection; the password never leaves this package.
type Users struct {
	store UserStore
	log   *slog.Logger
}

// NewUsers returns a Users service over the given store.
func NewUsers(store UserStore, log *slog.Logger) *Users {
	return &Users{store: store, log: log}
}

// Create persists a new account. The caller stamps DateJoined. A duplicate
// username is a save failure like any other backend error.
func (s *Users) Create(ctx context.Context, user *data.User) (*data.SafeUser, error) {
	saved, err := s.store.Insert(ctx, user)
	if err != nil {
		s.log.Error("insert user failed", "username", user.Username, "err", err)
		return nil, ErrSaveUser
	}
	return saved.Safe(), nil
}

// GetByUsername looks up an account by exact username match.
func (s *Users) GetByUsername(ctx context.Context, username string) (*data.SafeUser, error) {
	user, err := s.store.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		s.log.Error("fetch user failed", "username", username, "err", err)
		return nil, ErrFetchUser
	}
	return user.Safe(), nil
}

// Login matches username and password against the stored record in one
// lookup. An unknown username and a wrong password produce the same error
// so the response does not leak which one failed.
func (s *Users) Login(ctx context.Context, username, password string) (*data.SafeUser, error) {
	user, err := s.store.FindByCredentials(ctx, username, password)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrInvalidCredentials
		}
		s.log.Error("login lookup failed", "username", username, "err", err)
		return nil, ErrLoginFailed
	}
	return user.Safe(), nil
}

// DeleteByUsername removes the account and returns its safe projection.
func (s *Users) DeleteByUsername(ctx context.Context, username string) (*data.SafeUser, error) {
	user, err := s.store.DeleteByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		s.log.Error("delete user failed", "username", username, "err", err)
		return nil, ErrDeleteUser
	}
	return user.Safe(), nil
}

// Update applies a partial field update and returns the safe projection of
// the post-update record.
func (s *Users) Update(ctx context.Context, username string, fields data.UserUpdate) (*data.SafeUser, error) {
	user, err := s.store.UpdateByUsername(ctx, username, fields)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		s.log.Error("update user failed", "username", username, "err", err)
		return nil, ErrUpdateUser
	}
	return user.Safe(), nil
}

// ResetPassword replaces only the password field, the restricted form of
// Update used by the dedicated reset workflow.
func (s *Users) ResetPassword(ctx context.Context, username, newPassword string) (*data.SafeUser, error) {
	user, err := s.store.SetPassword(ctx, username, newPassword)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		s.log.Error("reset password failed", "username", username, "err", err)
		return nil, ErrResetPassword
	}
	return user.Safe(), nil
}
