package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/chatwire/chatwire/internal/data"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

// fakeUserStore is an in-memory UserStore with the same error contract as
// the Mongo-backed one: mongo.ErrNoDocuments for no match, a duplicate
// error for a taken username.
type fakeUserStore struct {
	users    map[string]*data.User
	failWith error
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[string]*data.User)}
}

func (f *fakeUserStore) Insert(ctx context.Context, user *data.User) (*data.User, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	if _, ok := f.users[user.Username]; ok {
		return nil, data.ErrDuplicateUsername
	}
	saved := *user
	saved.ID = bson.NewObjectID()
	f.users[saved.Username] = &saved
	return &saved, nil
}

func (f *fakeUserStore) FindByUsername(ctx context.Context, username string) (*data.User, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	user, ok := f.users[username]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return user, nil
}

func (f *fakeUserStore) FindByCredentials(ctx context.Context, username, password string) (*data.User, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	user, ok := f.users[username]
	if !ok || user.Password != password {
		return nil, mongo.ErrNoDocuments
	}
	return user, nil
}

func (f *fakeUserStore) DeleteByUsername(ctx context.Context, username string) (*data.User, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	user, ok := f.users[username]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	delete(f.users, username)
	return user, nil
}

func (f *fakeUserStore) UpdateByUsername(ctx context.Context, username string, fields data.UserUpdate) (*data.User, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	user, ok := f.users[username]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	if fields.Password != nil {
		user.Password = *fields.Password
	}
	return user, nil
}

func (f *fakeUserStore) SetPassword(ctx context.Context, username, newPassword string) (*data.User, error) {
	return f.UpdateByUsername(ctx, username, data.UserUpdate{Password: &newPassword})
}

func newUsersService(store UserStore) *Users {
	return NewUsers(store, slog.Default())
}

func TestUsersCreateReturnsSafeProjection(t *testing.T) {
	req := require.New(t)
	svc := newUsersService(newFakeUserStore())

	joined := time.Now().UTC()
	safe, err := svc.Create(context.Background(), &data.User{Username: "alice", Password: "p1", DateJoined: joined})
	req.NoError(err)
	req.Equal("alice", safe.Username)
	req.Equal(joined, safe.DateJoined)

	// the projection serializes to exactly username + dateJoined
	raw, err := json.Marshal(safe)
	req.NoError(err)
	var fields map[string]any
	req.NoError(json.Unmarshal(raw, &fields))
	req.Len(fields, 2)
	req.Contains(fields, "username")
	req.Contains(fields, "dateJoined")
	req.NotContains(fields, "password")
}

func TestUsersCreateDuplicateIsSaveFailure(t *testing.T) {
	req := require.New(t)
	store := newFakeUserStore()
	svc := newUsersService(store)

	_, err := svc.Create(context.Background(), &data.User{Username: "alice", Password: "p1", DateJoined: time.Now()})
	req.NoError(err)

	_, err = svc.Create(context.Background(), &data.User{Username: "alice", Password: "p2", DateJoined: time.Now()})
	req.ErrorIs(err, ErrSaveUser)
	req.Equal("Failed to save user", err.Error())
}

func TestUsersGetByUsername(t *testing.T) {
	req := require.New(t)
	store := newFakeUserStore()
	svc := newUsersService(store)

	_, err := svc.Create(context.Background(), &data.User{Username: "alice", Password: "p1", DateJoined: time.Now()})
	req.NoError(err)

	safe, err := svc.GetByUsername(context.Background(), "alice")
	req.NoError(err)
	req.Equal("alice", safe.Username)

	_, err = svc.GetByUsername(context.Background(), "nobody")
	req.ErrorIs(err, ErrUserNotFound)

	store.failWith = errors.New("socket timeout")
	_, err = svc.GetByUsername(context.Background(), "alice")
	req.ErrorIs(err, ErrFetchUser)
}

func TestUsersLoginSameErrorForUnknownUserAndWrongPassword(t *testing.T) {
	req := require.New(t)
	store := newFakeUserStore()
	svc := newUsersService(store)

	_, err := svc.Create(context.Background(), &data.User{Username: "alice", Password: "p1", DateJoined: time.Now()})
	req.NoError(err)

	safe, err := svc.Login(context.Background(), "alice", "p1")
	req.NoError(err)
	req.Equal("alice", safe.Username)

	_, wrongPw := svc.Login(context.Background(), "alice", "wrong")
	_, unknown := svc.Login(context.Background(), "nobody", "p1")
	req.ErrorIs(wrongPw, ErrInvalidCredentials)
	req.ErrorIs(unknown, ErrInvalidCredentials)
	// identical message in both cases so nothing leaks
	req.Equal(wrongPw.Error(), unknown.Error())
	req.Equal("Invalid username or password", wrongPw.Error())
}

func TestUsersLoginBackendFailure(t *testing.T) {
	req := require.New(t)
	store := newFakeUserStore()
	store.failWith = errors.New("down")
	svc := newUsersService(store)

	_, err := svc.Login(context.Background(), "alice", "p1")
	req.ErrorIs(err, ErrLoginFailed)
}

func TestUsersDeleteByUsername(t *testing.T) {
	req := require.New(t)
	store := newFakeUserStore()
	svc := newUsersService(store)

	_, err := svc.Create(context.Background(), &data.User{Username: "alice", Password: "p1", DateJoined: time.Now()})
	req.NoError(err)

	deleted, err := svc.DeleteByUsername(context.Background(), "alice")
	req.NoError(err)
	req.Equal("alice", deleted.Username)

	// already gone
	_, err = svc.DeleteByUsername(context.Background(), "alice")
	req.ErrorIs(err, ErrUserNotFound)
}

func TestUsersUpdateReturnsPostUpdateRecord(t *testing.T) {
	req := require.New(t)
	store := newFakeUserStore()
	svc := newUsersService(store)

	joined := time.Now().UTC()
	_, err := svc.Create(context.Background(), &data.User{Username: "alice", Password: "old", DateJoined: joined})
	req.NoError(err)

	newPw := "new"
	safe, err := svc.Update(context.Background(), "alice", data.UserUpdate{Password: &newPw})
	req.NoError(err)
	req.Equal("alice", safe.Username)
	req.Equal(joined, safe.DateJoined)
	req.Equal("new", store.users["alice"].Password)

	_, err = svc.Update(context.Background(), "nobody", data.UserUpdate{Password: &newPw})
	req.ErrorIs(err, ErrUserNotFound)
}

func TestUsersResetPassword(t *testing.T) {
	req := require.New(t)
	store := newFakeUserStore()
	svc := newUsersService(store)

	_, err := svc.Create(context.Background(), &data.User{Username: "alice", Password: "old", DateJoined: time.Now()})
	req.NoError(err)

	safe, err := svc.ResetPassword(context.Background(), "alice", "fresh")
	req.NoError(err)
	req.Equal("alice", safe.Username)
	req.Equal("fresh", store.users["alice"].Password)

	_, err = svc.ResetPassword(context.Background(), "nobody", "fresh")
	req.ErrorIs(err, ErrUserNotFound)

	store.failWith = errors.New("down")
	_, err = svc.ResetPassword(context.Background(), "alice", "fresh")
	req.ErrorIs(err, ErrResetPassword)
}
