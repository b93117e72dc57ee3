package data

import (
	"context"
	"errors"

	"github.com/chatwire/chatwire/internal/normalize"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// ErrDuplicateUsername is returned by Insert when the username is taken.
var ErrDuplicateUsername = errors.New("username already exists")

// UsersStore performs user DB operations.
type UsersStore struct {
	// coll is a reference to the "users" collection in MongoDB.
	// Set via NewUsersStore() and used in all methods below.
	coll *mongo.Collection
}

// NewUsersStore returns a UsersStore using the provided collection.
func NewUsersStore(coll *mongo.Collection) *UsersStore {
	return &UsersStore{coll: coll}
}

// Insert persists a new user document. The caller stamps DateJoined.
func (u *UsersStore) Insert(ctx context.Context, user *User) (*User, error) {
	doc := &User{
		// Usernames are stored in normalized (trimmed) form so lookups by
		// path parameter match what signup stored.
		Username:   normalize.Username(user.Username),
		Password:   user.Password,
		DateJoined: user.DateJoined,
	}

	result, err := u.coll.InsertOne(ctx, doc)
	if err != nil {
		// The unique index on username turns a taken name into a
		// duplicate-key error rather than a second document.
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrDuplicateUsername
		}
		return nil, err
	}

	// Extract MongoDB's auto-generated _id and populate it in the struct.
	doc.ID = result.InsertedID.(bson.ObjectID)

	return doc, nil
}

// FindByUsername finds a user by exact username match. A missing user is
// reported as mongo.ErrNoDocuments for the caller to classify.
func (u *UsersStore) FindByUsername(ctx context.Context, username string) (*User, error) {
	var user User
	err := u.coll.FindOne(ctx, bson.M{"username": normalize.Username(username)}).Decode(&user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByCredentials finds the user matching both username and password in a
// single filter, so a wrong password and an unknown username are the same
// mongo.ErrNoDocuments outcome. Passwords are compared as stored.
func (u *UsersStore) FindByCredentials(ctx context.Context, username, password string) (*User, error) {
	filter := bson.M{
		"username": normalize.Username(username),
		"password": password,
	}

	var user User
	if err := u.coll.FindOne(ctx, filter).Decode(&user); err != nil {
		return nil, err
	}
	return &user, nil
}

// DeleteByUsername removes the matching user in one atomic find-and-delete
// and returns the deleted record. Concurrent deletes of the same username
// serialize at the backend; only one caller gets the document back.
func (u *UsersStore) DeleteByUsername(ctx context.Context, username string) (*User, error) {
	var user User
	err := u.coll.FindOneAndDelete(ctx, bson.M{"username": normalize.Username(username)}).Decode(&user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateByUsername applies the given partial update in one atomic
// find-and-update and returns the post-update record.
func (u *UsersStore) UpdateByUsername(ctx context.Context, username string, fields UserUpdate) (*User, error) {
	set := bson.M{}
	if fields.Password != nil {
		set["password"] = *fields.Password
	}
	// An empty $set is rejected by the server; with nothing to change the
	// operation degrades to a plain lookup.
	if len(set) == 0 {
		return u.FindByUsername(ctx, username)
	}

	// ReturnDocument(After) makes FindOneAndUpdate decode the record as it
	// stands after the update, not the pre-image.
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var user User
	err := u.coll.FindOneAndUpdate(
		ctx,
		bson.M{"username": normalize.Username(username)},
		bson.M{"$set": set},
		opts,
	).Decode(&user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// SetPassword replaces only the password field of the matching user and
// returns the post-update record.
func (u *UsersStore) SetPassword(ctx context.Context, username, newPassword string) (*User, error) {
	return u.UpdateByUsername(ctx, username, UserUpdate{Password: &newPassword})
}
