package data

import (
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// ErrInvalidMessage is returned by Message.Validate when a required field is
// empty after trimming.
var ErrInvalidMessage = errors.New("message requires non-empty from and text")

// Message maps to the messages collection (sender, body, send time).
type Message struct {
	ID     bson.ObjectID `bson:"_id,omitempty" json:"id"`
	From   string        `bson:"from" json:"from"`
	Text   string        `bson:"text" json:"text"`
	SentAt time.Time     `bson:"sent_at" json:"sentAt"`
}

// Validate checks the record-level invariant: from and text must both be
// non-empty once surrounding whitespace is stripped. A whitespace-only value
// counts as empty.
func (m *Message) Validate() error {
	if strings.TrimSpace(m.From) == "" || strings.TrimSpace(m.Text) == "" {
		return ErrInvalidMessage
	}
	return nil
}

// User maps to the users collection. Username is the natural key; a unique
// index enforces uniqueness, so a duplicate surfaces as an insert error.
// The password is stored as given and matched by equality at login.
type User struct {
	ID         bson.ObjectID `bson:"_id,omitempty" json:"-"`
	Username   string        `bson:"username" json:"username"`
	Password   string        `bson:"password" json:"-"`
	DateJoined time.Time     `bson:"date_joined" json:"dateJoined"`
}

// SafeUser is the only user shape allowed past the service boundary:
// username and join date, never the password.
type SafeUser struct {
	Username   string    `json:"username"`
	DateJoined time.Time `json:"dateJoined"`
}

// Safe returns the safe projection of the user.
func (u *User) Safe() *SafeUser {
	return &SafeUser{Username: u.Username, DateJoined: u.DateJoined}
}

// UserUpdate carries the mutable fields of a partial update. Username is the
// key and DateJoined never changes after signup, so neither appears here.
type UserUpdate struct {
	Password *string
}
