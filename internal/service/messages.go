// Package service implements the tagged-error service layer between the
// HTTP handlers and the stores. Every operation returns either its success
// payload or one of the sentinel errors below; raw backend errors never
// cross this boundary, they are logged here and replaced with the fixed
// user-facing message.
package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/chatwire/chatwire/internal/data"
)

// ErrSaveMessage is the single failure message for message persistence;
// the underlying cause is only logged.
var ErrSaveMessage = errors.New("Failed to save message")

// MessageStore is the slice of the messages store this service needs.
type MessageStore interface {
	Insert(ctx context.Context, msg *data.Message) (*data.Message, error)
	ListBySentAt(ctx context.Context) ([]data.Message, error)
}

// Messages exposes the message service operations.
type Messages struct {
	store MessageStore
	log   *slog.Logger
}

// NewMessages returns a Messages service over the given store.
func NewMessages(store MessageStore, log *slog.Logger) *Messages {
	return &Messages{store: store, log: log}
}

// Save persists the message and returns the stored record with its assigned
// id. Validation happened at the controller; this layer only persists.
func (s *Messages) Save(ctx context.Context, msg *data.Message) (*data.Message, error) {
	saved, err := s.store.Insert(ctx, msg)
	if err != nil {
		s.log.Error("insert message failed", "from", msg.From, "err", err)
		return nil, ErrSaveMessage
	}
	return saved, nil
}

// List returns all messages ordered by sentAt ascending, ties stable by
// insertion order. A backend failure is logged and swallowed: the caller
// gets an empty slice and cannot distinguish it from an empty stream. The
// bare slice return (no error) is deliberate; Save keeps the error path.
func (s *Messages) List(ctx context.Context) []data.Message {
	messages, err := s.store.ListBySentAt(ctx)
	if err != nil {
		s.log.Error("list messages failed", "err", err)
		return []data.Message{}
	}
	if messages == nil {
		// empty stream decodes to a nil slice; serialize as [] not null
		return []data.Message{}
	}
	return messages
}
