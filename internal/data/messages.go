// Package data provides the record types and MongoDB stores.
package data

import (
	"context"
	"strings"

	"github.com/chatwire/chatwire/internal/normalize"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// MessagesStore performs message database operations.
type MessagesStore struct {
	// coll is a reference to the "messages" collection in MongoDB.
	// Set via NewMessagesStore() and used in all methods below.
	coll *mongo.Collection
}

// NewMessagesStore returns a MessagesStore using the provided collection.
func NewMessagesStore(coll *mongo.Collection) *MessagesStore {
	return &MessagesStore{coll: coll}
}

// Insert persists a message document and returns the saved record with its
// backend-assigned id. The caller stamps SentAt before calling.
func (m *MessagesStore) Insert(ctx context.Context, msg *Message) (*Message, error) {
	// Build the stored document; from is normalized the same way usernames
	// are on the users collection, text keeps its inner whitespace.
	doc := &Message{
		From:   normalize.Username(msg.From),
		Text:   strings.TrimSpace(msg.Text),
		SentAt: msg.SentAt,
	}

	// InsertOne adds the document to the messages collection and returns
	// the result with InsertedID on success.
	result, err := m.coll.InsertOne(ctx, doc)
	if err != nil {
		return nil, err // connection, write concern, validation, etc.
	}

	// MongoDB auto-generates the _id field; extract it and set on the record
	// so the handler can return it to the client.
	doc.ID = result.InsertedID.(bson.ObjectID)

	return doc, nil
}

// ListBySentAt returns every persisted message ordered by sent_at ascending.
// Documents with equal timestamps are left in the backend's natural order,
// which preserves insertion order; no secondary sort key is imposed.
func (m *MessagesStore) ListBySentAt(ctx context.Context) ([]Message, error) {
	// 1 = ascending order (oldest first)
	opts := options.Find().SetSort(bson.D{{Key: "sent_at", Value: 1}})

	// Empty filter: the stream is global, every message is listed.
	cursor, err := m.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var messages []Message
	if err = cursor.All(ctx, &messages); err != nil {
		return nil, err
	}

	return messages, nil
}
