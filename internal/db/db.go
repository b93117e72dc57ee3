// Package db manages MongoDB connections and collections.
package db

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

// Client wraps mongo.Client and exposes the collections this service uses.
type Client struct {
	// client is the underlying MongoDB connection (thread-safe, reusable)
	client *mongo.Client

	// db is the database holding the "users" and "messages" collections
	db *mongo.Database
}

// New connects to MongoDB, verifies the connection with a ping and returns
// a Client bound to the named database.
func New(ctx context.Context, mongoURI, database string) (*Client, error) {
	// SetConnectTimeout: fail fast if MongoDB is unreachable
	opts := options.Client().
		ApplyURI(mongoURI).
		SetConnectTimeout(10 * time.Second)

	client, err := mongo.Connect(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	// Connect does not dial eagerly; ping with a bounded context to verify
	// the server is actually reachable.
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return &Client{
		client: client,
		db:     client.Database(database),
	}, nil
}

// UsersCollection returns the users collection.
func (c *Client) UsersCollection() *mongo.Collection {
	// Created by MongoDB on first write
	return c.db.Collection("users")
}

// MessagesCollection returns the messages collection.
func (c *Client) MessagesCollection() *mongo.Collection {
	return c.db.Collection("messages")
}

// Close disconnects from MongoDB.
func (c *Client) Close(ctx context.Context) error {
	return c.client.Disconnect(ctx)
}

// CreateIndexes creates the indexes the stores rely on.
func (c *Client) CreateIndexes(ctx context.Context) error {
	// ===== USERS COLLECTION INDEX =====
	// Unique index on username: the natural key. Signup with a taken name
	// fails at insert with a duplicate-key error instead of writing a
	// second document.
	usersIndexModel := mongo.IndexModel{
		// 1 = ascending order
		Keys:    map[string]int{"username": 1},
		Options: options.Index().SetUnique(true),
	}

	_, err := c.UsersCollection().Indexes().CreateOne(ctx, usersIndexModel)
	if err != nil {
		return fmt.Errorf("failed to create users index: %w", err)
	}

	// ===== MESSAGES COLLECTION INDEX =====
	// Ascending sent_at index backing the global listing sort.
	messagesIndexModel := mongo.IndexModel{
		Keys: map[string]int{"sent_at": 1},
	}

	_, err = c.MessagesCollection().Indexes().CreateOne(ctx, messagesIndexModel)
	if err != nil {
		return fmt.Errorf("failed to create messages index: %w", err)
	}

	return nil
}
