package data

import (
	"context"
	"testing"
	"time"
)

func TestMessagesInsertAndList(t *testing.T) {
	c := setupDB(t)
	defer func() { _ = c.Close(context.Background()) }()

	msgs := NewMessagesStore(c.MessagesCollection())
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Millisecond)

	// save out of chronological order to exercise the sort
	second, err := msgs.Insert(ctx, &Message{From: "User2", Text: "Hi", SentAt: now.Add(time.Second)})
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	first, err := msgs.Insert(ctx, &Message{From: "User1", Text: "Hello", SentAt: now})
	if err != nil {
		t.Fatalf("Insert 2 failed: %v", err)
	}
	if first.ID.IsZero() || second.ID.IsZero() {
		t.Fatalf("expected backend-assigned ids")
	}

	list, err := msgs.ListBySentAt(ctx)
	if err != nil {
		t.Fatalf("ListBySentAt failed: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(list))
	}
	if list[0].Text != "Hello" || list[1].Text != "Hi" {
		t.Fatalf("wrong order: got [%s, %s]", list[0].Text, list[1].Text)
	}
}

func TestMessagesEqualTimestampsKeepInsertionOrder(t *testing.T) {
	c := setupDB(t)
	defer func() { _ = c.Close(context.Background()) }()

	msgs := NewMessagesStore(c.MessagesCollection())
	ctx := context.Background()

	at := time.Now().UTC().Truncate(time.Millisecond)
	texts := []string{"one", "two", "three"}
	for _, txt := range texts {
		if _, err := msgs.Insert(ctx, &Message{From: "alice", Text: txt, SentAt: at}); err != nil {
			t.Fatalf("Insert %q failed: %v", txt, err)
		}
	}

	list, err := msgs.ListBySentAt(ctx)
	if err != nil {
		t.Fatalf("ListBySentAt failed: %v", err)
	}
	if len(list) != len(texts) {
		t.Fatalf("expected %d messages, got %d", len(texts), len(list))
	}
	for i, txt := range texts {
		if list[i].Text != txt {
			t.Fatalf("ties not stable by insertion order: position %d = %q, want %q", i, list[i].Text, txt)
		}
	}
}

func TestMessagesInsertNormalizesFields(t *testing.T) {
	c := setupDB(t)
	defer func() { _ = c.Close(context.Background()) }()

	msgs := NewMessagesStore(c.MessagesCollection())
	ctx := context.Background()

	saved, err := msgs.Insert(ctx, &Message{From: "  alice ", Text: "  hello there  ", SentAt: time.Now().UTC()})
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if saved.From != "alice" {
		t.Fatalf("from not trimmed: %q", saved.From)
	}
	// inner whitespace is preserved, only the surrounding run is trimmed
	if saved.Text != "hello there" {
		t.Fatalf("text not trimmed: %q", saved.Text)
	}
}
