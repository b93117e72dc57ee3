// Package broadcast is the publish side of the real-time fan-out: named
// events pushed to every live subscriber, best-effort, no replay.
package broadcast

import (
	"context"
	"fmt"
	"strings"

	"github.com/chatwire/chatwire/internal/data"
)

// SubjectPrefix roots the subject hierarchy all events are published under.
const SubjectPrefix = "chat"

// EventMessageUpdate is emitted once per successfully saved message.
const EventMessageUpdate = "messageUpdate"

// MessagePayload is the payload carried by a messageUpdate event.
type MessagePayload struct {
	Msg *data.Message `json:"msg"`
}

// Publisher is the injected publish capability handed to the handlers.
// Publish is fire-and-forget: no acknowledgment from subscribers is awaited
// and callers must not assume delivery.
type Publisher interface {
	Publish(ctx context.Context, event string, payload any) error
}

// Subject returns the subject an event is published on.
func Subject(event string) string {
	return fmt.Sprintf("%s.%s", SubjectPrefix, event)
}

// EventFromSubject recovers the event name from a subject produced by
// Subject.
func EventFromSubject(subject string) string {
	return strings.TrimPrefix(subject, SubjectPrefix+".")
}
