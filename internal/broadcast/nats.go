package broadcast

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
)

// NATS publishes events over a core NATS connection. Core pub/sub (not
// JetStream) matches the channel's contract: at-most-once delivery to the
// subscribers connected at publish time, nothing persisted, no replay for
// late joiners.
type NATS struct {
	nc *nats.Conn
}

// Connect dials the NATS server and returns a ready publisher.
func Connect(url string) (*NATS, error) {
	nc, err := nats.Connect(url, nats.Name("chatwire-api"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return &NATS{nc: nc}, nil
}

// Publish marshals the payload and emits it on the event's subject.
func (b *NATS) Publish(ctx context.Context, event string, payload any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s payload: %w", event, err)
	}

	if err := b.nc.Publish(Subject(event), raw); err != nil {
		return fmt.Errorf("failed to publish %s: %w", event, err)
	}
	return nil
}

// Subscribe delivers every event under the subject prefix to the handler,
// which receives the event name and the raw payload. Handlers run on the
// connection's delivery goroutine, one at a time per subscription.
func (b *NATS) Subscribe(handler func(event string, payload []byte)) (*nats.Subscription, error) {
	subject := SubjectPrefix + ".>"
	sub, err := b.nc.Subscribe(subject, func(m *nats.Msg) {
		handler(EventFromSubject(m.Subject), m.Data)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to %s: %w", subject, err)
	}
	return sub, nil
}

// Close closes the NATS connection.
func (b *NATS) Close() {
	if b.nc != nil {
		b.nc.Close()
	}
}
