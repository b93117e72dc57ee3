package main

import (
	"sync"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

// hubBuffer is the per-listener frame buffer. A listener that falls this
// far behind starts missing frames.
const hubBuffer = 64

// Hub tracks the frame channels of all connected listeners so broadcast
// events can be fanned out to every live websocket. There is a single
// global stream, so the hub is flat: every listener sees every event.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]chan []byte
}

// NewHub creates a new hub instance.
func NewHub() *Hub {
	return &Hub{clients: make(map[string]chan []byte)}
}

// Register adds a listener and returns its connection id together with the
// channel its write pump drains. The id is used to unregister the listener
// when its connection closes.
func (h *Hub) Register() (string, <-chan []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := uuid.NewString()
	ch := make(chan []byte, hubBuffer)
	h.clients[id] = ch
	return id, ch
}

// Unregister removes a previously-registered listener. The channel is left
// open; the write pump exits on its done signal, so an in-flight Broadcast
// can still safely send into the abandoned buffer.
func (h *Hub) Unregister(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, id)
}

// Broadcast delivers the frame to every connected listener. Delivery is
// best-effort: the send is non-blocking, so a listener with a full buffer
// misses the frame instead of stalling the fan-out.
func (h *Hub) Broadcast(frame []byte) {
	h.mu.RLock()
	entries := lo.Entries(h.clients)
	h.mu.RUnlock()

	for _, e := range entries {
		select {
		case e.Value <- frame:
		default:
			// slow listener, frame dropped
		}
	}
}

// Len reports the number of connected listeners.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
