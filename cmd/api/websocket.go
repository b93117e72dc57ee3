package main

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/chatwire/chatwire/internal/broadcast"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// wsFrame is the envelope listeners receive: the event name plus its
// payload as published on the broadcast channel.
type wsFrame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// registerListenerRoute mounts the websocket upgrade middleware and the
// listener endpoint.
func registerListenerRoute(app *fiber.App, hub *Hub, log *slog.Logger) {
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", websocket.New(func(conn *websocket.Conn) {
		handleListener(conn, hub, log)
	}))
}

// handleListener manages the lifecycle of one listener connection: register
// in the hub, pump frames until the peer goes away, then clean up.
func handleListener(conn *websocket.Conn, hub *Hub, log *slog.Logger) {
	id, frames := hub.Register()
	done := make(chan struct{})
	log.Debug("listener connected", "conn", id)

	defer func() {
		hub.Unregister(id)
		_ = conn.Close()
		log.Debug("listener disconnected", "conn", id)
	}()

	go writePump(conn, frames, done)

	// Listeners are receive-only. The read loop consumes control frames,
	// refreshes the deadline on pongs and detects the close.
	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			close(done) // stop the write pump
			return
		}
	}
}

// writePump is the single writer for a connection: broadcast frames from
// the hub plus periodic pings. Exits on write error or the done signal.
func writePump(conn *websocket.Conn, frames <-chan []byte, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case frame := <-frames:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}

// bridgeEvents forwards every event published on the broadcast channel to
// the hub, wrapped in the listener frame envelope.
func bridgeEvents(b *broadcast.NATS, hub *Hub, log *slog.Logger) (*nats.Subscription, error) {
	return b.Subscribe(func(event string, payload []byte) {
		frame, err := json.Marshal(wsFrame{Event: event, Data: payload})
		if err != nil {
			log.Error("marshal listener frame failed", "event", event, "err", err)
			return
		}
		hub.Broadcast(frame)
	})
}
