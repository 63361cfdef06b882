// Package ws provides a lightweight WebSocket pub/sub hub.
// Components publish JSON events through the hub, and every connected client
// receives the ones it subscribed to. Clients pick event types with the
// "types" query parameter (e.g. /ws?types=parsed,log); no parameter means all.
package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

type client struct {
	conn  *websocket.Conn
	types map[string]bool // empty = everything
}

func (c *client) wants(eventType string) bool {
	return len(c.types) == 0 || c.types[eventType]
}

type message struct {
	eventType string
	body      []byte
}

// Hub manages WebSocket client connections and fans out published messages
// to them. It is safe for concurrent use; register, unregister, and publish
// all go through channels.
type Hub struct {
	clients    map[*websocket.Conn]*client
	register   chan *client
	unregister chan *websocket.Conn
	broadcast  chan message
	done       chan struct{} // closed when Run returns
	upgrader   websocket.Upgrader

	connected atomic.Int64
	dropped   atomic.Int64
}

// NewHub allocates a hub with buffered channels.
// Call Run in a goroutine to start the event loop.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*websocket.Conn]*client),
		register:   make(chan *client, 16),
		unregister: make(chan *websocket.Conn, 16),
		broadcast:  make(chan message, 256),
		done:       make(chan struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// Run processes registrations, unregistrations, broadcasts, and keepalive
// pings in a single select loop. It closes all clients when ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	ping := time.NewTicker(20 * time.Second)
	defer ping.Stop()

	for {
		select {
		case <-ctx.Done():
			for conn := range h.clients {
				_ = conn.Close()
			}
			h.connected.Store(0)
			close(h.done)
			return

		case c := <-h.register:
			h.clients[c.conn] = c
			h.connected.Store(int64(len(h.clients)))

		case conn := <-h.unregister:
			h.drop(conn)

		case msg := <-h.broadcast:
			for conn, c := range h.clients {
				if !c.wants(msg.eventType) {
					continue
				}
				_ = conn.SetWriteDeadline(time.Now().Add(3 * time.Second))
				if err := conn.WriteMessage(websocket.TextMessage, msg.body); err != nil {
					h.drop(conn)
				}
			}

		case <-ping.C:
			for conn := range h.clients {
				_ = conn.SetWriteDeadline(time.Now().Add(2 * time.Second))
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					h.drop(conn)
				}
			}
		}
	}
}

func (h *Hub) drop(conn *websocket.Conn) {
	if _, ok := h.clients[conn]; !ok {
		return
	}
	delete(h.clients, conn)
	_ = conn.Close()
	h.connected.Store(int64(len(h.clients)))
}

// Handler returns an http.Handler that upgrades incoming requests to
// WebSocket connections and registers them with the hub.
func (h *Hub) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := h.upgrader.Upgrade(w, r, nil)
		if err != nil {
			// Upgrade has already written an error response.
			return
		}

		c := &client{conn: conn, types: parseTypes(r.URL.Query().Get("types"))}
		select {
		case h.register <- c:
		case <-h.done:
			_ = conn.Close()
			return
		}

		go func() {
			defer func() {
				select {
				case h.unregister <- conn:
				case <-h.done:
					_ = conn.Close()
				}
			}()
			_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
			conn.SetPongHandler(func(string) error {
				_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
				return nil
			})

			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()
	})
}

func parseTypes(raw string) map[string]bool {
	if raw == "" {
		return nil
	}
	set := make(map[string]bool)
	for _, t := range strings.Split(raw, ",") {
		if t = strings.TrimSpace(t); t != "" {
			set[t] = true
		}
	}
	return set
}

// BroadcastJSON marshals v to JSON and queues it for delivery. The event type
// used for client filtering is read from the payload's "type" key. If the
// broadcast channel is full the message is dropped to avoid blocking the
// caller.
func (h *Hub) BroadcastJSON(v any) {
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	var envelope struct {
		Type string `json:"type"`
	}
	_ = json.Unmarshal(b, &envelope)

	select {
	case h.broadcast <- message{eventType: envelope.Type, body: b}:
	default:
		h.dropped.Add(1)
	}
}

// Clients returns the number of currently registered connections.
func (h *Hub) Clients() int {
	return int(h.connected.Load())
}

// Dropped returns how many messages were discarded because the queue was full.
func (h *Hub) Dropped() int64 {
	return h.dropped.Load()
}
