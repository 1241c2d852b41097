// Package hub tracks live WebSocket connections and fans broadcast events
// out to all of them.  The registry is an explicit object wired into the
// router at startup, never a package-level singleton, so tests construct
// isolated instances.  Delivery is best-effort: a slow or closing
// connection is dropped, it never blocks the caller of Broadcast or the
// delivery to other connections.
package hub

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/brotherhood/platform/internal/identity"
)

// Event is the envelope for every message sent to clients.
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// Hub maintains the set of active clients and broadcasts events to them.
// Connection state per client is CONNECTED (unauthenticated) until a valid
// auth handshake arrives, then AUTHENTICATED; removal from the clients map
// on disconnect is terminal.  Broadcasts go to every registered connection
// regardless of authentication state.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte

	// verifier validates handshake tokens.  Nil selects the degraded
	// trusted-identity mode in which the handshake's claimed identity is
	// accepted as-is.
	verifier identity.TokenVerifier

	mu sync.Mutex
}

// New returns a hub ready for Run.  Pass a nil verifier only when the
// server as a whole runs in trusted-header mode.
func New(verifier identity.TokenVerifier) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 64),
		verifier:   verifier,
	}
}

// Run processes register/unregister/broadcast events until the process
// exits.  Call it once, in its own goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Client can't keep up; drop it rather than stall
					// the other recipients.
					close(client.send)
					delete(h.clients, client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Broadcast serializes the event once and queues it for delivery to every
// current connection.  Serialization failures are logged and swallowed;
// nothing here ever reaches the triggering request's response.
func (h *Hub) Broadcast(eventType string, payload interface{}) {
	raw, err := json.Marshal(Event{Type: eventType, Payload: payload})
	if err != nil {
		log.Printf("hub: marshal %s event failed: %v", eventType, err)
		return
	}
	h.broadcast <- raw
}

// ClientCount returns the number of registered connections.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}
