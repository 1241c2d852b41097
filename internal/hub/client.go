package hub

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The browser client is served from a different origin than the API.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Client is a middleman between one websocket connection and the hub.
type Client struct {
	hub  *Hub
	conn *websocket.Conn

	// Buffered channel of outbound messages.
	send chan []byte

	// Identity associated by the auth handshake; empty while the
	// connection is unauthenticated.
	userID string
}

// inboundMessage is the only message shape the server reads from clients.
// Token carries a verifiable identity-provider token; Identity is the
// claimed user id accepted only in the degraded no-verifier mode.
type inboundMessage struct {
	Type     string `json:"type"`
	Token    string `json:"token,omitempty"`
	Identity string `json:"identity,omitempty"`
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error { c.conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })
	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("hub: read error: %v", err)
			}
			break
		}

		var msg inboundMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			log.Printf("hub: invalid client message: %v", err)
			continue
		}
		if msg.Type == "auth" {
			c.handleAuth(msg)
		}
		// Anything else from the client is ignored; chat messages enter
		// through the HTTP API, not the socket.
	}
}

// handleAuth associates the connection with an identity.  Success is
// acknowledged to this connection only; the hub's broadcast path is not
// involved.
func (c *Client) handleAuth(msg inboundMessage) {
	if c.hub.verifier != nil {
		id, err := c.hub.verifier.Verify(msg.Token)
		if err != nil {
			c.sendEvent("auth_error", echo.Map{"error": "invalid token"})
			return
		}
		c.userID = id.Subject
	} else {
		if msg.Identity == "" {
			c.sendEvent("auth_error", echo.Map{"error": "identity required"})
			return
		}
		c.userID = msg.Identity
	}
	c.sendEvent("auth_ok", echo.Map{"user_id": c.userID})
}

// sendEvent queues an event for this connection only.  A full send buffer
// means the connection is on its way out; the event is dropped.
func (c *Client) sendEvent(eventType string, payload interface{}) {
	raw, err := json.Marshal(Event{Type: eventType, Payload: payload})
	if err != nil {
		log.Printf("hub: marshal %s event failed: %v", eventType, err)
		return
	}
	select {
	case c.send <- raw:
	default:
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// ServeWS returns the Echo handler that upgrades requests on the WebSocket
// path and registers the resulting connection with the hub.
func ServeWS(h *Hub) echo.HandlerFunc {
	return func(c echo.Context) error {
		conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
		if err != nil {
			log.Printf("hub: upgrade failed: %v", err)
			return nil
		}
		client := &Client{hub: h, conn: conn, send: make(chan []byte, 256)}
		h.register <- client

		go client.writePump()
		go client.readPump()
		return nil
	}
}
