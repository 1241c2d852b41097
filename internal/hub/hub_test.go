package hub

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brotherhood/platform/internal/identity"
)

// stubVerifier accepts exactly one token value.
type stubVerifier struct {
	token string
	id    identity.Identity
}

func (s stubVerifier) Verify(raw string) (identity.Identity, error) {
	if raw != s.token {
		return identity.Identity{}, identity.ErrInvalidToken
	}
	return s.id, nil
}

func newTestServer(t *testing.T, verifier identity.TokenVerifier) (*Hub, string) {
	t.Helper()
	h := New(verifier)
	go h.Run()

	e := echo.New()
	e.GET("/ws", ServeWS(h))
	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)

	return h, "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) Event {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)
	var ev Event
	require.NoError(t, json.Unmarshal(raw, &ev))
	return ev
}

func waitForClients(t *testing.T, h *Hub, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return h.ClientCount() == n },
		3*time.Second, 10*time.Millisecond)
}

func TestBroadcastReachesAllConnections(t *testing.T) {
	h, url := newTestServer(t, nil)

	a := dial(t, url)
	b := dial(t, url)
	waitForClients(t, h, 2)

	h.Broadcast("chat_message", echo.Map{"content": "hello"})

	for _, conn := range []*websocket.Conn{a, b} {
		ev := readEvent(t, conn)
		assert.Equal(t, "chat_message", ev.Type)
		payload, ok := ev.Payload.(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, "hello", payload["content"])
	}
}

func TestDisconnectedClientDoesNotBlockOthers(t *testing.T) {
	h, url := newTestServer(t, nil)

	gone := dial(t, url)
	stays := dial(t, url)
	waitForClients(t, h, 2)

	gone.Close()
	waitForClients(t, h, 1)

	h.Broadcast("announcement", echo.Map{"id": float64(1)})
	ev := readEvent(t, stays)
	assert.Equal(t, "announcement", ev.Type)
}

func TestAuthHandshakeVerified(t *testing.T) {
	v := stubVerifier{token: "good-token", id: identity.Identity{Subject: "user-42"}}
	_, url := newTestServer(t, v)

	conn := dial(t, url)
	require.NoError(t, conn.WriteJSON(map[string]string{"type": "auth", "token": "good-token"}))

	ev := readEvent(t, conn)
	assert.Equal(t, "auth_ok", ev.Type)
	payload := ev.Payload.(map[string]interface{})
	assert.Equal(t, "user-42", payload["user_id"])
}

func TestAuthHandshakeRejectsBadToken(t *testing.T) {
	v := stubVerifier{token: "good-token", id: identity.Identity{Subject: "user-42"}}
	h, url := newTestServer(t, v)

	conn := dial(t, url)
	waitForClients(t, h, 1)
	require.NoError(t, conn.WriteJSON(map[string]string{"type": "auth", "token": "forged"}))

	ev := readEvent(t, conn)
	assert.Equal(t, "auth_error", ev.Type)

	// A failed handshake leaves the connection registered; broadcasts are
	// delivered regardless of authentication state.
	assert.Equal(t, 1, h.ClientCount())
	h.Broadcast("feed_post", echo.Map{"id": float64(7)})
	assert.Equal(t, "feed_post", readEvent(t, conn).Type)
}

func TestAuthHandshakeDegradedMode(t *testing.T) {
	_, url := newTestServer(t, nil)

	conn := dial(t, url)
	require.NoError(t, conn.WriteJSON(map[string]string{"type": "auth", "identity": "claimed-id"}))

	ev := readEvent(t, conn)
	assert.Equal(t, "auth_ok", ev.Type)
	payload := ev.Payload.(map[string]interface{})
	assert.Equal(t, "claimed-id", payload["user_id"])
}

func TestAuthHandshakeDegradedRequiresIdentity(t *testing.T) {
	_, url := newTestServer(t, nil)

	conn := dial(t, url)
	require.NoError(t, conn.WriteJSON(map[string]string{"type": "auth"}))

	ev := readEvent(t, conn)
	assert.Equal(t, "auth_error", ev.Type)
}

func TestMalformedClientMessageIsIgnored(t *testing.T) {
	h, url := newTestServer(t, nil)

	conn := dial(t, url)
	waitForClients(t, h, 1)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))

	// The connection survives and still receives broadcasts.
	h.Broadcast("chat_message", echo.Map{"content": "still here"})
	assert.Equal(t, "chat_message", readEvent(t, conn).Type)
}
