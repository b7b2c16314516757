package ws

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"journeylens/internal/service"
)

type wsEnv struct {
	hub    *Hub
	auth   *service.AuthService
	server *httptest.Server
}

func newWSEnv(t *testing.T) *wsEnv {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	hub := NewHub(logger)
	auth := service.NewAuthService("secret")
	server := httptest.NewServer(http.HandlerFunc(NewHandler(hub, auth, nil, logger).Insights))
	t.Cleanup(func() {
		server.Close()
		hub.Close()
	})
	return &wsEnv{hub: hub, auth: auth, server: server}
}

func (e *wsEnv) url(query string) string {
	return "ws" + strings.TrimPrefix(e.server.URL, "http") + "/?" + query
}

// dial connects and consumes the greeting, after which the subscriber is
// registered with the hub.
func (e *wsEnv) dial(t *testing.T, query string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(e.url(query), nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	msg := readMessage(t, conn)
	require.Equal(t, MsgConnected, msg.Type)
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var msg Message
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestHub_RoutesByAccount(t *testing.T) {
	e := newWSEnv(t)
	acme := e.dial(t, "token=secret&account_id=1")
	everyone := e.dial(t, "token=secret")

	e.hub.BroadcastToAccount(2, service.EventInsightCreated, map[string]int64{"account_id": 2})
	e.hub.BroadcastToAccount(1, service.EventInsightCreated, map[string]int64{"account_id": 1})

	msg := readMessage(t, acme)
	assert.Equal(t, MsgInsightCreated, msg.Type)
	assert.JSONEq(t, `{"account_id":1}`, string(msg.Payload))

	first := readMessage(t, everyone)
	second := readMessage(t, everyone)
	assert.JSONEq(t, `{"account_id":2}`, string(first.Payload))
	assert.JSONEq(t, `{"account_id":1}`, string(second.Payload))
}

func TestHandler_Ticket(t *testing.T) {
	e := newWSEnv(t)
	ticket, err := e.auth.IssueStreamTicket(7)
	require.NoError(t, err)

	conn := e.dial(t, "ticket="+ticket.Ticket)
	e.hub.BroadcastToAccount(7, service.EventInsightCreated, map[string]string{"ok": "yes"})
	msg := readMessage(t, conn)
	assert.JSONEq(t, `{"ok":"yes"}`, string(msg.Payload))

	_, resp, err := websocket.DefaultDialer.Dial(e.url("ticket="+ticket.Ticket+"&account_id=8"), nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestHandler_RejectsUnauthenticated(t *testing.T) {
	e := newWSEnv(t)

	tests := []struct {
		name   string
		query  string
		status int
	}{
		{"no credentials", "account_id=1", http.StatusUnauthorized},
		{"bad token", "token=nope", http.StatusUnauthorized},
		{"bad ticket", "ticket=nope", http.StatusUnauthorized},
		{"bad account", "token=secret&account_id=abc", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, resp, err := websocket.DefaultDialer.Dial(e.url(tt.query), nil)
			require.Error(t, err)
			require.NotNil(t, resp)
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}

func TestHub_CloseDisconnectsSubscribers(t *testing.T) {
	e := newWSEnv(t)
	conn := e.dial(t, "token=secret")

	e.hub.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseNoStatusReceived), "got %v", err)

	// Broadcasting after close must not block.
	e.hub.BroadcastToAccount(1, service.EventInsightCreated, nil)
}

func TestEncode(t *testing.T) {
	data, err := encode(MsgInsightCreated, map[string]int{"n": 1})
	require.NoError(t, err)

	var msg Message
	require.NoError(t, json.Unmarshal(data, &msg))
	assert.Equal(t, MsgInsightCreated, msg.Type)
	assert.JSONEq(t, `{"n":1}`, string(msg.Payload))
}
