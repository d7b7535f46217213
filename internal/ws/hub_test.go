package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T, userID uuid.UUID) (*Hub, *websocket.Conn) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	hub := NewHub(ctx)
	go hub.Run()

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		client := NewClient(conn, hub, userID)
		hub.Register(client)
		client.Run(r.Context())
	}))
	t.Cleanup(srv.Close)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	require.Eventually(t, func() bool { return hub.ConnectedClients(userID) == 1 }, time.Second, 10*time.Millisecond)
	return hub, conn
}

func TestHub_NotifyDeliversEnvelope(t *testing.T) {
	userID := uuid.New()
	hub, conn := startHub(t, userID)

	hub.Notify(userID, "escrow_paid", map[string]string{"contract_id": "c-1"})

	_ = conn.SetReadDeadline(time.Now().Add(time.Second))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)

	var got struct {
		Type string            `json:"type"`
		Data map[string]string `json:"data"`
	}
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, "escrow_paid", got.Type)
	assert.Equal(t, "c-1", got.Data["contract_id"])
}

func TestHub_NotifyOtherUserIsNotDelivered(t *testing.T) {
	userID := uuid.New()
	hub, conn := startHub(t, userID)

	hub.Notify(uuid.New(), "escrow_paid", nil)

	_ = conn.SetReadDeadline(time.Now().Add(150 * time.Millisecond))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err)
}

func TestHub_UnregisterOnDisconnect(t *testing.T) {
	userID := uuid.New()
	hub, conn := startHub(t, userID)

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return hub.ConnectedClients(userID) == 0 }, time.Second, 10*time.Millisecond)
}
