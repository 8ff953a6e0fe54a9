package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(hub *WebSocketHub, buffer int) *WebSocketClient {
	return &WebSocketClient{hub: hub, send: make(chan []byte, buffer)}
}

func receive(t *testing.T, client *WebSocketClient) WebSocketMessage {
	t.Helper()
	select {
	case raw := <-client.send:
		var msg WebSocketMessage
		require.NoError(t, json.Unmarshal(raw, &msg))
		return msg
	case <-time.After(time.Second):
		t.Fatal("no message received")
		return WebSocketMessage{}
	}
}

func TestWebSocketHub_Clients(t *testing.T) {
	hub := NewWebSocketHub(nil)
	client := newTestClient(hub, 4)

	hub.addClient(client)
	assert.Equal(t, 1, hub.ClientCount())

	hub.removeClient(client)
	hub.removeClient(client) // second removal is a no-op
	assert.Equal(t, 0, hub.ClientCount())

	_, open := <-client.send
	assert.False(t, open, "removal closes the send channel")

	// Sending to a removed client must not panic.
	hub.broadcast([]byte(`{}`))
	hub.trySend(client, []byte(`{}`))
}

func TestWebSocketHub_PublishReachesEveryClient(t *testing.T) {
	hub := NewWebSocketHub(nil)
	a := newTestClient(hub, 4)
	b := newTestClient(hub, 4)
	hub.addClient(a)
	hub.addClient(b)

	hub.Publish(MessageColorAssigned, ColorAssignedEvent{Identity: "ada@example.com", Color: "#f43d3d"})

	for _, c := range []*WebSocketClient{a, b} {
		msg := receive(t, c)
		assert.Equal(t, MessageColorAssigned, msg.Type)
		data, ok := msg.Data.(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "#f43d3d", data["color"])
	}
}

func TestWebSocketHub_OnFileChange(t *testing.T) {
	hub := NewWebSocketHub(nil)
	client := newTestClient(hub, 4)
	hub.addClient(client)

	hub.OnFileChange(FileChange{
		Type: FileChangeCreated,
		Kind: FileChangeKindMemory,
		ID:   "abc123",
		Path: "memories/abc123.json",
	})

	msg := receive(t, client)
	assert.Equal(t, MessageFileChange, msg.Type)
	data := msg.Data.(map[string]any)
	assert.Equal(t, "memory", data["kind"])
	assert.Equal(t, "abc123", data["id"])
}

func TestWebSocketHub_SlowClientDropped(t *testing.T) {
	hub := NewWebSocketHub(nil)
	client := newTestClient(hub, 1)
	hub.addClient(client)

	client.send <- []byte("pending")
	hub.broadcast([]byte("overflow"))

	assert.Equal(t, 0, hub.ClientCount())
}

func TestWebSocketHub_ServeWS(t *testing.T) {
	hub := NewWebSocketHub(nil)
	srv := httptest.NewServer(http.HandlerFunc(hub.ServeWS))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var welcome WebSocketMessage
	require.NoError(t, conn.ReadJSON(&welcome))
	assert.Equal(t, MessageConnected, welcome.Type)

	hub.Publish(MessageFileChange, FileChange{Type: FileChangeModified, Kind: FileChangeKindContributor, ID: "ada@example.com"})

	var change WebSocketMessage
	require.NoError(t, conn.ReadJSON(&change))
	assert.Equal(t, MessageFileChange, change.Type)
}
