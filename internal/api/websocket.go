package api

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/amterp/memmap/internal/logging"
)

// Message types sent to clients.
const (
	MessageConnected     = "connected"
	MessageFileChange    = "file_change"
	MessageColorAssigned = "color_assigned"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Same policy as Cors
	},
}

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
	sendBuffer = 256
)

// WebSocketHub manages WebSocket connections and broadcasts data changes
// so open maps can refresh their pins.
type WebSocketHub struct {
	mu      sync.RWMutex
	clients map[*WebSocketClient]bool
	logger  logging.Logger
}

// WebSocketClient represents a connected WebSocket client.
type WebSocketClient struct {
	hub  *WebSocketHub
	conn *websocket.Conn
	send chan []byte
}

// WebSocketMessage is the JSON message sent to clients.
type WebSocketMessage struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// NewWebSocketHub creates a new WebSocket hub.
func NewWebSocketHub(logger logging.Logger) *WebSocketHub {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &WebSocketHub{
		clients: make(map[*WebSocketClient]bool),
		logger:  logger,
	}
}

// OnFileChange implements FileWatcherSubscriber.
func (h *WebSocketHub) OnFileChange(change FileChange) {
	h.Publish(MessageFileChange, change)
}

// Publish sends a typed message to every connected client.
func (h *WebSocketHub) Publish(msgType string, payload any) {
	data, err := json.Marshal(WebSocketMessage{Type: msgType, Data: payload})
	if err != nil {
		h.logger.Warn("failed to marshal websocket message", "type", msgType, "error", err)
		return
	}
	h.broadcast(data)
}

// broadcast sends a message to all connected clients.
func (h *WebSocketHub) broadcast(data []byte) {
	h.mu.RLock()
	clients := make([]*WebSocketClient, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	h.mu.RUnlock()

	for _, client := range clients {
		h.trySend(client, data)
	}
}

// trySend queues data for a client. A client whose buffer is full is
// dropped. The channel may already be closed by removeClient.
func (h *WebSocketHub) trySend(client *WebSocketClient, data []byte) {
	defer func() { _ = recover() }()

	select {
	case client.send <- data:
	default:
		h.removeClient(client)
	}
}

func (h *WebSocketHub) addClient(client *WebSocketClient) {
	h.mu.Lock()
	h.clients[client] = true
	h.mu.Unlock()
}

func (h *WebSocketHub) removeClient(client *WebSocketClient) {
	h.mu.Lock()
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.send)
	}
	h.mu.Unlock()
}

// ServeWS handles WebSocket connection requests.
func (h *WebSocketHub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	client := &WebSocketClient{
		hub:  h,
		conn: conn,
		send: make(chan []byte, sendBuffer),
	}

	h.addClient(client)

	go client.writePump()
	go client.readPump()

	welcome := WebSocketMessage{
		Type: MessageConnected,
		Data: map[string]any{
			"message": "Live updates enabled",
		},
	}
	if data, err := json.Marshal(welcome); err == nil {
		client.send <- data
	}
}

// readPump drains the connection. Clients send nothing; reading is how a
// disconnect is noticed.
func (c *WebSocketClient) readPump() {
	defer func() {
		// Closing send stops writePump, which owns the connection.
		c.hub.removeClient(c)
	}()

	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, _, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Warn("websocket read error", "error", err)
			}
			break
		}
	}
}

// writePump writes messages to the WebSocket connection.
func (c *WebSocketClient) writePump() {
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
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			// One JSON document per frame.
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

			n := len(c.send)
			for i := 0; i < n; i++ {
				queuedMsg := <-c.send
				if err := c.conn.WriteMessage(websocket.TextMessage, queuedMsg); err != nil {
					return
				}
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *WebSocketHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
