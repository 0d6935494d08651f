package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ayusman/handrps/internal/game"
	"github.com/ayusman/handrps/internal/gesture"
	"github.com/ayusman/handrps/internal/monitoring"
)

const (
	writeWait      = 5 * time.Second
	clientSendSize = 32
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// GestureMessage announces a confirmed gesture.
type GestureMessage struct {
	Type    string       `json:"type"`
	Gesture gesture.Kind `json:"gesture"`
	X       float64      `json:"x"`
	Y       float64      `json:"y"`
	Frame   uint64       `json:"frame"`
}

// StateMessage carries a game snapshot.
type StateMessage struct {
	Type string `json:"type"`
	game.Snapshot
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub broadcasts gesture and game events to WebSocket clients.
type Hub struct {
	mu      sync.RWMutex
	clients map[*client]struct{}
	closed  bool
}

// NewHub creates an empty Hub.
func NewHub() *Hub {
	return &Hub{clients: make(map[*client]struct{})}
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		monitoring.Logf("websocket upgrade error: %v", err)
		return
	}

	c := &client{conn: conn, send: make(chan []byte, clientSendSize)}
	if !h.add(c) {
		conn.Close()
		return
	}
	defer h.remove(c)

	go c.writeLoop()

	// Keep connection alive by reading messages
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

func (h *Hub) add(c *client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[c] = struct{}{}
	return true
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}

func (c *client) writeLoop() {
	defer c.conn.Close()
	for msg := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast sends v as JSON to every client. Clients whose queue is full
// miss the message.
func (h *Hub) Broadcast(v any) {
	msg, err := json.Marshal(v)
	if err != nil {
		monitoring.Logf("websocket encode error: %v", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
		}
	}
}

// BroadcastGesture announces a confirmed gesture.
func (h *Hub) BroadcastGesture(c gesture.Confirmed) {
	h.Broadcast(GestureMessage{
		Type:    "gesture",
		Gesture: c.Gesture,
		X:       c.Wrist.X,
		Y:       c.Wrist.Y,
		Frame:   c.Frame,
	})
}

// BroadcastState announces a game snapshot.
func (h *Hub) BroadcastState(s game.Snapshot) {
	h.Broadcast(StateMessage{Type: "state", Snapshot: s})
}

// Close disconnects every client and refuses new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}
}
