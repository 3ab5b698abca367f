package services

import (
	"context"
	"encoding/json"
	"latencyviz/internal/models"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// ClientSendBuffer is the per-client outbound queue length
const ClientSendBuffer = 256

// Message types on the websocket
const (
	MessageSnapshot       = "snapshot"
	MessagePing           = "ping"
	MessagePong           = "pong"
	MessageFilters        = "filters"
	MessageFiltersApplied = "filters_applied"
	MessageError          = "error"
)

// WebSocketMessage represents a message sent to a client
type WebSocketMessage struct {
	Type      string      `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data,omitempty"`
	Error     string      `json:"error,omitempty"`
}

// ClientMessage is a message read from a client
type ClientMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// SnapshotPayload is the filtered view pushed after every store change
type SnapshotPayload struct {
	Connections []models.LatencySample `json:"connections"`
	Summary     models.Summary         `json:"summary"`
	Filters     models.Filters         `json:"filters"`
	LastUpdate  time.Time              `json:"lastUpdate"`
}

// ClientConnection represents a connected WebSocket client
type ClientConnection struct {
	ID   string
	Name string
	Conn *websocket.Conn
	Send chan WebSocketMessage
}

// NewClientConnection wraps conn with a fresh id and send queue
func NewClientConnection(conn *websocket.Conn, name string) *ClientConnection {
	return &ClientConnection{
		ID:   uuid.NewString(),
		Name: name,
		Conn: conn,
		Send: make(chan WebSocketMessage, ClientSendBuffer),
	}
}

// WebSocketHub pushes store snapshots to every connected client
type WebSocketHub struct {
	store      *SnapshotStore
	clients    map[string]*ClientConnection
	register   chan *ClientConnection
	unregister chan string
	mu         sync.RWMutex
	done       chan struct{}
}

// NewWebSocketHub creates a hub over store. Call Run to start it.
func NewWebSocketHub(store *SnapshotStore) *WebSocketHub {
	return &WebSocketHub{
		store:      store,
		clients:    make(map[string]*ClientConnection),
		register:   make(chan *ClientConnection),
		unregister: make(chan string),
		done:       make(chan struct{}),
	}
}

// Run manages the hub's event loop until ctx is cancelled
func (h *WebSocketHub) Run(ctx context.Context) {
	events, cancel := h.store.Subscribe(16)
	defer cancel()
	defer close(h.done)
	defer h.closeAll()

	for {
		select {
		case <-ctx.Done():
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.ID] = client
			total := len(h.clients)
			h.mu.Unlock()
			wsClients.Set(float64(total))
			log.Printf("[WS] Client connected: %s (%s) (total: %d)", client.ID, client.Name, total)

			// New clients get the current view right away
			h.trySend(client, h.snapshotMessage())

		case clientID := <-h.unregister:
			h.mu.Lock()
			if client, exists := h.clients[clientID]; exists {
				delete(h.clients, clientID)
				close(client.Send)
			}
			total := len(h.clients)
			h.mu.Unlock()
			wsClients.Set(float64(total))
			log.Printf("[WS] Client disconnected: %s (total: %d)", clientID, total)

		case _, ok := <-events:
			if !ok {
				return
			}
			h.broadcast(h.snapshotMessage())
		}
	}
}

// Register adds a new client to the hub. It returns false once the hub has stopped.
func (h *WebSocketHub) Register(client *ClientConnection) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

// Unregister removes a client from the hub
func (h *WebSocketHub) Unregister(clientID string) {
	select {
	case h.unregister <- clientID:
	case <-h.done:
	}
}

// ClientCount returns the number of connected clients
func (h *WebSocketHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// SendMessage sends a message to a specific client. Unknown clients and
// full queues drop the message.
func (h *WebSocketHub) SendMessage(clientID string, msg WebSocketMessage) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if client, exists := h.clients[clientID]; exists {
		h.trySend(client, msg)
	}
}

// HandleClientMessage reacts to one message read from a client
func (h *WebSocketHub) HandleClientMessage(client *ClientConnection, msg ClientMessage) {
	switch msg.Type {
	case MessagePing:
		h.SendMessage(client.ID, WebSocketMessage{Type: MessagePong, Timestamp: time.Now()})

	case MessageFilters:
		var patch models.FiltersPatch
		if err := json.Unmarshal(msg.Data, &patch); err != nil {
			h.SendMessage(client.ID, WebSocketMessage{Type: MessageError, Timestamp: time.Now(), Error: err.Error()})
			return
		}
		if patch.IsEmpty() {
			h.SendMessage(client.ID, WebSocketMessage{Type: MessageError, Timestamp: time.Now(), Error: "no filter fields given"})
			return
		}
		if err := patch.Validate(); err != nil {
			log.Printf("[WS] Rejected filters from %s: %v", client.ID, err)
			h.SendMessage(client.ID, WebSocketMessage{Type: MessageError, Timestamp: time.Now(), Error: err.Error()})
			return
		}
		filters := h.store.SetFilters(patch)
		h.SendMessage(client.ID, WebSocketMessage{Type: MessageFiltersApplied, Timestamp: time.Now(), Data: filters})

	default:
		log.Printf("[WS] Unknown message type: %s", msg.Type)
	}
}

// BuildSnapshot assembles a client view of the store. Connections are the
// filtered arcs; the summary covers the whole snapshot.
func BuildSnapshot(view SnapshotView) SnapshotPayload {
	visible := VisibleSamples(view.Connections, view.Nodes, view.Filters)
	summary := Summarize(view.Connections, len(view.Nodes), view.LastUpdate)
	summary.VisibleConnections = len(visible)
	summary.VisibleNodes = len(VisibleNodes(view.Nodes, view.Filters))
	return SnapshotPayload{
		Connections: visible,
		Summary:     summary,
		Filters:     view.Filters,
		LastUpdate:  view.LastUpdate,
	}
}

func (h *WebSocketHub) snapshotMessage() WebSocketMessage {
	return WebSocketMessage{
		Type:      MessageSnapshot,
		Timestamp: time.Now(),
		Data:      BuildSnapshot(h.store.Read()),
	}
}

func (h *WebSocketHub) broadcast(msg WebSocketMessage) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, client := range h.clients {
		h.trySend(client, msg)
	}
}

func (h *WebSocketHub) trySend(client *ClientConnection, msg WebSocketMessage) {
	select {
	case client.Send <- msg:
	default:
		// Client's send channel is full, skip this message
	}
}

func (h *WebSocketHub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, client := range h.clients {
		close(client.Send)
		delete(h.clients, id)
	}
	wsClients.Set(0)
}
