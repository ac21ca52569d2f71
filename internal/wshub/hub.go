package wshub

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"github.com/coder/websocket"
)

// ClientMessage is the JSON envelope received from clients.
type ClientMessage struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// ServerMessage is the JSON envelope sent to clients.
type ServerMessage struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

// Client represents a single WebSocket connection in the hub.
type Client struct {
	ID   string
	Conn *websocket.Conn
	Send chan []byte
}

func NewClient(id string, conn *websocket.Conn) *Client {
	return &Client{
		ID:   id,
		Conn: conn,
		Send: make(chan []byte, 32),
	}
}

// WritePump reads from the Send channel and writes to the WebSocket
// connection until the context or the channel closes.
func (c *Client) WritePump(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-c.Send:
			if !ok {
				return
			}
			if err := c.Conn.Write(ctx, websocket.MessageText, msg); err != nil {
				return
			}
		}
	}
}

// Hub tracks live connections and per-room broadcast groups.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client         // connectionID -> client
	members map[string]map[string]bool // roomID -> set of connectionIDs
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]*Client),
		members: make(map[string]map[string]bool),
	}
}

// Register adds a client to the hub.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c.ID] = c
}

// Unregister removes a client from the hub and from every broadcast
// group, and closes its Send channel.
func (h *Hub) Unregister(connectionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	c, ok := h.clients[connectionID]
	if !ok {
		return
	}
	close(c.Send)
	delete(h.clients, connectionID)
	for roomID, group := range h.members {
		delete(group, connectionID)
		if len(group) == 0 {
			delete(h.members, roomID)
		}
	}
}

// Join subscribes a connection to a room's broadcast group.
func (h *Hub) Join(roomID, connectionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	group, ok := h.members[roomID]
	if !ok {
		group = make(map[string]bool)
		h.members[roomID] = group
	}
	group[connectionID] = true
}

// Emit sends an event to a single connection. Non-blocking: drops if
// the client's channel is full.
func (h *Hub) Emit(connectionID, event string, data any) {
	msg, err := marshal(event, data)
	if err != nil {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	c, ok := h.clients[connectionID]
	if !ok {
		return
	}
	select {
	case c.Send <- msg:
	default:
		// Drop message if channel full
	}
}

// Broadcast sends an event to every member of a room's broadcast group.
func (h *Hub) Broadcast(roomID, event string, data any) {
	msg, err := marshal(event, data)
	if err != nil {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for connectionID := range h.members[roomID] {
		c, ok := h.clients[connectionID]
		if !ok {
			continue
		}
		select {
		case c.Send <- msg:
		default:
			// Drop message if channel full
		}
	}
}

func marshal(event string, data any) ([]byte, error) {
	msg, err := json.Marshal(ServerMessage{Event: event, Data: data})
	if err != nil {
		log.Printf("[WSHub] Marshal error: %v\n", err)
		return nil, err
	}
	return msg, nil
}
