package ws

import (
	"encoding/json"
	"sync"
)

// Client represents a single WebSocket connection with user context.
type Client struct {
	UserID string
	Role   string
	Send   chan []byte
	Hub    *Hub // set so Close() can unregister
	mu     sync.Mutex
	closed bool
}

func NewClient(userID, role string) *Client {
	return &Client{UserID: userID, Role: role, Send: make(chan []byte, 256)}
}

func (c *Client) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.Send)
	c.mu.Unlock()
	if c.Hub != nil {
		c.Hub.unregister(c)
	}
}

// trySend drops the message when the client is gone or its buffer is full.
func (c *Client) trySend(data []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.Send <- data:
		return true
	default:
		return false
	}
}

// Hub maintains the set of active clients and broadcasts to them.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	// one user or role can have several connections
	byUser map[string]map[*Client]struct{}
	byRole map[string]map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[*Client]struct{}),
		byUser:  make(map[string]map[*Client]struct{}),
		byRole:  make(map[string]map[*Client]struct{}),
	}
}

func addTo(index map[string]map[*Client]struct{}, key string, c *Client) {
	if key == "" {
		return
	}
	if index[key] == nil {
		index[key] = make(map[*Client]struct{})
	}
	index[key][c] = struct{}{}
}

func removeFrom(index map[string]map[*Client]struct{}, key string, c *Client) {
	if m := index[key]; m != nil {
		delete(m, c)
		if len(m) == 0 {
			delete(index, key)
		}
	}
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	c.Hub = h
	h.clients[c] = struct{}{}
	addTo(h.byUser, c.UserID, c)
	addTo(h.byRole, c.Role, c)
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, c)
	removeFrom(h.byUser, c.UserID, c)
	removeFrom(h.byRole, c.Role, c)
}

func (h *Hub) snapshot(m map[*Client]struct{}) []*Client {
	clients := make([]*Client, 0, len(m))
	for c := range m {
		clients = append(clients, c)
	}
	return clients
}

func (h *Hub) deliver(clients []*Client, payload interface{}) int {
	if len(clients) == 0 {
		return 0
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return 0
	}
	sent := 0
	for _, c := range clients {
		if c.trySend(data) {
			sent++
		}
	}
	return sent
}

func (h *Hub) BroadcastToUser(userID string, payload interface{}) {
	h.mu.RLock()
	clients := h.snapshot(h.byUser[userID])
	h.mu.RUnlock()
	h.deliver(clients, payload)
}

func (h *Hub) BroadcastToRole(role string, payload interface{}) {
	h.mu.RLock()
	clients := h.snapshot(h.byRole[role])
	h.mu.RUnlock()
	h.deliver(clients, payload)
}

func (h *Hub) BroadcastAll(payload interface{}) {
	h.mu.RLock()
	clients := h.snapshot(h.clients)
	h.mu.RUnlock()
	h.deliver(clients, payload)
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
