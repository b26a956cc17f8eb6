package ws

import (
	"encoding/json"
	"sync"
	"time"

	"digilinex/internal/domain"
)

// Event is the frame pushed to live clients.
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
	At   time.Time   `json:"at"`
}

// Client represents a single WebSocket connection with user context.
type Client struct {
	UserID uint
	Role   string
	Send   chan []byte
	Hub    *Hub
	mu     sync.Mutex
	closed bool
}

func NewClient(userID uint, role string) *Client {
	return &Client{UserID: userID, Role: role, Send: make(chan []byte, 256)}
}

func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	if c.Hub != nil {
		c.Hub.unregister(c)
	}
	close(c.Send)
}

// trySend queues data without blocking. Closed or full clients drop the frame.
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

// Metrics observes hub activity.
type Metrics interface {
	Connections(n int)
	Dropped()
}

// Hub fans events out to every connection of a user, and admin events to every admin.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	byUser  map[uint]map[*Client]struct{} // one user can hold several connections
	admins  map[*Client]struct{}
	metrics Metrics
}

func NewHub(m Metrics) *Hub {
	return &Hub{
		clients: make(map[*Client]struct{}),
		byUser:  make(map[uint]map[*Client]struct{}),
		admins:  make(map[*Client]struct{}),
		metrics: m,
	}
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	c.Hub = h
	h.clients[c] = struct{}{}
	if h.byUser[c.UserID] == nil {
		h.byUser[c.UserID] = make(map[*Client]struct{})
	}
	h.byUser[c.UserID][c] = struct{}{}
	if c.Role == domain.RoleAdmin {
		h.admins[c] = struct{}{}
	}
	n := len(h.clients)
	h.mu.Unlock()
	if h.metrics != nil {
		h.metrics.Connections(n)
	}
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	delete(h.clients, c)
	delete(h.admins, c)
	if m := h.byUser[c.UserID]; m != nil {
		delete(m, c)
		if len(m) == 0 {
			delete(h.byUser, c.UserID)
		}
	}
	n := len(h.clients)
	h.mu.Unlock()
	if h.metrics != nil {
		h.metrics.Connections(n)
	}
}

// Publish sends an event to every connection of userID.
func (h *Hub) Publish(userID uint, eventType string, data interface{}) {
	h.mu.RLock()
	clients := snapshot(h.byUser[userID])
	h.mu.RUnlock()
	h.deliver(clients, eventType, data)
}

// PublishAdmins sends an event to every connected admin.
func (h *Hub) PublishAdmins(eventType string, data interface{}) {
	h.mu.RLock()
	clients := snapshot(h.admins)
	h.mu.RUnlock()
	h.deliver(clients, eventType, data)
}

func (h *Hub) deliver(clients []*Client, eventType string, data interface{}) {
	if len(clients) == 0 {
		return
	}
	payload, err := json.Marshal(Event{Type: eventType, Data: data, At: time.Now().UTC()})
	if err != nil {
		return
	}
	for _, c := range clients {
		if !c.trySend(payload) && h.metrics != nil {
			h.metrics.Dropped()
		}
	}
}

func snapshot(m map[*Client]struct{}) []*Client {
	out := make([]*Client, 0, len(m))
	for c := range m {
		out = append(out, c)
	}
	return out
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
