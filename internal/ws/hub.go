package ws

import (
	"encoding/json"
	"sync"

	"gasdepot/internal/domain"
)

// Client is one WebSocket subscription to a transaction reference.
type Client struct {
	Reference string
	Send      chan []byte
	hub       *Hub
	mu        sync.Mutex
	closed    bool
}

func NewClient(reference string) *Client {
	return &Client{Reference: reference, Send: make(chan []byte, 16)}
}

func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	if c.hub != nil {
		c.hub.unregister(c)
	}
	close(c.Send)
}

// Hub fans payment status updates out to the clients watching each reference.
type Hub struct {
	mu          sync.RWMutex
	byReference map[string]map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{byReference: make(map[string]map[*Client]struct{})}
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	c.hub = h
	if h.byReference[c.Reference] == nil {
		h.byReference[c.Reference] = make(map[*Client]struct{})
	}
	h.byReference[c.Reference][c] = struct{}{}
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if m := h.byReference[c.Reference]; m != nil {
		delete(m, c)
		if len(m) == 0 {
			delete(h.byReference, c.Reference)
		}
	}
}

// PublishStatus sends u to every client watching u.Reference. Slow clients
// miss the message rather than block the reconciler.
func (h *Hub) PublishStatus(u domain.StatusUpdate) {
	data, err := json.Marshal(statusMessage{Type: "status", StatusUpdate: u})
	if err != nil {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.byReference[u.Reference] {
		select {
		case c.Send <- data:
		default:
		}
	}
}

// Subscribers returns how many clients watch reference.
func (h *Hub) Subscribers(reference string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.byReference[reference])
}

type statusMessage struct {
	Type string `json:"type"`
	domain.StatusUpdate
}
