package sse

import (
	"path/filepath"
	"sync"

	"github.com/kbukum/voxscribe/logger"
)

const defaultClientBuffer = 64

// Client is one connected event stream.
type Client struct {
	id     string
	events chan Event
}

// NewClient creates a client with a buffered event channel.
func NewClient(id string) *Client {
	return &Client{id: id, events: make(chan Event, defaultClientBuffer)}
}

func (c *Client) ID() string { return c.id }

// Events is closed when the client is unregistered or the hub stops.
func (c *Client) Events() <-chan Event { return c.events }

// send drops the event when the client is not keeping up.
func (c *Client) send(ev Event) bool {
	select {
	case c.events <- ev:
		return true
	default:
		return false
	}
}

type message struct {
	pattern string
	event   Event
}

// Hub owns client registration on a single goroutine (Run).
type Hub struct {
	clients    map[string]*Client
	register   chan *Client
	unregister chan *Client
	broadcast  chan message
	done       chan struct{}
	stopOnce   sync.Once
	mu         sync.RWMutex
	log        *logger.Logger
}

var _ Broadcaster = (*Hub)(nil)

// NewHub creates a hub. Call Run in a goroutine.
func NewHub(log *logger.Logger) *Hub {
	if log == nil {
		log = logger.Nop()
	}
	return &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan message, 256),
		done:       make(chan struct{}),
		log:        log.WithComponent("sse"),
	}
}

// Run processes registrations and broadcasts until Stop.
func (h *Hub) Run() {
	for {
		select {
		case <-h.done:
			h.closeAll()
			return

		case c := <-h.register:
			h.mu.Lock()
			h.clients[c.id] = c
			n := len(h.clients)
			h.mu.Unlock()
			h.log.Debug("client registered", map[string]interface{}{"client_id": c.id, "total_clients": n})

		case c := <-h.unregister:
			h.mu.Lock()
			if cur, ok := h.clients[c.id]; ok && cur == c {
				delete(h.clients, c.id)
				close(c.events)
			}
			n := len(h.clients)
			h.mu.Unlock()
			h.log.Debug("client unregistered", map[string]interface{}{"client_id": c.id, "total_clients": n})

		case msg := <-h.broadcast:
			h.deliver(msg)
		}
	}
}

// Stop shuts the hub down and closes every client. Safe to call twice.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.done) })
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, c := range h.clients {
		close(c.events)
		delete(h.clients, id)
	}
}

// Register adds c. It returns false once the hub has stopped.
func (h *Hub) Register(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

// Unregister removes c and closes its channel.
func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Broadcast queues ev for every client whose id matches pattern.
func (h *Hub) Broadcast(pattern string, ev Event) {
	select {
	case h.broadcast <- message{pattern: pattern, event: ev}:
	case <-h.done:
	}
}

func (h *Hub) deliver(msg message) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for id, c := range h.clients {
		matched, err := filepath.Match(msg.pattern, id)
		if err != nil {
			h.log.Error("bad broadcast pattern", map[string]interface{}{"pattern": msg.pattern, "error": err.Error()})
			return
		}
		if !matched {
			continue
		}
		if c.send(msg.event) {
			delivered++
		} else {
			h.log.Warn("client buffer full, dropping event", map[string]interface{}{"client_id": id, "event": msg.event.Name})
		}
	}
	h.log.Debug("broadcast", map[string]interface{}{"pattern": msg.pattern, "event": msg.event.Name, "delivered": delivered})
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
