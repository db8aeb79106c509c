package broadcast

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// HeartbeatInterval is how often each connected stream receives a ping to
// defeat idle-connection timeouts in proxies.
const HeartbeatInterval = 25 * time.Second

// RetryMillis is the reconnection delay advised to SSE clients at connect.
const RetryMillis = 10000

// Event is one broadcast message: an SSE event name plus its pre-encoded
// JSON payload.
type Event struct {
	Name string
	Data json.RawMessage
}

// Client is one connected stream. Events are consumed from Events(); a
// client that stops draining only loses its own messages.
type Client struct {
	ch chan Event
}

// Events returns the client's event feed.
func (c *Client) Events() <-chan Event {
	return c.ch
}

// Hub owns the registry of connected streaming clients and fans mutation
// events out to all of them. Register, Unregister and Broadcast are its only
// operations; nothing else touches the client set.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]bool
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{clients: make(map[*Client]bool)}
}

// Register adds a new streaming client and returns it.
func (h *Hub) Register() *Client {
	client := &Client{ch: make(chan Event, 16)}
	h.mu.Lock()
	h.clients[client] = true
	total := len(h.clients)
	h.mu.Unlock()
	log.Debug().Int("clients", total).Msg("stream client registered")
	return client
}

// Unregister removes a client from the registry. Safe to call more than
// once.
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	delete(h.clients, client)
	remaining := len(h.clients)
	h.mu.Unlock()
	log.Debug().Int("clients", remaining).Msg("stream client unregistered")
}

// Broadcast encodes payload once and delivers it to every registered client.
// Delivery is best-effort and isolated per client: a client whose buffer is
// full skips the event without holding up the others. Delivery order within
// one client's stream follows broadcast order.
func (h *Hub) Broadcast(name string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Str("event", name).Msg("failed to encode broadcast event")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients {
		select {
		case client.ch <- Event{Name: name, Data: data}:
		default:
			log.Warn().Str("event", name).Msg("stream client buffer full, event dropped")
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
