// Package chat is the transport surface: websocket channels players join to
// play, and the fan-out that delivers game messages back to them.
package chat

import (
	"sync"

	"github.com/rs/zerolog"
)

// Hub tracks which connections are joined to which channel and broadcasts
// game output to all of them. It satisfies the engine's Notifier.
type Hub struct {
	mu       sync.RWMutex
	channels map[string]map[string]*client
	log      zerolog.Logger
}

func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		channels: make(map[string]map[string]*client),
		log:      log,
	}
}

// Notify broadcasts one line to every connection in the channel. A client
// whose outbox is full misses the line rather than stalling the game.
func (h *Hub) Notify(channel, message string) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, c := range h.channels[channel] {
		select {
		case c.send <- message:
		default:
			h.log.Warn().Str("channel", channel).Str("conn", c.id).Msg("outbox full, dropping message")
		}
	}
}

// Occupants reports how many connections are joined to the channel.
func (h *Hub) Occupants(channel string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.channels[channel])
}

func (h *Hub) join(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	conns := h.channels[c.channel]
	if conns == nil {
		conns = make(map[string]*client)
		h.channels[c.channel] = conns
	}
	conns[c.id] = c
	h.log.Debug().Str("channel", c.channel).Str("conn", c.id).Str("name", c.name).Msg("joined")
}

func (h *Hub) leave(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	conns := h.channels[c.channel]
	if _, ok := conns[c.id]; !ok {
		return
	}
	delete(conns, c.id)
	if len(conns) == 0 {
		delete(h.channels, c.channel)
	}
	close(c.send)
	h.log.Debug().Str("channel", c.channel).Str("conn", c.id).Msg("left")
}
