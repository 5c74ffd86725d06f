package ws

import (
	"context"
	"fmt"
	"sync"

	"github.com/carte-app/api/internal/event"
	"github.com/sirupsen/logrus"
)

// GlobalChannel is the room served at /ws. Every connection there sees
// every event relayed on it.
const GlobalChannel = ""

// MenuChannel is the room for one menu's connections.
func MenuChannel(menuID int64) string {
	return fmt.Sprintf("menu:%d", menuID)
}

// Options tune relay behavior.
type Options struct {
	// EchoToSender re-sends a relayed frame to the connection it came from.
	EchoToSender   bool
	SendBuffer     int
	MaxMessageSize int64
}

// DefaultOptions mirror the config defaults.
func DefaultOptions() Options {
	return Options{EchoToSender: true, SendBuffer: 256, MaxMessageSize: 64 << 10}
}

// frame is a message to deliver to one room. origin is nil for frames
// published by the server.
type frame struct {
	channel string
	data    []byte
	origin  *Client
}

// Hub maintains the set of active clients and fans frames out to them.
// All room mutations happen on the Run goroutine.
type Hub struct {
	opts Options

	// Registered clients by channel
	rooms map[string]map[*Client]bool

	register   chan *Client
	unregister chan *Client
	broadcast  chan *frame

	// done is closed when Run returns.
	done chan struct{}

	// mu guards rooms for Stats readers.
	mu sync.RWMutex

	log *logrus.Entry
}

// NewHub creates a new Hub instance.
func NewHub(opts Options) *Hub {
	if opts.SendBuffer <= 0 {
		opts.SendBuffer = DefaultOptions().SendBuffer
	}
	if opts.MaxMessageSize <= 0 {
		opts.MaxMessageSize = DefaultOptions().MaxMessageSize
	}
	return &Hub{
		opts:       opts,
		rooms:      make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *frame, 256),
		done:       make(chan struct{}),
		log:        logrus.WithField("component", "relay"),
	}
}

// Run starts the hub's main loop and blocks until ctx is cancelled, at
// which point every client is disconnected.
// This should be called as a goroutine: go hub.Run(ctx)
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for channel, clients := range h.rooms {
				for client := range clients {
					close(client.send)
				}
				delete(h.rooms, channel)
			}
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			if h.rooms[client.channel] == nil {
				h.rooms[client.channel] = make(map[*Client]bool)
			}
			h.rooms[client.channel][client] = true
			h.mu.Unlock()
			h.log.WithFields(logrus.Fields{
				"client_id": client.id,
				"channel":   client.channel,
			}).Debug("client connected")

		case client := <-h.unregister:
			h.mu.Lock()
			h.remove(client)
			h.mu.Unlock()

		case f := <-h.broadcast:
			h.mu.Lock()
			for client := range h.rooms[f.channel] {
				if client == f.origin && !h.opts.EchoToSender {
					continue
				}
				select {
				case client.send <- f.data:
				default:
					// Client's send buffer is full, drop it rather than stall the room.
					h.log.WithFields(logrus.Fields{
						"client_id": client.id,
						"channel":   client.channel,
					}).Warn("send buffer full, disconnecting client")
					h.remove(client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// remove unregisters client and closes its send channel. Callers hold mu.
func (h *Hub) remove(client *Client) {
	clients, ok := h.rooms[client.channel]
	if !ok {
		return
	}
	if _, exists := clients[client]; !exists {
		return
	}
	delete(clients, client)
	close(client.send)
	if len(clients) == 0 {
		delete(h.rooms, client.channel)
	}
	h.log.WithFields(logrus.Fields{
		"client_id": client.id,
		"channel":   client.channel,
	}).Debug("client disconnected")
}

// Publish sends a server-originated event to every client of channel.
func (h *Hub) Publish(channel string, msg event.Message) error {
	data, err := event.Encode(msg)
	if err != nil {
		return err
	}
	h.relay(&frame{channel: channel, data: data})
	return nil
}

// relay queues f for fan-out. It gives up silently once the hub stopped.
func (h *Hub) relay(f *frame) {
	select {
	case h.broadcast <- f:
	case <-h.done:
	}
}

// Stats returns the number of open connections per channel.
func (h *Hub) Stats() map[string]int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	stats := make(map[string]int, len(h.rooms))
	for channel, clients := range h.rooms {
		stats[channel] = len(clients)
	}
	return stats
}
