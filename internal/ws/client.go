package ws

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/carte-app/api/internal/event"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // The relay is public
	},
}

// Client represents a single WebSocket connection
type Client struct {
	id      uuid.UUID
	hub     *Hub
	conn    *websocket.Conn
	channel string
	send    chan []byte
}

// ReadPump pumps frames from the WebSocket connection to the hub.
// The application runs ReadPump in a per-connection goroutine.
// Frames that do not decode as a known event are dropped; the connection
// stays open.
func (c *Client) ReadPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	log := c.hub.log.WithFields(logrus.Fields{"client_id": c.id, "channel": c.channel})

	c.conn.SetReadLimit(c.hub.opts.MaxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		messageType, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.WithError(err).Warn("websocket read error")
			}
			return
		}
		if messageType != websocket.TextMessage {
			log.Debug("dropping non-text frame")
			continue
		}

		// Known kinds are relayed even when their body is incomplete.
		kind, err := event.Kind(data)
		if err != nil {
			if errors.Is(err, event.ErrUnknownType) {
				log.WithError(err).Debug("dropping unknown message type")
			} else {
				log.WithError(err).Debug("dropping malformed frame")
			}
			continue
		}
		log.WithField("type", kind).Debug("relaying")

		// The original bytes are relayed, not a re-encoding.
		c.hub.relay(&frame{channel: c.channel, data: data, origin: c})
	}
}

// WritePump pumps frames from the hub to the WebSocket connection, one
// WebSocket message per frame.
// The application runs WritePump in a per-connection goroutine.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// ServeWS handles WebSocket upgrade requests.
// Endpoints: WS /ws (global channel) and WS /ws/menus/{mid}
func ServeWS(hub *Hub, w http.ResponseWriter, r *http.Request) {
	channel := GlobalChannel
	if midStr := chi.URLParam(r, "mid"); midStr != "" {
		menuID, err := strconv.ParseInt(midStr, 10, 64)
		if err != nil {
			http.Error(w, "invalid menu id", http.StatusBadRequest)
			return
		}
		channel = MenuChannel(menuID)
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		hub.log.WithError(err).Warn("websocket upgrade error")
		return
	}

	client := &Client{
		id:      uuid.New(),
		hub:     hub,
		conn:    conn,
		channel: channel,
		send:    make(chan []byte, hub.opts.SendBuffer),
	}

	select {
	case hub.register <- client:
	case <-hub.done:
		conn.Close()
		return
	}

	go client.WritePump()
	go client.ReadPump()
}
