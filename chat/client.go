package chat

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = time.Minute
	pingPeriod     = pongWait * 9 / 10
	maxMessageSize = 512
)

// client is one websocket joined to one channel under a display name.
type client struct {
	id      string
	name    string
	channel string

	conn    *websocket.Conn
	send    chan string
	limiter *rate.Limiter

	hub     *Hub
	handler *Handler
	log     zerolog.Logger
}

func newClient(channel, name string, conn *websocket.Conn, hub *Hub, handler *Handler, log zerolog.Logger) *client {
	id := uuid.NewString()
	return &client{
		id:      id,
		name:    name,
		channel: channel,
		conn:    conn,
		send:    make(chan string, 64),
		limiter: rate.NewLimiter(1, 5),
		hub:     hub,
		handler: handler,
		log:     log.With().Str("conn", id).Str("channel", channel).Logger(),
	}
}

// readPump consumes inbound lines until the socket dies. Lines beyond the
// rate limit are dropped silently.
func (c *client) readPump() {
	defer func() {
		c.hub.leave(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.log.Debug().Err(err).Msg("read failed")
			}
			return
		}
		if !c.limiter.Allow() {
			continue
		}
		line := strings.TrimSpace(string(data))
		if line == "" {
			continue
		}
		c.handler.dispatch(c, line)
	}
}

// writePump drains the outbox and keeps the connection alive with pings.
func (c *client) writePump() {
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
				c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, []byte(message)); err != nil {
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
