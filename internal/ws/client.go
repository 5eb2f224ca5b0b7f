package ws

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"classclash/internal/metrics"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 8192
	sendBufferSize = 64
)

// Client is one websocket connection. Outbound messages go through the
// buffered send channel; a consumer that cannot keep up is dropped rather
// than allowed to block the room.
type Client struct {
	ID      string
	server  *Server
	conn    *websocket.Conn
	send    chan []byte
	limiter *rate.Limiter
	log     *zap.Logger

	mu     sync.Mutex
	closed bool
}

func newClient(id string, s *Server, conn *websocket.Conn) *Client {
	return &Client{
		ID:      id,
		server:  s,
		conn:    conn,
		send:    make(chan []byte, sendBufferSize),
		limiter: rate.NewLimiter(rate.Limit(s.cfg.Server.SocketEventsPerSec), s.cfg.Server.SocketEventBurst),
		log:     s.log.With(zap.String("conn", id)),
	}
}

// enqueue pushes a marshalled frame without blocking. Returns false when
// the client is already closed or the buffer is full; the caller closes
// the client. The mutex keeps the send and the close exclusive, so a
// frame can never land on a closed channel.
func (c *Client) enqueue(frame []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false
	}
	select {
	case c.send <- frame:
		return true
	default:
		return false
	}
}

func (c *Client) sendJSON(v any) {
	frame, err := json.Marshal(v)
	if err != nil {
		c.log.Error("marshal outbound frame", zap.Error(err))
		return
	}
	if !c.enqueue(frame) {
		if c.close() {
			c.log.Warn("send buffer full, dropping client")
		}
	}
}

// close shuts the send channel exactly once. Frames arriving afterwards
// are discarded by enqueue. Reports whether this call did the closing.
func (c *Client) close() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false
	}
	c.closed = true
	close(c.send)
	return true
}

func (c *Client) readPump() {
	defer func() {
		c.server.disconnect(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Debug("read error", zap.Error(err))
			}
			return
		}

		// Rate-limit violation is the one condition that closes the
		// connection; room state survives and reconnecting is allowed.
		if !c.limiter.Allow() {
			metrics.RateLimitDisconnects.Inc()
			c.log.Warn("rate limit exceeded, closing connection")
			return
		}

		var env Envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			c.sendJSON(Ack{OK: false, Error: "Malformed event"})
			continue
		}
		c.server.handleEvent(c, env)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
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
