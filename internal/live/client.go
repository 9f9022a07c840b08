package live

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/hwangseoul-netizen/tention-mini/internal/query"
	"github.com/hwangseoul-netizen/tention-mini/pkg/logger"
)

// Client is one WebSocket connection
type Client struct {
	ID          string
	Actor       string
	ConnectedAt time.Time

	conn *websocket.Conn
	send chan []byte
	hub  *Hub

	mu     sync.RWMutex
	filter query.Filter
}

// Filter returns the client's current filter
func (c *Client) Filter() query.Filter {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.filter
}

func (c *Client) setFilter(f query.Filter) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.filter = f
}

// deliver queues data unless the client is gone or its buffer is full
func (c *Client) deliver(data []byte) bool {
	if data == nil {
		return true
	}

	c.hub.mu.RLock()
	defer c.hub.mu.RUnlock()

	if !c.hub.clients[c] {
		return true
	}
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

func (c *Client) writePump() {
	cfg := c.hub.config
	ticker := time.NewTicker(cfg.PingInterval)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
		c.hub.unregister(c)
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(cfg.WriteTimeout))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				logger.Debug("live write failed", zap.String("client_id", c.ID), zap.Error(err))
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(cfg.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) readPump() {
	cfg := c.hub.config
	defer func() {
		c.hub.unregister(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(cfg.MaxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(cfg.ReadTimeout))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(cfg.ReadTimeout))
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Warn("unexpected websocket close", zap.String("client_id", c.ID), zap.Error(err))
			}
			return
		}

		c.handleMessage(message)
		_ = c.conn.SetReadDeadline(time.Now().Add(cfg.ReadTimeout))
	}
}

func (c *Client) handleMessage(raw []byte) {
	var msg ClientMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		c.deliver(marshal(Frame{Type: FrameError, Error: "malformed message"}))
		return
	}

	switch msg.Type {
	case "filter":
		f, err := c.hub.config.Resolve(msg.Filter)
		if err != nil {
			c.deliver(marshal(Frame{Type: FrameError, Error: err.Error()}))
			return
		}
		c.setFilter(f)
		c.deliver(c.hub.snapshotFrame(c))
	case "ping":
		// keepalive
	default:
		c.deliver(marshal(Frame{Type: FrameError, Error: "unknown message type"}))
	}
}
