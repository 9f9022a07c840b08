// Package live pushes slot list updates to WebSocket clients.
package live

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/hwangseoul-netizen/tention-mini/internal/domain"
	"github.com/hwangseoul-netizen/tention-mini/internal/events"
	"github.com/hwangseoul-netizen/tention-mini/internal/query"
	"github.com/hwangseoul-netizen/tention-mini/internal/store"
	"github.com/hwangseoul-netizen/tention-mini/pkg/logger"
)

// Config holds WebSocket settings
type Config struct {
	WriteTimeout    time.Duration
	ReadTimeout     time.Duration
	PingInterval    time.Duration
	MaxMessageSize  int64
	ReadBufferSize  int
	WriteBufferSize int
	SendBuffer      int
	CheckOrigin     func(r *http.Request) bool
	// Resolve fills and validates a filter sent by a client; nil means query.Filter.Normalize
	Resolve Resolver
}

// DefaultConfig returns default WebSocket settings
func DefaultConfig() Config {
	return Config{
		WriteTimeout:    10 * time.Second,
		ReadTimeout:     60 * time.Second,
		PingInterval:    30 * time.Second,
		MaxMessageSize:  1024,
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		SendBuffer:      256,
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}
}

func withDefaults(c Config) Config {
	d := DefaultConfig()
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = d.WriteTimeout
	}
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = d.ReadTimeout
	}
	if c.PingInterval <= 0 {
		c.PingInterval = d.PingInterval
	}
	if c.MaxMessageSize <= 0 {
		c.MaxMessageSize = d.MaxMessageSize
	}
	if c.SendBuffer <= 0 {
		c.SendBuffer = d.SendBuffer
	}
	if c.CheckOrigin == nil {
		c.CheckOrigin = d.CheckOrigin
	}
	if c.Resolve == nil {
		c.Resolve = query.Filter.Normalize
	}
	return c
}

// Resolver turns a client filter into the one the feed runs
type Resolver func(f query.Filter) (query.Filter, error)

// Source returns the current slot snapshot
type Source func() []domain.Slot

// Renderer turns a filtered slot list into the payload actor receives
type Renderer func(slots []domain.Slot, actor string) any

// FrameType tags server frames
type FrameType string

const (
	FrameSnapshot FrameType = "snapshot"
	FrameTick     FrameType = "tick"
	FrameEvent    FrameType = "event"
	FrameError    FrameType = "error"
)

// Frame is one server-to-client message
type Frame struct {
	Type  FrameType     `json:"type"`
	Live  int           `json:"live,omitempty"`
	Ended []int64       `json:"ended,omitempty"`
	Event *events.Event `json:"event,omitempty"`
	Slots any           `json:"slots,omitempty"`
	Error string        `json:"error,omitempty"`
}

// ClientMessage is one client-to-server message. Type "filter" replaces the client's filter.
type ClientMessage struct {
	Type   string       `json:"type"`
	Filter query.Filter `json:"filter"`
}

// Stats describes connected clients
type Stats struct {
	Clients int `json:"clients"`
}

type broadcast struct {
	tick  *store.TickResult
	event *events.Event
}

// Hub tracks clients and fans out tick and event frames.
// Each client receives the list filtered by its own filter.
type Hub struct {
	clients map[*Client]bool
	mu      sync.RWMutex

	upgrader websocket.Upgrader
	config   Config

	source Source
	render Renderer

	broadcastCh chan broadcast
}

// NewHub creates a hub reading snapshots from source
func NewHub(source Source, render Renderer, config Config) *Hub {
	if render == nil {
		render = func(slots []domain.Slot, _ string) any { return slots }
	}
	config = withDefaults(config)
	return &Hub{
		clients: make(map[*Client]bool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  config.ReadBufferSize,
			WriteBufferSize: config.WriteBufferSize,
			CheckOrigin:     config.CheckOrigin,
		},
		config:      config,
		source:      source,
		render:      render,
		broadcastCh: make(chan broadcast, 1000),
	}
}

// Start processes broadcasts until ctx is done, then disconnects every client
func (h *Hub) Start(ctx context.Context) {
	logger.Info("live hub started")

	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			logger.Info("live hub shutting down")
			return
		case msg := <-h.broadcastCh:
			h.handleBroadcast(msg)
		}
	}
}

// PublishTick queues a tick frame. Its signature matches store.TickFunc.
func (h *Hub) PublishTick(ctx context.Context, res store.TickResult) {
	h.enqueue(broadcast{tick: &res})
}

// Publish queues an event frame, so the hub can sit behind an events.Publisher
func (h *Hub) Publish(ctx context.Context, event events.Event) error {
	h.enqueue(broadcast{event: &event})
	return nil
}

// Close is a no-op; clients are closed when Start returns
func (h *Hub) Close() error { return nil }

func (h *Hub) enqueue(msg broadcast) {
	select {
	case h.broadcastCh <- msg:
	default:
		logger.Warn("live broadcast channel full, dropping frame")
	}
}

// Serve upgrades the request and registers a client with the given filter
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, actor string, filter query.Filter) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return fmt.Errorf("failed to upgrade connection: %w", err)
	}

	c := &Client{
		ID:          uuid.New().String(),
		Actor:       actor,
		ConnectedAt: time.Now(),
		conn:        conn,
		send:        make(chan []byte, h.config.SendBuffer),
		hub:         h,
		filter:      filter,
	}

	h.register(c)
	c.deliver(h.snapshotFrame(c))

	go c.writePump()
	go c.readPump()

	logger.Info("live client connected",
		zap.String("client_id", c.ID),
		zap.String("actor", actor),
	)
	return nil
}

// Stats returns the number of connected clients
func (h *Hub) Stats() Stats {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return Stats{Clients: len(h.clients)}
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = true
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
		logger.Debug("live client unregistered", zap.String("client_id", c.ID))
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()

	for _, c := range clients {
		_ = c.conn.Close()
	}
}

func (h *Hub) handleBroadcast(msg broadcast) {
	h.mu.RLock()
	targets := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	if len(targets) == 0 {
		return
	}

	var shared []byte
	var snapshot []domain.Slot
	if msg.event != nil {
		shared = marshal(Frame{Type: FrameEvent, Event: msg.event})
	} else {
		snapshot = h.source()
	}

	for _, c := range targets {
		data := shared
		if msg.tick != nil {
			data = marshal(Frame{
				Type:  FrameTick,
				Live:  msg.tick.Live,
				Ended: msg.tick.Ended,
				Slots: h.render(query.Run(snapshot, c.Filter()), c.Actor),
			})
		}
		if data == nil {
			continue
		}
		if !c.deliver(data) {
			logger.Warn("live client send buffer full, closing connection", zap.String("client_id", c.ID))
			h.unregister(c)
			_ = c.conn.Close()
		}
	}
}

func (h *Hub) snapshotFrame(c *Client) []byte {
	return marshal(Frame{
		Type:  FrameSnapshot,
		Slots: h.render(query.Run(h.source(), c.Filter()), c.Actor),
	})
}

func marshal(f Frame) []byte {
	data, err := json.Marshal(f)
	if err != nil {
		logger.Error("failed to marshal live frame", zap.Error(err))
		return nil
	}
	return data
}
