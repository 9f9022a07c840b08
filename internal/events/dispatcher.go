package events

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hwangseoul-netizen/tention-mini/pkg/logger"
	"go.uber.org/zap"
)

// ErrDispatcherRunning is returned when Start is called twice
var ErrDispatcherRunning = errors.New("dispatcher already running")

// DispatcherConfig configures the async dispatcher
type DispatcherConfig struct {
	BufferSize     int
	PublishTimeout time.Duration
}

// DefaultDispatcherConfig returns the default dispatcher configuration
func DefaultDispatcherConfig() *DispatcherConfig {
	return &DispatcherConfig{
		BufferSize:     1000,
		PublishTimeout: 2 * time.Second,
	}
}

// DispatcherStats holds dispatcher counters
type DispatcherStats struct {
	IsRunning bool  `json:"is_running"`
	Published int64 `json:"published"`
	Failed    int64 `json:"failed"`
	Dropped   int64 `json:"dropped"`
}

// Dispatcher hands events to a Publisher off the request path.
// Emit never blocks; events are dropped when the buffer is full.
type Dispatcher struct {
	publisher Publisher
	config    *DispatcherConfig
	queue     chan Event

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}

	published atomic.Int64
	failed    atomic.Int64
	dropped   atomic.Int64
}

// NewDispatcher creates a dispatcher around publisher
func NewDispatcher(publisher Publisher, config *DispatcherConfig) *Dispatcher {
	if publisher == nil {
		publisher = NoopPublisher{}
	}
	if config == nil {
		config = DefaultDispatcherConfig()
	}
	if config.BufferSize <= 0 {
		config.BufferSize = DefaultDispatcherConfig().BufferSize
	}
	if config.PublishTimeout <= 0 {
		config.PublishTimeout = DefaultDispatcherConfig().PublishTimeout
	}
	return &Dispatcher{
		publisher: publisher,
		config:    config,
		queue:     make(chan Event, config.BufferSize),
	}
}

// Emit queues an event for publishing
func (d *Dispatcher) Emit(event Event) {
	select {
	case d.queue <- event:
	default:
		d.dropped.Add(1)
		logger.Warn("event dropped, dispatcher buffer full",
			zap.String("event_type", string(event.EventType)),
			zap.Int64("slot_id", event.SlotID),
		)
	}
}

// Start begins draining the queue in a background goroutine
func (d *Dispatcher) Start(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.running {
		return ErrDispatcherRunning
	}

	ctx, cancel := context.WithCancel(ctx)
	d.cancel = cancel
	d.done = make(chan struct{})
	d.running = true

	go d.run(ctx, d.done)
	return nil
}

// Stop drains what is already queued, then stops the worker
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if !d.running {
		d.mu.Unlock()
		return
	}
	d.running = false
	cancel, done := d.cancel, d.done
	d.mu.Unlock()

	cancel()
	<-done
}

// Close stops the dispatcher and closes the publisher
func (d *Dispatcher) Close() error {
	d.Stop()
	return d.publisher.Close()
}

// Stats returns a snapshot of the counters
func (d *Dispatcher) Stats() DispatcherStats {
	d.mu.Lock()
	running := d.running
	d.mu.Unlock()

	return DispatcherStats{
		IsRunning: running,
		Published: d.published.Load(),
		Failed:    d.failed.Load(),
		Dropped:   d.dropped.Load(),
	}
}

func (d *Dispatcher) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	for {
		select {
		case <-ctx.Done():
			d.drain()
			return
		case event := <-d.queue:
			d.publish(event)
		}
	}
}

func (d *Dispatcher) drain() {
	for {
		select {
		case event := <-d.queue:
			d.publish(event)
		default:
			return
		}
	}
}

func (d *Dispatcher) publish(event Event) {
	ctx, cancel := context.WithTimeout(context.Background(), d.config.PublishTimeout)
	defer cancel()

	if err := d.publisher.Publish(ctx, event); err != nil {
		d.failed.Add(1)
		logger.Error("failed to publish event",
			zap.String("event_type", string(event.EventType)),
			zap.Int64("slot_id", event.SlotID),
			zap.Error(err),
		)
		return
	}
	d.published.Add(1)
}
