package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/hwangseoul-netizen/tention-mini/pkg/logger"
)

// ErrTickerRunning is returned when Start is called twice
var ErrTickerRunning = errors.New("ticker already running")

// TickerConfig holds configuration for the countdown ticker
type TickerConfig struct {
	// Interval between countdown steps
	Interval time.Duration
}

// DefaultTickerConfig returns the one-second countdown
func DefaultTickerConfig() *TickerConfig {
	return &TickerConfig{
		Interval: time.Second,
	}
}

// TickFunc is called after every countdown step
type TickFunc func(ctx context.Context, res TickResult)

// TickerStats holds ticker statistics
type TickerStats struct {
	IsRunning      bool      `json:"is_running"`
	TotalTicks     int64     `json:"total_ticks"`
	TotalEnded     int64     `json:"total_ended"`
	LastTickTime   time.Time `json:"last_tick_time"`
	LastEndedCount int       `json:"last_ended_count"`
}

// Ticker drives Store.Tick on a fixed interval. Steps never overlap: the
// next one starts only after the previous step and its callbacks return.
type Ticker struct {
	store  *Store
	clock  clockwork.Clock
	config *TickerConfig

	mu       sync.Mutex
	running  bool
	cancel   context.CancelFunc
	done     chan struct{}
	handlers []TickFunc

	totalTicks     int64
	totalEnded     int64
	lastTickTime   time.Time
	lastEndedCount int
}

// NewTicker creates a ticker. A nil clock means wall-clock time.
func NewTicker(store *Store, clock clockwork.Clock, config *TickerConfig) *Ticker {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if config == nil || config.Interval <= 0 {
		config = DefaultTickerConfig()
	}
	return &Ticker{
		store:  store,
		clock:  clock,
		config: config,
	}
}

// OnTick registers a callback run after every step. Register before Start.
func (t *Ticker) OnTick(fn TickFunc) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.handlers = append(t.handlers, fn)
}

// Start launches the countdown loop. It stops when ctx is cancelled or Stop is called.
func (t *Ticker) Start(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.running {
		return ErrTickerRunning
	}

	runCtx, cancel := context.WithCancel(ctx)
	t.running = true
	t.cancel = cancel
	t.done = make(chan struct{})

	handlers := make([]TickFunc, len(t.handlers))
	copy(handlers, t.handlers)

	// create the clock ticker before returning so fake clocks see it
	tk := t.clock.NewTicker(t.config.Interval)
	go t.run(runCtx, tk, handlers)

	logger.Info("countdown ticker started", zap.Duration("interval", t.config.Interval))
	return nil
}

// Stop halts the loop and waits for an in-flight step to finish
func (t *Ticker) Stop() {
	t.mu.Lock()
	if !t.running {
		t.mu.Unlock()
		return
	}
	cancel, done := t.cancel, t.done
	t.mu.Unlock()

	cancel()
	<-done
	logger.Info("countdown ticker stopped")
}

// Stats returns a copy of the ticker statistics
func (t *Ticker) Stats() TickerStats {
	t.mu.Lock()
	defer t.mu.Unlock()
	return TickerStats{
		IsRunning:      t.running,
		TotalTicks:     t.totalTicks,
		TotalEnded:     t.totalEnded,
		LastTickTime:   t.lastTickTime,
		LastEndedCount: t.lastEndedCount,
	}
}

func (t *Ticker) run(ctx context.Context, tk clockwork.Ticker, handlers []TickFunc) {
	defer func() {
		tk.Stop()
		t.mu.Lock()
		t.running = false
		close(t.done)
		t.mu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-tk.Chan():
			t.step(ctx, handlers)
		}
	}
}

func (t *Ticker) step(ctx context.Context, handlers []TickFunc) {
	res := t.store.Tick()

	t.mu.Lock()
	t.totalTicks++
	t.totalEnded += int64(len(res.Ended))
	t.lastTickTime = t.clock.Now()
	t.lastEndedCount = len(res.Ended)
	t.mu.Unlock()

	if len(res.Ended) > 0 {
		logger.Debug("slots reached zero", zap.Int64s("slot_ids", res.Ended))
	}

	for _, fn := range handlers {
		fn(ctx, res)
	}
}
