// Package events publishes slot lifecycle events to an external bus.
package events

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"
	"time"

	"github.com/hwangseoul-netizen/tention-mini/internal/domain"
)

// Type is the kind of lifecycle event
type Type string

const (
	TypeSlotCreated  Type = "slot.created"
	TypeSlotJoined   Type = "slot.joined"
	TypeSlotLeft     Type = "slot.left"
	TypeSlotArrived  Type = "slot.arrived"
	TypeSlotExtended Type = "slot.extended"
	TypeSlotEnded    Type = "slot.ended"
)

// Event is published whenever a slot changes in a way other clients care about
type Event struct {
	EventType  Type            `json:"event_type"`
	SlotID     int64           `json:"slot_id"`
	Actor      string          `json:"actor,omitempty"`
	Category   domain.Category `json:"category,omitempty"`
	City       domain.CityCode `json:"city,omitempty"`
	Attendees  int             `json:"attendees"`
	Max        int             `json:"max"`
	SecsLeft   int             `json:"secs_left"`
	ExtendedBy int             `json:"extended_by"`
	Timestamp  time.Time       `json:"timestamp"`
}

// NewEvent builds an event from the slot's state after the change
func NewEvent(t Type, slot domain.Slot, actor string) Event {
	return Event{
		EventType:  t,
		SlotID:     slot.ID,
		Actor:      actor,
		Category:   slot.Type,
		City:       slot.City,
		Attendees:  len(slot.Attendees),
		Max:        slot.Max,
		SecsLeft:   slot.SecsLeft,
		ExtendedBy: slot.ExtendedBy,
		Timestamp:  time.Now().UTC(),
	}
}

// Key returns the partition key so one slot's events stay ordered
func (e Event) Key() string {
	return strconv.FormatInt(e.SlotID, 10)
}

// Marshal encodes the event as JSON
func (e Event) Marshal() ([]byte, error) {
	return json.Marshal(e)
}

// Publisher delivers events to a bus
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// NoopPublisher drops every event
type NoopPublisher struct{}

// Publish does nothing
func (NoopPublisher) Publish(ctx context.Context, event Event) error { return nil }

// Close does nothing
func (NoopPublisher) Close() error { return nil }

// MemoryPublisher keeps published events in memory
type MemoryPublisher struct {
	mu     sync.Mutex
	events []Event
}

// NewMemoryPublisher creates an empty in-memory publisher
func NewMemoryPublisher() *MemoryPublisher {
	return &MemoryPublisher{}
}

// Publish stores the event
func (p *MemoryPublisher) Publish(ctx context.Context, event Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

// Events returns a copy of everything published so far
func (p *MemoryPublisher) Events() []Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Event, len(p.events))
	copy(out, p.events)
	return out
}

// Close does nothing
func (p *MemoryPublisher) Close() error { return nil }

// FanoutPublisher publishes every event to each of its publishers
type FanoutPublisher struct {
	publishers []Publisher
}

// Fanout combines publishers. The first error is returned after all publishers ran.
func Fanout(publishers ...Publisher) *FanoutPublisher {
	return &FanoutPublisher{publishers: publishers}
}

// Publish sends the event to every publisher
func (f *FanoutPublisher) Publish(ctx context.Context, event Event) error {
	var firstErr error
	for _, p := range f.publishers {
		if err := p.Publish(ctx, event); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Close closes every publisher
func (f *FanoutPublisher) Close() error {
	var firstErr error
	for _, p := range f.publishers {
		if err := p.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
