// Package activity keeps a per-slot log of participation actions.
package activity

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Action is what happened to a slot
type Action string

const (
	ActionCreated  Action = "created"
	ActionJoined   Action = "joined"
	ActionLeft     Action = "left"
	ActionArrived  Action = "arrived"
	ActionExtended Action = "extended"
	ActionEnded    Action = "ended"
	ActionRejected Action = "rejected"
)

// DefaultPerSlotLimit bounds how many entries are kept for one slot
const DefaultPerSlotLimit = 200

// ErrInvalidEntry is returned when an entry has no slot or action
var ErrInvalidEntry = errors.New("invalid activity entry")

// Entry is one recorded action
type Entry struct {
	ID        string    `json:"id"`
	SlotID    int64     `json:"slot_id"`
	Actor     string    `json:"actor,omitempty"`
	Action    Action    `json:"action"`
	Reason    string    `json:"reason,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Ledger stores activity entries
type Ledger interface {
	// Record appends an entry, filling ID and Timestamp when empty
	Record(ctx context.Context, entry Entry) (Entry, error)
	// ForSlot returns a slot's entries oldest first
	ForSlot(ctx context.Context, slotID int64) ([]Entry, error)
}

// MemoryLedger is an in-memory Ledger. Each slot keeps its newest entries up to a limit.
type MemoryLedger struct {
	mu      sync.RWMutex
	entries map[int64][]Entry
	limit   int
	now     func() time.Time
}

// NewMemoryLedger creates a ledger; limit <= 0 uses DefaultPerSlotLimit
func NewMemoryLedger(limit int) *MemoryLedger {
	if limit <= 0 {
		limit = DefaultPerSlotLimit
	}
	return &MemoryLedger{
		entries: make(map[int64][]Entry),
		limit:   limit,
		now:     time.Now,
	}
}

// Record appends an entry
func (l *MemoryLedger) Record(ctx context.Context, entry Entry) (Entry, error) {
	if entry.SlotID == 0 || entry.Action == "" {
		return Entry{}, ErrInvalidEntry
	}
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = l.now()
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	list := append(l.entries[entry.SlotID], entry)
	if over := len(list) - l.limit; over > 0 {
		list = append([]Entry(nil), list[over:]...)
	}
	l.entries[entry.SlotID] = list

	return entry, nil
}

// ForSlot returns a copy of the slot's entries
func (l *MemoryLedger) ForSlot(ctx context.Context, slotID int64) ([]Entry, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	list := l.entries[slotID]
	result := make([]Entry, len(list))
	copy(result, list)
	return result, nil
}

// Count returns the number of stored entries across all slots
func (l *MemoryLedger) Count() int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	n := 0
	for _, list := range l.entries {
		n += len(list)
	}
	return n
}

// Clear removes all entries
func (l *MemoryLedger) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = make(map[int64][]Entry)
}
