// Package store owns the authoritative in-memory slot collection.
package store

import (
	"errors"
	"sort"
	"sync"

	"github.com/hwangseoul-netizen/tention-mini/internal/domain"
)

var (
	// ErrSlotNotFound is returned when no slot has the requested id
	ErrSlotNotFound = errors.New("slot not found")
	// ErrSlotFull is returned when joining a slot with no seat left
	ErrSlotFull = errors.New("slot is full")
	// ErrExtendLimit is returned once a slot has used its whole extension budget
	ErrExtendLimit = errors.New("slot already fully extended")
	// ErrExtendTooEarly is returned when extending outside the closing window
	ErrExtendTooEarly = errors.New("slot can only be extended near the end")
	// ErrInvalidForm is returned when a create form fails validation
	ErrInvalidForm = errors.New("invalid slot form")
)

// Outcome tells whether an operation changed the slot
type Outcome string

const (
	OutcomeChanged   Outcome = "changed"
	OutcomeUnchanged Outcome = "unchanged"
)

// TickResult summarises one countdown step
type TickResult struct {
	// Ended lists slots whose countdown reached zero on this tick
	Ended []int64
	// Live is the number of slots still counting down
	Live int
}

// Store keeps slots keyed by id plus their display order. Stored values are
// never mutated in place: every change replaces the slot with an updated copy,
// so a value handed out earlier keeps describing the state it was read in.
type Store struct {
	mu     sync.RWMutex
	slots  map[int64]domain.Slot
	order  []int64
	nextID int64
}

// New creates a store seeded with the given slots, displayed newest id first
func New(seed []domain.Slot) *Store {
	s := &Store{
		slots: make(map[int64]domain.Slot, len(seed)),
		order: make([]int64, 0, len(seed)),
	}

	for _, slot := range seed {
		if _, dup := s.slots[slot.ID]; dup {
			continue
		}
		s.slots[slot.ID] = slot.Clone()
		s.order = append(s.order, slot.ID)
		if slot.ID > s.nextID {
			s.nextID = slot.ID
		}
	}

	sort.SliceStable(s.order, func(i, j int) bool {
		return s.order[i] > s.order[j]
	})

	return s
}

// Len returns the number of stored slots
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// Get returns a copy of the slot with the given id
func (s *Store) Get(id int64) (domain.Slot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	slot, ok := s.slots[id]
	if !ok {
		return domain.Slot{}, ErrSlotNotFound
	}
	return slot.Clone(), nil
}

// Snapshot returns copies of every slot in display order
func (s *Store) Snapshot() []domain.Slot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Slot, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.slots[id].Clone())
	}
	return out
}

// Joined returns the slots actor has checked in to, in display order
func (s *Store) Joined(actor string) []domain.Slot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Slot, 0)
	for _, id := range s.order {
		if slot := s.slots[id]; slot.HasAttendee(actor) {
			out = append(out, slot.Clone())
		}
	}
	return out
}

// Create validates the form, builds a user slot with the next id and
// places it at the front of the display order.
func (s *Store) Create(form CreateForm) (domain.Slot, error) {
	if err := form.Validate(); err != nil {
		return domain.Slot{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	slot := form.Build(s.nextID)
	s.slots[slot.ID] = slot
	s.order = append([]int64{slot.ID}, s.order...)

	return slot.Clone(), nil
}

// Join checks actor in. Joining twice is a no-op; joining a full slot fails.
func (s *Store) Join(id int64, actor string) (domain.Slot, Outcome, error) {
	return s.update(id, func(slot *domain.Slot) (Outcome, error) {
		if slot.HasAttendee(actor) {
			return OutcomeUnchanged, nil
		}
		if slot.IsFull() {
			return OutcomeUnchanged, ErrSlotFull
		}
		slot.Attendees = append(slot.Attendees, actor)
		return OutcomeChanged, nil
	})
}

// Leave removes actor from attendees and present. Leaving a slot the actor
// never joined is a no-op.
func (s *Store) Leave(id int64, actor string) (domain.Slot, Outcome, error) {
	return s.update(id, func(slot *domain.Slot) (Outcome, error) {
		if !slot.HasAttendee(actor) {
			return OutcomeUnchanged, nil
		}
		slot.Attendees = without(slot.Attendees, actor)
		slot.Present = without(slot.Present, actor)
		return OutcomeChanged, nil
	})
}

// Arrive marks actor as present at the venue. Joining first is not required.
func (s *Store) Arrive(id int64, actor string) (domain.Slot, Outcome, error) {
	return s.update(id, func(slot *domain.Slot) (Outcome, error) {
		if slot.IsPresent(actor) {
			return OutcomeUnchanged, nil
		}
		slot.Present = append(slot.Present, actor)
		return OutcomeChanged, nil
	})
}

// Extend adds one extension step to a slot inside its closing window.
// The cap is checked before the window.
func (s *Store) Extend(id int64) (domain.Slot, Outcome, error) {
	return s.update(id, func(slot *domain.Slot) (Outcome, error) {
		if slot.ExtendedBy >= domain.ExtendCapMins {
			return OutcomeUnchanged, ErrExtendLimit
		}
		if slot.SecsLeft > domain.ExtendWindowSecs {
			return OutcomeUnchanged, ErrExtendTooEarly
		}
		slot.ExtendedBy += domain.ExtendStepMins
		slot.TotalMins += domain.ExtendStepMins
		slot.TotalSecs += domain.ExtendStepMins * 60
		slot.SecsLeft += domain.ExtendStepMins * 60
		return OutcomeChanged, nil
	})
}

// Tick advances every countdown by one second, floored at zero
func (s *Store) Tick() TickResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	var res TickResult
	for _, id := range s.order {
		slot := s.slots[id]
		if slot.SecsLeft <= 0 {
			continue
		}
		// only the counter changes, so the slices can be shared with the old value
		slot.SecsLeft--
		s.slots[id] = slot
		if slot.SecsLeft == 0 {
			res.Ended = append(res.Ended, id)
		} else {
			res.Live++
		}
	}
	return res
}

func (s *Store) update(id int64, fn func(*domain.Slot) (Outcome, error)) (domain.Slot, Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.slots[id]
	if !ok {
		return domain.Slot{}, OutcomeUnchanged, ErrSlotNotFound
	}

	next := current.Clone()
	outcome, err := fn(&next)
	if err != nil || outcome == OutcomeUnchanged {
		return current.Clone(), OutcomeUnchanged, err
	}

	s.slots[id] = next
	return next.Clone(), OutcomeChanged, nil
}

func without(list []string, v string) []string {
	out := make([]string, 0, len(list))
	for _, item := range list {
		if item != v {
			out = append(out, item)
		}
	}
	return out
}
