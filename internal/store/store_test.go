package store

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hwangseoul-netizen/tention-mini/internal/catalog"
	"github.com/hwangseoul-netizen/tention-mini/internal/domain"
)

func slotWith(id int64, secsLeft, capacity int) domain.Slot {
	return domain.Slot{
		ID:        id,
		Origin:    domain.OriginCore,
		Type:      domain.Vibes,
		City:      domain.SF,
		Time:      domain.Morning,
		TotalMins: 30,
		TotalSecs: 30 * 60,
		SecsLeft:  secsLeft,
		Max:       capacity,
		Attendees: []string{},
		Present:   []string{},
	}
}

func TestNew_OrdersNewestFirst(t *testing.T) {
	s := New(catalog.Generate())
	snap := s.Snapshot()

	require.Len(t, snap, catalog.Size)
	assert.Equal(t, int64(81), snap[0].ID)
	assert.Equal(t, int64(1), snap[len(snap)-1].ID)
}

func TestStore_Get(t *testing.T) {
	s := New([]domain.Slot{slotWith(7, 100, 2)})

	got, err := s.Get(7)
	require.NoError(t, err)
	assert.Equal(t, int64(7), got.ID)

	_, err = s.Get(8)
	assert.ErrorIs(t, err, ErrSlotNotFound)
}

func TestStore_Join(t *testing.T) {
	t.Run("adds attendee", func(t *testing.T) {
		s := New([]domain.Slot{slotWith(1, 100, 2)})

		slot, outcome, err := s.Join(1, "You")
		require.NoError(t, err)
		assert.Equal(t, OutcomeChanged, outcome)
		assert.Equal(t, []string{"You"}, slot.Attendees)
	})

	t.Run("second join is a no-op", func(t *testing.T) {
		s := New([]domain.Slot{slotWith(1, 100, 2)})
		_, _, _ = s.Join(1, "You")

		slot, outcome, err := s.Join(1, "You")
		require.NoError(t, err)
		assert.Equal(t, OutcomeUnchanged, outcome)
		assert.Equal(t, []string{"You"}, slot.Attendees)
	})

	t.Run("full slot rejects", func(t *testing.T) {
		s := New([]domain.Slot{slotWith(1, 100, 2)})
		_, _, _ = s.Join(1, "Ana")
		_, _, _ = s.Join(1, "Ben")

		slot, outcome, err := s.Join(1, "You")
		assert.ErrorIs(t, err, ErrSlotFull)
		assert.Equal(t, OutcomeUnchanged, outcome)
		assert.Equal(t, []string{"Ana", "Ben"}, slot.Attendees)

		stored, _ := s.Get(1)
		assert.Equal(t, []string{"Ana", "Ben"}, stored.Attendees)
	})

	t.Run("unknown slot", func(t *testing.T) {
		s := New(nil)
		_, _, err := s.Join(99, "You")
		assert.ErrorIs(t, err, ErrSlotNotFound)
	})
}

func TestStore_JoinLeaveRoundTrip(t *testing.T) {
	s := New([]domain.Slot{slotWith(1, 100, 3)})
	before, _ := s.Get(1)

	_, _, err := s.Join(1, "You")
	require.NoError(t, err)
	_, _, err = s.Arrive(1, "You")
	require.NoError(t, err)

	after, outcome, err := s.Leave(1, "You")
	require.NoError(t, err)
	assert.Equal(t, OutcomeChanged, outcome)
	assert.Equal(t, before.Attendees, after.Attendees)
	assert.Equal(t, before.Present, after.Present)
}

func TestStore_LeaveWithoutJoin(t *testing.T) {
	s := New([]domain.Slot{slotWith(1, 100, 2)})
	_, _, _ = s.Arrive(1, "You")

	slot, outcome, err := s.Leave(1, "You")
	require.NoError(t, err)
	assert.Equal(t, OutcomeUnchanged, outcome)
	assert.Equal(t, []string{"You"}, slot.Present)
}

func TestStore_Arrive(t *testing.T) {
	s := New([]domain.Slot{slotWith(1, 100, 2)})

	slot, outcome, err := s.Arrive(1, "You")
	require.NoError(t, err)
	assert.Equal(t, OutcomeChanged, outcome)
	assert.Equal(t, []string{"You"}, slot.Present)
	assert.Empty(t, slot.Attendees)

	slot, outcome, err = s.Arrive(1, "You")
	require.NoError(t, err)
	assert.Equal(t, OutcomeUnchanged, outcome)
	assert.Equal(t, []string{"You"}, slot.Present)
}

func TestStore_Extend(t *testing.T) {
	tests := []struct {
		name       string
		secsLeft   int
		extendedBy int
		wantErr    error
	}{
		{"inside window", 300, 0, nil},
		{"at zero", 0, 0, nil},
		{"just outside window", 301, 0, ErrExtendTooEarly},
		{"at cap", 100, 20, ErrExtendLimit},
		{"cap checked before window", 900, 20, ErrExtendLimit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seed := slotWith(1, tt.secsLeft, 2)
			seed.ExtendedBy = tt.extendedBy
			s := New([]domain.Slot{seed})

			slot, outcome, err := s.Extend(1)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, OutcomeUnchanged, outcome)
				assert.Equal(t, seed.SecsLeft, slot.SecsLeft)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, OutcomeChanged, outcome)
			assert.Equal(t, tt.extendedBy+10, slot.ExtendedBy)
			assert.Equal(t, seed.TotalMins+10, slot.TotalMins)
			assert.Equal(t, seed.TotalSecs+600, slot.TotalSecs)
			assert.Equal(t, tt.secsLeft+600, slot.SecsLeft)
		})
	}
}

func TestStore_ExtendTwiceThenLimit(t *testing.T) {
	s := New([]domain.Slot{slotWith(1, 200, 2)})

	_, _, err := s.Extend(1)
	require.NoError(t, err)

	// back inside the window for the second extension
	for i := 0; i < 600; i++ {
		s.Tick()
	}
	slot, _, err := s.Extend(1)
	require.NoError(t, err)
	assert.Equal(t, 20, slot.ExtendedBy)

	for i := 0; i < 600; i++ {
		s.Tick()
	}
	_, _, err = s.Extend(1)
	assert.ErrorIs(t, err, ErrExtendLimit)
}

func TestStore_Tick(t *testing.T) {
	s := New([]domain.Slot{slotWith(1, 5, 2), slotWith(2, 100, 2), slotWith(3, 0, 2)})

	var ended []int64
	for i := 0; i < 10; i++ {
		res := s.Tick()
		ended = append(ended, res.Ended...)
	}

	a, _ := s.Get(1)
	b, _ := s.Get(2)
	c, _ := s.Get(3)
	assert.Equal(t, 0, a.SecsLeft)
	assert.Equal(t, 90, b.SecsLeft)
	assert.Equal(t, 0, c.SecsLeft)
	assert.Equal(t, []int64{1}, ended)
}

func TestStore_CopyOnWrite(t *testing.T) {
	s := New([]domain.Slot{slotWith(1, 100, 3)})
	before, _ := s.Get(1)
	snap := s.Snapshot()

	_, _, _ = s.Join(1, "You")
	s.Tick()

	assert.Empty(t, before.Attendees)
	assert.Equal(t, 100, before.SecsLeft)
	assert.Empty(t, snap[0].Attendees)
	assert.Equal(t, 100, snap[0].SecsLeft)

	before.Attendees = append(before.Attendees, "intruder")
	stored, _ := s.Get(1)
	assert.Equal(t, []string{"You"}, stored.Attendees)
}

func TestStore_Joined(t *testing.T) {
	s := New([]domain.Slot{slotWith(1, 100, 2), slotWith(2, 100, 2), slotWith(3, 100, 2)})
	_, _, _ = s.Join(1, "You")
	_, _, _ = s.Join(3, "You")
	_, _, _ = s.Join(2, "Ana")

	joined := s.Joined("You")
	require.Len(t, joined, 2)
	assert.Equal(t, int64(3), joined[0].ID)
	assert.Equal(t, int64(1), joined[1].ID)
	assert.Empty(t, s.Joined("Nobody"))
}

func TestStore_Create(t *testing.T) {
	s := New(catalog.Generate())

	form := DefaultCreateForm(domain.SF, domain.AnyTime)
	form.Duration = 35
	form.StartText = "23:50"

	slot, err := s.Create(form)
	require.NoError(t, err)

	assert.Equal(t, int64(82), slot.ID)
	assert.Equal(t, domain.OriginUser, slot.Origin)
	assert.Equal(t, 40, slot.TotalMins)
	assert.Equal(t, 2400, slot.TotalSecs)
	assert.Equal(t, 2160, slot.SecsLeft)
	assert.Equal(t, "23:50", slot.Start)
	assert.Equal(t, "00:30", slot.End)
	assert.Equal(t, domain.Night, slot.Time)
	assert.Equal(t, "Walk & Talk", slot.Title)
	assert.Equal(t, domain.Vibes.DefaultDesc(), slot.Desc)
	assert.Equal(t, 0.0, slot.ProofScore)

	snap := s.Snapshot()
	assert.Equal(t, slot.ID, snap[0].ID)
	assert.Equal(t, catalog.Size+1, s.Len())

	next, err := s.Create(form)
	require.NoError(t, err)
	assert.Equal(t, int64(83), next.ID)
}

func TestStore_CreateRejectsInvalid(t *testing.T) {
	s := New(nil)
	form := DefaultCreateForm(domain.AllCities, domain.AnyTime)

	_, err := s.Create(form)
	assert.ErrorIs(t, err, ErrInvalidForm)
	assert.Equal(t, 0, s.Len())
}

func TestStore_ConcurrentJoins(t *testing.T) {
	s := New([]domain.Slot{slotWith(1, 100, 5)})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _, _ = s.Join(1, string(rune('A'+i)))
			s.Tick()
		}(i)
	}
	wg.Wait()

	slot, _ := s.Get(1)
	assert.Len(t, slot.Attendees, 5)
	assert.Equal(t, 50, slot.SecsLeft)
}

func TestStore_InvariantsHoldAfterMixedOperations(t *testing.T) {
	s := New(catalog.Generate())
	actors := []string{"You", "Ana", "Ben", "Cy"}

	for round := 0; round < 400; round++ {
		id := int64(round%81 + 1)
		actor := actors[round%len(actors)]
		switch round % 5 {
		case 0:
			_, _, _ = s.Join(id, actor)
		case 1:
			_, _, _ = s.Arrive(id, actor)
		case 2:
			_, _, _ = s.Extend(id)
		case 3:
			_, _, _ = s.Leave(id, actor)
		case 4:
			s.Tick()
		}
	}

	for _, slot := range s.Snapshot() {
		assert.GreaterOrEqual(t, slot.SecsLeft, 0)
		assert.LessOrEqual(t, slot.SecsLeft, slot.TotalSecs)
		assert.LessOrEqual(t, len(slot.Attendees), slot.Max)
		assert.LessOrEqual(t, slot.ExtendedBy, domain.ExtendCapMins)
	}
}
