package activity

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLedger_Record(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryLedger(0)
	fixed := time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return fixed }

	entry, err := l.Record(ctx, Entry{SlotID: 7, Actor: "You", Action: ActionJoined})
	require.NoError(t, err)

	_, parseErr := uuid.Parse(entry.ID)
	assert.NoError(t, parseErr)
	assert.Equal(t, fixed, entry.Timestamp)

	got, err := l.ForSlot(ctx, 7)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, entry, got[0])
}

func TestMemoryLedger_RecordInvalid(t *testing.T) {
	l := NewMemoryLedger(10)

	_, err := l.Record(context.Background(), Entry{Action: ActionJoined})
	assert.ErrorIs(t, err, ErrInvalidEntry)

	_, err = l.Record(context.Background(), Entry{SlotID: 1})
	assert.ErrorIs(t, err, ErrInvalidEntry)

	assert.Equal(t, 0, l.Count())
}

func TestMemoryLedger_KeepsNewestUpToLimit(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryLedger(3)

	actions := []Action{ActionCreated, ActionJoined, ActionArrived, ActionExtended, ActionLeft}
	for _, a := range actions {
		_, err := l.Record(ctx, Entry{SlotID: 1, Action: a})
		require.NoError(t, err)
	}

	got, err := l.ForSlot(ctx, 1)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, ActionArrived, got[0].Action)
	assert.Equal(t, ActionLeft, got[2].Action)
}

func TestMemoryLedger_ForSlotReturnsCopy(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryLedger(10)
	_, _ = l.Record(ctx, Entry{SlotID: 1, Action: ActionJoined})

	got, _ := l.ForSlot(ctx, 1)
	got[0].Action = ActionLeft

	again, _ := l.ForSlot(ctx, 1)
	assert.Equal(t, ActionJoined, again[0].Action)

	empty, err := l.ForSlot(ctx, 2)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestMemoryLedger_Clear(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryLedger(10)
	_, _ = l.Record(ctx, Entry{SlotID: 1, Action: ActionJoined})
	_, _ = l.Record(ctx, Entry{SlotID: 2, Action: ActionJoined})
	assert.Equal(t, 2, l.Count())

	l.Clear()
	assert.Equal(t, 0, l.Count())
}
