package events

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/hwangseoul-netizen/tention-mini/internal/domain"
)

func testSlot() domain.Slot {
	return domain.Slot{
		ID:         42,
		Type:       domain.Workout,
		City:       domain.SF,
		Attendees:  []string{"A", "B", "You"},
		Max:        5,
		SecsLeft:   120,
		ExtendedBy: 10,
	}
}

func TestNewEvent(t *testing.T) {
	e := NewEvent(TypeSlotJoined, testSlot(), "You")

	assert.Equal(t, TypeSlotJoined, e.EventType)
	assert.Equal(t, int64(42), e.SlotID)
	assert.Equal(t, "You", e.Actor)
	assert.Equal(t, 3, e.Attendees)
	assert.Equal(t, 5, e.Max)
	assert.Equal(t, 10, e.ExtendedBy)
	assert.Equal(t, "42", e.Key())
	assert.False(t, e.Timestamp.IsZero())

	raw, err := e.Marshal()
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "slot.joined", decoded["event_type"])
	assert.Equal(t, "SF", decoded["city"])
}

type fakeRedis struct {
	channel string
	payload []byte
	err     error
	closed  bool
}

func (f *fakeRedis) Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd {
	f.channel = channel
	f.payload, _ = message.([]byte)
	return redis.NewIntResult(1, f.err)
}

func (f *fakeRedis) Close() error {
	f.closed = true
	return nil
}

func TestRedisPublisher_Publish(t *testing.T) {
	fake := &fakeRedis{}
	p := newRedisPublisher(fake, "tention.slots")

	require.NoError(t, p.Publish(context.Background(), NewEvent(TypeSlotCreated, testSlot(), "You")))
	assert.Equal(t, "tention.slots", fake.channel)

	var e Event
	require.NoError(t, json.Unmarshal(fake.payload, &e))
	assert.Equal(t, TypeSlotCreated, e.EventType)

	require.NoError(t, p.Close())
	assert.True(t, fake.closed)
}

func TestRedisPublisher_PublishError(t *testing.T) {
	fake := &fakeRedis{err: errors.New("connection refused")}
	p := newRedisPublisher(fake, "tention.slots")

	err := p.Publish(context.Background(), NewEvent(TypeSlotLeft, testSlot(), "You"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tention.slots")
}

type fakeKafka struct {
	records []*kgo.Record
	err     error
	closed  bool
}

func (f *fakeKafka) ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults {
	f.records = append(f.records, rs...)
	results := make(kgo.ProduceResults, 0, len(rs))
	for _, r := range rs {
		results = append(results, kgo.ProduceResult{Record: r, Err: f.err})
	}
	return results
}

func (f *fakeKafka) Close() { f.closed = true }

func TestKafkaPublisher_Publish(t *testing.T) {
	fake := &fakeKafka{}
	p := newKafkaPublisher(fake, "tention.slot-events")

	require.NoError(t, p.Publish(context.Background(), NewEvent(TypeSlotExtended, testSlot(), "You")))
	require.Len(t, fake.records, 1)

	r := fake.records[0]
	assert.Equal(t, "tention.slot-events", r.Topic)
	assert.Equal(t, "42", string(r.Key))
	require.Len(t, r.Headers, 1)
	assert.Equal(t, "slot.extended", string(r.Headers[0].Value))

	require.NoError(t, p.Close())
	assert.True(t, fake.closed)
}

func TestKafkaPublisher_PublishError(t *testing.T) {
	fake := &fakeKafka{err: kgo.ErrRecordTimeout}
	p := newKafkaPublisher(fake, "tention.slot-events")

	err := p.Publish(context.Background(), NewEvent(TypeSlotEnded, testSlot(), ""))
	assert.ErrorIs(t, err, kgo.ErrRecordTimeout)
}

type failingPublisher struct {
	mu    sync.Mutex
	calls int
}

func (f *failingPublisher) Publish(ctx context.Context, event Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return errors.New("bus down")
}

func (f *failingPublisher) Close() error { return nil }

func TestDispatcher_DeliversEvents(t *testing.T) {
	mem := NewMemoryPublisher()
	d := NewDispatcher(mem, nil)
	require.NoError(t, d.Start(context.Background()))

	for i := 0; i < 5; i++ {
		d.Emit(NewEvent(TypeSlotJoined, testSlot(), "You"))
	}

	require.Eventually(t, func() bool {
		return len(mem.Events()) == 5
	}, time.Second, 10*time.Millisecond)

	require.NoError(t, d.Close())
	stats := d.Stats()
	assert.False(t, stats.IsRunning)
	assert.Equal(t, int64(5), stats.Published)
}

func TestDispatcher_StartTwice(t *testing.T) {
	d := NewDispatcher(nil, nil)
	require.NoError(t, d.Start(context.Background()))
	defer d.Stop()

	assert.ErrorIs(t, d.Start(context.Background()), ErrDispatcherRunning)
}

func TestDispatcher_DropsWhenFull(t *testing.T) {
	mem := NewMemoryPublisher()
	d := NewDispatcher(mem, &DispatcherConfig{BufferSize: 2})

	for i := 0; i < 5; i++ {
		d.Emit(NewEvent(TypeSlotJoined, testSlot(), "You"))
	}
	assert.Equal(t, int64(3), d.Stats().Dropped)

	require.NoError(t, d.Start(context.Background()))
	d.Stop()
	assert.Len(t, mem.Events(), 2)
}

func TestDispatcher_CountsFailures(t *testing.T) {
	pub := &failingPublisher{}
	d := NewDispatcher(pub, &DispatcherConfig{BufferSize: 4, PublishTimeout: 50 * time.Millisecond})
	require.NoError(t, d.Start(context.Background()))

	d.Emit(NewEvent(TypeSlotArrived, testSlot(), "You"))
	d.Emit(NewEvent(TypeSlotArrived, testSlot(), "You"))
	d.Stop()

	assert.Equal(t, int64(2), d.Stats().Failed)
	assert.Equal(t, int64(0), d.Stats().Published)
}

func TestFanout(t *testing.T) {
	a := NewMemoryPublisher()
	b := &failingPublisher{}
	c := NewMemoryPublisher()
	f := Fanout(a, b, c)

	err := f.Publish(context.Background(), NewEvent(TypeSlotCreated, testSlot(), "You"))
	assert.EqualError(t, err, "bus down")
	assert.Len(t, a.Events(), 1)
	assert.Len(t, c.Events(), 1)
	assert.Equal(t, 1, b.calls)
	assert.NoError(t, f.Close())
}

func TestRedisPublisherWithClient_LeavesClientOpen(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
	p := NewRedisPublisherWithClient(client, "tention.slots")

	require.NoError(t, p.Close())
	assert.NoError(t, client.Close())
}
