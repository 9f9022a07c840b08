package live

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hwangseoul-netizen/tention-mini/internal/domain"
	"github.com/hwangseoul-netizen/tention-mini/internal/events"
	"github.com/hwangseoul-netizen/tention-mini/internal/query"
	"github.com/hwangseoul-netizen/tention-mini/internal/store"
)

type testFrame struct {
	Type  FrameType     `json:"type"`
	Live  int           `json:"live"`
	Ended []int64       `json:"ended"`
	Event *events.Event `json:"event"`
	Slots []int64       `json:"slots"`
	Error string        `json:"error"`
}

type fixture struct {
	mu    sync.Mutex
	slots []domain.Slot
}

func (f *fixture) source() []domain.Slot {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Slot, len(f.slots))
	copy(out, f.slots)
	return out
}

func renderIDs(slots []domain.Slot, _ string) any {
	ids := make([]int64, 0, len(slots))
	for _, s := range slots {
		ids = append(ids, s.ID)
	}
	return ids
}

func newFixture() *fixture {
	return &fixture{slots: []domain.Slot{
		{ID: 1, Type: domain.Vibes, City: domain.SF, Time: domain.Morning, TotalMins: 30, SecsLeft: 100},
		{ID: 2, Type: domain.Workout, City: domain.SF, Time: domain.Evening, TotalMins: 30, SecsLeft: 50},
		{ID: 3, Type: domain.Vibes, City: domain.NYC, Time: domain.Night, TotalMins: 30, SecsLeft: 10},
	}}
}

func startHub(t *testing.T, f *fixture) (*Hub, *httptest.Server) {
	t.Helper()
	return startHubWithConfig(t, f, DefaultConfig())
}

func startHubWithConfig(t *testing.T, f *fixture, cfg Config) (*Hub, *httptest.Server) {
	t.Helper()

	hub := NewHub(f.source, renderIDs, cfg)
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Start(ctx)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		filter, _ := query.Filter{City: domain.SF}.Normalize()
		_ = hub.Serve(w, r, "You", filter)
	}))

	t.Cleanup(func() {
		cancel()
		srv.Close()
	})
	return hub, srv
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) testFrame {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)

	var f testFrame
	require.NoError(t, json.Unmarshal(raw, &f))
	return f
}

func TestHub_SnapshotOnConnect(t *testing.T) {
	_, srv := startHub(t, newFixture())
	conn := dial(t, srv)

	f := readFrame(t, conn)
	assert.Equal(t, FrameSnapshot, f.Type)
	// SF radius 5 excludes NYC; ending soon puts 2 before 1
	assert.Equal(t, []int64{2, 1}, f.Slots)
}

func TestHub_TickFrameIsFiltered(t *testing.T) {
	hub, srv := startHub(t, newFixture())
	conn := dial(t, srv)
	readFrame(t, conn)

	hub.PublishTick(context.Background(), store.TickResult{Ended: []int64{3}, Live: 2})

	f := readFrame(t, conn)
	assert.Equal(t, FrameTick, f.Type)
	assert.Equal(t, 2, f.Live)
	assert.Equal(t, []int64{3}, f.Ended)
	assert.Equal(t, []int64{2, 1}, f.Slots)
}

func TestHub_FilterMessage(t *testing.T) {
	_, srv := startHub(t, newFixture())
	conn := dial(t, srv)
	readFrame(t, conn)

	msg := ClientMessage{Type: "filter", Filter: query.Filter{City: domain.AllCities, Category: domain.Vibes}}
	require.NoError(t, conn.WriteJSON(msg))

	f := readFrame(t, conn)
	assert.Equal(t, FrameSnapshot, f.Type)
	assert.Equal(t, []int64{3, 1}, f.Slots)
}

func TestHub_FilterMessageUsesResolver(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Resolve = func(f query.Filter) (query.Filter, error) {
		if f.Sort == "" {
			f.Sort = query.SortNewest
		}
		return f.Normalize()
	}
	_, srv := startHubWithConfig(t, newFixture(), cfg)
	conn := dial(t, srv)
	readFrame(t, conn)

	require.NoError(t, conn.WriteJSON(ClientMessage{Type: "filter", Filter: query.Filter{City: domain.AllCities}}))

	f := readFrame(t, conn)
	assert.Equal(t, FrameSnapshot, f.Type)
	assert.Equal(t, []int64{3, 2, 1}, f.Slots)
}

func TestHub_BadMessages(t *testing.T) {
	_, srv := startHub(t, newFixture())
	conn := dial(t, srv)
	readFrame(t, conn)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))
	f := readFrame(t, conn)
	assert.Equal(t, FrameError, f.Type)
	assert.Equal(t, "malformed message", f.Error)

	require.NoError(t, conn.WriteJSON(ClientMessage{Type: "filter", Filter: query.Filter{Sort: "Random"}}))
	f = readFrame(t, conn)
	assert.Equal(t, FrameError, f.Type)
	assert.Contains(t, f.Error, "unknown sort")

	require.NoError(t, conn.WriteJSON(ClientMessage{Type: "subscribe"}))
	f = readFrame(t, conn)
	assert.Equal(t, "unknown message type", f.Error)
}

func TestHub_EventFrame(t *testing.T) {
	hub, srv := startHub(t, newFixture())
	conn := dial(t, srv)
	readFrame(t, conn)

	require.NoError(t, hub.Publish(context.Background(), events.Event{EventType: events.TypeSlotJoined, SlotID: 2}))

	f := readFrame(t, conn)
	assert.Equal(t, FrameEvent, f.Type)
	require.NotNil(t, f.Event)
	assert.Equal(t, int64(2), f.Event.SlotID)
}

func TestHub_StatsAndDisconnect(t *testing.T) {
	hub, srv := startHub(t, newFixture())
	conn := dial(t, srv)
	readFrame(t, conn)

	require.Eventually(t, func() bool { return hub.Stats().Clients == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool { return hub.Stats().Clients == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestWithDefaults(t *testing.T) {
	c := withDefaults(Config{})
	d := DefaultConfig()
	assert.Equal(t, d.PingInterval, c.PingInterval)
	assert.Equal(t, d.ReadTimeout, c.ReadTimeout)
	assert.Equal(t, d.SendBuffer, c.SendBuffer)
	assert.NotNil(t, c.CheckOrigin)
	require.NotNil(t, c.Resolve)

	f, err := c.Resolve(query.Filter{})
	require.NoError(t, err)
	assert.Equal(t, query.Defaults(), f)
}
