package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/hwangseoul-netizen/tention-mini/internal/activity"
	"github.com/hwangseoul-netizen/tention-mini/internal/domain"
	"github.com/hwangseoul-netizen/tention-mini/internal/events"
	"github.com/hwangseoul-netizen/tention-mini/internal/host"
	"github.com/hwangseoul-netizen/tention-mini/internal/query"
	"github.com/hwangseoul-netizen/tention-mini/internal/store"
	"github.com/hwangseoul-netizen/tention-mini/pkg/logger"
	"github.com/hwangseoul-netizen/tention-mini/pkg/telemetry"
)

// ErrInvalidFilter is returned when a browse filter names an unknown value
var ErrInvalidFilter = errors.New("invalid filter")

// Notices shown after a successful action
const (
	NoticeJoined   = "Checked In — You’re in!"
	NoticeArrived  = "Arrived — Let them know you’re at the spot."
	NoticeExtended = "+10 min — only if everyone agrees."
	NoticeNoMatch  = "No slots match"
)

// Emitter hands lifecycle events to the async dispatcher
type Emitter interface {
	Emit(event events.Event)
}

// ListResult is one filtered, sorted view of the store
type ListResult struct {
	Slots  []domain.Slot
	Filter query.Filter
	Live   int
}

// ActionResult is the slot after a participation action
type ActionResult struct {
	Slot    domain.Slot
	Outcome store.Outcome
	Notice  string
}

// SlotService defines the slot browse and participation operations
type SlotService interface {
	// Defaults returns the filter the home screen resets to
	Defaults() query.Filter
	// ResolveFilter fills blank fields from the defaults and normalizes the result
	ResolveFilter(filter query.Filter) (query.Filter, error)
	// List filters and sorts the current snapshot
	List(ctx context.Context, filter query.Filter) (*ListResult, error)
	// Get returns one slot
	Get(ctx context.Context, id int64) (domain.Slot, error)
	// Create builds and stores a user slot
	Create(ctx context.Context, actor string, form store.CreateForm) (domain.Slot, error)
	// Join checks actor in
	Join(ctx context.Context, id int64, actor string) (*ActionResult, error)
	// Leave checks actor out
	Leave(ctx context.Context, id int64, actor string) (*ActionResult, error)
	// Arrive marks actor present
	Arrive(ctx context.Context, id int64, actor string) (*ActionResult, error)
	// Extend adds ten minutes near the end
	Extend(ctx context.Context, id int64, actor string) (*ActionResult, error)
	// Joined returns the slots actor checked in to
	Joined(ctx context.Context, actor string) []domain.Slot
	// Activity returns the slot's recorded actions
	Activity(ctx context.Context, id int64) ([]activity.Entry, error)
	// Share builds the host share payload for a slot
	Share(ctx context.Context, id int64) (host.SharePayload, error)
	// Theme returns the host theme
	Theme() host.Theme
	// OnTick records slots that ended on a countdown step
	OnTick(ctx context.Context, res store.TickResult)
}

// SlotServiceConfig contains the dependencies of the slot service
type SlotServiceConfig struct {
	Store    *store.Store
	Ledger   activity.Ledger
	Emitter  Emitter
	Bridge   host.Bridge
	Defaults query.Filter
}

type slotService struct {
	store    *store.Store
	ledger   activity.Ledger
	emitter  Emitter
	bridge   host.Bridge
	defaults query.Filter
	metrics  *slotMetrics
}

type discardEmitter struct{}

func (discardEmitter) Emit(events.Event) {}

// NewSlotService creates a new SlotService. Missing ledger, emitter or
// bridge fall back to in-memory or no-op versions.
func NewSlotService(cfg *SlotServiceConfig) (SlotService, error) {
	if cfg == nil || cfg.Store == nil {
		return nil, errors.New("slot service requires a store")
	}

	defaults, err := cfg.Defaults.Normalize()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFilter, err)
	}

	metrics, err := newSlotMetrics()
	if err != nil {
		return nil, err
	}

	s := &slotService{
		store:    cfg.Store,
		ledger:   cfg.Ledger,
		emitter:  cfg.Emitter,
		bridge:   cfg.Bridge,
		defaults: defaults,
		metrics:  metrics,
	}
	if s.ledger == nil {
		s.ledger = activity.NewMemoryLedger(0)
	}
	if s.emitter == nil {
		s.emitter = discardEmitter{}
	}
	if s.bridge == nil {
		s.bridge = host.Default()
	}
	return s, nil
}

// Defaults returns the filter the home screen resets to
func (s *slotService) Defaults() query.Filter {
	return s.defaults
}

// List filters and sorts the current snapshot. Blank filter fields take the
// configured defaults.
func (s *slotService) List(ctx context.Context, filter query.Filter) (*ListResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.slots.list")
	defer span.End()

	filter, err := s.ResolveFilter(filter)
	if err != nil {
		telemetry.SetSpanError(ctx, err)
		return nil, err
	}

	start := time.Now()
	snapshot := s.store.Snapshot()
	slots := query.Run(snapshot, filter)
	s.metrics.queryDuration.Record(ctx, float64(time.Since(start).Microseconds())/1000,
		telemetry.SortAttr(string(filter.Sort)))

	live := 0
	for _, slot := range snapshot {
		if !slot.Ended() {
			live++
		}
	}

	telemetry.SetSpanAttributes(ctx,
		telemetry.CityAttr(string(filter.City)),
		telemetry.SortAttr(string(filter.Sort)),
	)

	return &ListResult{Slots: slots, Filter: filter, Live: live}, nil
}

// ResolveFilter fills blank fields from the defaults and normalizes the result
func (s *slotService) ResolveFilter(f query.Filter) (query.Filter, error) {
	resolved, err := s.withDefaults(f).Normalize()
	if err != nil {
		return query.Filter{}, fmt.Errorf("%w: %v", ErrInvalidFilter, err)
	}
	return resolved, nil
}

func (s *slotService) withDefaults(f query.Filter) query.Filter {
	if f.City == "" {
		f.City = s.defaults.City
	}
	if f.Radius == 0 {
		f.Radius = s.defaults.Radius
	}
	if f.MinDuration == 0 {
		f.MinDuration = s.defaults.MinDuration
	}
	if f.Sort == "" {
		f.Sort = s.defaults.Sort
	}
	return f
}

// Get returns one slot
func (s *slotService) Get(ctx context.Context, id int64) (domain.Slot, error) {
	slot, err := s.store.Get(id)
	if err != nil {
		return domain.Slot{}, fmt.Errorf("get slot %d: %w", id, err)
	}
	return slot, nil
}

// Create builds and stores a user slot
func (s *slotService) Create(ctx context.Context, actor string, form store.CreateForm) (domain.Slot, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.slots.create")
	defer span.End()

	slot, err := s.store.Create(form)
	if err != nil {
		telemetry.SetSpanError(ctx, err)
		s.metrics.actions.Inc(ctx, telemetry.ActionAttr(string(activity.ActionCreated)), telemetry.OutcomeAttr("rejected"))
		logger.WithContext(ctx).Info("slot form rejected", zap.Error(err))
		return domain.Slot{}, fmt.Errorf("create slot: %w", err)
	}

	telemetry.SetSpanAttributes(ctx, telemetry.SlotIDAttr(slot.ID), telemetry.CategoryAttr(string(slot.Type)))
	s.metrics.created.Inc(ctx, telemetry.CategoryAttr(string(slot.Type)))
	s.metrics.actions.Inc(ctx, telemetry.ActionAttr(string(activity.ActionCreated)), telemetry.OutcomeAttr(string(store.OutcomeChanged)))

	s.record(ctx, slot.ID, actor, activity.ActionCreated, "")
	s.emitter.Emit(events.NewEvent(events.TypeSlotCreated, slot, actor))

	logger.WithContext(ctx).Debug("slot created",
		zap.Int64("slot_id", slot.ID),
		zap.String("category", string(slot.Type)),
		zap.String("city", string(slot.City)),
	)
	return slot, nil
}

// Join checks actor in
func (s *slotService) Join(ctx context.Context, id int64, actor string) (*ActionResult, error) {
	return s.act(ctx, id, actor, action{
		name:   activity.ActionJoined,
		event:  events.TypeSlotJoined,
		notice: NoticeJoined,
		apply:  func() (domain.Slot, store.Outcome, error) { return s.store.Join(id, actor) },
	})
}

// Leave checks actor out
func (s *slotService) Leave(ctx context.Context, id int64, actor string) (*ActionResult, error) {
	return s.act(ctx, id, actor, action{
		name:  activity.ActionLeft,
		event: events.TypeSlotLeft,
		apply: func() (domain.Slot, store.Outcome, error) { return s.store.Leave(id, actor) },
	})
}

// Arrive marks actor present
func (s *slotService) Arrive(ctx context.Context, id int64, actor string) (*ActionResult, error) {
	return s.act(ctx, id, actor, action{
		name:   activity.ActionArrived,
		event:  events.TypeSlotArrived,
		notice: NoticeArrived,
		apply:  func() (domain.Slot, store.Outcome, error) { return s.store.Arrive(id, actor) },
	})
}

// Extend adds ten minutes near the end
func (s *slotService) Extend(ctx context.Context, id int64, actor string) (*ActionResult, error) {
	return s.act(ctx, id, actor, action{
		name:   activity.ActionExtended,
		event:  events.TypeSlotExtended,
		notice: NoticeExtended,
		apply:  func() (domain.Slot, store.Outcome, error) { return s.store.Extend(id) },
	})
}

type action struct {
	name   activity.Action
	event  events.Type
	notice string
	apply  func() (domain.Slot, store.Outcome, error)
}

func (s *slotService) act(ctx context.Context, id int64, actor string, a action) (*ActionResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.slots."+string(a.name))
	defer span.End()

	telemetry.SetSpanAttributes(ctx, telemetry.SlotIDAttr(id), telemetry.ActorAttr(actor))
	log := logger.WithContext(ctx).WithFields(
		zap.Int64("slot_id", id),
		zap.String("action", string(a.name)),
	)

	slot, outcome, err := a.apply()
	if err != nil {
		telemetry.SetSpanError(ctx, err)
		s.metrics.actions.Inc(ctx, telemetry.ActionAttr(string(a.name)), telemetry.OutcomeAttr("rejected"))
		if errors.Is(err, store.ErrSlotNotFound) {
			return nil, fmt.Errorf("%s slot %d: %w", a.name, id, err)
		}
		s.record(ctx, id, actor, activity.ActionRejected, fmt.Sprintf("%s: %v", a.name, err))
		log.Info("slot action rejected", zap.Error(err))
		return nil, fmt.Errorf("%s slot %d: %w", a.name, id, err)
	}

	s.metrics.actions.Inc(ctx, telemetry.ActionAttr(string(a.name)), telemetry.OutcomeAttr(string(outcome)))
	telemetry.AddSpanEvent(ctx, string(outcome))

	result := &ActionResult{Slot: slot, Outcome: outcome}
	if outcome == store.OutcomeUnchanged {
		log.Debug("slot action was a no-op")
		return result, nil
	}

	result.Notice = a.notice
	s.record(ctx, id, actor, a.name, "")
	s.emitter.Emit(events.NewEvent(a.event, slot, actor))

	log.Debug("slot changed",
		zap.Int("attendees", len(slot.Attendees)),
		zap.Int("secs_left", slot.SecsLeft),
		zap.Int("extended_by", slot.ExtendedBy),
	)
	return result, nil
}

// Joined returns the slots actor checked in to
func (s *slotService) Joined(ctx context.Context, actor string) []domain.Slot {
	return s.store.Joined(actor)
}

// Activity returns the slot's recorded actions
func (s *slotService) Activity(ctx context.Context, id int64) ([]activity.Entry, error) {
	if _, err := s.store.Get(id); err != nil {
		return nil, fmt.Errorf("activity for slot %d: %w", id, err)
	}
	return s.ledger.ForSlot(ctx, id)
}

// Share builds the host share payload for a slot
func (s *slotService) Share(ctx context.Context, id int64) (host.SharePayload, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.slots.share")
	defer span.End()

	slot, err := s.store.Get(id)
	if err != nil {
		telemetry.SetSpanError(ctx, err)
		return host.SharePayload{}, fmt.Errorf("share slot %d: %w", id, err)
	}

	payload, err := s.bridge.Share(ctx, slot)
	if err != nil {
		telemetry.SetSpanError(ctx, err)
		logger.WithContext(ctx).Warn("share failed", zap.Int64("slot_id", id), zap.Error(err))
		return host.SharePayload{}, fmt.Errorf("share slot %d: %w", id, err)
	}
	return payload, nil
}

// Theme returns the host theme
func (s *slotService) Theme() host.Theme {
	return s.bridge.Theme()
}

// OnTick records slots that ended on a countdown step. It matches store.TickFunc.
func (s *slotService) OnTick(ctx context.Context, res store.TickResult) {
	s.metrics.live.Record(ctx, int64(res.Live))

	for _, id := range res.Ended {
		slot, err := s.store.Get(id)
		if err != nil {
			continue
		}
		s.record(ctx, id, "", activity.ActionEnded, "")
		s.emitter.Emit(events.NewEvent(events.TypeSlotEnded, slot, ""))
	}
}

func (s *slotService) record(ctx context.Context, id int64, actor string, a activity.Action, reason string) {
	_, err := s.ledger.Record(ctx, activity.Entry{
		SlotID: id,
		Actor:  actor,
		Action: a,
		Reason: reason,
	})
	if err != nil {
		logger.WithContext(ctx).Warn("failed to record activity",
			zap.Int64("slot_id", id),
			zap.String("action", string(a)),
			zap.Error(err),
		)
	}
}
