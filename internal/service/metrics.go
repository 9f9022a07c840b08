package service

import (
	"fmt"

	"github.com/hwangseoul-netizen/tention-mini/pkg/telemetry"
)

// slotMetrics holds the instruments the slot service records on
type slotMetrics struct {
	actions       *telemetry.Counter
	created       *telemetry.Counter
	queryDuration *telemetry.Histogram
	live          *telemetry.Gauge
}

func newSlotMetrics() (*slotMetrics, error) {
	actions, err := telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "tention_slot_actions_total",
		Description: "Participation actions by action and outcome",
		Unit:        "1",
	})
	if err != nil {
		return nil, fmt.Errorf("actions counter: %w", err)
	}

	created, err := telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "tention_slots_created_total",
		Description: "Slots created by users, by category",
		Unit:        "1",
	})
	if err != nil {
		return nil, fmt.Errorf("created counter: %w", err)
	}

	queryDuration, err := telemetry.NewHistogram(telemetry.MetricOpts{
		Name:        "tention_query_duration_ms",
		Description: "Time spent filtering and sorting a snapshot",
		Unit:        "ms",
	}, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25)
	if err != nil {
		return nil, fmt.Errorf("query histogram: %w", err)
	}

	live, err := telemetry.NewGauge(telemetry.MetricOpts{
		Name:        "tention_slots_live",
		Description: "Slots still counting down after the last tick",
		Unit:        "1",
	})
	if err != nil {
		return nil, fmt.Errorf("live gauge: %w", err)
	}

	return &slotMetrics{
		actions:       actions,
		created:       created,
		queryDuration: queryDuration,
		live:          live,
	}, nil
}
