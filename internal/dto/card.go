package dto

import (
	"fmt"
	"math"

	"github.com/hwangseoul-netizen/tention-mini/internal/domain"
	"github.com/hwangseoul-netizen/tention-mini/internal/geotime"
)

// Urgency is the colour band of a slot's progress bar
type Urgency string

const (
	UrgencyOK       Urgency = "ok"
	UrgencyWarn     Urgency = "warn"
	UrgencyCritical Urgency = "critical"
)

const (
	minProgressPct    = 4.0
	okRatioAbove      = 0.3
	warnRatioAbove    = 0.1
	progressPrecision = 100
)

// SlotCard is a slot plus what a card or detail screen renders from it
type SlotCard struct {
	domain.Slot

	Label     string  `json:"label"`
	Icon      string  `json:"icon"`
	Color     string  `json:"color"`
	CityName  string  `json:"city_name"`
	Countdown string  `json:"countdown"`
	MinsLeft  int     `json:"mins_left"`
	Ratio     float64 `json:"ratio"`
	Progress  float64 `json:"progress"`
	Urgency   Urgency `json:"urgency"`
	Seats     string  `json:"seats"`
	Stars     string  `json:"stars"`

	Joined    bool `json:"joined"`
	Arrived   bool `json:"arrived"`
	CanExtend bool `json:"can_extend"`
}

// NewSlotCard builds the view of slot as actor sees it
func NewSlotCard(slot domain.Slot, actor string) SlotCard {
	meta := slot.Type.Meta()
	ratio := RemainingRatio(slot)

	return SlotCard{
		Slot:      slot,
		Label:     meta.Label,
		Icon:      meta.Icon,
		Color:     meta.Color,
		CityName:  domain.CityOf(slot.City).Name,
		Countdown: geotime.Countdown(slot.SecsLeft),
		MinsLeft:  MinsLeft(slot.SecsLeft),
		Ratio:     round(ratio),
		Progress:  round(math.Max(minProgressPct, ratio*100)),
		Urgency:   UrgencyFor(ratio),
		Seats:     fmt.Sprintf("%d/%d", len(slot.Attendees), slot.Max),
		Stars:     geotime.RatingStars(slot.ProofScore),
		Joined:    slot.HasAttendee(actor),
		Arrived:   slot.IsPresent(actor),
		CanExtend: canExtend(slot, actor),
	}
}

// canExtend offers the extend button to an arrived attendee near the end
func canExtend(slot domain.Slot, actor string) bool {
	return slot.HasAttendee(actor) && slot.IsPresent(actor) &&
		slot.SecsLeft > 0 && slot.SecsLeft <= domain.ExtendWindowSecs &&
		slot.ExtendedBy < domain.ExtendCapMins
}

// NewSlotCards maps NewSlotCard over slots, never returning nil
func NewSlotCards(slots []domain.Slot, actor string) []SlotCard {
	out := make([]SlotCard, 0, len(slots))
	for _, s := range slots {
		out = append(out, NewSlotCard(s, actor))
	}
	return out
}

// RemainingRatio is SecsLeft over TotalSecs, zero for a slot with no length
func RemainingRatio(slot domain.Slot) float64 {
	if slot.TotalSecs <= 0 {
		return 0
	}
	return float64(max(0, slot.SecsLeft)) / float64(slot.TotalSecs)
}

// UrgencyFor maps a remaining ratio to its band
func UrgencyFor(ratio float64) Urgency {
	switch {
	case ratio > okRatioAbove:
		return UrgencyOK
	case ratio > warnRatioAbove:
		return UrgencyWarn
	default:
		return UrgencyCritical
	}
}

// MinsLeft rounds the remaining seconds up to whole minutes
func MinsLeft(secs int) int {
	if secs <= 0 {
		return 0
	}
	return (secs + 59) / 60
}

func round(v float64) float64 {
	return math.Round(v*progressPrecision) / progressPrecision
}
