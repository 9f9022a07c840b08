// Package query filters and sorts slot snapshots for the browse screens.
package query

import (
	"fmt"
	"sort"
	"strings"

	"github.com/hwangseoul-netizen/tention-mini/internal/domain"
	"github.com/hwangseoul-netizen/tention-mini/internal/geotime"
)

// SortOrder is a list ordering
type SortOrder string

const (
	SortEndingSoon SortOrder = "Ending Soon"
	SortNewest     SortOrder = "Newest"
	SortNearest    SortOrder = "Nearest"
	SortRating     SortOrder = "Rating"
)

// Sorts lists the orderings in display order
var Sorts = []SortOrder{SortEndingSoon, SortNewest, SortNearest, SortRating}

// IsValid reports whether s is a known ordering
func (s SortOrder) IsValid() bool {
	for _, v := range Sorts {
		if v == s {
			return true
		}
	}
	return false
}

const (
	DefaultRadius = 5.0
	MinRadius     = 1.0
	MaxRadius     = 50.0

	radiusEpsilon = 1e-6
	// endedSortKey pushes finished slots behind every live one in Ending Soon
	endedSortKey = 1_000_000_000
)

// Durations lists the minimum-duration choices
var Durations = func() []int {
	out := make([]int, 0, domain.MaxDurationMins/domain.DurationStepMins)
	for d := domain.MinDurationMins; d <= domain.MaxDurationMins; d += domain.DurationStepMins {
		out = append(out, d)
	}
	return out
}()

// Filter is the home screen's filter state
type Filter struct {
	// Category restricts to one category; empty means all
	Category    domain.Category  `json:"category,omitempty"`
	TimeOfDay   domain.TimeOfDay `json:"time,omitempty"`
	City        domain.CityCode  `json:"city,omitempty"`
	Radius      float64          `json:"radius,omitempty"`
	MinDuration int              `json:"duration,omitempty"`
	Search      string           `json:"q,omitempty"`
	Sort        SortOrder        `json:"sort,omitempty"`
}

// Defaults returns the filter the home screen resets to
func Defaults() Filter {
	return Filter{
		TimeOfDay:   domain.AnyTime,
		City:        domain.SF,
		Radius:      DefaultRadius,
		MinDuration: domain.MinDurationMins,
		Sort:        SortEndingSoon,
	}
}

// Normalize fills blanks with defaults, clamps ranges and rejects unknown enum values
func (f Filter) Normalize() (Filter, error) {
	if f.Category != "" && !f.Category.IsValid() {
		return f, fmt.Errorf("unknown category %q", f.Category)
	}

	if f.TimeOfDay == "" {
		f.TimeOfDay = domain.AnyTime
	} else if !f.TimeOfDay.IsValid() {
		return f, fmt.Errorf("unknown time of day %q", f.TimeOfDay)
	}

	if f.City == "" {
		f.City = domain.SF
	} else if !f.City.IsValid() {
		return f, fmt.Errorf("unknown city %q", f.City)
	}

	if f.Sort == "" {
		f.Sort = SortEndingSoon
	} else if !f.Sort.IsValid() {
		return f, fmt.Errorf("unknown sort %q", f.Sort)
	}

	if f.Radius == 0 {
		f.Radius = DefaultRadius
	}
	f.Radius = geotime.ClampFloat(f.Radius, MinRadius, MaxRadius)

	if f.MinDuration == 0 {
		f.MinDuration = domain.MinDurationMins
	}
	f.MinDuration = domain.SnapDuration(f.MinDuration)

	return f, nil
}

// Run applies the filter to a snapshot and returns a new, sorted slice.
// The input is not modified. Ties keep their input order.
func Run(slots []domain.Slot, f Filter) []domain.Slot {
	out := make([]domain.Slot, 0, len(slots))
	q := strings.ToLower(strings.TrimSpace(f.Search))
	center := domain.CityOf(f.City).Center

	for _, s := range slots {
		if f.Category != "" && s.Type != f.Category {
			continue
		}
		if f.TimeOfDay != "" && f.TimeOfDay != domain.AnyTime && s.Time != f.TimeOfDay {
			continue
		}
		if f.City.IsConcrete() && geotime.Distance(center, domain.CityOf(s.City).Center) > f.Radius+radiusEpsilon {
			continue
		}
		if s.TotalMins < f.MinDuration {
			continue
		}
		if q != "" && !strings.Contains(searchText(s), q) {
			continue
		}
		out = append(out, s)
	}

	sortSlots(out, f)
	return out
}

func searchText(s domain.Slot) string {
	return strings.ToLower(s.Title + " " + string(s.Type) + " " + domain.CityOf(s.City).Name)
}

func sortSlots(slots []domain.Slot, f Filter) {
	switch f.Sort {
	case SortEndingSoon:
		sort.SliceStable(slots, func(i, j int) bool {
			return endingKey(slots[i]) < endingKey(slots[j])
		})
	case SortNewest:
		sort.SliceStable(slots, func(i, j int) bool {
			return slots[i].ID > slots[j].ID
		})
	case SortRating:
		sort.SliceStable(slots, func(i, j int) bool {
			return slots[i].ProofScore > slots[j].ProofScore
		})
	case SortNearest:
		ref := f.City
		if !ref.IsConcrete() {
			ref = domain.SF
		}
		origin := domain.CityOf(ref).Center
		sort.SliceStable(slots, func(i, j int) bool {
			return geotime.Distance(origin, domain.CityOf(slots[i].City).Center) <
				geotime.Distance(origin, domain.CityOf(slots[j].City).Center)
		})
	}
}

func endingKey(s domain.Slot) int {
	if s.SecsLeft <= 0 {
		return endedSortKey
	}
	return s.SecsLeft
}
