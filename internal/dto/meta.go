package dto

import (
	"github.com/hwangseoul-netizen/tention-mini/internal/domain"
	"github.com/hwangseoul-netizen/tention-mini/internal/query"
)

// MetaResponse lists every enumeration a client needs to draw its pickers
type MetaResponse struct {
	Categories []domain.CategoryMeta `json:"categories"`
	Cities     []domain.City         `json:"cities"`
	TimeSlots  []domain.TimeOfDay    `json:"time_slots"`
	Sorts      []query.SortOrder     `json:"sorts"`
	Durations  []int                 `json:"durations"`
	Defaults   query.Filter          `json:"defaults"`
	Policy     PolicyResponse        `json:"policy"`
}

// PolicyResponse exposes the extension and capacity rules
type PolicyResponse struct {
	ExtendStepMins   int `json:"extend_step_mins"`
	ExtendCapMins    int `json:"extend_cap_mins"`
	ExtendWindowSecs int `json:"extend_window_secs"`
	MinCapacity      int `json:"min_capacity"`
	MinDurationMins  int `json:"min_duration_mins"`
	MaxDurationMins  int `json:"max_duration_mins"`
}

// NewMetaResponse builds the metadata with defaults as the home screen resets to
func NewMetaResponse(defaults query.Filter) MetaResponse {
	return MetaResponse{
		Categories: domain.AllCategoryMeta(),
		Cities:     domain.Cities,
		TimeSlots:  domain.TimeSlots,
		Sorts:      query.Sorts,
		Durations:  query.Durations,
		Defaults:   defaults,
		Policy: PolicyResponse{
			ExtendStepMins:   domain.ExtendStepMins,
			ExtendCapMins:    domain.ExtendCapMins,
			ExtendWindowSecs: domain.ExtendWindowSecs,
			MinCapacity:      domain.MinCapacity,
			MinDurationMins:  domain.MinDurationMins,
			MaxDurationMins:  domain.MaxDurationMins,
		},
	}
}
