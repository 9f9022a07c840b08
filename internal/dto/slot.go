package dto

import (
	"strings"
	"unicode/utf8"

	"github.com/hwangseoul-netizen/tention-mini/internal/activity"
	"github.com/hwangseoul-netizen/tention-mini/internal/domain"
	"github.com/hwangseoul-netizen/tention-mini/internal/geotime"
	"github.com/hwangseoul-netizen/tention-mini/internal/query"
	"github.com/hwangseoul-netizen/tention-mini/internal/store"
)

const maxSearchLen = 100

// ListSlotsRequest carries the browse filter as query parameters
type ListSlotsRequest struct {
	Category string  `form:"category"`
	Time     string  `form:"time"`
	City     string  `form:"city"`
	Radius   float64 `form:"radius"`
	Duration int     `form:"duration"`
	Q        string  `form:"q"`
	Sort     string  `form:"sort"`
}

// Filter converts the request into a query filter. Blank fields stay blank
// so Normalize can apply the defaults.
func (r *ListSlotsRequest) Filter() query.Filter {
	return query.Filter{
		Category:    domain.Category(strings.TrimSpace(r.Category)),
		TimeOfDay:   domain.TimeOfDay(strings.TrimSpace(r.Time)),
		City:        domain.CityCode(strings.ToUpper(strings.TrimSpace(r.City))),
		Radius:      r.Radius,
		MinDuration: r.Duration,
		Search:      r.Q,
		Sort:        query.SortOrder(strings.TrimSpace(r.Sort)),
	}
}

// Validate validates the ListSlotsRequest
func (r *ListSlotsRequest) Validate() (bool, string) {
	if r.Radius < 0 {
		return false, "Radius must not be negative"
	}
	if r.Duration < 0 {
		return false, "Duration must not be negative"
	}
	if utf8.RuneCountInString(r.Q) > maxSearchLen {
		return false, "Search text is too long"
	}
	if _, err := r.Filter().Normalize(); err != nil {
		return false, err.Error()
	}
	return true, ""
}

// CreateSlotRequest represents the create screen's form
type CreateSlotRequest struct {
	Category   string `json:"category" binding:"required"`
	Host       string `json:"host"`
	Capacity   int    `json:"capacity"`
	City       string `json:"city" binding:"required"`
	TimeFilter string `json:"time_filter"`
	TimeMode   string `json:"time_mode"`
	Start      string `json:"start"`
	Meridiem   string `json:"meridiem"`
	Duration   int    `json:"duration"`
	Title      string `json:"title"`
	Desc       string `json:"desc"`
}

// Validate checks what the form builder cannot default. Range and length
// gates are applied by the store.
func (r *CreateSlotRequest) Validate() (bool, string) {
	if strings.TrimSpace(r.Category) == "" {
		return false, "Category is required"
	}
	if strings.TrimSpace(r.City) == "" {
		return false, "City is required"
	}
	if r.Capacity < 0 {
		return false, "Capacity must not be negative"
	}
	if r.Meridiem != "" && !geotime.Meridiem(strings.ToUpper(r.Meridiem)).IsValid() {
		return false, "Meridiem must be AM or PM"
	}
	return true, ""
}

// Form layers the request over the create screen's defaults
func (r *CreateSlotRequest) Form() store.CreateForm {
	city := domain.CityCode(strings.ToUpper(strings.TrimSpace(r.City)))
	band := domain.TimeOfDay(strings.TrimSpace(r.TimeFilter))
	if band == "" {
		band = domain.AnyTime
	}

	form := store.DefaultCreateForm(city, band)
	form.Category = domain.Category(strings.TrimSpace(r.Category))
	if r.Host != "" {
		form.Host = store.HostChoice(r.Host)
	}
	if r.Capacity != 0 {
		form.Capacity = r.Capacity
	}
	if r.TimeMode != "" {
		form.TimeMode = store.TimeMode(r.TimeMode)
	}
	if r.Start != "" {
		form.StartText = r.Start
	}
	if r.Meridiem != "" {
		form.StartMeridiem = geotime.Meridiem(strings.ToUpper(r.Meridiem))
	}
	if r.Duration != 0 {
		form.Duration = r.Duration
	}
	form.Title = r.Title
	form.Desc = r.Desc
	return form
}

// SlotListResponse is one page of the browse screen
type SlotListResponse struct {
	Slots  []SlotCard   `json:"slots"`
	Filter query.Filter `json:"filter"`
}

// ActivityResponse lists a slot's recorded actions, oldest first
type ActivityResponse struct {
	SlotID  int64            `json:"slot_id"`
	Entries []activity.Entry `json:"entries"`
}
