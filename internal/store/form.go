package store

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/hwangseoul-netizen/tention-mini/internal/domain"
	"github.com/hwangseoul-netizen/tention-mini/internal/geotime"
)

// HostChoice is the host toggle on the create screen
type HostChoice string

const (
	HostSelf    HostChoice = "I host"
	HostTENtion HostChoice = "TENtion hosts"
)

const (
	maxTitleLen = 80
	maxDescLen  = 280
)

// TimeMode selects how StartText is read
type TimeMode string

const (
	Mode24h TimeMode = "24h"
	Mode12h TimeMode = "12h"
)

// CreateForm is the user input for a new slot
type CreateForm struct {
	Category      domain.Category
	Host          HostChoice
	Capacity      int
	City          domain.CityCode
	TimeFilter    domain.TimeOfDay
	TimeMode      TimeMode
	StartText     string
	StartMeridiem geotime.Meridiem
	Duration      int
	Title         string
	Desc          string
}

// DefaultCreateForm returns the form as the create screen opens it, carrying
// over the city and time band currently selected on the home screen.
func DefaultCreateForm(city domain.CityCode, band domain.TimeOfDay) CreateForm {
	_, mer := geotime.FormatHM12(domain.DefaultStartMins)
	return CreateForm{
		Category:      domain.Vibes,
		Host:          HostSelf,
		Capacity:      domain.MinCapacity,
		City:          city,
		TimeFilter:    band,
		TimeMode:      Mode24h,
		StartText:     geotime.FormatHM24(domain.DefaultStartMins),
		StartMeridiem: mer,
		Duration:      domain.MinDurationMins,
	}
}

// Validate applies the create screen's gates
func (f CreateForm) Validate() error {
	switch {
	case !f.Category.IsValid():
		return fmt.Errorf("%w: unknown category %q", ErrInvalidForm, f.Category)
	case !f.City.IsConcrete():
		return fmt.Errorf("%w: pick a city", ErrInvalidForm)
	case f.TimeFilter != "" && !f.TimeFilter.IsValid():
		return fmt.Errorf("%w: unknown time of day %q", ErrInvalidForm, f.TimeFilter)
	case f.Host != "" && f.Host != HostSelf && f.Host != HostTENtion:
		return fmt.Errorf("%w: unknown host %q", ErrInvalidForm, f.Host)
	case f.TimeMode != "" && f.TimeMode != Mode24h && f.TimeMode != Mode12h:
		return fmt.Errorf("%w: unknown time mode %q", ErrInvalidForm, f.TimeMode)
	case f.Capacity < domain.MinCapacity:
		return fmt.Errorf("%w: capacity must be at least %d", ErrInvalidForm, domain.MinCapacity)
	case utf8.RuneCountInString(f.Title) > maxTitleLen:
		return fmt.Errorf("%w: title longer than %d characters", ErrInvalidForm, maxTitleLen)
	case utf8.RuneCountInString(f.Desc) > maxDescLen:
		return fmt.Errorf("%w: description longer than %d characters", ErrInvalidForm, maxDescLen)
	}
	return nil
}

// StartMinutes parses StartText per TimeMode, falling back to 18:00
func (f CreateForm) StartMinutes() int {
	var (
		mins int
		ok   bool
	)
	if f.TimeMode == Mode12h {
		mins, ok = geotime.ParseHM12(f.StartText, f.StartMeridiem)
	} else {
		mins, ok = geotime.ParseHM24(f.StartText)
	}
	if !ok {
		return domain.DefaultStartMins
	}
	return mins
}

// Build synthesises the slot the form describes. It does not validate.
func (f CreateForm) Build(id int64) domain.Slot {
	start := f.StartMinutes()
	mins := domain.SnapDuration(f.Duration)
	venue := domain.DefaultVenue(f.City)

	band := f.TimeFilter
	if band == "" || band == domain.AnyTime {
		band = domain.BucketOf(start)
	}

	host := domain.HostMe
	if f.Host == HostTENtion {
		host = domain.HostPlatform
	}

	title := strings.TrimSpace(f.Title)
	if title == "" {
		title = f.Category.DefaultTitle()
	}
	desc := strings.TrimSpace(f.Desc)
	if desc == "" {
		desc = f.Category.DefaultDesc()
	}

	return domain.Slot{
		ID:         id,
		Origin:     domain.OriginUser,
		Type:       f.Category,
		City:       f.City,
		Time:       band,
		Title:      title,
		Desc:       desc,
		Who:        f.Category.Who(),
		Todo:       f.Category.Todo(),
		Place:      venue.Name,
		GPS:        [2]float64{venue.Point.Lat, venue.Point.Lng},
		Start:      geotime.FormatHM24(start),
		End:        geotime.FormatHM24((start + mins) % geotime.MinutesPerDay),
		TotalMins:  mins,
		TotalSecs:  mins * 60,
		SecsLeft:   max(domain.MinSecsLeft, int(math.Floor(float64(mins*60)*domain.CreateElapsedRatio))),
		Attendees:  []string{},
		Present:    []string{},
		Max:        f.Capacity,
		ProofScore: 0,
		HostType:   host,
	}
}
