package domain

import "github.com/hwangseoul-netizen/tention-mini/internal/geotime"

// Participation and extension policy
const (
	ExtendStepMins   = 10
	ExtendCapMins    = 20
	ExtendWindowSecs = 300

	MinDurationMins  = 10
	MaxDurationMins  = 100
	DurationStepMins = 10
	MinCapacity      = 2

	// CreateElapsedRatio is the share of a new slot's window left on its countdown
	CreateElapsedRatio = 0.9
	// CatalogElapsedRatio is the same share for generated catalog slots
	CatalogElapsedRatio = 0.8
	MinSecsLeft         = 30

	DefaultStartMins = 18 * 60

	// Me is the participant id used when a request carries no actor
	Me = "You"
)

// Origin tells where a slot came from
type Origin string

const (
	OriginCore  Origin = "core"
	OriginUser  Origin = "user"
	OriginBrand Origin = "brand"
)

// HostType tells who runs a slot
type HostType string

const (
	HostMe       HostType = "me"
	HostPlatform HostType = "platform"
)

// TimeOfDay is a slot's time band. Any is only meaningful as a filter.
type TimeOfDay string

const (
	AnyTime   TimeOfDay = "Any"
	Morning   TimeOfDay = TimeOfDay(geotime.Morning)
	Afternoon TimeOfDay = TimeOfDay(geotime.Afternoon)
	Evening   TimeOfDay = TimeOfDay(geotime.Evening)
	Night     TimeOfDay = TimeOfDay(geotime.Night)
)

// TimeSlots lists the time bands in display order, filter value first
var TimeSlots = []TimeOfDay{AnyTime, Morning, Afternoon, Evening, Night}

// IsValid reports whether t is a known time band, Any included
func (t TimeOfDay) IsValid() bool {
	for _, v := range TimeSlots {
		if v == t {
			return true
		}
	}
	return false
}

// BucketOf converts a start time in minutes to its time band
func BucketOf(mins int) TimeOfDay {
	return TimeOfDay(geotime.BucketFor(mins))
}

// SnapDuration rounds mins to the nearest duration step, halves up,
// and clamps the result to the allowed window.
func SnapDuration(mins int) int {
	snapped := (mins + DurationStepMins/2) / DurationStepMins * DurationStepMins
	return geotime.Clamp(snapped, MinDurationMins, MaxDurationMins)
}

// Slot is one time-boxed meetup
type Slot struct {
	ID     int64     `json:"id"`
	Origin Origin    `json:"origin"`
	Type   Category  `json:"type"`
	City   CityCode  `json:"city"`
	Time   TimeOfDay `json:"time_filter"`

	Title string     `json:"title"`
	Desc  string     `json:"desc"`
	Who   string     `json:"who"`
	Todo  []string   `json:"todo"`
	Place string     `json:"place"`
	GPS   [2]float64 `json:"gps"`

	Start     string `json:"start"`
	End       string `json:"end,omitempty"`
	TotalMins int    `json:"total_mins"`
	TotalSecs int    `json:"total_secs"`
	SecsLeft  int    `json:"secs_left"`

	Attendees []string `json:"attendees"`
	Present   []string `json:"present"`
	Max       int      `json:"max"`

	ProofScore   float64  `json:"proof_score"`
	HostType     HostType `json:"host_type"`
	Deposit      int      `json:"deposit"`
	ExtendedBy   int      `json:"extended_by"`
	IsBrand      bool     `json:"is_brand"`
	BrandName    string   `json:"brand_name,omitempty"`
	BrandTagline string   `json:"brand_tagline,omitempty"`
	Reward       string   `json:"reward,omitempty"`
}

// Clone returns a copy that shares no slices with s
func (s Slot) Clone() Slot {
	c := s
	c.Todo = cloneStrings(s.Todo)
	c.Attendees = cloneStrings(s.Attendees)
	c.Present = cloneStrings(s.Present)
	return c
}

func cloneStrings(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}

// HasAttendee reports whether actor has checked in to the slot
func (s Slot) HasAttendee(actor string) bool {
	return contains(s.Attendees, actor)
}

// IsPresent reports whether actor has marked arrival
func (s Slot) IsPresent(actor string) bool {
	return contains(s.Present, actor)
}

// IsFull reports whether no seat is left
func (s Slot) IsFull() bool {
	return len(s.Attendees) >= s.Max
}

// Ended reports whether the countdown has run out
func (s Slot) Ended() bool {
	return s.SecsLeft <= 0
}

// Location returns the venue coordinates
func (s Slot) Location() geotime.Point {
	return geotime.Point{Lat: s.GPS[0], Lng: s.GPS[1]}
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
