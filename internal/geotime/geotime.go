// Package geotime holds the distance, clock-time and countdown helpers shared by
// the slot catalog, the store and the query engine.
package geotime

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

const (
	milesPerDegLat = 69.0
	milesPerDegLng = 54.0

	// MinutesPerDay is the modulus used for wall-clock arithmetic
	MinutesPerDay = 24 * 60
)

// Point is a latitude/longitude pair in degrees
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Distance returns the planar approximation in miles between two points.
// It is accurate enough for comparing cities inside one country and nothing more.
func Distance(a, b Point) float64 {
	dx := (a.Lat - b.Lat) * milesPerDegLat
	dy := (a.Lng - b.Lng) * milesPerDegLng
	return math.Sqrt(dx*dx + dy*dy)
}

// Clamp bounds n to [lo, hi]
func Clamp(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}

// ClampFloat bounds n to [lo, hi]
func ClampFloat(n, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, n))
}

// Meridiem is the AM/PM half of a 12-hour clock reading
type Meridiem string

const (
	AM Meridiem = "AM"
	PM Meridiem = "PM"
)

// IsValid reports whether m is AM or PM
func (m Meridiem) IsValid() bool {
	return m == AM || m == PM
}

var hmPattern = regexp.MustCompile(`^(\d{1,2}):?(\d{0,2})$`)

// splitHM extracts hour and minute digits. Minute digits are right-padded
// with zeros so "18:3" reads as 18:30 and "6" as 6:00.
func splitHM(text string) (int, int, bool) {
	m := hmPattern.FindStringSubmatch(strings.TrimSpace(text))
	if m == nil {
		return 0, 0, false
	}
	h, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, 0, false
	}
	minDigits := m[2]
	for len(minDigits) < 2 {
		minDigits += "0"
	}
	mm, err := strconv.Atoi(minDigits)
	if err != nil {
		return 0, 0, false
	}
	return h, mm, true
}

// ParseHM24 parses a 24-hour "HH:MM" style string into minutes since midnight.
// The colon is optional. Out-of-range fields are clamped rather than rejected.
func ParseHM24(text string) (int, bool) {
	h, mm, ok := splitHM(text)
	if !ok {
		return 0, false
	}
	return Clamp(h, 0, 23)*60 + Clamp(mm, 0, 59), true
}

// ParseHM12 parses a 12-hour reading with its meridiem into minutes since midnight
func ParseHM12(text string, mer Meridiem) (int, bool) {
	h, mm, ok := splitHM(text)
	if !ok {
		return 0, false
	}
	hour := Clamp(h, 1, 12) % 12
	if mer == PM {
		hour += 12
	}
	return hour*60 + Clamp(mm, 0, 59), true
}

func normalizeMinutes(mins int) int {
	mins %= MinutesPerDay
	if mins < 0 {
		mins += MinutesPerDay
	}
	return mins
}

// FormatHM24 renders minutes since midnight as "HH:MM", wrapping past midnight
func FormatHM24(mins int) string {
	mins = normalizeMinutes(mins)
	return fmt.Sprintf("%02d:%02d", mins/60, mins%60)
}

// FormatHM12 renders minutes since midnight as a 12-hour "hh:MM" reading
func FormatHM12(mins int) (string, Meridiem) {
	mins = normalizeMinutes(mins)
	h24 := mins / 60
	mer := AM
	if h24 >= 12 {
		mer = PM
	}
	h := (h24+11)%12 + 1
	return fmt.Sprintf("%02d:%02d", h, mins%60), mer
}

// FormatHMInput masks free-typed input into at most "HH:MM"
func FormatHMInput(raw string) string {
	var digits strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
			if digits.Len() == 4 {
				break
			}
		}
	}
	d := digits.String()
	if len(d) <= 2 {
		return d
	}
	return d[:2] + ":" + d[2:]
}

// Bucket is a coarse time-of-day band
type Bucket string

const (
	Morning   Bucket = "Morning"
	Afternoon Bucket = "Afternoon"
	Evening   Bucket = "Evening"
	Night     Bucket = "Night"
)

// BucketFor classifies a start time: Morning [05,12), Afternoon [12,17),
// Evening [17,21), Night otherwise.
func BucketFor(mins int) Bucket {
	h := normalizeMinutes(mins) / 60
	switch {
	case h >= 5 && h < 12:
		return Morning
	case h >= 12 && h < 17:
		return Afternoon
	case h >= 17 && h < 21:
		return Evening
	default:
		return Night
	}
}

// Countdown renders seconds as "HH:MM:SS"
func Countdown(secs int) string {
	if secs < 0 {
		secs = 0
	}
	return fmt.Sprintf("%02d:%02d:%02d", secs/3600, (secs%3600)/60, secs%60)
}

// RatingStars renders a 0-5 score as stars. Zero means unrated.
func RatingStars(score float64) string {
	if score == 0 {
		return "⭐ —"
	}
	n := Clamp(int(math.Round(score)), 1, 5)
	return strings.Repeat("⭐", n)
}
