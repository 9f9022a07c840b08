// Package catalog builds the deterministic starter set of slots.
package catalog

import (
	"github.com/hwangseoul-netizen/tention-mini/internal/domain"
	"github.com/hwangseoul-netizen/tention-mini/internal/geotime"
)

// Size is the number of slots Generate returns
const Size = SlotsPerCategory*4 + 1

var (
	coreCities = []domain.CityCode{domain.LA, domain.SF, domain.NYC, domain.MIA}
	coreBands  = []domain.TimeOfDay{domain.Morning, domain.Afternoon, domain.Evening, domain.Night}
	coreDurs   = []int{10, 20, 30}

	baseHour = map[domain.TimeOfDay]int{
		domain.Morning:   8,
		domain.Afternoon: 14,
		domain.Evening:   18,
		domain.Night:     20,
	}
)

// Generate returns the starter slots in ascending id order: twenty core slots per
// category followed by one sponsored tasting. The result is the same on every call.
func Generate() []domain.Slot {
	out := make([]domain.Slot, 0, Size)
	var id int64 = 1

	for _, cat := range domain.Categories {
		for i := 0; i < SlotsPerCategory; i++ {
			out = append(out, coreSlot(id, cat, i))
			id++
		}
	}

	out = append(out, brandSlot(id))
	return out
}

func coreSlot(id int64, cat domain.Category, i int) domain.Slot {
	city := coreCities[i%len(coreCities)]
	band := coreBands[(i+int(id))%len(coreBands)]
	dur := coreDurs[i%len(coreDurs)]
	totalSecs := dur * 60
	startMins := ((baseHour[band]+i/3)%24)*60 + (i*7)%60
	venue := domain.DefaultVenue(city)

	return domain.Slot{
		ID:         id,
		Origin:     domain.OriginCore,
		Type:       cat,
		City:       city,
		Time:       band,
		Title:      titles[cat][i],
		Desc:       cat.DefaultDesc(),
		Who:        cat.Who(),
		Todo:       cat.Todo(),
		Place:      venue.Name,
		GPS:        [2]float64{venue.Point.Lat, venue.Point.Lng},
		Start:      geotime.FormatHM24(startMins),
		TotalMins:  dur,
		TotalSecs:  totalSecs,
		SecsLeft:   max(domain.MinSecsLeft, int(float64(totalSecs)*domain.CatalogElapsedRatio)-i%25),
		Attendees:  []string{},
		Present:    []string{},
		Max:        domain.MinCapacity,
		ProofScore: float64(3 + i%3),
		HostType:   domain.HostMe,
	}
}

func brandSlot(id int64) domain.Slot {
	venue := domain.DefaultVenue(domain.SF)

	return domain.Slot{
		ID:           id,
		Origin:       domain.OriginBrand,
		Type:         domain.Try,
		City:         domain.SF,
		Time:         domain.Afternoon,
		Title:        "Try: New cold brew flight",
		Desc:         "Short tasting of 3 cold brews. Just taste, talk, and go.",
		Who:          domain.Try.Who(),
		Todo:         domain.Try.Todo(),
		Place:        venue.Name,
		GPS:          [2]float64{venue.Point.Lat, venue.Point.Lng},
		Start:        "15:00",
		TotalMins:    30,
		TotalSecs:    30 * 60,
		SecsLeft:     25 * 60,
		Attendees:    []string{},
		Present:      []string{},
		Max:          4,
		ProofScore:   4.5,
		HostType:     domain.HostPlatform,
		IsBrand:      true,
		BrandName:    "(Demo brand)",
		BrandTagline: "Try a real-world product together",
		Reward:       "Free tasting in this slot",
	}
}
