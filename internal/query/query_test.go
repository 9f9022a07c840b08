package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hwangseoul-netizen/tention-mini/internal/catalog"
	"github.com/hwangseoul-netizen/tention-mini/internal/domain"
	"github.com/hwangseoul-netizen/tention-mini/internal/store"
)

func ids(slots []domain.Slot) []int64 {
	out := make([]int64, len(slots))
	for i, s := range slots {
		out[i] = s.ID
	}
	return out
}

func allCities() Filter {
	f := Defaults()
	f.City = domain.AllCities
	return f
}

func TestDefaults(t *testing.T) {
	f := Defaults()
	assert.Equal(t, domain.Category(""), f.Category)
	assert.Equal(t, domain.AnyTime, f.TimeOfDay)
	assert.Equal(t, domain.SF, f.City)
	assert.Equal(t, 5.0, f.Radius)
	assert.Equal(t, 10, f.MinDuration)
	assert.Equal(t, SortEndingSoon, f.Sort)
	assert.Empty(t, f.Search)
}

func TestDurations(t *testing.T) {
	assert.Equal(t, []int{10, 20, 30, 40, 50, 60, 70, 80, 90, 100}, Durations)
}

func TestFilter_Normalize(t *testing.T) {
	f, err := Filter{Radius: 200, MinDuration: 140}.Normalize()
	require.NoError(t, err)
	assert.Equal(t, MaxRadius, f.Radius)
	assert.Equal(t, 100, f.MinDuration)
	assert.Equal(t, domain.SF, f.City)
	assert.Equal(t, domain.AnyTime, f.TimeOfDay)
	assert.Equal(t, SortEndingSoon, f.Sort)

	f, err = Filter{Radius: 0.2, MinDuration: 35}.Normalize()
	require.NoError(t, err)
	assert.Equal(t, MinRadius, f.Radius)
	assert.Equal(t, 40, f.MinDuration)

	bad := []Filter{
		{Category: "Dance"},
		{TimeOfDay: "Noon"},
		{City: "PDX"},
		{Sort: "Random"},
	}
	for _, b := range bad {
		_, err := b.Normalize()
		assert.Error(t, err, "%+v", b)
	}
}

func TestRun_CategoryFilter(t *testing.T) {
	f := allCities()
	f.Category = domain.Vibes

	got := Run(catalog.Generate(), f)
	require.Len(t, got, 20)
	for _, s := range got {
		assert.Equal(t, domain.Vibes, s.Type)
	}
}

func TestRun_TimeOfDayFilter(t *testing.T) {
	f := allCities()
	f.TimeOfDay = domain.Night

	got := Run(catalog.Generate(), f)
	require.NotEmpty(t, got)
	for _, s := range got {
		assert.Equal(t, domain.Night, s.Time)
	}
}

func TestRun_RadiusFilter(t *testing.T) {
	slots := catalog.Generate()

	f := Defaults()
	got := Run(slots, f)
	require.NotEmpty(t, got)
	for _, s := range got {
		assert.Equal(t, domain.SF, s.City)
	}

	// LA is ~342 planar miles from SF
	f.Radius = 50
	assert.Len(t, Run(slots, f), len(got))
}

func TestRun_DurationFilter(t *testing.T) {
	f := allCities()
	f.MinDuration = 30

	got := Run(catalog.Generate(), f)
	require.NotEmpty(t, got)
	for _, s := range got {
		assert.GreaterOrEqual(t, s.TotalMins, 30)
	}
}

func TestRun_Search(t *testing.T) {
	slots := catalog.Generate()

	tests := []struct {
		name   string
		search string
		check  func(t *testing.T, got []domain.Slot)
	}{
		{"title", "  COLD brew ", func(t *testing.T, got []domain.Slot) {
			require.Len(t, got, 1)
			assert.Equal(t, int64(81), got[0].ID)
		}},
		{"category", "workout", func(t *testing.T, got []domain.Slot) {
			assert.Len(t, got, 20)
		}},
		{"city name", "miami", func(t *testing.T, got []domain.Slot) {
			assert.Len(t, got, 20)
		}},
		{"no match", "zzz", func(t *testing.T, got []domain.Slot) {
			assert.Empty(t, got)
		}},
		{"blank", "   ", func(t *testing.T, got []domain.Slot) {
			assert.Len(t, got, 81)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := allCities()
			f.Search = tt.search
			tt.check(t, Run(slots, f))
		})
	}
}

func TestRun_SortEndingSoon(t *testing.T) {
	slots := []domain.Slot{
		{ID: 1, Type: domain.Vibes, City: domain.SF, TotalMins: 10, SecsLeft: 50},
		{ID: 2, Type: domain.Vibes, City: domain.SF, TotalMins: 10, SecsLeft: 10},
		{ID: 3, Type: domain.Vibes, City: domain.SF, TotalMins: 10, SecsLeft: 30},
		{ID: 4, Type: domain.Vibes, City: domain.SF, TotalMins: 10, SecsLeft: 0},
	}

	got := Run(slots, allCities())
	assert.Equal(t, []int64{2, 3, 1, 4}, ids(got))
}

func TestRun_SortNewest(t *testing.T) {
	slots := []domain.Slot{
		{ID: 3, Type: domain.Vibes, City: domain.SF, TotalMins: 10},
		{ID: 1, Type: domain.Vibes, City: domain.SF, TotalMins: 10},
		{ID: 2, Type: domain.Vibes, City: domain.SF, TotalMins: 10},
	}

	f := allCities()
	f.Sort = SortNewest
	assert.Equal(t, []int64{3, 2, 1}, ids(Run(slots, f)))
}

func TestRun_SortRatingIsStable(t *testing.T) {
	slots := []domain.Slot{
		{ID: 1, Type: domain.Vibes, City: domain.SF, TotalMins: 10, ProofScore: 3},
		{ID: 2, Type: domain.Vibes, City: domain.SF, TotalMins: 10, ProofScore: 5},
		{ID: 3, Type: domain.Vibes, City: domain.SF, TotalMins: 10, ProofScore: 3},
		{ID: 4, Type: domain.Vibes, City: domain.SF, TotalMins: 10, ProofScore: 4.5},
	}

	f := allCities()
	f.Sort = SortRating
	assert.Equal(t, []int64{2, 4, 1, 3}, ids(Run(slots, f)))
}

func TestRun_SortNearest(t *testing.T) {
	slots := []domain.Slot{
		{ID: 1, Type: domain.Vibes, City: domain.NYC, TotalMins: 10},
		{ID: 2, Type: domain.Vibes, City: domain.LA, TotalMins: 10},
		{ID: 3, Type: domain.Vibes, City: domain.SF, TotalMins: 10},
		{ID: 4, Type: domain.Vibes, City: domain.MIA, TotalMins: 10},
	}

	f := allCities()
	f.Sort = SortNearest
	// ALL measures from SF
	assert.Equal(t, []int64{3, 2, 4, 1}, ids(Run(slots, f)))

	f.City = domain.NYC
	f.Radius = MaxRadius
	assert.Equal(t, []int64{1}, ids(Run(slots, f)))
}

func TestRun_FiltersIntersect(t *testing.T) {
	slots := catalog.Generate()

	byCat := allCities()
	byCat.Category = domain.Friends
	byTime := allCities()
	byTime.TimeOfDay = domain.Afternoon
	both := allCities()
	both.Category = domain.Friends
	both.TimeOfDay = domain.Afternoon

	inTime := make(map[int64]bool)
	for _, s := range Run(slots, byTime) {
		inTime[s.ID] = true
	}
	var want []int64
	for _, s := range Run(slots, byCat) {
		if inTime[s.ID] {
			want = append(want, s.ID)
		}
	}

	assert.ElementsMatch(t, want, ids(Run(slots, both)))
}

func TestRun_DoesNotModifyInput(t *testing.T) {
	st := store.New(catalog.Generate())
	snap := st.Snapshot()
	before := ids(snap)

	f := allCities()
	f.Sort = SortRating
	_ = Run(snap, f)

	assert.Equal(t, before, ids(snap))
}
