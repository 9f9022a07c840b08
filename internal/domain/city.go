package domain

import "github.com/hwangseoul-netizen/tention-mini/internal/geotime"

// CityCode identifies a supported city. AllCities is a filter value only.
type CityCode string

const (
	AllCities CityCode = "ALL"
	LA        CityCode = "LA"
	SF        CityCode = "SF"
	NYC       CityCode = "NYC"
	MIA       CityCode = "MIA"
	SEA       CityCode = "SEA"
	CHI       CityCode = "CHI"
	ATX       CityCode = "ATX"
	BOS       CityCode = "BOS"
	ATL       CityCode = "ATL"
)

// Region groups cities for display
type Region string

const (
	RegionWest    Region = "West"
	RegionEast    Region = "East"
	RegionSouth   Region = "South"
	RegionMidwest Region = "Midwest"
)

// City is a row of the static city table
type City struct {
	Code   CityCode      `json:"code"`
	Name   string        `json:"name"`
	State  string        `json:"state,omitempty"`
	Region Region        `json:"region,omitempty"`
	Center geotime.Point `json:"center"`
}

// Cities is the city table in display order
var Cities = []City{
	{Code: AllCities, Name: "All Cities"},
	{Code: LA, Name: "Los Angeles", State: "CA", Region: RegionWest, Center: geotime.Point{Lat: 34.0522, Lng: -118.2437}},
	{Code: SF, Name: "San Francisco", State: "CA", Region: RegionWest, Center: geotime.Point{Lat: 37.7749, Lng: -122.4194}},
	{Code: NYC, Name: "New York City", State: "NY", Region: RegionEast, Center: geotime.Point{Lat: 40.7128, Lng: -74.006}},
	{Code: MIA, Name: "Miami", State: "FL", Region: RegionSouth, Center: geotime.Point{Lat: 25.7617, Lng: -80.1918}},
	{Code: SEA, Name: "Seattle", State: "WA", Region: RegionWest, Center: geotime.Point{Lat: 47.6062, Lng: -122.3321}},
	{Code: CHI, Name: "Chicago", State: "IL", Region: RegionMidwest, Center: geotime.Point{Lat: 41.8781, Lng: -87.6298}},
	{Code: ATX, Name: "Austin", State: "TX", Region: RegionSouth, Center: geotime.Point{Lat: 30.2672, Lng: -97.7431}},
	{Code: BOS, Name: "Boston", State: "MA", Region: RegionEast, Center: geotime.Point{Lat: 42.3601, Lng: -71.0589}},
	{Code: ATL, Name: "Atlanta", State: "GA", Region: RegionSouth, Center: geotime.Point{Lat: 33.749, Lng: -84.388}},
}

var cityIndex = func() map[CityCode]City {
	m := make(map[CityCode]City, len(Cities))
	for _, c := range Cities {
		m[c.Code] = c
	}
	return m
}()

// LookupCity returns the table row for code
func LookupCity(code CityCode) (City, bool) {
	c, ok := cityIndex[code]
	return c, ok
}

// CityOf returns the table row for code, or a zero City for unknown codes
func CityOf(code CityCode) City {
	return cityIndex[code]
}

// IsValid reports whether c is in the city table, ALL included
func (c CityCode) IsValid() bool {
	_, ok := cityIndex[c]
	return ok
}

// IsConcrete reports whether c names a real city rather than the ALL filter
func (c CityCode) IsConcrete() bool {
	return c != AllCities && c.IsValid()
}

// Venue is a default meeting spot for a city
type Venue struct {
	Name  string        `json:"name"`
	Point geotime.Point `json:"point"`
}

var defaultVenues = map[CityCode]Venue{
	LA:  {Name: "Santa Monica Pier", Point: geotime.Point{Lat: 34.0094, Lng: -118.4973}},
	SF:  {Name: "Crissy Field East Beach", Point: geotime.Point{Lat: 37.8043, Lng: -122.4649}},
	NYC: {Name: "Central Park (Bethesda Terrace)", Point: geotime.Point{Lat: 40.774, Lng: -73.97}},
	MIA: {Name: "South Pointe Park Pier", Point: geotime.Point{Lat: 25.765, Lng: -80.1363}},
}

// DefaultVenue returns the city's landmark, or its downtown at the city centre
func DefaultVenue(code CityCode) Venue {
	if v, ok := defaultVenues[code]; ok {
		return v
	}
	c := CityOf(code)
	return Venue{Name: c.Name + " Downtown", Point: c.Center}
}
