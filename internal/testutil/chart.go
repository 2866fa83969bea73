package testutil

import (
	"testing"
	"time"

	"github.com/roach88/stellium/internal/astro"
)

// Chart builds a valid natal chart with the given longitudes and equal
// houses from asc. Bodies not listed sit at index × 20°.
func Chart(t testing.TB, name, birthDate string, asc float64, lons map[astro.Body]float64) *astro.NatalChart {
	t.Helper()

	positions := make(astro.Positions, len(astro.AllBodies))
	for i, b := range astro.AllBodies {
		lon := float64(i) * 20
		if v, ok := lons[b]; ok {
			lon = v
		}
		positions[b] = astro.Position{Longitude: astro.Normalize(lon), Distance: 1, Speed: 1}
	}

	id, err := astro.ChartID(name, birthDate)
	if err != nil {
		t.Fatalf("ChartID: %v", err)
	}
	date, err := time.Parse(astro.DateLayout, birthDate)
	if err != nil {
		t.Fatalf("birth date: %v", err)
	}
	return &astro.NatalChart{
		ID:          id,
		Name:        name,
		BirthDate:   birthDate,
		BirthTime:   "12:00:00",
		Timezone:    "UTC",
		Instant:     date.Add(12 * time.Hour),
		Location:    astro.Location{Name: "Greenwich", Latitude: 51.48, Longitude: 0},
		HouseSystem: "equal",
		Positions:   positions,
		Cusps:       EqualCusps(asc),
	}
}
