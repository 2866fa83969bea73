package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/roach88/stellium/internal/astro"
)

// createTestStore creates a new store in a temporary directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestChart builds a valid chart with equal houses from 0° Aries.
func createTestChart(t *testing.T, name, birthDate string) *astro.NatalChart {
	t.Helper()
	id, err := astro.ChartID(name, birthDate)
	if err != nil {
		t.Fatalf("ChartID() failed: %v", err)
	}
	date, err := time.Parse(astro.DateLayout, birthDate)
	if err != nil {
		t.Fatalf("parse birth date: %v", err)
	}

	positions := astro.Positions{}
	for i, b := range astro.AllBodies {
		positions[b] = astro.Position{Longitude: float64(i) * 27.5, Latitude: 0.1, Distance: 1, Speed: 1 - float64(i)*0.2}
	}
	var cusps astro.HouseCusps
	for i := range cusps {
		cusps[i] = float64(i) * 30
	}
	return &astro.NatalChart{
		ID:          id,
		Name:        name,
		BirthDate:   birthDate,
		BirthTime:   "08:15:00",
		Timezone:    "Europe/London",
		Instant:     date.Add(7*time.Hour + 15*time.Minute),
		Location:    astro.Location{Name: "London", Latitude: 51.5, Longitude: -0.13},
		HouseSystem: "equal",
		Positions:   positions,
		Cusps:       cusps,
	}
}
