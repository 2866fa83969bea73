package engine

import (
	"context"
	"time"

	"github.com/roach88/stellium/internal/astro"
)

// BirthData is everything needed to construct a natal chart.
type BirthData struct {
	Name        string
	BirthDate   string
	BirthTime   string
	Timezone    string
	Location    astro.Location
	HouseSystem string
}

// BuildChart queries the providers for every body and the house cusps at
// the birth instant. Failures carry the stage that failed.
func BuildChart(ctx context.Context, positions PositionProvider, houses HouseProvider, birth BirthData) (*astro.NatalChart, error) {
	name := astro.NormalizeName(birth.Name)
	if name == "" {
		return nil, NewInvalidChartError("chart name is required", nil)
	}
	instant, err := ResolveBirthInstant(birth.BirthDate, birth.BirthTime, birth.Timezone)
	if err != nil {
		return nil, err
	}

	pos, err := Snapshot(ctx, positions, instant, astro.AllBodies)
	if err != nil {
		return nil, err
	}

	cusps, err := houses.HouseCusps(ctx, instant, birth.Location.Latitude, birth.Location.Longitude)
	if err != nil {
		return nil, NewProviderError(StageHouseLookup, "", instant, err)
	}
	for i := range cusps {
		cusps[i] = astro.Normalize(cusps[i])
	}
	if err := cusps.Validate(); err != nil {
		return nil, NewProviderError(StageHouseLookup, "", instant, err)
	}

	id, err := astro.ChartID(name, birth.BirthDate)
	if err != nil {
		return nil, err
	}

	birthTime := birth.BirthTime
	if birthTime == "" {
		birthTime = "12:00:00"
	}
	return &astro.NatalChart{
		ID:          id,
		Name:        name,
		BirthDate:   birth.BirthDate,
		BirthTime:   birthTime,
		Timezone:    birth.Timezone,
		Instant:     instant.UTC().Truncate(time.Second),
		Location:    birth.Location,
		HouseSystem: birth.HouseSystem,
		Positions:   pos,
		Cusps:       cusps,
	}, nil
}
