package engine

import "github.com/roach88/stellium/internal/astro"

// PlaceHouse returns the house (1..12) containing the longitude. House N
// spans from cusp N up to, but excluding, cusp N+1, wrapping through 0° and
// from house 12 back to house 1.
func PlaceHouse(longitude float64, cusps astro.HouseCusps) (int, error) {
	if err := cusps.Validate(); err != nil {
		return 0, NewInvalidChartError("cannot place body", err)
	}
	return placeHouse(longitude, cusps), nil
}

// PlaceAll places every body of p in the houses defined by cusps.
func PlaceAll(p astro.Positions, cusps astro.HouseCusps) (map[astro.Body]int, error) {
	if err := cusps.Validate(); err != nil {
		return nil, NewInvalidChartError("cannot place bodies", err)
	}
	houses := make(map[astro.Body]int, len(p))
	for body, pos := range p {
		houses[body] = placeHouse(pos.Longitude, cusps)
	}
	return houses, nil
}

// placeHouse assumes validated cusps, which guarantees a match.
func placeHouse(longitude float64, cusps astro.HouseCusps) int {
	lon := astro.Normalize(longitude)
	for i := 0; i < 12; i++ {
		start := cusps[i]
		span := astro.Normalize(cusps[(i+1)%12] - start)
		if astro.Normalize(lon-start) < span {
			return i + 1
		}
	}
	return 12
}
