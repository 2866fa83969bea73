package engine

import (
	"context"
	"time"

	"github.com/roach88/stellium/internal/astro"
)

// PositionProvider answers geocentric ecliptic positions. Implementations
// live in the ephemeris package.
type PositionProvider interface {
	Position(ctx context.Context, body astro.Body, t time.Time) (astro.Position, error)
}

// HouseProvider answers house cusps for an instant and geographic location.
type HouseProvider interface {
	HouseCusps(ctx context.Context, t time.Time, latitude, longitude float64) (astro.HouseCusps, error)
}

// Snapshot queries every body at t. A failing body aborts the snapshot with
// a provider error naming the body and instant.
func Snapshot(ctx context.Context, p PositionProvider, t time.Time, bodies []astro.Body) (astro.Positions, error) {
	out := make(astro.Positions, len(bodies))
	for _, b := range bodies {
		pos, err := p.Position(ctx, b, t)
		if err != nil {
			return nil, NewProviderError(StagePositionLookup, b, t, err)
		}
		pos, err = pos.Validate()
		if err != nil {
			return nil, NewProviderError(StagePositionLookup, b, t, err)
		}
		out[b] = pos
	}
	return out, nil
}

// BodyPath binds a provider to one body for use with the retrograde scans.
func BodyPath(ctx context.Context, p PositionProvider, body astro.Body) PositionAt {
	return func(t time.Time) (astro.Position, error) {
		return p.Position(ctx, body, t)
	}
}

// SkyPath binds a provider to a body set for use with the lunar scans. The
// Moon is always included.
func SkyPath(ctx context.Context, p PositionProvider, bodies []astro.Body) SkyAt {
	set := []astro.Body{astro.Moon}
	for _, b := range bodies {
		if b != astro.Moon {
			set = append(set, b)
		}
	}
	return func(t time.Time) (astro.Positions, error) {
		return Snapshot(ctx, p, t, set)
	}
}
