package testutil

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/roach88/stellium/internal/astro"
)

// Epoch is the reference instant used by fixtures.
var Epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// Day is one day as a duration.
const Day = 24 * time.Hour

// Path computes a body's position at an instant.
type Path func(t time.Time) astro.Position

func days(epoch, t time.Time) float64 {
	return t.Sub(epoch).Hours() / 24
}

// Fixed returns a path that never moves.
func Fixed(lon float64) Path {
	return func(time.Time) astro.Position {
		return astro.Position{Longitude: astro.Normalize(lon), Distance: 1}
	}
}

// Linear returns a path moving at a constant speed (degrees/day) from lon0
// at epoch.
func Linear(epoch time.Time, lon0, speed float64) Path {
	return func(t time.Time) astro.Position {
		return astro.Position{
			Longitude: astro.Normalize(lon0 + speed*days(epoch, t)),
			Distance:  1,
			Speed:     speed,
		}
	}
}

// Oscillating returns a path whose speed is mean + amplitude*cos(2πd/period).
// With amplitude > mean it turns retrograde around each half period.
func Oscillating(epoch time.Time, lon0, mean, amplitude float64, period time.Duration) Path {
	p := period.Hours() / 24
	return func(t time.Time) astro.Position {
		d := days(epoch, t)
		w := 2 * math.Pi / p
		return astro.Position{
			Longitude: astro.Normalize(lon0 + mean*d + amplitude/w*math.Sin(w*d)),
			Distance:  1,
			Speed:     mean + amplitude*math.Cos(w*d),
		}
	}
}

// DailySpeeds returns a stationary path whose speed is sampled once per day
// from epoch and linearly interpolated in between. Speeds beyond the last
// sample hold the last value.
func DailySpeeds(epoch time.Time, lon float64, speeds ...float64) Path {
	return func(t time.Time) astro.Position {
		d := days(epoch, t)
		var v float64
		switch {
		case len(speeds) == 0:
		case d <= 0:
			v = speeds[0]
		case d >= float64(len(speeds)-1):
			v = speeds[len(speeds)-1]
		default:
			i := int(math.Floor(d))
			f := d - float64(i)
			v = speeds[i] + (speeds[i+1]-speeds[i])*f
		}
		return astro.Position{Longitude: astro.Normalize(lon), Distance: 1, Speed: v}
	}
}

// ErrNoPath is returned for bodies the Sky has no path for.
var ErrNoPath = errors.New("no path for body")

// Sky is a synthetic position provider assembled from per-body paths.
type Sky struct {
	Paths map[astro.Body]Path

	// Fail, when set, is consulted before every query.
	Fail func(body astro.Body, t time.Time) error

	mu    sync.Mutex
	calls int
}

// NewSky creates a Sky from paths.
func NewSky(paths map[astro.Body]Path) *Sky {
	return &Sky{Paths: paths}
}

// Position implements the engine's PositionProvider.
func (s *Sky) Position(_ context.Context, body astro.Body, t time.Time) (astro.Position, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()

	if s.Fail != nil {
		if err := s.Fail(body, t); err != nil {
			return astro.Position{}, err
		}
	}
	path, ok := s.Paths[body]
	if !ok {
		return astro.Position{}, fmt.Errorf("%w: %s", ErrNoPath, body)
	}
	return path(t), nil
}

// Snapshot returns every path's position at t. Its signature matches the
// engine's SkyAt.
func (s *Sky) Snapshot(t time.Time) (astro.Positions, error) {
	out := make(astro.Positions, len(s.Paths))
	for body := range s.Paths {
		pos, err := s.Position(context.Background(), body, t)
		if err != nil {
			return nil, err
		}
		out[body] = pos
	}
	return out, nil
}

// Calls returns the number of position queries served.
func (s *Sky) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// FixedHouses is a house provider that always answers the same cusps.
type FixedHouses struct {
	Cusps astro.HouseCusps
	Err   error
}

// HouseCusps implements the engine's HouseProvider.
func (h FixedHouses) HouseCusps(context.Context, time.Time, float64, float64) (astro.HouseCusps, error) {
	return h.Cusps, h.Err
}

// EqualCusps returns equal-house cusps starting at the given Ascendant.
func EqualCusps(asc float64) astro.HouseCusps {
	var c astro.HouseCusps
	for i := range c {
		c[i] = astro.Normalize(asc + float64(i)*30)
	}
	return c
}

// StaticSky returns fixed positions for every known body, with the given
// longitudes overriding the defaults (body index × 20°).
func StaticSky(overrides map[astro.Body]float64) *Sky {
	paths := make(map[astro.Body]Path, len(astro.AllBodies))
	for i, b := range astro.AllBodies {
		lon := float64(i) * 20
		if v, ok := overrides[b]; ok {
			lon = v
		}
		paths[b] = Fixed(lon)
	}
	return NewSky(paths)
}

// Ephemeris pairs a Sky with fixed house cusps so it can stand in for a full
// ephemeris provider.
type Ephemeris struct {
	*Sky
	FixedHouses
}

// NewEphemeris creates an Ephemeris with equal houses from asc.
func NewEphemeris(sky *Sky, asc float64) *Ephemeris {
	return &Ephemeris{Sky: sky, FixedHouses: FixedHouses{Cusps: EqualCusps(asc)}}
}

// Name identifies the provider in logs.
func (e *Ephemeris) Name() string {
	return "synthetic"
}
