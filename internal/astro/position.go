package astro

import (
	"fmt"
	"math"
)

// Position is the geocentric ecliptic state of a body at one instant.
type Position struct {
	Longitude float64 `json:"longitude"`
	Latitude  float64 `json:"latitude"`
	Distance  float64 `json:"distance"`
	Speed     float64 `json:"speed"`
}

// Retrograde reports whether the body is moving backwards in longitude.
func (p Position) Retrograde() bool {
	return p.Speed < 0
}

// Sign returns the zodiac sign of the position.
func (p Position) Sign() Sign {
	return SignOf(p.Longitude)
}

// Validate rejects non-finite values and normalizes the longitude.
func (p Position) Validate() (Position, error) {
	for name, v := range map[string]float64{
		"longitude": p.Longitude,
		"latitude":  p.Latitude,
		"distance":  p.Distance,
		"speed":     p.Speed,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Position{}, fmt.Errorf("%s is not finite: %v", name, v)
		}
	}
	p.Longitude = Normalize(p.Longitude)
	return p, nil
}

// Positions maps bodies to their positions at a single instant.
type Positions map[Body]Position

// Bodies returns the bodies present in p, in display order.
func (p Positions) Bodies() []Body {
	out := make([]Body, 0, len(p))
	for _, b := range AllBodies {
		if _, ok := p[b]; ok {
			out = append(out, b)
		}
	}
	return out
}

// Normalize maps any longitude into [0, 360).
func Normalize(lon float64) float64 {
	lon = math.Mod(lon, 360)
	if lon < 0 {
		lon += 360
	}
	if lon >= 360 {
		lon = 0
	}
	return lon
}

// Delta returns the signed shortest arc from a to b, in (-180, 180].
func Delta(a, b float64) float64 {
	d := Normalize(b - a)
	if d > 180 {
		d -= 360
	}
	return d
}

// Separation returns the minimal angular distance between two longitudes,
// in [0, 180].
func Separation(a, b float64) float64 {
	return math.Abs(Delta(a, b))
}
