package astro

import (
	"errors"
	"fmt"
	"math"
)

// HouseCusps holds the twelve house cusp longitudes. Index 0 is the first
// house cusp (the Ascendant), index 9 the tenth (the Midheaven).
type HouseCusps [12]float64

// Cusp returns the cusp longitude of house n, for n in 1..12.
func (c HouseCusps) Cusp(n int) float64 {
	return c[(n-1+12)%12]
}

// Ascendant returns the first house cusp.
func (c HouseCusps) Ascendant() float64 {
	return c[0]
}

// Midheaven returns the tenth house cusp.
func (c HouseCusps) Midheaven() float64 {
	return c[9]
}

// ErrInvalidCusps is returned by Validate for cusps that do not describe
// twelve consecutive zodiacal segments.
var ErrInvalidCusps = errors.New("invalid house cusps")

// Validate checks that every cusp is a normalized finite longitude and that
// the cusps advance strictly in zodiacal order, wrapping exactly once.
func (c HouseCusps) Validate() error {
	total := 0.0
	for i, lon := range c {
		if math.IsNaN(lon) || math.IsInf(lon, 0) || lon < 0 || lon >= 360 {
			return fmt.Errorf("%w: cusp %d out of range: %v", ErrInvalidCusps, i+1, lon)
		}
		span := Normalize(c[(i+1)%12] - lon)
		if span <= 0 {
			return fmt.Errorf("%w: cusp %d does not advance past cusp %d", ErrInvalidCusps, (i+1)%12+1, i+1)
		}
		total += span
	}
	if math.Abs(total-360) > 1e-6 {
		return fmt.Errorf("%w: cusps wrap the zodiac %.0f times", ErrInvalidCusps, math.Round(total/360))
	}
	return nil
}

// LifeArea is the domain of life traditionally ruled by a house.
type LifeArea struct {
	House       int    `json:"house"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

var lifeAreas = [12]LifeArea{
	{1, "Identity", "Self, identity, appearance, first impressions"},
	{2, "Finances", "Money, possessions, values, self-worth"},
	{3, "Communication", "Communication, siblings, short trips, learning"},
	{4, "Home", "Home, family, roots, emotional foundation"},
	{5, "Romance", "Creativity, romance, children, pleasure"},
	{6, "Work", "Work, health, daily routines, service"},
	{7, "Partnerships", "Partnerships, marriage, contracts"},
	{8, "Transformation", "Transformation, shared resources, intimacy"},
	{9, "Spirituality", "Higher education, travel, philosophy, beliefs"},
	{10, "Career", "Career, public image, reputation, authority"},
	{11, "Community", "Friends, groups, hopes, social causes"},
	{12, "Subconscious", "Subconscious, hidden matters, isolation, endings"},
}

// LifeAreaOf returns the life area of house n. ok is false outside 1..12.
func LifeAreaOf(house int) (area LifeArea, ok bool) {
	if house < 1 || house > 12 {
		return LifeArea{}, false
	}
	return lifeAreas[house-1], true
}
