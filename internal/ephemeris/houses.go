package ephemeris

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/roach88/stellium/internal/astro"
)

// HouseSystem names a house division method.
type HouseSystem string

const (
	// HouseEqual starts house 1 at the Ascendant and adds 30° per house.
	HouseEqual HouseSystem = "equal"
	// HouseWholeSign makes each house one whole sign, starting with the
	// rising sign.
	HouseWholeSign HouseSystem = "whole_sign"
)

// ParseHouseSystem parses a house system name. Empty means equal.
func ParseHouseSystem(s string) (HouseSystem, error) {
	switch strings.ToLower(strings.NewReplacer("-", "_", " ", "_").Replace(strings.TrimSpace(s))) {
	case "", "equal":
		return HouseEqual, nil
	case "whole_sign", "wholesign", "whole":
		return HouseWholeSign, nil
	default:
		return "", fmt.Errorf("unknown house system %q (want equal or whole_sign)", s)
	}
}

// AscendantHouses derives cusps from the Ascendant computed for the instant
// and place. It needs no ephemeris data.
type AscendantHouses struct {
	System HouseSystem
}

// HouseCusps implements the engine's HouseProvider.
func (h AscendantHouses) HouseCusps(_ context.Context, t time.Time, lat, lon float64) (astro.HouseCusps, error) {
	if math.IsNaN(lat) || math.Abs(lat) > 90 {
		return astro.HouseCusps{}, fmt.Errorf("latitude %v out of range", lat)
	}
	if math.IsNaN(lon) || math.Abs(lon) > 180 {
		return astro.HouseCusps{}, fmt.Errorf("longitude %v out of range", lon)
	}
	return CuspsFrom(h.System, Ascendant(t, lat, lon))
}

// CuspsFrom divides the zodiac into twelve houses starting from asc.
func CuspsFrom(system HouseSystem, asc float64) (astro.HouseCusps, error) {
	var first float64
	switch system {
	case HouseEqual, "":
		first = astro.Normalize(asc)
	case HouseWholeSign:
		first = astro.SignOf(asc).Start()
	default:
		return astro.HouseCusps{}, fmt.Errorf("unknown house system %q", system)
	}

	var cusps astro.HouseCusps
	for i := range cusps {
		cusps[i] = astro.Normalize(first + float64(i)*30)
	}
	return cusps, nil
}

const j2000 = 2451545.0

func julianDay(t time.Time) float64 {
	return float64(t.UnixNano())/float64(24*time.Hour) + 2440587.5
}

// LocalSiderealTime returns the local mean sidereal time in degrees for an
// observer at east longitude lon.
func LocalSiderealTime(t time.Time, lon float64) float64 {
	d := julianDay(t) - j2000
	c := d / 36525
	gmst := 280.46061837 + 360.98564736629*d + 0.000387933*c*c - c*c*c/38710000
	return astro.Normalize(gmst + lon)
}

// obliquity returns the mean obliquity of the ecliptic in degrees.
func obliquity(t time.Time) float64 {
	c := (julianDay(t) - j2000) / 36525
	return 23.439291 - 0.0130042*c
}

// Ascendant returns the ecliptic longitude rising on the eastern horizon.
func Ascendant(t time.Time, lat, lon float64) float64 {
	return ascendantFromRAMC(LocalSiderealTime(t, lon), lat, obliquity(t))
}

// midheaven returns the ecliptic longitude culminating on the meridian.
func midheaven(t time.Time, lon float64) float64 {
	return midheavenFromRAMC(LocalSiderealTime(t, lon), obliquity(t))
}

func ascendantFromRAMC(ramc, lat, eps float64) float64 {
	r, e, phi := rad(ramc), rad(eps), rad(lat)
	y := math.Cos(r)
	x := -(math.Sin(e)*math.Tan(phi) + math.Cos(e)*math.Sin(r))
	return astro.Normalize(deg(math.Atan2(y, x)))
}

func midheavenFromRAMC(ramc, eps float64) float64 {
	r, e := rad(ramc), rad(eps)
	return astro.Normalize(deg(math.Atan2(math.Sin(r), math.Cos(r)*math.Cos(e))))
}

func rad(d float64) float64 { return d * math.Pi / 180 }
func deg(r float64) float64 { return r * 180 / math.Pi }
