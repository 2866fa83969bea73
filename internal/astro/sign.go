package astro

import (
	"fmt"
	"math"
)

// Sign is one of the twelve 30° zodiac segments, starting at Aries.
type Sign int

const (
	Aries Sign = iota
	Taurus
	Gemini
	Cancer
	Leo
	Virgo
	Libra
	Scorpio
	Sagittarius
	Capricorn
	Aquarius
	Pisces
)

var signNames = [12]string{
	"Aries", "Taurus", "Gemini", "Cancer", "Leo", "Virgo",
	"Libra", "Scorpio", "Sagittarius", "Capricorn", "Aquarius", "Pisces",
}

// SignOf returns the sign containing the given longitude.
func SignOf(longitude float64) Sign {
	s := int(math.Floor(Normalize(longitude) / 30))
	if s > 11 {
		s = 11
	}
	return Sign(s)
}

// Start returns the longitude where the sign begins.
func (s Sign) Start() float64 {
	return float64(s) * 30
}

// Next returns the following sign, wrapping Pisces to Aries.
func (s Sign) Next() Sign {
	return Sign((int(s) + 1) % 12)
}

func (s Sign) String() string {
	if s < 0 || s > 11 {
		return "Unknown"
	}
	return signNames[s]
}

// MarshalText encodes the sign by name.
func (s Sign) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// DegreeInSign returns the offset of longitude within its sign, in [0, 30).
func DegreeInSign(longitude float64) float64 {
	return Normalize(longitude) - SignOf(longitude).Start()
}

// UnmarshalText decodes a sign name as produced by MarshalText.
func (s *Sign) UnmarshalText(text []byte) error {
	for i, name := range signNames {
		if name == string(text) {
			*s = Sign(i)
			return nil
		}
	}
	return fmt.Errorf("unknown sign %q", string(text))
}
