package astro

// AspectType names an angular relationship between two bodies.
type AspectType string

const (
	Conjunction    AspectType = "conjunction"
	SemiSextile    AspectType = "semi-sextile"
	SemiSquare     AspectType = "semi-square"
	Sextile        AspectType = "sextile"
	Square         AspectType = "square"
	Trine          AspectType = "trine"
	Sesquiquadrate AspectType = "sesquiquadrate"
	Quincunx       AspectType = "quincunx"
	Opposition     AspectType = "opposition"
)

// MajorAspects are always considered. MinorAspects only on request.
var (
	MajorAspects = []AspectType{Conjunction, Sextile, Square, Trine, Opposition}
	MinorAspects = []AspectType{SemiSextile, SemiSquare, Sesquiquadrate, Quincunx}
)

// AllAspects lists every aspect type by increasing angle.
var AllAspects = []AspectType{
	Conjunction, SemiSextile, SemiSquare, Sextile, Square,
	Trine, Sesquiquadrate, Quincunx, Opposition,
}

// Angle returns the exact angle of the aspect in degrees.
func (a AspectType) Angle() float64 {
	switch a {
	case Conjunction:
		return 0
	case SemiSextile:
		return 30
	case SemiSquare:
		return 45
	case Sextile:
		return 60
	case Square:
		return 90
	case Trine:
		return 120
	case Sesquiquadrate:
		return 135
	case Quincunx:
		return 150
	case Opposition:
		return 180
	default:
		return -1
	}
}

// IsMajor reports whether a is one of the five Ptolemaic aspects.
func (a AspectType) IsMajor() bool {
	switch a {
	case Conjunction, Sextile, Square, Trine, Opposition:
		return true
	default:
		return false
	}
}

// Valid reports whether a is a known aspect type.
func (a AspectType) Valid() bool {
	return a.Angle() >= 0
}

// OrbTable maps aspect types to their maximum allowed orb in degrees.
type OrbTable map[AspectType]float64

// DefaultOrbs returns a fresh copy of the standard orb table.
func DefaultOrbs() OrbTable {
	return OrbTable{
		Conjunction:    8,
		Opposition:     8,
		Trine:          8,
		Square:         7,
		Sextile:        6,
		SemiSextile:    2,
		SemiSquare:     2,
		Sesquiquadrate: 2,
		Quincunx:       3,
	}
}

// Aspect is a detected relationship between two bodies.
type Aspect struct {
	BodyA    Body       `json:"body_a"`
	BodyB    Body       `json:"body_b"`
	Type     AspectType `json:"type"`
	Orb      float64    `json:"orb"`
	Exact    bool       `json:"exact"`
	Applying bool       `json:"applying"`
}

// Nature classifies an aspect's character for compatibility summaries.
type Nature string

const (
	Harmonious  Nature = "harmonious"
	Challenging Nature = "challenging"
)
