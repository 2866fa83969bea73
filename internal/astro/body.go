package astro

import "strings"

// Body identifies a celestial point the engine can reason about.
type Body string

const (
	Sun       Body = "sun"
	Moon      Body = "moon"
	Mercury   Body = "mercury"
	Venus     Body = "venus"
	Mars      Body = "mars"
	Jupiter   Body = "jupiter"
	Saturn    Body = "saturn"
	Uranus    Body = "uranus"
	Neptune   Body = "neptune"
	Pluto     Body = "pluto"
	NorthNode Body = "north_node"
)

// AllBodies lists every body in display order.
var AllBodies = []Body{Sun, Moon, Mercury, Venus, Mars, Jupiter, Saturn, Uranus, Neptune, Pluto, NorthNode}

// Planets lists the bodies that take part in lunar void-of-course checks.
var Planets = []Body{Sun, Mercury, Venus, Mars, Jupiter, Saturn, Uranus, Neptune, Pluto}

// Index returns the display-order index of b, or -1 for unknown bodies.
func (b Body) Index() int {
	for i, known := range AllBodies {
		if known == b {
			return i
		}
	}
	return -1
}

// Valid reports whether b is one of the known bodies.
func (b Body) Valid() bool {
	return b.Index() >= 0
}

// CanRetrograde reports whether b can appear to move backwards.
// The luminaries never do.
func (b Body) CanRetrograde() bool {
	switch b {
	case Sun, Moon:
		return false
	default:
		return b.Valid()
	}
}

// DisplayName returns the human-readable name used in reports.
func (b Body) DisplayName() string {
	switch b {
	case Sun:
		return "Sun"
	case Moon:
		return "Moon"
	case Mercury:
		return "Mercury"
	case Venus:
		return "Venus"
	case Mars:
		return "Mars"
	case Jupiter:
		return "Jupiter"
	case Saturn:
		return "Saturn"
	case Uranus:
		return "Uranus"
	case Neptune:
		return "Neptune"
	case Pluto:
		return "Pluto"
	case NorthNode:
		return "North Node"
	default:
		return string(b)
	}
}

func (b Body) String() string {
	return b.DisplayName()
}

// LookupBody resolves a user-supplied body name. Matching ignores case,
// spaces, dashes and underscores, so "North Node", "north-node" and
// "NorthNode" all resolve. "node" and "true node" are accepted as aliases.
func LookupBody(name string) (Body, bool) {
	key := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '_':
			return -1
		}
		return r
	}, strings.ToLower(strings.TrimSpace(name)))

	switch key {
	case "node", "truenode", "northnode", "rahu":
		return NorthNode, true
	}
	for _, b := range AllBodies {
		if string(b) == key {
			return b, true
		}
	}
	return "", false
}
