package engine

import (
	"math"

	"github.com/roach88/stellium/internal/astro"
)

// DefaultExactOrb is the orb below which an aspect is reported as exact.
const DefaultExactOrb = 1.0

var defaultOrbs = astro.DefaultOrbs()

// TieBreak decides the applying flag when the orb is not changing, which
// happens at zero relative speed or at the instant of perfection.
type TieBreak int

const (
	// TieSeparating reports motionless and perfected aspects as separating.
	TieSeparating TieBreak = iota
	// TieApplying reports them as applying.
	TieApplying
)

// AspectOptions tune aspect detection. The zero value uses the default orb
// table, major aspects only and an exact threshold of DefaultExactOrb.
type AspectOptions struct {
	// IncludeMinor adds the semi-sextile, semi-square, sesquiquadrate and
	// quincunx to the candidate set.
	IncludeMinor bool

	// Orbs overrides the maximum orb per aspect type. Types missing from a
	// non-nil table fall back to the default orb.
	Orbs astro.OrbTable

	// ExactOrb overrides DefaultExactOrb when positive.
	ExactOrb float64

	// TieBreak selects the applying policy for non-changing orbs.
	TieBreak TieBreak

	// FixedB treats the second position set as fixed points. Transits to a
	// natal chart use this: the natal placements do not move.
	FixedB bool
}

func (o AspectOptions) maxOrb(t astro.AspectType) float64 {
	if orb, ok := o.Orbs[t]; ok {
		return orb
	}
	return defaultOrbs[t]
}

func (o AspectOptions) exactOrb() float64 {
	if o.ExactOrb > 0 {
		return o.ExactOrb
	}
	return DefaultExactOrb
}

func (o AspectOptions) candidates() []astro.AspectType {
	if o.IncludeMinor {
		return astro.AllAspects
	}
	return astro.MajorAspects
}

// MatchAspect finds the tightest aspect between two positions, if any is
// within orb.
func MatchAspect(bodyA astro.Body, a astro.Position, bodyB astro.Body, b astro.Position, opts AspectOptions) (astro.Aspect, bool) {
	delta := astro.Delta(a.Longitude, b.Longitude)
	sep := math.Abs(delta)

	var best astro.Aspect
	found := false
	for _, t := range opts.candidates() {
		orb := math.Abs(sep - t.Angle())
		if orb > opts.maxOrb(t) {
			continue
		}
		if !found || orb < best.Orb {
			best = astro.Aspect{BodyA: bodyA, BodyB: bodyB, Type: t, Orb: orb}
			found = true
		}
	}
	if !found {
		return astro.Aspect{}, false
	}

	speedB := b.Speed
	if opts.FixedB {
		speedB = 0
	}
	best.Exact = best.Orb < opts.exactOrb()
	best.Applying = applying(delta, sep-best.Type.Angle(), a.Speed, speedB, opts.TieBreak)
	return best, true
}

// applying reports whether the orb is closing. delta is the signed arc from
// A to B and offset the signed distance of the separation from exact.
//
// The separation changes at sign(delta)*(speedB-speedA) degrees per day and
// the orb at sign(offset) times that. The rate is unchanged when A and B are
// swapped, so the flag does not depend on argument order.
func applying(delta, offset, speedA, speedB float64, tie TieBreak) bool {
	rate := sign(offset) * sign(delta) * (speedB - speedA)
	if rate == 0 {
		return tie == TieApplying
	}
	return rate < 0
}

func sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}

// ComputeAspects pairs every body of a with every body of b, in display
// order of a then b, and returns the aspects within orb.
func ComputeAspects(a, b astro.Positions, opts AspectOptions) []astro.Aspect {
	aspects := []astro.Aspect{}
	for _, bodyA := range a.Bodies() {
		for _, bodyB := range b.Bodies() {
			if asp, ok := MatchAspect(bodyA, a[bodyA], bodyB, b[bodyB], opts); ok {
				aspects = append(aspects, asp)
			}
		}
	}
	return aspects
}

// ComputeChartAspects returns the aspects within a single set of positions.
// Each unordered pair of distinct bodies is considered once.
func ComputeChartAspects(p astro.Positions, opts AspectOptions) []astro.Aspect {
	aspects := []astro.Aspect{}
	bodies := p.Bodies()
	for i, bodyA := range bodies {
		for _, bodyB := range bodies[i+1:] {
			if asp, ok := MatchAspect(bodyA, p[bodyA], bodyB, p[bodyB], opts); ok {
				aspects = append(aspects, asp)
			}
		}
	}
	return aspects
}
