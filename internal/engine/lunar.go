package engine

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/roach88/stellium/internal/astro"
)

// SkyAt answers the positions of several bodies at an instant. It is usually
// bound to a provider with SkyPath.
type SkyAt func(t time.Time) (astro.Positions, error)

const (
	// DefaultLunarStep samples the Moon often enough that it never moves
	// more than a couple of degrees between samples.
	DefaultLunarStep = 2 * time.Hour

	// DefaultPhaseStep is the sampling interval for phase searches.
	DefaultPhaseStep = 6 * time.Hour

	// maxSignTransit bounds the search for the Moon's ingress before and
	// egress after the requested range.
	maxSignTransit = 4 * 24 * time.Hour
)

// Phase returns the Moon's elongation from the Sun in [0, 360).
func Phase(sunLon, moonLon float64) float64 {
	return astro.Normalize(moonLon - sunLon)
}

// PhaseNameOf buckets an elongation into one of eight named phases, each
// 45° wide and centred on a multiple of 45°.
func PhaseNameOf(angle float64) astro.PhaseName {
	idx := int(math.Floor((astro.Normalize(angle)+22.5)/45)) % 8
	return astro.PhaseNames[idx]
}

// Illumination returns the lit fraction of the lunar disc, in [0, 1].
func Illumination(angle float64) float64 {
	return (1 - math.Cos(angle*math.Pi/180)) / 2
}

// LunarPhaseOf describes the phase formed by the given Sun and Moon.
func LunarPhaseOf(sun, moon astro.Position) astro.LunarPhase {
	angle := Phase(sun.Longitude, moon.Longitude)
	return astro.LunarPhase{
		Angle:        angle,
		Name:         PhaseNameOf(angle),
		Illumination: Illumination(angle),
		Waxing:       angle < 180,
	}
}

// LunarOptions tune void-of-course and phase searches.
type LunarOptions struct {
	// Step is the sampling interval. Defaults to DefaultLunarStep for
	// void-of-course searches and DefaultPhaseStep for phase searches.
	Step time.Duration

	// Bodies the Moon must aspect. Defaults to astro.Planets.
	Bodies []astro.Body

	// Aspects that end a void. Defaults to the major aspects.
	Aspects []astro.AspectType

	// MaxRange bounds the search. Defaults to DefaultMaxRange.
	MaxRange time.Duration
}

func (o LunarOptions) stepOr(def time.Duration) time.Duration {
	if o.Step > 0 {
		return o.Step
	}
	return def
}

func (o LunarOptions) bodies() []astro.Body {
	src := o.Bodies
	if len(src) == 0 {
		src = astro.Planets
	}
	out := make([]astro.Body, 0, len(src))
	for _, b := range src {
		if b != astro.Moon {
			out = append(out, b)
		}
	}
	return out
}

func (o LunarOptions) aspects() []astro.AspectType {
	if len(o.Aspects) > 0 {
		return o.Aspects
	}
	return astro.MajorAspects
}

type lunarSample struct {
	t      time.Time
	moon   float64
	others map[astro.Body]float64
}

func sampleSky(sky SkyAt, t time.Time, bodies []astro.Body) (lunarSample, error) {
	pos, err := sky(t)
	if err != nil {
		return lunarSample{}, NewProviderError(StagePositionLookup, astro.Moon, t, err)
	}
	lookup := func(b astro.Body) (float64, error) {
		p, ok := pos[b]
		if !ok {
			return 0, NewProviderError(StagePositionLookup, b, t, fmt.Errorf("%s missing from sky", b))
		}
		p, err := p.Validate()
		if err != nil {
			return 0, NewProviderError(StagePositionLookup, b, t, err)
		}
		return p.Longitude, nil
	}

	s := lunarSample{t: t, others: make(map[astro.Body]float64, len(bodies))}
	if s.moon, err = lookup(astro.Moon); err != nil {
		return lunarSample{}, err
	}
	for _, b := range bodies {
		if s.others[b], err = lookup(b); err != nil {
			return lunarSample{}, err
		}
	}
	return s, nil
}

// crossing reports whether a signed arc crossed zero between two samples and
// at which fraction of the interval. A jump of a quarter turn or more is the
// wrap at ±180°, not a crossing.
func crossing(gp, gc float64) (float64, bool) {
	if math.Abs(gc-gp) >= 90 {
		return 0, false
	}
	if (gp < 0 && gc >= 0) || (gp > 0 && gc <= 0) {
		return zeroCrossing(gp, gc), true
	}
	return 0, false
}

// aspectTargets returns the signed arcs at which an aspect perfects.
func aspectTargets(angle float64) []float64 {
	if angle == 0 || angle == 180 {
		return []float64{angle}
	}
	return []float64{angle, -angle}
}

type lunarEvent struct {
	t       time.Time
	ingress bool
	sign    astro.Sign
	contact astro.LunarContact
}

// lunarEventsBetween lists the aspect perfections and sign ingress of the
// Moon between two consecutive samples, in time order.
func lunarEventsBetween(p, c lunarSample, bodies []astro.Body, aspects []astro.AspectType) []lunarEvent {
	var events []lunarEvent
	for _, b := range bodies {
		dp := astro.Delta(p.moon, p.others[b])
		dc := astro.Delta(c.moon, c.others[b])
		for _, asp := range aspects {
			for _, target := range aspectTargets(asp.Angle()) {
				frac, ok := crossing(astro.Delta(target, dp), astro.Delta(target, dc))
				if !ok {
					continue
				}
				when := interpolateTime(p.t, c.t, frac)
				events = append(events, lunarEvent{
					t:       when,
					contact: astro.LunarContact{Time: when, Body: b, Aspect: asp},
				})
			}
		}
	}

	if sp, sc := astro.SignOf(p.moon), astro.SignOf(c.moon); sp != sc {
		boundary := sc.Start()
		frac, ok := crossing(astro.Delta(boundary, p.moon), astro.Delta(boundary, c.moon))
		if !ok {
			frac = 1
		}
		events = append(events, lunarEvent{t: interpolateTime(p.t, c.t, frac), ingress: true, sign: sc})
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].t.Before(events[j].t)
	})
	return events
}

// VoidOfCourse returns the void-of-course windows intersecting [start, end].
//
// For every Moon sign transit touching the range, the window runs from the
// Moon's last major-aspect perfection in that sign to its egress. A transit
// without any perfection is void from ingress to egress. Windows are not
// clipped to the range. When the ingress before start lies beyond the
// look-back bound the first window is clamped to start.
func VoidOfCourse(start, end time.Time, sky SkyAt, opts LunarOptions) ([]astro.VoidOfCoursePeriod, error) {
	if err := validateRange(start, end, opts.MaxRange); err != nil {
		return nil, err
	}
	step := opts.stepOr(DefaultLunarStep)
	bodies := opts.bodies()
	aspects := opts.aspects()

	first, err := sampleSky(sky, start, bodies)
	if err != nil {
		return nil, err
	}

	// Walk back until the Moon is in the previous sign, so the forward scan
	// observes the ingress that opened the current transit.
	from := first
	foundIngress := false
	for back := step; back <= maxSignTransit; back += step {
		s, err := sampleSky(sky, start.Add(-back), bodies)
		if err != nil {
			return nil, err
		}
		if astro.SignOf(s.moon) != astro.SignOf(first.moon) {
			from = s
			foundIngress = true
			break
		}
	}

	periods := []astro.VoidOfCoursePeriod{}
	tracking := !foundIngress
	transitSign := astro.SignOf(from.moon)
	transitStart := start
	var last *astro.LunarContact

	limit := end.Add(maxSignTransit)
	prev := from
	for prev.t.Before(limit) {
		cur, err := sampleSky(sky, prev.t.Add(step), bodies)
		if err != nil {
			return nil, err
		}
		for _, ev := range lunarEventsBetween(prev, cur, bodies, aspects) {
			if !ev.ingress {
				contact := ev.contact
				last = &contact
				continue
			}
			if tracking {
				voidStart := transitStart
				if last != nil {
					voidStart = last.Time
				}
				if voidStart.Before(ev.t) && ev.t.After(start) && !voidStart.After(end) {
					periods = append(periods, astro.VoidOfCoursePeriod{
						Start:      voidStart,
						End:        ev.t,
						Sign:       transitSign,
						LastAspect: last,
					})
				}
			}
			if ev.t.After(end) {
				return periods, nil
			}
			tracking = true
			transitSign = ev.sign
			transitStart = ev.t
			last = nil
		}
		prev = cur
	}
	return periods, nil
}

var principalPhases = []struct {
	angle float64
	name  astro.PhaseName
}{
	{0, astro.NewMoon},
	{90, astro.FirstQuarter},
	{180, astro.FullMoon},
	{270, astro.LastQuarter},
}

// FindPhaseEvents returns the New Moon, First Quarter, Full Moon and Last
// Quarter instants within [start, end], in chronological order.
func FindPhaseEvents(start, end time.Time, sky SkyAt, opts LunarOptions) ([]astro.PhaseEvent, error) {
	if err := validateRange(start, end, opts.MaxRange); err != nil {
		return nil, err
	}
	step := opts.stepOr(DefaultPhaseStep)
	sun := []astro.Body{astro.Sun}

	prev, err := sampleSky(sky, start, sun)
	if err != nil {
		return nil, err
	}

	events := []astro.PhaseEvent{}
	for _, ph := range principalPhases {
		if astro.Delta(ph.angle, Phase(prev.others[astro.Sun], prev.moon)) == 0 {
			events = append(events, astro.PhaseEvent{Time: start, Phase: ph.name, Sign: astro.SignOf(prev.moon)})
		}
	}

	for prev.t.Before(end) {
		t := prev.t.Add(step)
		if t.After(end) {
			t = end
		}
		cur, err := sampleSky(sky, t, sun)
		if err != nil {
			return nil, err
		}
		ep := Phase(prev.others[astro.Sun], prev.moon)
		ec := Phase(cur.others[astro.Sun], cur.moon)
		for _, ph := range principalPhases {
			frac, ok := crossing(astro.Delta(ph.angle, ep), astro.Delta(ph.angle, ec))
			if !ok {
				continue
			}
			moon := prev.moon + astro.Delta(prev.moon, cur.moon)*frac
			events = append(events, astro.PhaseEvent{
				Time:  interpolateTime(prev.t, cur.t, frac),
				Phase: ph.name,
				Sign:  astro.SignOf(moon),
			})
		}
		prev = cur
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Time.Before(events[j].Time)
	})
	return events, nil
}
