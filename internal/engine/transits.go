package engine

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"time"

	"github.com/roach88/stellium/internal/astro"
)

// ReportOptions tune transit report generation.
type ReportOptions struct {
	// Aspects configures detection. FixedB is always forced on because the
	// natal placements do not move.
	Aspects AspectOptions

	// Step is the sampling interval. Defaults to DefaultStep (one day).
	Step time.Duration

	// Bodies are the transiting bodies. Defaults to astro.AllBodies.
	Bodies []astro.Body

	// MaxRange bounds the report. Defaults to DefaultMaxRange.
	MaxRange time.Duration
}

func (o ReportOptions) step() time.Duration {
	if o.Step > 0 {
		return o.Step
	}
	return DefaultStep
}

func (o ReportOptions) bodies() []astro.Body {
	if len(o.Bodies) > 0 {
		return o.Bodies
	}
	return astro.AllBodies
}

// TransitReporter generates transit reports for natal charts. It holds only
// its provider and is safe for concurrent use if the provider is.
type TransitReporter struct {
	positions PositionProvider
	log       *slog.Logger
}

// NewTransitReporter creates a reporter backed by the given provider.
func NewTransitReporter(positions PositionProvider) *TransitReporter {
	return &TransitReporter{
		positions: positions,
		log:       slog.With(slog.String("component", "transits")),
	}
}

type aspectKey struct {
	transit astro.Body
	natal   astro.Body
	kind    astro.AspectType
}

// skyState is what the reporter remembers about the previous step.
type skyState struct {
	retrograde map[astro.Body]bool
	signs      map[astro.Body]astro.Sign
	phase      astro.PhaseName
	exact      map[aspectKey]bool
}

// Generate walks [start, end] one step at a time and reports what begins at
// each step: transit-to-natal aspects becoming exact, stations, sign
// ingresses and lunar phase changes. Conditions already in effect at start
// other than exact aspects need a previous step to compare with and are not
// reported. When both the Sun and the Moon are tracked, New and Full Moons
// are added at their interpolated instants. Events are in time order. A
// failing step aborts the whole report.
func (r *TransitReporter) Generate(ctx context.Context, start, end time.Time, natal *astro.NatalChart, opts ReportOptions) (*astro.TransitReport, error) {
	if natal == nil {
		return nil, NewInvalidChartError("natal chart is required", nil)
	}
	if err := validateRange(start, end, opts.MaxRange); err != nil {
		return nil, err
	}

	aspectOpts := opts.Aspects
	aspectOpts.FixedB = true
	bodies := opts.bodies()
	step := opts.step()

	report := &astro.TransitReport{
		ChartName: natal.Name,
		BirthDate: natal.BirthDate,
		Start:     start,
		End:       end,
		Events:    []astro.Event{},
	}

	var prev *skyState
	for t := start; !t.After(end); t = t.Add(step) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		sky, err := Snapshot(ctx, r.positions, t, bodies)
		if err != nil {
			return nil, err
		}

		cur := &skyState{
			retrograde: CurrentStatus(sky),
			signs:      make(map[astro.Body]astro.Sign, len(sky)),
			exact:      map[aspectKey]bool{},
		}
		for body, pos := range sky {
			cur.signs[body] = pos.Sign()
		}
		sun, hasSun := sky[astro.Sun]
		moon, hasMoon := sky[astro.Moon]
		if hasSun && hasMoon {
			cur.phase = PhaseNameOf(Phase(sun.Longitude, moon.Longitude))
		}

		if prev != nil {
			report.Events = append(report.Events, stationEvents(t, sky, prev, cur)...)
			report.Events = append(report.Events, ingressEvents(t, sky, prev, cur)...)
		}

		for _, asp := range ComputeAspects(sky, natal.Positions, aspectOpts) {
			if !asp.Exact {
				continue
			}
			key := aspectKey{transit: asp.BodyA, natal: asp.BodyB, kind: asp.Type}
			cur.exact[key] = true
			if prev != nil && prev.exact[key] {
				continue
			}
			report.Events = append(report.Events, aspectEvent(t, asp))
		}

		if prev != nil && cur.phase != "" && prev.phase != "" && cur.phase != prev.phase {
			report.Events = append(report.Events, astro.Event{
				Time:        t,
				Kind:        astro.EventPhaseChange,
				Bodies:      []astro.Body{astro.Moon},
				Phase:       cur.phase,
				Description: fmt.Sprintf("%s phase begins", cur.phase),
			})
		}
		prev = cur
	}

	if slices.Contains(bodies, astro.Sun) && slices.Contains(bodies, astro.Moon) {
		lunations, err := r.lunations(ctx, start, end, opts.MaxRange)
		if err != nil {
			return nil, err
		}
		report.Events = append(report.Events, lunations...)
		sort.SliceStable(report.Events, func(i, j int) bool {
			return report.Events[i].Time.Before(report.Events[j].Time)
		})
	}

	r.log.Debug("transit report generated",
		slog.String("chart", natal.Name),
		slog.Time("start", start),
		slog.Time("end", end),
		slog.Int("events", len(report.Events)))
	return report, nil
}

// lunations finds the exact New and Full Moons in [start, end].
func (r *TransitReporter) lunations(ctx context.Context, start, end time.Time, maxRange time.Duration) ([]astro.Event, error) {
	sky := SkyPath(ctx, r.positions, []astro.Body{astro.Sun})
	phases, err := FindPhaseEvents(start, end, sky, LunarOptions{MaxRange: maxRange})
	if err != nil {
		return nil, err
	}

	var events []astro.Event
	for _, ph := range phases {
		if ph.Phase != astro.NewMoon && ph.Phase != astro.FullMoon {
			continue
		}
		sign := ph.Sign
		events = append(events, astro.Event{
			Time:        ph.Time,
			Kind:        astro.EventLunation,
			Bodies:      []astro.Body{astro.Moon},
			Phase:       ph.Phase,
			Sign:        &sign,
			Description: fmt.Sprintf("%s in %s", ph.Phase, sign),
		})
	}
	return events, nil
}
