package engine

import (
	"time"

	"github.com/roach88/stellium/internal/astro"
)

// PositionAt answers one body's position at an instant. It is usually
// bound to a provider with BodyPath.
type PositionAt func(t time.Time) (astro.Position, error)

// DefaultStep is the sampling interval for retrograde scans and reports.
const DefaultStep = 24 * time.Hour

// RetrogradeOptions tune station searches.
type RetrogradeOptions struct {
	// Step is the sampling interval. Defaults to DefaultStep.
	Step time.Duration

	// Resolution is the bracket width below which bisection stops. When it
	// is not finer than Step no extra samples are taken and the station is
	// interpolated inside the sampling bracket.
	Resolution time.Duration

	// MaxRange bounds the search. Defaults to DefaultMaxRange.
	MaxRange time.Duration
}

func (o RetrogradeOptions) step() time.Duration {
	if o.Step > 0 {
		return o.Step
	}
	return DefaultStep
}

// CurrentStatus reports, for every body in p, whether it is retrograde.
func CurrentStatus(p astro.Positions) map[astro.Body]bool {
	status := make(map[astro.Body]bool, len(p))
	for body, pos := range p {
		status[body] = pos.Retrograde()
	}
	return status
}

// FindStations returns the instants in [start, end] where body's speed
// changes sign, in chronological order.
func FindStations(body astro.Body, start, end time.Time, at PositionAt, opts RetrogradeOptions) ([]astro.Station, error) {
	_, stations, err := scanStations(body, start, end, at, opts)
	return stations, err
}

// FindPeriods returns the retrograde periods of body that intersect
// [start, end]. A period in progress at start is flagged OpenStart; one
// still in progress at end has a nil End.
func FindPeriods(body astro.Body, start, end time.Time, at PositionAt, opts RetrogradeOptions) ([]astro.RetrogradePeriod, error) {
	initial, stations, err := scanStations(body, start, end, at, opts)
	if err != nil {
		return nil, err
	}

	periods := []astro.RetrogradePeriod{}
	var current *astro.RetrogradePeriod
	if initial {
		current = &astro.RetrogradePeriod{Body: body, Start: start, OpenStart: true}
	}
	for _, st := range stations {
		switch st.Kind {
		case astro.StationRetrograde:
			current = &astro.RetrogradePeriod{Body: body, Start: st.Time}
		case astro.StationDirect:
			if current == nil {
				continue
			}
			end := st.Time
			current.End = &end
			periods = append(periods, *current)
			current = nil
		}
	}
	if current != nil {
		periods = append(periods, *current)
	}
	return periods, nil
}

// scanStations samples speed across the range and returns whether the body
// was retrograde at start along with every station found.
func scanStations(body astro.Body, start, end time.Time, at PositionAt, opts RetrogradeOptions) (bool, []astro.Station, error) {
	if err := validateRange(start, end, opts.MaxRange); err != nil {
		return false, nil, err
	}
	stations := []astro.Station{}
	if !body.CanRetrograde() {
		return false, stations, nil
	}

	speedAt := func(t time.Time) (float64, error) {
		pos, err := at(t)
		if err != nil {
			return 0, NewProviderError(StagePositionLookup, body, t, err)
		}
		pos, err = pos.Validate()
		if err != nil {
			return 0, NewProviderError(StagePositionLookup, body, t, err)
		}
		return pos.Speed, nil
	}

	step := opts.step()
	prevT := start
	prevV, err := speedAt(start)
	if err != nil {
		return false, nil, err
	}
	initial := prevV < 0

	for prevT.Before(end) {
		t := prevT.Add(step)
		if t.After(end) {
			t = end
		}
		v, err := speedAt(t)
		if err != nil {
			return false, nil, err
		}
		if (prevV < 0) != (v < 0) {
			when, err := refineStation(prevT, prevV, t, v, speedAt, opts.Resolution)
			if err != nil {
				return false, nil, err
			}
			kind := astro.StationDirect
			if v < 0 {
				kind = astro.StationRetrograde
			}
			stations = append(stations, astro.Station{Body: body, Time: when, Kind: kind})
		}
		prevT, prevV = t, v
	}
	return initial, stations, nil
}

// refineStation narrows a sign-change bracket by bisection down to
// resolution, then interpolates the zero crossing linearly.
func refineStation(lo time.Time, vlo float64, hi time.Time, vhi float64, speedAt func(time.Time) (float64, error), resolution time.Duration) (time.Time, error) {
	for resolution > 0 && hi.Sub(lo) > resolution {
		mid := lo.Add(hi.Sub(lo) / 2)
		v, err := speedAt(mid)
		if err != nil {
			return time.Time{}, err
		}
		if (v < 0) == (vlo < 0) {
			lo, vlo = mid, v
		} else {
			hi, vhi = mid, v
		}
	}
	return interpolateTime(lo, hi, zeroCrossing(vlo, vhi)), nil
}

// zeroCrossing returns where a linear function through (0, a) and (1, b)
// crosses zero, clamped to [0, 1].
func zeroCrossing(a, b float64) float64 {
	if a == b {
		return 0
	}
	frac := a / (a - b)
	switch {
	case frac < 0:
		return 0
	case frac > 1:
		return 1
	}
	return frac
}

func interpolateTime(lo, hi time.Time, frac float64) time.Time {
	offset := time.Duration(frac * float64(hi.Sub(lo)))
	return lo.Add(offset).Round(time.Second)
}
