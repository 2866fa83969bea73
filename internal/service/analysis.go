package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/roach88/stellium/internal/astro"
	"github.com/roach88/stellium/internal/engine"
)

const (
	// DefaultDaysAhead is how far ahead retrograde status looks.
	DefaultDaysAhead = 90

	// DefaultReportDays is the report length when no end date is given.
	DefaultReportDays = 30

	// stationResolution is the precision of reported station times.
	stationResolution = time.Hour

	// voidLookahead bounds the search for the next void-of-course window.
	voidLookahead = 3 * 24 * time.Hour

	// phaseWindow is searched on each side of the date for new and full moons.
	phaseWindow = 30 * 24 * time.Hour
)

// DailyTransits returns the sky on date, related to the referenced chart
// when one is given.
func (s *Service) DailyTransits(ctx context.Context, date string, ref *ChartRef) (*engine.DailyTransits, error) {
	t, err := s.instant("date", date)
	if err != nil {
		return nil, err
	}

	var natal *astro.NatalChart
	if ref != nil && ref.Name != "" {
		if natal, err = s.ResolveChart(ctx, *ref); err != nil {
			return nil, err
		}
	}
	return engine.ComputeDailyTransits(ctx, s.provider, t, natal, s.aspects)
}

// BodyMotion is one body's direction of travel on a date.
type BodyMotion struct {
	Body       astro.Body `json:"body"`
	Sign       astro.Sign `json:"sign"`
	Degree     float64    `json:"degree"`
	Speed      float64    `json:"speed"`
	Retrograde bool       `json:"retrograde"`
}

// RetrogradeStatus is the retrograde picture on a date. Current holds the
// periods under way on Date, with Start set to Date; Upcoming those that
// begin within the look-ahead.
type RetrogradeStatus struct {
	Date      time.Time                `json:"date"`
	DaysAhead int                      `json:"days_ahead"`
	Bodies    []BodyMotion             `json:"bodies"`
	Current   []astro.RetrogradePeriod `json:"current"`
	Upcoming  []astro.RetrogradePeriod `json:"upcoming"`
}

// RetrogradeRequest selects the date, look-ahead and optionally one body.
type RetrogradeRequest struct {
	Date      string
	DaysAhead int
	Body      string
}

// RetrogradeStatus reports which bodies are retrograde on the date and the
// retrograde periods starting within the look-ahead.
func (s *Service) RetrogradeStatus(ctx context.Context, req RetrogradeRequest) (*RetrogradeStatus, error) {
	t, err := s.instant("date", req.Date)
	if err != nil {
		return nil, err
	}
	days := req.DaysAhead
	if days == 0 {
		days = DefaultDaysAhead
	}
	ahead := time.Duration(days) * 24 * time.Hour
	if days < 0 || ahead > s.maxRange {
		return nil, engine.NewInvalidRangeError("days_ahead",
			fmt.Sprintf("days_ahead must be between 1 and %d", int(s.maxRange/(24*time.Hour))))
	}

	bodies := []astro.Body{}
	if req.Body != "" {
		b, err := engine.ParseBody("body", req.Body)
		if err != nil {
			return nil, err
		}
		bodies = append(bodies, b)
	} else {
		for _, b := range astro.AllBodies {
			if b.CanRetrograde() {
				bodies = append(bodies, b)
			}
		}
	}

	sky, err := engine.Snapshot(ctx, s.provider, t, bodies)
	if err != nil {
		return nil, err
	}

	out := &RetrogradeStatus{
		Date:      t,
		DaysAhead: days,
		Bodies:    make([]BodyMotion, 0, len(bodies)),
		Current:   []astro.RetrogradePeriod{},
		Upcoming:  []astro.RetrogradePeriod{},
	}
	opts := engine.RetrogradeOptions{Resolution: stationResolution, MaxRange: s.maxRange}
	for _, body := range sky.Bodies() {
		pos := sky[body]
		out.Bodies = append(out.Bodies, BodyMotion{
			Body:       body,
			Sign:       pos.Sign(),
			Degree:     astro.DegreeInSign(pos.Longitude),
			Speed:      pos.Speed,
			Retrograde: pos.Retrograde(),
		})

		periods, err := engine.FindPeriods(body, t, t.Add(ahead), engine.BodyPath(ctx, s.provider, body), opts)
		if err != nil {
			return nil, err
		}
		for _, p := range periods {
			if p.OpenStart {
				out.Current = append(out.Current, p)
			} else {
				out.Upcoming = append(out.Upcoming, p)
			}
		}
	}
	return out, nil
}

// LunarInfo is the Moon's state on a date. VoidOfCourse is set when the
// date falls inside a void window; NextVoid is the next window to begin.
type LunarInfo struct {
	Time             time.Time                 `json:"time"`
	Phase            astro.LunarPhase          `json:"phase"`
	MoonSign         astro.Sign                `json:"moon_sign"`
	MoonDegree       float64                   `json:"moon_degree"`
	VoidOfCourse     *astro.VoidOfCoursePeriod `json:"void_of_course,omitempty"`
	NextVoid         *astro.VoidOfCoursePeriod `json:"next_void,omitempty"`
	PreviousNewMoon  *astro.PhaseEvent         `json:"previous_new_moon,omitempty"`
	NextNewMoon      *astro.PhaseEvent         `json:"next_new_moon,omitempty"`
	PreviousFullMoon *astro.PhaseEvent         `json:"previous_full_moon,omitempty"`
	NextFullMoon     *astro.PhaseEvent         `json:"next_full_moon,omitempty"`
}

// LunarInfo reports the phase, void-of-course status and surrounding new and
// full moons for date.
func (s *Service) LunarInfo(ctx context.Context, date string) (*LunarInfo, error) {
	t, err := s.instant("date", date)
	if err != nil {
		return nil, err
	}

	lights, err := engine.Snapshot(ctx, s.provider, t, []astro.Body{astro.Sun, astro.Moon})
	if err != nil {
		return nil, err
	}
	moon := lights[astro.Moon]
	out := &LunarInfo{
		Time:       t,
		Phase:      engine.LunarPhaseOf(lights[astro.Sun], moon),
		MoonSign:   moon.Sign(),
		MoonDegree: astro.DegreeInSign(moon.Longitude),
	}

	lunarOpts := engine.LunarOptions{MaxRange: s.maxRange}
	voids, err := engine.VoidOfCourse(t, t.Add(voidLookahead),
		engine.SkyPath(ctx, s.provider, astro.Planets), lunarOpts)
	if err != nil {
		return nil, err
	}
	for i := range voids {
		v := voids[i]
		switch {
		case v.Contains(t) && out.VoidOfCourse == nil:
			out.VoidOfCourse = &v
		case v.Start.After(t) && out.NextVoid == nil:
			out.NextVoid = &v
		}
	}

	events, err := engine.FindPhaseEvents(t.Add(-phaseWindow), t.Add(phaseWindow),
		engine.SkyPath(ctx, s.provider, []astro.Body{astro.Sun}), lunarOpts)
	if err != nil {
		return nil, err
	}
	for i := range events {
		ev := events[i]
		switch ev.Phase {
		case astro.NewMoon:
			if !ev.Time.After(t) {
				out.PreviousNewMoon = &ev
			} else if out.NextNewMoon == nil {
				out.NextNewMoon = &ev
			}
		case astro.FullMoon:
			if !ev.Time.After(t) {
				out.PreviousFullMoon = &ev
			} else if out.NextFullMoon == nil {
				out.NextFullMoon = &ev
			}
		}
	}
	return out, nil
}

// ReportRequest selects the chart and window for a transit report. End
// defaults to DefaultReportDays after Start.
type ReportRequest struct {
	Chart        ChartRef
	Start        string
	End          string
	IncludeMinor bool
}

// TransitReport generates the transit report for a stored chart.
func (s *Service) TransitReport(ctx context.Context, req ReportRequest) (*astro.TransitReport, error) {
	natal, err := s.ResolveChart(ctx, req.Chart)
	if err != nil {
		return nil, err
	}
	start, err := s.instant("start_date", req.Start)
	if err != nil {
		return nil, err
	}
	end := start.Add(DefaultReportDays * 24 * time.Hour)
	if req.End != "" {
		if end, err = engine.ParseInstant("end_date", req.End); err != nil {
			return nil, err
		}
	}

	began := time.Now()
	report, err := engine.NewTransitReporter(s.provider).Generate(ctx, start, end, natal, engine.ReportOptions{
		Aspects:  s.aspectOptions(req.IncludeMinor),
		MaxRange: s.maxRange,
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("transit report",
		slog.String("chart", natal.Name),
		slog.Int("events", len(report.Events)),
		slog.Duration("elapsed", time.Since(began)))
	return report, nil
}

// Compatibility compares two stored charts.
func (s *Service) Compatibility(ctx context.Context, a, b ChartRef, includeMinor bool) (*engine.Synastry, error) {
	chartA, err := s.ResolveChart(ctx, a)
	if err != nil {
		return nil, err
	}
	chartB, err := s.ResolveChart(ctx, b)
	if err != nil {
		return nil, err
	}
	return engine.Compare(chartA, chartB, engine.SynastryOptions{Aspects: s.aspectOptions(includeMinor)})
}
