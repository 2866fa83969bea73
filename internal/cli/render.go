package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/roach88/stellium/internal/astro"
	"github.com/roach88/stellium/internal/engine"
	"github.com/roach88/stellium/internal/service"
)

const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02 15:04 MST"
)

func degree(lon float64) string {
	return fmt.Sprintf("%5.2f°", astro.DegreeInSign(lon))
}

func retroMark(speed float64) string {
	if speed < 0 {
		return " R"
	}
	return ""
}

// renderChart prints a natal chart: headline placements then one row per
// body.
func renderChart(w io.Writer, c *astro.NatalChart) error {
	fmt.Fprintf(w, "%s (born %s %s %s", c.Name, c.BirthDate, c.BirthTime, c.Timezone)
	if c.Location.Name != "" {
		fmt.Fprintf(w, ", %s", c.Location.Name)
	}
	fmt.Fprintln(w, ")")
	fmt.Fprintf(w, "Sun %s, Moon %s, Rising %s\n", c.SunSign(), c.MoonSign(), c.RisingSign())
	fmt.Fprintf(w, "Houses: %s, MC %s %s\n", c.HouseSystem,
		astro.SignOf(c.Cusps.Midheaven()), degree(c.Cusps.Midheaven()))
	fmt.Fprintln(w)

	houses, err := engine.PlaceAll(c.Positions, c.Cusps)
	if err != nil {
		return err
	}
	for _, body := range c.Positions.Bodies() {
		pos := c.Positions[body]
		fmt.Fprintf(w, "%-11s %-12s %s  house %2d%s\n",
			body, pos.Sign(), degree(pos.Longitude), houses[body], retroMark(pos.Speed))
	}
	return nil
}

func renderSummaries(w io.Writer, charts []astro.ChartSummary) error {
	if len(charts) == 0 {
		fmt.Fprintln(w, "No charts")
		return nil
	}
	for _, c := range charts {
		fmt.Fprintf(w, "%-20s %s %-8s %s\n", c.Name, c.BirthDate, c.BirthTime, c.Location)
	}
	return nil
}

func renderAspect(w io.Writer, a astro.Aspect, prefixA, prefixB string) {
	state := "separating"
	if a.Applying {
		state = "applying"
	}
	exact := ""
	if a.Exact {
		exact = ", exact"
	}
	fmt.Fprintf(w, "  %s%s %s %s%s (orb %.2f°, %s%s)\n",
		prefixA, a.BodyA, a.Type, prefixB, a.BodyB, a.Orb, state, exact)
}

func renderDaily(w io.Writer, d *engine.DailyTransits) error {
	fmt.Fprintf(w, "Sky on %s", d.Time.Format(dateTimeLayout))
	if d.ChartName != "" {
		fmt.Fprintf(w, " for %s", d.ChartName)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Moon: %s (%.0f%% illuminated)\n\n", d.Phase.Name, d.Phase.Illumination*100)

	for _, p := range d.Placements {
		fmt.Fprintf(w, "%-11s %-12s %s%s", p.Body, p.Sign, degree(p.Longitude), retroMark(p.Speed))
		if p.LifeArea != nil {
			fmt.Fprintf(w, "  house %2d %s", p.NatalHouse, p.LifeArea.Name)
		}
		fmt.Fprintln(w)
	}
	if len(d.Aspects) > 0 {
		fmt.Fprintln(w, "\nAspects to natal:")
		for _, a := range d.Aspects {
			renderAspect(w, a, "transiting ", "natal ")
		}
	}
	return nil
}

func renderPeriod(w io.Writer, p astro.RetrogradePeriod) {
	end := "beyond window"
	if p.End != nil {
		end = p.End.Format(dateTimeLayout)
	}
	start := p.Start.Format(dateTimeLayout)
	if p.OpenStart {
		start = "already retrograde"
	}
	fmt.Fprintf(w, "  %-11s %s -> %s\n", p.Body, start, end)
}

func renderRetrogrades(w io.Writer, s *service.RetrogradeStatus) error {
	fmt.Fprintf(w, "Retrograde status on %s (next %d days)\n\n", s.Date.Format(dateLayout), s.DaysAhead)
	for _, m := range s.Bodies {
		motion := "direct"
		if m.Retrograde {
			motion = "retrograde"
		}
		fmt.Fprintf(w, "%-11s %-12s %s  %s\n", m.Body, m.Sign, fmt.Sprintf("%5.2f°", m.Degree), motion)
	}
	if len(s.Current) > 0 {
		fmt.Fprintln(w, "\nCurrent:")
		for _, p := range s.Current {
			renderPeriod(w, p)
		}
	}
	if len(s.Upcoming) > 0 {
		fmt.Fprintln(w, "\nUpcoming:")
		for _, p := range s.Upcoming {
			renderPeriod(w, p)
		}
	}
	return nil
}

func renderVoid(w io.Writer, label string, v *astro.VoidOfCoursePeriod) {
	fmt.Fprintf(w, "%s %s -> %s (Moon in %s)", label,
		v.Start.Format(dateTimeLayout), v.End.Format(dateTimeLayout), v.Sign)
	if v.LastAspect != nil {
		fmt.Fprintf(w, ", after %s to %s", v.LastAspect.Aspect, v.LastAspect.Body)
	}
	fmt.Fprintln(w)
}

func renderLunar(w io.Writer, l *service.LunarInfo) error {
	fmt.Fprintf(w, "Moon on %s\n", l.Time.Format(dateTimeLayout))
	fmt.Fprintf(w, "Phase: %s (%.1f°, %.0f%% illuminated)\n", l.Phase.Name, l.Phase.Angle, l.Phase.Illumination*100)
	fmt.Fprintf(w, "Sign:  %s %s\n", l.MoonSign, fmt.Sprintf("%5.2f°", l.MoonDegree))

	if l.VoidOfCourse != nil {
		renderVoid(w, "Void of course:", l.VoidOfCourse)
	} else {
		fmt.Fprintln(w, "Void of course: no")
	}
	if l.NextVoid != nil {
		renderVoid(w, "Next void:", l.NextVoid)
	}

	phases := []struct {
		label string
		ev    *astro.PhaseEvent
	}{
		{"Previous new moon: ", l.PreviousNewMoon},
		{"Next new moon:     ", l.NextNewMoon},
		{"Previous full moon:", l.PreviousFullMoon},
		{"Next full moon:    ", l.NextFullMoon},
	}
	for _, p := range phases {
		if p.ev != nil {
			fmt.Fprintf(w, "%s %s in %s\n", p.label, p.ev.Time.Format(dateTimeLayout), p.ev.Sign)
		}
	}
	return nil
}

func renderReport(w io.Writer, r *astro.TransitReport) error {
	fmt.Fprintf(w, "Transits for %s, %s to %s\n", r.ChartName, r.Start.Format(dateLayout), r.End.Format(dateLayout))
	if len(r.Events) == 0 {
		fmt.Fprintln(w, "No events")
		return nil
	}
	fmt.Fprintln(w)
	var day time.Time
	for _, e := range r.Events {
		d := engine.StartOfDay(e.Time)
		if !d.Equal(day) {
			day = d
			fmt.Fprintln(w, d.Format("Mon Jan 2 2006"))
		}
		fmt.Fprintf(w, "  %s  %s", e.Time.Format("15:04"), e.Description)
		if e.Label != "" {
			fmt.Fprintf(w, " [%s]", e.Label)
		}
		fmt.Fprintln(w)
	}
	return nil
}

func renderSynastry(w io.Writer, s *engine.Synastry) error {
	fmt.Fprintf(w, "%s and %s\n", s.ChartA.Name, s.ChartB.Name)
	fmt.Fprintf(w, "%d aspects: %d harmonious, %d challenging, %d exact\n\n",
		s.Summary.Total, s.Summary.Harmonious, s.Summary.Challenging, len(s.ExactAspects))
	for _, a := range s.Aspects {
		renderAspect(w, a, s.ChartA.Name+"'s ", s.ChartB.Name+"'s ")
	}
	return nil
}
