package astro

import "time"

// PhaseName is one of the eight named lunar phases.
type PhaseName string

const (
	NewMoon        PhaseName = "New Moon"
	WaxingCrescent PhaseName = "Waxing Crescent"
	FirstQuarter   PhaseName = "First Quarter"
	WaxingGibbous  PhaseName = "Waxing Gibbous"
	FullMoon       PhaseName = "Full Moon"
	WaningGibbous  PhaseName = "Waning Gibbous"
	LastQuarter    PhaseName = "Last Quarter"
	WaningCrescent PhaseName = "Waning Crescent"
)

// PhaseNames lists the phases in cycle order starting at New Moon.
var PhaseNames = []PhaseName{
	NewMoon, WaxingCrescent, FirstQuarter, WaxingGibbous,
	FullMoon, WaningGibbous, LastQuarter, WaningCrescent,
}

// LunarPhase describes the Moon relative to the Sun at one instant.
type LunarPhase struct {
	Angle        float64   `json:"angle"`
	Name         PhaseName `json:"name"`
	Illumination float64   `json:"illumination"`
	Waxing       bool      `json:"waxing"`
}

// PhaseEvent is the exact moment of a principal phase (new, first quarter,
// full or last quarter).
type PhaseEvent struct {
	Time  time.Time `json:"time"`
	Phase PhaseName `json:"phase"`
	Sign  Sign      `json:"sign"`
}

// VoidOfCoursePeriod is a window in which the Moon makes no further major
// aspect before leaving its sign. LastAspect is nil when the Moon made no
// aspect at all during the sign transit.
type VoidOfCoursePeriod struct {
	Start      time.Time     `json:"start"`
	End        time.Time     `json:"end"`
	Sign       Sign          `json:"sign"`
	LastAspect *LunarContact `json:"last_aspect,omitempty"`
}

// Contains reports whether t falls inside the void window.
func (v VoidOfCoursePeriod) Contains(t time.Time) bool {
	return !t.Before(v.Start) && t.Before(v.End)
}

// LunarContact is a perfected Moon aspect.
type LunarContact struct {
	Time   time.Time  `json:"time"`
	Body   Body       `json:"body"`
	Aspect AspectType `json:"aspect"`
}
