package astro

import "time"

// StationKind tells which way a body turns at a station.
type StationKind string

const (
	StationRetrograde StationKind = "retrograde"
	StationDirect     StationKind = "direct"
)

// Station is the instant a body's speed changes sign.
type Station struct {
	Body Body        `json:"body"`
	Time time.Time   `json:"time"`
	Kind StationKind `json:"kind"`
}

// RetrogradePeriod is a window of negative speed. OpenStart marks a period
// already in progress when the search began, in which case Start is the
// search start. End is nil while the period is still running at the end of
// the search.
type RetrogradePeriod struct {
	Body      Body       `json:"body"`
	Start     time.Time  `json:"start"`
	OpenStart bool       `json:"open_start,omitempty"`
	End       *time.Time `json:"end,omitempty"`
}

// Contains reports whether t falls inside the period.
func (p RetrogradePeriod) Contains(t time.Time) bool {
	if t.Before(p.Start) {
		return false
	}
	return p.End == nil || t.Before(*p.End)
}
