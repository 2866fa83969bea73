package astro

import "time"

// EventKind categorizes a transit report event.
type EventKind string

const (
	EventAspectExact       EventKind = "aspect_exact"
	EventStationRetrograde EventKind = "station_retrograde"
	EventStationDirect     EventKind = "station_direct"
	EventPhaseChange       EventKind = "phase_change"
	EventLunation          EventKind = "lunation"
	EventSignIngress       EventKind = "sign_ingress"
)

// Event is a single dated occurrence in a transit report.
//
// Bodies holds the transiting body first; for aspect events the second entry
// is the natal body. Optional fields are set according to Kind.
type Event struct {
	Time        time.Time  `json:"time"`
	Kind        EventKind  `json:"kind"`
	Bodies      []Body     `json:"bodies,omitempty"`
	Aspect      AspectType `json:"aspect,omitempty"`
	Orb         *float64   `json:"orb,omitempty"`
	Phase       PhaseName  `json:"phase,omitempty"`
	Sign        *Sign      `json:"sign,omitempty"`
	Label       string     `json:"label,omitempty"`
	Description string     `json:"description"`
}

// TransitReport lists the events found between Start and End, inclusive,
// for one natal chart, in chronological order.
type TransitReport struct {
	ChartName string    `json:"chart_name"`
	BirthDate string    `json:"birth_date"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	Events    []Event   `json:"events"`
}
