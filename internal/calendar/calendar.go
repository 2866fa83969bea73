// Package calendar exports transit reports as iCalendar feeds.
package calendar

import (
	"fmt"
	"io"
	"time"

	"github.com/emersion/go-ical"
	"github.com/google/uuid"

	"github.com/roach88/stellium/internal/astro"
)

const (
	ProdID = "-//Stellium//Transit Report//EN"
	Domain = "stellium"

	// emptyCalendar is written for reports without events; the encoder
	// rejects calendars with no components.
	emptyCalendar = "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:" + ProdID + "\r\nEND:VCALENDAR\r\n"
)

// namespace seeds the name-based event UIDs.
var namespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://stellium.invalid/events"))

// UID returns the stable calendar UID of an event in a chart's report.
// Re-exporting a report yields the same UIDs so calendar clients update
// entries in place.
func UID(chartID string, e astro.Event) (string, error) {
	id, err := astro.EventID(chartID, e)
	if err != nil {
		return "", err
	}
	return uuid.NewSHA1(namespace, []byte(id)).String() + "@" + Domain, nil
}

// Encode writes report as an iCalendar document. stamp is used for every
// DTSTAMP.
func Encode(w io.Writer, report *astro.TransitReport, stamp time.Time) error {
	if len(report.Events) == 0 {
		_, err := io.WriteString(w, emptyCalendar)
		return err
	}

	chartID, err := astro.ChartID(report.ChartName, report.BirthDate)
	if err != nil {
		return fmt.Errorf("encode calendar: %w", err)
	}

	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, ProdID)
	cal.Props.SetText(ical.PropCalendarScale, "GREGORIAN")
	cal.Props.SetText("X-WR-CALNAME", "Transits for "+report.ChartName)

	dtStamp := ical.NewProp(ical.PropDateTimeStamp)
	dtStamp.SetDateTime(stamp.UTC())

	for _, e := range report.Events {
		uid, err := UID(chartID, e)
		if err != nil {
			return fmt.Errorf("encode calendar: %w", err)
		}

		event := ical.NewEvent()
		event.Props.SetText(ical.PropUID, uid)
		event.Props.Set(dtStamp)
		event.Props.SetDateTime(ical.PropDateTimeStart, e.Time.UTC())
		event.Props.SetText(ical.PropSummary, summary(e))
		event.Props.SetText(ical.PropDescription, e.Description)
		event.Props.SetText(ical.PropCategories, string(e.Kind))
		cal.Children = append(cal.Children, event.Component)
	}

	if err := ical.NewEncoder(w).Encode(cal); err != nil {
		return fmt.Errorf("encode calendar: %w", err)
	}
	return nil
}

func summary(e astro.Event) string {
	if e.Label != "" {
		return e.Label
	}
	switch e.Kind {
	case astro.EventAspectExact:
		if len(e.Bodies) == 2 {
			return fmt.Sprintf("%s %s natal %s", e.Bodies[0], e.Aspect, e.Bodies[1])
		}
	case astro.EventStationRetrograde:
		return e.Bodies[0].String() + " stations retrograde"
	case astro.EventStationDirect:
		return e.Bodies[0].String() + " stations direct"
	case astro.EventPhaseChange, astro.EventLunation:
		return string(e.Phase)
	case astro.EventSignIngress:
		if e.Sign != nil {
			return fmt.Sprintf("%s enters %s", e.Bodies[0], *e.Sign)
		}
	}
	return e.Description
}
