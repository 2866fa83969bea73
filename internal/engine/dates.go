package engine

import (
	"fmt"
	"strings"
	"time"

	"github.com/roach88/stellium/internal/astro"
)

// ParseInstant parses an ISO-8601 date ("2024-03-20", read as UTC midnight)
// or a full RFC 3339 timestamp. param names the input for error reporting.
func ParseInstant(param, value string) (time.Time, error) {
	v := strings.TrimSpace(value)
	if t, err := time.Parse(astro.DateLayout, v); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}, NewInvalidDateError(param, value, err)
	}
	return t.UTC(), nil
}

// ResolveBirthInstant combines a civil birth date, wall-clock time and IANA
// timezone into a UTC instant. An empty time means noon, the conventional
// choice when the birth time is unknown. An empty zone means UTC.
func ResolveBirthInstant(date, clock, zone string) (time.Time, error) {
	loc := time.UTC
	if zone != "" {
		l, err := time.LoadLocation(zone)
		if err != nil {
			return time.Time{}, NewInvalidDateError("timezone", zone, err)
		}
		loc = l
	}

	if clock == "" {
		clock = "12:00:00"
	}
	if len(clock) == len("15:04") {
		clock += ":00"
	}

	t, err := time.ParseInLocation(astro.DateLayout+" 15:04:05", date+" "+clock, loc)
	if err != nil {
		if _, derr := time.Parse(astro.DateLayout, date); derr != nil {
			return time.Time{}, NewInvalidDateError("birth_date", date, derr)
		}
		return time.Time{}, NewInvalidDateError("birth_time", clock, err)
	}
	return t.UTC(), nil
}

// DefaultMaxRange bounds every multi-day scan.
const DefaultMaxRange = 3660 * 24 * time.Hour

// validateRange rejects reversed or oversized ranges.
func validateRange(start, end time.Time, maxRange time.Duration) error {
	if end.Before(start) {
		return NewInvalidRangeError("end", "end precedes start")
	}
	if maxRange <= 0 {
		maxRange = DefaultMaxRange
	}
	if end.Sub(start) > maxRange {
		return NewInvalidRangeError("end", fmt.Sprintf("range exceeds %d days", int(maxRange/(24*time.Hour))))
	}
	return nil
}

// ParseBody resolves a body name or returns an AmbiguousBody error.
func ParseBody(param, name string) (astro.Body, error) {
	b, ok := astro.LookupBody(name)
	if !ok {
		return "", NewAmbiguousBodyError(param, name)
	}
	return b, nil
}
