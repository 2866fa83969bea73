package astro

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// Domain prefixes for content-addressed identity.
// The version suffix leaves room for algorithm migration.
const (
	DomainChart = "stellium/chart/v1"
	DomainEvent = "stellium/event/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data).
// The null separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// ChartID computes the identity of a chart from its normalized name and
// birth date. Positions are excluded: the same person recomputed against a
// different ephemeris keeps the same ID.
func ChartID(name, birthDate string) (string, error) {
	canonical, err := MarshalCanonical(map[string]any{
		"name":       NormalizeName(name),
		"birth_date": birthDate,
	})
	if err != nil {
		return "", fmt.Errorf("ChartID: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainChart, canonical), nil
}

// EventID computes a stable identity for a report event, used for calendar
// UIDs so re-exported reports update rather than duplicate entries.
func EventID(chartID string, e Event) (string, error) {
	bodies := make([]any, len(e.Bodies))
	for i, b := range e.Bodies {
		bodies[i] = string(b)
	}
	canonical, err := MarshalCanonical(map[string]any{
		"chart":  chartID,
		"time":   e.Time.UTC().Format(time.RFC3339),
		"kind":   string(e.Kind),
		"bodies": bodies,
		"aspect": string(e.Aspect),
		"phase":  string(e.Phase),
	})
	if err != nil {
		return "", fmt.Errorf("EventID: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainEvent, canonical), nil
}
