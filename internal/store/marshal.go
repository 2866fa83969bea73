package store

import (
	"encoding/json"
	"fmt"
	"time"

	"golang.org/x/text/cases"

	"github.com/roach88/stellium/internal/astro"
)

var folder = cases.Fold()

// nameKey is the case-folded, NFC-normalized search key for a chart name.
func nameKey(name string) string {
	return folder.String(astro.NormalizeName(name))
}

// marshalPositions converts positions to JSON TEXT for storage. Map keys
// are sorted by encoding/json, so equal charts serialize identically.
func marshalPositions(p astro.Positions) (string, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("marshal positions: %w", err)
	}
	return string(data), nil
}

func unmarshalPositions(s string) (astro.Positions, error) {
	var p astro.Positions
	if err := json.Unmarshal([]byte(s), &p); err != nil {
		return nil, fmt.Errorf("unmarshal positions: %w", err)
	}
	return p, nil
}

func marshalCusps(c astro.HouseCusps) (string, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("marshal cusps: %w", err)
	}
	return string(data), nil
}

func unmarshalCusps(s string) (astro.HouseCusps, error) {
	var c astro.HouseCusps
	if err := json.Unmarshal([]byte(s), &c); err != nil {
		return c, fmt.Errorf("unmarshal cusps: %w", err)
	}
	return c, nil
}

func formatInstant(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func parseInstant(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse instant: %w", err)
	}
	return t.UTC(), nil
}
