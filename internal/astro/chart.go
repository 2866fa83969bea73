package astro

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
)

// DateLayout is the civil date format used for birth dates.
const DateLayout = "2006-01-02"

// Location is a birth place. The name is informational only; the engine
// works from the coordinates.
type Location struct {
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// NatalChart is the stored snapshot of positions and cusps at a birth.
// Charts are identified by (Name, BirthDate).
type NatalChart struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	BirthDate   string     `json:"birth_date"`
	BirthTime   string     `json:"birth_time"`
	Timezone    string     `json:"timezone"`
	Instant     time.Time  `json:"instant"`
	Location    Location   `json:"location"`
	HouseSystem string     `json:"house_system"`
	Positions   Positions  `json:"positions"`
	Cusps       HouseCusps `json:"cusps"`
}

// NormalizeName trims and NFC-normalizes a chart name so visually identical
// names compare equal.
func NormalizeName(name string) string {
	return norm.NFC.String(strings.TrimSpace(name))
}

// Validate checks the chart's identity fields, positions and cusps.
func (c *NatalChart) Validate() error {
	if NormalizeName(c.Name) == "" {
		return fmt.Errorf("chart name is required")
	}
	if _, err := time.Parse(DateLayout, c.BirthDate); err != nil {
		return fmt.Errorf("birth date %q: want YYYY-MM-DD", c.BirthDate)
	}
	if len(c.Positions) == 0 {
		return fmt.Errorf("chart %q has no positions", c.Name)
	}
	for body, pos := range c.Positions {
		if !body.Valid() {
			return fmt.Errorf("chart %q: unknown body %q", c.Name, string(body))
		}
		if _, err := pos.Validate(); err != nil {
			return fmt.Errorf("chart %q: %s: %w", c.Name, body, err)
		}
	}
	if err := c.Cusps.Validate(); err != nil {
		return fmt.Errorf("chart %q: %w", c.Name, err)
	}
	return nil
}

// ChartSummary is the listing view of a stored chart.
type ChartSummary struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	BirthDate string `json:"birth_date"`
	BirthTime string `json:"birth_time"`
	Location  string `json:"location"`
}

// Summary returns the listing view of c.
func (c *NatalChart) Summary() ChartSummary {
	return ChartSummary{
		ID:        c.ID,
		Name:      c.Name,
		BirthDate: c.BirthDate,
		BirthTime: c.BirthTime,
		Location:  c.Location.Name,
	}
}

// SunSign, MoonSign and RisingSign are the three headline placements.
func (c *NatalChart) SunSign() Sign    { return c.Positions[Sun].Sign() }
func (c *NatalChart) MoonSign() Sign   { return c.Positions[Moon].Sign() }
func (c *NatalChart) RisingSign() Sign { return SignOf(c.Cusps.Ascendant()) }
