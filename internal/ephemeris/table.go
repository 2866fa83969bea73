package ephemeris

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/roach88/stellium/internal/astro"
)

// tableColumns is the required CSV header.
var tableColumns = []string{"date", "body", "longitude", "latitude", "distance", "speed"}

type sample struct {
	t        time.Time
	lon      float64
	lat      float64
	dist     float64
	speed    float64
	hasSpeed bool
}

// TableProvider serves positions from a table of samples, interpolating
// linearly between them. Longitudes are interpolated along the shorter arc
// so a body crossing 0° Aries does not sweep backwards through the zodiac.
//
// Coverage is per body: an instant outside a body's first and last sample
// fails with ErrOutOfRange.
type TableProvider struct {
	AscendantHouses

	name    string
	samples map[astro.Body][]sample
}

// OpenTable reads a CSV ephemeris from path.
func OpenTable(path string, system HouseSystem) (*TableProvider, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open ephemeris table: %w", err)
	}
	defer f.Close()

	table, err := LoadTable(f, system)
	if err != nil {
		return nil, fmt.Errorf("load ephemeris table %s: %w", path, err)
	}
	table.name = "table:" + path
	return table, nil
}

// LoadTable parses CSV rows of date,body,longitude,latitude,distance,speed.
// Dates are YYYY-MM-DD (UTC midnight) or RFC 3339. Latitude, distance and
// speed may be empty; missing speeds are derived from neighbouring samples.
func LoadTable(r io.Reader, system HouseSystem) (*TableProvider, error) {
	cr := csv.NewReader(r)
	cr.Comment = '#'
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = len(tableColumns)

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("empty table")
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	for i, col := range tableColumns {
		if strings.ToLower(strings.TrimSpace(header[i])) != col {
			return nil, fmt.Errorf("header column %d: got %q, want %q", i+1, header[i], col)
		}
	}

	samples := map[astro.Body][]sample{}
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		line, _ := cr.FieldPos(0)

		body, s, err := parseRow(rec)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		samples[body] = append(samples[body], s)
	}
	if len(samples) == 0 {
		return nil, fmt.Errorf("table has no rows")
	}

	for body, ss := range samples {
		sort.SliceStable(ss, func(i, j int) bool { return ss[i].t.Before(ss[j].t) })
		for i := 1; i < len(ss); i++ {
			if ss[i].t.Equal(ss[i-1].t) {
				return nil, fmt.Errorf("duplicate %s sample at %s", body, ss[i].t.Format(time.RFC3339))
			}
		}
	}

	return &TableProvider{
		AscendantHouses: AscendantHouses{System: system},
		name:            "table",
		samples:         samples,
	}, nil
}

func parseRow(rec []string) (astro.Body, sample, error) {
	var s sample
	t, err := parseTableTime(rec[0])
	if err != nil {
		return "", s, err
	}
	s.t = t

	body, ok := astro.LookupBody(rec[1])
	if !ok {
		return "", s, fmt.Errorf("%w: %q", ErrUnsupportedBody, rec[1])
	}

	if s.lon, err = parseNumber("longitude", rec[2], true); err != nil {
		return "", s, err
	}
	s.lon = astro.Normalize(s.lon)
	if s.lat, err = parseNumber("latitude", rec[3], false); err != nil {
		return "", s, err
	}
	if s.dist, err = parseNumber("distance", rec[4], false); err != nil {
		return "", s, err
	}
	if strings.TrimSpace(rec[5]) != "" {
		if s.speed, err = parseNumber("speed", rec[5], true); err != nil {
			return "", s, err
		}
		s.hasSpeed = true
	}
	return body, s, nil
}

func parseTableTime(v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	if t, err := time.Parse(astro.DateLayout, v); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("date %q: want YYYY-MM-DD or RFC 3339", v)
	}
	return t.UTC(), nil
}

func parseNumber(field, v string, required bool) (float64, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		if required {
			return 0, fmt.Errorf("%s is required", field)
		}
		return 0, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s %q: %w", field, v, err)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%s %q is not finite", field, v)
	}
	return f, nil
}

// Name implements Provider.
func (p *TableProvider) Name() string {
	return p.name
}

// Coverage returns the first and last sample instants for body.
func (p *TableProvider) Coverage(body astro.Body) (start, end time.Time, ok bool) {
	ss := p.samples[body]
	if len(ss) == 0 {
		return time.Time{}, time.Time{}, false
	}
	return ss[0].t, ss[len(ss)-1].t, true
}

// Position implements the engine's PositionProvider.
func (p *TableProvider) Position(_ context.Context, body astro.Body, t time.Time) (astro.Position, error) {
	first, last, ok := p.Coverage(body)
	if !ok {
		return astro.Position{}, fmt.Errorf("%w: %s", ErrUnsupportedBody, body)
	}
	if t.Before(first) || t.After(last) {
		return astro.Position{}, fmt.Errorf("%w: %s at %s (table covers %s to %s)",
			ErrOutOfRange, body, t.UTC().Format(time.RFC3339),
			first.Format(time.RFC3339), last.Format(time.RFC3339))
	}

	ss := p.samples[body]
	i := sort.Search(len(ss), func(i int) bool { return !ss[i].t.Before(t) })
	if ss[i].t.Equal(t) {
		s := ss[i]
		speed := s.speed
		if !s.hasSpeed {
			speed = derivedSpeed(ss, i)
		}
		return astro.Position{Longitude: s.lon, Latitude: s.lat, Distance: s.dist, Speed: speed}, nil
	}

	lo, hi := ss[i-1], ss[i]
	frac := float64(t.Sub(lo.t)) / float64(hi.t.Sub(lo.t))
	arc := astro.Delta(lo.lon, hi.lon)

	speed := arc / (hi.t.Sub(lo.t).Hours() / 24)
	if lo.hasSpeed && hi.hasSpeed {
		speed = lerp(lo.speed, hi.speed, frac)
	}
	return astro.Position{
		Longitude: astro.Normalize(lo.lon + arc*frac),
		Latitude:  lerp(lo.lat, hi.lat, frac),
		Distance:  lerp(lo.dist, hi.dist, frac),
		Speed:     speed,
	}, nil
}

// derivedSpeed estimates degrees per day at sample i from its neighbours.
func derivedSpeed(ss []sample, i int) float64 {
	lo, hi := i-1, i+1
	if lo < 0 {
		lo = i
	}
	if hi >= len(ss) {
		hi = i
	}
	if lo == hi {
		return 0
	}
	days := ss[hi].t.Sub(ss[lo].t).Hours() / 24
	return astro.Delta(ss[lo].lon, ss[hi].lon) / days
}

func lerp(a, b, frac float64) float64 {
	return a + (b-a)*frac
}
