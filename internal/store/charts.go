package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/mattn/go-sqlite3"

	"github.com/roach88/stellium/internal/astro"
)

var (
	// ErrChartNotFound is returned when no chart matches a lookup.
	ErrChartNotFound = errors.New("chart not found")

	// ErrDuplicateChart is returned when a chart with the same name and
	// birth date already exists.
	ErrDuplicateChart = errors.New("chart already exists")
)

const chartColumns = `id, name, birth_date, birth_time, timezone, instant,
	location_name, latitude, longitude, house_system, positions, cusps`

const summaryColumns = `id, name, birth_date, birth_time, location_name`

// PutChart inserts a chart. The chart is validated first and its name
// normalized; an existing chart with the same name and birth date yields
// ErrDuplicateChart.
func (s *Store) PutChart(ctx context.Context, c *astro.NatalChart) error {
	if err := c.Validate(); err != nil {
		return fmt.Errorf("put chart: %w", err)
	}
	name := astro.NormalizeName(c.Name)

	positions, err := marshalPositions(c.Positions)
	if err != nil {
		return fmt.Errorf("put chart: %w", err)
	}
	cusps, err := marshalCusps(c.Cusps)
	if err != nil {
		return fmt.Errorf("put chart: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO charts
		(id, name, name_key, birth_date, birth_time, timezone, instant,
		 location_name, latitude, longitude, house_system, positions, cusps)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		c.ID,
		name,
		nameKey(name),
		c.BirthDate,
		c.BirthTime,
		c.Timezone,
		formatInstant(c.Instant),
		c.Location.Name,
		c.Location.Latitude,
		c.Location.Longitude,
		c.HouseSystem,
		positions,
		cusps,
	)
	if err != nil {
		if isConstraintViolation(err) {
			return fmt.Errorf("put chart %q born %s: %w", name, c.BirthDate, ErrDuplicateChart)
		}
		return fmt.Errorf("put chart: %w", err)
	}
	return nil
}

// GetChart returns the chart with the given name and birth date.
func (s *Store) GetChart(ctx context.Context, name, birthDate string) (*astro.NatalChart, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+chartColumns+`
		FROM charts
		WHERE name = ? AND birth_date = ?
	`, astro.NormalizeName(name), birthDate)

	c, err := scanChart(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get chart %q born %s: %w", name, birthDate, ErrChartNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get chart: %w", err)
	}
	return c, nil
}

// FindByName returns every chart with exactly this (normalized) name,
// ordered by birth date. Returns an empty slice when none match.
func (s *Store) FindByName(ctx context.Context, name string) ([]*astro.NatalChart, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+chartColumns+`
		FROM charts
		WHERE name = ?
		ORDER BY birth_date ASC, id COLLATE BINARY ASC
	`, astro.NormalizeName(name))
	if err != nil {
		return nil, fmt.Errorf("find charts: %w", err)
	}
	defer rows.Close()

	charts := []*astro.NatalChart{}
	for rows.Next() {
		c, err := scanChart(rows)
		if err != nil {
			return nil, fmt.Errorf("find charts: %w", err)
		}
		charts = append(charts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("find charts: %w", err)
	}
	return charts, nil
}

// ListCharts returns summaries of every stored chart.
func (s *Store) ListCharts(ctx context.Context) ([]astro.ChartSummary, error) {
	return s.summaries(ctx, "list charts", `
		SELECT `+summaryColumns+`
		FROM charts
		ORDER BY name_key ASC, birth_date ASC, id COLLATE BINARY ASC
	`)
}

// SearchCharts returns summaries of charts whose name contains query,
// ignoring case. An empty query matches everything.
func (s *Store) SearchCharts(ctx context.Context, query string) ([]astro.ChartSummary, error) {
	return s.summaries(ctx, "search charts", `
		SELECT `+summaryColumns+`
		FROM charts
		WHERE name_key LIKE '%' || ? || '%' ESCAPE '\'
		ORDER BY name_key ASC, birth_date ASC, id COLLATE BINARY ASC
	`, escapeLike(nameKey(query)))
}

// DeleteChart removes the chart with the given name and birth date.
func (s *Store) DeleteChart(ctx context.Context, name, birthDate string) error {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM charts WHERE name = ? AND birth_date = ?
	`, astro.NormalizeName(name), birthDate)
	if err != nil {
		return fmt.Errorf("delete chart: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete chart: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("delete chart %q born %s: %w", name, birthDate, ErrChartNotFound)
	}
	return nil
}

func (s *Store) summaries(ctx context.Context, op, query string, args ...any) ([]astro.ChartSummary, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	out := []astro.ChartSummary{}
	for rows.Next() {
		var sum astro.ChartSummary
		if err := rows.Scan(&sum.ID, &sum.Name, &sum.BirthDate, &sum.BirthTime, &sum.Location); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		out = append(out, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanChart(row rowScanner) (*astro.NatalChart, error) {
	var (
		c                astro.NatalChart
		instant          string
		positions, cusps string
	)
	err := row.Scan(
		&c.ID,
		&c.Name,
		&c.BirthDate,
		&c.BirthTime,
		&c.Timezone,
		&instant,
		&c.Location.Name,
		&c.Location.Latitude,
		&c.Location.Longitude,
		&c.HouseSystem,
		&positions,
		&cusps,
	)
	if err != nil {
		return nil, err
	}

	if c.Instant, err = parseInstant(instant); err != nil {
		return nil, err
	}
	if c.Positions, err = unmarshalPositions(positions); err != nil {
		return nil, err
	}
	if c.Cusps, err = unmarshalCusps(cusps); err != nil {
		return nil, err
	}
	return &c, nil
}

func isConstraintViolation(err error) bool {
	var se sqlite3.Error
	if !errors.As(err, &se) {
		return false
	}
	return se.ExtendedCode == sqlite3.ErrConstraintUnique ||
		se.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
