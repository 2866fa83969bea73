// Package service wires chart storage, the ephemeris and the engine into
// the operations exposed by the CLI and the MCP server.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/roach88/stellium/internal/astro"
	"github.com/roach88/stellium/internal/engine"
	"github.com/roach88/stellium/internal/store"
)

// ChartStore is the persistence the service needs. *store.Store satisfies it.
type ChartStore interface {
	PutChart(ctx context.Context, c *astro.NatalChart) error
	GetChart(ctx context.Context, name, birthDate string) (*astro.NatalChart, error)
	FindByName(ctx context.Context, name string) ([]*astro.NatalChart, error)
	ListCharts(ctx context.Context) ([]astro.ChartSummary, error)
	SearchCharts(ctx context.Context, query string) ([]astro.ChartSummary, error)
	DeleteChart(ctx context.Context, name, birthDate string) error
}

// Provider answers position and house queries.
type Provider interface {
	engine.PositionProvider
	engine.HouseProvider
}

// Options configure a Service. Store and Provider are required.
type Options struct {
	Store    ChartStore
	Provider Provider

	// Clock resolves omitted dates. Defaults to engine.SystemClock.
	Clock engine.Clock

	// Aspects are the detection defaults for every analysis.
	Aspects engine.AspectOptions

	// MaxRange bounds reports and scans. Defaults to engine.DefaultMaxRange.
	MaxRange time.Duration

	// HouseSystem is recorded on new charts.
	HouseSystem string
}

// Service implements the chart and analysis operations.
type Service struct {
	store       ChartStore
	provider    Provider
	clock       engine.Clock
	aspects     engine.AspectOptions
	maxRange    time.Duration
	houseSystem string
	log         *slog.Logger
}

// New creates a Service.
func New(opts Options) *Service {
	clock := opts.Clock
	if clock == nil {
		clock = engine.SystemClock{}
	}
	maxRange := opts.MaxRange
	if maxRange <= 0 {
		maxRange = engine.DefaultMaxRange
	}
	return &Service{
		store:       opts.Store,
		provider:    opts.Provider,
		clock:       clock,
		aspects:     opts.Aspects,
		maxRange:    maxRange,
		houseSystem: opts.HouseSystem,
		log:         slog.With(slog.String("component", "service")),
	}
}

// ChartRef names a stored chart. BirthDate may be omitted when the name is
// unique.
type ChartRef struct {
	Name      string `json:"name"`
	BirthDate string `json:"birth_date,omitempty"`
}

// StoreChartRequest is the birth data for a new chart.
type StoreChartRequest struct {
	Name      string         `json:"name" yaml:"name"`
	BirthDate string         `json:"birth_date" yaml:"birth_date"`
	BirthTime string         `json:"birth_time,omitempty" yaml:"birth_time"`
	Timezone  string         `json:"timezone,omitempty" yaml:"timezone"`
	Location  astro.Location `json:"location" yaml:"location"`
}

// StoreChart computes a natal chart from birth data and stores it.
func (s *Service) StoreChart(ctx context.Context, req StoreChartRequest) (*astro.NatalChart, error) {
	chart, err := engine.BuildChart(ctx, s.provider, s.provider, engine.BirthData{
		Name:        req.Name,
		BirthDate:   req.BirthDate,
		BirthTime:   req.BirthTime,
		Timezone:    req.Timezone,
		Location:    req.Location,
		HouseSystem: s.houseSystem,
	})
	if err != nil {
		return nil, err
	}

	if err := s.store.PutChart(ctx, chart); err != nil {
		if errors.Is(err, store.ErrDuplicateChart) {
			return nil, engine.NewDuplicateChartError(chart.Name, chart.BirthDate)
		}
		return nil, err
	}

	s.log.Info("chart stored",
		slog.String("name", chart.Name),
		slog.String("birth_date", chart.BirthDate),
		slog.String("id", chart.ID))
	return chart, nil
}

// ResolveChart finds the chart ref names. Without a birth date the name must
// match exactly one chart; several matches are an AmbiguousChart error.
func (s *Service) ResolveChart(ctx context.Context, ref ChartRef) (*astro.NatalChart, error) {
	name := astro.NormalizeName(ref.Name)
	if name == "" {
		return nil, engine.NewInvalidChartError("chart name is required", nil)
	}

	if ref.BirthDate != "" {
		if _, err := time.Parse(astro.DateLayout, ref.BirthDate); err != nil {
			return nil, engine.NewInvalidDateError("birth_date", ref.BirthDate, err)
		}
		chart, err := s.store.GetChart(ctx, name, ref.BirthDate)
		if errors.Is(err, store.ErrChartNotFound) {
			return nil, engine.NewChartNotFoundError(name, ref.BirthDate)
		}
		return chart, err
	}

	charts, err := s.store.FindByName(ctx, name)
	if err != nil {
		return nil, err
	}
	switch len(charts) {
	case 0:
		return nil, engine.NewChartNotFoundError(name, "")
	case 1:
		return charts[0], nil
	default:
		dates := make([]string, len(charts))
		for i, c := range charts {
			dates[i] = c.BirthDate
		}
		return nil, engine.NewAmbiguousChartError(name, dates)
	}
}

// ListCharts returns summaries of every stored chart.
func (s *Service) ListCharts(ctx context.Context) ([]astro.ChartSummary, error) {
	return s.store.ListCharts(ctx)
}

// SearchCharts returns charts whose name contains query, ignoring case.
func (s *Service) SearchCharts(ctx context.Context, query string) ([]astro.ChartSummary, error) {
	return s.store.SearchCharts(ctx, query)
}

// DeleteChart removes a chart. Both name and birth date are required.
func (s *Service) DeleteChart(ctx context.Context, ref ChartRef) error {
	name := astro.NormalizeName(ref.Name)
	if name == "" {
		return engine.NewInvalidChartError("chart name is required", nil)
	}
	if _, err := time.Parse(astro.DateLayout, ref.BirthDate); err != nil {
		return engine.NewInvalidDateError("birth_date", ref.BirthDate, err)
	}

	if err := s.store.DeleteChart(ctx, name, ref.BirthDate); err != nil {
		if errors.Is(err, store.ErrChartNotFound) {
			return engine.NewChartNotFoundError(name, ref.BirthDate)
		}
		return err
	}
	s.log.Info("chart deleted", slog.String("name", name), slog.String("birth_date", ref.BirthDate))
	return nil
}

// instant parses an optional date parameter, defaulting to the start of
// today.
func (s *Service) instant(param, value string) (time.Time, error) {
	if value == "" {
		return engine.StartOfDay(s.clock.Now()), nil
	}
	return engine.ParseInstant(param, value)
}

func (s *Service) aspectOptions(includeMinor bool) engine.AspectOptions {
	opts := s.aspects
	if includeMinor {
		opts.IncludeMinor = true
	}
	return opts
}
