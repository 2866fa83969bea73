package ephemeris

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/roach88/stellium/internal/astro"
)

// Provider answers both position and house queries.
type Provider interface {
	// Name returns the provider name for display and logging.
	Name() string

	Position(ctx context.Context, body astro.Body, t time.Time) (astro.Position, error)
	HouseCusps(ctx context.Context, t time.Time, lat, lon float64) (astro.HouseCusps, error)
}

// Source selects the ephemeris backend.
type Source string

const (
	SourceTable Source = "table"
	SourceHTTP  Source = "http"
)

// ParseSource parses a source name.
func ParseSource(s string) (Source, error) {
	switch Source(strings.ToLower(strings.TrimSpace(s))) {
	case SourceTable, "":
		return SourceTable, nil
	case SourceHTTP:
		return SourceHTTP, nil
	default:
		return "", fmt.Errorf("unknown ephemeris source %q (want table or http)", s)
	}
}

// Options configure Open.
type Options struct {
	Source      Source
	Table       string
	URL         string
	RateLimit   float64
	Burst       int
	Timeout     time.Duration
	HouseSystem HouseSystem
}

// Open builds the provider selected by opts. Position answers are memoized
// in a Cache.
func Open(opts Options) (Provider, error) {
	switch opts.Source {
	case SourceTable, "":
		if opts.Table == "" {
			return nil, fmt.Errorf("open ephemeris: table path is required")
		}
		table, err := OpenTable(opts.Table, opts.HouseSystem)
		if err != nil {
			return nil, err
		}
		return cached(table)
	case SourceHTTP:
		client, err := NewHTTPProvider(HTTPConfig{
			URL:         opts.URL,
			RateLimit:   opts.RateLimit,
			Burst:       opts.Burst,
			Timeout:     opts.Timeout,
			HouseSystem: opts.HouseSystem,
		})
		if err != nil {
			return nil, err
		}
		return cached(client)
	default:
		return nil, fmt.Errorf("open ephemeris: unknown source %q", opts.Source)
	}
}

func cached(p Provider) (Provider, error) {
	c, err := NewCache(p, 0)
	if err != nil {
		return nil, err
	}
	return c, nil
}
