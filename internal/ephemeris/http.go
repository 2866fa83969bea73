package ephemeris

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/roach88/stellium/internal/astro"
)

const (
	// DefaultTimeout bounds a single request to the ephemeris service.
	DefaultTimeout = 10 * time.Second

	// DefaultRateLimit is the default number of requests per second.
	DefaultRateLimit = 5.0

	// MaxResponseSize caps how much of a response body is read.
	MaxResponseSize = 1 << 20
)

// HTTPConfig configures an HTTPProvider.
type HTTPConfig struct {
	// URL is the service base, e.g. https://ephemeris.example.com.
	URL string

	// RateLimit is requests per second; Burst the bucket size.
	RateLimit float64
	Burst     int

	Timeout time.Duration

	// HouseSystem is sent with house queries.
	HouseSystem HouseSystem

	// Client overrides the default HTTP client.
	Client *http.Client
}

// HTTPProvider queries a remote JSON ephemeris service:
//
//	GET /v1/positions?body=mars&time=2024-01-01T00:00:00Z
//	GET /v1/houses?time=...&lat=...&lon=...&system=equal
//
// A 404 means the body is unsupported and a 416 that the instant is outside
// the service's coverage.
type HTTPProvider struct {
	base    *url.URL
	system  HouseSystem
	client  *http.Client
	limiter *rate.Limiter
	log     *slog.Logger
}

// NewHTTPProvider validates cfg and creates the client.
func NewHTTPProvider(cfg HTTPConfig) (*HTTPProvider, error) {
	u, err := url.Parse(strings.TrimRight(cfg.URL, "/"))
	if err != nil {
		return nil, fmt.Errorf("ephemeris url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("ephemeris url: unsupported scheme %q", u.Scheme)
	}

	rps := cfg.RateLimit
	if rps <= 0 {
		rps = DefaultRateLimit
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}
	client := cfg.Client
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		client = &http.Client{Timeout: timeout}
	}
	system := cfg.HouseSystem
	if system == "" {
		system = HouseEqual
	}

	return &HTTPProvider{
		base:    u,
		system:  system,
		client:  client,
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
		log: slog.With(
			slog.String("component", "ephemeris"),
			slog.String("url", u.Scheme+"://"+u.Host+u.Path),
		),
	}, nil
}

// Name implements Provider.
func (p *HTTPProvider) Name() string {
	return "http:" + p.base.Host
}

type positionResponse struct {
	Longitude *float64 `json:"longitude"`
	Latitude  float64  `json:"latitude"`
	Distance  float64  `json:"distance"`
	Speed     *float64 `json:"speed"`
}

type housesResponse struct {
	Cusps []float64 `json:"cusps"`
}

// Position implements the engine's PositionProvider.
func (p *HTTPProvider) Position(ctx context.Context, body astro.Body, t time.Time) (astro.Position, error) {
	q := url.Values{}
	q.Set("body", string(body))
	q.Set("time", t.UTC().Format(time.RFC3339))

	var resp positionResponse
	if err := p.get(ctx, "/v1/positions", q, ErrUnsupportedBody, &resp); err != nil {
		return astro.Position{}, fmt.Errorf("query %s: %w", body, err)
	}
	if resp.Longitude == nil || resp.Speed == nil {
		return astro.Position{}, fmt.Errorf("query %s: response missing longitude or speed", body)
	}
	return astro.Position{
		Longitude: *resp.Longitude,
		Latitude:  resp.Latitude,
		Distance:  resp.Distance,
		Speed:     *resp.Speed,
	}, nil
}

// HouseCusps implements the engine's HouseProvider.
func (p *HTTPProvider) HouseCusps(ctx context.Context, t time.Time, lat, lon float64) (astro.HouseCusps, error) {
	q := url.Values{}
	q.Set("time", t.UTC().Format(time.RFC3339))
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	q.Set("system", string(p.system))

	var resp housesResponse
	if err := p.get(ctx, "/v1/houses", q, ErrUnsupportedHouses, &resp); err != nil {
		return astro.HouseCusps{}, fmt.Errorf("query houses: %w", err)
	}
	var cusps astro.HouseCusps
	if len(resp.Cusps) != len(cusps) {
		return astro.HouseCusps{}, fmt.Errorf("query houses: got %d cusps, want %d", len(resp.Cusps), len(cusps))
	}
	copy(cusps[:], resp.Cusps)
	return cusps, nil
}

// get fetches path and decodes the JSON body into out. A 404 is reported as
// notFound.
func (p *HTTPProvider) get(ctx context.Context, path string, q url.Values, notFound error, out any) error {
	if err := p.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit: %w", err)
	}

	u := *p.base
	u.Path += path
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "stellium")

	p.log.Debug("ephemeris request", slog.String("path", path), slog.String("query", u.RawQuery))
	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return notFound
	case http.StatusRequestedRangeNotSatisfiable:
		return ErrOutOfRange
	default:
		p.log.Warn("ephemeris service returned error status", slog.Int("status", resp.StatusCode))
		return &StatusError{Code: resp.StatusCode, Status: resp.Status}
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, MaxResponseSize)).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
