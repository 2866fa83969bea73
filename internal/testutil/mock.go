package testutil

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/roach88/stellium/internal/astro"
)

// MockProvider is a testify mock of the position and house providers.
type MockProvider struct {
	mock.Mock
}

// Position records the call and returns the programmed position.
func (m *MockProvider) Position(ctx context.Context, body astro.Body, t time.Time) (astro.Position, error) {
	args := m.Called(ctx, body, t)
	return args.Get(0).(astro.Position), args.Error(1)
}

// HouseCusps records the call and returns the programmed cusps.
func (m *MockProvider) HouseCusps(ctx context.Context, t time.Time, lat, lon float64) (astro.HouseCusps, error) {
	args := m.Called(ctx, t, lat, lon)
	return args.Get(0).(astro.HouseCusps), args.Error(1)
}
