package service

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/roach88/stellium/internal/astro"
	"github.com/roach88/stellium/internal/engine"
	"github.com/roach88/stellium/internal/store"
	"github.com/roach88/stellium/internal/testutil"
)

func newTestService(t *testing.T, provider Provider) *Service {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "charts.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	return New(Options{
		Store:       st,
		Provider:    provider,
		Clock:       testutil.NewFixedClock(testutil.Epoch.Add(15 * time.Hour)),
		HouseSystem: "equal",
	})
}

func adaRequest(date string) StoreChartRequest {
	return StoreChartRequest{
		Name:      "Ada",
		BirthDate: date,
		BirthTime: "08:15",
		Timezone:  "Europe/London",
		Location:  astro.Location{Name: "London", Latitude: 51.5, Longitude: -0.13},
	}
}

func TestStoreChart_ResolveChart(t *testing.T) {
	svc := newTestService(t, testutil.NewEphemeris(testutil.StaticSky(nil), 0))
	ctx := context.Background()

	stored, err := svc.StoreChart(ctx, adaRequest("1990-07-04"))
	require.NoError(t, err)
	assert.Equal(t, "equal", stored.HouseSystem)
	assert.Equal(t, time.Date(1990, 7, 4, 7, 15, 0, 0, time.UTC), stored.Instant)

	got, err := svc.ResolveChart(ctx, ChartRef{Name: " Ada "})
	require.NoError(t, err)
	assert.Equal(t, stored.ID, got.ID)
	assert.True(t, stored.Instant.Equal(got.Instant))
	assert.Equal(t, stored.Positions, got.Positions)
	assert.Equal(t, stored.Cusps, got.Cusps)

	_, err = svc.StoreChart(ctx, adaRequest("1990-07-04"))
	assert.True(t, engine.IsKind(err, engine.KindDuplicateChart))
}

func TestResolveChart_Errors(t *testing.T) {
	svc := newTestService(t, testutil.NewEphemeris(testutil.StaticSky(nil), 0))
	ctx := context.Background()
	for _, date := range []string{"1990-07-04", "1992-01-01"} {
		_, err := svc.StoreChart(ctx, adaRequest(date))
		require.NoError(t, err)
	}

	_, err := svc.ResolveChart(ctx, ChartRef{Name: "Ada"})
	var ee *engine.Error
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, engine.KindAmbiguousChart, ee.Kind)
	assert.Contains(t, ee.Message, "1990-07-04, 1992-01-01")

	chart, err := svc.ResolveChart(ctx, ChartRef{Name: "Ada", BirthDate: "1992-01-01"})
	require.NoError(t, err)
	assert.Equal(t, "1992-01-01", chart.BirthDate)

	_, err = svc.ResolveChart(ctx, ChartRef{Name: "Bo"})
	assert.True(t, engine.IsChartNotFound(err))

	_, err = svc.ResolveChart(ctx, ChartRef{Name: "Ada", BirthDate: "2000-01-01"})
	assert.True(t, engine.IsChartNotFound(err))

	_, err = svc.ResolveChart(ctx, ChartRef{Name: "Ada", BirthDate: "yesterday"})
	assert.True(t, engine.IsKind(err, engine.KindInvalidDate))

	_, err = svc.ResolveChart(ctx, ChartRef{})
	assert.True(t, engine.IsKind(err, engine.KindInvalidChart))
}

func TestListSearchDelete(t *testing.T) {
	svc := newTestService(t, testutil.NewEphemeris(testutil.StaticSky(nil), 0))
	ctx := context.Background()
	_, err := svc.StoreChart(ctx, adaRequest("1990-07-04"))
	require.NoError(t, err)

	list, err := svc.ListCharts(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "London", list[0].Location)

	found, err := svc.SearchCharts(ctx, "AD")
	require.NoError(t, err)
	assert.Len(t, found, 1)

	err = svc.DeleteChart(ctx, ChartRef{Name: "Ada"})
	assert.True(t, engine.IsKind(err, engine.KindInvalidDate))

	require.NoError(t, svc.DeleteChart(ctx, ChartRef{Name: "Ada", BirthDate: "1990-07-04"}))
	err = svc.DeleteChart(ctx, ChartRef{Name: "Ada", BirthDate: "1990-07-04"})
	assert.True(t, engine.IsChartNotFound(err))
}

func TestStoreChart_ProviderFailure(t *testing.T) {
	m := &testutil.MockProvider{}
	m.On("Position", mock.Anything, astro.Sun, mock.Anything).
		Return(astro.Position{}, errors.New("ephemeris offline")).Once()
	svc := newTestService(t, m)

	_, err := svc.StoreChart(context.Background(), adaRequest("1990-07-04"))
	var ee *engine.Error
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, engine.KindProviderFailure, ee.Kind)
	assert.Equal(t, astro.Sun, ee.Body)
	m.AssertExpectations(t)
	m.AssertNotCalled(t, "HouseCusps", mock.Anything, mock.Anything, mock.Anything, mock.Anything)

	list, err := svc.ListCharts(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestStoreChart_HouseFailure(t *testing.T) {
	m := &testutil.MockProvider{}
	m.On("Position", mock.Anything, mock.Anything, mock.Anything).
		Return(astro.Position{Longitude: 10, Distance: 1, Speed: 1}, nil)
	m.On("HouseCusps", mock.Anything, mock.Anything, 51.5, -0.13).
		Return(astro.HouseCusps{}, errors.New("polar latitude"))
	svc := newTestService(t, m)

	_, err := svc.StoreChart(context.Background(), adaRequest("1990-07-04"))
	var ee *engine.Error
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, engine.StageHouseLookup, ee.Stage)
	m.AssertNumberOfCalls(t, "Position", len(astro.AllBodies))
}
