package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/stellium/internal/astro"
	"github.com/roach88/stellium/internal/testutil"
)

func birth() BirthData {
	return BirthData{
		Name:        "  Ada  ",
		BirthDate:   "1990-07-04",
		BirthTime:   "14:30",
		Timezone:    "America/New_York",
		Location:    astro.Location{Name: "New York", Latitude: 40.71, Longitude: -74.01},
		HouseSystem: "equal",
	}
}

func TestBuildChart(t *testing.T) {
	sky := testutil.StaticSky(map[astro.Body]float64{astro.Sun: 102.5})
	houses := testutil.FixedHouses{Cusps: testutil.EqualCusps(15)}

	chart, err := BuildChart(context.Background(), sky, houses, birth())
	require.NoError(t, err)

	assert.Equal(t, "Ada", chart.Name)
	assert.Equal(t, time.Date(1990, 7, 4, 18, 30, 0, 0, time.UTC), chart.Instant)
	assert.Equal(t, "14:30", chart.BirthTime)
	assert.Len(t, chart.Positions, len(astro.AllBodies))
	assert.Equal(t, astro.Cancer, chart.SunSign())
	assert.Equal(t, astro.Aries, chart.RisingSign())
	require.NoError(t, chart.Validate())

	id, err := astro.ChartID("Ada", "1990-07-04")
	require.NoError(t, err)
	assert.Equal(t, id, chart.ID)
}

func TestBuildChart_UnknownTimeIsNoon(t *testing.T) {
	b := birth()
	b.BirthTime = ""
	b.Timezone = ""

	chart, err := BuildChart(context.Background(), testutil.StaticSky(nil),
		testutil.FixedHouses{Cusps: testutil.EqualCusps(0)}, b)
	require.NoError(t, err)
	assert.Equal(t, "12:00:00", chart.BirthTime)
	assert.Equal(t, time.Date(1990, 7, 4, 12, 0, 0, 0, time.UTC), chart.Instant)
}

func TestBuildChart_Failures(t *testing.T) {
	ctx := context.Background()
	good := testutil.FixedHouses{Cusps: testutil.EqualCusps(0)}

	t.Run("position lookup", func(t *testing.T) {
		sky := testutil.StaticSky(nil)
		sky.Fail = func(body astro.Body, _ time.Time) error {
			if body == astro.Venus {
				return errors.New("venus offline")
			}
			return nil
		}
		_, err := BuildChart(ctx, sky, good, birth())
		var ee *Error
		require.True(t, errors.As(err, &ee))
		assert.Equal(t, KindProviderFailure, ee.Kind)
		assert.Equal(t, StagePositionLookup, ee.Stage)
		assert.Equal(t, astro.Venus, ee.Body)
	})

	t.Run("house lookup", func(t *testing.T) {
		_, err := BuildChart(ctx, testutil.StaticSky(nil), testutil.FixedHouses{Err: errors.New("polar")}, birth())
		var ee *Error
		require.True(t, errors.As(err, &ee))
		assert.Equal(t, KindProviderFailure, ee.Kind)
		assert.Equal(t, StageHouseLookup, ee.Stage)
	})

	t.Run("bad cusps", func(t *testing.T) {
		_, err := BuildChart(ctx, testutil.StaticSky(nil), testutil.FixedHouses{}, birth())
		assert.True(t, IsProviderFailure(err))
		assert.ErrorIs(t, err, astro.ErrInvalidCusps)
	})

	t.Run("empty name", func(t *testing.T) {
		b := birth()
		b.Name = "   "
		_, err := BuildChart(ctx, testutil.StaticSky(nil), good, b)
		assert.True(t, IsKind(err, KindInvalidChart))
	})

	t.Run("bad date", func(t *testing.T) {
		b := birth()
		b.BirthDate = "1990-13-01"
		_, err := BuildChart(ctx, testutil.StaticSky(nil), good, b)
		assert.True(t, IsKind(err, KindInvalidDate))
	})
}
