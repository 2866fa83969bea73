package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/stellium/internal/astro"
	"github.com/roach88/stellium/internal/testutil"
)

func TestPlaceHouse_WrapsThroughZero(t *testing.T) {
	// House 12 runs from 300° through 0° to the Ascendant at 30°.
	cusps := astro.HouseCusps{30, 60, 90, 120, 150, 180, 210, 230, 250, 270, 285, 300}

	tests := []struct {
		lon  float64
		want int
	}{
		{29.9, 12},
		{0, 12},
		{359, 12},
		{300, 12},
		{30, 1},
		{45, 1},
		{299.9, 11},
		{240, 8},
		{270, 10},
		{390, 1},
	}
	for _, tt := range tests {
		got, err := PlaceHouse(tt.lon, cusps)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "longitude %v", tt.lon)
	}
}

func TestPlaceHouse_AlwaysInRange(t *testing.T) {
	for _, asc := range []float64{0, 17.5, 181, 359.9} {
		cusps := testutil.EqualCusps(asc)
		for lon := 0.0; lon < 360; lon += 0.7 {
			house, err := PlaceHouse(lon, cusps)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, house, 1)
			assert.LessOrEqual(t, house, 12)
		}
	}
}

func TestPlaceHouse_InvalidCusps(t *testing.T) {
	cusps := astro.HouseCusps{0, 30, 30, 90, 120, 150, 180, 210, 240, 270, 300, 330}

	_, err := PlaceHouse(10, cusps)
	require.Error(t, err)
	assert.True(t, IsKind(err, KindInvalidChart))
	assert.ErrorIs(t, err, astro.ErrInvalidCusps)
}

func TestPlaceAll(t *testing.T) {
	p := astro.Positions{
		astro.Sun:  pos(15, 1),
		astro.Moon: pos(200, 13),
	}
	houses, err := PlaceAll(p, testutil.EqualCusps(0))
	require.NoError(t, err)
	assert.Equal(t, map[astro.Body]int{astro.Sun: 1, astro.Moon: 7}, houses)
}
