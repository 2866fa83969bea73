package engine

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/stellium/internal/astro"
)

func TestError_Format(t *testing.T) {
	cause := errors.New("table ends 2030-12-31")
	err := NewProviderError(StagePositionLookup, astro.Mars, time.Date(2031, 1, 2, 0, 0, 0, 0, time.UTC), cause)

	assert.Equal(t,
		"PROVIDER_FAILURE: ephemeris query failed (stage=position_lookup, body=mars, time=2031-01-02T00:00:00Z): table ends 2030-12-31",
		err.Error())
	assert.ErrorIs(t, err, cause)
}

func TestError_KindThroughWrapping(t *testing.T) {
	err := fmt.Errorf("report: %w", NewChartNotFoundError("Ada", "1990-07-04"))

	assert.Equal(t, KindChartNotFound, KindOf(err))
	assert.True(t, IsChartNotFound(err))
	assert.False(t, IsProviderFailure(err))
	assert.Equal(t, ErrorKind(""), KindOf(errors.New("plain")))
}

func TestError_Messages(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "invalid range",
			err:  NewInvalidRangeError("end", "end precedes start"),
			want: "INVALID_RANGE: end precedes start (param=end)",
		},
		{
			name: "ambiguous body",
			err:  NewAmbiguousBodyError("body", "Vulcan"),
			want: `AMBIGUOUS_BODY: unrecognized body "Vulcan" (param=body)`,
		},
		{
			name: "ambiguous chart",
			err:  NewAmbiguousChartError("Ada", []string{"1990-07-04", "1992-01-01"}),
			want: `AMBIGUOUS_CHART: 2 charts named "Ada" (birth dates 1990-07-04, 1992-01-01); specify birth_date (param=birth_date)`,
		},
		{
			name: "duplicate",
			err:  NewDuplicateChartError("Ada", "1990-07-04"),
			want: `DUPLICATE_CHART: chart "Ada" born 1990-07-04 already exists (param=name)`,
		},
		{
			name: "not found without date",
			err:  NewChartNotFoundError("Ada", ""),
			want: `CHART_NOT_FOUND: no chart named "Ada" (param=name)`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}
