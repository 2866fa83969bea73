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

// natalSun returns a chart whose only placement is the Sun at lon.
func natalSun(t *testing.T, lon float64) *astro.NatalChart {
	t.Helper()
	chart := testutil.Chart(t, "Natal", "1990-01-01", 0, nil)
	chart.Positions = astro.Positions{astro.Sun: pos(lon, 1)}
	return chart
}

func eventsOfKind(r *astro.TransitReport, kind astro.EventKind) []astro.Event {
	var out []astro.Event
	for _, e := range r.Events {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

func TestGenerate_AspectBecomesExact(t *testing.T) {
	sky := testutil.NewSky(map[astro.Body]testutil.Path{
		astro.Mars: testutil.Linear(testutil.Epoch, 5, 1),
	})
	reporter := NewTransitReporter(sky)

	report, err := reporter.Generate(context.Background(), testutil.Epoch, testutil.Epoch.Add(10*day),
		natalSun(t, 100), ReportOptions{Bodies: []astro.Body{astro.Mars}})
	require.NoError(t, err)

	require.Len(t, report.Events, 1)
	ev := report.Events[0]
	assert.Equal(t, astro.EventAspectExact, ev.Kind)
	assert.Equal(t, testutil.Epoch.Add(5*day), ev.Time)
	assert.Equal(t, []astro.Body{astro.Mars, astro.Sun}, ev.Bodies)
	assert.Equal(t, astro.Square, ev.Aspect)
	require.NotNil(t, ev.Orb)
	assert.InDelta(t, 0.0, *ev.Orb, 1e-9)
	assert.Equal(t, "Transiting Mars square natal Sun (orb 0.00°)", ev.Description)
}

func TestGenerate_OngoingAspectReportedOnce(t *testing.T) {
	sky := testutil.NewSky(map[astro.Body]testutil.Path{
		astro.Mars: testutil.Linear(testutil.Epoch, 9.5, 0.2),
	})

	report, err := NewTransitReporter(sky).Generate(context.Background(), testutil.Epoch, testutil.Epoch.Add(5*day),
		natalSun(t, 100), ReportOptions{Bodies: []astro.Body{astro.Mars}})
	require.NoError(t, err)

	exact := eventsOfKind(report, astro.EventAspectExact)
	require.Len(t, exact, 1)
	assert.Equal(t, testutil.Epoch, exact[0].Time)
}

func TestGenerate_AspectReformsAfterSeparating(t *testing.T) {
	// Mars swings back and forth through 10°, the square to natal Sun.
	sky := testutil.NewSky(map[astro.Body]testutil.Path{
		astro.Mars: func(at time.Time) astro.Position {
			d := at.Sub(testutil.Epoch).Hours() / 24
			lon := 10.0
			switch int(d) % 6 {
			case 2, 3:
				lon = 14
			}
			return pos(lon, 0.1)
		},
	})

	report, err := NewTransitReporter(sky).Generate(context.Background(), testutil.Epoch, testutil.Epoch.Add(8*day),
		natalSun(t, 100), ReportOptions{Bodies: []astro.Body{astro.Mars}})
	require.NoError(t, err)

	exact := eventsOfKind(report, astro.EventAspectExact)
	require.Len(t, exact, 2)
	assert.Equal(t, testutil.Epoch, exact[0].Time)
	assert.Equal(t, testutil.Epoch.Add(4*day), exact[1].Time)
}

func TestGenerate_StationIngressAndPhase(t *testing.T) {
	sky := testutil.NewSky(map[astro.Body]testutil.Path{
		astro.Sun:     testutil.Linear(testutil.Epoch, 358, 1),
		astro.Moon:    testutil.Linear(testutil.Epoch, 18, 12),
		astro.Mercury: testutil.DailySpeeds(testutil.Epoch, 200, 0.5, 0.1, -0.2, -0.4),
	})
	natal := natalSun(t, 45)

	report, err := NewTransitReporter(sky).Generate(context.Background(), testutil.Epoch, testutil.Epoch.Add(3*day),
		natal, ReportOptions{Bodies: []astro.Body{astro.Sun, astro.Moon, astro.Mercury}})
	require.NoError(t, err)

	stations := eventsOfKind(report, astro.EventStationRetrograde)
	require.Len(t, stations, 1)
	assert.Equal(t, testutil.Epoch.Add(2*day), stations[0].Time)
	assert.Equal(t, []astro.Body{astro.Mercury}, stations[0].Bodies)
	assert.Equal(t, "Mercury stations retrograde at 20.0° Libra", stations[0].Description)

	var sunIngress *astro.Event
	ingresses := eventsOfKind(report, astro.EventSignIngress)
	for i := range ingresses {
		if ingresses[i].Bodies[0] == astro.Sun {
			sunIngress = &ingresses[i]
		}
	}
	require.NotNil(t, sunIngress)
	assert.Equal(t, testutil.Epoch.Add(2*day), sunIngress.Time)
	assert.Equal(t, "Spring Equinox", sunIngress.Label)
	require.NotNil(t, sunIngress.Sign)
	assert.Equal(t, astro.Aries, *sunIngress.Sign)

	phases := eventsOfKind(report, astro.EventPhaseChange)
	require.NotEmpty(t, phases)
	assert.Equal(t, testutil.Epoch.Add(day), phases[0].Time)
	assert.Equal(t, astro.WaxingCrescent, phases[0].Phase)

	for i := 1; i < len(report.Events); i++ {
		assert.False(t, report.Events[i].Time.Before(report.Events[i-1].Time), "events out of order at %d", i)
	}
}

func TestGenerate_LunationsAtExactInstant(t *testing.T) {
	// Moon gains 12°/day on a fixed Sun: New Moons at 10h and 730h, Full
	// Moon at 370h.
	sky := testutil.NewSky(map[astro.Body]testutil.Path{
		astro.Sun:  testutil.Fixed(10),
		astro.Moon: testutil.Linear(testutil.Epoch, 5, 12),
	})

	report, err := NewTransitReporter(sky).Generate(context.Background(), testutil.Epoch, testutil.Epoch.Add(31*day),
		natalSun(t, 200), ReportOptions{Bodies: []astro.Body{astro.Sun, astro.Moon}})
	require.NoError(t, err)

	lunations := eventsOfKind(report, astro.EventLunation)
	require.Len(t, lunations, 3)
	assert.Equal(t, astro.NewMoon, lunations[0].Phase)
	assert.WithinDuration(t, testutil.Epoch.Add(10*time.Hour), lunations[0].Time, time.Minute)

	full := lunations[1]
	assert.Equal(t, astro.FullMoon, full.Phase)
	assert.WithinDuration(t, testutil.Epoch.Add(370*time.Hour), full.Time, time.Minute)
	assert.Equal(t, []astro.Body{astro.Moon}, full.Bodies)
	require.NotNil(t, full.Sign)
	assert.Equal(t, astro.Libra, *full.Sign)
	assert.Equal(t, "Full Moon in Libra", full.Description)

	newMoon := lunations[2]
	assert.Equal(t, astro.NewMoon, newMoon.Phase)
	assert.WithinDuration(t, testutil.Epoch.Add(730*time.Hour), newMoon.Time, time.Minute)

	// The daily phase bucket changes before the exact Full Moon.
	var bucket time.Time
	for _, e := range eventsOfKind(report, astro.EventPhaseChange) {
		if e.Phase == astro.FullMoon {
			bucket = e.Time
		}
	}
	require.False(t, bucket.IsZero())
	assert.True(t, bucket.Before(full.Time))

	for i := 1; i < len(report.Events); i++ {
		assert.False(t, report.Events[i].Time.Before(report.Events[i-1].Time), "events out of order at %d", i)
	}
}

func TestGenerate_NoLunationsWithoutSunAndMoon(t *testing.T) {
	sky := testutil.NewSky(map[astro.Body]testutil.Path{
		astro.Sun:  testutil.Fixed(0),
		astro.Moon: testutil.Linear(testutil.Epoch, 5, 12),
	})

	report, err := NewTransitReporter(sky).Generate(context.Background(), testutil.Epoch, testutil.Epoch.Add(31*day),
		natalSun(t, 200), ReportOptions{Bodies: []astro.Body{astro.Moon}})
	require.NoError(t, err)
	assert.Empty(t, eventsOfKind(report, astro.EventLunation))
}

func TestGenerate_IncludeMinor(t *testing.T) {
	sky := testutil.NewSky(map[astro.Body]testutil.Path{
		astro.Saturn: testutil.Fixed(250),
	})
	natal := natalSun(t, 100)
	reporter := NewTransitReporter(sky)

	report, err := reporter.Generate(context.Background(), testutil.Epoch, testutil.Epoch.Add(day),
		natal, ReportOptions{Bodies: []astro.Body{astro.Saturn}})
	require.NoError(t, err)
	assert.Empty(t, report.Events)

	report, err = reporter.Generate(context.Background(), testutil.Epoch, testutil.Epoch.Add(day),
		natal, ReportOptions{Bodies: []astro.Body{astro.Saturn}, Aspects: AspectOptions{IncludeMinor: true}})
	require.NoError(t, err)
	require.Len(t, report.Events, 1)
	assert.Equal(t, astro.Quincunx, report.Events[0].Aspect)
}

func TestGenerate_FailsFastWithDate(t *testing.T) {
	failAt := testutil.Epoch.Add(3 * day)
	sky := testutil.NewSky(map[astro.Body]testutil.Path{
		astro.Mars: testutil.Linear(testutil.Epoch, 5, 1),
	})
	sky.Fail = func(body astro.Body, at time.Time) error {
		if at.Equal(failAt) {
			return errors.New("no data")
		}
		return nil
	}

	report, err := NewTransitReporter(sky).Generate(context.Background(), testutil.Epoch, testutil.Epoch.Add(10*day),
		natalSun(t, 100), ReportOptions{Bodies: []astro.Body{astro.Mars}})
	require.Error(t, err)
	assert.Nil(t, report)

	var ee *Error
	require.True(t, errors.As(err, &ee))
	assert.Equal(t, KindProviderFailure, ee.Kind)
	assert.Equal(t, failAt, ee.Time)
	assert.Equal(t, astro.Mars, ee.Body)
	assert.Contains(t, err.Error(), "2024-01-04")
}

func TestGenerate_InvalidInputs(t *testing.T) {
	reporter := NewTransitReporter(testutil.StaticSky(nil))
	ctx := context.Background()

	_, err := reporter.Generate(ctx, testutil.Epoch, testutil.Epoch.Add(-day), natalSun(t, 0), ReportOptions{})
	assert.True(t, IsKind(err, KindInvalidRange))

	_, err = reporter.Generate(ctx, testutil.Epoch, testutil.Epoch.Add(day), nil, ReportOptions{})
	assert.True(t, IsKind(err, KindInvalidChart))
}

func TestGenerate_Idempotent(t *testing.T) {
	sky := testutil.NewSky(map[astro.Body]testutil.Path{
		astro.Sun:     testutil.Linear(testutil.Epoch, 350, 1),
		astro.Moon:    testutil.Linear(testutil.Epoch, 0, 13.2),
		astro.Mercury: testutil.Oscillating(testutil.Epoch, 340, 1, 2.5, 40*day),
		astro.Mars:    testutil.Linear(testutil.Epoch, 80, 0.6),
	})
	natal := testutil.Chart(t, "Natal", "1985-06-15", 120, nil)
	reporter := NewTransitReporter(sky)
	opts := ReportOptions{Bodies: []astro.Body{astro.Sun, astro.Moon, astro.Mercury, astro.Mars}}

	first, err := reporter.Generate(context.Background(), testutil.Epoch, testutil.Epoch.Add(30*day), natal, opts)
	require.NoError(t, err)
	second, err := reporter.Generate(context.Background(), testutil.Epoch, testutil.Epoch.Add(30*day), natal, opts)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.NotEmpty(t, first.Events)
}

func TestGenerate_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewTransitReporter(testutil.StaticSky(nil)).Generate(ctx, testutil.Epoch, testutil.Epoch.Add(day),
		natalSun(t, 0), ReportOptions{})
	assert.ErrorIs(t, err, context.Canceled)
}
