package calendar

import (
	"bytes"
	"testing"
	"time"

	"github.com/emersion/go-ical"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/stellium/internal/astro"
)

func sampleReport() *astro.TransitReport {
	aries := astro.Aries
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	return &astro.TransitReport{
		ChartName: "Ada",
		BirthDate: "1990-07-04",
		Start:     start,
		End:       start.Add(30 * 24 * time.Hour),
		Events: []astro.Event{
			{
				Time:        start.Add(5 * 24 * time.Hour),
				Kind:        astro.EventAspectExact,
				Bodies:      []astro.Body{astro.Mars, astro.Sun},
				Aspect:      astro.Square,
				Description: "Transiting Mars square natal Sun (orb 0.00°)",
			},
			{
				Time:        start.Add(19*24*time.Hour + 3*time.Hour),
				Kind:        astro.EventSignIngress,
				Bodies:      []astro.Body{astro.Sun},
				Sign:        &aries,
				Label:       "Spring Equinox",
				Description: "Sun enters Aries",
			},
		},
	}
}

func TestEncode(t *testing.T) {
	report := sampleReport()
	stamp := time.Date(2024, 2, 28, 12, 0, 0, 0, time.UTC)

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, report, stamp))

	cal, err := ical.NewDecoder(&buf).Decode()
	require.NoError(t, err)

	prodID, err := cal.Props.Text(ical.PropProductID)
	require.NoError(t, err)
	assert.Equal(t, ProdID, prodID)

	events := cal.Events()
	require.Len(t, events, 2)

	summary, err := events[0].Props.Text(ical.PropSummary)
	require.NoError(t, err)
	assert.Equal(t, "Mars square natal Sun", summary)

	start, err := events[0].DateTimeStart(time.UTC)
	require.NoError(t, err)
	assert.True(t, start.Equal(report.Events[0].Time))

	summary, err = events[1].Props.Text(ical.PropSummary)
	require.NoError(t, err)
	assert.Equal(t, "Spring Equinox", summary)

	desc, err := events[1].Props.Text(ical.PropDescription)
	require.NoError(t, err)
	assert.Equal(t, "Sun enters Aries", desc)
}

func TestEncode_StableUIDs(t *testing.T) {
	uids := func(stamp time.Time) []string {
		var buf bytes.Buffer
		require.NoError(t, Encode(&buf, sampleReport(), stamp))
		cal, err := ical.NewDecoder(&buf).Decode()
		require.NoError(t, err)
		var out []string
		for _, e := range cal.Events() {
			out = append(out, e.Props.Get(ical.PropUID).Value)
		}
		return out
	}

	first := uids(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	second := uids(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
	require.Len(t, first, 2)
	assert.Equal(t, first, second)
	assert.NotEqual(t, first[0], first[1])
	assert.Contains(t, first[0], "@"+Domain)
}

func TestUID_DependsOnChart(t *testing.T) {
	e := sampleReport().Events[0]
	a, err := UID("chart-a", e)
	require.NoError(t, err)
	b, err := UID("chart-b", e)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestEncode_Empty(t *testing.T) {
	report := sampleReport()
	report.Events = nil

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, report, time.Now()))
	assert.Equal(t, emptyCalendar, buf.String())
}
