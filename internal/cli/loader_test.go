package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validCharts = `name: Ada
birth_date: 1990-07-04
birth_time: "08:15"
timezone: Europe/London
location:
  name: London
  latitude: 51.5
  longitude: -0.13
---
name: Bo
birth_date: "1985-03-03"
location:
  latitude: 40
  longitude: -74
`

const invalidChart = `name: Cy
birth_date: 03/03/1985
location:
  latitude: 95
  longitude: 0
  altitude: 10
`

func writeChartFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadCharts_Valid(t *testing.T) {
	path := writeChartFile(t, t.TempDir(), "charts.yaml", validCharts)

	result, errs := LoadCharts([]string{path}, LoadModeCollectAll)
	require.Empty(t, errs)
	require.Len(t, result.Charts, 2)
	assert.Equal(t, 1, result.FileCount)

	ada := result.Charts[0]
	assert.Equal(t, 1, ada.Line)
	assert.Equal(t, "Ada", ada.Request.Name)
	assert.Equal(t, "1990-07-04", ada.Request.BirthDate)
	assert.Equal(t, "08:15", ada.Request.BirthTime)
	assert.Equal(t, 51.5, ada.Request.Location.Latitude)

	bo := result.Charts[1]
	assert.Equal(t, 10, bo.Line)
	assert.Equal(t, "", bo.Request.Timezone)
	assert.Equal(t, -74.0, bo.Request.Location.Longitude)
}

func TestLoadCharts_SchemaViolations(t *testing.T) {
	path := writeChartFile(t, t.TempDir(), "bad.yaml", invalidChart)

	_, errs := LoadCharts([]string{path}, LoadModeCollectAll)
	require.NotEmpty(t, errs)

	var fields []string
	for _, err := range errs {
		var verr ValidationError
		require.True(t, errors.As(err, &verr), "unexpected error %v", err)
		assert.Equal(t, ErrCodeInvalidChart, verr.Code)
		assert.Equal(t, path, verr.File)
		assert.Equal(t, 1, verr.Line)
		fields = append(fields, verr.Field)
	}
	for _, want := range []string{"birth_date", "latitude", "altitude"} {
		assert.True(t, slices.ContainsFunc(fields, func(f string) bool {
			return strings.HasSuffix(f, want)
		}), "no error for %s in %v", want, fields)
	}
}

func TestLoadCharts_MissingRequired(t *testing.T) {
	path := writeChartFile(t, t.TempDir(), "partial.yaml", "name: Dee\n")

	_, errs := LoadCharts([]string{path}, LoadModeFailFast)
	require.NotEmpty(t, errs)
	var verr ValidationError
	require.ErrorAs(t, errs[0], &verr)
}

func TestLoadCharts_FileErrors(t *testing.T) {
	dir := t.TempDir()

	_, errs := LoadCharts([]string{filepath.Join(dir, "missing.yaml")}, LoadModeFailFast)
	require.Len(t, errs, 1)
	var loadErr *LoadError
	require.ErrorAs(t, errs[0], &loadErr)
	assert.Equal(t, ErrCodeNotFound, loadErr.Code)

	broken := writeChartFile(t, dir, "broken.yaml", "name: [unclosed\n")
	_, errs = LoadCharts([]string{broken}, LoadModeFailFast)
	require.Len(t, errs, 1)
	require.ErrorAs(t, errs[0], &loadErr)
	assert.Equal(t, ErrCodeLoadFailed, loadErr.Code)

	empty := writeChartFile(t, dir, "empty.yaml", "# nothing here\n")
	_, errs = LoadCharts([]string{empty}, LoadModeFailFast)
	require.Len(t, errs, 1)
	require.ErrorAs(t, errs[0], &loadErr)
	assert.Equal(t, ErrCodeNoFiles, loadErr.Code)
}

func TestExpandPaths(t *testing.T) {
	dir := t.TempDir()
	writeChartFile(t, dir, "a.yaml", validCharts)
	writeChartFile(t, dir, "b.yml", validCharts)
	writeChartFile(t, dir, "notes.txt", "ignored")

	files, err := expandPaths([]string{dir, "explicit.yaml"})
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.yaml"),
		filepath.Join(dir, "b.yml"),
		"explicit.yaml",
	}, files)
}

func TestValidateCommand(t *testing.T) {
	dir := t.TempDir()
	good := writeChartFile(t, dir, "good.yaml", validCharts)
	bad := writeChartFile(t, dir, "bad.yaml", invalidChart)

	t.Run("valid text", func(t *testing.T) {
		buf := &bytes.Buffer{}
		cmd := NewValidateCommand(&RootOptions{Format: "text"})
		cmd.SetOut(buf)
		cmd.SetArgs([]string{good})
		require.NoError(t, cmd.Execute())
		assert.Equal(t, "✓ 2 chart(s) valid\n", buf.String())
	})

	t.Run("invalid json", func(t *testing.T) {
		buf := &bytes.Buffer{}
		cmd := NewValidateCommand(&RootOptions{Format: "json"})
		cmd.SetOut(buf)
		cmd.SetArgs([]string{good, bad})

		err := cmd.Execute()
		require.Error(t, err)
		assert.Equal(t, ExitFailure, GetExitCode(err))

		var resp struct {
			Status string           `json:"status"`
			Data   ValidationResult `json:"data"`
			Error  CLIError         `json:"error"`
		}
		require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
		assert.Equal(t, "error", resp.Status)
		assert.False(t, resp.Data.Valid)
		assert.NotEmpty(t, resp.Data.Errors)
		assert.Equal(t, ErrCodeInvalidChart, resp.Error.Code)
	})

	t.Run("missing file", func(t *testing.T) {
		buf := &bytes.Buffer{}
		cmd := NewValidateCommand(&RootOptions{Format: "text"})
		cmd.SetOut(buf)
		cmd.SetArgs([]string{filepath.Join(dir, "nope.yaml")})

		err := cmd.Execute()
		require.Error(t, err)
		assert.Equal(t, ExitCommandError, GetExitCode(err))
		assert.Contains(t, buf.String(), "Error [E005]")
	})
}
