package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/stellium/internal/astro"
	"github.com/roach88/stellium/internal/ephemeris"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(viper.New())
	require.NoError(t, err)

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"Database", cfg.Database, "stellium.db"},
		{"Ephemeris.Source", cfg.Ephemeris.Source, "table"},
		{"Ephemeris.Table", cfg.Ephemeris.Table, "ephemeris.csv"},
		{"Ephemeris.RateLimit", cfg.Ephemeris.RateLimit, ephemeris.DefaultRateLimit},
		{"Ephemeris.Burst", cfg.Ephemeris.Burst, 1},
		{"Ephemeris.Timeout", cfg.Ephemeris.Timeout, 10 * time.Second},
		{"Houses.System", cfg.Houses.System, "equal"},
		{"Aspects.ExactOrb", cfg.Aspects.ExactOrb, 1.0},
		{"Report.MaxDays", cfg.Report.MaxDays, 3660},
		{"Log.Level", cfg.Log.Level, "info"},
		{"Log.File", cfg.Log.File, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.got)
		})
	}
	assert.Equal(t, 3660*24*time.Hour, cfg.MaxRange())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("STELLIUM_DATABASE", "/tmp/charts.db")
	t.Setenv("STELLIUM_EPHEMERIS_SOURCE", "http")
	t.Setenv("STELLIUM_EPHEMERIS_TIMEOUT", "30s")
	t.Setenv("STELLIUM_REPORT_MAX_DAYS", "90")

	v := viper.New()
	require.NoError(t, Init(v, ""))
	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/charts.db", cfg.Database)
	assert.Equal(t, "http", cfg.Ephemeris.Source)
	assert.Equal(t, 30*time.Second, cfg.Ephemeris.Timeout)
	assert.Equal(t, 90, cfg.Report.MaxDays)
}

func TestLoad_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stellium.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
database: charts.db
houses:
  system: whole_sign
aspects:
  exact_orb: 0.5
  orbs:
    square: 5
    semi_square: 1.5
log:
  level: debug
  file: stellium.log
`), 0o644))

	v := viper.New()
	require.NoError(t, Init(v, path))
	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, "charts.db", cfg.Database)
	assert.Equal(t, "debug", cfg.Log.Level)

	opts, err := cfg.AspectOptions()
	require.NoError(t, err)
	assert.Equal(t, 0.5, opts.ExactOrb)
	assert.Equal(t, astro.OrbTable{astro.Square: 5, astro.SemiSquare: 1.5}, opts.Orbs)

	eph, err := cfg.EphemerisOptions()
	require.NoError(t, err)
	assert.Equal(t, ephemeris.HouseWholeSign, eph.HouseSystem)
	assert.Equal(t, ephemeris.SourceTable, eph.Source)
}

func TestInit_MissingExplicitFile(t *testing.T) {
	err := Init(viper.New(), filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"source", func(c *Config) { c.Ephemeris.Source = "swiss" }, "ephemeris.source"},
		{"houses", func(c *Config) { c.Houses.System = "placidus" }, "houses.system"},
		{"exact orb", func(c *Config) { c.Aspects.ExactOrb = 0 }, "exact_orb"},
		{"unknown aspect", func(c *Config) { c.Aspects.Orbs = map[string]float64{"novile": 1} }, "unknown aspect"},
		{"negative orb", func(c *Config) { c.Aspects.Orbs = map[string]float64{"trine": -1} }, "must not be negative"},
		{"max days", func(c *Config) { c.Report.MaxDays = 0 }, "max_days"},
		{"log level", func(c *Config) { c.Log.Level = "loud" }, "log.level"},
		{"database", func(c *Config) { c.Database = "" }, "database"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(viper.New())
			require.NoError(t, err)
			tt.mutate(&cfg)
			err = cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
