// Package config loads stellium settings from .stellium.yaml, STELLIUM_*
// environment variables and command-line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/roach88/stellium/internal/astro"
	"github.com/roach88/stellium/internal/engine"
	"github.com/roach88/stellium/internal/ephemeris"
)

// EnvPrefix prefixes every environment override, e.g. STELLIUM_DATABASE or
// STELLIUM_EPHEMERIS_SOURCE.
const EnvPrefix = "STELLIUM"

// EphemerisConfig selects and tunes the ephemeris source.
type EphemerisConfig struct {
	Source    string        `mapstructure:"source"`
	Table     string        `mapstructure:"table"`
	URL       string        `mapstructure:"url"`
	RateLimit float64       `mapstructure:"rate_limit"`
	Burst     int           `mapstructure:"burst"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// HousesConfig selects the house system for new charts.
type HousesConfig struct {
	System string `mapstructure:"system"`
}

// AspectsConfig overrides aspect detection thresholds. Orbs are keyed by
// aspect name, e.g. "square".
type AspectsConfig struct {
	ExactOrb float64            `mapstructure:"exact_orb"`
	Orbs     map[string]float64 `mapstructure:"orbs"`
}

// ReportConfig bounds transit reports.
type ReportConfig struct {
	MaxDays int `mapstructure:"max_days"`
}

// LogConfig configures logging. An empty File logs to stderr.
type LogConfig struct {
	Level      string `mapstructure:"level"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
}

// Config holds all runtime configuration.
type Config struct {
	Database  string          `mapstructure:"database"`
	Ephemeris EphemerisConfig `mapstructure:"ephemeris"`
	Houses    HousesConfig    `mapstructure:"houses"`
	Aspects   AspectsConfig   `mapstructure:"aspects"`
	Report    ReportConfig    `mapstructure:"report"`
	Log       LogConfig       `mapstructure:"log"`
}

// Init points v at the config file and environment. With an empty cfgFile
// .stellium.yaml is looked up in the working directory and then $HOME. A
// missing default file is not an error.
func Init(v *viper.Viper, cfgFile string) error {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName(".stellium")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

// SetDefaults registers the built-in defaults on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("database", "stellium.db")
	v.SetDefault("ephemeris.source", string(ephemeris.SourceTable))
	v.SetDefault("ephemeris.table", "ephemeris.csv")
	v.SetDefault("ephemeris.url", "")
	v.SetDefault("ephemeris.rate_limit", ephemeris.DefaultRateLimit)
	v.SetDefault("ephemeris.burst", 1)
	v.SetDefault("ephemeris.timeout", ephemeris.DefaultTimeout)
	v.SetDefault("houses.system", string(ephemeris.HouseEqual))
	v.SetDefault("aspects.exact_orb", engine.DefaultExactOrb)
	v.SetDefault("aspects.orbs", map[string]float64{})
	v.SetDefault("report.max_days", int(engine.DefaultMaxRange/(24*time.Hour)))
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 10)
	v.SetDefault("log.max_backups", 3)
}

// Load applies defaults and decodes v into a validated Config.
func Load(v *viper.Viper) (Config, error) {
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks value ranges and enumerations.
func (c Config) Validate() error {
	if c.Database == "" {
		return fmt.Errorf("config: database is required")
	}
	if _, err := ephemeris.ParseSource(c.Ephemeris.Source); err != nil {
		return fmt.Errorf("config: ephemeris.source: %w", err)
	}
	if _, err := ephemeris.ParseHouseSystem(c.Houses.System); err != nil {
		return fmt.Errorf("config: houses.system: %w", err)
	}
	if c.Aspects.ExactOrb <= 0 {
		return fmt.Errorf("config: aspects.exact_orb must be positive, got %v", c.Aspects.ExactOrb)
	}
	if _, err := c.AspectOptions(); err != nil {
		return err
	}
	if c.Report.MaxDays <= 0 {
		return fmt.Errorf("config: report.max_days must be positive, got %d", c.Report.MaxDays)
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: log.level %q (want debug, info, warn or error)", c.Log.Level)
	}
	return nil
}

// EphemerisOptions converts the ephemeris and houses sections for
// ephemeris.Open.
func (c Config) EphemerisOptions() (ephemeris.Options, error) {
	source, err := ephemeris.ParseSource(c.Ephemeris.Source)
	if err != nil {
		return ephemeris.Options{}, err
	}
	system, err := ephemeris.ParseHouseSystem(c.Houses.System)
	if err != nil {
		return ephemeris.Options{}, err
	}
	return ephemeris.Options{
		Source:      source,
		Table:       c.Ephemeris.Table,
		URL:         c.Ephemeris.URL,
		RateLimit:   c.Ephemeris.RateLimit,
		Burst:       c.Ephemeris.Burst,
		Timeout:     c.Ephemeris.Timeout,
		HouseSystem: system,
	}, nil
}

// AspectOptions converts the aspects section into engine options.
func (c Config) AspectOptions() (engine.AspectOptions, error) {
	opts := engine.AspectOptions{ExactOrb: c.Aspects.ExactOrb}
	if len(c.Aspects.Orbs) == 0 {
		return opts, nil
	}
	opts.Orbs = astro.OrbTable{}
	for name, orb := range c.Aspects.Orbs {
		t := astro.AspectType(strings.ToLower(strings.ReplaceAll(name, "_", "-")))
		if !t.Valid() {
			return engine.AspectOptions{}, fmt.Errorf("config: aspects.orbs: unknown aspect %q", name)
		}
		if orb < 0 {
			return engine.AspectOptions{}, fmt.Errorf("config: aspects.orbs.%s must not be negative", name)
		}
		opts.Orbs[t] = orb
	}
	return opts, nil
}

// MaxRange is the longest span a report or scan may cover.
func (c Config) MaxRange() time.Duration {
	return time.Duration(c.Report.MaxDays) * 24 * time.Hour
}
