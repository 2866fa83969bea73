package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/roach88/stellium/internal/config"
	"github.com/roach88/stellium/internal/ephemeris"
	"github.com/roach88/stellium/internal/service"
	"github.com/roach88/stellium/internal/store"
)

// session is an opened service plus the resources behind it.
type session struct {
	cfg     config.Config
	svc     *service.Service
	closers []io.Closer
}

func (s *session) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i].Close(); err != nil {
			slog.Error("error closing resource", "error", err)
		}
	}
}

// loadConfig reads the config file and environment, applying --db.
func (o *RootOptions) loadConfig() (config.Config, error) {
	v := viper.New()
	if err := config.Init(v, o.ConfigFile); err != nil {
		return config.Config{}, err
	}
	cfg, err := config.Load(v)
	if err != nil {
		return config.Config{}, err
	}
	if o.Database != "" {
		cfg.Database = o.Database
	}
	return cfg, nil
}

// open loads configuration, configures logging and opens the chart store
// and ephemeris. Callers must Close the session.
func (o *RootOptions) open(cmd *cobra.Command) (*session, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load config", err)
	}

	s := &session{cfg: cfg}
	logCloser, err := setupLogging(o.Verbose, cfg.Log, cmd.ErrOrStderr())
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to configure logging", err)
	}
	if logCloser != nil {
		s.closers = append(s.closers, logCloser)
	}

	slog.Debug("opening database", "path", cfg.Database)
	st, err := store.Open(cfg.Database)
	if err != nil {
		s.Close()
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	s.closers = append(s.closers, st)

	provider := o.Provider
	if provider == nil {
		ephOpts, err := cfg.EphemerisOptions()
		if err != nil {
			s.Close()
			return nil, WrapExitError(ExitCommandError, "invalid ephemeris config", err)
		}
		eph, err := ephemeris.Open(ephOpts)
		if err != nil {
			s.Close()
			return nil, WrapExitError(ExitCommandError, "failed to open ephemeris", err)
		}
		slog.Debug("ephemeris ready", "provider", eph.Name())
		provider = eph
	}

	aspects, err := cfg.AspectOptions()
	if err != nil {
		s.Close()
		return nil, WrapExitError(ExitCommandError, "invalid aspect config", err)
	}

	s.svc = service.New(service.Options{
		Store:       st,
		Provider:    provider,
		Clock:       o.Clock,
		Aspects:     aspects,
		MaxRange:    cfg.MaxRange(),
		HouseSystem: cfg.Houses.System,
	})
	return s, nil
}

// formatter builds the output formatter for cmd.
func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   o.Verbose,
	}
}

// setupLogging installs the default slog logger. Logs go to errOut, or to a
// rotating file when cfg.File is set; the returned closer is then non-nil.
func setupLogging(verbose bool, cfg config.LogConfig, errOut io.Writer) (io.Closer, error) {
	logLevel := slog.LevelInfo
	if cfg.Level != "" {
		if err := logLevel.UnmarshalText([]byte(strings.ToUpper(cfg.Level))); err != nil {
			return nil, fmt.Errorf("parse log level: %w", err)
		}
	}
	if verbose {
		logLevel = slog.LevelDebug
	}

	var (
		w      = errOut
		closer io.Closer
	)
	if cfg.File != "" {
		rotating := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
		}
		w, closer = rotating, rotating
	}

	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(handler))
	return closer, nil
}

// commandContext returns cmd's context, or Background when unset.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// now returns the current time from the injected clock, if any.
func (o *RootOptions) now() time.Time {
	if o.Clock != nil {
		return o.Clock.Now()
	}
	return time.Now()
}
