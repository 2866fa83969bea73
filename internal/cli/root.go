package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/stellium/internal/engine"
	"github.com/roach88/stellium/internal/service"
)

// Version is reported by --version and to MCP clients.
const Version = "0.3.0"

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigFile string
	Database   string // overrides the configured database when set

	// Provider and Clock replace the configured ephemeris and the system
	// clock (for testing).
	Provider service.Provider
	Clock    engine.Clock
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the stellium CLI.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "stellium",
		Short:   "Stellium - natal charts, transits and synastry",
		Long:    "Compute and store natal charts, track transits, retrogrades and lunar cycles, and compare charts.",
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigFile, "config", "", "config file (default .stellium.yaml in . or $HOME)")
	cmd.PersistentFlags().StringVar(&opts.Database, "db", "", "path to SQLite chart database")

	// Add subcommands
	cmd.AddCommand(NewChartCommand(opts))
	cmd.AddCommand(NewTransitsCommand(opts))
	cmd.AddCommand(NewRetrogradesCommand(opts))
	cmd.AddCommand(NewLunarCommand(opts))
	cmd.AddCommand(NewReportCommand(opts))
	cmd.AddCommand(NewCompatCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewServeCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}
