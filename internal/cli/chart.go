package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/stellium/internal/astro"
	"github.com/roach88/stellium/internal/service"
)

// ChartOptions holds flags for the chart commands.
type ChartOptions struct {
	*RootOptions
	BirthDate string
	BirthTime string
	Timezone  string
	Place     string
	Latitude  float64
	Longitude float64
	Files     []string
}

// NewChartCommand creates the chart command and its subcommands.
func NewChartCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chart",
		Short: "Manage stored natal charts",
	}
	cmd.AddCommand(newChartAddCommand(&ChartOptions{RootOptions: rootOpts}))
	cmd.AddCommand(newChartGetCommand(&ChartOptions{RootOptions: rootOpts}))
	cmd.AddCommand(newChartListCommand(rootOpts))
	cmd.AddCommand(newChartSearchCommand(rootOpts))
	cmd.AddCommand(newChartDeleteCommand(rootOpts))
	return cmd
}

func newChartAddCommand(opts *ChartOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add [name]",
		Short: "Compute and store a natal chart",
		Long: `Compute a natal chart from birth data and store it.

Birth data comes either from flags or from YAML chart files, which are
validated against the chart schema first.

Example:
  stellium chart add Ada --date 1990-07-04 --time 08:15 --tz Europe/London --lat 51.5 --lon -0.13
  stellium chart add --file charts.yaml`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChartAdd(opts, args, cmd)
		},
	}
	cmd.Flags().StringVar(&opts.BirthDate, "date", "", "birth date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&opts.BirthTime, "time", "", "local birth time (HH:MM, default 12:00)")
	cmd.Flags().StringVar(&opts.Timezone, "tz", "", "IANA timezone of the birth place (default UTC)")
	cmd.Flags().StringVar(&opts.Place, "place", "", "birth place name")
	cmd.Flags().Float64Var(&opts.Latitude, "lat", 0, "birth latitude in degrees")
	cmd.Flags().Float64Var(&opts.Longitude, "lon", 0, "birth longitude in degrees")
	cmd.Flags().StringSliceVarP(&opts.Files, "file", "f", nil, "YAML chart file or directory")
	return cmd
}

func runChartAdd(opts *ChartOptions, args []string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	var requests []service.StoreChartRequest
	switch {
	case len(opts.Files) > 0:
		if len(args) > 0 {
			return formatter.Fail("invalid arguments", errors.New("name argument cannot be combined with --file"))
		}
		reqs, err := loadChartRequests(opts.Files, formatter)
		if err != nil {
			return err
		}
		requests = reqs
	case len(args) == 1:
		requests = append(requests, service.StoreChartRequest{
			Name:      args[0],
			BirthDate: opts.BirthDate,
			BirthTime: opts.BirthTime,
			Timezone:  opts.Timezone,
			Location: astro.Location{
				Name:      opts.Place,
				Latitude:  opts.Latitude,
				Longitude: opts.Longitude,
			},
		})
	default:
		return formatter.Fail("invalid arguments", errors.New("a chart name or --file is required"))
	}

	sess, err := opts.open(cmd)
	if err != nil {
		return err
	}
	defer sess.Close()

	ctx := commandContext(cmd)
	var stored []*astro.NatalChart
	for _, req := range requests {
		chart, err := sess.svc.StoreChart(ctx, req)
		if err != nil {
			return formatter.Fail(fmt.Sprintf("failed to store chart %q", req.Name), err)
		}
		formatter.VerboseLog("Stored %s (%s)", chart.Name, chart.ID)
		stored = append(stored, chart)
	}

	var data any = stored
	if len(stored) == 1 {
		data = stored[0]
	}
	return formatter.Render(data, func(w io.Writer) error {
		for i, c := range stored {
			if i > 0 {
				fmt.Fprintln(w)
			}
			if err := renderChart(w, c); err != nil {
				return err
			}
		}
		return nil
	})
}

// loadChartRequests loads and validates chart files, reporting failures
// through formatter.
func loadChartRequests(paths []string, formatter *OutputFormatter) ([]service.StoreChartRequest, error) {
	files, err := expandPaths(paths)
	if err != nil {
		return nil, formatter.Fail("failed to load chart files", err)
	}
	result, errs := LoadCharts(files, LoadModeCollectAll)
	if len(errs) > 0 {
		return nil, outputLoadErrors(formatter, errs)
	}
	formatter.VerboseLog("Loaded %d chart(s) from %d file(s)", len(result.Charts), result.FileCount)

	reqs := make([]service.StoreChartRequest, len(result.Charts))
	for i, doc := range result.Charts {
		reqs[i] = doc.Request
	}
	return reqs, nil
}

func newChartGetCommand(opts *ChartOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "get <name>",
		Short:         "Show a stored natal chart",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := opts.formatter(cmd)
			sess, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer sess.Close()

			chart, err := sess.svc.ResolveChart(commandContext(cmd), service.ChartRef{Name: args[0], BirthDate: opts.BirthDate})
			if err != nil {
				return formatter.Fail("failed to get chart", err)
			}
			return formatter.Render(chart, func(w io.Writer) error {
				return renderChart(w, chart)
			})
		},
	}
	cmd.Flags().StringVar(&opts.BirthDate, "birth-date", "", "birth date, required when several charts share the name")
	return cmd
}

func newChartListCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "list",
		Short:         "List stored natal charts",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := opts.formatter(cmd)
			sess, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer sess.Close()

			charts, err := sess.svc.ListCharts(commandContext(cmd))
			if err != nil {
				return formatter.Fail("failed to list charts", err)
			}
			return formatter.Render(charts, func(w io.Writer) error {
				return renderSummaries(w, charts)
			})
		},
	}
}

func newChartSearchCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "search <query>",
		Short:         "Search stored natal charts by name",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := opts.formatter(cmd)
			sess, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer sess.Close()

			charts, err := sess.svc.SearchCharts(commandContext(cmd), args[0])
			if err != nil {
				return formatter.Fail("failed to search charts", err)
			}
			return formatter.Render(charts, func(w io.Writer) error {
				return renderSummaries(w, charts)
			})
		},
	}
}

func newChartDeleteCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "delete <name> <birth-date>",
		Short:         "Delete a stored natal chart",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := opts.formatter(cmd)
			sess, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer sess.Close()

			ref := service.ChartRef{Name: args[0], BirthDate: args[1]}
			if err := sess.svc.DeleteChart(commandContext(cmd), ref); err != nil {
				return formatter.Fail("failed to delete chart", err)
			}
			data := map[string]any{"deleted": true, "name": astro.NormalizeName(ref.Name), "birth_date": ref.BirthDate}
			return formatter.Render(data, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "Deleted %s (%s)\n", astro.NormalizeName(ref.Name), ref.BirthDate)
				return err
			})
		},
	}
}
