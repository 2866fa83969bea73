package cli

import (
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/stellium/internal/astro"
	"github.com/roach88/stellium/internal/calendar"
	"github.com/roach88/stellium/internal/service"
)

// AnalysisOptions holds flags shared by the analysis commands.
type AnalysisOptions struct {
	*RootOptions
	Date         string
	Chart        string
	BirthDate    string
	DaysAhead    int
	Body         string
	Start        string
	End          string
	IncludeMinor bool
	ICS          string
	BirthDate2   string
}

// NewTransitsCommand creates the transits command.
func NewTransitsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AnalysisOptions{RootOptions: rootOpts}
	cmd := &cobra.Command{
		Use:   "transits",
		Short: "Show the sky for a date, optionally against a natal chart",
		Long: `Show where every body is on a date. With --chart each body is placed in
the chart's houses and transit-to-natal aspects are listed.

Example:
  stellium transits --date 2024-03-20 --chart Ada`,
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

			var ref *service.ChartRef
			if opts.Chart != "" {
				ref = &service.ChartRef{Name: opts.Chart, BirthDate: opts.BirthDate}
			}
			daily, err := sess.svc.DailyTransits(commandContext(cmd), opts.Date, ref)
			if err != nil {
				return formatter.Fail("failed to compute transits", err)
			}
			return formatter.Render(daily, func(w io.Writer) error {
				return renderDaily(w, daily)
			})
		},
	}
	cmd.Flags().StringVar(&opts.Date, "date", "", "date or RFC 3339 instant (default today)")
	cmd.Flags().StringVar(&opts.Chart, "chart", "", "stored chart to compare against")
	cmd.Flags().StringVar(&opts.BirthDate, "birth-date", "", "birth date of the chart when its name is shared")
	return cmd
}

// NewRetrogradesCommand creates the retrogrades command.
func NewRetrogradesCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AnalysisOptions{RootOptions: rootOpts}
	cmd := &cobra.Command{
		Use:           "retrogrades",
		Short:         "Show current and upcoming retrograde periods",
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

			status, err := sess.svc.RetrogradeStatus(commandContext(cmd), service.RetrogradeRequest{
				Date:      opts.Date,
				DaysAhead: opts.DaysAhead,
				Body:      opts.Body,
			})
			if err != nil {
				return formatter.Fail("failed to compute retrogrades", err)
			}
			return formatter.Render(status, func(w io.Writer) error {
				return renderRetrogrades(w, status)
			})
		},
	}
	cmd.Flags().StringVar(&opts.Date, "date", "", "date (default today)")
	cmd.Flags().IntVar(&opts.DaysAhead, "days-ahead", service.DefaultDaysAhead, "days to look ahead")
	cmd.Flags().StringVar(&opts.Body, "body", "", "limit to one body, e.g. Mercury")
	return cmd
}

// NewLunarCommand creates the lunar command.
func NewLunarCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AnalysisOptions{RootOptions: rootOpts}
	cmd := &cobra.Command{
		Use:           "lunar",
		Short:         "Show the lunar phase and void-of-course status",
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

			info, err := sess.svc.LunarInfo(commandContext(cmd), opts.Date)
			if err != nil {
				return formatter.Fail("failed to compute lunar info", err)
			}
			return formatter.Render(info, func(w io.Writer) error {
				return renderLunar(w, info)
			})
		},
	}
	cmd.Flags().StringVar(&opts.Date, "date", "", "date or RFC 3339 instant (default today)")
	return cmd
}

// NewReportCommand creates the report command.
func NewReportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AnalysisOptions{RootOptions: rootOpts}
	cmd := &cobra.Command{
		Use:   "report <name>",
		Short: "Generate a transit report for a stored chart",
		Long: `List exact transits, stations, lunar phases and ingresses for a stored
chart in chronological order. --ics also writes the events as an iCalendar
file.

Example:
  stellium report Ada --start 2024-03-01 --end 2024-03-31 --ics ada.ics`,
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

			report, err := sess.svc.TransitReport(commandContext(cmd), service.ReportRequest{
				Chart:        service.ChartRef{Name: args[0], BirthDate: opts.BirthDate},
				Start:        opts.Start,
				End:          opts.End,
				IncludeMinor: opts.IncludeMinor,
			})
			if err != nil {
				return formatter.Fail("failed to generate report", err)
			}

			if opts.ICS != "" {
				if err := writeICS(opts.ICS, report, opts.now()); err != nil {
					_ = formatter.Error(ErrCodeWriteFailed, err.Error(), nil)
					return WrapExitError(ExitCommandError, "failed to write calendar", err)
				}
				formatter.VerboseLog("Wrote %d event(s) to %s", len(report.Events), opts.ICS)
			}
			return formatter.Render(report, func(w io.Writer) error {
				return renderReport(w, report)
			})
		},
	}
	cmd.Flags().StringVar(&opts.BirthDate, "birth-date", "", "birth date of the chart when its name is shared")
	cmd.Flags().StringVar(&opts.Start, "start", "", "first day (default today)")
	cmd.Flags().StringVar(&opts.End, "end", "", "last day (default 30 days after start)")
	cmd.Flags().BoolVar(&opts.IncludeMinor, "minor", false, "include minor aspects")
	cmd.Flags().StringVar(&opts.ICS, "ics", "", "also write the events to this iCalendar file")
	return cmd
}

func writeICS(path string, report *astro.TransitReport, stamp time.Time) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := calendar.Encode(f, report, stamp); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// NewCompatCommand creates the compat command.
func NewCompatCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AnalysisOptions{RootOptions: rootOpts}
	cmd := &cobra.Command{
		Use:           "compat <name1> <name2>",
		Short:         "Compare two stored charts",
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

			syn, err := sess.svc.Compatibility(commandContext(cmd),
				service.ChartRef{Name: args[0], BirthDate: opts.BirthDate},
				service.ChartRef{Name: args[1], BirthDate: opts.BirthDate2},
				opts.IncludeMinor)
			if err != nil {
				return formatter.Fail("failed to compare charts", err)
			}
			return formatter.Render(syn, func(w io.Writer) error {
				return renderSynastry(w, syn)
			})
		},
	}
	cmd.Flags().StringVar(&opts.BirthDate, "birth-date1", "", "birth date of the first chart")
	cmd.Flags().StringVar(&opts.BirthDate2, "birth-date2", "", "birth date of the second chart")
	cmd.Flags().BoolVar(&opts.IncludeMinor, "minor", false, "include minor aspects")
	return cmd
}
