package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Charts int               `json:"charts"`
	Errors []ValidationError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <file|dir>...",
		Short: "Validate chart files without storing them",
		Long: `Validate YAML chart files against the chart schema without computing or
storing anything. Directories are searched for .yaml and .yml files.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args, cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, paths []string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	files, err := expandPaths(paths)
	if err != nil {
		return formatter.Fail("failed to scan chart files", err)
	}
	formatter.VerboseLog("Validating %d file(s)", len(files))

	result, errs := LoadCharts(files, LoadModeCollectAll)
	if len(errs) > 0 {
		return outputLoadErrors(formatter, errs)
	}

	// Output success
	if formatter.Format == "json" {
		return formatter.Success(ValidationResult{Valid: true, Charts: len(result.Charts)})
	}
	fmt.Fprintf(formatter.Writer, "✓ %d chart(s) valid\n", len(result.Charts))
	return nil
}

// outputLoadErrors reports load and validation errors. A file that cannot be
// read is a command error (exit code 2); schema violations are validation
// failures (exit code 1).
func outputLoadErrors(formatter *OutputFormatter, errs []error) error {
	var validationErrs []ValidationError
	for _, err := range errs {
		var loadErr *LoadError
		if errors.As(err, &loadErr) {
			_ = formatter.Error(loadErr.Code, loadErr.Message, nil)
			return NewExitError(ExitCommandError, loadErr.Error())
		}
		var verr ValidationError
		if errors.As(err, &verr) {
			validationErrs = append(validationErrs, verr)
		}
	}
	return outputValidationErrors(formatter, validationErrs)
}

// outputValidationErrors outputs multiple validation errors.
func outputValidationErrors(formatter *OutputFormatter, errs []ValidationError) error {
	if formatter.Format == "json" {
		result := ValidationResult{
			Valid:  false,
			Errors: errs,
		}

		response := CLIResponse{
			Status: "error",
			Data:   result,
			Error: &CLIError{
				Code:    errs[0].Code,
				Message: errs[0].Message,
			},
		}

		encoder := json.NewEncoder(formatter.Writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(response); err != nil {
			return err
		}

		// Validation failures = exit code 1
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
	}

	// Text format
	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)

	for _, err := range errs {
		if err.Line > 0 {
			fmt.Fprintf(formatter.Writer, "%s line %d\n", err.File, err.Line)
		} else {
			fmt.Fprintln(formatter.Writer, err.File)
		}
		fmt.Fprintf(formatter.Writer, "  %s: %s: %s\n\n", err.Code, err.Field, err.Message)
	}

	// Validation failures = exit code 1
	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
}
