package cli

import (
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"gopkg.in/yaml.v3"

	"github.com/roach88/stellium/internal/service"
)

//go:embed schema/chart.cue
var chartSchemaSource string

// LoadMode controls how errors are handled during chart file loading.
type LoadMode int

const (
	// LoadModeFailFast stops on the first invalid document.
	LoadModeFailFast LoadMode = iota
	// LoadModeCollectAll validates every document before returning.
	LoadModeCollectAll
)

// ChartDocument is one validated chart from a file.
type ChartDocument struct {
	File    string
	Line    int
	Request service.StoreChartRequest
}

// LoadResult contains the charts loaded from a set of files.
type LoadResult struct {
	Charts    []ChartDocument
	FileCount int
}

// LoadError represents a file that could not be read or parsed.
type LoadError struct {
	Code    string
	Message string
	File    string
	Line    int
}

func (e *LoadError) Error() string {
	if e.File != "" && e.Line > 0 {
		return fmt.Sprintf("%s:%d: %s: %s", e.File, e.Line, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// ValidationError is a schema violation in a chart document.
type ValidationError struct {
	File    string `json:"file"`
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Line    int    `json:"line,omitempty"`
}

func (e ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("[%s] %s line %d: %s: %s", e.Code, e.File, e.Line, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s: %s", e.Code, e.File, e.Field, e.Message)
}

// chartSchema compiles the embedded chart schema.
func chartSchema(ctx *cue.Context) (cue.Value, error) {
	v := ctx.CompileString(chartSchemaSource, cue.Filename("chart.cue"))
	if err := v.Err(); err != nil {
		return cue.Value{}, fmt.Errorf("compile chart schema: %w", err)
	}
	return v.LookupPath(cue.ParsePath("#Chart")), nil
}

// LoadCharts reads YAML chart files (several documents per file allowed)
// and validates each document against the chart schema. Files that cannot
// be read or parsed are returned as LoadErrors; schema violations as
// ValidationErrors.
func LoadCharts(paths []string, mode LoadMode) (*LoadResult, []error) {
	ctx := cuecontext.New()
	schema, err := chartSchema(ctx)
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeBuildFailed, Message: err.Error()}}
	}

	result := &LoadResult{}
	var errs []error
	for _, path := range paths {
		docs, err := readDocuments(path)
		if err != nil {
			errs = append(errs, err)
			if mode == LoadModeFailFast {
				return result, errs
			}
			continue
		}
		result.FileCount++

		for _, doc := range docs {
			chart, verrs := validateDocument(ctx, schema, path, doc)
			if len(verrs) > 0 {
				errs = append(errs, verrs...)
				if mode == LoadModeFailFast {
					return result, errs
				}
				continue
			}
			result.Charts = append(result.Charts, *chart)
		}
	}

	if len(result.Charts) == 0 && len(errs) == 0 {
		errs = append(errs, &LoadError{Code: ErrCodeNoFiles, Message: "no chart documents found"})
	}
	return result, errs
}

// readDocuments parses every YAML document in the file at path.
func readDocuments(path string) ([]*yaml.Node, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("chart file not found: %s", path)}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error opening chart file: %v", err)}
	}
	defer f.Close()

	var docs []*yaml.Node
	dec := yaml.NewDecoder(f)
	for {
		var doc yaml.Node
		err := dec.Decode(&doc)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("parsing YAML: %v", err), File: path}
		}
		if len(doc.Content) == 0 {
			continue
		}
		docs = append(docs, &doc)
	}
	return docs, nil
}

// validateDocument checks doc against the schema and decodes it.
func validateDocument(ctx *cue.Context, schema cue.Value, path string, doc *yaml.Node) (*ChartDocument, []error) {
	line := doc.Content[0].Line

	var raw any
	if err := doc.Decode(&raw); err != nil {
		return nil, []error{ValidationError{File: path, Field: "document", Message: err.Error(), Code: ErrCodeInvalidChart, Line: line}}
	}

	value := schema.Unify(ctx.Encode(raw))
	if err := value.Validate(cue.Concrete(true)); err != nil {
		var out []error
		for _, e := range cueerrors.Errors(err) {
			format, args := e.Msg()
			out = append(out, ValidationError{
				File:    path,
				Field:   fieldOf(e.Path()),
				Message: fmt.Sprintf(format, args...),
				Code:    ErrCodeInvalidChart,
				Line:    line,
			})
		}
		return nil, out
	}

	var req service.StoreChartRequest
	if err := doc.Decode(&req); err != nil {
		return nil, []error{ValidationError{File: path, Field: "document", Message: err.Error(), Code: ErrCodeInvalidChart, Line: line}}
	}
	return &ChartDocument{File: path, Line: line, Request: req}, nil
}

func fieldOf(path []string) string {
	if len(path) == 0 {
		return "chart"
	}
	return strings.Join(path, ".")
}

// FindChartFiles walks dir and returns every .yaml and .yml file.
func FindChartFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		switch filepath.Ext(path) {
		case ".yaml", ".yml":
			if !info.IsDir() {
				files = append(files, path)
			}
		}
		return nil
	})
	return files, err
}

// expandPaths replaces directories in paths with the chart files they hold.
func expandPaths(paths []string) ([]string, error) {
	var out []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil || !info.IsDir() {
			out = append(out, p)
			continue
		}
		files, err := FindChartFiles(p)
		if err != nil {
			return nil, &LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err)}
		}
		out = append(out, files...)
	}
	return out, nil
}

// Error code constants for file handling and generic failures. Engine
// failures use their error kind as the code.
const (
	ErrCodeGeneric      = "E001" // Generic/unknown error
	ErrCodeScanError    = "E002" // Directory scan error
	ErrCodeNoFiles      = "E003" // No chart documents found
	ErrCodeLoadFailed   = "E004" // YAML parse failed
	ErrCodeNotFound     = "E005" // Path not found
	ErrCodeBuildFailed  = "E006" // Schema compile failed
	ErrCodeWriteFailed  = "E007" // File write error
	ErrCodeInvalidChart = "E101" // Document violates the chart schema
)
