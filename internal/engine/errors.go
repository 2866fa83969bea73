package engine

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/roach88/stellium/internal/astro"
)

// Error represents a failure detected while deriving astrological data.
//
// Errors carry structured fields so callers can report which input was at
// fault:
//   - Stage tells whether a position lookup, house lookup or aspect
//     derivation failed
//   - Body and Time identify the failing provider query
//   - Param names the offending request parameter
type Error struct {
	// Kind identifies the error category.
	Kind ErrorKind

	// Message is a human-readable description.
	Message string

	// Stage is set for provider failures.
	Stage Stage

	// Body is the body being queried, if any.
	Body astro.Body

	// Time is the instant being queried, if any.
	Time time.Time

	// Param names the request parameter at fault, if any.
	Param string

	// Err is the underlying cause.
	Err error
}

// ErrorKind categorizes engine errors.
type ErrorKind string

const (
	// KindInvalidDate indicates an unparseable date or time input.
	KindInvalidDate ErrorKind = "INVALID_DATE"

	// KindProviderFailure indicates the ephemeris could not answer a query.
	KindProviderFailure ErrorKind = "PROVIDER_FAILURE"

	// KindChartNotFound indicates no stored chart matches the request.
	KindChartNotFound ErrorKind = "CHART_NOT_FOUND"

	// KindDuplicateChart indicates a chart with the same identity exists.
	KindDuplicateChart ErrorKind = "DUPLICATE_CHART"

	// KindInvalidRange indicates an end before start or an oversized range.
	KindInvalidRange ErrorKind = "INVALID_RANGE"

	// KindAmbiguousBody indicates an unrecognized body name.
	KindAmbiguousBody ErrorKind = "AMBIGUOUS_BODY"

	// KindAmbiguousChart indicates several stored charts share a name.
	KindAmbiguousChart ErrorKind = "AMBIGUOUS_CHART"

	// KindInvalidChart indicates malformed chart data such as bad cusps.
	KindInvalidChart ErrorKind = "INVALID_CHART"
)

// Stage names the step of a computation that failed.
type Stage string

const (
	StagePositionLookup   Stage = "position_lookup"
	StageHouseLookup      Stage = "house_lookup"
	StageAspectDerivation Stage = "aspect_derivation"
)

// Error implements the error interface.
func (e *Error) Error() string {
	var ctx []string
	if e.Param != "" {
		ctx = append(ctx, "param="+e.Param)
	}
	if e.Stage != "" {
		ctx = append(ctx, "stage="+string(e.Stage))
	}
	if e.Body != "" {
		ctx = append(ctx, "body="+string(e.Body))
	}
	if !e.Time.IsZero() {
		ctx = append(ctx, "time="+e.Time.UTC().Format(time.RFC3339))
	}

	msg := fmt.Sprintf("%s: %s", e.Kind, e.Message)
	if len(ctx) > 0 {
		msg += " (" + strings.Join(ctx, ", ") + ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of the first engine Error in err's chain, or ""
// when there is none.
func KindOf(err error) ErrorKind {
	var ee *Error
	if errors.As(err, &ee) {
		return ee.Kind
	}
	return ""
}

// IsKind reports whether err carries an engine Error of the given kind.
// Uses errors.As to handle wrapped errors.
func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}

// IsProviderFailure returns true if an ephemeris query failed.
func IsProviderFailure(err error) bool {
	return IsKind(err, KindProviderFailure)
}

// IsChartNotFound returns true if a chart lookup matched nothing.
func IsChartNotFound(err error) bool {
	return IsKind(err, KindChartNotFound)
}

// NewInvalidDateError creates an Error for an unparseable date parameter.
func NewInvalidDateError(param, value string, err error) *Error {
	return &Error{
		Kind:    KindInvalidDate,
		Message: fmt.Sprintf("cannot parse %q", value),
		Param:   param,
		Err:     err,
	}
}

// NewInvalidRangeError creates an Error for a rejected date range.
func NewInvalidRangeError(param, message string) *Error {
	return &Error{
		Kind:    KindInvalidRange,
		Message: message,
		Param:   param,
	}
}

// NewProviderError wraps a collaborator failure with the query that caused it.
func NewProviderError(stage Stage, body astro.Body, t time.Time, err error) *Error {
	return &Error{
		Kind:    KindProviderFailure,
		Message: "ephemeris query failed",
		Stage:   stage,
		Body:    body,
		Time:    t,
		Err:     err,
	}
}

// NewChartNotFoundError creates an Error for a missing chart.
func NewChartNotFoundError(name, birthDate string) *Error {
	msg := fmt.Sprintf("no chart named %q", name)
	if birthDate != "" {
		msg = fmt.Sprintf("no chart named %q born %s", name, birthDate)
	}
	return &Error{Kind: KindChartNotFound, Message: msg, Param: "name"}
}

// NewDuplicateChartError creates an Error for an identity collision.
func NewDuplicateChartError(name, birthDate string) *Error {
	return &Error{
		Kind:    KindDuplicateChart,
		Message: fmt.Sprintf("chart %q born %s already exists", name, birthDate),
		Param:   "name",
	}
}

// NewAmbiguousBodyError creates an Error for an unrecognized body name.
func NewAmbiguousBodyError(param, value string) *Error {
	return &Error{
		Kind:    KindAmbiguousBody,
		Message: fmt.Sprintf("unrecognized body %q", value),
		Param:   param,
	}
}

// NewAmbiguousChartError creates an Error for a name shared by several charts.
func NewAmbiguousChartError(name string, birthDates []string) *Error {
	return &Error{
		Kind: KindAmbiguousChart,
		Message: fmt.Sprintf("%d charts named %q (birth dates %s); specify birth_date",
			len(birthDates), name, strings.Join(birthDates, ", ")),
		Param: "birth_date",
	}
}

// NewInvalidChartError creates an Error for malformed chart data.
func NewInvalidChartError(message string, err error) *Error {
	return &Error{Kind: KindInvalidChart, Message: message, Err: err}
}

// NewDerivationError creates an Error for chart data that is rejected while
// deriving placements or aspects from it.
func NewDerivationError(message string, err error) *Error {
	return &Error{Kind: KindInvalidChart, Message: message, Stage: StageAspectDerivation, Err: err}
}
