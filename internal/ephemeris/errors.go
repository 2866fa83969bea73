package ephemeris

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedBody is returned for bodies the source has no data for.
	ErrUnsupportedBody = errors.New("unsupported body")

	// ErrUnsupportedHouses is returned when the source cannot compute cusps
	// for the requested place or house system.
	ErrUnsupportedHouses = errors.New("house cusps unavailable")

	// ErrOutOfRange is returned for instants outside the source's coverage.
	ErrOutOfRange = errors.New("instant outside ephemeris range")
)

// StatusError reports an unexpected HTTP status from a remote ephemeris.
type StatusError struct {
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("ephemeris service returned %s", e.Status)
}
