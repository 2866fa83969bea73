// Package ephemeris supplies planetary positions and house cusps to the
// engine.
//
// Two sources are available: a CSV table of daily positions read from disk
// and a JSON client for a remote ephemeris service. House cusps for the
// table source are derived from the Ascendant using the equal or whole-sign
// systems.
package ephemeris
