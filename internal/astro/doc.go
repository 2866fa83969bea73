// Package astro defines the core data model shared by every stellium
// component: bodies, signs, positions, house cusps, aspects, natal charts and
// the derived records produced by the analysis engine.
//
// Every value in this package is plain data. Nothing here queries an
// ephemeris or touches storage; the engine package derives aspects, periods
// and reports from these types, and the store package persists charts.
//
// Longitudes are ecliptic degrees normalized to [0, 360). Speeds are degrees
// per day, negative while a body is retrograde. Instants are time.Time values
// and are kept in UTC once a chart has been constructed.
package astro
