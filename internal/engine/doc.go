// Package engine derives astrological facts from raw celestial geometry.
//
// The engine is a set of pure functions over positions and house cusps:
//
//   - AspectEngine: ComputeAspects, ComputeChartAspects and MatchAspect find
//     angular relationships with orb, exactness and applying/separating
//     motion.
//   - HousePlacer: PlaceHouse and PlaceAll map longitudes to houses.
//   - RetrogradeTracker: CurrentStatus, FindStations and FindPeriods.
//   - LunarCycleAnalyzer: Phase, PhaseNameOf, Illumination, VoidOfCourse
//     and FindPhaseEvents.
//   - TransitReportGenerator: TransitReporter.Generate and
//     ComputeDailyTransits.
//   - SynastryAnalyzer: Compare.
//
// COLLABORATORS:
//
// Positions come from a PositionProvider and cusps from a HouseProvider,
// both injected by the caller. Scans take a PositionAt or SkyAt function so
// they can be driven by a provider (BodyPath, SkyPath) or by a synthetic
// path in tests. Provider failures are never retried or swallowed; they are
// wrapped in an *Error of kind KindProviderFailure naming the stage, body
// and instant.
//
// DETERMINISM:
//
// Identical inputs give identical outputs. Results are ordered by body
// display order (astro.AllBodies) or chronologically, never by map
// iteration. No function holds state between calls, so everything here is
// safe for concurrent use.
//
// POLICIES:
//
// Two judgement calls are explicit options rather than hard-coded:
// AspectOptions.TieBreak decides the applying flag when the orb is not
// changing, and SynastryOptions.Classify decides the nature of each aspect
// type, minor aspects included.
package engine
