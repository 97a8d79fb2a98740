// Package analytics contains the pure aggregation helpers behind the
// dashboard pages: filtering, group-by-sum rollups, top-N rankings,
// period-over-period growth, pivots and ratio calculations.
//
// Every function takes already-loaded record slices and returns freshly
// allocated results; inputs are never mutated. Division by a zero denominator
// (growth against an empty prior period, ratios over zero users) yields NaN
// rather than panicking; the Percent and Ratio types marshal NaN as JSON null
// so undefined values survive the trip to the client.
package analytics
