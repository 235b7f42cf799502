// Package analyze holds the four independent analyzers of a reliability
// audit. Each is built from an immutable Params bundle and exposes a pure
// Analyze(*dataset.Dataset) method, so they may run concurrently over the
// same Dataset.
//
//   - Performance: global time percentiles, metrics and views tiered by mean
//     execution time, scored on the global mean with a critical penalty.
//   - Scoping: scoped-level distribution of formula executions, unscoped
//     candidates and the estimated savings of scoping them.
//   - Complexity: dimension counts per metric, their correlation with time
//     and rows, and metrics tiered by dimension count.
//   - Workload: time per application, job type, hour and weekday, plus the
//     share of slow view renders.
//
// Results keep full precision; rounding happens in the renderers. Findings
// are capped at Params.MaxFindings after sorting, while the per-severity
// counts always cover every classified entity.
package analyze
