// Package stats holds the numeric building blocks shared by the analyzers.
//
// stats.go: NaN-aware Sum/Mean/Max, linear-interpolated percentiles and the
// Summary bundle (count, sum, mean, p50, p95, p99).
//
// correlation.go: two-pass Pearson correlation. Insufficient samples or zero
// variance yield ok=false; callers must report "undefined", never 0.
//
// band.go: Ladder maps a value onto an ordered list of (bound, factor)
// bands. Every score ladder in the audit goes through it so boundary
// semantics are identical everywhere.
//
// group.go: Groups and Acc implement explicit group-by aggregation over a
// composite (application, id, name) key. Groups iterate in key order so
// downstream output is deterministic.
//
// Missing values are NaN throughout and are skipped by every aggregate.
package stats
