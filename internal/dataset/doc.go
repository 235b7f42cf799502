// Package dataset holds the in-memory snapshot the analyzers read.
//
// dataset.go defines Execution and View records, the generic Table used for
// the ARMSET/UPMSET export, and Dataset with its Summary (record counts,
// distinct applications and metrics, day range).
//
// loader.go reads the CSV exports. Numeric fields that are blank or invalid
// become NaN and unparseable timestamps become the zero time, so a bad cell
// only drops out of the aggregates that use it. A configured file that does
// not exist is skipped with a warning.
//
// filter.go applies the configured application, metric and date filters and
// returns a new Dataset.
package dataset
