// Package report renders a scored audit run into files and a console digest.
//
// A Run pairs the deterministic ReliabilityScore with a run id, the time it
// was generated and the thresholds it was scored against. Writer turns a Run
// into the configured formats:
//
//	csv   audit_summary, plus performance, scoping, complexity and
//	      workload tables for categories that have rows
//	html  a standalone report page
//	prom  a Prometheus text exposition for the textfile collector
//	json  the full Run
//
// Every file name carries the run timestamp (YYYYMMDD_HHMMSS). Renderers only
// round and format; they never recompute statistics.
package report
