package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/obsidianstack/reliability-audit/internal/analyze"
	"github.com/obsidianstack/reliability-audit/pkg/types"
)

var (
	performanceHeader = []string{
		"Entity Type", "Entity ID", "Entity Name", "Application", "Severity",
		"Avg Execution Time (ms)", "Max Execution Time (ms)", "Execution Count",
		"Avg Computed Rows", "Dimensions",
	}
	scopingHeader = []string{
		"Metric ID", "Metric Name", "Application", "Scoped Level",
		"Avg Execution Time (ms)", "Total Execution Time (ms)", "Execution Count",
		"Potential Savings %",
	}
	complexityHeader = []string{
		"Metric ID", "Metric Name", "Application", "Dimensions", "Severity",
		"Avg Execution Time (ms)", "Avg Computed Rows",
	}
	workloadHeader = []string{
		"Application", "Total Execution Time (ms)", "Avg Execution Time (ms)",
		"Total Executions", "Unique Metrics", "% of Total Time",
	}
)

// csvArtifacts returns the summary file plus one file per non-empty
// findings category and the per-application workload table.
func csvArtifacts(run *Run) []artifact {
	stamp := run.Stamp()
	sc := &run.Score

	out := []artifact{{
		name:  "audit_summary_" + stamp + ".csv",
		write: func(w io.Writer) error { return WriteSummaryCSV(w, run) },
	}}
	if len(sc.Performance.MetricFindings)+len(sc.Performance.ViewFindings) > 0 {
		out = append(out, artifact{
			name:  "performance_findings_" + stamp + ".csv",
			write: func(w io.Writer) error { return WritePerformanceCSV(w, sc.Performance) },
		})
	}
	if len(sc.Scoping.Findings) > 0 {
		out = append(out, artifact{
			name:  "scoping_findings_" + stamp + ".csv",
			write: func(w io.Writer) error { return WriteScopingCSV(w, sc.Scoping.Findings) },
		})
	}
	if len(sc.Complexity.Findings) > 0 {
		out = append(out, artifact{
			name:  "complexity_findings_" + stamp + ".csv",
			write: func(w io.Writer) error { return WriteComplexityCSV(w, sc.Complexity.Findings) },
		})
	}
	if len(sc.Workload.Applications) > 0 {
		out = append(out, artifact{
			name:  "workload_applications_" + stamp + ".csv",
			write: func(w io.Writer) error { return WriteWorkloadCSV(w, sc.Workload.Applications) },
		})
	}
	return out
}

// WriteSummaryCSV writes the two-column score and data summary table.
func WriteSummaryCSV(w io.Writer, run *Run) error {
	sc := run.Score
	component := func(v, limit float64) string {
		return fmt.Sprintf("%.1f/%.0f", v, limit)
	}
	day := func(t *time.Time) string {
		if t == nil {
			return ""
		}
		return t.Format(time.DateOnly)
	}
	s := run.Summary

	rows := [][]string{
		{"Metric", "Value"},
		{"Run ID", run.ID},
		{"Timestamp", run.GeneratedAt.Format(time.RFC3339)},
		{"Total Score", decimal(sc.Total, pctPlaces)},
		{"Grade", sc.Grade},
		{"Performance Score", component(sc.Components.Performance, sc.MaxScores.Performance)},
		{"Optimization Score", component(sc.Components.Optimization, sc.MaxScores.Optimization)},
		{"Complexity Score", component(sc.Components.Complexity, sc.MaxScores.Complexity)},
		{"Views Score", component(sc.Components.Views, sc.MaxScores.Views)},
		{"", ""},
		{"Data Summary", ""},
		{"executions_records", strconv.Itoa(s.ExecutionRecords)},
		{"views_records", strconv.Itoa(s.ViewRecords)},
		{"armset_records", strconv.Itoa(s.ArmsetRecords)},
		{"unique_applications", strconv.Itoa(s.UniqueApplications)},
		{"unique_metrics", strconv.Itoa(s.UniqueMetrics)},
		{"date_from", day(s.DateFrom)},
		{"date_to", day(s.DateTo)},
	}
	return writeRows(w, rows)
}

// WritePerformanceCSV writes metric findings followed by view findings.
func WritePerformanceCSV(w io.Writer, res analyze.PerformanceResult) error {
	rows := [][]string{performanceHeader}
	for _, group := range [][]types.Finding{res.MetricFindings, res.ViewFindings} {
		for _, f := range group {
			rows = append(rows, []string{
				f.EntityType,
				f.EntityID,
				f.EntityName,
				f.Application,
				string(f.Severity),
				msText(f.AvgExecutionTime),
				msText(f.MaxExecutionTime),
				strconv.Itoa(f.ExecutionCount),
				optFloat(f.AvgComputedRows, timePlaces),
				optInt(f.Dimensions),
			})
		}
	}
	return writeRows(w, rows)
}

// WriteScopingCSV writes the unscoped metric candidates.
func WriteScopingCSV(w io.Writer, findings []types.ScopingFinding) error {
	rows := [][]string{scopingHeader}
	for _, f := range findings {
		rows = append(rows, []string{
			f.MetricID,
			f.MetricName,
			f.Application,
			string(f.ScopedLevel),
			msText(f.AvgExecutionTime),
			msText(f.TotalExecutionTime),
			strconv.Itoa(f.ExecutionCount),
			pctText(f.PotentialSavingsPct),
		})
	}
	return writeRows(w, rows)
}

// WriteComplexityCSV writes the high-dimension metrics.
func WriteComplexityCSV(w io.Writer, findings []types.ComplexityFinding) error {
	rows := [][]string{complexityHeader}
	for _, f := range findings {
		rows = append(rows, []string{
			f.MetricID,
			f.MetricName,
			f.Application,
			strconv.Itoa(f.Dimensions),
			string(f.Severity),
			msText(f.AvgExecutionTime),
			optFloat(f.AvgComputedRows, timePlaces),
		})
	}
	return writeRows(w, rows)
}

// WriteWorkloadCSV writes every application's share of execution time.
func WriteWorkloadCSV(w io.Writer, apps []analyze.AppWorkload) error {
	rows := [][]string{workloadHeader}
	for _, a := range apps {
		rows = append(rows, []string{
			a.Application,
			msText(a.TotalTimeMs),
			msText(a.MeanTimeMs),
			strconv.Itoa(a.Executions),
			strconv.Itoa(a.UniqueMetrics),
			pctText(a.PctOfTotal),
		})
	}
	return writeRows(w, rows)
}

func writeRows(w io.Writer, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("report: write csv: %w", err)
	}
	return nil
}
