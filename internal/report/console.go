package report

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"

	"github.com/obsidianstack/reliability-audit/internal/score"
	"github.com/obsidianstack/reliability-audit/internal/stats"
)

// consoleRecommendations is how many recommendations PrintSummary lists.
const consoleRecommendations = 5

// PrintSummary writes a short human-readable digest of run to w: the total
// and grade, a component table, the record counts and the top
// recommendations.
func PrintSummary(w io.Writer, run *Run) {
	sc := run.Score

	fmt.Fprintf(w, "\nRELIABILITY SCORE: %s/100 (Grade: %s)\n\n", decimal(sc.Total, pctPlaces), sc.Grade)

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Component", "Score", "Max", "Pct"})
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	for _, c := range componentRows(sc) {
		table.Append([]string{
			c.name,
			decimal(c.score, pctPlaces),
			decimal(c.max, 0),
			pctText(stats.Pct(c.score, c.max)) + "%",
		})
	}
	table.Render()

	s := run.Summary
	fmt.Fprintf(w, "\nRecords: %s executions, %s views, %s applications, %s metrics\n",
		count(s.ExecutionRecords), count(s.ViewRecords), count(s.UniqueApplications), count(s.UniqueMetrics))
	if h := sc.Workload.TotalHours; h > 0 {
		fmt.Fprintf(w, "Compute time: %s hours\n", humanize.CommafWithDigits(stats.Round(h, pctPlaces), pctPlaces))
	}

	if len(sc.Recommendations) == 0 {
		return
	}
	fmt.Fprintln(w, "\nTop recommendations:")
	for i, r := range sc.Recommendations {
		if i == consoleRecommendations {
			break
		}
		fmt.Fprintf(w, "  %d. [%s] %s\n", i+1, r.Severity, r.Message)
	}
}

// componentRow is one line of the score breakdown.
type componentRow struct {
	name       string
	score, max float64
}

func componentRows(sc score.ReliabilityScore) []componentRow {
	return []componentRow{
		{"Performance", sc.Components.Performance, sc.MaxScores.Performance},
		{"Optimization", sc.Components.Optimization, sc.MaxScores.Optimization},
		{"Complexity", sc.Components.Complexity, sc.MaxScores.Complexity},
		{"Views", sc.Components.Views, sc.MaxScores.Views},
	}
}
