package report

import (
	_ "embed"
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/obsidianstack/reliability-audit/internal/analyze"
	"github.com/obsidianstack/reliability-audit/internal/score"
	"github.com/obsidianstack/reliability-audit/internal/stats"
	"github.com/obsidianstack/reliability-audit/pkg/types"
)

// Rows shown per table in the HTML report.
const (
	htmlPerformanceRows = 20
	htmlScopingRows     = 15
	htmlComplexityRows  = 20
	htmlApplicationRows = 10
)

// Score bar bands, as a share of the component maximum.
const (
	barGood = 70.0
	barFair = 40.0
)

// Correlation strength labels.
const (
	strongCorrelation   = 0.5
	moderateCorrelation = 0.3
)

//go:embed report.html.tmpl
var reportHTML string

var reportTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"ms":    thousands,
	"count": count,
	"pct":   pctText,
	"dec":   func(v float64) string { return decimal(v, pctPlaces) },
	"rows": func(v *float64) string {
		if v == nil {
			return "-"
		}
		return thousands(*v)
	},
	"dims": func(v *int) string {
		if v == nil {
			return "-"
		}
		return optInt(v)
	},
}).Parse(reportHTML))

type scoreBar struct {
	Name  string
	Score float64
	Max   float64
	Class string
	Style template.CSS
}

type keyValue struct {
	Key   string
	Value string
}

// htmlView is everything the template reads. Rows are already truncated and
// all derived labels are computed here, so the template only formats.
type htmlView struct {
	Run            *Run
	Score          score.ReliabilityScore
	GeneratedAt    string
	Bars           []scoreBar
	Summary        []keyValue
	IncludeDetails bool

	MetricFindings     []types.Finding
	ViewFindings       []types.Finding
	ScopingFindings    []types.ScopingFinding
	ComplexityFindings []types.ComplexityFinding
	Applications       []analyze.AppWorkload

	Correlation      string
	CorrelationLabel string
	PeakHour         string
	PeakDay          string
}

// WriteHTML renders the standalone HTML report. includeDetails adds the
// per-finding tables.
func WriteHTML(w io.Writer, run *Run, includeDetails bool) error {
	if err := reportTemplate.Execute(w, newHTMLView(run, includeDetails)); err != nil {
		return fmt.Errorf("report: render html: %w", err)
	}
	return nil
}

func newHTMLView(run *Run, includeDetails bool) htmlView {
	sc := run.Score
	v := htmlView{
		Run:            run,
		Score:          sc,
		GeneratedAt:    run.GeneratedAt.Format("2006-01-02 15:04:05"),
		IncludeDetails: includeDetails,

		MetricFindings:     head(sc.Performance.MetricFindings, htmlPerformanceRows),
		ViewFindings:       head(sc.Performance.ViewFindings, htmlPerformanceRows),
		ScopingFindings:    head(sc.Scoping.Findings, htmlScopingRows),
		ComplexityFindings: head(sc.Complexity.Findings, htmlComplexityRows),
		Applications:       head(sc.Workload.Applications, htmlApplicationRows),

		Correlation: "n/a",
		PeakHour:    "-",
		PeakDay:     "-",
	}

	for _, c := range componentRows(sc) {
		share := stats.Pct(c.score, c.max)
		v.Bars = append(v.Bars, scoreBar{
			Name:  c.name,
			Score: c.score,
			Max:   c.max,
			Class: barClass(share),
			Style: template.CSS(fmt.Sprintf("width: %s%%", pctText(share))),
		})
	}

	s := run.Summary
	v.Summary = []keyValue{
		{"Execution records", count(s.ExecutionRecords)},
		{"View records", count(s.ViewRecords)},
		{"Armset records", count(s.ArmsetRecords)},
		{"Applications", count(s.UniqueApplications)},
		{"Metrics", count(s.UniqueMetrics)},
	}
	if s.DateFrom != nil && s.DateTo != nil {
		v.Summary = append(v.Summary, keyValue{
			"Date range", s.DateFrom.Format(time.DateOnly) + " to " + s.DateTo.Format(time.DateOnly),
		})
	}

	if c := sc.Complexity.DimsTimeCorrelation; c != nil {
		v.Correlation = decimal(*c, corrPlaces)
		v.CorrelationLabel = correlationLabel(*c)
	}
	if t := sc.Workload.Temporal; t != nil {
		if t.PeakHour != nil {
			v.PeakHour = fmt.Sprintf("%02d:00", *t.PeakHour)
		}
		if t.PeakDay != nil {
			v.PeakDay = weekdayName(*t.PeakDay)
		}
	}
	return v
}

func barClass(share float64) string {
	switch {
	case share >= barGood:
		return "good"
	case share >= barFair:
		return "fair"
	default:
		return "poor"
	}
}

func correlationLabel(c float64) string {
	switch {
	case c > strongCorrelation:
		return "strong"
	case c > moderateCorrelation:
		return "moderate"
	default:
		return "weak"
	}
}

// weekdayName names a Monday-based day index.
func weekdayName(d int) string {
	return time.Weekday((d + 1) % 7).String()
}

func head[T any](xs []T, n int) []T {
	if len(xs) > n {
		return xs[:n]
	}
	return xs
}
