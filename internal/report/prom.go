package report

import (
	"fmt"
	"io"
	"sort"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
	"google.golang.org/protobuf/proto"

	"github.com/obsidianstack/reliability-audit/internal/analyze"
	"github.com/obsidianstack/reliability-audit/internal/config"
	"github.com/obsidianstack/reliability-audit/internal/score"
	"github.com/obsidianstack/reliability-audit/pkg/types"
)

// promPrefix namespaces every exported metric.
const promPrefix = "reliability_audit_"

// sample is one labelled gauge value. labels alternate name, value.
type sample struct {
	labels []string
	value  float64
}

func point(v float64, labels ...string) sample {
	return sample{labels: labels, value: v}
}

// gauge builds a gauge family. It returns nil when there are no samples,
// since an empty family cannot be encoded.
func gauge(name, help string, samples ...sample) *dto.MetricFamily {
	if len(samples) == 0 {
		return nil
	}
	mf := &dto.MetricFamily{
		Name: proto.String(promPrefix + name),
		Help: proto.String(help),
		Type: dto.MetricType_GAUGE.Enum(),
	}
	for _, s := range samples {
		m := &dto.Metric{Gauge: &dto.Gauge{Value: proto.Float64(s.value)}}
		for i := 0; i+1 < len(s.labels); i += 2 {
			m.Label = append(m.Label, &dto.LabelPair{
				Name:  proto.String(s.labels[i]),
				Value: proto.String(s.labels[i+1]),
			})
		}
		mf.Metric = append(mf.Metric, m)
	}
	return mf
}

// WriteProm writes the run as a Prometheus text exposition, suitable for the
// node_exporter textfile collector. Families are sorted by name.
func WriteProm(w io.Writer, run *Run) error {
	for _, mf := range promFamilies(run) {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("report: encode %s: %w", mf.GetName(), err)
		}
	}
	return nil
}

func promFamilies(run *Run) []*dto.MetricFamily {
	sc := run.Score
	perf, scp, cx, wl := sc.Performance, sc.Scoping, sc.Complexity, sc.Workload

	fams := []*dto.MetricFamily{
		gauge("score", "Reliability score by component, and the total.",
			append(componentSamples(sc.Components), point(sc.Total, "component", "total"))...),
		gauge("score_max", "Maximum points of each score component.",
			componentSamples(sc.MaxScores)...),
		gauge("grade_info", "Letter grade of the total score.", point(1, "grade", sc.Grade)),
		gauge("execution_time_ms", "Execution time statistics in milliseconds.",
			point(perf.Metrics.Mean, "collection", "executions", "stat", "mean"),
			point(perf.Metrics.P50, "collection", "executions", "stat", "p50"),
			point(perf.Metrics.P95, "collection", "executions", "stat", "p95"),
			point(perf.Metrics.P99, "collection", "executions", "stat", "p99"),
			point(perf.Views.Mean, "collection", "views", "stat", "mean"),
			point(perf.Views.P50, "collection", "views", "stat", "p50"),
			point(perf.Views.P95, "collection", "views", "stat", "p95"),
			point(perf.Views.P99, "collection", "views", "stat", "p99"),
		),
		gauge("findings", "Classified entities by category and severity, before capping.",
			append(append(
				severitySamples("performance_metric", perf.MetricCounts),
				severitySamples("performance_view", perf.ViewCounts)...),
				severitySamples("complexity", cx.Counts)...)...),
		gauge("scoping_candidates", "Unscoped metrics listed as scoping candidates.",
			point(float64(len(scp.Findings)))),
		gauge("scoping_pct", "Share of applicable formula executions per scoped level.",
			point(scp.FullyScopedPct, "level", string(types.FullyScoped)),
			point(scp.PartiallyScopedPct, "level", string(types.PartiallyScoped)),
			point(scp.NotScopedPct, "level", string(types.NoChange)),
		),
		gauge("scoping_potential_savings_hours", "Estimated compute hours saved by enabling scoping.",
			point(scp.PotentialSavingsHours())),
		gauge("dimensions_mean", "Mean dimension count per metric.", point(cx.MeanDims)),
		gauge("dimensions_max", "Largest dimension count of any metric.", point(float64(cx.MaxDims))),
		gauge("dimensions_correlation", "Pearson correlation of dimension count with execution time and computed rows.",
			correlationSamples(cx)...),
		gauge("workload_hours", "Total execution time in hours.", point(wl.TotalHours)),
		gauge("workload_top_app_pct", "Share of execution time used by the busiest application.", point(wl.TopAppPct)),
		gauge("slow_views_pct", "Share of view renders above the view warning threshold.", point(wl.SlowViewsPct)),
		gauge("application_execution_time_ms", "Total execution time per application.", appSamples(wl.Applications)...),
		gauge("records", "Loaded records per collection.",
			point(float64(run.Summary.ExecutionRecords), "collection", "executions"),
			point(float64(run.Summary.ViewRecords), "collection", "views"),
			point(float64(run.Summary.ArmsetRecords), "collection", "armset"),
		),
		gauge("threshold", "Configured tier bounds by kind.", thresholdSamples(run.Thresholds)...),
		gauge("threshold_pct", "Configured scoping percentages.",
			point(run.Thresholds.Scoping.FullyScopedTarget, "kind", "fully_scoped_target"),
			point(run.Thresholds.Scoping.NonScopedWarning, "kind", "non_scoped_warning"),
			point(run.Thresholds.Scoping.NonScopedCritical, "kind", "non_scoped_critical"),
		),
		gauge("recommendations", "Number of recommendations issued.", point(float64(len(sc.Recommendations)))),
		gauge("run_timestamp_seconds", "Unix time the report was generated.",
			point(float64(run.GeneratedAt.Unix()))),
	}

	out := fams[:0]
	for _, mf := range fams {
		if mf != nil {
			out = append(out, mf)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].GetName() < out[j].GetName() })
	return out
}

func componentSamples(c score.Components) []sample {
	return []sample{
		point(c.Performance, "component", "performance"),
		point(c.Optimization, "component", "optimization"),
		point(c.Complexity, "component", "complexity"),
		point(c.Views, "component", "views"),
	}
}

func thresholdSamples(th config.Thresholds) []sample {
	kinds := []struct {
		name  string
		tiers types.Tiers
	}{
		{"metric_execution_ms", th.MetricExecution},
		{"view_render_ms", th.ViewRender},
		{"computed_rows", th.ComputedRows},
		{"dimensions", th.Dimensions},
	}
	var out []sample
	for _, k := range kinds {
		out = append(out,
			point(k.tiers.Watch, "kind", k.name, "tier", string(types.SeverityWatch)),
			point(k.tiers.Warning, "kind", k.name, "tier", string(types.SeverityWarning)),
			point(k.tiers.Critical, "kind", k.name, "tier", string(types.SeverityCritical)),
		)
	}
	return out
}

func severitySamples(category string, c analyze.SeverityCounts) []sample {
	return []sample{
		point(float64(c.Critical), "category", category, "severity", string(types.SeverityCritical)),
		point(float64(c.Warning), "category", category, "severity", string(types.SeverityWarning)),
		point(float64(c.Watch), "category", category, "severity", string(types.SeverityWatch)),
	}
}

// correlationSamples omits undefined correlations rather than exporting NaN.
func correlationSamples(cx analyze.ComplexityResult) []sample {
	var out []sample
	if c := cx.DimsTimeCorrelation; c != nil {
		out = append(out, point(*c, "with", "execution_time"))
	}
	if c := cx.DimsRowsCorrelation; c != nil {
		out = append(out, point(*c, "with", "computed_rows"))
	}
	return out
}

func appSamples(apps []analyze.AppWorkload) []sample {
	out := make([]sample, 0, len(apps))
	for _, a := range apps {
		out = append(out, point(a.TotalTimeMs, "application", a.Application))
	}
	return out
}
