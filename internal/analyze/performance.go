package analyze

import (
	"math"
	"sort"

	"github.com/obsidianstack/reliability-audit/internal/dataset"
	"github.com/obsidianstack/reliability-audit/internal/stats"
	"github.com/obsidianstack/reliability-audit/pkg/types"
)

// performanceLadder maps the global mean metric execution time (ms) to the
// share of the performance weight awarded.
var performanceLadder = stats.Ladder{
	Cmp: stats.Below,
	Bands: []stats.Band{
		{Bound: 1000, Factor: 1.0},
		{Bound: 2000, Factor: 0.9},
		{Bound: 3000, Factor: 0.8},
		{Bound: 5000, Factor: 0.6},
		{Bound: 10000, Factor: 0.4},
	},
	Otherwise: 0.2,
}

const (
	// criticalPenalty is deducted per critical metric.
	criticalPenalty = 2.0
	// maxPenaltyShare caps the total critical penalty as a share of the weight.
	maxPenaltyShare = 0.3
)

// PerformanceResult is the output of the performance analysis.
type PerformanceResult struct {
	Metrics        stats.Summary   `json:"metrics"`
	MetricCounts   SeverityCounts  `json:"metric_counts"`
	MetricFindings []types.Finding `json:"metric_findings"`

	Views        stats.Summary   `json:"views"`
	ViewCounts   SeverityCounts  `json:"view_counts"`
	ViewFindings []types.Finding `json:"view_findings"`

	Score    float64 `json:"score"`
	MaxScore float64 `json:"max_score"`
}

// Performance tiers metrics and views by their mean execution time.
type Performance struct {
	metric      types.Tiers
	view        types.Tiers
	weight      float64
	maxFindings int
}

// NewPerformance returns a Performance analyzer for p.
func NewPerformance(p Params) Performance {
	return Performance{
		metric:      p.Thresholds.MetricExecution,
		view:        p.Thresholds.ViewRender,
		weight:      p.Weights.Performance,
		maxFindings: p.MaxFindings,
	}
}

type perfAcc struct {
	time stats.Acc
	rows stats.Acc
	dims stats.First
}

func newPerfAcc() *perfAcc { return &perfAcc{} }

// Analyze runs the performance analysis over ds.
func (a Performance) Analyze(ds *dataset.Dataset) PerformanceResult {
	res := PerformanceResult{MaxScore: a.weight}

	if ds.HasExecutions() {
		res.Metrics = stats.Summarize(ds.ExecutionTimes())

		groups := stats.NewGroups(newPerfAcc)
		for _, e := range ds.Executions {
			k := stats.Key{App: e.Application, ID: e.MetricID, Name: e.MetricName}
			if !keyed(k) {
				continue
			}
			g := groups.At(k)
			g.time.Add(e.ExecutionTime)
			g.rows.Add(e.ComputedRows)
			g.dims.Offer(e.Dims)
		}
		res.MetricFindings, res.MetricCounts = a.classify(groups, types.EntityMetric, a.metric)
	}

	if ds.HasViews() {
		res.Views = stats.Summarize(ds.ViewTimes())

		groups := stats.NewGroups(newPerfAcc)
		for _, v := range ds.Views {
			k := stats.Key{App: v.AppID, ID: v.BlockID, Name: v.BlockName}
			if !keyed(k) {
				continue
			}
			g := groups.At(k)
			g.time.Add(v.ExecutionTime)
			g.rows.Add(v.ComputedRows)
		}
		res.ViewFindings, res.ViewCounts = a.classify(groups, types.EntityView, a.view)
	}

	res.Score = a.score(res)
	return res
}

func (a Performance) classify(groups *stats.Groups[perfAcc], entity string, tiers types.Tiers) ([]types.Finding, SeverityCounts) {
	var (
		findings []types.Finding
		counts   SeverityCounts
	)
	groups.Each(func(k stats.Key, g *perfAcc) {
		mean := g.time.Mean()
		if math.IsNaN(mean) {
			return
		}
		sev, ok := tiers.Classify(mean)
		if !ok {
			return
		}
		switch sev {
		case types.SeverityCritical:
			counts.Critical++
		case types.SeverityWarning:
			counts.Warning++
		case types.SeverityWatch:
			counts.Watch++
		}

		f := types.Finding{
			EntityType:       entity,
			Application:      k.App,
			EntityID:         k.ID,
			EntityName:       k.Name,
			Severity:         sev,
			AvgExecutionTime: mean,
			MaxExecutionTime: g.time.Max(),
			ExecutionCount:   g.time.Count(),
			AvgComputedRows:  stats.OptFloat(g.rows.Mean()),
		}
		if entity == types.EntityMetric {
			f.Dimensions = optInt(g.dims.Value())
		}
		findings = append(findings, f)
	})

	sortFindings(findings)
	return capped(findings, a.maxFindings), counts
}

// sortFindings orders by severity (critical first), then mean time
// descending, then group key ascending.
func sortFindings(fs []types.Finding) {
	sort.SliceStable(fs, func(i, j int) bool {
		a, b := fs[i], fs[j]
		if ra, rb := a.Severity.Rank(), b.Severity.Rank(); ra != rb {
			return ra < rb
		}
		if a.AvgExecutionTime != b.AvgExecutionTime {
			return a.AvgExecutionTime > b.AvgExecutionTime
		}
		return findingKey(a).Less(findingKey(b))
	})
}

func findingKey(f types.Finding) stats.Key {
	return stats.Key{App: f.Application, ID: f.EntityID, Name: f.EntityName}
}

func (a Performance) score(res PerformanceResult) float64 {
	base := performanceLadder.Scale(res.Metrics.Mean, a.weight)
	penalty := math.Min(criticalPenalty*float64(res.MetricCounts.Critical), maxPenaltyShare*a.weight)
	return math.Max(0, base-penalty)
}
