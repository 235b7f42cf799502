package analyze

import (
	"math"
	"sort"

	"github.com/obsidianstack/reliability-audit/internal/dataset"
	"github.com/obsidianstack/reliability-audit/internal/stats"
	"github.com/obsidianstack/reliability-audit/pkg/types"
)

// shareLadder maps a percentage of problem entities (high-dimension metrics,
// slow view renders) to the share of the component weight awarded.
var shareLadder = stats.Ladder{
	Cmp: stats.AtMost,
	Bands: []stats.Band{
		{Bound: 5, Factor: 1.0},
		{Bound: 10, Factor: 0.85},
		{Bound: 20, Factor: 0.7},
		{Bound: 30, Factor: 0.5},
	},
	Otherwise: 0.3,
}

const (
	lowDimsMean      = 3.0
	lowDimsBonus     = 1.1
	highDimsMean     = 6.0
	highDimsScale    = 0.85
	minCorrelMetrics = 6
)

// ComplexityResult is the output of the complexity analysis.
type ComplexityResult struct {
	Metrics      int            `json:"metrics"`
	MeanDims     float64        `json:"mean_dimensions"`
	MaxDims      int            `json:"max_dimensions"`
	Distribution map[int]int    `json:"dimension_distribution"`
	Counts       SeverityCounts `json:"counts"`

	// Correlations are nil when undefined: too few metrics or pairs, or a
	// side with zero variance.
	DimsTimeCorrelation *float64 `json:"dims_time_correlation"`
	DimsRowsCorrelation *float64 `json:"dims_rows_correlation"`

	Findings []types.ComplexityFinding `json:"findings"`

	Score    float64 `json:"score"`
	MaxScore float64 `json:"max_score"`
}

// Complexity tiers metrics by dimension count and relates dimensionality to
// execution cost.
type Complexity struct {
	tiers       types.Tiers
	weight      float64
	maxFindings int
}

// NewComplexity returns a Complexity analyzer for p.
func NewComplexity(p Params) Complexity {
	return Complexity{
		tiers:       p.Thresholds.Dimensions,
		weight:      p.Weights.Complexity,
		maxFindings: p.MaxFindings,
	}
}

type dimsAcc struct {
	dims stats.First
	time stats.Acc
	rows stats.Acc
}

// Analyze runs the complexity analysis over ds.
func (a Complexity) Analyze(ds *dataset.Dataset) ComplexityResult {
	res := ComplexityResult{MaxScore: a.weight, Distribution: map[int]int{}}

	groups := stats.NewGroups(func() *dimsAcc { return &dimsAcc{} })
	if ds.HasExecutions() {
		for _, e := range ds.Executions {
			if math.IsNaN(e.Dims) || e.Dims <= 0 {
				continue
			}
			k := stats.Key{App: e.Application, ID: e.MetricID, Name: e.MetricName}
			if !keyed(k) {
				continue
			}
			g := groups.At(k)
			g.dims.Offer(e.Dims)
			g.time.Add(e.ExecutionTime)
			g.rows.Add(e.ComputedRows)
		}
	}

	res.Metrics = groups.Len()
	if res.Metrics == 0 {
		res.Score = a.weight
		return res
	}

	dims := make([]float64, 0, res.Metrics)
	times := make([]float64, 0, res.Metrics)
	rows := make([]float64, 0, res.Metrics)

	groups.Each(func(k stats.Key, g *dimsAcc) {
		d := g.dims.Value()
		meanTime := g.time.Mean()
		dims = append(dims, d)
		times = append(times, meanTime)
		rows = append(rows, g.rows.Mean())

		n := int(d)
		res.Distribution[n]++

		sev, ok := a.tiers.Classify(float64(n))
		if !ok {
			return
		}
		switch sev {
		case types.SeverityCritical:
			res.Counts.Critical++
		case types.SeverityWarning:
			res.Counts.Warning++
		case types.SeverityWatch:
			res.Counts.Watch++
		}

		avg := meanTime
		if math.IsNaN(avg) {
			avg = 0
		}
		res.Findings = append(res.Findings, types.ComplexityFinding{
			Application:      k.App,
			MetricID:         k.ID,
			MetricName:       k.Name,
			Dimensions:       n,
			Severity:         sev,
			AvgExecutionTime: avg,
			AvgComputedRows:  stats.OptFloat(g.rows.Mean()),
		})
	})

	res.MeanDims = stats.Mean(dims)
	res.MaxDims = int(stats.Max(dims))

	if res.Metrics >= minCorrelMetrics {
		if r, ok := stats.Pearson(dims, times); ok {
			res.DimsTimeCorrelation = &r
		}
		if r, ok := stats.Pearson(dims, rows); ok {
			res.DimsRowsCorrelation = &r
		}
	}

	sort.SliceStable(res.Findings, func(i, j int) bool {
		a, b := res.Findings[i], res.Findings[j]
		if a.Dimensions != b.Dimensions {
			return a.Dimensions > b.Dimensions
		}
		return a.AvgExecutionTime > b.AvgExecutionTime
	})
	res.Findings = capped(res.Findings, a.maxFindings)

	res.Score = a.score(res)
	return res
}

func (a Complexity) score(res ComplexityResult) float64 {
	highPct := stats.Pct(float64(res.Counts.Critical+res.Counts.Warning), float64(res.Metrics))
	score := shareLadder.Scale(highPct, a.weight)

	switch {
	case res.MeanDims <= lowDimsMean:
		score *= lowDimsBonus
	case res.MeanDims >= highDimsMean:
		score *= highDimsScale
	}
	return math.Min(a.weight, score)
}
