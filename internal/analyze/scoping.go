package analyze

import (
	"sort"

	"github.com/obsidianstack/reliability-audit/internal/dataset"
	"github.com/obsidianstack/reliability-audit/internal/stats"
	"github.com/obsidianstack/reliability-audit/pkg/types"
)

const (
	// scopingSavingsShare is the assumed reduction in compute time once a
	// NoChange metric is scoped.
	scopingSavingsShare = 0.5

	// scopingCandidateMinMs is the mean execution time a NoChange metric must
	// exceed to be worth optimising.
	scopingCandidateMinMs = 3000.0

	partialScopingCredit = 0.5
	scopingCriticalScale = 0.7
	scopingWarningScale  = 0.85
)

var scopingLadder = stats.Ladder{
	Cmp: stats.AtLeast,
	Bands: []stats.Band{
		{Bound: 70, Factor: 1.0},
		{Bound: 50, Factor: 0.8},
		{Bound: 30, Factor: 0.6},
		{Bound: 10, Factor: 0.4},
	},
	Otherwise: 0.2,
}

// ScopedCounts is the number of formula executions per scoped level.
type ScopedCounts struct {
	FullyScoped     int `json:"fully_scoped"`
	PartiallyScoped int `json:"partially_scoped"`
	NoChange        int `json:"no_change"`
	NonApplicable   int `json:"non_applicable"`
}

// Applicable is the number of executions scoping can apply to.
func (c ScopedCounts) Applicable() int {
	return c.FullyScoped + c.PartiallyScoped + c.NoChange
}

// ScopingResult is the output of the scoping analysis.
type ScopingResult struct {
	FormulaExecutions int          `json:"formula_executions"`
	Counts            ScopedCounts `json:"counts"`

	// Percentages of the applicable executions.
	FullyScopedPct     float64 `json:"fully_scoped_pct"`
	PartiallyScopedPct float64 `json:"partially_scoped_pct"`
	NotScopedPct       float64 `json:"not_scoped_pct"`

	NotScopedTimeMs    float64 `json:"not_scoped_time_ms"`
	PotentialSavingsMs float64 `json:"potential_savings_ms"`

	Findings []types.ScopingFinding `json:"findings"`

	Score    float64 `json:"score"`
	MaxScore float64 `json:"max_score"`
}

// PotentialSavingsHours converts PotentialSavingsMs to hours.
func (r ScopingResult) PotentialSavingsHours() float64 {
	return r.PotentialSavingsMs / msPerHour
}

// Scoping measures how much formula work runs without scoped calculation.
type Scoping struct {
	thresholds  scopingThresholds
	weight      float64
	maxFindings int
}

type scopingThresholds struct {
	warning, critical float64
	formulaJobType    string
}

// NewScoping returns a Scoping analyzer for p.
func NewScoping(p Params) Scoping {
	s := p.Thresholds.Scoping
	return Scoping{
		thresholds: scopingThresholds{
			warning:        s.NonScopedWarning,
			critical:       s.NonScopedCritical,
			formulaJobType: s.FormulaJobType,
		},
		weight:      p.Weights.Optimization,
		maxFindings: p.MaxFindings,
	}
}

// Analyze runs the scoping analysis over ds.
func (a Scoping) Analyze(ds *dataset.Dataset) ScopingResult {
	res := ScopingResult{MaxScore: a.weight}
	if !ds.HasExecutions() {
		res.Score = a.weight
		return res
	}

	candidates := stats.NewGroups(func() *stats.Acc { return &stats.Acc{} })
	var noChangeTimes []float64

	for _, e := range ds.Executions {
		if e.JobType != a.thresholds.formulaJobType {
			continue
		}
		res.FormulaExecutions++

		switch e.ScopedLevel {
		case types.FullyScoped:
			res.Counts.FullyScoped++
		case types.PartiallyScoped:
			res.Counts.PartiallyScoped++
		case types.NonApplicable:
			res.Counts.NonApplicable++
		case types.NoChange:
			res.Counts.NoChange++
			noChangeTimes = append(noChangeTimes, e.ExecutionTime)
			if k := (stats.Key{App: e.Application, ID: e.MetricID, Name: e.MetricName}); keyed(k) {
				candidates.At(k).Add(e.ExecutionTime)
			}
		}
	}

	applicable := float64(res.Counts.Applicable())
	res.FullyScopedPct = stats.Pct(float64(res.Counts.FullyScoped), applicable)
	res.PartiallyScopedPct = stats.Pct(float64(res.Counts.PartiallyScoped), applicable)
	res.NotScopedPct = stats.Pct(float64(res.Counts.NoChange), applicable)

	res.NotScopedTimeMs = stats.Sum(noChangeTimes)
	res.PotentialSavingsMs = res.NotScopedTimeMs * scopingSavingsShare

	candidates.Each(func(k stats.Key, acc *stats.Acc) {
		if acc.Count() == 0 || acc.Mean() <= scopingCandidateMinMs {
			return
		}
		res.Findings = append(res.Findings, types.ScopingFinding{
			Application:         k.App,
			MetricID:            k.ID,
			MetricName:          k.Name,
			ScopedLevel:         types.NoChange,
			AvgExecutionTime:    acc.Mean(),
			TotalExecutionTime:  acc.Sum(),
			ExecutionCount:      acc.Count(),
			PotentialSavingsPct: scopingSavingsShare * 100,
		})
	})
	// Each yields key order, so a stable sort on total keeps key ascending
	// among equal totals.
	sort.SliceStable(res.Findings, func(i, j int) bool {
		return res.Findings[i].TotalExecutionTime > res.Findings[j].TotalExecutionTime
	})
	res.Findings = capped(res.Findings, a.maxFindings)

	res.Score = a.score(res)
	return res
}

func (a Scoping) score(res ScopingResult) float64 {
	if res.FormulaExecutions == 0 {
		return a.weight
	}
	effective := res.FullyScopedPct + partialScopingCredit*res.PartiallyScopedPct
	score := scopingLadder.Scale(effective, a.weight)

	switch {
	case res.NotScopedPct > a.thresholds.critical:
		score *= scopingCriticalScale
	case res.NotScopedPct > a.thresholds.warning:
		score *= scopingWarningScale
	}
	return score
}
