package score

import (
	"golang.org/x/sync/errgroup"

	"github.com/obsidianstack/reliability-audit/internal/analyze"
	"github.com/obsidianstack/reliability-audit/internal/config"
	"github.com/obsidianstack/reliability-audit/internal/dataset"
)

// Letter grades, best first.
const (
	GradeA = "A"
	GradeB = "B"
	GradeC = "C"
	GradeD = "D"
	GradeF = "F"
)

// Components are the four per-analyzer scores, each in [0, weight].
type Components struct {
	Performance  float64 `json:"performance"`
	Optimization float64 `json:"optimization"`
	Complexity   float64 `json:"complexity"`
	Views        float64 `json:"views"`
}

// Sum is the unweighted total of the components.
func (c Components) Sum() float64 {
	return c.Performance + c.Optimization + c.Complexity + c.Views
}

// ReliabilityScore combines the four analysis results into a total, a grade
// and a ranked list of recommendations. It is a pure function of the Dataset
// and the configuration: it carries no clock reading or run identifier.
type ReliabilityScore struct {
	// Total is the sum of the component scores, 0 to 100.
	Total      float64    `json:"total_score"`
	Grade      string     `json:"grade"`
	Components Components `json:"components"`
	MaxScores  Components `json:"max_scores"`

	Performance analyze.PerformanceResult `json:"performance"`
	Scoping     analyze.ScopingResult     `json:"scoping"`
	Complexity  analyze.ComplexityResult  `json:"complexity"`
	Workload    analyze.WorkloadResult    `json:"workload"`

	Recommendations []Recommendation `json:"recommendations"`
}

// Scorer runs the analyzers and combines their results.
//
// A Scorer holds only immutable parameters and is safe for concurrent use.
type Scorer struct {
	performance analyze.Performance
	scoping     analyze.Scoping
	complexity  analyze.Complexity
	workload    analyze.Workload

	grades config.Grades
	rules  []rule
}

// New returns a Scorer for the given analyzer parameters and grade cutoffs.
func New(p analyze.Params, grades config.Grades) *Scorer {
	return &Scorer{
		performance: analyze.NewPerformance(p),
		scoping:     analyze.NewScoping(p),
		complexity:  analyze.NewComplexity(p),
		workload:    analyze.NewWorkload(p),
		grades:      grades,
		rules:       recommendationRules(p.Thresholds),
	}
}

// NewFromConfig is New with the parameters of a validated Config.
func NewFromConfig(cfg *config.Config) *Scorer {
	return New(analyze.NewParams(cfg), cfg.Grades)
}

// Score runs the four analyzers over ds concurrently and combines them.
// ds must not be modified while Score runs.
func (s *Scorer) Score(ds *dataset.Dataset) ReliabilityScore {
	var out ReliabilityScore

	var g errgroup.Group
	g.Go(func() error {
		out.Performance = s.performance.Analyze(ds)
		return nil
	})
	g.Go(func() error {
		out.Scoping = s.scoping.Analyze(ds)
		return nil
	})
	g.Go(func() error {
		out.Complexity = s.complexity.Analyze(ds)
		return nil
	})
	g.Go(func() error {
		out.Workload = s.workload.Analyze(ds)
		return nil
	})
	// Analyzers cannot fail; Wait only joins them.
	_ = g.Wait()

	s.combine(&out)
	return out
}

// combine fills the totals, grade and recommendations from the four results.
func (s *Scorer) combine(out *ReliabilityScore) {
	out.Components = Components{
		Performance:  out.Performance.Score,
		Optimization: out.Scoping.Score,
		Complexity:   out.Complexity.Score,
		Views:        out.Workload.Score,
	}
	out.MaxScores = Components{
		Performance:  out.Performance.MaxScore,
		Optimization: out.Scoping.MaxScore,
		Complexity:   out.Complexity.MaxScore,
		Views:        out.Workload.MaxScore,
	}
	out.Total = out.Components.Sum()
	out.Grade = Grade(out.Total, s.grades)
	out.Recommendations = s.recommend(out)
}

// Grade maps a total score to the first letter whose cutoff it reaches.
// Cutoffs are inclusive lower bounds; anything below D is F.
func Grade(total float64, g config.Grades) string {
	switch {
	case total >= g.A:
		return GradeA
	case total >= g.B:
		return GradeB
	case total >= g.C:
		return GradeC
	case total >= g.D:
		return GradeD
	default:
		return GradeF
	}
}
