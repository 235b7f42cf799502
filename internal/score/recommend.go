package score

import (
	"fmt"

	"github.com/obsidianstack/reliability-audit/internal/config"
)

// MaxRecommendations caps ReliabilityScore.Recommendations.
const MaxRecommendations = 10

// Recommendation severities.
const (
	SeverityCritical = "critical"
	SeverityWarning  = "warning"
	SeverityInfo     = "info"
	SeverityAlert    = "alert"
)

// Rule names, in evaluation order.
const (
	RuleCriticalMetrics    = "critical_metrics"
	RuleSlowP95            = "slow_p95"
	RuleUnscoped           = "unscoped_formulas"
	RuleScopingSavings     = "scoping_savings"
	RuleCriticalDimensions = "critical_dimensions"
	RuleHighMeanDimensions = "high_mean_dimensions"
	RuleDimsTimeCorrelated = "dims_time_correlation"
	RuleTopAppConcentrated = "top_app_concentration"
	RuleSlowViews          = "slow_views"
	RulePoorGrade          = "poor_grade"
)

// Fixed trigger levels of the recommendation rules.
const (
	slowP95Ms           = 10_000.0
	unscopedPct         = 30.0
	scopingSavingsMs    = 3_600_000.0
	highMeanDims        = 5.0
	strongCorrelation   = 0.5
	topAppConcentration = 50.0
	slowViewsPct        = 20.0

	msPerSecond = 1000.0
	msPerHour   = 3_600_000.0
)

// Recommendation is one actionable message produced when a rule fires.
type Recommendation struct {
	Rule     string  `json:"rule"`
	Severity string  `json:"severity"`
	Message  string  `json:"message"`
	Value    float64 `json:"value"`
}

// rule fires when check returns true; value is the triggering measurement.
type rule struct {
	name     string
	severity string
	check    func(*ReliabilityScore) (value float64, fires bool)
	message  func(value float64) string
}

// recommendationRules returns the rule list in evaluation order. Messages
// quote the configured thresholds so they match the findings tables.
func recommendationRules(th config.Thresholds) []rule {
	metricCriticalS := th.MetricExecution.Critical / msPerSecond
	viewSlowS := th.ViewRender.Warning / msPerSecond
	dimsCritical := th.Dimensions.Critical

	return []rule{
		{
			name:     RuleCriticalMetrics,
			severity: SeverityCritical,
			check: func(r *ReliabilityScore) (float64, bool) {
				n := r.Performance.MetricCounts.Critical
				return float64(n), n > 0
			},
			message: func(v float64) string {
				return fmt.Sprintf("%.0f metrics have execution time of %gs or more. Review and optimize these immediately.", v, metricCriticalS)
			},
		},
		{
			name:     RuleSlowP95,
			severity: SeverityWarning,
			check: func(r *ReliabilityScore) (float64, bool) {
				v := r.Performance.Metrics.P95
				return v, v > slowP95Ms
			},
			message: func(v float64) string {
				return fmt.Sprintf("P95 execution time is %.1fs. Consider breaking complex calculations into smaller metrics.", v/msPerSecond)
			},
		},
		{
			name:     RuleUnscoped,
			severity: SeverityWarning,
			check: func(r *ReliabilityScore) (float64, bool) {
				v := r.Scoping.NotScopedPct
				return v, v > unscopedPct
			},
			message: func(v float64) string {
				return fmt.Sprintf("%.0f%% of formula executions are not scoped. Enable scoped calculations to reduce computation time.", v)
			},
		},
		{
			name:     RuleScopingSavings,
			severity: SeverityInfo,
			check: func(r *ReliabilityScore) (float64, bool) {
				v := r.Scoping.PotentialSavingsMs
				return v, v > scopingSavingsMs
			},
			message: func(v float64) string {
				return fmt.Sprintf("Enabling scoping could save ~%.1f hours of compute time.", v/msPerHour)
			},
		},
		{
			name:     RuleCriticalDimensions,
			severity: SeverityCritical,
			check: func(r *ReliabilityScore) (float64, bool) {
				n := r.Complexity.Counts.Critical
				return float64(n), n > 0
			},
			message: func(v float64) string {
				return fmt.Sprintf("%.0f metrics have %g or more dimensions. Consider using properties instead of dimensions where possible.", v, dimsCritical)
			},
		},
		{
			name:     RuleHighMeanDimensions,
			severity: SeverityWarning,
			check: func(r *ReliabilityScore) (float64, bool) {
				v := r.Complexity.MeanDims
				return v, r.Complexity.Metrics > 0 && v > highMeanDims
			},
			message: func(v float64) string {
				return fmt.Sprintf("Average dimensions per metric is %.1f. High dimensionality impacts performance.", v)
			},
		},
		{
			name:     RuleDimsTimeCorrelated,
			severity: SeverityInfo,
			check: func(r *ReliabilityScore) (float64, bool) {
				c := r.Complexity.DimsTimeCorrelation
				if c == nil {
					return 0, false
				}
				return *c, *c > strongCorrelation
			},
			message: func(v float64) string {
				return fmt.Sprintf("Strong correlation (%.2f) between dimensions and execution time. Reducing dimensions will improve performance.", v)
			},
		},
		{
			name:     RuleTopAppConcentrated,
			severity: SeverityWarning,
			check: func(r *ReliabilityScore) (float64, bool) {
				v := r.Workload.TopAppPct
				return v, v > topAppConcentration
			},
			message: func(v float64) string {
				return fmt.Sprintf("Top application consumes %.0f%% of total compute. Consider splitting into multiple applications.", v)
			},
		},
		{
			name:     RuleSlowViews,
			severity: SeverityWarning,
			check: func(r *ReliabilityScore) (float64, bool) {
				v := r.Workload.SlowViewsPct
				return v, v > slowViewsPct
			},
			message: func(v float64) string {
				return fmt.Sprintf("%.0f%% of views are slow (> %gs). Add page selectors and filters to reduce data displayed.", v, viewSlowS)
			},
		},
		{
			name:     RulePoorGrade,
			severity: SeverityAlert,
			check: func(r *ReliabilityScore) (float64, bool) {
				return r.Total, r.Grade == GradeD || r.Grade == GradeF
			},
			message: func(float64) string {
				return "Overall reliability score is poor. Prioritize addressing critical issues before adding new features."
			},
		},
	}
}

// recommend evaluates every rule in order and keeps the first
// MaxRecommendations that fire.
func (s *Scorer) recommend(r *ReliabilityScore) []Recommendation {
	out := []Recommendation{}
	for _, rl := range s.rules {
		v, fires := rl.check(r)
		if !fires {
			continue
		}
		out = append(out, Recommendation{
			Rule:     rl.name,
			Severity: rl.severity,
			Message:  rl.message(v),
			Value:    v,
		})
		if len(out) == MaxRecommendations {
			break
		}
	}
	return out
}
