package types

// Severity is the tier a classified entity falls into. Tiers are strictly
// ordered: watch < warning < critical.
type Severity string

// Severity tiers, lowest first.
const (
	SeverityWatch    Severity = "watch"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Rank orders severities for sorting findings: critical sorts first.
// Unknown severities sort last.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 0
	case SeverityWarning:
		return 1
	case SeverityWatch:
		return 2
	default:
		return 3
	}
}

// Tiers is an ascending threshold triple. Each bound is inclusive: a value
// equal to Warning classifies as warning.
type Tiers struct {
	Watch    float64 `yaml:"watch" json:"watch"`
	Warning  float64 `yaml:"warning" json:"warning"`
	Critical float64 `yaml:"critical" json:"critical"`
}

// Classify returns the highest tier v reaches and true, or "" and false when
// v is below Watch. Tiers are checked top-down so exactly one is assigned.
func (t Tiers) Classify(v float64) (Severity, bool) {
	switch {
	case v >= t.Critical:
		return SeverityCritical, true
	case v >= t.Warning:
		return SeverityWarning, true
	case v >= t.Watch:
		return SeverityWatch, true
	default:
		return "", false
	}
}

// Ascending reports whether Watch < Warning < Critical.
func (t Tiers) Ascending() bool {
	return t.Watch < t.Warning && t.Warning < t.Critical
}

// ScopedLevel is the optimisation state of a formula execution.
type ScopedLevel string

const (
	FullyScoped     ScopedLevel = "FullyScoped"
	PartiallyScoped ScopedLevel = "PartiallyScoped"
	NoChange        ScopedLevel = "NoChange"
	NonApplicable   ScopedLevel = "NonApplicable"
)

// Entity types carried by Finding.EntityType.
const (
	EntityMetric = "metric"
	EntityView   = "view"
)

// Finding is a metric or view whose mean execution time crossed a tier.
type Finding struct {
	EntityType       string   `json:"entity_type"`
	Application      string   `json:"application"`
	EntityID         string   `json:"entity_id"`
	EntityName       string   `json:"entity_name"`
	Severity         Severity `json:"severity"`
	AvgExecutionTime float64  `json:"avg_execution_time_ms"`
	MaxExecutionTime float64  `json:"max_execution_time_ms"`
	ExecutionCount   int      `json:"execution_count"`
	AvgComputedRows  *float64 `json:"avg_computed_rows,omitempty"`
	Dimensions       *int     `json:"dimensions,omitempty"`
}

// ScopingFinding is an unscoped metric worth optimising.
type ScopingFinding struct {
	Application         string      `json:"application"`
	MetricID            string      `json:"metric_id"`
	MetricName          string      `json:"metric_name"`
	ScopedLevel         ScopedLevel `json:"scoped_level"`
	AvgExecutionTime    float64     `json:"avg_execution_time_ms"`
	TotalExecutionTime  float64     `json:"total_execution_time_ms"`
	ExecutionCount      int         `json:"execution_count"`
	PotentialSavingsPct float64     `json:"potential_savings_pct"`
}

// ComplexityFinding is a metric with a high dimension count.
type ComplexityFinding struct {
	Application      string   `json:"application"`
	MetricID         string   `json:"metric_id"`
	MetricName       string   `json:"metric_name"`
	Dimensions       int      `json:"dimensions"`
	Severity         Severity `json:"severity"`
	AvgExecutionTime float64  `json:"avg_execution_time_ms"`
	AvgComputedRows  *float64 `json:"avg_computed_rows,omitempty"`
}
