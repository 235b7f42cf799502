package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/obsidianstack/reliability-audit/pkg/types"
)

// Default values applied when fields are absent from the config files.
const (
	DefaultOutputDirectory   = "output"
	DefaultMaxFindings       = 50
	DefaultNonScopedWarning  = 30
	DefaultNonScopedCritical = 50
	DefaultFullyScopedTarget = 50
	DefaultComponentWeight   = 25
	DefaultFormulaJobType    = "Formula"
	weightTotal              = 100
	weightTolerance          = 1e-9
)

// Output formats accepted in output.formats.
const (
	FormatCSV  = "csv"
	FormatHTML = "html"
	FormatProm = "prom"
	FormatJSON = "json"
)

// Config is the full audit configuration. Fields map 1:1 to config.example.yaml.
type Config struct {
	DataSources DataSources `yaml:"data_sources"`
	Output      Output      `yaml:"output"`
	Filters     Filters     `yaml:"filters"`
	Thresholds  Thresholds  `yaml:"thresholds"`
	Scoring     Weights     `yaml:"scoring"`
	Grades      Grades      `yaml:"grades"`
}

// DataSources points at the exported telemetry files.
type DataSources struct {
	// ExecutionsCSV holds one row per calculation run.
	ExecutionsCSV string `yaml:"executions_csv"`

	// ViewsCSV holds one row per view render.
	ViewsCSV string `yaml:"views_csv"`

	// ArmsetCSV is the auxiliary ARMSET/UPMSET export. It is loaded and
	// counted but not analysed.
	ArmsetCSV string `yaml:"armset_csv"`
}

// Output controls which report artifacts are written and where.
type Output struct {
	Directory string   `yaml:"directory"`
	Formats   []string `yaml:"formats"`

	// IncludeDetails adds the per-finding tables to the HTML report.
	IncludeDetails bool `yaml:"include_details"`

	// MaxFindingsPerCategory caps every Finding list the analyzers return.
	MaxFindingsPerCategory int `yaml:"max_findings_per_category"`
}

// Filters restrict which rows reach the analyzers.
type Filters struct {
	// Applications, when non-empty, keeps only rows of these applications.
	Applications        []string `yaml:"applications"`
	ExcludeApplications []string `yaml:"exclude_applications"`
	ExcludeMetrics      []string `yaml:"exclude_metrics"`

	// DateFrom and DateTo bound the "day" column (YYYY-MM-DD, inclusive).
	DateFrom string `yaml:"date_from"`
	DateTo   string `yaml:"date_to"`
}

// Thresholds holds every severity triple plus the scoping percentages.
type Thresholds struct {
	// MetricExecution tiers a metric's mean execution time (ms).
	MetricExecution types.Tiers `yaml:"metric_execution" json:"metric_execution"`

	// ViewRender tiers a view's mean render time (ms). Its Warning bound
	// also defines a "slow" view execution for the workload analysis.
	ViewRender types.Tiers `yaml:"view_render" json:"view_render"`

	// ComputedRows does not drive any analyzer. It is carried into every
	// report Run and exported as reliability_audit_threshold gauges.
	ComputedRows types.Tiers `yaml:"computed_rows" json:"computed_rows"`

	// Dimensions tiers a metric's dimension count.
	Dimensions types.Tiers `yaml:"dimensions" json:"dimensions"`

	Scoping ScopingThresholds `yaml:"scoping" json:"scoping"`
}

// ScopingThresholds are percentages of applicable formula executions.
type ScopingThresholds struct {
	// FullyScopedTarget is the fully scoped share reports compare against.
	FullyScopedTarget float64 `yaml:"fully_scoped_target" json:"fully_scoped_target"`
	NonScopedWarning  float64 `yaml:"non_scoped_warning" json:"non_scoped_warning"`
	NonScopedCritical float64 `yaml:"non_scoped_critical" json:"non_scoped_critical"`

	// FormulaJobType is the jobType value that marks a formula evaluation.
	FormulaJobType string `yaml:"formula_job_type" json:"formula_job_type"`
}

// Weights are the maximum points of each score component. They must sum to 100.
type Weights struct {
	Performance  float64 `yaml:"performance_weight"`
	Optimization float64 `yaml:"optimization_weight"`
	Complexity   float64 `yaml:"complexity_weight"`
	Views        float64 `yaml:"views_weight"`
}

// Total returns the sum of the four weights.
func (w Weights) Total() float64 {
	return w.Performance + w.Optimization + w.Complexity + w.Views
}

// Grades are the minimum total score for each letter. Anything below D is F.
type Grades struct {
	A float64 `yaml:"A"`
	B float64 `yaml:"B"`
	C float64 `yaml:"C"`
	D float64 `yaml:"D"`
}

// Files names the YAML files a Config is built from.
type Files struct {
	// Configs use the full Config schema and are decoded in order.
	Configs []string

	// Thresholds uses the standalone thresholds.yaml layout (see
	// thresholdsFile) and is decoded after Configs.
	Thresholds string
}

// Paths returns every non-empty file name in load order.
func (f Files) Paths() []string {
	var out []string
	for _, p := range append(append([]string(nil), f.Configs...), f.Thresholds) {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Load builds a Config from defaults, then decodes each YAML file in paths
// on top of it in order, then applies AUDIT_* environment overrides and
// validates the result. With no paths the defaults are used as-is.
func Load(paths ...string) (*Config, error) {
	return LoadFiles(Files{Configs: paths})
}

// LoadFiles is Load with an optional thresholds file layered over the config
// files. Unknown keys in any file are an error.
func LoadFiles(files Files) (*Config, error) {
	cfg := Defaults()

	for _, path := range files.Configs {
		if path == "" {
			continue
		}
		if err := decodeFile(path, cfg); err != nil {
			return nil, err
		}
	}

	if files.Thresholds != "" {
		tf := newThresholdsFile(cfg)
		if err := decodeFile(files.Thresholds, tf); err != nil {
			return nil, err
		}
		tf.apply(cfg)
	}

	if err := applyEnv(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}

// decodeFile decodes the YAML file at path into out. Keys that match no
// field fail the decode instead of being dropped.
func decodeFile(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read file: %w", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("config: parse yaml %q: %w", path, err)
	}
	return nil
}

// Defaults returns a Config pre-populated with default values.
func Defaults() *Config {
	return &Config{
		Output: Output{
			Directory:              DefaultOutputDirectory,
			Formats:                []string{FormatCSV, FormatHTML},
			IncludeDetails:         true,
			MaxFindingsPerCategory: DefaultMaxFindings,
		},
		Thresholds: Thresholds{
			MetricExecution: types.Tiers{Watch: 3000, Warning: 5000, Critical: 30000},
			ViewRender:      types.Tiers{Watch: 2000, Warning: 3000, Critical: 15000},
			ComputedRows:    types.Tiers{Watch: 500000, Warning: 1000000, Critical: 10000000},
			Dimensions:      types.Tiers{Watch: 5, Warning: 6, Critical: 10},
			Scoping: ScopingThresholds{
				FullyScopedTarget: DefaultFullyScopedTarget,
				NonScopedWarning:  DefaultNonScopedWarning,
				NonScopedCritical: DefaultNonScopedCritical,
				FormulaJobType:    DefaultFormulaJobType,
			},
		},
		Scoring: Weights{
			Performance:  DefaultComponentWeight,
			Optimization: DefaultComponentWeight,
			Complexity:   DefaultComponentWeight,
			Views:        DefaultComponentWeight,
		},
		Grades: Grades{A: 90, B: 75, C: 60, D: 40},
	}
}

// validate checks structural constraints.
func validate(cfg *Config) error {
	var errs []error

	tiers := []struct {
		name string
		t    types.Tiers
	}{
		{"thresholds.metric_execution", cfg.Thresholds.MetricExecution},
		{"thresholds.view_render", cfg.Thresholds.ViewRender},
		{"thresholds.computed_rows", cfg.Thresholds.ComputedRows},
		{"thresholds.dimensions", cfg.Thresholds.Dimensions},
	}
	for _, tc := range tiers {
		if !tc.t.Ascending() {
			errs = append(errs, fmt.Errorf("%s: watch < warning < critical required, got %v/%v/%v",
				tc.name, tc.t.Watch, tc.t.Warning, tc.t.Critical))
		}
	}

	sc := cfg.Thresholds.Scoping
	if sc.NonScopedWarning > sc.NonScopedCritical {
		errs = append(errs, fmt.Errorf("thresholds.scoping: non_scoped_warning (%v) exceeds non_scoped_critical (%v)",
			sc.NonScopedWarning, sc.NonScopedCritical))
	}
	if sc.FormulaJobType == "" {
		errs = append(errs, errors.New("thresholds.scoping.formula_job_type is required"))
	}

	w := cfg.Scoring
	if w.Performance < 0 || w.Optimization < 0 || w.Complexity < 0 || w.Views < 0 {
		errs = append(errs, errors.New("scoring: weights must be non-negative"))
	}
	if math.Abs(w.Total()-weightTotal) > weightTolerance {
		errs = append(errs, fmt.Errorf("scoring: weights must sum to %d, got %v", weightTotal, w.Total()))
	}

	g := cfg.Grades
	if !(g.A > g.B && g.B > g.C && g.C > g.D) {
		errs = append(errs, fmt.Errorf("grades: A > B > C > D required, got %v/%v/%v/%v", g.A, g.B, g.C, g.D))
	}

	if cfg.Output.MaxFindingsPerCategory <= 0 {
		errs = append(errs, errors.New("output.max_findings_per_category must be positive"))
	}
	for _, f := range cfg.Output.Formats {
		switch f {
		case FormatCSV, FormatHTML, FormatProm, FormatJSON:
		default:
			errs = append(errs, fmt.Errorf("output.formats: unknown format %q", f))
		}
	}

	return errors.Join(errs...)
}
