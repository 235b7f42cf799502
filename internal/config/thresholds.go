package config

import "github.com/obsidianstack/reliability-audit/pkg/types"

// thresholdsFile is the layout of a standalone thresholds.yaml:
//
//	performance:
//	  metric_execution: {watch, warning, critical}
//	  view_render: {watch, warning, critical}
//	computed_rows: {watch, warning, critical}
//	dimensions: {watch, warning, critical}
//	scoping: {fully_scoped_target, non_scoped_warning, non_scoped_critical}
//	scoring: {performance_weight, optimization_weight, complexity_weight, views_weight}
//	grades: {A, B, C, D}
//
// Sections or keys left out keep the value already in the Config.
type thresholdsFile struct {
	Performance  performanceSection `yaml:"performance"`
	ComputedRows types.Tiers        `yaml:"computed_rows"`
	Dimensions   types.Tiers        `yaml:"dimensions"`
	Scoping      ScopingThresholds  `yaml:"scoping"`
	Scoring      Weights            `yaml:"scoring"`
	Grades       Grades             `yaml:"grades"`
}

type performanceSection struct {
	MetricExecution types.Tiers `yaml:"metric_execution"`
	ViewRender      types.Tiers `yaml:"view_render"`
}

// newThresholdsFile seeds a thresholdsFile with cfg's current values so that
// decoding overlays only the keys present in the file.
func newThresholdsFile(cfg *Config) *thresholdsFile {
	th := cfg.Thresholds
	return &thresholdsFile{
		Performance: performanceSection{
			MetricExecution: th.MetricExecution,
			ViewRender:      th.ViewRender,
		},
		ComputedRows: th.ComputedRows,
		Dimensions:   th.Dimensions,
		Scoping:      th.Scoping,
		Scoring:      cfg.Scoring,
		Grades:       cfg.Grades,
	}
}

func (tf *thresholdsFile) apply(cfg *Config) {
	cfg.Thresholds.MetricExecution = tf.Performance.MetricExecution
	cfg.Thresholds.ViewRender = tf.Performance.ViewRender
	cfg.Thresholds.ComputedRows = tf.ComputedRows
	cfg.Thresholds.Dimensions = tf.Dimensions
	cfg.Thresholds.Scoping = tf.Scoping
	cfg.Scoring = tf.Scoring
	cfg.Grades = tf.Grades
}
