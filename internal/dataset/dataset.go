package dataset

import (
	"math"
	"time"

	"github.com/obsidianstack/reliability-audit/pkg/types"
)

// Execution is one calculation run. Missing numeric values are NaN; missing
// timestamps are the zero time.
type Execution struct {
	Application   string
	MetricID      string
	MetricName    string
	ExecutionTime float64 // ms
	ComputedRows  float64
	Dims          float64
	JobType       string
	ScopedLevel   types.ScopedLevel
	StartedAt     time.Time
	Day           time.Time
}

// View is one view-block render.
type View struct {
	AppID         string
	BlockID       string
	BlockName     string
	ExecutionTime float64 // ms
	ComputedRows  float64
	Day           time.Time
}

// Table is a generic CSV collection kept for collections the audit only
// counts (the ARMSET/UPMSET export).
type Table struct {
	Header []string
	Rows   [][]string
}

// Dataset is the filtered snapshot every analyzer reads. Analyzers must
// treat it as read-only; Filter returns a new Dataset rather than mutating.
type Dataset struct {
	Executions []Execution
	Views      []View
	Armset     *Table

	// HasStartedAt is true when the executions export carried an
	// executionStartedAt column, enabling temporal analysis.
	HasStartedAt bool
}

// HasExecutions reports whether any execution rows are present.
func (d *Dataset) HasExecutions() bool { return d != nil && len(d.Executions) > 0 }

// HasViews reports whether any view rows are present.
func (d *Dataset) HasViews() bool { return d != nil && len(d.Views) > 0 }

// HasArmset reports whether any auxiliary rows are present.
func (d *Dataset) HasArmset() bool { return d != nil && d.Armset != nil && len(d.Armset.Rows) > 0 }

// Summary describes what was loaded.
type Summary struct {
	ExecutionRecords   int        `json:"executions_records"`
	ViewRecords        int        `json:"views_records"`
	ArmsetRecords      int        `json:"armset_records"`
	UniqueApplications int        `json:"unique_applications"`
	UniqueMetrics      int        `json:"unique_metrics"`
	DateFrom           *time.Time `json:"date_from,omitempty"`
	DateTo             *time.Time `json:"date_to,omitempty"`
}

// Summary counts records, distinct applications (executions and views
// combined), distinct metric ids and the span of the day column.
func (d *Dataset) Summary() Summary {
	s := Summary{
		ExecutionRecords: len(d.Executions),
		ViewRecords:      len(d.Views),
	}
	if d.HasArmset() {
		s.ArmsetRecords = len(d.Armset.Rows)
	}

	apps := make(map[string]struct{})
	metrics := make(map[string]struct{})
	var from, to time.Time
	seeDay := func(day time.Time) {
		if day.IsZero() {
			return
		}
		if from.IsZero() || day.Before(from) {
			from = day
		}
		if to.IsZero() || day.After(to) {
			to = day
		}
	}

	for _, e := range d.Executions {
		if e.Application != "" {
			apps[e.Application] = struct{}{}
		}
		if e.MetricID != "" {
			metrics[e.MetricID] = struct{}{}
		}
		seeDay(e.Day)
	}
	for _, v := range d.Views {
		if v.AppID != "" {
			apps[v.AppID] = struct{}{}
		}
		seeDay(v.Day)
	}

	s.UniqueApplications = len(apps)
	s.UniqueMetrics = len(metrics)
	if !from.IsZero() {
		s.DateFrom, s.DateTo = &from, &to
	}
	return s
}

// ExecutionTimes returns the execution_time column of the executions.
func (d *Dataset) ExecutionTimes() []float64 {
	out := make([]float64, len(d.Executions))
	for i, e := range d.Executions {
		out[i] = e.ExecutionTime
	}
	return out
}

// ViewTimes returns the execution_time column of the views.
func (d *Dataset) ViewTimes() []float64 {
	out := make([]float64, len(d.Views))
	for i, v := range d.Views {
		out[i] = v.ExecutionTime
	}
	return out
}

// Missing reports whether a numeric field was absent or unparseable.
func Missing(v float64) bool { return math.IsNaN(v) }
