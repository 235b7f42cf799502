package analyze

import (
	"fmt"
	"math"
	"testing"

	"github.com/obsidianstack/reliability-audit/internal/dataset"
	"github.com/obsidianstack/reliability-audit/pkg/types"
)

// almostEqual returns true if a and b are within epsilon of each other.
func almostEqual(a, b, epsilon float64) bool {
	return math.Abs(a-b) < epsilon
}

var nan = math.NaN()

// exec builds a formula execution with no rows, dims or timestamps.
func exec(app, id string, ms float64) dataset.Execution {
	return dataset.Execution{
		Application:   app,
		MetricID:      id,
		MetricName:    "Metric " + id,
		ExecutionTime: ms,
		ComputedRows:  nan,
		Dims:          nan,
		JobType:       "Formula",
	}
}

func view(app, id string, ms float64) dataset.View {
	return dataset.View{AppID: app, BlockID: id, BlockName: "Block " + id, ExecutionTime: ms, ComputedRows: nan}
}

func TestPerformance_ThresholdsInclusive(t *testing.T) {
	// Defaults: watch 3000, warning 5000, critical 30000.
	tests := []struct {
		ms      float64
		want    types.Severity
		flagged bool
	}{
		{2999.99, "", false},
		{3000, types.SeverityWatch, true},
		{4999.99, types.SeverityWatch, true},
		{5000, types.SeverityWarning, true},
		{30000, types.SeverityCritical, true},
	}
	for _, tc := range tests {
		t.Run(fmt.Sprint(tc.ms), func(t *testing.T) {
			ds := &dataset.Dataset{Executions: []dataset.Execution{exec("A", "m1", tc.ms)}}
			res := NewPerformance(DefaultParams()).Analyze(ds)

			if !tc.flagged {
				if len(res.MetricFindings) != 0 || res.MetricCounts.Total() != 0 {
					t.Fatalf("got %d findings, want none", len(res.MetricFindings))
				}
				return
			}
			if len(res.MetricFindings) != 1 {
				t.Fatalf("got %d findings, want 1", len(res.MetricFindings))
			}
			if got := res.MetricFindings[0].Severity; got != tc.want {
				t.Errorf("severity = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestPerformance_WatchScenario(t *testing.T) {
	ds := &dataset.Dataset{Executions: []dataset.Execution{exec("Finance", "m1", 3800)}}
	res := NewPerformance(DefaultParams()).Analyze(ds)

	if res.MetricCounts != (SeverityCounts{Watch: 1}) {
		t.Errorf("counts = %+v, want one watch", res.MetricCounts)
	}
	f := res.MetricFindings[0]
	if f.EntityType != types.EntityMetric || f.Application != "Finance" || f.EntityID != "m1" {
		t.Errorf("finding identity = %+v", f)
	}
	if f.AvgExecutionTime != 3800 || f.MaxExecutionTime != 3800 || f.ExecutionCount != 1 {
		t.Errorf("finding evidence = %+v", f)
	}
	if f.AvgComputedRows != nil || f.Dimensions != nil {
		t.Errorf("missing rows/dims should be nil, got rows=%v dims=%v", f.AvgComputedRows, f.Dimensions)
	}
	// Mean 3800 falls in the <5000 band: 0.6 × 25.
	if !almostEqual(res.Score, 15, 1e-9) {
		t.Errorf("score = %v, want 15", res.Score)
	}
}

func TestPerformance_GroupMeanScenario(t *testing.T) {
	// Six slow runs and four fast ones of the same metric average to 3800.
	var execs []dataset.Execution
	for i := 0; i < 6; i++ {
		execs = append(execs, exec("Finance", "m1", 6000))
	}
	for i := 0; i < 4; i++ {
		execs = append(execs, exec("Finance", "m1", 500))
	}
	res := NewPerformance(DefaultParams()).Analyze(&dataset.Dataset{Executions: execs})

	if res.MetricCounts != (SeverityCounts{Watch: 1}) {
		t.Fatalf("counts = %+v, want one watch", res.MetricCounts)
	}
	f := res.MetricFindings[0]
	if f.Severity != types.SeverityWatch {
		t.Errorf("severity = %q, want watch", f.Severity)
	}
	if !almostEqual(f.AvgExecutionTime, 3800, 1e-9) || f.MaxExecutionTime != 6000 || f.ExecutionCount != 10 {
		t.Errorf("finding evidence = %+v, want avg 3800, max 6000, count 10", f)
	}
	if !almostEqual(res.Metrics.Mean, 3800, 1e-9) || res.Metrics.Count != 10 || res.Metrics.P95 != 6000 {
		t.Errorf("distribution = %+v", res.Metrics)
	}
	if !almostEqual(res.Score, 15, 1e-9) {
		t.Errorf("score = %v, want 15", res.Score)
	}
}

func TestPerformance_CapAndOrder(t *testing.T) {
	var execs []dataset.Execution
	for i := 1; i <= 100; i++ {
		execs = append(execs, exec("A", fmt.Sprintf("m%03d", i), float64(i)*500))
	}
	p := DefaultParams()
	p.MaxFindings = 10

	res := NewPerformance(p).Analyze(&dataset.Dataset{Executions: execs})

	// ≥30000: i=60..100; ≥5000: i=10..59; ≥3000: i=6..9.
	want := SeverityCounts{Critical: 41, Warning: 50, Watch: 4}
	if res.MetricCounts != want {
		t.Errorf("counts = %+v, want %+v", res.MetricCounts, want)
	}
	if len(res.MetricFindings) != 10 {
		t.Fatalf("findings = %d, want cap of 10", len(res.MetricFindings))
	}
	for i, f := range res.MetricFindings {
		if f.Severity != types.SeverityCritical {
			t.Errorf("finding %d severity = %q, want critical", i, f.Severity)
		}
		if wantMs := float64(100-i) * 500; f.AvgExecutionTime != wantMs {
			t.Errorf("finding %d mean = %v, want %v", i, f.AvgExecutionTime, wantMs)
		}
	}

	if res.Metrics.Count != 100 || !almostEqual(res.Metrics.Mean, 25250, 1e-9) {
		t.Errorf("summary = %+v", res.Metrics)
	}
	// Base 0.2 × 25 = 5, penalty min(82, 7.5) → floored at 0.
	if res.Score != 0 {
		t.Errorf("score = %v, want 0", res.Score)
	}
}

func TestPerformance_SortTieBreaksOnKey(t *testing.T) {
	ds := &dataset.Dataset{Executions: []dataset.Execution{
		exec("B", "m1", 6000),
		exec("A", "m2", 6000),
		exec("A", "m1", 6000),
		exec("C", "m9", 40000),
	}}
	res := NewPerformance(DefaultParams()).Analyze(ds)

	var got []string
	for _, f := range res.MetricFindings {
		got = append(got, f.Application+"/"+f.EntityID)
	}
	want := []string{"C/m9", "A/m1", "A/m2", "B/m1"}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("order = %v, want %v", got, want)
	}
}

func TestPerformance_GroupAggregates(t *testing.T) {
	e1 := exec("A", "m1", 4000)
	e1.ComputedRows, e1.Dims = 100, nan
	e2 := exec("A", "m1", nan)
	e2.ComputedRows, e2.Dims = 300, 7
	e3 := exec("A", "m1", 8000)
	e3.Dims = 9
	allMissing := exec("A", "m2", nan)
	noKey := exec("", "m3", 90000)

	ds := &dataset.Dataset{Executions: []dataset.Execution{e1, e2, e3, allMissing, noKey}}
	res := NewPerformance(DefaultParams()).Analyze(ds)

	if len(res.MetricFindings) != 1 {
		t.Fatalf("findings = %d, want 1 (undefined mean and blank key skipped)", len(res.MetricFindings))
	}
	f := res.MetricFindings[0]
	if f.AvgExecutionTime != 6000 || f.MaxExecutionTime != 8000 || f.ExecutionCount != 2 {
		t.Errorf("time aggregates = %+v", f)
	}
	if f.AvgComputedRows == nil || *f.AvgComputedRows != 200 {
		t.Errorf("avg rows = %v, want 200", f.AvgComputedRows)
	}
	if f.Dimensions == nil || *f.Dimensions != 7 {
		t.Errorf("dims = %v, want first present value 7", f.Dimensions)
	}
	// Global stats still see every row, blank key included.
	if res.Metrics.Count != 5 || res.Metrics.Sum != 102000 {
		t.Errorf("summary = %+v", res.Metrics)
	}
}

func TestPerformance_Views(t *testing.T) {
	// View defaults: watch 2000, warning 3000, critical 15000.
	ds := &dataset.Dataset{Views: []dataset.View{
		view("A", "b1", 2000),
		view("A", "b2", 15000),
		view("A", "b2", 17000),
		view("A", "b3", 100),
	}}
	res := NewPerformance(DefaultParams()).Analyze(ds)

	if res.ViewCounts != (SeverityCounts{Critical: 1, Watch: 1}) {
		t.Errorf("view counts = %+v", res.ViewCounts)
	}
	if len(res.ViewFindings) != 2 || res.ViewFindings[0].EntityID != "b2" {
		t.Fatalf("view findings = %+v", res.ViewFindings)
	}
	if res.ViewFindings[0].EntityType != types.EntityView || res.ViewFindings[0].Dimensions != nil {
		t.Errorf("view finding = %+v", res.ViewFindings[0])
	}
	if res.Views.Count != 4 || res.Views.Mean != 8525 {
		t.Errorf("view summary = %+v", res.Views)
	}
	// No executions: mean 0 lands in the top band.
	if res.Score != 25 {
		t.Errorf("score = %v, want 25", res.Score)
	}
}

func TestPerformance_Empty(t *testing.T) {
	res := NewPerformance(DefaultParams()).Analyze(&dataset.Dataset{})
	if res.Score != 25 || res.MaxScore != 25 {
		t.Errorf("score = %v/%v, want 25/25", res.Score, res.MaxScore)
	}
	if len(res.MetricFindings) != 0 || len(res.ViewFindings) != 0 {
		t.Error("empty dataset produced findings")
	}
}

func TestPerformance_CriticalPenalty(t *testing.T) {
	// One critical metric at 40s on its own: base 0.2×25 = 5, penalty 2.
	ds := &dataset.Dataset{Executions: []dataset.Execution{exec("A", "m1", 40000)}}
	res := NewPerformance(DefaultParams()).Analyze(ds)
	if !almostEqual(res.Score, 3, 1e-9) {
		t.Errorf("score = %v, want 3", res.Score)
	}
}
