package dataset

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/obsidianstack/reliability-audit/internal/config"
	"github.com/obsidianstack/reliability-audit/pkg/types"
)

const executionsCSV = `application,metric_id,metric_name,execution_time,computed_rows,nb_dims,jobType,scoped_level,executionStartedAt,day
Finance,m1,Revenue,1200,5000,4,Formula,FullyScoped,2024-03-04T09:15:00Z,2024-03-04
Finance,m1,Revenue,,6000,4,Formula,FullyScoped,2024-03-04T10:15:00Z,2024-03-04
Finance,m2,Costs,not-a-number,,,Formula,NoChange,garbage,2024-03-05
HR,m3,Headcount,450.5,10,2,Import,NonApplicable,2024-03-06 23:59:59,2024-03-06
`

const viewsCSV = `app_id,blockId,blockName,execution_time,computed_rows,day
Finance,b1,P&L,3200,100,2024-03-04
Sales,b2,"Pipeline, by region",800,20,2024-03-07
`

func TestReadExecutions(t *testing.T) {
	execs, hasStarted, err := ReadExecutions(strings.NewReader(executionsCSV))
	if err != nil {
		t.Fatalf("ReadExecutions: %v", err)
	}
	if !hasStarted {
		t.Error("hasStarted = false, want true")
	}
	if len(execs) != 4 {
		t.Fatalf("rows = %d, want 4", len(execs))
	}

	e := execs[0]
	if e.Application != "Finance" || e.MetricID != "m1" || e.MetricName != "Revenue" {
		t.Errorf("identity: %+v", e)
	}
	if e.ExecutionTime != 1200 || e.ComputedRows != 5000 || e.Dims != 4 {
		t.Errorf("numbers: time=%v rows=%v dims=%v", e.ExecutionTime, e.ComputedRows, e.Dims)
	}
	if e.ScopedLevel != types.FullyScoped || e.JobType != "Formula" {
		t.Errorf("scoped=%q job=%q", e.ScopedLevel, e.JobType)
	}
	if e.StartedAt.Hour() != 9 {
		t.Errorf("StartedAt hour = %d, want 9", e.StartedAt.Hour())
	}

	if !Missing(execs[1].ExecutionTime) {
		t.Errorf("blank execution_time should be NaN, got %v", execs[1].ExecutionTime)
	}
	if !Missing(execs[2].ExecutionTime) || !Missing(execs[2].Dims) {
		t.Errorf("invalid numbers should be NaN: time=%v dims=%v", execs[2].ExecutionTime, execs[2].Dims)
	}
	if !execs[2].StartedAt.IsZero() {
		t.Errorf("garbage timestamp should be zero, got %v", execs[2].StartedAt)
	}
	if execs[3].ExecutionTime != 450.5 || execs[3].StartedAt.Hour() != 23 {
		t.Errorf("row 4: time=%v hour=%d", execs[3].ExecutionTime, execs[3].StartedAt.Hour())
	}
}

func TestReadExecutions_NoStartedAtColumn(t *testing.T) {
	csv := "application,metric_id,metric_name,execution_time\nA,m,M,10\n"
	execs, hasStarted, err := ReadExecutions(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("ReadExecutions: %v", err)
	}
	if hasStarted {
		t.Error("hasStarted = true, want false without executionStartedAt column")
	}
	if !Missing(execs[0].Dims) {
		t.Errorf("absent nb_dims column should be NaN, got %v", execs[0].Dims)
	}
}

func TestReadExecutions_Empty(t *testing.T) {
	execs, _, err := ReadExecutions(strings.NewReader(""))
	if err != nil {
		t.Fatalf("ReadExecutions(empty): %v", err)
	}
	if len(execs) != 0 {
		t.Errorf("rows = %d, want 0", len(execs))
	}
}

func TestReadViews_QuotedFields(t *testing.T) {
	views, err := ReadViews(strings.NewReader(viewsCSV))
	if err != nil {
		t.Fatalf("ReadViews: %v", err)
	}
	if len(views) != 2 {
		t.Fatalf("rows = %d, want 2", len(views))
	}
	if views[1].BlockName != "Pipeline, by region" {
		t.Errorf("BlockName = %q", views[1].BlockName)
	}
	if views[0].ExecutionTime != 3200 {
		t.Errorf("ExecutionTime = %v", views[0].ExecutionTime)
	}
}

func TestLoad_FilesAndMissing(t *testing.T) {
	dir := t.TempDir()
	execPath := writeCSV(t, dir, "executions.csv", executionsCSV)
	armsetPath := writeCSV(t, dir, "armset.csv", "a,b\n1,2\n3,4\n5,6\n")

	d, err := Load(config.DataSources{
		ExecutionsCSV: execPath,
		ViewsCSV:      filepath.Join(dir, "missing.csv"),
		ArmsetCSV:     armsetPath,
	})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !d.HasExecutions() || len(d.Executions) != 4 {
		t.Errorf("executions = %d, want 4", len(d.Executions))
	}
	if d.HasViews() {
		t.Error("missing views file should leave views empty")
	}
	if !d.HasArmset() || len(d.Armset.Rows) != 3 {
		t.Errorf("armset rows = %v", d.Armset)
	}
}

func TestLoad_MalformedCSV(t *testing.T) {
	dir := t.TempDir()
	path := writeCSV(t, dir, "bad.csv", "application,execution_time\nA,1\nB\"x,2\n")
	if _, err := Load(config.DataSources{ExecutionsCSV: path}); err == nil {
		t.Fatal("expected error for malformed csv")
	}
}

func TestSummary(t *testing.T) {
	execs, _, _ := ReadExecutions(strings.NewReader(executionsCSV))
	views, _ := ReadViews(strings.NewReader(viewsCSV))
	d := &Dataset{Executions: execs, Views: views, Armset: &Table{Rows: [][]string{{"x"}}}}

	s := d.Summary()
	if s.ExecutionRecords != 4 || s.ViewRecords != 2 || s.ArmsetRecords != 1 {
		t.Errorf("counts: %+v", s)
	}
	// Finance, HR from executions; Sales from views.
	if s.UniqueApplications != 3 {
		t.Errorf("UniqueApplications = %d, want 3", s.UniqueApplications)
	}
	if s.UniqueMetrics != 3 {
		t.Errorf("UniqueMetrics = %d, want 3", s.UniqueMetrics)
	}
	if s.DateFrom == nil || s.DateFrom.Format("2006-01-02") != "2024-03-04" {
		t.Errorf("DateFrom = %v", s.DateFrom)
	}
	if s.DateTo == nil || s.DateTo.Format("2006-01-02") != "2024-03-07" {
		t.Errorf("DateTo = %v", s.DateTo)
	}
}

func TestSummary_Empty(t *testing.T) {
	s := (&Dataset{}).Summary()
	if s.DateFrom != nil || s.UniqueApplications != 0 {
		t.Errorf("empty summary = %+v", s)
	}
}

func TestHasArmset(t *testing.T) {
	tests := []struct {
		name string
		d    *Dataset
		want bool
	}{
		{"nil dataset", nil, false},
		{"no table", &Dataset{}, false},
		{"header only", &Dataset{Armset: &Table{Header: []string{"app"}}}, false},
		{"rows", &Dataset{Armset: &Table{Rows: [][]string{{"x"}, {"y"}}}}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.d.HasArmset(); got != tc.want {
				t.Errorf("HasArmset() = %v, want %v", got, tc.want)
			}
			if tc.d == nil {
				return
			}
			want := 0
			if tc.want {
				want = len(tc.d.Armset.Rows)
			}
			if got := tc.d.Summary().ArmsetRecords; got != want {
				t.Errorf("ArmsetRecords = %d, want %d", got, want)
			}
		})
	}
}

func TestFilter(t *testing.T) {
	day := func(s string) time.Time {
		d, _ := time.Parse("2006-01-02", s)
		return d
	}
	d := &Dataset{
		Executions: []Execution{
			{Application: "A", MetricID: "m1", Day: day("2024-01-01")},
			{Application: "A", MetricID: "m2", Day: day("2024-01-10")},
			{Application: "B", MetricID: "m3", Day: day("2024-01-05")},
			{Application: "C", MetricID: "m4", Day: day("2024-01-05")},
			{Application: "A", MetricID: "m5"}, // no day
		},
		Views: []View{
			{AppID: "A", Day: day("2024-01-05")},
			{AppID: "C", Day: day("2024-01-05")},
		},
		HasStartedAt: true,
	}

	tests := []struct {
		name      string
		f         config.Filters
		wantExecs []string
		wantViews int
	}{
		{"no filters", config.Filters{}, []string{"m1", "m2", "m3", "m4", "m5"}, 2},
		{"include apps", config.Filters{Applications: []string{"A", "B"}}, []string{"m1", "m2", "m3", "m5"}, 1},
		{"exclude apps", config.Filters{ExcludeApplications: []string{"A"}}, []string{"m3", "m4"}, 1},
		{"exclude metrics", config.Filters{ExcludeMetrics: []string{"m2", "m4"}}, []string{"m1", "m3", "m5"}, 2},
		{"date range inclusive", config.Filters{DateFrom: "2024-01-05", DateTo: "2024-01-10"}, []string{"m2", "m3", "m4"}, 2},
		{"date to only", config.Filters{DateTo: "2024-01-01"}, []string{"m1"}, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			out, err := Filter(d, tc.f)
			if err != nil {
				t.Fatalf("Filter: %v", err)
			}
			var got []string
			for _, e := range out.Executions {
				got = append(got, e.MetricID)
			}
			if strings.Join(got, ",") != strings.Join(tc.wantExecs, ",") {
				t.Errorf("executions = %v, want %v", got, tc.wantExecs)
			}
			if len(out.Views) != tc.wantViews {
				t.Errorf("views = %d, want %d", len(out.Views), tc.wantViews)
			}
			if !out.HasStartedAt {
				t.Error("HasStartedAt not carried over")
			}
		})
	}

	if len(d.Executions) != 5 {
		t.Errorf("Filter mutated its input: %d executions", len(d.Executions))
	}
}

func TestFilter_BadDate(t *testing.T) {
	if _, err := Filter(&Dataset{}, config.Filters{DateFrom: "last tuesday"}); err == nil {
		t.Fatal("expected error for unparseable date_from")
	}
}

func TestTimeColumns(t *testing.T) {
	d := &Dataset{
		Executions: []Execution{{ExecutionTime: 1}, {ExecutionTime: math.NaN()}},
		Views:      []View{{ExecutionTime: 7}},
	}
	if got := d.ExecutionTimes(); len(got) != 2 || got[0] != 1 || !math.IsNaN(got[1]) {
		t.Errorf("ExecutionTimes = %v", got)
	}
	if got := d.ViewTimes(); len(got) != 1 || got[0] != 7 {
		t.Errorf("ViewTimes = %v", got)
	}
}

func writeCSV(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}
