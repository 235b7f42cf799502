package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/obsidianstack/reliability-audit/internal/config"
	"github.com/obsidianstack/reliability-audit/pkg/types"
)

// Column names of the executions export.
const (
	colApplication = "application"
	colMetricID    = "metric_id"
	colMetricName  = "metric_name"
	colExecTime    = "execution_time"
	colRows        = "computed_rows"
	colDims        = "nb_dims"
	colJobType     = "jobType"
	colScopedLevel = "scoped_level"
	colStartedAt   = "executionStartedAt"
	colDay         = "day"
)

// Column names of the views export.
const (
	colAppID     = "app_id"
	colBlockID   = "blockId"
	colBlockName = "blockName"
)

// timeLayouts are tried in order when parsing timestamps and days.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02",
}

// Load reads the configured CSV exports. A path that is empty or does not
// exist leaves that collection empty and logs a warning; any other read or
// parse failure is returned.
func Load(src config.DataSources) (*Dataset, error) {
	d := &Dataset{}

	if r, ok, err := openCSV(src.ExecutionsCSV, "executions"); err != nil {
		return nil, err
	} else if ok {
		execs, hasStarted, err := ReadExecutions(r)
		r.Close()
		if err != nil {
			return nil, fmt.Errorf("dataset: executions %q: %w", src.ExecutionsCSV, err)
		}
		d.Executions, d.HasStartedAt = execs, hasStarted
		slog.Info("dataset: loaded", "kind", "executions", "records", len(execs), "path", src.ExecutionsCSV)
	}

	if r, ok, err := openCSV(src.ViewsCSV, "views"); err != nil {
		return nil, err
	} else if ok {
		views, err := ReadViews(r)
		r.Close()
		if err != nil {
			return nil, fmt.Errorf("dataset: views %q: %w", src.ViewsCSV, err)
		}
		d.Views = views
		slog.Info("dataset: loaded", "kind", "views", "records", len(views), "path", src.ViewsCSV)
	}

	if r, ok, err := openCSV(src.ArmsetCSV, "armset"); err != nil {
		return nil, err
	} else if ok {
		tbl, err := readTable(r)
		r.Close()
		if err != nil {
			return nil, fmt.Errorf("dataset: armset %q: %w", src.ArmsetCSV, err)
		}
		d.Armset = tbl
		slog.Info("dataset: loaded", "kind", "armset", "records", len(tbl.Rows), "path", src.ArmsetCSV)
	}

	return d, nil
}

func openCSV(path, kind string) (io.ReadCloser, bool, error) {
	if path == "" {
		return nil, false, nil
	}
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		slog.Warn("dataset: csv not found, skipping", "kind", kind, "path", path)
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("dataset: open %s: %w", kind, err)
	}
	return f, true, nil
}

// ReadExecutions parses an executions export. The second return value is
// true when the executionStartedAt column is present.
func ReadExecutions(r io.Reader) ([]Execution, bool, error) {
	tbl, err := readTable(r)
	if err != nil {
		return nil, false, err
	}
	col := tbl.columns()
	_, hasStarted := col[colStartedAt]

	out := make([]Execution, 0, len(tbl.Rows))
	for _, row := range tbl.Rows {
		out = append(out, Execution{
			Application:   field(row, col, colApplication),
			MetricID:      field(row, col, colMetricID),
			MetricName:    field(row, col, colMetricName),
			ExecutionTime: number(field(row, col, colExecTime)),
			ComputedRows:  number(field(row, col, colRows)),
			Dims:          number(field(row, col, colDims)),
			JobType:       field(row, col, colJobType),
			ScopedLevel:   types.ScopedLevel(field(row, col, colScopedLevel)),
			StartedAt:     timestamp(field(row, col, colStartedAt)),
			Day:           timestamp(field(row, col, colDay)),
		})
	}
	return out, hasStarted, nil
}

// ReadViews parses a views export.
func ReadViews(r io.Reader) ([]View, error) {
	tbl, err := readTable(r)
	if err != nil {
		return nil, err
	}
	col := tbl.columns()

	out := make([]View, 0, len(tbl.Rows))
	for _, row := range tbl.Rows {
		out = append(out, View{
			AppID:         field(row, col, colAppID),
			BlockID:       field(row, col, colBlockID),
			BlockName:     field(row, col, colBlockName),
			ExecutionTime: number(field(row, col, colExecTime)),
			ComputedRows:  number(field(row, col, colRows)),
			Day:           timestamp(field(row, col, colDay)),
		})
	}
	return out, nil
}

func readTable(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return &Table{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff"))
	}

	tbl := &Table{Header: header}
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", len(tbl.Rows)+2, err)
		}
		tbl.Rows = append(tbl.Rows, rec)
	}
	return tbl, nil
}

func (t *Table) columns() map[string]int {
	m := make(map[string]int, len(t.Header))
	for i, h := range t.Header {
		if _, dup := m[h]; !dup {
			m[h] = i
		}
	}
	return m
}

func field(row []string, col map[string]int, name string) string {
	i, ok := col[name]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// number parses a numeric field, returning NaN for blank or invalid input.
func number(s string) float64 {
	if s == "" {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(v, 0) {
		return math.NaN()
	}
	return v
}

// timestamp parses a date or date-time field, returning the zero time for
// blank or invalid input.
func timestamp(s string) time.Time {
	t, _ := parseTime(s)
	return t
}

func parseTime(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
