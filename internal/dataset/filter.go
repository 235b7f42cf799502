package dataset

import (
	"fmt"
	"time"

	"github.com/obsidianstack/reliability-audit/internal/config"
)

// Filter returns a new Dataset keeping only the rows f allows:
//   - Applications (if non-empty) keeps matching application / app_id only
//   - ExcludeApplications drops matching application / app_id
//   - ExcludeMetrics drops matching metric ids (executions only)
//   - DateFrom / DateTo keep rows whose day lies within the inclusive range;
//     rows without a day are dropped when either bound is set
//
// The armset table is passed through unchanged.
func Filter(d *Dataset, f config.Filters) (*Dataset, error) {
	from, err := parseBound(f.DateFrom)
	if err != nil {
		return nil, fmt.Errorf("dataset: filters.date_from: %w", err)
	}
	to, err := parseBound(f.DateTo)
	if err != nil {
		return nil, fmt.Errorf("dataset: filters.date_to: %w", err)
	}

	include := toSet(f.Applications)
	excludeApps := toSet(f.ExcludeApplications)
	excludeMetrics := toSet(f.ExcludeMetrics)

	keepApp := func(app string) bool {
		if len(include) > 0 {
			if _, ok := include[app]; !ok {
				return false
			}
		}
		_, excluded := excludeApps[app]
		return !excluded
	}
	keepDay := func(day time.Time) bool {
		if from.IsZero() && to.IsZero() {
			return true
		}
		if day.IsZero() {
			return false
		}
		if !from.IsZero() && day.Before(from) {
			return false
		}
		if !to.IsZero() && day.After(to) {
			return false
		}
		return true
	}

	out := &Dataset{Armset: d.Armset, HasStartedAt: d.HasStartedAt}
	for _, e := range d.Executions {
		if _, excluded := excludeMetrics[e.MetricID]; excluded {
			continue
		}
		if keepApp(e.Application) && keepDay(e.Day) {
			out.Executions = append(out.Executions, e)
		}
	}
	for _, v := range d.Views {
		if keepApp(v.AppID) && keepDay(v.Day) {
			out.Views = append(out.Views, v)
		}
	}
	return out, nil
}

func parseBound(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, ok := parseTime(s)
	if !ok {
		return time.Time{}, fmt.Errorf("unrecognised date %q", s)
	}
	return t, nil
}

func toSet(xs []string) map[string]struct{} {
	m := make(map[string]struct{}, len(xs))
	for _, x := range xs {
		m[x] = struct{}{}
	}
	return m
}
