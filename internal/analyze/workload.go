package analyze

import (
	"math"
	"sort"

	"github.com/obsidianstack/reliability-audit/internal/dataset"
	"github.com/obsidianstack/reliability-audit/internal/stats"
)

const (
	msPerHour = 3_600_000.0

	// noViewsShare is the share of the views weight awarded when there is
	// no view data to judge.
	noViewsShare = 0.8
)

// AppWorkload is one application's share of the execution time.
type AppWorkload struct {
	Application   string  `json:"application"`
	TotalTimeMs   float64 `json:"total_execution_time_ms"`
	MeanTimeMs    float64 `json:"avg_execution_time_ms"`
	Executions    int     `json:"total_executions"`
	UniqueMetrics int     `json:"unique_metrics"`
	PctOfTotal    float64 `json:"pct_of_total_time"`
}

// Temporal is the distribution of execution time over hours of the day and
// days of the week. Maps hold percentages keyed by bucket; only buckets with
// at least one execution are present. Days run 0=Monday to 6=Sunday.
type Temporal struct {
	Hourly   map[int]float64 `json:"hourly_distribution"`
	Daily    map[int]float64 `json:"daily_distribution"`
	PeakHour *int            `json:"peak_hour"`
	PeakDay  *int            `json:"peak_day"`
}

// WorkloadResult is the output of the workload analysis.
type WorkloadResult struct {
	TotalHours      float64        `json:"total_execution_time_hours"`
	TotalExecutions int            `json:"total_executions"`
	Applications    []AppWorkload  `json:"applications"`
	TopAppPct       float64        `json:"top_app_pct"`
	JobTypes        map[string]int `json:"job_type_distribution"`
	Temporal        *Temporal      `json:"temporal,omitempty"`

	ViewTimeMs     float64 `json:"total_view_time_ms"`
	ViewExecutions int     `json:"total_view_executions"`
	SlowViewsPct   float64 `json:"slow_views_pct"`

	Score    float64 `json:"score"`
	MaxScore float64 `json:"max_score"`
}

// Workload describes where execution time goes: by application, job type
// and time of day, plus how many view renders are slow.
type Workload struct {
	slowViewMs float64
	weight     float64
}

// NewWorkload returns a Workload analyzer for p. A view execution is slow
// when it exceeds the view_render warning threshold.
func NewWorkload(p Params) Workload {
	return Workload{
		slowViewMs: p.Thresholds.ViewRender.Warning,
		weight:     p.Weights.Views,
	}
}

type appAcc struct {
	time    stats.Acc
	metrics map[string]struct{}
}

// Analyze runs the workload analysis over ds.
func (a Workload) Analyze(ds *dataset.Dataset) WorkloadResult {
	res := WorkloadResult{MaxScore: a.weight, JobTypes: map[string]int{}}

	if ds.HasExecutions() {
		a.executions(ds, &res)
	}
	if ds.HasViews() {
		res.ViewExecutions = len(ds.Views)
		slow := 0
		for _, v := range ds.Views {
			if v.ExecutionTime > a.slowViewMs {
				slow++
			}
		}
		res.ViewTimeMs = stats.Sum(ds.ViewTimes())
		res.SlowViewsPct = stats.Pct(float64(slow), float64(res.ViewExecutions))
	}

	res.Score = a.score(res)
	return res
}

func (a Workload) executions(ds *dataset.Dataset, res *WorkloadResult) {
	res.TotalExecutions = len(ds.Executions)
	res.TotalHours = stats.Sum(ds.ExecutionTimes()) / msPerHour

	apps := stats.NewGroups(func() *appAcc { return &appAcc{metrics: map[string]struct{}{}} })
	for _, e := range ds.Executions {
		if e.JobType != "" {
			res.JobTypes[e.JobType]++
		}
		if e.Application == "" {
			continue
		}
		g := apps.At(stats.Key{App: e.Application})
		g.time.Add(e.ExecutionTime)
		if e.MetricID != "" {
			g.metrics[e.MetricID] = struct{}{}
		}
	}

	var total float64
	apps.Each(func(_ stats.Key, g *appAcc) { total += g.time.Sum() })

	apps.Each(func(k stats.Key, g *appAcc) {
		mean := g.time.Mean()
		if math.IsNaN(mean) {
			mean = 0
		}
		res.Applications = append(res.Applications, AppWorkload{
			Application:   k.App,
			TotalTimeMs:   g.time.Sum(),
			MeanTimeMs:    mean,
			Executions:    g.time.Count(),
			UniqueMetrics: len(g.metrics),
			PctOfTotal:    stats.Pct(g.time.Sum(), total),
		})
	})
	sort.SliceStable(res.Applications, func(i, j int) bool {
		return res.Applications[i].TotalTimeMs > res.Applications[j].TotalTimeMs
	})
	if len(res.Applications) > 0 {
		res.TopAppPct = res.Applications[0].PctOfTotal
	}

	if ds.HasStartedAt {
		res.Temporal = temporal(ds.Executions)
	}
}

// temporal buckets execution time by start hour and weekday. Executions
// without a start timestamp are ignored.
func temporal(execs []dataset.Execution) *Temporal {
	var hourly [24]float64
	var daily [7]float64
	var seenHour [24]bool
	var seenDay [7]bool

	for _, e := range execs {
		if e.StartedAt.IsZero() {
			continue
		}
		h := e.StartedAt.Hour()
		d := (int(e.StartedAt.Weekday()) + 6) % 7
		seenHour[h], seenDay[d] = true, true
		if !dataset.Missing(e.ExecutionTime) {
			hourly[h] += e.ExecutionTime
			daily[d] += e.ExecutionTime
		}
	}

	t := &Temporal{}
	t.Hourly, t.PeakHour = distribution(hourly[:], seenHour[:])
	t.Daily, t.PeakDay = distribution(daily[:], seenDay[:])
	return t
}

// distribution converts bucket sums to percentages of their total and picks
// the bucket with the largest share; the lowest bucket wins ties.
func distribution(sums []float64, seen []bool) (map[int]float64, *int) {
	var total float64
	for i, v := range sums {
		if seen[i] {
			total += v
		}
	}

	dist := map[int]float64{}
	peak := -1
	for i, v := range sums {
		if !seen[i] {
			continue
		}
		dist[i] = stats.Pct(v, total)
		if peak < 0 || v > sums[peak] {
			peak = i
		}
	}
	if peak < 0 {
		return dist, nil
	}
	return dist, &peak
}

func (a Workload) score(res WorkloadResult) float64 {
	if res.ViewExecutions == 0 {
		return a.weight * noViewsShare
	}
	return shareLadder.Scale(res.SlowViewsPct, a.weight)
}
