package stats

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Present returns the non-NaN values of xs in their original order.
func Present(xs []float64) []float64 {
	out := make([]float64, 0, len(xs))
	for _, v := range xs {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

// Sum adds the non-NaN values of xs. An empty or all-NaN input sums to 0.
func Sum(xs []float64) float64 {
	return floats.Sum(Present(xs))
}

// Mean returns the mean of the non-NaN values of xs, or NaN if there are none.
func Mean(xs []float64) float64 {
	vs := Present(xs)
	if len(vs) == 0 {
		return math.NaN()
	}
	return stat.Mean(vs, nil)
}

// Max returns the largest non-NaN value of xs, or NaN if there are none.
func Max(xs []float64) float64 {
	vs := Present(xs)
	if len(vs) == 0 {
		return math.NaN()
	}
	return floats.Max(vs)
}

// percentileSorted returns the p-th quantile (0 ≤ p ≤ 1) of a sorted,
// non-empty slice using linear interpolation between the closest ranks: the
// value at fractional rank (n-1)·p.
func percentileSorted(sorted []float64, p float64) float64 {
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[len(sorted)-1]
	}
	rank := float64(len(sorted)-1) * p
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo]
	}
	frac := rank - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}

// Summary is the distribution of a column of execution times.
type Summary struct {
	// Count is the number of rows, including rows with a missing value.
	Count int     `json:"count"`
	Sum   float64 `json:"sum_ms"`
	Mean  float64 `json:"mean_ms"`
	P50   float64 `json:"p50_ms"`
	P95   float64 `json:"p95_ms"`
	P99   float64 `json:"p99_ms"`
}

// Summarize computes a Summary over xs. Mean and the percentiles are left at
// 0 when no value is present.
func Summarize(xs []float64) Summary {
	s := Summary{Count: len(xs)}
	vs := Present(xs)
	if len(vs) == 0 {
		return s
	}
	s.Sum = floats.Sum(vs)
	s.Mean = stat.Mean(vs, nil)

	sort.Float64s(vs)
	s.P50 = percentileSorted(vs, 0.50)
	s.P95 = percentileSorted(vs, 0.95)
	s.P99 = percentileSorted(vs, 0.99)
	return s
}

// Pct returns part·100/whole, or 0 when whole is 0. Multiplying first keeps
// whole-number percentages of counts exact.
func Pct(part, whole float64) float64 {
	if whole == 0 {
		return 0
	}
	return part * 100 / whole
}

// Round rounds v to the given number of decimal places. Only renderers call
// it; analyzers keep full precision.
func Round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
