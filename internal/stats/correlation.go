package stats

import "math"

// MinCorrelationPairs is the smallest number of complete (x, y) pairs for
// which a correlation is reported. Five pairs or fewer is "undefined".
const MinCorrelationPairs = 6

// Pearson returns the Pearson correlation coefficient of xs and ys over the
// pairs where both values are present.
//
// ok is false when fewer than MinCorrelationPairs complete pairs exist or
// when either side has zero variance. xs and ys must have the same length.
func Pearson(xs, ys []float64) (r float64, ok bool) {
	if len(xs) != len(ys) {
		return 0, false
	}

	// First pass: means over complete pairs.
	var sumX, sumY float64
	var n int
	for i := range xs {
		if math.IsNaN(xs[i]) || math.IsNaN(ys[i]) {
			continue
		}
		sumX += xs[i]
		sumY += ys[i]
		n++
	}
	if n < MinCorrelationPairs {
		return 0, false
	}
	meanX := sumX / float64(n)
	meanY := sumY / float64(n)

	// Second pass: covariance and variances.
	var cov, varX, varY float64
	for i := range xs {
		if math.IsNaN(xs[i]) || math.IsNaN(ys[i]) {
			continue
		}
		dx := xs[i] - meanX
		dy := ys[i] - meanY
		cov += dx * dy
		varX += dx * dx
		varY += dy * dy
	}
	if varX == 0 || varY == 0 {
		return 0, false
	}

	r = cov / math.Sqrt(varX*varY)
	// Clamp rounding drift so |r| never exceeds 1.
	return math.Max(-1, math.Min(1, r)), true
}
