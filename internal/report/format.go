package report

import (
	"math"
	"strconv"

	"github.com/dustin/go-humanize"

	"github.com/obsidianstack/reliability-audit/internal/stats"
)

// Presentation precision. Analyzers keep full precision; only renderers round.
const (
	timePlaces = 2
	pctPlaces  = 1
	corrPlaces = 3
)

// decimal formats v rounded to places, without trailing zeros.
func decimal(v float64, places int) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return ""
	}
	return strconv.FormatFloat(stats.Round(v, places), 'f', -1, 64)
}

func msText(v float64) string  { return decimal(v, timePlaces) }
func pctText(v float64) string { return decimal(v, pctPlaces) }

// optFloat formats an optional value, empty when absent.
func optFloat(v *float64, places int) string {
	if v == nil {
		return ""
	}
	return decimal(*v, places)
}

func optInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

// count formats an integer with thousands separators.
func count(n int) string { return humanize.Comma(int64(n)) }

// thousands formats v rounded to a whole number with thousands separators.
func thousands(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return humanize.Comma(int64(math.Round(v)))
}
