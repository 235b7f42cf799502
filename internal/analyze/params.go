package analyze

import (
	"math"

	"github.com/obsidianstack/reliability-audit/internal/config"
	"github.com/obsidianstack/reliability-audit/internal/stats"
)

// Params is the immutable parameter bundle every analyzer is built from.
type Params struct {
	Thresholds  config.Thresholds
	Weights     config.Weights
	MaxFindings int
}

// NewParams extracts the analyzer parameters from a validated Config.
func NewParams(cfg *config.Config) Params {
	return Params{
		Thresholds:  cfg.Thresholds,
		Weights:     cfg.Scoring,
		MaxFindings: cfg.Output.MaxFindingsPerCategory,
	}
}

// DefaultParams returns the parameters of config.Defaults().
func DefaultParams() Params {
	return NewParams(config.Defaults())
}

// SeverityCounts is the number of classified entities per tier, counted
// before findings are capped.
type SeverityCounts struct {
	Critical int `json:"critical"`
	Warning  int `json:"warning"`
	Watch    int `json:"watch"`
}

// Total is the number of classified entities.
func (c SeverityCounts) Total() int { return c.Critical + c.Warning + c.Watch }

// keyed reports whether every part of a group key is present. Rows with a
// blank key column never form a group.
func keyed(k stats.Key) bool {
	return k.App != "" && k.ID != "" && k.Name != ""
}

// capped returns at most n leading elements of xs. n ≤ 0 means no cap.
func capped[T any](xs []T, n int) []T {
	if n > 0 && len(xs) > n {
		return xs[:n]
	}
	return xs
}

// optInt converts a present float to *int by truncation, or nil for NaN.
func optInt(v float64) *int {
	if math.IsNaN(v) {
		return nil
	}
	i := int(v)
	return &i
}
