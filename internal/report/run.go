package report

import (
	"time"

	"github.com/google/uuid"

	"github.com/obsidianstack/reliability-audit/internal/config"
	"github.com/obsidianstack/reliability-audit/internal/dataset"
	"github.com/obsidianstack/reliability-audit/internal/score"
)

// stampLayout is the timestamp embedded in every artifact file name.
const stampLayout = "20060102_150405"

// Run is one audit execution: the deterministic score plus the metadata that
// is not, namely an identifier and the wall-clock time it was generated, and
// the thresholds the score was computed with.
type Run struct {
	ID          string                 `json:"run_id"`
	GeneratedAt time.Time              `json:"generated_at"`
	Summary     dataset.Summary        `json:"data_summary"`
	Thresholds  config.Thresholds      `json:"thresholds"`
	Score       score.ReliabilityScore `json:"reliability_score"`
}

// NewRun wraps a score with a fresh run id. now is injected so that file
// names are reproducible in tests.
func NewRun(summary dataset.Summary, th config.Thresholds, sc score.ReliabilityScore, now time.Time) *Run {
	return &Run{
		ID:          uuid.NewString(),
		GeneratedAt: now,
		Summary:     summary,
		Thresholds:  th,
		Score:       sc,
	}
}

// Stamp formats GeneratedAt for use in artifact file names.
func (r *Run) Stamp() string {
	return r.GeneratedAt.Format(stampLayout)
}
