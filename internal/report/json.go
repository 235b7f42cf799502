package report

import (
	"encoding/json"
	"fmt"
	"io"
)

// WriteJSON writes the full run, every analyzer result included, as indented
// JSON. Values keep full precision.
func WriteJSON(w io.Writer, run *Run) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(run); err != nil {
		return fmt.Errorf("report: encode json: %w", err)
	}
	return nil
}
