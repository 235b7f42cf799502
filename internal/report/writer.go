package report

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/obsidianstack/reliability-audit/internal/config"
)

// artifact is one output file and the function that renders its body.
type artifact struct {
	name  string
	write func(io.Writer) error
}

// Writer renders a Run into the configured formats under one directory.
type Writer struct {
	dir            string
	formats        []string
	includeDetails bool
}

// NewWriter returns a Writer for the output section of a validated Config.
// Duplicate formats are written once.
func NewWriter(out config.Output) *Writer {
	seen := make(map[string]bool, len(out.Formats))
	var formats []string
	for _, f := range out.Formats {
		if seen[f] {
			continue
		}
		seen[f] = true
		formats = append(formats, f)
	}
	return &Writer{
		dir:            out.Directory,
		formats:        formats,
		includeDetails: out.IncludeDetails,
	}
}

// Write creates the output directory and renders run in every format. It
// returns the paths written, in format order. A failure stops at the first
// artifact that could not be written.
func (w *Writer) Write(run *Run) ([]string, error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return nil, fmt.Errorf("report: create output dir: %w", err)
	}

	var paths []string
	for _, a := range w.artifacts(run) {
		path := filepath.Join(w.dir, a.name)
		if err := writeFile(path, a.write); err != nil {
			return paths, fmt.Errorf("report: write %s: %w", a.name, err)
		}
		slog.Info("report: wrote", "path", path)
		paths = append(paths, path)
	}
	return paths, nil
}

// artifacts lists every file the configured formats produce for run.
func (w *Writer) artifacts(run *Run) []artifact {
	stamp := run.Stamp()

	var out []artifact
	for _, f := range w.formats {
		switch f {
		case config.FormatCSV:
			out = append(out, csvArtifacts(run)...)
		case config.FormatHTML:
			out = append(out, artifact{
				name:  "audit_report_" + stamp + ".html",
				write: func(wr io.Writer) error { return WriteHTML(wr, run, w.includeDetails) },
			})
		case config.FormatProm:
			out = append(out, artifact{
				name:  "audit_" + stamp + ".prom",
				write: func(wr io.Writer) error { return WriteProm(wr, run) },
			})
		case config.FormatJSON:
			out = append(out, artifact{
				name:  "audit_" + stamp + ".json",
				write: func(wr io.Writer) error { return WriteJSON(wr, run) },
			})
		default:
			slog.Warn("report: unknown format skipped", "format", f)
		}
	}
	return out
}

// writeFile renders into path, removing the partial file on failure.
func writeFile(path string, render func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := render(f); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	return f.Close()
}
