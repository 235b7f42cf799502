// Package config loads and watches the audit configuration.
//
// Top-level types:
//   - Config{DataSources, Output, Filters, Thresholds, Scoring, Grades}
//   - Thresholds: metric_execution, view_render, computed_rows and dimensions
//     tier triples (types.Tiers) plus scoping percentages
//   - Weights: the four component weights, which must sum to 100
//   - Grades: minimum totals for A/B/C/D
//
// Load(paths...) starts from Defaults(), decodes each YAML file on top in
// order, applies AUDIT_* environment overrides and validates tier ordering,
// weights, grade cutoffs and output formats. LoadFiles does the same and then
// layers a standalone thresholds.yaml (performance.metric_execution,
// performance.view_render, computed_rows, dimensions, scoping, scoring,
// grades) over the config files. Unknown keys fail the load in both layouts. LoadDotenv reads .env files via godotenv before
// Load so the same overrides can live next to the data.
//
// Watch(ctx, files, onChange) uses fsnotify to detect writes and calls
// onChange with the re-loaded Config. It re-adds the watch after each event
// to survive the rename→create pattern of atomic-save editors.
package config
