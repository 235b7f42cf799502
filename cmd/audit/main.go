package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/obsidianstack/reliability-audit/internal/config"
	"github.com/obsidianstack/reliability-audit/internal/dataset"
	"github.com/obsidianstack/reliability-audit/internal/report"
	"github.com/obsidianstack/reliability-audit/internal/score"
)

// formatAll selects every output format.
const formatAll = "all"

var errNoData = errors.New("no data loaded: check the data source paths")

// overrides are command-line values that take precedence over the config
// files and environment. Empty fields leave the loaded value alone.
type overrides struct {
	executions string
	views      string
	armset     string
	outputDir  string
	format     string
}

func (o overrides) apply(cfg *config.Config) error {
	if o.executions != "" {
		cfg.DataSources.ExecutionsCSV = o.executions
	}
	if o.views != "" {
		cfg.DataSources.ViewsCSV = o.views
	}
	if o.armset != "" {
		cfg.DataSources.ArmsetCSV = o.armset
	}
	if o.outputDir != "" {
		cfg.Output.Directory = o.outputDir
	}
	switch o.format {
	case "":
	case formatAll:
		cfg.Output.Formats = []string{config.FormatCSV, config.FormatHTML, config.FormatProm, config.FormatJSON}
	case config.FormatCSV, config.FormatHTML, config.FormatProm, config.FormatJSON:
		cfg.Output.Formats = []string{o.format}
	default:
		return fmt.Errorf("unknown -format %q", o.format)
	}
	return nil
}

func main() {
	configPath := flag.String("config", "", "path to config file")
	thresholdsPath := flag.String("thresholds", "", "path to a thresholds.yaml (performance, computed_rows, dimensions, scoping, scoring, grades) layered over -config")
	executions := flag.String("executions", "", "executions CSV (overrides config)")
	views := flag.String("views", "", "views CSV (overrides config)")
	armset := flag.String("armset", "", "ARMSET/UPMSET CSV (overrides config)")
	outputDir := flag.String("output-dir", "", "report output directory (overrides config)")
	format := flag.String("format", "", "output format: csv, html, prom, json or all (overrides config)")
	quiet := flag.Bool("quiet", false, "do not print the console summary")
	watch := flag.Bool("watch", false, "re-run the audit whenever a config file changes")
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn or error")
	envFile := flag.String("env", ".env", "dotenv file read before loading config")
	flag.Parse()

	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToLower(*logLevel))); err != nil {
		fmt.Fprintf(os.Stderr, "invalid -log-level %q\n", *logLevel)
		os.Exit(2)
	}
	// The console summary owns stdout.
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	config.LoadDotenv(*envFile)

	ov := overrides{
		executions: *executions,
		views:      *views,
		armset:     *armset,
		outputDir:  *outputDir,
		format:     *format,
	}
	files := config.Files{Configs: []string{*configPath}, Thresholds: *thresholdsPath}

	cfg, err := config.LoadFiles(files)
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}
	if err := ov.apply(cfg); err != nil {
		slog.Error("invalid flags", "err", err)
		os.Exit(2)
	}

	if err := audit(cfg, !*quiet); err != nil {
		slog.Error("audit failed", "err", err)
		if !*watch || errors.Is(err, errNoData) {
			os.Exit(1)
		}
	}

	if !*watch {
		return
	}
	if len(files.Paths()) == 0 {
		slog.Error("-watch needs -config or -thresholds")
		os.Exit(2)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	err = config.Watch(ctx, files, func(updated *config.Config) {
		if err := ov.apply(updated); err != nil {
			slog.Error("invalid flags", "err", err)
			return
		}
		if err := audit(updated, !*quiet); err != nil {
			slog.Error("audit failed", "err", err)
		}
	})
	if err != nil {
		slog.Error("config watcher stopped", "err", err)
		os.Exit(1)
	}
	slog.Info("shutting down")
}

// audit runs one load, score and render cycle.
func audit(cfg *config.Config, printSummary bool) error {
	start := time.Now()

	raw, err := dataset.Load(cfg.DataSources)
	if err != nil {
		return err
	}
	ds, err := dataset.Filter(raw, cfg.Filters)
	if err != nil {
		return err
	}
	if !ds.HasExecutions() && !ds.HasViews() {
		return errNoData
	}

	summary := ds.Summary()
	slog.Info("data loaded",
		"executions", summary.ExecutionRecords,
		"views", summary.ViewRecords,
		"armset", summary.ArmsetRecords,
		"armset_loaded", ds.HasArmset(),
		"applications", summary.UniqueApplications,
	)

	sc := score.NewFromConfig(cfg).Score(ds)
	run := report.NewRun(summary, cfg.Thresholds, sc, time.Now())
	slog.Info("audit scored",
		"run_id", run.ID,
		"total", sc.Total,
		"grade", sc.Grade,
		"recommendations", len(sc.Recommendations),
	)

	paths, err := report.NewWriter(cfg.Output).Write(run)
	if err != nil {
		return err
	}
	slog.Info("audit complete", "files", len(paths), "dir", cfg.Output.Directory, "elapsed", time.Since(start))

	if printSummary {
		report.PrintSummary(os.Stdout, run)
	}
	return nil
}
