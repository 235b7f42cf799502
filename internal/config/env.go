package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variables that override file-based settings.
const (
	EnvExecutionsCSV = "AUDIT_EXECUTIONS_CSV"
	EnvViewsCSV      = "AUDIT_VIEWS_CSV"
	EnvArmsetCSV     = "AUDIT_ARMSET_CSV"
	EnvOutputDir     = "AUDIT_OUTPUT_DIR"
	EnvFormats       = "AUDIT_OUTPUT_FORMATS"
	EnvMaxFindings   = "AUDIT_MAX_FINDINGS"
)

// LoadDotenv reads KEY=VALUE pairs from the given .env files into the process
// environment. Variables that are already set are not overwritten. Missing
// files are skipped.
func LoadDotenv(files ...string) {
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			slog.Warn("config: could not read env file", "path", f, "err", err)
			continue
		}
		slog.Debug("config: loaded env file", "path", f)
	}
}

// applyEnv overlays AUDIT_* environment variables onto cfg.
func applyEnv(cfg *Config) error {
	if v := os.Getenv(EnvExecutionsCSV); v != "" {
		cfg.DataSources.ExecutionsCSV = v
	}
	if v := os.Getenv(EnvViewsCSV); v != "" {
		cfg.DataSources.ViewsCSV = v
	}
	if v := os.Getenv(EnvArmsetCSV); v != "" {
		cfg.DataSources.ArmsetCSV = v
	}
	if v := os.Getenv(EnvOutputDir); v != "" {
		cfg.Output.Directory = v
	}
	if v := os.Getenv(EnvFormats); v != "" {
		cfg.Output.Formats = splitList(v)
	}
	if v := os.Getenv(EnvMaxFindings); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvMaxFindings, err)
		}
		cfg.Output.MaxFindingsPerCategory = n
	}
	return nil
}

// splitList parses a comma-separated list, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
