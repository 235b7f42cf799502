package main

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/obsidianstack/reliability-audit/internal/config"
)

func TestOverrides_Apply(t *testing.T) {
	tests := []struct {
		name    string
		ov      overrides
		want    []string
		wantErr bool
	}{
		{"no format keeps config", overrides{}, []string{config.FormatCSV, config.FormatHTML}, false},
		{"single format", overrides{format: config.FormatProm}, []string{config.FormatProm}, false},
		{"all formats", overrides{format: formatAll}, []string{config.FormatCSV, config.FormatHTML, config.FormatProm, config.FormatJSON}, false},
		{"unknown format", overrides{format: "xml"}, nil, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Defaults()
			err := tc.ov.apply(cfg)
			if tc.wantErr {
				if err == nil {
					t.Fatal("apply() error = nil, want error")
				}
				return
			}
			if err != nil {
				t.Fatalf("apply() error = %v", err)
			}
			if strings.Join(cfg.Output.Formats, ",") != strings.Join(tc.want, ",") {
				t.Errorf("formats = %v, want %v", cfg.Output.Formats, tc.want)
			}
		})
	}
}

func TestOverrides_Paths(t *testing.T) {
	cfg := config.Defaults()
	cfg.DataSources.ViewsCSV = "views.csv"

	ov := overrides{executions: "exec.csv", outputDir: "reports"}
	if err := ov.apply(cfg); err != nil {
		t.Fatalf("apply() error = %v", err)
	}
	if cfg.DataSources.ExecutionsCSV != "exec.csv" || cfg.Output.Directory != "reports" {
		t.Errorf("overrides not applied: %+v %+v", cfg.DataSources, cfg.Output)
	}
	if cfg.DataSources.ViewsCSV != "views.csv" {
		t.Errorf("empty override replaced views path: %q", cfg.DataSources.ViewsCSV)
	}
}

func TestAudit_NoData(t *testing.T) {
	cfg := config.Defaults()
	cfg.DataSources = config.DataSources{ExecutionsCSV: t.TempDir() + "/missing.csv"}
	cfg.Output.Directory = t.TempDir()

	if err := audit(cfg, false); !errors.Is(err, errNoData) {
		t.Errorf("audit() error = %v, want errNoData", err)
	}
}

func TestAudit_WritesReports(t *testing.T) {
	dir := t.TempDir()
	execs := filepath.Join(dir, "executions.csv")
	content := "application,metric_id,metric_name,execution_time,computed_rows,nb_dims,jobType,scoped_level,day\n" +
		"Finance,m1,Revenue,3800,120,3,Formula,FullyScoped,2024-03-04\n" +
		"Finance,m2,Costs,42000,900,11,Formula,NoChange,2024-03-05\n"
	if err := os.WriteFile(execs, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := config.Defaults()
	cfg.DataSources.ExecutionsCSV = execs
	cfg.Output.Directory = filepath.Join(dir, "out")
	cfg.Output.Formats = []string{config.FormatJSON}

	if err := audit(cfg, false); err != nil {
		t.Fatalf("audit() error = %v", err)
	}
	matches, err := filepath.Glob(filepath.Join(cfg.Output.Directory, "audit_*.json"))
	if err != nil || len(matches) != 1 {
		t.Fatalf("json reports = %v (err %v), want one", matches, err)
	}
}
