package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/verte-zerg/launchdash/internal/chart"
	"github.com/verte-zerg/launchdash/internal/config"
	"github.com/verte-zerg/launchdash/internal/dataset"
	"github.com/verte-zerg/launchdash/internal/model"
)

const testCSV = `Flight Number,Launch Site,class,Payload Mass (kg),Booster Version,Booster Version Category
1,CCAFS LC-40,0,0,F9 v1.0 B0003,v1.0
2,CCAFS LC-40,1,525,F9 v1.0 B0005,v1.0
3,VAFB SLC-4E,1,500,F9 v1.1 B1003,v1.1
4,KSC LC-39A,1,2490,F9 FT B1031.1,FT
`

func setupEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(dir, "state"))
	path := filepath.Join(dir, "launches.csv")
	if err := os.WriteFile(path, []byte(testCSV), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	return path
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestResolveSite(t *testing.T) {
	ds, err := dataset.FromRecords("mem", []model.LaunchRecord{
		{LaunchSite: "CCAFS LC-40", PayloadMassKg: 0, Class: 0, BoosterVersionCategory: "v1.0"},
		{LaunchSite: "VAFB SLC-4E", PayloadMassKg: 500, Class: 1, BoosterVersionCategory: "v1.1"},
	})
	if err != nil {
		t.Fatalf("build dataset: %v", err)
	}
	cases := []struct {
		in, want string
	}{
		{"", model.AllSites},
		{"all", model.AllSites},
		{"ALL", model.AllSites},
		{"VAFB SLC-4E", "VAFB SLC-4E"},
	}
	for _, tc := range cases {
		got, err := resolveSite(tc.in, ds)
		if err != nil {
			t.Fatalf("resolveSite(%q): %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("resolveSite(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
	_, err = resolveSite("KSC LC-39A", ds)
	if err == nil || !strings.Contains(err.Error(), "unknown site") || !strings.Contains(err.Error(), "VAFB SLC-4E") {
		t.Fatalf("expected unknown site error listing sites, got %v", err)
	}
}

func TestValidateOptions(t *testing.T) {
	low, high := 3000.0, 1000.0
	base := options{DataPath: "x.csv", Format: formatCSV, DBPath: "x.db", SliderMax: 10000, SliderStep: 1000, LogLevel: "info"}

	if err := validateOptions(base); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	bad := []options{
		func() options { o := base; o.Format = "parquet"; return o }(),
		func() options { o := base; o.SliderStep = 0; return o }(),
		func() options { o := base; o.LogLevel = "loud"; return o }(),
		func() options { o := base; o.PayloadMin = &low; o.PayloadMax = &high; return o }(),
	}
	for i, opts := range bad {
		if err := validateOptions(opts); err == nil {
			t.Fatalf("case %d: expected error", i)
		}
	}
}

func TestDefaultConfigTemplateDecodes(t *testing.T) {
	dir := t.TempDir()
	commented := filepath.Join(dir, "commented.toml")
	if err := os.WriteFile(commented, []byte(defaultConfigTemplate()), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := config.LoadConfig(commented)
	if err != nil {
		t.Fatalf("template is not valid toml: %v", err)
	}
	if cfg.Dataset.Path != nil || cfg.Log.Level != nil {
		t.Fatalf("commented template should set nothing: %+v", cfg)
	}

	var lines []string
	for _, line := range strings.Split(defaultConfigTemplate(), "\n") {
		line = strings.TrimPrefix(line, "# ")
		if strings.HasPrefix(line, "launchdash") || strings.HasPrefix(line, "Uncomment") {
			continue
		}
		if i := strings.Index(line, "  #"); i >= 0 {
			line = line[:i]
		}
		lines = append(lines, line)
	}
	uncommented := filepath.Join(dir, "uncommented.toml")
	if err := os.WriteFile(uncommented, []byte(strings.Join(lines, "\n")), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err = config.LoadConfig(uncommented)
	if err != nil {
		t.Fatalf("uncommented template is not valid: %v", err)
	}
	if cfg.Dashboard.SliderStep == nil || *cfg.Dashboard.SliderStep != chart.DefaultSliderStep {
		t.Fatalf("unexpected slider step: %v", cfg.Dashboard.SliderStep)
	}
	if cfg.Dataset.Format == nil || *cfg.Dataset.Format != formatCSV {
		t.Fatalf("unexpected dataset format: %v", cfg.Dataset.Format)
	}
}

func TestExportJSON(t *testing.T) {
	path := setupEnv(t)
	out, err := runCLI(t, "export", "--data", path, "--site", "CCAFS LC-40", "--log-level", "error")
	if err != nil {
		t.Fatalf("export: %v\n%s", err, out)
	}
	var specs []chart.Spec
	if err := json.Unmarshal([]byte(out), &specs); err != nil {
		t.Fatalf("decode export: %v\n%s", err, out)
	}
	if len(specs) != 2 {
		t.Fatalf("expected 2 specs, got %d", len(specs))
	}
	if specs[0].Title != "Total Success Launches for site CCAFS LC-40" {
		t.Fatalf("unexpected pie title %q", specs[0].Title)
	}
	if len(specs[1].Rows) != 2 {
		t.Fatalf("expected 2 scatter rows, got %d", len(specs[1].Rows))
	}
}

func TestExportPayloadRange(t *testing.T) {
	path := setupEnv(t)
	out, err := runCLI(t, "export", "--data", path, "--payload-min", "400", "--payload-max", "600", "--log-level", "error")
	if err != nil {
		t.Fatalf("export: %v\n%s", err, out)
	}
	var specs []chart.Spec
	if err := json.Unmarshal([]byte(out), &specs); err != nil {
		t.Fatalf("decode export: %v\n%s", err, out)
	}
	// The success chart ignores the payload range.
	if len(specs[0].Rows) != 3 {
		t.Fatalf("expected 3 pie rows, got %d", len(specs[0].Rows))
	}
	scatter := specs[1]
	if scatter.Title != "Correlation between Payload and Success for all Sites" {
		t.Fatalf("unexpected scatter title %q", scatter.Title)
	}
	if len(scatter.Rows) != 2 {
		t.Fatalf("expected 2 scatter rows, got %d", len(scatter.Rows))
	}
	for _, row := range scatter.Rows {
		if row[model.ColumnLaunchSite] == "KSC LC-39A" {
			t.Fatalf("payload filter not applied: %v", row)
		}
	}
}

func TestExportYAML(t *testing.T) {
	path := setupEnv(t)
	out, err := runCLI(t, "export", "--data", path, "--as", "yaml", "--log-level", "error")
	if err != nil {
		t.Fatalf("export: %v\n%s", err, out)
	}
	for _, want := range []string{"kind: pie", "kind: scatter", "title: Total Success Launches by Site"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in yaml:\n%s", want, out)
		}
	}
}

func TestImportThenLoadFromSQLite(t *testing.T) {
	path := setupEnv(t)
	dbPath := filepath.Join(t.TempDir(), "launchdash.db")

	if _, err := runCLI(t, "sites", "--format", "sqlite", "--db", dbPath, "--log-level", "error"); err == nil {
		t.Fatalf("expected error before import")
	} else {
		var loadErr *dataset.LoadError
		if !errors.As(err, &loadErr) {
			t.Fatalf("expected LoadError, got %T: %v", err, err)
		}
	}

	if out, err := runCLI(t, "import", "--from", path, "--db", dbPath, "--log-level", "error"); err != nil {
		t.Fatalf("import: %v\n%s", err, out)
	}
	out, err := runCLI(t, "sites", "--format", "sqlite", "--db", dbPath, "--log-level", "error")
	if err != nil {
		t.Fatalf("sites: %v\n%s", err, out)
	}
	want := "ALL\tAll Sites\nCCAFS LC-40\tCCAFS LC-40\nVAFB SLC-4E\tVAFB SLC-4E\nKSC LC-39A\tKSC LC-39A\npayload\t0.0..2490.0 kg\n"
	if out != want {
		t.Fatalf("unexpected sites output:\n%q\nwant:\n%q", out, want)
	}
}

func TestMissingDatasetFails(t *testing.T) {
	setupEnv(t)
	_, err := runCLI(t, "summary", "--data", filepath.Join(t.TempDir(), "missing.csv"), "--log-level", "error")
	var loadErr *dataset.LoadError
	if !errors.As(err, &loadErr) {
		t.Fatalf("expected LoadError, got %v", err)
	}
}
