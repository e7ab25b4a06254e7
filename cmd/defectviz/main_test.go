package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/BurntSushi/toml"
)

const sampleCSV = "Day,Sample,Defects\n1,08:00,3\n1,09:00,5\n2,08:00,1\n"

func setupEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	path := filepath.Join(dir, "defects.csv")
	if err := os.WriteFile(path, []byte(sampleCSV), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestPivotCSVCommand(t *testing.T) {
	path := setupEnv(t)
	out, err := run(t, "pivot", "--csv", "--data", path)
	if err != nil {
		t.Fatalf("pivot failed: %v", err)
	}
	want := "Hour,defects_day_1,defects_day_2\n08:00,3,1\n09:00,5,\n"
	if out != want {
		t.Fatalf("expected %q, got %q", want, out)
	}
}

func TestHeatmapCommand(t *testing.T) {
	path := setupEnv(t)
	out, err := run(t, "heatmap", "--data", path)
	if err != nil {
		t.Fatalf("heatmap failed: %v", err)
	}
	if !strings.Contains(out, "Manufacturing Defects Heatmap") || !strings.Contains(out, "█ 5.0") {
		t.Fatalf("unexpected heatmap: %q", out)
	}
}

func TestSummaryIgnoresDayFilter(t *testing.T) {
	path := setupEnv(t)
	out, err := run(t, "summary", "--data", path, "--days", "2")
	if err != nil {
		t.Fatalf("summary failed: %v", err)
	}
	if !strings.Contains(out, "Total Records: 3") || !strings.Contains(out, "Defects Range: 1 - 5") {
		t.Fatalf("unexpected summary: %q", out)
	}
}

func TestDailyCommandUsesConfigDays(t *testing.T) {
	path := setupEnv(t)
	cfgPath := filepath.Join(os.Getenv("XDG_CONFIG_HOME"), "defectviz", "config.toml")
	if err := os.MkdirAll(filepath.Dir(cfgPath), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	cfg := "[dashboard]\ndays = [2]\ndata = \"" + filepath.ToSlash(path) + "\"\n"
	if err := os.WriteFile(cfgPath, []byte(cfg), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	out, err := run(t, "daily")
	if err != nil {
		t.Fatalf("daily failed: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header and one day, got %q", out)
	}
	if !strings.HasSuffix(lines[1], "n/a") {
		t.Fatalf("expected n/a std for a single record, got %q", lines[1])
	}
}

func TestInputRequired(t *testing.T) {
	setupEnv(t)
	if _, err := run(t, "summary"); err == nil {
		t.Fatalf("expected error without input")
	}
}

func TestInputExclusive(t *testing.T) {
	path := setupEnv(t)
	if _, err := run(t, "summary", "--data", path, "--dataset", "x"); err == nil {
		t.Fatalf("expected error for --data with --dataset")
	}
}

func TestBadDays(t *testing.T) {
	path := setupEnv(t)
	if _, err := run(t, "pivot", "--data", path, "--days", "1,x"); err == nil {
		t.Fatalf("expected error for invalid days")
	}
}

func TestRejectDuplicates(t *testing.T) {
	csvPath := setupEnv(t)
	path := filepath.Join(filepath.Dir(csvPath), "dup.csv")
	if err := os.WriteFile(path, []byte("Day,Sample,Defects\n1,08:00,3\n1,08:00,4\n"), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	if _, err := run(t, "pivot", "--data", path, "--duplicates", "reject"); err == nil {
		t.Fatalf("expected duplicate error")
	}
	out, err := run(t, "pivot", "--csv", "--data", path)
	if err != nil {
		t.Fatalf("pivot failed: %v", err)
	}
	if !strings.Contains(out, "08:00,4") {
		t.Fatalf("expected last value to win, got %q", out)
	}
}

func TestSummaryWithRejectedDuplicates(t *testing.T) {
	csvPath := setupEnv(t)
	path := filepath.Join(filepath.Dir(csvPath), "dup.csv")
	if err := os.WriteFile(path, []byte("Day,Sample,Defects\n1,08:00,3\n1,08:00,4\n"), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	out, err := run(t, "summary", "--data", path, "--duplicates", "reject")
	if err != nil {
		t.Fatalf("summary failed: %v", err)
	}
	if !strings.Contains(out, "Total Records: 2") || !strings.Contains(out, "Defects Range: 3 - 4") {
		t.Fatalf("unexpected summary: %q", out)
	}
}

func TestNonClockSamples(t *testing.T) {
	csvPath := setupEnv(t)
	dir := filepath.Dir(csvPath)
	path := filepath.Join(dir, "labels.csv")
	if err := os.WriteFile(path, []byte("Day,Sample,Defects\n1,S1,2\n2,S1,4\n"), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	out, err := run(t, "pivot", "--csv", "--data", path)
	if err != nil {
		t.Fatalf("pivot failed: %v", err)
	}
	if out != "Hour,defects_day_1,defects_day_2\nS1,2,4\n" {
		t.Fatalf("unexpected pivot: %q", out)
	}
	outDir := filepath.Join(dir, "out")
	if _, err := run(t, "export", "--data", path, "--out", outDir); err != nil {
		t.Fatalf("export failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(outDir, "timeline.png")); !os.IsNotExist(err) {
		t.Fatalf("expected timeline.png to be skipped, got %v", err)
	}
	if _, err := os.Stat(filepath.Join(outDir, "pivot.csv")); err != nil {
		t.Fatalf("expected pivot.csv: %v", err)
	}
}

func TestImportListDelete(t *testing.T) {
	path := setupEnv(t)
	if _, err := run(t, "import", "line-a", path); err != nil {
		t.Fatalf("import failed: %v", err)
	}
	out, err := run(t, "datasets")
	if err != nil {
		t.Fatalf("datasets failed: %v", err)
	}
	if !strings.Contains(out, "line-a") {
		t.Fatalf("expected dataset in listing: %q", out)
	}
	out, err = run(t, "pivot", "--csv", "--dataset", "line-a")
	if err != nil {
		t.Fatalf("pivot from store failed: %v", err)
	}
	if !strings.HasPrefix(out, "Hour,defects_day_1,defects_day_2\n") {
		t.Fatalf("unexpected pivot: %q", out)
	}
	if _, err := run(t, "delete", "line-a"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := run(t, "delete", "line-a"); err == nil {
		t.Fatalf("expected not found on second delete")
	}
}

func TestDemoAndExport(t *testing.T) {
	setupEnv(t)
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "demo.csv")
	if _, err := run(t, "demo", "--out", csvPath, "--day-count", "3", "--seed", "7"); err != nil {
		t.Fatalf("demo failed: %v", err)
	}
	outDir := filepath.Join(dir, "out")
	if _, err := run(t, "export", "--data", csvPath, "--out", outDir); err != nil {
		t.Fatalf("export failed: %v", err)
	}
	for _, name := range []string{"pivot.csv", "trend.png", "timeline.png"} {
		if _, err := os.Stat(filepath.Join(outDir, name)); err != nil {
			t.Fatalf("expected %s: %v", name, err)
		}
	}
}

func TestDefaultConfigTemplateDecodes(t *testing.T) {
	tmpl := defaultConfigTemplate()
	var uncommented []string
	for _, line := range strings.Split(tmpl, "\n") {
		if strings.HasPrefix(line, "# ") && strings.Contains(line, " = ") {
			line = strings.TrimPrefix(line, "# ")
		}
		uncommented = append(uncommented, line)
	}
	var decoded map[string]any
	if _, err := toml.Decode(strings.Join(uncommented, "\n"), &decoded); err != nil {
		t.Fatalf("template does not decode: %v", err)
	}
	dash, ok := decoded["dashboard"].(map[string]any)
	if !ok {
		t.Fatalf("expected dashboard section")
	}
	for _, key := range []string{"data", "dataset", "days", "colors", "show-heatmap", "show-table", "show-timeline", "duplicates", "frame-ms"} {
		if _, ok := dash[key]; !ok {
			t.Fatalf("template is missing %q", key)
		}
	}
}
