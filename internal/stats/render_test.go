package stats

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/verte-zerg/defectviz/internal/model"
)

func TestRenderPivot(t *testing.T) {
	p, err := Pivot(exampleRecords(), model.DuplicateLastWins)
	if err != nil {
		t.Fatalf("Pivot failed: %v", err)
	}
	var buf bytes.Buffer
	if err := RenderPivot(&buf, p); err != nil {
		t.Fatalf("RenderPivot failed: %v", err)
	}
	lines := strings.Split(buf.String(), "\n")
	if lines[0] != "Hour  defects_day_1 defects_day_2" {
		t.Fatalf("unexpected header: %q", lines[0])
	}
	if lines[1] != "08:00             3             1" {
		t.Fatalf("unexpected first row: %q", lines[1])
	}
	if lines[2] != "09:00             5              " {
		t.Fatalf("unexpected second row: %q", lines[2])
	}
}

func TestRenderDailyNaN(t *testing.T) {
	var buf bytes.Buffer
	err := RenderDaily(&buf, []model.DailyStat{{Day: 1, Count: 1, Mean: 3, Max: 3, Min: 3, Std: math.NaN()}})
	if err != nil {
		t.Fatalf("RenderDaily failed: %v", err)
	}
	if !strings.Contains(buf.String(), "n/a") {
		t.Fatalf("expected n/a for NaN std: %s", buf.String())
	}
}

func TestRenderSummary(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderSummary(&buf, Summarize(exampleRecords())); err != nil {
		t.Fatalf("RenderSummary failed: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Total Records: 3", "Days: 2", "Time Samples: 2", "Defects Range: 1 - 5"} {
		if !strings.Contains(out, want) {
			t.Fatalf("summary missing %q: %s", want, out)
		}
	}
}

func TestRenderHeatmapAndTrend(t *testing.T) {
	p, err := Pivot(exampleRecords(), model.DuplicateLastWins)
	if err != nil {
		t.Fatalf("Pivot failed: %v", err)
	}
	var buf bytes.Buffer
	if err := RenderHeatmap(&buf, HeatmapFromPivot(p)); err != nil {
		t.Fatalf("RenderHeatmap failed: %v", err)
	}
	if !strings.Contains(buf.String(), "█ 5.0") {
		t.Fatalf("expected darkest shade on max value: %s", buf.String())
	}
	buf.Reset()
	if err := RenderTrend(&buf, DailyStats(exampleRecords()), PlotOptions{Width: 20, Height: 4}); err != nil {
		t.Fatalf("RenderTrend failed: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "mean") || !strings.Contains(out, "Day 1") {
		t.Fatalf("trend output missing legend or labels: %s", out)
	}
}

func TestLevel(t *testing.T) {
	if got := Level(0, 0, 10, 5); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
	if got := Level(10, 0, 10, 5); got != 4 {
		t.Fatalf("expected 4, got %d", got)
	}
	if got := Level(3, 3, 3, 5); got != 2 {
		t.Fatalf("expected middle level for flat range, got %d", got)
	}
}
