package stats

import (
	"bytes"
	"math"
	"strings"
	"testing"
)

func TestPlotSeries(t *testing.T) {
	var buf bytes.Buffer
	err := PlotSeries(&buf, "Test Plot", []Series{
		{Name: "A", Values: []float64{1, 2, 3, 2, 1}},
		{Name: "B", Values: []float64{1, 1, 2, 3, 4}},
	}, PlotOptions{Width: 5, Height: 4})
	if err != nil {
		t.Fatalf("PlotSeries failed: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "Test Plot") {
		t.Fatalf("expected title in output")
	}
	if !strings.Contains(out, "Legend:") {
		t.Fatalf("expected legend in output")
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 1+4+1 {
		t.Fatalf("expected title, 4 rows and legend, got %d lines", len(lines))
	}
}

func TestPlotSeriesAxisLabels(t *testing.T) {
	var buf bytes.Buffer
	err := PlotSeries(&buf, "", []Series{
		{Name: "max", Values: []float64{4, 6}},
		{Name: "min", Values: []float64{2, 2}},
	}, PlotOptions{Width: 10, Height: 3, XLabels: []string{"Day 1", "Day 2"}})
	if err != nil {
		t.Fatalf("PlotSeries failed: %v", err)
	}
	out := buf.String()
	lines := strings.Split(out, "\n")
	if !strings.HasPrefix(lines[0], "6 │ ") {
		t.Fatalf("expected top axis label 6, got %q", lines[0])
	}
	if !strings.HasPrefix(lines[2], "2 │ ") {
		t.Fatalf("expected bottom axis label 2, got %q", lines[2])
	}
	if !strings.Contains(lines[3], "Day 1") || !strings.Contains(lines[3], "Day 2") {
		t.Fatalf("expected x labels, got %q", lines[3])
	}
}

func TestScatterPlotClampsPoints(t *testing.T) {
	var buf bytes.Buffer
	err := ScatterPlot(&buf, "frame", []float64{7, 12, 20}, []float64{1, 3, 99},
		[2]float64{8, 16.5}, [2]float64{0, 5}, PlotOptions{Width: 12, Height: 4})
	if err != nil {
		t.Fatalf("ScatterPlot failed: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "08:00") || !strings.Contains(out, "16:30") {
		t.Fatalf("expected hour labels in output: %s", out)
	}
	if strings.Count(out, "\n") != 1+4+1 {
		t.Fatalf("unexpected line count: %q", out)
	}
}

func TestPlotSeriesSkipsEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := PlotSeries(&buf, "empty", []Series{{Name: "A"}}, PlotOptions{Width: 10, Height: 2}); err != nil {
		t.Fatalf("PlotSeries failed: %v", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("expected no output, got %q", buf.String())
	}
}

func TestCanvasLineEndpoints(t *testing.T) {
	c := newCanvas(2, 1, 1)
	c.line(0, 0, 0, 3, 3, "#")
	if mask, owner := c.cell(0, 0); mask&0x01 == 0 || owner != 0 {
		t.Fatalf("expected start dot in first cell, got %08b", mask)
	}
	if mask, _ := c.cell(1, 0); mask&0x80 == 0 {
		t.Fatalf("expected end dot in last cell, got %08b", mask)
	}
}

func TestValueToRowNaN(t *testing.T) {
	if got := valueToRow(math.NaN(), 0, 1, 8); got != -1 {
		t.Fatalf("expected -1 for NaN, got %d", got)
	}
	if got := valueToRow(1, 0, 1, 8); got != 0 {
		t.Fatalf("expected top row for max value, got %d", got)
	}
}
