package stats

import (
	"testing"
	"unicode/utf8"
)

func TestPlotWidthFor(t *testing.T) {
	total := 80
	expected := total - axisGutter - utf8.RuneCountInString(axisSeparator)
	if got := PlotWidthFor(total); got != expected {
		t.Fatalf("expected width %d, got %d", expected, got)
	}
	if got := PlotWidthFor(0); got != minPlotWidth {
		t.Fatalf("expected min width %d, got %d", minPlotWidth, got)
	}
	if got := PlotWidthFor(12); got != minPlotWidth {
		t.Fatalf("expected narrow width to clamp to %d, got %d", minPlotWidth, got)
	}
}
