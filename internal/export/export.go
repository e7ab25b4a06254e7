// Package export writes dashboard views to files: PNG charts and pivot CSV.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/verte-zerg/defectviz/internal/model"
	"github.com/verte-zerg/defectviz/internal/stats"
)

const (
	chartWidth  = 1200
	chartHeight = 500
)

var frameColors = []drawing.Color{
	chart.ColorBlue,
	chart.ColorRed,
	chart.ColorGreen,
	chart.ColorOrange,
	chart.ColorCyan,
	chart.ColorYellow,
	chart.ColorAlternateGray,
}

func lineStyle(col drawing.Color) chart.Style {
	return chart.Style{
		StrokeColor: col,
		StrokeWidth: 2,
		DotColor:    col,
		DotWidth:    3,
	}
}

func pointStyle(col drawing.Color) chart.Style {
	return chart.Style{
		StrokeWidth: chart.Disabled,
		DotWidth:    5,
		DotColor:    col,
	}
}

// WriteTrendPNG renders daily mean, max and min as a line chart.
func WriteTrendPNG(w io.Writer, daily []model.DailyStat) error {
	if len(daily) == 0 {
		return fmt.Errorf("no daily statistics to plot")
	}
	xs := make([]float64, len(daily))
	means := make([]float64, len(daily))
	maxes := make([]float64, len(daily))
	mins := make([]float64, len(daily))
	ticks := make([]chart.Tick, len(daily))
	for i, d := range daily {
		xs[i] = float64(d.Day)
		means[i] = d.Mean
		maxes[i] = float64(d.Max)
		mins[i] = float64(d.Min)
		ticks[i] = chart.Tick{Value: float64(d.Day), Label: fmt.Sprintf("%d", d.Day)}
	}
	yMin, yMax := mins[0], maxes[0]
	for i := range daily {
		yMin = math.Min(yMin, mins[i])
		yMax = math.Max(yMax, maxes[i])
	}
	if yMax-yMin < 1e-9 {
		// go-chart rejects a zero-height range.
		yMin, yMax = yMin-1, yMax+1
	}
	if len(daily) == 1 {
		// A single day still needs a non-zero x range.
		xs = append(xs, xs[0]+1)
		means = append(means, means[0])
		maxes = append(maxes, maxes[0])
		mins = append(mins, mins[0])
	}

	graph := chart.Chart{
		Title:      "Daily Defects Statistics Trend",
		Width:      chartWidth,
		Height:     chartHeight,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		XAxis:      chart.XAxis{Name: "Day", Ticks: ticks},
		YAxis: chart.YAxis{
			Name:  "Number of Defects",
			Range: &chart.ContinuousRange{Min: yMin, Max: yMax},
		},
		Series: []chart.Series{
			chart.ContinuousSeries{Name: "mean", XValues: xs, YValues: means, Style: lineStyle(chart.ColorBlue)},
			chart.ContinuousSeries{Name: "max", XValues: xs, YValues: maxes, Style: lineStyle(chart.ColorRed)},
			chart.ContinuousSeries{Name: "min", XValues: xs, YValues: mins, Style: lineStyle(chart.ColorGreen)},
		},
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}
	return graph.Render(chart.PNG, w)
}

// WriteTimelinePNG renders every timeline frame as a scatter series on
// shared time-of-day axes.
func WriteTimelinePNG(w io.Writer, frames []model.TimelineFrame) error {
	if len(frames) == 0 {
		return fmt.Errorf("no timeline frames to plot")
	}
	series := make([]chart.Series, 0, len(frames))
	for i, f := range frames {
		xs := make([]float64, len(f.Points))
		ys := make([]float64, len(f.Points))
		for j, p := range f.Points {
			xs[j] = p.Hour
			ys[j] = float64(p.Defects)
		}
		series = append(series, chart.ContinuousSeries{
			Name:    f.Label,
			XValues: xs,
			YValues: ys,
			Style:   pointStyle(frameColors[i%len(frameColors)]),
		})
	}
	graph := chart.Chart{
		Title:      "Manufacturing Defects Timeline",
		Width:      chartWidth,
		Height:     chartHeight,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		XAxis: chart.XAxis{
			Name:  "Time of Day (Hours)",
			Range: &chart.ContinuousRange{Min: stats.TimelineHourMin, Max: stats.TimelineHourMax},
		},
		YAxis: chart.YAxis{
			Name:  "Number of Defects",
			Range: &chart.ContinuousRange{Min: 0, Max: float64(stats.TimelineMaxY(frames))},
		},
		Series: series,
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}
	return graph.Render(chart.PNG, w)
}

// WritePivotCSV writes the pivot table with an Hour column followed by
// one column per day. Empty cells are written as empty fields.
func WritePivotCSV(w io.Writer, p model.PivotTable) error {
	headers, rows := stats.PivotRows(p)
	writer := csv.NewWriter(w)
	if err := writer.Write(headers); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if err := writer.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write rows: %w", err)
	}
	return nil
}

// Files names the outputs written by WriteAll.
type Files struct {
	Pivot    string
	Trend    string
	Timeline string
}

// WriteAll writes pivot.csv, trend.png and timeline.png into dir. Charts
// are skipped when there is nothing to plot.
func WriteAll(dir string, report stats.Report) (Files, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Files{}, fmt.Errorf("failed to create output dir: %w", err)
	}
	var files Files
	files.Pivot = filepath.Join(dir, "pivot.csv")
	if err := writeFile(files.Pivot, func(w io.Writer) error { return WritePivotCSV(w, report.Pivot) }); err != nil {
		return Files{}, err
	}
	if len(report.Daily) > 0 {
		files.Trend = filepath.Join(dir, "trend.png")
		if err := writeFile(files.Trend, func(w io.Writer) error { return WriteTrendPNG(w, report.Daily) }); err != nil {
			return Files{}, err
		}
	}
	if len(report.Timeline) > 0 {
		files.Timeline = filepath.Join(dir, "timeline.png")
		if err := writeFile(files.Timeline, func(w io.Writer) error { return WriteTimelinePNG(w, report.Timeline) }); err != nil {
			return Files{}, err
		}
	}
	return files, nil
}

func writeFile(path string, write func(io.Writer) error) error {
	tmpFile, err := os.CreateTemp(filepath.Dir(path), "export-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()
	if err := write(tmpFile); err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	return nil
}
