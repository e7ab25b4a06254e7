package stats

import (
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/verte-zerg/defectviz/internal/model"
)

const shadeChars = " ░▒▓█"

// RenderSummary prints the dataset information block.
func RenderSummary(w io.Writer, sum model.Summary) error {
	lines := []string{
		"Dataset Information",
		fmt.Sprintf("Total Records: %d", sum.Records),
		fmt.Sprintf("Days: %d", sum.Days),
		fmt.Sprintf("Time Samples: %d", sum.Samples),
		fmt.Sprintf("Defects Range: %d - %d", sum.MinDefects, sum.MaxDefects),
		"",
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// PivotRows returns the pivot as header and string rows, sample label first.
// Empty cells are blank.
func PivotRows(p model.PivotTable) ([]string, [][]string) {
	headers := make([]string, 0, len(p.Columns)+1)
	headers = append(headers, "Hour")
	for _, col := range p.Columns {
		headers = append(headers, col.Name)
	}
	rows := make([][]string, 0, len(p.Samples))
	for i, sample := range p.Samples {
		row := make([]string, 0, len(p.Columns)+1)
		row = append(row, sample)
		for _, col := range p.Columns {
			row = append(row, formatCell(col.Cells[i]))
		}
		rows = append(rows, row)
	}
	return headers, rows
}

func formatCell(c model.Cell) string {
	if !c.OK {
		return ""
	}
	return strconv.Itoa(c.Defects)
}

// RenderPivot prints the pivot table with one row per sample.
func RenderPivot(w io.Writer, p model.PivotTable) error {
	if len(p.Samples) == 0 {
		_, err := fmt.Fprintln(w, "No records found.")
		return err
	}
	headers, rows := PivotRows(p)
	rightAlign := make(map[int]bool, len(headers))
	for i := 1; i < len(headers); i++ {
		rightAlign[i] = true
	}
	return writeLines(w, formatTable(headers, rows, rightAlign))
}

// DailyRows returns the daily statistics as header and string rows.
func DailyRows(daily []model.DailyStat) ([]string, [][]string) {
	headers := []string{"Day", "Count", "Mean", "Max", "Min", "Std"}
	rows := make([][]string, 0, len(daily))
	for _, d := range daily {
		rows = append(rows, []string{
			strconv.Itoa(d.Day),
			strconv.Itoa(d.Count),
			fmt.Sprintf("%.2f", d.Mean),
			strconv.Itoa(d.Max),
			strconv.Itoa(d.Min),
			FormatStd(d.Std),
		})
	}
	return headers, rows
}

// FormatStd formats a standard deviation; NaN prints as n/a.
func FormatStd(v float64) string {
	if math.IsNaN(v) {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", v)
}

// RenderDaily prints per-day statistics.
func RenderDaily(w io.Writer, daily []model.DailyStat) error {
	if len(daily) == 0 {
		_, err := fmt.Fprintln(w, "No records found.")
		return err
	}
	headers, rows := DailyRows(daily)
	rightAlign := map[int]bool{0: true, 1: true, 2: true, 3: true, 4: true, 5: true}
	return writeLines(w, formatTable(headers, rows, rightAlign))
}

// RenderTrend plots mean, max and min per day on a shared axis.
func RenderTrend(w io.Writer, daily []model.DailyStat, opts PlotOptions) error {
	if len(daily) == 0 {
		return nil
	}
	means := make([]float64, len(daily))
	maxes := make([]float64, len(daily))
	mins := make([]float64, len(daily))
	labels := make([]string, len(daily))
	for i, d := range daily {
		means[i] = d.Mean
		maxes[i] = float64(d.Max)
		mins[i] = float64(d.Min)
		labels[i] = DayLabel(d.Day)
	}
	opts.XLabels = labels
	return PlotSeries(w, "Daily Defects Statistics Trend", []Series{
		{Name: "mean", Values: means},
		{Name: "max", Values: maxes},
		{Name: "min", Values: mins},
	}, opts)
}

// RenderHeatmap prints the heatmap as a shaded grid, one line per day.
func RenderHeatmap(w io.Writer, hm Heatmap) error {
	if len(hm.Days) == 0 {
		_, err := fmt.Fprintln(w, "No records found.")
		return err
	}
	minVal, maxVal, _ := hm.Range()
	headers := append([]string{"Days"}, hm.Samples...)
	rows := make([][]string, 0, len(hm.Days))
	for i, day := range hm.Days {
		row := make([]string, 0, len(hm.Samples)+1)
		row = append(row, day)
		for _, v := range hm.Values[i] {
			if math.IsNaN(v) {
				row = append(row, "")
				continue
			}
			row = append(row, fmt.Sprintf("%c %.1f", ShadeFor(v, minVal, maxVal), v))
		}
		rows = append(rows, row)
	}
	rightAlign := make(map[int]bool, len(headers))
	for i := 1; i < len(headers); i++ {
		rightAlign[i] = true
	}
	if _, err := fmt.Fprintln(w, "Manufacturing Defects Heatmap"); err != nil {
		return err
	}
	return writeLines(w, formatTable(headers, rows, rightAlign))
}

// ShadeFor maps v within [minVal, maxVal] to a block shade glyph.
func ShadeFor(v, minVal, maxVal float64) rune {
	shades := []rune(shadeChars)
	return shades[Level(v, minVal, maxVal, len(shades))]
}

// Level maps v within [minVal, maxVal] to a bucket in [0, levels).
func Level(v, minVal, maxVal float64, levels int) int {
	if levels <= 1 || math.IsNaN(v) {
		return 0
	}
	if maxVal-minVal < 1e-9 {
		return levels / 2
	}
	pos := (v - minVal) / (maxVal - minVal)
	idx := int(math.Round(pos * float64(levels-1)))
	if idx < 0 {
		idx = 0
	}
	if idx >= levels {
		idx = levels - 1
	}
	return idx
}

// RenderTimelineFrame plots one day of the timeline on the shared axes.
func RenderTimelineFrame(w io.Writer, frame model.TimelineFrame, maxY int, opts PlotOptions) error {
	xs := make([]float64, len(frame.Points))
	ys := make([]float64, len(frame.Points))
	for i, p := range frame.Points {
		xs[i] = p.Hour
		ys[i] = float64(p.Defects)
	}
	title := fmt.Sprintf("Manufacturing Defects Timeline: %s", frame.Label)
	return ScatterPlot(w, title, xs, ys,
		[2]float64{TimelineHourMin, TimelineHourMax},
		[2]float64{0, float64(maxY)},
		opts)
}

func writeLines(w io.Writer, lines []string) error {
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// WriteTable prints rows under headers with aligned columns. Columns listed
// in rightAlign are right aligned.
func WriteTable(w io.Writer, headers []string, rows [][]string, rightAlign map[int]bool) error {
	return writeLines(w, formatTable(headers, rows, rightAlign))
}
