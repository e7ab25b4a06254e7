package stats

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/term"
)

// Series represents a named data series for plotting.
type Series struct {
	Name   string
	Values []float64
}

// PlotOptions controls the size of a plot.
type PlotOptions struct {
	Width  int
	Height int
	// ForceColor emits ANSI colors even when w is not a terminal.
	ForceColor bool
	// XLabels names the points; the first and last are printed below the plot.
	XLabels []string
}

type valueRange struct {
	min float64
	max float64
}

const (
	defaultPlotHeight   = 10
	minPlotWidth        = 10
	axisGutter          = 4
	axisSeparator       = " │ "
	colorReset          = "\x1b[0m"
	terminalWidthBackup = 80
)

// Dash patterns keep overlapping series apart when color is off.
// '#' plots a dot column, '.' skips it.
var dashPatterns = []struct {
	name    string
	pattern string
}{
	{"solid", "#"},
	{"dashed", "###..."},
	{"dotted", "#..."},
}

var seriesColors = []string{
	"\x1b[34m", // blue
	"\x1b[31m", // red
	"\x1b[32m", // green
	"\x1b[36m", // cyan
	"\x1b[35m", // magenta
}

// brailleBits[x][y] is the dot bit for sub-cell column x and row y.
var brailleBits = [2][4]uint8{
	{0x01, 0x02, 0x04, 0x40},
	{0x08, 0x10, 0x20, 0x80},
}

// canvas is a braille grid with one dot layer per series. Dot coordinates
// are twice the cell width and four times the cell height.
type canvas struct {
	width  int
	height int
	layers [][][]uint8
}

func newCanvas(width, height, layers int) *canvas {
	c := &canvas{width: width, height: height, layers: make([][][]uint8, layers)}
	for i := range c.layers {
		c.layers[i] = make([][]uint8, height)
		for y := range c.layers[i] {
			c.layers[i][y] = make([]uint8, width)
		}
	}
	return c
}

func (c *canvas) dotsX() int { return c.width * 2 }
func (c *canvas) dotsY() int { return c.height * 4 }

func (c *canvas) set(layer, x, y int) {
	if x < 0 || y < 0 || x >= c.dotsX() || y >= c.dotsY() {
		return
	}
	c.layers[layer][y/4][x/2] |= brailleBits[x%2][y%4]
}

// line draws a Bresenham segment; pattern filters the dot columns.
func (c *canvas) line(layer, x0, y0, x1, y1 int, pattern string) {
	dx, dy := absInt(x1-x0), -absInt(y1-y0)
	sx, sy := sign(x1-x0), sign(y1-y0)
	e := dx + dy
	for {
		if pattern[x0%len(pattern)] == '#' {
			c.set(layer, x0, y0)
		}
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

// cell merges the layers at a cell; the lowest layer with a dot picks the color.
func (c *canvas) cell(x, y int) (uint8, int) {
	var mask uint8
	owner := -1
	for i, layer := range c.layers {
		if bits := layer[y][x]; bits != 0 {
			mask |= bits
			if owner < 0 {
				owner = i
			}
		}
	}
	return mask, owner
}

func (c *canvas) write(w io.Writer, axisLabels []string, labelWidth int, useColor bool) error {
	for y := 0; y < c.height; y++ {
		var row strings.Builder
		row.WriteString(fmt.Sprintf("%*s%s", labelWidth, axisLabels[y], axisSeparator))
		for x := 0; x < c.width; x++ {
			mask, owner := c.cell(x, y)
			ch := rune(0x2800 + int(mask))
			if useColor && owner >= 0 {
				row.WriteString(seriesColors[owner%len(seriesColors)])
				row.WriteRune(ch)
				row.WriteString(colorReset)
				continue
			}
			row.WriteRune(ch)
		}
		if _, err := fmt.Fprintln(w, row.String()); err != nil {
			return err
		}
	}
	return nil
}

func (o PlotOptions) size() (width, height int) {
	height = o.Height
	if height <= 0 {
		height = defaultPlotHeight
	}
	width = o.Width
	if width <= 0 {
		width = PlotWidthFor(terminalWidth())
	}
	if width < minPlotWidth {
		width = minPlotWidth
	}
	return width, height
}

// PlotSeries draws every series as a line on one value axis. Points are
// spread evenly across the width.
func PlotSeries(w io.Writer, title string, series []Series, opts PlotOptions) error {
	kept := make([]Series, 0, len(series))
	for _, s := range series {
		if len(s.Values) > 0 {
			kept = append(kept, s)
		}
	}
	if len(kept) == 0 {
		return nil
	}
	width, height := opts.size()
	r := sharedRange(kept)
	c := newCanvas(width, height, len(kept))
	for i, s := range kept {
		pattern := dashPatterns[i%len(dashPatterns)].pattern
		prevX, prevY := -1, -1
		for j, v := range s.Values {
			y := valueToRow(v, r.min, r.max, c.dotsY())
			if y < 0 {
				prevX = -1
				continue
			}
			x := spreadX(j, len(s.Values), c.dotsX())
			if prevX < 0 {
				c.set(i, x, y)
			} else {
				c.line(i, prevX, prevY, x, y, pattern)
			}
			prevX, prevY = x, y
		}
	}

	useColor := shouldUseColor(w, opts.ForceColor)
	labels := valueAxisLabels(height, r)
	labelWidth := maxRuneCount(labels)
	if title != "" {
		if _, err := fmt.Fprintln(w, title); err != nil {
			return err
		}
	}
	if err := c.write(w, labels, labelWidth, useColor); err != nil {
		return err
	}
	if line := xAxisLine(opts.XLabels, labelWidth, width); line != "" {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "%s\n\n", legend(kept, useColor))
	return err
}

// ScatterPlot renders points as braille dots on fixed x and y ranges.
// Points outside the ranges are clamped to the border.
func ScatterPlot(w io.Writer, title string, xs, ys []float64, xRange, yRange [2]float64, opts PlotOptions) error {
	width, height := opts.size()
	yr := padRange(yRange[0], yRange[1])
	xr := padRange(xRange[0], xRange[1])
	c := newCanvas(width, height, 1)
	for i := 0; i < len(xs) && i < len(ys); i++ {
		pos := (xs[i] - xr.min) / (xr.max - xr.min)
		x := clampInt(int(math.Round(pos*float64(c.dotsX()-1))), 0, c.dotsX()-1)
		c.set(0, x, valueToRow(ys[i], yr.min, yr.max, c.dotsY()))
	}

	labels := valueAxisLabels(height, yr)
	labelWidth := maxRuneCount(labels)
	if title != "" {
		if _, err := fmt.Fprintln(w, title); err != nil {
			return err
		}
	}
	if err := c.write(w, labels, labelWidth, shouldUseColor(w, opts.ForceColor)); err != nil {
		return err
	}
	line := xAxisLine([]string{formatHour(xRange[0]), formatHour(xRange[1])}, labelWidth, width)
	_, err := fmt.Fprintln(w, line)
	return err
}

// PlotWidthFor computes a plot width that fits within the total available width.
func PlotWidthFor(totalWidth int) int {
	if totalWidth <= 0 {
		return minPlotWidth
	}
	plotWidth := totalWidth - axisGutter - utf8.RuneCountInString(axisSeparator)
	if plotWidth < minPlotWidth {
		plotWidth = minPlotWidth
	}
	return plotWidth
}

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}

func shouldUseColor(w io.Writer, force bool) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if force {
		return true
	}
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}

// valueAxisLabels labels the top, middle and bottom rows.
func valueAxisLabels(height int, r valueRange) []string {
	labels := make([]string, height)
	if height <= 0 {
		return labels
	}
	labels[0] = formatAxisValue(r.max)
	if height > 2 {
		labels[height/2] = formatAxisValue(r.min + (r.max-r.min)/2)
	}
	if height > 1 {
		labels[height-1] = formatAxisValue(r.min)
	}
	return labels
}

func formatAxisValue(v float64) string {
	if v == math.Trunc(v) {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%.1f", v)
}

func formatHour(h float64) string {
	total := int(math.Round(h * 60))
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}

func xAxisLine(labels []string, labelWidth, width int) string {
	if len(labels) == 0 {
		return ""
	}
	indent := strings.Repeat(" ", labelWidth+utf8.RuneCountInString(axisSeparator))
	first, last := labels[0], labels[len(labels)-1]
	if len(labels) == 1 {
		return indent + first
	}
	gap := width - utf8.RuneCountInString(first) - utf8.RuneCountInString(last)
	return indent + first + strings.Repeat(" ", maxInt(gap, 1)) + last
}

func legend(series []Series, useColor bool) string {
	parts := make([]string, len(series))
	for i, s := range series {
		label := fmt.Sprintf("⠁ %s (%s)", s.Name, dashPatterns[i%len(dashPatterns)].name)
		if useColor {
			label = seriesColors[i%len(seriesColors)] + label + colorReset
		}
		parts[i] = label
	}
	return "Legend: " + strings.Join(parts, "  ")
}

// spreadX places point i of n evenly across dots columns.
func spreadX(i, n, dots int) int {
	if n <= 1 {
		return dots / 2
	}
	return int(math.Round(float64(i) * float64(dots-1) / float64(n-1)))
}

// seriesMinMax ignores NaN values.
func seriesMinMax(values []float64) (float64, float64) {
	minVal, maxVal := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		minVal = math.Min(minVal, v)
		maxVal = math.Max(maxVal, v)
	}
	if math.IsInf(minVal, 1) {
		return 0, 0
	}
	return minVal, maxVal
}

func sharedRange(series []Series) valueRange {
	minVal, maxVal := math.Inf(1), math.Inf(-1)
	for _, s := range series {
		lo, hi := seriesMinMax(s.Values)
		minVal = math.Min(minVal, lo)
		maxVal = math.Max(maxVal, hi)
	}
	return padRange(minVal, maxVal)
}

func padRange(minVal, maxVal float64) valueRange {
	if math.Abs(maxVal-minVal) < 1e-9 {
		minVal--
		maxVal++
	}
	return valueRange{min: minVal, max: maxVal}
}

// valueToRow maps v to a dot row; row 0 is the top. NaN maps to -1.
func valueToRow(v, minVal, maxVal float64, rows int) int {
	if math.IsNaN(v) {
		return -1
	}
	if rows <= 1 {
		return 0
	}
	pos := (v - minVal) / (maxVal - minVal)
	return clampInt(int(math.Round((1-pos)*float64(rows-1))), 0, rows-1)
}

func maxRuneCount(labels []string) int {
	n := 0
	for _, l := range labels {
		n = maxInt(n, utf8.RuneCountInString(l))
	}
	return n
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}
