package statsui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
)

// Scheme is a sequential color scale sampled by interpolating between
// stops in Lab space.
type Scheme struct {
	Name  string
	stops []colorful.Color
}

var schemes = []Scheme{
	newScheme("YlGnBu", "#ffffd9", "#edf8b1", "#c7e9b4", "#7fcdbb", "#41b6c4", "#1d91c0", "#225ea8", "#253494", "#081d58"),
	newScheme("viridis", "#440154", "#482878", "#3e4989", "#31688e", "#26828e", "#1f9e89", "#35b779", "#6ece58", "#b5de2b", "#fde725"),
	newScheme("plasma", "#0d0887", "#46039f", "#7201a8", "#9c179e", "#bd3786", "#d8576b", "#ed7953", "#fb9f3a", "#fdca26", "#f0f921"),
	newScheme("inferno", "#000004", "#1b0c41", "#4a0c6b", "#781c6d", "#a52c60", "#cf4446", "#ed6925", "#fb9b06", "#f7d13d", "#fcffa4"),
	newScheme("magma", "#000004", "#180f3d", "#440f76", "#721f81", "#9e2f7f", "#cd4071", "#f1605d", "#fd9668", "#feca8d", "#fcfdbf"),
	newScheme("Blues", "#f7fbff", "#deebf7", "#c6dbef", "#9ecae1", "#6baed6", "#4292c6", "#2171b5", "#08519c", "#08306b"),
	newScheme("Reds", "#fff5f0", "#fee0d2", "#fcbba1", "#fc9272", "#fb6a4a", "#ef3b2c", "#cb181d", "#a50f15", "#67000d"),
}

func newScheme(name string, hexes ...string) Scheme {
	stops := make([]colorful.Color, len(hexes))
	for i, h := range hexes {
		c, err := colorful.Hex(h)
		if err != nil {
			panic(fmt.Sprintf("scheme %s: %v", name, err))
		}
		stops[i] = c
	}
	return Scheme{Name: name, stops: stops}
}

// SchemeNames lists the available color schemes in picker order.
func SchemeNames() []string {
	names := make([]string, len(schemes))
	for i, s := range schemes {
		names[i] = s.Name
	}
	return names
}

// DefaultScheme is used when no scheme is configured.
const DefaultScheme = "YlGnBu"

// LookupScheme finds a scheme by case-insensitive name.
func LookupScheme(name string) (Scheme, bool) {
	idx := schemeIndex(name)
	if idx < 0 {
		return Scheme{}, false
	}
	return schemes[idx], true
}

func schemeIndex(name string) int {
	for i, s := range schemes {
		if strings.EqualFold(s.Name, strings.TrimSpace(name)) {
			return i
		}
	}
	return -1
}

// At returns the scale color at t in [0, 1]. Values outside are clamped.
func (s Scheme) At(t float64) colorful.Color {
	if len(s.stops) == 0 {
		return colorful.Color{}
	}
	if math.IsNaN(t) || t <= 0 {
		return s.stops[0]
	}
	if t >= 1 {
		return s.stops[len(s.stops)-1]
	}
	pos := t * float64(len(s.stops)-1)
	i := int(pos)
	return s.stops[i].BlendLab(s.stops[i+1], pos-float64(i)).Clamped()
}

// Scale maps v within [minVal, maxVal] to a color. A flat range maps to the
// middle of the scale.
func (s Scheme) Scale(v, minVal, maxVal float64) colorful.Color {
	if maxVal-minVal < 1e-9 {
		return s.At(0.5)
	}
	return s.At((v - minVal) / (maxVal - minVal))
}

// cellStyle colors a heatmap cell and picks a readable foreground.
func cellStyle(bg colorful.Color) lipgloss.Style {
	fg := "#F0F0F0"
	if l, _, _ := bg.Lab(); l > 0.6 {
		fg = "#1A1A1A"
	}
	return lipgloss.NewStyle().
		Background(lipgloss.Color(bg.Hex())).
		Foreground(lipgloss.Color(fg))
}

// colorBar renders the scale as a strip of width cells with end labels.
func colorBar(s Scheme, minVal, maxVal float64, width int) string {
	if width < 2 {
		width = 2
	}
	var b strings.Builder
	for i := 0; i < width; i++ {
		t := float64(i) / float64(width-1)
		b.WriteString(lipgloss.NewStyle().Background(lipgloss.Color(s.At(t).Hex())).Render(" "))
	}
	return fmt.Sprintf("%.1f %s %.1f", minVal, b.String(), maxVal)
}
