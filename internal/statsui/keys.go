package statsui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Prev           key.Binding
	Next           key.Binding
	Filter         key.Binding
	NextScheme     key.Binding
	PrevScheme     key.Binding
	ToggleHeatmap  key.Binding
	ToggleTable    key.Binding
	ToggleTimeline key.Binding
	Play           key.Binding
	StepBack       key.Binding
	StepForward    key.Binding
	Top            key.Binding
	Bottom         key.Binding
	Quit           key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Prev:           key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/→", "tabs")),
		Next:           key.NewBinding(key.WithKeys("right", "l")),
		Filter:         key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "days")),
		NextScheme:     key.NewBinding(key.WithKeys("c"), key.WithHelp("c/C", "colors")),
		PrevScheme:     key.NewBinding(key.WithKeys("C")),
		ToggleHeatmap:  key.NewBinding(key.WithKeys("1"), key.WithHelp("1/2/3", "views")),
		ToggleTable:    key.NewBinding(key.WithKeys("2")),
		ToggleTimeline: key.NewBinding(key.WithKeys("3")),
		Play:           key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "play/pause")),
		StepBack:       key.NewBinding(key.WithKeys(","), key.WithHelp(",/.", "step")),
		StepForward:    key.NewBinding(key.WithKeys(".")),
		Top:            key.NewBinding(key.WithKeys("g", "home")),
		Bottom:         key.NewBinding(key.WithKeys("G", "end")),
		Quit:           key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Prev, k.Filter, k.NextScheme, k.ToggleHeatmap, k.Play, k.StepBack, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

type filterKeyMap struct {
	Apply  key.Binding
	Cancel key.Binding
}

func (k filterKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Apply, k.Cancel}
}

func (k filterKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

var filterKeys = filterKeyMap{
	Apply:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "apply")),
	Cancel: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
}
