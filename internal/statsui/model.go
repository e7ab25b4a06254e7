// Package statsui provides the Bubble Tea defect dashboard.
package statsui

import (
	"bytes"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/verte-zerg/defectviz/internal/dataset"
	"github.com/verte-zerg/defectviz/internal/model"
	"github.com/verte-zerg/defectviz/internal/stats"
)

const (
	tabHeatmap = iota
	tabTable
	tabTimeline
	tabTrend
)

const (
	plotHeight        = 12
	sidebarWidth      = 26
	sidebarMinWidth   = 100
	colorBarWidth     = 24
	defaultFrameDelay = time.Second
)

var (
	accent = lipgloss.Color("#3FA7D6")
	border = lipgloss.Color("#3A4A55")

	tabStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(border).
			Foreground(lipgloss.Color("#A8B3BA"))
	activeTabStyle = tabStyle.
			BorderForeground(accent).
			Foreground(lipgloss.Color("#EEF3F6")).
			Bold(true)
	mutedStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7A84"))
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#E5534B"))
	cardStyle      = lipgloss.NewStyle().Padding(0, 1).Border(lipgloss.RoundedBorder(), true).BorderForeground(border)
	cardLabelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8A98A1"))
	titleStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#EEF3F6")).Bold(true)
	tableStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#C3CDD3"))
	activeDayStyle = lipgloss.NewStyle().Foreground(accent).Bold(true)
)

type frameMsg struct {
	id int
}

// Model implements the Bubble Tea dashboard.
type Model struct {
	ds  dataset.Dataset
	cfg model.FilterConfig

	report stats.Report
	errMsg string

	tabs       []string
	activeTab  int
	viewports  []viewport.Model
	pivotTable table.Model

	width  int
	height int

	keys keyMap
	help help.Model

	filterMode  bool
	dayInput    textinput.Model
	filterError string

	scheme int

	frame      int
	playing    bool
	frameDelay time.Duration
	tickID     int
}

// NewModel constructs a dashboard over ds. A non-positive frameDelay uses
// one second per timeline frame.
func NewModel(ds dataset.Dataset, cfg model.FilterConfig, frameDelay time.Duration) *Model {
	if frameDelay <= 0 {
		frameDelay = defaultFrameDelay
	}
	m := &Model{
		ds:         ds,
		cfg:        cfg,
		tabs:       []string{"Heatmap", "Table", "Timeline", "Trend"},
		keys:       defaultKeyMap(),
		help:       help.New(),
		frameDelay: frameDelay,
		playing:    cfg.ShowTimeline,
	}
	m.scheme = schemeIndex(cfg.ColorScheme)
	if m.scheme < 0 {
		m.scheme = schemeIndex(DefaultScheme)
	}
	m.cfg.ColorScheme = schemes[m.scheme].Name
	m.dayInput = newFilterInput("Days: ")
	m.dayInput.Placeholder = "1,2,3 (blank for all)"
	m.pivotTable = table.New(table.WithHeight(1))
	m.pivotTable.SetStyles(pivotTableStyles())
	m.initViewports()
	m.refreshReport()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	if m.playing {
		return m.tick()
	}
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		m.renderTabContents()
		return m, nil
	case frameMsg:
		if !m.playing || msg.id != m.tickID {
			return m, nil
		}
		m.stepFrame(1)
		return m, m.tick()
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.filterMode {
			return m.updateFilter(msg)
		}
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Prev):
			m.moveTab(-1)
			return m, tea.ClearScreen
		case key.Matches(msg, m.keys.Next):
			m.moveTab(1)
			return m, tea.ClearScreen
		case key.Matches(msg, m.keys.Filter):
			return m.startFilter()
		case key.Matches(msg, m.keys.NextScheme):
			m.cycleScheme(1)
			return m, nil
		case key.Matches(msg, m.keys.PrevScheme):
			m.cycleScheme(-1)
			return m, nil
		case key.Matches(msg, m.keys.ToggleHeatmap):
			m.cfg.ShowHeatmap = !m.cfg.ShowHeatmap
			m.renderTabContents()
			return m, nil
		case key.Matches(msg, m.keys.ToggleTable):
			m.cfg.ShowTable = !m.cfg.ShowTable
			m.renderTabContents()
			return m, nil
		case key.Matches(msg, m.keys.ToggleTimeline):
			m.cfg.ShowTimeline = !m.cfg.ShowTimeline
			if !m.cfg.ShowTimeline {
				m.playing = false
			}
			m.renderTabContents()
			return m, nil
		case key.Matches(msg, m.keys.Play):
			return m, m.togglePlay()
		case key.Matches(msg, m.keys.StepBack):
			m.playing = false
			m.stepFrame(-1)
			return m, nil
		case key.Matches(msg, m.keys.StepForward):
			m.playing = false
			m.stepFrame(1)
			return m, nil
		case key.Matches(msg, m.keys.Top):
			if m.activeTab == tabTable {
				m.pivotTable.GotoTop()
			} else {
				m.viewports[m.activeTab].GotoTop()
			}
			return m, nil
		case key.Matches(msg, m.keys.Bottom):
			if m.activeTab == tabTable {
				m.pivotTable.GotoBottom()
			} else {
				m.viewports[m.activeTab].GotoBottom()
			}
			return m, nil
		default:
			if m.activeTab == tabTable {
				var cmd tea.Cmd
				m.pivotTable, cmd = m.pivotTable.Update(msg)
				return m, cmd
			}
			vp := m.viewports[m.activeTab]
			var cmd tea.Cmd
			vp, cmd = vp.Update(msg)
			m.viewports[m.activeTab] = vp
			return m, cmd
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	headerHeight, bodyHeight, footerHeight := m.layoutHeights()
	return strings.Join([]string{
		fitBlock(m.renderHeader(), m.width, headerHeight),
		fitBlock(m.renderBody(bodyHeight), m.width, bodyHeight),
		fitBlock(m.renderFooter(), m.width, footerHeight),
	}, "\n")
}

// Config returns the filter state the dashboard currently renders.
func (m *Model) Config() model.FilterConfig {
	cfg := m.cfg
	cfg.Days = append([]int(nil), m.cfg.Days...)
	return cfg
}

func (m *Model) tick() tea.Cmd {
	id := m.tickID
	return tea.Tick(m.frameDelay, func(time.Time) tea.Msg {
		return frameMsg{id: id}
	})
}

func (m *Model) togglePlay() tea.Cmd {
	if !m.cfg.ShowTimeline {
		return nil
	}
	m.playing = !m.playing
	m.renderTimeline()
	if !m.playing {
		return nil
	}
	// Ticks scheduled before a pause carry a stale id and are dropped.
	m.tickID++
	return m.tick()
}

func (m *Model) stepFrame(delta int) {
	n := len(m.report.Timeline)
	if n == 0 {
		return
	}
	m.frame = ((m.frame+delta)%n + n) % n
	m.renderTimeline()
}

func (m *Model) cycleScheme(delta int) {
	count := len(schemes)
	m.scheme = ((m.scheme+delta)%count + count) % count
	m.cfg.ColorScheme = schemes[m.scheme].Name
	m.renderTabContents()
}

func (m *Model) initViewports() {
	m.viewports = make([]viewport.Model, len(m.tabs))
	for i := range m.viewports {
		m.viewports[i] = viewport.New(0, 0)
	}
}

func newFilterInput(prompt string) textinput.Model {
	input := textinput.New()
	input.Prompt = prompt
	input.CharLimit = 0
	input.Cursor.SetMode(cursor.CursorBlink)
	return input
}

// layoutHeights splits the window into tabs plus filter line, body and help.
func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	headerHeight = lipgloss.Height(m.renderTabs()) + 1
	footerHeight = 1
	if !m.filterMode && m.errMsg != "" {
		footerHeight = 2
	}
	return headerHeight, maxInt(1, m.height-headerHeight-footerHeight), footerHeight
}

func (m *Model) showSidebar() bool {
	return m.width >= sidebarMinWidth
}

func (m *Model) contentWidth() int {
	width := m.width
	if width <= 0 {
		width = 80
	}
	if m.showSidebar() {
		width -= sidebarWidth
	}
	return width
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, vpHeight, _ := m.layoutHeights()
	for i := range m.viewports {
		m.viewports[i].Width = m.contentWidth()
		m.viewports[i].Height = vpHeight
	}
	m.resizePivotTable(m.contentWidth(), vpHeight)
	promptWidth := lipgloss.Width(m.dayInput.Prompt)
	m.dayInput.Width = maxInt(10, m.width-promptWidth-2)
	m.help.Width = m.width
}

func (m *Model) moveTab(delta int) {
	count := len(m.tabs)
	m.activeTab = ((m.activeTab+delta)%count + count) % count
	if m.activeTab == tabTable {
		m.pivotTable.Focus()
	} else {
		m.pivotTable.Blur()
	}
}

func (m *Model) renderTabs() string {
	parts := make([]string, len(m.tabs))
	for i, tab := range m.tabs {
		style := tabStyle
		if i == m.activeTab {
			style = activeTabStyle
		}
		parts[i] = style.Render(tab)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) renderHeader() string {
	return m.renderTabs() + "\n" + m.renderFilterSummary()
}

func (m *Model) renderFilterSummary() string {
	days := "all"
	if len(m.cfg.Days) > 0 {
		days = stats.FormatDays(m.cfg.Days)
	}
	summary := fmt.Sprintf("Source: %s  days=%s  colors=%s  views=%s",
		m.ds.Source(), days, m.cfg.ColorScheme, m.viewsLabel())
	summary = truncateLine(summary, m.width)
	return mutedStyle.Render(summary)
}

func (m *Model) viewsLabel() string {
	views := make([]string, 0, 3)
	if m.cfg.ShowHeatmap {
		views = append(views, "heatmap")
	}
	if m.cfg.ShowTable {
		views = append(views, "table")
	}
	if m.cfg.ShowTimeline {
		views = append(views, "timeline")
	}
	if len(views) == 0 {
		return "none"
	}
	return strings.Join(views, ",")
}

func (m *Model) renderFooter() string {
	if m.filterMode {
		return m.help.View(filterKeys)
	}
	if m.errMsg != "" {
		return m.help.View(m.keys) + "\n" + errorStyle.Render(m.errMsg)
	}
	return m.help.View(m.keys)
}

func (m *Model) renderFilterForm() string {
	lines := []string{
		"Filter days (comma separated, enter to apply, esc to cancel)",
		m.dayInput.View(),
		mutedStyle.Render(fmt.Sprintf("Available: %s", stats.FormatDays(m.report.AllDays))),
	}
	if m.filterError != "" {
		lines = append(lines, errorStyle.Render(m.filterError))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderBody(height int) string {
	if m.filterMode {
		return m.renderFilterForm()
	}
	content := fitBlock(m.renderContent(), m.contentWidth(), height)
	if !m.showSidebar() {
		return content
	}
	sidebar := fitBlock(renderSidebar(m.report.Summary), sidebarWidth, height)
	return lipgloss.JoinHorizontal(lipgloss.Top, sidebar, content)
}

func (m *Model) renderContent() string {
	if m.activeTab == tabTable && m.errMsg == "" && m.cfg.ShowTable && len(m.report.Pivot.Samples) > 0 {
		return tableStyle.Render(m.pivotTable.View())
	}
	return m.viewports[m.activeTab].View()
}

func (m *Model) refreshReport() {
	// On error the report still carries the summary and available days,
	// and nothing from the previous filter.
	report, err := stats.BuildReport(m.ds, m.cfg)
	m.report = report
	m.errMsg = ""
	if err != nil {
		m.errMsg = err.Error()
	}
	if m.frame >= len(report.Timeline) {
		m.frame = 0
	}
	m.loadPivotTable()
	m.renderTabContents()
}

func (m *Model) renderTabContents() {
	if len(m.viewports) == 0 {
		return
	}
	if m.errMsg != "" {
		for i := range m.viewports {
			m.viewports[i].SetContent("Failed to build report.")
		}
		return
	}
	width := m.contentWidth()
	if m.cfg.ShowHeatmap {
		m.viewports[tabHeatmap].SetContent(renderHeatmap(m.report.Heatmap, schemes[m.scheme], width))
	} else {
		m.viewports[tabHeatmap].SetContent(hiddenView("Heatmap", "1"))
	}
	if m.cfg.ShowTable {
		m.viewports[tabTable].SetContent("No records found.")
	} else {
		m.viewports[tabTable].SetContent(hiddenView("Table", "2"))
	}
	m.renderTimeline()
	m.viewports[tabTrend].SetContent(renderTrend(m.report.Daily, width))
}

func (m *Model) renderTimeline() {
	if len(m.viewports) == 0 || m.errMsg != "" {
		return
	}
	if !m.cfg.ShowTimeline {
		m.viewports[tabTimeline].SetContent(hiddenView("Timeline", "3"))
		return
	}
	if m.report.TimelineErr != nil {
		m.viewports[tabTimeline].SetContent(errorStyle.Render("Timeline unavailable: " + m.report.TimelineErr.Error()))
		return
	}
	m.viewports[tabTimeline].SetContent(renderTimeline(m.report.Timeline, m.frame, m.playing, m.contentWidth()))
}

func hiddenView(name, toggle string) string {
	return mutedStyle.Render(fmt.Sprintf("%s hidden. Press %s to show it.", name, toggle))
}

func renderSidebar(sum model.Summary) string {
	cards := []string{
		titleStyle.Render("Dataset Information"),
		metricCard("Total Records", fmt.Sprintf("%d", sum.Records)),
		metricCard("Days", fmt.Sprintf("%d", sum.Days)),
		metricCard("Time Samples", fmt.Sprintf("%d", sum.Samples)),
		metricCard("Defects Range", fmt.Sprintf("%d - %d", sum.MinDefects, sum.MaxDefects)),
	}
	return lipgloss.JoinVertical(lipgloss.Left, cards...)
}

func metricCard(label, value string) string {
	content := fmt.Sprintf("%s\n%s", cardLabelStyle.Render(label), titleStyle.Render(value))
	return cardStyle.Width(sidebarWidth - 2).Render(content)
}

func renderHeatmap(hm stats.Heatmap, scheme Scheme, width int) string {
	if len(hm.Days) == 0 {
		return "No records found."
	}
	minVal, maxVal, _ := hm.Range()

	labelWidth := 0
	for _, day := range hm.Days {
		labelWidth = maxInt(labelWidth, lipgloss.Width(day))
	}
	valueWidth := 0
	for _, row := range hm.Values {
		for _, v := range row {
			valueWidth = maxInt(valueWidth, len(fmt.Sprintf("%.1f", v)))
		}
	}
	sampleWidth := 0
	for _, s := range hm.Samples {
		sampleWidth = maxInt(sampleWidth, lipgloss.Width(s))
	}
	cellWidth := maxInt(valueWidth, sampleWidth) + 1
	if labelWidth+1+cellWidth*len(hm.Samples) > width {
		cellWidth = valueWidth + 1
	}

	lines := []string{titleStyle.Render("Manufacturing Defects Heatmap"), ""}
	var header strings.Builder
	header.WriteString(strings.Repeat(" ", labelWidth+1))
	for _, s := range hm.Samples {
		header.WriteString(fmt.Sprintf("%*s", cellWidth, truncateLine(s, cellWidth-1)))
	}
	lines = append(lines, mutedStyle.Render(header.String()))

	for i, day := range hm.Days {
		var row strings.Builder
		row.WriteString(fmt.Sprintf("%-*s ", labelWidth, day))
		for _, v := range hm.Values[i] {
			if math.IsNaN(v) {
				row.WriteString(strings.Repeat(" ", cellWidth))
				continue
			}
			text := fmt.Sprintf("%*.1f", cellWidth, v)
			row.WriteString(cellStyle(scheme.Scale(v, minVal, maxVal)).Render(text))
		}
		lines = append(lines, row.String())
	}
	lines = append(lines,
		"",
		mutedStyle.Render("Time Samples across, Days down"),
		colorBar(scheme, minVal, maxVal, colorBarWidth)+"  "+mutedStyle.Render(scheme.Name),
	)
	return strings.Join(lines, "\n")
}

func renderTimeline(frames []model.TimelineFrame, frame int, playing bool, width int) string {
	if len(frames) == 0 {
		return "No records found."
	}
	if frame < 0 || frame >= len(frames) {
		frame = 0
	}
	var buf bytes.Buffer
	opts := stats.PlotOptions{
		Width:      stats.PlotWidthFor(width - 4),
		Height:     plotHeight,
		ForceColor: true,
	}
	if err := stats.RenderTimelineFrame(&buf, frames[frame], stats.TimelineMaxY(frames), opts); err != nil {
		return fmt.Sprintf("Failed to render timeline: %v", err)
	}
	state := "paused"
	if playing {
		state = "playing"
	}
	days := make([]string, len(frames))
	for i, f := range frames {
		if i == frame {
			days[i] = activeDayStyle.Render(f.Label)
		} else {
			days[i] = mutedStyle.Render(f.Label)
		}
	}
	status := mutedStyle.Render(fmt.Sprintf("Frame %d/%d  %s", frame+1, len(frames), state))
	return strings.TrimRight(buf.String(), "\n") + "\n\n" + status + "\n" + strings.Join(days, " ")
}

func renderTrend(daily []model.DailyStat, width int) string {
	if len(daily) == 0 {
		return "No records found."
	}
	var buf bytes.Buffer
	opts := stats.PlotOptions{
		Width:      stats.PlotWidthFor(width - 4),
		Height:     plotHeight,
		ForceColor: true,
	}
	if err := stats.RenderTrend(&buf, daily, opts); err != nil {
		return fmt.Sprintf("Failed to render trend: %v", err)
	}
	if err := stats.RenderDaily(&buf, daily); err != nil {
		return fmt.Sprintf("Failed to render daily statistics: %v", err)
	}
	return strings.TrimRight(buf.String(), "\n")
}

func buildPivotTableData(p model.PivotTable) ([]table.Column, []table.Row) {
	headers, rows := stats.PivotRows(p)
	columns := make([]table.Column, len(headers))
	for i, h := range headers {
		width := lipgloss.Width(h)
		for _, row := range rows {
			width = maxInt(width, lipgloss.Width(row[i]))
		}
		columns[i] = table.Column{Title: h, Width: width}
	}
	tableRows := make([]table.Row, len(rows))
	for i, row := range rows {
		tableRows[i] = table.Row(row)
	}
	return columns, tableRows
}

// loadPivotTable replaces the table contents with the current pivot.
func (m *Model) loadPivotTable() {
	cols, rows := buildPivotTableData(m.report.Pivot)
	// Rows must be cleared before narrowing the columns.
	m.pivotTable.SetRows(nil)
	m.pivotTable.SetColumns(cols)
	m.pivotTable.SetRows(rows)
	m.pivotTable.GotoTop()
	_, bodyHeight, _ := m.layoutHeights()
	m.resizePivotTable(m.contentWidth(), bodyHeight)
}

// resizePivotTable fits the rendered table, header included, into
// width x height cells.
func (m *Model) resizePivotTable(width, height int) {
	height = maxInt(1, height)
	m.pivotTable.SetWidth(width)
	m.pivotTable.SetHeight(height)
	if diff := lipgloss.Height(m.pivotTable.View()) - height; diff != 0 {
		m.pivotTable.SetHeight(maxInt(1, height-diff))
	}
}

func pivotTableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Bold(true).
		Foreground(accent).
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderForeground(border).
		Padding(0, 2, 0, 0)
	styles.Cell = styles.Cell.Padding(0, 2, 0, 0)
	styles.Selected = styles.Selected.
		Foreground(lipgloss.Color("#0B1A22")).
		Background(accent).
		Bold(false)
	return styles
}

func (m *Model) startFilter() (tea.Model, tea.Cmd) {
	m.filterMode = true
	m.filterError = ""
	m.dayInput.SetValue(stats.FormatDays(m.cfg.Days))
	m.dayInput.CursorEnd()
	return m, m.dayInput.Focus()
}

func (m *Model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, filterKeys.Cancel):
		m.filterMode = false
		m.filterError = ""
		m.dayInput.Blur()
		return m, nil
	case key.Matches(msg, filterKeys.Apply):
		days, err := stats.ParseDays(m.dayInput.Value())
		if err != nil {
			m.filterError = err.Error()
			return m, nil
		}
		m.cfg.Days = days
		m.filterMode = false
		m.filterError = ""
		m.dayInput.Blur()
		m.refreshReport()
		m.updateLayout()
		return m, nil
	}
	var cmd tea.Cmd
	m.dayInput, cmd = m.dayInput.Update(msg)
	return m, cmd
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// fitBlock returns exactly height lines of exactly width cells.
func fitBlock(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	lines := strings.Split(clipLines(s, width), "\n")
	out := make([]string, height)
	for i := range out {
		if i < len(lines) {
			out[i] = lines[i]
		}
		out[i] += strings.Repeat(" ", maxInt(0, width-lipgloss.Width(out[i])))
	}
	return strings.Join(out, "\n")
}

// clipLines cuts every line to width cells, keeping ANSI sequences intact.
func clipLines(s string, width int) string {
	if width <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if lipgloss.Width(line) > width {
			lines[i] = ansi.Truncate(line, width, "")
		}
	}
	return strings.Join(lines, "\n")
}

func truncateLine(s string, width int) string {
	if width <= 0 {
		return s
	}
	if lipgloss.Width(s) <= width {
		return s
	}
	if width <= 3 {
		return ansi.Truncate(s, width, "")
	}
	return ansi.Truncate(s, width, "...")
}
