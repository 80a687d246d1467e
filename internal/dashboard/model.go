// Package dashboard provides the Bubble Tea launch records dashboard.
package dashboard

import (
	"bytes"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/launchdash/internal/chart"
	"github.com/verte-zerg/launchdash/internal/dataset"
	"github.com/verte-zerg/launchdash/internal/logging"
	"github.com/verte-zerg/launchdash/internal/model"
	"github.com/verte-zerg/launchdash/internal/query"
)

const (
	tabSuccess = iota
	tabCorrelation
	tabRecords
)

const (
	dashboardTitle = "SpaceX Launch Records Dashboard"
	plotHeight     = 10
	defaultWidth   = 80
)

const (
	inputSite = iota
	inputPayloadMin
	inputPayloadMax
)

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	titleStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	headerStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	tableMutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
)

// Model implements the Bubble Tea dashboard UI.
type Model struct {
	ds     *dataset.Dataset
	slider chart.Slider
	logger *slog.Logger

	sel         model.FilterSelection
	result      query.Result
	siteOptions []model.SiteOption

	tabs        []string
	activeTab   int
	viewports   []viewport.Model
	recordTable table.Model
	tableLayout tableLayout

	width  int
	height int

	filterMode   bool
	filterInputs []textinput.Model
	filterIndex  int
	filterError  string
}

type tableLayout struct {
	width  int
	height int
}

// NewModel constructs a dashboard model showing sel.
func NewModel(ds *dataset.Dataset, sel model.FilterSelection, slider chart.Slider, logger *slog.Logger) *Model {
	if logger == nil {
		logger = logging.Discard()
	}
	m := &Model{
		ds:          ds,
		slider:      slider,
		logger:      logger,
		siteOptions: ds.SiteOptions(),
		tabs:        []string{"Success", "Correlation", "Records"},
	}
	m.initInputs()
	m.initViewports()
	m.recordTable = buildRecordTable(nil, 0, 1)
	m.apply(sel)
	return m
}

// Selection returns the filter selection currently shown.
func (m *Model) Selection() model.FilterSelection {
	return m.sel
}

// Result returns the query result currently shown.
func (m *Model) Result() query.Result {
	return m.result
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
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
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.filterMode {
			return m.updateFilter(msg)
		}
		switch msg.String() {
		case "q":
			return m, tea.Quit
		case "left", "h":
			m.moveTab(-1)
			return m, tea.ClearScreen
		case "right", "l":
			m.moveTab(1)
			return m, tea.ClearScreen
		case "]":
			m.cycleSite(1)
			return m, nil
		case "[":
			m.cycleSite(-1)
			return m, nil
		case "=":
			m.shiftPayload(false, 1)
			return m, nil
		case "-":
			m.shiftPayload(false, -1)
			return m, nil
		case "+":
			m.shiftPayload(true, 1)
			return m, nil
		case "_":
			m.shiftPayload(true, -1)
			return m, nil
		case "r":
			m.apply(query.DefaultSelection(m.ds))
			return m, nil
		case "/":
			return m.startFilter()
		case "g", "home":
			if m.activeTab == tabRecords {
				m.recordTable.GotoTop()
			} else {
				m.viewports[m.activeTab].GotoTop()
			}
			return m, nil
		case "G", "end":
			if m.activeTab == tabRecords {
				m.recordTable.GotoBottom()
			} else {
				m.viewports[m.activeTab].GotoBottom()
			}
			return m, nil
		default:
			if m.activeTab == tabRecords {
				var cmd tea.Cmd
				m.recordTable, cmd = m.recordTable.Update(msg)
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
	header := fitLines(m.renderHeader(), m.width, headerHeight)
	body := fitLines(m.renderBody(bodyHeight), m.width, bodyHeight)
	footer := fitLines(m.renderFooter(), m.width, footerHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

// apply recomputes both result sets for sel and redraws every tab.
func (m *Model) apply(sel model.FilterSelection) {
	m.sel = sel
	m.result = query.Evaluate(m.ds, sel)
	m.logger.Debug("filter applied",
		"site", sel.Site,
		"payload_low", sel.Payload.Low,
		"payload_high", sel.Payload.High,
		"success_groups", len(m.result.Success.Slices),
		"correlation_rows", len(m.result.Correlation),
	)
	m.applyRecordTable()
	m.renderTabContents()
}

func (m *Model) siteIndex() int {
	for i, opt := range m.siteOptions {
		if opt.Value == m.sel.Site {
			return i
		}
	}
	return 0
}

func (m *Model) cycleSite(delta int) {
	count := len(m.siteOptions)
	if count == 0 {
		return
	}
	next := (m.siteIndex() + delta + count) % count
	sel := m.sel
	sel.Site = m.siteOptions[next].Value
	m.apply(sel)
}

func (m *Model) shiftPayload(lower bool, steps int) {
	sel := m.sel
	if lower {
		sel.Payload = m.slider.ShiftLow(sel.Payload, steps)
	} else {
		sel.Payload = m.slider.ShiftHigh(sel.Payload, steps)
	}
	if sel == m.sel {
		return
	}
	m.apply(sel)
}

func (m *Model) initViewports() {
	m.viewports = make([]viewport.Model, len(m.tabs))
	for i := range m.viewports {
		m.viewports[i] = viewport.New(0, 0)
	}
}

func (m *Model) initInputs() {
	m.filterInputs = []textinput.Model{
		newFilterInput("Site (ALL or name): "),
		newFilterInput("Payload min (kg): "),
		newFilterInput("Payload max (kg): "),
	}
}

func newFilterInput(prompt string) textinput.Model {
	input := textinput.New()
	input.Prompt = prompt
	input.CharLimit = 0
	input.Cursor.SetMode(cursor.CursorBlink)
	return input
}

func (m *Model) setInputsFromSelection() {
	m.filterInputs[inputSite].SetValue(m.sel.Site)
	m.filterInputs[inputPayloadMin].SetValue(formatPayload(m.sel.Payload.Low))
	m.filterInputs[inputPayloadMax].SetValue(formatPayload(m.sel.Payload.High))
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	tabsHeight := lipgloss.Height(activeNavStyle.Render("X"))
	if tabsHeight < 1 {
		tabsHeight = 1
	}
	headerHeight = tabsHeight + 2
	footerHeight = 1
	bodyHeight = m.height - headerHeight - footerHeight
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	return headerHeight, bodyHeight, footerHeight
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, vpHeight, _ := m.layoutHeights()
	for i := range m.viewports {
		m.viewports[i].Width = m.width
		m.viewports[i].Height = vpHeight
	}
	m.setRecordTableSize(m.width, vpHeight)
	for i := range m.filterInputs {
		promptWidth := lipgloss.Width(m.filterInputs[i].Prompt)
		m.filterInputs[i].Width = maxInt(10, m.width-promptWidth-2)
	}
}

func (m *Model) moveTab(delta int) {
	count := len(m.tabs)
	if count == 0 {
		return
	}
	next := m.activeTab + delta
	if next < 0 {
		next = count - 1
	}
	if next >= count {
		next = 0
	}
	m.activeTab = next
	if m.activeTab == tabRecords {
		m.recordTable.Focus()
	} else {
		m.recordTable.Blur()
	}
}

func (m *Model) renderTabs() string {
	parts := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		if i == m.activeTab {
			parts = append(parts, activeNavStyle.Render(tab))
		} else {
			parts = append(parts, inactiveNavStyle.Render(tab))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) renderHeader() string {
	title := padLines(titleStyle.Render(truncateLine(dashboardTitle, m.width)), m.width)
	tabs := padLines(m.renderTabs(), m.width)
	filters := padLines(m.renderFilterSummary(), m.width)
	return title + "\n" + tabs + "\n" + filters
}

func (m *Model) renderFilterSummary() string {
	site := m.sel.Site
	for _, opt := range m.siteOptions {
		if opt.Value == site {
			site = opt.Label
			break
		}
	}
	summary := fmt.Sprintf("Filters: site=%s  payload=%s..%s kg  matches=%d/%d",
		site,
		formatPayload(m.sel.Payload.Low),
		formatPayload(m.sel.Payload.High),
		len(m.result.Correlation),
		m.ds.Len(),
	)
	return headerStyle.Render(truncateLine(summary, m.width))
}

func (m *Model) renderHelp() string {
	help := "Nav: left/right  Site: [/]  Max: -/=  Min: _/+  Filters: /  Reset: r  Quit: q"
	return headerStyle.Render(truncateLine(help, m.width))
}

func (m *Model) renderFilterHelp() string {
	return headerStyle.Render("tab/shift+tab: next field  enter: apply  esc: cancel")
}

func (m *Model) renderFooter() string {
	if m.filterMode {
		return m.renderFilterHelp()
	}
	return m.renderHelp()
}

func (m *Model) renderFilterForm() string {
	lines := []string{"Filters (enter to apply, esc to cancel)"}
	for _, input := range m.filterInputs {
		lines = append(lines, input.View())
	}
	sites := make([]string, 0, len(m.siteOptions))
	for _, opt := range m.siteOptions {
		sites = append(sites, opt.Value)
	}
	lines = append(lines, headerStyle.Render("Sites: "+strings.Join(sites, ", ")))
	lines = append(lines, headerStyle.Render(fmt.Sprintf("Payload bounds: %s..%s kg",
		formatPayload(m.ds.MinPayload()), formatPayload(m.ds.MaxPayload()))))
	if m.filterError != "" {
		lines = append(lines, errorStyle.Render(m.filterError))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderBody(height int) string {
	if m.filterMode {
		return fitLines(m.renderFilterForm(), m.width, height)
	}
	if m.activeTab == tabRecords {
		if len(m.result.Correlation) == 0 {
			return fitLines("No launches match the current filters.", m.width, height)
		}
		view := tableMutedStyle.Render(m.recordTable.View())
		return fitLines(view, m.width, height)
	}
	return fitLines(m.viewports[m.activeTab].View(), m.width, height)
}

func (m *Model) renderTabContents() {
	if len(m.viewports) == 0 {
		return
	}
	width := m.width
	if width <= 0 {
		width = defaultWidth
	}
	specs := chart.FromResult(m.result)
	m.viewports[tabSuccess].SetContent(renderSpec(specs[0], width))
	m.viewports[tabCorrelation].SetContent(renderSpec(specs[1], width))
}

func renderSpec(spec chart.Spec, width int) string {
	var buf bytes.Buffer
	opts := chart.Options{Width: width, Height: plotHeight, ForceColor: true}
	if err := chart.Render(&buf, spec, opts); err != nil {
		return fmt.Sprintf("Failed to render chart: %v", err)
	}
	return strings.TrimRight(buf.String(), "\n")
}

func (m *Model) startFilter() (tea.Model, tea.Cmd) {
	m.filterMode = true
	m.filterError = ""
	m.setInputsFromSelection()
	return m, m.setFilterIndex(0)
}

func (m *Model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.filterMode = false
		m.filterError = ""
		return m, nil
	case tea.KeyEnter:
		sel, err := m.parseFilter()
		if err != nil {
			m.filterError = err.Error()
			return m, nil
		}
		m.filterMode = false
		m.filterError = ""
		m.apply(sel)
		return m, nil
	case tea.KeyTab:
		return m, m.setFilterIndex(m.filterIndex + 1)
	case tea.KeyShiftTab:
		return m, m.setFilterIndex(m.filterIndex - 1)
	}
	var cmd tea.Cmd
	m.filterInputs[m.filterIndex], cmd = m.filterInputs[m.filterIndex].Update(msg)
	return m, cmd
}

func (m *Model) setFilterIndex(idx int) tea.Cmd {
	count := len(m.filterInputs)
	if count == 0 {
		return nil
	}
	if idx < 0 {
		idx = count - 1
	}
	if idx >= count {
		idx = 0
	}
	m.filterIndex = idx
	var cmd tea.Cmd
	for i := range m.filterInputs {
		if i == m.filterIndex {
			cmd = m.filterInputs[i].Focus()
		} else {
			m.filterInputs[i].Blur()
		}
	}
	return cmd
}

// parseFilter validates the filter form. Blank payload fields fall back to the dataset bounds.
func (m *Model) parseFilter() (model.FilterSelection, error) {
	site := strings.TrimSpace(m.filterInputs[inputSite].Value())
	switch {
	case site == "" || strings.EqualFold(site, model.AllSites):
		site = model.AllSites
	case !m.ds.HasSite(site):
		return model.FilterSelection{}, fmt.Errorf("unknown site %q", site)
	}

	low, err := parsePayload(m.filterInputs[inputPayloadMin].Value(), m.ds.MinPayload())
	if err != nil {
		return model.FilterSelection{}, fmt.Errorf("invalid payload min (use a number)")
	}
	high, err := parsePayload(m.filterInputs[inputPayloadMax].Value(), m.ds.MaxPayload())
	if err != nil {
		return model.FilterSelection{}, fmt.Errorf("invalid payload max (use a number)")
	}
	if low > high {
		return model.FilterSelection{}, fmt.Errorf("payload min must not exceed payload max")
	}
	return model.FilterSelection{Site: site, Payload: model.PayloadRange{Low: low, High: high}}, nil
}

func parsePayload(input string, fallback float64) (float64, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return fallback, nil
	}
	return strconv.ParseFloat(input, 64)
}

func formatPayload(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func padLines(s string, width int) string {
	if width <= 0 || s == "" {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	return strings.Join(lines, "\n")
}

func padLine(line string, width int) string {
	lineWidth := lipgloss.Width(line)
	if lineWidth < width {
		return line + strings.Repeat(" ", width-lineWidth)
	}
	return line
}

func fitLines(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}

func truncateLine(s string, width int) string {
	if width <= 0 {
		return s
	}
	return runewidth.Truncate(s, width, "...")
}
