package dashboard

import (
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/launchdash/internal/model"
)

var recordColumns = []table.Column{
	{Title: "#", Width: 4},
	{Title: "Launch Site", Width: 14},
	{Title: "Payload (kg)", Width: 12},
	{Title: "Class", Width: 7},
	{Title: "Booster", Width: 8},
}

func buildRecordTable(records model.CorrelationSet, width, height int) table.Model {
	t := table.New(
		table.WithColumns(recordColumns),
		table.WithRows(buildRecordRows(records)),
		table.WithHeight(maxInt(1, height-1)),
	)
	t.SetWidth(width)
	t.SetStyles(recordTableStyles())
	return t
}

func buildRecordRows(records model.CorrelationSet) []table.Row {
	rows := make([]table.Row, 0, len(records))
	for i, rec := range records {
		outcome := "failure"
		if rec.Succeeded() {
			outcome = "success"
		}
		rows = append(rows, table.Row{
			fmt.Sprintf("%d", i+1),
			rec.LaunchSite,
			fmt.Sprintf("%.1f", rec.PayloadMassKg),
			outcome,
			rec.BoosterVersionCategory,
		})
	}
	return rows
}

func (m *Model) applyRecordTable() {
	m.recordTable.SetRows(buildRecordRows(m.result.Correlation))
	m.recordTable.GotoTop()
	if m.width > 0 && m.height > 0 {
		_, bodyHeight, _ := m.layoutHeights()
		m.setRecordTableSize(m.width, bodyHeight)
	}
}

func (m *Model) setRecordTableSize(width, height int) {
	viewportHeight := maxInt(1, height-1)
	if m.tableLayout.width == width && m.tableLayout.height == viewportHeight {
		return
	}
	m.tableLayout.width = width
	m.tableLayout.height = viewportHeight
	m.recordTable.SetWidth(width)
	m.recordTable.SetHeight(viewportHeight)
	viewportHeight = m.adjustRecordTableHeight(height)
	if m.tableLayout.height != viewportHeight {
		m.tableLayout.height = viewportHeight
		m.recordTable.SetHeight(viewportHeight)
	}
}

// adjustRecordTableHeight corrects for header and border rows so the rendered table fills bodyHeight.
func (m *Model) adjustRecordTableHeight(bodyHeight int) int {
	target := maxInt(1, bodyHeight)
	height := m.recordTable.Height()
	viewHeight := lipgloss.Height(m.recordTable.View())
	if viewHeight == target {
		return height
	}
	height += target - viewHeight
	if height < 1 {
		height = 1
	}
	m.recordTable.SetHeight(height)
	viewHeight = lipgloss.Height(m.recordTable.View())
	if viewHeight == target {
		return height
	}
	height += target - viewHeight
	if height < 1 {
		height = 1
	}
	return height
}

func recordTableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1).
		PaddingLeft(0)
	styles.Cell = styles.Cell.
		Padding(0, 1).
		PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	return styles
}
