package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/foodlog/internal/constants"
)

var tabNames = []string{"Logs", "Today", "Account"}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string
	switch m.state {
	case constants.StateLogs:
		content = m.logList.View()
	case constants.StateToday:
		content = m.todayModel.View()
	case constants.StateAccount:
		content = m.accountModel.View()
	case constants.StateScanAnalyzing:
		content = m.viewAnalyzing()
	case constants.StateScanReview:
		content = m.viewReview()
	case constants.StateDetail:
		content = m.viewDetail()
	case constants.StateConfirmDelete:
		content = m.viewConfirmDelete()
	default:
		content = m.viewForm()
	}

	sections := []string{m.viewTabs()}
	if banner := m.viewBanner(); banner != "" {
		sections = append(sections, banner)
	}
	sections = append(sections, docStyle.Render(content), m.help.View(m))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// activeTab is the tab a sub-view belongs to.
func (m Model) activeTab() constants.SessionState {
	if isMainView(m.state) {
		return m.state
	}
	if isMainView(m.previousState) {
		return m.previousState
	}
	return constants.StateLogs
}

func (m Model) viewTabs() string {
	active := m.activeTab()
	tabs := make([]string, len(tabNames))
	for i, name := range tabNames {
		if constants.SessionState(i) == active {
			tabs[i] = activeTabStyle.Render(name)
		} else {
			tabs[i] = inactiveTabStyle.Render(name)
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) viewBanner() string {
	var lines []string
	if err := m.logs.LastPersistError(); err != nil {
		lines = append(lines, warningStyle.Render(fmt.Sprintf("⚠ Changes are kept in memory only: %v", err)))
	}
	if m.statusMsg != "" {
		lines = append(lines, statusStyle.Render(m.statusMsg))
	}
	return strings.Join(lines, "\n")
}

func (m Model) viewForm() string {
	if m.form == nil {
		return ""
	}
	if m.formError != "" {
		return lipgloss.JoinVertical(lipgloss.Left, m.form.View(), "", dangerStyle.Render(m.formError))
	}
	return m.form.View()
}

func kilobytes(n int) float64 {
	return float64(n) / 1024
}

func (m Model) viewAnalyzing() string {
	var size int
	if m.scan != nil {
		size = len(m.scan.Image())
	}
	return fmt.Sprintf("%s Analyzing photo (%.1f KB)...\n\nPress esc to cancel.", m.spinner.View(), kilobytes(size))
}

func (m Model) viewReview() string {
	var size int
	if m.scan != nil {
		size = len(m.scan.Image())
	}
	header := lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("Review the suggested entry"),
		warningStyle.Render("Nothing is saved until you submit. Press esc to discard."),
		fmt.Sprintf("Photo attached (%.1f KB)", kilobytes(size)),
		"",
	)
	return header + "\n" + m.viewForm()
}

func detailRow(label, value string) string {
	return fmt.Sprintf("%s %s", labelStyle.Render(label), valueStyle.Render(value))
}

func (m Model) viewDetail() string {
	log, ok := m.logs.Get(m.selectedID)
	if !ok {
		return "Entry not found. Press esc to go back."
	}

	rows := []string{
		titleStyle.Render(log.DisplayName()),
		"",
		detailRow("ID:", log.ID),
		detailRow("Logged:", log.Date.In(m.logs.Location()).Format("Mon Jan 2, 2006 15:04")),
	}
	if w, isWater := log.Water(); isWater {
		rows = append(rows, detailRow("Amount:", m.settings.FormatWater(w.AmountLiters)))
	} else {
		f, _ := log.Food()
		image := "none"
		if len(f.Image) > 0 {
			image = fmt.Sprintf("attached (%.1f KB)", kilobytes(len(f.Image)))
		}
		rows = append(rows,
			detailRow("Calories:", fmt.Sprintf("%.0f kcal", f.Calories)),
			detailRow("Protein:", fmt.Sprintf("%.1fg", f.Protein)),
			detailRow("Carbs:", fmt.Sprintf("%.1fg", f.Carbs)),
			detailRow("Fats:", fmt.Sprintf("%.1fg", f.Fats)),
			detailRow("Image:", image),
		)
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (m Model) viewConfirmDelete() string {
	name := "this entry"
	if log, ok := m.logs.Get(m.selectedID); ok {
		name = fmt.Sprintf("%q", log.DisplayName())
	}
	return lipgloss.Place(m.width, m.height-4,
		lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Center,
			dangerStyle.Render(fmt.Sprintf("Are you sure you want to delete %s?", name)),
			"",
			"[y] Yes",
			"[n] No",
		),
	)
}
