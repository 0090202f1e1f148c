package today

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/foodlog/internal/models"
	"github.com/julianstephens/foodlog/internal/summary"
)

const barWidth = 30

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Width(10)

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Bold(true)

	emptyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)

	proteinStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	carbsStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	fatsStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("204"))
	waterStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("45"))
)

// Model renders the daily totals, macro split, water progress and the
// recent history.
type Model struct {
	viewport viewport.Model
	Today    summary.DaySummary
	History  []summary.DaySummary
	Settings models.Settings
	width    int
	height   int
}

func New(width, height int) Model {
	return Model{viewport: viewport.New(width, height)}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	return m.viewport.View()
}

func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height
	m.Render()
}

// SetSummary replaces the displayed data. history is oldest first and
// normally ends with today.
func (m *Model) SetSummary(today summary.DaySummary, history []summary.DaySummary, settings models.Settings) {
	m.Today = today
	m.History = history
	m.Settings = settings
	m.Render()
}

func bar(share float64, width int, style lipgloss.Style) string {
	filled := int(share*float64(width) + 0.5)
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return style.Render(strings.Repeat("█", filled)) + strings.Repeat("░", width-filled)
}

func (m *Model) Render() {
	s := m.Today
	var b strings.Builder

	b.WriteString(titleStyle.Render(s.Date.Format("Monday, Jan 2")))
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "%s %s\n", labelStyle.Render("Calories"), valueStyle.Render(fmt.Sprintf("%.0f kcal", s.TotalCalories)))
	fmt.Fprintf(&b, "%s %s\n\n", labelStyle.Render("Entries"), valueStyle.Render(fmt.Sprintf("%d food, %d water", s.FoodCount, s.WaterCount)))

	if s.HasData() {
		macros := []struct {
			name  string
			grams float64
			share float64
			style lipgloss.Style
		}{
			{"Protein", s.TotalProtein, s.ProteinPercentage, proteinStyle},
			{"Carbs", s.TotalCarbs, s.CarbsPercentage, carbsStyle},
			{"Fats", s.TotalFats, s.FatsPercentage, fatsStyle},
		}
		for _, mc := range macros {
			fmt.Fprintf(&b, "%s %s %3d%%  %.0fg\n", labelStyle.Render(mc.name), bar(mc.share, barWidth, mc.style), summary.Percent(mc.share), mc.grams)
		}
	} else {
		b.WriteString(emptyStyle.Render("No food logged yet today."))
		b.WriteString("\n")
	}

	goal := m.Settings.WaterGoalLiters
	progress := s.WaterProgress(goal)
	fmt.Fprintf(&b, "\n%s %s %3d%%  %s / %s\n",
		labelStyle.Render("Water"),
		bar(progress, barWidth, waterStyle),
		summary.Percent(progress),
		m.Settings.FormatWater(s.TotalWater),
		m.Settings.FormatWater(goal),
	)

	if len(m.History) > 0 {
		b.WriteString("\n")
		b.WriteString(titleStyle.Render(fmt.Sprintf("Last %d days", len(m.History))))
		b.WriteString("\n")
		for _, d := range m.History {
			fmt.Fprintf(&b, "%s %6.0f kcal  %s\n",
				labelStyle.Render(d.Date.Format("Mon 01/02")),
				d.TotalCalories,
				m.Settings.FormatWater(d.TotalWater),
			)
		}
	}

	m.viewport.SetContent(b.String())
}
