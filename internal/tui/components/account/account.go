package account

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/foodlog/internal/models"
)

type EditSettingsMsg struct{}

// Stats is the lifetime data shown under the profile.
type Stats struct {
	Entries  int
	Location string
}

type Model struct {
	settings models.Settings
	stats    Stats
	width    int
	height   int
}

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205")).
			MarginBottom(1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Width(25)

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255")).
			Bold(true)

	sectionStyle = lipgloss.NewStyle().
			MarginTop(1).
			MarginBottom(1)
)

func New(settings models.Settings, width, height int) Model {
	return Model{
		settings: settings,
		width:    width,
		height:   height,
	}
}

func (m *Model) SetSettings(settings models.Settings) {
	m.settings = settings
}

func (m *Model) SetStats(stats Stats) {
	m.stats = stats
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "e":
			return m, func() tea.Msg { return EditSettingsMsg{} }
		}
	}
	return m, nil
}

func row(label, value string) string {
	return fmt.Sprintf("%s %s", labelStyle.Render(label), valueStyle.Render(value))
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}

func (m Model) View() string {
	if m.width == 0 {
		return ""
	}

	var sections []string

	profileTitle := titleStyle.Render("Profile")
	profileContent := lipgloss.JoinVertical(
		lipgloss.Left,
		row("Name:", m.settings.DisplayName),
		row("Entries logged:", fmt.Sprintf("%d", m.stats.Entries)),
		row("Calendar:", m.stats.Location),
	)
	sections = append(sections, sectionStyle.Render(profileTitle+"\n"+profileContent))

	prefsTitle := titleStyle.Render("Preferences")
	prefsContent := lipgloss.JoinVertical(
		lipgloss.Left,
		row("Units:", string(m.settings.Units)),
		row("Daily water goal:", m.settings.FormatWater(m.settings.WaterGoalLiters)),
		row("Timezone:", m.settings.Timezone),
		row("Notifications:", onOff(m.settings.NotificationsEnabled)),
		row("Dark mode:", onOff(m.settings.DarkMode)),
	)
	sections = append(sections, sectionStyle.Render(prefsTitle+"\n"+prefsContent))

	helpText := lipgloss.NewStyle().
		Foreground(lipgloss.Color("240")).
		Italic(true).
		MarginTop(2).
		Render("Press 'e' to edit settings")

	sections = append(sections, helpText)

	content := lipgloss.JoinVertical(lipgloss.Left, sections...)

	return lipgloss.Place(
		m.width,
		m.height,
		lipgloss.Left,
		lipgloss.Top,
		lipgloss.NewStyle().Padding(1, 4).Render(content),
	)
}

func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}
