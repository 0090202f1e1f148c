package loglist

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/foodlog/internal/constants"
	"github.com/julianstephens/foodlog/internal/logstore"
	"github.com/julianstephens/foodlog/internal/models"
)

type OpenLogMsg struct {
	ID string
}

type EditLogMsg struct {
	ID string
}

type DeleteLogMsg struct {
	ID string
}

var filterStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("240")).
	Italic(true)

type Item struct {
	Log      models.NutritionLog
	Settings models.Settings
	Loc      *time.Location
}

func (i Item) Title() string {
	if f, ok := i.Log.Food(); ok && len(f.Image) > 0 {
		return i.Log.DisplayName() + " 📷"
	}
	return i.Log.DisplayName()
}

func (i Item) Description() string {
	at := i.Log.Date.In(i.Loc).Format(constants.DateFormat + " " + constants.TimeFormat)
	if w, ok := i.Log.Water(); ok {
		return fmt.Sprintf("%s | %s", at, i.Settings.FormatWater(w.AmountLiters))
	}
	f, _ := i.Log.Food()
	return fmt.Sprintf("%s | %.0f kcal | P %.0fg C %.0fg F %.0fg", at, f.Calories, f.Protein, f.Carbs, f.Fats)
}

func (i Item) FilterValue() string { return i.Log.DisplayName() }

type KeyMap struct {
	Open    key.Binding
	Edit    key.Binding
	Delete  key.Binding
	Search  key.Binding
	PrevDay key.Binding
	NextDay key.Binding
	Today   key.Binding
	AllDays key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Open: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "details"),
		),
		Edit: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "edit"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search"),
		),
		PrevDay: key.NewBinding(
			key.WithKeys("["),
			key.WithHelp("[", "prev day"),
		),
		NextDay: key.NewBinding(
			key.WithKeys("]"),
			key.WithHelp("]", "next day"),
		),
		Today: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "today"),
		),
		AllDays: key.NewBinding(
			key.WithKeys("v"),
			key.WithHelp("v", "all days"),
		),
	}
}

// Model browses the log collection filtered by day and a name search.
type Model struct {
	list     list.Model
	search   textinput.Model
	keys     KeyMap
	logs     []models.NutritionLog
	settings models.Settings
	loc      *time.Location
	day      time.Time
	allDays  bool
}

func New(logs []models.NutritionLog, settings models.Settings, day time.Time, width, height int) Model {
	l := list.New(nil, list.NewDefaultDelegate(), width, height)
	l.Title = "Logs"
	l.SetShowTitle(false)
	l.SetShowHelp(false) // We handle help globally in the main model
	// Search is owned by this model so it matches the CLI's substring search
	l.SetFilteringEnabled(false)
	// q and esc belong to the main model
	l.KeyMap.Quit.SetEnabled(false)
	l.KeyMap.ForceQuit.SetEnabled(false)

	keys := DefaultKeyMap()
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Open, keys.Edit, keys.Delete, keys.Search}
	}
	l.AdditionalFullHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Open, keys.Edit, keys.Delete, keys.Search, keys.PrevDay, keys.NextDay, keys.Today, keys.AllDays}
	}

	ti := textinput.New()
	ti.Placeholder = "search by name"
	ti.Prompt = "/ "
	ti.CharLimit = 64

	m := Model{
		list:     l,
		search:   ti,
		keys:     keys,
		settings: settings,
		loc:      day.Location(),
		day:      day,
	}
	m.SetLogs(logs)
	return m
}

// SetLogs replaces the browsed collection and reapplies the filters.
func (m *Model) SetLogs(logs []models.NutritionLog) {
	m.logs = logs
	m.refilter()
}

func (m *Model) SetSettings(settings models.Settings) {
	m.settings = settings
	m.refilter()
}

// SetDay moves the day filter. The location of day becomes the calendar.
func (m *Model) SetDay(day time.Time) {
	m.day = day
	m.loc = day.Location()
	m.refilter()
}

func (m Model) Day() time.Time { return m.day }

func (m Model) AllDays() bool { return m.allDays }

func (m Model) Query() string { return strings.TrimSpace(m.search.Value()) }

// Searching reports whether the search input has focus. Key presses are
// consumed by the input while it does.
func (m Model) Searching() bool { return m.search.Focused() }

// Visible returns the logs that pass the current filters, newest first.
func (m Model) Visible() []models.NutritionLog {
	items := m.list.Items()
	out := make([]models.NutritionLog, 0, len(items))
	for _, it := range items {
		out = append(out, it.(Item).Log)
	}
	return out
}

func (m *Model) SetSize(width, height int) {
	m.list.SetSize(width, height-2)
	m.search.Width = width - 4
}

func (m *Model) refilter() {
	logs := m.logs
	if !m.allDays {
		logs = make([]models.NutritionLog, 0, len(m.logs))
		for _, l := range m.logs {
			if logstore.SameDay(l.Date, m.day, m.loc) {
				logs = append(logs, l)
			}
		}
	}
	logs = logstore.Search(logs, m.Query())

	items := make([]list.Item, 0, len(logs))
	for i := len(logs) - 1; i >= 0; i-- {
		items = append(items, Item{Log: logs[i], Settings: m.settings, Loc: m.loc})
	}
	m.list.SetItems(items)
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd

	if m.search.Focused() {
		if msg, ok := msg.(tea.KeyMsg); ok {
			switch msg.Type {
			case tea.KeyEnter:
				m.search.Blur()
				return m, nil
			case tea.KeyEsc:
				m.search.Blur()
				m.search.SetValue("")
				m.refilter()
				return m, nil
			}
		}
		m.search, cmd = m.search.Update(msg)
		m.refilter()
		return m, cmd
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Search):
			cmd = m.search.Focus()
			return m, cmd
		case key.Matches(msg, m.keys.PrevDay):
			m.allDays = false
			m.SetDay(m.day.AddDate(0, 0, -1))
			return m, nil
		case key.Matches(msg, m.keys.NextDay):
			m.allDays = false
			m.SetDay(m.day.AddDate(0, 0, 1))
			return m, nil
		case key.Matches(msg, m.keys.AllDays):
			m.allDays = !m.allDays
			m.refilter()
			return m, nil
		case key.Matches(msg, m.keys.Open):
			if i, ok := m.list.SelectedItem().(Item); ok {
				return m, func() tea.Msg { return OpenLogMsg{ID: i.Log.ID} }
			}
		case key.Matches(msg, m.keys.Edit):
			if i, ok := m.list.SelectedItem().(Item); ok {
				return m, func() tea.Msg { return EditLogMsg{ID: i.Log.ID} }
			}
		case key.Matches(msg, m.keys.Delete):
			if i, ok := m.list.SelectedItem().(Item); ok {
				return m, func() tea.Msg { return DeleteLogMsg{ID: i.Log.ID} }
			}
		}
	}

	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) header() string {
	scope := m.day.Format("Mon Jan 2, 2006")
	if m.allDays {
		scope = "All days"
	}
	if q := m.Query(); q != "" && !m.search.Focused() {
		scope += fmt.Sprintf(" | matching %q", q)
	}
	return filterStyle.Render(scope)
}

func (m Model) View() string {
	top := m.header()
	if m.search.Focused() {
		top = m.search.View()
	}

	if len(m.list.Items()) == 0 {
		if m.Query() != "" {
			return top + "\n\n  No entries match your search.\n  Press 'esc' in search to clear it."
		}
		return top + "\n\n  No entries logged.\n  Press 'a' to add one."
	}
	return top + "\n" + m.list.View()
}
