package tui

import (
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/foodlog/internal/analysis"
	"github.com/julianstephens/foodlog/internal/constants"
	"github.com/julianstephens/foodlog/internal/flows"
	"github.com/julianstephens/foodlog/internal/logstore"
	"github.com/julianstephens/foodlog/internal/models"
	"github.com/julianstephens/foodlog/internal/summary"
	"github.com/julianstephens/foodlog/internal/tui/components/account"
	"github.com/julianstephens/foodlog/internal/tui/components/loglist"
	"github.com/julianstephens/foodlog/internal/tui/components/today"
)

// historyDays is how many days the Today tab charts.
const historyDays = 7

// Options wires the TUI to the application state.
type Options struct {
	Logs         *logstore.Store
	Analyzer     analysis.Analyzer
	Settings     models.Settings
	SaveSettings func(models.Settings) error
	Now          func() time.Time
}

type WaterFormModel struct {
	Preset string
	Custom string
}

type ScanFormModel struct {
	Path string
}

type SettingsFormModel struct {
	DisplayName          string
	NotificationsEnabled bool
	DarkMode             bool
	Units                constants.Units
	WaterGoal            string
	Timezone             string
}

type MenuFormModel struct {
	Choice string
}

type Model struct {
	logs          *logstore.Store
	analyzer      analysis.Analyzer
	settings      models.Settings
	saveSettings  func(models.Settings) error
	now           func() time.Time
	state         constants.SessionState
	previousState constants.SessionState
	keys          KeyMap
	help          help.Model
	spinner       spinner.Model
	logList       loglist.Model
	todayModel    today.Model
	accountModel  account.Model
	form          *huh.Form
	menuForm      *MenuFormModel
	foodForm      *flows.FoodForm
	waterForm     *WaterFormModel
	scanForm      *ScanFormModel
	settingsForm  *SettingsFormModel
	scan          *flows.ScanSession
	selectedID    string
	changed       *atomic.Bool
	unsubscribe   func()
	statusMsg     string
	formError     string
	quitting      bool
	width         int
	height        int
}

func NewModel(opts Options) Model {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	analyzer := opts.Analyzer
	if analyzer == nil {
		analyzer = analysis.NewStubAnalyzer(constants.DefaultAnalysisDelay)
	}
	save := opts.SaveSettings
	if save == nil {
		save = func(models.Settings) error { return nil }
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	m := Model{
		logs:         opts.Logs,
		analyzer:     analyzer,
		settings:     opts.Settings,
		saveSettings: save,
		now:          now,
		state:        constants.StateToday,
		keys:         DefaultKeyMap(),
		help:         help.New(),
		spinner:      sp,
		todayModel:   today.New(0, 0),
		accountModel: account.New(opts.Settings, 0, 0),
		changed:      &atomic.Bool{},
	}
	m.logList = loglist.New(nil, opts.Settings, m.today(), 0, 0)

	// Observers run synchronously inside the mutating call, so they only
	// flag the change; Update refreshes the views before returning.
	changed := m.changed
	m.unsubscribe = m.logs.Subscribe(func(logstore.Event) { changed.Store(true) })
	m.refresh()

	return m
}

// today is noon of the current day in the store's calendar.
func (m Model) today() time.Time {
	loc := m.logs.Location()
	y, mo, d := m.now().In(loc).Date()
	return time.Date(y, mo, d, 12, 0, 0, 0, loc)
}

// refresh recomputes every view from the store.
func (m *Model) refresh() {
	all := m.logs.All()
	day := m.today()

	m.logList.SetSettings(m.settings)
	m.logList.SetLogs(all)

	m.todayModel.SetSummary(
		summary.ForDay(day, m.logs.LogsForDay(day)),
		summary.History(m.logs, day, historyDays),
		m.settings,
	)

	m.accountModel.SetSettings(m.settings)
	m.accountModel.SetStats(account.Stats{
		Entries:  len(all),
		Location: m.logs.Location().String(),
	})
}

func (m Model) ShortHelp() []key.Binding {
	keys := []key.Binding{m.keys.Tab, m.keys.Quit, m.keys.Help}
	switch m.state {
	case constants.StateLogs, constants.StateToday:
		keys = append(keys, m.keys.Add, m.keys.Water, m.keys.Scan)
	case constants.StateAccount:
		keys = append(keys, m.keys.Edit)
	case constants.StateDetail:
		keys = []key.Binding{m.keys.Edit, m.keys.Delete, m.keys.Back}
	case constants.StateScanAnalyzing:
		keys = []key.Binding{m.keys.Back}
	case constants.StateConfirmDelete:
		keys = []key.Binding{m.keys.Confirm, m.keys.Deny}
	}
	return keys
}

func (m Model) FullHelp() [][]key.Binding {
	global := []key.Binding{m.keys.Tab, m.keys.ShiftTab, m.keys.Quit, m.keys.Help}

	var actions []key.Binding
	switch m.state {
	case constants.StateLogs, constants.StateToday:
		actions = []key.Binding{m.keys.Add, m.keys.Water, m.keys.Scan}
	case constants.StateAccount:
		actions = []key.Binding{m.keys.Edit}
	case constants.StateDetail:
		actions = []key.Binding{m.keys.Edit, m.keys.Delete, m.keys.Back}
	}

	return [][]key.Binding{global, actions}
}

func (m Model) Init() tea.Cmd {
	return nil
}

// isMainView reports whether the state is one of the tabs.
func isMainView(s constants.SessionState) bool {
	return s == constants.StateLogs || s == constants.StateToday || s == constants.StateAccount
}
