package tui

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/foodlog/internal/analysis"
	"github.com/julianstephens/foodlog/internal/constants"
	"github.com/julianstephens/foodlog/internal/flows"
	"github.com/julianstephens/foodlog/internal/logger"
	"github.com/julianstephens/foodlog/internal/models"
	"github.com/julianstephens/foodlog/internal/tui/components/account"
	"github.com/julianstephens/foodlog/internal/tui/components/loglist"
)

// analysisDoneMsg carries an analysis outcome back to the session that
// asked for it.
type analysisDoneMsg struct {
	session *flows.ScanSession
	result  analysis.Result
	err     error
}

func analyzeCmd(ctx context.Context, a analysis.Analyzer, session *flows.ScanSession, image []byte) tea.Cmd {
	return func() tea.Msg {
		result, err := a.Analyze(ctx, image)
		return analysisDoneMsg{session: session, result: result, err: err}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.update(msg)
	if next.changed.Swap(false) {
		next.refresh()
	}
	return next, cmd
}

func (m Model) update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil
	case analysisDoneMsg:
		return m.handleAnalysisDone(msg)
	case spinner.TickMsg:
		if m.state != constants.StateScanAnalyzing {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m.quit()
		}
	}

	switch m.state {
	case constants.StateAddMenu:
		return m.updateMenu(msg)
	case constants.StateFoodForm:
		return m.updateFoodForm(msg)
	case constants.StateWaterForm:
		return m.updateWaterForm(msg)
	case constants.StateScanPath:
		return m.updateScanPath(msg)
	case constants.StateScanAnalyzing:
		return m.updateAnalyzing(msg)
	case constants.StateScanReview:
		return m.updateScanReview(msg)
	case constants.StateDetail:
		return m.updateDetail(msg)
	case constants.StateEditLog:
		return m.updateEditLog(msg)
	case constants.StateEditSettings:
		return m.updateEditSettings(msg)
	case constants.StateConfirmDelete:
		return m.updateConfirmDelete(msg)
	}

	return m.updateMainView(msg)
}

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height
	m.help.Width = width
	// Adjust height for tabs, banner and help
	listHeight := height - 5

	h, v := docStyle.GetFrameSize()
	m.logList.SetSize(width-h, listHeight-v)
	m.todayModel.SetSize(width-h, listHeight-v)
	m.accountModel.SetSize(width-h, listHeight-v)
}

func (m Model) quit() (Model, tea.Cmd) {
	m.quitting = true
	if m.scan != nil {
		m.scan.Cancel()
		m.scan = nil
	}
	if m.unsubscribe != nil {
		m.unsubscribe()
		m.unsubscribe = nil
	}
	return m, tea.Quit
}

// back leaves a sub-view for the view it was opened from.
func (m *Model) back() {
	m.state = m.previousState
	m.form = nil
	m.formError = ""
}

// openForm shows form in state, remembering the current view.
func (m *Model) openForm(form *huh.Form, state constants.SessionState) tea.Cmd {
	m.previousState = m.state
	m.form = form.WithTheme(m.theme()).WithShowHelp(true)
	m.formError = ""
	m.statusMsg = ""
	m.state = state
	return m.form.Init()
}

// updateForm forwards msg to the active form. Esc aborts it.
func (m *Model) updateForm(msg tea.Msg) (huh.FormState, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.Type == tea.KeyEsc {
		return huh.StateAborted, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}
	return m.form.State, cmd
}

// rejectForm keeps the user in the form with an error to correct.
func (m *Model) rejectForm(format string, args ...any) {
	m.formError = fmt.Sprintf(format, args...)
	m.form.State = huh.StateNormal
}

func (m Model) startMenu() (Model, tea.Cmd) {
	m.menuForm = &MenuFormModel{Choice: choiceFood}
	cmd := m.openForm(NewMenuForm(m.menuForm), constants.StateAddMenu)
	return m, cmd
}

func (m Model) startFoodForm() (Model, tea.Cmd) {
	m.foodForm = &flows.FoodForm{}
	cmd := m.openForm(NewFoodForm(m.foodForm, "Log food"), constants.StateFoodForm)
	return m, cmd
}

func (m Model) startWaterForm() (Model, tea.Cmd) {
	m.waterForm = &WaterFormModel{Preset: "0"}
	cmd := m.openForm(NewWaterForm(m.waterForm, m.settings), constants.StateWaterForm)
	return m, cmd
}

func (m Model) startScan() (Model, tea.Cmd) {
	m.scanForm = &ScanFormModel{}
	cmd := m.openForm(NewScanForm(m.scanForm), constants.StateScanPath)
	return m, cmd
}

func (m Model) startEdit(id string) (Model, tea.Cmd) {
	log, ok := m.logs.Get(id)
	if !ok {
		m.statusMsg = "Entry no longer exists."
		return m, nil
	}
	m.selectedID = id

	var form *huh.Form
	if w, isWater := log.Water(); isWater {
		m.waterForm = &WaterFormModel{Custom: flows.FormatAmount(w.AmountLiters)}
		form = NewWaterEditForm(m.waterForm)
	} else {
		ff := flows.FoodFormFromLog(log)
		m.foodForm = &ff
		form = NewFoodForm(m.foodForm, "Edit food")
	}
	cmd := m.openForm(form, constants.StateEditLog)
	return m, cmd
}

func (m Model) startSettingsForm() (Model, tea.Cmd) {
	m.settingsForm = settingsFormFrom(m.settings)
	cmd := m.openForm(NewSettingsForm(m.settingsForm), constants.StateEditSettings)
	return m, cmd
}

func (m Model) confirmDelete(id string) (Model, tea.Cmd) {
	if _, ok := m.logs.Get(id); !ok {
		m.statusMsg = "Entry no longer exists."
		return m, nil
	}
	m.selectedID = id
	m.previousState = m.state
	m.state = constants.StateConfirmDelete
	return m, nil
}

func (m Model) updateMainView(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case loglist.OpenLogMsg:
		m.selectedID = msg.ID
		m.previousState = m.state
		m.state = constants.StateDetail
		return m, nil
	case loglist.EditLogMsg:
		return m.startEdit(msg.ID)
	case loglist.DeleteLogMsg:
		return m.confirmDelete(msg.ID)
	case account.EditSettingsMsg:
		return m.startSettingsForm()
	case tea.KeyMsg:
		if m.state == constants.StateLogs && m.logList.Searching() {
			break
		}
		m.statusMsg = ""
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m.quit()
		case key.Matches(msg, m.keys.Tab):
			m.state = (m.state + 1) % constants.TabCount
			return m, nil
		case key.Matches(msg, m.keys.ShiftTab):
			m.state = (m.state + constants.TabCount - 1) % constants.TabCount
			return m, nil
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		}
		if m.state != constants.StateAccount {
			switch {
			case key.Matches(msg, m.keys.Add):
				return m.startMenu()
			case key.Matches(msg, m.keys.Water):
				return m.startWaterForm()
			case key.Matches(msg, m.keys.Scan):
				return m.startScan()
			}
		}
	}

	switch m.state {
	case constants.StateLogs:
		m.logList, cmd = m.logList.Update(msg)
	case constants.StateToday:
		m.todayModel, cmd = m.todayModel.Update(msg)
	case constants.StateAccount:
		m.accountModel, cmd = m.accountModel.Update(msg)
	}
	return m, cmd
}

func (m Model) updateMenu(msg tea.Msg) (Model, tea.Cmd) {
	state, cmd := m.updateForm(msg)
	switch state {
	case huh.StateCompleted:
		choice := m.menuForm.Choice
		m.back()
		switch choice {
		case choiceWater:
			return m.startWaterForm()
		case choiceScan:
			return m.startScan()
		default:
			return m.startFoodForm()
		}
	case huh.StateAborted:
		m.back()
		return m, nil
	}
	return m, cmd
}

func (m Model) updateFoodForm(msg tea.Msg) (Model, tea.Cmd) {
	state, cmd := m.updateForm(msg)
	switch state {
	case huh.StateCompleted:
		log := m.foodForm.ToLog(m.now())
		m.logs.Add(log)
		logger.Debug("Logged food from form", "id", log.ID)
		m.statusMsg = fmt.Sprintf("✓ Logged food: %s", log.DisplayName())
		m.back()
		return m, nil
	case huh.StateAborted:
		m.back()
		return m, nil
	}
	return m, cmd
}

func (m Model) updateWaterForm(msg tea.Msg) (Model, tea.Cmd) {
	state, cmd := m.updateForm(msg)
	switch state {
	case huh.StateCompleted:
		picker, err := m.waterForm.waterPick()
		if err != nil {
			m.rejectForm("Invalid amount: %v", err)
			return m, nil
		}
		m.logs.Add(picker.ToLog(m.now()))
		m.statusMsg = fmt.Sprintf("✓ Logged water: %s", m.settings.FormatWater(picker.Amount()))
		m.back()
		return m, nil
	case huh.StateAborted:
		m.back()
		return m, nil
	}
	return m, cmd
}

func (m Model) updateScanPath(msg tea.Msg) (Model, tea.Cmd) {
	state, cmd := m.updateForm(msg)
	switch state {
	case huh.StateCompleted:
		image, err := os.ReadFile(strings.TrimSpace(m.scanForm.Path))
		if err != nil {
			m.rejectForm("Failed to read photo: %v", err)
			return m, nil
		}

		session := flows.NewScanSession()
		actx, err := session.Start(context.Background(), image)
		if err != nil {
			m.rejectForm("Failed to start analysis: %v", err)
			return m, nil
		}
		m.scan = session
		m.form = nil
		m.state = constants.StateScanAnalyzing
		return m, tea.Batch(m.spinner.Tick, analyzeCmd(actx, m.analyzer, session, image))
	case huh.StateAborted:
		m.back()
		return m, nil
	}
	return m, cmd
}

func (m Model) updateAnalyzing(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && key.Matches(msg, m.keys.Back) {
		m.scan.Cancel()
		m.scan = nil
		m.statusMsg = "Scan canceled. Nothing was saved."
		m.back()
	}
	return m, nil
}

func (m Model) handleAnalysisDone(msg analysisDoneMsg) (Model, tea.Cmd) {
	// Results for a session that was canceled or replaced are dropped
	if msg.session != m.scan || !msg.session.Complete(msg.result, msg.err) {
		return m, nil
	}

	switch m.scan.State() {
	case flows.ScanReviewing:
		ff := m.scan.Form()
		m.foodForm = &ff
		m.form = NewFoodForm(m.foodForm, "Review analysis").WithTheme(m.theme()).WithShowHelp(true)
		m.state = constants.StateScanReview
		return m, m.form.Init()
	case flows.ScanFailed:
		logger.Warn("Photo analysis failed", "error", m.scan.Err())
		m.statusMsg = fmt.Sprintf("Analysis failed: %v", m.scan.Err())
	default:
		m.statusMsg = "Analysis canceled. Nothing was saved."
	}
	m.scan = nil
	m.back()
	return m, nil
}

func (m Model) updateScanReview(msg tea.Msg) (Model, tea.Cmd) {
	state, cmd := m.updateForm(msg)
	switch state {
	case huh.StateCompleted:
		log, err := m.scan.Save(m.logs, *m.foodForm, m.now())
		if err != nil {
			m.rejectForm("Failed to save: %v", err)
			return m, nil
		}
		m.scan = nil
		m.statusMsg = fmt.Sprintf("✓ Logged food: %s", log.DisplayName())
		m.back()
		return m, nil
	case huh.StateAborted:
		m.scan.Cancel()
		m.scan = nil
		m.statusMsg = "Scan discarded."
		m.back()
		return m, nil
	}
	return m, cmd
}

func (m Model) updateDetail(msg tea.Msg) (Model, tea.Cmd) {
	msgKey, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch {
	case key.Matches(msgKey, m.keys.Back):
		m.state = constants.StateLogs
	case key.Matches(msgKey, m.keys.Edit):
		return m.startEdit(m.selectedID)
	case key.Matches(msgKey, m.keys.Delete):
		return m.confirmDelete(m.selectedID)
	}
	return m, nil
}

func (m Model) updateEditLog(msg tea.Msg) (Model, tea.Cmd) {
	state, cmd := m.updateForm(msg)
	switch state {
	case huh.StateCompleted:
		if log, ok := m.logs.Get(m.selectedID); ok {
			var updated models.NutritionLog
			if log.Kind() == models.KindWater {
				updated = flows.ApplyWaterEdit(log, m.waterForm.Custom)
			} else {
				updated = flows.ApplyEdit(log, *m.foodForm)
			}
			m.logs.Update(log.ID, updated)
			m.statusMsg = fmt.Sprintf("✓ Updated %s", updated.DisplayName())
		}
		m.back()
		return m, nil
	case huh.StateAborted:
		m.back()
		return m, nil
	}
	return m, cmd
}

func (m Model) updateEditSettings(msg tea.Msg) (Model, tea.Cmd) {
	state, cmd := m.updateForm(msg)
	switch state {
	case huh.StateCompleted:
		s, err := m.settingsForm.toSettings(m.settings)
		if err != nil {
			m.rejectForm("Invalid settings: %v", err)
			return m, nil
		}
		if err := m.saveSettings(s); err != nil {
			m.rejectForm("Failed to save settings: %v", err)
			return m, nil
		}
		m.settings = s
		m.refresh()
		m.statusMsg = "Settings updated."
		m.back()
		return m, nil
	case huh.StateAborted:
		m.back()
		return m, nil
	}
	return m, cmd
}

func (m Model) updateConfirmDelete(msg tea.Msg) (Model, tea.Cmd) {
	msgKey, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch {
	case key.Matches(msgKey, m.keys.Confirm):
		name := ""
		if log, ok := m.logs.Get(m.selectedID); ok {
			name = log.DisplayName()
		}
		if m.logs.Delete(m.selectedID) {
			m.statusMsg = fmt.Sprintf("✓ Deleted %s", name)
		}
		m.selectedID = ""
		m.state = m.previousState
		if m.state == constants.StateDetail {
			m.state = constants.StateLogs
		}
	case key.Matches(msgKey, m.keys.Deny):
		m.state = m.previousState
	}
	return m, nil
}
