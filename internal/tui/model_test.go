package tui

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/foodlog/internal/analysis"
	"github.com/julianstephens/foodlog/internal/constants"
	"github.com/julianstephens/foodlog/internal/logstore"
	"github.com/julianstephens/foodlog/internal/models"
	"github.com/julianstephens/foodlog/internal/storage"
	"github.com/julianstephens/foodlog/internal/tui/components/loglist"
)

var fixedNow = time.Date(2025, 3, 30, 12, 0, 0, 0, time.UTC)

type noopMsg struct{}

type readOnlyStore struct {
	*storage.MemoryStore
}

func (s *readOnlyStore) Set(string, []byte) error {
	return errors.New("disk full")
}

type testEnv struct {
	logs    *logstore.Store
	saved   []models.Settings
	saveErr error
}

func setupModel(t *testing.T, provider storage.Provider) (Model, *testEnv) {
	t.Helper()
	env := &testEnv{logs: logstore.New(provider, time.UTC)}
	settings := models.DefaultSettings()
	settings.Timezone = "UTC"

	m := NewModel(Options{
		Logs:     env.logs,
		Analyzer: analysis.NewStubAnalyzer(0),
		Settings: settings,
		SaveSettings: func(s models.Settings) error {
			if env.saveErr != nil {
				return env.saveErr
			}
			env.saved = append(env.saved, s)
			return nil
		},
		Now: func() time.Time { return fixedNow },
	})
	m = send(t, m, tea.WindowSizeMsg{Width: 100, Height: 40})
	return m, env
}

func send(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(Model)
}

func press(t *testing.T, m Model, k string) Model {
	t.Helper()
	switch k {
	case "esc":
		return send(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	case "enter":
		return send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	case "tab":
		return send(t, m, tea.KeyMsg{Type: tea.KeyTab})
	case "shift+tab":
		return send(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
	}
	return send(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)})
}

// submit completes the active form with whatever its bound model holds.
func submit(t *testing.T, m Model) Model {
	t.Helper()
	if m.form == nil {
		t.Fatalf("no active form in state %d", m.state)
	}
	m.form.State = huh.StateCompleted
	return send(t, m, noopMsg{})
}

func expectState(t *testing.T, m Model, want constants.SessionState) {
	t.Helper()
	if m.state != want {
		t.Fatalf("expected state %d, got %d", want, m.state)
	}
}

func TestTabs(t *testing.T) {
	m, _ := setupModel(t, storage.NewMemoryStore())
	expectState(t, m, constants.StateToday)

	m = press(t, m, "tab")
	expectState(t, m, constants.StateAccount)
	m = press(t, m, "tab")
	expectState(t, m, constants.StateLogs)
	m = press(t, m, "shift+tab")
	expectState(t, m, constants.StateAccount)

	if !strings.Contains(m.View(), "Press 'e' to edit settings") {
		t.Errorf("account view missing:\n%s", m.View())
	}
}

func TestQuit(t *testing.T) {
	m, env := setupModel(t, storage.NewMemoryStore())

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}

	m = next.(Model)
	env.logs.Add(models.DefaultWaterLog(0.5, fixedNow))
	if m.changed.Load() {
		t.Error("observer should be unsubscribed after quit")
	}
}

func TestAddFoodFlow(t *testing.T) {
	m, env := setupModel(t, storage.NewMemoryStore())

	m = press(t, m, "a")
	expectState(t, m, constants.StateAddMenu)
	m.menuForm.Choice = choiceFood
	m = submit(t, m)
	expectState(t, m, constants.StateFoodForm)

	m.foodForm.Name = "Chicken Salad"
	m.foodForm.Calories = "350"
	m.foodForm.Protein = "30"
	m.foodForm.Carbs = "ten"
	m.foodForm.Fats = "15"
	m = submit(t, m)
	expectState(t, m, constants.StateToday)

	logs := env.logs.All()
	if len(logs) != 1 {
		t.Fatalf("expected 1 log, got %d", len(logs))
	}
	f, ok := logs[0].Food()
	if !ok || f.Name != "Chicken Salad" || f.Calories != 350 || f.Carbs != 0 {
		t.Errorf("unexpected entry: %+v", f)
	}
	if !strings.Contains(m.statusMsg, "Logged food: Chicken Salad") {
		t.Errorf("unexpected status: %q", m.statusMsg)
	}
	// Views refresh from the store notification
	if m.todayModel.Today.TotalCalories != 350 {
		t.Errorf("today summary not refreshed: %+v", m.todayModel.Today)
	}
}

func TestAddFlowAbort(t *testing.T) {
	m, env := setupModel(t, storage.NewMemoryStore())

	m = press(t, m, "tab")
	m = press(t, m, "tab")
	m = press(t, m, "a")
	m = press(t, m, "esc")
	expectState(t, m, constants.StateLogs)
	if m.form != nil || env.logs.Len() != 0 {
		t.Error("aborting the menu should leave nothing behind")
	}
}

func TestWaterFlow(t *testing.T) {
	m, env := setupModel(t, storage.NewMemoryStore())

	m = press(t, m, "w")
	expectState(t, m, constants.StateWaterForm)
	m.waterForm.Preset = "1"
	m = submit(t, m)
	expectState(t, m, constants.StateToday)

	m = press(t, m, "w")
	m.waterForm.Preset = choiceCustom
	m.waterForm.Custom = "0"
	m = submit(t, m)
	expectState(t, m, constants.StateWaterForm)
	if m.formError == "" || m.form.State != huh.StateNormal {
		t.Errorf("custom amount of zero should be rejected, error=%q", m.formError)
	}

	m.waterForm.Custom = " 0.25 "
	m = submit(t, m)
	expectState(t, m, constants.StateToday)

	logs := env.logs.All()
	if len(logs) != 2 {
		t.Fatalf("expected 2 logs, got %d", len(logs))
	}
	for i, want := range []float64{0.5, 0.25} {
		w, ok := logs[i].Water()
		if !ok || w.AmountLiters != want {
			t.Errorf("log %d: expected %.2fL water, got %+v", i, want, logs[i])
		}
	}
	if m.todayModel.Today.TotalWater != 0.75 {
		t.Errorf("expected 0.75L today, got %v", m.todayModel.Today.TotalWater)
	}
}

func writeImage(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "meal.jpg")
	if err := os.WriteFile(path, []byte("fake jpeg bytes"), 0600); err != nil {
		t.Fatalf("failed to write image: %v", err)
	}
	return path
}

// startAnalysis walks the scan flow up to the spinner.
func startAnalysis(t *testing.T, m Model) Model {
	t.Helper()
	m = press(t, m, "s")
	expectState(t, m, constants.StateScanPath)
	m.scanForm.Path = writeImage(t)
	m = submit(t, m)
	expectState(t, m, constants.StateScanAnalyzing)
	if m.scan == nil {
		t.Fatal("expected an active scan session")
	}
	return m
}

func TestScanFlow(t *testing.T) {
	m, env := setupModel(t, storage.NewMemoryStore())
	m = startAnalysis(t, m)

	if !strings.Contains(m.View(), "Analyzing photo") {
		t.Errorf("expected spinner view:\n%s", m.View())
	}

	msg := analyzeCmd(context.Background(), m.analyzer, m.scan, m.scan.Image())()
	m = send(t, m, msg)
	expectState(t, m, constants.StateScanReview)
	if m.foodForm.Name != analysis.StubResult.Name {
		t.Errorf("review form should be pre-filled, got %+v", m.foodForm)
	}
	if env.logs.Len() != 0 {
		t.Fatal("nothing may be saved before the review is submitted")
	}

	m.foodForm.Calories = "500"
	m = submit(t, m)
	expectState(t, m, constants.StateToday)

	logs := env.logs.All()
	if len(logs) != 1 {
		t.Fatalf("expected 1 log, got %d", len(logs))
	}
	f, _ := logs[0].Food()
	if f.Calories != 500 || string(f.Image) != "fake jpeg bytes" {
		t.Errorf("unexpected saved entry: %+v", f)
	}
	if m.scan != nil {
		t.Error("session should be released after save")
	}
}

func TestScanCancelDiscardsLateResult(t *testing.T) {
	m, env := setupModel(t, storage.NewMemoryStore())
	m = startAnalysis(t, m)
	session := m.scan

	m = press(t, m, "esc")
	expectState(t, m, constants.StateToday)
	if !strings.Contains(m.statusMsg, "canceled") {
		t.Errorf("unexpected status: %q", m.statusMsg)
	}

	m = send(t, m, analysisDoneMsg{session: session, result: analysis.StubResult})
	expectState(t, m, constants.StateToday)
	if env.logs.Len() != 0 {
		t.Error("late result must not create an entry")
	}
}

func TestScanReviewDiscard(t *testing.T) {
	m, env := setupModel(t, storage.NewMemoryStore())
	m = startAnalysis(t, m)
	m = send(t, m, analysisDoneMsg{session: m.scan, result: analysis.StubResult})
	expectState(t, m, constants.StateScanReview)

	m = press(t, m, "esc")
	expectState(t, m, constants.StateToday)
	if env.logs.Len() != 0 || m.statusMsg != "Scan discarded." {
		t.Errorf("expected discard, got %d logs and status %q", env.logs.Len(), m.statusMsg)
	}
}

func TestScanFailure(t *testing.T) {
	m, _ := setupModel(t, storage.NewMemoryStore())
	m = startAnalysis(t, m)

	m = send(t, m, analysisDoneMsg{session: m.scan, err: errors.New("service unavailable")})
	expectState(t, m, constants.StateToday)
	if !strings.Contains(m.statusMsg, "Analysis failed: service unavailable") {
		t.Errorf("unexpected status: %q", m.statusMsg)
	}
}

func seedFood(t *testing.T, env *testEnv) models.NutritionLog {
	t.Helper()
	log := models.DefaultFoodLog(fixedNow.Add(-time.Hour)).WithEntry(models.FoodEntry{
		Name: "Oatmeal", Calories: 300, Protein: 10, Carbs: 54, Fats: 5,
	})
	env.logs.Add(log)
	return log
}

func TestDetailEditAndDelete(t *testing.T) {
	m, env := setupModel(t, storage.NewMemoryStore())
	log := seedFood(t, env)
	m = press(t, m, "shift+tab")
	expectState(t, m, constants.StateLogs)

	m = send(t, m, loglist.OpenLogMsg{ID: log.ID})
	expectState(t, m, constants.StateDetail)
	if !strings.Contains(m.View(), "Oatmeal") || !strings.Contains(m.View(), "300 kcal") {
		t.Errorf("detail view missing entry:\n%s", m.View())
	}

	m = press(t, m, "e")
	expectState(t, m, constants.StateEditLog)
	if m.foodForm.Calories != "300" {
		t.Errorf("edit form should be pre-filled, got %+v", m.foodForm)
	}
	m.foodForm.Name = "Porridge"
	m.foodForm.Calories = "lots"
	m.foodForm.Fats = "7"
	m = submit(t, m)
	expectState(t, m, constants.StateDetail)

	got, _ := env.logs.Get(log.ID)
	f, _ := got.Food()
	if f.Name != "Porridge" || f.Calories != 300 || f.Fats != 7 || !got.Date.Equal(log.Date) {
		t.Errorf("unexpected edit result: %+v at %v", f, got.Date)
	}

	m = press(t, m, "d")
	expectState(t, m, constants.StateConfirmDelete)
	if !strings.Contains(m.View(), "Are you sure you want to delete \"Porridge\"?") {
		t.Errorf("confirm view missing:\n%s", m.View())
	}
	m = press(t, m, "n")
	expectState(t, m, constants.StateDetail)
	if env.logs.Len() != 1 {
		t.Fatal("declining must keep the entry")
	}

	m = press(t, m, "d")
	m = press(t, m, "y")
	expectState(t, m, constants.StateLogs)
	if env.logs.Len() != 0 {
		t.Errorf("expected entry deleted, got %d", env.logs.Len())
	}
	if len(m.logList.Visible()) != 0 {
		t.Error("log list should refresh after delete")
	}
}

func TestEditWaterFromList(t *testing.T) {
	m, env := setupModel(t, storage.NewMemoryStore())
	log := models.DefaultWaterLog(0.5, fixedNow)
	env.logs.Add(log)
	m = press(t, m, "shift+tab")

	m = send(t, m, loglist.EditLogMsg{ID: log.ID})
	expectState(t, m, constants.StateEditLog)
	if m.waterForm.Custom != "0.5" {
		t.Errorf("expected pre-filled amount, got %q", m.waterForm.Custom)
	}
	m.waterForm.Custom = "1.25"
	m = submit(t, m)
	expectState(t, m, constants.StateLogs)

	got, _ := env.logs.Get(log.ID)
	if w, _ := got.Water(); w.AmountLiters != 1.25 {
		t.Errorf("expected 1.25L, got %v", w.AmountLiters)
	}

	// Missing ids are a no-op
	m = send(t, m, loglist.DeleteLogMsg{ID: "missing"})
	expectState(t, m, constants.StateLogs)
}

func TestEditSettings(t *testing.T) {
	m, env := setupModel(t, storage.NewMemoryStore())
	m = press(t, m, "tab")
	expectState(t, m, constants.StateAccount)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("e")})
	if cmd == nil {
		t.Fatal("expected edit settings command")
	}
	m = send(t, m, cmd())
	expectState(t, m, constants.StateEditSettings)

	m.settingsForm.Units = constants.UnitsImperial
	m.settingsForm.WaterGoal = "3"
	m.settingsForm.DisplayName = "  Sam  "

	env.saveErr = errors.New("read-only")
	m = submit(t, m)
	expectState(t, m, constants.StateEditSettings)
	if !strings.Contains(m.formError, "read-only") {
		t.Errorf("expected save error shown, got %q", m.formError)
	}

	env.saveErr = nil
	m = submit(t, m)
	expectState(t, m, constants.StateAccount)
	if len(env.saved) != 1 {
		t.Fatalf("expected settings saved once, got %d", len(env.saved))
	}
	s := env.saved[0]
	if s.Units != constants.UnitsImperial || s.WaterGoalLiters != 3 || s.DisplayName != "Sam" {
		t.Errorf("unexpected saved settings: %+v", s)
	}
	if m.settings != s {
		t.Error("model should use the saved settings")
	}
	if !strings.Contains(m.View(), "101.4 fl oz") {
		t.Errorf("account view should show imperial goal:\n%s", m.View())
	}
}

func TestEditSettingsRejectsBadGoal(t *testing.T) {
	m, env := setupModel(t, storage.NewMemoryStore())
	m = press(t, m, "tab")
	m = send(t, m, keyCmd(t, m, "e"))

	m.settingsForm.WaterGoal = "-1"
	m = submit(t, m)
	expectState(t, m, constants.StateEditSettings)
	if m.formError == "" || len(env.saved) != 0 {
		t.Errorf("negative goal should be rejected, error=%q saved=%d", m.formError, len(env.saved))
	}
}

func keyCmd(t *testing.T, m Model, k string) tea.Msg {
	t.Helper()
	_, c := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)})
	if c == nil {
		t.Fatalf("expected a command for %q", k)
	}
	return c()
}

func TestPersistWarning(t *testing.T) {
	m, env := setupModel(t, &readOnlyStore{MemoryStore: storage.NewMemoryStore()})

	m = press(t, m, "w")
	m = submit(t, m)

	if env.logs.Len() != 1 {
		t.Fatalf("entry should stay in memory, got %d", env.logs.Len())
	}
	if !strings.Contains(m.View(), "Changes are kept in memory only: ") {
		t.Errorf("expected persistence warning:\n%s", m.View())
	}
}

func TestSearchKeepsKeysFromGlobalBindings(t *testing.T) {
	m, _ := setupModel(t, storage.NewMemoryStore())
	m = press(t, m, "shift+tab")
	m = press(t, m, "/")

	m = press(t, m, "q")
	if m.quitting || m.logList.Query() != "q" {
		t.Errorf("expected q typed into search, got %q", m.logList.Query())
	}
}
