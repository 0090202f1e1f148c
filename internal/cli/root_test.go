package cli

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	gokeyring "github.com/zalando/go-keyring"

	"github.com/julianstephens/foodlog/internal/constants"
	"github.com/julianstephens/foodlog/internal/keyring"
	"github.com/julianstephens/foodlog/internal/models"
	"github.com/julianstephens/foodlog/internal/storage"
	"github.com/julianstephens/foodlog/internal/storage/postgres"
	"github.com/julianstephens/foodlog/internal/storage/sqlite"
)

var fixedNow = time.Date(2025, 3, 30, 23, 30, 0, 0, time.UTC)

func newTestContext(t *testing.T) *Context {
	t.Helper()
	ctx := &Context{
		Store:  storage.NewMemoryStore(),
		Now:    func() time.Time { return fixedNow },
		Stdout: &bytes.Buffer{},
	}
	if err := ctx.Load(); err != nil {
		t.Fatalf("failed to load context: %v", err)
	}
	s := ctx.Settings
	s.Timezone = "UTC"
	if err := ctx.SaveSettings(s); err != nil {
		t.Fatalf("failed to save settings: %v", err)
	}
	return ctx
}

func TestParseDay(t *testing.T) {
	ctx := newTestContext(t)

	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "", want: "2025-03-30"},
		{in: "today", want: "2025-03-30"},
		{in: " Yesterday ", want: "2025-03-29"},
		{in: "2024-02-29", want: "2024-02-29"},
		{in: "2025-02-30", wantErr: true},
		{in: "30/03/2025", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ctx.ParseDay(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected an error, got %v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Format(constants.DateFormat) != tt.want || got.Hour() != 12 {
				t.Errorf("expected noon on %s, got %v", tt.want, got)
			}
		})
	}
}

func TestParseDay_UsesStoreCalendar(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	if err != nil {
		t.Skip("timezone data not available")
	}
	ctx := newTestContext(t)
	ctx.Logs.SetLocation(tokyo)

	// 23:30 UTC is already the next morning in Tokyo
	got, err := ctx.ParseDay("today")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Format(constants.DateFormat) != "2025-03-31" {
		t.Errorf("expected 2025-03-31 in Tokyo, got %v", got)
	}
}

func TestFindLog(t *testing.T) {
	ctx := newTestContext(t)
	ctx.Logs.Add(models.NutritionLog{ID: "abc-111", Date: fixedNow, Entry: models.FoodEntry{Name: "A"}})
	ctx.Logs.Add(models.NutritionLog{ID: "abc-222", Date: fixedNow, Entry: models.FoodEntry{Name: "B"}})

	if l, err := ctx.FindLog("abc-222"); err != nil || l.DisplayName() != "B" {
		t.Errorf("exact id: got %v, %v", l.ID, err)
	}
	if l, err := ctx.FindLog("abc-1"); err != nil || l.ID != "abc-111" {
		t.Errorf("unique prefix: got %v, %v", l.ID, err)
	}
	if _, err := ctx.FindLog("abc"); err == nil || !strings.Contains(err.Error(), "ambiguous") {
		t.Errorf("expected ambiguous prefix error, got %v", err)
	}
	if _, err := ctx.FindLog("zzz"); !errors.Is(err, ErrLogNotFound) {
		t.Errorf("expected ErrLogNotFound, got %v", err)
	}
	if _, err := ctx.FindLog("  "); !errors.Is(err, ErrLogNotFound) {
		t.Errorf("expected ErrLogNotFound for blank id, got %v", err)
	}
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		input string
		def   bool
		want  bool
	}{
		{"y\n", false, true},
		{"YES\n", false, true},
		{"n\n", true, false},
		{"\n", true, true},
		{"\n", false, false},
		{"", true, true},
		{"maybe\n", true, false},
	}

	for _, tt := range tests {
		ctx := &Context{Stdout: &bytes.Buffer{}, Stdin: strings.NewReader(tt.input)}
		got, err := ctx.Confirm("Continue?", tt.def)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != tt.want {
			t.Errorf("Confirm(%q, %v) = %v, want %v", tt.input, tt.def, got, tt.want)
		}
	}
}

func TestLoad_FallsBackOnBadSettings(t *testing.T) {
	store := storage.NewMemoryStore()
	if err := store.Set(constants.SettingsKey, []byte(`{"timezone":"Nowhere/Land"}`)); err != nil {
		t.Fatalf("failed to seed settings: %v", err)
	}

	ctx := &Context{Store: store}
	if err := ctx.Load(); err != nil {
		t.Fatalf("load should not fail on bad settings: %v", err)
	}
	if ctx.Logs.Location() != time.Local {
		t.Errorf("expected local timezone fallback, got %v", ctx.Logs.Location())
	}
}

func TestCheckPersisted(t *testing.T) {
	ctx := &Context{Store: &readOnlyStore{MemoryStore: storage.NewMemoryStore()}}
	if err := ctx.Load(); err != nil {
		t.Fatalf("failed to load: %v", err)
	}

	ctx.Logs.Add(models.DefaultWaterLog(0.5, fixedNow))
	if err := ctx.CheckPersisted(); err == nil {
		t.Error("expected persist failure to surface")
	}
	if ctx.Logs.Len() != 1 {
		t.Errorf("entry should stay in memory, got %d", ctx.Logs.Len())
	}
}

type readOnlyStore struct {
	*storage.MemoryStore
}

func (s *readOnlyStore) Set(string, []byte) error {
	return errors.New("read-only")
}

func TestAcquireLock(t *testing.T) {
	dir := t.TempDir()
	store := storage.NewJSONStore(filepath.Join(dir, "foodlog.json"))
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	ctx := &Context{Store: store}

	if err := ctx.AcquireLock(); err != nil {
		t.Fatalf("acquire failed: %v", err)
	}
	if err := ctx.AcquireLock(); err != nil {
		t.Fatalf("second acquire should be a no-op: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, constants.LockfileName)); err != nil {
		t.Errorf("lock file missing: %v", err)
	}

	if err := ctx.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, constants.LockfileName)); !os.IsNotExist(err) {
		t.Errorf("lock file should be removed on close, got %v", err)
	}
}

func TestAcquireLock_ReloadsSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "foodlog.json")
	if err := storage.NewJSONStore(path).Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	open := func() *Context {
		t.Helper()
		ctx := &Context{
			Store:  storage.NewJSONStore(path),
			Now:    func() time.Time { return fixedNow },
			Stdout: &bytes.Buffer{},
		}
		if err := ctx.Load(); err != nil {
			t.Fatalf("failed to load context: %v", err)
		}
		return ctx
	}

	first := open()
	second := open()

	if err := second.AcquireLock(); err != nil {
		t.Fatalf("second acquire failed: %v", err)
	}
	s := second.Settings
	s.DisplayName = "Sam"
	if err := second.SaveSettings(s); err != nil {
		t.Fatalf("failed to save settings: %v", err)
	}
	second.Logs.Add(models.DefaultWaterLog(0.5, fixedNow))
	if err := second.CheckPersisted(); err != nil {
		t.Fatalf("water not persisted: %v", err)
	}
	if err := second.Close(); err != nil {
		t.Fatalf("second close failed: %v", err)
	}

	if err := first.AcquireLock(); err != nil {
		t.Fatalf("first acquire failed: %v", err)
	}
	defer first.Close()
	if first.Logs.Len() != 1 || first.Settings.DisplayName != "Sam" {
		t.Errorf("after lock: %d logs, display name %q", first.Logs.Len(), first.Settings.DisplayName)
	}
	first.Logs.Add(models.DefaultFoodLog(fixedNow).WithEntry(models.FoodEntry{Name: "Chicken Salad", Calories: 350}))
	if err := first.CheckPersisted(); err != nil {
		t.Fatalf("food not persisted: %v", err)
	}

	reader := open()
	if reader.Logs.Len() != 2 {
		t.Fatalf("entries on disk = %d, want 2", reader.Logs.Len())
	}
	if reader.Settings.DisplayName != "Sam" {
		t.Errorf("display name = %q, want Sam", reader.Settings.DisplayName)
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}

	if got := ExpandPath("~/.config/foodlog/foodlog.db"); got != filepath.Join(home, ".config/foodlog/foodlog.db") {
		t.Errorf("unexpected expansion: %s", got)
	}
	if got := ExpandPath("/tmp/foodlog.db"); got != "/tmp/foodlog.db" {
		t.Errorf("absolute paths should be untouched, got %s", got)
	}
	if got := ExpandPath("~user/foodlog.db"); got != "~user/foodlog.db" {
		t.Errorf("other users' homes are not expanded, got %s", got)
	}
}

func TestConfigDir(t *testing.T) {
	if got := ConfigDir("/data/foodlog/foodlog.db"); got != "/data/foodlog" {
		t.Errorf("expected /data/foodlog, got %s", got)
	}
	def := ConfigDir(constants.DefaultConfigPath)
	if got := ConfigDir("postgres://u@host/db"); got != def {
		t.Errorf("postgres should use the default config dir %s, got %s", def, got)
	}
	if got := ConfigDir(storage.MemoryPath); got != def {
		t.Errorf("memory should use the default config dir %s, got %s", def, got)
	}
}

func TestOpenProvider(t *testing.T) {
	gokeyring.MockInit()
	t.Setenv(constants.EnvDBConnection, "")

	if _, ok := OpenProvider(storage.MemoryPath).(*storage.MemoryStore); !ok {
		t.Error("expected MemoryStore for :memory:")
	}
	if _, ok := OpenProvider("/tmp/foodlog.JSON").(*storage.JSONStore); !ok {
		t.Error("expected JSONStore for .json")
	}
	if _, ok := OpenProvider("/tmp/foodlog.db").(*sqlite.Store); !ok {
		t.Error("expected sqlite store for a file path")
	}
	if _, ok := OpenProvider("postgresql://u@localhost/foodlog").(*postgres.Store); !ok {
		t.Error("expected postgres store for a connection string")
	}
	if _, ok := OpenProvider(constants.DefaultConfigPath).(*sqlite.Store); !ok {
		t.Error("expected sqlite store for the default path without stored credentials")
	}

	if err := keyring.Set(keyring.SecretDBConnection, "postgres://u:pw@localhost/foodlog"); err != nil {
		t.Fatalf("failed to store connection: %v", err)
	}
	if _, ok := OpenProvider(constants.DefaultConfigPath).(*postgres.Store); !ok {
		t.Error("stored connection string should take precedence over the default path")
	}
	if _, ok := OpenProvider("/tmp/foodlog.db").(*sqlite.Store); !ok {
		t.Error("an explicit path should ignore stored credentials")
	}
}
