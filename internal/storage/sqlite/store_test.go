package sqlite

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/julianstephens/foodlog/internal/storage"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	store := NewStore(filepath.Join(t.TempDir(), "nested", "foodlog.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("Init() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSetGetRoundTrip(t *testing.T) {
	store := setupTestStore(t)

	if _, err := store.Get("NutritionLogs"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Get() on empty store error = %v, want ErrNotFound", err)
	}

	blob := []byte(`[{"id":"a"}]`)
	if err := store.Set("NutritionLogs", blob); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}
	got, err := store.Get("NutritionLogs")
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if !bytes.Equal(got, blob) {
		t.Errorf("Get() = %s, want %s", got, blob)
	}

	replacement := []byte(`[]`)
	if err := store.Set("NutritionLogs", replacement); err != nil {
		t.Fatalf("second Set() failed: %v", err)
	}
	got, _ = store.Get("NutritionLogs")
	if !bytes.Equal(got, replacement) {
		t.Errorf("Get() after overwrite = %s, want %s", got, replacement)
	}
}

func TestDeleteAndKeys(t *testing.T) {
	store := setupTestStore(t)

	for _, k := range []string{"b", "a", "c"} {
		if err := store.Set(k, []byte(k)); err != nil {
			t.Fatalf("Set(%s) failed: %v", k, err)
		}
	}
	if err := store.Delete("b"); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}
	if err := store.Delete("missing"); err != nil {
		t.Errorf("Delete() of a missing key should be a no-op, got %v", err)
	}

	keys, err := store.Keys()
	if err != nil {
		t.Fatalf("Keys() failed: %v", err)
	}
	if strings.Join(keys, ",") != "a,c" {
		t.Errorf("Keys() = %v, want [a c]", keys)
	}
}

func TestPersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "foodlog.db")
	store := NewStore(path)
	if err := store.Init(); err != nil {
		t.Fatalf("Init() failed: %v", err)
	}
	if err := store.Set("Settings", []byte(`{"units":"imperial"}`)); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}
	store.Close()

	reopened := NewStore(path)
	if err := reopened.Load(); err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	defer reopened.Close()

	got, err := reopened.Get("Settings")
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if string(got) != `{"units":"imperial"}` {
		t.Errorf("Get() = %s", got)
	}

	current, latest, err := reopened.SchemaVersion()
	if err != nil {
		t.Fatalf("SchemaVersion() failed: %v", err)
	}
	if current != latest || current < 1 {
		t.Errorf("SchemaVersion() = %d, %d", current, latest)
	}
}

func TestLoadWithoutInit(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "missing.db"))
	err := store.Load()
	if err == nil || !strings.Contains(err.Error(), "foodlog init") {
		t.Errorf("Load() error = %v, want hint to run init", err)
	}
}

func TestInitIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "foodlog.db")
	for i := 0; i < 2; i++ {
		store := NewStore(path)
		if err := store.Init(); err != nil {
			t.Fatalf("Init() #%d failed: %v", i+1, err)
		}
		store.Close()
	}
}
