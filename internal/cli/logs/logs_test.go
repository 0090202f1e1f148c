package logs

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/julianstephens/foodlog/internal/analysis"
	"github.com/julianstephens/foodlog/internal/cli"
	"github.com/julianstephens/foodlog/internal/models"
	"github.com/julianstephens/foodlog/internal/storage"
)

var fixedNow = time.Date(2025, 3, 30, 12, 0, 0, 0, time.UTC)

func setupTestContext(t *testing.T) (*cli.Context, *bytes.Buffer) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "foodlog.json")
	store := storage.NewJSONStore(path)
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}

	out := &bytes.Buffer{}
	ctx := &cli.Context{
		Store:    store,
		Analyzer: analysis.NewStubAnalyzer(0),
		Now:      func() time.Time { return fixedNow },
		Stdout:   out,
		Stdin:    strings.NewReader(""),
	}
	if err := ctx.Load(); err != nil {
		t.Fatalf("failed to load context: %v", err)
	}
	if err := ctx.SaveSettings(withUTC(ctx.Settings)); err != nil {
		t.Fatalf("failed to save settings: %v", err)
	}
	t.Cleanup(func() { ctx.Close() })
	return ctx, out
}

func withUTC(s models.Settings) models.Settings {
	s.Timezone = "UTC"
	return s
}

func strPtr(s string) *string { return &s }

func TestAddFoodCmd(t *testing.T) {
	ctx, out := setupTestContext(t)

	cmd := &AddFoodCmd{Name: "Oatmeal", Calories: "150", Protein: "5", Carbs: "27", Fats: "abc"}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("add food failed: %v", err)
	}

	logs := ctx.Logs.All()
	if len(logs) != 1 {
		t.Fatalf("expected 1 log, got %d", len(logs))
	}
	food, ok := logs[0].Food()
	if !ok {
		t.Fatalf("expected a food log, got %s", logs[0].Kind())
	}
	if food.Name != "Oatmeal" || food.Calories != 150 || food.Protein != 5 || food.Carbs != 27 {
		t.Errorf("unexpected entry: %+v", food)
	}
	if food.Fats != 0 {
		t.Errorf("unparsable fats should be 0, got %v", food.Fats)
	}
	if !logs[0].Date.Equal(fixedNow) {
		t.Errorf("expected date %v, got %v", fixedNow, logs[0].Date)
	}
	if !strings.Contains(out.String(), "Oatmeal") {
		t.Errorf("expected output to mention the entry, got %q", out.String())
	}

	// The entry must be on disk, not just in memory
	reloaded := storage.NewJSONStore(ctx.Store.GetConfigPath())
	if err := reloaded.Load(); err != nil {
		t.Fatalf("failed to reload store: %v", err)
	}
	data, err := reloaded.Get("NutritionLogs")
	if err != nil {
		t.Fatalf("logs not persisted: %v", err)
	}
	decoded, err := models.DecodeLogs(data)
	if err != nil || len(decoded) != 1 {
		t.Errorf("expected 1 persisted log, got %d (err %v)", len(decoded), err)
	}
}

func TestAddWaterCmd(t *testing.T) {
	tests := []struct {
		name    string
		cmd     AddWaterCmd
		want    float64
		wantErr bool
	}{
		{name: "default preset", cmd: AddWaterCmd{}, want: 0.25},
		{name: "custom amount", cmd: AddWaterCmd{Amount: "0.4"}, want: 0.4},
		{name: "preset", cmd: AddWaterCmd{Preset: 4}, want: 1.0},
		{name: "zero rejected", cmd: AddWaterCmd{Amount: "0"}, wantErr: true},
		{name: "negative rejected", cmd: AddWaterCmd{Amount: "-1"}, wantErr: true},
		{name: "garbage rejected", cmd: AddWaterCmd{Amount: "lots"}, wantErr: true},
		{name: "preset out of range", cmd: AddWaterCmd{Preset: 7}, wantErr: true},
		{name: "amount and preset", cmd: AddWaterCmd{Amount: "1", Preset: 1}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, _ := setupTestContext(t)
			err := tt.cmd.Run(ctx)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected an error")
				}
				if ctx.Logs.Len() != 0 {
					t.Errorf("nothing should be logged on error, got %d", ctx.Logs.Len())
				}
				return
			}
			if err != nil {
				t.Fatalf("add water failed: %v", err)
			}
			water, ok := ctx.Logs.All()[0].Water()
			if !ok {
				t.Fatal("expected a water log")
			}
			if water.AmountLiters != tt.want {
				t.Errorf("expected %v L, got %v", tt.want, water.AmountLiters)
			}
		})
	}
}

func TestScanCmd(t *testing.T) {
	imagePath := filepath.Join(t.TempDir(), "meal.jpg")
	if err := os.WriteFile(imagePath, []byte{0xFF, 0xD8, 0xFF}, 0600); err != nil {
		t.Fatalf("failed to write image: %v", err)
	}

	t.Run("confirmed", func(t *testing.T) {
		ctx, _ := setupTestContext(t)
		ctx.Stdin = strings.NewReader("\n")

		cmd := &ScanCmd{Image: imagePath, Name: strPtr("Lunch Salad")}
		if err := cmd.Run(ctx); err != nil {
			t.Fatalf("scan failed: %v", err)
		}

		logs := ctx.Logs.All()
		if len(logs) != 1 {
			t.Fatalf("expected 1 log, got %d", len(logs))
		}
		food, _ := logs[0].Food()
		if food.Name != "Lunch Salad" {
			t.Errorf("expected overridden name, got %q", food.Name)
		}
		if food.Calories != analysis.StubResult.Calories {
			t.Errorf("expected stub calories, got %v", food.Calories)
		}
		if !bytes.Equal(food.Image, []byte{0xFF, 0xD8, 0xFF}) {
			t.Errorf("expected image to be attached, got %v", food.Image)
		}
	})

	t.Run("declined", func(t *testing.T) {
		ctx, out := setupTestContext(t)
		ctx.Stdin = strings.NewReader("n\n")

		cmd := &ScanCmd{Image: imagePath}
		if err := cmd.Run(ctx); err != nil {
			t.Fatalf("scan failed: %v", err)
		}
		if ctx.Logs.Len() != 0 {
			t.Errorf("declined scan should save nothing, got %d logs", ctx.Logs.Len())
		}
		if !strings.Contains(out.String(), "discarded") {
			t.Errorf("expected discard message, got %q", out.String())
		}
	})

	t.Run("analysis failure", func(t *testing.T) {
		ctx, _ := setupTestContext(t)
		ctx.Analyzer = failingAnalyzer{err: errors.New("service down")}

		cmd := &ScanCmd{Image: imagePath, Yes: true}
		err := cmd.Run(ctx)
		if err == nil || !strings.Contains(err.Error(), "service down") {
			t.Fatalf("expected analysis error, got %v", err)
		}
		if ctx.Logs.Len() != 0 {
			t.Errorf("failed scan should save nothing, got %d logs", ctx.Logs.Len())
		}
	})

	t.Run("canceled", func(t *testing.T) {
		ctx, _ := setupTestContext(t)
		ctx.Analyzer = failingAnalyzer{err: analysis.ErrCanceled}

		cmd := &ScanCmd{Image: imagePath, Yes: true}
		if err := cmd.Run(ctx); err != nil {
			t.Fatalf("canceled scan should not be an error: %v", err)
		}
		if ctx.Logs.Len() != 0 {
			t.Errorf("canceled scan should save nothing, got %d logs", ctx.Logs.Len())
		}
	})
}

type failingAnalyzer struct {
	err error
}

func (a failingAnalyzer) Analyze(context.Context, []byte) (analysis.Result, error) {
	return analysis.Result{}, a.err
}

func TestListCmd(t *testing.T) {
	ctx, out := setupTestContext(t)

	yesterday := fixedNow.AddDate(0, 0, -1)
	ctx.Logs.Add(models.NutritionLog{ID: "aaaa1111-food", Date: fixedNow, Entry: models.FoodEntry{Name: "Chicken Salad", Calories: 350}})
	ctx.Logs.Add(models.NutritionLog{ID: "bbbb2222-water", Date: fixedNow, Entry: models.WaterEntry{AmountLiters: 0.5}})
	ctx.Logs.Add(models.NutritionLog{ID: "cccc3333-food", Date: yesterday, Entry: models.FoodEntry{Name: "Pasta"}})

	if err := (&ListCmd{Date: "today"}).Run(ctx); err != nil {
		t.Fatalf("list failed: %v", err)
	}
	got := out.String()
	if !strings.Contains(got, "Chicken Salad") || !strings.Contains(got, "0.50L") {
		t.Errorf("expected today's entries, got %q", got)
	}
	if strings.Contains(got, "Pasta") {
		t.Errorf("yesterday's entry should not be listed, got %q", got)
	}

	out.Reset()
	if err := (&ListCmd{Date: "yesterday"}).Run(ctx); err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if !strings.Contains(out.String(), "Pasta") {
		t.Errorf("expected yesterday's entry, got %q", out.String())
	}

	out.Reset()
	if err := (&ListCmd{All: true, Search: "SALAD"}).Run(ctx); err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if !strings.Contains(out.String(), "Chicken Salad") || strings.Contains(out.String(), "Pasta") {
		t.Errorf("search should match case-insensitively, got %q", out.String())
	}

	out.Reset()
	if err := (&ListCmd{Date: "2020-01-01"}).Run(ctx); err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if !strings.Contains(out.String(), "No entries") {
		t.Errorf("expected empty message, got %q", out.String())
	}

	if err := (&ListCmd{Date: "03/30/2025"}).Run(ctx); err == nil {
		t.Error("expected an error for a malformed date")
	}
}

func TestShowCmd(t *testing.T) {
	ctx, out := setupTestContext(t)
	ctx.Logs.Add(models.NutritionLog{
		ID:    "aaaa1111-food",
		Date:  fixedNow,
		Entry: models.FoodEntry{Name: "Chicken Salad", Calories: 350, Protein: 25, Image: make([]byte, 2048)},
	})

	if err := (&ShowCmd{ID: "aaaa"}).Run(ctx); err != nil {
		t.Fatalf("show failed: %v", err)
	}
	got := out.String()
	for _, want := range []string{"aaaa1111-food", "Chicken Salad", "350 kcal", "25.0 g", "2.0 KB"} {
		if !strings.Contains(got, want) {
			t.Errorf("expected %q in output %q", want, got)
		}
	}

	if err := (&ShowCmd{ID: "zzzz"}).Run(ctx); !errors.Is(err, cli.ErrLogNotFound) {
		t.Errorf("expected ErrLogNotFound, got %v", err)
	}
}

func TestEditCmd(t *testing.T) {
	ctx, _ := setupTestContext(t)
	ctx.Logs.Add(models.NutritionLog{
		ID:    "food-1",
		Date:  fixedNow,
		Entry: models.FoodEntry{Name: "Toast", Calories: 100, Protein: 3, Image: []byte{1}},
	})
	ctx.Logs.Add(models.NutritionLog{ID: "water-1", Date: fixedNow, Entry: models.WaterEntry{AmountLiters: 0.25}})

	cmd := &EditCmd{ID: "food-1", Name: strPtr("Buttered Toast"), Calories: strPtr("oops"), Fats: strPtr("6")}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("edit failed: %v", err)
	}
	log, _ := ctx.Logs.Get("food-1")
	food, _ := log.Food()
	if food.Name != "Buttered Toast" || food.Fats != 6 {
		t.Errorf("edit not applied: %+v", food)
	}
	if food.Calories != 100 {
		t.Errorf("bad input should keep previous calories, got %v", food.Calories)
	}
	if food.Protein != 3 || len(food.Image) != 1 {
		t.Errorf("untouched fields should be kept: %+v", food)
	}
	if !log.Date.Equal(fixedNow) {
		t.Errorf("edit should keep the date, got %v", log.Date)
	}

	if err := (&EditCmd{ID: "water-1", Water: strPtr("0.75")}).Run(ctx); err != nil {
		t.Fatalf("water edit failed: %v", err)
	}
	log, _ = ctx.Logs.Get("water-1")
	if water, _ := log.Water(); water.AmountLiters != 0.75 {
		t.Errorf("expected 0.75 L, got %v", water.AmountLiters)
	}

	errorCases := []struct {
		name string
		cmd  EditCmd
	}{
		{name: "water flag on food", cmd: EditCmd{ID: "food-1", Water: strPtr("1")}},
		{name: "food flag on water", cmd: EditCmd{ID: "water-1", Name: strPtr("Juice")}},
		{name: "no changes", cmd: EditCmd{ID: "food-1"}},
		{name: "unknown id", cmd: EditCmd{ID: "missing", Name: strPtr("x")}},
	}
	for _, tt := range errorCases {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cmd.Run(ctx); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestDeleteCmd(t *testing.T) {
	ctx, _ := setupTestContext(t)
	ctx.Logs.Add(models.NutritionLog{ID: "food-1", Date: fixedNow, Entry: models.FoodEntry{Name: "Toast"}})
	ctx.Logs.Add(models.NutritionLog{ID: "food-2", Date: fixedNow, Entry: models.FoodEntry{Name: "Jam"}})

	ctx.Stdin = strings.NewReader("n\n")
	if err := (&DeleteCmd{ID: "food-1"}).Run(ctx); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if ctx.Logs.Len() != 2 {
		t.Errorf("declined delete should keep the entry, got %d logs", ctx.Logs.Len())
	}

	ctx.Stdin = strings.NewReader("y\n")
	if err := (&DeleteCmd{ID: "food-1"}).Run(ctx); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, ok := ctx.Logs.Get("food-1"); ok {
		t.Error("entry should be deleted")
	}

	if err := (&DeleteCmd{ID: "food", Yes: true}).Run(ctx); err != nil {
		t.Fatalf("unique prefix should resolve: %v", err)
	}
	if ctx.Logs.Len() != 0 {
		t.Errorf("expected no logs left, got %d", ctx.Logs.Len())
	}
}

func openSecondWriter(t *testing.T, ctx *cli.Context) *cli.Context {
	t.Helper()
	other := &cli.Context{
		Store:  storage.NewJSONStore(ctx.Store.GetConfigPath()),
		Now:    func() time.Time { return fixedNow },
		Stdout: &bytes.Buffer{},
		Stdin:  strings.NewReader(""),
	}
	if err := other.Load(); err != nil {
		t.Fatalf("failed to load second context: %v", err)
	}
	return other
}

func TestScanCmd_KeepsEntriesWrittenMeanwhile(t *testing.T) {
	imagePath := filepath.Join(t.TempDir(), "meal.jpg")
	if err := os.WriteFile(imagePath, []byte{0xFF, 0xD8, 0xFF}, 0600); err != nil {
		t.Fatalf("failed to write image: %v", err)
	}
	ctx, _ := setupTestContext(t)

	other := openSecondWriter(t, ctx)
	if err := (&AddWaterCmd{Amount: "0.5"}).Run(other); err != nil {
		t.Fatalf("add water failed: %v", err)
	}
	if err := other.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	if err := (&ScanCmd{Image: imagePath, Yes: true}).Run(ctx); err != nil {
		t.Fatalf("scan failed: %v", err)
	}

	reader := openSecondWriter(t, ctx)
	if reader.Logs.Len() != 2 {
		t.Fatalf("entries on disk = %d, want 2", reader.Logs.Len())
	}
}

func TestDeleteCmd_EntryRemovedMeanwhile(t *testing.T) {
	ctx, _ := setupTestContext(t)
	ctx.Logs.Add(models.NutritionLog{ID: "food-1", Date: fixedNow, Entry: models.FoodEntry{Name: "Toast"}})
	ctx.Logs.Add(models.NutritionLog{ID: "food-2", Date: fixedNow, Entry: models.FoodEntry{Name: "Jam"}})

	other := openSecondWriter(t, ctx)
	if err := (&DeleteCmd{ID: "food-1", Yes: true}).Run(other); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if err := (&AddWaterCmd{Preset: 2}).Run(other); err != nil {
		t.Fatalf("add water failed: %v", err)
	}
	if err := other.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	err := (&DeleteCmd{ID: "food-1", Yes: true}).Run(ctx)
	if !errors.Is(err, cli.ErrLogNotFound) {
		t.Fatalf("expected ErrLogNotFound, got %v", err)
	}
	if ctx.Logs.Len() != 2 {
		t.Errorf("expected Jam and the new water entry, got %d logs", ctx.Logs.Len())
	}
}
