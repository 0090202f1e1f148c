package system

import (
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/foodlog/internal/backup"
	"github.com/julianstephens/foodlog/internal/cli"
	"github.com/julianstephens/foodlog/internal/constants"
	"github.com/julianstephens/foodlog/internal/models"
	"github.com/julianstephens/foodlog/internal/storage"
)

// schemaVersioner is implemented by the SQL-backed stores.
type schemaVersioner interface {
	SchemaVersion() (current, latest int, err error)
}

// skipped marks a check that does not apply to the current backend.
type skipped string

func (s skipped) Error() string { return string(s) }

type DoctorCmd struct{}

type check struct {
	name     string
	run      func(ctx *cli.Context) error
	needsDB  bool
	warnOnly bool
}

var checks = []check{
	{name: "Storage reachable", run: checkStorageReachable},
	{name: "Schema version", run: checkSchemaVersion, needsDB: true},
	{name: "Log snapshot", run: checkLogSnapshot, needsDB: true},
	{name: "Duplicate ids", run: checkDuplicateIDs, needsDB: true},
	{name: "Settings", run: checkSettings, needsDB: true},
	{name: "Timezone", run: checkTimezone, needsDB: true},
	{name: "Backups present", run: checkBackupsPresent, warnOnly: true},
}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	ctx.Println("Running diagnostics...")
	ctx.Println()

	hasError := false
	reachable := false

	for i, c := range checks {
		if c.needsDB && !reachable {
			ctx.Printf("⊘ %s: SKIPPED (storage not reachable)\n", c.name)
			continue
		}

		err := c.run(ctx)
		switch {
		case err == nil:
			ctx.Printf("✓ %s: OK\n", c.name)
			if i == 0 {
				reachable = true
			}
		case isSkipped(err):
			ctx.Printf("⊘ %s: SKIPPED (%v)\n", c.name, err)
		case c.warnOnly:
			ctx.Printf("⚠ %s: WARNING\n", c.name)
			ctx.Printf("   %v\n", err)
		default:
			ctx.Printf("❌ %s: FAIL\n", c.name)
			ctx.Printf("   Error: %v\n", err)
			hasError = true
		}
	}

	ctx.Println()
	if hasError {
		ctx.Println("Diagnostics completed with errors.")
		return fmt.Errorf("one or more health checks failed")
	}

	ctx.Println("All diagnostics passed!")
	return nil
}

func isSkipped(err error) bool {
	var s skipped
	return errors.As(err, &s)
}

func checkStorageReachable(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return fmt.Errorf("failed to load storage: %w", err)
	}
	if _, err := ctx.Store.Keys(); err != nil {
		return fmt.Errorf("failed to query storage: %w", err)
	}
	return nil
}

func checkSchemaVersion(ctx *cli.Context) error {
	sv, ok := ctx.Store.(schemaVersioner)
	if !ok {
		return skipped("backend has no schema")
	}

	current, latest, err := sv.SchemaVersion()
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	if current > latest {
		return fmt.Errorf("schema version (%d) is newer than supported version (%d)", current, latest)
	}
	if current < latest {
		return fmt.Errorf("migrations incomplete: current version %d, latest version %d", current, latest)
	}
	return nil
}

func readLogs(ctx *cli.Context) ([]models.NutritionLog, error) {
	data, err := ctx.Store.Get(constants.LogsKey)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read logs: %w", err)
	}
	return models.DecodeLogs(data)
}

func checkLogSnapshot(ctx *cli.Context) error {
	if _, err := readLogs(ctx); err != nil {
		return fmt.Errorf("logs cannot be decoded and would load as empty: %w", err)
	}
	return nil
}

func checkDuplicateIDs(ctx *cli.Context) error {
	logs, err := readLogs(ctx)
	if err != nil {
		return skipped("logs cannot be decoded")
	}

	seen := make(map[string]int, len(logs))
	for _, l := range logs {
		seen[l.ID]++
	}
	var dupes int
	for _, n := range seen {
		if n > 1 {
			dupes++
		}
	}
	if dupes > 0 {
		return fmt.Errorf("%d ids are shared by more than one entry; edits only reach the first of each", dupes)
	}
	return nil
}

func checkSettings(ctx *cli.Context) error {
	data, err := ctx.Store.Get(constants.SettingsKey)
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read settings: %w", err)
	}
	s, err := models.DecodeSettings(data)
	if err != nil {
		return err
	}
	return s.Validate()
}

func checkTimezone(ctx *cli.Context) error {
	s, _ := storage.LoadSettings(ctx.Store)
	loc, err := s.Location()
	if err != nil {
		return err
	}
	now := time.Now()
	if now.Year() < 2020 {
		return fmt.Errorf("system clock appears wrong: %s", now.Format(time.RFC3339))
	}
	if _, offset := now.In(loc).Zone(); offset%900 != 0 {
		return fmt.Errorf("unusual UTC offset %ds for %s", offset, loc)
	}
	return nil
}

func checkBackupsPresent(ctx *cli.Context) error {
	if !ctx.HasStorageFile() {
		return skipped("backend is not a local file")
	}
	mgr := backup.NewManager(ctx.Store.GetConfigPath())
	backups, err := mgr.ListBackups()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}
	if len(backups) == 0 {
		return fmt.Errorf("no backups found - consider creating one with 'foodlog backup create'")
	}
	return nil
}
