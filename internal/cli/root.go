package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/julianstephens/foodlog/internal/analysis"
	"github.com/julianstephens/foodlog/internal/backup"
	"github.com/julianstephens/foodlog/internal/constants"
	"github.com/julianstephens/foodlog/internal/lock"
	"github.com/julianstephens/foodlog/internal/logger"
	"github.com/julianstephens/foodlog/internal/logstore"
	"github.com/julianstephens/foodlog/internal/models"
	"github.com/julianstephens/foodlog/internal/storage"
)

// ErrLogNotFound is returned when an id or id prefix matches no log.
var ErrLogNotFound = errors.New("log not found")

type Context struct {
	Store    storage.Provider
	Logs     *logstore.Store
	Settings models.Settings
	Analyzer analysis.Analyzer

	// Now, Stdout and Stdin default to the real clock and terminal.
	Now    func() time.Time
	Stdout io.Writer
	Stdin  io.Reader

	lock *lock.Lock
}

// Load opens the storage and reads settings and logs from it. Undecodable
// settings fall back to the defaults; an unknown timezone falls back to
// the local one.
func (c *Context) Load() error {
	if err := c.Store.Load(); err != nil {
		return err
	}
	return c.loadState()
}

func (c *Context) loadState() error {
	settings, err := storage.LoadSettings(c.Store)
	if err != nil {
		logger.Warn("Using default settings", "error", err)
	}
	c.Settings = settings

	loc, err := settings.Location()
	if err != nil {
		logger.Warn("Falling back to local timezone", "error", err)
		loc = time.Local
	}

	c.Logs = logstore.New(c.Store, loc)
	c.Logs.Load()
	return nil
}

// SaveSettings persists s and applies its timezone to the log store.
func (c *Context) SaveSettings(s models.Settings) error {
	if err := storage.SaveSettings(c.Store, s); err != nil {
		return err
	}
	c.Settings = s
	if c.Logs != nil {
		loc, _ := s.Location()
		c.Logs.SetLocation(loc)
	}
	return nil
}

// Close releases the process lock and the storage.
func (c *Context) Close() error {
	var errs []error
	if c.lock != nil {
		errs = append(errs, c.lock.Release())
		c.lock = nil
	}
	if c.Store != nil {
		errs = append(errs, c.Store.Close())
	}
	return errors.Join(errs...)
}

// AcquireLock takes the single-writer lock for the storage location. It is
// a no-op when the lock is already held. If settings and logs were loaded
// before the lock was taken they are read again, so the command mutates
// the latest snapshot rather than the one it started with.
func (c *Context) AcquireLock() error {
	if c.lock != nil {
		return nil
	}
	l, err := lock.Acquire(c.ConfigDir())
	if err != nil {
		return err
	}
	c.lock = l

	if c.Logs == nil {
		return nil
	}
	if err := c.Store.Load(); err != nil {
		return fmt.Errorf("failed to reload storage: %w", err)
	}
	return c.loadState()
}

// ConfigDir is the directory holding the storage file, logs and lock.
func (c *Context) ConfigDir() string {
	if c.HasStorageFile() {
		return filepath.Dir(c.Store.GetConfigPath())
	}
	return ConfigDir(constants.DefaultConfigPath)
}

// HasStorageFile reports whether the storage is a local file that can be
// backed up.
func (c *Context) HasStorageFile() bool {
	return storage.IsLocalFile(c.Store.GetConfigPath())
}

// PerformAutomaticBackup creates an automatic backup. Failures are logged.
func (c *Context) PerformAutomaticBackup() {
	if !c.HasStorageFile() {
		return
	}
	mgr := backup.NewManager(c.Store.GetConfigPath())
	if _, err := mgr.CreateBackup(); err != nil {
		logger.Warn("Automatic backup failed", "error", err)
	}
}

// CheckPersisted turns a swallowed write failure of the last mutation into
// a command error.
func (c *Context) CheckPersisted() error {
	if err := c.Logs.LastPersistError(); err != nil {
		return fmt.Errorf("entry kept in memory only: %w", err)
	}
	return nil
}

func (c *Context) Clock() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

func (c *Context) Out() io.Writer {
	if c.Stdout != nil {
		return c.Stdout
	}
	return os.Stdout
}

func (c *Context) In() io.Reader {
	if c.Stdin != nil {
		return c.Stdin
	}
	return os.Stdin
}

// Printf writes to the command output.
func (c *Context) Printf(format string, args ...interface{}) {
	fmt.Fprintf(c.Out(), format, args...)
}

func (c *Context) Println(args ...interface{}) {
	fmt.Fprintln(c.Out(), args...)
}

// Confirm asks a yes/no question. An empty answer picks def.
func (c *Context) Confirm(prompt string, def bool) (bool, error) {
	hint := "[y/N]"
	if def {
		hint = "[Y/n]"
	}
	c.Printf("%s %s: ", prompt, hint)

	response, err := bufio.NewReader(c.In()).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}
	response = strings.TrimSpace(strings.ToLower(response))
	if response == "" {
		return def, nil
	}
	return response == "y" || response == "yes", nil
}

// Today is the current instant in the store's calendar.
func (c *Context) Today() time.Time {
	return c.Clock().In(c.location())
}

// ParseDay reads a day argument: "", "today", "yesterday" or YYYY-MM-DD in
// the store's calendar. The result is noon of that day.
func (c *Context) ParseDay(s string) (time.Time, error) {
	loc := c.location()
	today := c.Today()
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "today":
		return noon(today, loc), nil
	case "yesterday":
		return noon(today.AddDate(0, 0, -1), loc), nil
	}
	d, err := time.ParseInLocation(constants.DateFormat, strings.TrimSpace(s), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD: %w", s, err)
	}
	return noon(d, loc), nil
}

func noon(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 12, 0, 0, 0, loc)
}

func (c *Context) location() *time.Location {
	if c.Logs != nil {
		return c.Logs.Location()
	}
	return time.Local
}

// FindLog resolves a full id or a unique id prefix.
func (c *Context) FindLog(ref string) (models.NutritionLog, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return models.NutritionLog{}, fmt.Errorf("%w: empty id", ErrLogNotFound)
	}
	if l, ok := c.Logs.Get(ref); ok {
		return l, nil
	}

	var matches []models.NutritionLog
	for _, l := range c.Logs.All() {
		if strings.HasPrefix(l.ID, ref) {
			matches = append(matches, l)
		}
	}
	switch len(matches) {
	case 0:
		return models.NutritionLog{}, fmt.Errorf("%w: %s", ErrLogNotFound, ref)
	case 1:
		return matches[0], nil
	default:
		return models.NutritionLog{}, fmt.Errorf("id prefix %q is ambiguous (%d matches)", ref, len(matches))
	}
}
