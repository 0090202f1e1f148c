package logstore

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/julianstephens/foodlog/internal/constants"
	"github.com/julianstephens/foodlog/internal/logger"
	"github.com/julianstephens/foodlog/internal/models"
	"github.com/julianstephens/foodlog/internal/storage"
)

// Op names the mutation that produced an Event.
type Op string

const (
	OpLoad   Op = "load"
	OpAdd    Op = "add"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

// Event is delivered to observers after every successful mutation.
type Event struct {
	Op Op
	ID string // empty for OpLoad
}

type observer struct {
	id int
	fn func(Event)
}

// Store is the in-memory, insertion-ordered log collection. Every mutation
// rewrites the whole collection to the provider under constants.LogsKey.
type Store struct {
	mu        sync.RWMutex
	provider  storage.Provider
	loc       *time.Location
	logs      []models.NutritionLog
	lastErr   error
	observers []observer
	nextObsID int
}

// New creates an empty store. loc is the calendar used by LogsForDay;
// nil means time.Local.
func New(provider storage.Provider, loc *time.Location) *Store {
	if loc == nil {
		loc = time.Local
	}
	return &Store{
		provider: provider,
		loc:      loc,
		logs:     []models.NutritionLog{},
	}
}

// Load replaces the collection with the persisted snapshot. A missing or
// undecodable snapshot leaves the store empty.
func (s *Store) Load() {
	logs := s.readSnapshot()

	s.mu.Lock()
	s.logs = logs
	s.mu.Unlock()

	s.notify(Event{Op: OpLoad})
}

func (s *Store) readSnapshot() []models.NutritionLog {
	data, err := s.provider.Get(constants.LogsKey)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			logger.Warn("Failed to read log snapshot, starting empty", "error", err)
		}
		return []models.NutritionLog{}
	}

	logs, err := models.DecodeLogs(data)
	if err != nil {
		logger.Warn("Failed to decode log snapshot, starting empty", "error", err, "bytes", len(data))
		return []models.NutritionLog{}
	}
	logger.Debug("Loaded log snapshot", "count", len(logs))
	return logs
}

// Location returns the calendar location used for day grouping.
func (s *Store) Location() *time.Location {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loc
}

// SetLocation changes the calendar used by LogsForDay.
func (s *Store) SetLocation(loc *time.Location) {
	if loc == nil {
		loc = time.Local
	}
	s.mu.Lock()
	s.loc = loc
	s.mu.Unlock()
}

// Add appends log and persists. Duplicates are not detected.
func (s *Store) Add(log models.NutritionLog) {
	s.mu.Lock()
	s.logs = append(s.logs, log)
	s.persistLocked()
	s.mu.Unlock()

	s.notify(Event{Op: OpAdd, ID: log.ID})
}

// Update replaces the first log with the given id, keeping its position.
// An unknown id is a silent no-op and reports false.
func (s *Store) Update(id string, updated models.NutritionLog) bool {
	s.mu.Lock()
	idx := s.indexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		logger.Debug("Update ignored, log not found", "id", id)
		return false
	}
	s.logs[idx] = updated
	s.persistLocked()
	s.mu.Unlock()

	s.notify(Event{Op: OpUpdate, ID: id})
	return true
}

// Delete removes every log with the given id. Deleting an unknown id is a
// no-op and reports false.
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	kept := make([]models.NutritionLog, 0, len(s.logs))
	for _, l := range s.logs {
		if l.ID != id {
			kept = append(kept, l)
		}
	}
	if len(kept) == len(s.logs) {
		s.mu.Unlock()
		logger.Debug("Delete ignored, log not found", "id", id)
		return false
	}
	s.logs = kept
	s.persistLocked()
	s.mu.Unlock()

	s.notify(Event{Op: OpDelete, ID: id})
	return true
}

// Get returns the log with the given id.
func (s *Store) Get(id string) (models.NutritionLog, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if idx := s.indexLocked(id); idx >= 0 {
		return s.logs[idx], true
	}
	return models.NutritionLog{}, false
}

// All returns a copy of the collection in insertion order.
func (s *Store) All() []models.NutritionLog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.NutritionLog, len(s.logs))
	copy(out, s.logs)
	return out
}

// Len reports how many logs are held.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.logs)
}

// LogsForDay returns the logs whose date falls on the same calendar day as
// day in the store's location, in insertion order.
func (s *Store) LogsForDay(day time.Time) []models.NutritionLog {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.NutritionLog{}
	for _, l := range s.logs {
		if SameDay(l.Date, day, s.loc) {
			out = append(out, l)
		}
	}
	return out
}

// LastPersistError returns the error from the most recent write, or nil if
// it succeeded.
func (s *Store) LastPersistError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

// Subscribe registers fn to run after every mutation, in subscription
// order. The returned func removes it.
func (s *Store) Subscribe(fn func(Event)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextObsID
	s.nextObsID++
	s.observers = append(s.observers, observer{id: id, fn: fn})
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			for i, o := range s.observers {
				if o.id == id {
					s.observers = append(s.observers[:i:i], s.observers[i+1:]...)
					return
				}
			}
		})
	}
}

func (s *Store) notify(e Event) {
	s.mu.RLock()
	observers := make([]observer, len(s.observers))
	copy(observers, s.observers)
	s.mu.RUnlock()

	for _, o := range observers {
		o.fn(e)
	}
}

func (s *Store) indexLocked(id string) int {
	for i, l := range s.logs {
		if l.ID == id {
			return i
		}
	}
	return -1
}

// persistLocked writes the full collection. Failures are recorded and
// logged, never returned.
func (s *Store) persistLocked() {
	data, err := models.EncodeLogs(s.logs)
	if err == nil {
		err = s.provider.Set(constants.LogsKey, data)
	}
	if err != nil {
		s.lastErr = fmt.Errorf("failed to persist logs: %w", err)
		logger.Error("Failed to persist logs", "error", err, "count", len(s.logs))
		return
	}
	s.lastErr = nil
}

// SameDay reports whether a and b fall on the same calendar day in loc.
func SameDay(a, b time.Time, loc *time.Location) bool {
	if loc == nil {
		loc = time.Local
	}
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.In(loc).Date()
	return ay == by && am == bm && ad == bd
}

// Search keeps the logs whose display name contains query, ignoring case.
// An empty query returns logs unchanged.
func Search(logs []models.NutritionLog, query string) []models.NutritionLog {
	if query == "" {
		return logs
	}
	needle := strings.ToLower(query)
	out := []models.NutritionLog{}
	for _, l := range logs {
		if strings.Contains(strings.ToLower(l.DisplayName()), needle) {
			out = append(out, l)
		}
	}
	return out
}
