package flows

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/julianstephens/foodlog/internal/analysis"
	"github.com/julianstephens/foodlog/internal/logger"
	"github.com/julianstephens/foodlog/internal/models"
)

type ScanState int

const (
	ScanIdle ScanState = iota
	ScanAnalyzing
	ScanReviewing
	ScanSaved
	ScanCanceled
	ScanFailed
)

func (s ScanState) String() string {
	switch s {
	case ScanIdle:
		return "idle"
	case ScanAnalyzing:
		return "analyzing"
	case ScanReviewing:
		return "reviewing"
	case ScanSaved:
		return "saved"
	case ScanCanceled:
		return "canceled"
	case ScanFailed:
		return "failed"
	}
	return fmt.Sprintf("ScanState(%d)", int(s))
}

// ErrInvalidScanState is returned when a scan step is attempted out of order.
var ErrInvalidScanState = errors.New("invalid scan state")

// Adder is the part of the log store a scan needs to save its result.
type Adder interface {
	Add(models.NutritionLog)
}

// ScanSession is one pass through capture, analysis, review and save.
// A session that has been canceled ignores any analysis result that
// arrives afterwards.
type ScanSession struct {
	mu     sync.Mutex
	state  ScanState
	image  []byte
	form   FoodForm
	err    error
	cancel context.CancelFunc
}

func NewScanSession() *ScanSession {
	return &ScanSession{}
}

func (s *ScanSession) State() ScanState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Err is the analysis error of a failed session.
func (s *ScanSession) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Image returns the captured image bytes.
func (s *ScanSession) Image() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.image
}

// Start records the captured image and moves to Analyzing. The returned
// context is canceled by Cancel and should be passed to the analyzer.
func (s *ScanSession) Start(ctx context.Context, image []byte) (context.Context, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != ScanIdle {
		return nil, fmt.Errorf("%w: cannot start while %s", ErrInvalidScanState, s.state)
	}
	actx, cancel := context.WithCancel(ctx)
	s.image = image
	s.cancel = cancel
	s.state = ScanAnalyzing
	return actx, nil
}

// Complete delivers the analysis outcome. It reports false when the
// session is no longer analyzing, in which case the outcome is dropped.
func (s *ScanSession) Complete(result analysis.Result, err error) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != ScanAnalyzing {
		logger.Debug("Dropping late analysis result", "state", s.state.String())
		return false
	}
	s.releaseLocked()

	switch {
	case err == nil:
		s.form = FoodFormFromResult(result)
		s.state = ScanReviewing
	case errors.Is(err, analysis.ErrCanceled):
		s.state = ScanCanceled
	default:
		s.err = err
		s.state = ScanFailed
	}
	return true
}

// Run analyzes image synchronously. It is Start, Analyze and Complete in one.
func (s *ScanSession) Run(ctx context.Context, a analysis.Analyzer, image []byte) error {
	actx, err := s.Start(ctx, image)
	if err != nil {
		return err
	}
	result, err := a.Analyze(actx, image)
	s.Complete(result, err)

	switch s.State() {
	case ScanReviewing:
		return nil
	case ScanCanceled:
		return analysis.ErrCanceled
	default:
		return s.Err()
	}
}

// Cancel abandons the session from any state before Saved.
func (s *ScanSession) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == ScanSaved || s.state == ScanCanceled {
		return
	}
	s.releaseLocked()
	s.state = ScanCanceled
}

func (s *ScanSession) releaseLocked() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

// Form returns the review form, pre-filled from the analysis.
func (s *ScanSession) Form() FoodForm {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.form
}

// Save adds the reviewed entry, with the captured image attached, to
// store. It is only valid while reviewing.
func (s *ScanSession) Save(store Adder, form FoodForm, now time.Time) (models.NutritionLog, error) {
	s.mu.Lock()
	if s.state != ScanReviewing {
		state := s.state
		s.mu.Unlock()
		return models.NutritionLog{}, fmt.Errorf("%w: cannot save while %s", ErrInvalidScanState, state)
	}
	entry := form.Entry()
	entry.Image = s.image
	log := models.DefaultFoodLog(now).WithEntry(entry)
	s.form = form
	s.state = ScanSaved
	s.mu.Unlock()

	store.Add(log)
	return log, nil
}
