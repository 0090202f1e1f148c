package analysis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/foodlog/internal/constants"
	"github.com/julianstephens/foodlog/internal/logger"
)

// ErrCanceled is returned when the caller cancels an analysis in flight.
var ErrCanceled = errors.New("analysis canceled")

// Result is an analyzer's proposal for a food entry. It only pre-fills the
// review form; nothing is saved from it directly.
type Result struct {
	Name     string
	Calories float64
	Protein  float64
	Carbs    float64
	Fats     float64
}

// Analyzer turns a captured image into a proposed food entry.
type Analyzer interface {
	Analyze(ctx context.Context, image []byte) (Result, error)
}

// StubResult is what StubAnalyzer always proposes.
var StubResult = Result{
	Name:     "Chicken Salad",
	Calories: 350,
	Protein:  25,
	Carbs:    15,
	Fats:     12,
}

// StubAnalyzer waits Delay and returns StubResult regardless of the image.
type StubAnalyzer struct {
	Delay time.Duration
}

func NewStubAnalyzer(delay time.Duration) *StubAnalyzer {
	if delay < 0 {
		delay = constants.DefaultAnalysisDelay
	}
	return &StubAnalyzer{Delay: delay}
}

func (a *StubAnalyzer) Analyze(ctx context.Context, image []byte) (Result, error) {
	logger.Debug("Analyzing image", "analyzer", "stub", "bytes", len(image), "delay", a.Delay)

	timer := time.NewTimer(a.Delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return Result{}, canceled(ctx)
	case <-timer.C:
		return StubResult, nil
	}
}

func canceled(ctx context.Context) error {
	return fmt.Errorf("%w: %w", ErrCanceled, ctx.Err())
}
