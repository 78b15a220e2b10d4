package ports

import (
	"context"

	"github.com/Rigaud3000/StarTrader/internal/domain"
)

// Rand is the entropy source used by the simulation. *math/rand/v2.Rand satisfies it.
// A Rand instance is owned by a single run and must not be shared between goroutines.
type Rand interface {
	// Float64 returns a pseudo-random number in [0.0, 1.0).
	Float64() float64
	// IntN returns a pseudo-random number in [0, n). It panics if n <= 0.
	IntN(n int) int
}

// RandFactory creates a fresh entropy source for one run.
type RandFactory func() Rand

// BarExporter writes a bar series to the side channel consumed by the ML trainer.
// Each call overwrites the previous export.
type BarExporter interface {
	Export(bars []domain.Bar) error
	// Path returns the file the exporter writes to.
	Path() string
}

// Prediction is the answer of the confidence predictor.
type Prediction struct {
	Success    bool    `json:"success"`
	Confidence float64 `json:"confidence"`
	Error      string  `json:"error,omitempty"`
	Warning    string  `json:"warning,omitempty"`
}

// ConfidencePredictor scores a signal from the most recent bars.
type ConfidencePredictor interface {
	Predict(ctx context.Context, bars []domain.Bar) (*Prediction, error)
}

// SignalEvaluator derives a trading signal from recent bars.
type SignalEvaluator interface {
	// RequiredBars returns the minimum number of bars needed for evaluation.
	RequiredBars() int
	// Evaluate returns the signal for the latest bar of the series.
	Evaluate(ctx context.Context, symbol string, bars []domain.Bar) (domain.Signal, error)
}
