// Package ml provides inference over the two pre-trained models behind the
// dashboard: the salary regressor and the nearest-neighbor index over players.
//
// Models are exported by the training pipeline as JSON artifacts. This package only
// decodes, validates and evaluates them; it never trains or mutates a model.
package ml

import (
	"errors"
	"fmt"
	"time"

	"salary-board/internal/schema"
)

// ErrFeatureMismatch is returned when an artifact or an input row does not match
// the feature schema.
var ErrFeatureMismatch = errors.New("feature schema mismatch")

// Model is the uniform inference call shared by both model kinds. Each input row
// yields one output: a regression value for the salary model, an ordered list of
// row indices for the neighbor index.
type Model[T any] interface {
	Predict(rows [][]float64) ([]T, error)
}

// MetricsInterface defines metrics methods needed by the predictors
type MetricsInterface interface {
	PredictionsInc()
	FailuresInc()
	LatencyObserve(float64)
	NeighborLookupsInc()
}

// ModelMetadata contains information about a loaded artifact
type ModelMetadata struct {
	Kind         string             `json:"kind"`
	Version      string             `json:"version"`
	TrainedAt    time.Time          `json:"trained_at"`
	Features     []string           `json:"features"`
	TrainingRows int                `json:"training_rows,omitempty"`
	Scores       map[string]float64 `json:"scores,omitempty"`
}

// Scaler standardizes inputs the way the training pipeline did.
type Scaler struct {
	Mean  []float64 `json:"mean"`
	Scale []float64 `json:"scale"`
}

func (s *Scaler) validate(width int) error {
	if s == nil {
		return nil
	}
	if len(s.Mean) != width || len(s.Scale) != width {
		return fmt.Errorf("%w: scaler has %d means and %d scales for %d features",
			ErrFeatureMismatch, len(s.Mean), len(s.Scale), width)
	}
	return nil
}

// transform returns a standardized copy of row. Zero scales are treated as one.
func (s *Scaler) transform(row []float64) []float64 {
	out := make([]float64, len(row))
	copy(out, row)
	if s == nil {
		return out
	}
	for i := range out {
		scale := s.Scale[i]
		if scale == 0 {
			scale = 1
		}
		out[i] = (out[i] - s.Mean[i]) / scale
	}
	return out
}

func checkRows(rows [][]float64, width int) error {
	for i, row := range rows {
		if len(row) != width {
			return fmt.Errorf("%w: row %d has %d values, want %d", ErrFeatureMismatch, i, len(row), width)
		}
	}
	return nil
}

func checkFeatures(features []string) error {
	if !schema.Equal(features) {
		return fmt.Errorf("%w: artifact features %v, want %v", ErrFeatureMismatch, features, schema.Names)
	}
	return nil
}
