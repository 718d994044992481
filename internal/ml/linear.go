package ml

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
)

// KindLinear identifies a linear regression artifact.
const KindLinear = "linear"

// TargetLog1p marks a regressor trained on log1p-scaled salaries.
const TargetLog1p = "log1p"

type linearArtifact struct {
	ModelMetadata
	Target    string    `json:"target"`
	Scaler    *Scaler   `json:"scaler,omitempty"`
	Coef      []float64 `json:"coef"`
	Intercept float64   `json:"intercept"`
}

// LinearRegressor is a standardized linear model over the feature schema. Its output
// is on the log1p salary scale.
type LinearRegressor struct {
	meta      ModelMetadata
	scaler    *Scaler
	coef      []float64
	intercept float64
}

// LoadRegressor decodes and validates a salary model artifact.
func LoadRegressor(r io.Reader) (*LinearRegressor, error) {
	var a linearArtifact
	if err := json.NewDecoder(r).Decode(&a); err != nil {
		return nil, fmt.Errorf("decode salary model: %w", err)
	}
	if a.Kind != KindLinear {
		return nil, fmt.Errorf("salary model: unsupported kind %q", a.Kind)
	}
	if a.Target != "" && a.Target != TargetLog1p {
		return nil, fmt.Errorf("salary model: unsupported target transform %q", a.Target)
	}
	if err := checkFeatures(a.Features); err != nil {
		return nil, fmt.Errorf("salary model: %w", err)
	}
	if len(a.Coef) != len(a.Features) {
		return nil, fmt.Errorf("salary model: %w: %d coefficients for %d features",
			ErrFeatureMismatch, len(a.Coef), len(a.Features))
	}
	if err := a.Scaler.validate(len(a.Features)); err != nil {
		return nil, fmt.Errorf("salary model: %w", err)
	}
	for _, c := range append(a.Coef, a.Intercept) {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return nil, fmt.Errorf("salary model: non-finite coefficient")
		}
	}

	return NewLinearRegressor(a.ModelMetadata, a.Scaler, a.Coef, a.Intercept), nil
}

// NewLinearRegressor builds a regressor from in-memory parameters.
func NewLinearRegressor(meta ModelMetadata, scaler *Scaler, coef []float64, intercept float64) *LinearRegressor {
	meta.Kind = KindLinear
	c := make([]float64, len(coef))
	copy(c, coef)
	return &LinearRegressor{meta: meta, scaler: scaler, coef: c, intercept: intercept}
}

// Metadata returns the artifact metadata.
func (m *LinearRegressor) Metadata() ModelMetadata {
	return m.meta
}

// Predict returns one log1p-scale value per row.
func (m *LinearRegressor) Predict(rows [][]float64) ([]float64, error) {
	if err := checkRows(rows, len(m.coef)); err != nil {
		return nil, err
	}
	out := make([]float64, len(rows))
	for i, row := range rows {
		x := m.scaler.transform(row)
		y := m.intercept
		for j, c := range m.coef {
			y += c * x[j]
		}
		out[i] = y
	}
	return out, nil
}
