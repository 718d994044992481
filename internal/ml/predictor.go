package ml

import (
	"errors"
	"fmt"
	"math"
	"time"

	"salary-board/internal/schema"

	"github.com/rs/zerolog/log"
)

// SalaryPredictor turns a feature vector into a salary in dollars.
type SalaryPredictor struct {
	model   Model[float64]
	floor   float64
	metrics MetricsInterface
}

func NewSalaryPredictor(model Model[float64], floor float64) *SalaryPredictor {
	return NewSalaryPredictorWithMetrics(model, floor, nil)
}

func NewSalaryPredictorWithMetrics(model Model[float64], floor float64, metrics MetricsInterface) *SalaryPredictor {
	return &SalaryPredictor{model: model, floor: floor, metrics: metrics}
}

// Floor returns the minimum salary the predictor reports.
func (p *SalaryPredictor) Floor() float64 {
	return p.floor
}

// RecenterAge returns a copy of v with age replaced by its distance from the pivot age.
// The regressor was trained on that form.
func RecenterAge(v schema.Vector) schema.Vector {
	v[schema.AgeIndex] = math.Abs(schema.AgePivot - v[schema.AgeIndex])
	return v
}

// Predict returns the predicted salary for v, never below the floor and rounded to
// cents. An overflowing model output saturates at the largest float64. The caller's vector is not modified.
func (p *SalaryPredictor) Predict(v schema.Vector) (float64, error) {
	if p == nil || p.model == nil {
		return 0, errors.New("salary predictor not initialized")
	}

	start := time.Now()
	defer func() {
		if p.metrics != nil {
			p.metrics.LatencyObserve(time.Since(start).Seconds())
		}
	}()

	x := RecenterAge(v)
	out, err := p.model.Predict([][]float64{x.Row()})
	if err != nil {
		p.failure()
		return 0, fmt.Errorf("salary model: %w", err)
	}
	if len(out) != 1 {
		p.failure()
		return 0, fmt.Errorf("salary model returned %d values for one row", len(out))
	}

	salary := math.Expm1(out[0])
	switch {
	case math.IsNaN(salary) || salary < p.floor:
		salary = p.floor
	case math.IsInf(salary, 1):
		log.Warn().Float64("log_salary", out[0]).Msg("Salary prediction overflowed, saturating")
		salary = math.MaxFloat64
	}
	if rounded := math.Round(salary*100) / 100; !math.IsInf(rounded, 0) {
		salary = rounded
	}

	if p.metrics != nil {
		p.metrics.PredictionsInc()
	}
	return salary, nil
}

func (p *SalaryPredictor) failure() {
	if p.metrics != nil {
		p.metrics.FailuresInc()
	}
}
