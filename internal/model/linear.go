package model

import (
	"fmt"
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"
)

type scaler struct {
	mean  []float64
	scale []float64
}

func newScaler(p ScalerParams) *scaler {
	return &scaler{mean: slices.Clone(p.Mean), scale: slices.Clone(p.Scale)}
}

// transform returns (row - mean) / scale without modifying row.
func (s *scaler) transform(row []float64) []float64 {
	out := make([]float64, len(row))
	floats.SubTo(out, row, s.mean)
	floats.Div(out, s.scale)
	return out
}

type linear struct {
	coef      []float64
	intercept float64
}

// decision evaluates the linear function. Finite inputs can still overflow
// to an infinity or NaN, which is reported as ErrInvalidScore.
func (l linear) decision(row []float64) (float64, error) {
	d := floats.Dot(l.coef, row) + l.intercept
	if math.IsNaN(d) || math.IsInf(d, 0) {
		return 0, fmt.Errorf("%w: decision function is %v", ErrInvalidScore, d)
	}
	return d, nil
}

func (l linear) label(row []float64) (int, error) {
	d, err := l.decision(row)
	if err != nil {
		return 0, err
	}
	if d > 0 {
		return 1, nil
	}
	return 0, nil
}

// logisticRegression predicts class 1 when the decision function is positive
// and estimates its probability with the logistic function.
type logisticRegression struct{ linear }

func newLogisticRegression(p LinearParams) *logisticRegression {
	return &logisticRegression{linear{coef: slices.Clone(p.Coefficients), intercept: p.Intercept}}
}

func (m *logisticRegression) PredictLabel(row []float64) (int, error) {
	return m.label(row)
}

func (m *logisticRegression) PredictProbability(row []float64) (float64, error) {
	d, err := m.decision(row)
	if err != nil {
		return 0, err
	}
	return sigmoid(d), nil
}

// linearSVC has no calibrated probabilities.
type linearSVC struct{ linear }

func newLinearSVC(p LinearParams) *linearSVC {
	return &linearSVC{linear{coef: slices.Clone(p.Coefficients), intercept: p.Intercept}}
}

func (m *linearSVC) PredictLabel(row []float64) (int, error) {
	return m.label(row)
}

func sigmoid(z float64) float64 {
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	e := math.Exp(z)
	return e / (1 + e)
}

