// Package predictor maps a feature row to a thunderstorm prediction using a
// loaded model.
package predictor

import (
	"context"
	"errors"
	"fmt"

	"github.com/couchcryptid/storm-inference-service/internal/domain"
)

// ErrFeatureCount is returned when a row does not have exactly one value per
// contract feature.
var ErrFeatureCount = fmt.Errorf("expected %d feature values", domain.FeatureCount)

// Model is the subset of a loaded classifier the predictor relies on.
// PredictProbability is only called when SupportsProbability reports true.
type Model interface {
	Name() string
	SupportsProbability() bool
	PredictLabel(row []float64) (int, error)
	PredictProbability(row []float64) (float64, error)
}

// Predictor scores feature rows against a single model. It holds no mutable
// state and is safe for concurrent use.
type Predictor struct {
	model     Model
	withProba bool
}

// New creates a Predictor. The model's probability capability is captured
// here and not re-checked per request.
func New(m Model) (*Predictor, error) {
	if m == nil {
		return nil, errors.New("predictor requires a model")
	}
	return &Predictor{model: m, withProba: m.SupportsProbability()}, nil
}

// ModelName returns the name of the underlying model.
func (p *Predictor) ModelName() string { return p.model.Name() }

// SupportsProbability reports whether predictions carry a probability.
func (p *Predictor) SupportsProbability() bool { return p.withProba }

// CheckReadiness reports the predictor as ready. A Predictor only exists once
// its model has loaded.
func (p *Predictor) CheckReadiness(_ context.Context) error { return nil }

// Predict scores one row given in contract column order.
func (p *Predictor) Predict(_ context.Context, features []float64) (domain.Prediction, error) {
	if len(features) != domain.FeatureCount {
		return domain.Prediction{}, fmt.Errorf("%w, got %d", ErrFeatureCount, len(features))
	}

	label, err := p.model.PredictLabel(features)
	if err != nil {
		return domain.Prediction{}, fmt.Errorf("predict label: %w", err)
	}
	if label != domain.LabelNoThunderstorm && label != domain.LabelThunderstorm {
		return domain.Prediction{}, fmt.Errorf("model returned label %d, want 0 or 1", label)
	}

	result := domain.Prediction{Label: label}
	if !p.withProba {
		return result, nil
	}

	proba, err := p.model.PredictProbability(features)
	if err != nil {
		return domain.Prediction{}, fmt.Errorf("predict probability: %w", err)
	}
	result.Probability = &proba
	return result, nil
}

// PredictVector scores a feature vector.
func (p *Predictor) PredictVector(ctx context.Context, v domain.FeatureVector) (domain.Prediction, error) {
	return p.Predict(ctx, v.Slice())
}
