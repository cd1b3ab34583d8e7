package domain

import "time"

// Class labels produced by the classifier.
const (
	LabelNoThunderstorm = 0
	LabelThunderstorm   = 1
)

// Prediction is the scoring result returned to API callers.
// Probability is nil when the model cannot estimate one.
type Prediction struct {
	Label       int      `json:"prediction"`
	Probability *float64 `json:"probability"`
}

// HasProbability reports whether a positive-class probability is present.
func (p Prediction) HasProbability() bool { return p.Probability != nil }

// PredictionEvent records a single scored request for downstream consumers.
type PredictionEvent struct {
	ID          string             `json:"id"`
	Model       string             `json:"model"`
	Features    map[string]float64 `json:"features"`
	Prediction  int                `json:"prediction"`
	Probability *float64           `json:"probability"`
	PredictedAt time.Time          `json:"predicted_at"`
}

// NewPredictionEvent pairs an input vector with its prediction.
func NewPredictionEvent(id, model string, v FeatureVector, p Prediction, at time.Time) PredictionEvent {
	return PredictionEvent{
		ID:          id,
		Model:       model,
		Features:    v.Map(),
		Prediction:  p.Label,
		Probability: p.Probability,
		PredictedAt: at.UTC(),
	}
}
