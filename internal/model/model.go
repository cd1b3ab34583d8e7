// Package model loads a fitted thunderstorm classifier from its serialized
// artifact and evaluates it on single rows.
package model

import (
	"errors"
	"fmt"
	"math"
	"os"
	"slices"
)

// Classifier assigns a class label to one row of features.
type Classifier interface {
	PredictLabel(row []float64) (int, error)
}

// ProbabilityEstimator is implemented by classifiers that can estimate the
// probability of the positive class.
type ProbabilityEstimator interface {
	PredictProbability(row []float64) (float64, error)
}

var (
	// ErrNonFinite is returned when a row contains NaN or an infinity.
	ErrNonFinite = errors.New("feature value is not finite")
	// ErrInvalidScore is returned when evaluation overflows or yields a
	// probability outside [0, 1].
	ErrInvalidScore = errors.New("model produced an invalid score")
)

// Model is a loaded classifier. It is immutable after construction and safe
// for concurrent use.
type Model struct {
	name       string
	kind       string
	numInputs  int
	scaler     *scaler
	classifier Classifier
	estimator  ProbabilityEstimator // nil when unsupported
}

// New wraps a classifier, resolving its probability capability once.
func New(name string, numInputs int, c Classifier) *Model {
	m := &Model{
		name:       name,
		kind:       fmt.Sprintf("%T", c),
		numInputs:  numInputs,
		classifier: c,
	}
	if pe, ok := c.(ProbabilityEstimator); ok {
		m.estimator = pe
	}
	return m
}

// Load reads the artifact at path and builds a Model. columns is the expected
// training column order; the artifact must list exactly these names.
func Load(path string, columns []string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model artifact: %w", err)
	}
	a, err := DecodeArtifact(data)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	if !slices.Equal(a.FeatureNames, columns) {
		return nil, fmt.Errorf("load %s: %w: got %q, want %q", path, ErrFeatureMismatch, a.FeatureNames, columns)
	}
	return FromArtifact(a)
}

// FromArtifact builds a Model from an already validated artifact.
func FromArtifact(a *Artifact) (*Model, error) {
	var c Classifier
	switch a.Kind {
	case KindLogisticRegression:
		c = newLogisticRegression(*a.LogisticRegression)
	case KindLinearSVC:
		c = newLinearSVC(*a.LinearSVC)
	case KindDecisionTree:
		c = newDecisionTree(*a.DecisionTree)
	case KindKNeighbors:
		c = newKNeighbors(*a.KNeighbors)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedKind, a.Kind)
	}

	m := New(a.Name, len(a.FeatureNames), c)
	m.kind = a.Kind
	if a.Scaler != nil {
		m.scaler = newScaler(*a.Scaler)
	}
	return m, nil
}

// Name returns the artifact name.
func (m *Model) Name() string { return m.name }

// Kind returns the classifier kind.
func (m *Model) Kind() string { return m.kind }

// NumInputs returns the number of features per row.
func (m *Model) NumInputs() int { return m.numInputs }

// SupportsProbability reports whether PredictProbability is available.
func (m *Model) SupportsProbability() bool { return m.estimator != nil }

// PredictLabel returns the class label for row.
func (m *Model) PredictLabel(row []float64) (int, error) {
	x, err := m.prepare(row)
	if err != nil {
		return 0, err
	}
	return m.classifier.PredictLabel(x)
}

// PredictProbability returns the probability of the positive class for row.
func (m *Model) PredictProbability(row []float64) (float64, error) {
	if m.estimator == nil {
		return 0, errors.New("model does not support probability estimation")
	}
	x, err := m.prepare(row)
	if err != nil {
		return 0, err
	}
	p, err := m.estimator.PredictProbability(x)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(p) || p < 0 || p > 1 {
		return 0, fmt.Errorf("%w: probability %v", ErrInvalidScore, p)
	}
	return p, nil
}

func (m *Model) prepare(row []float64) ([]float64, error) {
	if len(row) != m.numInputs {
		return nil, fmt.Errorf("row has %d features, model expects %d", len(row), m.numInputs)
	}
	for i, v := range row {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("feature %d: %w", i, ErrNonFinite)
		}
	}
	if m.scaler == nil {
		return row, nil
	}
	x := m.scaler.transform(row)
	for i, v := range x {
		if math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: scaled feature %d overflows", ErrInvalidScore, i)
		}
	}
	return x, nil
}
