package predictor_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/couchcryptid/storm-inference-service/internal/domain"
	"github.com/couchcryptid/storm-inference-service/internal/model"
	"github.com/couchcryptid/storm-inference-service/internal/predictor"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type fakeModel struct {
	label      int
	proba      float64
	withProba  bool
	labelErr   error
	probaErr   error
	mu         sync.Mutex
	rows       [][]float64
	probaCalls int
}

func (f *fakeModel) Name() string              { return "fake" }
func (f *fakeModel) SupportsProbability() bool { return f.withProba }

func (f *fakeModel) PredictLabel(row []float64) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows = append(f.rows, append([]float64(nil), row...))
	return f.label, f.labelErr
}

func (f *fakeModel) PredictProbability(_ []float64) (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.probaCalls++
	return f.proba, f.probaErr
}

// --- tests ---

func TestNew_RequiresModel(t *testing.T) {
	_, err := predictor.New(nil)
	require.Error(t, err)
}

func TestPredict_WithProbability(t *testing.T) {
	m := &fakeModel{label: 1, proba: 0.83, withProba: true}
	p, err := predictor.New(m)
	require.NoError(t, err)

	got, err := p.Predict(context.Background(), []float64{1, 2, 3, 4, 5, 6, 7, 8})
	require.NoError(t, err)

	proba := 0.83
	want := domain.Prediction{Label: 1, Probability: &proba}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("prediction mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, [][]float64{{1, 2, 3, 4, 5, 6, 7, 8}}, m.rows)
}

func TestPredict_WithoutProbability(t *testing.T) {
	m := &fakeModel{label: 0}
	p, err := predictor.New(m)
	require.NoError(t, err)

	got, err := p.Predict(context.Background(), make([]float64, 8))
	require.NoError(t, err)

	assert.Equal(t, 0, got.Label)
	assert.Nil(t, got.Probability)
	assert.Zero(t, m.probaCalls, "probability must not be requested")
	assert.False(t, p.SupportsProbability())
}

func TestPredict_CapabilityCapturedAtConstruction(t *testing.T) {
	m := &fakeModel{label: 1, proba: 0.6, withProba: true}
	p, err := predictor.New(m)
	require.NoError(t, err)

	m.withProba = false
	got, err := p.Predict(context.Background(), make([]float64, 8))
	require.NoError(t, err)
	require.NotNil(t, got.Probability)
}

func TestPredict_WrongFeatureCount(t *testing.T) {
	m := &fakeModel{}
	p, err := predictor.New(m)
	require.NoError(t, err)

	_, err = p.Predict(context.Background(), []float64{1, 2})
	require.ErrorIs(t, err, predictor.ErrFeatureCount)
	assert.Empty(t, m.rows)
}

func TestPredict_ModelErrorsPropagate(t *testing.T) {
	boom := errors.New("boom")

	t.Run("label", func(t *testing.T) {
		p, err := predictor.New(&fakeModel{labelErr: boom})
		require.NoError(t, err)
		_, err = p.Predict(context.Background(), make([]float64, 8))
		assert.ErrorIs(t, err, boom)
	})

	t.Run("probability", func(t *testing.T) {
		p, err := predictor.New(&fakeModel{withProba: true, probaErr: boom})
		require.NoError(t, err)
		_, err = p.Predict(context.Background(), make([]float64, 8))
		assert.ErrorIs(t, err, boom)
	})

	t.Run("label out of range", func(t *testing.T) {
		p, err := predictor.New(&fakeModel{label: 2})
		require.NoError(t, err)
		_, err = p.Predict(context.Background(), make([]float64, 8))
		assert.Error(t, err)
	})
}

func TestPredictVector_GoldenOutput(t *testing.T) {
	m, err := model.Load("../../models/thunderstorm_model.json", domain.ColumnNames())
	require.NoError(t, err)
	p, err := predictor.New(m)
	require.NoError(t, err)

	v := domain.FeatureVector{300, 35, 50, 0.2, 1.5, 800, 10, 0.9}
	got, err := p.PredictVector(context.Background(), v)
	require.NoError(t, err)

	assert.Equal(t, domain.LabelThunderstorm, got.Label)
	require.NotNil(t, got.Probability)
	assert.InDelta(t, 0.9960562302885756, *got.Probability, 1e-12)
	assert.Equal(t, "thunderstorm-logreg-v1", p.ModelName())
}

func TestPredict_Concurrent(t *testing.T) {
	m, err := model.Load("../../models/thunderstorm_model.json", domain.ColumnNames())
	require.NoError(t, err)
	p, err := predictor.New(m)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := p.Predict(context.Background(), []float64{300, 35, 50, 0.2, 1.5, 800, 10, 0.9})
			assert.NoError(t, err)
			assert.Equal(t, 1, got.Label)
		}()
	}
	wg.Wait()
}

func TestCheckReadiness(t *testing.T) {
	p, err := predictor.New(&fakeModel{})
	require.NoError(t, err)
	assert.NoError(t, p.CheckReadiness(context.Background()))
}
