package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeatures_Order(t *testing.T) {
	assert.Equal(t, []string{
		"SWEAT_index",
		"K_index",
		"Totals_totals_index",
		"Environmental_Stability",
		"Moisture_Indices",
		"Convective_Potential",
		"Temperature_Pressure",
		"Moisture_Temperature_Profiles",
	}, FieldNames())

	assert.Equal(t, []string{
		"SWEAT index",
		"K index",
		"Totals totals index",
		"Environmental_Stability",
		"Moisture_Indices",
		"Convective_Potential",
		"Temperature_Pressure",
		"Moisture_Temperature_Profiles",
	}, ColumnNames())
}

func TestFeatureVectorFromMap(t *testing.T) {
	t.Run("assigns by contract position", func(t *testing.T) {
		values := map[string]float64{
			"Moisture_Temperature_Profiles": 8,
			"SWEAT_index":                   1,
			"Temperature_Pressure":          7,
			"K_index":                       2,
			"Convective_Potential":          6,
			"Totals_totals_index":           3,
			"Moisture_Indices":              5,
			"Environmental_Stability":       4,
		}
		v, err := FeatureVectorFromMap(values)
		require.NoError(t, err)
		assert.Equal(t, FeatureVector{1, 2, 3, 4, 5, 6, 7, 8}, v)
		assert.Equal(t, values, v.Map())
	})

	t.Run("missing field", func(t *testing.T) {
		_, err := FeatureVectorFromMap(map[string]float64{"SWEAT_index": 1})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "K_index")
	})
}

func TestFeatureVector_SliceIsCopy(t *testing.T) {
	v := FeatureVector{1, 2, 3, 4, 5, 6, 7, 8}
	row := v.Slice()
	row[0] = 99
	assert.Equal(t, 1.0, v[0])
}

func TestPrediction_JSON(t *testing.T) {
	t.Run("without probability", func(t *testing.T) {
		data, err := json.Marshal(Prediction{Label: LabelNoThunderstorm})
		require.NoError(t, err)
		assert.JSONEq(t, `{"prediction":0,"probability":null}`, string(data))
	})

	t.Run("with probability", func(t *testing.T) {
		p := 0.75
		data, err := json.Marshal(Prediction{Label: LabelThunderstorm, Probability: &p})
		require.NoError(t, err)
		assert.JSONEq(t, `{"prediction":1,"probability":0.75}`, string(data))
	})
}

func TestNewPredictionEvent(t *testing.T) {
	at := time.Date(2024, 4, 26, 15, 10, 0, 0, time.FixedZone("CDT", -5*3600))
	p := 0.9
	event := NewPredictionEvent("evt-1", "thunderstorm-logreg", FeatureVector{1, 2, 3, 4, 5, 6, 7, 8},
		Prediction{Label: LabelThunderstorm, Probability: &p}, at)

	assert.Equal(t, "evt-1", event.ID)
	assert.Equal(t, "thunderstorm-logreg", event.Model)
	assert.Equal(t, 1, event.Prediction)
	assert.Equal(t, 0.9, *event.Probability)
	assert.Equal(t, time.UTC, event.PredictedAt.Location())
	assert.Equal(t, 2.0, event.Features["K_index"])
}
