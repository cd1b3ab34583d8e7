package domain

import "fmt"

// Feature describes one input index of the classifier.
type Feature struct {
	Field  string // JSON field name on the API
	Column string // column name the model was trained with
	Label  string // human-readable name for the UI
	Help   string
}

// FeatureCount is the number of inputs the classifier expects.
const FeatureCount = 8

// Features lists the classifier inputs in model column order.
var Features = [FeatureCount]Feature{
	{Field: "SWEAT_index", Column: "SWEAT index", Label: "SWEAT Index", Help: "Severe Weather Threat index"},
	{Field: "K_index", Column: "K index", Label: "K Index", Help: "Thunderstorm potential index"},
	{Field: "Totals_totals_index", Column: "Totals totals index", Label: "Totals Totals Index", Help: "Vertical totals + cross totals"},
	{Field: "Environmental_Stability", Column: "Environmental_Stability", Label: "Environmental Stability", Help: "Atmospheric stability measure"},
	{Field: "Moisture_Indices", Column: "Moisture_Indices", Label: "Moisture Indices", Help: "Moisture availability measure"},
	{Field: "Convective_Potential", Column: "Convective_Potential", Label: "Convective Potential", Help: "Convective energy estimate"},
	{Field: "Temperature_Pressure", Column: "Temperature_Pressure", Label: "Temperature & Pressure", Help: "Temp-pressure interaction"},
	{Field: "Moisture_Temperature_Profiles", Column: "Moisture_Temperature_Profiles", Label: "Moisture-Temp Profiles", Help: "Combined moisture-temp profile"},
}

// FieldNames returns the API field names in column order.
func FieldNames() []string {
	names := make([]string, FeatureCount)
	for i, f := range Features {
		names[i] = f.Field
	}
	return names
}

// ColumnNames returns the training column names in column order.
func ColumnNames() []string {
	names := make([]string, FeatureCount)
	for i, f := range Features {
		names[i] = f.Column
	}
	return names
}

// FeatureVector holds one row of inputs in column order.
type FeatureVector [FeatureCount]float64

// FeatureVectorFromMap assembles a vector from values keyed by API field name.
// Every field must be present.
func FeatureVectorFromMap(values map[string]float64) (FeatureVector, error) {
	var v FeatureVector
	for i, f := range Features {
		x, ok := values[f.Field]
		if !ok {
			return FeatureVector{}, fmt.Errorf("missing feature %q", f.Field)
		}
		v[i] = x
	}
	return v, nil
}

// Slice returns the values as a row for the classifier.
func (v FeatureVector) Slice() []float64 {
	row := make([]float64, FeatureCount)
	copy(row, v[:])
	return row
}

// Map returns the values keyed by API field name.
func (v FeatureVector) Map() map[string]float64 {
	m := make(map[string]float64, FeatureCount)
	for i, f := range Features {
		m[f.Field] = v[i]
	}
	return m
}
