// Package domain defines the thunderstorm scoring contract shared by the
// inference service, the UI, and the model artifact.
//
// # Feature Contract
//
// The classifier was fit on eight atmospheric stability and moisture indices in
// a fixed column order. [Features] is the only place that order is written
// down. The API schema, the UI form, the artifact's feature_names, and the row
// handed to the classifier are all derived from it:
//
//	#  API field                        Training column
//	0  SWEAT_index                      "SWEAT index"
//	1  K_index                          "K index"
//	2  Totals_totals_index              "Totals totals index"
//	3  Environmental_Stability          "Environmental_Stability"
//	4  Moisture_Indices                 "Moisture_Indices"
//	5  Convective_Potential             "Convective_Potential"
//	6  Temperature_Pressure             "Temperature_Pressure"
//	7  Moisture_Temperature_Profiles    "Moisture_Temperature_Profiles"
//
// The API field names differ from the training columns for the first three
// indices (underscores instead of spaces). Columns are matched by position,
// never by name, once the artifact has been checked at load time.
//
// # Labels
//
// Predictions are binary: 0 means no thunderstorm, 1 means thunderstorm. The
// probability, when the model can estimate one, is for class 1.
package domain
