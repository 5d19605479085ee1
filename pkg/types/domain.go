package types

// ModelInfo describes the loaded model artifact.
type ModelInfo struct {
	// example: kepler-rf-2024.1
	Version string `json:"version" example:"kepler-rf-2024.1"`
	// Classifier family (forest, logistic, onnx).
	// example: forest
	Kind string `json:"kind" example:"forest"`
	// Manifest format the artifact was read from.
	// example: koi-model/v1
	Format string `json:"format,omitempty" example:"koi-model/v1"`
	// Absolute path of the artifact.
	Path string `json:"path"`
	// Ordered feature columns the model was fit on.
	Features []string `json:"features"`
	// Human-readable class labels in probability order.
	// example: ["CANDIDATE","CONFIRMED","FALSE POSITIVE"]
	Classes []string `json:"classes"`
	// Whether probabilities are returned by /predict.
	// example: true
	Probabilities bool `json:"probabilities" example:"true"`
	// Imputation strategy applied to missing columns.
	// example: batch-mean
	Imputation string `json:"imputation" example:"batch-mean"`
}

// FeatureImportance is one entry of a model's feature importance list.
type FeatureImportance struct {
	// example: koi_period
	Feature string `json:"feature" example:"koi_period"`
	// example: 0.234
	Importance float64 `json:"importance" example:"0.234"`
}

// ModelMetrics holds evaluation metrics for a model version.
type ModelMetrics struct {
	// example: v1.0.0
	ModelVersion string `json:"model_version" yaml:"model_version" example:"v1.0.0"`
	// example: 0.947
	Accuracy float64 `json:"accuracy" example:"0.947"`
	// example: 0.923
	Precision float64 `json:"precision" example:"0.923"`
	// example: 0.891
	Recall float64 `json:"recall" example:"0.891"`
	// example: 0.906
	F1Score float64 `json:"f1_score" example:"0.906"`
	// example: 9564
	TrainingDataSize int `json:"training_data_size" example:"9564"`
	// example: 2391
	ValidationDataSize int `json:"validation_data_size" example:"2391"`
	// Optional per-feature importance.
	FeatureImportance []FeatureImportance `json:"feature_importance,omitempty"`
	// Unix seconds when the metrics were recorded (0 when not persisted).
	RecordedAt int64 `json:"recorded_at,omitempty"`
}

// PredictionRecord is a persisted prediction.
type PredictionRecord struct {
	ID int64 `json:"id"`
	// example: 5f1c9c1e/abc-000001
	RequestID string `json:"request_id,omitempty"`
	// example: kepler-rf-2024.1
	ModelVersion string `json:"model_version"`
	// example: CONFIRMED
	Label string `json:"label" example:"CONFIRMED"`
	// Probability of the predicted class, when available.
	// example: 0.775
	Confidence *float64 `json:"confidence,omitempty" example:"0.775"`
	// Imputed feature vector that was scored.
	Features map[string]float64 `json:"features"`
	// Unix seconds.
	CreatedAt int64 `json:"created_at"`
}

// PredictionStats summarizes persisted predictions.
type PredictionStats struct {
	// example: 42
	Total int `json:"total" example:"42"`
	// Count per label.
	ByLabel map[string]int `json:"by_label"`
	// Mean confidence over predictions that carried one.
	// example: 0.81
	AverageConfidence float64 `json:"average_confidence" example:"0.81"`
}
