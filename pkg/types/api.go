package types

import "encoding/json"

// PredictRequest is the body of POST /predict. Exactly one of Features or Rows
// is expected; each accepts a single object or an array of objects.
type PredictRequest struct {
	// Single KOI record keyed by column name.
	// example: {"koi_period": 9.488, "koi_prad": 2.26}
	Features json.RawMessage `json:"features,omitempty" swaggertype:"object"`
	// Batch of KOI records.
	Rows json.RawMessage `json:"rows,omitempty" swaggertype:"array,object"`
}

// PredictResponse is returned by POST /predict.
type PredictResponse struct {
	// One disposition label per input row.
	// example: ["CONFIRMED"]
	Predictions []string `json:"predictions" example:"CONFIRMED"`
	// Per-row class probabilities in model class order, or null when the model
	// cannot estimate probabilities.
	Probabilities [][]float64 `json:"probabilities"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	// example: ok
	Status string `json:"status" example:"ok"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: Expected JSON with 'features' or 'rows' key
	Error string `json:"error" example:"Expected JSON with 'features' or 'rows' key"`
	// HTTP status code.
	// example: 400
	Code int `json:"code" example:"400"`
}

// ScoreResult is the outcome of scoring a CSV batch. Rows keep every input
// column and gain a "prediction" column; Columns preserves the output order.
type ScoreResult struct {
	Columns []string         `json:"columns"`
	Rows    []map[string]any `json:"rows"`
}
