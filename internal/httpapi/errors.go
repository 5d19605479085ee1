package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"koiserve/internal/features"
	"koiserve/internal/model"
	"koiserve/internal/predict"
	"koiserve/internal/scoring"
	"koiserve/pkg/types"
)

// HTTPError allows services to provide an HTTP status code for an error.
type HTTPError interface {
	error
	StatusCode() int
}

// statusFor maps service errors to HTTP status codes.
func statusFor(err error) int {
	var he HTTPError
	var mbe *http.MaxBytesError
	switch {
	case errors.As(err, &he):
		return he.StatusCode()
	case errors.As(err, &mbe):
		return http.StatusRequestEntityTooLarge
	case features.IsValueError(err), features.IsNoRows(err),
		scoring.IsFilterError(err), scoring.IsCSVError(err):
		return http.StatusBadRequest
	case model.IsUnimputed(err):
		return http.StatusUnprocessableEntity
	case model.IsDependencyUnavailable(err), predict.IsStoreDisabled(err):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// writeJSONError writes a consistent JSON error payload.
func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(types.ErrorResponse{Error: msg, Code: status})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to encode response")
	}
}
