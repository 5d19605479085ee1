package httpapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"koiserve/internal/features"
	"koiserve/internal/predict"
	"koiserve/internal/scoring"
	"koiserve/pkg/types"
)

const msgExpectedKeys = "Expected JSON with 'features' or 'rows' key"

type handlers struct {
	svc Service
}

// predict godoc
// @Summary     Classify KOI records
// @Description Accepts one record under "features" or many under "rows" and returns a disposition per row.
// @Tags        predict
// @Accept      json
// @Produce     json
// @Param       body body     types.PredictRequest true "KOI records"
// @Success     200  {object} types.PredictResponse
// @Failure     400  {object} types.ErrorResponse
// @Failure     413  {object} types.ErrorResponse
// @Failure     422  {object} types.ErrorResponse
// @Router      /predict [post]
func (h *handlers) predict(w http.ResponseWriter, r *http.Request) {
	// The body is read as JSON whatever Content-Type says.
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req types.PredictRequest
	var raw json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			IncrementRejected("body_too_large")
			writeJSONError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		IncrementRejected("invalid_json")
		writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' || json.Unmarshal(raw, &req) != nil {
		IncrementRejected("shape")
		writeJSONError(w, http.StatusBadRequest, msgExpectedKeys)
		return
	}
	payload := req.Features
	if len(payload) == 0 {
		payload = req.Rows
	}
	if len(payload) == 0 {
		IncrementRejected("shape")
		writeJSONError(w, http.StatusBadRequest, msgExpectedKeys)
		return
	}
	rows, err := decodeRows(payload)
	if err != nil {
		IncrementRejected("shape")
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	lvl := requestLogLevel(r)
	start := time.Now()
	logStart(r, lvl, "predict")
	ctx, cancel := workContext(r.Context())
	defer cancel()
	ctx = predict.WithRequestID(ctx, middleware.GetReqID(r.Context()))

	resp, err := h.svc.Predict(ctx, rows)
	if err != nil {
		if r.Context().Err() != nil || serverBaseCtx.Err() != nil {
			return
		}
		status := statusFor(err)
		writeJSONError(w, status, err.Error())
		logEnd(r, lvl, "predict", status, start, err)
		return
	}
	writeJSON(w, resp)
	logEnd(r, lvl, "predict", http.StatusOK, start, nil)
}

// decodeRows accepts a single object or an array of objects. Numbers are kept
// as json.Number so large values survive until alignment.
func decodeRows(payload json.RawMessage) ([]features.Row, error) {
	dec := func(v any) error {
		d := json.NewDecoder(bytes.NewReader(payload))
		d.UseNumber()
		return d.Decode(v)
	}
	switch payload[0] {
	case '{':
		var row features.Row
		if err := dec(&row); err != nil {
			return nil, errors.New("features must be an object of column values")
		}
		return []features.Row{row}, nil
	case '[':
		var rows []features.Row
		if err := dec(&rows); err != nil {
			return nil, errors.New("rows must be an array of objects")
		}
		if len(rows) == 0 {
			return nil, errors.New("no rows to predict")
		}
		for i, row := range rows {
			if row == nil {
				return nil, fmt.Errorf("row %d is null", i)
			}
		}
		return rows, nil
	default:
		return nil, errors.New(msgExpectedKeys)
	}
}

// predictCSV godoc
// @Summary     Score a CSV batch
// @Description Appends a prediction column to every CSV row. Optional CEL filter via ?where=.
// @Tags        predict
// @Accept      text/csv
// @Accept      multipart/form-data
// @Produce     json
// @Produce     text/csv
// @Param       where  query    string false "CEL row filter, e.g. koi_model_snr > 10"
// @Param       format query    string false "json (default) or csv"
// @Success     200    {object} types.ScoreResult
// @Failure     400    {object} types.ErrorResponse
// @Failure     415    {object} types.ErrorResponse
// @Router      /predict/csv [post]
func (h *handlers) predictCSV(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var body io.Reader
	switch mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type")); mt {
	case "text/csv", "application/csv", "text/plain":
		body = r.Body
	case "multipart/form-data":
		f, _, err := r.FormFile("file")
		if err != nil {
			IncrementRejected("multipart")
			writeJSONError(w, statusOr(err, http.StatusBadRequest), "multipart field 'file' is required")
			return
		}
		defer f.Close()
		body = f
	default:
		IncrementRejected("content_type")
		writeJSONError(w, http.StatusUnsupportedMediaType, "Content-Type must be text/csv or multipart/form-data")
		return
	}

	lvl := requestLogLevel(r)
	start := time.Now()
	logStart(r, lvl, "score")
	ctx, cancel := workContext(r.Context())
	defer cancel()
	ctx = predict.WithRequestID(ctx, middleware.GetReqID(r.Context()))

	res, err := h.svc.ScoreCSV(ctx, body, r.URL.Query().Get("where"))
	if err != nil {
		if r.Context().Err() != nil || serverBaseCtx.Err() != nil {
			return
		}
		status := statusFor(err)
		writeJSONError(w, status, err.Error())
		logEnd(r, lvl, "score", status, start, err)
		return
	}
	if r.URL.Query().Get("format") == "csv" {
		w.Header().Set("Content-Type", "text/csv")
		if err := scoring.WriteCSV(w, res.Columns, res.Rows); err != nil {
			logEnd(r, lvl, "score", http.StatusInternalServerError, start, fmt.Errorf("write csv: %w", err))
			return
		}
	} else {
		writeJSON(w, res)
	}
	logEnd(r, lvl, "score", http.StatusOK, start, nil)
}

func statusOr(err error, fallback int) int {
	var mbe *http.MaxBytesError
	if errors.As(err, &mbe) {
		return http.StatusRequestEntityTooLarge
	}
	return fallback
}

// modelInfo godoc
// @Summary  Loaded model
// @Tags     model
// @Produce  json
// @Success  200 {object} types.ModelInfo
// @Router   /model [get]
func (h *handlers) modelInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.svc.ModelInfo())
}

// modelMetrics godoc
// @Summary  Evaluation metrics of the loaded model
// @Tags     model
// @Produce  json
// @Success  200 {object} types.ModelMetrics
// @Router   /model/metrics [get]
func (h *handlers) modelMetrics(w http.ResponseWriter, r *http.Request) {
	m, err := h.svc.ModelMetrics(r.Context())
	if err != nil {
		writeJSONError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, m)
}

// metricsHistory godoc
// @Summary  Recorded metrics of every model version
// @Tags     model
// @Produce  json
// @Success  200 {array}  types.ModelMetrics
// @Failure  503 {object} types.ErrorResponse
// @Router   /model/metrics/history [get]
func (h *handlers) metricsHistory(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.MetricsHistory(r.Context())
	if err != nil {
		writeJSONError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, list)
}

// recentPredictions godoc
// @Summary  Recent predictions
// @Tags     predictions
// @Produce  json
// @Param    limit query    int false "max rows (default 50, max 500)"
// @Success  200   {array}  types.PredictionRecord
// @Failure  503   {object} types.ErrorResponse
// @Router   /predictions [get]
func (h *handlers) recentPredictions(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeJSONError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}
	list, err := h.svc.RecentPredictions(r.Context(), limit)
	if err != nil {
		writeJSONError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, list)
}

// predictionStats godoc
// @Summary  Prediction totals per label and average confidence
// @Tags     predictions
// @Produce  json
// @Success  200 {object} types.PredictionStats
// @Failure  503 {object} types.ErrorResponse
// @Router   /predictions/stats [get]
func (h *handlers) predictionStats(w http.ResponseWriter, r *http.Request) {
	st, err := h.svc.PredictionStats(r.Context())
	if err != nil {
		writeJSONError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, st)
}
