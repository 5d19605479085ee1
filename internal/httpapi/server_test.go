package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"koiserve/internal/features"
	"koiserve/internal/predict"
	"koiserve/pkg/types"
)

type mockService struct {
	ready      bool
	predictErr error
	scoreErr   error
	noStore    bool
	pingErr    error

	gotRows  []features.Row
	gotWhere string
	gotCSV   string
	gotLimit int
	gotReqID string
}

func (m *mockService) Predict(ctx context.Context, rows []features.Row) (types.PredictResponse, error) {
	m.gotRows = rows
	m.gotReqID = predict.RequestID(ctx)
	if m.predictErr != nil {
		return types.PredictResponse{}, m.predictErr
	}
	resp := types.PredictResponse{}
	for range rows {
		resp.Predictions = append(resp.Predictions, "CONFIRMED")
		resp.Probabilities = append(resp.Probabilities, []float64{0.2, 0.7, 0.1})
	}
	return resp, nil
}

func (m *mockService) ScoreCSV(ctx context.Context, r io.Reader, where string) (types.ScoreResult, error) {
	b, _ := io.ReadAll(r)
	m.gotCSV = string(b)
	m.gotWhere = where
	if m.scoreErr != nil {
		return types.ScoreResult{}, m.scoreErr
	}
	return types.ScoreResult{
		Columns: []string{"koi_period", "prediction"},
		Rows:    []map[string]any{{"koi_period": 9.5, "prediction": "CONFIRMED"}},
	}, nil
}

func (m *mockService) ModelInfo() types.ModelInfo {
	return types.ModelInfo{Version: "v-test", Kind: "forest", Features: features.Columns, Classes: []string{"CANDIDATE", "CONFIRMED", "FALSE POSITIVE"}, Probabilities: true}
}

func (m *mockService) ModelMetrics(ctx context.Context) (types.ModelMetrics, error) {
	return types.ModelMetrics{ModelVersion: "v-test", Accuracy: 0.9}, nil
}

func (m *mockService) MetricsHistory(ctx context.Context) ([]types.ModelMetrics, error) {
	if m.noStore {
		return nil, predict.ErrStoreDisabled
	}
	return []types.ModelMetrics{{ModelVersion: "v2"}, {ModelVersion: "v1"}}, nil
}

func (m *mockService) RecentPredictions(ctx context.Context, limit int) ([]types.PredictionRecord, error) {
	m.gotLimit = limit
	if m.noStore {
		return nil, predict.ErrStoreDisabled
	}
	return []types.PredictionRecord{{ID: 1, Label: "CANDIDATE"}}, nil
}

func (m *mockService) PredictionStats(ctx context.Context) (types.PredictionStats, error) {
	if m.noStore {
		return types.PredictionStats{}, predict.ErrStoreDisabled
	}
	return types.PredictionStats{Total: 3, ByLabel: map[string]int{"CONFIRMED": 3}, AverageConfidence: 0.8}, nil
}

func (m *mockService) Ready() bool { return m.ready }

func (m *mockService) Ping(ctx context.Context) error { return m.pingErr }

type mockHTTPError struct {
	msg  string
	code int
}

func (e mockHTTPError) Error() string   { return e.msg }
func (e mockHTTPError) StatusCode() int { return e.code }

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestHealth_IgnoresModelState(t *testing.T) {
	w := get(t, NewMux(&mockService{ready: false}), "/health")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	var body types.HealthResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil || body.Status != "ok" {
		t.Fatalf("body=%q err=%v", w.Body.String(), err)
	}
}

func TestHealthzAndReadyz(t *testing.T) {
	if w := get(t, NewMux(&mockService{}), "/healthz"); w.Code != http.StatusOK || w.Body.String() != "ok" {
		t.Fatalf("healthz: %d %q", w.Code, w.Body.String())
	}
	if w := get(t, NewMux(&mockService{ready: true}), "/readyz"); w.Code != http.StatusOK {
		t.Fatalf("readyz ready: %d", w.Code)
	}
	w := get(t, NewMux(&mockService{ready: false}), "/readyz")
	if w.Code != http.StatusServiceUnavailable || !strings.Contains(w.Body.String(), "loading") {
		t.Fatalf("readyz loading: %d %q", w.Code, w.Body.String())
	}
}

func TestReadyz_StorePingFails(t *testing.T) {
	w := get(t, NewMux(&mockService{ready: true, pingErr: errors.New("database is closed")}), "/readyz")
	if w.Code != http.StatusServiceUnavailable || !strings.Contains(w.Body.String(), "store unavailable") {
		t.Fatalf("readyz: %d %q", w.Code, w.Body.String())
	}
}

func TestModelEndpoints(t *testing.T) {
	h := NewMux(&mockService{})
	w := get(t, h, "/model")
	if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "application/json") {
		t.Fatalf("content-type=%s", ct)
	}
	var info types.ModelInfo
	if err := json.Unmarshal(w.Body.Bytes(), &info); err != nil || info.Version != "v-test" || len(info.Features) != 29 {
		t.Fatalf("info=%+v err=%v", info, err)
	}

	var met types.ModelMetrics
	w = get(t, h, "/model/metrics")
	if err := json.Unmarshal(w.Body.Bytes(), &met); err != nil || met.Accuracy != 0.9 {
		t.Fatalf("metrics=%+v err=%v", met, err)
	}

	var hist []types.ModelMetrics
	w = get(t, h, "/model/metrics/history")
	if err := json.Unmarshal(w.Body.Bytes(), &hist); err != nil || len(hist) != 2 {
		t.Fatalf("history=%+v err=%v", hist, err)
	}
}

func TestPredictionsEndpoints(t *testing.T) {
	svc := &mockService{}
	h := NewMux(svc)
	if w := get(t, h, "/predictions?limit=7"); w.Code != http.StatusOK || svc.gotLimit != 7 {
		t.Fatalf("status=%d limit=%d", w.Code, svc.gotLimit)
	}
	if w := get(t, h, "/predictions"); w.Code != http.StatusOK || svc.gotLimit != 0 {
		t.Fatalf("status=%d limit=%d", w.Code, svc.gotLimit)
	}
	for _, bad := range []string{"x", "-1"} {
		if w := get(t, h, "/predictions?limit="+bad); w.Code != http.StatusBadRequest {
			t.Fatalf("limit=%s: status=%d", bad, w.Code)
		}
	}
	var st types.PredictionStats
	w := get(t, h, "/predictions/stats")
	if err := json.Unmarshal(w.Body.Bytes(), &st); err != nil || st.Total != 3 {
		t.Fatalf("stats=%+v err=%v", st, err)
	}
}

func TestStoreDisabledMaps503(t *testing.T) {
	h := NewMux(&mockService{noStore: true})
	for _, p := range []string{"/predictions", "/predictions/stats", "/model/metrics/history"} {
		w := get(t, h, p)
		if w.Code != http.StatusServiceUnavailable {
			t.Fatalf("%s: status=%d", p, w.Code)
		}
		var e types.ErrorResponse
		if err := json.Unmarshal(w.Body.Bytes(), &e); err != nil || e.Code != 503 || e.Error == "" {
			t.Fatalf("%s: body=%q", p, w.Body.String())
		}
	}
}

func TestSecurityHeader(t *testing.T) {
	w := get(t, NewMux(&mockService{}), "/health")
	if w.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Fatalf("missing nosniff header")
	}
}
