package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"koiserve/internal/features"
	"koiserve/internal/model"
	"koiserve/internal/predict"
	"koiserve/internal/scoring"
	"koiserve/pkg/types"
)

func postJSON(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/predict", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) types.ErrorResponse {
	t.Helper()
	var e types.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &e); err != nil {
		t.Fatalf("error body: %v (%q)", err, w.Body.String())
	}
	return e
}

func TestPredict_SingleFeatures(t *testing.T) {
	svc := &mockService{}
	w := postJSON(t, NewMux(svc), `{"features": {"koi_period": 9.488, "koi_prad": "2.26", "kepoi_name": "K00752.01"}}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if len(svc.gotRows) != 1 {
		t.Fatalf("rows=%d", len(svc.gotRows))
	}
	if n, ok := svc.gotRows[0]["koi_period"].(json.Number); !ok || n.String() != "9.488" {
		t.Fatalf("koi_period decoded as %T %v", svc.gotRows[0]["koi_period"], svc.gotRows[0]["koi_period"])
	}
	if svc.gotReqID == "" {
		t.Fatalf("request id not propagated")
	}
	var resp types.PredictResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("json: %v", err)
	}
	if len(resp.Predictions) != 1 || len(resp.Probabilities) != 1 {
		t.Fatalf("resp=%+v", resp)
	}
}

func TestPredict_RowsAndFeaturesShapes(t *testing.T) {
	cases := map[string]int{
		`{"rows": [{"koi_period": 1}, {"koi_period": 2}, {}]}`: 3,
		`{"rows": {"koi_period": 1}}`:                          1,
		`{"features": [{"koi_period": 1}, {"koi_period": 2}]}`: 2,
		`{"features": {"koi_period": 1}, "rows": [{}, {}]}`:    1,
	}
	for body, n := range cases {
		svc := &mockService{}
		w := postJSON(t, NewMux(svc), body)
		if w.Code != http.StatusOK || len(svc.gotRows) != n {
			t.Fatalf("%s: status=%d rows=%d", body, w.Code, len(svc.gotRows))
		}
	}
}

func TestPredict_MissingKeys(t *testing.T) {
	for _, body := range []string{`{}`, `{"data": []}`, `[{"koi_period": 1}]`, `"features"`, `{"rows": null}`, `{"features": 3}`} {
		w := postJSON(t, NewMux(&mockService{}), body)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("%s: status=%d", body, w.Code)
		}
		if e := decodeError(t, w); e.Error != msgExpectedKeys || e.Code != 400 {
			t.Fatalf("%s: error=%+v", body, e)
		}
	}
}

func TestPredict_BadRows(t *testing.T) {
	for _, body := range []string{`{"rows": []}`, `{"rows": [1, 2]}`, `{"rows": [null]}`} {
		w := postJSON(t, NewMux(&mockService{}), body)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("%s: status=%d", body, w.Code)
		}
	}
}

func TestPredict_InvalidJSON(t *testing.T) {
	w := postJSON(t, NewMux(&mockService{}), `{"features": `)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status=%d", w.Code)
	}
	if e := decodeError(t, w); e.Error != "invalid JSON body" {
		t.Fatalf("error=%+v", e)
	}
}

func TestPredict_IgnoresContentType(t *testing.T) {
	for _, ct := range []string{"", "text/plain", "application/x-www-form-urlencoded", "application/json; charset=utf-8"} {
		m := &mockService{}
		req := httptest.NewRequest(http.MethodPost, "/predict", strings.NewReader(`{"features":{"koi_period":9.5}}`))
		if ct != "" {
			req.Header.Set("Content-Type", ct)
		}
		w := httptest.NewRecorder()
		NewMux(m).ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("ct=%q: status=%d body=%s", ct, w.Code, w.Body.String())
		}
		if len(m.gotRows) != 1 || m.gotRows[0]["koi_period"] == nil {
			t.Fatalf("ct=%q: rows=%v", ct, m.gotRows)
		}
	}
}

func TestPredict_BodyTooLarge(t *testing.T) {
	SetMaxBodyBytes(64)
	t.Cleanup(func() { SetMaxBodyBytes(0) })
	body := `{"features": {"koi_period": ` + strings.Repeat("1", 200) + `}}`
	w := postJSON(t, NewMux(&mockService{}), body)
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status=%d", w.Code)
	}
}

func TestPredict_ErrorMapping(t *testing.T) {
	_, valueErr := features.Align([]features.Row{{"koi_prad": true}})
	_, filterErr := scoring.CompileFilter("koi_period >")
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"value", valueErr, http.StatusBadRequest},
		{"no rows", features.ErrNoRows, http.StatusBadRequest},
		{"filter", filterErr, http.StatusBadRequest},
		{"unimputed", model.ErrUnimputed(0, "koi_teq"), http.StatusUnprocessableEntity},
		{"dependency", model.ErrDependencyUnavailable("onnx support not built"), http.StatusServiceUnavailable},
		{"store", predict.ErrStoreDisabled, http.StatusServiceUnavailable},
		{"deadline", fmt.Errorf("predict: %w", context.DeadlineExceeded), http.StatusGatewayTimeout},
		{"custom", mockHTTPError{msg: "teapot", code: http.StatusTeapot}, http.StatusTeapot},
		{"other", fmt.Errorf("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := postJSON(t, NewMux(&mockService{predictErr: tc.err}), `{"features": {"koi_period": 1}}`)
			if w.Code != tc.want {
				t.Fatalf("status=%d want %d", w.Code, tc.want)
			}
			if e := decodeError(t, w); e.Code != tc.want || e.Error != tc.err.Error() {
				t.Fatalf("error body=%+v", e)
			}
		})
	}
}

func TestPredict_TimeoutApplied(t *testing.T) {
	SetPredictTimeoutSeconds(30)
	t.Cleanup(func() { SetPredictTimeoutSeconds(0) })
	ctx, cancel := workContext(context.Background())
	defer cancel()
	if _, ok := ctx.Deadline(); !ok {
		t.Fatalf("expected a deadline")
	}
}

func TestPredict_ShutdownSuppressesResponse(t *testing.T) {
	base, cancel := context.WithCancel(context.Background())
	cancel()
	SetBaseContext(base)
	t.Cleanup(func() { SetBaseContext(nil) })
	w := postJSON(t, NewMux(&mockService{predictErr: context.Canceled}), `{"features": {"koi_period": 1}}`)
	if w.Body.Len() != 0 {
		t.Fatalf("expected no body after shutdown, got %q", w.Body.String())
	}
}

func TestPredictCSV(t *testing.T) {
	svc := &mockService{}
	h := NewMux(svc)
	req := httptest.NewRequest(http.MethodPost, "/predict/csv?where=koi_model_snr+%3E+10", strings.NewReader("koi_period\n9.5\n"))
	req.Header.Set("Content-Type", "text/csv")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if svc.gotWhere != "koi_model_snr > 10" || svc.gotCSV != "koi_period\n9.5\n" {
		t.Fatalf("where=%q csv=%q", svc.gotWhere, svc.gotCSV)
	}
	var res types.ScoreResult
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil || len(res.Rows) != 1 || res.Rows[0]["prediction"] != "CONFIRMED" {
		t.Fatalf("res=%+v err=%v", res, err)
	}
}

func TestPredictCSV_CSVOutput(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/predict/csv?format=csv", strings.NewReader("koi_period\n9.5\n"))
	req.Header.Set("Content-Type", "text/csv")
	w := httptest.NewRecorder()
	NewMux(&mockService{}).ServeHTTP(w, req)
	if w.Code != http.StatusOK || w.Body.String() != "koi_period,prediction\n9.5,CONFIRMED\n" {
		t.Fatalf("status=%d body=%q", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/csv" {
		t.Fatalf("content-type=%s", ct)
	}
}

func TestPredictCSV_Multipart(t *testing.T) {
	var buf bytes.Buffer
	mw := newMultipart(t, &buf, "file", "koi.csv", "koi_period\n1\n")
	svc := &mockService{}
	req := httptest.NewRequest(http.MethodPost, "/predict/csv", &buf)
	req.Header.Set("Content-Type", mw)
	w := httptest.NewRecorder()
	NewMux(svc).ServeHTTP(w, req)
	if w.Code != http.StatusOK || svc.gotCSV != "koi_period\n1\n" {
		t.Fatalf("status=%d csv=%q", w.Code, svc.gotCSV)
	}

	buf.Reset()
	mw = newMultipart(t, &buf, "upload", "koi.csv", "koi_period\n1\n")
	req = httptest.NewRequest(http.MethodPost, "/predict/csv", &buf)
	req.Header.Set("Content-Type", mw)
	w = httptest.NewRecorder()
	NewMux(&mockService{}).ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("missing file field: status=%d", w.Code)
	}
}

func TestPredictCSV_Errors(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/predict/csv", strings.NewReader("{}"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	NewMux(&mockService{}).ServeHTTP(w, req)
	if w.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("status=%d", w.Code)
	}

	_, filterErr := scoring.CompileFilter("koi_prad + 1.0")
	req = httptest.NewRequest(http.MethodPost, "/predict/csv", strings.NewReader("koi_period\n1\n"))
	req.Header.Set("Content-Type", "text/csv")
	w = httptest.NewRecorder()
	NewMux(&mockService{scoreErr: filterErr}).ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("filter error: status=%d", w.Code)
	}
}
