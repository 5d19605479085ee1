package httpapi

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]LogLevel{
		"":        LevelOff,
		"off":     LevelOff,
		" ERROR ": LevelError,
		"info":    LevelInfo,
		"Debug":   LevelDebug,
		"verbose": LevelInfo,
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Fatalf("parseLevel(%q)=%v want %v", in, got, want)
		}
	}
}

func TestRequestLogLevel_Precedence(t *testing.T) {
	prev := defaultLogLevel
	t.Cleanup(func() { defaultLogLevel = prev })
	SetDefaultLogLevel("error")

	r := httptest.NewRequest(http.MethodPost, "/predict", nil)
	if got := requestLogLevel(r); got != LevelError {
		t.Fatalf("default: %v", got)
	}
	r.Header.Set("X-Log-Level", "info")
	if got := requestLogLevel(r); got != LevelInfo {
		t.Fatalf("header: %v", got)
	}
	r = httptest.NewRequest(http.MethodPost, "/predict?log=1", nil)
	r.Header.Set("X-Log-Level", "off")
	if got := requestLogLevel(r); got != LevelDebug {
		t.Fatalf("query: %v", got)
	}
}

func TestPredict_LogsWithRequestID(t *testing.T) {
	var buf bytes.Buffer
	prev := zlog
	SetLogger(zerolog.New(&buf))
	t.Cleanup(func() { SetLogger(prev) })

	req := httptest.NewRequest(http.MethodPost, "/predict?log=info", strings.NewReader(`{"features": {"koi_period": 1}}`))
	req.Header.Set("Content-Type", "application/json")
	NewMux(&mockService{}).ServeHTTP(httptest.NewRecorder(), req)

	out := buf.String()
	for _, want := range []string{`"message":"predict start"`, `"message":"predict end"`, `"request_id"`, `"status":200`} {
		if !strings.Contains(out, want) {
			t.Fatalf("log output missing %s: %s", want, out)
		}
	}
}

func TestPredict_LogOffIsSilent(t *testing.T) {
	var buf bytes.Buffer
	prev := zlog
	SetLogger(zerolog.New(&buf))
	t.Cleanup(func() { SetLogger(prev) })

	req := httptest.NewRequest(http.MethodPost, "/predict?log=off", strings.NewReader(`{"features": {"koi_period": 1}}`))
	req.Header.Set("Content-Type", "application/json")
	NewMux(&mockService{}).ServeHTTP(httptest.NewRecorder(), req)
	if buf.Len() != 0 {
		t.Fatalf("expected no logs, got %s", buf.String())
	}
}

type brokenWriter struct{ *httptest.ResponseRecorder }

func (brokenWriter) Write([]byte) (int, error) { return 0, errors.New("connection reset") }

func TestPredictCSV_LogsWriteFailure(t *testing.T) {
	var buf bytes.Buffer
	prev := zlog
	SetLogger(zerolog.New(&buf))
	t.Cleanup(func() { SetLogger(prev) })

	req := httptest.NewRequest(http.MethodPost, "/predict/csv?format=csv&log=error", strings.NewReader("koi_period\n9.5\n"))
	req.Header.Set("Content-Type", "text/csv")
	NewMux(&mockService{}).ServeHTTP(brokenWriter{httptest.NewRecorder()}, req)

	out := buf.String()
	for _, want := range []string{`"level":"error"`, `"status":500`, `write csv: connection reset`, `"message":"score end"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %s in %s", want, out)
		}
	}
}
