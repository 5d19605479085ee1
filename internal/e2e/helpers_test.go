package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"koiserve/internal/cache"
	"koiserve/internal/features"
	"koiserve/internal/httpapi"
	"koiserve/internal/model"
	"koiserve/internal/predict"
	"koiserve/internal/scoring"
	"koiserve/internal/store"
)

var fixture = filepath.Join("..", "model", "testdata", "forest.json")

type options struct {
	imputation string
	withStore  bool
	cacheSize  int
	labelsOnly bool
}

// backend mirrors the serving wiring: one service shared by /predict and the scorer.
type backend struct {
	*predict.Service
	*scoring.Scorer
}

func newServer(t *testing.T, opts options) *httptest.Server {
	t.Helper()
	m, err := loadModel(opts.labelsOnly)
	if err != nil {
		t.Fatalf("load model: %v", err)
	}
	cfg := predict.Config{Model: m, Imputation: opts.imputation, Workers: 2, ChunkSize: 2}
	if opts.withStore {
		st, err := store.Open(context.Background(), filepath.Join(t.TempDir(), "koi.sqlite"))
		if err != nil {
			t.Fatalf("open store: %v", err)
		}
		t.Cleanup(func() { _ = st.Close() })
		cfg.Store = st
	}
	if opts.cacheSize > 0 {
		c, err := cache.NewLRU(opts.cacheSize)
		if err != nil {
			t.Fatalf("lru: %v", err)
		}
		cfg.Cache = c
	}
	svc, err := predict.New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	t.Cleanup(func() { _ = svc.Close() })

	srv := httptest.NewServer(httpapi.NewMux(backend{Service: svc, Scorer: scoring.New(svc)}))
	t.Cleanup(srv.Close)
	return srv
}

// loadModel reads the forest fixture, optionally with probability output switched off.
func loadModel(labelsOnly bool) (*model.Model, error) {
	if !labelsOnly {
		return model.Load(fixture)
	}
	b, err := os.ReadFile(fixture)
	if err != nil {
		return nil, err
	}
	var raw map[string]any
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, err
	}
	raw["probability"] = false
	if b, err = json.Marshal(raw); err != nil {
		return nil, err
	}
	return model.Parse(b, fixture)
}

// fullRow returns a 29-column record that the forest fixture labels CONFIRMED.
func fullRow() map[string]any {
	row := make(map[string]any, features.Count)
	for i, c := range features.Columns {
		row[c] = float64(i + 1)
	}
	row["koi_period"] = 9.5
	row["koi_prad"] = 1.2
	row["koi_model_snr"] = 30.0
	return row
}

func httpGet(t *testing.T, url string) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, url, nil)
	if err != nil {
		t.Fatalf("new req: %v", err)
	}
	return do(t, req)
}

func post(t *testing.T, url, contentType string, body []byte) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		t.Fatalf("new req: %v", err)
	}
	req.Header.Set("Content-Type", contentType)
	return do(t, req)
}

func postJSON(t *testing.T, url string, v any) (*http.Response, []byte) {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return post(t, url, "application/json", b)
}

func do(t *testing.T, req *http.Request) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do req: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	return resp, body
}
