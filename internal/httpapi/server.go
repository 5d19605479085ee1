package httpapi

import (
	"context"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"koiserve/internal/features"
	"koiserve/pkg/types"
)

// Service defines the methods required by the HTTP API layer.
type Service interface {
	Predict(ctx context.Context, rows []features.Row) (types.PredictResponse, error)
	ScoreCSV(ctx context.Context, r io.Reader, where string) (types.ScoreResult, error)
	ModelInfo() types.ModelInfo
	ModelMetrics(ctx context.Context) (types.ModelMetrics, error)
	MetricsHistory(ctx context.Context) ([]types.ModelMetrics, error)
	RecentPredictions(ctx context.Context, limit int) ([]types.PredictionRecord, error)
	PredictionStats(ctx context.Context) (types.PredictionStats, error)
	Ready() bool
	Ping(ctx context.Context) error
}

func NewMux(svc Service) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(MetricsMiddleware)
	r.Use(middleware.Compress(5))
	if corsEnabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: corsAllowedOrigins,
			AllowedMethods: corsAllowedMethods,
			AllowedHeaders: corsAllowedHeaders,
			MaxAge:         300,
		}))
	}
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})

	h := &handlers{svc: svc}
	r.Post("/predict", h.predict)
	r.Post("/predict/csv", h.predictCSV)
	r.Get("/model", h.modelInfo)
	r.Get("/model/metrics", h.modelMetrics)
	r.Get("/model/metrics/history", h.metricsHistory)
	r.Get("/predictions", h.recentPredictions)
	r.Get("/predictions/stats", h.predictionStats)

	// /health answers without looking at the model.
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, types.HealthResponse{Status: "ok"})
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if !svc.Ready() {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("loading"))
			return
		}
		if err := svc.Ping(r.Context()); err != nil {
			withRequest(zlog.Warn(), r).Err(err).Msg("readiness check failed")
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("store unavailable"))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	r.Get("/metrics", promhttp.Handler().ServeHTTP)
	MountSwagger(r)

	return r
}
