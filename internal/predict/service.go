package predict

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/rs/zerolog"

	"koiserve/internal/cache"
	"koiserve/internal/features"
	"koiserve/internal/model"
	"koiserve/pkg/types"
)

// Defaults applied when the corresponding Config fields are unset.
const (
	defaultWorkers   = 4
	defaultChunkSize = 512
)

// Store is the subset of the SQLite store the service writes to and reads from.
type Store interface {
	RecordPredictions(ctx context.Context, recs []types.PredictionRecord) error
	Recent(ctx context.Context, limit int) ([]types.PredictionRecord, error)
	Stats(ctx context.Context) (types.PredictionStats, error)
	RecordMetrics(ctx context.Context, m types.ModelMetrics) error
	LatestMetrics(ctx context.Context) (types.ModelMetrics, bool, error)
	MetricsHistory(ctx context.Context) ([]types.ModelMetrics, error)
	Ping(ctx context.Context) error
}

// Config wires a Service. Model is required; Cache and Store are optional.
type Config struct {
	Model      *model.Model
	Imputation string
	Cache      cache.Cache
	Store      Store
	Workers    int
	ChunkSize  int
	Logger     *zerolog.Logger
}

// Service runs predictions against one immutable model.
type Service struct {
	model   *model.Model
	imputer features.Imputer
	cache   cache.Cache
	store   Store
	workers int
	chunk   int
	log     zerolog.Logger
	closed  atomic.Bool
}

// New builds a Service. When a store is configured, the artifact's evaluation
// metrics are recorded so /model/metrics/history accumulates across releases.
func New(ctx context.Context, cfg Config) (*Service, error) {
	if cfg.Model == nil {
		return nil, errors.New("predict: nil model")
	}
	imp, err := features.NewImputer(cfg.Imputation, cfg.Model.Means())
	if err != nil {
		return nil, err
	}
	s := &Service{
		model:   cfg.Model,
		imputer: imp,
		cache:   cfg.Cache,
		store:   cfg.Store,
		workers: cfg.Workers,
		chunk:   cfg.ChunkSize,
		log:     zerolog.Nop(),
	}
	if s.workers <= 0 {
		s.workers = defaultWorkers
	}
	if s.chunk <= 0 {
		s.chunk = defaultChunkSize
	}
	if cfg.Logger != nil {
		s.log = *cfg.Logger
	}
	if s.store != nil {
		if m, ok := cfg.Model.Metrics(); ok {
			if err := s.store.RecordMetrics(ctx, m); err != nil {
				return nil, err
			}
		}
	}
	return s, nil
}

// ModelInfo describes the loaded model and the active imputation strategy.
func (s *Service) ModelInfo() types.ModelInfo {
	info := s.model.Info()
	info.Imputation = s.imputer.Name()
	return info
}

// Ready reports whether the service can answer predictions.
func (s *Service) Ready() bool { return !s.closed.Load() }

// Ping checks the prediction store, when one is configured.
func (s *Service) Ping(ctx context.Context) error {
	if s.store == nil {
		return nil
	}
	if err := s.store.Ping(ctx); err != nil {
		return fmt.Errorf("store ping: %w", err)
	}
	return nil
}

// Close releases the cache and the model runtime. The store is owned by the caller.
func (s *Service) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	var errs []error
	if s.cache != nil {
		errs = append(errs, s.cache.Close())
	}
	errs = append(errs, s.model.Close())
	return errors.Join(errs...)
}
