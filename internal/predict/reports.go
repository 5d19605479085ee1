package predict

import (
	"context"

	"koiserve/internal/store"
	"koiserve/pkg/types"
)

const (
	defaultRecentLimit = 50
	maxRecentLimit     = 500
)

// ModelMetrics returns evaluation metrics for the loaded model: the artifact's
// own metrics, else the store's latest row, else the built-in defaults.
func (s *Service) ModelMetrics(ctx context.Context) (types.ModelMetrics, error) {
	if m, ok := s.model.Metrics(); ok {
		return m, nil
	}
	if s.store != nil {
		m, ok, err := s.store.LatestMetrics(ctx)
		if err != nil {
			return types.ModelMetrics{}, err
		}
		if ok {
			return m, nil
		}
	}
	return store.DefaultMetrics(), nil
}

// MetricsHistory lists every recorded metrics row, newest first.
func (s *Service) MetricsHistory(ctx context.Context) ([]types.ModelMetrics, error) {
	if s.store == nil {
		return nil, ErrStoreDisabled
	}
	return s.store.MetricsHistory(ctx)
}

// RecentPredictions returns the newest logged predictions. limit is clamped
// to [1, 500]; 0 or less means 50.
func (s *Service) RecentPredictions(ctx context.Context, limit int) ([]types.PredictionRecord, error) {
	if s.store == nil {
		return nil, ErrStoreDisabled
	}
	switch {
	case limit <= 0:
		limit = defaultRecentLimit
	case limit > maxRecentLimit:
		limit = maxRecentLimit
	}
	return s.store.Recent(ctx, limit)
}

// PredictionStats aggregates the prediction log.
func (s *Service) PredictionStats(ctx context.Context) (types.PredictionStats, error) {
	if s.store == nil {
		return types.PredictionStats{}, ErrStoreDisabled
	}
	return s.store.Stats(ctx)
}
