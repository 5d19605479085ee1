package predict

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"koiserve/internal/cache"
	"koiserve/internal/features"
	"koiserve/internal/model"
	"koiserve/pkg/types"
)

// Predict aligns rows to the KOI columns, imputes missing values across the
// batch, and returns one label per row plus probabilities when the model
// supports them. One bad row fails the whole batch.
func (s *Service) Predict(ctx context.Context, rows []features.Row) (types.PredictResponse, error) {
	start := time.Now()
	defer func() { inferenceDuration.Observe(time.Since(start).Seconds()) }()

	tbl, err := features.Align(rows)
	if err != nil {
		return types.PredictResponse{}, err
	}
	rep := s.imputer.Impute(tbl)
	for j, n := range rep.Imputed {
		if n > 0 {
			imputedValuesTotal.WithLabelValues(features.Columns[j]).Add(float64(n))
		}
	}
	if r, c, ok := tbl.FirstMissing(); ok {
		return types.PredictResponse{}, model.ErrUnimputed(r, features.Columns[c])
	}
	batchRows.Observe(float64(tbl.Len()))

	n := tbl.Len()
	labels := make([]string, n)
	var probs [][]float64
	if s.model.HasProbabilities() {
		probs = make([][]float64, n)
	}

	keys, pending := s.lookup(ctx, tbl, labels, probs)
	if len(pending) > 0 {
		X := make([][]float64, len(pending))
		for i, idx := range pending {
			X[i] = tbl.Rows[idx]
		}
		l, p, err := s.infer(ctx, X)
		if err != nil {
			return types.PredictResponse{}, err
		}
		for i, idx := range pending {
			labels[idx] = l[i]
			if probs != nil {
				probs[idx] = p[i]
			}
		}
		s.fill(ctx, keys, pending, labels, probs)
	}

	for _, l := range labels {
		predictionsTotal.WithLabelValues(l).Inc()
	}
	s.record(ctx, tbl, labels, probs)
	s.log.Debug().
		Int("rows", n).
		Int("imputed", rep.Total()).
		Int("inferred", len(pending)).
		Dur("dur", time.Since(start)).
		Msg("predict")
	return types.PredictResponse{Predictions: labels, Probabilities: probs}, nil
}

// lookup fills cached rows and returns the cache keys plus the row indexes
// that still need inference. Cache errors degrade to misses.
func (s *Service) lookup(ctx context.Context, tbl features.Table, labels []string, probs [][]float64) ([]string, []int) {
	pending := make([]int, 0, tbl.Len())
	if s.cache == nil {
		for i := range tbl.Rows {
			pending = append(pending, i)
		}
		return nil, pending
	}
	keys := make([]string, tbl.Len())
	version := s.model.Version()
	for i, row := range tbl.Rows {
		keys[i] = cache.Key(version, row)
		e, ok, err := s.cache.Get(ctx, keys[i])
		switch {
		case err != nil:
			cacheLookups.WithLabelValues("error").Inc()
			s.log.Warn().Err(err).Str("cache", s.cache.Name()).Msg("cache get failed")
		case ok && (probs == nil || len(e.Probabilities) > 0):
			cacheLookups.WithLabelValues("hit").Inc()
			labels[i] = e.Label
			if probs != nil {
				probs[i] = e.Probabilities
			}
			continue
		default:
			cacheLookups.WithLabelValues("miss").Inc()
		}
		pending = append(pending, i)
	}
	return keys, pending
}

func (s *Service) fill(ctx context.Context, keys []string, pending []int, labels []string, probs [][]float64) {
	if s.cache == nil {
		return
	}
	for _, idx := range pending {
		e := cache.Entry{Label: labels[idx]}
		if probs != nil {
			e.Probabilities = probs[idx]
		}
		if err := s.cache.Set(ctx, keys[idx], e); err != nil {
			s.log.Warn().Err(err).Str("cache", s.cache.Name()).Msg("cache set failed")
			return
		}
	}
}

// infer runs the model over X in chunks, at most s.workers at a time.
// Results keep the input order.
func (s *Service) infer(ctx context.Context, X [][]float64) ([]string, [][]float64, error) {
	if len(X) <= s.chunk {
		return s.model.Predict(X)
	}
	labels := make([]string, len(X))
	var probs [][]float64
	if s.model.HasProbabilities() {
		probs = make([][]float64, len(X))
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for lo := 0; lo < len(X); lo += s.chunk {
		hi := min(lo+s.chunk, len(X))
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			l, p, err := s.model.Predict(X[lo:hi])
			if err != nil {
				return err
			}
			copy(labels[lo:hi], l)
			if probs != nil {
				copy(probs[lo:hi], p)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return labels, probs, nil
}

// record appends the batch to the prediction log. Failures are logged and
// counted but never fail the request.
func (s *Service) record(ctx context.Context, tbl features.Table, labels []string, probs [][]float64) {
	if s.store == nil {
		return
	}
	now := time.Now().Unix()
	reqID := RequestID(ctx)
	recs := make([]types.PredictionRecord, len(labels))
	for i, l := range labels {
		recs[i] = types.PredictionRecord{
			RequestID:    reqID,
			ModelVersion: s.model.Version(),
			Label:        l,
			Features:     features.AsRow(tbl.Rows[i]),
			CreatedAt:    now,
		}
		if probs != nil {
			c := top(probs[i])
			recs[i].Confidence = &c
		}
	}
	if err := s.store.RecordPredictions(context.WithoutCancel(ctx), recs); err != nil {
		storeErrors.Inc()
		s.log.Error().Err(err).Int("rows", len(recs)).Msg("record predictions")
	}
}

func top(p []float64) float64 {
	m := 0.0
	for _, v := range p {
		if v > m {
			m = v
		}
	}
	return m
}
