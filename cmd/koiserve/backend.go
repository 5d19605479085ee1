package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"koiserve/internal/cache"
	"koiserve/internal/common/fsutil"
	"koiserve/internal/config"
	"koiserve/internal/model"
	"koiserve/internal/predict"
	"koiserve/internal/registry"
	"koiserve/internal/scoring"
	"koiserve/internal/store"
)

// backend serves /predict through the prediction service and /predict/csv
// through a scorer sharing that same service.
type backend struct {
	*predict.Service
	*scoring.Scorer
	store *store.Store
}

// openBackend resolves and loads the model, then wires the optional store
// and cache around it.
func openBackend(ctx context.Context, cfg config.Config, log zerolog.Logger) (*backend, error) {
	path, err := registry.Resolve(cfg.Model)
	if err != nil {
		return nil, err
	}
	m, err := model.Load(path)
	if err != nil {
		return nil, err
	}
	log.Info().Str("version", m.Version()).Str("kind", m.Kind()).Str("path", m.Path()).
		Bool("probabilities", m.HasProbabilities()).Msg("model loaded")

	b := &backend{}
	pcfg := predict.Config{
		Model:      m,
		Imputation: cfg.Imputation,
		Workers:    cfg.Score.Workers,
		ChunkSize:  cfg.Score.ChunkSize,
		Logger:     &log,
	}
	if cfg.Store.Path != "" {
		p, err := fsutil.ExpandHome(cfg.Store.Path)
		if err != nil {
			_ = m.Close()
			return nil, err
		}
		if b.store, err = store.Open(ctx, p); err != nil {
			_ = m.Close()
			return nil, err
		}
		pcfg.Store = b.store
		log.Info().Str("path", p).Msg("prediction store opened")
	}
	if pcfg.Cache, err = openCache(ctx, cfg.Cache); err != nil {
		_ = m.Close()
		return nil, errors.Join(err, b.closeStore())
	}
	if pcfg.Cache != nil {
		log.Info().Str("cache", pcfg.Cache.Name()).Msg("prediction cache enabled")
	}

	svc, err := predict.New(ctx, pcfg)
	if err != nil {
		_ = m.Close()
		if pcfg.Cache != nil {
			_ = pcfg.Cache.Close()
		}
		return nil, errors.Join(err, b.closeStore())
	}
	b.Service = svc
	b.Scorer = scoring.New(svc)
	return b, nil
}

// openCache prefers a shared redis cache over the in-process LRU. A nil
// cache means caching is off.
func openCache(ctx context.Context, cfg config.CacheConfig) (cache.Cache, error) {
	switch {
	case cfg.RedisAddr != "":
		c, err := cache.NewRedis(ctx, cfg.RedisAddr, time.Duration(cfg.TTL)*time.Second)
		if err != nil {
			return nil, fmt.Errorf("redis cache: %w", err)
		}
		return c, nil
	case cfg.Size > 0:
		return cache.NewLRU(cfg.Size)
	default:
		return nil, nil
	}
}

func (b *backend) closeStore() error {
	if b.store == nil {
		return nil
	}
	return b.store.Close()
}

// Close releases the service (cache and model runtime) and then the store.
func (b *backend) Close() error {
	var err error
	if b.Service != nil {
		err = b.Service.Close()
	}
	return errors.Join(err, b.closeStore())
}
