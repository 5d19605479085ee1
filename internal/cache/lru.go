package cache

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// LRU is an in-process, size-bounded cache.
type LRU struct {
	c *lru.Cache[string, Entry]
}

func NewLRU(size int) (*LRU, error) {
	c, err := lru.New[string, Entry](size)
	if err != nil {
		return nil, fmt.Errorf("lru cache: %w", err)
	}
	return &LRU{c: c}, nil
}

func (l *LRU) Name() string { return "lru" }

func (l *LRU) Get(_ context.Context, key string) (Entry, bool, error) {
	e, ok := l.c.Get(key)
	return e, ok, nil
}

func (l *LRU) Set(_ context.Context, key string, e Entry) error {
	e.Probabilities = append([]float64(nil), e.Probabilities...)
	l.c.Add(key, e)
	return nil
}

func (l *LRU) Len() int { return l.c.Len() }

func (l *LRU) Close() error {
	l.c.Purge()
	return nil
}
