// Package cache memoizes per-row predictions keyed by model version and the
// imputed feature vector.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"math"
)

// Entry is one cached prediction.
type Entry struct {
	Label         string    `json:"label"`
	Probabilities []float64 `json:"probabilities,omitempty"`
}

// Cache stores entries by key. A miss is (Entry{}, false, nil).
type Cache interface {
	Name() string
	Get(ctx context.Context, key string) (Entry, bool, error)
	Set(ctx context.Context, key string, e Entry) error
	Close() error
}

// Key derives a stable cache key for a fully imputed row under a model version.
func Key(version string, row []float64) string {
	h := sha256.New()
	h.Write([]byte(version))
	h.Write([]byte{0})
	var buf [8]byte
	for _, v := range row {
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
		h.Write(buf[:])
	}
	return hex.EncodeToString(h.Sum(nil))
}
