package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config holds runtime parameters for the service and the scorer.
type Config struct {
	Addr       string `json:"addr" yaml:"addr" toml:"addr" mapstructure:"addr"`
	Model      string `json:"model" yaml:"model" toml:"model" mapstructure:"model"`
	Imputation string `json:"imputation" yaml:"imputation" toml:"imputation" mapstructure:"imputation"`
	// MaxBodyBytes caps request bodies; 0 or less keeps the 1 MiB default.
	MaxBodyBytes int64 `json:"max_body_bytes" yaml:"max_body_bytes" toml:"max_body_bytes" mapstructure:"max_body_bytes"`
	// PredictTimeout in seconds; 0 disables the server-side deadline.
	PredictTimeout int `json:"predict_timeout" yaml:"predict_timeout" toml:"predict_timeout" mapstructure:"predict_timeout"`

	Log   LogConfig   `json:"log" yaml:"log" toml:"log" mapstructure:"log"`
	CORS  CORSConfig  `json:"cors" yaml:"cors" toml:"cors" mapstructure:"cors"`
	Cache CacheConfig `json:"cache" yaml:"cache" toml:"cache" mapstructure:"cache"`
	Store StoreConfig `json:"store" yaml:"store" toml:"store" mapstructure:"store"`
	Score ScoreConfig `json:"score" yaml:"score" toml:"score" mapstructure:"score"`
}

type LogConfig struct {
	Level  string `json:"level" yaml:"level" toml:"level" mapstructure:"level"`
	File   string `json:"file" yaml:"file" toml:"file" mapstructure:"file"`
	Pretty bool   `json:"pretty" yaml:"pretty" toml:"pretty" mapstructure:"pretty"`
}

type CORSConfig struct {
	Enabled bool     `json:"enabled" yaml:"enabled" toml:"enabled" mapstructure:"enabled"`
	Origins []string `json:"origins" yaml:"origins" toml:"origins" mapstructure:"origins"`
}

// CacheConfig selects the prediction cache. A RedisAddr takes precedence over
// the in-process LRU; Size 0 with no RedisAddr disables caching.
type CacheConfig struct {
	Size      int    `json:"size" yaml:"size" toml:"size" mapstructure:"size"`
	RedisAddr string `json:"redis_addr" yaml:"redis_addr" toml:"redis_addr" mapstructure:"redis_addr"`
	// TTL in seconds for redis entries; 0 keeps them forever.
	TTL int `json:"ttl" yaml:"ttl" toml:"ttl" mapstructure:"ttl"`
}

// StoreConfig points at the SQLite prediction log. Empty Path disables it.
type StoreConfig struct {
	Path string `json:"path" yaml:"path" toml:"path" mapstructure:"path"`
}

type ScoreConfig struct {
	Workers   int `json:"workers" yaml:"workers" toml:"workers" mapstructure:"workers"`
	ChunkSize int `json:"chunk_size" yaml:"chunk_size" toml:"chunk_size" mapstructure:"chunk_size"`
}

// Default returns the configuration used when nothing else is set.
func Default() Config {
	return Config{
		Addr:           "0.0.0.0:5000",
		Model:          "kepler_model_all_data.json",
		Imputation:     "batch-mean",
		MaxBodyBytes:   1 << 20,
		PredictTimeout: 0,
		Log:            LogConfig{Level: "info"},
		CORS:           CORSConfig{Enabled: true, Origins: []string{"*"}},
		Cache:          CacheConfig{Size: 0},
		Score:          ScoreConfig{Workers: 4, ChunkSize: 512},
	}
}

// Load reads a configuration file based on its extension on top of Default.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, &cfg)
	case ".json":
		err = json.Unmarshal(b, &cfg)
	case ".toml":
		err = toml.Unmarshal(b, &cfg)
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	if err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}
