package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix namespaces environment overrides, e.g. KOISERVE_LOG_LEVEL.
const EnvPrefix = "KOISERVE"

// flagKeys maps command-line flag names onto config keys.
var flagKeys = map[string]string{
	"addr":            "addr",
	"model":           "model",
	"imputation":      "imputation",
	"log-level":       "log.level",
	"log-file":        "log.file",
	"log-pretty":      "log.pretty",
	"max-body-bytes":  "max_body_bytes",
	"predict-timeout": "predict_timeout",
	"cors":            "cors.enabled",
	"cors-origins":    "cors.origins",
	"cache-size":      "cache.size",
	"redis-addr":      "cache.redis_addr",
	"cache-ttl":       "cache.ttl",
	"store":           "store.path",
	"workers":         "score.workers",
	"chunk-size":      "score.chunk_size",
}

// Resolve layers configuration: defaults, then the optional file at path,
// then KOISERVE_* environment variables, then flags explicitly set on fs.
func Resolve(path string, fs *pflag.FlagSet) (Config, error) {
	base := Default()
	if path != "" {
		var err error
		if base, err = Load(path); err != nil {
			return base, err
		}
	}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v, base)

	if fs != nil {
		for name, key := range flagKeys {
			f := fs.Lookup(name)
			if f == nil || !f.Changed {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return base, fmt.Errorf("bind flag %s: %w", name, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return base, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

// setDefaults registers every leaf key so AutomaticEnv can find it during Unmarshal.
func setDefaults(v *viper.Viper, c Config) {
	v.SetDefault("addr", c.Addr)
	v.SetDefault("model", c.Model)
	v.SetDefault("imputation", c.Imputation)
	v.SetDefault("max_body_bytes", c.MaxBodyBytes)
	v.SetDefault("predict_timeout", c.PredictTimeout)
	v.SetDefault("log.level", c.Log.Level)
	v.SetDefault("log.file", c.Log.File)
	v.SetDefault("log.pretty", c.Log.Pretty)
	v.SetDefault("cors.enabled", c.CORS.Enabled)
	v.SetDefault("cors.origins", c.CORS.Origins)
	v.SetDefault("cache.size", c.Cache.Size)
	v.SetDefault("cache.redis_addr", c.Cache.RedisAddr)
	v.SetDefault("cache.ttl", c.Cache.TTL)
	v.SetDefault("store.path", c.Store.Path)
	v.SetDefault("score.workers", c.Score.Workers)
	v.SetDefault("score.chunk_size", c.Score.ChunkSize)
}

// RegisterFlags adds the flags understood by Resolve to fs.
func RegisterFlags(fs *pflag.FlagSet) {
	d := Default()
	fs.String("addr", d.Addr, "listen address")
	fs.String("model", d.Model, "model artifact path or directory")
	fs.String("imputation", d.Imputation, "missing value strategy: batch-mean or model-mean")
	fs.String("log-level", d.Log.Level, "default log level: off|error|info|debug")
	fs.String("log-file", d.Log.File, "also write logs to this file (rotated)")
	fs.Bool("log-pretty", d.Log.Pretty, "human-readable console logs")
	fs.Int64("max-body-bytes", d.MaxBodyBytes, "maximum request body size in bytes")
	fs.Int("predict-timeout", d.PredictTimeout, "server-side prediction timeout in seconds (0 = none)")
	fs.Bool("cors", d.CORS.Enabled, "enable CORS")
	fs.StringSlice("cors-origins", d.CORS.Origins, "allowed CORS origins")
	fs.Int("cache-size", d.Cache.Size, "in-process prediction cache entries (0 = off)")
	fs.String("redis-addr", d.Cache.RedisAddr, "redis address for a shared prediction cache")
	fs.Int("cache-ttl", d.Cache.TTL, "redis cache TTL in seconds (0 = no expiry)")
	fs.String("store", d.Store.Path, "SQLite file for the prediction log (empty = off)")
	fs.Int("workers", d.Score.Workers, "concurrent inference chunks")
	fs.Int("chunk-size", d.Score.ChunkSize, "rows per inference chunk")
}
