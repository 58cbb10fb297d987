// Package config loads execution settings from defaults, an optional config
// file and LEAPDB_* environment variables.
package config

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"leapdb/pkg/dberror"
	"leapdb/pkg/logging"
	"leapdb/pkg/storage/index"
	"leapdb/pkg/tuple"
)

// EnvPrefix is prepended to every environment override, e.g. LEAPDB_SORT_BUFFERS.
const EnvPrefix = "LEAPDB"

// Eviction policy names accepted by EvictionPolicy.
const (
	PolicyMRU = "mru"
	PolicyLRU = "lru"
)

// LoggingConfig mirrors logging.Config in a form viper can decode.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
	SeqURL string `mapstructure:"seq_url"`
}

// ExecutionConfig holds the knobs of the execution core.
type ExecutionConfig struct {
	// SortBuffers is B, the number of page-sized buffers external sort may use.
	SortBuffers int `mapstructure:"sort_buffers"`
	// PageSize is the page size in bytes used for record-per-page accounting.
	PageSize int `mapstructure:"page_size"`
	// BufferFrames is the number of frames owned by the buffer manager.
	BufferFrames int `mapstructure:"buffer_frames"`
	// EvictionPolicy is "mru" or "lru".
	EvictionPolicy string `mapstructure:"eviction_policy"`
	// IndexOrder is the fan-out of in-memory indexes.
	IndexOrder int `mapstructure:"index_order"`

	Logging LoggingConfig `mapstructure:"logging"`
}

// Default returns the configuration used when nothing overrides it.
func Default() ExecutionConfig {
	return ExecutionConfig{
		SortBuffers:    8,
		PageSize:       tuple.DefaultPageSize,
		BufferFrames:   64,
		EvictionPolicy: PolicyMRU,
		IndexOrder:     32,
		Logging: LoggingConfig{
			Level:  string(logging.LevelInfo),
			Format: "text",
		},
	}
}

// NewViper returns a viper instance seeded with defaults and wired to the environment.
func NewViper() *viper.Viper {
	d := Default()
	v := viper.New()
	v.SetDefault("sort_buffers", d.SortBuffers)
	v.SetDefault("page_size", d.PageSize)
	v.SetDefault("buffer_frames", d.BufferFrames)
	v.SetDefault("eviction_policy", d.EvictionPolicy)
	v.SetDefault("index_order", d.IndexOrder)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("logging.output", d.Logging.Output)
	v.SetDefault("logging.seq_url", d.Logging.SeqURL)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the optional file at path on top of defaults and environment.
func Load(path string) (*ExecutionConfig, error) {
	v := NewViper()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "read config %s", path)
		}
	}
	return FromViper(v)
}

// FromViper decodes and validates the configuration held by v.
func FromViper(v *viper.Viper) (*ExecutionConfig, error) {
	var cfg ExecutionConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "decode config")
	}
	cfg.EvictionPolicy = strings.ToLower(cfg.EvictionPolicy)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the invariants the operators rely on.
func (c *ExecutionConfig) Validate() error {
	switch {
	case c.SortBuffers < 2:
		return invalid("sort_buffers must be at least 2, got %d", c.SortBuffers)
	case c.PageSize <= 0:
		return invalid("page_size must be positive, got %d", c.PageSize)
	case c.BufferFrames < 1:
		return invalid("buffer_frames must be at least 1, got %d", c.BufferFrames)
	case c.EvictionPolicy != PolicyMRU && c.EvictionPolicy != PolicyLRU:
		return invalid("eviction_policy must be %q or %q, got %q", PolicyMRU, PolicyLRU, c.EvictionPolicy)
	case c.IndexOrder < index.MinOrder:
		return invalid("index_order must be at least %d, got %d", index.MinOrder, c.IndexOrder)
	}
	return nil
}

// LoggingConfig converts the logging section for logging.Init.
func (c *ExecutionConfig) LoggingConfig() logging.Config {
	return logging.Config{
		Level:      logging.LogLevel(strings.ToUpper(c.Logging.Level)),
		OutputPath: c.Logging.Output,
		Format:     c.Logging.Format,
		SeqURL:     c.Logging.SeqURL,
	}
}

func invalid(format string, args ...any) error {
	return dberror.Precondition("ExecutionConfig", "Validate", format, args...)
}
