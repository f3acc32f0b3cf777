// Package config loads the immutable-per-run retrieval configuration from an
// optional reviewrag.yaml in the workspace plus REVIEWRAG_* environment
// variables.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config is the per-run configuration consumed read-only by the indexer and
// retriever.
type Config struct {
	Enabled        bool `mapstructure:"enabled"`
	IndexOnStartup bool `mapstructure:"index_on_startup"`

	ChunkSize    int `mapstructure:"chunk_size"`
	ChunkOverlap int `mapstructure:"chunk_overlap"`

	EmbeddingModel    string `mapstructure:"embedding_model"`
	EmbeddingEndpoint string `mapstructure:"embedding_endpoint"`

	MaxResults          int     `mapstructure:"max_results"`
	SimilarityThreshold float64 `mapstructure:"similarity_threshold"`

	IncludePatterns []string `mapstructure:"include_patterns"`
	ExcludePatterns []string `mapstructure:"exclude_patterns"`

	// Workers bounds the indexing pool; 0 means one worker per CPU.
	Workers int `mapstructure:"workers"`

	// IndexPath locates the persisted index document. Defaults to
	// .reviewrag/index.json under the workspace root.
	IndexPath string `mapstructure:"index_path"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Enabled:             true,
		IndexOnStartup:      false,
		ChunkSize:           1500,
		ChunkOverlap:        150,
		EmbeddingEndpoint:   "http://localhost:11434",
		MaxResults:          5,
		SimilarityThreshold: 0.15,
		IncludePatterns:     []string{"**/*"},
		ExcludePatterns: []string{
			"**/node_modules/**",
			"**/vendor/**",
			"**/dist/**",
			"**/*.min.js",
		},
	}
}

// Load reads configuration for the given workspace root. A missing config
// file is not an error; a malformed one is.
func Load(workspaceRoot string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("reviewrag")
	v.SetConfigType("yaml")
	v.AddConfigPath(workspaceRoot)

	v.SetEnvPrefix("REVIEWRAG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	normalize(cfg, workspaceRoot)
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	def := Default()
	v.SetDefault("enabled", def.Enabled)
	v.SetDefault("index_on_startup", def.IndexOnStartup)
	v.SetDefault("chunk_size", def.ChunkSize)
	v.SetDefault("chunk_overlap", def.ChunkOverlap)
	v.SetDefault("embedding_model", def.EmbeddingModel)
	v.SetDefault("embedding_endpoint", def.EmbeddingEndpoint)
	v.SetDefault("max_results", def.MaxResults)
	v.SetDefault("similarity_threshold", def.SimilarityThreshold)
	v.SetDefault("include_patterns", def.IncludePatterns)
	v.SetDefault("exclude_patterns", def.ExcludePatterns)
	v.SetDefault("workers", def.Workers)
	v.SetDefault("index_path", "")
}

// normalize clamps out-of-range values instead of rejecting them; a bad knob
// should degrade behavior, not block a review.
func normalize(cfg *Config, workspaceRoot string) {
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = Default().ChunkSize
	}
	if cfg.ChunkOverlap < 0 {
		cfg.ChunkOverlap = 0
	}
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = Default().MaxResults
	}
	if cfg.SimilarityThreshold < 0 {
		cfg.SimilarityThreshold = 0
	}
	if cfg.SimilarityThreshold > 1 {
		cfg.SimilarityThreshold = 1
	}
	if cfg.Workers < 0 {
		cfg.Workers = 0
	}
	if cfg.IndexPath == "" {
		cfg.IndexPath = filepath.Join(workspaceRoot, ".reviewrag", "index.json")
	}
}
