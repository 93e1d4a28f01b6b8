// Package config loads service configuration from YAML with env fallbacks.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ModelConfig configures one OpenAI-compatible API endpoint.
type ModelConfig struct {
	BaseURL     string `yaml:"base_url"`
	APIKeyEnv   string `yaml:"api_key_env"`
	Model       string `yaml:"model"`
	TimeoutSecs int    `yaml:"timeout_secs"`
	MaxRetries  int    `yaml:"max_retries"`
}

// EmbeddingConfig configures the embedding capability.
type EmbeddingConfig struct {
	ModelConfig `yaml:",inline"`
	Dimension   int `yaml:"dimension"`
}

// ChunkingConfig configures document splitting.
type ChunkingConfig struct {
	Size    int `yaml:"size"`
	Overlap int `yaml:"overlap"`
}

// RetrievalConfig configures per-question retrieval.
type RetrievalConfig struct {
	TopK int `yaml:"top_k"`

	// MaxDistance filters out chunks further than this squared L2 distance
	// from the question. Zero keeps every retrieved chunk.
	MaxDistance float32 `yaml:"max_distance"`
}

// IndexConfig selects the vector index backend.
type IndexConfig struct {
	Backend string `yaml:"backend"` // memory | pgvector
	DSN     string `yaml:"dsn"`
}

// StoreConfig configures run history persistence.
type StoreConfig struct {
	DSN string `yaml:"dsn"` // memory, postgres://... or a sqlite path
}

// AppConfig is the root configuration.
type AppConfig struct {
	Addr                string          `yaml:"addr"`
	AuthTokenEnv        string          `yaml:"auth_token_env"`
	RequestTimeoutSecs  int             `yaml:"request_timeout_secs"`
	AnswerPolicy        string          `yaml:"answer_policy"` // fail_fast | collect_partial
	Embedding           EmbeddingConfig `yaml:"embedding"`
	Generation          ModelConfig     `yaml:"generation"`
	Chunking            ChunkingConfig  `yaml:"chunking"`
	Retrieval           RetrievalConfig `yaml:"retrieval"`
	Index               IndexConfig     `yaml:"index"`
	Store               StoreConfig     `yaml:"store"`
	SkipStartupProbe    bool            `yaml:"skip_startup_probe"`
}

// Load reads the config from path. A missing file yields defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := Default()
			return cfg, nil
		}
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	applyDefaults(cfg)
	return cfg, nil
}

// AuthToken resolves the configured bearer token from the environment.
func (c *AppConfig) AuthToken() (string, error) {
	token := os.Getenv(c.AuthTokenEnv)
	if token == "" {
		return "", fmt.Errorf("auth token env %s not set", c.AuthTokenEnv)
	}
	return token, nil
}

// APIKey resolves a model's API key from the environment.
func (m ModelConfig) APIKey() (string, error) {
	key := os.Getenv(m.APIKeyEnv)
	if key == "" {
		return "", fmt.Errorf("API key env %s not set", m.APIKeyEnv)
	}
	return key, nil
}

// Default returns the built-in configuration: Groq-hosted generation, an
// OpenAI-compatible local embedding endpoint with 384-dim vectors, the
// original 1000/200 chunking and top-10 retrieval.
func Default() *AppConfig {
	cfg := &AppConfig{}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *AppConfig) {
	if cfg.Addr == "" {
		cfg.Addr = ":8000"
	}
	if cfg.AuthTokenEnv == "" {
		cfg.AuthTokenEnv = "HACKRX_AUTH_TOKEN"
	}
	if cfg.RequestTimeoutSecs == 0 {
		cfg.RequestTimeoutSecs = 120
	}
	if cfg.AnswerPolicy == "" {
		cfg.AnswerPolicy = "fail_fast"
	}

	if cfg.Embedding.APIKeyEnv == "" {
		cfg.Embedding.APIKeyEnv = "EMBEDDING_API_KEY"
	}
	if cfg.Embedding.Model == "" {
		cfg.Embedding.Model = "all-MiniLM-L6-v2"
	}
	if cfg.Embedding.Dimension == 0 {
		cfg.Embedding.Dimension = 384
	}
	if cfg.Embedding.TimeoutSecs == 0 {
		cfg.Embedding.TimeoutSecs = 60
	}
	if cfg.Embedding.MaxRetries == 0 {
		cfg.Embedding.MaxRetries = 3
	}

	if cfg.Generation.BaseURL == "" {
		cfg.Generation.BaseURL = "https://api.groq.com/openai/v1"
	}
	if cfg.Generation.APIKeyEnv == "" {
		cfg.Generation.APIKeyEnv = "GROQ_API_KEY"
	}
	if cfg.Generation.Model == "" {
		cfg.Generation.Model = "llama-3.3-70b-versatile"
	}
	if cfg.Generation.TimeoutSecs == 0 {
		cfg.Generation.TimeoutSecs = 60
	}
	if cfg.Generation.MaxRetries == 0 {
		cfg.Generation.MaxRetries = 3
	}

	if cfg.Chunking.Size == 0 {
		cfg.Chunking.Size = 1000
	}
	if cfg.Chunking.Overlap == 0 {
		cfg.Chunking.Overlap = 200
	}
	if cfg.Retrieval.TopK == 0 {
		cfg.Retrieval.TopK = 10
	}
	if cfg.Index.Backend == "" {
		cfg.Index.Backend = "memory"
	}
}
