package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, ":8000", cfg.Addr)
	assert.Equal(t, "HACKRX_AUTH_TOKEN", cfg.AuthTokenEnv)
	assert.Equal(t, 120, cfg.RequestTimeoutSecs)
	assert.Equal(t, "fail_fast", cfg.AnswerPolicy)
	assert.Equal(t, "all-MiniLM-L6-v2", cfg.Embedding.Model)
	assert.Equal(t, 384, cfg.Embedding.Dimension)
	assert.Equal(t, "llama-3.3-70b-versatile", cfg.Generation.Model)
	assert.Equal(t, "https://api.groq.com/openai/v1", cfg.Generation.BaseURL)
	assert.Equal(t, 1000, cfg.Chunking.Size)
	assert.Equal(t, 200, cfg.Chunking.Overlap)
	assert.Equal(t, 10, cfg.Retrieval.TopK)
	assert.Equal(t, "memory", cfg.Index.Backend)
}

func TestLoadYAMLOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
addr: ":9090"
answer_policy: collect_partial
embedding:
  model: custom-embedder
  dimension: 768
chunking:
  size: 500
  overlap: 50
retrieval:
  top_k: 4
  max_distance: 1.5
index:
  backend: pgvector
  dsn: postgres://localhost/docquery
`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, "collect_partial", cfg.AnswerPolicy)
	assert.Equal(t, "custom-embedder", cfg.Embedding.Model)
	assert.Equal(t, 768, cfg.Embedding.Dimension)
	assert.Equal(t, 500, cfg.Chunking.Size)
	assert.Equal(t, 50, cfg.Chunking.Overlap)
	assert.Equal(t, 4, cfg.Retrieval.TopK)
	assert.InDelta(t, 1.5, cfg.Retrieval.MaxDistance, 1e-6)
	assert.Equal(t, "pgvector", cfg.Index.Backend)
	assert.Equal(t, "postgres://localhost/docquery", cfg.Index.DSN)

	// Untouched fields keep their defaults.
	assert.Equal(t, "HACKRX_AUTH_TOKEN", cfg.AuthTokenEnv)
	assert.Equal(t, "GROQ_API_KEY", cfg.Generation.APIKeyEnv)
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("addr: [unclosed"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestAuthToken(t *testing.T) {
	cfg := Default()
	cfg.AuthTokenEnv = "TEST_DOCQUERY_TOKEN"

	_, err := cfg.AuthToken()
	assert.Error(t, err)

	t.Setenv("TEST_DOCQUERY_TOKEN", "secret")
	token, err := cfg.AuthToken()
	require.NoError(t, err)
	assert.Equal(t, "secret", token)
}

func TestModelAPIKey(t *testing.T) {
	m := ModelConfig{APIKeyEnv: "TEST_DOCQUERY_API_KEY"}

	_, err := m.APIKey()
	assert.Error(t, err)

	t.Setenv("TEST_DOCQUERY_API_KEY", "sk-test")
	key, err := m.APIKey()
	require.NoError(t, err)
	assert.Equal(t, "sk-test", key)
}
