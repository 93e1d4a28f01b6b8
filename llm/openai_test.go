package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(baseURL string) ClientConfig {
	cfg := DefaultClientConfig()
	cfg.APIKey = "test-key"
	cfg.BaseURL = baseURL + "/v1"
	cfg.Model = "test-model"
	cfg.MaxRetries = 0
	return cfg
}

func TestEmbedBatchPreservesOrder(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/embeddings", r.URL.Path)
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req struct {
			Input []string `json:"input"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Input, 2)

		// Answer out of order; the client must restore input order.
		json.NewEncoder(w).Encode(map[string]any{
			"object": "list",
			"model":  "test-model",
			"data": []map[string]any{
				{"object": "embedding", "index": 1, "embedding": []float32{0, 1, 0}},
				{"object": "embedding", "index": 0, "embedding": []float32{1, 0, 0}},
			},
		})
	}))
	defer ts.Close()

	client, err := NewEmbeddingClient(testConfig(ts.URL), 3)
	require.NoError(t, err)

	embeddings, err := client.EmbedBatch(context.Background(), []string{"first", "second"})
	require.NoError(t, err)
	require.Len(t, embeddings, 2)
	assert.Equal(t, []float32{1, 0, 0}, embeddings[0])
	assert.Equal(t, []float32{0, 1, 0}, embeddings[1])
	assert.Equal(t, 3, client.Dimension())
}

func TestEmbedBatchEmptyInput(t *testing.T) {
	client, err := NewEmbeddingClient(testConfig("http://unused.invalid"), 3)
	require.NoError(t, err)

	embeddings, err := client.EmbedBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, embeddings)
}

func TestEmbedBatchRetriesServerErrors(t *testing.T) {
	var attempts atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(map[string]any{
				"error": map[string]any{"message": "overloaded", "type": "server_error"},
			})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"object": "list",
			"data": []map[string]any{
				{"object": "embedding", "index": 0, "embedding": []float32{1, 0}},
			},
		})
	}))
	defer ts.Close()

	cfg := testConfig(ts.URL)
	cfg.MaxRetries = 2
	client, err := NewEmbeddingClient(cfg, 2)
	require.NoError(t, err)

	embeddings, err := client.EmbedBatch(context.Background(), []string{"text"})
	require.NoError(t, err)
	require.Len(t, embeddings, 1)
	assert.Equal(t, int32(2), attempts.Load())
}

func TestGenerateGroundsOnContexts(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/chat/completions", r.URL.Path)

		var req struct {
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0].Role)
		assert.Contains(t, req.Messages[1].Content, "What is the grace period?")
		assert.Contains(t, req.Messages[1].Content, "thirty days")

		json.NewEncoder(w).Encode(map[string]any{
			"id":     "chatcmpl-1",
			"object": "chat.completion",
			"choices": []map[string]any{
				{
					"index":         0,
					"finish_reason": "stop",
					"message": map[string]any{
						"role":    "assistant",
						"content": "The grace period is thirty days.",
					},
				},
			},
		})
	}))
	defer ts.Close()

	client, err := NewGenerationClient(testConfig(ts.URL))
	require.NoError(t, err)

	answer, err := client.Generate(context.Background(), "What is the grace period?",
		[]string{"A grace period of thirty days is provided."})
	require.NoError(t, err)
	assert.Equal(t, "The grace period is thirty days.", answer)
}

func TestClientValidation(t *testing.T) {
	_, err := NewEmbeddingClient(ClientConfig{Model: "m"}, 3)
	assert.Error(t, err)

	_, err = NewEmbeddingClient(ClientConfig{APIKey: "k"}, 3)
	assert.Error(t, err)

	_, err = NewEmbeddingClient(ClientConfig{APIKey: "k", Model: "m"}, 0)
	assert.Error(t, err)

	_, err = NewGenerationClient(ClientConfig{APIKey: "k"})
	assert.Error(t, err)
}
