// Package llm wraps the embedding and answer-generation model APIs.
package llm

import (
	"context"
	"time"
)

// Embedder turns text into fixed-dimension vectors. Vectors are expected to
// come back L2-normalized from the model.
type Embedder interface {
	// EmbedBatch embeds all texts in a single API call, preserving order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimension returns the vector dimension this embedder is configured for.
	Dimension() int
}

// Generator produces an answer to a question grounded in ordered context
// passages.
type Generator interface {
	Generate(ctx context.Context, question string, contexts []string) (string, error)
}

// ClientConfig configures an OpenAI-compatible API client. Groq and other
// compatible providers are reached by overriding BaseURL.
type ClientConfig struct {
	APIKey     string
	BaseURL    string
	Model      string
	Timeout    time.Duration
	MaxRetries int
}

// DefaultClientConfig returns conservative defaults; API key and model must
// still be supplied.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		Timeout:    60 * time.Second,
		MaxRetries: 3,
	}
}
