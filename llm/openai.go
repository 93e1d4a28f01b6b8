package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// EmbeddingClient calls an OpenAI-compatible embeddings endpoint.
type EmbeddingClient struct {
	client     *openai.Client
	model      string
	dimension  int
	maxRetries int
}

// NewEmbeddingClient creates an embedder for the given model and expected
// vector dimension.
func NewEmbeddingClient(cfg ClientConfig, dimension int) (*EmbeddingClient, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("embedding API key not set")
	}
	if cfg.Model == "" {
		return nil, errors.New("embedding model not set")
	}
	if dimension <= 0 {
		return nil, fmt.Errorf("dimension must be positive, got %d", dimension)
	}

	return &EmbeddingClient{
		client:     newAPIClient(cfg),
		model:      cfg.Model,
		dimension:  dimension,
		maxRetries: cfg.MaxRetries,
	}, nil
}

// EmbedBatch embeds all texts in one API call, preserving input order.
func (c *EmbeddingClient) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	var resp openai.EmbeddingResponse
	err := withRetry(ctx, c.maxRetries, func() error {
		var callErr error
		resp, callErr = c.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
			Model: openai.EmbeddingModel(c.model),
			Input: texts,
		})
		return callErr
	})
	if err != nil {
		return nil, fmt.Errorf("create embeddings: %w", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(texts), len(resp.Data))
	}

	// The API may return entries out of order; Index restores input order.
	embeddings := make([][]float32, len(texts))
	for _, d := range resp.Data {
		if d.Index < 0 || d.Index >= len(embeddings) {
			return nil, fmt.Errorf("embedding index %d out of range", d.Index)
		}
		embeddings[d.Index] = d.Embedding
	}
	return embeddings, nil
}

func (c *EmbeddingClient) Dimension() int {
	return c.dimension
}

var _ Embedder = (*EmbeddingClient)(nil)

const answerSystemPrompt = `You are an assistant that answers questions about a document. ` +
	`Answer using only the provided document excerpts. Be concise and factual. ` +
	`If the excerpts do not contain the answer, say that the document does not specify it.`

// GenerationClient calls an OpenAI-compatible chat completions endpoint to
// produce grounded answers.
type GenerationClient struct {
	client     *openai.Client
	model      string
	maxRetries int
}

// NewGenerationClient creates a generator for the given chat model.
func NewGenerationClient(cfg ClientConfig) (*GenerationClient, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("generation API key not set")
	}
	if cfg.Model == "" {
		return nil, errors.New("generation model not set")
	}

	return &GenerationClient{
		client:     newAPIClient(cfg),
		model:      cfg.Model,
		maxRetries: cfg.MaxRetries,
	}, nil
}

// Generate asks the model to answer question from the ordered contexts.
func (c *GenerationClient) Generate(ctx context.Context, question string, contexts []string) (string, error) {
	var resp openai.ChatCompletionResponse
	err := withRetry(ctx, c.maxRetries, func() error {
		var callErr error
		resp, callErr = c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model:       c.model,
			Temperature: 0.1,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleSystem, Content: answerSystemPrompt},
				{Role: openai.ChatMessageRoleUser, Content: buildAnswerPrompt(question, contexts)},
			},
		})
		return callErr
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("chat completion returned no choices")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

var _ Generator = (*GenerationClient)(nil)

func buildAnswerPrompt(question string, contexts []string) string {
	var sb strings.Builder
	sb.WriteString("Document excerpts:\n\n")
	for i, c := range contexts {
		fmt.Fprintf(&sb, "[%d] %s\n\n", i+1, c)
	}
	sb.WriteString("Question: ")
	sb.WriteString(question)
	return sb.String()
}

func newAPIClient(cfg ClientConfig) *openai.Client {
	apiCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		apiCfg.BaseURL = cfg.BaseURL
	}
	if cfg.Timeout > 0 {
		apiCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}
	return openai.NewClientWithConfig(apiCfg)
}
