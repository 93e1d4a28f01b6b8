// Package rag orchestrates the ingest-then-answer lifecycle for a single
// document run.
package rag

import (
	"context"
	"fmt"
	"log"

	"github.com/docquery/docquery/chunker"
	"github.com/docquery/docquery/core"
	"github.com/docquery/docquery/llm"
	"github.com/docquery/docquery/vector"
)

// Options tune chunking and retrieval for a session.
type Options struct {
	ChunkSize    int
	ChunkOverlap int
	TopK         int

	// MaxDistance drops retrieved chunks whose squared L2 distance exceeds
	// it, so questions with no relevant content fall back instead of being
	// answered from noise. Zero disables the filter.
	MaxDistance float32
}

// DefaultOptions mirrors the service defaults: 1000-rune chunks with 200-rune
// overlap, 10 contexts per question.
func DefaultOptions() Options {
	return Options{ChunkSize: 1000, ChunkOverlap: 200, TopK: 10}
}

// Session owns the retrieval state of one document run. Each request gets its
// own Session with its own index, so concurrent runs cannot interleave
// reset/add calls and corrupt each other's corpus.
type Session struct {
	index    vector.Index
	embedder llm.Embedder
	opts     Options
}

// NewSession binds an index and an embedder into a fresh session.
func NewSession(index vector.Index, embedder llm.Embedder, opts Options) *Session {
	if opts.ChunkSize <= 0 {
		opts = DefaultOptions()
	}
	return &Session{index: index, embedder: embedder, opts: opts}
}

// Ingest resets the index, chunks the document, embeds every chunk in one
// batched call and populates the index. It is a strict barrier: once it
// returns nil the index is fully populated and ready for Retrieve.
func (s *Session) Ingest(ctx context.Context, text string) error {
	if err := s.index.Reset(ctx); err != nil {
		return core.NewIngestError("index", err)
	}

	chunks, err := chunker.Split(text, s.opts.ChunkSize, s.opts.ChunkOverlap)
	if err != nil {
		return core.NewIngestError("chunk", err)
	}
	log.Printf("[ingest] split document into %d chunks", len(chunks))

	embeddings, err := s.embedder.EmbedBatch(ctx, chunks)
	if err != nil {
		return core.NewIngestError("embed", err)
	}

	metadatas := make([]map[string]any, len(chunks))
	offset := 0
	for i, c := range chunks {
		metadatas[i] = map[string]any{"chunk": i, "offset": offset}
		offset += len([]rune(c)) - s.opts.ChunkOverlap
	}

	if err := s.index.Add(ctx, embeddings, chunks, metadatas); err != nil {
		return core.NewIngestError("index", err)
	}
	log.Printf("[ingest] indexed %d chunks (dimension %d)", s.index.Count(), s.index.Dimension())
	return nil
}

// Retrieve embeds the question and returns the text of the k nearest chunks,
// nearest first. An empty index yields empty contexts, not an error; the
// caller decides the fallback.
func (s *Session) Retrieve(ctx context.Context, question string, k int) ([]string, error) {
	if k <= 0 {
		k = s.opts.TopK
	}

	embeddings, err := s.embedder.EmbedBatch(ctx, []string{question})
	if err != nil {
		return nil, fmt.Errorf("embed question: %w", err)
	}

	if s.index.Count() == 0 {
		return []string{}, nil
	}

	results, err := s.index.Search(ctx, embeddings[0], k)
	if err != nil {
		return nil, fmt.Errorf("search index: %w", err)
	}

	contexts := make([]string, 0, len(results))
	for _, r := range results {
		if s.opts.MaxDistance > 0 && r.Distance > s.opts.MaxDistance {
			continue
		}
		contexts = append(contexts, r.Text)
	}
	return contexts, nil
}

// TopK returns the session's default retrieval width.
func (s *Session) TopK() int {
	return s.opts.TopK
}

// Close releases the session's index.
func (s *Session) Close() error {
	return s.index.Close()
}
