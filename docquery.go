// Package docquery answers natural-language questions against a single
// document: it extracts the document's text, splits it into overlapping
// chunks, embeds them into a vector index and answers each question from the
// most relevant chunks.
//
// Example usage:
//
//	embedder, _ := llm.NewEmbeddingClient(embedCfg, 384)
//	generator, _ := llm.NewGenerationClient(genCfg)
//
//	index, _ := vector.NewFlat(embedder.Dimension())
//	session := rag.NewSession(index, embedder, rag.DefaultOptions())
//	if err := session.Ingest(ctx, documentText); err != nil { ... }
//
//	answerer := rag.NewAnswerer(generator, rag.FailFast, nil)
//	answers, err := answerer.Answer(ctx, session, questions)
package docquery

import (
	"github.com/docquery/docquery/llm"
	"github.com/docquery/docquery/rag"
	"github.com/docquery/docquery/server"
	"github.com/docquery/docquery/vector"
)

// Aliases for the construction surface.
type (
	ServerConfig = server.Config
	ClientConfig = llm.ClientConfig
	Options      = rag.Options
	Policy       = rag.Policy
)

const (
	FailFast       = rag.FailFast
	CollectPartial = rag.CollectPartial
)

// NewServer creates the HTTP service.
func NewServer(cfg ServerConfig) (*server.Server, error) {
	return server.New(cfg)
}

// NewSession creates a single-document retrieval session.
func NewSession(index vector.Index, embedder llm.Embedder, opts Options) *rag.Session {
	return rag.NewSession(index, embedder, opts)
}

// NewAnswerer creates the per-question fan-out orchestrator.
func NewAnswerer(generator llm.Generator, policy Policy) *rag.Answerer {
	return rag.NewAnswerer(generator, policy, nil)
}

// NewFlatIndex creates the exact in-memory vector index.
func NewFlatIndex(dimension int) (*vector.Flat, error) {
	return vector.NewFlat(dimension)
}
