// Package server exposes the document question-answering service over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/docquery/docquery/extract"
	"github.com/docquery/docquery/llm"
	"github.com/docquery/docquery/rag"
	"github.com/docquery/docquery/server/store"
	"github.com/docquery/docquery/vector"
)

// IndexFactory builds a fresh vector index for one request's session.
type IndexFactory func() (vector.Index, error)

// TextExtractor resolves a document URL to its raw text.
type TextExtractor interface {
	Text(ctx context.Context, url string) (string, error)
}

// Config configures a new Server.
type Config struct {
	AuthToken string

	Embedder  llm.Embedder
	Generator llm.Generator
	Extractor TextExtractor

	// NewIndex builds the per-request index. Defaults to an in-memory Flat
	// index with the embedder's dimension.
	NewIndex IndexFactory

	Session rag.Options
	Policy  rag.Policy

	// RunStore overrides the store built from StoreDSN. Mostly for tests.
	RunStore store.RunStore
	StoreDSN string

	// RequestTimeout bounds one whole run (default 120s).
	RequestTimeout time.Duration
}

// Server handles the run, health and run-history endpoints.
type Server struct {
	authToken      string
	embedder       llm.Embedder
	generator      llm.Generator
	extractor      TextExtractor
	newIndex       IndexFactory
	sessionOpts    rag.Options
	policy         rag.Policy
	runs           store.RunStore
	requestTimeout time.Duration
}

// New creates a Server from the configuration.
func New(cfg Config) (*Server, error) {
	if cfg.AuthToken == "" {
		return nil, errors.New("auth token not configured")
	}
	if cfg.Embedder == nil {
		return nil, errors.New("embedder not configured")
	}
	if cfg.Generator == nil {
		return nil, errors.New("generator not configured")
	}

	extractor := cfg.Extractor
	if extractor == nil {
		extractor = extract.NewService(30 * time.Second)
	}

	newIndex := cfg.NewIndex
	if newIndex == nil {
		dimension := cfg.Embedder.Dimension()
		newIndex = func() (vector.Index, error) {
			return vector.NewFlat(dimension)
		}
	}

	sessionOpts := cfg.Session
	if sessionOpts.ChunkSize <= 0 {
		sessionOpts = rag.DefaultOptions()
	}

	runs := cfg.RunStore
	if runs == nil {
		var err error
		runs, err = store.NewRunStore(cfg.StoreDSN)
		if err != nil {
			return nil, fmt.Errorf("initialize run store: %w", err)
		}
		log.Printf("[store] Initialized run history storage")
	}

	requestTimeout := cfg.RequestTimeout
	if requestTimeout <= 0 {
		requestTimeout = 120 * time.Second
	}

	return &Server{
		authToken:      cfg.AuthToken,
		embedder:       cfg.Embedder,
		generator:      cfg.Generator,
		extractor:      extractor,
		newIndex:       newIndex,
		sessionOpts:    sessionOpts,
		policy:         cfg.Policy,
		runs:           runs,
		requestTimeout: requestTimeout,
	}, nil
}

// Close releases server resources.
func (s *Server) Close() error {
	return s.runs.Close()
}

// Handler returns an http.Handler for the API routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/v1/health", s.handleHealth)
	mux.HandleFunc("POST /api/v1/hackrx/run", requireAuth(s.authToken, s.handleRun))

	mux.HandleFunc("GET /api/v1/runs", s.handleRunList)
	mux.HandleFunc("GET /api/v1/runs/{id}", s.handleRunGet)
	mux.HandleFunc("DELETE /api/v1/runs/{id}", s.handleRunDelete)
	mux.HandleFunc("GET /api/v1/metrics/summary", s.handleMetricsSummary)

	return corsMiddleware(mux)
}
