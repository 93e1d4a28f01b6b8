package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"time"

	"github.com/joho/godotenv"

	"github.com/docquery/docquery/config"
	"github.com/docquery/docquery/llm"
	"github.com/docquery/docquery/rag"
	"github.com/docquery/docquery/server"
	"github.com/docquery/docquery/vector"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	// .env is optional; real environments set variables directly.
	godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("[config] %v", err)
	}

	authToken, err := cfg.AuthToken()
	if err != nil {
		log.Fatalf("[config] %v", err)
	}

	embedder, err := buildEmbedder(cfg)
	if err != nil {
		log.Fatalf("[llm] %v", err)
	}

	generationKey, err := cfg.Generation.APIKey()
	if err != nil {
		log.Fatalf("[llm] %v", err)
	}
	generator, err := llm.NewGenerationClient(llm.ClientConfig{
		APIKey:     generationKey,
		BaseURL:    cfg.Generation.BaseURL,
		Model:      cfg.Generation.Model,
		Timeout:    time.Duration(cfg.Generation.TimeoutSecs) * time.Second,
		MaxRetries: cfg.Generation.MaxRetries,
	})
	if err != nil {
		log.Fatalf("[llm] %v", err)
	}
	log.Printf("[llm] generation model %s via %s", cfg.Generation.Model, cfg.Generation.BaseURL)

	if !cfg.SkipStartupProbe {
		verifyDimension(embedder, cfg.Embedding.Dimension)
	}

	srv, err := server.New(server.Config{
		AuthToken: authToken,
		Embedder:  embedder,
		Generator: generator,
		NewIndex:  buildIndexFactory(cfg),
		Session: rag.Options{
			ChunkSize:    cfg.Chunking.Size,
			ChunkOverlap: cfg.Chunking.Overlap,
			TopK:         cfg.Retrieval.TopK,
			MaxDistance:  cfg.Retrieval.MaxDistance,
		},
		Policy:         parsePolicy(cfg.AnswerPolicy),
		StoreDSN:       cfg.Store.DSN,
		RequestTimeout: time.Duration(cfg.RequestTimeoutSecs) * time.Second,
	})
	if err != nil {
		log.Fatalf("[server] %v", err)
	}
	defer srv.Close()

	log.Printf("[server] listening on %s", cfg.Addr)
	log.Fatal(http.ListenAndServe(cfg.Addr, srv.Handler()))
}

func buildEmbedder(cfg *config.AppConfig) (llm.Embedder, error) {
	key, err := cfg.Embedding.APIKey()
	if err != nil {
		return nil, err
	}
	return llm.NewEmbeddingClient(llm.ClientConfig{
		APIKey:     key,
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Timeout:    time.Duration(cfg.Embedding.TimeoutSecs) * time.Second,
		MaxRetries: cfg.Embedding.MaxRetries,
	}, cfg.Embedding.Dimension)
}

// verifyDimension probes the embedding endpoint once at startup. A dimension
// mismatch is a configuration error and must halt the process here, never
// surface per request.
func verifyDimension(embedder llm.Embedder, want int) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	vectors, err := embedder.EmbedBatch(ctx, []string{"dimension probe"})
	if err != nil {
		log.Fatalf("[llm] startup embedding probe failed: %v", err)
	}
	if got := len(vectors[0]); got != want {
		log.Fatalf("[llm] embedding dimension mismatch: model returns %d, config expects %d", got, want)
	}
	log.Printf("[llm] embedding dimension verified (%d)", want)
}

func buildIndexFactory(cfg *config.AppConfig) server.IndexFactory {
	dimension := cfg.Embedding.Dimension
	if cfg.Index.Backend == "pgvector" {
		dsn := cfg.Index.DSN
		log.Printf("[vector] per-request pgvector index")
		return func() (vector.Index, error) {
			return vector.NewPgIndex(dsn, dimension)
		}
	}
	log.Printf("[vector] per-request in-memory flat index (dimension %d)", dimension)
	return func() (vector.Index, error) {
		return vector.NewFlat(dimension)
	}
}

func parsePolicy(s string) rag.Policy {
	if s == "collect_partial" {
		return rag.CollectPartial
	}
	return rag.FailFast
}
