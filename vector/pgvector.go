package vector

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// PgIndex is a pgvector-backed Index. Every instance owns a private scope id,
// so two sessions sharing the same database never see each other's entries.
// Distances use the L2 operator `<->`; the squared value is reported to match
// Flat. Ties resolve by the ord column, which records insertion order.
type PgIndex struct {
	db        *sql.DB
	scope     string
	dimension int

	mu    sync.Mutex
	count int
}

// NewPgIndex connects to Postgres, ensures the chunks table exists and
// returns an empty scoped index.
func NewPgIndex(dsn string, dimension int) (*PgIndex, error) {
	if dimension <= 0 {
		return nil, fmt.Errorf("dimension must be positive, got %d", dimension)
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	idx := &PgIndex{db: db, scope: uuid.NewString(), dimension: dimension}
	if err := idx.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return idx, nil
}

func (p *PgIndex) migrate() error {
	migrations := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS chunks (
			scope TEXT NOT NULL,
			ord INTEGER NOT NULL,
			content TEXT NOT NULL,
			embedding vector(%d),
			metadata JSONB DEFAULT '{}',
			PRIMARY KEY (scope, ord)
		)`, p.dimension),
	}

	for _, m := range migrations {
		if _, err := p.db.Exec(m); err != nil {
			return fmt.Errorf("execute migration: %w", err)
		}
	}
	return nil
}

func (p *PgIndex) Add(ctx context.Context, embeddings [][]float32, texts []string, metadatas []map[string]any) error {
	if len(embeddings) != len(texts) {
		return fmt.Errorf("embeddings and texts length mismatch: %d vs %d", len(embeddings), len(texts))
	}
	if metadatas != nil && len(metadatas) != len(texts) {
		return fmt.Errorf("metadatas and texts length mismatch: %d vs %d", len(metadatas), len(texts))
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	for i := range embeddings {
		var md map[string]any
		if metadatas != nil {
			md = metadatas[i]
		}
		if md == nil {
			md = map[string]any{}
		}
		metadata, err := json.Marshal(md)
		if err != nil {
			return fmt.Errorf("marshal metadata: %w", err)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO chunks (scope, ord, content, embedding, metadata)
			VALUES ($1, $2, $3, $4, $5)
		`, p.scope, p.count+i, texts[i], formatEmbedding(embeddings[i]), metadata)
		if err != nil {
			return fmt.Errorf("insert chunk: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	p.count += len(embeddings)
	return nil
}

func (p *PgIndex) Search(ctx context.Context, query []float32, k int) ([]Result, error) {
	if k <= 0 {
		return []Result{}, nil
	}

	rows, err := p.db.QueryContext(ctx, `
		SELECT content, metadata, embedding <-> $2 AS distance
		FROM chunks
		WHERE scope = $1
		ORDER BY embedding <-> $2, ord
		LIMIT $3
	`, p.scope, formatEmbedding(query), k)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	results := []Result{}
	for rows.Next() {
		var r Result
		var metadataBytes []byte
		var distance float64

		if err := rows.Scan(&r.Text, &metadataBytes, &distance); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		r.Metadata = map[string]any{}
		if len(metadataBytes) > 0 {
			json.Unmarshal(metadataBytes, &r.Metadata)
		}
		r.Distance = float32(distance * distance)
		results = append(results, r)
	}
	return results, rows.Err()
}

func (p *PgIndex) Reset(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, err := p.db.ExecContext(ctx, `DELETE FROM chunks WHERE scope = $1`, p.scope); err != nil {
		return fmt.Errorf("reset scope: %w", err)
	}
	p.count = 0
	return nil
}

func (p *PgIndex) Count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.count
}

func (p *PgIndex) Dimension() int {
	return p.dimension
}

// Close drops the scope's rows and releases the connection.
func (p *PgIndex) Close() error {
	_, err := p.db.Exec(`DELETE FROM chunks WHERE scope = $1`, p.scope)
	if cerr := p.db.Close(); err == nil {
		err = cerr
	}
	return err
}

var _ Index = (*PgIndex)(nil)

// formatEmbedding converts a vector to pgvector text format: "[0.1,0.2,0.3]"
func formatEmbedding(embedding []float32) string {
	parts := make([]string, len(embedding))
	for i, v := range embedding {
		parts[i] = fmt.Sprintf("%g", v)
	}
	return "[" + strings.Join(parts, ",") + "]"
}
