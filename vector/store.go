// Package vector provides nearest-neighbor storage and search over
// fixed-dimension embeddings.
package vector

import "context"

// Result is a single search hit.
type Result struct {
	Text     string         `json:"text"`
	Metadata map[string]any `json:"metadata"`
	Distance float32        `json:"distance"` // squared L2, non-negative
}

// Index stores (embedding, text, metadata) entries and answers k-NN queries.
// Implementations assign dense sequential ids in insertion order and break
// distance ties by that order.
type Index interface {
	// Add appends entries. len(embeddings) must equal len(texts); metadatas
	// may be nil, in which case each entry gets an empty map.
	Add(ctx context.Context, embeddings [][]float32, texts []string, metadatas []map[string]any) error

	// Search returns up to k results ordered by non-decreasing distance to
	// query. An empty index yields an empty result, not an error.
	Search(ctx context.Context, query []float32, k int) ([]Result, error)

	// Reset removes all entries.
	Reset(ctx context.Context) error

	// Count returns the number of stored entries.
	Count() int

	// Dimension returns the fixed embedding dimension.
	Dimension() int

	// Close releases resources.
	Close() error
}
