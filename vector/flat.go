package vector

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/docquery/docquery/core"
)

// Flat is an exact brute-force L2 index. Entries live in parallel slices so
// the slice position is the entry id. Search is O(N*D); fine for corpora up
// to a few thousand chunks, anything bigger wants a different Index.
type Flat struct {
	mu        sync.RWMutex
	dimension int
	entries   []entry
}

type entry struct {
	embedding []float32
	text      string
	metadata  map[string]any
}

// NewFlat creates an empty index with a fixed dimension.
func NewFlat(dimension int) (*Flat, error) {
	if dimension <= 0 {
		return nil, fmt.Errorf("dimension must be positive, got %d", dimension)
	}
	return &Flat{dimension: dimension}, nil
}

func (f *Flat) Add(ctx context.Context, embeddings [][]float32, texts []string, metadatas []map[string]any) error {
	if len(embeddings) != len(texts) {
		return fmt.Errorf("%w: %d embeddings, %d texts", core.ErrLengthMismatch, len(embeddings), len(texts))
	}
	if metadatas != nil && len(metadatas) != len(texts) {
		return fmt.Errorf("%w: %d metadatas, %d texts", core.ErrLengthMismatch, len(metadatas), len(texts))
	}
	for i, emb := range embeddings {
		if len(emb) != f.dimension {
			return fmt.Errorf("%w: entry %d has dimension %d, index has %d", core.ErrDimensionMismatch, i, len(emb), f.dimension)
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range embeddings {
		md := map[string]any{}
		if metadatas != nil && metadatas[i] != nil {
			md = metadatas[i]
		}
		f.entries = append(f.entries, entry{embedding: embeddings[i], text: texts[i], metadata: md})
	}
	return nil
}

func (f *Flat) Search(ctx context.Context, query []float32, k int) ([]Result, error) {
	if len(query) != f.dimension {
		return nil, fmt.Errorf("%w: query has dimension %d, index has %d", core.ErrDimensionMismatch, len(query), f.dimension)
	}

	f.mu.RLock()
	defer f.mu.RUnlock()
	if len(f.entries) == 0 || k <= 0 {
		return []Result{}, nil
	}

	results := make([]Result, len(f.entries))
	for i, e := range f.entries {
		results[i] = Result{
			Text:     e.text,
			Metadata: e.metadata,
			Distance: SquaredL2(query, e.embedding),
		}
	}

	// Stable sort over insertion order pins the tie-break: among equal
	// distances, the first-inserted entry ranks first.
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Distance < results[j].Distance
	})

	if k < len(results) {
		results = results[:k]
	}
	return results, nil
}

func (f *Flat) Reset(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = nil
	return nil
}

func (f *Flat) Count() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.entries)
}

func (f *Flat) Dimension() int {
	return f.dimension
}

// Close is a no-op for the in-memory index.
func (f *Flat) Close() error {
	return nil
}

var _ Index = (*Flat)(nil)
