package vector

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docquery/docquery/core"
)

func mustFlat(t *testing.T, dimension int) *Flat {
	t.Helper()
	idx, err := NewFlat(dimension)
	require.NoError(t, err)
	return idx
}

func TestFlatSearchIdentity(t *testing.T) {
	ctx := context.Background()
	idx := mustFlat(t, 3)

	embeddings := [][]float32{
		{1, 0, 0},
		{0, 1, 0},
		{0, 0, 1},
	}
	texts := []string{"alpha", "beta", "gamma"}
	require.NoError(t, idx.Add(ctx, embeddings, texts, nil))

	for i, emb := range embeddings {
		results, err := idx.Search(ctx, emb, 1)
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, texts[i], results[0].Text)
		assert.InDelta(t, 0.0, results[0].Distance, 1e-6)
	}
}

func TestFlatSearchOrdering(t *testing.T) {
	ctx := context.Background()
	idx := mustFlat(t, 2)

	require.NoError(t, idx.Add(ctx, [][]float32{
		{3, 0},
		{1, 0},
		{2, 0},
	}, []string{"far", "near", "mid"}, nil))

	results, err := idx.Search(ctx, []float32{0, 0}, 3)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, []string{"near", "mid", "far"}, []string{results[0].Text, results[1].Text, results[2].Text})
	assert.LessOrEqual(t, results[0].Distance, results[1].Distance)
	assert.LessOrEqual(t, results[1].Distance, results[2].Distance)
}

func TestFlatTieBreakByInsertionOrder(t *testing.T) {
	ctx := context.Background()
	idx := mustFlat(t, 2)

	// All four entries are equidistant from the origin.
	require.NoError(t, idx.Add(ctx, [][]float32{
		{1, 0},
		{0, 1},
		{-1, 0},
		{0, -1},
	}, []string{"first", "second", "third", "fourth"}, nil))

	results, err := idx.Search(ctx, []float32{0, 0}, 4)
	require.NoError(t, err)
	require.Len(t, results, 4)
	assert.Equal(t, "first", results[0].Text)
	assert.Equal(t, "second", results[1].Text)
	assert.Equal(t, "third", results[2].Text)
	assert.Equal(t, "fourth", results[3].Text)
}

func TestFlatKLargerThanCount(t *testing.T) {
	ctx := context.Background()
	idx := mustFlat(t, 2)

	require.NoError(t, idx.Add(ctx, [][]float32{{1, 0}, {0, 1}}, []string{"a", "b"}, nil))

	results, err := idx.Search(ctx, []float32{0, 0}, 10)
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestFlatEmptyIndexSearch(t *testing.T) {
	ctx := context.Background()
	idx := mustFlat(t, 2)

	results, err := idx.Search(ctx, []float32{1, 2}, 5)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestFlatReset(t *testing.T) {
	ctx := context.Background()
	idx := mustFlat(t, 2)

	require.NoError(t, idx.Add(ctx, [][]float32{{1, 0}}, []string{"a"}, nil))
	require.Equal(t, 1, idx.Count())

	require.NoError(t, idx.Reset(ctx))
	assert.Equal(t, 0, idx.Count())

	results, err := idx.Search(ctx, []float32{1, 0}, 5)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestFlatMetadataDefaults(t *testing.T) {
	ctx := context.Background()
	idx := mustFlat(t, 1)

	require.NoError(t, idx.Add(ctx, [][]float32{{1}, {2}}, []string{"a", "b"},
		[]map[string]any{{"page": 1}, nil}))

	results, err := idx.Search(ctx, []float32{1}, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, map[string]any{"page": 1}, results[0].Metadata)
	assert.Equal(t, map[string]any{}, results[1].Metadata)
}

func TestFlatValidation(t *testing.T) {
	ctx := context.Background()

	_, err := NewFlat(0)
	assert.Error(t, err)

	idx := mustFlat(t, 2)

	err = idx.Add(ctx, [][]float32{{1, 0}}, []string{"a", "b"}, nil)
	assert.True(t, errors.Is(err, core.ErrLengthMismatch))

	err = idx.Add(ctx, [][]float32{{1, 0}}, []string{"a"}, []map[string]any{{}, {}})
	assert.True(t, errors.Is(err, core.ErrLengthMismatch))

	err = idx.Add(ctx, [][]float32{{1, 0, 0}}, []string{"a"}, nil)
	assert.True(t, errors.Is(err, core.ErrDimensionMismatch))

	_, err = idx.Search(ctx, []float32{1}, 1)
	assert.True(t, errors.Is(err, core.ErrDimensionMismatch))
}

func TestFlatDimensionFixed(t *testing.T) {
	idx := mustFlat(t, 384)
	assert.Equal(t, 384, idx.Dimension())
	require.NoError(t, idx.Reset(context.Background()))
	assert.Equal(t, 384, idx.Dimension())
}
