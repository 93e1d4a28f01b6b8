package chunker

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docquery/docquery/core"
)

func TestSplitWindowsAndOverlap(t *testing.T) {
	text := strings.Repeat("abcdefghij", 10) // 100 runes
	chunks, err := Split(text, 30, 10)
	require.NoError(t, err)
	require.NotEmpty(t, chunks)

	for _, c := range chunks {
		assert.LessOrEqual(t, len([]rune(c)), 30)
	}

	// Consecutive chunks share exactly the overlap.
	for i := 1; i < len(chunks); i++ {
		prev := []rune(chunks[i-1])
		cur := []rune(chunks[i])
		overlap := 10
		if len(cur) < overlap {
			overlap = len(cur)
		}
		assert.Equal(t, string(prev[len(prev)-overlap:]), string(cur[:overlap]))
	}
}

func TestSplitReconstructsText(t *testing.T) {
	text := "The grace period for premium payment is thirty days from the due date. " +
		"Coverage continues during the grace period."
	chunks, err := Split(text, 40, 15)
	require.NoError(t, err)

	// Concatenating the non-overlapping increments rebuilds the input.
	var sb strings.Builder
	sb.WriteString(chunks[0])
	for _, c := range chunks[1:] {
		runes := []rune(c)
		if len(runes) > 15 {
			sb.WriteString(string(runes[15:]))
		}
	}
	assert.Equal(t, text, sb.String())
}

func TestSplitShortText(t *testing.T) {
	chunks, err := Split("short", 1000, 200)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "short", chunks[0])
}

func TestSplitDeterministic(t *testing.T) {
	text := strings.Repeat("determinism ", 50)
	a, err := Split(text, 100, 25)
	require.NoError(t, err)
	b, err := Split(text, 100, 25)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestSplitMultibyteRunes(t *testing.T) {
	text := strings.Repeat("日本語テキスト", 20)
	chunks, err := Split(text, 25, 5)
	require.NoError(t, err)
	for _, c := range chunks {
		assert.LessOrEqual(t, len([]rune(c)), 25)
		assert.True(t, strings.HasPrefix(c, "日") || strings.Contains(text, c))
	}
}

func TestSplitEmptyInput(t *testing.T) {
	for _, text := range []string{"", "   ", "\n\t  \n"} {
		_, err := Split(text, 100, 10)
		assert.True(t, errors.Is(err, core.ErrEmptyInput), "input %q", text)
	}
}

func TestSplitInvalidParams(t *testing.T) {
	_, err := Split("text", 0, 0)
	assert.Error(t, err)

	_, err = Split("text", 10, 10)
	assert.Error(t, err)

	_, err = Split("text", 10, -1)
	assert.Error(t, err)
}
