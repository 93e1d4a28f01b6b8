// Package chunker splits raw document text into overlapping fixed-size windows.
package chunker

import (
	"fmt"
	"strings"

	"github.com/docquery/docquery/core"
)

// Split cuts text into windows of at most chunkSize runes, where consecutive
// windows share overlap runes. The final window may be shorter. Windows are
// counted in runes so multi-byte text never splits inside a code point.
//
// Returns core.ErrEmptyInput if text is empty or whitespace-only, and
// core.ErrNoChunks if splitting yields nothing from non-empty input.
func Split(text string, chunkSize, overlap int) ([]string, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", chunkSize)
	}
	if overlap < 0 || overlap >= chunkSize {
		return nil, fmt.Errorf("overlap must satisfy 0 <= overlap < chunk size, got %d", overlap)
	}
	if strings.TrimSpace(text) == "" {
		return nil, core.ErrEmptyInput
	}

	runes := []rune(text)
	step := chunkSize - overlap

	var chunks []string
	for start := 0; start < len(runes); start += step {
		end := start + chunkSize
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
		if end == len(runes) {
			break
		}
	}

	if len(chunks) == 0 {
		return nil, core.ErrNoChunks
	}
	return chunks, nil
}
