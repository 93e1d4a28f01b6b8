package core

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyInput        = errors.New("input text is empty")
	ErrNoChunks          = errors.New("no chunks produced")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
	ErrLengthMismatch    = errors.New("embeddings and texts length mismatch")
	ErrGeneration        = errors.New("answer generation failed")
	ErrUnsupportedFormat = errors.New("unsupported document format")
)

// IngestError marks a failure while turning a document into an indexed
// corpus. Op identifies the stage: download, extract, chunk, embed or index.
type IngestError struct {
	Op  string
	Err error
}

func (e *IngestError) Error() string {
	return fmt.Sprintf("ingest %s: %v", e.Op, e.Err)
}

func (e *IngestError) Unwrap() error {
	return e.Err
}

func NewIngestError(op string, err error) *IngestError {
	return &IngestError{Op: op, Err: err}
}
