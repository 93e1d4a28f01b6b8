// Package extract turns a document URL into raw text. Format-specific logic
// (PDF, DOCX, email) stays behind the Extractor interface, selected by the
// URL extension.
package extract

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/docquery/docquery/core"
)

// Extractor extracts plain text from raw document bytes.
type Extractor interface {
	Extract(data []byte) (string, error)
}

// DocType reports the document type implied by the URL: "pdf", "docx",
// "msg", "eml" or "unknown". Query strings after the extension are ignored.
func DocType(url string) string {
	lower := strings.ToLower(url)
	switch {
	case strings.Contains(lower, ".pdf"):
		return "pdf"
	case strings.Contains(lower, ".docx"):
		return "docx"
	case strings.Contains(lower, ".msg"):
		return "msg"
	case strings.Contains(lower, ".eml"):
		return "eml"
	}
	return "unknown"
}

// ForType returns the extractor for a document type.
func ForType(docType string) (Extractor, error) {
	switch docType {
	case "pdf":
		return PDF{}, nil
	case "docx":
		return DOCX{}, nil
	case "msg", "eml":
		return Email{}, nil
	}
	return nil, fmt.Errorf("%w: %s", core.ErrUnsupportedFormat, docType)
}

// Service downloads documents and extracts their text.
type Service struct {
	client *http.Client
}

// NewService creates a Service with the given download timeout.
func NewService(timeout time.Duration) *Service {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Service{client: &http.Client{Timeout: timeout}}
}

// Text downloads the document at url and extracts its plain text. Failures
// and empty extraction results surface as *core.IngestError.
func (s *Service) Text(ctx context.Context, url string) (string, error) {
	docType := DocType(url)
	extractor, err := ForType(docType)
	if err != nil {
		return "", core.NewIngestError("extract", err)
	}

	data, err := s.download(ctx, url)
	if err != nil {
		return "", core.NewIngestError("download", err)
	}
	log.Printf("[extract] downloaded %d bytes (%s) from %s", len(data), docType, url)

	text, err := extractor.Extract(data)
	if err != nil {
		return "", core.NewIngestError("extract", err)
	}
	if strings.TrimSpace(text) == "" {
		return "", core.NewIngestError("extract", core.ErrEmptyInput)
	}
	return text, nil
}
