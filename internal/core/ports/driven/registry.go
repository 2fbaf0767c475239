package driven

import (
	"context"

	"github.com/custodia-labs/veritas-cli/internal/core/domain"
)

// ExtractorRegistry selects the appropriate extractor for a document.
// It maintains a priority-ordered list of extractors and dispatches
// based on MIME type, then file extension.
type ExtractorRegistry interface {
	// Register adds an extractor to the registry.
	Register(extractor TextExtractor)

	// Supports reports whether any registered extractor handles the document.
	Supports(raw *domain.RawDocument) bool

	// Extract returns the document text using the best matching extractor.
	// It never fails: any extraction error is logged and yields "".
	Extract(ctx context.Context, raw *domain.RawDocument) string

	// SupportedExtensions returns every extension that can be extracted.
	SupportedExtensions() []string
}
