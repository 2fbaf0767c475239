package driven

import (
	"context"

	"github.com/custodia-labs/veritas-cli/internal/core/domain"
)

// TextExtractor turns uploaded bytes into plain text.
// Each extractor handles specific MIME types and file extensions.
type TextExtractor interface {
	// SupportedMIMETypes returns the MIME types this extractor handles.
	SupportedMIMETypes() []string

	// SupportedExtensions returns lower-case file extensions including the dot.
	SupportedExtensions() []string

	// Priority returns the selection priority (higher = preferred).
	// Format-specific extractors should return 50-89.
	// Fallback extractors should return 1-9.
	Priority() int

	// Extract returns the plain text of the document.
	Extract(ctx context.Context, raw *domain.RawDocument) (string, error)
}
