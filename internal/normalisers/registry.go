package normalisers

import (
	"context"
	"mime"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/veritas-cli/internal/core/domain"
	"github.com/custodia-labs/veritas-cli/internal/core/ports/driven"
	"github.com/custodia-labs/veritas-cli/internal/logger"
)

// Ensure Registry implements the interface.
var _ driven.ExtractorRegistry = (*Registry)(nil)

// genericMIMETypes carry no format information; extension decides.
var genericMIMETypes = map[string]bool{
	"":                         true,
	"application/octet-stream": true,
	"binary/octet-stream":      true,
}

// Registry dispatches documents to registered extractors.
type Registry struct {
	mu         sync.RWMutex
	extractors []driven.TextExtractor
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds an extractor. Extractors are kept in descending priority.
func (r *Registry) Register(extractor driven.TextExtractor) {
	if extractor == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.extractors = append(r.extractors, extractor)
	sort.SliceStable(r.extractors, func(i, j int) bool {
		return r.extractors[i].Priority() > r.extractors[j].Priority()
	})
}

// Supports reports whether an extractor handles the document.
func (r *Registry) Supports(raw *domain.RawDocument) bool {
	return r.lookup(raw) != nil
}

// Extract returns the document text, or "" when extraction fails.
func (r *Registry) Extract(ctx context.Context, raw *domain.RawDocument) string {
	extractor := r.lookup(raw)
	if extractor == nil {
		if raw != nil {
			logger.Warn("no extractor for document", "file", raw.Filename, "mime", raw.MIMEType)
		}
		return ""
	}

	text, err := extractor.Extract(ctx, raw)
	if err != nil {
		logger.Warn("text extraction failed", "file", raw.Filename, "mime", raw.MIMEType, "error", err)
		return ""
	}
	return text
}

// SupportedExtensions returns every registered extension, sorted.
func (r *Registry) SupportedExtensions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]bool)
	var exts []string
	for _, e := range r.extractors {
		for _, ext := range e.SupportedExtensions() {
			if !seen[ext] {
				seen[ext] = true
				exts = append(exts, ext)
			}
		}
	}
	sort.Strings(exts)
	return exts
}

// lookup picks an extractor by MIME type, then by extension.
// Unknown text/* types fall back to the plain text handler.
func (r *Registry) lookup(raw *domain.RawDocument) driven.TextExtractor {
	if raw == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	mimeType := baseMIMEType(raw.MIMEType)
	if !genericMIMETypes[mimeType] {
		if e := r.find(func(e driven.TextExtractor) []string { return e.SupportedMIMETypes() }, mimeType); e != nil {
			return e
		}
	}

	ext := strings.ToLower(filepath.Ext(raw.Filename))
	if ext != "" {
		if e := r.find(func(e driven.TextExtractor) []string { return e.SupportedExtensions() }, ext); e != nil {
			return e
		}
	}

	if strings.HasPrefix(mimeType, "text/") {
		return r.find(func(e driven.TextExtractor) []string { return e.SupportedMIMETypes() }, "text/plain")
	}
	return nil
}

func (r *Registry) find(keys func(driven.TextExtractor) []string, want string) driven.TextExtractor {
	for _, e := range r.extractors {
		for _, k := range keys(e) {
			if k == want {
				return e
			}
		}
	}
	return nil
}

// baseMIMEType strips parameters such as charset.
func baseMIMEType(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if media, _, err := mime.ParseMediaType(s); err == nil {
		return media
	}
	if i := strings.IndexByte(s, ';'); i >= 0 {
		s = s[:i]
	}
	return strings.ToLower(strings.TrimSpace(s))
}
