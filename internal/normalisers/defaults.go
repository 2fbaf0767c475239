package normalisers

import (
	"github.com/custodia-labs/veritas-cli/internal/normalisers/docx"
	"github.com/custodia-labs/veritas-cli/internal/normalisers/html"
	"github.com/custodia-labs/veritas-cli/internal/normalisers/markdown"
	"github.com/custodia-labs/veritas-cli/internal/normalisers/pdf"
	"github.com/custodia-labs/veritas-cli/internal/normalisers/plaintext"
)

// RegisterDefaults registers all built-in extractors with the registry.
func RegisterDefaults(r *Registry) {
	r.Register(plaintext.New())
	r.Register(markdown.New())
	r.Register(html.New())
	r.Register(docx.New())
	r.Register(pdf.New())
}

// NewDefaultRegistry returns a registry with every built-in extractor.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	RegisterDefaults(r)
	return r
}
