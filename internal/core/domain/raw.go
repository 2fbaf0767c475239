package domain

// RawDocument represents uploaded bytes before text extraction.
type RawDocument struct {
	// Filename is the name the document was uploaded under.
	Filename string

	// MIMEType is the content type (e.g., "application/pdf").
	// May be empty, in which case extractors are chosen by extension.
	MIMEType string

	// Content is the raw bytes.
	Content []byte

	// Metadata contains caller-specific key-value pairs.
	Metadata map[string]any
}

// Size returns the content length in bytes.
func (r *RawDocument) Size() int {
	return len(r.Content)
}
