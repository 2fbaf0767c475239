package docx

import (
	"archive/zip"
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/veritas-cli/internal/core/domain"
)

// buildDocx creates a minimal DOCX archive for testing.
func buildDocx(t *testing.T, files map[string]string) []byte {
	t.Helper()

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, content := range files {
		f, err := w.Create(name)
		require.NoError(t, err)
		_, err = f.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}

const documentXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>First paragraph </w:t></w:r><w:r><w:t>continues here.</w:t></w:r></w:p>
    <w:p></w:p>
    <w:p><w:r><w:t>Second</w:t><w:tab/><w:t>paragraph.</w:t></w:r></w:p>
    <w:tbl><w:tr><w:tc><w:p><w:r><w:t>Table cell.</w:t></w:r></w:p></w:tc></w:tr></w:tbl>
  </w:body>
</w:document>`

func TestSupportedTypes(t *testing.T) {
	extractor := New()

	require.Len(t, extractor.SupportedMIMETypes(), 1)
	assert.Equal(t, []string{".docx"}, extractor.SupportedExtensions())
	assert.Equal(t, 50, extractor.Priority())
}

func TestExtract_Success(t *testing.T) {
	content := buildDocx(t, map[string]string{"word/document.xml": documentXML})

	text, err := New().Extract(context.Background(), &domain.RawDocument{
		Filename: "essay.docx",
		Content:  content,
	})
	require.NoError(t, err)
	assert.Equal(t, "First paragraph continues here.\n\nSecond paragraph.\n\nTable cell.", text)
}

func TestExtract_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content []byte
	}{
		{name: "not a zip", content: []byte("plain bytes")},
		{name: "missing document part", content: buildDocx(t, map[string]string{"docProps/core.xml": "<x/>"})},
		{name: "broken xml", content: buildDocx(t, map[string]string{"word/document.xml": "<w:document><w:body>"})},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			text, err := New().Extract(context.Background(), &domain.RawDocument{Content: tc.content})
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
			assert.Empty(t, text)
		})
	}
}

func TestExtract_NilDocument(t *testing.T) {
	_, err := New().Extract(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
