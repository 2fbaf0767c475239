package plaintext

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/veritas-cli/internal/core/domain"
	"github.com/custodia-labs/veritas-cli/internal/core/ports/driven"
)

func TestNew(t *testing.T) {
	extractor := New()
	require.NotNil(t, extractor)
	assert.IsType(t, &Extractor{}, extractor)
}

func TestSupportedTypes(t *testing.T) {
	extractor := New()

	assert.Contains(t, extractor.SupportedMIMETypes(), "text/plain")
	assert.Contains(t, extractor.SupportedExtensions(), ".txt")
	assert.Equal(t, 5, extractor.Priority())
}

func TestExtract_Success(t *testing.T) {
	extractor := New()

	raw := &domain.RawDocument{
		Filename: "essay.txt",
		MIMEType: "text/plain",
		Content:  []byte("This is plain text content."),
	}

	text, err := extractor.Extract(context.Background(), raw)
	require.NoError(t, err)
	assert.Equal(t, "This is plain text content.", text)
}

func TestExtract_NilDocument(t *testing.T) {
	text, err := New().Extract(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Empty(t, text)
}

func TestExtract_Normalisation(t *testing.T) {
	tests := []struct {
		name     string
		content  []byte
		expected string
	}{
		{
			name:     "empty",
			content:  []byte{},
			expected: "",
		},
		{
			name:     "crlf line endings",
			content:  []byte("one\r\ntwo\rthree"),
			expected: "one\ntwo\nthree",
		},
		{
			name:     "byte order mark",
			content:  append([]byte{0xEF, 0xBB, 0xBF}, []byte("hello")...),
			expected: "hello",
		},
		{
			name:     "invalid utf8",
			content:  []byte("caf\xffe"),
			expected: "cafe",
		},
		{
			name:     "surrounding whitespace",
			content:  []byte("\n\n  text  \n"),
			expected: "text",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			text, err := New().Extract(context.Background(), &domain.RawDocument{Content: tc.content})
			require.NoError(t, err)
			assert.Equal(t, tc.expected, text)
		})
	}
}

func TestInterfaceCompliance(t *testing.T) {
	var _ driven.TextExtractor = (*Extractor)(nil)
}
