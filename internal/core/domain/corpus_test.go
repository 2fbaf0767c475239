package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDedupTexts(t *testing.T) {
	tests := []struct {
		name     string
		input    []string
		expected []string
	}{
		{"nil", nil, []string{}},
		{"no duplicates", []string{"a", "b"}, []string{"a", "b"}},
		{"exact duplicates removed", []string{"a", "b", "a", "b", "c"}, []string{"a", "b", "c"}},
		{"blank strings dropped", []string{"", "a", ""}, []string{"a"}},
		{"near duplicates kept", []string{"a ", "a"}, []string{"a ", "a"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DedupTexts(tt.input))
		})
	}
}

func TestCorpusEntry_HasEmbeddings(t *testing.T) {
	e := &CorpusEntry{Texts: []string{"a", "b"}}
	assert.False(t, e.HasEmbeddings())

	e.Embeddings = [][]float32{{1}}
	assert.False(t, e.HasEmbeddings())

	e.Embeddings = [][]float32{{1}, {0}}
	assert.True(t, e.HasEmbeddings())
}
