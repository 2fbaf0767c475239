package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/veritas-cli/internal/core/domain"
	"github.com/custodia-labs/veritas-cli/internal/identity"
	"github.com/custodia-labs/veritas-cli/internal/normalisers"
)

func newCorpusService(blobs *memBlobs) *CorpusService {
	return NewCorpusService(testCorpora(), normalisers.NewDefaultRegistry(), nil, identity.New(blobs), blobs)
}

func TestCorpusService_Add(t *testing.T) {
	ctx := context.Background()
	blobs := newMemBlobs()
	service := newCorpusService(blobs)

	entry, err := service.Add(ctx, domain.PipelinePlagiarism, &domain.RawDocument{
		Filename: "essay.txt",
		Content:  []byte(essay),
	})
	require.NoError(t, err)
	assert.Equal(t, "essay.txt", entry.Source)
	assert.Equal(t, domain.PipelinePlagiarism, entry.Kind)
	require.Len(t, entry.Texts, 1, "one text per segment")

	entries, err := service.List(ctx, domain.PipelinePlagiarism)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, entry.ID, entries[0].ID)
	assert.Len(t, blobs.blobs, 1, "raw bytes are stored")

	others, err := service.List(ctx, domain.PipelineAI)
	require.NoError(t, err)
	assert.Empty(t, others)
}

func TestCorpusService_AddNoveltyStoresClaims(t *testing.T) {
	service := newCorpusService(newMemBlobs())

	entry, err := service.Add(context.Background(), domain.PipelineNovelty, &domain.RawDocument{
		Filename: "essay.txt",
		Content:  []byte(essay),
	})
	require.NoError(t, err)
	assert.Len(t, entry.Texts, 3)
	assert.Equal(t,
		"Photosynthesis converts light energy into chemical energy inside the chloroplasts of green plants.",
		entry.Texts[0])
}

func TestCorpusService_AddErrors(t *testing.T) {
	ctx := context.Background()
	service := newCorpusService(newMemBlobs())

	tests := []struct {
		name string
		kind domain.PipelineKind
		raw  *domain.RawDocument
		want error
	}{
		{"unknown kind", "style", &domain.RawDocument{Filename: "a.txt", Content: []byte(essay)}, domain.ErrUnknownPipeline},
		{"nil document", domain.PipelineAI, nil, domain.ErrInvalidInput},
		{"unsupported", domain.PipelineAI, &domain.RawDocument{Filename: "a.bin", Content: []byte{1, 2}}, domain.ErrUnsupportedFormat},
		{"blank", domain.PipelineAI, &domain.RawDocument{Filename: "a.txt", Content: []byte("  \n")}, domain.ErrInsufficientContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.Add(ctx, tt.kind, tt.raw)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestCorpusService_Rebuild(t *testing.T) {
	ctx := context.Background()
	blobs := newMemBlobs()
	resolver := identity.New(blobs)
	for name, text := range map[string]string{
		"essay.txt": essay,
		"notes.md":  "# Notes\n\nEnzymes lower the activation energy needed for a reaction to proceed.",
		"empty.txt": "   ",
		"data.bin":  "\x00\x01",
	} {
		_, err := resolver.Resolve(ctx, name, "", []byte(text))
		require.NoError(t, err)
	}
	service := newCorpusService(blobs)

	added, err := service.Rebuild(ctx, domain.PipelinePlagiarism)
	require.NoError(t, err)
	assert.Equal(t, 2, added)

	again, err := service.Rebuild(ctx, domain.PipelinePlagiarism)
	require.NoError(t, err)
	assert.Zero(t, again, "sources already present are skipped")

	entries, err := service.List(ctx, domain.PipelinePlagiarism)
	require.NoError(t, err)
	sources := make([]string, 0, len(entries))
	for _, e := range entries {
		sources = append(sources, e.Source)
	}
	assert.ElementsMatch(t, []string{"essay.txt", "notes.md"}, sources)
}

func TestCorpusService_RebuildWithoutBlobs(t *testing.T) {
	service := NewCorpusService(testCorpora(), normalisers.NewDefaultRegistry(), nil, nil, nil)

	added, err := service.Rebuild(context.Background(), domain.PipelineAI)
	require.NoError(t, err)
	assert.Zero(t, added)
}

func TestCorpusService_MissingStore(t *testing.T) {
	service := NewCorpusService(nil, normalisers.NewDefaultRegistry(), nil, nil, nil)

	_, err := service.List(context.Background(), domain.PipelineAI)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}
