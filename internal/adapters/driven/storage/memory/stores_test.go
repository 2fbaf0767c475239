package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/veritas-cli/internal/core/domain"
)

func TestBlobStore(t *testing.T) {
	ctx := context.Background()
	s := NewBlobStore()
	now := time.Now()

	require.NoError(t, s.Put(ctx, domain.StoredBlob{Name: "b.txt", Digest: "sha256:b", CreatedAt: now}, []byte("bee")))
	require.NoError(t, s.Put(ctx, domain.StoredBlob{Name: "a.txt", Digest: "sha256:a", CreatedAt: now.Add(-time.Minute)}, []byte("ay")))

	assert.ErrorIs(t, s.Put(ctx, domain.StoredBlob{Name: "a.txt", Digest: "sha256:z"}, nil), domain.ErrAlreadyExists)
	assert.ErrorIs(t, s.Put(ctx, domain.StoredBlob{Name: "new.txt", Digest: "sha256:a"}, nil), domain.ErrAlreadyExists)

	blob, content, err := s.Get(ctx, "b.txt")
	require.NoError(t, err)
	assert.Equal(t, "sha256:b", blob.Digest)
	assert.Equal(t, []byte("bee"), content)

	_, _, err = s.Get(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	found, err := s.FindByDigest(ctx, "sha256:a")
	require.NoError(t, err)
	assert.Equal(t, "a.txt", found.Name)
	_, err = s.FindByDigest(ctx, "sha256:none")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	ok, err := s.Exists(ctx, "a.txt")
	require.NoError(t, err)
	assert.True(t, ok)

	list, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "a.txt", list[0].Name)
}

func TestCorpusStore(t *testing.T) {
	ctx := context.Background()
	s := NewCorpusStore()

	entry := &domain.CorpusEntry{ID: "1", Kind: domain.PipelinePlagiarism, Texts: []string{"x"}}
	require.NoError(t, s.SaveEntry(ctx, entry))
	require.NoError(t, s.SaveEntry(ctx, &domain.CorpusEntry{ID: "2", Kind: domain.PipelineNovelty}))
	entry.Texts[0] = "mutated"

	got, err := s.ListEntries(ctx, domain.PipelinePlagiarism)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "x", got[0].Texts[0])

	got, err = s.ListEntries(ctx, domain.PipelineAI)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestReportStore(t *testing.T) {
	ctx := context.Background()
	s := NewReportStore()
	now := time.Now()

	require.NoError(t, s.SaveReport(ctx, &domain.AggregateReport{ID: "old", DocumentDigest: "d1", CreatedAt: now.Add(-time.Hour)}))
	require.NoError(t, s.SaveReport(ctx, &domain.AggregateReport{ID: "new", DocumentDigest: "d1", CreatedAt: now}))
	require.NoError(t, s.SaveReport(ctx, &domain.AggregateReport{ID: "other", DocumentDigest: "d2", CreatedAt: now}))

	r, err := s.GetReport(ctx, "new")
	require.NoError(t, err)
	assert.Equal(t, "d1", r.DocumentDigest)
	_, err = s.GetReport(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	list, err := s.ListReports(ctx, "d1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "new", list[0].ID)

	all, err := s.ListReports(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}
