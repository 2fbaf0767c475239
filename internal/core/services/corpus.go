package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/veritas-cli/internal/core/domain"
	"github.com/custodia-labs/veritas-cli/internal/core/ports/driven"
	"github.com/custodia-labs/veritas-cli/internal/core/ports/driving"
	"github.com/custodia-labs/veritas-cli/internal/corpus"
	"github.com/custodia-labs/veritas-cli/internal/identity"
	"github.com/custodia-labs/veritas-cli/internal/logger"
	"github.com/custodia-labs/veritas-cli/internal/segmenter"
)

// Ensure CorpusService implements the interface.
var _ driving.CorpusService = (*CorpusService)(nil)

// CorpusService manages the comparison corpora outside of evaluations.
type CorpusService struct {
	corpora    map[domain.PipelineKind]*corpus.Store
	extractors driven.ExtractorRegistry
	segmenter  *segmenter.Segmenter
	resolver   *identity.Resolver
	blobs      driven.BlobStore
}

// NewCorpusService creates a new corpus service.
// The resolver and blobs parameters are optional (can be nil); without them
// added documents are not stored and Rebuild finds nothing to add.
func NewCorpusService(
	corpora map[domain.PipelineKind]*corpus.Store,
	extractors driven.ExtractorRegistry,
	seg *segmenter.Segmenter,
	resolver *identity.Resolver,
	blobs driven.BlobStore,
) *CorpusService {
	if seg == nil {
		seg = segmenter.New()
	}
	return &CorpusService{
		corpora:    corpora,
		extractors: extractors,
		segmenter:  seg,
		resolver:   resolver,
		blobs:      blobs,
	}
}

// List returns the entries of a pipeline's corpus, oldest first.
func (s *CorpusService) List(_ context.Context, kind domain.PipelineKind) ([]domain.CorpusEntry, error) {
	store, err := s.store(kind)
	if err != nil {
		return nil, err
	}
	return store.Snapshot().Entries(), nil
}

// Add extracts and segments a document and appends it to a corpus without
// evaluating it. The raw bytes are stored when a resolver is configured.
func (s *CorpusService) Add(ctx context.Context, kind domain.PipelineKind, raw *domain.RawDocument) (*domain.CorpusEntry, error) {
	store, err := s.store(kind)
	if err != nil {
		return nil, err
	}
	if raw == nil || len(raw.Content) == 0 {
		return nil, fmt.Errorf("add to %s corpus: empty document: %w", kind, domain.ErrInvalidInput)
	}
	if !s.extractors.Supports(raw) {
		return nil, fmt.Errorf("add %q: %w", raw.Filename, domain.ErrUnsupportedFormat)
	}

	texts := s.texts(ctx, kind, raw)
	if len(texts) == 0 {
		return nil, fmt.Errorf("add %q: %w", raw.Filename, domain.ErrInsufficientContent)
	}

	source := raw.Filename
	if s.resolver != nil {
		id, err := s.resolver.Resolve(ctx, raw.Filename, raw.MIMEType, raw.Content)
		if err != nil {
			logger.Warn("raw document not stored", "file", raw.Filename, "err", err)
		}
		if id != nil {
			source = id.StoredName
		}
	}

	return store.Append(ctx, source, texts)
}

// Rebuild appends every stored raw document whose name is not yet a source
// in the corpus. Documents that yield no text are skipped.
func (s *CorpusService) Rebuild(ctx context.Context, kind domain.PipelineKind) (int, error) {
	store, err := s.store(kind)
	if err != nil {
		return 0, err
	}
	if s.blobs == nil {
		return 0, nil
	}

	blobs, err := s.blobs.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("list stored documents: %w", err)
	}

	present := make(map[string]struct{})
	for _, e := range store.Snapshot().Entries() {
		present[e.Source] = struct{}{}
	}

	added := 0
	for _, blob := range blobs {
		if err := ctx.Err(); err != nil {
			return added, err
		}
		if _, ok := present[blob.Name]; ok {
			continue
		}

		meta, content, err := s.blobs.Get(ctx, blob.Name)
		if err != nil {
			logger.Warn("stored document unreadable", "name", blob.Name, "err", err)
			continue
		}
		raw := &domain.RawDocument{Filename: meta.Name, MIMEType: meta.MIMEType, Content: content}
		texts := s.texts(ctx, kind, raw)
		if len(texts) == 0 {
			logger.Debug("rebuild %s: %s has no usable text", kind, blob.Name)
			continue
		}

		if _, err := store.Append(ctx, blob.Name, texts); err != nil {
			if errors.Is(err, domain.ErrInvalidInput) {
				continue
			}
			return added, fmt.Errorf("append %s: %w", blob.Name, err)
		}
		present[blob.Name] = struct{}{}
		added++
	}
	logger.Info("rebuilt %s corpus: %d entries added", kind, added)
	return added, nil
}

// texts returns the corpus texts a document contributes to kind: claims for
// the novelty corpus and segments otherwise.
func (s *CorpusService) texts(ctx context.Context, kind domain.PipelineKind, raw *domain.RawDocument) []string {
	text := s.extractors.Extract(ctx, raw)
	segments := s.segmenter.Segment(text)

	var out []string
	if kind == domain.PipelineNovelty {
		for _, c := range segmenter.ExtractClaims(segments, segmenter.DefaultMaxClaims) {
			out = append(out, c.Text)
		}
		return out
	}
	for _, seg := range segments {
		out = append(out, seg.Text)
	}
	return out
}

func (s *CorpusService) store(kind domain.PipelineKind) (*corpus.Store, error) {
	if !kind.IsValid() {
		return nil, fmt.Errorf("corpus %q: %w", kind, domain.ErrUnknownPipeline)
	}
	store, ok := s.corpora[kind]
	if !ok || store == nil {
		return nil, fmt.Errorf("%s corpus: %w", kind, domain.ErrNotFound)
	}
	return store, nil
}
