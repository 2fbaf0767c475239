package corpus

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/custodia-labs/veritas-cli/internal/core/domain"
	"github.com/custodia-labs/veritas-cli/internal/core/ports/driven"
	"github.com/custodia-labs/veritas-cli/internal/logger"
	"github.com/custodia-labs/veritas-cli/internal/similarity"
)

// Text is one corpus text with its precomputed lexical profile.
type Text struct {
	// Entry is the position of the owning entry in the snapshot.
	Entry int

	// Position is the text's position within the entry.
	Position int

	// Content is the raw text.
	Content string

	// Profile is the lexical comparison form of Content.
	Profile *similarity.Profile
}

// Snapshot is an immutable view of a corpus. Readers may hold a snapshot for
// as long as they like; appends never modify it.
type Snapshot struct {
	kind    domain.PipelineKind
	version int
	entries []domain.CorpusEntry
	texts   []Text
	lookup  map[[2]int]int
	index   driven.VectorIndex
}

// Kind returns the pipeline the corpus belongs to.
func (s *Snapshot) Kind() domain.PipelineKind {
	return s.kind
}

// Version increases by one with every append.
func (s *Snapshot) Version() int {
	return s.version
}

// Len returns the number of entries.
func (s *Snapshot) Len() int {
	return len(s.entries)
}

// Entries returns the entries, oldest first. The slice must not be modified.
func (s *Snapshot) Entries() []domain.CorpusEntry {
	return s.entries
}

// Entry returns the entry at position i.
func (s *Snapshot) Entry(i int) *domain.CorpusEntry {
	return &s.entries[i]
}

// Texts returns every corpus text, most recent entry first.
func (s *Snapshot) Texts() []Text {
	return s.texts
}

// Index returns the similarity index, or nil when no entry has embeddings.
func (s *Snapshot) Index() driven.VectorIndex {
	return s.index
}

// Resolve maps a vector ID from the index back to its text.
func (s *Snapshot) Resolve(vectorID string) (*Text, bool) {
	entryPos, textPos, ok := parseVectorID(vectorID)
	if !ok {
		return nil, false
	}
	i, found := s.lookup[[2]int{entryPos, textPos}]
	if !found {
		return nil, false
	}
	return &s.texts[i], true
}

// build constructs a snapshot over entries. Profiles are carried over from
// prev for entries it already holds, so an append only profiles the new entry.
func build(
	ctx context.Context,
	kind domain.PipelineKind,
	version int,
	entries []domain.CorpusEntry,
	prev *Snapshot,
	newIndex IndexFactory,
) *Snapshot {
	s := &Snapshot{kind: kind, version: version, entries: entries, lookup: make(map[[2]int]int)}

	reused := make(map[[2]int]*similarity.Profile)
	if prev != nil {
		for _, t := range prev.texts {
			reused[[2]int{t.Entry, t.Position}] = t.Profile
		}
	}

	for e := len(entries) - 1; e >= 0; e-- {
		for p, content := range entries[e].Texts {
			profile := reused[[2]int{e, p}]
			if profile == nil {
				profile = similarity.NewProfile(content)
			}
			s.lookup[[2]int{e, p}] = len(s.texts)
			s.texts = append(s.texts, Text{Entry: e, Position: p, Content: content, Profile: profile})
		}
	}

	s.index = buildIndex(ctx, entries, newIndex)
	return s
}

func buildIndex(ctx context.Context, entries []domain.CorpusEntry, newIndex IndexFactory) driven.VectorIndex {
	if newIndex == nil {
		return nil
	}

	dimension := 0
	for i := range entries {
		if entries[i].HasEmbeddings() {
			dimension = len(entries[i].Embeddings[0])
			break
		}
	}
	if dimension == 0 {
		return nil
	}

	idx := newIndex(dimension)
	skipped := 0
	for e := range entries {
		if !entries[e].HasEmbeddings() {
			continue
		}
		for p, vec := range entries[e].Embeddings {
			if err := idx.Add(ctx, vectorID(e, p), vec); err != nil {
				skipped++
			}
		}
	}
	if skipped > 0 {
		logger.Debug("corpus index skipped %d vectors", skipped)
	}
	if idx.Len() == 0 {
		_ = idx.Close()
		return nil
	}
	return idx
}

func vectorID(entry, position int) string {
	return fmt.Sprintf("%d:%d", entry, position)
}

func parseVectorID(id string) (entry, position int, ok bool) {
	a, b, found := strings.Cut(id, ":")
	if !found {
		return 0, 0, false
	}
	e, err := strconv.Atoi(a)
	if err != nil {
		return 0, 0, false
	}
	p, err := strconv.Atoi(b)
	if err != nil {
		return 0, 0, false
	}
	return e, p, true
}
