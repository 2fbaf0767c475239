package domain

import "time"

// CorpusEntry is previously processed material used as the similarity target.
// Entries are append-only and never mutated after insertion.
type CorpusEntry struct {
	// ID is the unique identifier for the entry.
	ID string

	// Kind is the pipeline whose corpus holds this entry.
	Kind PipelineKind

	// Source is the filename the material came from.
	Source string

	// Texts are the retained texts or excerpts, deduplicated by exact match.
	Texts []string

	// Embeddings holds one vector per text, or is nil when no embedding
	// backend was available at insertion time.
	Embeddings [][]float32

	// CreatedAt is when the entry was appended.
	CreatedAt time.Time
}

// HasEmbeddings returns true if every text has a vector.
func (e *CorpusEntry) HasEmbeddings() bool {
	return len(e.Embeddings) > 0 && len(e.Embeddings) == len(e.Texts)
}

// DedupTexts returns texts with exact duplicates and blank strings removed,
// keeping first occurrences in order.
func DedupTexts(texts []string) []string {
	seen := make(map[string]struct{}, len(texts))
	out := make([]string, 0, len(texts))
	for _, t := range texts {
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// Candidate is a corpus entry shortlisted for comparison against one unit.
type Candidate struct {
	// EntryID is the corpus entry.
	EntryID string

	// Source is the entry's filename.
	Source string

	// Similarity is the best similarity between the unit and the entry's texts.
	Similarity float64

	// Preview is a short excerpt of the best-matching text.
	Preview string

	// Method is "vector" or "lexical", whichever produced the similarity.
	Method string
}
