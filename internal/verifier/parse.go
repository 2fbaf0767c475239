package verifier

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/custodia-labs/veritas-cli/internal/core/domain"
)

// rawVerdict mirrors the verdict JSON contract with optional fields.
type rawVerdict struct {
	Classification string         `json:"classification"`
	Confidence     *float64       `json:"confidence"`
	Rationale      string         `json:"rationale"`
	References     []rawReference `json:"references"`
}

type rawReference struct {
	ID         string   `json:"id"`
	Source     string   `json:"source"`
	Similarity *float64 `json:"similarity"`
}

// ParseVerdict extracts the outermost JSON object from response and
// validates it for kind. References to entries outside candidates are
// dropped, and missing reference fields are filled from the candidate.
func ParseVerdict(kind domain.PipelineKind, response string, candidates []domain.Candidate) (domain.VerificationVerdict, error) {
	start := strings.Index(response, "{")
	end := strings.LastIndex(response, "}")
	if start < 0 || end <= start {
		return domain.VerificationVerdict{}, fmt.Errorf("no JSON object in response: %w", domain.ErrMalformedVerdict)
	}

	var raw rawVerdict
	if err := json.Unmarshal([]byte(response[start:end+1]), &raw); err != nil {
		return domain.VerificationVerdict{}, fmt.Errorf("decode verdict: %v: %w", err, domain.ErrMalformedVerdict)
	}

	class := domain.Classification(strings.ToLower(strings.TrimSpace(raw.Classification)))
	if !kind.Accepts(class) {
		return domain.VerificationVerdict{}, fmt.Errorf("classification %q not valid for %s: %w",
			raw.Classification, kind, domain.ErrMalformedVerdict)
	}
	if raw.Confidence == nil {
		return domain.VerificationVerdict{}, fmt.Errorf("missing confidence: %w", domain.ErrMalformedVerdict)
	}

	return domain.VerificationVerdict{
		Classification: class,
		Confidence:     clamp01(*raw.Confidence),
		Rationale:      strings.TrimSpace(raw.Rationale),
		References:     resolveReferences(raw.References, candidates),
	}, nil
}

func resolveReferences(refs []rawReference, candidates []domain.Candidate) []domain.Reference {
	if len(refs) == 0 {
		return nil
	}
	byID := make(map[string]*domain.Candidate, len(candidates))
	for i := range candidates {
		byID[candidates[i].EntryID] = &candidates[i]
	}

	seen := make(map[string]bool, len(refs))
	var out []domain.Reference
	for _, r := range refs {
		c, ok := byID[r.ID]
		if !ok || seen[r.ID] {
			continue
		}
		seen[r.ID] = true

		ref := domain.Reference{EntryID: r.ID, Source: r.Source, Similarity: c.Similarity}
		if ref.Source == "" {
			ref.Source = c.Source
		}
		if r.Similarity != nil {
			ref.Similarity = clamp01(*r.Similarity)
		}
		out = append(out, ref)
	}
	return out
}

// referencesFromCandidates converts a shortlist into verdict references.
func referencesFromCandidates(candidates []domain.Candidate) []domain.Reference {
	if len(candidates) == 0 {
		return nil
	}
	out := make([]domain.Reference, len(candidates))
	for i, c := range candidates {
		out[i] = domain.Reference{EntryID: c.EntryID, Source: c.Source, Similarity: c.Similarity}
	}
	return out
}

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v):
		return 0
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
