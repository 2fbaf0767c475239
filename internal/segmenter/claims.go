package segmenter

import (
	"strings"

	"github.com/custodia-labs/veritas-cli/internal/core/domain"
	"github.com/custodia-labs/veritas-cli/internal/similarity"
)

// Claim extraction bounds.
const (
	DefaultMaxClaims = 60
	minClaimWords    = 6
)

// ExtractClaims returns the distinct declarative sentences of the segments in
// document order. Questions and sentences shorter than six words are skipped;
// sentences equal after normalisation are kept once.
func ExtractClaims(segments []domain.Segment, maxClaims int) []domain.Claim {
	if maxClaims <= 0 {
		maxClaims = DefaultMaxClaims
	}

	seen := make(map[string]struct{})
	claims := make([]domain.Claim, 0)

	for _, seg := range segments {
		for _, sent := range seg.Sentences {
			if !isClaimLike(sent.Text) {
				continue
			}
			key := similarity.Normalise(sent.Text)
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			claims = append(claims, domain.Claim{
				Index:         len(claims),
				SegmentIndex:  seg.Index,
				SentenceIndex: sent.Index,
				Text:          sent.Text,
			})
			if len(claims) == maxClaims {
				return claims
			}
		}
	}
	return claims
}

func isClaimLike(s string) bool {
	s = strings.TrimSpace(s)
	if strings.HasSuffix(strings.TrimRight(s, `"')]”’`), "?") {
		return false
	}
	return len(strings.Fields(s)) >= minClaimWords
}
