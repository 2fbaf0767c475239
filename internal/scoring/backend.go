package scoring

import (
	"unicode/utf8"

	"github.com/custodia-labs/veritas-cli/internal/core/domain"
	"github.com/custodia-labs/veritas-cli/internal/core/ports/driven"
)

// Backend scores one text. Implementations must be deterministic and must
// not keep mutable state outside the WorkerState they are given.
type Backend interface {
	// Tier identifies the backend.
	Tier() domain.ScorerTier

	// Score returns a score in [0,1].
	Score(state *WorkerState, text string) float64
}

// Heuristic constants. The score rises with average token length and with
// text length, saturating at heuristicLengthSaturation characters.
const (
	heuristicTokenLenFloor    = 3.5
	heuristicTokenLenSpan     = 3.5
	heuristicLengthSaturation = 600.0
	heuristicTokenWeight      = 0.6
	heuristicLengthWeight     = 0.4
	heuristicCeiling          = 0.99
)

// HeuristicBackend is the lexical fallback tier. It is always available.
type HeuristicBackend struct{}

// Tier returns domain.ScorerTierHeuristic.
func (HeuristicBackend) Tier() domain.ScorerTier {
	return domain.ScorerTierHeuristic
}

// Score combines average token length and text length, clamped to [0, 0.99].
func (HeuristicBackend) Score(state *WorkerState, text string) float64 {
	state.tokens = Tokenize(state.tokens[:0], text)
	if len(state.tokens) == 0 {
		return 0
	}
	total := 0
	for _, t := range state.tokens {
		total += utf8.RuneCountInString(t)
	}
	avg := float64(total) / float64(len(state.tokens))

	tokenPart := clamp((avg-heuristicTokenLenFloor)/heuristicTokenLenSpan, 0, 1)
	lengthPart := clamp(float64(utf8.RuneCountInString(text))/heuristicLengthSaturation, 0, 1)

	return clamp(heuristicTokenWeight*tokenPart+heuristicLengthWeight*lengthPart, 0, heuristicCeiling)
}

// ClassifierBackend adapts a driven.Classifier to the Backend interface.
type ClassifierBackend struct {
	classifier driven.Classifier
}

// NewClassifierBackend wraps a classifier.
func NewClassifierBackend(c driven.Classifier) *ClassifierBackend {
	return &ClassifierBackend{classifier: c}
}

// Tier returns domain.ScorerTierClassifier.
func (b *ClassifierBackend) Tier() domain.ScorerTier {
	return domain.ScorerTierClassifier
}

// Score classifies the text's stylometric features.
func (b *ClassifierBackend) Score(state *WorkerState, text string) float64 {
	f := ExtractFeatures(state, text)
	if f.Tokens == 0 {
		return 0
	}
	return clamp(b.classifier.Classify(f), 0, 1)
}

// Name returns the wrapped classifier's name.
func (b *ClassifierBackend) Name() string {
	return b.classifier.Name()
}
