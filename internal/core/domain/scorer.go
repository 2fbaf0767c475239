package domain

// ScorerTier identifies the local scorer backend selected at startup.
type ScorerTier string

// Scorer tiers in order of preference.
const (
	// ScorerTierClassifier is a pluggable fast local classifier.
	ScorerTierClassifier ScorerTier = "classifier"

	// ScorerTierPerplexity is a statistical language model.
	ScorerTierPerplexity ScorerTier = "perplexity"

	// ScorerTierHeuristic is the lexical heuristic. Always available.
	ScorerTierHeuristic ScorerTier = "heuristic"
)

// String returns the string representation.
func (t ScorerTier) String() string {
	return string(t)
}

// Description returns a human-readable description of the tier.
func (t ScorerTier) Description() string {
	switch t {
	case ScorerTierClassifier:
		return "Classifier (local model)"
	case ScorerTierPerplexity:
		return "Perplexity (statistical language model)"
	case ScorerTierHeuristic:
		return "Heuristic (token length and text length)"
	default:
		return unknownDescription
	}
}
