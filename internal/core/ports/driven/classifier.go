package driven

// Features are stylometric measurements of a text used by local classifiers.
type Features struct {
	// AvgTokenLen is the mean token length in characters.
	AvgTokenLen float64

	// TypeTokenRatio is distinct tokens over total tokens.
	TypeTokenRatio float64

	// AvgSentenceLen is the mean sentence length in tokens.
	AvgSentenceLen float64

	// SentenceLenStdDev is the standard deviation of sentence lengths.
	SentenceLenStdDev float64

	// PunctuationRate is punctuation characters per token.
	PunctuationRate float64

	// StopwordRatio is the share of tokens that are function words.
	StopwordRatio float64

	// Tokens is the token count.
	Tokens int
}

// Classifier is a fast local model scoring a text's features.
// This is an optional service - when nil, the scorer falls back to the
// perplexity or heuristic tier.
type Classifier interface {
	// Name identifies the model, for logs and reports.
	Name() string

	// Classify returns a score in [0,1].
	Classify(f Features) float64
}
