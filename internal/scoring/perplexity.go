package scoring

import (
	"fmt"
	"math"

	"github.com/custodia-labs/veritas-cli/internal/core/domain"
)

// Perplexity model constants.
const (
	// DefaultMinTrainingTokens is the smallest training set accepted.
	DefaultMinTrainingTokens = 2000

	smoothingK      = 0.1
	minSpread       = 0.25
	windowTokens    = 20
	calibrationFold = 5
	sentenceStart   = "<s>"
	bigramSeparator = "\x00"
)

// PerplexityModel is a word-bigram language model with add-k smoothing.
// Lower perplexity than held-out reference text maps to a higher score.
// The model is read-only after training and safe for concurrent use.
type PerplexityModel struct {
	unigrams map[string]int
	bigrams  map[string]int
	vocab    int
	center   float64
	spread   float64
}

// TrainPerplexity builds a model from reference texts. It fails with
// domain.ErrScorerUnavailable when the texts hold fewer than minTokens tokens.
//
// The logistic curve is calibrated on held-out windows: the reference is cut
// into fixed-size token windows and each fold of windows is scored by a model
// trained on the other folds. Unseen text in the reference style therefore
// scores near 0.5.
func TrainPerplexity(texts []string, minTokens int) (*PerplexityModel, error) {
	if minTokens <= 0 {
		minTokens = DefaultMinTrainingTokens
	}

	m := &PerplexityModel{
		unigrams: make(map[string]int),
		bigrams:  make(map[string]int),
	}

	var windows [][]string
	total := 0
	for _, t := range texts {
		tokens := Tokenize(nil, t)
		total += len(tokens)
		for start := 0; start < len(tokens); start += windowTokens {
			windows = append(windows, tokens[start:min(start+windowTokens, len(tokens))])
		}
	}
	if total < minTokens {
		return nil, fmt.Errorf("perplexity model: %d training tokens, need %d: %w",
			total, minTokens, domain.ErrScorerUnavailable)
	}
	for _, w := range windows {
		m.count(w, 1)
	}
	m.vocab = len(m.unigrams) + 1

	m.center, m.spread = meanStdDev(m.heldOut(windows))
	if m.spread < minSpread {
		m.spread = minSpread
	}
	return m, nil
}

// heldOut returns the log-perplexity of every window under a model that
// did not see it. Counts are removed for one fold, measured, then restored.
func (m *PerplexityModel) heldOut(windows [][]string) []float64 {
	folds := min(calibrationFold, len(windows))
	logs := make([]float64, 0, len(windows))
	for f := 0; f < folds; f++ {
		for i := f; i < len(windows); i += folds {
			m.count(windows[i], -1)
		}
		for i := f; i < len(windows); i += folds {
			if lp, ok := m.tokensLogPerplexity(windows[i]); ok {
				logs = append(logs, lp)
			}
		}
		for i := f; i < len(windows); i += folds {
			m.count(windows[i], 1)
		}
	}
	return logs
}

// count adds delta to the unigram and bigram counts of one token run.
func (m *PerplexityModel) count(tokens []string, delta int) {
	prev := sentenceStart
	for _, tok := range tokens {
		m.unigrams[prev] += delta
		m.bigrams[prev+bigramSeparator+tok] += delta
		prev = tok
	}
}

// Tier returns domain.ScorerTierPerplexity.
func (m *PerplexityModel) Tier() domain.ScorerTier {
	return domain.ScorerTierPerplexity
}

// Score maps the text's log-perplexity onto [0,1] with a logistic curve.
// Texts with fewer than two tokens score 0.
func (m *PerplexityModel) Score(state *WorkerState, text string) float64 {
	lp, ok := m.logPerplexity(state, text)
	if !ok {
		return 0
	}
	return clamp(sigmoid((m.center-lp)/m.spread), 0, 1)
}

// logPerplexity returns the mean negative log-probability per token.
func (m *PerplexityModel) logPerplexity(state *WorkerState, text string) (float64, bool) {
	state.scratch = Tokenize(state.scratch[:0], text)
	return m.tokensLogPerplexity(state.scratch)
}

func (m *PerplexityModel) tokensLogPerplexity(tokens []string) (float64, bool) {
	if len(tokens) < 2 {
		return 0, false
	}

	var nll float64
	prev := sentenceStart
	for _, tok := range tokens {
		num := float64(m.bigrams[prev+bigramSeparator+tok]) + smoothingK
		den := float64(m.unigrams[prev]) + smoothingK*float64(m.vocab)
		nll -= math.Log(num / den)
		prev = tok
	}
	return nll / float64(len(tokens)), true
}
