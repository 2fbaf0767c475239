package scoring

import (
	"math"
	"strings"
	"unicode"

	"github.com/custodia-labs/veritas-cli/internal/core/ports/driven"
	"github.com/custodia-labs/veritas-cli/internal/segmenter"
)

var stopwords = map[string]bool{
	"a": true, "an": true, "the": true, "and": true, "or": true, "but": true, "if": true,
	"of": true, "to": true, "in": true, "on": true, "at": true, "by": true, "for": true,
	"with": true, "as": true, "is": true, "are": true, "was": true, "were": true, "be": true,
	"been": true, "it": true, "its": true, "this": true, "that": true, "these": true,
	"those": true, "from": true, "not": true, "no": true, "we": true, "you": true, "they": true,
	"he": true, "she": true, "i": true, "which": true, "who": true, "what": true, "has": true,
	"have": true, "had": true, "do": true, "does": true, "can": true, "will": true, "would": true,
}

// Tokenize appends the lower-cased word tokens of text to buf and returns it.
// A token is a run of letters, digits and inner apostrophes.
func Tokenize(buf []string, text string) []string {
	start := -1
	for i, r := range text {
		word := unicode.IsLetter(r) || unicode.IsDigit(r) || (r == '\'' && start >= 0)
		if word && start < 0 {
			start = i
		}
		if !word && start >= 0 {
			buf = append(buf, strings.ToLower(strings.TrimRight(text[start:i], "'")))
			start = -1
		}
	}
	if start >= 0 {
		buf = append(buf, strings.ToLower(strings.TrimRight(text[start:], "'")))
	}
	return buf
}

// ExtractFeatures measures the stylometric features of text.
// The state's token buffer is reused across calls.
func ExtractFeatures(state *WorkerState, text string) driven.Features {
	state.tokens = Tokenize(state.tokens[:0], text)
	tokens := state.tokens

	var f driven.Features
	f.Tokens = len(tokens)
	if f.Tokens == 0 {
		return f
	}

	clear(state.seen)
	totalLen, stops := 0, 0
	for _, t := range tokens {
		totalLen += len([]rune(t))
		state.seen[t] = struct{}{}
		if stopwords[t] {
			stops++
		}
	}
	f.AvgTokenLen = float64(totalLen) / float64(f.Tokens)
	f.TypeTokenRatio = float64(len(state.seen)) / float64(f.Tokens)
	f.StopwordRatio = float64(stops) / float64(f.Tokens)

	punct := 0
	for _, r := range text {
		if unicode.IsPunct(r) {
			punct++
		}
	}
	f.PunctuationRate = float64(punct) / float64(f.Tokens)

	sentences := segmenter.SplitSentences(text)
	lengths := make([]float64, 0, len(sentences))
	for _, s := range sentences {
		state.scratch = Tokenize(state.scratch[:0], s)
		if n := len(state.scratch); n > 0 {
			lengths = append(lengths, float64(n))
		}
	}
	f.AvgSentenceLen, f.SentenceLenStdDev = meanStdDev(lengths)

	return f
}

func meanStdDev(xs []float64) (float64, float64) {
	if len(xs) == 0 {
		return 0, 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	mean := sum / float64(len(xs))
	var sq float64
	for _, x := range xs {
		sq += (x - mean) * (x - mean)
	}
	return mean, math.Sqrt(sq / float64(len(xs)))
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}
