// Package similarity provides cheap character-level text similarity.
//
// Texts are normalised (lower-cased, punctuation dropped, whitespace
// collapsed) and reduced to a set of hashed character trigrams. Two profiles
// are compared with the Dice coefficient; identical normalised texts always
// score exactly 1.
package similarity

import (
	"hash/fnv"
	"strings"
	"unicode"
)

// GramSize is the character n-gram length.
const GramSize = 3

// Profile is the precomputed comparison form of a text.
type Profile struct {
	// Normalised is the normalised text.
	Normalised string

	grams map[uint64]struct{}
}

// NewProfile normalises text and computes its trigram set.
func NewProfile(text string) *Profile {
	norm := Normalise(text)
	return &Profile{Normalised: norm, grams: grams(norm)}
}

// Size returns the number of distinct grams.
func (p *Profile) Size() int {
	return len(p.grams)
}

// Dice returns 2|A∩B| / (|A|+|B|) over the two gram sets, in [0,1].
func Dice(a, b *Profile) float64 {
	if a == nil || b == nil || len(a.grams) == 0 || len(b.grams) == 0 {
		return 0
	}
	if a.Normalised == b.Normalised {
		return 1
	}
	small, large := a.grams, b.grams
	if len(small) > len(large) {
		small, large = large, small
	}
	inter := 0
	for g := range small {
		if _, ok := large[g]; ok {
			inter++
		}
	}
	return 2 * float64(inter) / float64(len(a.grams)+len(b.grams))
}

// Compare is Dice over freshly built profiles.
func Compare(a, b string) float64 {
	return Dice(NewProfile(a), NewProfile(b))
}

// Normalise lower-cases text, drops punctuation and symbols, and collapses
// whitespace. Texts differing only in case, punctuation or spacing
// normalise to the same string.
func Normalise(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	space := true
	for _, r := range s {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(unicode.ToLower(r))
			space = false
		case unicode.IsSpace(r) || unicode.IsPunct(r) || unicode.IsSymbol(r):
			if !space {
				b.WriteByte(' ')
				space = true
			}
		}
	}
	return strings.TrimSpace(b.String())
}

func grams(norm string) map[uint64]struct{} {
	runes := []rune(norm)
	if len(runes) == 0 {
		return nil
	}
	if len(runes) < GramSize {
		return map[uint64]struct{}{hash(string(runes)): {}}
	}
	out := make(map[uint64]struct{}, len(runes))
	for i := 0; i+GramSize <= len(runes); i++ {
		out[hash(string(runes[i:i+GramSize]))] = struct{}{}
	}
	return out
}

func hash(s string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))
	return h.Sum64()
}
