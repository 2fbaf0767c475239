package segmenter

import (
	"strings"
	"unicode"
)

// abbreviations never end a sentence when followed by a period.
var abbreviations = map[string]bool{
	"e.g": true, "i.e": true, "etc": true, "vs": true, "cf": true,
	"mr": true, "mrs": true, "ms": true, "dr": true, "prof": true, "st": true,
	"fig": true, "no": true, "al": true, "approx": true, "eq": true,
}

// SplitSentences splits text on sentence boundaries. Every non-space
// character of text belongs to exactly one returned sentence, in order.
// Paragraph breaks always end a sentence.
func SplitSentences(text string) []string {
	runes := []rune(strings.ReplaceAll(text, "\r\n", "\n"))
	var sentences []string
	start := 0

	emit := func(end int) {
		if s := normaliseSpace(string(runes[start:end])); s != "" {
			sentences = append(sentences, s)
		}
		start = end
	}

	for i := 0; i < len(runes); i++ {
		r := runes[i]

		if r == '\n' && i+1 < len(runes) && isBlankLineAhead(runes, i+1) {
			emit(i)
			continue
		}

		if !isTerminal(r) {
			continue
		}

		// Consume the whole terminal run and any closing quotes or brackets.
		j := i + 1
		for j < len(runes) && (isTerminal(runes[j]) || isCloser(runes[j])) {
			j++
		}
		if j < len(runes) && !unicode.IsSpace(runes[j]) {
			i = j - 1
			continue
		}
		if r == '.' && isAbbreviation(runes[start:i]) {
			i = j - 1
			continue
		}
		emit(j)
		i = j - 1
	}
	emit(len(runes))

	return sentences
}

// isBlankLineAhead reports whether runes from i hold only spaces or tabs up
// to the next newline.
func isBlankLineAhead(runes []rune, i int) bool {
	for ; i < len(runes); i++ {
		switch runes[i] {
		case '\n':
			return true
		case ' ', '\t', '\r':
		default:
			return false
		}
	}
	return false
}

func isTerminal(r rune) bool {
	return r == '.' || r == '!' || r == '?' || r == '…'
}

func isCloser(r rune) bool {
	switch r {
	case '"', '\'', ')', ']', '”', '’', '»':
		return true
	}
	return false
}

// isAbbreviation reports whether the word ending just before a period is a
// known abbreviation or a single-letter initial.
func isAbbreviation(before []rune) bool {
	k := len(before)
	for k > 0 && !unicode.IsSpace(before[k-1]) && before[k-1] != '(' {
		k--
	}
	word := strings.ToLower(string(before[k:]))
	if word == "" {
		return false
	}
	if abbreviations[word] {
		return true
	}
	w := []rune(word)
	return len(w) == 1 && unicode.IsLetter(w[0]) && unicode.IsUpper(before[k])
}
