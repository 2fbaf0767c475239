// Package segmenter splits document text into bounded segments and sentences.
//
// Segmentation is merge-then-split: consecutive paragraphs are merged until a
// minimum length is reached, and any merged segment above the maximum is
// re-split on sentence boundaries, regrouping sentences up to a target length.
// Trailing text below the minimum is still emitted, so no content is dropped.
package segmenter

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/veritas-cli/internal/core/domain"
)

// Default segment bounds in characters.
const (
	DefaultMinChars    = 300
	DefaultMaxChars    = 1200
	DefaultTargetChars = 900
)

// paragraphBreak matches a blank line, possibly holding whitespace.
var paragraphBreak = regexp.MustCompile(`\n[ \t\r\f\v]*\n`)

// Segmenter splits text into segments. It is safe for concurrent use.
type Segmenter struct {
	minChars    int
	maxChars    int
	targetChars int
}

// Option configures the segmenter.
type Option func(*Segmenter)

// WithMinChars sets the length a merged segment must reach before it is emitted.
func WithMinChars(n int) Option {
	return func(s *Segmenter) {
		if n > 0 {
			s.minChars = n
		}
	}
}

// WithMaxChars sets the length above which a segment is re-split.
func WithMaxChars(n int) Option {
	return func(s *Segmenter) {
		if n > 0 {
			s.maxChars = n
		}
	}
}

// WithTargetChars sets the regrouping length used when re-splitting.
func WithTargetChars(n int) Option {
	return func(s *Segmenter) {
		if n > 0 {
			s.targetChars = n
		}
	}
}

// New creates a segmenter with the given options.
func New(opts ...Option) *Segmenter {
	s := &Segmenter{
		minChars:    DefaultMinChars,
		maxChars:    DefaultMaxChars,
		targetChars: DefaultTargetChars,
	}
	for _, opt := range opts {
		opt(s)
	}

	// Keep min <= target <= max.
	if s.maxChars < s.minChars {
		s.maxChars = s.minChars
	}
	if s.targetChars > s.maxChars {
		s.targetChars = s.maxChars
	}
	if s.targetChars < s.minChars {
		s.targetChars = s.minChars
	}

	return s
}

// Segment splits text into ordered segments with their sentences.
// Empty or whitespace-only text yields an empty, non-nil slice.
func (s *Segmenter) Segment(text string) []domain.Segment {
	paragraphs := Paragraphs(text)
	segments := make([]domain.Segment, 0, len(paragraphs)/2+1)

	var current []string
	currentLen := 0

	flush := func() {
		if len(current) == 0 {
			return
		}
		merged := strings.Join(current, "\n\n")
		for _, piece := range s.bound(merged) {
			segments = append(segments, newSegment(len(segments), piece))
		}
		current = current[:0]
		currentLen = 0
	}

	for _, p := range paragraphs {
		if len(current) > 0 {
			currentLen += 2
		}
		current = append(current, p)
		currentLen += utf8.RuneCountInString(p)
		if currentLen >= s.minChars {
			flush()
		}
	}
	// Trailing content below the minimum is still a segment.
	flush()

	return segments
}

// bound returns text as-is when it fits, otherwise regroups its sentences.
func (s *Segmenter) bound(text string) []string {
	if utf8.RuneCountInString(text) <= s.maxChars {
		return []string{text}
	}

	var pieces []string
	var current strings.Builder
	currentLen := 0

	emit := func() {
		if currentLen > 0 {
			pieces = append(pieces, current.String())
			current.Reset()
			currentLen = 0
		}
	}

	for _, sentence := range SplitSentences(text) {
		n := utf8.RuneCountInString(sentence)
		if n > s.maxChars {
			emit()
			pieces = append(pieces, splitWords(sentence, s.targetChars)...)
			continue
		}
		if currentLen > 0 && currentLen+1+n > s.targetChars {
			emit()
		}
		if currentLen > 0 {
			current.WriteByte(' ')
			currentLen++
		}
		current.WriteString(sentence)
		currentLen += n
	}
	emit()

	return pieces
}

// splitWords breaks an oversized run of text on word boundaries into pieces
// of at most limit characters. A single word longer than limit is kept whole.
func splitWords(text string, limit int) []string {
	var pieces []string
	var current strings.Builder
	currentLen := 0

	for _, word := range strings.Fields(text) {
		n := utf8.RuneCountInString(word)
		if currentLen > 0 && currentLen+1+n > limit {
			pieces = append(pieces, current.String())
			current.Reset()
			currentLen = 0
		}
		if currentLen > 0 {
			current.WriteByte(' ')
			currentLen++
		}
		current.WriteString(word)
		currentLen += n
	}
	if currentLen > 0 {
		pieces = append(pieces, current.String())
	}
	return pieces
}

func newSegment(index int, text string) domain.Segment {
	raw := SplitSentences(text)
	sentences := make([]domain.Sentence, len(raw))
	for i, t := range raw {
		sentences[i] = domain.Sentence{Index: i, Text: t}
	}
	return domain.Segment{Index: index, Text: text, Sentences: sentences}
}

// Paragraphs returns the whitespace-normalised paragraphs of text.
// Paragraphs are separated by blank lines; when the text has no blank-line
// structure, every non-blank line is a paragraph.
func Paragraphs(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	if strings.TrimSpace(text) == "" {
		return nil
	}

	var blocks []string
	if paragraphBreak.MatchString(text) {
		blocks = paragraphBreak.Split(text, -1)
	} else {
		blocks = strings.Split(text, "\n")
	}

	paragraphs := make([]string, 0, len(blocks))
	for _, b := range blocks {
		if p := normaliseSpace(b); p != "" {
			paragraphs = append(paragraphs, p)
		}
	}
	return paragraphs
}

// normaliseSpace collapses every whitespace run to a single space.
func normaliseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
