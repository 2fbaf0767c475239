package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/veritas-cli/internal/core/domain"
)

func sampleReport() *domain.AggregateReport {
	return &domain.AggregateReport{
		ID:         "rep-1",
		Kind:       domain.PipelinePlagiarism,
		StoredName: "essay-v1.txt",
		Filename:   "essay.txt",
		ScorerTier: domain.ScorerTierHeuristic,
		Percentage: 37.5,
		TotalUnits: 4,
		Escalated:  2,
		Counts: map[domain.Classification]int{
			domain.ClassCopied:   1,
			domain.ClassOriginal: 3,
		},
		FallbackCount: 1,
		MatchedFiles: []domain.MatchedFile{
			{Source: "thesis.pdf", AvgSimilarity: 0.95, References: 2},
		},
		Flagged: []domain.FlaggedUnit{
			{
				UnitIndex: 2,
				Excerpt:   "The   mitochondria\nis the powerhouse",
				Score:     0.97,
				Verdict: domain.VerificationVerdict{
					Classification: domain.ClassCopied,
					Rationale:      "local score fallback",
					Fallback:       true,
				},
			},
		},
	}
}

func TestHeadline(t *testing.T) {
	r := sampleReport()
	assert.Equal(t, "37.5% plagiarised", Headline(r))

	r.Kind = domain.PipelineAI
	assert.Equal(t, "37.5% AI-written", Headline(r))

	r.Kind = domain.PipelineNovelty
	r.Percentage = 100
	assert.Equal(t, "100.0% novel", Headline(r))
}

func TestRenderer_ReportPlain(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, New(false).Report(&buf, sampleReport()))

	out := buf.String()
	assert.Contains(t, out, "Document: essay-v1.txt")
	assert.Contains(t, out, "Uploaded as: essay.txt")
	assert.Contains(t, out, "37.5% plagiarised")
	assert.Contains(t, out, "1 fallback verdicts")
	assert.Contains(t, out, "thesis.pdf")
	assert.Contains(t, out, "95.0%")
	assert.Contains(t, out, "#2 copied score 0.97 (fallback)")
	assert.Contains(t, out, "The mitochondria is the powerhouse")
	assert.NotContains(t, out, "\x1b[", "plain output carries no escape codes")
}

func TestRenderer_SummaryPlain(t *testing.T) {
	line := New(false).Summary(sampleReport())
	assert.Equal(t, "essay-v1.txt  37.5% plagiarised  (plagiarism, 4 units, report rep-1)", line)
}

func TestExcerpt(t *testing.T) {
	assert.Equal(t, "a b", excerpt("  a \n b "))

	long := excerpt(strings.Repeat("x", 500))
	assert.Len(t, []rune(long), excerptWidth)
	assert.True(t, strings.HasSuffix(long, "..."))
}

func TestStyles_Class(t *testing.T) {
	s := NewStyles(nil)
	assert.Equal(t, s.Positive, s.Class(domain.PipelineAI, domain.ClassAI))
	assert.Equal(t, s.Uncertain, s.Class(domain.PipelineAI, domain.ClassUncertain))
	assert.Equal(t, s.Negative, s.Class(domain.PipelineAI, domain.ClassHuman))
	assert.Equal(t, s.Positive, s.Class(domain.PipelineNovelty, domain.ClassMatched))
}

func TestDefaultTheme_ColorsAreDistinct(t *testing.T) {
	theme := DefaultTheme()
	seen := make(map[string]bool)
	for _, c := range []string{
		string(theme.Primary), string(theme.Secondary),
		string(theme.Negative), string(theme.Uncertain), string(theme.Positive),
	} {
		assert.False(t, seen[c], "duplicate colour: %s", c)
		seen[c] = true
	}
}
