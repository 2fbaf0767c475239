package aggregate

import (
	"fmt"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/veritas-cli/internal/core/domain"
)

func unit(i int, length int, score float64, class domain.Classification, refs ...domain.Reference) domain.UnitResult {
	return domain.UnitResult{
		Index:        i,
		SegmentIndex: i,
		Text:         fmt.Sprintf("unit %d text", i),
		Length:       length,
		Score:        score,
		Verdict:      domain.VerificationVerdict{Classification: class, References: refs},
	}
}

func fixed() []Option {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return []Option{
		WithClock(func() time.Time { return at }),
		WithIDGenerator(func() string { return "report-1" }),
	}
}

func TestAggregate_PlagiarismPercentage(t *testing.T) {
	in := Input{Kind: domain.PipelinePlagiarism, Units: []domain.UnitResult{
		unit(0, 100, 0.95, domain.ClassCopied),
		unit(1, 200, 0.75, domain.ClassParaphrased),
		unit(2, 700, 0.10, domain.ClassOriginal),
	}}

	r := New(fixed()...).Aggregate(in)
	// (100 + 200*0.5) / 1000
	assert.InDelta(t, 20.0, r.Percentage, 1e-9)
	assert.Equal(t, "report-1", r.ID)
	assert.Equal(t, 3, r.TotalUnits)
	assert.Equal(t, 1, r.Counts[domain.ClassCopied])

	r = New(WithParaphraseWeight(1)).Aggregate(in)
	assert.InDelta(t, 30.0, r.Percentage, 1e-9)

	assert.Equal(t, DefaultParaphraseWeight, New(WithParaphraseWeight(3)).ParaphraseWeight())
}

func TestAggregate_AIPercentage(t *testing.T) {
	r := New().Aggregate(Input{Kind: domain.PipelineAI, Units: []domain.UnitResult{
		unit(0, 10, 0.9, domain.ClassAI),
		unit(1, 10, 0.6, domain.ClassUncertain),
		unit(2, 10, 0.2, domain.ClassHuman),
		unit(3, 10, 0.85, domain.ClassAI),
	}})
	assert.InDelta(t, 50.0, r.Percentage, 1e-9)
	require.Len(t, r.Flagged, 2)
	assert.Equal(t, 0, r.Flagged[0].UnitIndex)
	assert.Equal(t, 3, r.Flagged[1].UnitIndex)
}

func TestAggregate_NoveltyPercentage(t *testing.T) {
	r := New().Aggregate(Input{Kind: domain.PipelineNovelty, Units: []domain.UnitResult{
		unit(0, 10, 0.9, domain.ClassMatched),
		unit(1, 10, 0.6, domain.ClassUncertain),
		unit(2, 10, 0.1, domain.ClassUnmatched),
		unit(3, 10, 0.1, domain.ClassUnmatched),
	}})
	assert.InDelta(t, 75.0, r.Percentage, 1e-9)

	empty := New().Aggregate(Input{Kind: domain.PipelineNovelty})
	assert.Equal(t, 100.0, empty.Percentage)
	assert.Equal(t, 0, empty.TotalUnits)
}

func TestAggregate_ZeroOverlapScenario(t *testing.T) {
	for _, tc := range []struct {
		kind  domain.PipelineKind
		class domain.Classification
		want  float64
	}{
		{domain.PipelinePlagiarism, domain.ClassOriginal, 0},
		{domain.PipelineAI, domain.ClassHuman, 0},
		{domain.PipelineNovelty, domain.ClassUnmatched, 100},
	} {
		t.Run(string(tc.kind), func(t *testing.T) {
			units := []domain.UnitResult{unit(0, 50, 0, tc.class), unit(1, 80, 0, tc.class)}
			r := New().Aggregate(Input{Kind: tc.kind, Units: units})
			assert.Equal(t, tc.want, r.Percentage)
			assert.Empty(t, r.MatchedFiles)
			assert.Empty(t, r.Flagged)
		})
	}
}

func TestAggregate_MatchedFiles(t *testing.T) {
	var units []domain.UnitResult
	for i := 0; i < 8; i++ {
		src := fmt.Sprintf("file%d.txt", i)
		units = append(units, unit(i, 10, 0.95, domain.ClassCopied,
			domain.Reference{EntryID: src, Source: src, Similarity: 0.5 + float64(i)/20},
			domain.Reference{EntryID: "shared", Source: "shared.pdf", Similarity: 0.9},
		))
	}

	r := New().Aggregate(Input{Kind: domain.PipelinePlagiarism, Units: units})
	require.Len(t, r.MatchedFiles, DefaultMatchedFilesLimit)
	require.Len(t, r.AllMatchedFiles, 9)

	assert.Equal(t, "shared.pdf", r.MatchedFiles[0].Source)
	assert.Equal(t, 8, r.MatchedFiles[0].References)
	assert.InDelta(t, 0.9, r.MatchedFiles[0].AvgSimilarity, 1e-9)
	assert.Equal(t, "file7.txt", r.MatchedFiles[1].Source)
	for i := 1; i < len(r.AllMatchedFiles); i++ {
		assert.GreaterOrEqual(t, r.AllMatchedFiles[i-1].AvgSimilarity, r.AllMatchedFiles[i].AvgSimilarity)
	}
}

func TestAggregate_MatchedFilesTieBreakByName(t *testing.T) {
	r := New().Aggregate(Input{Kind: domain.PipelineNovelty, Units: []domain.UnitResult{
		unit(0, 1, 0.9, domain.ClassMatched, domain.Reference{Source: "b.txt", Similarity: 0.8}),
		unit(1, 1, 0.9, domain.ClassMatched, domain.Reference{Source: "a.txt", Similarity: 0.8}),
	}})
	require.Len(t, r.MatchedFiles, 2)
	assert.Equal(t, "a.txt", r.MatchedFiles[0].Source)
}

func TestAggregate_FlaggedCapAndOrder(t *testing.T) {
	var units []domain.UnitResult
	for i := 0; i < 40; i++ {
		u := unit(i, 10, float64(i%5)/5+0.1, domain.ClassCopied)
		u.Text = strings.Repeat("x", 500)
		units = append(units, u)
	}

	r := New().Aggregate(Input{Kind: domain.PipelinePlagiarism, Units: units})
	require.Len(t, r.Flagged, DefaultFlaggedLimit)
	for i := 1; i < len(r.Flagged); i++ {
		prev, cur := r.Flagged[i-1], r.Flagged[i]
		assert.True(t, prev.Score > cur.Score || (prev.Score == cur.Score && prev.UnitIndex < cur.UnitIndex))
	}
	for _, f := range r.Flagged {
		assert.LessOrEqual(t, len([]rune(f.Excerpt)), DefaultExcerptChars)
	}
}

func TestAggregate_UnitsOrderedAndCounted(t *testing.T) {
	units := []domain.UnitResult{
		unit(2, 10, 0.1, domain.ClassOriginal),
		unit(0, 10, 0.1, domain.ClassOriginal),
		unit(1, 10, 0.1, domain.ClassOriginal),
	}
	units[1].Escalated = true
	units[2].Verdict.Fallback = true

	r := New().Aggregate(Input{Kind: domain.PipelinePlagiarism, Units: units})
	for i, u := range r.Units {
		assert.Equal(t, i, u.Index)
	}
	assert.Equal(t, 1, r.Escalated)
	assert.Equal(t, 1, r.FallbackCount)
	assert.Equal(t, 2, units[0].Index, "input is not reordered")
}

func TestAggregate_BoundsProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for _, kind := range domain.AllPipelineKinds() {
		classes := kind.Classes()
		for trial := 0; trial < 200; trial++ {
			n := rng.Intn(30)
			units := make([]domain.UnitResult, n)
			for i := range units {
				units[i] = unit(i, rng.Intn(400), rng.Float64(), classes[rng.Intn(len(classes))],
					domain.Reference{Source: fmt.Sprintf("s%d", rng.Intn(12)), Similarity: rng.Float64()})
			}
			r := New().Aggregate(Input{Kind: kind, Units: units})

			assert.GreaterOrEqual(t, r.Percentage, 0.0)
			assert.LessOrEqual(t, r.Percentage, 100.0)
			assert.LessOrEqual(t, len(r.MatchedFiles), DefaultMatchedFilesLimit)
			assert.LessOrEqual(t, len(r.Flagged), DefaultFlaggedLimit)
			sum := 0
			for _, c := range r.Counts {
				sum += c
			}
			assert.Equal(t, n, sum)
		}
	}
}

func TestAggregate_CheckPanics(t *testing.T) {
	a := New()
	assert.Panics(t, func() {
		a.check(&domain.AggregateReport{Percentage: 101})
	})
	assert.Panics(t, func() {
		a.check(&domain.AggregateReport{TotalUnits: 2, Counts: map[domain.Classification]int{domain.ClassAI: 1}})
	})
	assert.NotPanics(t, func() {
		a.check(&domain.AggregateReport{Percentage: 50})
	})
}
