package flagged

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/veritas-cli/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/veritas-cli/internal/core/domain"
)

func sampleReport() *domain.AggregateReport {
	return &domain.AggregateReport{
		ID:         "rep-1",
		Kind:       domain.PipelinePlagiarism,
		StoredName: "essay.txt",
		Units: []domain.UnitResult{
			{Index: 0, Score: 0.97, StyleScore: 0.31, Similarity: 0.97},
			{Index: 1, Score: 0.20, StyleScore: 0.40, Similarity: 0.20},
		},
		Flagged: []domain.FlaggedUnit{{
			UnitIndex: 0,
			Excerpt:   "The industrial revolution transformed Britain.",
			Score:     0.97,
			Verdict: domain.VerificationVerdict{
				Classification: domain.ClassCopied,
				Confidence:     0.9,
				Rationale:      "Verbatim match with the earlier thesis.",
				References:     []domain.Reference{{EntryID: "entry-7", Source: "thesis.pdf", Similarity: 0.97}},
			},
		}},
	}
}

func TestView_RendersUnitAndVerdict(t *testing.T) {
	v := NewView(nil)
	v.SetDimensions(100, 40)
	v.SetUnit(sampleReport(), 0)

	out := v.View()
	assert.Contains(t, out, "Flagged unit #0 of essay.txt")
	assert.Contains(t, out, "industrial revolution")
	assert.Contains(t, out, "copied")
	assert.Contains(t, out, "0.90")
	assert.Contains(t, out, "Verbatim match")
	assert.Contains(t, out, "thesis.pdf")
	assert.Contains(t, out, "0.31")
	require.NotNil(t, v.Unit())
}

func TestView_FallbackVerdict(t *testing.T) {
	report := sampleReport()
	report.Flagged[0].Verdict = domain.VerificationVerdict{
		Classification: domain.ClassCopied,
		Rationale:      "verifier unavailable",
		Fallback:       true,
	}
	v := NewView(nil)
	v.SetDimensions(100, 40)
	v.SetUnit(report, 0)

	out := v.View()
	assert.Contains(t, out, "local fallback")
	assert.NotContains(t, out, "Confidence:")
}

func TestView_OutOfRangeIndex(t *testing.T) {
	v := NewView(nil)
	v.SetUnit(sampleReport(), 5)
	assert.Nil(t, v.Unit())
	assert.Contains(t, v.View(), "No unit selected.")
}

func TestView_Scrolls(t *testing.T) {
	report := sampleReport()
	report.Flagged[0].Verdict.Rationale = strings.Repeat("line of reasoning\n", 50)
	v := NewView(nil)
	v.SetDimensions(80, 10)
	v.SetUnit(report, 0)

	require.Equal(t, 0, v.viewport.YOffset)
	v, _ = v.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 1, v.viewport.YOffset)
}

func TestView_BackToReport(t *testing.T) {
	v := NewView(nil)
	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.Equal(t, messages.ViewChanged{View: messages.ViewReportDetail}, cmd())
}
