package verifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/veritas-cli/internal/core/domain"
)

func TestParseVerdict_References(t *testing.T) {
	cands := []domain.Candidate{
		{EntryID: "e1", Source: "a.pdf", Similarity: 0.9},
		{EntryID: "e2", Source: "b.pdf", Similarity: 0.6},
	}
	resp := `{"classification":"matched","confidence":0.8,"rationale":"x","references":[
		{"id":"e2","source":"renamed.pdf","similarity":0.65},
		{"id":"ghost","source":"nowhere.pdf","similarity":1},
		{"id":"e1"},
		{"id":"e1","similarity":0.1}
	]}`

	v, err := ParseVerdict(domain.PipelineNovelty, resp, cands)
	require.NoError(t, err)
	assert.Equal(t, []domain.Reference{
		{EntryID: "e2", Source: "renamed.pdf", Similarity: 0.65},
		{EntryID: "e1", Source: "a.pdf", Similarity: 0.9},
	}, v.References)
}

func TestParseVerdict_OutermostBraces(t *testing.T) {
	resp := "```json\n{\"classification\":\"ai\",\"confidence\":0.6,\"rationale\":\"uses {braces}\"}\n```"
	v, err := ParseVerdict(domain.PipelineAI, resp, nil)
	require.NoError(t, err)
	assert.Equal(t, domain.ClassAI, v.Classification)
	assert.Equal(t, "uses {braces}", v.Rationale)
	assert.Nil(t, v.References)
}

func TestParseVerdict_Errors(t *testing.T) {
	for _, resp := range []string{
		"",
		"}{",
		`{"classification":"copied","confidence":"high"}`,
		`{"classification":"","confidence":0.5}`,
	} {
		_, err := ParseVerdict(domain.PipelinePlagiarism, resp, nil)
		assert.ErrorIs(t, err, domain.ErrMalformedVerdict, resp)
	}
}

func TestParseVerdict_NegativeConfidenceClamped(t *testing.T) {
	v, err := ParseVerdict(domain.PipelinePlagiarism, `{"classification":"original","confidence":-3}`, nil)
	require.NoError(t, err)
	assert.Equal(t, 0.0, v.Confidence)
}
