package verifier

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/veritas-cli/internal/candidates"
	"github.com/custodia-labs/veritas-cli/internal/core/domain"
	"github.com/custodia-labs/veritas-cli/internal/core/ports/driven"
)

const noCandidates = "(no prior material matched this unit)"

// buildMessages renders the system and user messages for one request.
func (a *Adapter) buildMessages(kind domain.PipelineKind, req domain.VerifyRequest) ([]driven.ChatMessage, error) {
	system, err := a.prompts.Load(driven.PromptVerifySystem)
	if err != nil {
		return nil, fmt.Errorf("load system prompt: %w", err)
	}
	template, err := a.prompts.Load(driven.PromptForPipeline(kind))
	if err != nil {
		return nil, fmt.Errorf("load %s prompt: %w", kind, err)
	}

	user := fmt.Sprintf(template, req.Text, req.Score, a.candidateBlock(req.Candidates))
	return []driven.ChatMessage{
		{Role: "system", Content: system},
		{Role: "user", Content: user},
	}, nil
}

// candidateBlock lists the shortlist with the ids the verifier must cite.
func (a *Adapter) candidateBlock(cands []domain.Candidate) string {
	if len(cands) == 0 {
		return noCandidates
	}
	var b strings.Builder
	for i, c := range cands {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "[id=%s] source=%s similarity=%.2f\n%s",
			c.EntryID, c.Source, c.Similarity, candidates.Truncate(c.Preview, a.previewChars))
	}
	return b.String()
}
