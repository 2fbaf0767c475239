package driven

import "github.com/custodia-labs/veritas-cli/internal/core/domain"

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files, embed them in the binary,
// or fetch them from a remote configuration service.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// If the prompt is not found, implementations should return a sensible default
	// or an error, depending on whether the prompt is required.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	// This is useful when prompts may have been edited on disk.
	Reload()
}

// Well-known prompt names used by the verifier.
// These constants define the contract between prompt consumers and providers.
const (
	// PromptVerifySystem is the system prompt shared by every verification.
	// It fixes the JSON response shape. No format placeholders.
	PromptVerifySystem = "verify_system"

	// PromptVerifyPlagiarism judges one segment against candidate previews.
	// Placeholders: %s (unit text), %.2f (local score), %s (candidate block).
	PromptVerifyPlagiarism = "verify_plagiarism"

	// PromptVerifyAI judges whether one sentence is machine-written.
	// Placeholders: %s (unit text), %.2f (local score), %s (candidate block).
	PromptVerifyAI = "verify_ai"

	// PromptVerifyNovelty judges whether one claim is already stated in prior material.
	// Placeholders: %s (unit text), %.2f (local score), %s (candidate block).
	PromptVerifyNovelty = "verify_novelty"
)

// PromptForPipeline returns the prompt name used for a pipeline kind.
func PromptForPipeline(kind domain.PipelineKind) string {
	switch kind {
	case domain.PipelineAI:
		return PromptVerifyAI
	case domain.PipelineNovelty:
		return PromptVerifyNovelty
	default:
		return PromptVerifyPlagiarism
	}
}
