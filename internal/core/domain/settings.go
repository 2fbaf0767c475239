package domain

import "time"

// AIProvider identifies an AI service provider for embeddings or LLM.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	default:
		return unknownDescription
	}
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint (for Ollama).
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// LLMSettings holds configuration for the LLM used as external verifier.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the LLM model name.
	Model string

	// BaseURL is the API endpoint (for Ollama).
	BaseURL string

	// APIKey is the API key (for OpenAI/Anthropic).
	APIKey string
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// PipelineSettings holds evaluation-wide behaviour.
type PipelineSettings struct {
	// EscalationThreshold is the minimum local score that sends a unit to the verifier.
	EscalationThreshold float64

	// ParaphraseWeight is the contribution of a paraphrased segment relative
	// to a copied one in the plagiarism percentage.
	ParaphraseWeight float64

	// MinContentChars is the minimum extracted text length accepted.
	MinContentChars int

	// RequestTimeout bounds one evaluation end to end.
	RequestTimeout time.Duration
}

// SegmenterSettings holds segment size bounds in characters.
type SegmenterSettings struct {
	MinChars    int
	MaxChars    int
	TargetChars int
}

// CandidateSettings holds candidate selection bounds.
type CandidateSettings struct {
	// K is the number of nearest neighbours requested from the index.
	K int

	// CosineFloor is the minimum vector similarity kept.
	CosineFloor float64

	// TopN caps the shortlist length.
	TopN int

	// LexicalFloor is the minimum character-level similarity kept.
	LexicalFloor float64

	// MaxComparisons caps the corpus texts compared per unit.
	MaxComparisons int
}

// ScorerSettings holds local scorer configuration.
type ScorerSettings struct {
	// Workers is the pool size. Zero means available parallelism.
	// The pool never exceeds eight workers.
	Workers int

	// ClassifierPath points to a JSON weights file for the classifier tier.
	ClassifierPath string

	// ReferencePath points to a text file used to train the perplexity tier.
	ReferencePath string
}

// VerifierSettings holds external verifier call policy.
type VerifierSettings struct {
	// CallTimeout bounds a single verifier call.
	CallTimeout time.Duration

	// Concurrency is the verifier pool size. One means sequential.
	Concurrency int

	// RatePerMinute limits verifier calls. Zero disables limiting.
	RatePerMinute int

	// PreviewChars caps each candidate preview sent to the verifier.
	PreviewChars int
}

// AppSettings holds all application settings.
type AppSettings struct {
	// Embedding holds embedding provider settings.
	Embedding EmbeddingSettings

	// LLM holds verifier LLM settings.
	LLM LLMSettings

	// Pipeline holds evaluation-wide settings.
	Pipeline PipelineSettings

	// Segmenter holds segment size settings.
	Segmenter SegmenterSettings

	// Candidates holds candidate selection settings.
	Candidates CandidateSettings

	// Scorer holds local scorer settings.
	Scorer ScorerSettings

	// Verifier holds verifier call settings.
	Verifier VerifierSettings
}

// DefaultAppSettings returns settings with sensible defaults.
// AI features (Embedding, LLM) are left unconfigured by default.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Embedding: EmbeddingSettings{},
		LLM:       LLMSettings{},
		Pipeline: PipelineSettings{
			EscalationThreshold: 0.65,
			ParaphraseWeight:    0.5,
			MinContentChars:     40,
			RequestTimeout:      2 * time.Minute,
		},
		Segmenter: SegmenterSettings{
			MinChars:    300,
			MaxChars:    1200,
			TargetChars: 900,
		},
		Candidates: CandidateSettings{
			K:              10,
			CosineFloor:    0.55,
			TopN:           8,
			LexicalFloor:   0.18,
			MaxComparisons: 2000,
		},
		Scorer: ScorerSettings{},
		Verifier: VerifierSettings{
			CallTimeout:   30 * time.Second,
			Concurrency:   1,
			RatePerMinute: 60,
			PreviewChars:  300,
		},
	}
}

// AllEmbeddingProviders returns providers that support embeddings.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
	}
}

// AllLLMProviders returns providers that support LLM operations.
func AllLLMProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderAnthropic,
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama: "nomic-embed-text",
		AIProviderOpenAI: "text-embedding-3-small",
	}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama:    "llama3.2",
		AIProviderOpenAI:    "gpt-4o-mini",
		AIProviderAnthropic: "claude-3-5-haiku-latest",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Ollama models
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		"all-minilm":        384,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
	}
}
