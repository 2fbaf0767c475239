package services

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/veritas-cli/internal/core/domain"
	"github.com/custodia-labs/veritas-cli/internal/core/ports/driven"
	"github.com/custodia-labs/veritas-cli/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyEmbedProvider = "embedding.provider"
	keyEmbedModel    = "embedding.model"
	keyEmbedBaseURL  = "embedding.base_url"
	keyEmbedAPIKey   = "embedding.api_key"
	keyLLMProvider   = "llm.provider"
	keyLLMModel      = "llm.model"
	keyLLMBaseURL    = "llm.base_url"
	keyLLMAPIKey     = "llm.api_key"

	keyEscalationThreshold = "pipeline.escalation_threshold"
	keyParaphraseWeight    = "pipeline.paraphrase_weight"
	keyMinContentChars     = "pipeline.min_content_chars"
	keyRequestTimeout      = "pipeline.request_timeout"

	keySegMinChars    = "segmenter.min_chars"
	keySegMaxChars    = "segmenter.max_chars"
	keySegTargetChars = "segmenter.target_chars"

	keyCandK              = "candidates.k"
	keyCandCosineFloor    = "candidates.cosine_floor"
	keyCandTopN           = "candidates.top_n"
	keyCandLexicalFloor   = "candidates.lexical_floor"
	keyCandMaxComparisons = "candidates.max_comparisons"

	keyScorerWorkers        = "scorer.workers"
	keyScorerClassifierPath = "scorer.classifier_path"
	keyScorerReferencePath  = "scorer.reference_path"

	keyVerifierCallTimeout   = "verifier.call_timeout"
	keyVerifierConcurrency   = "verifier.concurrency"
	keyVerifierRatePerMinute = "verifier.rate_per_minute"
	keyVerifierPreviewChars  = "verifier.preview_chars"
)

// Setting bounds.
const (
	maxScorerWorkers     = 8
	maxVerifierWorkers   = 4
	localProviderBaseURL = "http://localhost:11434"
)

// SettingKeys returns every key accepted by Set, sorted.
func SettingKeys() []string {
	keys := []string{
		keyEmbedProvider, keyEmbedModel, keyEmbedBaseURL, keyEmbedAPIKey,
		keyLLMProvider, keyLLMModel, keyLLMBaseURL, keyLLMAPIKey,
		keyEscalationThreshold, keyParaphraseWeight, keyMinContentChars, keyRequestTimeout,
		keySegMinChars, keySegMaxChars, keySegTargetChars,
		keyCandK, keyCandCosineFloor, keyCandTopN, keyCandLexicalFloor, keyCandMaxComparisons,
		keyScorerWorkers, keyScorerClassifierPath, keyScorerReferencePath,
		keyVerifierCallTimeout, keyVerifierConcurrency, keyVerifierRatePerMinute, keyVerifierPreviewChars,
	}
	slices.Sort(keys)
	return keys
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
	}
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	d := domain.DefaultAppSettings()

	return &domain.AppSettings{
		Embedding: domain.EmbeddingSettings{
			Provider: s.getProvider(keyEmbedProvider, d.Embedding.Provider),
			Model:    s.getString(keyEmbedModel, d.Embedding.Model),
			BaseURL:  s.configStore.GetString(keyEmbedBaseURL), // empty is valid for cloud providers
			APIKey:   s.configStore.GetString(keyEmbedAPIKey),
		},
		LLM: domain.LLMSettings{
			Provider: s.getProvider(keyLLMProvider, d.LLM.Provider),
			Model:    s.getString(keyLLMModel, d.LLM.Model),
			BaseURL:  s.configStore.GetString(keyLLMBaseURL),
			APIKey:   s.configStore.GetString(keyLLMAPIKey),
		},
		Pipeline: domain.PipelineSettings{
			EscalationThreshold: s.getFloat(keyEscalationThreshold, d.Pipeline.EscalationThreshold),
			ParaphraseWeight:    s.getFloat(keyParaphraseWeight, d.Pipeline.ParaphraseWeight),
			MinContentChars:     s.getInt(keyMinContentChars, d.Pipeline.MinContentChars),
			RequestTimeout:      s.getDuration(keyRequestTimeout, d.Pipeline.RequestTimeout),
		},
		Segmenter: domain.SegmenterSettings{
			MinChars:    s.getInt(keySegMinChars, d.Segmenter.MinChars),
			MaxChars:    s.getInt(keySegMaxChars, d.Segmenter.MaxChars),
			TargetChars: s.getInt(keySegTargetChars, d.Segmenter.TargetChars),
		},
		Candidates: domain.CandidateSettings{
			K:              s.getInt(keyCandK, d.Candidates.K),
			CosineFloor:    s.getFloat(keyCandCosineFloor, d.Candidates.CosineFloor),
			TopN:           s.getInt(keyCandTopN, d.Candidates.TopN),
			LexicalFloor:   s.getFloat(keyCandLexicalFloor, d.Candidates.LexicalFloor),
			MaxComparisons: s.getInt(keyCandMaxComparisons, d.Candidates.MaxComparisons),
		},
		Scorer: domain.ScorerSettings{
			Workers:        s.getInt(keyScorerWorkers, d.Scorer.Workers),
			ClassifierPath: s.configStore.GetString(keyScorerClassifierPath),
			ReferencePath:  s.configStore.GetString(keyScorerReferencePath),
		},
		Verifier: domain.VerifierSettings{
			CallTimeout:   s.getDuration(keyVerifierCallTimeout, d.Verifier.CallTimeout),
			Concurrency:   s.getInt(keyVerifierConcurrency, d.Verifier.Concurrency),
			RatePerMinute: s.getInt(keyVerifierRatePerMinute, d.Verifier.RatePerMinute),
			PreviewChars:  s.getInt(keyVerifierPreviewChars, d.Verifier.PreviewChars),
		},
	}, nil
}

// Save persists application settings.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	if err := validateSettings(settings); err != nil {
		return err
	}

	values := []struct {
		key   string
		value any
	}{
		{keyEmbedProvider, settings.Embedding.Provider.String()},
		{keyEmbedModel, settings.Embedding.Model},
		{keyEmbedBaseURL, settings.Embedding.BaseURL},
		{keyLLMProvider, settings.LLM.Provider.String()},
		{keyLLMModel, settings.LLM.Model},
		{keyLLMBaseURL, settings.LLM.BaseURL},
		{keyEscalationThreshold, settings.Pipeline.EscalationThreshold},
		{keyParaphraseWeight, settings.Pipeline.ParaphraseWeight},
		{keyMinContentChars, settings.Pipeline.MinContentChars},
		{keyRequestTimeout, settings.Pipeline.RequestTimeout.String()},
		{keySegMinChars, settings.Segmenter.MinChars},
		{keySegMaxChars, settings.Segmenter.MaxChars},
		{keySegTargetChars, settings.Segmenter.TargetChars},
		{keyCandK, settings.Candidates.K},
		{keyCandCosineFloor, settings.Candidates.CosineFloor},
		{keyCandTopN, settings.Candidates.TopN},
		{keyCandLexicalFloor, settings.Candidates.LexicalFloor},
		{keyCandMaxComparisons, settings.Candidates.MaxComparisons},
		{keyScorerWorkers, settings.Scorer.Workers},
		{keyScorerClassifierPath, settings.Scorer.ClassifierPath},
		{keyScorerReferencePath, settings.Scorer.ReferencePath},
		{keyVerifierCallTimeout, settings.Verifier.CallTimeout.String()},
		{keyVerifierConcurrency, settings.Verifier.Concurrency},
		{keyVerifierRatePerMinute, settings.Verifier.RatePerMinute},
		{keyVerifierPreviewChars, settings.Verifier.PreviewChars},
	}
	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}

	// API keys are only written when present so a save never clears them.
	if settings.Embedding.APIKey != "" {
		if err := s.configStore.Set(keyEmbedAPIKey, settings.Embedding.APIKey); err != nil {
			return fmt.Errorf("save embedding api_key: %w", err)
		}
	}
	if settings.LLM.APIKey != "" {
		if err := s.configStore.Set(keyLLMAPIKey, settings.LLM.APIKey); err != nil {
			return fmt.Errorf("save llm api_key: %w", err)
		}
	}
	return nil
}

// Set updates a single setting by its config key. The value is parsed for the
// key's type and the resulting settings must pass Validate.
func (s *SettingsService) Set(key, value string) error {
	settings, err := s.Get()
	if err != nil {
		return err
	}
	stored, err := applySetting(settings, key, strings.TrimSpace(value))
	if err != nil {
		return err
	}
	if err := validateSettings(settings); err != nil {
		return err
	}
	if err := s.configStore.Set(key, stored); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// SetEmbeddingProvider configures the embedding provider.
func (s *SettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid embedding provider: %s: %w", provider, domain.ErrInvalidInput)
	}
	if !slices.Contains(domain.AllEmbeddingProviders(), provider) {
		return fmt.Errorf("provider %s does not support embeddings: %w", provider, domain.ErrInvalidInput)
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("API key required for %s: %w", provider, domain.ErrInvalidInput)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.Embedding.Provider = provider
	settings.Embedding.Model = modelOrDefault(model, domain.DefaultEmbeddingModels()[provider])
	settings.Embedding.BaseURL = baseURLFor(provider, settings.Embedding.BaseURL)
	settings.Embedding.APIKey = apiKey

	return s.Save(settings)
}

// SetLLMProvider configures the verifier LLM provider.
func (s *SettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid LLM provider: %s: %w", provider, domain.ErrInvalidInput)
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("API key required for %s: %w", provider, domain.ErrInvalidInput)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.LLM.Provider = provider
	settings.LLM.Model = modelOrDefault(model, domain.DefaultLLMModels()[provider])
	settings.LLM.BaseURL = baseURLFor(provider, settings.LLM.BaseURL)
	settings.LLM.APIKey = apiKey

	return s.Save(settings)
}

// Validate checks that current settings are internally consistent.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return validateSettings(settings)
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
func (s *SettingsService) ValidateEmbeddingConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateEmbedding(&settings.Embedding)
}

// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
func (s *SettingsService) ValidateLLMConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateLLM(&settings.LLM)
}

// applySetting parses value into the field named by key and returns the
// value to store.
//
//nolint:gocyclo // one case per key
func applySetting(st *domain.AppSettings, key, value string) (any, error) {
	switch key {
	case keyEmbedProvider:
		p, err := parseProvider(value)
		if err != nil {
			return nil, err
		}
		if p != "" && !slices.Contains(domain.AllEmbeddingProviders(), p) {
			return nil, fmt.Errorf("provider %s does not support embeddings: %w", p, domain.ErrInvalidInput)
		}
		st.Embedding.Provider = p
		return value, nil
	case keyEmbedModel:
		st.Embedding.Model = value
		return value, nil
	case keyEmbedBaseURL:
		st.Embedding.BaseURL = value
		return value, nil
	case keyEmbedAPIKey:
		st.Embedding.APIKey = value
		return value, nil
	case keyLLMProvider:
		p, err := parseProvider(value)
		if err != nil {
			return nil, err
		}
		st.LLM.Provider = p
		return value, nil
	case keyLLMModel:
		st.LLM.Model = value
		return value, nil
	case keyLLMBaseURL:
		st.LLM.BaseURL = value
		return value, nil
	case keyLLMAPIKey:
		st.LLM.APIKey = value
		return value, nil

	case keyEscalationThreshold:
		return setFloat(&st.Pipeline.EscalationThreshold, key, value)
	case keyParaphraseWeight:
		return setFloat(&st.Pipeline.ParaphraseWeight, key, value)
	case keyMinContentChars:
		return setInt(&st.Pipeline.MinContentChars, key, value)
	case keyRequestTimeout:
		return setDuration(&st.Pipeline.RequestTimeout, key, value)

	case keySegMinChars:
		return setInt(&st.Segmenter.MinChars, key, value)
	case keySegMaxChars:
		return setInt(&st.Segmenter.MaxChars, key, value)
	case keySegTargetChars:
		return setInt(&st.Segmenter.TargetChars, key, value)

	case keyCandK:
		return setInt(&st.Candidates.K, key, value)
	case keyCandCosineFloor:
		return setFloat(&st.Candidates.CosineFloor, key, value)
	case keyCandTopN:
		return setInt(&st.Candidates.TopN, key, value)
	case keyCandLexicalFloor:
		return setFloat(&st.Candidates.LexicalFloor, key, value)
	case keyCandMaxComparisons:
		return setInt(&st.Candidates.MaxComparisons, key, value)

	case keyScorerWorkers:
		return setInt(&st.Scorer.Workers, key, value)
	case keyScorerClassifierPath:
		st.Scorer.ClassifierPath = value
		return value, nil
	case keyScorerReferencePath:
		st.Scorer.ReferencePath = value
		return value, nil

	case keyVerifierCallTimeout:
		return setDuration(&st.Verifier.CallTimeout, key, value)
	case keyVerifierConcurrency:
		return setInt(&st.Verifier.Concurrency, key, value)
	case keyVerifierRatePerMinute:
		return setInt(&st.Verifier.RatePerMinute, key, value)
	case keyVerifierPreviewChars:
		return setInt(&st.Verifier.PreviewChars, key, value)
	}
	return nil, fmt.Errorf("unknown setting %q: %w", key, domain.ErrInvalidInput)
}

// SettingValue returns the current value of a key accepted by Set, in the
// form Set parses.
func SettingValue(st *domain.AppSettings, key string) (string, error) {
	switch key {
	case keyEmbedProvider:
		return string(st.Embedding.Provider), nil
	case keyEmbedModel:
		return st.Embedding.Model, nil
	case keyEmbedBaseURL:
		return st.Embedding.BaseURL, nil
	case keyEmbedAPIKey:
		return st.Embedding.APIKey, nil
	case keyLLMProvider:
		return string(st.LLM.Provider), nil
	case keyLLMModel:
		return st.LLM.Model, nil
	case keyLLMBaseURL:
		return st.LLM.BaseURL, nil
	case keyLLMAPIKey:
		return st.LLM.APIKey, nil

	case keyEscalationThreshold:
		return formatFloat(st.Pipeline.EscalationThreshold), nil
	case keyParaphraseWeight:
		return formatFloat(st.Pipeline.ParaphraseWeight), nil
	case keyMinContentChars:
		return strconv.Itoa(st.Pipeline.MinContentChars), nil
	case keyRequestTimeout:
		return st.Pipeline.RequestTimeout.String(), nil

	case keySegMinChars:
		return strconv.Itoa(st.Segmenter.MinChars), nil
	case keySegMaxChars:
		return strconv.Itoa(st.Segmenter.MaxChars), nil
	case keySegTargetChars:
		return strconv.Itoa(st.Segmenter.TargetChars), nil

	case keyCandK:
		return strconv.Itoa(st.Candidates.K), nil
	case keyCandCosineFloor:
		return formatFloat(st.Candidates.CosineFloor), nil
	case keyCandTopN:
		return strconv.Itoa(st.Candidates.TopN), nil
	case keyCandLexicalFloor:
		return formatFloat(st.Candidates.LexicalFloor), nil
	case keyCandMaxComparisons:
		return strconv.Itoa(st.Candidates.MaxComparisons), nil

	case keyScorerWorkers:
		return strconv.Itoa(st.Scorer.Workers), nil
	case keyScorerClassifierPath:
		return st.Scorer.ClassifierPath, nil
	case keyScorerReferencePath:
		return st.Scorer.ReferencePath, nil

	case keyVerifierCallTimeout:
		return st.Verifier.CallTimeout.String(), nil
	case keyVerifierConcurrency:
		return strconv.Itoa(st.Verifier.Concurrency), nil
	case keyVerifierRatePerMinute:
		return strconv.Itoa(st.Verifier.RatePerMinute), nil
	case keyVerifierPreviewChars:
		return strconv.Itoa(st.Verifier.PreviewChars), nil
	}
	return "", fmt.Errorf("unknown setting %q: %w", key, domain.ErrInvalidInput)
}

// IsSecretSetting reports whether a key holds a credential.
func IsSecretSetting(key string) bool {
	return key == keyEmbedAPIKey || key == keyLLMAPIKey
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// validateSettings checks ranges and cross-field constraints.
func validateSettings(st *domain.AppSettings) error {
	var problems []string
	check := func(ok bool, format string, args ...any) {
		if !ok {
			problems = append(problems, fmt.Sprintf(format, args...))
		}
	}

	p := st.Pipeline
	check(p.EscalationThreshold >= 0 && p.EscalationThreshold <= 1,
		"%s must be in [0,1]", keyEscalationThreshold)
	check(p.ParaphraseWeight >= 0 && p.ParaphraseWeight <= 1,
		"%s must be in [0,1]", keyParaphraseWeight)
	check(p.MinContentChars >= 1, "%s must be at least 1", keyMinContentChars)
	check(p.RequestTimeout > 0, "%s must be positive", keyRequestTimeout)

	sg := st.Segmenter
	check(sg.MinChars > 0 && sg.MinChars <= sg.TargetChars && sg.TargetChars <= sg.MaxChars,
		"segmenter sizes must satisfy 0 < min_chars <= target_chars <= max_chars")

	c := st.Candidates
	check(c.K > 0, "%s must be positive", keyCandK)
	check(c.TopN > 0, "%s must be positive", keyCandTopN)
	check(c.MaxComparisons > 0, "%s must be positive", keyCandMaxComparisons)
	check(c.CosineFloor >= 0 && c.CosineFloor <= 1, "%s must be in [0,1]", keyCandCosineFloor)
	check(c.LexicalFloor >= 0 && c.LexicalFloor <= 1, "%s must be in [0,1]", keyCandLexicalFloor)

	check(st.Scorer.Workers >= 0 && st.Scorer.Workers <= maxScorerWorkers,
		"%s must be in [0,%d]", keyScorerWorkers, maxScorerWorkers)

	v := st.Verifier
	check(v.CallTimeout > 0, "%s must be positive", keyVerifierCallTimeout)
	check(v.Concurrency >= 1 && v.Concurrency <= maxVerifierWorkers,
		"%s must be in [1,%d]", keyVerifierConcurrency, maxVerifierWorkers)
	check(v.RatePerMinute >= 0, "%s must not be negative", keyVerifierRatePerMinute)
	check(v.PreviewChars > 0, "%s must be positive", keyVerifierPreviewChars)

	if len(problems) > 0 {
		return fmt.Errorf("invalid settings: %s: %w", strings.Join(problems, "; "), domain.ErrInvalidInput)
	}
	return nil
}

func parseProvider(value string) (domain.AIProvider, error) {
	if value == "" {
		return "", nil
	}
	p := domain.AIProvider(value)
	if !p.IsValid() {
		return "", fmt.Errorf("invalid provider %q: %w", value, domain.ErrInvalidInput)
	}
	return p, nil
}

func setInt(dst *int, key, value string) (any, error) {
	n, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("%s: %q is not an integer: %w", key, value, domain.ErrInvalidInput)
	}
	*dst = n
	return n, nil
}

func setFloat(dst *float64, key, value string) (any, error) {
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, fmt.Errorf("%s: %q is not a number: %w", key, value, domain.ErrInvalidInput)
	}
	*dst = f
	return f, nil
}

func setDuration(dst *time.Duration, key, value string) (any, error) {
	d, err := time.ParseDuration(value)
	if err != nil {
		return nil, fmt.Errorf("%s: %q is not a duration: %w", key, value, domain.ErrInvalidInput)
	}
	*dst = d
	return d.String(), nil
}

func modelOrDefault(model, fallback string) string {
	if model != "" {
		return model
	}
	return fallback
}

// baseURLFor keeps a configured base URL for local providers and clears it
// for cloud providers.
func baseURLFor(provider domain.AIProvider, current string) string {
	if !provider.IsLocal() {
		return ""
	}
	if current == "" {
		return localProviderBaseURL
	}
	return current
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetFloat(key)
}

func (s *SettingsService) getDuration(key string, defaultVal time.Duration) time.Duration {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return defaultVal
	}
	return d
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	provider := domain.AIProvider(val)
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}
