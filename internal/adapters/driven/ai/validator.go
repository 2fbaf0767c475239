package ai

import (
	"context"
	"fmt"

	"github.com/custodia-labs/veritas-cli/internal/core/domain"
	"github.com/custodia-labs/veritas-cli/internal/core/ports/driven"
)

// Ensure ConfigValidator implements the interface.
var _ driven.AIConfigValidator = (*ConfigValidator)(nil)

// probeText is embedded once to confirm the model's vector size.
const probeText = "veritas dimension probe"

// ConfigValidator validates AI provider configurations before they are saved.
type ConfigValidator struct{}

// NewConfigValidator creates a new AI config validator.
func NewConfigValidator() *ConfigValidator {
	return &ConfigValidator{}
}

// ValidateEmbedding pings the provider, then embeds a probe text and checks
// the vector size. Corpus vectors of mixed sizes cannot share one index.
func (v *ConfigValidator) ValidateEmbedding(config *domain.EmbeddingSettings) error {
	svc, err := CreateEmbeddingService(config)
	if err != nil || svc == nil {
		return err
	}
	defer svc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), PingTimeout)
	defer cancel()

	if err := svc.Ping(ctx); err != nil {
		return err
	}
	vec, err := svc.Embed(ctx, probeText)
	if err != nil {
		return fmt.Errorf("embed probe: %w", err)
	}
	if len(vec) != svc.Dimensions() {
		return fmt.Errorf("model %s returned %d dimensions, expected %d", svc.ModelName(), len(vec), svc.Dimensions())
	}
	return nil
}

// ValidateLLM validates an LLM configuration by pinging the provider.
func (v *ConfigValidator) ValidateLLM(config *domain.LLMSettings) error {
	return ValidateLLMConfig(config)
}
