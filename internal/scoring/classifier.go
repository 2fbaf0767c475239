package scoring

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/custodia-labs/veritas-cli/internal/core/domain"
	"github.com/custodia-labs/veritas-cli/internal/core/ports/driven"
)

// Ensure LinearClassifier implements the interface.
var _ driven.Classifier = (*LinearClassifier)(nil)

// Feature names accepted in a weights file.
const (
	FeatureAvgTokenLen       = "avg_token_len"
	FeatureTypeTokenRatio    = "type_token_ratio"
	FeatureAvgSentenceLen    = "avg_sentence_len"
	FeatureSentenceLenStdDev = "sentence_len_stddev"
	FeaturePunctuationRate   = "punctuation_rate"
	FeatureStopwordRatio     = "stopword_ratio"
)

// featureOrder fixes the summation order so scores are bit-for-bit reproducible.
var featureOrder = []string{
	FeatureAvgTokenLen,
	FeatureTypeTokenRatio,
	FeatureAvgSentenceLen,
	FeatureSentenceLenStdDev,
	FeaturePunctuationRate,
	FeatureStopwordRatio,
}

// LinearClassifier is a logistic model over stylometric features.
type LinearClassifier struct {
	ModelName string             `json:"name"`
	Bias      float64            `json:"bias"`
	Weights   map[string]float64 `json:"weights"`
}

// LoadLinearClassifier reads a weights file of the form
//
//	{"name": "stylo-v1", "bias": -1.2, "weights": {"avg_token_len": 0.4, ...}}
//
// Unknown feature names are rejected so typos do not silently zero a weight.
func LoadLinearClassifier(path string) (*LinearClassifier, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read classifier weights: %w", err)
	}

	var c LinearClassifier
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse classifier weights: %w", err)
	}
	if len(c.Weights) == 0 {
		return nil, fmt.Errorf("classifier weights: no weights: %w", domain.ErrInvalidInput)
	}
	for name := range c.Weights {
		if _, ok := featureValue(driven.Features{}, name); !ok {
			return nil, fmt.Errorf("classifier weights: unknown feature %q: %w", name, domain.ErrInvalidInput)
		}
	}
	if c.ModelName == "" {
		c.ModelName = "linear"
	}
	return &c, nil
}

// Name returns the model name.
func (c *LinearClassifier) Name() string {
	return c.ModelName
}

// Classify returns sigmoid(bias + Σ weight·feature).
func (c *LinearClassifier) Classify(f driven.Features) float64 {
	z := c.Bias
	for _, name := range featureOrder {
		if w, ok := c.Weights[name]; ok {
			v, _ := featureValue(f, name)
			z += w * v
		}
	}
	return sigmoid(z)
}

func featureValue(f driven.Features, name string) (float64, bool) {
	switch name {
	case FeatureAvgTokenLen:
		return f.AvgTokenLen, true
	case FeatureTypeTokenRatio:
		return f.TypeTokenRatio, true
	case FeatureAvgSentenceLen:
		return f.AvgSentenceLen, true
	case FeatureSentenceLenStdDev:
		return f.SentenceLenStdDev, true
	case FeaturePunctuationRate:
		return f.PunctuationRate, true
	case FeatureStopwordRatio:
		return f.StopwordRatio, true
	default:
		return 0, false
	}
}
