package scoring

import (
	"fmt"
	"os"

	"github.com/custodia-labs/veritas-cli/internal/core/ports/driven"
	"github.com/custodia-labs/veritas-cli/internal/logger"
)

// NegotiateOptions lists the capabilities available for local scoring.
type NegotiateOptions struct {
	// Classifier is an injected classifier. Takes precedence over ClassifierPath.
	Classifier driven.Classifier

	// ClassifierPath points to a LinearClassifier weights file.
	ClassifierPath string

	// ReferencePath points to a text file used to train the perplexity model.
	ReferencePath string

	// ReferenceTexts are additional training texts. They must not overlap
	// the documents being scored.
	ReferenceTexts []string

	// MinTrainingTokens overrides DefaultMinTrainingTokens.
	MinTrainingTokens int
}

// Negotiate selects the most preferred backend that can be initialised.
// It never fails: every unavailable tier adds a warning and the heuristic
// tier is the floor.
func Negotiate(opts NegotiateOptions) (Backend, []string) {
	var warnings []string

	classifier := opts.Classifier
	if classifier == nil && opts.ClassifierPath != "" {
		loaded, err := LoadLinearClassifier(opts.ClassifierPath)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("classifier tier unavailable: %v", err))
		} else {
			classifier = loaded
		}
	}
	if classifier != nil {
		logger.Info("local scorer: classifier %s", classifier.Name())
		return NewClassifierBackend(classifier), warnings
	}

	texts := opts.ReferenceTexts
	if opts.ReferencePath != "" {
		data, err := os.ReadFile(opts.ReferencePath)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("perplexity reference unreadable: %v", err))
		} else {
			texts = append([]string{string(data)}, texts...)
		}
	}
	if len(texts) > 0 {
		model, err := TrainPerplexity(texts, opts.MinTrainingTokens)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("perplexity tier unavailable: %v", err))
		} else {
			logger.Info("local scorer: perplexity model over %d texts", len(texts))
			return model, warnings
		}
	}

	logger.Info("local scorer: heuristic")
	return HeuristicBackend{}, warnings
}
