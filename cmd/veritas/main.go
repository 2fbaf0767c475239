// Command veritas evaluates documents for plagiarism, AI authorship and novelty.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/custodia-labs/veritas-cli/internal/adapters/driven/ai"
	"github.com/custodia-labs/veritas-cli/internal/adapters/driven/config/file"
	"github.com/custodia-labs/veritas-cli/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/veritas-cli/internal/adapters/driven/vector/flat"
	"github.com/custodia-labs/veritas-cli/internal/adapters/driving/cli"
	"github.com/custodia-labs/veritas-cli/internal/aggregate"
	"github.com/custodia-labs/veritas-cli/internal/candidates"
	"github.com/custodia-labs/veritas-cli/internal/core/domain"
	"github.com/custodia-labs/veritas-cli/internal/core/ports/driven"
	"github.com/custodia-labs/veritas-cli/internal/core/services"
	"github.com/custodia-labs/veritas-cli/internal/corpus"
	"github.com/custodia-labs/veritas-cli/internal/identity"
	"github.com/custodia-labs/veritas-cli/internal/logger"
	"github.com/custodia-labs/veritas-cli/internal/normalisers"
	"github.com/custodia-labs/veritas-cli/internal/scoring"
	"github.com/custodia-labs/veritas-cli/internal/segmenter"
	"github.com/custodia-labs/veritas-cli/internal/verifier"
)

// version is set at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cli.SetVersion(version)
	if err := cli.Execute(context.Background(), bootstrap); err != nil {
		os.Exit(1)
	}
}

// bootstrap wires every adapter and service for one data directory.
func bootstrap(ctx context.Context, dataDir string) (*cli.Services, error) {
	configStore, err := file.NewConfigStore(dataDir)
	if err != nil {
		return nil, fmt.Errorf("opening config: %w", err)
	}
	prompts, err := file.NewPromptStore(filepath.Join(dataDir, "prompts"))
	if err != nil {
		return nil, fmt.Errorf("opening prompts: %w", err)
	}

	settingsService := services.NewSettingsService(configStore, ai.NewConfigValidator())
	settings, err := settingsService.Get()
	if err != nil {
		return nil, fmt.Errorf("loading settings: %w", err)
	}

	store, err := sqlite.NewStore(dataDir)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}

	aiServices := ai.Init(ctx, *settings)
	for _, w := range aiServices.Warnings {
		logger.Warn("AI service unavailable", "reason", w)
	}

	corpora, err := loadCorpora(ctx, store.CorpusRepository(), aiServices.EmbeddingService)
	if err != nil {
		aiServices.Close()
		_ = store.Close()
		return nil, err
	}

	scorer := newScorer(settings)

	seg := segmenter.New(
		segmenter.WithMinChars(settings.Segmenter.MinChars),
		segmenter.WithMaxChars(settings.Segmenter.MaxChars),
		segmenter.WithTargetChars(settings.Segmenter.TargetChars),
	)
	extractors := normalisers.NewDefaultRegistry()
	blobs := store.BlobStore()
	resolver := identity.New(blobs)

	evaluation := services.NewEvaluationService(services.EvaluationComponents{
		Extractors: extractors,
		Resolver:   resolver,
		Segmenter:  seg,
		Scorer:     scorer,
		Selector: candidates.New(
			candidates.WithK(settings.Candidates.K),
			candidates.WithCosineFloor(settings.Candidates.CosineFloor),
			candidates.WithTopN(settings.Candidates.TopN),
			candidates.WithLexicalFloor(settings.Candidates.LexicalFloor),
			candidates.WithMaxComparisons(settings.Candidates.MaxComparisons),
			candidates.WithPreviewChars(settings.Verifier.PreviewChars),
		),
		Verifier: verifier.New(aiServices.LLMService, prompts,
			verifier.WithCallTimeout(settings.Verifier.CallTimeout),
			verifier.WithConcurrency(settings.Verifier.Concurrency),
			verifier.WithRateLimit(settings.Verifier.RatePerMinute),
			verifier.WithPreviewChars(settings.Verifier.PreviewChars),
		),
		Aggregator: aggregate.New(aggregate.WithParaphraseWeight(settings.Pipeline.ParaphraseWeight)),
		Corpora:    corpora,
		Reports:    store.ReportStore(),
	}, settings.Pipeline)

	return &cli.Services{
		Evaluation: evaluation,
		Corpus:     services.NewCorpusService(corpora, extractors, seg, resolver, blobs),
		Report:     services.NewReportService(store.ReportStore()),
		Document:   services.NewDocumentService(blobs),
		Settings:   settingsService,
		Extensions: extractors.SupportedExtensions(),
		Close: func() error {
			aiServices.Close()
			return store.Close()
		},
	}, nil
}

// loadCorpora builds and loads one corpus store per pipeline kind.
func loadCorpora(
	ctx context.Context,
	repo driven.CorpusRepository,
	embedder driven.EmbeddingService,
) (map[domain.PipelineKind]*corpus.Store, error) {
	newIndex := func(dimension int) driven.VectorIndex {
		return flat.New(dimension)
	}

	corpora := make(map[domain.PipelineKind]*corpus.Store)
	var errs []error
	for _, kind := range domain.AllPipelineKinds() {
		opts := []corpus.Option{
			corpus.WithRepository(repo),
			corpus.WithIndexFactory(newIndex),
		}
		if embedder != nil {
			opts = append(opts, corpus.WithEmbedder(embedder))
		}
		store := corpus.NewStore(kind, opts...)
		if err := store.Load(ctx); err != nil {
			errs = append(errs, err)
		}
		corpora[kind] = store
	}
	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("loading corpora: %w", err)
	}
	return corpora, nil
}

// newScorer negotiates the local scorer tier. The perplexity tier trains
// only on the configured reference file, never on the corpora.
func newScorer(settings *domain.AppSettings) *scoring.Scorer {
	backend, warnings := scoring.Negotiate(scoring.NegotiateOptions{
		ClassifierPath: settings.Scorer.ClassifierPath,
		ReferencePath:  settings.Scorer.ReferencePath,
	})
	for _, w := range warnings {
		logger.Warn("local scorer degraded", "reason", w)
	}

	return scoring.New(backend, scoring.WithWorkers(settings.Scorer.Workers))
}
