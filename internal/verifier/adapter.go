// Package verifier escalates uncertain units to an external LLM verifier.
//
// Every unit gets exactly one call. Any failure (transport error, timeout,
// rate limit, unparseable or invalid answer, or no LLM at all) is absorbed
// into a fallback verdict derived from the unit's local score, so a run
// always completes with one verdict per unit.
package verifier

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/veritas-cli/internal/core/domain"
	"github.com/custodia-labs/veritas-cli/internal/core/ports/driven"
	"github.com/custodia-labs/veritas-cli/internal/logger"
)

// Adapter defaults.
const (
	DefaultCallTimeout   = 30 * time.Second
	DefaultConcurrency   = 1
	MaxConcurrency       = 4
	DefaultRatePerMinute = 60
	DefaultPreviewChars  = 300

	maxResponseTokens = 512
)

// Fallback reasons.
const (
	ReasonBelowThreshold = "below threshold"
	ReasonUnavailable    = "verifier unavailable"
	ReasonDeadline       = "request deadline exceeded"
	ReasonTimeout        = "verifier call timed out"
	ReasonRateLimited    = "rate limited"
	ReasonCallFailed     = "verifier call failed"
	ReasonMalformed      = "malformed verifier response"
	ReasonPrompt         = "prompt unavailable"
)

// Adapter calls the LLM verifier. It is safe for concurrent use.
type Adapter struct {
	llm          driven.LLMService
	prompts      driven.PromptStore
	callTimeout  time.Duration
	concurrency  int
	limiter      *RateLimiter
	previewChars int
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithCallTimeout bounds each external call.
func WithCallTimeout(d time.Duration) Option {
	return func(a *Adapter) {
		if d > 0 {
			a.callTimeout = d
		}
	}
}

// WithConcurrency sets how many calls VerifyAll runs at once, capped at MaxConcurrency.
func WithConcurrency(n int) Option {
	return func(a *Adapter) {
		a.concurrency = n
	}
}

// WithRateLimit sets the sustained call rate in requests per minute.
func WithRateLimit(perMinute int) Option {
	return func(a *Adapter) {
		a.limiter = NewRateLimiter(perMinute)
	}
}

// WithRateLimiter shares an existing limiter.
func WithRateLimiter(l *RateLimiter) Option {
	return func(a *Adapter) {
		if l != nil {
			a.limiter = l
		}
	}
}

// WithPreviewChars bounds the candidate previews sent to the verifier.
func WithPreviewChars(n int) Option {
	return func(a *Adapter) {
		if n > 0 {
			a.previewChars = n
		}
	}
}

// New creates an adapter. llm may be nil, in which case every verification
// falls back.
func New(llm driven.LLMService, prompts driven.PromptStore, opts ...Option) *Adapter {
	a := &Adapter{
		llm:          llm,
		prompts:      prompts,
		callTimeout:  DefaultCallTimeout,
		concurrency:  DefaultConcurrency,
		previewChars: DefaultPreviewChars,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.concurrency < 1 {
		a.concurrency = 1
	}
	if a.concurrency > MaxConcurrency {
		a.concurrency = MaxConcurrency
	}
	if a.limiter == nil {
		a.limiter = NewRateLimiter(DefaultRatePerMinute)
	}
	return a
}

// Available reports whether an LLM is configured.
func (a *Adapter) Available() bool {
	return a.llm != nil && a.prompts != nil
}

// Concurrency returns the VerifyAll pool size.
func (a *Adapter) Concurrency() int {
	return a.concurrency
}

// Verify makes exactly one external call for req. It never fails: every
// error yields the fallback verdict for req's score.
func (a *Adapter) Verify(ctx context.Context, kind domain.PipelineKind, req domain.VerifyRequest) domain.VerificationVerdict {
	if !a.Available() {
		return Fallback(kind, req.Score, ReasonUnavailable, req.Candidates)
	}
	if ctx.Err() != nil {
		return Fallback(kind, req.Score, ReasonDeadline, req.Candidates)
	}

	messages, err := a.buildMessages(kind, req)
	if err != nil {
		logger.Warn("verifier prompt unavailable", "unit", req.UnitIndex, "err", err)
		return Fallback(kind, req.Score, ReasonPrompt, req.Candidates)
	}

	callCtx, cancel := context.WithTimeout(ctx, a.callTimeout)
	defer cancel()

	if err := a.limiter.Wait(callCtx); err != nil {
		logger.Warn("verifier call skipped", "unit", req.UnitIndex, "err", err)
		return Fallback(kind, req.Score, a.reason(ctx, callCtx, err), req.Candidates)
	}

	response, err := a.call(callCtx, messages)
	if err != nil {
		var rl *domain.RateLimitError
		if errors.As(err, &rl) {
			a.limiter.Backoff(rl.RetryAfter)
		} else if errors.Is(err, domain.ErrRateLimited) {
			a.limiter.Backoff(0)
		}
		logger.Warn("verifier call failed", "unit", req.UnitIndex, "kind", kind, "err", err)
		return Fallback(kind, req.Score, a.reason(ctx, callCtx, err), req.Candidates)
	}

	verdict, err := ParseVerdict(kind, response, req.Candidates)
	if err != nil {
		logger.Warn("verifier response rejected", "unit", req.UnitIndex, "kind", kind, "err", err)
		return Fallback(kind, req.Score, ReasonMalformed, req.Candidates)
	}
	logger.Debug("unit %d verified as %s (%.2f)", req.UnitIndex, verdict.Classification, verdict.Confidence)
	return verdict
}

// VerifyAll verifies every request on a bounded pool. The result at index i
// always belongs to reqs[i]. When ctx ends, calls not yet finished fall back.
func (a *Adapter) VerifyAll(ctx context.Context, kind domain.PipelineKind, reqs []domain.VerifyRequest) []domain.VerificationVerdict {
	out := make([]domain.VerificationVerdict, len(reqs))
	if len(reqs) == 0 {
		return out
	}

	if a.concurrency == 1 {
		for i := range reqs {
			out[i] = a.Verify(ctx, kind, reqs[i])
		}
		return out
	}

	var g errgroup.Group
	g.SetLimit(a.concurrency)
	for i := range reqs {
		g.Go(func() error {
			out[i] = a.Verify(ctx, kind, reqs[i])
			return nil
		})
	}
	_ = g.Wait()
	return out
}

// call runs one chat completion and abandons it when ctx ends, even if the
// provider does not honour cancellation.
func (a *Adapter) call(ctx context.Context, messages []driven.ChatMessage) (string, error) {
	type result struct {
		text string
		err  error
	}
	done := make(chan result, 1)
	go func() {
		text, err := a.llm.Chat(ctx, messages, driven.ChatOptions{
			MaxTokens:   maxResponseTokens,
			Temperature: 0,
			JSON:        true,
		})
		done <- result{text: text, err: err}
	}()

	select {
	case r := <-done:
		if r.err != nil {
			return "", fmt.Errorf("%w: %w", domain.ErrVerifierFailed, r.err)
		}
		return r.text, nil
	case <-ctx.Done():
		return "", fmt.Errorf("%w: %w", domain.ErrVerifierFailed, ctx.Err())
	}
}

// reason names why a call fell back. parent is the request context and
// callCtx the per-call context derived from it.
func (a *Adapter) reason(parent, callCtx context.Context, err error) string {
	switch {
	case parent.Err() != nil:
		return ReasonDeadline
	case errors.Is(err, domain.ErrRateLimited):
		return ReasonRateLimited
	case callCtx.Err() != nil:
		return ReasonTimeout
	default:
		return ReasonCallFailed
	}
}

// Fallback derives a verdict from the local score using the pipeline's
// fixed cut points. Confidence is always 0. Positive classifications cite
// the unit's candidates.
func Fallback(kind domain.PipelineKind, score float64, reason string, cands []domain.Candidate) domain.VerificationVerdict {
	class := kind.FallbackClassification(score)
	v := domain.VerificationVerdict{
		Classification: class,
		Confidence:     0,
		Rationale:      fmt.Sprintf("fallback (%s): local score %.2f", reason, score),
		Fallback:       true,
	}
	if kind.IsPositive(class) {
		v.References = referencesFromCandidates(cands)
	}
	return v
}
