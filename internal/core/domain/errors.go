package domain

import (
	"errors"
	"fmt"
	"time"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotImplemented indicates functionality is not yet available.
	ErrNotImplemented = errors.New("not implemented")

	// Input Errors.
	// These are the only errors an evaluation request surfaces to its caller.

	// ErrUnsupportedFormat indicates no text extractor handles the upload.
	ErrUnsupportedFormat = errors.New("unsupported document format")

	// ErrInsufficientContent indicates the extracted text is empty or below
	// the configured minimum length. The pipeline never starts.
	ErrInsufficientContent = errors.New("insufficient content")

	// ErrUnknownPipeline indicates an unrecognised pipeline kind.
	ErrUnknownPipeline = errors.New("unknown pipeline")

	// Degraded Capability Errors.
	// Reported as startup warnings; a run never fails because of them.

	// ErrLLMUnavailable indicates the LLM service is not configured.
	// Escalated units receive fallback verdicts without it.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	// Candidate selection falls back to the lexical path without embeddings.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrVectorIndexUnavailable indicates the similarity index is not built.
	ErrVectorIndexUnavailable = errors.New("vector index unavailable")

	// ErrScorerUnavailable indicates a local scorer tier could not be initialised.
	ErrScorerUnavailable = errors.New("scorer backend unavailable")

	// External Call Errors.
	// Absorbed into fallback values and logged.

	// ErrVerifierFailed indicates the external verifier call errored or timed out.
	ErrVerifierFailed = errors.New("verifier call failed")

	// ErrMalformedVerdict indicates the verifier response held no usable verdict.
	ErrMalformedVerdict = errors.New("malformed verdict")

	// ErrRateLimited indicates the API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")
)

// IsInputError reports whether err belongs to the user-visible input error class.
func IsInputError(err error) bool {
	return errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrUnsupportedFormat) ||
		errors.Is(err, ErrInsufficientContent) ||
		errors.Is(err, ErrUnknownPipeline) ||
		errors.Is(err, ErrNotFound)
}

// RateLimitError is returned by external services that answered with a rate
// limit response. It matches ErrRateLimited with errors.Is.
type RateLimitError struct {
	// RetryAfter is the wait the service asked for, or zero when unspecified.
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limited: retry after %s", e.RetryAfter)
	}
	return "rate limited"
}

// Unwrap returns ErrRateLimited.
func (e *RateLimitError) Unwrap() error {
	return ErrRateLimited
}
