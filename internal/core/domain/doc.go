// Package domain defines the core business entities for veritas.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - RawDocument: Uploaded bytes before extraction
//   - Document, Segment, Sentence, Claim: The text units of one evaluation
//   - CorpusEntry: Previously processed material used as comparison target
//   - VerificationVerdict: The outcome of one unit's verification
//   - AggregateReport: The document-level result of a pipeline run
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
