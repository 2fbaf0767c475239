// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - TextExtractor: Turns uploaded bytes into plain text
//   - BlobStore: Raw document persistence keyed by content digest
//   - CorpusRepository: Corpus entry persistence
//   - ReportStore: Aggregate report persistence
//   - ConfigStore: Application configuration
//   - PromptStore: Verifier prompt templates
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - EmbeddingService: Generates vector embeddings. Without it, candidate
//     selection uses the lexical path only.
//   - VectorIndex: Nearest-neighbour search over corpus embeddings.
//   - LLMService: The external verifier. Without it, every escalated unit
//     receives a fallback verdict.
//   - Classifier: The fast local scorer tier. Without it, scoring falls
//     back to the perplexity or heuristic tier.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or normaliser package
package driven
