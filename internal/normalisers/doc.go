// Package normalisers provides TextExtractor implementations that turn
// uploaded bytes into plain text. Each extractor knows a set of MIME types
// and file extensions.
//
// Extractors are registered with the Registry at startup.
package normalisers
