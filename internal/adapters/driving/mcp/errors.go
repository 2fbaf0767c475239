// Package mcp provides an MCP (Model Context Protocol) server adapter for Veritas.
// It lets AI assistants evaluate documents and read reports and corpora.
package mcp

import (
	"errors"
	"fmt"

	"github.com/custodia-labs/veritas-cli/internal/core/domain"
)

// ErrMissingEvaluationService is returned when the evaluation service is not provided.
var ErrMissingEvaluationService = errors.New("mcp: evaluation service is required")

// ErrServiceUnavailable is returned by tools whose port was not provided.
var ErrServiceUnavailable = errors.New("mcp: service not available")

// toolError rewords input errors so the assistant can correct its call.
// Other errors are returned unchanged.
func toolError(err error) error {
	if domain.IsInputError(err) {
		return fmt.Errorf("invalid request: %w", err)
	}
	return err
}
