// Package mcp provides an MCP (Model Context Protocol) server adapter for novelcheck.
// It lets AI assistants run novelty queries and plagiarism checks against the local index.
package mcp

import (
	"errors"
	"fmt"

	"github.com/custodia-labs/novelcheck/internal/core/domain"
)

// ErrMissingNoveltyService is returned when the novelty service is not provided.
var ErrMissingNoveltyService = errors.New("mcp: novelty service is required")

// ErrToolUnavailable is returned when a tool's backing service is not configured.
var ErrToolUnavailable = errors.New("mcp: tool is not available")

// toolError prefixes err with its kind so clients can tell a missing index
// from a provider outage without parsing the message.
func toolError(err error) error {
	return fmt.Errorf("%s: %w", domain.KindOf(err), err)
}
