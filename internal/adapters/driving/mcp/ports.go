package mcp

import (
	"github.com/custodia-labs/novelcheck/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Novelty ranks corpus papers against a document.
	Novelty driving.NoveltyService

	// Plagiarism compares a document against references.
	Plagiarism driving.PlagiarismService

	// Index describes the published index.
	Index driving.IndexService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Novelty == nil {
		return ErrMissingNoveltyService
	}
	// Plagiarism and Index are optional
	return nil
}
