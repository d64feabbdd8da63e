// Package domain defines the core business entities for novelcheck.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: A corpus paper with its metadata and resolved text
//   - IDMapping: Index position to paper metadata, persisted next to the index
//   - NoveltyResult: One ranked nearest-neighbour match for a query paper
//   - Chunk: A window of sentence-like units compared during plagiarism checks
//   - OverlapFinding: A subject chunk flagged by one of the overlap detectors
//   - PlagiarismReport: The merged output of both detectors
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
