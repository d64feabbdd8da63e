package driven

import (
	"context"
	"time"

	"github.com/custodia-labs/novelcheck/internal/core/domain"
)

// IndexArtifact is a vector index together with its id mapping.
// The pair is only valid when len(Mapping) == Index.Size().
type IndexArtifact struct {
	Index   VectorIndex
	Mapping domain.IDMapping

	// Model is the embedding model the vectors were produced with.
	Model string

	// BuildID identifies the build that produced the pair.
	BuildID string

	// BuiltAt is when the pair was published.
	BuiltAt time.Time
}

// IndexStore persists the index + mapping pair.
// Publish must never leave a partial pair at the published paths,
// and Load must never return a pair whose counts disagree.
type IndexStore interface {
	// Publish writes both artifacts and makes them visible together.
	Publish(ctx context.Context, artifact *IndexArtifact) error

	// Load reads both artifacts. Returns domain.ErrMissingArtifact if
	// either is absent or they do not belong to the same build.
	Load(ctx context.Context) (*IndexArtifact, error)

	// Info returns index metadata without loading vectors.
	Info(ctx context.Context) (*domain.IndexInfo, error)

	// Paths returns the index and mapping locations.
	Paths() (indexPath, mappingPath string)
}
