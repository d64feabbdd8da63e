// Package flat provides an exact, brute-force vector index using squared
// Euclidean distance. Every vector is kept at full precision with no
// quantisation or pruning, which suits corpora of up to a few thousand papers.
package flat

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/custodia-labs/novelcheck/internal/core/domain"
	"github.com/custodia-labs/novelcheck/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// Index is an append-only flat L2 index. Safe for concurrent use.
type Index struct {
	mu        sync.RWMutex
	dimension int
	vectors   [][]float32
}

// New creates an empty index. The first added vector fixes its dimension.
func New() *Index {
	return &Index{}
}

// NewFactory returns a driven.VectorIndexFactory producing flat indexes.
func NewFactory() driven.VectorIndexFactory {
	return func() driven.VectorIndex { return New() }
}

// Add appends a copy of embedding and returns its position.
func (x *Index) Add(_ context.Context, embedding []float32) (int, error) {
	if len(embedding) == 0 {
		return 0, fmt.Errorf("%w: empty embedding", domain.ErrConfiguration)
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	if x.dimension == 0 {
		x.dimension = len(embedding)
	} else if len(embedding) != x.dimension {
		return 0, fmt.Errorf("%w: embedding dimension %d does not match index dimension %d",
			domain.ErrConfiguration, len(embedding), x.dimension)
	}

	vec := make([]float32, len(embedding))
	copy(vec, embedding)
	x.vectors = append(x.vectors, vec)
	return len(x.vectors) - 1, nil
}

// Search returns up to k hits by ascending squared distance.
// Equal distances are ordered by position.
func (x *Index) Search(ctx context.Context, query []float32, k int) ([]driven.VectorHit, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	if k <= 0 || len(x.vectors) == 0 {
		return []driven.VectorHit{}, nil
	}
	if len(query) != x.dimension {
		return nil, fmt.Errorf("%w: query dimension %d does not match index dimension %d",
			domain.ErrConfiguration, len(query), x.dimension)
	}

	hits := make([]driven.VectorHit, len(x.vectors))
	for i, vec := range x.vectors {
		if i%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		hits[i] = driven.VectorHit{ID: i, Distance: SquaredL2(query, vec)}
	}

	sort.SliceStable(hits, func(a, b int) bool {
		return hits[a].Distance < hits[b].Distance
	})

	if k > len(hits) {
		k = len(hits)
	}
	return hits[:k], nil
}

// Vector returns a copy of the vector at position id.
func (x *Index) Vector(id int) ([]float32, bool) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	if id < 0 || id >= len(x.vectors) {
		return nil, false
	}
	vec := make([]float32, len(x.vectors[id]))
	copy(vec, x.vectors[id])
	return vec, true
}

// Size returns the number of stored vectors.
func (x *Index) Size() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.vectors)
}

// Dimension returns the vector length, or 0 for an empty index.
func (x *Index) Dimension() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.dimension
}

// SquaredL2 returns the squared Euclidean distance between equal-length vectors.
func SquaredL2(a, b []float32) float64 {
	sum := 0.0
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return sum
}
