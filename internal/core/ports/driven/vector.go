package driven

import "context"

// VectorIndex stores embedding vectors by position and answers exact
// nearest-neighbour queries by squared Euclidean distance.
// It is append-only: position i is assigned to the i-th added vector.
type VectorIndex interface {
	// Add appends a vector and returns its position.
	// The first vector fixes the index dimension.
	Add(ctx context.Context, embedding []float32) (int, error)

	// Search returns up to k hits ordered by ascending distance.
	Search(ctx context.Context, query []float32, k int) ([]VectorHit, error)

	// Vector returns a copy of the vector at position id.
	Vector(id int) ([]float32, bool)

	// Size returns the number of stored vectors.
	Size() int

	// Dimension returns the vector length, or 0 for an empty index.
	Dimension() int
}

// VectorHit represents a nearest-neighbour search result.
type VectorHit struct {
	// ID is the matched vector's position (the document id).
	ID int

	// Distance is the squared Euclidean distance to the query.
	Distance float64
}

// VectorIndexFactory creates an empty vector index.
type VectorIndexFactory func() VectorIndex
