package flat

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/novelcheck/internal/core/domain"
)

func newTestIndex(t *testing.T, vectors ...[]float32) *Index {
	t.Helper()
	idx := New()
	for i, v := range vectors {
		id, err := idx.Add(context.Background(), v)
		require.NoError(t, err)
		require.Equal(t, i, id)
	}
	return idx
}

func TestSquaredL2(t *testing.T) {
	assert.InDelta(t, 0.0, SquaredL2([]float32{1, 2}, []float32{1, 2}), 1e-12)
	assert.InDelta(t, 25.0, SquaredL2([]float32{0, 0}, []float32{3, 4}), 1e-12)
}

func TestAdd_FixesDimension(t *testing.T) {
	idx := New()
	assert.Equal(t, 0, idx.Dimension())

	_, err := idx.Add(context.Background(), []float32{1, 0, 0})
	require.NoError(t, err)
	assert.Equal(t, 3, idx.Dimension())

	_, err = idx.Add(context.Background(), []float32{1, 0})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConfiguration)
	assert.Equal(t, 1, idx.Size())
}

func TestAdd_RejectsEmpty(t *testing.T) {
	_, err := New().Add(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestAdd_CopiesInput(t *testing.T) {
	v := []float32{1, 2}
	idx := newTestIndex(t, v)
	v[0] = 99

	got, ok := idx.Vector(0)
	require.True(t, ok)
	assert.Equal(t, []float32{1, 2}, got)
}

func TestSearch_OrderedByDistance(t *testing.T) {
	idx := newTestIndex(t,
		[]float32{10, 10},
		[]float32{1, 1},
		[]float32{0, 0},
		[]float32{3, 3},
	)

	hits, err := idx.Search(context.Background(), []float32{0, 0}, 3)

	require.NoError(t, err)
	require.Len(t, hits, 3)
	assert.Equal(t, 2, hits[0].ID)
	assert.InDelta(t, 0.0, hits[0].Distance, 1e-12)
	assert.Equal(t, 1, hits[1].ID)
	assert.InDelta(t, 2.0, hits[1].Distance, 1e-12)
	assert.Equal(t, 3, hits[2].ID)
	assert.InDelta(t, 18.0, hits[2].Distance, 1e-12)
}

func TestSearch_TiesByPosition(t *testing.T) {
	idx := newTestIndex(t, []float32{1, 0}, []float32{0, 1}, []float32{-1, 0})

	hits, err := idx.Search(context.Background(), []float32{0, 0}, 3)

	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2}, []int{hits[0].ID, hits[1].ID, hits[2].ID})
}

func TestSearch_KLargerThanSize(t *testing.T) {
	idx := newTestIndex(t, []float32{1, 0}, []float32{0, 1})

	hits, err := idx.Search(context.Background(), []float32{1, 0}, 10)

	require.NoError(t, err)
	assert.Len(t, hits, 2)
}

func TestSearch_EmptyAndZeroK(t *testing.T) {
	hits, err := New().Search(context.Background(), []float32{1}, 5)
	require.NoError(t, err)
	assert.Empty(t, hits)

	idx := newTestIndex(t, []float32{1, 0})
	hits, err = idx.Search(context.Background(), []float32{1, 0}, 0)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestSearch_DimensionMismatch(t *testing.T) {
	idx := newTestIndex(t, []float32{1, 0, 0})

	_, err := idx.Search(context.Background(), []float32{1, 0}, 1)

	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestSearch_IdenticalVectorRanksFirst(t *testing.T) {
	idx := newTestIndex(t,
		[]float32{0.6, 0.8, 0},
		[]float32{0, 0.6, 0.8},
		[]float32{0.8, 0, 0.6},
	)

	hits, err := idx.Search(context.Background(), []float32{0, 0.6, 0.8}, 3)

	require.NoError(t, err)
	assert.Equal(t, 1, hits[0].ID)
	assert.InDelta(t, 1.0, domain.SimilarityFromDistance(hits[0].Distance), 1e-6)
}

func TestVector_OutOfRange(t *testing.T) {
	idx := newTestIndex(t, []float32{1})
	_, ok := idx.Vector(-1)
	assert.False(t, ok)
	_, ok = idx.Vector(1)
	assert.False(t, ok)
}

func TestNewFactory(t *testing.T) {
	factory := NewFactory()
	a, b := factory(), factory()
	_, err := a.Add(context.Background(), []float32{1})
	require.NoError(t, err)
	assert.Equal(t, 1, a.Size())
	assert.Equal(t, 0, b.Size())
}

func TestConcurrentSearch(t *testing.T) {
	idx := newTestIndex(t, []float32{1, 0}, []float32{0, 1})

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			hits, err := idx.Search(context.Background(), []float32{1, 0}, 1)
			assert.NoError(t, err)
			assert.Equal(t, 0, hits[0].ID)
		}()
	}
	wg.Wait()
}
