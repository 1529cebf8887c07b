package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndexUpsertAndSearch(t *testing.T) {
	ix := NewIndex()
	ix.Upsert("a", "acme corp", []float32{1, 0, 0})
	ix.Upsert("b", "globex", []float32{0, 1, 0})
	ix.Upsert("c", "initech", []float32{0.9, 0.1, 0})

	matches := ix.Search([]float32{1, 0, 0}, 2, 0.05)
	require.Len(t, matches, 2)
	assert.Equal(t, "a", matches[0].ID)
	assert.Equal(t, "c", matches[1].ID)
	assert.InDelta(t, 1.0, float64(matches[0].Score), 1e-5)
}

func TestIndexFloorFiltersOrthogonal(t *testing.T) {
	ix := NewIndex()
	ix.Upsert("a", "alpha", []float32{1, 0})
	ix.Upsert("b", "beta", []float32{0, 1})

	matches := ix.Search([]float32{1, 0}, 10, 0.05)
	require.Len(t, matches, 1)
	assert.Equal(t, "a", matches[0].ID)
}

func TestIndexUpsertReplaces(t *testing.T) {
	ix := NewIndex()
	ix.Upsert("a", "old text", []float32{1, 0})
	ix.Upsert("a", "new text", []float32{0, 1})

	assert.Equal(t, 1, ix.Len())
	matches := ix.Search([]float32{0, 1}, 1, 0.5)
	require.Len(t, matches, 1)
	assert.Equal(t, "new text", matches[0].Text)
}

func TestIndexReplaceAllAndDelete(t *testing.T) {
	ix := NewIndex()
	ix.Upsert("stale", "stale", []float32{1, 0})

	ix.ReplaceAll([]Entry{
		{ID: "x", Text: "x", Vector: []float32{1, 0}},
		{ID: "y", Text: "y", Vector: []float32{0, 1}},
	})
	assert.Equal(t, 2, ix.Len())
	matches := ix.Search([]float32{1, 0}, 10, 0.5)
	require.Len(t, matches, 1)
	assert.Equal(t, "x", matches[0].ID)

	ix.Delete("x")
	assert.Equal(t, 1, ix.Len())
}

func TestNormalize(t *testing.T) {
	v := Normalize([]float32{3, 4})
	assert.InDelta(t, 0.6, float64(v[0]), 1e-5)
	assert.InDelta(t, 0.8, float64(v[1]), 1e-5)

	zero := Normalize([]float32{0, 0})
	assert.Equal(t, []float32{0, 0}, zero)
}

func TestCosine(t *testing.T) {
	assert.InDelta(t, 1.0, float64(Cosine([]float32{2, 0}, []float32{5, 0})), 1e-5)
	assert.InDelta(t, 0.0, float64(Cosine([]float32{1, 0}, []float32{0, 3})), 1e-5)
	assert.InDelta(t, 0.0, float64(Cosine([]float32{0, 0}, []float32{1, 1})), 1e-5)
}
