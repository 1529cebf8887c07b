package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeBoostsDualChannelHits(t *testing.T) {
	semantic := []Candidate{
		{Kind: "lead", ID: "1", Text: "Jane Doe at Acme", Score: 0.6},
		{Kind: "lead", ID: "2", Text: "John Roe", Score: 0.8},
	}
	keyword := []Candidate{
		{Kind: "lead", ID: "1", Text: "Jane Doe at Acme"},
	}

	results := Merge("zzz", semantic, keyword, 10)
	require.Len(t, results, 2)

	// Lead 1: in both channels, 0.6 * 1.5 = 0.9 beats lead 2's 0.8.
	assert.Equal(t, "1", results[0].ID)
	assert.InDelta(t, 0.9, float64(results[0].Score), 1e-5)
	assert.True(t, results[0].Semantic)
	assert.True(t, results[0].Keyword)

	assert.Equal(t, "2", results[1].ID)
	assert.InDelta(t, 0.8, float64(results[1].Score), 1e-5)
}

func TestMergeKeywordOnlyBaseline(t *testing.T) {
	keyword := []Candidate{
		{Kind: "company", ID: "c1", Text: "Globex Industries"},
	}

	results := Merge("zzz", nil, keyword, 10)
	require.Len(t, results, 1)
	assert.InDelta(t, 0.5, float64(results[0].Score), 1e-5)
	assert.False(t, results[0].Semantic)
	assert.True(t, results[0].Keyword)
}

func TestMergeVerbatimBonus(t *testing.T) {
	semantic := []Candidate{
		{Kind: "lead", ID: "1", Text: "Jane Doe, VP at Acme", Score: 0.5},
		{Kind: "lead", ID: "2", Text: "Unrelated person", Score: 0.5},
	}

	results := Merge("jane acme", semantic, nil, 10)
	require.Len(t, results, 2)
	assert.Equal(t, "1", results[0].ID)
	assert.InDelta(t, 0.8, float64(results[0].Score), 1e-5)
	assert.InDelta(t, 0.5, float64(results[1].Score), 1e-5)
}

func TestMergeDeduplicatesAcrossKinds(t *testing.T) {
	// Same ID under different kinds must remain distinct results.
	semantic := []Candidate{
		{Kind: "lead", ID: "1", Text: "a", Score: 0.4},
		{Kind: "company", ID: "1", Text: "b", Score: 0.3},
	}

	results := Merge("zzz", semantic, nil, 10)
	assert.Len(t, results, 2)
}

func TestMergeRespectsLimit(t *testing.T) {
	semantic := make([]Candidate, 0, 20)
	for i := 0; i < 20; i++ {
		semantic = append(semantic, Candidate{
			Kind: "lead", ID: string(rune('a' + i)), Score: float32(i) / 20,
		})
	}

	results := Merge("zzz", semantic, nil, 5)
	assert.Len(t, results, 5)
	// Best score first
	assert.InDelta(t, 19.0/20, float64(results[0].Score), 1e-5)
}

func TestConfidence(t *testing.T) {
	// No results
	assert.Equal(t, 0.0, Confidence(nil))

	// Keyword-only floors at 0.2
	assert.Equal(t, 0.2, Confidence([]Candidate{{Keyword: true, Score: 0.5}}))

	// Semantic: top*0.7 + hits*0.05
	results := []Candidate{
		{Semantic: true, Score: 0.9},
		{Semantic: true, Score: 0.5},
	}
	assert.InDelta(t, 0.9*0.7+2*0.05, Confidence(results), 1e-5)

	// Capped at 0.95
	big := []Candidate{
		{Semantic: true, Score: 1.5},
		{Semantic: true, Score: 1.4},
		{Semantic: true, Score: 1.3},
		{Semantic: true, Score: 1.2},
		{Semantic: true, Score: 1.1},
		{Semantic: true, Score: 1.0},
	}
	assert.Equal(t, 0.95, Confidence(big))
}

func TestContainsAllQueryWords(t *testing.T) {
	assert.True(t, containsAllQueryWords("Jane Doe at Acme Corp", "jane acme"))
	assert.False(t, containsAllQueryWords("Jane Doe", "jane acme"))
	assert.False(t, containsAllQueryWords("anything", ""))
}
