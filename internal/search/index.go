package search

import (
	"sort"
	"sync"
)

// Entry is one indexed entity: its searchable text and unit vector.
type Entry struct {
	ID     string
	Text   string
	Vector []float32
}

// Match is a similarity hit from an Index.
type Match struct {
	ID    string
	Text  string
	Score float32
}

// Index is an in-memory brute-force vector index for one entity kind.
// Vectors are normalized on insert so search reduces to dot products.
// Safe for concurrent use.
type Index struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

// NewIndex creates an empty index.
func NewIndex() *Index {
	return &Index{entries: make(map[string]Entry)}
}

// Upsert inserts or replaces an entry. The vector is normalized in place.
func (ix *Index) Upsert(id, text string, vector []float32) {
	Normalize(vector)
	ix.mu.Lock()
	ix.entries[id] = Entry{ID: id, Text: text, Vector: vector}
	ix.mu.Unlock()
}

// Delete removes an entry if present.
func (ix *Index) Delete(id string) {
	ix.mu.Lock()
	delete(ix.entries, id)
	ix.mu.Unlock()
}

// ReplaceAll swaps the full contents of the index. Used by the embedding
// refresh to hydrate from the database in one step.
func (ix *Index) ReplaceAll(entries []Entry) {
	m := make(map[string]Entry, len(entries))
	for _, e := range entries {
		Normalize(e.Vector)
		m[e.ID] = e
	}
	ix.mu.Lock()
	ix.entries = m
	ix.mu.Unlock()
}

// Len returns the number of indexed entries.
func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.entries)
}

// Search returns up to topK entries with similarity >= floor, best first.
// The query vector must be normalized.
func (ix *Index) Search(query []float32, topK int, floor float32) []Match {
	if topK <= 0 {
		return nil
	}

	ix.mu.RLock()
	matches := make([]Match, 0, len(ix.entries))
	for _, e := range ix.entries {
		score := Dot(e.Vector, query)
		if score < floor {
			continue
		}
		matches = append(matches, Match{ID: e.ID, Text: e.Text, Score: score})
	}
	ix.mu.RUnlock()

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	if len(matches) > topK {
		matches = matches[:topK]
	}
	return matches
}
