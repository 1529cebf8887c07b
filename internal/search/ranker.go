package search

import (
	"sort"
	"strings"
)

// Candidate is one merged search result before entity hydration.
type Candidate struct {
	Kind     string  `json:"kind"`
	ID       string  `json:"id"`
	Text     string  `json:"text"`
	Score    float32 `json:"score"`
	Semantic bool    `json:"semantic"`
	Keyword  bool    `json:"keyword"`
}

// Merge boost and baseline weights. A hit found by both channels is worth
// more than its raw similarity; a keyword-only hit has no similarity so it
// gets a fixed baseline.
const (
	bothChannelsBoost = 1.5
	keywordBaseline   = 0.5
	verbatimBonus     = 0.3
)

// Merge combines semantic and keyword candidates, deduplicates by (kind, id),
// scores, sorts descending, and caps at limit.
//
// Scoring: both channels -> 1.5x similarity; semantic only -> similarity;
// keyword only -> 0.5 baseline. Candidates whose text contains every query
// word get a verbatim bonus on top.
func Merge(query string, semantic, keyword []Candidate, limit int) []Candidate {
	type key struct{ kind, id string }
	merged := make(map[key]*Candidate, len(semantic)+len(keyword))

	for _, c := range semantic {
		c.Semantic = true
		k := key{c.Kind, c.ID}
		if prev, ok := merged[k]; !ok || c.Score > prev.Score {
			cc := c
			merged[k] = &cc
		}
	}

	for _, c := range keyword {
		k := key{c.Kind, c.ID}
		if prev, ok := merged[k]; ok {
			prev.Keyword = true
			if prev.Text == "" {
				prev.Text = c.Text
			}
		} else {
			cc := c
			cc.Keyword = true
			merged[k] = &cc
		}
	}

	results := make([]Candidate, 0, len(merged))
	for _, c := range merged {
		switch {
		case c.Semantic && c.Keyword:
			c.Score = bothChannelsBoost * c.Score
		case c.Keyword:
			c.Score = keywordBaseline
		}
		if containsAllQueryWords(c.Text, query) {
			c.Score += verbatimBonus
		}
		results = append(results, *c)
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		// Stable order for equal scores
		if results[i].Kind != results[j].Kind {
			return results[i].Kind < results[j].Kind
		}
		return results[i].ID < results[j].ID
	})

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results
}

// Confidence derives an answer confidence from the ranked candidates:
// a function of the top similarity and the hit count, capped at 0.95.
// Keyword-only result sets floor at 0.2.
func Confidence(results []Candidate) float64 {
	if len(results) == 0 {
		return 0
	}

	var top float64
	anySemantic := false
	for _, c := range results {
		if c.Semantic {
			anySemantic = true
			if float64(c.Score) > top {
				top = float64(c.Score)
			}
		}
	}

	if !anySemantic {
		return 0.2
	}

	hits := len(results)
	if hits > 5 {
		hits = 5
	}
	conf := top*0.7 + float64(hits)*0.05
	if conf > 0.95 {
		conf = 0.95
	}
	if conf < 0.2 {
		conf = 0.2
	}
	return conf
}

// containsAllQueryWords reports whether every word of the query appears in
// the text, case-insensitively.
func containsAllQueryWords(text, query string) bool {
	words := strings.Fields(strings.ToLower(query))
	if len(words) == 0 {
		return false
	}
	lower := strings.ToLower(text)
	for _, w := range words {
		if !strings.Contains(lower, w) {
			return false
		}
	}
	return true
}
