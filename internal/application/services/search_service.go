package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/meridiancrm/backend/internal/ai"
	"github.com/meridiancrm/backend/internal/infrastructure/persistence"
	"github.com/meridiancrm/backend/internal/search"
	"github.com/meridiancrm/backend/pkg/constants"
	"github.com/meridiancrm/backend/pkg/errors"
)

// SearchService runs the hybrid entity search: the query is embedded and
// matched against the per-kind vector indexes while a concurrent keyword pass
// scans the tables with LIKE. Both candidate sets are merged, deduplicated and
// ranked. When the embedding call fails the search degrades to keyword-only
// instead of erroring.
type SearchService struct {
	embedder   ai.Embedder
	chat       ai.ChatClient
	chatModel  string
	embeddings *EmbeddingService

	leads     *persistence.LeadRepository
	companies *persistence.CompanyRepository
	contacts  *persistence.ContactRepository
	deals     *persistence.DealRepository
}

// NewSearchService wires the hybrid search over the given repos and indexes.
// chat may be nil; answers are then never generated.
func NewSearchService(
	embedder ai.Embedder,
	chat ai.ChatClient,
	chatModel string,
	embeddings *EmbeddingService,
	leads *persistence.LeadRepository,
	companies *persistence.CompanyRepository,
	contacts *persistence.ContactRepository,
	deals *persistence.DealRepository,
) *SearchService {
	return &SearchService{
		embedder:   embedder,
		chat:       chat,
		chatModel:  chatModel,
		embeddings: embeddings,
		leads:      leads,
		companies:  companies,
		contacts:   contacts,
		deals:      deals,
	}
}

// SearchHit is one ranked result.
type SearchHit struct {
	Kind     string  `json:"kind"`
	ID       string  `json:"id"`
	Text     string  `json:"text"`
	Score    float32 `json:"score"`
	Semantic bool    `json:"semantic"`
	Keyword  bool    `json:"keyword"`
}

// SearchResult is the full response for one query.
type SearchResult struct {
	Query      string      `json:"query"`
	Results    []SearchHit `json:"results"`
	Answer     string      `json:"answer,omitempty"`
	Confidence float64     `json:"confidence"`
	Degraded   bool        `json:"degraded"`
}

// Search executes the hybrid search. kinds restricts the result to the given
// entity kinds; empty means all. withAnswer additionally asks the LLM to
// compose an answer grounded on the top results.
func (s *SearchService) Search(ctx context.Context, query string, limit int, kinds []string, withAnswer bool) (*SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.NewValidationError("query", "Search query must not be empty")
	}
	if limit <= 0 {
		limit = constants.SearchDefaultLimit
	}
	if limit > constants.SearchMaxLimit {
		limit = constants.SearchMaxLimit
	}

	wanted, err := kindFilter(kinds)
	if err != nil {
		return nil, err
	}

	result := &SearchResult{Query: query}

	// Semantic channel. An embedding failure degrades to keyword-only.
	var semantic []search.Candidate
	queryVec, err := s.embedder.EmbedText(ctx, query)
	if err != nil {
		log.Printf("⚠️ Query embedding failed, keyword-only search: %v", err)
		result.Degraded = true
	} else {
		search.Normalize(queryVec)
		semantic = s.semanticCandidates(queryVec, wanted)
	}

	keyword := s.keywordCandidates(ctx, query, limit, wanted)

	merged := search.Merge(query, semantic, keyword, limit)
	result.Confidence = search.Confidence(merged)

	result.Results = make([]SearchHit, len(merged))
	for i, c := range merged {
		result.Results[i] = SearchHit{
			Kind:     c.Kind,
			ID:       c.ID,
			Text:     c.Text,
			Score:    c.Score,
			Semantic: c.Semantic,
			Keyword:  c.Keyword,
		}
	}

	if withAnswer && s.chat != nil && len(result.Results) > 0 {
		answer, err := s.composeAnswer(ctx, query, result.Results)
		if err != nil {
			// The ranked results are still useful without the answer
			log.Printf("⚠️ Answer generation failed: %v", err)
			result.Degraded = true
		} else {
			result.Answer = answer
		}
	}

	return result, nil
}

// kindFilter turns the requested kinds into a membership set, validating each
// against the searchable kinds. Empty input selects everything.
func kindFilter(kinds []string) (map[string]bool, error) {
	wanted := make(map[string]bool, len(constants.SearchableKinds))
	if len(kinds) == 0 {
		for _, kind := range constants.SearchableKinds {
			wanted[kind] = true
		}
		return wanted, nil
	}
	for _, kind := range kinds {
		if !constants.ValidEnum(kind, constants.SearchableKinds) {
			return nil, errors.NewValidationError("kinds", fmt.Sprintf("Unknown entity kind %q", kind))
		}
		wanted[kind] = true
	}
	return wanted, nil
}

// semanticCandidates fans out over the requested per-kind indexes in parallel.
func (s *SearchService) semanticCandidates(queryVec []float32, wanted map[string]bool) []search.Candidate {
	var wg sync.WaitGroup
	var mu sync.Mutex
	candidates := make([]search.Candidate, 0, len(constants.SemanticKinds)*constants.PerKindTopK)

	for _, kind := range constants.SemanticKinds {
		kind := kind
		if !wanted[kind] {
			continue
		}
		ix := s.embeddings.Index(kind)
		if ix == nil {
			continue
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			matches := ix.Search(queryVec, constants.PerKindTopK, constants.SimilarityFloor)

			mu.Lock()
			for _, m := range matches {
				candidates = append(candidates, search.Candidate{
					Kind:  kind,
					ID:    m.ID,
					Text:  m.Text,
					Score: m.Score,
				})
			}
			mu.Unlock()
		}()
	}

	wg.Wait()
	return candidates
}

// keywordCandidates runs the LIKE scans over the requested entity tables
// concurrently. A failing table is logged and skipped rather than failing
// the whole search.
func (s *SearchService) keywordCandidates(ctx context.Context, query string, limit int, wanted map[string]bool) []search.Candidate {
	var wg sync.WaitGroup
	var mu sync.Mutex
	candidates := make([]search.Candidate, 0, len(wanted)*limit)

	add := func(kind, id, text string) {
		mu.Lock()
		candidates = append(candidates, search.Candidate{Kind: kind, ID: id, Text: text})
		mu.Unlock()
	}

	scans := map[string]func(){
		constants.EntityKindLead: func() {
			leads, err := s.leads.KeywordSearch(ctx, query, limit)
			if err != nil {
				log.Printf("⚠️ Lead keyword search failed: %v", err)
				return
			}
			for _, l := range leads {
				add(constants.EntityKindLead, l.ID, LeadText(l))
			}
		},
		constants.EntityKindCompany: func() {
			companies, err := s.companies.KeywordSearch(ctx, query, limit)
			if err != nil {
				log.Printf("⚠️ Company keyword search failed: %v", err)
				return
			}
			for _, c := range companies {
				add(constants.EntityKindCompany, c.ID, CompanyText(c))
			}
		},
		constants.EntityKindContact: func() {
			contacts, err := s.contacts.KeywordSearch(ctx, query, limit)
			if err != nil {
				log.Printf("⚠️ Contact keyword search failed: %v", err)
				return
			}
			for _, c := range contacts {
				add(constants.EntityKindContact, c.ID, ContactText(c))
			}
		},
		constants.EntityKindDeal: func() {
			deals, err := s.deals.KeywordSearch(ctx, query, limit)
			if err != nil {
				log.Printf("⚠️ Deal keyword search failed: %v", err)
				return
			}
			for _, d := range deals {
				add(constants.EntityKindDeal, d.ID, DealText(d))
			}
		},
	}

	for kind, scan := range scans {
		if !wanted[kind] {
			continue
		}
		scan := scan
		wg.Add(1)
		go func() {
			defer wg.Done()
			scan()
		}()
	}

	wg.Wait()
	return candidates
}

// composeAnswer asks the LLM for a short answer grounded only on the top
// ranked results.
func (s *SearchService) composeAnswer(ctx context.Context, query string, hits []SearchHit) (string, error) {
	top := hits
	if len(top) > 5 {
		top = top[:5]
	}

	var sb strings.Builder
	for i, h := range top {
		fmt.Fprintf(&sb, "%d. [%s] %s\n", i+1, h.Kind, h.Text)
	}

	system := "You are a CRM assistant. Answer the user's question using only the provided CRM records. " +
		"If the records do not contain the answer, say so. Be concise."
	user := fmt.Sprintf("Question: %s\n\nRecords:\n%s", query, sb.String())

	answer, err := ai.Complete(ctx, s.chat, s.chatModel, system, user)
	if err != nil {
		return "", errors.NewUpstreamError("chat", err)
	}
	return strings.TrimSpace(answer), nil
}
