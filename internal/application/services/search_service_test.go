package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridiancrm/backend/internal/ai"
	"github.com/meridiancrm/backend/internal/infrastructure/persistence"
	"github.com/meridiancrm/backend/pkg/constants"
	pkgerrors "github.com/meridiancrm/backend/pkg/errors"
)

// newTestSearch builds a SearchService over a sqlmock DB and mock AI clients.
// Keyword expectations run unordered because the four table scans race.
func newTestSearch(t *testing.T) (*SearchService, *EmbeddingService, *ai.MockEmbedder, *ai.MockChatClient, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	mock.MatchExpectationsInOrder(false)

	embedder := ai.NewMockEmbedder(8)
	chat := &ai.MockChatClient{Response: "Acme is the strongest match."}

	leads := persistence.NewLeadRepository(db)
	companies := persistence.NewCompanyRepository(db)
	contacts := persistence.NewContactRepository(db)
	deals := persistence.NewDealRepository(db)
	embedRepo := persistence.NewEmbeddingRepository(db)

	embeddings := NewEmbeddingService(embedder, "mock-embed", embedRepo, leads, companies, contacts)
	searchSvc := NewSearchService(embedder, chat, "mock-chat", embeddings, leads, companies, contacts, deals)

	return searchSvc, embeddings, embedder, chat, mock
}

func expectEmptyKeywordScans(mock sqlmock.Sqlmock, tables ...string) {
	columns := map[string][]string{
		constants.TableCompany: {"id", "name", "domain", "industry", "size", "location", "description", "owner_id", "created_date", "last_modified_date"},
		constants.TableContact: {"id", "name", "email", "phone", "title", "company_id", "owner_id", "created_date", "last_modified_date"},
		constants.TableDeal:    {"id", "name", "company_id", "contact_id", "stage", "amount", "close_date", "probability", "notes", "owner_id", "created_date", "last_modified_date"},
		constants.TableLead:    {"id", "name", "email", "phone", "company_name", "title", "source", "status", "score", "notes", "owner_id", "created_date", "last_modified_date"},
	}
	for _, table := range tables {
		mock.ExpectQuery("FROM " + table).WillReturnRows(sqlmock.NewRows(columns[table]))
	}
}

func TestSearchMergesSemanticAndKeywordChannels(t *testing.T) {
	searchSvc, embeddings, embedder, _, mock := newTestSearch(t)
	ctx := context.Background()

	// Seed the lead index with the exact query text so similarity is 1.0
	vec, err := embedder.EmbedText(ctx, "acme cloud")
	require.NoError(t, err)
	embeddings.Index(constants.EntityKindLead).Upsert("lead-1", "acme cloud", vec)

	now := time.Now()
	leadRow := sqlmock.NewRows([]string{
		"id", "name", "email", "phone", "company_name", "title", "source",
		"status", "score", "notes", "owner_id", "created_date", "last_modified_date",
	}).AddRow("lead-1", "Acme Cloud", "ops@acme.io", nil, "Acme", nil, nil,
		"qualified", 40, nil, "user-1", now, now)

	mock.ExpectQuery("FROM " + constants.TableLead).WillReturnRows(leadRow)
	expectEmptyKeywordScans(mock, constants.TableCompany, constants.TableContact, constants.TableDeal)

	result, err := searchSvc.Search(ctx, "acme cloud", 10, nil, false)
	require.NoError(t, err)
	require.Len(t, result.Results, 1)

	hit := result.Results[0]
	assert.Equal(t, constants.EntityKindLead, hit.Kind)
	assert.Equal(t, "lead-1", hit.ID)
	assert.True(t, hit.Semantic)
	assert.True(t, hit.Keyword)
	// 1.5x both-channels boost on similarity 1.0, plus the verbatim bonus
	assert.InDelta(t, 1.8, float64(hit.Score), 0.01)

	assert.False(t, result.Degraded)
	assert.Greater(t, result.Confidence, 0.5)
	assert.Empty(t, result.Answer)
}

func TestSearchDegradesToKeywordOnEmbedFailure(t *testing.T) {
	searchSvc, _, embedder, _, mock := newTestSearch(t)
	embedder.Err = errors.New("embedding service down")

	now := time.Now()
	dealRow := sqlmock.NewRows([]string{
		"id", "name", "company_id", "contact_id", "stage", "amount", "close_date",
		"probability", "notes", "owner_id", "created_date", "last_modified_date",
	}).AddRow("deal-1", "Acme renewal", nil, nil, "negotiation", 50000.0, nil,
		60, nil, "user-1", now, now)

	mock.ExpectQuery("FROM " + constants.TableDeal).WillReturnRows(dealRow)
	expectEmptyKeywordScans(mock, constants.TableLead, constants.TableCompany, constants.TableContact)

	result, err := searchSvc.Search(context.Background(), "acme", 10, nil, false)
	require.NoError(t, err)
	assert.True(t, result.Degraded)
	require.Len(t, result.Results, 1)

	hit := result.Results[0]
	assert.Equal(t, constants.EntityKindDeal, hit.Kind)
	assert.False(t, hit.Semantic)
	assert.True(t, hit.Keyword)

	// Keyword-only result sets floor at the minimum confidence
	assert.InDelta(t, 0.2, result.Confidence, 0.001)
}

func TestSearchComposesAnswerFromTopResults(t *testing.T) {
	searchSvc, embeddings, embedder, chat, mock := newTestSearch(t)
	ctx := context.Background()

	vec, err := embedder.EmbedText(ctx, "best lead at acme")
	require.NoError(t, err)
	embeddings.Index(constants.EntityKindLead).Upsert("lead-1", "best lead at acme", vec)

	expectEmptyKeywordScans(mock, constants.TableLead, constants.TableCompany, constants.TableContact, constants.TableDeal)

	result, err := searchSvc.Search(ctx, "best lead at acme", 10, nil, true)
	require.NoError(t, err)
	assert.Equal(t, "Acme is the strongest match.", result.Answer)

	req := chat.LastRequest()
	require.NotNil(t, req)
	assert.Contains(t, req.Messages[1].Content, "best lead at acme")
}

func TestSearchAnswerFailureKeepsResults(t *testing.T) {
	searchSvc, embeddings, embedder, chat, mock := newTestSearch(t)
	ctx := context.Background()
	chat.Err = errors.New("chat service down")

	vec, err := embedder.EmbedText(ctx, "acme")
	require.NoError(t, err)
	embeddings.Index(constants.EntityKindCompany).Upsert("co-1", "acme", vec)

	expectEmptyKeywordScans(mock, constants.TableLead, constants.TableCompany, constants.TableContact, constants.TableDeal)

	result, err := searchSvc.Search(ctx, "acme", 10, nil, true)
	require.NoError(t, err)
	assert.True(t, result.Degraded)
	assert.Empty(t, result.Answer)
	require.Len(t, result.Results, 1)
}

func TestSearchRejectsEmptyQuery(t *testing.T) {
	searchSvc, _, _, _, _ := newTestSearch(t)

	_, err := searchSvc.Search(context.Background(), "   ", 10, nil, false)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsValidation(err))
}

func TestSearchRestrictsToRequestedKinds(t *testing.T) {
	searchSvc, embeddings, embedder, _, mock := newTestSearch(t)
	ctx := context.Background()

	// Both indexes hold a perfect match; only the company kind is requested
	vec, err := embedder.EmbedText(ctx, "acme")
	require.NoError(t, err)
	embeddings.Index(constants.EntityKindLead).Upsert("lead-1", "acme", append([]float32(nil), vec...))
	embeddings.Index(constants.EntityKindCompany).Upsert("co-1", "acme", append([]float32(nil), vec...))

	expectEmptyKeywordScans(mock, constants.TableCompany)

	result, err := searchSvc.Search(ctx, "acme", 10, []string{constants.EntityKindCompany}, false)
	require.NoError(t, err)
	require.Len(t, result.Results, 1)
	assert.Equal(t, constants.EntityKindCompany, result.Results[0].Kind)
	assert.Equal(t, "co-1", result.Results[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSearchRejectsUnknownKind(t *testing.T) {
	searchSvc, _, embedder, _, _ := newTestSearch(t)

	_, err := searchSvc.Search(context.Background(), "acme", 10, []string{"invoice"}, false)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsValidation(err))
	assert.Zero(t, embedder.Calls)
}

func TestSearchClampsLimit(t *testing.T) {
	searchSvc, embeddings, embedder, _, mock := newTestSearch(t)
	ctx := context.Background()

	// Overfill one index past the max limit
	vec, err := embedder.EmbedText(ctx, "widget")
	require.NoError(t, err)
	for i := 0; i < constants.SearchMaxLimit+20; i++ {
		id := fmt.Sprintf("lead-%d", i)
		embeddings.Index(constants.EntityKindLead).Upsert(id, "widget", append([]float32(nil), vec...))
	}

	expectEmptyKeywordScans(mock, constants.TableLead, constants.TableCompany, constants.TableContact, constants.TableDeal)

	result, err := searchSvc.Search(ctx, "widget", 10000, nil, false)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(result.Results), constants.SearchMaxLimit)
}
