package services

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridiancrm/backend/internal/ai"
	"github.com/meridiancrm/backend/internal/domain/models"
	"github.com/meridiancrm/backend/internal/infrastructure/persistence"
	"github.com/meridiancrm/backend/pkg/constants"
)

func newTestEmbeddings(t *testing.T) (*EmbeddingService, *ai.MockEmbedder, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	embedder := ai.NewMockEmbedder(8)
	embedRepo := persistence.NewEmbeddingRepository(db)
	leads := persistence.NewLeadRepository(db)
	companies := persistence.NewCompanyRepository(db)
	contacts := persistence.NewContactRepository(db)

	svc := NewEmbeddingService(embedder, "mock-embed", embedRepo, leads, companies, contacts)
	return svc, embedder, mock
}

func singleLeadRows(id, name, email string) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "name", "email", "phone", "company_name", "title", "source",
		"status", "score", "notes", "owner_id", "created_date", "last_modified_date",
	}).AddRow(id, name, email, nil, nil, nil, nil, "new", 0, nil, "user-1", now, now)
}

func TestProcessDirtyEmbedsAndIndexesLead(t *testing.T) {
	svc, embedder, mock := newTestEmbeddings(t)
	ctx := context.Background()

	mock.ExpectQuery("FROM " + constants.TableLead).
		WillReturnRows(singleLeadRows("lead-1", "Jordan Reyes", "jordan@acme.io"))
	mock.ExpectQuery("FROM " + constants.TableEmbedding).
		WillReturnRows(sqlmock.NewRows([]string{"entity_id", "content_hash"}))
	mock.ExpectExec("INSERT INTO " + constants.TableEmbedding).
		WillReturnResult(sqlmock.NewResult(0, 1))

	svc.MarkDirty(constants.EntityKindLead, "lead-1")
	require.NoError(t, svc.ProcessDirty(ctx))

	assert.Equal(t, 1, svc.Index(constants.EntityKindLead).Len())
	assert.Equal(t, 1, embedder.Calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProcessDirtySkipsUnchangedContent(t *testing.T) {
	svc, embedder, mock := newTestEmbeddings(t)
	ctx := context.Background()

	text := LeadText(&models.Lead{ID: "lead-1", Name: "Jordan Reyes", Email: "jordan@acme.io", Status: "new"})

	mock.ExpectQuery("FROM " + constants.TableLead).
		WillReturnRows(singleLeadRows("lead-1", "Jordan Reyes", "jordan@acme.io"))
	mock.ExpectQuery("FROM " + constants.TableEmbedding).
		WillReturnRows(sqlmock.NewRows([]string{"entity_id", "content_hash"}).
			AddRow("lead-1", ContentHash(text)))

	svc.MarkDirty(constants.EntityKindLead, "lead-1")
	require.NoError(t, svc.ProcessDirty(ctx))

	// Stored hash matches; no embedding call, no upsert
	assert.Equal(t, 0, embedder.Calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProcessDirtyRequeuesOnEmbedFailure(t *testing.T) {
	svc, embedder, mock := newTestEmbeddings(t)
	embedder.Err = assert.AnError
	ctx := context.Background()

	mock.ExpectQuery("FROM " + constants.TableLead).
		WillReturnRows(singleLeadRows("lead-1", "Jordan Reyes", "jordan@acme.io"))
	mock.ExpectQuery("FROM " + constants.TableEmbedding).
		WillReturnRows(sqlmock.NewRows([]string{"entity_id", "content_hash"}))

	svc.MarkDirty(constants.EntityKindLead, "lead-1")
	require.Error(t, svc.ProcessDirty(ctx))

	// Failed entity stays queued for the next tick
	assert.Equal(t, 1, pendingCount(svc))
}

// pendingCount reads the dirty set size without hitting the database.
func pendingCount(svc *EmbeddingService) int {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	return len(svc.dirty)
}

func TestMarkDirtyIgnoresKeywordOnlyKinds(t *testing.T) {
	svc, _, _ := newTestEmbeddings(t)

	svc.MarkDirty(constants.EntityKindDeal, "deal-1")
	assert.Zero(t, pendingCount(svc))
}
