package persistence

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func leadRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "name", "email", "phone", "company_name", "title", "source",
		"status", "score", "notes", "owner_id", "created_date", "last_modified_date",
	})
}

func TestLeadRepositoryGetByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewLeadRepository(db)
	now := time.Now()

	rows := leadRows().AddRow(
		"lead-1", "Ada Lovelace", "ada@acme.io", "555-0100", "Acme", "CTO", "webinar",
		"qualified", 42, "met at conf", "user-1", now, now,
	)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE id = ? LIMIT 1")).
		WithArgs("lead-1").
		WillReturnRows(rows)

	lead, err := repo.GetByID(context.Background(), "lead-1")
	require.NoError(t, err)
	require.NotNil(t, lead)
	assert.Equal(t, "Ada Lovelace", lead.Name)
	assert.Equal(t, "Acme", lead.CompanyName)
	assert.Equal(t, 42, lead.Score)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLeadRepositoryGetByIDNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewLeadRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE id = ? LIMIT 1")).
		WithArgs("missing").
		WillReturnRows(leadRows())

	lead, err := repo.GetByID(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, lead)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLeadRepositoryUpdateTouchesModifiedDate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewLeadRepository(db)

	mock.ExpectExec("UPDATE leads SET .*last_modified_date = \\?.* WHERE id = \\?").
		WithArgs("contacted", sqlmock.AnyArg(), "lead-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.Update(context.Background(), "lead-1", map[string]interface{}{
		"status": "contacted",
	})
	require.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLeadRepositoryUpdateScore(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewLeadRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE leads SET score = ?")).
		WithArgs(75, sqlmock.AnyArg(), "lead-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdateScore(context.Background(), "lead-1", 75))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLeadRepositoryKeywordSearch(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewLeadRepository(db)
	now := time.Now()

	rows := leadRows().AddRow(
		"lead-2", "Grace Hopper", "grace@navy.mil", nil, "Navy", nil, nil,
		"new", 0, nil, "user-1", now, now,
	)

	mock.ExpectQuery(regexp.QuoteMeta("name LIKE ? OR email LIKE ? OR company_name LIKE ? OR title LIKE ?")).
		WithArgs("%grace%", "%grace%", "%grace%", "%grace%", 10).
		WillReturnRows(rows)

	leads, err := repo.KeywordSearch(context.Background(), "grace", 10)
	require.NoError(t, err)
	require.Len(t, leads, 1)
	assert.Equal(t, "Grace Hopper", leads[0].Name)
	assert.Empty(t, leads[0].Title)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLeadRepositoryKeywordSearchEscapesWildcards(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewLeadRepository(db)

	// A bare "%" term must match a literal percent sign, not every row
	mock.ExpectQuery(regexp.QuoteMeta("name LIKE ? OR email LIKE ? OR company_name LIKE ? OR title LIKE ?")).
		WithArgs(`%\%%`, `%\%%`, `%\%%`, `%\%%`, 10).
		WillReturnRows(leadRows())

	leads, err := repo.KeywordSearch(context.Background(), "%", 10)
	require.NoError(t, err)
	assert.Empty(t, leads)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLikePatternEscaping(t *testing.T) {
	assert.Equal(t, `%50\%%`, likePattern("50%"))
	assert.Equal(t, `%a\_b%`, likePattern("a_b"))
	assert.Equal(t, `%c:\\temp%`, likePattern(`c:\temp`))
	assert.Equal(t, `%plain%`, likePattern("plain"))
}
