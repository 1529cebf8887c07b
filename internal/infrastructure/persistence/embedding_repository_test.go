package persistence

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddingRepositoryUpsert(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewEmbeddingRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("ON DUPLICATE KEY UPDATE")).
		WithArgs("lead", "lead-1", "Ada Lovelace ada@acme.io", "abc123", `[0.5,0.5]`, "text-embedding-3-small", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.Upsert(context.Background(), "lead", "lead-1",
		"Ada Lovelace ada@acme.io", "abc123", []float32{0.5, 0.5}, "text-embedding-3-small")
	require.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEmbeddingRepositoryLoadKind(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewEmbeddingRepository(db)

	rows := sqlmock.NewRows([]string{"entity_id", "content", "vector"}).
		AddRow("lead-1", "Ada Lovelace", `[1,0]`).
		AddRow("lead-2", "Grace Hopper", `[0,1]`)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT entity_id, content, vector FROM entity_embeddings WHERE kind = ?")).
		WithArgs("lead").
		WillReturnRows(rows)

	entries, err := repo.LoadKind(context.Background(), "lead")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "lead-1", entries[0].ID)
	assert.Equal(t, []float32{1, 0}, entries[0].Vector)
	assert.Equal(t, "Grace Hopper", entries[1].Text)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEmbeddingRepositoryLoadKindBadVector(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewEmbeddingRepository(db)

	rows := sqlmock.NewRows([]string{"entity_id", "content", "vector"}).
		AddRow("lead-1", "Ada Lovelace", `not-json`)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE kind = ?")).
		WithArgs("lead").
		WillReturnRows(rows)

	_, err = repo.LoadKind(context.Background(), "lead")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode vector")
}

func TestEmbeddingRepositoryHashes(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewEmbeddingRepository(db)

	rows := sqlmock.NewRows([]string{"entity_id", "content_hash"}).
		AddRow("lead-1", "h1").
		AddRow("lead-2", "h2")

	mock.ExpectQuery(regexp.QuoteMeta("SELECT entity_id, content_hash FROM entity_embeddings WHERE kind = ?")).
		WithArgs("lead").
		WillReturnRows(rows)

	hashes, err := repo.Hashes(context.Background(), "lead")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"lead-1": "h1", "lead-2": "h2"}, hashes)

	assert.NoError(t, mock.ExpectationsWereMet())
}
