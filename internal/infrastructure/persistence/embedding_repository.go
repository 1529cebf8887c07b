package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/meridiancrm/backend/internal/search"
	"github.com/meridiancrm/backend/pkg/constants"
)

// EmbeddingRepository persists entity embeddings. Vectors are stored as JSON
// arrays so the table works on any MySQL-compatible backend; similarity search
// happens in memory after hydration, not in SQL.
type EmbeddingRepository struct {
	db *sql.DB
}

func NewEmbeddingRepository(db *sql.DB) *EmbeddingRepository {
	return &EmbeddingRepository{db: db}
}

// Upsert stores or replaces the embedding for one entity
func (r *EmbeddingRepository) Upsert(ctx context.Context, kind, entityID, content, contentHash string, vector []float32, model string) error {
	encoded, err := json.Marshal(vector)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (kind, entity_id, content, content_hash, vector, model, last_modified_date)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			content = VALUES(content),
			content_hash = VALUES(content_hash),
			vector = VALUES(vector),
			model = VALUES(model),
			last_modified_date = VALUES(last_modified_date)`,
		constants.TableEmbedding)

	_, err = r.db.ExecContext(ctx, query, kind, entityID, content, contentHash, string(encoded), model, time.Now())
	return err
}

// Hashes returns entity_id -> content_hash for one kind, used to skip
// re-embedding entities whose searchable text has not changed
func (r *EmbeddingRepository) Hashes(ctx context.Context, kind string) (map[string]string, error) {
	query := fmt.Sprintf("SELECT entity_id, content_hash FROM %s WHERE kind = ?", constants.TableEmbedding)

	rows, err := r.db.QueryContext(ctx, query, kind)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	hashes := make(map[string]string)
	for rows.Next() {
		var id, hash string
		if err := rows.Scan(&id, &hash); err != nil {
			return nil, err
		}
		hashes[id] = hash
	}
	return hashes, rows.Err()
}

// LoadKind hydrates all stored embeddings of one kind into index entries
func (r *EmbeddingRepository) LoadKind(ctx context.Context, kind string) ([]search.Entry, error) {
	query := fmt.Sprintf("SELECT entity_id, content, vector FROM %s WHERE kind = ?", constants.TableEmbedding)

	rows, err := r.db.QueryContext(ctx, query, kind)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]search.Entry, 0)
	for rows.Next() {
		var id, content, encoded string
		if err := rows.Scan(&id, &content, &encoded); err != nil {
			return nil, err
		}

		var vector []float32
		if err := json.Unmarshal([]byte(encoded), &vector); err != nil {
			return nil, fmt.Errorf("decode vector for %s/%s: %w", kind, id, err)
		}

		entries = append(entries, search.Entry{ID: id, Text: content, Vector: vector})
	}
	return entries, rows.Err()
}

// DeleteEntity removes the stored embedding for one entity
func (r *EmbeddingRepository) DeleteEntity(ctx context.Context, kind, entityID string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE kind = ? AND entity_id = ?", constants.TableEmbedding)
	_, err := r.db.ExecContext(ctx, query, kind, entityID)
	return err
}

// CountByKind returns how many embeddings exist per kind
func (r *EmbeddingRepository) CountByKind(ctx context.Context) (map[string]int, error) {
	query := fmt.Sprintf("SELECT kind, COUNT(*) FROM %s GROUP BY kind", constants.TableEmbedding)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var kind string
		var n int
		if err := rows.Scan(&kind, &n); err != nil {
			return nil, err
		}
		counts[kind] = n
	}
	return counts, rows.Err()
}
