package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/meridiancrm/backend/internal/domain/models"
	"github.com/meridiancrm/backend/pkg/constants"
)

type ScoreRuleRepository struct {
	db *sql.DB
}

func NewScoreRuleRepository(db *sql.DB) *ScoreRuleRepository {
	return &ScoreRuleRepository{db: db}
}

const scoreRuleColumns = "id, name, expression, points, active, created_date, last_modified_date"

func scanScoreRule(scanner interface{ Scan(...interface{}) error }) (*models.ScoreRule, error) {
	var sr models.ScoreRule
	err := scanner.Scan(
		&sr.ID, &sr.Name, &sr.Expression, &sr.Points, &sr.Active,
		&sr.CreatedDate, &sr.ModifiedAt,
	)
	if err != nil {
		return nil, err
	}
	return &sr, nil
}

// Create inserts a new scoring rule
func (r *ScoreRuleRepository) Create(ctx context.Context, sr *models.ScoreRule) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		constants.TableScoreRule, scoreRuleColumns)

	now := time.Now()
	sr.CreatedDate = now
	sr.ModifiedAt = now

	_, err := r.db.ExecContext(ctx, query,
		sr.ID, sr.Name, sr.Expression, sr.Points, sr.Active, sr.CreatedDate, sr.ModifiedAt,
	)
	return err
}

// GetByID fetches a scoring rule; returns nil when not found
func (r *ScoreRuleRepository) GetByID(ctx context.Context, id string) (*models.ScoreRule, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s = ? LIMIT 1",
		scoreRuleColumns, constants.TableScoreRule, constants.FieldID)

	sr, err := scanScoreRule(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return sr, nil
}

// Update applies a partial update from a column -> value map
func (r *ScoreRuleRepository) Update(ctx context.Context, id string, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}

	setClauses := []string{}
	args := []interface{}{}

	for k, v := range updates {
		setClauses = append(setClauses, fmt.Sprintf("%s = ?", k))
		args = append(args, v)
	}

	setClauses = append(setClauses, fmt.Sprintf("%s = ?", constants.FieldLastModifiedDate))
	args = append(args, time.Now())

	query := fmt.Sprintf("UPDATE %s SET %s WHERE %s = ?",
		constants.TableScoreRule, strings.Join(setClauses, ", "), constants.FieldID)
	args = append(args, id)

	_, err := r.db.ExecContext(ctx, query, args...)
	return err
}

// Delete removes a scoring rule
func (r *ScoreRuleRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE %s = ?", constants.TableScoreRule, constants.FieldID)
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

// List retrieves all scoring rules
func (r *ScoreRuleRepository) List(ctx context.Context) ([]*models.ScoreRule, error) {
	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY %s DESC",
		scoreRuleColumns, constants.TableScoreRule, constants.FieldCreatedDate)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rules := make([]*models.ScoreRule, 0)
	for rows.Next() {
		sr, err := scanScoreRule(rows)
		if err != nil {
			return nil, err
		}
		rules = append(rules, sr)
	}
	return rules, rows.Err()
}

// ListActive retrieves only active scoring rules
func (r *ScoreRuleRepository) ListActive(ctx context.Context) ([]*models.ScoreRule, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE active = true", scoreRuleColumns, constants.TableScoreRule)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rules := make([]*models.ScoreRule, 0)
	for rows.Next() {
		sr, err := scanScoreRule(rows)
		if err != nil {
			return nil, err
		}
		rules = append(rules, sr)
	}
	return rules, rows.Err()
}
