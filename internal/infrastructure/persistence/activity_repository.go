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

type ActivityRepository struct {
	db *sql.DB
}

func NewActivityRepository(db *sql.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

const activityColumns = "id, type, subject, body, due_date, completed, related_kind, related_id, owner_id, created_date, last_modified_date"

func scanActivity(scanner interface{ Scan(...interface{}) error }) (*models.Activity, error) {
	var a models.Activity
	var body, relatedKind, relatedID sql.NullString
	var dueDate sql.NullTime
	err := scanner.Scan(
		&a.ID, &a.Type, &a.Subject, &body, &dueDate, &a.Completed,
		&relatedKind, &relatedID, &a.OwnerID, &a.CreatedDate, &a.ModifiedAt,
	)
	if err != nil {
		return nil, err
	}
	a.Body = body.String
	a.RelatedKind = relatedKind.String
	a.RelatedID = relatedID.String
	if dueDate.Valid {
		a.DueDate = &dueDate.Time
	}
	return &a, nil
}

// Create inserts a new activity
func (r *ActivityRepository) Create(ctx context.Context, a *models.Activity) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		constants.TableActivity, activityColumns)

	now := time.Now()
	a.CreatedDate = now
	a.ModifiedAt = now

	_, err := r.db.ExecContext(ctx, query,
		a.ID, a.Type, a.Subject, a.Body, a.DueDate, a.Completed,
		a.RelatedKind, a.RelatedID, a.OwnerID, a.CreatedDate, a.ModifiedAt,
	)
	return err
}

// GetByID fetches an activity; returns nil when not found
func (r *ActivityRepository) GetByID(ctx context.Context, id string) (*models.Activity, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s = ? LIMIT 1",
		activityColumns, constants.TableActivity, constants.FieldID)

	a, err := scanActivity(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return a, nil
}

// Update applies a partial update from a column -> value map
func (r *ActivityRepository) Update(ctx context.Context, id string, updates map[string]interface{}) error {
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
		constants.TableActivity, strings.Join(setClauses, ", "), constants.FieldID)
	args = append(args, id)

	_, err := r.db.ExecContext(ctx, query, args...)
	return err
}

// Delete removes an activity
func (r *ActivityRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE %s = ?", constants.TableActivity, constants.FieldID)
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

// ListByRelated retrieves activities attached to an entity, newest first
func (r *ActivityRepository) ListByRelated(ctx context.Context, kind, id string, limit int) ([]*models.Activity, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE related_kind = ? AND related_id = ?
		ORDER BY %s DESC`,
		activityColumns, constants.TableActivity, constants.FieldCreatedDate)
	args := []interface{}{kind, id}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	activities := make([]*models.Activity, 0)
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, err
		}
		activities = append(activities, a)
	}
	return activities, rows.Err()
}

// List retrieves all activities, newest first
func (r *ActivityRepository) List(ctx context.Context, limit int) ([]*models.Activity, error) {
	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY %s DESC",
		activityColumns, constants.TableActivity, constants.FieldCreatedDate)
	args := []interface{}{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	activities := make([]*models.Activity, 0)
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, err
		}
		activities = append(activities, a)
	}
	return activities, rows.Err()
}
