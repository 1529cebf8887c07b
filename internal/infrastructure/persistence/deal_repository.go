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

type DealRepository struct {
	db *sql.DB
}

func NewDealRepository(db *sql.DB) *DealRepository {
	return &DealRepository{db: db}
}

const dealColumns = "id, name, company_id, contact_id, stage, amount, close_date, probability, notes, owner_id, created_date, last_modified_date"

func scanDeal(scanner interface{ Scan(...interface{}) error }) (*models.Deal, error) {
	var d models.Deal
	var companyID, contactID, notes sql.NullString
	var closeDate sql.NullTime
	err := scanner.Scan(
		&d.ID, &d.Name, &companyID, &contactID, &d.Stage, &d.Amount,
		&closeDate, &d.Probability, &notes, &d.OwnerID, &d.CreatedDate, &d.ModifiedAt,
	)
	if err != nil {
		return nil, err
	}
	if companyID.Valid {
		d.CompanyID = &companyID.String
	}
	if contactID.Valid {
		d.ContactID = &contactID.String
	}
	if closeDate.Valid {
		d.CloseDate = &closeDate.Time
	}
	d.Notes = notes.String
	return &d, nil
}

// Create inserts a new deal
func (r *DealRepository) Create(ctx context.Context, d *models.Deal) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		constants.TableDeal, dealColumns)

	now := time.Now()
	d.CreatedDate = now
	d.ModifiedAt = now

	_, err := r.db.ExecContext(ctx, query,
		d.ID, d.Name, d.CompanyID, d.ContactID, d.Stage, d.Amount,
		d.CloseDate, d.Probability, d.Notes, d.OwnerID, d.CreatedDate, d.ModifiedAt,
	)
	return err
}

// GetByID fetches a deal; returns nil when not found
func (r *DealRepository) GetByID(ctx context.Context, id string) (*models.Deal, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s = ? LIMIT 1",
		dealColumns, constants.TableDeal, constants.FieldID)

	d, err := scanDeal(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return d, nil
}

// Update applies a partial update from a column -> value map
func (r *DealRepository) Update(ctx context.Context, id string, updates map[string]interface{}) error {
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
		constants.TableDeal, strings.Join(setClauses, ", "), constants.FieldID)
	args = append(args, id)

	_, err := r.db.ExecContext(ctx, query, args...)
	return err
}

// Delete removes a deal
func (r *DealRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE %s = ?", constants.TableDeal, constants.FieldID)
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

// List retrieves deals, optionally filtered by stage, newest first
func (r *DealRepository) List(ctx context.Context, stage string, limit int) ([]*models.Deal, error) {
	query := fmt.Sprintf("SELECT %s FROM %s", dealColumns, constants.TableDeal)
	args := []interface{}{}

	if stage != "" {
		query += " WHERE stage = ?"
		args = append(args, stage)
	}
	query += fmt.Sprintf(" ORDER BY %s DESC", constants.FieldCreatedDate)
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	deals := make([]*models.Deal, 0)
	for rows.Next() {
		d, err := scanDeal(rows)
		if err != nil {
			return nil, err
		}
		deals = append(deals, d)
	}
	return deals, rows.Err()
}

// KeywordSearch finds deals whose name or notes contains the term
func (r *DealRepository) KeywordSearch(ctx context.Context, term string, limit int) ([]*models.Deal, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE name LIKE ? OR notes LIKE ?
		LIMIT ?`,
		dealColumns, constants.TableDeal)

	pattern := likePattern(term)
	rows, err := r.db.QueryContext(ctx, query, pattern, pattern, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	deals := make([]*models.Deal, 0)
	for rows.Next() {
		d, err := scanDeal(rows)
		if err != nil {
			return nil, err
		}
		deals = append(deals, d)
	}
	return deals, rows.Err()
}
