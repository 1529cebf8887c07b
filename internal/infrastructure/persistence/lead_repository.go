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

type LeadRepository struct {
	db *sql.DB
}

func NewLeadRepository(db *sql.DB) *LeadRepository {
	return &LeadRepository{db: db}
}

const leadColumns = "id, name, email, phone, company_name, title, source, status, score, notes, owner_id, created_date, last_modified_date"

func scanLead(scanner interface{ Scan(...interface{}) error }) (*models.Lead, error) {
	var l models.Lead
	var phone, companyName, title, source, notes sql.NullString
	err := scanner.Scan(
		&l.ID, &l.Name, &l.Email, &phone, &companyName, &title, &source,
		&l.Status, &l.Score, &notes, &l.OwnerID, &l.CreatedDate, &l.ModifiedAt,
	)
	if err != nil {
		return nil, err
	}
	l.Phone = phone.String
	l.CompanyName = companyName.String
	l.Title = title.String
	l.Source = source.String
	l.Notes = notes.String
	return &l, nil
}

// Create inserts a new lead
func (r *LeadRepository) Create(ctx context.Context, l *models.Lead) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		constants.TableLead, leadColumns)

	now := time.Now()
	l.CreatedDate = now
	l.ModifiedAt = now

	_, err := r.db.ExecContext(ctx, query,
		l.ID, l.Name, l.Email, l.Phone, l.CompanyName, l.Title, l.Source,
		l.Status, l.Score, l.Notes, l.OwnerID, l.CreatedDate, l.ModifiedAt,
	)
	return err
}

// GetByID fetches a lead; returns nil when not found
func (r *LeadRepository) GetByID(ctx context.Context, id string) (*models.Lead, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s = ? LIMIT 1",
		leadColumns, constants.TableLead, constants.FieldID)

	l, err := scanLead(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return l, nil
}

// Update applies a partial update from a column -> value map
func (r *LeadRepository) Update(ctx context.Context, id string, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}

	setClauses := []string{}
	args := []interface{}{}

	for k, v := range updates {
		setClauses = append(setClauses, fmt.Sprintf("%s = ?", k))
		args = append(args, v)
	}

	// Always update last_modified_date
	setClauses = append(setClauses, fmt.Sprintf("%s = ?", constants.FieldLastModifiedDate))
	args = append(args, time.Now())

	query := fmt.Sprintf("UPDATE %s SET %s WHERE %s = ?",
		constants.TableLead, strings.Join(setClauses, ", "), constants.FieldID)
	args = append(args, id)

	_, err := r.db.ExecContext(ctx, query, args...)
	return err
}

// UpdateScore sets the computed score without touching other columns
func (r *LeadRepository) UpdateScore(ctx context.Context, id string, score int) error {
	query := fmt.Sprintf("UPDATE %s SET score = ?, %s = ? WHERE %s = ?",
		constants.TableLead, constants.FieldLastModifiedDate, constants.FieldID)
	_, err := r.db.ExecContext(ctx, query, score, time.Now(), id)
	return err
}

// Delete removes a lead
func (r *LeadRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE %s = ?", constants.TableLead, constants.FieldID)
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

// List retrieves leads, optionally filtered by status, newest first
func (r *LeadRepository) List(ctx context.Context, status string, limit int) ([]*models.Lead, error) {
	query := fmt.Sprintf("SELECT %s FROM %s", leadColumns, constants.TableLead)
	args := []interface{}{}

	if status != "" {
		query += " WHERE status = ?"
		args = append(args, status)
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

	leads := make([]*models.Lead, 0)
	for rows.Next() {
		l, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, l)
	}
	return leads, rows.Err()
}

// KeywordSearch finds leads whose name, email, company or title contains the term
func (r *LeadRepository) KeywordSearch(ctx context.Context, term string, limit int) ([]*models.Lead, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE name LIKE ? OR email LIKE ? OR company_name LIKE ? OR title LIKE ?
		LIMIT ?`,
		leadColumns, constants.TableLead)

	pattern := likePattern(term)
	rows, err := r.db.QueryContext(ctx, query, pattern, pattern, pattern, pattern, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	leads := make([]*models.Lead, 0)
	for rows.Next() {
		l, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, l)
	}
	return leads, rows.Err()
}
