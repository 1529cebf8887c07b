package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/meridiancrm/backend/internal/domain/models"
	"github.com/meridiancrm/backend/pkg/constants"
)

type EmailRepository struct {
	db *sql.DB
}

func NewEmailRepository(db *sql.DB) *EmailRepository {
	return &EmailRepository{db: db}
}

const emailColumns = "id, deal_id, lead_id, direction, subject, body, summary, sent_at, owner_id, created_date, last_modified_date"

func scanEmail(scanner interface{ Scan(...interface{}) error }) (*models.EmailMessage, error) {
	var e models.EmailMessage
	var dealID, leadID, summary sql.NullString
	var sentAt sql.NullTime
	err := scanner.Scan(
		&e.ID, &dealID, &leadID, &e.Direction, &e.Subject, &e.Body,
		&summary, &sentAt, &e.OwnerID, &e.CreatedDate, &e.ModifiedAt,
	)
	if err != nil {
		return nil, err
	}
	if dealID.Valid {
		e.DealID = &dealID.String
	}
	if leadID.Valid {
		e.LeadID = &leadID.String
	}
	e.Summary = summary.String
	if sentAt.Valid {
		e.SentAt = &sentAt.Time
	}
	return &e, nil
}

// Create inserts a new email message
func (r *EmailRepository) Create(ctx context.Context, e *models.EmailMessage) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		constants.TableEmail, emailColumns)

	now := time.Now()
	e.CreatedDate = now
	e.ModifiedAt = now

	_, err := r.db.ExecContext(ctx, query,
		e.ID, e.DealID, e.LeadID, e.Direction, e.Subject, e.Body,
		e.Summary, e.SentAt, e.OwnerID, e.CreatedDate, e.ModifiedAt,
	)
	return err
}

// GetByID fetches an email message; returns nil when not found
func (r *EmailRepository) GetByID(ctx context.Context, id string) (*models.EmailMessage, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s = ? LIMIT 1",
		emailColumns, constants.TableEmail, constants.FieldID)

	e, err := scanEmail(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return e, nil
}

// UpdateSummary stores the AI-generated summary for an email
func (r *EmailRepository) UpdateSummary(ctx context.Context, id, summary string) error {
	query := fmt.Sprintf("UPDATE %s SET summary = ?, %s = ? WHERE %s = ?",
		constants.TableEmail, constants.FieldLastModifiedDate, constants.FieldID)
	_, err := r.db.ExecContext(ctx, query, summary, time.Now(), id)
	return err
}

// Delete removes an email message
func (r *EmailRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE %s = ?", constants.TableEmail, constants.FieldID)
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

// ListByDeal retrieves emails linked to a deal, newest first
func (r *EmailRepository) ListByDeal(ctx context.Context, dealID string, limit int) ([]*models.EmailMessage, error) {
	return r.listBy(ctx, "deal_id", dealID, limit)
}

// ListByLead retrieves emails linked to a lead, newest first
func (r *EmailRepository) ListByLead(ctx context.Context, leadID string, limit int) ([]*models.EmailMessage, error) {
	return r.listBy(ctx, "lead_id", leadID, limit)
}

func (r *EmailRepository) listBy(ctx context.Context, column, value string, limit int) ([]*models.EmailMessage, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s = ? ORDER BY %s DESC",
		emailColumns, constants.TableEmail, column, constants.FieldCreatedDate)
	args := []interface{}{value}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	emails := make([]*models.EmailMessage, 0)
	for rows.Next() {
		e, err := scanEmail(rows)
		if err != nil {
			return nil, err
		}
		emails = append(emails, e)
	}
	return emails, rows.Err()
}

// List retrieves all emails, newest first
func (r *EmailRepository) List(ctx context.Context, limit int) ([]*models.EmailMessage, error) {
	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY %s DESC",
		emailColumns, constants.TableEmail, constants.FieldCreatedDate)
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

	emails := make([]*models.EmailMessage, 0)
	for rows.Next() {
		e, err := scanEmail(rows)
		if err != nil {
			return nil, err
		}
		emails = append(emails, e)
	}
	return emails, rows.Err()
}
