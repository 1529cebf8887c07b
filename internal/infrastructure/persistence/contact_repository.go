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

type ContactRepository struct {
	db *sql.DB
}

func NewContactRepository(db *sql.DB) *ContactRepository {
	return &ContactRepository{db: db}
}

const contactColumns = "id, name, email, phone, title, company_id, owner_id, created_date, last_modified_date"

func scanContact(scanner interface{ Scan(...interface{}) error }) (*models.Contact, error) {
	var c models.Contact
	var phone, title, companyID sql.NullString
	err := scanner.Scan(
		&c.ID, &c.Name, &c.Email, &phone, &title, &companyID,
		&c.OwnerID, &c.CreatedDate, &c.ModifiedAt,
	)
	if err != nil {
		return nil, err
	}
	c.Phone = phone.String
	c.Title = title.String
	if companyID.Valid {
		c.CompanyID = &companyID.String
	}
	return &c, nil
}

// Create inserts a new contact
func (r *ContactRepository) Create(ctx context.Context, c *models.Contact) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		constants.TableContact, contactColumns)

	now := time.Now()
	c.CreatedDate = now
	c.ModifiedAt = now

	_, err := r.db.ExecContext(ctx, query,
		c.ID, c.Name, c.Email, c.Phone, c.Title, c.CompanyID,
		c.OwnerID, c.CreatedDate, c.ModifiedAt,
	)
	return err
}

// GetByID fetches a contact; returns nil when not found
func (r *ContactRepository) GetByID(ctx context.Context, id string) (*models.Contact, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s = ? LIMIT 1",
		contactColumns, constants.TableContact, constants.FieldID)

	c, err := scanContact(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return c, nil
}

// Update applies a partial update from a column -> value map
func (r *ContactRepository) Update(ctx context.Context, id string, updates map[string]interface{}) error {
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
		constants.TableContact, strings.Join(setClauses, ", "), constants.FieldID)
	args = append(args, id)

	_, err := r.db.ExecContext(ctx, query, args...)
	return err
}

// Delete removes a contact
func (r *ContactRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE %s = ?", constants.TableContact, constants.FieldID)
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

// List retrieves contacts, optionally scoped to a company, newest first
func (r *ContactRepository) List(ctx context.Context, companyID string, limit int) ([]*models.Contact, error) {
	query := fmt.Sprintf("SELECT %s FROM %s", contactColumns, constants.TableContact)
	args := []interface{}{}

	if companyID != "" {
		query += " WHERE company_id = ?"
		args = append(args, companyID)
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

	contacts := make([]*models.Contact, 0)
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		contacts = append(contacts, c)
	}
	return contacts, rows.Err()
}

// KeywordSearch finds contacts whose name, email or title contains the term
func (r *ContactRepository) KeywordSearch(ctx context.Context, term string, limit int) ([]*models.Contact, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE name LIKE ? OR email LIKE ? OR title LIKE ?
		LIMIT ?`,
		contactColumns, constants.TableContact)

	pattern := likePattern(term)
	rows, err := r.db.QueryContext(ctx, query, pattern, pattern, pattern, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	contacts := make([]*models.Contact, 0)
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		contacts = append(contacts, c)
	}
	return contacts, rows.Err()
}
