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

type CompanyRepository struct {
	db *sql.DB
}

func NewCompanyRepository(db *sql.DB) *CompanyRepository {
	return &CompanyRepository{db: db}
}

const companyColumns = "id, name, domain, industry, size, location, description, owner_id, created_date, last_modified_date"

func scanCompany(scanner interface{ Scan(...interface{}) error }) (*models.Company, error) {
	var c models.Company
	var domain, industry, size, location, description sql.NullString
	err := scanner.Scan(
		&c.ID, &c.Name, &domain, &industry, &size, &location, &description,
		&c.OwnerID, &c.CreatedDate, &c.ModifiedAt,
	)
	if err != nil {
		return nil, err
	}
	c.Domain = domain.String
	c.Industry = industry.String
	c.Size = size.String
	c.Location = location.String
	c.Description = description.String
	return &c, nil
}

// Create inserts a new company
func (r *CompanyRepository) Create(ctx context.Context, c *models.Company) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		constants.TableCompany, companyColumns)

	now := time.Now()
	c.CreatedDate = now
	c.ModifiedAt = now

	_, err := r.db.ExecContext(ctx, query,
		c.ID, c.Name, c.Domain, c.Industry, c.Size, c.Location, c.Description,
		c.OwnerID, c.CreatedDate, c.ModifiedAt,
	)
	return err
}

// GetByID fetches a company; returns nil when not found
func (r *CompanyRepository) GetByID(ctx context.Context, id string) (*models.Company, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s = ? LIMIT 1",
		companyColumns, constants.TableCompany, constants.FieldID)

	c, err := scanCompany(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return c, nil
}

// Update applies a partial update from a column -> value map
func (r *CompanyRepository) Update(ctx context.Context, id string, updates map[string]interface{}) error {
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
		constants.TableCompany, strings.Join(setClauses, ", "), constants.FieldID)
	args = append(args, id)

	_, err := r.db.ExecContext(ctx, query, args...)
	return err
}

// Delete removes a company
func (r *CompanyRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE %s = ?", constants.TableCompany, constants.FieldID)
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

// List retrieves companies, newest first
func (r *CompanyRepository) List(ctx context.Context, limit int) ([]*models.Company, error) {
	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY %s DESC",
		companyColumns, constants.TableCompany, constants.FieldCreatedDate)
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

	companies := make([]*models.Company, 0)
	for rows.Next() {
		c, err := scanCompany(rows)
		if err != nil {
			return nil, err
		}
		companies = append(companies, c)
	}
	return companies, rows.Err()
}

// KeywordSearch finds companies whose name, domain or industry contains the term
func (r *CompanyRepository) KeywordSearch(ctx context.Context, term string, limit int) ([]*models.Company, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE name LIKE ? OR domain LIKE ? OR industry LIKE ?
		LIMIT ?`,
		companyColumns, constants.TableCompany)

	pattern := likePattern(term)
	rows, err := r.db.QueryContext(ctx, query, pattern, pattern, pattern, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	companies := make([]*models.Company, 0)
	for rows.Next() {
		c, err := scanCompany(rows)
		if err != nil {
			return nil, err
		}
		companies = append(companies, c)
	}
	return companies, rows.Err()
}
