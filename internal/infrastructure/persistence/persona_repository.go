package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/meridiancrm/backend/internal/domain/models"
	"github.com/meridiancrm/backend/pkg/constants"
)

type PersonaRepository struct {
	db *sql.DB
}

func NewPersonaRepository(db *sql.DB) *PersonaRepository {
	return &PersonaRepository{db: db}
}

const personaColumns = "id, lead_id, document, model, owner_id, created_date"

// Create inserts a new persona
func (r *PersonaRepository) Create(ctx context.Context, p *models.Persona) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s)
		VALUES (?, ?, ?, ?, ?, ?)`,
		constants.TablePersona, personaColumns)

	p.CreatedDate = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		p.ID, p.LeadID, p.Document, p.Model, p.OwnerID, p.CreatedDate,
	)
	return err
}

// GetLatestByLead fetches the most recent persona for a lead; nil when none exists
func (r *PersonaRepository) GetLatestByLead(ctx context.Context, leadID string) (*models.Persona, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE lead_id = ?
		ORDER BY %s DESC LIMIT 1`,
		personaColumns, constants.TablePersona, constants.FieldCreatedDate)

	var p models.Persona
	err := r.db.QueryRowContext(ctx, query, leadID).Scan(
		&p.ID, &p.LeadID, &p.Document, &p.Model, &p.OwnerID, &p.CreatedDate,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

// ListByLead retrieves all personas generated for a lead, newest first
func (r *PersonaRepository) ListByLead(ctx context.Context, leadID string) ([]*models.Persona, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE lead_id = ?
		ORDER BY %s DESC`,
		personaColumns, constants.TablePersona, constants.FieldCreatedDate)

	rows, err := r.db.QueryContext(ctx, query, leadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	personas := make([]*models.Persona, 0)
	for rows.Next() {
		var p models.Persona
		if err := rows.Scan(&p.ID, &p.LeadID, &p.Document, &p.Model, &p.OwnerID, &p.CreatedDate); err != nil {
			return nil, err
		}
		personas = append(personas, &p)
	}
	return personas, rows.Err()
}

// Delete removes a persona
func (r *PersonaRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE %s = ?", constants.TablePersona, constants.FieldID)
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}
