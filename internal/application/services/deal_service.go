package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/meridiancrm/backend/internal/domain/models"
	"github.com/meridiancrm/backend/internal/infrastructure/persistence"
	"github.com/meridiancrm/backend/pkg/auth"
	"github.com/meridiancrm/backend/pkg/constants"
	"github.com/meridiancrm/backend/pkg/errors"
	"github.com/meridiancrm/backend/pkg/utils"
)

// DealService handles deal CRUD. Deals are keyword-searchable only, so no
// embedding bookkeeping happens here.
type DealService struct {
	deals     *persistence.DealRepository
	companies *persistence.CompanyRepository
	contacts  *persistence.ContactRepository
}

func NewDealService(deals *persistence.DealRepository, companies *persistence.CompanyRepository, contacts *persistence.ContactRepository) *DealService {
	return &DealService{deals: deals, companies: companies, contacts: contacts}
}

// CreateDealRequest is the payload for creating a deal.
type CreateDealRequest struct {
	Name        string     `json:"name" binding:"required"`
	CompanyID   *string    `json:"company_id"`
	ContactID   *string    `json:"contact_id"`
	Stage       string     `json:"stage"`
	Amount      float64    `json:"amount"`
	CloseDate   *time.Time `json:"close_date"`
	Probability int        `json:"probability"`
	Notes       string     `json:"notes"`
}

func (s *DealService) Create(ctx context.Context, user *auth.UserSession, req CreateDealRequest) (*models.Deal, error) {
	stage := req.Stage
	if stage == "" {
		stage = constants.DealStageProspecting
	}
	if !constants.ValidEnum(stage, constants.DealStages) {
		return nil, errors.NewValidationError("stage", fmt.Sprintf("Unknown deal stage '%s'", stage))
	}
	if req.Probability < 0 || req.Probability > 100 {
		return nil, errors.NewValidationError("probability", "Probability must be between 0 and 100")
	}
	if req.Amount < 0 {
		return nil, errors.NewValidationError("amount", "Amount must not be negative")
	}

	if req.CompanyID != nil {
		company, err := s.companies.GetByID(ctx, *req.CompanyID)
		if err != nil {
			return nil, err
		}
		if company == nil {
			return nil, errors.NewNotFoundError("Company", *req.CompanyID)
		}
	}
	if req.ContactID != nil {
		contact, err := s.contacts.GetByID(ctx, *req.ContactID)
		if err != nil {
			return nil, err
		}
		if contact == nil {
			return nil, errors.NewNotFoundError("Contact", *req.ContactID)
		}
	}

	deal := &models.Deal{
		ID:          utils.GenerateID(),
		Name:        strings.TrimSpace(req.Name),
		CompanyID:   req.CompanyID,
		ContactID:   req.ContactID,
		Stage:       stage,
		Amount:      req.Amount,
		CloseDate:   req.CloseDate,
		Probability: req.Probability,
		Notes:       req.Notes,
		OwnerID:     user.ID,
	}

	if err := s.deals.Create(ctx, deal); err != nil {
		return nil, fmt.Errorf("failed to create deal: %w", err)
	}
	return deal, nil
}

func (s *DealService) Get(ctx context.Context, id string) (*models.Deal, error) {
	deal, err := s.deals.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if deal == nil {
		return nil, errors.NewNotFoundError("Deal", id)
	}
	return deal, nil
}

func (s *DealService) Update(ctx context.Context, user *auth.UserSession, id string, updates map[string]interface{}) (*models.Deal, error) {
	deal, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := requireOwnership(user, deal.OwnerID, "update", "deal"); err != nil {
		return nil, err
	}

	if stage, ok := updates["stage"].(string); ok {
		if !constants.ValidEnum(stage, constants.DealStages) {
			return nil, errors.NewValidationError("stage", fmt.Sprintf("Unknown deal stage '%s'", stage))
		}
	}

	if err := s.deals.Update(ctx, id, updates); err != nil {
		return nil, fmt.Errorf("failed to update deal: %w", err)
	}
	return s.Get(ctx, id)
}

func (s *DealService) Delete(ctx context.Context, user *auth.UserSession, id string) error {
	deal, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := requireOwnership(user, deal.OwnerID, "delete", "deal"); err != nil {
		return err
	}
	return s.deals.Delete(ctx, id)
}

// List returns deals, optionally filtered by stage.
func (s *DealService) List(ctx context.Context, stage string, limit int) ([]*models.Deal, error) {
	if stage != "" && !constants.ValidEnum(stage, constants.DealStages) {
		return nil, errors.NewValidationError("stage", fmt.Sprintf("Unknown deal stage '%s'", stage))
	}
	return s.deals.List(ctx, stage, limit)
}
