package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/meridiancrm/backend/internal/domain/models"
	"github.com/meridiancrm/backend/internal/infrastructure/persistence"
	"github.com/meridiancrm/backend/pkg/auth"
	"github.com/meridiancrm/backend/pkg/constants"
	"github.com/meridiancrm/backend/pkg/errors"
	"github.com/meridiancrm/backend/pkg/utils"
)

// CompanyService handles company CRUD and keeps the company semantic index
// in sync.
type CompanyService struct {
	companies  *persistence.CompanyRepository
	embeddings *EmbeddingService
}

func NewCompanyService(companies *persistence.CompanyRepository, embeddings *EmbeddingService) *CompanyService {
	return &CompanyService{companies: companies, embeddings: embeddings}
}

// CreateCompanyRequest is the payload for creating a company.
type CreateCompanyRequest struct {
	Name        string `json:"name" binding:"required"`
	Domain      string `json:"domain"`
	Industry    string `json:"industry"`
	Size        string `json:"size"`
	Location    string `json:"location"`
	Description string `json:"description"`
}

func (s *CompanyService) Create(ctx context.Context, user *auth.UserSession, req CreateCompanyRequest) (*models.Company, error) {
	company := &models.Company{
		ID:          utils.GenerateID(),
		Name:        strings.TrimSpace(req.Name),
		Domain:      strings.ToLower(strings.TrimSpace(req.Domain)),
		Industry:    req.Industry,
		Size:        req.Size,
		Location:    req.Location,
		Description: req.Description,
		OwnerID:     user.ID,
	}

	if err := s.companies.Create(ctx, company); err != nil {
		return nil, fmt.Errorf("failed to create company: %w", err)
	}

	s.embeddings.MarkDirty(constants.EntityKindCompany, company.ID)
	return company, nil
}

func (s *CompanyService) Get(ctx context.Context, id string) (*models.Company, error) {
	company, err := s.companies.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, errors.NewNotFoundError("Company", id)
	}
	return company, nil
}

func (s *CompanyService) Update(ctx context.Context, user *auth.UserSession, id string, updates map[string]interface{}) (*models.Company, error) {
	company, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := requireOwnership(user, company.OwnerID, "update", "company"); err != nil {
		return nil, err
	}

	if err := s.companies.Update(ctx, id, updates); err != nil {
		return nil, fmt.Errorf("failed to update company: %w", err)
	}

	s.embeddings.MarkDirty(constants.EntityKindCompany, id)
	return s.Get(ctx, id)
}

func (s *CompanyService) Delete(ctx context.Context, user *auth.UserSession, id string) error {
	company, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := requireOwnership(user, company.OwnerID, "delete", "company"); err != nil {
		return err
	}

	if err := s.companies.Delete(ctx, id); err != nil {
		return err
	}
	s.embeddings.Remove(ctx, constants.EntityKindCompany, id)
	return nil
}

func (s *CompanyService) List(ctx context.Context, limit int) ([]*models.Company, error) {
	return s.companies.List(ctx, limit)
}
