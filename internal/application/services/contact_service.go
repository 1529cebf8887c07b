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

// ContactService handles contact CRUD and keeps the contact semantic index
// in sync. Contacts may reference a company; the reference is validated on
// create.
type ContactService struct {
	contacts   *persistence.ContactRepository
	companies  *persistence.CompanyRepository
	embeddings *EmbeddingService
}

func NewContactService(contacts *persistence.ContactRepository, companies *persistence.CompanyRepository, embeddings *EmbeddingService) *ContactService {
	return &ContactService{contacts: contacts, companies: companies, embeddings: embeddings}
}

// CreateContactRequest is the payload for creating a contact.
type CreateContactRequest struct {
	Name      string  `json:"name" binding:"required"`
	Email     string  `json:"email" binding:"required"`
	Phone     string  `json:"phone"`
	Title     string  `json:"title"`
	CompanyID *string `json:"company_id"`
}

func (s *ContactService) Create(ctx context.Context, user *auth.UserSession, req CreateContactRequest) (*models.Contact, error) {
	if !auth.IsValidEmail(req.Email) {
		return nil, errors.NewValidationError("email", "Invalid email address")
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

	contact := &models.Contact{
		ID:        utils.GenerateID(),
		Name:      strings.TrimSpace(req.Name),
		Email:     strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:     req.Phone,
		Title:     req.Title,
		CompanyID: req.CompanyID,
		OwnerID:   user.ID,
	}

	if err := s.contacts.Create(ctx, contact); err != nil {
		return nil, fmt.Errorf("failed to create contact: %w", err)
	}

	s.embeddings.MarkDirty(constants.EntityKindContact, contact.ID)
	return contact, nil
}

func (s *ContactService) Get(ctx context.Context, id string) (*models.Contact, error) {
	contact, err := s.contacts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if contact == nil {
		return nil, errors.NewNotFoundError("Contact", id)
	}
	return contact, nil
}

func (s *ContactService) Update(ctx context.Context, user *auth.UserSession, id string, updates map[string]interface{}) (*models.Contact, error) {
	contact, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := requireOwnership(user, contact.OwnerID, "update", "contact"); err != nil {
		return nil, err
	}

	if err := s.contacts.Update(ctx, id, updates); err != nil {
		return nil, fmt.Errorf("failed to update contact: %w", err)
	}

	s.embeddings.MarkDirty(constants.EntityKindContact, id)
	return s.Get(ctx, id)
}

func (s *ContactService) Delete(ctx context.Context, user *auth.UserSession, id string) error {
	contact, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := requireOwnership(user, contact.OwnerID, "delete", "contact"); err != nil {
		return err
	}

	if err := s.contacts.Delete(ctx, id); err != nil {
		return err
	}
	s.embeddings.Remove(ctx, constants.EntityKindContact, id)
	return nil
}

// List returns contacts, optionally scoped to one company.
func (s *ContactService) List(ctx context.Context, companyID string, limit int) ([]*models.Contact, error) {
	return s.contacts.List(ctx, companyID, limit)
}
