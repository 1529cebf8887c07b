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

// EmailService stores email thread entries linked to deals or leads. Drafting
// and summarizing live in AssistService; this service owns the records.
type EmailService struct {
	emails *persistence.EmailRepository
	deals  *persistence.DealRepository
	leads  *persistence.LeadRepository
}

func NewEmailService(emails *persistence.EmailRepository, deals *persistence.DealRepository, leads *persistence.LeadRepository) *EmailService {
	return &EmailService{emails: emails, deals: deals, leads: leads}
}

// CreateEmailRequest is the payload for recording an email.
type CreateEmailRequest struct {
	DealID    *string    `json:"deal_id"`
	LeadID    *string    `json:"lead_id"`
	Direction string     `json:"direction" binding:"required"`
	Subject   string     `json:"subject" binding:"required"`
	Body      string     `json:"body" binding:"required"`
	SentAt    *time.Time `json:"sent_at"`
}

func (s *EmailService) Create(ctx context.Context, user *auth.UserSession, req CreateEmailRequest) (*models.EmailMessage, error) {
	if req.Direction != constants.EmailDirectionInbound && req.Direction != constants.EmailDirectionOutbound {
		return nil, errors.NewValidationError("direction", fmt.Sprintf("Unknown email direction '%s'", req.Direction))
	}
	if req.DealID == nil && req.LeadID == nil {
		return nil, errors.NewValidationError("deal_id", "Email must reference a deal or a lead")
	}

	if req.DealID != nil {
		deal, err := s.deals.GetByID(ctx, *req.DealID)
		if err != nil {
			return nil, err
		}
		if deal == nil {
			return nil, errors.NewNotFoundError("Deal", *req.DealID)
		}
	}
	if req.LeadID != nil {
		lead, err := s.leads.GetByID(ctx, *req.LeadID)
		if err != nil {
			return nil, err
		}
		if lead == nil {
			return nil, errors.NewNotFoundError("Lead", *req.LeadID)
		}
	}

	email := &models.EmailMessage{
		ID:        utils.GenerateID(),
		DealID:    req.DealID,
		LeadID:    req.LeadID,
		Direction: req.Direction,
		Subject:   strings.TrimSpace(req.Subject),
		Body:      req.Body,
		SentAt:    req.SentAt,
		OwnerID:   user.ID,
	}

	if err := s.emails.Create(ctx, email); err != nil {
		return nil, fmt.Errorf("failed to create email: %w", err)
	}
	return email, nil
}

func (s *EmailService) Get(ctx context.Context, id string) (*models.EmailMessage, error) {
	email, err := s.emails.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if email == nil {
		return nil, errors.NewNotFoundError("Email", id)
	}
	return email, nil
}

func (s *EmailService) Delete(ctx context.Context, user *auth.UserSession, id string) error {
	email, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := requireOwnership(user, email.OwnerID, "delete", "email"); err != nil {
		return err
	}
	return s.emails.Delete(ctx, id)
}

// ListByDeal returns the email thread for one deal.
func (s *EmailService) ListByDeal(ctx context.Context, dealID string, limit int) ([]*models.EmailMessage, error) {
	return s.emails.ListByDeal(ctx, dealID, limit)
}

// ListByLead returns the email thread for one lead.
func (s *EmailService) ListByLead(ctx context.Context, leadID string, limit int) ([]*models.EmailMessage, error) {
	return s.emails.ListByLead(ctx, leadID, limit)
}

// List returns recent emails.
func (s *EmailService) List(ctx context.Context, limit int) ([]*models.EmailMessage, error) {
	return s.emails.List(ctx, limit)
}
