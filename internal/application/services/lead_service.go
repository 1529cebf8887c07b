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

// LeadService handles lead CRUD. Every write rescores the lead and marks it
// dirty for re-embedding so the semantic index follows the data.
type LeadService struct {
	leads      *persistence.LeadRepository
	scoring    *ScoringService
	embeddings *EmbeddingService
}

func NewLeadService(leads *persistence.LeadRepository, scoring *ScoringService, embeddings *EmbeddingService) *LeadService {
	return &LeadService{leads: leads, scoring: scoring, embeddings: embeddings}
}

// CreateLeadRequest is the payload for creating a lead.
type CreateLeadRequest struct {
	Name        string `json:"name" binding:"required"`
	Email       string `json:"email" binding:"required"`
	Phone       string `json:"phone"`
	CompanyName string `json:"company_name"`
	Title       string `json:"title"`
	Source      string `json:"source"`
	Status      string `json:"status"`
	Notes       string `json:"notes"`
}

// Create validates, scores and stores a new lead owned by the caller.
func (s *LeadService) Create(ctx context.Context, user *auth.UserSession, req CreateLeadRequest) (*models.Lead, error) {
	if !auth.IsValidEmail(req.Email) {
		return nil, errors.NewValidationError("email", "Invalid email address")
	}

	status := req.Status
	if status == "" {
		status = constants.LeadStatusNew
	}
	if !constants.ValidEnum(status, constants.LeadStatuses) {
		return nil, errors.NewValidationError("status", fmt.Sprintf("Unknown lead status '%s'", status))
	}

	lead := &models.Lead{
		ID:          utils.GenerateID(),
		Name:        strings.TrimSpace(req.Name),
		Email:       strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:       req.Phone,
		CompanyName: req.CompanyName,
		Title:       req.Title,
		Source:      req.Source,
		Status:      status,
		Notes:       req.Notes,
		OwnerID:     user.ID,
	}

	if score, _, err := s.scoring.ScoreLead(ctx, lead); err == nil {
		lead.Score = score
	}

	if err := s.leads.Create(ctx, lead); err != nil {
		return nil, fmt.Errorf("failed to create lead: %w", err)
	}

	s.embeddings.MarkDirty(constants.EntityKindLead, lead.ID)
	return lead, nil
}

// Get fetches one lead.
func (s *LeadService) Get(ctx context.Context, id string) (*models.Lead, error) {
	lead, err := s.leads.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if lead == nil {
		return nil, errors.NewNotFoundError("Lead", id)
	}
	return lead, nil
}

// Update applies a partial update, then rescores and re-queues embedding.
func (s *LeadService) Update(ctx context.Context, user *auth.UserSession, id string, updates map[string]interface{}) (*models.Lead, error) {
	lead, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := requireOwnership(user, lead.OwnerID, "update", "lead"); err != nil {
		return nil, err
	}

	if status, ok := updates["status"].(string); ok {
		if !constants.ValidEnum(status, constants.LeadStatuses) {
			return nil, errors.NewValidationError("status", fmt.Sprintf("Unknown lead status '%s'", status))
		}
	}
	// Score is computed, never client-set
	delete(updates, "score")

	if err := s.leads.Update(ctx, id, updates); err != nil {
		return nil, fmt.Errorf("failed to update lead: %w", err)
	}

	lead, err = s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.scoring.RescoreLead(ctx, lead); err != nil {
		return nil, err
	}

	s.embeddings.MarkDirty(constants.EntityKindLead, id)
	return lead, nil
}

// Delete removes a lead and its embedding.
func (s *LeadService) Delete(ctx context.Context, user *auth.UserSession, id string) error {
	lead, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := requireOwnership(user, lead.OwnerID, "delete", "lead"); err != nil {
		return err
	}

	if err := s.leads.Delete(ctx, id); err != nil {
		return err
	}
	s.embeddings.Remove(ctx, constants.EntityKindLead, id)
	return nil
}

// List returns leads, optionally filtered by status.
func (s *LeadService) List(ctx context.Context, status string, limit int) ([]*models.Lead, error) {
	if status != "" && !constants.ValidEnum(status, constants.LeadStatuses) {
		return nil, errors.NewValidationError("status", fmt.Sprintf("Unknown lead status '%s'", status))
	}
	return s.leads.List(ctx, status, limit)
}

// requireOwnership lets admins through and otherwise demands the caller owns
// the record.
func requireOwnership(user *auth.UserSession, ownerID, action, resource string) error {
	if user.IsSuperUser() || user.ID == ownerID {
		return nil
	}
	return errors.NewPermissionError(action, resource)
}
