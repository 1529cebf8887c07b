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

// ActivityService handles activities (calls, meetings, tasks, notes) attached
// to any CRM entity.
type ActivityService struct {
	activities *persistence.ActivityRepository
}

func NewActivityService(activities *persistence.ActivityRepository) *ActivityService {
	return &ActivityService{activities: activities}
}

// CreateActivityRequest is the payload for logging an activity.
type CreateActivityRequest struct {
	Type        string     `json:"type" binding:"required"`
	Subject     string     `json:"subject" binding:"required"`
	Body        string     `json:"body"`
	DueDate     *time.Time `json:"due_date"`
	RelatedKind string     `json:"related_kind"`
	RelatedID   string     `json:"related_id"`
}

func (s *ActivityService) Create(ctx context.Context, user *auth.UserSession, req CreateActivityRequest) (*models.Activity, error) {
	if !constants.ValidEnum(req.Type, constants.ActivityTypes) {
		return nil, errors.NewValidationError("type", fmt.Sprintf("Unknown activity type '%s'", req.Type))
	}
	if (req.RelatedKind == "") != (req.RelatedID == "") {
		return nil, errors.NewValidationError("related_kind", "related_kind and related_id must be set together")
	}

	activity := &models.Activity{
		ID:          utils.GenerateID(),
		Type:        req.Type,
		Subject:     strings.TrimSpace(req.Subject),
		Body:        req.Body,
		DueDate:     req.DueDate,
		RelatedKind: req.RelatedKind,
		RelatedID:   req.RelatedID,
		OwnerID:     user.ID,
	}

	if err := s.activities.Create(ctx, activity); err != nil {
		return nil, fmt.Errorf("failed to create activity: %w", err)
	}
	return activity, nil
}

func (s *ActivityService) Get(ctx context.Context, id string) (*models.Activity, error) {
	activity, err := s.activities.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if activity == nil {
		return nil, errors.NewNotFoundError("Activity", id)
	}
	return activity, nil
}

func (s *ActivityService) Update(ctx context.Context, user *auth.UserSession, id string, updates map[string]interface{}) (*models.Activity, error) {
	activity, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := requireOwnership(user, activity.OwnerID, "update", "activity"); err != nil {
		return nil, err
	}

	if typ, ok := updates["type"].(string); ok {
		if !constants.ValidEnum(typ, constants.ActivityTypes) {
			return nil, errors.NewValidationError("type", fmt.Sprintf("Unknown activity type '%s'", typ))
		}
	}

	if err := s.activities.Update(ctx, id, updates); err != nil {
		return nil, fmt.Errorf("failed to update activity: %w", err)
	}
	return s.Get(ctx, id)
}

func (s *ActivityService) Delete(ctx context.Context, user *auth.UserSession, id string) error {
	activity, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := requireOwnership(user, activity.OwnerID, "delete", "activity"); err != nil {
		return err
	}
	return s.activities.Delete(ctx, id)
}

// ListByRelated returns the activity timeline for one entity.
func (s *ActivityService) ListByRelated(ctx context.Context, kind, id string, limit int) ([]*models.Activity, error) {
	return s.activities.ListByRelated(ctx, kind, id, limit)
}

// List returns recent activities across all entities.
func (s *ActivityService) List(ctx context.Context, limit int) ([]*models.Activity, error) {
	return s.activities.List(ctx, limit)
}
