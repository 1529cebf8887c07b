package services

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/meridiancrm/backend/internal/domain/models"
	"github.com/meridiancrm/backend/internal/infrastructure/persistence"
	"github.com/meridiancrm/backend/pkg/constants"
	"github.com/meridiancrm/backend/pkg/errors"
	"github.com/meridiancrm/backend/pkg/scoring"
	"github.com/meridiancrm/backend/pkg/utils"
)

// ScoringService manages lead scoring rules and recomputes lead scores.
// Rules are boolean expressions evaluated against a flattened lead
// environment; every matching rule adds its points.
type ScoringService struct {
	engine *scoring.Engine
	rules  *persistence.ScoreRuleRepository
	leads  *persistence.LeadRepository
}

func NewScoringService(rules *persistence.ScoreRuleRepository, leads *persistence.LeadRepository) *ScoringService {
	return &ScoringService{
		engine: scoring.NewEngine(),
		rules:  rules,
		leads:  leads,
	}
}

// CreateRuleRequest is the payload for creating a scoring rule.
type CreateRuleRequest struct {
	Name       string `json:"name" binding:"required"`
	Expression string `json:"expression" binding:"required"`
	Points     int    `json:"points" binding:"required"`
	Active     *bool  `json:"active"`
}

// CreateRule validates the expression and stores the rule.
func (s *ScoringService) CreateRule(ctx context.Context, req CreateRuleRequest) (*models.ScoreRule, error) {
	if err := s.engine.Validate(req.Expression); err != nil {
		return nil, errors.NewValidationError("expression", err.Error())
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	rule := &models.ScoreRule{
		ID:         utils.GenerateID(),
		Name:       strings.TrimSpace(req.Name),
		Expression: req.Expression,
		Points:     req.Points,
		Active:     active,
	}
	if rule.Name == "" {
		return nil, errors.NewValidationError("name", "Rule name must not be empty")
	}

	if err := s.rules.Create(ctx, rule); err != nil {
		return nil, fmt.Errorf("failed to create scoring rule: %w", err)
	}
	return rule, nil
}

// UpdateRule applies a partial update; a changed expression is re-validated.
func (s *ScoringService) UpdateRule(ctx context.Context, id string, updates map[string]interface{}) (*models.ScoreRule, error) {
	rule, err := s.rules.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rule == nil {
		return nil, errors.NewNotFoundError("Scoring rule", id)
	}

	if exprVal, ok := updates["expression"]; ok {
		exprStr, ok := exprVal.(string)
		if !ok {
			return nil, errors.NewValidationError("expression", "Expression must be a string")
		}
		if err := s.engine.Validate(exprStr); err != nil {
			return nil, errors.NewValidationError("expression", err.Error())
		}
	}

	if err := s.rules.Update(ctx, id, updates); err != nil {
		return nil, fmt.Errorf("failed to update scoring rule: %w", err)
	}
	return s.rules.GetByID(ctx, id)
}

// DeleteRule removes a scoring rule.
func (s *ScoringService) DeleteRule(ctx context.Context, id string) error {
	rule, err := s.rules.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if rule == nil {
		return errors.NewNotFoundError("Scoring rule", id)
	}
	return s.rules.Delete(ctx, id)
}

// ListRules returns all scoring rules.
func (s *ScoringService) ListRules(ctx context.Context) ([]*models.ScoreRule, error) {
	return s.rules.List(ctx)
}

// ScoreLead evaluates the active rules against a lead and returns the score
// and the names of the rules that matched. Does not persist.
func (s *ScoringService) ScoreLead(ctx context.Context, lead *models.Lead) (int, []string, error) {
	stored, err := s.rules.ListActive(ctx)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to load scoring rules: %w", err)
	}

	rules := make([]scoring.Rule, len(stored))
	for i, r := range stored {
		rules[i] = scoring.Rule{
			ID:         r.ID,
			Name:       r.Name,
			Expression: r.Expression,
			Points:     r.Points,
			Active:     r.Active,
		}
	}

	return s.engine.Score(rules, leadEnv(lead))
}

// RescoreLead recomputes and persists one lead's score.
func (s *ScoringService) RescoreLead(ctx context.Context, lead *models.Lead) error {
	score, _, err := s.ScoreLead(ctx, lead)
	if err != nil {
		return err
	}
	if score == lead.Score {
		return nil
	}
	lead.Score = score
	return s.leads.UpdateScore(ctx, lead.ID, score)
}

// RescoreAll recomputes scores for every lead. Called after rule changes.
func (s *ScoringService) RescoreAll(ctx context.Context) (int, error) {
	leads, err := s.leads.List(ctx, "", 0)
	if err != nil {
		return 0, fmt.Errorf("failed to list leads: %w", err)
	}

	changed := 0
	for _, lead := range leads {
		before := lead.Score
		if err := s.RescoreLead(ctx, lead); err != nil {
			log.Printf("⚠️ Rescore failed for lead %s: %v", lead.ID, err)
			continue
		}
		if lead.Score != before {
			changed++
		}
	}
	return changed, nil
}

// leadEnv flattens a lead into the expression environment. Field names here
// are the vocabulary rule authors write against.
func leadEnv(l *models.Lead) map[string]interface{} {
	return map[string]interface{}{
		"name":         l.Name,
		"email":        l.Email,
		"phone":        l.Phone,
		"company_name": l.CompanyName,
		"title":        l.Title,
		"source":       l.Source,
		"status":       l.Status,
		"notes":        l.Notes,
		"has_phone":    l.Phone != "",
		"has_company":  l.CompanyName != "",
		"is_qualified": l.Status == constants.LeadStatusQualified,
	}
}
