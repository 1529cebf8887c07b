package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/meridiancrm/backend/internal/ai"
	"github.com/meridiancrm/backend/internal/domain/models"
	"github.com/meridiancrm/backend/internal/infrastructure/persistence"
	"github.com/meridiancrm/backend/pkg/auth"
	"github.com/meridiancrm/backend/pkg/constants"
	"github.com/meridiancrm/backend/pkg/errors"
	"github.com/meridiancrm/backend/pkg/utils"
)

// AssistService implements the LLM-backed features: persona generation, email
// drafting and summarizing, deal coaching, and lead/company research. Every
// call grounds the prompt on CRM records; upstream failures surface as
// UpstreamError (502) rather than internal errors.
type AssistService struct {
	chat  ai.ChatClient
	model string

	leads      *persistence.LeadRepository
	companies  *persistence.CompanyRepository
	contacts   *persistence.ContactRepository
	deals      *persistence.DealRepository
	activities *persistence.ActivityRepository
	emails     *persistence.EmailRepository
	personas   *persistence.PersonaRepository
}

func NewAssistService(
	chat ai.ChatClient,
	model string,
	leads *persistence.LeadRepository,
	companies *persistence.CompanyRepository,
	contacts *persistence.ContactRepository,
	deals *persistence.DealRepository,
	activities *persistence.ActivityRepository,
	emails *persistence.EmailRepository,
	personas *persistence.PersonaRepository,
) *AssistService {
	return &AssistService{
		chat:       chat,
		model:      model,
		leads:      leads,
		companies:  companies,
		contacts:   contacts,
		deals:      deals,
		activities: activities,
		emails:     emails,
		personas:   personas,
	}
}

// GeneratePersona builds a buyer persona for a lead from its CRM record and
// recent interactions, and stores the model's JSON document verbatim.
func (s *AssistService) GeneratePersona(ctx context.Context, user *auth.UserSession, leadID string) (*models.Persona, error) {
	lead, err := s.leads.GetByID(ctx, leadID)
	if err != nil {
		return nil, err
	}
	if lead == nil {
		return nil, errors.NewNotFoundError("Lead", leadID)
	}

	activities, _ := s.activities.ListByRelated(ctx, constants.EntityKindLead, leadID, 10)
	emails, _ := s.emails.ListByLead(ctx, leadID, 5)

	var sb strings.Builder
	fmt.Fprintf(&sb, "Lead: %s\n", LeadText(lead))
	for _, a := range activities {
		fmt.Fprintf(&sb, "Activity (%s): %s %s\n", a.Type, a.Subject, a.Body)
	}
	for _, e := range emails {
		fmt.Fprintf(&sb, "Email (%s): %s\n", e.Direction, e.Subject)
	}

	system := "You are a B2B sales analyst. Produce a buyer persona as a JSON object with keys: " +
		`"summary", "goals", "pain_points", "communication_style", "decision_factors", "recommended_approach". ` +
		"Each value is a string or array of strings. Respond with JSON only."

	raw, err := ai.Complete(ctx, s.chat, s.model, system, sb.String())
	if err != nil {
		return nil, errors.NewUpstreamError("chat", err)
	}

	doc, err := ai.ExtractJSONObject(raw)
	if err != nil {
		return nil, errors.NewUpstreamError("chat", fmt.Errorf("persona response: %w", err))
	}
	if !json.Valid([]byte(doc)) {
		return nil, errors.NewUpstreamError("chat", fmt.Errorf("persona response is not valid JSON"))
	}

	persona := &models.Persona{
		ID:       utils.GenerateID(),
		LeadID:   leadID,
		Document: doc,
		Model:    s.model,
		OwnerID:  user.ID,
	}
	if err := s.personas.Create(ctx, persona); err != nil {
		return nil, fmt.Errorf("failed to store persona: %w", err)
	}
	return persona, nil
}

// GetLatestPersona returns the most recent persona for a lead.
func (s *AssistService) GetLatestPersona(ctx context.Context, leadID string) (*models.Persona, error) {
	persona, err := s.personas.GetLatestByLead(ctx, leadID)
	if err != nil {
		return nil, err
	}
	if persona == nil {
		return nil, errors.NewNotFoundError("Persona for lead", leadID)
	}
	return persona, nil
}

// DraftEmailRequest is the payload for AI email drafting.
type DraftEmailRequest struct {
	LeadID    *string `json:"lead_id"`
	DealID    *string `json:"deal_id"`
	Objective string  `json:"objective" binding:"required"`
	Tone      string  `json:"tone"`
}

// DraftEmailResult is the drafted subject and body.
type DraftEmailResult struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// DraftEmail writes an outreach email grounded on the lead or deal record.
func (s *AssistService) DraftEmail(ctx context.Context, req DraftEmailRequest) (*DraftEmailResult, error) {
	if req.LeadID == nil && req.DealID == nil {
		return nil, errors.NewValidationError("lead_id", "Draft must reference a lead or a deal")
	}

	tone := req.Tone
	if tone == "" {
		tone = "professional and warm"
	}

	var sb strings.Builder
	if req.LeadID != nil {
		lead, err := s.leads.GetByID(ctx, *req.LeadID)
		if err != nil {
			return nil, err
		}
		if lead == nil {
			return nil, errors.NewNotFoundError("Lead", *req.LeadID)
		}
		fmt.Fprintf(&sb, "Recipient (lead): %s\n", LeadText(lead))
		if persona, _ := s.personas.GetLatestByLead(ctx, *req.LeadID); persona != nil {
			fmt.Fprintf(&sb, "Buyer persona: %s\n", persona.Document)
		}
	}
	if req.DealID != nil {
		deal, err := s.deals.GetByID(ctx, *req.DealID)
		if err != nil {
			return nil, err
		}
		if deal == nil {
			return nil, errors.NewNotFoundError("Deal", *req.DealID)
		}
		fmt.Fprintf(&sb, "Deal: %s (stage %s, amount %.0f)\n", deal.Name, deal.Stage, deal.Amount)
		emails, _ := s.emails.ListByDeal(ctx, *req.DealID, 3)
		for _, e := range emails {
			fmt.Fprintf(&sb, "Previous email (%s): %s\n", e.Direction, e.Subject)
		}
	}

	system := fmt.Sprintf("You are a sales email writer. Write a %s email. "+
		`Respond as a JSON object: {"subject": "...", "body": "..."}. JSON only.`, tone)
	user := fmt.Sprintf("Objective: %s\n\n%s", req.Objective, sb.String())

	raw, err := ai.Complete(ctx, s.chat, s.model, system, user)
	if err != nil {
		return nil, errors.NewUpstreamError("chat", err)
	}

	doc, err := ai.ExtractJSONObject(raw)
	if err != nil {
		return nil, errors.NewUpstreamError("chat", fmt.Errorf("draft response: %w", err))
	}

	var result DraftEmailResult
	if err := json.Unmarshal([]byte(doc), &result); err != nil {
		return nil, errors.NewUpstreamError("chat", fmt.Errorf("draft response: %w", err))
	}
	return &result, nil
}

// SummarizeEmail produces and stores a one-paragraph summary of an email.
func (s *AssistService) SummarizeEmail(ctx context.Context, emailID string) (string, error) {
	email, err := s.emails.GetByID(ctx, emailID)
	if err != nil {
		return "", err
	}
	if email == nil {
		return "", errors.NewNotFoundError("Email", emailID)
	}

	system := "You summarize sales emails. Respond with one short paragraph: key points, " +
		"asks, and any committed next steps. No preamble."
	user := fmt.Sprintf("Subject: %s\n\n%s", email.Subject, email.Body)

	summary, err := ai.Complete(ctx, s.chat, s.model, system, user)
	if err != nil {
		return "", errors.NewUpstreamError("chat", err)
	}
	summary = strings.TrimSpace(summary)

	if err := s.emails.UpdateSummary(ctx, emailID, summary); err != nil {
		return "", fmt.Errorf("failed to store summary: %w", err)
	}
	return summary, nil
}

// DealCoachAdvice is the coaching output for one deal.
type DealCoachAdvice struct {
	DealID     string   `json:"deal_id"`
	Assessment string   `json:"assessment"`
	Risks      []string `json:"risks"`
	NextSteps  []string `json:"next_steps"`
}

// CoachDeal gathers the deal's full context concurrently and asks the LLM for
// an assessment, risks, and next steps.
func (s *AssistService) CoachDeal(ctx context.Context, dealID string) (*DealCoachAdvice, error) {
	deal, err := s.deals.GetByID(ctx, dealID)
	if err != nil {
		return nil, err
	}
	if deal == nil {
		return nil, errors.NewNotFoundError("Deal", dealID)
	}

	// Fan out the context queries; each part is optional
	var (
		wg         sync.WaitGroup
		company    *models.Company
		contact    *models.Contact
		activities []*models.Activity
		emails     []*models.EmailMessage
	)

	if deal.CompanyID != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			company, _ = s.companies.GetByID(ctx, *deal.CompanyID)
		}()
	}
	if deal.ContactID != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			contact, _ = s.contacts.GetByID(ctx, *deal.ContactID)
		}()
	}
	wg.Add(2)
	go func() {
		defer wg.Done()
		activities, _ = s.activities.ListByRelated(ctx, constants.EntityKindDeal, dealID, 10)
	}()
	go func() {
		defer wg.Done()
		emails, _ = s.emails.ListByDeal(ctx, dealID, 5)
	}()
	wg.Wait()

	var sb strings.Builder
	fmt.Fprintf(&sb, "Deal: %s, stage %s, amount %.0f, probability %d%%\n",
		deal.Name, deal.Stage, deal.Amount, deal.Probability)
	if deal.CloseDate != nil {
		fmt.Fprintf(&sb, "Expected close: %s\n", deal.CloseDate.Format("2006-01-02"))
	}
	if deal.Notes != "" {
		fmt.Fprintf(&sb, "Notes: %s\n", deal.Notes)
	}
	if company != nil {
		fmt.Fprintf(&sb, "Company: %s\n", CompanyText(company))
	}
	if contact != nil {
		fmt.Fprintf(&sb, "Contact: %s\n", ContactText(contact))
	}
	for _, a := range activities {
		fmt.Fprintf(&sb, "Activity (%s): %s\n", a.Type, a.Subject)
	}
	for _, e := range emails {
		summary := e.Summary
		if summary == "" {
			summary = e.Subject
		}
		fmt.Fprintf(&sb, "Email (%s): %s\n", e.Direction, summary)
	}

	system := "You are a sales coach reviewing a pipeline deal. Respond as a JSON object: " +
		`{"assessment": "...", "risks": ["..."], "next_steps": ["..."]}. JSON only.`

	raw, err := ai.Complete(ctx, s.chat, s.model, system, sb.String())
	if err != nil {
		return nil, errors.NewUpstreamError("chat", err)
	}

	doc, err := ai.ExtractJSONObject(raw)
	if err != nil {
		return nil, errors.NewUpstreamError("chat", fmt.Errorf("coach response: %w", err))
	}

	advice := &DealCoachAdvice{DealID: dealID}
	if err := json.Unmarshal([]byte(doc), advice); err != nil {
		return nil, errors.NewUpstreamError("chat", fmt.Errorf("coach response: %w", err))
	}
	advice.DealID = dealID
	return advice, nil
}

// Research produces a briefing for a lead or company from the stored record.
func (s *AssistService) Research(ctx context.Context, kind, id string) (string, error) {
	var subject string

	switch kind {
	case constants.EntityKindLead:
		lead, err := s.leads.GetByID(ctx, id)
		if err != nil {
			return "", err
		}
		if lead == nil {
			return "", errors.NewNotFoundError("Lead", id)
		}
		subject = LeadText(lead)
	case constants.EntityKindCompany:
		company, err := s.companies.GetByID(ctx, id)
		if err != nil {
			return "", err
		}
		if company == nil {
			return "", errors.NewNotFoundError("Company", id)
		}
		subject = CompanyText(company)
	default:
		return "", errors.NewValidationError("kind", "Research supports leads and companies")
	}

	system := "You are a sales researcher. From the record, write a short briefing: who they " +
		"are, likely priorities, and talking points for outreach. Markdown, under 200 words."

	briefing, err := ai.Complete(ctx, s.chat, s.model, system, subject)
	if err != nil {
		return "", errors.NewUpstreamError("chat", err)
	}
	return strings.TrimSpace(briefing), nil
}
