package services

import (
	"context"
	"time"

	"github.com/meridiancrm/backend/internal/ai"
	"github.com/meridiancrm/backend/internal/infrastructure/database"
	"github.com/meridiancrm/backend/internal/infrastructure/persistence"
	"github.com/meridiancrm/backend/pkg/constants"
)

// ServiceManager orchestrates all services with dependency injection
type ServiceManager struct {
	db *database.Connection

	// Repositories
	Users      *persistence.UserRepository
	Sessions   *persistence.SessionRepository
	LeadRepo   *persistence.LeadRepository
	Companies  *persistence.CompanyRepository
	Contacts   *persistence.ContactRepository
	DealRepo   *persistence.DealRepository
	Activities *persistence.ActivityRepository
	Emails     *persistence.EmailRepository
	Personas   *persistence.PersonaRepository
	ScoreRules *persistence.ScoreRuleRepository
	EmbedRepo  *persistence.EmbeddingRepository

	// Services
	Auth        *AuthService
	Scoring     *ScoringService
	Embeddings  *EmbeddingService
	Leads       *LeadService
	CompanySvc  *CompanyService
	ContactSvc  *ContactService
	Deals       *DealService
	ActivitySvc *ActivityService
	EmailSvc    *EmailService
	Search      *SearchService
	Assist      *AssistService
	Analytics   *AnalyticsService
}

// NewServiceManager creates a new service manager with all dependencies wired.
// embedder and chat may be mock implementations in tests.
func NewServiceManager(db *database.Connection, embedder ai.Embedder, embedModel string, chat ai.ChatClient, chatModel string) *ServiceManager {
	sm := &ServiceManager{db: db}

	// Repositories
	sqlDB := db.DB()
	sm.Users = persistence.NewUserRepository(sqlDB)
	sm.Sessions = persistence.NewSessionRepository(sqlDB)
	sm.LeadRepo = persistence.NewLeadRepository(sqlDB)
	sm.Companies = persistence.NewCompanyRepository(sqlDB)
	sm.Contacts = persistence.NewContactRepository(sqlDB)
	sm.DealRepo = persistence.NewDealRepository(sqlDB)
	sm.Activities = persistence.NewActivityRepository(sqlDB)
	sm.Emails = persistence.NewEmailRepository(sqlDB)
	sm.Personas = persistence.NewPersonaRepository(sqlDB)
	sm.ScoreRules = persistence.NewScoreRuleRepository(sqlDB)
	sm.EmbedRepo = persistence.NewEmbeddingRepository(sqlDB)

	// Services in dependency order
	sm.Auth = NewAuthService(sm.Users, sm.Sessions)
	sm.Scoring = NewScoringService(sm.ScoreRules, sm.LeadRepo)
	sm.Embeddings = NewEmbeddingService(embedder, embedModel, sm.EmbedRepo, sm.LeadRepo, sm.Companies, sm.Contacts)

	sm.Leads = NewLeadService(sm.LeadRepo, sm.Scoring, sm.Embeddings)
	sm.CompanySvc = NewCompanyService(sm.Companies, sm.Embeddings)
	sm.ContactSvc = NewContactService(sm.Contacts, sm.Companies, sm.Embeddings)
	sm.Deals = NewDealService(sm.DealRepo, sm.Companies, sm.Contacts)
	sm.ActivitySvc = NewActivityService(sm.Activities)
	sm.EmailSvc = NewEmailService(sm.Emails, sm.DealRepo, sm.LeadRepo)

	sm.Search = NewSearchService(embedder, chat, chatModel, sm.Embeddings,
		sm.LeadRepo, sm.Companies, sm.Contacts, sm.DealRepo)
	sm.Assist = NewAssistService(chat, chatModel,
		sm.LeadRepo, sm.Companies, sm.Contacts, sm.DealRepo, sm.Activities, sm.Emails, sm.Personas)
	sm.Analytics = NewAnalyticsService(sqlDB, NewSecurityValidator())

	return sm
}

// Start hydrates the vector indexes and starts the background machinery:
// the embedding worker and the nightly refresh schedule.
func (sm *ServiceManager) Start(ctx context.Context, refreshCron string) error {
	if err := sm.Embeddings.Hydrate(ctx); err != nil {
		return err
	}

	sm.Embeddings.StartWorker(constants.EmbedWorkerIntervalMs * time.Millisecond)
	if err := sm.Embeddings.StartScheduler(refreshCron); err != nil {
		return err
	}

	sm.Auth.PurgeExpiredSessions(ctx)
	return nil
}

// Stop shuts down background workers gracefully.
func (sm *ServiceManager) Stop() {
	sm.Embeddings.StopWorker()
}
