package bootstrap

import (
	"context"
	"fmt"
	"log"

	"github.com/meridiancrm/backend/internal/infrastructure/database"
	"github.com/meridiancrm/backend/pkg/constants"
)

// tableDDL holds the CREATE TABLE statements for every CRM table, in
// dependency-free order. The schema is fixed; no runtime metadata layer.
var tableDDL = map[string]string{
	constants.TableUser: `
		CREATE TABLE IF NOT EXISTS %s (
			id VARCHAR(36) PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			email VARCHAR(255) NOT NULL UNIQUE,
			password VARCHAR(255),
			profile_id VARCHAR(64) NOT NULL,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			created_date DATETIME NOT NULL,
			last_login_date DATETIME NULL
		)`,
	constants.TableSession: `
		CREATE TABLE IF NOT EXISTS %s (
			id VARCHAR(36) PRIMARY KEY,
			user_id VARCHAR(36) NOT NULL,
			expires_at DATETIME NOT NULL,
			created_date DATETIME NOT NULL,
			INDEX idx_sessions_user (user_id)
		)`,
	constants.TableLead: `
		CREATE TABLE IF NOT EXISTS %s (
			id VARCHAR(36) PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			email VARCHAR(255) NOT NULL,
			phone VARCHAR(64) NULL,
			company_name VARCHAR(255) NULL,
			title VARCHAR(255) NULL,
			source VARCHAR(64) NULL,
			status VARCHAR(32) NOT NULL,
			score INT NOT NULL DEFAULT 0,
			notes TEXT NULL,
			owner_id VARCHAR(36) NOT NULL,
			created_date DATETIME NOT NULL,
			last_modified_date DATETIME NOT NULL,
			INDEX idx_leads_status (status),
			INDEX idx_leads_owner (owner_id)
		)`,
	constants.TableCompany: `
		CREATE TABLE IF NOT EXISTS %s (
			id VARCHAR(36) PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			domain VARCHAR(255) NULL,
			industry VARCHAR(128) NULL,
			size VARCHAR(64) NULL,
			location VARCHAR(255) NULL,
			description TEXT NULL,
			owner_id VARCHAR(36) NOT NULL,
			created_date DATETIME NOT NULL,
			last_modified_date DATETIME NOT NULL,
			INDEX idx_companies_owner (owner_id)
		)`,
	constants.TableContact: `
		CREATE TABLE IF NOT EXISTS %s (
			id VARCHAR(36) PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			email VARCHAR(255) NOT NULL,
			phone VARCHAR(64) NULL,
			title VARCHAR(255) NULL,
			company_id VARCHAR(36) NULL,
			owner_id VARCHAR(36) NOT NULL,
			created_date DATETIME NOT NULL,
			last_modified_date DATETIME NOT NULL,
			INDEX idx_contacts_company (company_id),
			INDEX idx_contacts_owner (owner_id)
		)`,
	constants.TableDeal: `
		CREATE TABLE IF NOT EXISTS %s (
			id VARCHAR(36) PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			company_id VARCHAR(36) NULL,
			contact_id VARCHAR(36) NULL,
			stage VARCHAR(32) NOT NULL,
			amount DECIMAL(14,2) NOT NULL DEFAULT 0,
			close_date DATETIME NULL,
			probability INT NOT NULL DEFAULT 0,
			notes TEXT NULL,
			owner_id VARCHAR(36) NOT NULL,
			created_date DATETIME NOT NULL,
			last_modified_date DATETIME NOT NULL,
			INDEX idx_deals_stage (stage),
			INDEX idx_deals_owner (owner_id)
		)`,
	constants.TableActivity: `
		CREATE TABLE IF NOT EXISTS %s (
			id VARCHAR(36) PRIMARY KEY,
			type VARCHAR(32) NOT NULL,
			subject VARCHAR(255) NOT NULL,
			body TEXT NULL,
			due_date DATETIME NULL,
			completed BOOLEAN NOT NULL DEFAULT FALSE,
			related_kind VARCHAR(32) NULL,
			related_id VARCHAR(36) NULL,
			owner_id VARCHAR(36) NOT NULL,
			created_date DATETIME NOT NULL,
			last_modified_date DATETIME NOT NULL,
			INDEX idx_activities_related (related_kind, related_id),
			INDEX idx_activities_owner (owner_id)
		)`,
	constants.TableEmail: `
		CREATE TABLE IF NOT EXISTS %s (
			id VARCHAR(36) PRIMARY KEY,
			deal_id VARCHAR(36) NULL,
			lead_id VARCHAR(36) NULL,
			direction VARCHAR(16) NOT NULL,
			subject VARCHAR(512) NOT NULL,
			body TEXT NOT NULL,
			summary TEXT NULL,
			sent_at DATETIME NULL,
			owner_id VARCHAR(36) NOT NULL,
			created_date DATETIME NOT NULL,
			last_modified_date DATETIME NOT NULL,
			INDEX idx_emails_deal (deal_id),
			INDEX idx_emails_lead (lead_id)
		)`,
	constants.TablePersona: `
		CREATE TABLE IF NOT EXISTS %s (
			id VARCHAR(36) PRIMARY KEY,
			lead_id VARCHAR(36) NOT NULL,
			document JSON NOT NULL,
			model VARCHAR(128) NOT NULL,
			owner_id VARCHAR(36) NOT NULL,
			created_date DATETIME NOT NULL,
			INDEX idx_personas_lead (lead_id)
		)`,
	constants.TableScoreRule: `
		CREATE TABLE IF NOT EXISTS %s (
			id VARCHAR(36) PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			expression TEXT NOT NULL,
			points INT NOT NULL,
			active BOOLEAN NOT NULL DEFAULT TRUE,
			created_date DATETIME NOT NULL,
			last_modified_date DATETIME NOT NULL
		)`,
	constants.TableEmbedding: `
		CREATE TABLE IF NOT EXISTS %s (
			kind VARCHAR(32) NOT NULL,
			entity_id VARCHAR(36) NOT NULL,
			content TEXT NOT NULL,
			content_hash CHAR(64) NOT NULL,
			vector LONGTEXT NOT NULL,
			model VARCHAR(128) NOT NULL,
			last_modified_date DATETIME NOT NULL,
			PRIMARY KEY (kind, entity_id)
		)`,
}

// tableOrder fixes creation order for deterministic startup logs.
var tableOrder = []string{
	constants.TableUser,
	constants.TableSession,
	constants.TableLead,
	constants.TableCompany,
	constants.TableContact,
	constants.TableDeal,
	constants.TableActivity,
	constants.TableEmail,
	constants.TablePersona,
	constants.TableScoreRule,
	constants.TableEmbedding,
}

// EnsureSchema creates any missing tables. Idempotent; runs at every startup.
func EnsureSchema(ctx context.Context, db *database.Connection) error {
	log.Println("🔧 Ensuring database schema...")

	for _, table := range tableOrder {
		ddl := fmt.Sprintf(tableDDL[table], table)
		if _, err := db.ExecContext(ctx, ddl); err != nil {
			return fmt.Errorf("failed to ensure table %s: %w", table, err)
		}
	}

	log.Printf("   ✅ Ensured %d tables", len(tableOrder))
	return nil
}
