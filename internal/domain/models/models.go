package models

import "time"

// Lead is an unconverted prospect.
type Lead struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone,omitempty"`
	CompanyName string    `json:"company_name,omitempty"`
	Title       string    `json:"title,omitempty"`
	Source      string    `json:"source,omitempty"`
	Status      string    `json:"status"`
	Score       int       `json:"score"`
	Notes       string    `json:"notes,omitempty"`
	OwnerID     string    `json:"owner_id"`
	CreatedDate time.Time `json:"created_date"`
	ModifiedAt  time.Time `json:"last_modified_date"`
}

// Company is an organization leads and deals attach to.
type Company struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Domain      string    `json:"domain,omitempty"`
	Industry    string    `json:"industry,omitempty"`
	Size        string    `json:"size,omitempty"`
	Location    string    `json:"location,omitempty"`
	Description string    `json:"description,omitempty"`
	OwnerID     string    `json:"owner_id"`
	CreatedDate time.Time `json:"created_date"`
	ModifiedAt  time.Time `json:"last_modified_date"`
}

// Contact is a person at a company.
type Contact struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone,omitempty"`
	Title       string    `json:"title,omitempty"`
	CompanyID   *string   `json:"company_id,omitempty"`
	OwnerID     string    `json:"owner_id"`
	CreatedDate time.Time `json:"created_date"`
	ModifiedAt  time.Time `json:"last_modified_date"`
}

// Deal is an opportunity moving through the pipeline.
type Deal struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	CompanyID   *string    `json:"company_id,omitempty"`
	ContactID   *string    `json:"contact_id,omitempty"`
	Stage       string     `json:"stage"`
	Amount      float64    `json:"amount"`
	CloseDate   *time.Time `json:"close_date,omitempty"`
	Probability int        `json:"probability"`
	Notes       string     `json:"notes,omitempty"`
	OwnerID     string     `json:"owner_id"`
	CreatedDate time.Time  `json:"created_date"`
	ModifiedAt  time.Time  `json:"last_modified_date"`
}

// Activity is a logged interaction or task, attached to any entity.
type Activity struct {
	ID          string     `json:"id"`
	Type        string     `json:"type"`
	Subject     string     `json:"subject"`
	Body        string     `json:"body,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	Completed   bool       `json:"completed"`
	RelatedKind string     `json:"related_kind,omitempty"`
	RelatedID   string     `json:"related_id,omitempty"`
	OwnerID     string     `json:"owner_id"`
	CreatedDate time.Time  `json:"created_date"`
	ModifiedAt  time.Time  `json:"last_modified_date"`
}

// EmailMessage is a stored email thread entry; Summary is AI-filled.
type EmailMessage struct {
	ID          string     `json:"id"`
	DealID      *string    `json:"deal_id,omitempty"`
	LeadID      *string    `json:"lead_id,omitempty"`
	Direction   string     `json:"direction"`
	Subject     string     `json:"subject"`
	Body        string     `json:"body"`
	Summary     string     `json:"summary,omitempty"`
	SentAt      *time.Time `json:"sent_at,omitempty"`
	OwnerID     string     `json:"owner_id"`
	CreatedDate time.Time  `json:"created_date"`
	ModifiedAt  time.Time  `json:"last_modified_date"`
}

// Persona is an AI-generated buyer persona for a lead. Document is the raw
// JSON the model produced, kept verbatim so the UI can render any shape.
type Persona struct {
	ID          string    `json:"id"`
	LeadID      string    `json:"lead_id"`
	Document    string    `json:"document"`
	Model       string    `json:"model"`
	OwnerID     string    `json:"owner_id"`
	CreatedDate time.Time `json:"created_date"`
}

// ScoreRule is a persisted lead-scoring rule (expr expression + points).
type ScoreRule struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Expression  string    `json:"expression"`
	Points      int       `json:"points"`
	Active      bool      `json:"active"`
	CreatedDate time.Time `json:"created_date"`
	ModifiedAt  time.Time `json:"last_modified_date"`
}

// User is an auth principal.
type User struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Email         string     `json:"email"`
	ProfileID     string     `json:"profile_id"`
	IsActive      bool       `json:"is_active"`
	CreatedDate   time.Time  `json:"created_date"`
	LastLoginDate *time.Time `json:"last_login_date,omitempty"`
}

// Session is a server-side login session keyed by the token's jti claim.
type Session struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	ExpiresAt   time.Time `json:"expires_at"`
	CreatedDate time.Time `json:"created_date"`
}

// UserSession is the request-scoped identity used by services.
type UserSession struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	ProfileID     string `json:"profile_id"`
	IsSystemAdmin bool   `json:"is_system_admin"`
}
