package constants

// Table names for all CRM objects.
// Every repository builds SQL against these constants; never inline a table name.
const (
	TableUser      = "users"
	TableSession   = "sessions"
	TableLead      = "leads"
	TableCompany   = "companies"
	TableContact   = "contacts"
	TableDeal      = "deals"
	TableActivity  = "activities"
	TableEmail     = "email_messages"
	TablePersona   = "personas"
	TableScoreRule = "score_rules"
	TableEmbedding = "entity_embeddings"
)

// AnalyticsTables is the allowlist for the admin analytics endpoint.
// Raw SELECT statements may only reference these tables.
var AnalyticsTables = map[string]bool{
	TableLead:     true,
	TableCompany:  true,
	TableContact:  true,
	TableDeal:     true,
	TableActivity: true,
	TableEmail:    true,
}
