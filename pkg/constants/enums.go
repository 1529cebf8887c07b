package constants

// Profile IDs. Profiles are fixed rather than metadata-driven: the CRM has
// exactly two privilege levels.
const (
	ProfileSystemAdmin = "profile_system_admin"
	ProfileStandard    = "profile_standard"
)

// IsSuperUser reports whether the profile carries system administrator rights.
func IsSuperUser(profileID string) bool {
	return profileID == ProfileSystemAdmin
}

// Lead statuses.
const (
	LeadStatusNew       = "new"
	LeadStatusContacted = "contacted"
	LeadStatusQualified = "qualified"
	LeadStatusConverted = "converted"
	LeadStatusLost      = "lost"
)

// LeadStatuses lists all valid lead statuses in pipeline order.
var LeadStatuses = []string{
	LeadStatusNew,
	LeadStatusContacted,
	LeadStatusQualified,
	LeadStatusConverted,
	LeadStatusLost,
}

// Deal stages.
const (
	DealStageProspecting   = "prospecting"
	DealStageQualification = "qualification"
	DealStageProposal      = "proposal"
	DealStageNegotiation   = "negotiation"
	DealStageClosedWon     = "closed_won"
	DealStageClosedLost    = "closed_lost"
)

// DealStages lists all valid deal stages in pipeline order.
var DealStages = []string{
	DealStageProspecting,
	DealStageQualification,
	DealStageProposal,
	DealStageNegotiation,
	DealStageClosedWon,
	DealStageClosedLost,
}

// Activity types.
const (
	ActivityTypeCall    = "call"
	ActivityTypeMeeting = "meeting"
	ActivityTypeEmail   = "email"
	ActivityTypeTask    = "task"
	ActivityTypeNote    = "note"
)

// ActivityTypes lists all valid activity types.
var ActivityTypes = []string{
	ActivityTypeCall,
	ActivityTypeMeeting,
	ActivityTypeEmail,
	ActivityTypeTask,
	ActivityTypeNote,
}

// Email directions.
const (
	EmailDirectionInbound  = "inbound"
	EmailDirectionOutbound = "outbound"
)

// Searchable entity kinds. These are the three tables the semantic index
// covers; keyword search additionally reaches deals.
const (
	EntityKindLead    = "lead"
	EntityKindCompany = "company"
	EntityKindContact = "contact"
	EntityKindDeal    = "deal"
)

// SemanticKinds are the entity kinds with vector embeddings.
var SemanticKinds = []string{EntityKindLead, EntityKindCompany, EntityKindContact}

// SearchableKinds are all entity kinds the hybrid search reaches.
var SearchableKinds = []string{EntityKindLead, EntityKindCompany, EntityKindContact, EntityKindDeal}

// ValidEnum reports whether value is one of the allowed values.
func ValidEnum(value string, allowed []string) bool {
	for _, v := range allowed {
		if v == value {
			return true
		}
	}
	return false
}
