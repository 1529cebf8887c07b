package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/meridiancrm/backend/internal/application/services"
)

type AssistHandler struct {
	svcMgr *services.ServiceManager
}

func NewAssistHandler(svcMgr *services.ServiceManager) *AssistHandler {
	return &AssistHandler{svcMgr: svcMgr}
}

// GeneratePersona handles POST /api/leads/:id/persona
func (h *AssistHandler) GeneratePersona(c *gin.Context) {
	user := GetUserFromContext(c)
	HandleCreateEnvelope(c, "persona", "Persona generated", func() (interface{}, error) {
		return h.svcMgr.Assist.GeneratePersona(c.Request.Context(), user, c.Param("id"))
	})
}

// GetPersona handles GET /api/leads/:id/persona
func (h *AssistHandler) GetPersona(c *gin.Context) {
	HandleGetEnvelope(c, "persona", func() (interface{}, error) {
		return h.svcMgr.Assist.GetLatestPersona(c.Request.Context(), c.Param("id"))
	})
}

// DraftEmail handles POST /api/assist/draft-email
func (h *AssistHandler) DraftEmail(c *gin.Context) {
	var req services.DraftEmailRequest
	if !BindJSON(c, &req) {
		return
	}

	HandleGetEnvelope(c, "draft", func() (interface{}, error) {
		return h.svcMgr.Assist.DraftEmail(c.Request.Context(), req)
	})
}

// SummarizeEmail handles POST /api/emails/:id/summarize
func (h *AssistHandler) SummarizeEmail(c *gin.Context) {
	summary, err := h.svcMgr.Assist.SummarizeEmail(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"summary": summary})
}

// CoachDeal handles POST /api/deals/:id/coach
func (h *AssistHandler) CoachDeal(c *gin.Context) {
	HandleGetEnvelope(c, "advice", func() (interface{}, error) {
		return h.svcMgr.Assist.CoachDeal(c.Request.Context(), c.Param("id"))
	})
}

// ResearchRequest represents the research request body
type ResearchRequest struct {
	Kind string `json:"kind" binding:"required"`
	ID   string `json:"id" binding:"required"`
}

// Research handles POST /api/assist/research
func (h *AssistHandler) Research(c *gin.Context) {
	var req ResearchRequest
	if !BindJSON(c, &req) {
		return
	}

	briefing, err := h.svcMgr.Assist.Research(c.Request.Context(), req.Kind, req.ID)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"briefing": briefing})
}
