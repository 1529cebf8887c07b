package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/meridiancrm/backend/internal/application/services"
)

// AdminHandler exposes operational endpoints: embedding status and refresh,
// and scoring rule management. All routes are admin-only except rule listing.
type AdminHandler struct {
	svcMgr *services.ServiceManager
}

func NewAdminHandler(svcMgr *services.ServiceManager) *AdminHandler {
	return &AdminHandler{svcMgr: svcMgr}
}

// EmbeddingStatus handles GET /api/admin/embeddings
func (h *AdminHandler) EmbeddingStatus(c *gin.Context) {
	HandleGetEnvelope(c, "embeddings", func() (interface{}, error) {
		return h.svcMgr.Embeddings.Stats(c.Request.Context())
	})
}

// RefreshEmbeddings handles POST /api/admin/embeddings/refresh
func (h *AdminHandler) RefreshEmbeddings(c *gin.Context) {
	if err := h.svcMgr.Embeddings.RefreshAll(c.Request.Context()); err != nil {
		RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Embedding refresh complete"})
}

// CreateScoreRule handles POST /api/admin/score-rules
func (h *AdminHandler) CreateScoreRule(c *gin.Context) {
	var req services.CreateRuleRequest
	if !BindJSON(c, &req) {
		return
	}

	HandleCreateEnvelope(c, "rule", "Scoring rule created", func() (interface{}, error) {
		return h.svcMgr.Scoring.CreateRule(c.Request.Context(), req)
	})
}

// UpdateScoreRule handles PATCH /api/admin/score-rules/:id
func (h *AdminHandler) UpdateScoreRule(c *gin.Context) {
	var updates map[string]interface{}
	if !BindJSON(c, &updates) {
		return
	}

	HandleUpdateEnvelope(c, "rule", "Scoring rule updated", func() (interface{}, error) {
		return h.svcMgr.Scoring.UpdateRule(c.Request.Context(), c.Param("id"), updates)
	})
}

// DeleteScoreRule handles DELETE /api/admin/score-rules/:id
func (h *AdminHandler) DeleteScoreRule(c *gin.Context) {
	HandleDeleteEnvelope(c, "Scoring rule deleted", func() error {
		return h.svcMgr.Scoring.DeleteRule(c.Request.Context(), c.Param("id"))
	})
}

// ListScoreRules handles GET /api/admin/score-rules
func (h *AdminHandler) ListScoreRules(c *gin.Context) {
	HandleGetEnvelope(c, "rules", func() (interface{}, error) {
		return h.svcMgr.Scoring.ListRules(c.Request.Context())
	})
}

// RescoreLeads handles POST /api/admin/score-rules/rescore
func (h *AdminHandler) RescoreLeads(c *gin.Context) {
	changed, err := h.svcMgr.Scoring.RescoreAll(c.Request.Context())
	if err != nil {
		RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Rescore complete", "changed": changed})
}
