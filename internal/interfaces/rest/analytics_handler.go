package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/meridiancrm/backend/internal/application/services"
)

type AnalyticsHandler struct {
	svcMgr *services.ServiceManager
}

func NewAnalyticsHandler(svcMgr *services.ServiceManager) *AnalyticsHandler {
	return &AnalyticsHandler{svcMgr: svcMgr}
}

// QueryRequest represents the analytics query body
type QueryRequest struct {
	Query string `json:"query" binding:"required"`
}

// Query handles POST /api/analytics/query
func (h *AnalyticsHandler) Query(c *gin.Context) {
	user := GetUserFromContext(c)

	var req QueryRequest
	if !BindJSON(c, &req) {
		return
	}

	result, err := h.svcMgr.Analytics.Query(c.Request.Context(), user, req.Query)
	if err != nil {
		RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
