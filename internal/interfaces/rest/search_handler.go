package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/meridiancrm/backend/internal/application/services"
)

type SearchHandler struct {
	svcMgr *services.ServiceManager
}

func NewSearchHandler(svcMgr *services.ServiceManager) *SearchHandler {
	return &SearchHandler{svcMgr: svcMgr}
}

// SearchRequest represents the hybrid search request body. Kinds optionally
// restricts results to the given entity kinds.
type SearchRequest struct {
	Query  string   `json:"query" binding:"required"`
	Limit  int      `json:"limit"`
	Kinds  []string `json:"kinds"`
	Answer bool     `json:"answer"`
}

// Search handles POST /api/search
func (h *SearchHandler) Search(c *gin.Context) {
	var req SearchRequest
	if !BindJSON(c, &req) {
		return
	}

	result, err := h.svcMgr.Search.Search(c.Request.Context(), req.Query, req.Limit, req.Kinds, req.Answer)
	if err != nil {
		RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
