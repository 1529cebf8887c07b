package rest

import (
	"github.com/gin-gonic/gin"

	"github.com/meridiancrm/backend/internal/application/services"
	"github.com/meridiancrm/backend/pkg/constants"
)

type LeadHandler struct {
	svcMgr *services.ServiceManager
}

func NewLeadHandler(svcMgr *services.ServiceManager) *LeadHandler {
	return &LeadHandler{svcMgr: svcMgr}
}

// Create handles POST /api/leads
func (h *LeadHandler) Create(c *gin.Context) {
	user := GetUserFromContext(c)

	var req services.CreateLeadRequest
	if !BindJSON(c, &req) {
		return
	}

	HandleCreateEnvelope(c, "lead", "Lead created", func() (interface{}, error) {
		return h.svcMgr.Leads.Create(c.Request.Context(), user, req)
	})
}

// Get handles GET /api/leads/:id
func (h *LeadHandler) Get(c *gin.Context) {
	HandleGetEnvelope(c, "lead", func() (interface{}, error) {
		return h.svcMgr.Leads.Get(c.Request.Context(), c.Param("id"))
	})
}

// Update handles PATCH /api/leads/:id
func (h *LeadHandler) Update(c *gin.Context) {
	user := GetUserFromContext(c)

	var updates map[string]interface{}
	if !BindJSON(c, &updates) {
		return
	}

	HandleUpdateEnvelope(c, "lead", "Lead updated", func() (interface{}, error) {
		return h.svcMgr.Leads.Update(c.Request.Context(), user, c.Param("id"), updates)
	})
}

// Delete handles DELETE /api/leads/:id
func (h *LeadHandler) Delete(c *gin.Context) {
	user := GetUserFromContext(c)
	HandleDeleteEnvelope(c, "Lead deleted", func() error {
		return h.svcMgr.Leads.Delete(c.Request.Context(), user, c.Param("id"))
	})
}

// List handles GET /api/leads?status=&limit=
func (h *LeadHandler) List(c *gin.Context) {
	HandleGetEnvelope(c, "leads", func() (interface{}, error) {
		return h.svcMgr.Leads.List(c.Request.Context(), c.Query("status"), QueryLimit(c, constants.SearchMaxLimit))
	})
}
