package rest

import (
	"github.com/gin-gonic/gin"

	"github.com/meridiancrm/backend/internal/application/services"
	"github.com/meridiancrm/backend/pkg/constants"
)

type EmailHandler struct {
	svcMgr *services.ServiceManager
}

func NewEmailHandler(svcMgr *services.ServiceManager) *EmailHandler {
	return &EmailHandler{svcMgr: svcMgr}
}

// Create handles POST /api/emails
func (h *EmailHandler) Create(c *gin.Context) {
	user := GetUserFromContext(c)

	var req services.CreateEmailRequest
	if !BindJSON(c, &req) {
		return
	}

	HandleCreateEnvelope(c, "email", "Email recorded", func() (interface{}, error) {
		return h.svcMgr.EmailSvc.Create(c.Request.Context(), user, req)
	})
}

// Get handles GET /api/emails/:id
func (h *EmailHandler) Get(c *gin.Context) {
	HandleGetEnvelope(c, "email", func() (interface{}, error) {
		return h.svcMgr.EmailSvc.Get(c.Request.Context(), c.Param("id"))
	})
}

// Delete handles DELETE /api/emails/:id
func (h *EmailHandler) Delete(c *gin.Context) {
	user := GetUserFromContext(c)
	HandleDeleteEnvelope(c, "Email deleted", func() error {
		return h.svcMgr.EmailSvc.Delete(c.Request.Context(), user, c.Param("id"))
	})
}

// List handles GET /api/emails?lead_id=&limit=
func (h *EmailHandler) List(c *gin.Context) {
	leadID := c.Query("lead_id")
	limit := QueryLimit(c, constants.SearchMaxLimit)

	HandleGetEnvelope(c, "emails", func() (interface{}, error) {
		if leadID != "" {
			return h.svcMgr.EmailSvc.ListByLead(c.Request.Context(), leadID, limit)
		}
		return h.svcMgr.EmailSvc.List(c.Request.Context(), limit)
	})
}
