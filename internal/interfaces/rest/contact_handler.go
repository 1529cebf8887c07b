package rest

import (
	"github.com/gin-gonic/gin"

	"github.com/meridiancrm/backend/internal/application/services"
	"github.com/meridiancrm/backend/pkg/constants"
)

type ContactHandler struct {
	svcMgr *services.ServiceManager
}

func NewContactHandler(svcMgr *services.ServiceManager) *ContactHandler {
	return &ContactHandler{svcMgr: svcMgr}
}

// Create handles POST /api/contacts
func (h *ContactHandler) Create(c *gin.Context) {
	user := GetUserFromContext(c)

	var req services.CreateContactRequest
	if !BindJSON(c, &req) {
		return
	}

	HandleCreateEnvelope(c, "contact", "Contact created", func() (interface{}, error) {
		return h.svcMgr.ContactSvc.Create(c.Request.Context(), user, req)
	})
}

// Get handles GET /api/contacts/:id
func (h *ContactHandler) Get(c *gin.Context) {
	HandleGetEnvelope(c, "contact", func() (interface{}, error) {
		return h.svcMgr.ContactSvc.Get(c.Request.Context(), c.Param("id"))
	})
}

// Update handles PATCH /api/contacts/:id
func (h *ContactHandler) Update(c *gin.Context) {
	user := GetUserFromContext(c)

	var updates map[string]interface{}
	if !BindJSON(c, &updates) {
		return
	}

	HandleUpdateEnvelope(c, "contact", "Contact updated", func() (interface{}, error) {
		return h.svcMgr.ContactSvc.Update(c.Request.Context(), user, c.Param("id"), updates)
	})
}

// Delete handles DELETE /api/contacts/:id
func (h *ContactHandler) Delete(c *gin.Context) {
	user := GetUserFromContext(c)
	HandleDeleteEnvelope(c, "Contact deleted", func() error {
		return h.svcMgr.ContactSvc.Delete(c.Request.Context(), user, c.Param("id"))
	})
}

// List handles GET /api/contacts?company_id=&limit=
func (h *ContactHandler) List(c *gin.Context) {
	HandleGetEnvelope(c, "contacts", func() (interface{}, error) {
		return h.svcMgr.ContactSvc.List(c.Request.Context(), c.Query("company_id"), QueryLimit(c, constants.SearchMaxLimit))
	})
}
