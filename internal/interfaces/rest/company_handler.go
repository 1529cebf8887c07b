package rest

import (
	"github.com/gin-gonic/gin"

	"github.com/meridiancrm/backend/internal/application/services"
	"github.com/meridiancrm/backend/pkg/constants"
)

type CompanyHandler struct {
	svcMgr *services.ServiceManager
}

func NewCompanyHandler(svcMgr *services.ServiceManager) *CompanyHandler {
	return &CompanyHandler{svcMgr: svcMgr}
}

// Create handles POST /api/companies
func (h *CompanyHandler) Create(c *gin.Context) {
	user := GetUserFromContext(c)

	var req services.CreateCompanyRequest
	if !BindJSON(c, &req) {
		return
	}

	HandleCreateEnvelope(c, "company", "Company created", func() (interface{}, error) {
		return h.svcMgr.CompanySvc.Create(c.Request.Context(), user, req)
	})
}

// Get handles GET /api/companies/:id
func (h *CompanyHandler) Get(c *gin.Context) {
	HandleGetEnvelope(c, "company", func() (interface{}, error) {
		return h.svcMgr.CompanySvc.Get(c.Request.Context(), c.Param("id"))
	})
}

// Update handles PATCH /api/companies/:id
func (h *CompanyHandler) Update(c *gin.Context) {
	user := GetUserFromContext(c)

	var updates map[string]interface{}
	if !BindJSON(c, &updates) {
		return
	}

	HandleUpdateEnvelope(c, "company", "Company updated", func() (interface{}, error) {
		return h.svcMgr.CompanySvc.Update(c.Request.Context(), user, c.Param("id"), updates)
	})
}

// Delete handles DELETE /api/companies/:id
func (h *CompanyHandler) Delete(c *gin.Context) {
	user := GetUserFromContext(c)
	HandleDeleteEnvelope(c, "Company deleted", func() error {
		return h.svcMgr.CompanySvc.Delete(c.Request.Context(), user, c.Param("id"))
	})
}

// List handles GET /api/companies?limit=
func (h *CompanyHandler) List(c *gin.Context) {
	HandleGetEnvelope(c, "companies", func() (interface{}, error) {
		return h.svcMgr.CompanySvc.List(c.Request.Context(), QueryLimit(c, constants.SearchMaxLimit))
	})
}

// Contacts handles GET /api/companies/:id/contacts
func (h *CompanyHandler) Contacts(c *gin.Context) {
	HandleGetEnvelope(c, "contacts", func() (interface{}, error) {
		return h.svcMgr.ContactSvc.List(c.Request.Context(), c.Param("id"), QueryLimit(c, constants.SearchMaxLimit))
	})
}
