package rest

import (
	"github.com/gin-gonic/gin"

	"github.com/meridiancrm/backend/internal/application/services"
	"github.com/meridiancrm/backend/pkg/constants"
)

type DealHandler struct {
	svcMgr *services.ServiceManager
}

func NewDealHandler(svcMgr *services.ServiceManager) *DealHandler {
	return &DealHandler{svcMgr: svcMgr}
}

// Create handles POST /api/deals
func (h *DealHandler) Create(c *gin.Context) {
	user := GetUserFromContext(c)

	var req services.CreateDealRequest
	if !BindJSON(c, &req) {
		return
	}

	HandleCreateEnvelope(c, "deal", "Deal created", func() (interface{}, error) {
		return h.svcMgr.Deals.Create(c.Request.Context(), user, req)
	})
}

// Get handles GET /api/deals/:id
func (h *DealHandler) Get(c *gin.Context) {
	HandleGetEnvelope(c, "deal", func() (interface{}, error) {
		return h.svcMgr.Deals.Get(c.Request.Context(), c.Param("id"))
	})
}

// Update handles PATCH /api/deals/:id
func (h *DealHandler) Update(c *gin.Context) {
	user := GetUserFromContext(c)

	var updates map[string]interface{}
	if !BindJSON(c, &updates) {
		return
	}

	HandleUpdateEnvelope(c, "deal", "Deal updated", func() (interface{}, error) {
		return h.svcMgr.Deals.Update(c.Request.Context(), user, c.Param("id"), updates)
	})
}

// Delete handles DELETE /api/deals/:id
func (h *DealHandler) Delete(c *gin.Context) {
	user := GetUserFromContext(c)
	HandleDeleteEnvelope(c, "Deal deleted", func() error {
		return h.svcMgr.Deals.Delete(c.Request.Context(), user, c.Param("id"))
	})
}

// List handles GET /api/deals?stage=&limit=
func (h *DealHandler) List(c *gin.Context) {
	HandleGetEnvelope(c, "deals", func() (interface{}, error) {
		return h.svcMgr.Deals.List(c.Request.Context(), c.Query("stage"), QueryLimit(c, constants.SearchMaxLimit))
	})
}

// Emails handles GET /api/deals/:id/emails
func (h *DealHandler) Emails(c *gin.Context) {
	HandleGetEnvelope(c, "emails", func() (interface{}, error) {
		return h.svcMgr.EmailSvc.ListByDeal(c.Request.Context(), c.Param("id"), QueryLimit(c, constants.SearchMaxLimit))
	})
}
