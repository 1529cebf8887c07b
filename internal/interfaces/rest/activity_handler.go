package rest

import (
	"github.com/gin-gonic/gin"

	"github.com/meridiancrm/backend/internal/application/services"
	"github.com/meridiancrm/backend/pkg/constants"
)

type ActivityHandler struct {
	svcMgr *services.ServiceManager
}

func NewActivityHandler(svcMgr *services.ServiceManager) *ActivityHandler {
	return &ActivityHandler{svcMgr: svcMgr}
}

// Create handles POST /api/activities
func (h *ActivityHandler) Create(c *gin.Context) {
	user := GetUserFromContext(c)

	var req services.CreateActivityRequest
	if !BindJSON(c, &req) {
		return
	}

	HandleCreateEnvelope(c, "activity", "Activity created", func() (interface{}, error) {
		return h.svcMgr.ActivitySvc.Create(c.Request.Context(), user, req)
	})
}

// Get handles GET /api/activities/:id
func (h *ActivityHandler) Get(c *gin.Context) {
	HandleGetEnvelope(c, "activity", func() (interface{}, error) {
		return h.svcMgr.ActivitySvc.Get(c.Request.Context(), c.Param("id"))
	})
}

// Update handles PATCH /api/activities/:id
func (h *ActivityHandler) Update(c *gin.Context) {
	user := GetUserFromContext(c)

	var updates map[string]interface{}
	if !BindJSON(c, &updates) {
		return
	}

	HandleUpdateEnvelope(c, "activity", "Activity updated", func() (interface{}, error) {
		return h.svcMgr.ActivitySvc.Update(c.Request.Context(), user, c.Param("id"), updates)
	})
}

// Delete handles DELETE /api/activities/:id
func (h *ActivityHandler) Delete(c *gin.Context) {
	user := GetUserFromContext(c)
	HandleDeleteEnvelope(c, "Activity deleted", func() error {
		return h.svcMgr.ActivitySvc.Delete(c.Request.Context(), user, c.Param("id"))
	})
}

// List handles GET /api/activities?related_kind=&related_id=&limit=
func (h *ActivityHandler) List(c *gin.Context) {
	kind := c.Query("related_kind")
	id := c.Query("related_id")
	limit := QueryLimit(c, constants.SearchMaxLimit)

	HandleGetEnvelope(c, "activities", func() (interface{}, error) {
		if kind != "" && id != "" {
			return h.svcMgr.ActivitySvc.ListByRelated(c.Request.Context(), kind, id, limit)
		}
		return h.svcMgr.ActivitySvc.List(c.Request.Context(), limit)
	})
}
