package rest

import (
	"github.com/gin-gonic/gin"

	"github.com/meridiancrm/backend/internal/application/services"
)

type UserHandler struct {
	svcMgr *services.ServiceManager
}

func NewUserHandler(svcMgr *services.ServiceManager) *UserHandler {
	return &UserHandler{svcMgr: svcMgr}
}

// Register handles POST /api/auth/register (admin only)
func (h *UserHandler) Register(c *gin.Context) {
	var req services.CreateUserRequest
	if !BindJSON(c, &req) {
		return
	}

	HandleCreateEnvelope(c, "user", "User created", func() (interface{}, error) {
		return h.svcMgr.Auth.CreateUser(c.Request.Context(), req)
	})
}

// GetUsers handles GET /api/auth/users (admin only)
func (h *UserHandler) GetUsers(c *gin.Context) {
	HandleGetEnvelope(c, "users", func() (interface{}, error) {
		return h.svcMgr.Auth.GetUsers(c.Request.Context())
	})
}
