package rest

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/meridiancrm/backend/internal/application/services"
	"github.com/meridiancrm/backend/pkg/auth"
	"github.com/meridiancrm/backend/pkg/errors"
)

type AuthHandler struct {
	svcMgr *services.ServiceManager
}

func NewAuthHandler(svcMgr *services.ServiceManager) *AuthHandler {
	return &AuthHandler{svcMgr: svcMgr}
}

// LoginRequest represents login request body
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !BindJSON(c, &req) {
		return
	}

	if !auth.IsValidEmail(req.Email) {
		RespondAppError(c, errors.NewValidationError("email", "Invalid email format"))
		return
	}

	result, err := h.svcMgr.Auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":      result.Token,
		"user":       result.User,
		"expires_at": result.ExpiresAt.Format(time.RFC3339),
	})
}

// Logout handles POST /api/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	token := GetTokenFromContext(c)
	HandleDeleteEnvelope(c, "Logged out", func() error {
		return h.svcMgr.Auth.Logout(c.Request.Context(), token)
	})
}

// GetMe handles GET /api/auth/me
func (h *AuthHandler) GetMe(c *gin.Context) {
	user := GetUserFromContext(c)
	if user == nil {
		RespondAppError(c, errors.NewUnauthorizedError("User not authenticated"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user, "is_system_admin": user.IsSuperUser()})
}

// ChangePasswordRequest represents password change request body
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required"`
}

// ChangePassword handles POST /api/auth/change-password
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	user := GetUserFromContext(c)

	var req ChangePasswordRequest
	if !BindJSON(c, &req) {
		return
	}

	if err := h.svcMgr.Auth.ChangePassword(c.Request.Context(), user.ID, req.CurrentPassword, req.NewPassword); err != nil {
		RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password changed; all sessions revoked"})
}

// GetSessions handles GET /api/auth/sessions
func (h *AuthHandler) GetSessions(c *gin.Context) {
	user := GetUserFromContext(c)
	HandleGetEnvelope(c, "sessions", func() (interface{}, error) {
		return h.svcMgr.Auth.GetSessions(c.Request.Context(), user.ID)
	})
}
