package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/meridiancrm/backend/internal/domain/models"
	"github.com/meridiancrm/backend/internal/infrastructure/persistence"
	"github.com/meridiancrm/backend/pkg/auth"
	"github.com/meridiancrm/backend/pkg/constants"
	"github.com/meridiancrm/backend/pkg/errors"
	"github.com/meridiancrm/backend/pkg/utils"
)

// AuthService handles authentication, session management, and password
// operations. Sessions are stored server-side keyed by the token's jti, so a
// token is only valid while its session row exists.
type AuthService struct {
	users    *persistence.UserRepository
	sessions *persistence.SessionRepository
}

func NewAuthService(users *persistence.UserRepository, sessions *persistence.SessionRepository) *AuthService {
	return &AuthService{users: users, sessions: sessions}
}

// LoginResult contains the result of a successful login
type LoginResult struct {
	Token     string           `json:"token"`
	User      auth.UserSession `json:"user"`
	ExpiresAt time.Time        `json:"expires_at"`
}

// Login authenticates a user and creates a session
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.users.FindByEmailWithPassword(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	if user == nil {
		log.Printf("⚠️ Login failed for %s: user not found", email)
		return nil, errors.NewUnauthorizedError("Invalid email or password")
	}
	if !user.IsActive {
		return nil, errors.NewUnauthorizedError("Account is deactivated")
	}

	if user.PasswordHash == "" {
		return nil, errors.NewUnauthorizedError("Password authentication not configured for this user")
	}
	if !auth.VerifyPassword(password, user.PasswordHash) {
		log.Printf("⚠️ Login failed for %s: invalid password", email)
		return nil, errors.NewUnauthorizedError("Invalid email or password")
	}

	session := auth.UserSession{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		ProfileID: user.ProfileID,
	}

	token, jti, expiresAt, err := auth.GenerateToken(session)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	if err := s.sessions.Create(ctx, &models.Session{
		ID:        jti,
		UserID:    user.ID,
		ExpiresAt: expiresAt,
	}); err != nil {
		return nil, fmt.Errorf("failed to persist session: %w", err)
	}

	if err := s.users.UpdateLastLogin(ctx, user.ID); err != nil {
		// Non-critical; the login itself succeeded
		log.Printf("⚠️ Failed to stamp last login for %s: %v", user.ID, err)
	}

	log.Printf("🔑 User logged in: %s (Session: %s)", email, jti)

	return &LoginResult{Token: token, User: session, ExpiresAt: expiresAt}, nil
}

// ValidateSession checks the token signature and that its session still
// exists server-side.
func (s *AuthService) ValidateSession(ctx context.Context, tokenString string) (*auth.Claims, error) {
	claims, err := auth.ValidateToken(tokenString)
	if err != nil {
		return nil, errors.NewUnauthorizedError("Invalid or expired token")
	}

	exists, err := s.sessions.Exists(ctx, claims.RegisteredClaims.ID)
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	if !exists {
		return nil, errors.NewUnauthorizedError("Session has been revoked")
	}

	return claims, nil
}

// Logout revokes the session behind the token
func (s *AuthService) Logout(ctx context.Context, tokenString string) error {
	claims, err := auth.DecodeToken(tokenString)
	if err != nil {
		return errors.NewValidationError("token", "Invalid token")
	}

	err = s.sessions.Delete(ctx, claims.RegisteredClaims.ID)
	if err == nil {
		log.Printf("👋 User logged out: %s (Session: %s)", claims.User.Email, claims.RegisteredClaims.ID)
	}
	return err
}

// ChangePassword updates a user's password and revokes all their other
// sessions.
func (s *AuthService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	if err := auth.ValidatePasswordStrength(newPassword); err != nil {
		return err
	}

	user, err := s.users.FindByIDWithPassword(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to retrieve user: %w", err)
	}
	if user == nil {
		return errors.NewNotFoundError("User", userID)
	}
	if user.PasswordHash == "" {
		return errors.NewValidationError("password", "Password authentication not configured for this user")
	}

	if !auth.VerifyPassword(currentPassword, user.PasswordHash) {
		return errors.NewUnauthorizedError("Current password is incorrect")
	}

	newHash, err := auth.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.users.UpdatePassword(ctx, userID, newHash); err != nil {
		return err
	}

	// Force re-login everywhere with the new credentials
	if err := s.sessions.DeleteByUser(ctx, userID); err != nil {
		log.Printf("⚠️ Failed to revoke sessions for %s: %v", userID, err)
	}

	log.Printf("🔐 Password changed for user: %s", userID)
	return nil
}

// CreateUserRequest is the admin payload for creating a user.
type CreateUserRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	IsAdmin  bool   `json:"is_admin"`
}

// CreateUser creates a new user account. Admin only.
func (s *AuthService) CreateUser(ctx context.Context, req CreateUserRequest) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if !auth.IsValidEmail(email) {
		return nil, errors.NewValidationError("email", "Invalid email address")
	}
	if err := auth.ValidatePasswordStrength(req.Password); err != nil {
		return nil, err
	}

	exists, err := s.users.CheckUserExistsByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	if exists {
		return nil, errors.NewConflictError("User", "email", email)
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	profileID := constants.ProfileStandard
	if req.IsAdmin {
		profileID = constants.ProfileSystemAdmin
	}

	user := &models.User{
		ID:        utils.GenerateID(),
		Name:      strings.TrimSpace(req.Name),
		Email:     email,
		ProfileID: profileID,
		IsActive:  true,
	}

	if err := s.users.Create(ctx, user, hash); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	log.Printf("👤 User created: %s (%s)", email, profileID)
	return user, nil
}

// GetUsers returns all user accounts. Admin only.
func (s *AuthService) GetUsers(ctx context.Context) ([]*models.User, error) {
	return s.users.FindAll(ctx)
}

// GetSessions returns the caller's live sessions.
func (s *AuthService) GetSessions(ctx context.Context, userID string) ([]*models.Session, error) {
	return s.sessions.ListByUser(ctx, userID)
}

// PurgeExpiredSessions removes dead session rows; wired to the scheduler.
func (s *AuthService) PurgeExpiredSessions(ctx context.Context) {
	n, err := s.sessions.PurgeExpired(ctx)
	if err != nil {
		log.Printf("⚠️ Session purge failed: %v", err)
		return
	}
	if n > 0 {
		log.Printf("🧹 Purged %d expired sessions", n)
	}
}
