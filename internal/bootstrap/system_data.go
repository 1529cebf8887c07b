package bootstrap

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/meridiancrm/backend/internal/application/services"
	"github.com/meridiancrm/backend/pkg/errors"
)

// InitializeSystemData ensures a system administrator account exists.
// Credentials come from ADMIN_EMAIL / ADMIN_PASSWORD; defaults are for local
// development only. Runs before the server accepts requests.
func InitializeSystemData(ctx context.Context, auth *services.AuthService) error {
	log.Println("🔧 Initializing system data...")

	email := os.Getenv("ADMIN_EMAIL")
	if email == "" {
		email = "admin@meridiancrm.local"
	}
	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		password = "ChangeMe123"
		log.Println("   ⚠️  ADMIN_PASSWORD not set; using the development default")
	}

	_, err := auth.CreateUser(ctx, services.CreateUserRequest{
		Name:     "System Administrator",
		Email:    email,
		Password: password,
		IsAdmin:  true,
	})
	if err != nil {
		if errors.IsConflict(err) {
			log.Printf("   ✅ Admin account exists: %s", email)
			return nil
		}
		return fmt.Errorf("failed to seed admin account: %w", err)
	}

	log.Printf("   ✅ Admin account created: %s", email)
	return nil
}
