package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/meridiancrm/backend/internal/domain/models"
	"github.com/meridiancrm/backend/pkg/constants"
)

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// UserWithPassword extends User with the password hash for auth checks
type UserWithPassword struct {
	*models.User
	PasswordHash string
}

// CheckUserExistsByEmail reports whether a user with the email exists
func (r *UserRepository) CheckUserExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	query := fmt.Sprintf("SELECT EXISTS(SELECT 1 FROM %s WHERE %s = ?)", constants.TableUser, constants.FieldEmail)
	err := r.db.QueryRowContext(ctx, query, email).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

// Create inserts a new user with a pre-hashed password
func (r *UserRepository) Create(ctx context.Context, u *models.User, passwordHash string) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, name, email, password, profile_id, is_active, created_date)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		constants.TableUser)

	u.CreatedDate = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		u.ID, u.Name, u.Email, passwordHash, u.ProfileID, u.IsActive, u.CreatedDate,
	)
	return err
}

// FindByEmailWithPassword retrieves a user and their password hash by email;
// returns nil when not found
func (r *UserRepository) FindByEmailWithPassword(ctx context.Context, email string) (*UserWithPassword, error) {
	query := fmt.Sprintf(`
		SELECT id, name, email, password, profile_id, is_active
		FROM %s
		WHERE email = ? LIMIT 1`,
		constants.TableUser)

	var u UserWithPassword
	var user models.User
	u.User = &user

	var password sql.NullString

	err := r.db.QueryRowContext(ctx, query, email).Scan(
		&user.ID, &user.Name, &user.Email, &password, &user.ProfileID, &user.IsActive,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	if password.Valid {
		u.PasswordHash = password.String
	}
	return &u, nil
}

// FindByIDWithPassword retrieves a user's password hash by ID; nil when not found
func (r *UserRepository) FindByIDWithPassword(ctx context.Context, userID string) (*UserWithPassword, error) {
	query := fmt.Sprintf("SELECT id, password FROM %s WHERE id = ? LIMIT 1", constants.TableUser)

	var u UserWithPassword
	var user models.User
	u.User = &user
	var password sql.NullString

	err := r.db.QueryRowContext(ctx, query, userID).Scan(&user.ID, &password)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	if password.Valid {
		u.PasswordHash = password.String
	}
	return &u, nil
}

// GetByID fetches basic user info; returns nil when not found
func (r *UserRepository) GetByID(ctx context.Context, userID string) (*models.User, error) {
	query := fmt.Sprintf(`
		SELECT id, name, email, profile_id, is_active, created_date
		FROM %s
		WHERE id = ? LIMIT 1`,
		constants.TableUser)

	var u models.User
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&u.ID, &u.Name, &u.Email, &u.ProfileID, &u.IsActive, &u.CreatedDate,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

// FindAll retrieves all users, newest first
func (r *UserRepository) FindAll(ctx context.Context) ([]*models.User, error) {
	query := fmt.Sprintf(`
		SELECT id, name, email, profile_id, is_active, created_date, last_login_date
		FROM %s
		ORDER BY %s DESC`,
		constants.TableUser, constants.FieldCreatedDate)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]*models.User, 0)
	for rows.Next() {
		var u models.User
		var lastLogin sql.NullTime
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.ProfileID, &u.IsActive, &u.CreatedDate, &lastLogin); err != nil {
			return nil, err
		}
		if lastLogin.Valid {
			u.LastLoginDate = &lastLogin.Time
		}
		users = append(users, &u)
	}
	return users, rows.Err()
}

// UpdatePassword updates the user's password hash
func (r *UserRepository) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	query := fmt.Sprintf("UPDATE %s SET password = ? WHERE id = ?", constants.TableUser)
	_, err := r.db.ExecContext(ctx, query, passwordHash, userID)
	return err
}

// UpdateLastLogin stamps the user's last login time
func (r *UserRepository) UpdateLastLogin(ctx context.Context, userID string) error {
	query := fmt.Sprintf("UPDATE %s SET last_login_date = ? WHERE id = ?", constants.TableUser)
	_, err := r.db.ExecContext(ctx, query, time.Now(), userID)
	return err
}
