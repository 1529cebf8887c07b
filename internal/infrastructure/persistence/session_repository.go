package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/meridiancrm/backend/internal/domain/models"
	"github.com/meridiancrm/backend/pkg/constants"
)

// SessionRepository stores server-side login sessions. The session ID is the
// JWT's jti claim, so revoking a session invalidates the token before expiry.
type SessionRepository struct {
	db *sql.DB
}

func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create records a new session
func (r *SessionRepository) Create(ctx context.Context, s *models.Session) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, user_id, expires_at, created_date)
		VALUES (?, ?, ?, ?)`,
		constants.TableSession)

	s.CreatedDate = time.Now()

	_, err := r.db.ExecContext(ctx, query, s.ID, s.UserID, s.ExpiresAt, s.CreatedDate)
	return err
}

// Exists reports whether a live (unexpired) session exists for the given jti
func (r *SessionRepository) Exists(ctx context.Context, sessionID string) (bool, error) {
	var exists bool
	query := fmt.Sprintf("SELECT EXISTS(SELECT 1 FROM %s WHERE %s = ? AND expires_at > ?)",
		constants.TableSession, constants.FieldID)
	err := r.db.QueryRowContext(ctx, query, sessionID, time.Now()).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

// Delete revokes a single session
func (r *SessionRepository) Delete(ctx context.Context, sessionID string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE %s = ?", constants.TableSession, constants.FieldID)
	_, err := r.db.ExecContext(ctx, query, sessionID)
	return err
}

// DeleteByUser revokes every session for a user (logout-everywhere, password change)
func (r *SessionRepository) DeleteByUser(ctx context.Context, userID string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE user_id = ?", constants.TableSession)
	_, err := r.db.ExecContext(ctx, query, userID)
	return err
}

// ListByUser retrieves live sessions for a user, newest first
func (r *SessionRepository) ListByUser(ctx context.Context, userID string) ([]*models.Session, error) {
	query := fmt.Sprintf(`
		SELECT id, user_id, expires_at, created_date
		FROM %s
		WHERE user_id = ? AND expires_at > ?
		ORDER BY %s DESC`,
		constants.TableSession, constants.FieldCreatedDate)

	rows, err := r.db.QueryContext(ctx, query, userID, time.Now())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sessions := make([]*models.Session, 0)
	for rows.Next() {
		var s models.Session
		if err := rows.Scan(&s.ID, &s.UserID, &s.ExpiresAt, &s.CreatedDate); err != nil {
			return nil, err
		}
		sessions = append(sessions, &s)
	}
	return sessions, rows.Err()
}

// PurgeExpired removes sessions past their expiry; returns the count removed
func (r *SessionRepository) PurgeExpired(ctx context.Context) (int64, error) {
	query := fmt.Sprintf("DELETE FROM %s WHERE expires_at <= ?", constants.TableSession)
	res, err := r.db.ExecContext(ctx, query, time.Now())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
