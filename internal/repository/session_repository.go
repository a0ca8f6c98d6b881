package repository

import (
	"context"
	"database/sql"
	"time"
)

// SessionRepo is the MySQL SessionRepository.  The `sessions` table carries
// a unique key on user_id, so the upsert below is the store's native
// conflict resolution and two concurrent logins for the same user can never
// leave two rows behind.
type SessionRepo struct{ DB *sql.DB }

func NewSessionRepo(db *sql.DB) *SessionRepo { return &SessionRepo{DB: db} }

var _ SessionRepository = (*SessionRepo)(nil)

// Upsert creates the user's session row or overwrites its token and expiry
// in a single statement.
func (r *SessionRepo) Upsert(ctx context.Context, userID uint64, token string, expiresAt time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO sessions (user_id, token, expires_at) VALUES (?,?,?)
		 ON DUPLICATE KEY UPDATE token=VALUES(token), expires_at=VALUES(expires_at)`,
		userID, token, expiresAt.UTC())
	return err
}

// FindValid returns the session only when userID and token match exactly and
// the expiry lies in the future.  The query itself filters on expiry, so an
// expired row behaves as absent without any sweeping.
func (r *SessionRepo) FindValid(ctx context.Context, userID uint64, token string) (Session, error) {
	var s Session
	err := r.DB.QueryRowContext(ctx,
		"SELECT user_id, token, expires_at FROM sessions WHERE user_id=? AND token=? AND expires_at>UTC_TIMESTAMP() LIMIT 1",
		userID, token).Scan(&s.UserID, &s.Token, &s.ExpiresAt)
	if err == sql.ErrNoRows {
		return Session{}, ErrSessionNotFound
	}
	return s, err
}

// DeleteByUser removes the user's sessions.  Idempotent.
func (r *SessionRepo) DeleteByUser(ctx context.Context, userID uint64) error {
	_, err := r.DB.ExecContext(ctx, "DELETE FROM sessions WHERE user_id=?", userID)
	return err
}
