// Package repository persists the auth core's two records: user accounts and
// the one live session each user may hold.  Handlers depend on the interfaces
// below; the MySQL implementations live alongside them and tests substitute
// in-memory fakes.
package repository

import (
	"context"
	"time"
)

// User mirrors the `users` table.  PasswordHash is never serialized to
// clients; handlers build their own response types.
type User struct {
	ID           uint64
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Session is the binding between a user and their currently valid refresh
// token.  At most one row exists per user.
type Session struct {
	UserID    uint64
	Token     string
	ExpiresAt time.Time
}

// UserRepository stores user accounts.
type UserRepository interface {
	// Create inserts a new user.  The email must be unique; a duplicate
	// yields ErrEmailExists.
	Create(ctx context.Context, name, email, passwordHash string) (User, error)
	// GetByEmail fetches a user by normalized email, ErrUserNotFound when absent.
	GetByEmail(ctx context.Context, email string) (User, error)
	// GetByID fetches a user by id, ErrUserNotFound when absent.
	GetByID(ctx context.Context, id uint64) (User, error)
}

// SessionRepository stores the per-user session row.
type SessionRepository interface {
	// Upsert atomically creates or replaces the user's session.  A later
	// login therefore invalidates the refresh token stored by an earlier one.
	Upsert(ctx context.Context, userID uint64, token string, expiresAt time.Time) error
	// FindValid returns the session only when the stored token matches
	// exactly and the expiry is still in the future; otherwise
	// ErrSessionNotFound.  Expired rows are treated as absent even if they
	// still physically exist.
	FindValid(ctx context.Context, userID uint64, token string) (Session, error)
	// DeleteByUser removes all sessions for the user.  Deleting a
	// non-existent session is not an error.
	DeleteByUser(ctx context.Context, userID uint64) error
}
