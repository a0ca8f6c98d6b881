package handler_test

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/fadl/dashboard-api/internal/queue"
	"github.com/fadl/dashboard-api/internal/repository"
)

// fakeClock is a mutex-guarded time source shared by the issuer, limiter and
// session fake so tests can advance time without sleeping.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.t
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.t = f.t.Add(d)
}

// fakeUsers is a test-only in-memory repository.UserRepository.  Error
// fields inject failures for the 500 paths.
type fakeUsers struct {
	mu        sync.Mutex
	seq       uint64
	users     map[uint64]repository.User
	createErr error
	getErr    error
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{users: make(map[uint64]repository.User)}
}

func (f *fakeUsers) Create(_ context.Context, name, email, passwordHash string) (repository.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.createErr != nil {
		return repository.User{}, f.createErr
	}
	email = strings.ToLower(email)
	for _, u := range f.users {
		if u.Email == email {
			return repository.User{}, repository.ErrEmailExists
		}
	}
	f.seq++
	now := time.Now().UTC()
	u := repository.User{
		ID:           f.seq,
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	f.users[u.ID] = u
	return u, nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (repository.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.getErr != nil {
		return repository.User{}, f.getErr
	}
	email = strings.ToLower(email)
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return repository.User{}, repository.ErrUserNotFound
}

func (f *fakeUsers) GetByID(_ context.Context, id uint64) (repository.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.getErr != nil {
		return repository.User{}, f.getErr
	}
	u, ok := f.users[id]
	if !ok {
		return repository.User{}, repository.ErrUserNotFound
	}
	return u, nil
}

// fakeSessions is a test-only in-memory repository.SessionRepository with
// the one-row-per-user upsert contract and the lazy expiry filter.
type fakeSessions struct {
	mu        sync.Mutex
	rows      map[uint64]repository.Session
	now       func() time.Time
	upsertErr error
	deleteErr error
}

func newFakeSessions(now func() time.Time) *fakeSessions {
	return &fakeSessions{rows: make(map[uint64]repository.Session), now: now}
}

func (f *fakeSessions) Upsert(_ context.Context, userID uint64, token string, expiresAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.rows[userID] = repository.Session{UserID: userID, Token: token, ExpiresAt: expiresAt}
	return nil
}

func (f *fakeSessions) FindValid(_ context.Context, userID uint64, token string) (repository.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	s, ok := f.rows[userID]
	if !ok || s.Token != token || !s.ExpiresAt.After(f.now()) {
		return repository.Session{}, repository.ErrSessionNotFound
	}
	return s, nil
}

func (f *fakeSessions) DeleteByUser(_ context.Context, userID uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.rows, userID)
	return nil
}

func (f *fakeSessions) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.rows)
}

func (f *fakeSessions) get(userID uint64) (repository.Session, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.rows[userID]
	return s, ok
}

func (f *fakeSessions) expire(userID uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := f.rows[userID]; ok {
		s.ExpiresAt = f.now().Add(-time.Second)
		f.rows[userID] = s
	}
}

// fakeEvents records published audit events.
type fakeEvents struct {
	mu     sync.Mutex
	events []queue.AuthEvent
}

func (f *fakeEvents) PublishAuthEvent(_ context.Context, e queue.AuthEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, e)
	return nil
}

func (f *fakeEvents) names() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.events))
	for _, e := range f.events {
		out = append(out, e.Event)
	}
	return out
}
