package identity

import (
	"context"
	"strings"
	"sync"
	"time"
)

// MemoryStore is the in-process Store used when no database is configured.
// A single mutex makes Create's check-and-insert atomic.
type MemoryStore struct {
	mu     sync.Mutex
	nextID int64
	users  map[string]*User // login -> user

	now func() time.Time
}

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users: make(map[string]*User),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Exists reports whether a user with login is present.
func (s *MemoryStore) Exists(ctx context.Context, login string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.users[login]
	return ok, nil
}

// Create inserts a new user. Returns ConflictError if login is taken.
func (s *MemoryStore) Create(ctx context.Context, login, passwordHash string) (User, error) {
	const op = "identity.MemoryStore.Create"

	if err := ctx.Err(); err != nil {
		return User{}, err
	}
	if strings.TrimSpace(passwordHash) == "" {
		return User{}, invalid(op, "password hash is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[login]; ok {
		return User{}, loginTaken(op)
	}

	now := s.now()
	s.nextID++
	u := &User{
		ID:           s.nextID,
		Login:        login,
		PasswordHash: passwordHash,
		Details:      Details{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	s.users[login] = u

	return copyUser(u), nil
}

// Find returns the user with login, or NotFoundError.
func (s *MemoryStore) Find(ctx context.Context, login string) (User, error) {
	const op = "identity.MemoryStore.Find"

	if err := ctx.Err(); err != nil {
		return User{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[login]
	if !ok {
		return User{}, userNotFound(op)
	}
	return copyUser(u), nil
}

// Save persists u.Details for an existing user. The password hash is never replaced.
func (s *MemoryStore) Save(ctx context.Context, u User) error {
	const op = "identity.MemoryStore.Save"

	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.saveLocked(op, u.Login, u.Details)
	return err
}

// Merge applies patch to the user's details under the store lock.
func (s *MemoryStore) Merge(ctx context.Context, login string, patch Details) (Details, error) {
	const op = "identity.MemoryStore.Merge"

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.users[login]
	if !ok {
		return nil, userNotFound(op)
	}
	return s.saveLocked(op, login, cur.Details.Merge(patch))
}

// saveLocked is the single write path for details. Callers hold s.mu.
func (s *MemoryStore) saveLocked(op, login string, d Details) (Details, error) {
	cur, ok := s.users[login]
	if !ok {
		return nil, userNotFound(op)
	}
	cur.Details = d.Clone()
	cur.UpdatedAt = s.now()
	return cur.Details.Clone(), nil
}

// Len returns the number of stored users.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users)
}

func copyUser(u *User) User {
	out := *u
	out.Details = u.Details.Clone()
	return out
}
