package identity

import (
	"context"
	"time"
)

// User is accountd's identity record.
// PasswordHash is an opaque encoded hash; it is written once at creation.
type User struct {
	ID           int64
	Login        string
	PasswordHash string
	Details      Details

	CreatedAt time.Time
	UpdatedAt time.Time
}

// CredentialStore persists login/password-hash pairs.
//
// Create must enforce login uniqueness atomically: under concurrent calls for the
// same login exactly one succeeds and the others get a ConflictError.
type CredentialStore interface {
	Exists(ctx context.Context, login string) (bool, error)
	Create(ctx context.Context, login, passwordHash string) (User, error)
	Find(ctx context.Context, login string) (User, error)
	// Save replaces u.Details wholesale for an existing user and never touches
	// the password hash. Account updates go through ProfileStore.Merge, which
	// performs the same write with the read-merge step made atomic; Save is for
	// callers that already hold the complete details.
	Save(ctx context.Context, u User) error
}

// ProfileStore persists the per-user Details mapping.
type ProfileStore interface {
	// Merge applies patch to the user's details (see Details.Merge) and returns
	// the stored result. Returns NotFoundError if login does not exist.
	Merge(ctx context.Context, login string, patch Details) (Details, error)
}

// Store is implemented by backends that serve both boundaries.
type Store interface {
	CredentialStore
	ProfileStore
}
