// Package identity holds accountd's user records and their persistence.
//
// It defines the User model, the Details merge-patch type, the CredentialStore
// and ProfileStore boundaries, and their Postgres and in-memory implementations.
// Login uniqueness is enforced by the store itself (a unique constraint in
// Postgres, a locked map in memory) so concurrent registrations cannot both win.
package identity
