package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DefaultSchema is the Postgres schema created by accountd's migrations.
const DefaultSchema = "accountd"

// PostgresStore implements Store over PostgreSQL.
//
// The pgx pool is owned by the caller; the store never closes it.
// Login uniqueness is the uq_users_login constraint; Create maps its violation
// to ConflictError instead of pre-reading.
type PostgresStore struct {
	pool   *pgxpool.Pool
	schema string
}

// PostgresOption configures the store.
type PostgresOption func(*PostgresStore) error

var pgIdentRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// WithSchema sets the Postgres schema used by the store (default "accountd").
func WithSchema(schema string) PostgresOption {
	return func(s *PostgresStore) error {
		schema = strings.TrimSpace(schema)
		if schema == "" {
			return fmt.Errorf("identity: empty schema")
		}
		if !pgIdentRe.MatchString(schema) {
			return fmt.Errorf("identity: invalid schema identifier")
		}
		s.schema = schema
		return nil
	}
}

// NewPostgresStore constructs a PostgresStore.
func NewPostgresStore(pool *pgxpool.Pool, opts ...PostgresOption) (*PostgresStore, error) {
	st := &PostgresStore{
		pool:   pool,
		schema: DefaultSchema,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(st); err != nil {
			return nil, err
		}
	}
	if st.pool == nil {
		return nil, fmt.Errorf("identity: nil pool")
	}
	return st, nil
}

func (s *PostgresStore) users() string { return pgIdent(s.schema, "users") }

// Exists reports whether a user with login is present.
func (s *PostgresStore) Exists(ctx context.Context, login string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM `+s.users()+` WHERE login = $1)`,
		login,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("identity.Exists: %w", err)
	}
	return exists, nil
}

// Create inserts a user with empty details in a single statement.
func (s *PostgresStore) Create(ctx context.Context, login, passwordHash string) (User, error) {
	const op = "identity.Create"

	if strings.TrimSpace(passwordHash) == "" {
		return User{}, invalid(op, "password hash is required")
	}

	out := User{Login: login, PasswordHash: passwordHash, Details: Details{}}
	err := s.pool.QueryRow(ctx,
		`INSERT INTO `+s.users()+` (login, password_hash, details)
		 VALUES ($1, $2, '{}'::jsonb)
		 RETURNING id, created_at, updated_at`,
		login, passwordHash,
	).Scan(&out.ID, &out.CreatedAt, &out.UpdatedAt)
	if err != nil {
		if pgIsUniqueViolation(err) {
			return User{}, loginTaken(op)
		}
		return User{}, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}

// Find loads a user by login.
func (s *PostgresStore) Find(ctx context.Context, login string) (User, error) {
	const op = "identity.Find"

	var (
		out     User
		rawJSON []byte
	)
	err := s.pool.QueryRow(ctx,
		`SELECT id, login, password_hash, details, created_at, updated_at
		   FROM `+s.users()+`
		  WHERE login = $1`,
		login,
	).Scan(&out.ID, &out.Login, &out.PasswordHash, &rawJSON, &out.CreatedAt, &out.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, userNotFound(op)
		}
		return User{}, fmt.Errorf("%s: %w", op, err)
	}

	out.Details, err = decodeDetails(rawJSON)
	if err != nil {
		return User{}, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}

// Save replaces the stored details of an existing user.
// password_hash is deliberately absent from the statement.
func (s *PostgresStore) Save(ctx context.Context, u User) error {
	const op = "identity.Save"

	raw, err := encodeDetails(u.Details)
	if err != nil {
		return invalid(op, err.Error())
	}

	ct, err := s.pool.Exec(ctx,
		`UPDATE `+s.users()+`
		    SET details = $2::jsonb,
		        updated_at = $3
		  WHERE login = $1`,
		u.Login, raw, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if ct.RowsAffected() == 0 {
		return userNotFound(op)
	}
	return nil
}

// Merge applies patch with jsonb concatenation, which is a shallow key-wise
// overwrite. Load, merge and persist happen in one statement.
func (s *PostgresStore) Merge(ctx context.Context, login string, patch Details) (Details, error) {
	const op = "identity.Merge"

	raw, err := encodeDetails(patch)
	if err != nil {
		return nil, invalid(op, err.Error())
	}

	var merged []byte
	err = s.pool.QueryRow(ctx,
		`UPDATE `+s.users()+`
		    SET details = COALESCE(details, '{}'::jsonb) || $2::jsonb,
		        updated_at = $3
		  WHERE login = $1
		  RETURNING details`,
		login, raw, time.Now().UTC(),
	).Scan(&merged)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, userNotFound(op)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return decodeDetails(merged)
}

// ---- helpers ----

func encodeDetails(d Details) (string, error) {
	if d == nil {
		return "{}", nil
	}
	b, err := json.Marshal(d)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decodeDetails(raw []byte) (Details, error) {
	out := Details{}
	if len(raw) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode details: %w", err)
	}
	if out == nil {
		// JSON null column.
		out = Details{}
	}
	return out, nil
}

// pgIdent safely quotes a schema-qualified identifier: "schema"."name".
func pgIdent(schema, name string) string {
	return pgx.Identifier{schema, name}.Sanitize()
}

func pgIsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == "23505" // unique_violation
}
