package session

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DefaultSchema matches the schema provisioned by accountd's migrations.
const DefaultSchema = "accountd"

// PostgresTracker stores the current login in accountd.current_session.
//
// The table is constrained to a single row (id = 1); SetCurrent upserts it.
type PostgresTracker struct {
	pool   *pgxpool.Pool
	schema string
	now    func() time.Time
}

// PostgresOption configures the tracker.
type PostgresOption func(*PostgresTracker) error

var pgIdentRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// WithSchema sets the schema holding current_session (default "accountd").
func WithSchema(schema string) PostgresOption {
	return func(t *PostgresTracker) error {
		schema = strings.TrimSpace(schema)
		if schema == "" || !pgIdentRe.MatchString(schema) {
			return fmt.Errorf("%w: schema %q", ErrConfig, schema)
		}
		t.schema = schema
		return nil
	}
}

// NewPostgresTracker constructs a tracker over pool. The pool is owned by the caller.
func NewPostgresTracker(pool *pgxpool.Pool, opts ...PostgresOption) (*PostgresTracker, error) {
	if pool == nil {
		return nil, fmt.Errorf("%w: nil pool", ErrConfig)
	}
	t := &PostgresTracker{
		pool:   pool,
		schema: DefaultSchema,
		now:    func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(t); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func (t *PostgresTracker) table() string {
	return pgx.Identifier{t.schema, "current_session"}.Sanitize()
}

func (t *PostgresTracker) SetCurrent(ctx context.Context, login string) error {
	_, err := t.pool.Exec(ctx, `
		INSERT INTO `+t.table()+` (id, login, updated_at)
		VALUES (1, $1, $2)
		ON CONFLICT (id) DO UPDATE
		   SET login = EXCLUDED.login,
		       updated_at = EXCLUDED.updated_at
	`, login, t.now())
	if err != nil {
		return fmt.Errorf("session.SetCurrent: %w", err)
	}
	return nil
}

func (t *PostgresTracker) Current(ctx context.Context) (string, bool, error) {
	var login string
	err := t.pool.QueryRow(ctx,
		`SELECT login FROM `+t.table()+` WHERE id = 1`,
	).Scan(&login)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("session.Current: %w", err)
	}
	return login, true, nil
}
