// Package migrations provisions accountd's Postgres schema with goose.
//
// SQL files use unqualified table names; Up runs them with search_path pinned to
// the target schema, so the same migrations serve the default "accountd" schema
// and throwaway schemas in integration tests.
package migrations

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed sql/*.sql
var files embed.FS

// FS returns the embedded migration files rooted at the SQL directory.
func FS() fs.FS {
	sub, err := fs.Sub(files, "sql")
	if err != nil {
		// The embed pattern guarantees the directory exists.
		panic(err)
	}
	return sub
}

// Up creates schema if needed and applies all pending migrations to it.
// It returns the versions applied by this call.
func Up(ctx context.Context, pool *pgxpool.Pool, schema string) ([]int64, error) {
	if pool == nil {
		return nil, fmt.Errorf("migrations: nil pool")
	}
	schema = strings.TrimSpace(schema)
	if schema == "" {
		return nil, fmt.Errorf("migrations: empty schema")
	}

	cc := pool.Config().ConnConfig.Copy()
	if cc.RuntimeParams == nil {
		cc.RuntimeParams = map[string]string{}
	}
	cc.RuntimeParams["search_path"] = schema

	db := stdlib.OpenDB(*cc)
	defer func() { _ = db.Close() }()

	if _, err := db.ExecContext(ctx, `CREATE SCHEMA IF NOT EXISTS `+pgx.Identifier{schema}.Sanitize()); err != nil {
		return nil, fmt.Errorf("migrations: create schema: %w", err)
	}

	provider, err := goose.NewProvider(goose.DialectPostgres, db, FS())
	if err != nil {
		return nil, fmt.Errorf("migrations: provider: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return nil, fmt.Errorf("migrations: up: %w", err)
	}

	applied := make([]int64, 0, len(results))
	for _, r := range results {
		if r == nil || r.Source == nil {
			continue
		}
		applied = append(applied, r.Source.Version)
	}
	return applied, nil
}
