package postgres

import (
	"context"
	"embed"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// Migrate applies pending goose migrations and grants the service role access
// to the allowlist. It must run with a role that owns the schema. An empty
// serviceRole skips the grant.
func Migrate(ctx context.Context, pool *pgxpool.Pool, serviceRole string) error {
	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	goose.SetBaseFS(embedMigrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("goose set dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	if serviceRole == "" {
		return nil
	}
	if _, err := pool.Exec(ctx, allowlistGrant(serviceRole)); err != nil {
		return fmt.Errorf("grant allowlist to %s: %w", serviceRole, err)
	}
	return nil
}

// The role still needs BYPASSRLS to see rows; GRANT only covers table privileges.
func allowlistGrant(role string) string {
	return "GRANT SELECT, INSERT, DELETE ON admin_allowlist TO " + pgx.Identifier{role}.Sanitize()
}
