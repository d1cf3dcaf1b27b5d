package admin

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrEntryExists signals a duplicate allowlist email.
var ErrEntryExists = errors.New("allowlist entry already exists")

// Entry authorizes one email to administer the site.
type Entry struct {
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// LookupResult is one of Found, NotFound or QueryError.
type LookupResult interface {
	lookupResult()
}

// Found carries the matching entry.
type Found struct {
	Entry Entry
}

// NotFound means the query succeeded and matched nothing.
type NotFound struct {
	Email string
}

// QueryError means the lookup itself failed (outage, timeout, bad query).
type QueryError struct {
	Err error
}

func (Found) lookupResult()      {}
func (NotFound) lookupResult()   {}
func (QueryError) lookupResult() {}

// AllowlistRepo reads and maintains admin_allowlist. It must be built on the
// service-role pool: row-level security hides the table from the app role.
type AllowlistRepo struct {
	pool *pgxpool.Pool
}

func NewAllowlistRepo(pool *pgxpool.Pool) *AllowlistRepo {
	return &AllowlistRepo{pool: pool}
}

// Lookup matches email exactly as stored, case-sensitive.
func (r *AllowlistRepo) Lookup(ctx context.Context, email string) LookupResult {
	var e Entry
	err := r.pool.QueryRow(ctx, `SELECT email, created_at FROM admin_allowlist WHERE email = $1`, email).Scan(&e.Email, &e.CreatedAt)
	switch {
	case err == nil:
		return Found{Entry: e}
	case errors.Is(err, pgx.ErrNoRows):
		return NotFound{Email: email}
	default:
		return QueryError{Err: err}
	}
}

func (r *AllowlistRepo) Add(ctx context.Context, email string) (Entry, error) {
	var e Entry
	err := r.pool.QueryRow(ctx, `
		INSERT INTO admin_allowlist (email)
		VALUES ($1)
		RETURNING email, created_at`, email).Scan(&e.Email, &e.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Entry{}, ErrEntryExists
		}
		return Entry{}, err
	}
	return e, nil
}

// Remove deletes the entry and reports whether one existed.
func (r *AllowlistRepo) Remove(ctx context.Context, email string) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM admin_allowlist WHERE email = $1`, email)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *AllowlistRepo) List(ctx context.Context) ([]Entry, error) {
	rows, err := r.pool.Query(ctx, `SELECT email, created_at FROM admin_allowlist ORDER BY email`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (Entry, error) {
		var e Entry
		err := row.Scan(&e.Email, &e.CreatedAt)
		return e, err
	})
}
