// Package content holds the club's editable records and their PostgreSQL repositories.
package content

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mozillazg/go-unidecode"
)

var (
	// ErrNotFound signals a missing record.
	ErrNotFound = errors.New("content not found")
	// ErrSlugTaken signals a slug already used by another record of the same kind.
	ErrSlugTaken = errors.New("slug already taken")
	// ErrInvalid wraps input validation failures.
	ErrInvalid = errors.New("invalid content")
)

// Store is the admin CRUD surface shared by every content kind.
type Store[T any] interface {
	List(ctx context.Context) ([]T, error)
	Get(ctx context.Context, id int64) (T, error)
	Create(ctx context.Context, item T) (int64, error)
	Update(ctx context.Context, item T) error
	Delete(ctx context.Context, id int64) error
}

var (
	slugRegex       = regexp.MustCompile(`[^a-z0-9-]+`)
	multipleHyphens = regexp.MustCompile(`-{2,}`)
)

// Slugify transliterates s to ASCII and reduces it to lowercase words joined by hyphens.
func Slugify(s string) string {
	result := strings.ToLower(unidecode.Unidecode(s))
	result = strings.Join(strings.Fields(result), "-")
	result = slugRegex.ReplaceAllString(result, "")
	result = multipleHyphens.ReplaceAllString(result, "-")
	return strings.Trim(result, "-")
}

func invalid(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalid, msg)
}

// slugFor keeps an explicit slug (normalized) or derives one from the title.
func slugFor(slug, title string) (string, error) {
	if s := Slugify(slug); s != "" {
		return s, nil
	}
	if s := Slugify(title); s != "" {
		return s, nil
	}
	return "", invalid("slug required")
}

func queryAll[T any](ctx context.Context, pool *pgxpool.Pool, sql string, args ...any) ([]T, error) {
	rows, err := pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[T])
}

func queryOne[T any](ctx context.Context, pool *pgxpool.Pool, sql string, args ...any) (T, error) {
	rows, err := pool.Query(ctx, sql, args...)
	if err != nil {
		var zero T
		return zero, err
	}
	item, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[T])
	if errors.Is(err, pgx.ErrNoRows) {
		return item, ErrNotFound
	}
	return item, err
}

func insertID(ctx context.Context, pool *pgxpool.Pool, sql string, args ...any) (int64, error) {
	var id int64
	if err := pool.QueryRow(ctx, sql, args...).Scan(&id); err != nil {
		return 0, writeErr(err)
	}
	return id, nil
}

func execOne(ctx context.Context, pool *pgxpool.Pool, sql string, args ...any) error {
	tag, err := pool.Exec(ctx, sql, args...)
	if err != nil {
		return writeErr(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func writeErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrSlugTaken
	}
	return err
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}
