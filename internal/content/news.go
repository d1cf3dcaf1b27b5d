package content

import (
	"context"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// News is a club announcement or article.
type News struct {
	ID          int64      `db:"id"`
	Slug        string     `db:"slug"`
	Title       string     `db:"title"`
	Excerpt     string     `db:"excerpt"`
	Body        string     `db:"body"`
	CoverImage  string     `db:"cover_image"`
	Published   bool       `db:"is_published"`
	PublishedAt *time.Time `db:"published_at"`
	CreatedAt   time.Time  `db:"created_at"`
}

// Prepare trims input, derives the slug and checks required fields.
func (n *News) Prepare() error {
	n.Title = strings.TrimSpace(n.Title)
	n.Excerpt = strings.TrimSpace(n.Excerpt)
	n.CoverImage = strings.TrimSpace(n.CoverImage)
	if n.Title == "" {
		return invalid("title required")
	}
	slug, err := slugFor(n.Slug, n.Title)
	if err != nil {
		return err
	}
	n.Slug = slug
	return nil
}

const newsColumns = `id, slug, title, excerpt, body, cover_image, is_published, published_at, created_at`

// NewsRepo stores news in PostgreSQL.
type NewsRepo struct {
	pool *pgxpool.Pool
}

func NewNewsRepo(pool *pgxpool.Pool) *NewsRepo {
	return &NewsRepo{pool: pool}
}

func (r *NewsRepo) List(ctx context.Context) ([]News, error) {
	return queryAll[News](ctx, r.pool, `SELECT `+newsColumns+` FROM news ORDER BY created_at DESC`)
}

// ListPublished returns published items, newest first.
func (r *NewsRepo) ListPublished(ctx context.Context) ([]News, error) {
	return queryAll[News](ctx, r.pool, `
		SELECT `+newsColumns+` FROM news
		WHERE is_published
		ORDER BY published_at DESC NULLS LAST, id DESC`)
}

func (r *NewsRepo) Get(ctx context.Context, id int64) (News, error) {
	return queryOne[News](ctx, r.pool, `SELECT `+newsColumns+` FROM news WHERE id = $1`, id)
}

// GetPublishedBySlug returns a published item; drafts look missing.
func (r *NewsRepo) GetPublishedBySlug(ctx context.Context, slug string) (News, error) {
	return queryOne[News](ctx, r.pool, `SELECT `+newsColumns+` FROM news WHERE slug = $1 AND is_published`, slug)
}

func (r *NewsRepo) Create(ctx context.Context, n News) (int64, error) {
	return insertID(ctx, r.pool, `
		INSERT INTO news (slug, title, excerpt, body, cover_image, is_published, published_at)
		VALUES ($1, $2, $3, $4, $5, $6, CASE WHEN $6 THEN NOW() END)
		RETURNING id`,
		n.Slug, n.Title, n.Excerpt, n.Body, n.CoverImage, n.Published)
}

// Update stamps published_at the first time an item is published.
func (r *NewsRepo) Update(ctx context.Context, n News) error {
	return execOne(ctx, r.pool, `
		UPDATE news
		SET slug = $2, title = $3, excerpt = $4, body = $5, cover_image = $6,
		    is_published = $7,
		    published_at = CASE WHEN $7 THEN COALESCE(published_at, NOW()) ELSE published_at END,
		    updated_at = NOW()
		WHERE id = $1`,
		n.ID, n.Slug, n.Title, n.Excerpt, n.Body, n.CoverImage, n.Published)
}

func (r *NewsRepo) Delete(ctx context.Context, id int64) error {
	return execOne(ctx, r.pool, `DELETE FROM news WHERE id = $1`, id)
}
