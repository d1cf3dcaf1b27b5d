package content

import (
	"context"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Achievement is a tournament result or club milestone.
type Achievement struct {
	ID          int64      `db:"id"`
	Slug        string     `db:"slug"`
	Title       string     `db:"title"`
	Description string     `db:"description"`
	Date        *time.Time `db:"achieved_on"`
	CoverImage  string     `db:"cover_image"`
	Published   bool       `db:"is_published"`
	CreatedAt   time.Time  `db:"created_at"`
}

func (a *Achievement) Prepare() error {
	a.Title = strings.TrimSpace(a.Title)
	a.CoverImage = strings.TrimSpace(a.CoverImage)
	if a.Title == "" {
		return invalid("title required")
	}
	slug, err := slugFor(a.Slug, a.Title)
	if err != nil {
		return err
	}
	a.Slug = slug
	return nil
}

const achievementColumns = `id, slug, title, description, achieved_on, cover_image, is_published, created_at`

type AchievementRepo struct {
	pool *pgxpool.Pool
}

func NewAchievementRepo(pool *pgxpool.Pool) *AchievementRepo {
	return &AchievementRepo{pool: pool}
}

func (r *AchievementRepo) List(ctx context.Context) ([]Achievement, error) {
	return queryAll[Achievement](ctx, r.pool, `SELECT `+achievementColumns+` FROM achievements ORDER BY achieved_on DESC NULLS LAST, id DESC`)
}

func (r *AchievementRepo) ListPublished(ctx context.Context) ([]Achievement, error) {
	return queryAll[Achievement](ctx, r.pool, `
		SELECT `+achievementColumns+` FROM achievements
		WHERE is_published
		ORDER BY achieved_on DESC NULLS LAST, id DESC`)
}

func (r *AchievementRepo) Get(ctx context.Context, id int64) (Achievement, error) {
	return queryOne[Achievement](ctx, r.pool, `SELECT `+achievementColumns+` FROM achievements WHERE id = $1`, id)
}

func (r *AchievementRepo) GetPublishedBySlug(ctx context.Context, slug string) (Achievement, error) {
	return queryOne[Achievement](ctx, r.pool, `SELECT `+achievementColumns+` FROM achievements WHERE slug = $1 AND is_published`, slug)
}

func (r *AchievementRepo) Create(ctx context.Context, a Achievement) (int64, error) {
	return insertID(ctx, r.pool, `
		INSERT INTO achievements (slug, title, description, achieved_on, cover_image, is_published)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		a.Slug, a.Title, a.Description, a.Date, a.CoverImage, a.Published)
}

func (r *AchievementRepo) Update(ctx context.Context, a Achievement) error {
	return execOne(ctx, r.pool, `
		UPDATE achievements
		SET slug = $2, title = $3, description = $4, achieved_on = $5, cover_image = $6,
		    is_published = $7, updated_at = NOW()
		WHERE id = $1`,
		a.ID, a.Slug, a.Title, a.Description, a.Date, a.CoverImage, a.Published)
}

func (r *AchievementRepo) Delete(ctx context.Context, id int64) error {
	return execOne(ctx, r.pool, `DELETE FROM achievements WHERE id = $1`, id)
}
