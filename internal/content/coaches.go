package content

import (
	"context"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Coach is a trainer profile.
type Coach struct {
	ID           int64     `db:"id"`
	FullName     string    `db:"full_name"`
	Rank         string    `db:"rank"`
	Experience   string    `db:"experience"`
	Role         string    `db:"role"`
	Description  string    `db:"description"`
	ImageURL     string    `db:"image_url"`
	Instagram    string    `db:"instagram"`
	DisplayOrder int       `db:"display_order"`
	CreatedAt    time.Time `db:"created_at"`
}

func (c *Coach) Prepare() error {
	c.FullName = strings.TrimSpace(c.FullName)
	c.Rank = strings.TrimSpace(c.Rank)
	c.Role = strings.TrimSpace(c.Role)
	c.ImageURL = strings.TrimSpace(c.ImageURL)
	c.Instagram = strings.TrimSpace(c.Instagram)
	if c.FullName == "" {
		return invalid("name required")
	}
	return nil
}

const coachColumns = `id, full_name, rank, experience, role, description, image_url, instagram, display_order, created_at`

type CoachRepo struct {
	pool *pgxpool.Pool
}

func NewCoachRepo(pool *pgxpool.Pool) *CoachRepo {
	return &CoachRepo{pool: pool}
}

func (r *CoachRepo) List(ctx context.Context) ([]Coach, error) {
	return queryAll[Coach](ctx, r.pool, `SELECT `+coachColumns+` FROM coaches ORDER BY display_order, id`)
}

func (r *CoachRepo) Get(ctx context.Context, id int64) (Coach, error) {
	return queryOne[Coach](ctx, r.pool, `SELECT `+coachColumns+` FROM coaches WHERE id = $1`, id)
}

func (r *CoachRepo) Create(ctx context.Context, c Coach) (int64, error) {
	return insertID(ctx, r.pool, `
		INSERT INTO coaches (full_name, rank, experience, role, description, image_url, instagram, display_order)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`,
		c.FullName, c.Rank, c.Experience, c.Role, c.Description, c.ImageURL, c.Instagram, c.DisplayOrder)
}

func (r *CoachRepo) Update(ctx context.Context, c Coach) error {
	return execOne(ctx, r.pool, `
		UPDATE coaches
		SET full_name = $2, rank = $3, experience = $4, role = $5, description = $6,
		    image_url = $7, instagram = $8, display_order = $9, updated_at = NOW()
		WHERE id = $1`,
		c.ID, c.FullName, c.Rank, c.Experience, c.Role, c.Description, c.ImageURL, c.Instagram, c.DisplayOrder)
}

func (r *CoachRepo) Delete(ctx context.Context, id int64) error {
	return execOne(ctx, r.pool, `DELETE FROM coaches WHERE id = $1`, id)
}
