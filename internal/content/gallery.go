package content

import (
	"context"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Gallery item kinds.
const (
	KindPhoto = "photo"
	KindVideo = "video"
)

// GalleryItem is a photo or an embedded video.
type GalleryItem struct {
	ID          int64     `db:"id"`
	Kind        string    `db:"kind"`
	Title       string    `db:"title"`
	Description string    `db:"description"`
	ImageURL    string    `db:"image_url"`
	VideoURL    string    `db:"video_url"`
	CreatedAt   time.Time `db:"created_at"`
}

// Prepare requires an image for photos and a video link for videos. Photos
// never keep a video link.
func (g *GalleryItem) Prepare() error {
	g.Title = strings.TrimSpace(g.Title)
	g.ImageURL = strings.TrimSpace(g.ImageURL)
	g.VideoURL = strings.TrimSpace(g.VideoURL)
	switch g.Kind {
	case KindPhoto:
		g.VideoURL = ""
		if g.ImageURL == "" {
			return invalid("image required")
		}
	case KindVideo:
		if g.VideoURL == "" {
			return invalid("video link required")
		}
	default:
		return invalid("unknown gallery kind " + g.Kind)
	}
	return nil
}

const galleryColumns = `id, kind, title, description, image_url, video_url, created_at`

type GalleryRepo struct {
	pool *pgxpool.Pool
}

func NewGalleryRepo(pool *pgxpool.Pool) *GalleryRepo {
	return &GalleryRepo{pool: pool}
}

// List returns items newest first.
func (r *GalleryRepo) List(ctx context.Context) ([]GalleryItem, error) {
	return queryAll[GalleryItem](ctx, r.pool, `SELECT `+galleryColumns+` FROM gallery ORDER BY created_at DESC, id DESC`)
}

func (r *GalleryRepo) Get(ctx context.Context, id int64) (GalleryItem, error) {
	return queryOne[GalleryItem](ctx, r.pool, `SELECT `+galleryColumns+` FROM gallery WHERE id = $1`, id)
}

func (r *GalleryRepo) Create(ctx context.Context, g GalleryItem) (int64, error) {
	return insertID(ctx, r.pool, `
		INSERT INTO gallery (kind, title, description, image_url, video_url)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		g.Kind, g.Title, g.Description, g.ImageURL, g.VideoURL)
}

func (r *GalleryRepo) Update(ctx context.Context, g GalleryItem) error {
	return execOne(ctx, r.pool, `
		UPDATE gallery
		SET kind = $2, title = $3, description = $4, image_url = $5, video_url = $6
		WHERE id = $1`,
		g.ID, g.Kind, g.Title, g.Description, g.ImageURL, g.VideoURL)
}

func (r *GalleryRepo) Delete(ctx context.Context, id int64) error {
	return execOne(ctx, r.pool, `DELETE FROM gallery WHERE id = $1`, id)
}
