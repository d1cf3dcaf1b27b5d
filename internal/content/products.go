package content

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Product is an item sold through the club shop. Orders go through messengers.
type Product struct {
	ID          int64     `db:"id"`
	Slug        string    `db:"slug"`
	Title       string    `db:"title"`
	Description string    `db:"description"`
	Price       float64   `db:"price"`
	Currency    string    `db:"currency"`
	Category    string    `db:"category"`
	Sizes       []string  `db:"sizes"`
	ImageURL    string    `db:"image_url"`
	Active      bool      `db:"is_active"`
	CreatedAt   time.Time `db:"created_at"`
}

func (p *Product) Prepare() error {
	p.Title = strings.TrimSpace(p.Title)
	p.Category = strings.TrimSpace(p.Category)
	p.ImageURL = strings.TrimSpace(p.ImageURL)
	p.Currency = strings.ToUpper(strings.TrimSpace(p.Currency))
	if p.Currency == "" {
		p.Currency = "KZT"
	}
	if p.Title == "" {
		return invalid("title required")
	}
	if p.Price < 0 {
		return invalid("price must not be negative")
	}
	sizes := make([]string, 0, len(p.Sizes))
	for _, s := range p.Sizes {
		if s = strings.TrimSpace(s); s != "" {
			sizes = append(sizes, s)
		}
	}
	p.Sizes = sizes
	slug, err := slugFor(p.Slug, p.Title)
	if err != nil {
		return err
	}
	p.Slug = slug
	return nil
}

// PriceLabel formats the price without trailing zeros, e.g. "15000 ₸".
func (p Product) PriceLabel() string {
	amount := strconv.FormatFloat(p.Price, 'f', -1, 64)
	if p.Currency == "" || p.Currency == "KZT" {
		return amount + " ₸"
	}
	return amount + " " + p.Currency
}

// OrderMessage is the text prefilled into a messenger chat for this product.
func (p Product) OrderMessage(pageURL string) string {
	return fmt.Sprintf("Здравствуйте! Хочу приобрести товар «%s». Цена: %s. Ссылка: %s", p.Title, p.PriceLabel(), pageURL)
}

// WhatsAppLink builds a wa.me chat link from a phone number in any format.
// It returns "" when the phone has no digits.
func WhatsAppLink(phone, message string) string {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, phone)
	if digits == "" {
		return ""
	}
	link := "https://wa.me/" + digits
	if message != "" {
		link += "?text=" + url.QueryEscape(message)
	}
	return link
}

const productColumns = `id, slug, title, description, price, currency, category, sizes, image_url, is_active, created_at`

type ProductRepo struct {
	pool *pgxpool.Pool
}

func NewProductRepo(pool *pgxpool.Pool) *ProductRepo {
	return &ProductRepo{pool: pool}
}

func (r *ProductRepo) List(ctx context.Context) ([]Product, error) {
	return queryAll[Product](ctx, r.pool, `SELECT `+productColumns+` FROM products ORDER BY title`)
}

// ListActive returns the products shown in the shop, by title.
func (r *ProductRepo) ListActive(ctx context.Context) ([]Product, error) {
	return queryAll[Product](ctx, r.pool, `SELECT `+productColumns+` FROM products WHERE is_active ORDER BY title`)
}

func (r *ProductRepo) Get(ctx context.Context, id int64) (Product, error) {
	return queryOne[Product](ctx, r.pool, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
}

func (r *ProductRepo) GetActiveBySlug(ctx context.Context, slug string) (Product, error) {
	return queryOne[Product](ctx, r.pool, `SELECT `+productColumns+` FROM products WHERE slug = $1 AND is_active`, slug)
}

func (r *ProductRepo) Create(ctx context.Context, p Product) (int64, error) {
	return insertID(ctx, r.pool, `
		INSERT INTO products (slug, title, description, price, currency, category, sizes, image_url, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`,
		p.Slug, p.Title, p.Description, p.Price, p.Currency, p.Category, p.Sizes, p.ImageURL, p.Active)
}

func (r *ProductRepo) Update(ctx context.Context, p Product) error {
	return execOne(ctx, r.pool, `
		UPDATE products
		SET slug = $2, title = $3, description = $4, price = $5, currency = $6,
		    category = $7, sizes = $8, image_url = $9, is_active = $10, updated_at = NOW()
		WHERE id = $1`,
		p.ID, p.Slug, p.Title, p.Description, p.Price, p.Currency, p.Category, p.Sizes, p.ImageURL, p.Active)
}

func (r *ProductRepo) Delete(ctx context.Context, id int64) error {
	return execOne(ctx, r.pool, `DELETE FROM products WHERE id = $1`, id)
}
