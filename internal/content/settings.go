package content

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SocialLinks are the club's social profiles, stored as JSONB.
type SocialLinks struct {
	Instagram string `json:"instagram,omitempty"`
	Telegram  string `json:"telegram,omitempty"`
	YouTube   string `json:"youtube,omitempty"`
	TikTok    string `json:"tiktok,omitempty"`
	WhatsApp  string `json:"whatsapp,omitempty"`
}

// Link is a labelled social profile URL.
type Link struct {
	Label string
	URL   string
}

// List returns the non-empty links in display order.
func (s SocialLinks) List() []Link {
	all := []Link{
		{"Instagram", s.Instagram},
		{"Telegram", s.Telegram},
		{"YouTube", s.YouTube},
		{"TikTok", s.TikTok},
		{"WhatsApp", s.WhatsApp},
	}
	out := all[:0]
	for _, l := range all {
		if strings.TrimSpace(l.URL) != "" {
			out = append(out, l)
		}
	}
	return out
}

// Settings is the single site-wide settings row.
type Settings struct {
	Phone       string
	Address     string
	SocialLinks SocialLinks
	UpdatedAt   time.Time
}

// SettingsStore reads and writes site settings.
type SettingsStore interface {
	Get(ctx context.Context) (Settings, error)
	Update(ctx context.Context, s Settings) error
}

// SettingsRepo is the PostgreSQL SettingsStore.
type SettingsRepo struct {
	pool *pgxpool.Pool
}

func NewSettingsRepo(pool *pgxpool.Pool) *SettingsRepo {
	return &SettingsRepo{pool: pool}
}

func (r *SettingsRepo) Get(ctx context.Context) (Settings, error) {
	var (
		s     Settings
		links []byte
	)
	err := r.pool.QueryRow(ctx, `SELECT phone, address, social_links, updated_at FROM settings WHERE id = 1`).
		Scan(&s.Phone, &s.Address, &links, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Settings{}, nil
	}
	if err != nil {
		return Settings{}, err
	}
	if len(links) > 0 {
		if err := json.Unmarshal(links, &s.SocialLinks); err != nil {
			return Settings{}, fmt.Errorf("decode social links: %w", err)
		}
	}
	return s, nil
}

func (r *SettingsRepo) Update(ctx context.Context, s Settings) error {
	links, err := json.Marshal(s.SocialLinks)
	if err != nil {
		return fmt.Errorf("encode social links: %w", err)
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO settings (id, phone, address, social_links, updated_at)
		VALUES (1, $1, $2, $3, NOW())
		ON CONFLICT (id) DO UPDATE
		SET phone = EXCLUDED.phone,
		    address = EXCLUDED.address,
		    social_links = EXCLUDED.social_links,
		    updated_at = NOW()
	`, s.Phone, s.Address, links)
	return err
}
