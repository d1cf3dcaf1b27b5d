package content

import (
	"context"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ScheduleGroup is one training slot within a schedule card.
type ScheduleGroup struct {
	Name string `json:"name"`
	Time string `json:"time"`
}

// Schedule is a card on the public timetable, e.g. one hall or age bracket.
type Schedule struct {
	ID           int64           `db:"id"`
	Title        string          `db:"title"`
	Subtitle     string          `db:"subtitle"`
	Days         string          `db:"days"`
	Groups       []ScheduleGroup `db:"class_groups"`
	DisplayOrder int             `db:"display_order"`
	Active       bool            `db:"is_active"`
	CreatedAt    time.Time       `db:"created_at"`
}

func (s *Schedule) Prepare() error {
	s.Title = strings.TrimSpace(s.Title)
	s.Subtitle = strings.TrimSpace(s.Subtitle)
	s.Days = strings.TrimSpace(s.Days)
	if s.Title == "" {
		return invalid("title required")
	}
	if len(s.Groups) == 0 {
		return invalid("at least one group required")
	}
	return nil
}

// ParseGroups reads one "name | time" pair per line. Blank lines are skipped;
// a line without a separator is a group name with no time.
func ParseGroups(text string) []ScheduleGroup {
	var groups []ScheduleGroup
	for _, line := range strings.Split(text, "\n") {
		name, tm, _ := strings.Cut(line, "|")
		name, tm = strings.TrimSpace(name), strings.TrimSpace(tm)
		if name == "" && tm == "" {
			continue
		}
		groups = append(groups, ScheduleGroup{Name: name, Time: tm})
	}
	return groups
}

// FormatGroups is the inverse of ParseGroups.
func FormatGroups(groups []ScheduleGroup) string {
	lines := make([]string, 0, len(groups))
	for _, g := range groups {
		lines = append(lines, g.Name+" | "+g.Time)
	}
	return strings.Join(lines, "\n")
}

const scheduleColumns = `id, title, subtitle, days, class_groups, display_order, is_active, created_at`

type ScheduleRepo struct {
	pool *pgxpool.Pool
}

func NewScheduleRepo(pool *pgxpool.Pool) *ScheduleRepo {
	return &ScheduleRepo{pool: pool}
}

func (r *ScheduleRepo) List(ctx context.Context) ([]Schedule, error) {
	return queryAll[Schedule](ctx, r.pool, `SELECT `+scheduleColumns+` FROM schedules ORDER BY display_order, id`)
}

func (r *ScheduleRepo) ListActive(ctx context.Context) ([]Schedule, error) {
	return queryAll[Schedule](ctx, r.pool, `SELECT `+scheduleColumns+` FROM schedules WHERE is_active ORDER BY display_order, id`)
}

func (r *ScheduleRepo) Get(ctx context.Context, id int64) (Schedule, error) {
	return queryOne[Schedule](ctx, r.pool, `SELECT `+scheduleColumns+` FROM schedules WHERE id = $1`, id)
}

func (r *ScheduleRepo) Create(ctx context.Context, s Schedule) (int64, error) {
	return insertID(ctx, r.pool, `
		INSERT INTO schedules (title, subtitle, days, class_groups, display_order, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		s.Title, s.Subtitle, s.Days, s.Groups, s.DisplayOrder, s.Active)
}

func (r *ScheduleRepo) Update(ctx context.Context, s Schedule) error {
	return execOne(ctx, r.pool, `
		UPDATE schedules
		SET title = $2, subtitle = $3, days = $4, class_groups = $5, display_order = $6,
		    is_active = $7, updated_at = NOW()
		WHERE id = $1`,
		s.ID, s.Title, s.Subtitle, s.Days, s.Groups, s.DisplayOrder, s.Active)
}

func (r *ScheduleRepo) Delete(ctx context.Context, id int64) error {
	return execOne(ctx, r.pool, `DELETE FROM schedules WHERE id = $1`, id)
}
