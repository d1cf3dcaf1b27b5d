package content

import (
	"context"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Medal kinds for student awards.
const (
	MedalGold   = "gold"
	MedalSilver = "silver"
	MedalBronze = "bronze"
	MedalOther  = "other"
)

// Medals lists the accepted medal kinds in display order.
var Medals = []string{MedalGold, MedalSilver, MedalBronze, MedalOther}

// Student is a club member shown on the public rating board.
type Student struct {
	ID              int64     `db:"id"`
	DisplayName     string    `db:"display_name"`
	Belt            string    `db:"belt"`
	GroupName       string    `db:"group_name"`
	BioShort        string    `db:"bio_short"`
	RatingPoints    int       `db:"rating_points"`
	AttendedClasses int       `db:"attended_classes"`
	TotalClasses    int       `db:"total_classes"`
	PublicVisible   bool      `db:"public_visible"`
	PhotoURL        string    `db:"photo_url"`
	CreatedAt       time.Time `db:"created_at"`
	Awards          []Award   `db:"-"`
}

func (s *Student) Prepare() error {
	s.DisplayName = strings.TrimSpace(s.DisplayName)
	s.Belt = strings.TrimSpace(s.Belt)
	s.GroupName = strings.TrimSpace(s.GroupName)
	s.PhotoURL = strings.TrimSpace(s.PhotoURL)
	if s.DisplayName == "" {
		return invalid("name required")
	}
	if s.RatingPoints < 0 || s.AttendedClasses < 0 || s.TotalClasses < 0 {
		return invalid("counters must not be negative")
	}
	if s.AttendedClasses > s.TotalClasses {
		return invalid("attended classes exceed total")
	}
	return nil
}

// Attendance is the attended share of classes in percent, 0 when none were held.
func (s Student) Attendance() int {
	if s.TotalClasses <= 0 {
		return 0
	}
	return s.AttendedClasses * 100 / s.TotalClasses
}

// Award is a medal or distinction earned by a student.
type Award struct {
	ID        int64     `db:"id"`
	StudentID int64     `db:"student_id"`
	Medal     string    `db:"medal"`
	Title     string    `db:"title"`
	Place     *int      `db:"place"`
	CreatedAt time.Time `db:"created_at"`
}

func (a *Award) Prepare() error {
	a.Title = strings.TrimSpace(a.Title)
	if a.Title == "" {
		return invalid("award title required")
	}
	for _, m := range Medals {
		if a.Medal == m {
			if a.Place != nil && *a.Place < 1 {
				return invalid("place must be positive")
			}
			return nil
		}
	}
	return invalid("unknown medal " + a.Medal)
}

// AwardStore manages the awards attached to students.
type AwardStore interface {
	AddAward(ctx context.Context, a Award) (int64, error)
	DeleteAward(ctx context.Context, studentID, awardID int64) error
}

const studentColumns = `id, display_name, belt, group_name, bio_short, rating_points, attended_classes, total_classes, public_visible, photo_url, created_at`
const awardColumns = `id, student_id, medal, title, place, created_at`

type StudentRepo struct {
	pool *pgxpool.Pool
}

func NewStudentRepo(pool *pgxpool.Pool) *StudentRepo {
	return &StudentRepo{pool: pool}
}

func (r *StudentRepo) List(ctx context.Context) ([]Student, error) {
	return queryAll[Student](ctx, r.pool, `SELECT `+studentColumns+` FROM students ORDER BY rating_points DESC, display_name`)
}

// ListVisible returns the public rating board with each student's awards.
func (r *StudentRepo) ListVisible(ctx context.Context) ([]Student, error) {
	students, err := queryAll[Student](ctx, r.pool, `
		SELECT `+studentColumns+` FROM students
		WHERE public_visible
		ORDER BY rating_points DESC, display_name`)
	if err != nil || len(students) == 0 {
		return students, err
	}
	ids := make([]int64, len(students))
	for i, s := range students {
		ids[i] = s.ID
	}
	awards, err := queryAll[Award](ctx, r.pool, `
		SELECT `+awardColumns+` FROM student_awards
		WHERE student_id = ANY($1)
		ORDER BY created_at DESC, id DESC`, ids)
	if err != nil {
		return nil, err
	}
	byStudent := make(map[int64][]Award, len(students))
	for _, a := range awards {
		byStudent[a.StudentID] = append(byStudent[a.StudentID], a)
	}
	for i := range students {
		students[i].Awards = byStudent[students[i].ID]
	}
	return students, nil
}

// Get returns the student with awards, newest first.
func (r *StudentRepo) Get(ctx context.Context, id int64) (Student, error) {
	s, err := queryOne[Student](ctx, r.pool, `SELECT `+studentColumns+` FROM students WHERE id = $1`, id)
	if err != nil {
		return s, err
	}
	s.Awards, err = queryAll[Award](ctx, r.pool, `
		SELECT `+awardColumns+` FROM student_awards
		WHERE student_id = $1
		ORDER BY created_at DESC, id DESC`, id)
	return s, err
}

func (r *StudentRepo) Create(ctx context.Context, s Student) (int64, error) {
	return insertID(ctx, r.pool, `
		INSERT INTO students (display_name, belt, group_name, bio_short, rating_points,
		                      attended_classes, total_classes, public_visible, photo_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`,
		s.DisplayName, s.Belt, s.GroupName, s.BioShort, s.RatingPoints,
		s.AttendedClasses, s.TotalClasses, s.PublicVisible, s.PhotoURL)
}

func (r *StudentRepo) Update(ctx context.Context, s Student) error {
	return execOne(ctx, r.pool, `
		UPDATE students
		SET display_name = $2, belt = $3, group_name = $4, bio_short = $5, rating_points = $6,
		    attended_classes = $7, total_classes = $8, public_visible = $9, photo_url = $10,
		    updated_at = NOW()
		WHERE id = $1`,
		s.ID, s.DisplayName, s.Belt, s.GroupName, s.BioShort, s.RatingPoints,
		s.AttendedClasses, s.TotalClasses, s.PublicVisible, s.PhotoURL)
}

// Delete removes the student; awards go with it.
func (r *StudentRepo) Delete(ctx context.Context, id int64) error {
	return execOne(ctx, r.pool, `DELETE FROM students WHERE id = $1`, id)
}

func (r *StudentRepo) AddAward(ctx context.Context, a Award) (int64, error) {
	id, err := insertID(ctx, r.pool, `
		INSERT INTO student_awards (student_id, medal, title, place)
		VALUES ($1, $2, $3, $4)
		RETURNING id`,
		a.StudentID, a.Medal, a.Title, a.Place)
	if err != nil && isForeignKeyViolation(err) {
		return 0, ErrNotFound
	}
	return id, err
}

func (r *StudentRepo) DeleteAward(ctx context.Context, studentID, awardID int64) error {
	return execOne(ctx, r.pool, `DELETE FROM student_awards WHERE id = $1 AND student_id = $2`, awardID, studentID)
}
