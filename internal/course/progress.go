package course

import (
	"context"
	"database/sql"
	"time"
)

// Progress is a learner's reading progress through one course.
type Progress struct {
	CourseName   string    `json:"course_name"`
	Progress     int       `json:"progress"`
	Completed    bool      `json:"completed"`
	LastAccessed time.Time `json:"last_accessed"`
}

type ProgressStore struct {
	db  *sql.DB
	now func() time.Time
}

func NewProgressStore(db *sql.DB) *ProgressStore {
	return &ProgressStore{db: db, now: time.Now}
}

// Clamp limits a percentage to 0..100.
func Clamp(p int) int {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

// Upsert sets the user's progress for courseName. Completed follows the
// stored percentage.
func (s *ProgressStore) Upsert(ctx context.Context, userID, courseName string, progress int) (Progress, error) {
	p := Progress{
		CourseName:   courseName,
		Progress:     Clamp(progress),
		LastAccessed: s.now().UTC().Truncate(time.Second),
	}
	p.Completed = p.Progress >= 100
	_, err := s.db.ExecContext(ctx, `INSERT INTO course_progress
		(user_id,course_name,progress,completed,last_accessed) VALUES ($1,$2,$3,$4,$5)
		ON CONFLICT (user_id,course_name) DO UPDATE SET progress=EXCLUDED.progress,
		completed=EXCLUDED.completed, last_accessed=EXCLUDED.last_accessed`,
		userID, courseName, p.Progress, p.Completed, p.LastAccessed.Unix())
	if err != nil {
		return Progress{}, err
	}
	return p, nil
}

// List returns every course the user has progress for, by course name.
func (s *ProgressStore) List(ctx context.Context, userID string) ([]Progress, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT course_name,progress,completed,last_accessed
		FROM course_progress WHERE user_id=$1 ORDER BY course_name`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]Progress, 0)
	for rows.Next() {
		var (
			p  Progress
			at int64
		)
		if err := rows.Scan(&p.CourseName, &p.Progress, &p.Completed, &at); err != nil {
			return nil, err
		}
		p.LastAccessed = time.Unix(at, 0).UTC()
		out = append(out, p)
	}
	return out, rows.Err()
}

// Map flattens progress to course name -> percent.
func Map(ps []Progress) map[string]int {
	m := make(map[string]int, len(ps))
	for _, p := range ps {
		m[p.CourseName] = p.Progress
	}
	return m
}
