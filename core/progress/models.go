package progress

import (
	"time"

	"github.com/trezcool/learnhub/core/catalog"
)

// Completion is proof that a user finished a lesson.
// At most one record exists per (user, lesson) pair; the store's
// uniqueness constraint enforces it. Records are never updated or
// deleted by the application.
type Completion struct {
	UserID    string    `json:"user_id" db:"user_id"`
	LessonID  string    `json:"lesson_id" db:"lesson_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"` // UTC
}

// SubjectProgress is a Subject annotated with a user's completion stats.
// Error carries a per-subject failure marker: when a lookup for one
// subject fails, that subject reports the failure instead of a bogus 0%
// and the other subjects are unaffected.
type SubjectProgress struct {
	catalog.Subject
	TotalLessons   int    `json:"total_lessons"`
	CompletedCount int    `json:"completed_count"`
	Percentage     int    `json:"percentage"`
	Error          string `json:"error,omitempty"`
}
