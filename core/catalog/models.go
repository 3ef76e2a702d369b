package catalog

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/learnhub/core"
)

// Subject content types
const (
	TypeLesson = "lesson"
	TypeVideo  = "video"
	TypeLive   = "live"
)

var SubjectTypes = []string{TypeLesson, TypeVideo, TypeLive}

// Subject is a top-level content grouping targeted at a grade.
// Its lifecycle is independent from its lessons; deleting a subject
// cascades to them at the store level.
type Subject struct {
	ID          string    `json:"id" db:"id"`
	Title       string    `json:"title" db:"title"`
	Description string    `json:"description" db:"description"`
	TargetGrade string    `json:"target_grade" db:"target_grade"`
	SubjectType string    `json:"subject_type" db:"subject_type"`
	ContentURL  string    `json:"content_url" db:"content_url"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"` // UTC
}

// Lesson belongs to exactly one Subject.
// SubjectTitle is only populated on joined reads.
type Lesson struct {
	ID           string    `json:"id" db:"id"`
	SubjectID    string    `json:"subject_id" db:"subject_id"`
	Title        string    `json:"title" db:"title"`
	Content      string    `json:"content" db:"content"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"` // UTC
	SubjectTitle string    `json:"subject_title,omitempty" db:"subject_title"`
}

// NewSubject contains information needed to create a new Subject.
type NewSubject struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	TargetGrade string `json:"target_grade" validate:"required"`
	SubjectType string `json:"subject_type" validate:"omitempty,subjecttype"`
	ContentURL  string `json:"content_url" validate:"omitempty,url"`
}

func (ns *NewSubject) Validate(validate *validator.Validate) error {
	ns.Title = core.CleanString(ns.Title)
	ns.Description = core.CleanString(ns.Description)
	ns.TargetGrade = core.CleanString(ns.TargetGrade)
	ns.SubjectType = core.CleanString(ns.SubjectType, true /* lower */)
	ns.ContentURL = core.CleanString(ns.ContentURL)
	if ns.SubjectType == "" {
		ns.SubjectType = TypeLesson
	}
	return validate.Struct(ns)
}

// NewLesson contains information needed to create a new Lesson.
type NewLesson struct {
	Title   string `json:"title" validate:"required"`
	Content string `json:"content" validate:"required"`
}

func (nl *NewLesson) Validate(validate *validator.Validate) error {
	nl.Title = core.CleanString(nl.Title)
	nl.Content = core.CleanString(nl.Content)
	return validate.Struct(nl)
}

type QueryFilter struct {
	Search      string `query:"search"`
	TargetGrade string `query:"target_grade"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == "" && qf.TargetGrade == ""
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.TargetGrade = core.CleanString(qf.TargetGrade)
}
