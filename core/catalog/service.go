package catalog

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/learnhub/core/user"
)

var (
	ErrSubjectNotFound  = errors.New("subject not found")
	ErrLessonNotFound   = errors.New("lesson not found")
	ErrPermissionDenied = errors.New("permission denied")
)

type (
	Repository interface {
		CreateSubject(ctx context.Context, sub Subject) (Subject, error)
		// QuerySubjects applies AND operation on available QueryFilter fields.
		// QueryFilter.Search does a case-insensitive match on Subject.Title or Subject.Description.
		// Results are ordered by title ascending.
		QuerySubjects(ctx context.Context, filter *QueryFilter) ([]Subject, error)
		GetSubjectByID(ctx context.Context, id string) (Subject, error)
		DeleteSubjectByID(ctx context.Context, id string) error
		CreateLesson(ctx context.Context, les Lesson) (Lesson, error)
		// QueryLessonsBySubjectID returns the subject's lessons ordered by creation time ascending.
		QueryLessonsBySubjectID(ctx context.Context, subjectID string) ([]Lesson, error)
		// GetLessonByID returns the lesson joined with its owning subject's title.
		GetLessonByID(ctx context.Context, id string) (Lesson, error)
		CountLessonsBySubjectID(ctx context.Context, subjectID string) (int, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// CreateSubject creates a new Subject on behalf of an admin actor.
// The role check happens before any store access: a non-admin call
// is rejected without a round trip.
func (svc *Service) CreateSubject(ctx context.Context, actor user.User, ns NewSubject) (Subject, error) {
	if !actor.IsAdmin() {
		return Subject{}, ErrPermissionDenied
	}
	sub := Subject{
		Title:       ns.Title,
		Description: ns.Description,
		TargetGrade: ns.TargetGrade,
		SubjectType: ns.SubjectType,
		ContentURL:  ns.ContentURL,
		CreatedAt:   time.Now().UTC(),
	}
	return svc.repo.CreateSubject(ctx, sub)
}

// DeleteSubject removes a Subject; dependent lessons and completions
// are cascaded by the store.
func (svc *Service) DeleteSubject(ctx context.Context, actor user.User, id string) error {
	if !actor.IsAdmin() {
		return ErrPermissionDenied
	}
	return svc.repo.DeleteSubjectByID(ctx, id)
}

// CreateLesson creates a new Lesson under an existing Subject on behalf of an admin actor.
func (svc *Service) CreateLesson(ctx context.Context, actor user.User, subjectID string, nl NewLesson) (Lesson, error) {
	if !actor.IsAdmin() {
		return Lesson{}, ErrPermissionDenied
	}
	sub, err := svc.repo.GetSubjectByID(ctx, subjectID)
	if err != nil {
		return Lesson{}, errors.Wrap(err, "finding owning subject")
	}
	les := Lesson{
		SubjectID: sub.ID,
		Title:     nl.Title,
		Content:   nl.Content,
		CreatedAt: time.Now().UTC(),
	}
	return svc.repo.CreateLesson(ctx, les)
}

// QuerySubjects lists subjects visible to the actor: students only see
// subjects targeting their own grade, admins see everything.
func (svc *Service) QuerySubjects(ctx context.Context, actor user.User, filter *QueryFilter) ([]Subject, error) {
	if filter == nil {
		filter = new(QueryFilter)
	}
	filter.Clean()
	if actor.IsStudent() {
		filter.TargetGrade = actor.Grade
	}
	return svc.repo.QuerySubjects(ctx, filter)
}

func (svc *Service) GetSubject(ctx context.Context, id string) (Subject, error) {
	return svc.repo.GetSubjectByID(ctx, id)
}

func (svc *Service) QueryLessons(ctx context.Context, subjectID string) ([]Lesson, error) {
	return svc.repo.QueryLessonsBySubjectID(ctx, subjectID)
}

func (svc *Service) GetLesson(ctx context.Context, id string) (Lesson, error) {
	return svc.repo.GetLessonByID(ctx, id)
}
