package progress

import (
	"context"
	"math"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/learnhub/core/catalog"
)

var (
	// ErrAlreadyCompleted maps the store's uniqueness violation on
	// (user, lesson); callers treat it as a benign success.
	ErrAlreadyCompleted = errors.New("lesson already completed")
)

const errProgressUnavailable = "progress unavailable"

type (
	Repository interface {
		// CreateCompletion returns ErrAlreadyCompleted when a record
		// for the same (user, lesson) pair already exists.
		CreateCompletion(ctx context.Context, comp Completion) error
		// QueryUserCompletions returns the user's completions restricted to the
		// given subject's lessons (via the lesson -> subject relationship).
		QueryUserCompletions(ctx context.Context, userID, subjectID string) ([]Completion, error)
	}

	// LessonCounter is the slice of the catalog needed to size a subject.
	LessonCounter interface {
		CountLessonsBySubjectID(ctx context.Context, subjectID string) (int, error)
	}

	Service struct {
		repo    Repository
		lessons LessonCounter
	}
)

func NewService(repo Repository, lessons LessonCounter) *Service {
	return &Service{
		repo:    repo,
		lessons: lessons,
	}
}

// Aggregate annotates each subject with the user's completion count and
// percentage. Results preserve the input order. Each subject is computed
// independently: a failed lookup marks that subject only, never the whole
// batch. No caching; every call re-reads the store.
func (svc *Service) Aggregate(ctx context.Context, userID string, subjects []catalog.Subject) []SubjectProgress {
	results := make([]SubjectProgress, 0, len(subjects))
	for _, sub := range subjects {
		results = append(results, svc.aggregateOne(ctx, userID, sub))
	}
	return results
}

func (svc *Service) aggregateOne(ctx context.Context, userID string, sub catalog.Subject) SubjectProgress {
	prog := SubjectProgress{Subject: sub}

	total, err := svc.lessons.CountLessonsBySubjectID(ctx, sub.ID)
	if err != nil {
		prog.Error = errProgressUnavailable
		return prog
	}
	prog.TotalLessons = total
	if total == 0 {
		return prog
	}

	comps, err := svc.repo.QueryUserCompletions(ctx, userID, sub.ID)
	if err != nil {
		prog.Error = errProgressUnavailable
		return prog
	}
	prog.CompletedCount = len(comps)
	prog.Percentage = percentage(prog.CompletedCount, total)
	return prog
}

// percentage rounds half-up to the nearest integer percent.
func percentage(completed, total int) int {
	return int(math.Round(float64(completed) / float64(total) * 100))
}

// MarkComplete records that the user finished the lesson. It is idempotent:
// a duplicate mark resolves as success and leaves the existing record
// untouched. Any other store error is returned so the caller can retry.
func (svc *Service) MarkComplete(ctx context.Context, userID, lessonID string) error {
	comp := Completion{
		UserID:    userID,
		LessonID:  lessonID,
		CreatedAt: time.Now().UTC(),
	}
	if err := svc.repo.CreateCompletion(ctx, comp); err != nil {
		if errors.Cause(err) == ErrAlreadyCompleted {
			return nil
		}
		return errors.Wrap(err, "creating completion")
	}
	return nil
}
