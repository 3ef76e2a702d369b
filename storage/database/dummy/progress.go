package dummydb

import (
	"context"

	"github.com/trezcool/learnhub/core/progress"
)

type progressRepository struct {
	completions *completionTable
	lessons     *lessonTable
}

var _ progress.Repository = (*progressRepository)(nil) // interface compliance check

func NewProgressRepository(db *DB) *progressRepository {
	return &progressRepository{completions: db.completion, lessons: db.lesson}
}

func (repo *progressRepository) CreateCompletion(_ context.Context, comp progress.Completion) error {
	repo.completions.Lock()
	defer repo.completions.Unlock()

	key := [2]string{comp.UserID, comp.LessonID}
	if _, ok := repo.completions.table[key]; ok {
		return progress.ErrAlreadyCompleted
	}
	repo.completions.table[key] = &comp
	return nil
}

func (repo *progressRepository) QueryUserCompletions(_ context.Context, userID, subjectID string) ([]progress.Completion, error) {
	repo.completions.RLock()
	defer repo.completions.RUnlock()
	repo.lessons.RLock()
	defer repo.lessons.RUnlock()

	comps := make([]progress.Completion, 0)
	for _, comp := range repo.completions.table {
		if comp.UserID != userID {
			continue
		}
		if les, ok := repo.lessons.table[comp.LessonID]; ok && les.SubjectID == subjectID {
			comps = append(comps, *comp)
		}
	}
	return comps, nil
}
