package dummydb

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/trezcool/learnhub/core/catalog"
)

type catalogRepository struct {
	subjects *subjectTable
	lessons  *lessonTable
}

var _ catalog.Repository = (*catalogRepository)(nil) // interface compliance check

func NewCatalogRepository(db *DB) *catalogRepository {
	return &catalogRepository{subjects: db.subject, lessons: db.lesson}
}

func (repo *catalogRepository) CreateSubject(_ context.Context, sub catalog.Subject) (catalog.Subject, error) {
	repo.subjects.Lock()
	defer repo.subjects.Unlock()

	sub.ID = uuid.New().String()
	repo.subjects.table[sub.ID] = &sub
	return sub, nil
}

func (repo *catalogRepository) QuerySubjects(_ context.Context, filter *catalog.QueryFilter) ([]catalog.Subject, error) {
	repo.subjects.RLock()
	defer repo.subjects.RUnlock()

	subjects := make([]catalog.Subject, 0, len(repo.subjects.table))
	for _, sub := range repo.subjects.table {
		if filter != nil {
			if filter.TargetGrade != "" && sub.TargetGrade != filter.TargetGrade {
				continue
			}
			if filter.Search != "" {
				search := strings.ToLower(filter.Search)
				if !strings.Contains(strings.ToLower(sub.Title), search) &&
					!strings.Contains(strings.ToLower(sub.Description), search) {
					continue
				}
			}
		}
		subjects = append(subjects, *sub)
	}

	sort.Slice(subjects, func(i, j int) bool { return subjects[i].Title < subjects[j].Title })
	return subjects, nil
}

func (repo *catalogRepository) GetSubjectByID(_ context.Context, id string) (catalog.Subject, error) {
	repo.subjects.RLock()
	defer repo.subjects.RUnlock()

	if sub, ok := repo.subjects.table[id]; ok {
		return *sub, nil
	}
	return catalog.Subject{}, catalog.ErrSubjectNotFound
}

func (repo *catalogRepository) DeleteSubjectByID(_ context.Context, id string) error {
	repo.subjects.Lock()
	defer repo.subjects.Unlock()

	if _, ok := repo.subjects.table[id]; !ok {
		return catalog.ErrSubjectNotFound
	}
	delete(repo.subjects.table, id)

	// cascade to lessons
	repo.lessons.Lock()
	defer repo.lessons.Unlock()
	for lid, les := range repo.lessons.table {
		if les.SubjectID == id {
			delete(repo.lessons.table, lid)
		}
	}
	return nil
}

func (repo *catalogRepository) CreateLesson(_ context.Context, les catalog.Lesson) (catalog.Lesson, error) {
	repo.lessons.Lock()
	defer repo.lessons.Unlock()

	les.ID = uuid.New().String()
	repo.lessons.table[les.ID] = &les
	return les, nil
}

func (repo *catalogRepository) QueryLessonsBySubjectID(_ context.Context, subjectID string) ([]catalog.Lesson, error) {
	repo.lessons.RLock()
	defer repo.lessons.RUnlock()

	lessons := make([]catalog.Lesson, 0)
	for _, les := range repo.lessons.table {
		if les.SubjectID == subjectID {
			lessons = append(lessons, *les)
		}
	}

	sort.Slice(lessons, func(i, j int) bool { return lessons[i].CreatedAt.Before(lessons[j].CreatedAt) })
	return lessons, nil
}

func (repo *catalogRepository) GetLessonByID(_ context.Context, id string) (catalog.Lesson, error) {
	repo.lessons.RLock()
	defer repo.lessons.RUnlock()

	les, ok := repo.lessons.table[id]
	if !ok {
		return catalog.Lesson{}, catalog.ErrLessonNotFound
	}

	found := *les
	repo.subjects.RLock()
	defer repo.subjects.RUnlock()
	if sub, ok := repo.subjects.table[les.SubjectID]; ok {
		found.SubjectTitle = sub.Title
	}
	return found, nil
}

func (repo *catalogRepository) CountLessonsBySubjectID(_ context.Context, subjectID string) (int, error) {
	repo.lessons.RLock()
	defer repo.lessons.RUnlock()

	var count int
	for _, les := range repo.lessons.table {
		if les.SubjectID == subjectID {
			count++
		}
	}
	return count, nil
}
