package dummydb

import (
	"sync"

	"github.com/trezcool/learnhub/core/catalog"
	"github.com/trezcool/learnhub/core/progress"
	"github.com/trezcool/learnhub/core/user"
)

type (
	DB struct {
		user       *userTable
		subject    *subjectTable
		lesson     *lessonTable
		completion *completionTable
	}

	userTable struct {
		sync.RWMutex
		table map[string]*user.User
	}

	subjectTable struct {
		sync.RWMutex
		table map[string]*catalog.Subject
	}

	lessonTable struct {
		sync.RWMutex
		table map[string]*catalog.Lesson
	}

	// completionTable is keyed by (userID, lessonID) to mimic the
	// store's uniqueness constraint.
	completionTable struct {
		sync.RWMutex
		table map[[2]string]*progress.Completion
	}
)

func Open() (*DB, error) {
	db := &DB{
		user:       &userTable{table: make(map[string]*user.User)},
		subject:    &subjectTable{table: make(map[string]*catalog.Subject)},
		lesson:     &lessonTable{table: make(map[string]*catalog.Lesson)},
		completion: &completionTable{table: make(map[[2]string]*progress.Completion)},
	}
	return db, nil
}
