package pgrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/learnhub/core/progress"
)

const uniqueViolation = "23505"

type progressRepository struct {
	db *sqlx.DB
}

var _ progress.Repository = (*progressRepository)(nil) // interface compliance check

func NewProgressRepository(db *sqlx.DB) *progressRepository {
	return &progressRepository{db: db}
}

func (repo progressRepository) CreateCompletion(ctx context.Context, comp progress.Completion) error {
	query := `
		INSERT INTO completion (user_id, lesson_id, created_at)
		VALUES (:user_id, :lesson_id, :created_at)`
	if _, err := repo.db.NamedExecContext(ctx, query, comp); err != nil {
		if pqErr, ok := errors.Cause(err).(*pq.Error); ok && string(pqErr.Code) == uniqueViolation {
			return progress.ErrAlreadyCompleted
		}
		return errors.Wrap(err, "inserting completion")
	}
	return nil
}

func (repo progressRepository) QueryUserCompletions(ctx context.Context, userID, subjectID string) ([]progress.Completion, error) {
	comps := make([]progress.Completion, 0)
	query := `
		SELECT c.user_id, c.lesson_id, c.created_at
		FROM completion c
		JOIN lesson l ON l.id = c.lesson_id
		WHERE c.user_id = $1 AND l.subject_id = $2`
	if err := repo.db.SelectContext(ctx, &comps, query, userID, subjectID); err != nil {
		return nil, errors.Wrap(err, "querying completions")
	}
	return comps, nil
}
