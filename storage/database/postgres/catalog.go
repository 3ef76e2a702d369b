package pgrepos

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/learnhub/core"
	"github.com/trezcool/learnhub/core/catalog"
)

type catalogRepository struct {
	db *sqlx.DB
}

var _ catalog.Repository = (*catalogRepository)(nil) // interface compliance check

func NewCatalogRepository(db *sqlx.DB) *catalogRepository {
	return &catalogRepository{db: db}
}

func (repo catalogRepository) CreateSubject(ctx context.Context, sub catalog.Subject) (catalog.Subject, error) {
	sub.ID = uuid.New().String()
	query := `
		INSERT INTO subject (id, title, description, target_grade, subject_type, content_url, created_at)
		VALUES (:id, :title, :description, :target_grade, :subject_type, :content_url, :created_at)`
	if _, err := repo.db.NamedExecContext(ctx, query, sub); err != nil {
		return catalog.Subject{}, errors.Wrap(err, "inserting subject")
	}
	return sub, nil
}

func (repo catalogRepository) QuerySubjects(ctx context.Context, filter *catalog.QueryFilter) ([]catalog.Subject, error) {
	var conds []string
	var args []interface{}

	if filter != nil {
		if filter.Search != "" {
			args = append(args, "%"+filter.Search+"%")
			n := len(args)
			conds = append(conds, fmt.Sprintf("(title ILIKE $%d OR description ILIKE $%d)", n, n))
		}
		if filter.TargetGrade != "" {
			args = append(args, filter.TargetGrade)
			conds = append(conds, fmt.Sprintf("target_grade = $%d", len(args)))
		}
	}

	query := `SELECT * FROM subject`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY " + core.DBOrdering{Field: "title", Ascending: true}.String()

	subjects := make([]catalog.Subject, 0)
	if err := repo.db.SelectContext(ctx, &subjects, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying subjects")
	}
	return subjects, nil
}

func (repo catalogRepository) GetSubjectByID(ctx context.Context, id string) (catalog.Subject, error) {
	if _, err := uuid.Parse(id); err != nil {
		return catalog.Subject{}, catalog.ErrSubjectNotFound
	}
	var sub catalog.Subject
	if err := repo.db.GetContext(ctx, &sub, `SELECT * FROM subject WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return catalog.Subject{}, catalog.ErrSubjectNotFound
		}
		return catalog.Subject{}, errors.Wrap(err, "finding subject by ID")
	}
	return sub, nil
}

// DeleteSubjectByID removes the subject; lessons and completions cascade
// at the store level.
func (repo catalogRepository) DeleteSubjectByID(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return catalog.ErrSubjectNotFound
	}
	res, err := repo.db.ExecContext(ctx, `DELETE FROM subject WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting subject")
	}
	if cnt, err := res.RowsAffected(); err == nil && cnt == 0 {
		return catalog.ErrSubjectNotFound
	}
	return nil
}

func (repo catalogRepository) CreateLesson(ctx context.Context, les catalog.Lesson) (catalog.Lesson, error) {
	les.ID = uuid.New().String()
	query := `
		INSERT INTO lesson (id, subject_id, title, content, created_at)
		VALUES (:id, :subject_id, :title, :content, :created_at)`
	if _, err := repo.db.NamedExecContext(ctx, query, les); err != nil {
		return catalog.Lesson{}, errors.Wrap(err, "inserting lesson")
	}
	return les, nil
}

func (repo catalogRepository) QueryLessonsBySubjectID(ctx context.Context, subjectID string) ([]catalog.Lesson, error) {
	lessons := make([]catalog.Lesson, 0)
	query := `SELECT * FROM lesson WHERE subject_id = $1 ORDER BY ` + core.DBOrdering{Field: "created_at", Ascending: true}.String()
	if err := repo.db.SelectContext(ctx, &lessons, query, subjectID); err != nil {
		return nil, errors.Wrap(err, "querying lessons")
	}
	return lessons, nil
}

func (repo catalogRepository) GetLessonByID(ctx context.Context, id string) (catalog.Lesson, error) {
	if _, err := uuid.Parse(id); err != nil {
		return catalog.Lesson{}, catalog.ErrLessonNotFound
	}
	var les catalog.Lesson
	query := `
		SELECT l.*, s.title AS subject_title
		FROM lesson l
		JOIN subject s ON s.id = l.subject_id
		WHERE l.id = $1`
	if err := repo.db.GetContext(ctx, &les, query, id); err != nil {
		if err == sql.ErrNoRows {
			return catalog.Lesson{}, catalog.ErrLessonNotFound
		}
		return catalog.Lesson{}, errors.Wrap(err, "finding lesson by ID")
	}
	return les, nil
}

func (repo catalogRepository) CountLessonsBySubjectID(ctx context.Context, subjectID string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM lesson WHERE subject_id = $1`
	if err := repo.db.GetContext(ctx, &count, query, subjectID); err != nil {
		return 0, errors.Wrap(err, "counting lessons")
	}
	return count, nil
}
