package progress_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/learnhub/core/catalog"
	"github.com/trezcool/learnhub/core/progress"
	dummydb "github.com/trezcool/learnhub/storage/database/dummy"
	testutil "github.com/trezcool/learnhub/tests"
)

func setup(t *testing.T) (*progress.Service, catalog.Repository, progress.Repository) {
	db, err := dummydb.Open()
	require.NoError(t, err)

	catRepo := dummydb.NewCatalogRepository(db)
	progRepo := dummydb.NewProgressRepository(db)
	return progress.NewService(progRepo, catRepo), catRepo, progRepo
}

func Test_Service_Aggregate(t *testing.T) {
	svc, catRepo, progRepo := setup(t)
	ctx := context.Background()
	userID := "usr1"

	empty := testutil.CreateSubject(t, catRepo, "Art", "Grade 10")

	math := testutil.CreateSubject(t, catRepo, "Mathematics", "Grade 10")
	mathLessons := make([]catalog.Lesson, 0, 4)
	for _, title := range []string{"Algebra", "Geometry", "Calculus", "Statistics"} {
		mathLessons = append(mathLessons, testutil.CreateLesson(t, catRepo, math.ID, title))
	}
	for _, les := range mathLessons[:3] {
		testutil.CompleteLesson(t, progRepo, userID, les.ID)
	}

	untouched := testutil.CreateSubject(t, catRepo, "Biology", "Grade 10")
	testutil.CreateLesson(t, catRepo, untouched.ID, "Cells")

	results := svc.Aggregate(ctx, userID, []catalog.Subject{math, empty, untouched})
	require.Len(t, results, 3)

	// input order is preserved
	assert.Equal(t, math.ID, results[0].ID)
	assert.Equal(t, empty.ID, results[1].ID)
	assert.Equal(t, untouched.ID, results[2].ID)

	assert.Equal(t, 4, results[0].TotalLessons)
	assert.Equal(t, 3, results[0].CompletedCount)
	assert.Equal(t, 75, results[0].Percentage)
	assert.Empty(t, results[0].Error)

	// a subject without lessons reports zero progress, not an error
	assert.Equal(t, 0, results[1].TotalLessons)
	assert.Equal(t, 0, results[1].CompletedCount)
	assert.Equal(t, 0, results[1].Percentage)
	assert.Empty(t, results[1].Error)

	assert.Equal(t, 1, results[2].TotalLessons)
	assert.Equal(t, 0, results[2].CompletedCount)
	assert.Equal(t, 0, results[2].Percentage)
}

func Test_Service_Aggregate_rounding(t *testing.T) {
	svc, catRepo, progRepo := setup(t)
	ctx := context.Background()
	userID := "usr1"

	tests := []struct {
		name      string
		total     int
		completed int
		want      int
	}{
		{name: "1 of 8 rounds half up", total: 8, completed: 1, want: 13},
		{name: "2 of 3 rounds up", total: 3, completed: 2, want: 67},
		{name: "1 of 3 rounds down", total: 3, completed: 1, want: 33},
		{name: "all complete", total: 5, completed: 5, want: 100},
		{name: "none complete", total: 5, completed: 0, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub := testutil.CreateSubject(t, catRepo, tt.name, "Grade 11")
			for i := 0; i < tt.total; i++ {
				les := testutil.CreateLesson(t, catRepo, sub.ID, tt.name)
				if i < tt.completed {
					testutil.CompleteLesson(t, progRepo, userID, les.ID)
				}
			}

			results := svc.Aggregate(ctx, userID, []catalog.Subject{sub})
			require.Len(t, results, 1)
			assert.Equal(t, tt.want, results[0].Percentage)
			assert.GreaterOrEqual(t, results[0].Percentage, 0)
			assert.LessOrEqual(t, results[0].Percentage, 100)
		})
	}
}

// flakyCounter fails lesson counts for a single subject.
type flakyCounter struct {
	real   progress.LessonCounter
	failID string
}

func (c flakyCounter) CountLessonsBySubjectID(ctx context.Context, subjectID string) (int, error) {
	if subjectID == c.failID {
		return 0, errors.New("store unavailable")
	}
	return c.real.CountLessonsBySubjectID(ctx, subjectID)
}

func Test_Service_Aggregate_isolatesFailures(t *testing.T) {
	_, catRepo, progRepo := setup(t)
	ctx := context.Background()
	userID := "usr1"

	ok := testutil.CreateSubject(t, catRepo, "History", "Grade 12")
	les := testutil.CreateLesson(t, catRepo, ok.ID, "WW2")
	testutil.CompleteLesson(t, progRepo, userID, les.ID)

	broken := testutil.CreateSubject(t, catRepo, "Physics", "Grade 12")
	testutil.CreateLesson(t, catRepo, broken.ID, "Motion")

	svc := progress.NewService(progRepo, flakyCounter{real: catRepo, failID: broken.ID})

	results := svc.Aggregate(ctx, userID, []catalog.Subject{ok, broken})
	require.Len(t, results, 2)

	// the healthy subject is unaffected by its neighbor's failure
	assert.Empty(t, results[0].Error)
	assert.Equal(t, 100, results[0].Percentage)

	assert.Equal(t, "progress unavailable", results[1].Error)
	assert.Equal(t, 0, results[1].TotalLessons)
	assert.Equal(t, 0, results[1].Percentage)
}

// failingCompletions errors on reads but records writes normally.
type failingCompletions struct {
	progress.Repository
}

func (failingCompletions) QueryUserCompletions(context.Context, string, string) ([]progress.Completion, error) {
	return nil, errors.New("store unavailable")
}

func Test_Service_Aggregate_completionLookupFails(t *testing.T) {
	_, catRepo, progRepo := setup(t)
	ctx := context.Background()

	sub := testutil.CreateSubject(t, catRepo, "Chemistry", "Grade 10")
	testutil.CreateLesson(t, catRepo, sub.ID, "Atoms")

	svc := progress.NewService(failingCompletions{Repository: progRepo}, catRepo)

	results := svc.Aggregate(ctx, "usr1", []catalog.Subject{sub})
	require.Len(t, results, 1)
	assert.Equal(t, "progress unavailable", results[0].Error)
	assert.Equal(t, 1, results[0].TotalLessons)
	assert.Equal(t, 0, results[0].CompletedCount)
}

func Test_Service_MarkComplete_idempotent(t *testing.T) {
	svc, catRepo, progRepo := setup(t)
	ctx := context.Background()
	userID := "usr1"

	sub := testutil.CreateSubject(t, catRepo, "Geography", "Grade 10")
	les := testutil.CreateLesson(t, catRepo, sub.ID, "Maps")

	require.NoError(t, svc.MarkComplete(ctx, userID, les.ID))

	// a duplicate mark resolves as success and leaves a single record
	require.NoError(t, svc.MarkComplete(ctx, userID, les.ID))

	comps, err := progRepo.QueryUserCompletions(ctx, userID, sub.ID)
	require.NoError(t, err)
	assert.Len(t, comps, 1)

	results := svc.Aggregate(ctx, userID, []catalog.Subject{sub})
	require.Len(t, results, 1)
	assert.Equal(t, 1, results[0].CompletedCount)
	assert.Equal(t, 100, results[0].Percentage)
}
