package catalog_test

import (
	"context"
	"testing"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/learnhub/core"
	"github.com/trezcool/learnhub/core/catalog"
	"github.com/trezcool/learnhub/core/user"
	dummydb "github.com/trezcool/learnhub/storage/database/dummy"
	testutil "github.com/trezcool/learnhub/tests"
)

var (
	admin   = user.User{ID: "adm1", FullName: "Admin", Role: user.RoleAdmin}
	student = user.User{ID: "std1", FullName: "Student", Role: user.RoleStudent, Grade: "Grade 10"}
)

func setup(t *testing.T) (*catalog.Service, catalog.Repository) {
	db, err := dummydb.Open()
	require.NoError(t, err)

	repo := dummydb.NewCatalogRepository(db)
	return catalog.NewService(repo), repo
}

// deniedRepo fails the test on any store access; used to prove that
// permission checks short-circuit before the repository is touched.
type deniedRepo struct {
	t *testing.T
}

func (r deniedRepo) fail() {
	r.t.Error("repository accessed before permission check")
}

func (r deniedRepo) CreateSubject(context.Context, catalog.Subject) (catalog.Subject, error) {
	r.fail()
	return catalog.Subject{}, nil
}
func (r deniedRepo) QuerySubjects(context.Context, *catalog.QueryFilter) ([]catalog.Subject, error) {
	r.fail()
	return nil, nil
}
func (r deniedRepo) GetSubjectByID(context.Context, string) (catalog.Subject, error) {
	r.fail()
	return catalog.Subject{}, nil
}
func (r deniedRepo) DeleteSubjectByID(context.Context, string) error {
	r.fail()
	return nil
}
func (r deniedRepo) CreateLesson(context.Context, catalog.Lesson) (catalog.Lesson, error) {
	r.fail()
	return catalog.Lesson{}, nil
}
func (r deniedRepo) QueryLessonsBySubjectID(context.Context, string) ([]catalog.Lesson, error) {
	r.fail()
	return nil, nil
}
func (r deniedRepo) GetLessonByID(context.Context, string) (catalog.Lesson, error) {
	r.fail()
	return catalog.Lesson{}, nil
}
func (r deniedRepo) CountLessonsBySubjectID(context.Context, string) (int, error) {
	r.fail()
	return 0, nil
}

func Test_Service_adminOnlyMutations(t *testing.T) {
	ctx := context.Background()
	svc := catalog.NewService(deniedRepo{t: t})

	_, err := svc.CreateSubject(ctx, student, catalog.NewSubject{Title: "Maths", TargetGrade: "Grade 10"})
	assert.Equal(t, catalog.ErrPermissionDenied, err)

	err = svc.DeleteSubject(ctx, student, "sub1")
	assert.Equal(t, catalog.ErrPermissionDenied, err)

	_, err = svc.CreateLesson(ctx, student, "sub1", catalog.NewLesson{Title: "Algebra", Content: "..."})
	assert.Equal(t, catalog.ErrPermissionDenied, err)
}

func Test_Service_CreateSubject(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	sub, err := svc.CreateSubject(ctx, admin, catalog.NewSubject{
		Title:       "Mathematics",
		Description: "Numbers and more",
		TargetGrade: "Grade 10",
		SubjectType: catalog.TypeVideo,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, sub.ID)
	assert.Equal(t, "Mathematics", sub.Title)
	assert.Equal(t, catalog.TypeVideo, sub.SubjectType)
	assert.False(t, sub.CreatedAt.IsZero())

	got, err := svc.GetSubject(ctx, sub.ID)
	require.NoError(t, err)
	assert.Equal(t, sub, got)
}

func Test_Service_DeleteSubject_cascades(t *testing.T) {
	svc, repo := setup(t)
	ctx := context.Background()

	sub := testutil.CreateSubject(t, repo, "Mathematics", "Grade 10")
	les := testutil.CreateLesson(t, repo, sub.ID, "Algebra")

	require.NoError(t, svc.DeleteSubject(ctx, admin, sub.ID))

	_, err := svc.GetSubject(ctx, sub.ID)
	assert.Equal(t, catalog.ErrSubjectNotFound, err)

	_, err = svc.GetLesson(ctx, les.ID)
	assert.Equal(t, catalog.ErrLessonNotFound, err)

	// deleting again reports not found
	err = svc.DeleteSubject(ctx, admin, sub.ID)
	assert.Equal(t, catalog.ErrSubjectNotFound, err)
}

func Test_Service_CreateLesson(t *testing.T) {
	svc, repo := setup(t)
	ctx := context.Background()

	sub := testutil.CreateSubject(t, repo, "Mathematics", "Grade 10")

	les, err := svc.CreateLesson(ctx, admin, sub.ID, catalog.NewLesson{Title: "Algebra", Content: "x + y"})
	require.NoError(t, err)
	assert.NotEmpty(t, les.ID)
	assert.Equal(t, sub.ID, les.SubjectID)

	// unknown owning subject
	_, err = svc.CreateLesson(ctx, admin, "nope", catalog.NewLesson{Title: "Lost", Content: "..."})
	assert.Equal(t, catalog.ErrSubjectNotFound, errors.Cause(err))

	got, err := svc.GetLesson(ctx, les.ID)
	require.NoError(t, err)
	assert.Equal(t, sub.Title, got.SubjectTitle)
}

func Test_Service_QuerySubjects(t *testing.T) {
	svc, repo := setup(t)
	ctx := context.Background()

	g10a := testutil.CreateSubject(t, repo, "Biology", "Grade 10")
	g10b := testutil.CreateSubject(t, repo, "Art", "Grade 10")
	g11 := testutil.CreateSubject(t, repo, "Chemistry", "Grade 11")

	// admins see everything, ordered by title
	subjects, err := svc.QuerySubjects(ctx, admin, nil)
	require.NoError(t, err)
	require.Len(t, subjects, 3)
	assert.Equal(t, []string{g10b.ID, g10a.ID, g11.ID}, subjectIDs(subjects))

	// students only see their grade, even when asking for another
	subjects, err = svc.QuerySubjects(ctx, student, &catalog.QueryFilter{TargetGrade: "Grade 11"})
	require.NoError(t, err)
	require.Len(t, subjects, 2)
	assert.Equal(t, []string{g10b.ID, g10a.ID}, subjectIDs(subjects))

	// search matches title or description, case-insensitive
	subjects, err = svc.QuerySubjects(ctx, admin, &catalog.QueryFilter{Search: "chem"})
	require.NoError(t, err)
	require.Len(t, subjects, 1)
	assert.Equal(t, g11.ID, subjects[0].ID)
}

func Test_NewSubject_Validate(t *testing.T) {
	validate := newValidator()

	ns := catalog.NewSubject{Title: "  Maths  ", TargetGrade: "Grade 10"}
	require.NoError(t, ns.Validate(validate))
	assert.Equal(t, "Maths", ns.Title)
	assert.Equal(t, catalog.TypeLesson, ns.SubjectType) // defaulted

	ns = catalog.NewSubject{Title: "Maths", TargetGrade: "Grade 10", SubjectType: "hologram"}
	assert.Error(t, ns.Validate(validate))

	ns = catalog.NewSubject{TargetGrade: "Grade 10"}
	assert.Error(t, ns.Validate(validate))
}

func newValidator() *validator.Validate {
	validate := validator.New()
	_en := en.New()
	translator, _ := ut.New(_en, _en).GetTranslator("en")
	core.InitValidators(validate, translator)
	catalog.InitValidators(validate, translator)
	return validate
}

func subjectIDs(subjects []catalog.Subject) []string {
	ids := make([]string, 0, len(subjects))
	for _, sub := range subjects {
		ids = append(ids, sub.ID)
	}
	return ids
}
