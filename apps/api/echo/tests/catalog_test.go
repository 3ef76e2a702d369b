package tests

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/learnhub/core/catalog"
	"github.com/trezcool/learnhub/core/progress"
	"github.com/trezcool/learnhub/core/user"
	testutil "github.com/trezcool/learnhub/tests"
)

var errPermissionDenied = httpErr{Error: "permission denied"}

func Test_catalogApi_subjectQuery(t *testing.T) {
	app := setup(t)

	admin := testutil.CreateUser(t, app.usrRepo, "Admin", "admin@test.cd", "", user.RoleAdmin, "")
	student := testutil.CreateUser(t, app.usrRepo, "Jane Doe", "jane@test.cd", "", user.RoleStudent, "Grade 10")

	art := testutil.CreateSubject(t, app.catRepo, "Art", "Grade 10")
	math := testutil.CreateSubject(t, app.catRepo, "Mathematics", "Grade 10")
	chem := testutil.CreateSubject(t, app.catRepo, "Chemistry", "Grade 11")

	les1 := testutil.CreateLesson(t, app.catRepo, math.ID, "Algebra")
	testutil.CreateLesson(t, app.catRepo, math.ID, "Geometry")
	testutil.CreateLesson(t, app.catRepo, math.ID, "Calculus")
	testutil.CreateLesson(t, app.catRepo, math.ID, "Statistics")
	testutil.CompleteLesson(t, app.progRepo, student.ID, les1.ID)

	prog := func(sub catalog.Subject, total, completed, pct int) progress.SubjectProgress {
		return progress.SubjectProgress{Subject: sub, TotalLessons: total, CompletedCount: completed, Percentage: pct}
	}

	tests := []httpTest{
		{name: "auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			// a subject with no lessons reports 0%, not an error
			name: "student sees own grade with progress", token: getToken(t, student), wantCode: http.StatusOK,
			wantData: marchallList(t, prog(art, 0, 0, 0), prog(math, 4, 1, 25)),
		},
		{
			name: "admin sees all grades", token: getToken(t, admin), wantCode: http.StatusOK,
			wantData: marchallList(t, prog(art, 0, 0, 0), prog(chem, 0, 0, 0), prog(math, 4, 0, 0)),
		},
		{
			name: "student grade filter cannot be overridden", path: "/v1/subjects?target_grade=Grade+11",
			token: getToken(t, student), wantCode: http.StatusOK,
			wantData: marchallList(t, prog(art, 0, 0, 0), prog(math, 4, 1, 25)),
		},
		{
			name: "search filters by title", path: "/v1/subjects?search=chem",
			token: getToken(t, admin), wantCode: http.StatusOK,
			wantData: marchallList(t, prog(chem, 0, 0, 0)),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := tt.path
			if path == "" {
				path = "/v1/subjects"
			}
			req, rec := newAuthRequest(http.MethodGet, path, tt.token)
			app.server.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_catalogApi_subjectCreate(t *testing.T) {
	app := setup(t)

	admin := testutil.CreateUser(t, app.usrRepo, "Admin", "admin@test.cd", "", user.RoleAdmin, "")
	student := testutil.CreateUser(t, app.usrRepo, "Jane Doe", "jane@test.cd", "", user.RoleStudent, "Grade 10")

	body := marchallObj(t, map[string]string{
		"title":        "Mathematics",
		"description":  "Numbers and more",
		"target_grade": "Grade 10",
	})

	tests := []httpTest{
		{name: "auth required", body: body, wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "admin required", body: body, token: getToken(t, student),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errPermissionDenied),
		},
		{name: "created", body: body, token: getToken(t, admin), wantCode: http.StatusCreated},
		{
			name: "title required", body: marchallObj(t, map[string]string{"target_grade": "Grade 10"}),
			token: getToken(t, admin), wantCode: http.StatusBadRequest,
		},
		{
			name: "unknown subject type", token: getToken(t, admin), wantCode: http.StatusBadRequest,
			body: marchallObj(t, map[string]string{"title": "X", "target_grade": "Grade 10", "subject_type": "hologram"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, "/v1/subjects", tt.token, tt.body)
			app.server.ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Fatalf("failed! code = %v; wantCode %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
			}
			if tt.wantData != nil {
				checkCodeAndData(t, tt, rec)
			}
			if tt.wantCode == http.StatusCreated {
				var sub catalog.Subject
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sub))
				assert.NotEmpty(t, sub.ID)
				assert.Equal(t, catalog.TypeLesson, sub.SubjectType) // defaulted
			}
		})
	}
}

func Test_catalogApi_subjectDestroy(t *testing.T) {
	app := setup(t)

	admin := testutil.CreateUser(t, app.usrRepo, "Admin", "admin@test.cd", "", user.RoleAdmin, "")
	student := testutil.CreateUser(t, app.usrRepo, "Jane Doe", "jane@test.cd", "", user.RoleStudent, "Grade 10")

	sub := testutil.CreateSubject(t, app.catRepo, "Mathematics", "Grade 10")
	testutil.CreateLesson(t, app.catRepo, sub.ID, "Algebra")

	t.Run("admin required", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/v1/subjects/"+sub.ID, getToken(t, student))
		app.server.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusForbidden, wantData: marchallObj(t, errPermissionDenied)}, rec)
	})

	t.Run("deleted with lessons", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/v1/subjects/"+sub.ID, getToken(t, admin))
		app.server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

		req, rec = newAuthRequest(http.MethodGet, "/v1/subjects/"+sub.ID, getToken(t, admin))
		app.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("unknown subject", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/v1/subjects/"+sub.ID, getToken(t, admin))
		app.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func Test_catalogApi_lessonQuery(t *testing.T) {
	app := setup(t)

	student := testutil.CreateUser(t, app.usrRepo, "Jane Doe", "jane@test.cd", "", user.RoleStudent, "Grade 10")
	sub := testutil.CreateSubject(t, app.catRepo, "Mathematics", "Grade 10")

	now := time.Now()
	les1 := testutil.CreateLesson(t, app.catRepo, sub.ID, "Algebra", now.Add(-2*time.Hour))
	les2 := testutil.CreateLesson(t, app.catRepo, sub.ID, "Geometry", now.Add(-1*time.Hour))
	les3 := testutil.CreateLesson(t, app.catRepo, sub.ID, "Calculus", now)

	token := getToken(t, student)

	t.Run("ordered by creation time", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/subjects/"+sub.ID+"/lessons", token)
		app.server.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusOK,
			wantData: marchallList(t, les1, les2, les3),
		}, rec)
	})

	t.Run("unknown subject", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/subjects/nope/lessons", token)
		app.server.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Error: "subject not found"}),
		}, rec)
	})

	t.Run("retrieve joins subject title", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/lessons/"+les1.ID, token)
		app.server.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var les catalog.Lesson
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &les))
		assert.Equal(t, sub.Title, les.SubjectTitle)
	})
}

func Test_catalogApi_lessonCreate(t *testing.T) {
	app := setup(t)

	admin := testutil.CreateUser(t, app.usrRepo, "Admin", "admin@test.cd", "", user.RoleAdmin, "")
	student := testutil.CreateUser(t, app.usrRepo, "Jane Doe", "jane@test.cd", "", user.RoleStudent, "Grade 10")
	sub := testutil.CreateSubject(t, app.catRepo, "Mathematics", "Grade 10")

	body := marchallObj(t, map[string]string{"title": "Algebra", "content": "x + y"})

	tests := []httpTest{
		{
			name: "admin required", path: "/v1/subjects/" + sub.ID + "/lessons", body: body,
			token: getToken(t, student), wantCode: http.StatusForbidden, wantData: marchallObj(t, errPermissionDenied),
		},
		{
			name: "created", path: "/v1/subjects/" + sub.ID + "/lessons", body: body,
			token: getToken(t, admin), wantCode: http.StatusCreated,
		},
		{
			name: "unknown subject", path: "/v1/subjects/nope/lessons", body: body,
			token: getToken(t, admin), wantCode: http.StatusNotFound,
		},
		{
			name: "content required", path: "/v1/subjects/" + sub.ID + "/lessons",
			body:  marchallObj(t, map[string]string{"title": "Algebra"}),
			token: getToken(t, admin), wantCode: http.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, tt.path, tt.token, tt.body)
			app.server.ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Fatalf("failed! code = %v; wantCode %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
			}
			if tt.wantData != nil {
				checkCodeAndData(t, tt, rec)
			}
		})
	}
}

func Test_catalogApi_lessonComplete(t *testing.T) {
	app := setup(t)

	student := testutil.CreateUser(t, app.usrRepo, "Jane Doe", "jane@test.cd", "", user.RoleStudent, "Grade 10")
	sub := testutil.CreateSubject(t, app.catRepo, "Mathematics", "Grade 10")
	les := testutil.CreateLesson(t, app.catRepo, sub.ID, "Algebra")
	testutil.CreateLesson(t, app.catRepo, sub.ID, "Geometry")

	token := getToken(t, student)

	complete := func(t *testing.T, lessonID string) *http.Response {
		req, rec := newAuthRequest(http.MethodPost, "/v1/lessons/"+lessonID+"/complete", token)
		app.server.ServeHTTP(rec, req)
		return rec.Result()
	}

	t.Run("auth required", func(t *testing.T) {
		req, rec := newRequest(http.MethodPost, "/v1/lessons/"+les.ID+"/complete")
		app.server.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)}, rec)
	})

	t.Run("unknown lesson", func(t *testing.T) {
		resp := complete(t, "nope")
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("idempotent completion", func(t *testing.T) {
		// both the first mark and the duplicate succeed
		resp := complete(t, les.ID)
		require.Equal(t, http.StatusNoContent, resp.StatusCode)
		resp = complete(t, les.ID)
		require.Equal(t, http.StatusNoContent, resp.StatusCode)

		// a single completion is recorded; progress reflects it once
		req, rec := newAuthRequest(http.MethodGet, "/v1/subjects", token)
		app.server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var results []progress.SubjectProgress
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &results))
		require.Len(t, results, 1)
		assert.Equal(t, 2, results[0].TotalLessons)
		assert.Equal(t, 1, results[0].CompletedCount)
		assert.Equal(t, 50, results[0].Percentage)
	})
}
