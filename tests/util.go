package testutil

import (
	"context"
	"net/mail"
	"testing"
	"time"

	"github.com/trezcool/learnhub/core"
	"github.com/trezcool/learnhub/core/catalog"
	"github.com/trezcool/learnhub/core/progress"
	"github.com/trezcool/learnhub/core/user"
)

// NewConfig returns a self-contained app configuration for tests;
// no environment or .env file is consulted.
func NewConfig() *core.Config {
	return &core.Config{
		TestMode:         true,
		Env:              "TEST",
		Build:            "test",
		AppName:          "LearnHub",
		SecretKey:        "s3cr3t",
		FrontendBaseURL:  "http://localhost:3000",
		DefaultFromEmail: mail.Address{Address: "noreply@localhost"},
		Server: core.ServerConfig{
			JWTExpirationDelta:        10 * time.Minute,
			JWTRefreshExpirationDelta: 4 * time.Hour,
		},
	}
}

func CreateUser(
	t *testing.T,
	repo user.Repository,
	name, email, pwd, role, grade string,
) user.User {
	now := time.Now().UTC()
	usr := user.User{
		FullName:  name,
		Email:     email,
		Role:      role,
		Grade:     grade,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

func CreateSubject(
	t *testing.T,
	repo catalog.Repository,
	title, grade string,
	createdAt ...time.Time,
) catalog.Subject {
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	sub, err := repo.CreateSubject(context.Background(), catalog.Subject{
		Title:       title,
		TargetGrade: grade,
		SubjectType: catalog.TypeLesson,
		CreatedAt:   tstamp,
	})
	if err != nil {
		t.Fatalf("CreateSubject() failed: %v", err)
	}
	return sub
}

func CreateLesson(
	t *testing.T,
	repo catalog.Repository,
	subjectID, title string,
	createdAt ...time.Time,
) catalog.Lesson {
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	les, err := repo.CreateLesson(context.Background(), catalog.Lesson{
		SubjectID: subjectID,
		Title:     title,
		Content:   title + " content",
		CreatedAt: tstamp,
	})
	if err != nil {
		t.Fatalf("CreateLesson() failed: %v", err)
	}
	return les
}

func CompleteLesson(t *testing.T, repo progress.Repository, userID, lessonID string) {
	err := repo.CreateCompletion(context.Background(), progress.Completion{
		UserID:    userID,
		LessonID:  lessonID,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("CompleteLesson() failed: %v", err)
	}
}
