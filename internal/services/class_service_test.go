package services

import (
	"context"
	"errors"
	"testing"

	"github.com/SAP-F-2025/cinema-service/internal/models"
	"github.com/SAP-F-2025/cinema-service/internal/repositories"
)

func TestClassService_UniqueNames(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	svc := NewClassService(env.repo, env.notifier, env.logger, env.validator)

	a := env.addClass(t, "Grade 3")
	b := env.addClass(t, "Grade 4")

	if _, err := svc.Create(ctx, &ClassRequest{Name: "grade  3"}); !errors.Is(err, ErrDuplicateClass) {
		t.Errorf("Create() error = %v, want ErrDuplicateClass", err)
	}
	if _, err := svc.Rename(ctx, b.ID, &ClassRequest{Name: "GRADE 3"}); !errors.Is(err, ErrDuplicateClass) {
		t.Errorf("Rename() error = %v, want ErrDuplicateClass", err)
	}
	renamed, err := svc.Rename(ctx, a.ID, &ClassRequest{Name: "Grade 3 North"})
	if err != nil || renamed.Name != "Grade 3 North" {
		t.Errorf("Rename() = %+v, %v", renamed, err)
	}
}

func TestClassService_DeleteDetaches(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	svc := NewClassService(env.repo, env.notifier, env.logger, env.validator)
	schedule := NewScheduleService(env.repo, env.notifier, env.logger, env.validator)

	doomed := env.addClass(t, "5A")
	other := env.addClass(t, "5B")
	kid := env.addUser(t, &models.User{LoginID: "kid", Role: models.RoleStudent, StudentClass: doomed.ID})
	movie := env.addMovie(t, "Up")
	entry, err := schedule.Create(ctx, &CreateScheduleEntryRequest{Day: models.Monday, MovieID: movie.ID, Classes: []string{doomed.ID, other.ID}})
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}

	exclusive, err := schedule.Create(ctx, &CreateScheduleEntryRequest{Day: models.Tuesday, MovieID: movie.ID, Classes: []string{doomed.ID}})
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}

	students, err := svc.Students(ctx, doomed.ID)
	if err != nil || len(students) != 1 {
		t.Fatalf("Students() = %d, %v", len(students), err)
	}

	if err := svc.Delete(ctx, doomed.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	got, _ := env.repo.User().GetByID(ctx, kid.ID)
	if got.StudentClass != "" {
		t.Errorf("student still assigned to %q", got.StudentClass)
	}
	e, _ := env.repo.Schedule().GetByID(ctx, entry.ID)
	if len(e.Classes) != 1 || e.Classes[0] != other.ID {
		t.Errorf("schedule classes = %v, want [%s]", e.Classes, other.ID)
	}
	if _, err := env.repo.Schedule().GetByID(ctx, exclusive.ID); !repositories.IsNotFoundError(err) {
		t.Errorf("entry shown to the deleted class only should be gone, got %v", err)
	}
	if _, err := svc.Students(ctx, doomed.ID); !errors.Is(err, ErrClassNotFound) {
		t.Errorf("Students() after delete = %v, want ErrClassNotFound", err)
	}
}
