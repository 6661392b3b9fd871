package services

import (
	"context"
	"errors"
	"testing"

	"github.com/SAP-F-2025/cinema-service/internal/models"
)

func TestScheduleService_WeekVisibility(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	svc := NewScheduleService(env.repo, env.notifier, env.logger, env.validator)

	classA := env.addClass(t, "1A")
	classB := env.addClass(t, "1B")
	movie := env.addMovie(t, "Up")

	create := func(day models.Weekday, classes ...string) {
		t.Helper()
		if _, err := svc.Create(ctx, &CreateScheduleEntryRequest{Day: day, MovieID: movie.ID, Classes: classes}); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}
	create(models.Sunday, classA.ID, classA.ID)
	create(models.Monday, classB.ID)
	create(models.Monday)

	tests := []struct {
		name      string
		actor     Actor
		wantTotal int
	}{
		{name: "teacher sees everything", actor: Actor{UserID: "t", Role: models.RoleTeacher}, wantTotal: 3},
		{name: "student of 1A", actor: Actor{UserID: "s", Role: models.RoleStudent, StudentClass: classA.ID}, wantTotal: 2},
		{name: "student without class", actor: Actor{UserID: "s2", Role: models.RoleStudent}, wantTotal: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			week, err := svc.Week(ctx, tt.actor)
			if err != nil {
				t.Fatalf("Week() error = %v", err)
			}
			if len(week) != 7 || week[0].Day != models.Monday || week[6].Day != models.Sunday {
				t.Fatalf("week must list Mon..Sun, got %+v", week)
			}
			total := 0
			for _, d := range week {
				total += len(d.Entries)
			}
			if total != tt.wantTotal {
				t.Errorf("visible entries = %d, want %d", total, tt.wantTotal)
			}
		})
	}

	week, _ := svc.Week(ctx, Actor{Role: models.RoleAdmin})
	if got := week[6].Entries[0].Classes; len(got) != 1 {
		t.Errorf("classes should be de-duplicated, got %v", got)
	}
}

func TestScheduleService_Validation(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	svc := NewScheduleService(env.repo, env.notifier, env.logger, env.validator)
	movie := env.addMovie(t, "Up")

	tests := []struct {
		name string
		req  CreateScheduleEntryRequest
	}{
		{name: "bad day", req: CreateScheduleEntryRequest{Day: "Funday", MovieID: movie.ID}},
		{name: "unknown movie", req: CreateScheduleEntryRequest{Day: models.Monday, MovieID: "missing"}},
		{name: "unknown class", req: CreateScheduleEntryRequest{Day: models.Monday, MovieID: movie.ID, Classes: []string{"ghost"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Create(ctx, &tt.req); !errors.Is(err, ErrValidationFailed) {
				t.Errorf("Create() error = %v, want ErrValidationFailed", err)
			}
		})
	}

	if _, err := svc.Create(ctx, &CreateScheduleEntryRequest{Day: models.Tuesday, MovieID: movie.ID}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	removed, err := svc.ClearDay(ctx, models.Tuesday)
	if err != nil || removed != 1 {
		t.Errorf("ClearDay() = %d, %v; want 1", removed, err)
	}
}
