package services

import (
	"context"
	"fmt"

	"github.com/SAP-F-2025/cinema-service/internal/events"
	"github.com/SAP-F-2025/cinema-service/internal/models"
	"github.com/SAP-F-2025/cinema-service/internal/repositories"
)

// SnapshotCollections lists the collections that can be streamed.
var SnapshotCollections = []string{
	events.CollectionMovies,
	events.CollectionSchedule,
	events.CollectionClasses,
	events.CollectionSuggestions,
	events.CollectionUsers,
	events.CollectionAttendance,
	events.CollectionGrades,
}

type snapshotService struct {
	repo repositories.Repository
}

func NewSnapshotService(repo repositories.Repository) SnapshotService {
	return &snapshotService{repo: repo}
}

func (s *snapshotService) Snapshot(ctx context.Context, actor Actor, collection string) (interface{}, error) {
	switch collection {
	case events.CollectionMovies:
		movies, _, err := s.repo.Movie().List(ctx, repositories.MovieFilters{})
		if err != nil {
			return nil, fmt.Errorf("failed to snapshot movies: %w", err)
		}
		return movies, nil

	case events.CollectionSchedule:
		entries, err := s.repo.Schedule().List(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to snapshot schedule: %w", err)
		}
		return groupWeek(visibleEntries(actor, entries)), nil

	case events.CollectionClasses:
		classes, err := s.repo.Class().List(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to snapshot classes: %w", err)
		}
		return classes, nil

	case events.CollectionSuggestions:
		filters := repositories.SuggestionFilters{}
		if !actor.IsStaff() {
			filters.UserID = &actor.UserID
		}
		suggestions, _, err := s.repo.Suggestion().List(ctx, filters)
		if err != nil {
			return nil, fmt.Errorf("failed to snapshot suggestions: %w", err)
		}
		return suggestions, nil

	case events.CollectionUsers:
		if !actor.IsAdmin() {
			return nil, NewPermissionError(actor.UserID, "", collection, "subscribe", "admin only")
		}
		users, _, err := s.repo.User().List(ctx, repositories.UserFilters{SortBy: "created_at", SortOrder: "asc"})
		if err != nil {
			return nil, fmt.Errorf("failed to snapshot users: %w", err)
		}
		return users, nil

	case events.CollectionAttendance:
		return s.attendance(ctx, actor)

	case events.CollectionGrades:
		return s.grades(ctx, actor)
	}

	return nil, fmt.Errorf("%w: unknown collection %q", ErrNotFound, collection)
}

// attendance returns every record to staff and the own history to students.
func (s *snapshotService) attendance(ctx context.Context, actor Actor) (interface{}, error) {
	records, err := s.repo.Attendance().List(ctx, repositories.AttendanceFilters{})
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot attendance: %w", err)
	}
	if actor.IsStaff() {
		return records, nil
	}
	if actor.Role != models.RoleStudent {
		return nil, NewPermissionError(actor.UserID, "", events.CollectionAttendance, "subscribe", "staff or students only")
	}

	history := []models.StudentAttendance{}
	for _, r := range records {
		if present, ok := r.Present(actor.UserID); ok {
			history = append(history, models.StudentAttendance{Date: r.Date, TeacherID: r.TeacherID, Present: present})
		}
	}
	return history, nil
}

func (s *snapshotService) grades(ctx context.Context, actor Actor) (interface{}, error) {
	reports, err := s.repo.Grade().List(ctx, repositories.GradeFilters{})
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot grades: %w", err)
	}
	if actor.IsStaff() {
		return reports, nil
	}
	if actor.Role != models.RoleStudent {
		return nil, NewPermissionError(actor.UserID, "", events.CollectionGrades, "subscribe", "staff or students only")
	}

	scores := []models.StudentScore{}
	for _, r := range reports {
		if score, ok := r.Score(actor.UserID); ok {
			scores = append(scores, models.StudentScore{ReportID: r.ID, Subject: r.Subject, Type: r.Type, Date: r.Date, Score: score})
		}
	}
	return scores, nil
}
