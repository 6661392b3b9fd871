package services

import (
	"context"
	"fmt"
	"log/slog"

	"gorm.io/datatypes"

	"github.com/SAP-F-2025/cinema-service/internal/events"
	"github.com/SAP-F-2025/cinema-service/internal/models"
	"github.com/SAP-F-2025/cinema-service/internal/repositories"
	"github.com/SAP-F-2025/cinema-service/internal/validator"
)

type scheduleService struct {
	changeNotifier
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
}

func NewScheduleService(repo repositories.Repository, notifier changeNotifier, logger *slog.Logger, validator *validator.Validator) ScheduleService {
	return &scheduleService{
		changeNotifier: notifier,
		repo:           repo,
		logger:         logger,
		validator:      validator,
	}
}

// Week returns all seven days in order. Students only see entries shown to their class.
func (s *scheduleService) Week(ctx context.Context, actor Actor) ([]models.DaySchedule, error) {
	entries, err := s.repo.Schedule().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list schedule: %w", err)
	}
	return groupWeek(visibleEntries(actor, entries)), nil
}

func visibleEntries(actor Actor, entries []*models.ScheduleEntry) []*models.ScheduleEntry {
	if actor.Role != models.RoleStudent {
		return entries
	}
	out := make([]*models.ScheduleEntry, 0, len(entries))
	for _, e := range entries {
		if e.HasClass(actor.StudentClass) {
			out = append(out, e)
		}
	}
	return out
}

func groupWeek(entries []*models.ScheduleEntry) []models.DaySchedule {
	week := make([]models.DaySchedule, len(models.Weekdays))
	for i, day := range models.Weekdays {
		week[i] = models.DaySchedule{Day: day, Entries: []*models.ScheduleEntry{}}
	}
	for _, e := range entries {
		if idx := e.Day.Index(); idx >= 0 {
			week[idx].Entries = append(week[idx].Entries, e)
		}
	}
	return week
}

func (s *scheduleService) Create(ctx context.Context, req *CreateScheduleEntryRequest) (*models.ScheduleEntry, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, validationFailed(err)
	}

	movie, err := s.repo.Movie().GetByID(ctx, req.MovieID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, fieldError("movieId", "exists", "must reference an existing movie", req.MovieID)
		}
		return nil, fmt.Errorf("failed to get movie: %w", err)
	}
	if err := s.checkClasses(ctx, req.Classes); err != nil {
		return nil, err
	}

	entry := &models.ScheduleEntry{
		Day:        req.Day,
		MovieID:    movie.ID,
		Title:      movie.Title,
		PosterPath: movie.PosterPath,
		Classes:    datatypes.JSONSlice[string](dedupe(req.Classes)),
	}
	if err := s.repo.Schedule().Create(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to create schedule entry: %w", err)
	}

	s.logger.Info("Schedule entry created", "entry_id", entry.ID, "day", entry.Day, "movie_id", entry.MovieID)
	s.notify(ctx, events.CollectionSchedule, events.OpCreated, entry.ID)
	return entry, nil
}

func (s *scheduleService) Update(ctx context.Context, id string, req *UpdateScheduleEntryRequest) (*models.ScheduleEntry, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, validationFailed(err)
	}

	entry, err := s.repo.Schedule().GetByID(ctx, id)
	if err != nil {
		return nil, repoError(err, ErrScheduleNotFound, "get schedule entry")
	}

	if req.Day != nil {
		entry.Day = *req.Day
	}
	if req.Classes != nil {
		if err := s.checkClasses(ctx, *req.Classes); err != nil {
			return nil, err
		}
		entry.Classes = datatypes.JSONSlice[string](dedupe(*req.Classes))
	}

	if err := s.repo.Schedule().Update(ctx, entry); err != nil {
		return nil, repoError(err, ErrScheduleNotFound, "update schedule entry")
	}

	s.notify(ctx, events.CollectionSchedule, events.OpUpdated, entry.ID)
	return entry, nil
}

func (s *scheduleService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Schedule().Delete(ctx, id); err != nil {
		return repoError(err, ErrScheduleNotFound, "delete schedule entry")
	}
	s.notify(ctx, events.CollectionSchedule, events.OpDeleted, id)
	return nil
}

func (s *scheduleService) ClearDay(ctx context.Context, day models.Weekday) (int64, error) {
	if !day.IsValid() {
		return 0, fieldError("day", "weekday", "must be one of Mon, Tue, Wed, Thu, Fri, Sat, Sun", day)
	}

	removed, err := s.repo.Schedule().DeleteByDay(ctx, day)
	if err != nil {
		return 0, fmt.Errorf("failed to clear day: %w", err)
	}

	s.logger.Info("Schedule day cleared", "day", day, "removed", removed)
	if removed > 0 {
		s.notify(ctx, events.CollectionSchedule, events.OpDeleted, "")
	}
	return removed, nil
}

func (s *scheduleService) checkClasses(ctx context.Context, classIDs []string) error {
	for _, id := range classIDs {
		if _, err := s.repo.Class().GetByID(ctx, id); err != nil {
			if repositories.IsNotFoundError(err) {
				return fieldError("classes", "exists", "must reference existing classes", id)
			}
			return fmt.Errorf("failed to get class: %w", err)
		}
	}
	return nil
}

func dedupe(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, v := range in {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}
