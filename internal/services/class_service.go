package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SAP-F-2025/cinema-service/internal/events"
	"github.com/SAP-F-2025/cinema-service/internal/models"
	"github.com/SAP-F-2025/cinema-service/internal/repositories"
	"github.com/SAP-F-2025/cinema-service/internal/utils"
	"github.com/SAP-F-2025/cinema-service/internal/validator"
)

type classService struct {
	changeNotifier
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
}

func NewClassService(repo repositories.Repository, notifier changeNotifier, logger *slog.Logger, validator *validator.Validator) ClassService {
	return &classService{
		changeNotifier: notifier,
		repo:           repo,
		logger:         logger,
		validator:      validator,
	}
}

func (s *classService) List(ctx context.Context) ([]*models.Class, error) {
	classes, err := s.repo.Class().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list classes: %w", err)
	}
	return classes, nil
}

func (s *classService) Create(ctx context.Context, req *ClassRequest) (*models.Class, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, validationFailed(err)
	}

	class := &models.Class{
		Name:    strings.TrimSpace(req.Name),
		NameKey: utils.TitleKey(req.Name),
	}
	if err := s.ensureUniqueName(ctx, class.NameKey, ""); err != nil {
		return nil, err
	}
	if err := s.repo.Class().Create(ctx, class); err != nil {
		if repositories.IsDuplicateError(err) {
			return nil, ErrDuplicateClass
		}
		return nil, fmt.Errorf("failed to create class: %w", err)
	}

	s.logger.Info("Class created", "class_id", class.ID, "name", class.Name)
	s.notify(ctx, events.CollectionClasses, events.OpCreated, class.ID)
	return class, nil
}

func (s *classService) Rename(ctx context.Context, id string, req *ClassRequest) (*models.Class, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, validationFailed(err)
	}

	class, err := s.repo.Class().GetByID(ctx, id)
	if err != nil {
		return nil, repoError(err, ErrClassNotFound, "get class")
	}

	key := utils.TitleKey(req.Name)
	if err := s.ensureUniqueName(ctx, key, class.ID); err != nil {
		return nil, err
	}
	class.Name = strings.TrimSpace(req.Name)
	class.NameKey = key

	if err := s.repo.Class().Update(ctx, class); err != nil {
		if repositories.IsDuplicateError(err) {
			return nil, ErrDuplicateClass
		}
		return nil, repoError(err, ErrClassNotFound, "rename class")
	}

	s.notify(ctx, events.CollectionClasses, events.OpUpdated, class.ID)
	return class, nil
}

func (s *classService) ensureUniqueName(ctx context.Context, key, exceptID string) error {
	existing, err := s.repo.Class().GetByNameKey(ctx, key)
	if err == nil && existing.ID != exceptID {
		return ErrDuplicateClass
	}
	if err != nil && !repositories.IsNotFoundError(err) {
		return fmt.Errorf("failed to check class name: %w", err)
	}
	return nil
}

// Delete removes the class and unassigns its students. Schedule entries lose
// the class, and entries shown to that class only are removed.
func (s *classService) Delete(ctx context.Context, id string) error {
	var usersCleared, entriesChanged int64
	err := s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		if err := tx.Class().Delete(ctx, id); err != nil {
			return repoError(err, ErrClassNotFound, "delete class")
		}
		var err error
		if usersCleared, err = tx.User().ClearClass(ctx, id); err != nil {
			return fmt.Errorf("failed to unassign students: %w", err)
		}
		if entriesChanged, err = tx.Schedule().RemoveClass(ctx, id); err != nil {
			return fmt.Errorf("failed to update schedule: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("Class deleted", "class_id", id, "users_cleared", usersCleared, "schedule_entries_changed", entriesChanged)
	s.notify(ctx, events.CollectionClasses, events.OpDeleted, id)
	if usersCleared > 0 {
		s.notify(ctx, events.CollectionUsers, events.OpUpdated, "")
	}
	if entriesChanged > 0 {
		s.notify(ctx, events.CollectionSchedule, events.OpUpdated, "")
	}
	return nil
}

func (s *classService) Students(ctx context.Context, id string) ([]*models.User, error) {
	if _, err := s.repo.Class().GetByID(ctx, id); err != nil {
		return nil, repoError(err, ErrClassNotFound, "get class")
	}
	users, err := s.repo.User().ListByClass(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list students: %w", err)
	}

	students := make([]*models.User, 0, len(users))
	for _, u := range users {
		if u.Role == models.RoleStudent {
			students = append(students, u)
		}
	}
	return students, nil
}
