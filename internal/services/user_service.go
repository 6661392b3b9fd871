package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/SAP-F-2025/cinema-service/internal/auth"
	"github.com/SAP-F-2025/cinema-service/internal/events"
	"github.com/SAP-F-2025/cinema-service/internal/models"
	"github.com/SAP-F-2025/cinema-service/internal/repositories"
	"github.com/SAP-F-2025/cinema-service/internal/utils"
	"github.com/SAP-F-2025/cinema-service/internal/validator"
)

type userService struct {
	changeNotifier
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
}

func NewUserService(repo repositories.Repository, notifier changeNotifier, logger *slog.Logger, validator *validator.Validator) UserService {
	return &userService{
		changeNotifier: notifier,
		repo:           repo,
		logger:         logger,
		validator:      validator,
	}
}

// ===== ADMIN OPERATIONS =====

func (s *userService) List(ctx context.Context, filters repositories.UserFilters, page, size int) (*UserListResponse, error) {
	page, size, filters.Limit, filters.Offset = normalizePage(page, size)

	users, total, err := s.repo.User().List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return &UserListResponse{Users: users, Total: total, Page: page, Size: size}, nil
}

func (s *userService) GetByID(ctx context.Context, id string) (*models.User, error) {
	user, err := s.repo.User().GetByID(ctx, id)
	if err != nil {
		return nil, repoError(err, ErrUserNotFound, "get user")
	}
	return user, nil
}

func (s *userService) UpdateStatus(ctx context.Context, actor Actor, id string, req *UpdateUserStatusRequest) (*models.User, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, validationFailed(err)
	}
	if actor.UserID == id && req.Status != models.UserStatusApproved {
		return nil, NewBusinessRuleError("self_status", "admins cannot revoke their own approval", nil)
	}

	user, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user.Status == req.Status {
		return user, nil
	}

	s.logger.Info("Updating user status", "user_id", id, "from", user.Status, "to", req.Status, "by", actor.UserID)
	user.Status = req.Status
	if err := s.repo.User().Update(ctx, user); err != nil {
		return nil, repoError(err, ErrUserNotFound, "update user status")
	}

	s.notify(ctx, events.CollectionUsers, events.OpUpdated, user.ID)
	return user, nil
}

func (s *userService) UpdateRole(ctx context.Context, actor Actor, id string, req *UpdateUserRoleRequest) (*models.User, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, validationFailed(err)
	}
	if actor.UserID == id && req.Role != models.RoleAdmin {
		return nil, NewBusinessRuleError("self_role", "admins cannot demote themselves", nil)
	}

	user, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Updating user role", "user_id", id, "from", user.Role, "to", req.Role, "by", actor.UserID)
	user.Role = req.Role
	if req.Role != models.RoleStudent {
		user.StudentClass = ""
	}
	if err := s.repo.User().Update(ctx, user); err != nil {
		return nil, repoError(err, ErrUserNotFound, "update user role")
	}

	s.notify(ctx, events.CollectionUsers, events.OpUpdated, user.ID)
	return user, nil
}

func (s *userService) AssignClass(ctx context.Context, id string, req *AssignClassRequest) (*models.User, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, validationFailed(err)
	}

	user, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.ClassID != "" {
		if _, err := s.repo.Class().GetByID(ctx, req.ClassID); err != nil {
			return nil, repoError(err, ErrClassNotFound, "get class")
		}
	}

	user.StudentClass = req.ClassID
	if err := s.repo.User().Update(ctx, user); err != nil {
		return nil, repoError(err, ErrUserNotFound, "assign class")
	}

	s.notify(ctx, events.CollectionUsers, events.OpUpdated, user.ID)
	return user, nil
}

// CreateStudent provisions an approved student who signs in with a login id.
func (s *userService) CreateStudent(ctx context.Context, req *CreateStudentRequest) (*models.User, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, validationFailed(err)
	}

	if _, err := s.repo.User().GetByLoginID(ctx, req.LoginID); err == nil {
		return nil, ErrLoginIDTaken
	} else if !repositories.IsNotFoundError(err) {
		return nil, fmt.Errorf("failed to check login id: %w", err)
	}
	if req.ClassID != "" {
		if _, err := s.repo.Class().GetByID(ctx, req.ClassID); err != nil {
			return nil, repoError(err, ErrClassNotFound, "get class")
		}
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		LoginID:      req.LoginID,
		DisplayName:  strings.TrimSpace(req.DisplayName),
		PasswordHash: hash,
		Role:         models.RoleStudent,
		Status:       models.UserStatusApproved,
		StudentClass: req.ClassID,
		Language:     "en",
	}
	if err := s.repo.User().Create(ctx, user); err != nil {
		if repositories.IsDuplicateError(err) {
			return nil, ErrLoginIDTaken
		}
		return nil, fmt.Errorf("failed to create student: %w", err)
	}

	s.logger.Info("Student account created", "user_id", user.ID, "login_id", user.LoginID)
	s.notify(ctx, events.CollectionUsers, events.OpCreated, user.ID)
	return user, nil
}

func (s *userService) Delete(ctx context.Context, actor Actor, id string) error {
	if actor.UserID == id {
		return NewBusinessRuleError("self_delete", "admins cannot delete their own account", nil)
	}
	if err := s.repo.User().Delete(ctx, id); err != nil {
		return repoError(err, ErrUserNotFound, "delete user")
	}

	s.logger.Info("User deleted", "user_id", id, "by", actor.UserID)
	s.notify(ctx, events.CollectionUsers, events.OpDeleted, id)
	return nil
}

// ===== PRE-REGISTERED EMAILS =====

func (s *userService) ListPreRegistered(ctx context.Context) ([]*models.PreRegisteredEmail, error) {
	entries, err := s.repo.PreRegistered().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list pre-registered emails: %w", err)
	}
	return entries, nil
}

func (s *userService) AddPreRegistered(ctx context.Context, req *PreRegisterRequest) (*models.PreRegisteredEmail, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, validationFailed(err)
	}

	entry := &models.PreRegisteredEmail{Email: utils.NormalizeEmail(req.Email)}
	if err := s.repo.PreRegistered().Create(ctx, entry); err != nil {
		if repositories.IsDuplicateError(err) {
			return nil, ErrPreRegisteredExists
		}
		return nil, fmt.Errorf("failed to pre-register email: %w", err)
	}

	s.notify(ctx, events.CollectionPreRegister, events.OpCreated, entry.ID)
	return entry, nil
}

// ImportPreRegistered reads emails from the first column of the first sheet.
// A header row and blank or invalid cells are skipped.
func (s *userService) ImportPreRegistered(ctx context.Context, r io.Reader) (*models.ImportResult, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fieldError("file", "xlsx", "must be an xlsx workbook", nil)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, fmt.Errorf("failed to read workbook: %w", err)
	}

	result := &models.ImportResult{}
	for i, row := range rows {
		if len(row) == 0 || strings.TrimSpace(row[0]) == "" {
			continue
		}
		email := utils.NormalizeEmail(row[0])
		if s.validator.Var(email, "email") != nil {
			if i > 0 {
				result.Skipped++
				result.Errors = append(result.Errors, fmt.Sprintf("row %d: invalid email %q", i+1, row[0]))
			}
			continue
		}

		entry := &models.PreRegisteredEmail{Email: email}
		if err := s.repo.PreRegistered().Create(ctx, entry); err != nil {
			if repositories.IsDuplicateError(err) {
				result.Skipped++
				continue
			}
			return nil, fmt.Errorf("failed to import row %d: %w", i+1, err)
		}
		result.Imported++
	}

	s.logger.Info("Pre-registered emails imported", "imported", result.Imported, "skipped", result.Skipped)
	if result.Imported > 0 {
		s.notify(ctx, events.CollectionPreRegister, events.OpReplaced, "")
	}
	return result, nil
}

func (s *userService) DeletePreRegistered(ctx context.Context, id string) error {
	if err := s.repo.PreRegistered().Delete(ctx, id); err != nil {
		return repoError(err, ErrPreRegisteredMissing, "delete pre-registered email")
	}
	s.notify(ctx, events.CollectionPreRegister, events.OpDeleted, id)
	return nil
}

// ===== PREFERENCES =====

func (s *userService) GetPreferences(ctx context.Context, userID string) (*Preferences, error) {
	user, err := s.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	lang := user.Language
	if lang == "" {
		lang = "en"
	}
	return &Preferences{Language: lang}, nil
}

func (s *userService) UpdatePreferences(ctx context.Context, userID string, req *Preferences) (*Preferences, error) {
	req.Language = strings.ToLower(strings.TrimSpace(req.Language))
	if err := s.validator.Validate(req); err != nil {
		return nil, validationFailed(err)
	}

	user, err := s.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.Language = req.Language
	if err := s.repo.User().Update(ctx, user); err != nil {
		return nil, repoError(err, ErrUserNotFound, "update preferences")
	}
	return &Preferences{Language: user.Language}, nil
}
