package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SAP-F-2025/cinema-service/internal/events"
	"github.com/SAP-F-2025/cinema-service/internal/models"
	"github.com/SAP-F-2025/cinema-service/internal/repositories"
	"github.com/SAP-F-2025/cinema-service/internal/validator"
)

type suggestionService struct {
	changeNotifier
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
}

func NewSuggestionService(repo repositories.Repository, notifier changeNotifier, logger *slog.Logger, validator *validator.Validator) SuggestionService {
	return &suggestionService{
		changeNotifier: notifier,
		repo:           repo,
		logger:         logger,
		validator:      validator,
	}
}

func (s *suggestionService) Create(ctx context.Context, actor Actor, req *CreateSuggestionRequest) (*models.Suggestion, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, validationFailed(err)
	}

	suggestion := &models.Suggestion{
		Title:     strings.TrimSpace(req.Title),
		Reason:    strings.TrimSpace(req.Reason),
		UserID:    actor.UserID,
		UserEmail: actor.Email,
		Status:    models.SuggestionPending,
	}
	if err := s.repo.Suggestion().Create(ctx, suggestion); err != nil {
		return nil, fmt.Errorf("failed to create suggestion: %w", err)
	}

	s.logger.Info("Suggestion created", "suggestion_id", suggestion.ID, "user_id", actor.UserID)
	s.notify(ctx, events.CollectionSuggestions, events.OpCreated, suggestion.ID)
	return suggestion, nil
}

// List returns every suggestion to staff and only their own to everyone else.
func (s *suggestionService) List(ctx context.Context, actor Actor, status *models.SuggestionStatus, page, size int) (*SuggestionListResponse, error) {
	filters := repositories.SuggestionFilters{Status: status}
	if !actor.IsStaff() {
		filters.UserID = &actor.UserID
	}
	page, size, filters.Limit, filters.Offset = normalizePage(page, size)

	suggestions, total, err := s.repo.Suggestion().List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list suggestions: %w", err)
	}
	return &SuggestionListResponse{Suggestions: suggestions, Total: total, Page: page, Size: size}, nil
}

// UpdateStatus sets the review outcome. Approving with AddToWishlist also adds
// the title to the wishlist in the same transaction.
func (s *suggestionService) UpdateStatus(ctx context.Context, id string, req *UpdateSuggestionStatusRequest) (*models.Suggestion, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, validationFailed(err)
	}
	if req.AddToWishlist && req.Status != models.SuggestionApproved {
		return nil, fieldError("add_to_wishlist", "approved_only", "requires status approved", req.AddToWishlist)
	}

	var (
		suggestion *models.Suggestion
		movie      *models.Movie
	)
	err := s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		var err error
		suggestion, err = tx.Suggestion().GetByID(ctx, id)
		if err != nil {
			return repoError(err, ErrSuggestionNotFound, "get suggestion")
		}
		if err := tx.Suggestion().UpdateStatus(ctx, id, req.Status); err != nil {
			return repoError(err, ErrSuggestionNotFound, "update suggestion status")
		}
		suggestion.Status = req.Status

		if req.AddToWishlist {
			movie = &models.Movie{Title: suggestion.Title, Status: models.MovieStatusWishlist}
			return createMovie(ctx, tx, movie)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Suggestion reviewed", "suggestion_id", id, "status", req.Status, "added_to_wishlist", movie != nil)
	s.notify(ctx, events.CollectionSuggestions, events.OpUpdated, id)
	if movie != nil {
		s.notify(ctx, events.CollectionMovies, events.OpCreated, movie.ID)
	}
	return suggestion, nil
}

func (s *suggestionService) Delete(ctx context.Context, actor Actor, id string) error {
	suggestion, err := s.repo.Suggestion().GetByID(ctx, id)
	if err != nil {
		return repoError(err, ErrSuggestionNotFound, "get suggestion")
	}
	if !actor.IsAdmin() && suggestion.UserID != actor.UserID {
		return NewPermissionError(actor.UserID, id, "suggestion", "delete", "not the author")
	}

	if err := s.repo.Suggestion().Delete(ctx, id); err != nil {
		return repoError(err, ErrSuggestionNotFound, "delete suggestion")
	}
	s.notify(ctx, events.CollectionSuggestions, events.OpDeleted, id)
	return nil
}
