package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"gorm.io/datatypes"

	"github.com/SAP-F-2025/cinema-service/internal/events"
	"github.com/SAP-F-2025/cinema-service/internal/models"
	"github.com/SAP-F-2025/cinema-service/internal/repositories"
	"github.com/SAP-F-2025/cinema-service/internal/utils"
	"github.com/SAP-F-2025/cinema-service/internal/validator"
)

type movieService struct {
	changeNotifier
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
}

func NewMovieService(repo repositories.Repository, notifier changeNotifier, logger *slog.Logger, validator *validator.Validator) MovieService {
	return &movieService{
		changeNotifier: notifier,
		repo:           repo,
		logger:         logger,
		validator:      validator,
	}
}

func (s *movieService) List(ctx context.Context, filters repositories.MovieFilters, page, size int) (*MovieListResponse, error) {
	page, size, filters.Limit, filters.Offset = normalizePage(page, size)

	movies, total, err := s.repo.Movie().List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list movies: %w", err)
	}
	return &MovieListResponse{Movies: movies, Total: total, Page: page, Size: size}, nil
}

func (s *movieService) GetByID(ctx context.Context, id string) (*models.Movie, error) {
	movie, err := s.repo.Movie().GetByID(ctx, id)
	if err != nil {
		return nil, repoError(err, ErrMovieNotFound, "get movie")
	}
	return movie, nil
}

func (s *movieService) Create(ctx context.Context, req *CreateMovieRequest) (*models.Movie, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, validationFailed(err)
	}

	movie := &models.Movie{
		Title:       strings.TrimSpace(req.Title),
		Status:      req.Status,
		Rating:      req.Rating,
		Overview:    req.Overview,
		PosterPath:  req.PosterPath,
		ReleaseDate: req.ReleaseDate,
		TMDBID:      req.TMDBID,
		GenreIDs:    datatypes.JSONSlice[int](req.GenreIDs),
		KidsLiked:   req.KidsLiked,
	}
	if movie.Status == "" {
		movie.Status = models.MovieStatusWishlist
	}

	if err := createMovie(ctx, s.repo, movie); err != nil {
		return nil, err
	}

	s.logger.Info("Movie created", "movie_id", movie.ID, "title", movie.Title)
	s.notify(ctx, events.CollectionMovies, events.OpCreated, movie.ID)
	return movie, nil
}

// createMovie inserts movie after the case-insensitive title check.
// Shared with suggestion approval and legacy import.
func createMovie(ctx context.Context, repo repositories.Repository, movie *models.Movie) error {
	movie.TitleKey = utils.TitleKey(movie.Title)
	if movie.TitleKey == "" {
		return fieldError("title", "required", "is required", movie.Title)
	}

	if _, err := repo.Movie().GetByTitleKey(ctx, movie.TitleKey); err == nil {
		return ErrDuplicateTitle
	} else if !repositories.IsNotFoundError(err) {
		return fmt.Errorf("failed to check title: %w", err)
	}

	if err := repo.Movie().Create(ctx, movie); err != nil {
		if repositories.IsDuplicateError(err) {
			return ErrDuplicateTitle
		}
		return fmt.Errorf("failed to create movie: %w", err)
	}
	return nil
}

func (s *movieService) Update(ctx context.Context, id string, req *UpdateMovieRequest) (*models.Movie, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, validationFailed(err)
	}

	var (
		movie       *models.Movie
		syncedEntry bool
	)
	err := s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		var err error
		movie, err = tx.Movie().GetByID(ctx, id)
		if err != nil {
			return repoError(err, ErrMovieNotFound, "get movie")
		}

		titleChanged := false
		if req.Title != nil {
			title := strings.TrimSpace(*req.Title)
			key := utils.TitleKey(title)
			if key != movie.TitleKey {
				existing, err := tx.Movie().GetByTitleKey(ctx, key)
				if err == nil && existing.ID != movie.ID {
					return ErrDuplicateTitle
				} else if err != nil && !repositories.IsNotFoundError(err) {
					return fmt.Errorf("failed to check title: %w", err)
				}
			}
			titleChanged = title != movie.Title
			movie.Title = title
			movie.TitleKey = key
		}
		posterChanged := false
		if req.PosterPath != nil {
			posterChanged = *req.PosterPath != movie.PosterPath
			movie.PosterPath = *req.PosterPath
		}
		if req.Status != nil {
			movie.Status = *req.Status
		}
		if req.Rating != nil {
			movie.Rating = *req.Rating
		}
		if req.Overview != nil {
			movie.Overview = *req.Overview
		}
		if req.ReleaseDate != nil {
			movie.ReleaseDate = *req.ReleaseDate
		}
		if req.GenreIDs != nil {
			movie.GenreIDs = datatypes.JSONSlice[int](*req.GenreIDs)
		}
		if req.KidsLiked != nil {
			movie.KidsLiked = *req.KidsLiked
		}

		if err := tx.Movie().Update(ctx, movie); err != nil {
			if repositories.IsDuplicateError(err) {
				return ErrDuplicateTitle
			}
			return repoError(err, ErrMovieNotFound, "update movie")
		}

		if titleChanged || posterChanged {
			syncedEntry = true
			if err := tx.Schedule().SyncMovie(ctx, movie.ID, movie.Title, movie.PosterPath); err != nil {
				return fmt.Errorf("failed to sync schedule: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notify(ctx, events.CollectionMovies, events.OpUpdated, movie.ID)
	if syncedEntry {
		s.notify(ctx, events.CollectionSchedule, events.OpUpdated, "")
	}
	return movie, nil
}

// Delete removes the movie together with its schedule entries.
func (s *movieService) Delete(ctx context.Context, id string) error {
	var removed int64
	err := s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		if err := tx.Movie().Delete(ctx, id); err != nil {
			return repoError(err, ErrMovieNotFound, "delete movie")
		}
		var err error
		removed, err = tx.Schedule().DeleteByMovie(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to delete schedule entries: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("Movie deleted", "movie_id", id, "schedule_entries_removed", removed)
	s.notify(ctx, events.CollectionMovies, events.OpDeleted, id)
	if removed > 0 {
		s.notify(ctx, events.CollectionSchedule, events.OpDeleted, "")
	}
	return nil
}
