package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SAP-F-2025/cinema-service/internal/cache"
	"github.com/SAP-F-2025/cinema-service/internal/events"
	"github.com/SAP-F-2025/cinema-service/internal/repositories"
	"github.com/SAP-F-2025/cinema-service/internal/tmdb"
)

// MetadataProvider is the movie metadata source behind MetadataService.
type MetadataProvider interface {
	Configured() bool
	Search(ctx context.Context, query string, page int, language string) (*tmdb.SearchResult, error)
	Videos(ctx context.Context, tmdbID int64, language string) ([]tmdb.Video, error)
	Details(ctx context.Context, tmdbID int64, language string) (*tmdb.MovieResult, error)
}

type metadataService struct {
	changeNotifier
	repo     repositories.Repository
	provider MetadataProvider
	logger   *slog.Logger
}

func NewMetadataService(repo repositories.Repository, provider MetadataProvider, notifier changeNotifier, logger *slog.Logger) MetadataService {
	return &metadataService{
		changeNotifier: notifier,
		repo:           repo,
		provider:       provider,
		logger:         logger,
	}
}

func (s *metadataService) Search(ctx context.Context, query string, page int, language string) (*tmdb.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fieldError("query", "required", "is required", query)
	}
	result, err := s.provider.Search(ctx, query, page, language)
	if err != nil {
		return nil, metadataError(err)
	}
	return result, nil
}

func (s *metadataService) Videos(ctx context.Context, tmdbID int64, language string) ([]tmdb.Video, error) {
	videos, err := s.provider.Videos(ctx, tmdbID, language)
	if err != nil {
		return nil, metadataError(err)
	}
	return videos, nil
}

func (s *metadataService) Details(ctx context.Context, tmdbID int64, language string) (*tmdb.MovieResult, error) {
	result, err := s.provider.Details(ctx, tmdbID, language)
	if err != nil {
		return nil, metadataError(err)
	}
	return result, nil
}

// RefreshMovies copies the current rating, poster and overview onto linked movies.
// Failures for single movies are logged and skipped.
func (s *metadataService) RefreshMovies(ctx context.Context) (int, error) {
	if !s.provider.Configured() {
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, tmdb.ErrNotConfigured)
	}

	movies, err := s.repo.Movie().ListWithTMDBID(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list linked movies: %w", err)
	}

	updated := 0
	for _, movie := range movies {
		if err := ctx.Err(); err != nil {
			return updated, err
		}

		cache.InvalidateTMDBCache(ctx, s.cache, *movie.TMDBID)
		details, err := s.provider.Details(ctx, *movie.TMDBID, "")
		if err != nil {
			s.logger.Warn("Failed to refresh movie metadata",
				"movie_id", movie.ID,
				"tmdb_id", *movie.TMDBID,
				"error", err)
			continue
		}

		posterChanged := details.PosterPath != "" && details.PosterPath != movie.PosterPath
		changed := posterChanged
		if details.Rating > 0 && details.Rating != movie.Rating {
			movie.Rating = details.Rating
			changed = true
		}
		if details.Overview != "" && details.Overview != movie.Overview {
			movie.Overview = details.Overview
			changed = true
		}
		if !changed {
			continue
		}
		if posterChanged {
			movie.PosterPath = details.PosterPath
		}

		err = s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
			if err := tx.Movie().Update(ctx, movie); err != nil {
				return err
			}
			if posterChanged {
				return tx.Schedule().SyncMovie(ctx, movie.ID, movie.Title, movie.PosterPath)
			}
			return nil
		})
		if err != nil {
			s.logger.Warn("Failed to store refreshed metadata", "movie_id", movie.ID, "error", err)
			continue
		}

		updated++
		s.notify(ctx, events.CollectionMovies, events.OpUpdated, movie.ID)
		if posterChanged {
			s.notify(ctx, events.CollectionSchedule, events.OpUpdated, "")
		}
	}

	s.logger.Info("Movie metadata refreshed", "linked", len(movies), "updated", updated)
	return updated, nil
}

func metadataError(err error) error {
	switch {
	case errors.Is(err, tmdb.ErrNotConfigured):
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	case errors.Is(err, tmdb.ErrNotFound):
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	case errors.Is(err, tmdb.ErrUpstream):
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	default:
		return fmt.Errorf("metadata lookup failed: %w", err)
	}
}
