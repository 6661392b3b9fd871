package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/SAP-F-2025/cinema-service/internal/cache"
	"github.com/SAP-F-2025/cinema-service/internal/models"
	"github.com/SAP-F-2025/cinema-service/internal/repositories"
)

const topGenresLimit = 5

type statsService struct {
	repo   repositories.Repository
	cache  *cache.CacheManager
	logger *slog.Logger
}

func NewStatsService(repo repositories.Repository, cm *cache.CacheManager, logger *slog.Logger) StatsService {
	if cm == nil {
		cm = cache.NewCacheManager(nil)
	}
	return &statsService{
		repo:   repo,
		cache:  cm,
		logger: logger,
	}
}

// MovieStats aggregates the movie list and the weekly schedule.
func (s *statsService) MovieStats(ctx context.Context) (*models.MovieStats, error) {
	var stats models.MovieStats
	err := s.cache.Stats.CacheOrExecute(ctx, cache.MovieStatsKey, &stats, cache.StatsCacheConfig.TTL, func() (interface{}, error) {
		return s.computeMovieStats(ctx)
	})
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

func (s *statsService) computeMovieStats(ctx context.Context) (*models.MovieStats, error) {
	summary, err := s.repo.Movie().Summary(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize movies: %w", err)
	}

	movies, _, err := s.repo.Movie().List(ctx, repositories.MovieFilters{})
	if err != nil {
		return nil, fmt.Errorf("failed to list movies: %w", err)
	}

	byDay, err := s.repo.Schedule().CountByDay(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count schedule: %w", err)
	}
	scheduled := make(map[models.Weekday]int64, len(models.Weekdays))
	for _, day := range models.Weekdays {
		scheduled[day] = byDay[day]
	}

	return &models.MovieStats{
		Total:          summary.Total,
		ByStatus:       summary.ByStatus,
		KidsLiked:      summary.KidsLiked,
		AverageRating:  roundTo(summary.AverageRating, 2),
		TopGenres:      topGenres(movies, topGenresLimit),
		ScheduledByDay: scheduled,
		GeneratedAt:    time.Now().UTC(),
	}, nil
}

// topGenres ranks genre ids by how many movies carry them.
func topGenres(movies []*models.Movie, limit int) []models.GenreCount {
	counts := make(map[int]int)
	for _, m := range movies {
		for _, g := range m.GenreIDs {
			counts[g]++
		}
	}

	out := make([]models.GenreCount, 0, len(counts))
	for id, n := range counts {
		out = append(out, models.GenreCount{GenreID: id, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].GenreID < out[j].GenreID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func (s *statsService) SchoolStats(ctx context.Context) (*models.SchoolStats, error) {
	var stats models.SchoolStats
	err := s.cache.Stats.CacheOrExecute(ctx, cache.SchoolStatsKey, &stats, cache.StatsCacheConfig.TTL, func() (interface{}, error) {
		return s.computeSchoolStats(ctx)
	})
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

func (s *statsService) computeSchoolStats(ctx context.Context) (*models.SchoolStats, error) {
	byRole, err := s.repo.User().CountByRole(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count users by role: %w", err)
	}
	byStatus, err := s.repo.User().CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count users by status: %w", err)
	}
	byClass, err := s.repo.User().CountByClass(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count users by class: %w", err)
	}
	classes, err := s.repo.Class().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list classes: %w", err)
	}
	suggestions, err := s.repo.Suggestion().CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count suggestions: %w", err)
	}

	sizes := make([]models.ClassSize, 0, len(classes))
	for _, c := range classes {
		sizes = append(sizes, models.ClassSize{ClassID: c.ID, Name: c.Name, Students: byClass[c.ID]})
	}

	return &models.SchoolStats{
		UsersByRole:        byRole,
		UsersByStatus:      byStatus,
		Classes:            sizes,
		PendingSuggestions: suggestions[string(models.SuggestionPending)],
		GeneratedAt:        time.Now().UTC(),
	}, nil
}
