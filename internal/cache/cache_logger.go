package cache

import (
	"context"
	"log/slog"
	"strconv"
)

const (
	MovieStatsKey  = "movies"
	SchoolStatsKey = "school"
)

// SafeInvalidatePattern invalidates a cache pattern, logging failures
func SafeInvalidatePattern(ctx context.Context, helper *CacheHelper, pattern string) {
	if err := helper.InvalidatePattern(ctx, pattern); err != nil {
		slog.ErrorContext(ctx, "Failed to invalidate cache pattern",
			"error", err,
			"pattern", pattern)
	}
}

// SafeDelete deletes cache keys, logging failures
func SafeDelete(ctx context.Context, helper *CacheHelper, keys ...string) {
	if err := helper.Delete(ctx, keys...); err != nil {
		slog.ErrorContext(ctx, "Failed to delete cache keys",
			"error", err,
			"keys", keys)
	}
}

// InvalidateMovieCache drops statistics derived from movies and the schedule.
func InvalidateMovieCache(ctx context.Context, cm *CacheManager) {
	if cm == nil {
		return
	}
	SafeDelete(ctx, cm.Stats, MovieStatsKey)
}

// InvalidateSchoolCache drops statistics derived from users, classes and suggestions.
func InvalidateSchoolCache(ctx context.Context, cm *CacheManager) {
	if cm == nil {
		return
	}
	SafeDelete(ctx, cm.Stats, SchoolStatsKey)
}

// InvalidateTMDBCache drops every cached TMDB response for the given movie.
func InvalidateTMDBCache(ctx context.Context, cm *CacheManager, tmdbID int64) {
	if cm == nil {
		return
	}
	SafeInvalidatePattern(ctx, cm.TMDB, "details:"+strconv.FormatInt(tmdbID, 10)+":*")
}
