package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SAP-F-2025/cinema-service/internal/cache"
	"github.com/SAP-F-2025/cinema-service/internal/events"
	"github.com/SAP-F-2025/cinema-service/internal/repositories"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// normalizePage clamps page/size and returns the matching limit and offset.
func normalizePage(page, size int) (int, int, int, int) {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	return page, size, size, (page - 1) * size
}

// repoError maps a repository not-found onto notFound and wraps anything else.
func repoError(err error, notFound error, operation string) error {
	if repositories.IsNotFoundError(err) {
		return notFound
	}
	return fmt.Errorf("failed to %s: %w", operation, err)
}

// changeNotifier publishes change events and drops the statistics they affect.
type changeNotifier struct {
	publisher events.Publisher
	cache     *cache.CacheManager
	logger    *slog.Logger
}

func (n changeNotifier) notify(ctx context.Context, collection string, op events.ChangeOp, id string) {
	switch collection {
	case events.CollectionMovies, events.CollectionSchedule:
		cache.InvalidateMovieCache(ctx, n.cache)
	case events.CollectionUsers, events.CollectionClasses, events.CollectionSuggestions:
		cache.InvalidateSchoolCache(ctx, n.cache)
	}

	if err := events.PublishChange(ctx, n.publisher, collection, op, id); err != nil {
		n.logger.Warn("Failed to publish change event",
			"collection", collection,
			"op", op,
			"id", id,
			"error", err)
	}
}
