package services

import (
	"context"
	"testing"

	"github.com/SAP-F-2025/cinema-service/internal/cache"
	"github.com/SAP-F-2025/cinema-service/internal/models"
)

func TestStatsService_MovieStatsCachedUntilWrite(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	stats := NewStatsService(env.repo, env.cache, env.logger)
	movies := NewMovieService(env.repo, env.notifier, env.logger, env.validator)
	schedule := NewScheduleService(env.repo, env.notifier, env.logger, env.validator)

	seed := []CreateMovieRequest{
		{Title: "Up", Rating: 8, GenreIDs: []int{16, 10751}, KidsLiked: true},
		{Title: "Coco", Rating: 6, GenreIDs: []int{16}, Status: models.MovieStatusDownloaded},
		{Title: "Heat", GenreIDs: []int{80}},
	}
	var up *models.Movie
	for i := range seed {
		m, err := movies.Create(ctx, &seed[i])
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		if up == nil {
			up = m
		}
	}
	if _, err := schedule.Create(ctx, &CreateScheduleEntryRequest{Day: models.Wednesday, MovieID: up.ID}); err != nil {
		t.Fatalf("schedule: %v", err)
	}

	got, err := stats.MovieStats(ctx)
	if err != nil {
		t.Fatalf("MovieStats() error = %v", err)
	}
	if got.Total != 3 || got.KidsLiked != 1 || got.AverageRating != 7 {
		t.Errorf("stats = %+v", got)
	}
	if got.ByStatus["wishlist"] != 2 || got.ByStatus["downloaded"] != 1 {
		t.Errorf("by status = %v", got.ByStatus)
	}
	if len(got.TopGenres) == 0 || got.TopGenres[0] != (models.GenreCount{GenreID: 16, Count: 2}) {
		t.Errorf("top genres = %v", got.TopGenres)
	}
	if got.ScheduledByDay[models.Wednesday] != 1 || len(got.ScheduledByDay) != 7 {
		t.Errorf("scheduled by day = %v", got.ScheduledByDay)
	}
	if !env.redis.Exists(cache.StatsCacheConfig.Prefix + cache.MovieStatsKey) {
		t.Fatalf("expected movie stats to be cached")
	}

	if _, err := movies.Create(ctx, &CreateMovieRequest{Title: "Cars"}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if env.redis.Exists(cache.StatsCacheConfig.Prefix + cache.MovieStatsKey) {
		t.Errorf("movie write should invalidate cached stats")
	}
	got, _ = stats.MovieStats(ctx)
	if got.Total != 4 {
		t.Errorf("total after write = %d, want 4", got.Total)
	}
}

func TestStatsService_SchoolStats(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	stats := NewStatsService(env.repo, nil, env.logger)
	suggestions := NewSuggestionService(env.repo, env.notifier, env.logger, env.validator)

	class := env.addClass(t, "4A")
	env.addUser(t, &models.User{LoginID: "k1", Role: models.RoleStudent, StudentClass: class.ID})
	env.addUser(t, &models.User{LoginID: "k2", Role: models.RoleStudent, StudentClass: class.ID})
	env.addUser(t, &models.User{Email: "t@s.org", Role: models.RoleTeacher})
	env.addUser(t, &models.User{Email: "p@s.org", Status: models.UserStatusPending})
	if _, err := suggestions.Create(ctx, Actor{UserID: "u"}, &CreateSuggestionRequest{Title: "Annie"}); err != nil {
		t.Fatalf("suggestion: %v", err)
	}

	got, err := stats.SchoolStats(ctx)
	if err != nil {
		t.Fatalf("SchoolStats() error = %v", err)
	}
	if got.UsersByRole["student"] != 2 || got.UsersByRole["teacher"] != 1 || got.UsersByStatus["pending"] != 1 {
		t.Errorf("user counts = %v / %v", got.UsersByRole, got.UsersByStatus)
	}
	if len(got.Classes) != 1 || got.Classes[0].Students != 2 || got.Classes[0].Name != "4A" {
		t.Errorf("classes = %+v", got.Classes)
	}
	if got.PendingSuggestions != 1 {
		t.Errorf("pending suggestions = %d, want 1", got.PendingSuggestions)
	}
}
