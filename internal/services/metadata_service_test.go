package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/SAP-F-2025/cinema-service/internal/models"
	"github.com/SAP-F-2025/cinema-service/internal/tmdb"
)

type fakeProvider struct {
	configured bool
	details    map[int64]*tmdb.MovieResult
	err        error
	calls      int
}

func (f *fakeProvider) Configured() bool { return f.configured }

func (f *fakeProvider) Search(ctx context.Context, query string, page int, language string) (*tmdb.SearchResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &tmdb.SearchResult{Page: page, Results: []tmdb.MovieResult{{TMDBID: 1, Title: query}}}, nil
}

func (f *fakeProvider) Videos(ctx context.Context, tmdbID int64, language string) ([]tmdb.Video, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []tmdb.Video{{Key: "abc", Site: "YouTube", Type: "Trailer"}}, nil
}

func (f *fakeProvider) Details(ctx context.Context, tmdbID int64, language string) (*tmdb.MovieResult, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	d, ok := f.details[tmdbID]
	if !ok {
		return nil, tmdb.ErrNotFound
	}
	return d, nil
}

func TestMetadataService_ErrorMapping(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	tests := []struct {
		name string
		err  error
		want error
	}{
		{name: "not configured", err: tmdb.ErrNotConfigured, want: ErrUnavailable},
		{name: "not found", err: tmdb.ErrNotFound, want: ErrNotFound},
		{name: "upstream", err: fmt.Errorf("%w: status 401: Invalid API key", tmdb.ErrUpstream), want: ErrUpstream},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewMetadataService(env.repo, &fakeProvider{configured: true, err: tt.err}, env.notifier, env.logger)
			if _, err := svc.Search(ctx, "up", 1, ""); !errors.Is(err, tt.want) {
				t.Errorf("Search() = %v, want %v", err, tt.want)
			}
			if _, err := svc.Videos(ctx, 1, ""); !errors.Is(err, tt.want) {
				t.Errorf("Videos() = %v, want %v", err, tt.want)
			}
		})
	}

	svc := NewMetadataService(env.repo, &fakeProvider{configured: true}, env.notifier, env.logger)
	if _, err := svc.Search(ctx, "  ", 1, ""); !errors.Is(err, ErrValidationFailed) {
		t.Errorf("blank query = %v, want ErrValidationFailed", err)
	}
}

func TestMetadataService_RefreshMovies(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	movies := NewMovieService(env.repo, env.notifier, env.logger, env.validator)
	schedule := NewScheduleService(env.repo, env.notifier, env.logger, env.validator)

	linked, _ := movies.Create(ctx, &CreateMovieRequest{Title: "Up", TMDBID: ptr(int64(14160)), Rating: 7, PosterPath: "/old.jpg"})
	same, _ := movies.Create(ctx, &CreateMovieRequest{Title: "Coco", TMDBID: ptr(int64(354912)), Rating: 8.2, Overview: "Miguel"})
	gone, _ := movies.Create(ctx, &CreateMovieRequest{Title: "Lost", TMDBID: ptr(int64(1))})
	env.addMovie(t, "Manual")
	if _, err := schedule.Create(ctx, &CreateScheduleEntryRequest{Day: models.Monday, MovieID: linked.ID}); err != nil {
		t.Fatalf("schedule: %v", err)
	}

	provider := &fakeProvider{configured: true, details: map[int64]*tmdb.MovieResult{
		14160:  {TMDBID: 14160, Rating: 7.9, PosterPath: "/new.jpg", Overview: "Balloons"},
		354912: {TMDBID: 354912, Rating: 8.2, Overview: "Miguel"},
	}}
	svc := NewMetadataService(env.repo, provider, env.notifier, env.logger)

	updated, err := svc.RefreshMovies(ctx)
	if err != nil {
		t.Fatalf("RefreshMovies() error = %v", err)
	}
	if updated != 1 || provider.calls != 3 {
		t.Errorf("updated = %d calls = %d, want 1 and 3", updated, provider.calls)
	}

	got, _ := env.repo.Movie().GetByID(ctx, linked.ID)
	if got.Rating != 7.9 || got.PosterPath != "/new.jpg" || got.Overview != "Balloons" {
		t.Errorf("movie not refreshed: %+v", got)
	}
	entries, _ := env.repo.Schedule().List(ctx)
	if entries[0].PosterPath != "/new.jpg" {
		t.Errorf("schedule poster = %q, want /new.jpg", entries[0].PosterPath)
	}
	if unchanged, _ := env.repo.Movie().GetByID(ctx, same.ID); unchanged.Rating != 8.2 {
		t.Errorf("unchanged movie modified: %+v", unchanged)
	}
	if lost, _ := env.repo.Movie().GetByID(ctx, gone.ID); lost == nil {
		t.Errorf("movie without metadata must be kept")
	}

	off := NewMetadataService(env.repo, &fakeProvider{}, env.notifier, env.logger)
	if _, err := off.RefreshMovies(ctx); !errors.Is(err, ErrUnavailable) {
		t.Errorf("unconfigured refresh = %v, want ErrUnavailable", err)
	}
}
