package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/SAP-F-2025/cinema-service/internal/models"
)

const legacyBlob = `{
  "movies": [
    {"id": 14160, "title": "Up", "vote_average": 7.9, "poster_path": "/up.jpg", "genre_ids": [16], "kidsLiked": true},
    {"title": "Coco", "rating": 8, "status": "downloaded"},
    {"id": 862, "title": "toy story"},
    {"title": "   "}
  ],
  "schedule": {
    "Mon": [{"id": 14160, "title": "Up", "classes": ["1A", "unknown"]}],
    "Tue": [{"title": "COCO"}, {"title": "Missing"}],
    "Funday": [{"title": "Up"}]
  }
}`

func TestMigrationService_ImportLegacy(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	svc := NewMigrationService(env.repo, env.notifier, env.logger, env.validator)

	user := env.addUser(t, &models.User{Email: "old@mail.com"})
	class := env.addClass(t, "1A")
	env.addMovie(t, "Toy Story")

	var req LegacyImportRequest
	if err := json.Unmarshal([]byte(legacyBlob), &req); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	result, err := svc.ImportLegacy(ctx, ActorFromUser(user), &req)
	if err != nil {
		t.Fatalf("ImportLegacy() error = %v", err)
	}
	want := models.LegacyImportResult{MoviesImported: 2, MoviesSkipped: 2, ScheduleImported: 2, ScheduleSkipped: 2}
	if *result != want {
		t.Errorf("result = %+v, want %+v", *result, want)
	}

	up, err := env.repo.Movie().GetByTitleKey(ctx, "up")
	if err != nil {
		t.Fatalf("Up not imported: %v", err)
	}
	if up.Rating != 7.9 || !up.KidsLiked || up.TMDBID == nil || *up.TMDBID != 14160 {
		t.Errorf("imported movie = %+v", up)
	}
	coco, _ := env.repo.Movie().GetByTitleKey(ctx, "coco")
	if coco.Status != models.MovieStatusDownloaded {
		t.Errorf("coco status = %s", coco.Status)
	}

	monday, _ := env.repo.Schedule().ListByDay(ctx, models.Monday)
	if len(monday) != 1 || monday[0].MovieID != up.ID {
		t.Fatalf("monday = %+v", monday)
	}
	if got := monday[0].Classes; len(got) != 1 || got[0] != class.ID {
		t.Errorf("classes = %v, want [%s]", got, class.ID)
	}

	reloaded, _ := env.repo.User().GetByID(ctx, user.ID)
	if !reloaded.LegacyMigrated {
		t.Errorf("user not marked migrated")
	}

	if _, err := svc.ImportLegacy(ctx, ActorFromUser(user), &req); !errors.Is(err, ErrAlreadyMigrated) {
		t.Errorf("second import = %v, want ErrAlreadyMigrated", err)
	}
}
