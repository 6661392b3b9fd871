package services

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/SAP-F-2025/cinema-service/internal/cache"
	"github.com/SAP-F-2025/cinema-service/internal/events"
	"github.com/SAP-F-2025/cinema-service/internal/models"
	"github.com/SAP-F-2025/cinema-service/internal/repositories/memory"
	"github.com/SAP-F-2025/cinema-service/internal/validator"
)

type testEnv struct {
	repo      *memory.Repository
	publisher *events.MockEventPublisher
	cache     *cache.CacheManager
	redis     *miniredis.Miniredis
	notifier  changeNotifier
	logger    *slog.Logger
	validator *validator.Validator
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	publisher := events.NewMockEventPublisher(logger)
	cm := cache.NewCacheManager(client)

	return &testEnv{
		repo:      memory.NewRepository(),
		publisher: publisher,
		cache:     cm,
		redis:     mr,
		notifier:  changeNotifier{publisher: publisher, cache: cm, logger: logger},
		logger:    logger,
		validator: validator.New(),
	}
}

func (e *testEnv) addUser(t *testing.T, u *models.User) *models.User {
	t.Helper()
	if u.Status == "" {
		u.Status = models.UserStatusApproved
	}
	if u.Role == "" {
		u.Role = models.RoleUser
	}
	if err := e.repo.User().Create(context.Background(), u); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

func (e *testEnv) addClass(t *testing.T, name string) *models.Class {
	t.Helper()
	c, err := NewClassService(e.repo, e.notifier, e.logger, e.validator).Create(context.Background(), &ClassRequest{Name: name})
	if err != nil {
		t.Fatalf("create class: %v", err)
	}
	return c
}

func (e *testEnv) addMovie(t *testing.T, title string) *models.Movie {
	t.Helper()
	m, err := NewMovieService(e.repo, e.notifier, e.logger, e.validator).Create(context.Background(), &CreateMovieRequest{Title: title})
	if err != nil {
		t.Fatalf("create movie: %v", err)
	}
	return m
}

func ptr[T any](v T) *T { return &v }
