package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/SAP-F-2025/cinema-service/internal/auth"
	"github.com/SAP-F-2025/cinema-service/internal/cache"
	"github.com/SAP-F-2025/cinema-service/internal/events"
	"github.com/SAP-F-2025/cinema-service/internal/metrics"
	"github.com/SAP-F-2025/cinema-service/internal/models"
	"github.com/SAP-F-2025/cinema-service/internal/repositories/memory"
	"github.com/SAP-F-2025/cinema-service/internal/services"
	"github.com/SAP-F-2025/cinema-service/internal/tmdb"
	"github.com/SAP-F-2025/cinema-service/internal/utils"
	"github.com/SAP-F-2025/cinema-service/internal/validator"
)

type testAPI struct {
	router *gin.Engine
	repo   *memory.Repository
	tokens *auth.TokenManager
	bus    *events.Bus
	redis  *miniredis.Miniredis
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	slogger := slog.New(slog.NewTextHandler(io.Discard, nil))
	logger := utils.NewSlogLogger(slogger)

	bus, err := events.NewBus(events.BusConfig{Backend: "memory"}, slogger)
	if err != nil {
		t.Fatalf("NewBus() error = %v", err)
	}
	t.Cleanup(func() { bus.Close() })

	cm := cache.NewCacheManager(client)
	repo := memory.NewRepository()
	tokens := auth.NewTokenManager("handler-secret", "cinema-test", time.Hour, 24*time.Hour)

	sm := services.NewServiceManager(services.ServiceDependencies{
		Repo:      repo,
		Publisher: bus,
		Cache:     cm,
		Auth: services.AuthDependencies{
			Tokens:      tokens,
			Links:       auth.NewLinkStore(cm.Auth, "https://cinema.example/finish", 15*time.Minute),
			AdminEmails: []string{"admin@school.org"},
		},
		Metadata: tmdb.New(tmdb.Config{}, cm.TMDB),
	}, slogger, validator.New())
	if err := sm.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}

	m := metrics.New(nil)
	router := gin.New()
	SetupMiddleware(router, logger, MiddlewareConfig{CORSOrigins: []string{"*"}, Metrics: m})
	NewHandlerManager(sm, RouterDependencies{
		Subscriber:    bus,
		Cache:         cm,
		Metrics:       m,
		EventsBackend: bus.Backend(),
		Heartbeat:     time.Hour,
	}, logger).SetupRoutes(router)

	return &testAPI{router: router, repo: repo, tokens: tokens, bus: bus, redis: mr}
}

// login stores an approved account with the role and returns its access token.
func (a *testAPI) login(t *testing.T, role models.UserRole) (*models.User, string) {
	t.Helper()
	user := &models.User{
		Email:  string(role) + "-" + uuid.NewString()[:8] + "@school.org",
		Role:   role,
		Status: models.UserStatusApproved,
	}
	if err := a.repo.User().Create(context.Background(), user); err != nil {
		t.Fatalf("create user: %v", err)
	}
	pair, err := a.tokens.IssuePair(user)
	if err != nil {
		t.Fatalf("IssuePair() error = %v", err)
	}
	return user, pair.AccessToken
}

func (a *testAPI) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, dest interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), dest); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
}

func expectStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	if w.Code != want {
		t.Fatalf("status = %d, want %d, body = %s", w.Code, want, w.Body.String())
	}
}
