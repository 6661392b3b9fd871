package config

import (
	"log/slog"
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("DB_DRIVER", "memory")
	t.Setenv("EVENTS_BACKEND", "memory")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Port != "8080" {
		t.Fatalf("expected default port 8080, got %s", cfg.Port)
	}
	if cfg.JWT.AccessTTL != 15*time.Minute {
		t.Fatalf("unexpected access ttl %s", cfg.JWT.AccessTTL)
	}
	if cfg.JWT.Secret == "" {
		t.Fatalf("expected development secret fallback")
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Fatalf("expected info level, got %v", cfg.LogLevel)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("DB_DRIVER", "memory")
	t.Setenv("PORT", "9000")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("ADMIN_EMAILS", "Boss@Example.com, other@example.com")
	t.Setenv("SIGN_IN_LINK_TTL", "5m")
	t.Setenv("RATE_LIMIT_PER_MIN", "not-a-number")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Port != "9000" {
		t.Fatalf("expected port 9000, got %s", cfg.Port)
	}
	if cfg.LogLevel != slog.LevelDebug {
		t.Fatalf("expected debug level")
	}
	if !cfg.IsAdminEmail("boss@example.com") {
		t.Fatalf("expected admin email match to be case-insensitive")
	}
	if cfg.SignInLink.TTL != 5*time.Minute {
		t.Fatalf("expected 5m ttl, got %s", cfg.SignInLink.TTL)
	}
	if cfg.RateLimitPerMin != 120 {
		t.Fatalf("expected fallback rate limit, got %d", cfg.RateLimitPerMin)
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name: "memory ok",
			cfg:  Config{DatabaseDriver: "memory", Events: EventsConfig{Backend: "memory"}},
		},
		{
			name:    "unknown driver",
			cfg:     Config{DatabaseDriver: "mysql", Events: EventsConfig{Backend: "memory"}},
			wantErr: true,
		},
		{
			name:    "kafka without brokers",
			cfg:     Config{DatabaseDriver: "memory", Events: EventsConfig{Backend: "kafka"}},
			wantErr: true,
		},
		{
			name:    "production without secret",
			cfg:     Config{Environment: "production", DatabaseDriver: "memory", Events: EventsConfig{Backend: "memory"}},
			wantErr: true,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if tc.wantErr && err == nil {
				t.Fatalf("expected error")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}
