package services

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/SAP-F-2025/cinema-service/internal/auth"
	"github.com/SAP-F-2025/cinema-service/internal/cache"
	"github.com/SAP-F-2025/cinema-service/internal/events"
	"github.com/SAP-F-2025/cinema-service/internal/models"
)

type fakeGoogle struct {
	ident *auth.ExternalIdentity
	err   error
}

func (f *fakeGoogle) Verify(string) (*auth.ExternalIdentity, error) { return f.ident, f.err }

func newTestAuthService(env *testEnv, google auth.GoogleVerifier) AuthService {
	deps := AuthDependencies{
		Tokens:      auth.NewTokenManager("test-secret", "cinema-test", time.Hour, 24*time.Hour),
		Google:      google,
		Links:       auth.NewLinkStore(env.cache.Auth, "https://cinema.example/finish", 15*time.Minute),
		AdminEmails: []string{"Boss@School.org"},
	}
	return NewAuthService(env.repo, deps, env.notifier, env.logger, env.validator)
}

func TestAuthService_RegisterRoles(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	svc := newTestAuthService(env, nil)

	if err := env.repo.PreRegistered().Create(ctx, &models.PreRegisteredEmail{Email: "kid@school.org"}); err != nil {
		t.Fatalf("pre-register: %v", err)
	}

	tests := []struct {
		name       string
		email      string
		wantRole   models.UserRole
		wantStatus models.UserStatus
	}{
		{name: "plain user waits", email: "someone@mail.com", wantRole: models.RoleUser, wantStatus: models.UserStatusPending},
		{name: "pre-registered student", email: "KID@school.org", wantRole: models.RoleStudent, wantStatus: models.UserStatusApproved},
		{name: "admin bootstrap", email: "boss@school.org", wantRole: models.RoleAdmin, wantStatus: models.UserStatusApproved},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := svc.Register(ctx, &RegisterRequest{Email: tt.email, Password: "secret1"})
			if err != nil {
				t.Fatalf("Register() error = %v", err)
			}
			if resp.User.Role != tt.wantRole || resp.User.Status != tt.wantStatus {
				t.Errorf("got %s/%s, want %s/%s", resp.User.Role, resp.User.Status, tt.wantRole, tt.wantStatus)
			}
			if resp.Tokens == nil || resp.Tokens.AccessToken == "" {
				t.Errorf("expected tokens")
			}
		})
	}

	pre, err := env.repo.PreRegistered().GetByEmail(ctx, "kid@school.org")
	if err != nil || !pre.Used {
		t.Errorf("pre-registration should be used, got %+v, %v", pre, err)
	}

	_, err = svc.Register(ctx, &RegisterRequest{Email: "Someone@mail.com", Password: "secret1"})
	if !errors.Is(err, ErrEmailTaken) {
		t.Errorf("expected ErrEmailTaken, got %v", err)
	}

	if got := len(env.publisher.EventsOnTopic(events.ChangeTopic(events.CollectionUsers))); got != 3 {
		t.Errorf("expected 3 user change events, got %d", got)
	}
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	svc := newTestAuthService(env, nil)

	hash, _ := auth.HashPassword("secret1")
	env.addUser(t, &models.User{Email: "t@school.org", PasswordHash: hash, Role: models.RoleTeacher})
	env.addUser(t, &models.User{LoginID: "kid01", PasswordHash: hash, Role: models.RoleStudent})
	env.addUser(t, &models.User{Email: "bad@school.org", PasswordHash: hash, Status: models.UserStatusRejected})

	tests := []struct {
		name       string
		identifier string
		password   string
		wantErr    error
	}{
		{name: "email", identifier: " T@School.org ", password: "secret1"},
		{name: "login id", identifier: "kid01", password: "secret1"},
		{name: "wrong password", identifier: "kid01", password: "nope", wantErr: ErrInvalidCredentials},
		{name: "unknown", identifier: "ghost@school.org", password: "secret1", wantErr: ErrInvalidCredentials},
		{name: "rejected", identifier: "bad@school.org", password: "secret1", wantErr: ErrAccountRejected},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Login(ctx, &LoginRequest{Identifier: tt.identifier, Password: tt.password})
			if tt.wantErr == nil && err != nil {
				t.Fatalf("Login() error = %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("Login() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestAuthService_RefreshAndAuthenticate(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	svc := newTestAuthService(env, nil)

	resp, err := svc.Register(ctx, &RegisterRequest{Email: "a@b.com", Password: "secret1"})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	user, err := svc.Authenticate(ctx, resp.Tokens.AccessToken)
	if err != nil || user.ID != resp.User.ID {
		t.Fatalf("Authenticate() = %v, %v", user, err)
	}
	if _, err := svc.Authenticate(ctx, resp.Tokens.RefreshToken); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("refresh token must not authenticate, got %v", err)
	}

	again, err := svc.Refresh(ctx, &RefreshRequest{RefreshToken: resp.Tokens.RefreshToken})
	if err != nil || again.User.ID != resp.User.ID {
		t.Fatalf("Refresh() = %v, %v", again, err)
	}
}

func TestAuthService_SignInLink(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	svc := newTestAuthService(env, nil)

	if err := svc.SendSignInLink(ctx, &SignInLinkRequest{Email: "New@Mail.com"}); err != nil {
		t.Fatalf("SendSignInLink() error = %v", err)
	}

	sent := env.publisher.EventsOnTopic(events.TopicSignInLink)
	if len(sent) != 1 {
		t.Fatalf("expected one sign-in event, got %d", len(sent))
	}
	var payload events.SignInLinkEvent
	if err := sent[0].Decode(&payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	link, err := url.Parse(payload.Link)
	if err != nil {
		t.Fatalf("parse link: %v", err)
	}
	token := link.Query().Get("token")

	resp, err := svc.CompleteSignInLink(ctx, &CompleteSignInLinkRequest{Email: "new@mail.com", Token: token})
	if err != nil {
		t.Fatalf("CompleteSignInLink() error = %v", err)
	}
	if resp.User.Email != "new@mail.com" || resp.User.Status != models.UserStatusPending {
		t.Errorf("unexpected user %+v", resp.User)
	}

	_, err = svc.CompleteSignInLink(ctx, &CompleteSignInLinkRequest{Email: "new@mail.com", Token: token})
	if !errors.Is(err, ErrUnauthorized) {
		t.Errorf("second use should fail with ErrUnauthorized, got %v", err)
	}
}

func TestAuthService_SignInLinkWithoutRedis(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	deps := AuthDependencies{
		Tokens: auth.NewTokenManager("test-secret", "cinema-test", time.Hour, 24*time.Hour),
		Links:  auth.NewLinkStore(cache.NewCacheManager(nil).Auth, "https://cinema.example/finish", 15*time.Minute),
	}
	svc := NewAuthService(env.repo, deps, env.notifier, env.logger, env.validator)

	if err := svc.SendSignInLink(ctx, &SignInLinkRequest{Email: "kid@school.org"}); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("SendSignInLink() error = %v, want ErrUnavailable", err)
	}
	if n := len(env.publisher.EventsOnTopic(events.TopicSignInLink)); n != 0 {
		t.Fatalf("no link should be mailed, got %d events", n)
	}
	_, err := svc.CompleteSignInLink(ctx, &CompleteSignInLinkRequest{Email: "kid@school.org", Token: "abc"})
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("CompleteSignInLink() error = %v, want ErrUnavailable", err)
	}
}

func TestAuthService_LoginWithGoogle(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	existing := env.addUser(t, &models.User{Email: "teach@school.org", Role: models.RoleTeacher})

	google := &fakeGoogle{ident: &auth.ExternalIdentity{Provider: "google", Subject: "g-1", Email: "Teach@school.org"}}
	svc := newTestAuthService(env, google)

	resp, err := svc.LoginWithGoogle(ctx, &GoogleLoginRequest{IDToken: "token"})
	if err != nil {
		t.Fatalf("LoginWithGoogle() error = %v", err)
	}
	if resp.User.ID != existing.ID || resp.User.GoogleID != "g-1" {
		t.Errorf("expected linked existing user, got %+v", resp.User)
	}

	google.err = auth.ErrInvalidToken
	if _, err := svc.LoginWithGoogle(ctx, &GoogleLoginRequest{IDToken: "token"}); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized, got %v", err)
	}

	noGoogle := newTestAuthService(env, nil)
	if _, err := noGoogle.LoginWithGoogle(ctx, &GoogleLoginRequest{IDToken: "token"}); !errors.Is(err, ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}
}
