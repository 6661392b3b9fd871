package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
	"github.com/redis/go-redis/v9"

	"github.com/SAP-F-2025/cinema-service/internal/cache"
	"github.com/SAP-F-2025/cinema-service/internal/models"
)

func TestTokenManagerRoundTrip(t *testing.T) {
	tm := NewTokenManager("secret", "cinema-service", time.Minute, time.Hour)
	user := &models.User{ID: "u1", Email: "t@school.org", Role: models.RoleTeacher}

	pair, err := tm.IssuePair(user)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	claims, err := tm.Parse(pair.AccessToken, TokenTypeAccess)
	if err != nil {
		t.Fatalf("parse access: %v", err)
	}
	if claims.UserID != "u1" || claims.Role != models.RoleTeacher {
		t.Fatalf("unexpected claims %+v", claims)
	}

	if _, err := tm.Parse(pair.RefreshToken, TokenTypeAccess); !errors.Is(err, ErrWrongTokenType) {
		t.Fatalf("expected wrong token type, got %v", err)
	}
	if _, err := tm.Parse(pair.RefreshToken, TokenTypeRefresh); err != nil {
		t.Fatalf("parse refresh: %v", err)
	}
}

func TestTokenManagerRejects(t *testing.T) {
	tm := NewTokenManager("secret", "cinema-service", time.Minute, time.Hour)
	other := NewTokenManager("other", "cinema-service", time.Minute, time.Hour)
	user := &models.User{ID: "u1", Role: models.RoleUser}

	pair, _ := other.IssuePair(user)
	if _, err := tm.Parse(pair.AccessToken, TokenTypeAccess); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected invalid signature, got %v", err)
	}

	expired := NewTokenManager("secret", "cinema-service", time.Minute, time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	old, _ := expired.IssuePair(user)
	if _, err := tm.Parse(old.AccessToken, TokenTypeAccess); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected expired token rejection, got %v", err)
	}

	if _, err := tm.Parse("garbage", TokenTypeAccess); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected garbage rejection, got %v", err)
	}
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("hunter22")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if err := CheckPassword(hash, "hunter22"); err != nil {
		t.Fatalf("expected match: %v", err)
	}
	if err := CheckPassword(hash, "nope"); !errors.Is(err, ErrPasswordMismatch) {
		t.Fatalf("expected mismatch, got %v", err)
	}
	if err := CheckPassword("", "x"); !errors.Is(err, ErrPasswordMismatch) {
		t.Fatalf("expected mismatch for empty hash")
	}
}

func TestLinkStore(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	cm := cache.NewCacheManager(client)
	store := NewLinkStore(cm.Auth, "http://localhost:3000/finish", 15*time.Minute)
	ctx := context.Background()

	link, expires, err := store.Issue(ctx, "kid@school.org", "/movies")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if !strings.HasPrefix(link, "http://localhost:3000/finish?") || !strings.Contains(link, "continue=%2Fmovies") {
		t.Fatalf("unexpected link %s", link)
	}
	if expires.Before(time.Now()) {
		t.Fatalf("expiry in the past")
	}

	token := tokenFromLink(t, link)

	if err := store.Consume(ctx, "other@school.org", token); !errors.Is(err, ErrLinkExpired) {
		t.Fatalf("expected email mismatch rejection, got %v", err)
	}

	link, _, _ = store.Issue(ctx, "kid@school.org", "")
	token = tokenFromLink(t, link)
	if err := store.Consume(ctx, "kid@school.org", token); err != nil {
		t.Fatalf("consume: %v", err)
	}
	if err := store.Consume(ctx, "kid@school.org", token); !errors.Is(err, ErrLinkExpired) {
		t.Fatalf("expected single use, got %v", err)
	}

	link, _, _ = store.Issue(ctx, "kid@school.org", "")
	token = tokenFromLink(t, link)
	mr.FastForward(16 * time.Minute)
	if err := store.Consume(ctx, "kid@school.org", token); !errors.Is(err, ErrLinkExpired) {
		t.Fatalf("expected expiry, got %v", err)
	}
}

func TestLinkStoreWithoutRedis(t *testing.T) {
	store := NewLinkStore(cache.NewCacheManager(nil).Auth, "http://localhost:3000/finish", time.Minute)
	ctx := context.Background()

	if _, _, err := store.Issue(ctx, "kid@school.org", ""); !errors.Is(err, ErrLinksUnavailable) {
		t.Fatalf("Issue() error = %v, want ErrLinksUnavailable", err)
	}
	if err := store.Consume(ctx, "kid@school.org", "token"); !errors.Is(err, ErrLinksUnavailable) {
		t.Fatalf("Consume() error = %v, want ErrLinksUnavailable", err)
	}
}

func tokenFromLink(t *testing.T, link string) string {
	t.Helper()
	i := strings.Index(link, "token=")
	if i < 0 {
		t.Fatalf("no token in %s", link)
	}
	tok := link[i+len("token="):]
	if j := strings.Index(tok, "&"); j >= 0 {
		tok = tok[:j]
	}
	return tok
}

type fakeCasdoor struct {
	claims *casdoorsdk.Claims
	err    error
}

func (f *fakeCasdoor) GetOAuthToken(code, state string) (*casdoorOAuthToken, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &casdoorOAuthToken{AccessToken: "jwt-" + code}, nil
}

func (f *fakeCasdoor) ParseJwtToken(token string) (*casdoorsdk.Claims, error) {
	return f.claims, nil
}

func (f *fakeCasdoor) GetSigninUrl(redirectURI string) string {
	return "https://sso.example/login/oauth/authorize?client_id=x&redirect_uri=" + redirectURI + "&state=app"
}

func TestCasdoorExchange(t *testing.T) {
	claims := &casdoorsdk.Claims{}
	claims.User.Id = "cd-1"
	claims.User.Email = "teach@school.org"
	claims.User.Name = "teach"
	claims.User.Roles = []*casdoorsdk.Role{{Name: "teacher"}}

	p := &casdoorProvider{client: &fakeCasdoor{claims: claims}, redirectURI: "http://localhost/cb"}

	id, err := p.Exchange(context.Background(), "code", "state")
	if err != nil {
		t.Fatalf("exchange: %v", err)
	}
	if id.Subject != "cd-1" || id.Role != string(models.RoleTeacher) || id.DisplayName != "teach" {
		t.Fatalf("unexpected identity %+v", id)
	}

	if !strings.Contains(p.SigninURL("xyz"), "state=xyz") {
		t.Fatalf("expected state in signin url")
	}
}

func TestMapCasdoorRole(t *testing.T) {
	tests := []struct {
		name string
		user casdoorsdk.User
		want models.UserRole
	}{
		{"admin flag", casdoorsdk.User{IsAdmin: true}, models.RoleAdmin},
		{"type teacher", casdoorsdk.User{Type: "Teacher"}, models.RoleTeacher},
		{"student role", casdoorsdk.User{Roles: []*casdoorsdk.Role{{Name: "student"}}}, models.RoleStudent},
		{"teacher wins over student", casdoorsdk.User{Type: "student", Roles: []*casdoorsdk.Role{{Name: "teacher"}}}, models.RoleTeacher},
		{"unknown", casdoorsdk.User{Type: "normal-user"}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := tt.user
			if got := mapCasdoorRole(&u); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}
