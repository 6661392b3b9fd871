package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/SAP-F-2025/cinema-service/internal/cache"
)

var (
	ErrLinkExpired = errors.New("sign-in link is invalid or expired")
	// ErrLinksUnavailable is returned when no Redis backs the store.
	ErrLinksUnavailable = errors.New("sign-in link store unavailable")
)

// LinkStore keeps single-use passwordless sign-in tokens in Redis.
// Only a SHA-256 of the token is stored.
type LinkStore struct {
	cache   *cache.CacheHelper
	baseURL string
	ttl     time.Duration
}

func NewLinkStore(helper *cache.CacheHelper, baseURL string, ttl time.Duration) *LinkStore {
	if ttl <= 0 {
		ttl = cache.AuthCacheConfig.TTL
	}
	return &LinkStore{cache: helper, baseURL: baseURL, ttl: ttl}
}

// Issue creates a token for email and returns the link to mail out.
func (s *LinkStore) Issue(ctx context.Context, email, continueURL string) (string, time.Time, error) {
	if !s.cache.Available() {
		return "", time.Time{}, ErrLinksUnavailable
	}
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", time.Time{}, fmt.Errorf("generate sign-in token: %w", err)
	}
	token := base64.RawURLEncoding.EncodeToString(buf)

	if err := s.cache.SetString(ctx, linkKey(token), email, s.ttl); err != nil {
		return "", time.Time{}, fmt.Errorf("store sign-in token: %w", err)
	}

	link, err := s.buildLink(email, token, continueURL)
	if err != nil {
		return "", time.Time{}, err
	}
	return link, time.Now().UTC().Add(s.ttl), nil
}

// Consume validates and burns a token. The email must match the one it was issued for.
func (s *LinkStore) Consume(ctx context.Context, email, token string) error {
	if !s.cache.Available() {
		return ErrLinksUnavailable
	}
	stored, err := s.cache.GetDelString(ctx, linkKey(token))
	if err != nil {
		if errors.Is(err, cache.ErrCacheNotFound) {
			return ErrLinkExpired
		}
		return fmt.Errorf("consume sign-in token: %w", err)
	}
	if subtle.ConstantTimeCompare([]byte(stored), []byte(email)) != 1 {
		return ErrLinkExpired
	}
	return nil
}

func (s *LinkStore) buildLink(email, token, continueURL string) (string, error) {
	u, err := url.Parse(s.baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid sign-in link base url: %w", err)
	}
	q := u.Query()
	q.Set("email", email)
	q.Set("token", token)
	if continueURL != "" {
		q.Set("continue", continueURL)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func linkKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return "signin:" + hex.EncodeToString(sum[:])
}
