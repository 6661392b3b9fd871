package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"

	"github.com/SAP-F-2025/cinema-service/internal/models"
)

var ErrSSONotConfigured = errors.New("single sign-on is not configured")

type CasdoorConfig struct {
	Endpoint         string
	ClientID         string
	ClientSecret     string
	Certificate      string
	OrganizationName string
	ApplicationName  string
	RedirectURI      string
}

// SSOProvider resolves identities through an OAuth single sign-on server.
type SSOProvider interface {
	SigninURL(state string) string
	Exchange(ctx context.Context, code, state string) (*ExternalIdentity, error)
}

type casdoorClient interface {
	GetOAuthToken(code string, state string) (*casdoorOAuthToken, error)
	ParseJwtToken(token string) (*casdoorsdk.Claims, error)
	GetSigninUrl(redirectURI string) string
}

type casdoorOAuthToken struct {
	AccessToken string
}

// sdkClient narrows the Casdoor SDK client to what sign-in needs.
type sdkClient struct {
	client *casdoorsdk.Client
}

func (s sdkClient) GetOAuthToken(code, state string) (*casdoorOAuthToken, error) {
	tok, err := s.client.GetOAuthToken(code, state)
	if err != nil {
		return nil, err
	}
	return &casdoorOAuthToken{AccessToken: tok.AccessToken}, nil
}

func (s sdkClient) ParseJwtToken(token string) (*casdoorsdk.Claims, error) {
	return s.client.ParseJwtToken(token)
}

func (s sdkClient) GetSigninUrl(redirectURI string) string {
	return s.client.GetSigninUrl(redirectURI)
}

type casdoorProvider struct {
	client      casdoorClient
	redirectURI string
}

// NewCasdoorProvider returns nil when Casdoor is not configured.
func NewCasdoorProvider(cfg CasdoorConfig) SSOProvider {
	if cfg.Endpoint == "" || cfg.ClientID == "" {
		return nil
	}
	client := casdoorsdk.NewClient(
		cfg.Endpoint,
		cfg.ClientID,
		cfg.ClientSecret,
		cfg.Certificate,
		cfg.OrganizationName,
		cfg.ApplicationName,
	)
	return &casdoorProvider{client: sdkClient{client: client}, redirectURI: cfg.RedirectURI}
}

func (p *casdoorProvider) SigninURL(state string) string {
	signin := p.client.GetSigninUrl(p.redirectURI)
	if state == "" {
		return signin
	}
	return strings.Replace(signin, "state=", "state="+state+"&orig_state=", 1)
}

func (p *casdoorProvider) Exchange(ctx context.Context, code, state string) (*ExternalIdentity, error) {
	token, err := p.client.GetOAuthToken(code, state)
	if err != nil {
		return nil, fmt.Errorf("casdoor code exchange: %w", err)
	}

	claims, err := p.client.ParseJwtToken(token.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	return identityFromClaims(claims)
}

func identityFromClaims(claims *casdoorsdk.Claims) (*ExternalIdentity, error) {
	if claims == nil || claims.User.Id == "" {
		return nil, fmt.Errorf("%w: casdoor token has no user id", ErrInvalidToken)
	}

	name := claims.User.DisplayName
	if name == "" {
		name = claims.User.Name
	}

	return &ExternalIdentity{
		Provider:    "casdoor",
		Subject:     claims.User.Id,
		Email:       claims.User.Email,
		DisplayName: name,
		Role:        string(mapCasdoorRole(&claims.User)),
	}, nil
}

// mapCasdoorRole maps the Casdoor admin flag, roles and user type to a role.
// An empty result leaves the role decision to the registration rules.
func mapCasdoorRole(u *casdoorsdk.User) models.UserRole {
	if u.IsAdmin {
		return models.RoleAdmin
	}

	candidates := []string{u.Type}
	for _, r := range u.Roles {
		if r != nil {
			candidates = append(candidates, r.Name)
		}
	}

	role := models.UserRole("")
	for _, c := range candidates {
		switch strings.ToLower(c) {
		case "admin", "administrator":
			return models.RoleAdmin
		case "teacher", "instructor", "educator":
			role = models.RoleTeacher
		case "student", "learner":
			if role == "" {
				role = models.RoleStudent
			}
		}
	}
	return role
}
