package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SAP-F-2025/cinema-service/internal/auth"
	"github.com/SAP-F-2025/cinema-service/internal/events"
	"github.com/SAP-F-2025/cinema-service/internal/models"
	"github.com/SAP-F-2025/cinema-service/internal/repositories"
	"github.com/SAP-F-2025/cinema-service/internal/utils"
	"github.com/SAP-F-2025/cinema-service/internal/validator"
)

// AuthDependencies groups the identity collaborators of the auth service.
// Google, SSO and Links may be nil when the provider is not configured.
type AuthDependencies struct {
	Tokens      *auth.TokenManager
	Google      auth.GoogleVerifier
	SSO         auth.SSOProvider
	Links       *auth.LinkStore
	AdminEmails []string
}

type authService struct {
	changeNotifier
	repo        repositories.Repository
	deps        AuthDependencies
	adminEmails map[string]bool
	logger      *slog.Logger
	validator   *validator.Validator
}

func NewAuthService(repo repositories.Repository, deps AuthDependencies, notifier changeNotifier, logger *slog.Logger, validator *validator.Validator) AuthService {
	admins := make(map[string]bool, len(deps.AdminEmails))
	for _, email := range deps.AdminEmails {
		admins[utils.NormalizeEmail(email)] = true
	}
	return &authService{
		changeNotifier: notifier,
		repo:           repo,
		deps:           deps,
		adminEmails:    admins,
		logger:         logger,
		validator:      validator,
	}
}

// ===== PASSWORD ACCOUNTS =====

func (s *authService) Register(ctx context.Context, req *RegisterRequest) (*AuthResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, validationFailed(err)
	}
	email := utils.NormalizeEmail(req.Email)

	s.logger.Info("Registering user", "email", email)

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	var user *models.User
	err = s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		if _, err := tx.User().GetByEmail(ctx, email); err == nil {
			return ErrEmailTaken
		} else if !repositories.IsNotFoundError(err) {
			return fmt.Errorf("failed to check email: %w", err)
		}

		user = &models.User{
			Email:        email,
			DisplayName:  strings.TrimSpace(req.DisplayName),
			PasswordHash: hash,
		}
		return s.createAccount(ctx, tx, user, "")
	})
	if err != nil {
		return nil, err
	}

	s.notify(ctx, events.CollectionUsers, events.OpCreated, user.ID)
	s.logger.Info("User registered", "user_id", user.ID, "status", user.Status, "role", user.Role)

	return s.issue(user)
}

func (s *authService) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, validationFailed(err)
	}

	identifier := strings.TrimSpace(req.Identifier)
	var (
		user *models.User
		err  error
	)
	if strings.Contains(identifier, "@") {
		user, err = s.repo.User().GetByEmail(ctx, utils.NormalizeEmail(identifier))
	} else {
		user, err = s.repo.User().GetByLoginID(ctx, identifier)
	}
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if user.PasswordHash == "" || auth.CheckPassword(user.PasswordHash, req.Password) != nil {
		s.logger.Warn("Failed login", "user_id", user.ID)
		return nil, ErrInvalidCredentials
	}

	return s.issue(user)
}

// ===== EXTERNAL IDENTITIES =====

func (s *authService) LoginWithGoogle(ctx context.Context, req *GoogleLoginRequest) (*AuthResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, validationFailed(err)
	}
	if s.deps.Google == nil {
		return nil, fmt.Errorf("%w: google sign-in", ErrUnavailable)
	}

	ident, err := s.deps.Google.Verify(req.IDToken)
	if err != nil {
		if errors.Is(err, auth.ErrGoogleNotConfigured) {
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	return s.signInExternal(ctx, ident)
}

func (s *authService) CasdoorSigninURL(state string) (string, error) {
	if s.deps.SSO == nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, auth.ErrSSONotConfigured)
	}
	return s.deps.SSO.SigninURL(state), nil
}

func (s *authService) LoginWithCasdoor(ctx context.Context, req *CasdoorLoginRequest) (*AuthResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, validationFailed(err)
	}
	if s.deps.SSO == nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, auth.ErrSSONotConfigured)
	}

	ident, err := s.deps.SSO.Exchange(ctx, req.Code, req.State)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	return s.signInExternal(ctx, ident)
}

// SendSignInLink answers the same for every well-formed email so callers cannot
// tell which emails have accounts.
func (s *authService) SendSignInLink(ctx context.Context, req *SignInLinkRequest) error {
	if err := s.validator.Validate(req); err != nil {
		return validationFailed(err)
	}
	if s.deps.Links == nil {
		return fmt.Errorf("%w: email link sign-in", ErrUnavailable)
	}
	email := utils.NormalizeEmail(req.Email)

	link, expiresAt, err := s.deps.Links.Issue(ctx, email, req.ContinueURL)
	if errors.Is(err, auth.ErrLinksUnavailable) {
		return fmt.Errorf("%w: email link sign-in", ErrUnavailable)
	}
	if err != nil {
		return fmt.Errorf("failed to issue sign-in link: %w", err)
	}

	event, err := events.NewEvent(events.TopicSignInLink, events.SignInLinkEvent{
		Email:     email,
		Link:      link,
		ExpiresAt: expiresAt,
	})
	if err != nil {
		return err
	}
	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, events.TopicSignInLink, event); err != nil {
			return fmt.Errorf("failed to queue sign-in link: %w", err)
		}
	}

	s.logger.Info("Sign-in link issued", "email", email, "expires_at", expiresAt)
	return nil
}

func (s *authService) CompleteSignInLink(ctx context.Context, req *CompleteSignInLinkRequest) (*AuthResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, validationFailed(err)
	}
	if s.deps.Links == nil {
		return nil, fmt.Errorf("%w: email link sign-in", ErrUnavailable)
	}
	email := utils.NormalizeEmail(req.Email)

	if err := s.deps.Links.Consume(ctx, email, req.Token); err != nil {
		switch {
		case errors.Is(err, auth.ErrLinkExpired):
			return nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
		case errors.Is(err, auth.ErrLinksUnavailable):
			return nil, fmt.Errorf("%w: email link sign-in", ErrUnavailable)
		}
		return nil, err
	}

	return s.signInExternal(ctx, &auth.ExternalIdentity{Provider: "email", Email: email})
}

// signInExternal finds the account for a verified identity, linking it by
// email or creating it under the registration rules.
func (s *authService) signInExternal(ctx context.Context, ident *auth.ExternalIdentity) (*AuthResponse, error) {
	email := utils.NormalizeEmail(ident.Email)

	var (
		user    *models.User
		created bool
		changed bool
	)
	err := s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		var err error
		user, err = s.findExternal(ctx, tx, ident.Provider, ident.Subject)
		if err != nil && !repositories.IsNotFoundError(err) {
			return err
		}
		if user == nil && email != "" {
			user, err = tx.User().GetByEmail(ctx, email)
			if err != nil && !repositories.IsNotFoundError(err) {
				return fmt.Errorf("failed to load user: %w", err)
			}
		}

		if user == nil {
			user = &models.User{Email: email, DisplayName: ident.DisplayName}
			linkIdentity(user, ident)
			created = true
			return s.createAccount(ctx, tx, user, models.UserRole(ident.Role))
		}

		changed = linkIdentity(user, ident)
		if role := models.UserRole(ident.Role); role.IsValid() && role != user.Role && !s.adminEmails[user.Email] {
			user.Role = role
			if user.Status == models.UserStatusPending {
				user.Status = models.UserStatusApproved
			}
			changed = true
		}
		if changed {
			return tx.User().Update(ctx, user)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	switch {
	case created:
		s.notify(ctx, events.CollectionUsers, events.OpCreated, user.ID)
	case changed:
		s.notify(ctx, events.CollectionUsers, events.OpUpdated, user.ID)
	}

	s.logger.Info("External sign-in", "provider", ident.Provider, "user_id", user.ID, "created", created)
	return s.issue(user)
}

func (s *authService) findExternal(ctx context.Context, tx repositories.Repository, provider, subject string) (*models.User, error) {
	if subject == "" {
		return nil, nil
	}
	switch provider {
	case "google":
		return tx.User().GetByGoogleID(ctx, subject)
	case "casdoor":
		return tx.User().GetByCasdoorID(ctx, subject)
	}
	return nil, nil
}

// linkIdentity stores the provider subject on the user and reports whether it changed.
func linkIdentity(user *models.User, ident *auth.ExternalIdentity) bool {
	if ident.Subject == "" {
		return false
	}
	switch ident.Provider {
	case "google":
		if user.GoogleID != ident.Subject {
			user.GoogleID = ident.Subject
			return true
		}
	case "casdoor":
		if user.CasdoorID != ident.Subject {
			user.CasdoorID = ident.Subject
			return true
		}
	}
	return false
}

// createAccount applies the registration rules and persists user inside tx.
// Admin emails become approved admins, an unused pre-registration yields an
// approved student, a provider-asserted role is trusted as approved, and
// everyone else waits as a pending user.
func (s *authService) createAccount(ctx context.Context, tx repositories.Repository, user *models.User, providerRole models.UserRole) error {
	user.Role = models.RoleUser
	user.Status = models.UserStatusPending
	if user.Language == "" {
		user.Language = "en"
	}

	switch {
	case user.Email != "" && s.adminEmails[user.Email]:
		user.Role = models.RoleAdmin
		user.Status = models.UserStatusApproved
	case providerRole.IsValid() && providerRole != models.RoleUser:
		user.Role = providerRole
		user.Status = models.UserStatusApproved
	case user.Email != "":
		pre, err := tx.PreRegistered().GetByEmail(ctx, user.Email)
		if err != nil && !repositories.IsNotFoundError(err) {
			return fmt.Errorf("failed to check pre-registration: %w", err)
		}
		if pre != nil && !pre.Used {
			if err := tx.PreRegistered().MarkUsed(ctx, pre.ID); err != nil {
				return fmt.Errorf("failed to consume pre-registration: %w", err)
			}
			user.Role = models.RoleStudent
			user.Status = models.UserStatusApproved
		}
	}

	if err := tx.User().Create(ctx, user); err != nil {
		if repositories.IsDuplicateError(err) {
			return ErrEmailTaken
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// ===== SESSIONS =====

func (s *authService) Refresh(ctx context.Context, req *RefreshRequest) (*AuthResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, validationFailed(err)
	}

	claims, err := s.deps.Tokens.Parse(req.RefreshToken, auth.TokenTypeRefresh)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}

	user, err := s.repo.User().GetByID(ctx, claims.UserID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUnauthorized
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return s.issue(user)
}

func (s *authService) Authenticate(ctx context.Context, accessToken string) (*models.User, error) {
	claims, err := s.deps.Tokens.Parse(accessToken, auth.TokenTypeAccess)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}

	user, err := s.repo.User().GetByID(ctx, claims.UserID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUnauthorized
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if user.Status == models.UserStatusRejected {
		return nil, ErrAccountRejected
	}
	return user, nil
}

func (s *authService) Me(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.repo.User().GetByID(ctx, userID)
	if err != nil {
		return nil, repoError(err, ErrUserNotFound, "get user")
	}
	return user, nil
}

func (s *authService) issue(user *models.User) (*AuthResponse, error) {
	if user.Status == models.UserStatusRejected {
		return nil, ErrAccountRejected
	}
	tokens, err := s.deps.Tokens.IssuePair(user)
	if err != nil {
		return nil, fmt.Errorf("failed to issue tokens: %w", err)
	}
	return &AuthResponse{User: user, Tokens: tokens}, nil
}
