package auth

import (
	"errors"
	"fmt"

	googleAuthIDTokenVerifier "github.com/futurenda/google-auth-id-token-verifier"
)

var ErrGoogleNotConfigured = errors.New("google sign-in is not configured")

// ExternalIdentity is a verified identity asserted by an outside provider.
type ExternalIdentity struct {
	Provider    string
	Subject     string
	Email       string
	DisplayName string
	// Role is a role suggested by the provider, empty when it asserts none.
	Role string
}

type GoogleVerifier interface {
	Verify(idToken string) (*ExternalIdentity, error)
}

type googleVerifier struct {
	clientID string
}

func NewGoogleVerifier(clientID string) GoogleVerifier {
	return &googleVerifier{clientID: clientID}
}

func (g *googleVerifier) Verify(idToken string) (*ExternalIdentity, error) {
	if g.clientID == "" {
		return nil, ErrGoogleNotConfigured
	}

	v := googleAuthIDTokenVerifier.Verifier{}
	if err := v.VerifyIDToken(idToken, []string{g.clientID}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claimSet, err := googleAuthIDTokenVerifier.Decode(idToken)
	if err != nil {
		return nil, fmt.Errorf("decode google id token: %w", err)
	}
	if claimSet.Email == "" {
		return nil, fmt.Errorf("%w: google token has no email", ErrInvalidToken)
	}

	return &ExternalIdentity{
		Provider:    "google",
		Subject:     claimSet.Sub,
		Email:       claimSet.Email,
		DisplayName: claimSet.Name,
	}, nil
}
