// Package identity verifies federated (Google / OpenID Connect) ID tokens
// before they are exchanged for storefront credentials.
package identity

import (
	"context"
	"crypto"
	"fmt"

	"github.com/coreos/go-oidc/v3/oidc"
	storeerrors "github.com/jrsteele09/go-storefront/internal/errors"
)

// Identity is the verified subject of an ID token.
type Identity struct {
	Issuer        string
	Subject       string
	Email         string
	EmailVerified bool
	Name          string
	Picture       string
}

type Verifier struct {
	verifier *oidc.IDTokenVerifier
}

// NewProviderVerifier discovers issuer's keys through its OpenID configuration.
func NewProviderVerifier(ctx context.Context, issuer, clientID string) (*Verifier, error) {
	if clientID == "" {
		return nil, fmt.Errorf("oidc client id: %w", storeerrors.ErrInvalidRequest)
	}
	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("oidc provider %s: %w", issuer, err)
	}
	return &Verifier{verifier: provider.Verifier(&oidc.Config{ClientID: clientID})}, nil
}

// NewStaticVerifier verifies against a fixed set of public keys.
func NewStaticVerifier(issuer, clientID string, keys ...crypto.PublicKey) *Verifier {
	keySet := &oidc.StaticKeySet{PublicKeys: keys}
	return &Verifier{verifier: oidc.NewVerifier(issuer, keySet, &oidc.Config{ClientID: clientID})}
}

// Verify checks signature, issuer, audience and expiry of rawIDToken.
func (v *Verifier) Verify(ctx context.Context, rawIDToken string) (Identity, error) {
	idToken, err := v.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", storeerrors.ErrInvalidToken, err)
	}

	var claims struct {
		Email         string `json:"email"`
		EmailVerified bool   `json:"email_verified"`
		Name          string `json:"name"`
		Picture       string `json:"picture"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return Identity{}, fmt.Errorf("%w: %v", storeerrors.ErrInvalidToken, err)
	}

	return Identity{
		Issuer:        idToken.Issuer,
		Subject:       idToken.Subject,
		Email:         claims.Email,
		EmailVerified: claims.EmailVerified,
		Name:          claims.Name,
		Picture:       claims.Picture,
	}, nil
}
