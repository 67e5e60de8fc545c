package token

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	storeerrors "github.com/jrsteele09/go-storefront/internal/errors"
)

// Claims is the client's view of the access token payload. It is decoded
// without signature verification: the client only uses it for display and
// expiry hints, the API verifies the token on every call.
type Claims struct {
	Subject   string
	Email     string
	Name      string
	Roles     []string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

type accessClaims struct {
	Email string   `json:"email"`
	Name  string   `json:"name"`
	Roles []string `json:"roles"`
	jwt.RegisteredClaims
}

// HasRole reports whether the token grants role.
func (c Claims) HasRole(role string) bool {
	for _, r := range c.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// Claims decodes the access token payload.
func (p Pair) Claims() (Claims, error) {
	if p.AccessToken == "" {
		return Claims{}, storeerrors.ErrInvalidToken
	}

	var ac accessClaims
	if _, _, err := jwt.NewParser().ParseUnverified(p.AccessToken, &ac); err != nil {
		return Claims{}, fmt.Errorf("%w: %v", storeerrors.ErrInvalidToken, err)
	}

	claims := Claims{
		Subject: ac.Subject,
		Email:   ac.Email,
		Name:    ac.Name,
		Roles:   ac.Roles,
	}
	if ac.IssuedAt != nil {
		claims.IssuedAt = ac.IssuedAt.Time
	}
	if ac.ExpiresAt != nil {
		claims.ExpiresAt = ac.ExpiresAt.Time
	}
	return claims, nil
}
