package token

import (
	"strings"
	"time"

	"golang.org/x/oauth2"
)

// Persisted key names of the credential pair.
const (
	AccessTokenKey  = "access_token"
	RefreshTokenKey = "refresh_token"
)

// Pair is the credential pair issued on login and replaced wholesale on refresh.
type Pair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// IsZero reports whether neither token is present.
func (p Pair) IsZero() bool {
	return p.AccessToken == "" && p.RefreshToken == ""
}

// HasRefreshToken reports whether a refresh exchange can be attempted.
func (p Pair) HasRefreshToken() bool {
	return strings.TrimSpace(p.RefreshToken) != ""
}

// OAuth2 renders the pair as an oauth2 bearer token. Expiry is taken from the
// access token's exp claim when it can be decoded, and left zero otherwise.
func (p Pair) OAuth2() *oauth2.Token {
	tok := &oauth2.Token{
		AccessToken:  p.AccessToken,
		RefreshToken: p.RefreshToken,
		TokenType:    "Bearer",
	}
	if claims, err := p.Claims(); err == nil && !claims.ExpiresAt.IsZero() {
		tok.Expiry = claims.ExpiresAt
	}
	return tok
}

// Expired reports whether the access token's exp claim lies before now. Tokens
// without a readable exp claim are never considered expired here; the server's
// 401 remains the authority.
func (p Pair) Expired(now time.Time) bool {
	claims, err := p.Claims()
	if err != nil || claims.ExpiresAt.IsZero() {
		return false
	}
	return !claims.ExpiresAt.After(now)
}
