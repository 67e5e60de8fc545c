package token_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-storefront/token"
	"github.com/stretchr/testify/require"
)

func signedAccessToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return s
}

func TestPairClaims(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	pair := token.Pair{
		AccessToken: signedAccessToken(t, jwt.MapClaims{
			"sub":   "user-1",
			"email": "ana@example.com",
			"name":  "Ana Souza",
			"roles": []string{"customer", "supplier"},
			"exp":   exp.Unix(),
		}),
		RefreshToken: "refresh-1",
	}

	claims, err := pair.Claims()
	require.NoError(t, err)
	require.Equal(t, "user-1", claims.Subject)
	require.Equal(t, "ana@example.com", claims.Email)
	require.Equal(t, "Ana Souza", claims.Name)
	require.True(t, claims.HasRole("supplier"))
	require.False(t, claims.HasRole("admin"))
	require.True(t, claims.ExpiresAt.Equal(exp))
}

func TestPairClaimsRejectsOpaqueToken(t *testing.T) {
	_, err := token.Pair{AccessToken: "not-a-jwt"}.Claims()
	require.Error(t, err)

	_, err = token.Pair{}.Claims()
	require.Error(t, err)
}

func TestPairOAuth2(t *testing.T) {
	exp := time.Now().Add(30 * time.Minute).Truncate(time.Second)
	pair := token.Pair{
		AccessToken:  signedAccessToken(t, jwt.MapClaims{"sub": "user-1", "exp": exp.Unix()}),
		RefreshToken: "refresh-1",
	}

	tok := pair.OAuth2()
	require.Equal(t, pair.AccessToken, tok.AccessToken)
	require.Equal(t, "refresh-1", tok.RefreshToken)
	require.Equal(t, "Bearer", tok.Type())
	require.True(t, tok.Expiry.Equal(exp))

	opaque := token.Pair{AccessToken: "opaque"}.OAuth2()
	require.True(t, opaque.Expiry.IsZero())
}

func TestPairExpired(t *testing.T) {
	now := time.Now()
	expired := token.Pair{AccessToken: signedAccessToken(t, jwt.MapClaims{"exp": now.Add(-time.Minute).Unix()})}
	fresh := token.Pair{AccessToken: signedAccessToken(t, jwt.MapClaims{"exp": now.Add(time.Minute).Unix()})}

	require.True(t, expired.Expired(now))
	require.False(t, fresh.Expired(now))
	require.False(t, token.Pair{AccessToken: "opaque"}.Expired(now))
}

func TestPairPresence(t *testing.T) {
	require.True(t, token.Pair{}.IsZero())
	require.False(t, token.Pair{AccessToken: "a"}.IsZero())
	require.False(t, token.Pair{AccessToken: "a", RefreshToken: "  "}.HasRefreshToken())
	require.True(t, token.Pair{RefreshToken: "r"}.HasRefreshToken())
}
