package mockapi

import (
	"strconv"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

const (
	DefaultAccessTTL  = 15 * time.Minute
	DefaultRefreshTTL = 7 * 24 * time.Hour
)

var (
	errTokenInvalid   = errors.New("invalid token")
	errRefreshUnknown = errors.New("unknown refresh token")
)

type accessClaims struct {
	Email      string   `json:"email"`
	Name       string   `json:"name"`
	Roles      []string `json:"roles"`
	Generation int64    `json:"gen"`
	jwt.RegisteredClaims
}

type refreshRecord struct {
	UserID    int64
	ExpiresAt time.Time
}

// tokenIssuer signs HS256 access tokens and keeps rotating opaque refresh
// tokens. Bumping the generation expires every access token issued so far.
type tokenIssuer struct {
	issuer     string
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time

	generation int64
	refresh    map[string]refreshRecord
	exchanges  int
	lock       sync.Mutex
}

func newTokenIssuer(issuer, secret string) *tokenIssuer {
	return &tokenIssuer{
		issuer:     issuer,
		secret:     []byte(secret),
		accessTTL:  DefaultAccessTTL,
		refreshTTL: DefaultRefreshTTL,
		now:        time.Now,
		refresh:    make(map[string]refreshRecord),
	}
}

type tokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

func (t *tokenIssuer) issue(u *user) (tokenPair, error) {
	t.lock.Lock()
	defer t.lock.Unlock()
	return t.issueLocked(u)
}

func (t *tokenIssuer) issueLocked(u *user) (tokenPair, error) {
	now := t.now()
	claims := accessClaims{
		Email:      u.Email,
		Name:       u.Name,
		Roles:      u.Roles,
		Generation: t.generation,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    t.issuer,
			Subject:   strconv.FormatInt(u.ID, 10),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.accessTTL)),
		},
	}
	access, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return tokenPair{}, errors.Wrap(err, "tokenIssuer.issue SignedString")
	}

	refresh := uuid.NewString()
	t.refresh[refresh] = refreshRecord{UserID: u.ID, ExpiresAt: now.Add(t.refreshTTL)}
	return tokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// verify returns the user id of a valid access token of the current
// generation.
func (t *tokenIssuer) verify(raw string) (int64, error) {
	var claims accessClaims
	_, err := jwt.ParseWithClaims(raw, &claims, func(token *jwt.Token) (any, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(t.issuer),
		jwt.WithTimeFunc(t.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return 0, errors.Wrap(errTokenInvalid, err.Error())
	}

	t.lock.Lock()
	generation := t.generation
	t.lock.Unlock()
	if claims.Generation != generation {
		return 0, errors.Wrapf(errTokenInvalid, "token from generation %d", claims.Generation)
	}

	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return 0, errors.Wrapf(errTokenInvalid, "subject %q", claims.Subject)
	}
	return id, nil
}

// rotate spends refresh and issues a new pair for its owner. lookup resolves
// the owner while the issuer lock is held.
func (t *tokenIssuer) rotate(refresh string, lookup func(int64) (*user, bool)) (tokenPair, *user, error) {
	t.lock.Lock()
	defer t.lock.Unlock()

	rec, ok := t.refresh[refresh]
	if !ok {
		return tokenPair{}, nil, errRefreshUnknown
	}
	delete(t.refresh, refresh)
	if t.now().After(rec.ExpiresAt) {
		return tokenPair{}, nil, errors.Wrap(errRefreshUnknown, "expired")
	}
	u, ok := lookup(rec.UserID)
	if !ok {
		return tokenPair{}, nil, errors.Wrapf(errRefreshUnknown, "owner %d gone", rec.UserID)
	}

	t.exchanges++
	pair, err := t.issueLocked(u)
	return pair, u, err
}

func (t *tokenIssuer) expireAccessTokens() {
	t.lock.Lock()
	defer t.lock.Unlock()
	t.generation++
}

func (t *tokenIssuer) revokeRefreshTokens() {
	t.lock.Lock()
	defer t.lock.Unlock()
	t.refresh = make(map[string]refreshRecord)
}

func (t *tokenIssuer) refreshExchanges() int {
	t.lock.Lock()
	defer t.lock.Unlock()
	return t.exchanges
}
