package sessions

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	storeerrors "github.com/jrsteele09/go-storefront/internal/errors"
	"github.com/jrsteele09/go-storefront/token"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

// Reason explains why a session was terminated.
type Reason string

const (
	ReasonLoggedOut       Reason = "logged_out"
	ReasonRefreshRejected Reason = "refresh_rejected"
	ReasonRefreshFailed   Reason = "refresh_failed"
	ReasonNoRefreshToken  Reason = "no_refresh_token"
)

// InvalidFunc is called after the credentials have been cleared. UI layers use
// it to send the user to a login entry point.
type InvalidFunc func(reason Reason)

// Session owns the credential pair of one signed-in user. It is passed by
// reference to everything that needs credentials instead of being read from
// ambient storage.
type Session struct {
	id        string
	store     token.Store
	listeners []InvalidFunc
	lock      sync.RWMutex
}

var _ oauth2.TokenSource = (*Session)(nil)

// New creates a session over store. Credentials already in the store (from a
// previous run) are picked up as-is.
func New(store token.Store) *Session {
	return &Session{
		id:    uuid.NewString(),
		store: store,
	}
}

// ID identifies the session; the gateway keys its refresh future on it.
func (s *Session) ID() string {
	return s.id
}

// Credentials returns the stored pair, which may be empty.
func (s *Session) Credentials(ctx context.Context) (token.Pair, error) {
	pair, err := s.store.Get(ctx)
	if err != nil {
		return token.Pair{}, fmt.Errorf("read credentials: %w", err)
	}
	return pair, nil
}

// Authenticated reports whether an access token is stored.
func (s *Session) Authenticated(ctx context.Context) bool {
	pair, err := s.Credentials(ctx)
	return err == nil && pair.AccessToken != ""
}

// Replace stores a new pair wholesale. It is called on login and by the single
// active refresh exchange.
func (s *Session) Replace(ctx context.Context, pair token.Pair) error {
	if pair.AccessToken == "" {
		return fmt.Errorf("replace credentials: %w", storeerrors.ErrInvalidToken)
	}
	if err := s.store.Set(ctx, pair); err != nil {
		return fmt.Errorf("store credentials: %w", err)
	}
	return nil
}

// Terminate clears both tokens and notifies the invalidation listeners. The
// listeners run even when clearing the store fails.
func (s *Session) Terminate(ctx context.Context, reason Reason) error {
	err := s.store.Clear(ctx)
	if err != nil {
		log.Err(err).Str("session", s.id).Msg("failed to clear credentials")
		err = fmt.Errorf("clear credentials: %w", err)
	}
	log.Info().Str("session", s.id).Str("reason", string(reason)).Msg("session terminated")

	s.lock.RLock()
	listeners := append([]InvalidFunc(nil), s.listeners...)
	s.lock.RUnlock()
	for _, fn := range listeners {
		fn(reason)
	}
	return err
}

// LockRefresh serialises credential refreshes with other processes sharing
// the store. Stores private to this process need no lock.
func (s *Session) LockRefresh(ctx context.Context) (func(), error) {
	locker, ok := s.store.(token.Locker)
	if !ok {
		return func() {}, nil
	}
	release, err := locker.Lock(ctx)
	if err != nil {
		return nil, fmt.Errorf("lock credentials: %w", err)
	}
	return release, nil
}

// OnInvalid registers fn to run whenever the session is terminated.
func (s *Session) OnInvalid(fn InvalidFunc) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.listeners = append(s.listeners, fn)
}

// User decodes the signed-in user from the stored access token.
func (s *Session) User(ctx context.Context) (token.Claims, error) {
	pair, err := s.Credentials(ctx)
	if err != nil {
		return token.Claims{}, err
	}
	if pair.AccessToken == "" {
		return token.Claims{}, storeerrors.ErrNotAuthenticated
	}
	return pair.Claims()
}

// Token implements oauth2.TokenSource so the session can back any
// oauth2-aware HTTP client.
func (s *Session) Token() (*oauth2.Token, error) {
	pair, err := s.Credentials(context.Background())
	if err != nil {
		return nil, err
	}
	if pair.AccessToken == "" {
		return nil, storeerrors.ErrNotAuthenticated
	}
	return pair.OAuth2(), nil
}
