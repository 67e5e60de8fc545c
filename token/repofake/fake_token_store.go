package tokenrepofake

import (
	"context"
	"sync"

	"github.com/jrsteele09/go-storefront/token"
)

var _ token.Store = (*FakeTokenStore)(nil)

type FakeTokenStore struct {
	values map[string]string
	writes int
	lock   sync.RWMutex
}

func NewFakeTokenStore() *FakeTokenStore {
	return &FakeTokenStore{
		values: make(map[string]string),
	}
}

// NewFakeTokenStoreWith returns a store pre-populated with pair.
func NewFakeTokenStoreWith(pair token.Pair) *FakeTokenStore {
	s := NewFakeTokenStore()
	s.put(pair)
	return s
}

func (s *FakeTokenStore) Get(_ context.Context) (token.Pair, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	return token.Pair{
		AccessToken:  s.values[token.AccessTokenKey],
		RefreshToken: s.values[token.RefreshTokenKey],
	}, nil
}

func (s *FakeTokenStore) Set(_ context.Context, pair token.Pair) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.put(pair)
	s.writes++
	return nil
}

func (s *FakeTokenStore) Clear(_ context.Context) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	delete(s.values, token.AccessTokenKey)
	delete(s.values, token.RefreshTokenKey)
	return nil
}

// Writes counts successful Set calls.
func (s *FakeTokenStore) Writes() int {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.writes
}

func (s *FakeTokenStore) put(pair token.Pair) {
	s.values[token.AccessTokenKey] = pair.AccessToken
	s.values[token.RefreshTokenKey] = pair.RefreshToken
}
