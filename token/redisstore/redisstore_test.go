package redisstore_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/jrsteele09/go-storefront/token"
	"github.com/jrsteele09/go-storefront/token/redisstore"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) (*redisstore.Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	s, err := redisstore.New(context.Background(), redisstore.Config{Addr: mr.Addr(), KeyPrefix: "test:session"})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s, mr
}

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, mr := newStore(t)

	pair, err := s.Get(ctx)
	require.NoError(t, err)
	require.True(t, pair.IsZero())

	want := token.Pair{AccessToken: "access-1", RefreshToken: "refresh-1"}
	require.NoError(t, s.Set(ctx, want))

	access, err := mr.Get("test:session:access_token")
	require.NoError(t, err)
	require.Equal(t, "access-1", access)

	got, err := s.Get(ctx)
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestStoreClearRemovesBothKeys(t *testing.T) {
	ctx := context.Background()
	s, mr := newStore(t)

	require.NoError(t, s.Set(ctx, token.Pair{AccessToken: "a", RefreshToken: "r"}))
	require.NoError(t, s.Clear(ctx))

	require.False(t, mr.Exists("test:session:access_token"))
	require.False(t, mr.Exists("test:session:refresh_token"))
}

func TestNewFailsWithoutServer(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := redisstore.New(context.Background(), redisstore.Config{Addr: addr})
	require.Error(t, err)
}

func TestLockIsExclusiveAcrossStores(t *testing.T) {
	ctx := context.Background()
	first, mr := newStore(t)
	second, err := redisstore.New(ctx, redisstore.Config{Addr: mr.Addr(), KeyPrefix: "test:session", LockTTL: 100 * time.Millisecond})
	require.NoError(t, err)
	t.Cleanup(func() { second.Close() })

	release, err := first.Lock(ctx)
	require.NoError(t, err)
	require.True(t, mr.Exists("test:session:refresh_lock"))

	// The second holder waits at most its TTL.
	_, err = second.Lock(ctx)
	require.Error(t, err)

	release()
	require.False(t, mr.Exists("test:session:refresh_lock"))

	releaseSecond, err := second.Lock(ctx)
	require.NoError(t, err)
	releaseSecond()
}

func TestReleaseKeepsAnotherHoldersLock(t *testing.T) {
	ctx := context.Background()
	s, mr := newStore(t)

	release, err := s.Lock(ctx)
	require.NoError(t, err)

	// The lock expired and was taken by someone else.
	require.NoError(t, mr.Set("test:session:refresh_lock", "other-holder"))
	release()

	owner, err := mr.Get("test:session:refresh_lock")
	require.NoError(t, err)
	require.Equal(t, "other-holder", owner)
}
