// Package redisstore shares the credential pair between processes through Redis.
// Refreshes are serialised across processes with a SET NX PX lock, so a
// rotating refresh token is exchanged by one holder only.
package redisstore

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-storefront/token"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	refreshLockKey   = "refresh_lock"
	DefaultLockTTL   = 10 * time.Second
	lockPollInterval = 25 * time.Millisecond
)

var (
	_ token.Store  = (*Store)(nil)
	_ token.Locker = (*Store)(nil)
)

// releaseScript deletes the lock only while it still belongs to the caller.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

// Config holds the Redis connection settings.
type Config struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
	// LockTTL bounds how long a refresh lock is held and waited for.
	LockTTL time.Duration
}

// Store keeps the pair under "<prefix>:access_token" and "<prefix>:refresh_token".
type Store struct {
	client  *redis.Client
	prefix  string
	lockTTL time.Duration
}

// New connects to Redis and verifies the connection with PING.
func New(ctx context.Context, cfg Config) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.Addr, err)
	}
	s := NewWithClient(client, cfg.KeyPrefix)
	if cfg.LockTTL > 0 {
		s.lockTTL = cfg.LockTTL
	}
	return s, nil
}

// NewWithClient wraps an existing client.
func NewWithClient(client *redis.Client, prefix string) *Store {
	return &Store{client: client, prefix: prefix, lockTTL: DefaultLockTTL}
}

func (s *Store) Get(ctx context.Context) (token.Pair, error) {
	values, err := s.client.MGet(ctx, s.key(token.AccessTokenKey), s.key(token.RefreshTokenKey)).Result()
	if err != nil {
		return token.Pair{}, fmt.Errorf("redis mget tokens: %w", err)
	}
	return token.Pair{
		AccessToken:  asString(values[0]),
		RefreshToken: asString(values[1]),
	}, nil
}

// Set writes both keys in one MULTI/EXEC so readers never see a mixed pair.
func (s *Store) Set(ctx context.Context, pair token.Pair) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.key(token.AccessTokenKey), pair.AccessToken, 0)
		pipe.Set(ctx, s.key(token.RefreshTokenKey), pair.RefreshToken, 0)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis set tokens: %w", err)
	}
	return nil
}

func (s *Store) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key(token.AccessTokenKey), s.key(token.RefreshTokenKey)).Err(); err != nil {
		return fmt.Errorf("redis del tokens: %w", err)
	}
	return nil
}

// Lock takes the refresh lock, polling until it is free. It gives up after the
// lock TTL, by which time a crashed holder's lock has expired anyway.
func (s *Store) Lock(ctx context.Context) (func(), error) {
	key := s.key(refreshLockKey)
	owner := uuid.NewString()
	ctx, cancel := context.WithTimeout(ctx, s.lockTTL)
	defer cancel()

	for {
		ok, err := s.client.SetNX(ctx, key, owner, s.lockTTL).Result()
		if err != nil {
			return nil, fmt.Errorf("redis lock %s: %w", key, err)
		}
		if ok {
			return func() { s.release(key, owner) }, nil
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("redis lock %s: %w", key, ctx.Err())
		case <-time.After(lockPollInterval):
		}
	}
}

func (s *Store) release(key, owner string) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := releaseScript.Run(ctx, s.client, []string{key}, owner).Err(); err != nil {
		log.Err(err).Str("key", key).Msg("release refresh lock")
	}
}

func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) key(name string) string {
	if s.prefix == "" {
		return name
	}
	return s.prefix + ":" + name
}

func asString(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}
