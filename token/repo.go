package token

import "context"

// Store persists the credential pair. Implementations keep the two tokens under
// the access_token and refresh_token keys and always clear them together.
type Store interface {
	Get(ctx context.Context) (Pair, error)
	Set(ctx context.Context, pair Pair) error
	Clear(ctx context.Context) error
}

// Locker is implemented by stores shared between processes. Lock holds off
// every other holder of the store until the returned release func runs, so
// only one of them exchanges the refresh token.
type Locker interface {
	Lock(ctx context.Context) (release func(), err error)
}
