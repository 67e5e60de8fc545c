package config

type StoreKind string

const (
	MemoryStore StoreKind = "memory"
	FileStore   StoreKind = "file"
	RedisStore  StoreKind = "redis"
)

type SessionConfig interface {
	GetTokenStore() StoreKind
	GetTokenFile() string
	GetTokenPassphrase() string
	GetRedisAddr() string
	GetRedisPassword() string
	GetRedisDB() int
	GetRedisKeyPrefix() string
}

type Session struct{}

var _ SessionConfig = Session{}

func (Session) GetTokenStore() StoreKind {
	switch kind := StoreKind(GetEnv("TOKEN_STORE", string(FileStore))); kind {
	case MemoryStore, FileStore, RedisStore:
		return kind
	default:
		return FileStore
	}
}

func (Session) GetTokenFile() string {
	return GetEnv("TOKEN_FILE", "./data/session.bin")
}

func (Session) GetTokenPassphrase() string {
	return GetEnv("TOKEN_PASSPHRASE", "")
}

func (Session) GetRedisAddr() string {
	return GetEnv("REDIS_ADDR", "localhost:6379")
}

func (Session) GetRedisPassword() string {
	return GetEnv("REDIS_PASSWORD", "")
}

func (Session) GetRedisDB() int {
	return GetEnvInt("REDIS_DB", 0)
}

// GetRedisKeyPrefix namespaces the access_token / refresh_token keys so several
// sessions can share one Redis.
func (Session) GetRedisKeyPrefix() string {
	return GetEnv("REDIS_KEY_PREFIX", "storefront:session")
}
