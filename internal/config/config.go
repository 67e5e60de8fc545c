package config

import "github.com/joho/godotenv"

type Config interface {
	EnvConfig
	CorsConfig
	APIConfig
	SessionConfig
	IdentityConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
	GetLogLevel() string
	GetSentryDSN() string
	GetJWTSecret() string
}

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() string
	GetAllowedHeaders() string
}

type mainConfig struct {
	EnvVars
	Cors
	API
	Session
	Identity
}

// New loads a .env file from the working directory when one exists and
// returns a Config backed by the process environment.
func New() Config {
	_ = godotenv.Load()
	return mainConfig{}
}
