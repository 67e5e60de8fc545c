package config

import (
	"strings"
	"time"
)

type APIConfig interface {
	GetAPIBaseURL() string
	GetRequestTimeout() time.Duration
	GetPostalCodeURL() string
}

type API struct{}

var _ APIConfig = API{}

func (API) GetAPIBaseURL() string {
	return strings.TrimSuffix(GetEnv("API_BASE_URL", "http://localhost:8080"), "/")
}

// GetRequestTimeout is the overall deadline of a single outbound call.
func (API) GetRequestTimeout() time.Duration {
	return GetEnvDuration("API_TIMEOUT", 10*time.Second)
}

// GetPostalCodeURL is the base of the ViaCEP address lookup service.
func (API) GetPostalCodeURL() string {
	return strings.TrimSuffix(GetEnv("POSTAL_CODE_URL", "https://viacep.com.br"), "/")
}
