package config

type IdentityConfig interface {
	GetGoogleClientID() string
	GetOIDCIssuer() string
}

type Identity struct{}

var _ IdentityConfig = Identity{}

func (Identity) GetGoogleClientID() string {
	return GetEnv("GOOGLE_CLIENT_ID", "")
}

func (Identity) GetOIDCIssuer() string {
	return GetEnv("OIDC_ISSUER", "https://accounts.google.com")
}
