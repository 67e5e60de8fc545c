// Package storefront wires configuration, credential storage, the session, the
// request gateway and the domain clients into one object a UI can hold.
package storefront

import (
	"context"
	"errors"
	"fmt"

	"github.com/jrsteele09/go-storefront/auth"
	"github.com/jrsteele09/go-storefront/cart"
	"github.com/jrsteele09/go-storefront/catalog"
	"github.com/jrsteele09/go-storefront/favorites"
	"github.com/jrsteele09/go-storefront/gateway"
	"github.com/jrsteele09/go-storefront/identity"
	"github.com/jrsteele09/go-storefront/internal/config"
	"github.com/jrsteele09/go-storefront/orders"
	"github.com/jrsteele09/go-storefront/postalcode"
	"github.com/jrsteele09/go-storefront/sessions"
	"github.com/jrsteele09/go-storefront/token"
	"github.com/jrsteele09/go-storefront/token/filestore"
	"github.com/jrsteele09/go-storefront/token/redisstore"
	tokenrepofake "github.com/jrsteele09/go-storefront/token/repofake"
	"github.com/rs/zerolog/log"
)

type Storefront struct {
	Session   *sessions.Session
	Gateway   *gateway.Client
	Auth      *auth.Service
	Cart      *cart.Engine
	Catalog   *catalog.Client
	Favorites *favorites.Client
	// PostalCodes resolves a CEP to an address for the checkout form.
	PostalCodes *postalcode.Client

	closers []func() error
}

type options struct {
	store      token.Store
	verifier   auth.IDTokenVerifier
	gatewayOps []gateway.Option
}

type Option func(*options)

// WithStore bypasses TOKEN_STORE and uses store directly.
func WithStore(store token.Store) Option {
	return func(o *options) {
		o.store = store
	}
}

// WithIDTokenVerifier bypasses provider discovery for federated login.
func WithIDTokenVerifier(v auth.IDTokenVerifier) Option {
	return func(o *options) {
		o.verifier = v
	}
}

// WithGatewayOptions passes extra options to the request gateway.
func WithGatewayOptions(opts ...gateway.Option) Option {
	return func(o *options) {
		o.gatewayOps = append(o.gatewayOps, opts...)
	}
}

// New builds a Storefront from cfg. Nothing is fetched until Start.
func New(ctx context.Context, cfg config.Config, opts ...Option) (*Storefront, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	sf := &Storefront{}
	store := o.store
	if store == nil {
		var err error
		if store, err = sf.openStore(ctx, cfg); err != nil {
			return nil, err
		}
	}

	verifier := o.verifier
	if verifier == nil && cfg.GetGoogleClientID() != "" {
		v, err := identity.NewProviderVerifier(ctx, cfg.GetOIDCIssuer(), cfg.GetGoogleClientID())
		if err != nil {
			sf.Close()
			return nil, fmt.Errorf("federated login: %w", err)
		}
		verifier = v
	}

	sf.Session = sessions.New(store)
	gwOpts := append([]gateway.Option{gateway.WithTimeout(cfg.GetRequestTimeout())}, o.gatewayOps...)
	sf.Gateway = gateway.New(cfg.GetAPIBaseURL(), sf.Session, gwOpts...)

	var authOpts []auth.ServiceOption
	if verifier != nil {
		authOpts = append(authOpts, auth.WithIDTokenVerifier(verifier))
	}
	sf.Auth = auth.NewService(sf.Gateway, authOpts...)
	sf.Cart = cart.NewEngine(orders.NewClient(sf.Gateway))
	sf.Catalog = catalog.NewClient(sf.Gateway)
	sf.Favorites = favorites.NewClient(sf.Gateway)
	sf.PostalCodes = postalcode.New(cfg.GetPostalCodeURL(), postalcode.WithTimeout(cfg.GetRequestTimeout()))

	sf.Session.OnInvalid(func(sessions.Reason) {
		sf.Cart.Reset()
		sf.Favorites.Reset()
	})
	return sf, nil
}

func (sf *Storefront) openStore(ctx context.Context, cfg config.Config) (token.Store, error) {
	switch kind := cfg.GetTokenStore(); kind {
	case config.MemoryStore:
		return tokenrepofake.NewFakeTokenStore(), nil
	case config.RedisStore:
		rs, err := redisstore.New(ctx, redisstore.Config{
			Addr:      cfg.GetRedisAddr(),
			Password:  cfg.GetRedisPassword(),
			DB:        cfg.GetRedisDB(),
			KeyPrefix: cfg.GetRedisKeyPrefix(),
		})
		if err != nil {
			return nil, fmt.Errorf("open redis token store: %w", err)
		}
		sf.closers = append(sf.closers, rs.Close)
		return rs, nil
	default:
		if cfg.GetTokenPassphrase() == "" {
			log.Warn().Str("file", cfg.GetTokenFile()).Msg("TOKEN_PASSPHRASE not set, credentials are stored unencrypted")
		}
		return filestore.New(cfg.GetTokenFile(), cfg.GetTokenPassphrase()), nil
	}
}

// Start hydrates the cart and favourites when credentials survive from a
// previous run. Without credentials both start empty.
func (sf *Storefront) Start(ctx context.Context) error {
	if !sf.Session.Authenticated(ctx) {
		sf.Cart.Reset()
		sf.Favorites.Reset()
		return nil
	}
	return errors.Join(sf.Cart.Fetch(ctx), sf.Favorites.Fetch(ctx))
}

// Login signs in with email and password and hydrates the session state.
func (sf *Storefront) Login(ctx context.Context, email, password string) (auth.User, error) {
	user, err := sf.Auth.Login(ctx, email, password)
	if err != nil {
		return auth.User{}, err
	}
	return user, sf.Start(ctx)
}

// LoginWithIDToken signs in with a Google ID token and hydrates the session
// state.
func (sf *Storefront) LoginWithIDToken(ctx context.Context, rawIDToken string) (auth.User, error) {
	user, err := sf.Auth.LoginWithIDToken(ctx, rawIDToken)
	if err != nil {
		return auth.User{}, err
	}
	return user, sf.Start(ctx)
}

// Logout ends the session. The invalidation listeners empty the cart and
// favourites.
func (sf *Storefront) Logout(ctx context.Context) error {
	return sf.Auth.Logout(ctx)
}

// Close releases the credential store.
func (sf *Storefront) Close() error {
	var errs []error
	for _, c := range sf.closers {
		errs = append(errs, c())
	}
	sf.closers = nil
	return errors.Join(errs...)
}
