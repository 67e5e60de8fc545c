// Package mockapi is an in-memory implementation of the storefront REST API.
// It backs the integration tests and the local dev server in cmd/mockapi.
package mockapi

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/jrsteele09/go-storefront/catalog"
	"github.com/jrsteele09/go-storefront/identity"
	"github.com/jrsteele09/go-storefront/internal/config"
	"github.com/rs/zerolog/log"
)

const issuer = "storefront-mockapi"

type Config interface {
	config.EnvConfig
	config.CorsConfig
}

// IDTokenVerifier checks the Google ID tokens posted to /auth/firebase.
type IDTokenVerifier interface {
	Verify(ctx context.Context, rawIDToken string) (identity.Identity, error)
}

type Server struct {
	env      string
	mux      *http.ServeMux
	routes   []string
	config   Config
	tokens   *tokenIssuer
	store    *store
	verifier IDTokenVerifier
}

type Option func(*Server)

// WithAccessTTL sets the lifetime of issued access tokens.
func WithAccessTTL(ttl time.Duration) Option {
	return func(s *Server) {
		s.tokens.accessTTL = ttl
	}
}

// WithRefreshTTL sets the lifetime of issued refresh tokens.
func WithRefreshTTL(ttl time.Duration) Option {
	return func(s *Server) {
		s.tokens.refreshTTL = ttl
	}
}

// WithClock replaces the clock used to issue and check tokens.
func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		s.tokens.now = now
	}
}

// WithIDTokenVerifier enables /auth/firebase.
func WithIDTokenVerifier(v IDTokenVerifier) Option {
	return func(s *Server) {
		s.verifier = v
	}
}

func New(cfg Config, opts ...Option) *Server {
	s := &Server{
		env:    cfg.GetEnv(),
		mux:    http.NewServeMux(),
		config: cfg,
		tokens: newTokenIssuer(issuer, cfg.GetJWTSecret()),
		store:  newStore(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.initRoutes()
	s.logRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)
		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
}

func logRoute(method, path string) {
	log.Info().Msgf("[%s] %s", colourMethod(method, 7), path)
}

// AddUser registers a customer account and returns its id.
func (s *Server) AddUser(name, email, password string, roles ...string) (int64, error) {
	hash, err := HashPassword(password)
	if err != nil {
		return 0, fmt.Errorf("hash password: %w", err)
	}
	if len(roles) == 0 {
		roles = []string{RoleCustomer}
	}
	u, err := s.store.createUser(user{Name: name, Email: email, PasswordHash: hash, Roles: roles})
	if err != nil {
		return 0, err
	}
	return u.ID, nil
}

// AddProduct publishes p in the catalog, sold by seller.
func (s *Server) AddProduct(p catalog.Product, seller string) {
	s.store.putProduct(p, seller)
}

// AddCategory appends a root category.
func (s *Server) AddCategory(c catalog.Category) {
	s.store.putCategory(c)
}

// SetOrderStatus moves an order out of (or back into) the pending state.
func (s *Server) SetOrderStatus(id int64, status string) error {
	return s.store.setOrderStatus(id, status)
}

// ExpireAccessTokens makes every access token issued so far answer 401.
func (s *Server) ExpireAccessTokens() {
	s.tokens.expireAccessTokens()
}

// RevokeRefreshTokens forgets every outstanding refresh token.
func (s *Server) RevokeRefreshTokens() {
	s.tokens.revokeRefreshTokens()
}

// RefreshExchanges counts successful refresh token rotations.
func (s *Server) RefreshExchanges() int {
	return s.tokens.refreshExchanges()
}
