package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/jrsteele09/go-storefront/gateway"
	"github.com/jrsteele09/go-storefront/identity"
	storeerrors "github.com/jrsteele09/go-storefront/internal/errors"
	"github.com/jrsteele09/go-storefront/sessions"
	"github.com/rs/zerolog/log"
)

const (
	LoginPath     = "/auth/login"
	FederatedPath = "/auth/firebase"
	RegisterPath  = "/user"
	SupplierPath  = "/suppliers"
)

// IDTokenVerifier checks a federated ID token before it is exchanged.
type IDTokenVerifier interface {
	Verify(ctx context.Context, rawIDToken string) (identity.Identity, error)
}

var _ IDTokenVerifier = (*identity.Verifier)(nil)

// Service signs users in and out of a session.
type Service struct {
	gw        *gateway.Client
	session   *sessions.Session
	verifier  IDTokenVerifier
	validator *Validator
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithIDTokenVerifier enables LoginWithIDToken.
func WithIDTokenVerifier(v IDTokenVerifier) ServiceOption {
	return func(s *Service) {
		s.verifier = v
	}
}

// WithValidator replaces the default form validator.
func WithValidator(v *Validator) ServiceOption {
	return func(s *Service) {
		s.validator = v
	}
}

// NewService creates the auth service for the gateway's session.
func NewService(gw *gateway.Client, opts ...ServiceOption) *Service {
	s := &Service{
		gw:        gw,
		session:   gw.Session(),
		validator: NewValidator(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Login exchanges email and password for a credential pair.
func (s *Service) Login(ctx context.Context, email, password string) (User, error) {
	creds := Credentials{Email: email, Password: password}
	if err := s.validator.ValidateCredentials(creds); err != nil {
		return User{}, fmt.Errorf("%w: %w", storeerrors.ErrInvalidCredentials, err)
	}
	return s.signIn(ctx, LoginPath, creds)
}

// LoginWithIDToken verifies a Google ID token locally and exchanges it for a
// storefront credential pair.
func (s *Service) LoginWithIDToken(ctx context.Context, rawIDToken string) (User, error) {
	if s.verifier == nil {
		return User{}, FederatedLoginDisabledErr
	}
	id, err := s.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return User{}, err
	}
	log.Debug().Str("issuer", id.Issuer).Str("email", id.Email).Msg("federated identity verified")

	user, err := s.signIn(ctx, FederatedPath, map[string]string{"idToken": rawIDToken})
	if err != nil {
		return User{}, err
	}
	if user.Picture == "" {
		user.Picture = id.Picture
	}
	if !user.EmailVerified {
		user.EmailVerified = id.EmailVerified
	}
	return user, nil
}

// Register creates a customer account and signs it in.
func (s *Service) Register(ctx context.Context, r Registration) (User, error) {
	if err := s.validator.ValidateRegistration(r); err != nil {
		return User{}, fmt.Errorf("%w: %w", storeerrors.ErrInvalidRequest, err)
	}
	if err := s.post(ctx, RegisterPath, r.payload()); err != nil {
		return User{}, fmt.Errorf("register: %w", err)
	}
	return s.Login(ctx, r.Email, r.Password)
}

// RegisterSupplier creates a supplier and its owning user. Supplier accounts
// are confirmed by email, so no session is started.
func (s *Service) RegisterSupplier(ctx context.Context, r SupplierRegistration) error {
	if err := s.validator.ValidateSupplier(r); err != nil {
		return fmt.Errorf("%w: %w", storeerrors.ErrInvalidRequest, err)
	}
	if err := s.post(ctx, SupplierPath, r.payload()); err != nil {
		return fmt.Errorf("register supplier: %w", err)
	}
	return nil
}

// Logout clears the credentials and notifies the session listeners.
func (s *Service) Logout(ctx context.Context) error {
	return s.session.Terminate(ctx, sessions.ReasonLoggedOut)
}

// CurrentUser decodes the signed-in user from the stored access token.
func (s *Service) CurrentUser(ctx context.Context) (User, error) {
	claims, err := s.session.User(ctx)
	if err != nil {
		return User{}, err
	}
	return userFromClaims(claims), nil
}

func (s *Service) signIn(ctx context.Context, path string, body any) (User, error) {
	req, err := gateway.NewJSONRequest(http.MethodPost, path, body)
	if err != nil {
		return User{}, err
	}
	req.NoAuth = true

	var resp LoginResponse
	if err := s.gw.Send(ctx, req, &resp); err != nil {
		if gateway.IsStatus(err, http.StatusUnauthorized) || gateway.IsStatus(err, http.StatusBadRequest) {
			return User{}, fmt.Errorf("%w: %w", storeerrors.ErrInvalidCredentials, err)
		}
		return User{}, err
	}
	if err := resp.validate(); err != nil {
		return User{}, err
	}
	if err := s.session.Replace(ctx, resp.pair()); err != nil {
		return User{}, err
	}

	if resp.User != nil {
		return *resp.User, nil
	}
	claims, err := resp.pair().Claims()
	if err != nil {
		return User{}, errors.Join(storeerrors.ErrMalformedResponse, err)
	}
	return userFromClaims(claims), nil
}

func (s *Service) post(ctx context.Context, path string, body any) error {
	req, err := gateway.NewJSONRequest(http.MethodPost, path, body)
	if err != nil {
		return err
	}
	req.NoAuth = true
	return s.gw.Send(ctx, req, nil)
}
