// Package postalcode resolves a Brazilian postal code (CEP) to a street
// address through ViaCEP and quotes the flat delivery fee.
package postalcode

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jrsteele09/go-storefront/cart"
	"github.com/jrsteele09/go-storefront/gateway"
	storeerrors "github.com/jrsteele09/go-storefront/internal/errors"
	"github.com/rs/zerolog/log"
)

const (
	DefaultBaseURL = "https://viacep.com.br"
	defaultTimeout = 10 * time.Second
	maxBody        = 64 << 10
)

const (
	flatFee          = 20.0
	flatBusinessDays = 5
)

// Delivery is the shipping quote shown on the product page.
type Delivery struct {
	Address      cart.Address
	Fee          float64
	BusinessDays int
}

type viaCEPAddress struct {
	CEP        string          `json:"cep"`
	Street     string          `json:"logradouro"`
	Complement string          `json:"complemento"`
	District   string          `json:"bairro"`
	City       string          `json:"localidade"`
	State      string          `json:"uf"`
	Erro       json.RawMessage `json:"erro,omitempty"`
}

// notFound accepts both `"erro": true` and `"erro": "true"`.
func (a viaCEPAddress) notFound() bool {
	v := strings.Trim(string(a.Erro), `"`)
	return v == "true"
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
}

type Option func(*Client)

// WithHTTPClient replaces the HTTP client; its transport is wrapped with the
// request-id and logging middleware.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// New returns a lookup client. An empty baseURL means DefaultBaseURL.
func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}

	hc := *c.httpClient
	hc.Transport = gateway.ChainTransport(hc.Transport, gateway.RequestIDTransport, gateway.LoggingTransport)
	switch {
	case c.timeout > 0:
		hc.Timeout = c.timeout
	case hc.Timeout == 0:
		hc.Timeout = defaultTimeout
	}
	c.httpClient = &hc
	return c
}

// Lookup returns the street, district, city and state registered for code.
// Name and Number are left empty. Codes without eight digits fail with
// ErrInvalidAddress before any call is made; unknown codes fail with
// ErrNotFound.
func (c *Client) Lookup(ctx context.Context, code string) (cart.Address, error) {
	cep := cart.NormalisePostalCode(code)
	if len(cep) != 8 {
		return cart.Address{}, fmt.Errorf("%w: postal code %q", storeerrors.ErrInvalidAddress, code)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/ws/"+cep+"/json/", nil)
	if err != nil {
		return cart.Address{}, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return cart.Address{}, fmt.Errorf("postal code lookup: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusBadRequest:
		return cart.Address{}, fmt.Errorf("%w: postal code %q", storeerrors.ErrInvalidAddress, code)
	case resp.StatusCode == http.StatusNotFound:
		return cart.Address{}, fmt.Errorf("postal code %s: %w", cep, storeerrors.ErrNotFound)
	case resp.StatusCode != http.StatusOK:
		return cart.Address{}, fmt.Errorf("postal code lookup: unexpected status %d", resp.StatusCode)
	}

	var found viaCEPAddress
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBody)).Decode(&found); err != nil {
		return cart.Address{}, fmt.Errorf("%w: postal code lookup: %w", storeerrors.ErrMalformedResponse, err)
	}
	if found.notFound() {
		return cart.Address{}, fmt.Errorf("postal code %s: %w", cep, storeerrors.ErrNotFound)
	}
	log.Debug().Str("cep", cep).Str("city", found.City).Msg("postal code resolved")

	return cart.Address{
		Street:     found.Street,
		District:   found.District,
		City:       found.City,
		State:      found.State,
		PostalCode: cep,
	}, nil
}

// Fill looks up addr.PostalCode and fills the street, district, city and state
// the caller left blank. Fields already set are kept.
func (c *Client) Fill(ctx context.Context, addr cart.Address) (cart.Address, error) {
	found, err := c.Lookup(ctx, addr.PostalCode)
	if err != nil {
		return addr, err
	}
	fill := func(dst *string, v string) {
		if strings.TrimSpace(*dst) == "" {
			*dst = v
		}
	}
	fill(&addr.Street, found.Street)
	fill(&addr.District, found.District)
	fill(&addr.City, found.City)
	fill(&addr.State, found.State)
	return addr, nil
}

// Quote checks that code exists and returns the flat delivery fee.
func (c *Client) Quote(ctx context.Context, code string) (Delivery, error) {
	addr, err := c.Lookup(ctx, code)
	if err != nil {
		return Delivery{}, err
	}
	return Delivery{Address: addr, Fee: flatFee, BusinessDays: flatBusinessDays}, nil
}
