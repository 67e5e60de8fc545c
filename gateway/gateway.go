// Package gateway sends authenticated calls to the storefront API. It attaches
// the session's bearer token and recovers from an expired access token with a
// single refresh exchange shared by every caller that hit the same expiry.
package gateway

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	storeerrors "github.com/jrsteele09/go-storefront/internal/errors"
	"github.com/jrsteele09/go-storefront/sessions"
	"github.com/jrsteele09/go-storefront/token"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"
)

const (
	// DefaultRefreshPath is the credential exchange endpoint.
	DefaultRefreshPath = "/auth/refresh"
	defaultTimeout     = 10 * time.Second
)

// Client is the Authenticated Request Gateway.
type Client struct {
	baseURL     string
	refreshPath string
	httpClient  *http.Client
	timeout     time.Duration
	session     *sessions.Session
	refreshes   singleflight.Group
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. Its transport is used as
// is, without the request-id and logging middleware. The gateway works on a
// copy, so hc itself is never modified.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets the overall deadline of each network call, whatever HTTP
// client is in use.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithRefreshPath overrides DefaultRefreshPath.
func WithRefreshPath(path string) Option {
	return func(c *Client) {
		c.refreshPath = path
	}
}

// New returns a gateway for the API rooted at baseURL, acting for session.
func New(baseURL string, session *sessions.Session, opts ...Option) *Client {
	c := &Client{
		baseURL:     strings.TrimSuffix(baseURL, "/"),
		refreshPath: DefaultRefreshPath,
		session:     session,
		httpClient: &http.Client{
			Transport: ChainTransport(http.DefaultTransport, RequestIDTransport, LoggingTransport),
		},
	}
	for _, opt := range opts {
		opt(c)
	}

	// Every call gets a deadline: the configured one, else the client's own,
	// else the default.
	hc := *c.httpClient
	switch {
	case c.timeout > 0:
		hc.Timeout = c.timeout
	case hc.Timeout <= 0:
		hc.Timeout = defaultTimeout
	}
	c.httpClient = &hc
	return c
}

// Session returns the session the gateway acts for.
func (c *Client) Session() *sessions.Session {
	return c.session
}

// Do sends req with the current access token. A 401 triggers the refresh
// protocol once per request; any other non-2xx status is returned as an
// *APIError and network failures are returned unchanged.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	pair, err := c.session.Credentials(ctx)
	if err != nil {
		return nil, err
	}

	access := pair.AccessToken
	if req.NoAuth {
		access = ""
	}

	resp, err := c.send(ctx, req, access)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusUnauthorized && !req.NoAuth {
		return c.recoverUnauthorized(ctx, req, resp, pair.AccessToken)
	}
	return checkStatus(req, resp)
}

// DoJSON sends in as a JSON body and decodes the answer into out. Either may be
// nil.
func (c *Client) DoJSON(ctx context.Context, method, path string, in, out any) error {
	req, err := NewJSONRequest(method, path, in)
	if err != nil {
		return err
	}
	return c.Send(ctx, req, out)
}

// Send performs req and decodes the answer into out, which may be nil.
func (c *Client) Send(ctx context.Context, req *Request, out any) error {
	resp, err := c.Do(ctx, req)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := resp.Decode(out); err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.route(), err)
	}
	return nil
}

func (c *Client) recoverUnauthorized(ctx context.Context, req *Request, resp *Response, staleAccess string) (*Response, error) {
	if req.retried {
		return nil, newAPIError(req, resp)
	}
	// Work on a copy so the caller's request is never marked.
	replay := *req
	replay.retried = true

	if replay.refresh || replay.route() == c.refreshPath {
		c.terminate(ctx, sessions.ReasonRefreshRejected)
		return nil, fmt.Errorf("%w: %w", storeerrors.ErrSessionInvalid, storeerrors.ErrRefreshRejected)
	}

	access, err := c.refresh(ctx, staleAccess)
	if err != nil {
		return nil, err
	}

	resp, err = c.send(ctx, &replay, access)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusUnauthorized {
		return nil, newAPIError(&replay, resp)
	}
	return checkStatus(&replay, resp)
}

// refresh returns an access token newer than staleAccess. Concurrent callers
// that failed with the same stale token share one exchange.
func (c *Client) refresh(ctx context.Context, staleAccess string) (string, error) {
	if access, ok, err := c.alreadyRefreshed(ctx, staleAccess); ok || err != nil {
		return access, err
	}

	key := c.session.ID() + ":" + staleAccess
	// The exchange outlives the initiating caller's cancellation: other callers
	// are waiting on its result.
	exchangeCtx := context.WithoutCancel(ctx)
	v, err, shared := c.refreshes.Do(key, func() (interface{}, error) {
		release, err := c.session.LockRefresh(exchangeCtx)
		if err != nil {
			return "", err
		}
		defer release()

		// A previous flight for this key, or another process sharing the
		// store, may have refreshed before the lock was taken.
		if access, ok, err := c.alreadyRefreshed(exchangeCtx, staleAccess); ok || err != nil {
			return access, err
		}
		return c.exchange(exchangeCtx)
	})
	if err != nil {
		return "", err
	}
	if shared {
		log.Debug().Str("session", c.session.ID()).Msg("reused in-flight credential refresh")
	}
	return v.(string), nil
}

// alreadyRefreshed reports whether the stored access token moved on from
// staleAccess. An emptied store means the session was terminated meanwhile.
func (c *Client) alreadyRefreshed(ctx context.Context, staleAccess string) (string, bool, error) {
	current, err := c.session.Credentials(ctx)
	if err != nil {
		return "", false, err
	}
	if current.AccessToken == staleAccess {
		return "", false, nil
	}
	if current.AccessToken == "" {
		return "", false, storeerrors.ErrSessionInvalid
	}
	return current.AccessToken, true, nil
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type refreshResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// exchange performs the credential refresh round trip. Any failure is fatal to
// the session.
func (c *Client) exchange(ctx context.Context) (string, error) {
	current, err := c.session.Credentials(ctx)
	if err != nil {
		return "", err
	}
	if !current.HasRefreshToken() {
		c.terminate(ctx, sessions.ReasonNoRefreshToken)
		return "", fmt.Errorf("%w: %w", storeerrors.ErrSessionInvalid, storeerrors.ErrNoRefreshToken)
	}

	log.Info().Str("session", c.session.ID()).Msg("refreshing credentials")

	req, err := NewJSONRequest(http.MethodPost, c.refreshPath, refreshRequest{RefreshToken: current.RefreshToken})
	if err != nil {
		return "", err
	}
	req.refresh = true
	req.NoAuth = false

	resp, err := c.Do(ctx, req)
	if err != nil {
		if errors.Is(err, storeerrors.ErrSessionInvalid) {
			return "", err
		}
		c.terminate(ctx, sessions.ReasonRefreshFailed)
		return "", fmt.Errorf("%w: refresh: %w", storeerrors.ErrSessionInvalid, err)
	}

	var body refreshResponse
	if err := resp.Decode(&body); err != nil || body.AccessToken == "" || body.RefreshToken == "" {
		c.terminate(ctx, sessions.ReasonRefreshFailed)
		return "", fmt.Errorf("%w: refresh: %w", storeerrors.ErrSessionInvalid, storeerrors.ErrMalformedResponse)
	}

	if err := c.session.Replace(ctx, token.Pair{AccessToken: body.AccessToken, RefreshToken: body.RefreshToken}); err != nil {
		c.terminate(ctx, sessions.ReasonRefreshFailed)
		return "", fmt.Errorf("%w: %w", storeerrors.ErrSessionInvalid, err)
	}
	return body.AccessToken, nil
}

func (c *Client) terminate(ctx context.Context, reason sessions.Reason) {
	if err := c.session.Terminate(ctx, reason); err != nil {
		log.Err(err).Str("session", c.session.ID()).Msg("terminate session")
	}
}

func (c *Client) send(ctx context.Context, req *Request, access string) (*Response, error) {
	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, c.baseURL+req.Path, body)
	if err != nil {
		return nil, fmt.Errorf("build %s %s: %w", req.Method, req.route(), err)
	}
	for k, values := range req.Header {
		for _, v := range values {
			httpReq.Header.Add(k, v)
		}
	}
	httpReq.Header.Set("Accept", "application/json")
	if access != "" {
		(&oauth2.Token{AccessToken: access, TokenType: "Bearer"}).SetAuthHeader(httpReq)
	}

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	data, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, err
	}
	return &Response{StatusCode: httpResp.StatusCode, Header: httpResp.Header, Body: data}, nil
}

func checkStatus(req *Request, resp *Response) (*Response, error) {
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newAPIError(req, resp)
	}
	return resp, nil
}
