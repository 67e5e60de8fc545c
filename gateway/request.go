package gateway

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	storeerrors "github.com/jrsteele09/go-storefront/internal/errors"
)

// Request is a replayable outbound call. The body is kept as bytes so the
// gateway can resend it after a credential refresh.
type Request struct {
	Method string
	Path   string // relative to the API base URL, may carry a query string
	Body   []byte
	Header http.Header
	// NoAuth requests go out without credentials and a 401 answer is returned
	// to the caller instead of starting a refresh (login, registration).
	NoAuth bool

	retried bool
	refresh bool
}

// NewRequest creates a request without a body.
func NewRequest(method, path string) *Request {
	return &Request{Method: method, Path: path, Header: http.Header{}}
}

// NewJSONRequest encodes in as the JSON body of the request.
func NewJSONRequest(method, path string, in any) (*Request, error) {
	req := NewRequest(method, path)
	if in == nil {
		return req, nil
	}
	body, err := json.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("encode %s %s body: %w", method, path, err)
	}
	req.Body = body
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

// route is the path without its query string.
func (r *Request) route() string {
	if i := strings.IndexByte(r.Path, '?'); i >= 0 {
		return r.Path[:i]
	}
	return r.Path
}

// Response is a fully read response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Decode unmarshals the body into out. An empty body is a malformed response
// since every decoded endpoint returns a document.
func (r *Response) Decode(out any) error {
	if len(r.Body) == 0 {
		return fmt.Errorf("%w: empty body", storeerrors.ErrMalformedResponse)
	}
	if err := json.Unmarshal(r.Body, out); err != nil {
		return fmt.Errorf("%w: %v", storeerrors.ErrMalformedResponse, err)
	}
	return nil
}
