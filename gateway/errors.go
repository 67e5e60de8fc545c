package gateway

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// APIError is a non-2xx answer from the API that the gateway does not recover
// from itself. Validation and business-rule rejections reach callers this way.
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Message    string
	Body       []byte
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.StatusCode, http.StatusText(e.StatusCode))
}

// IsStatus reports whether err is an APIError with the given status code.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == status
}

func newAPIError(req *Request, resp *Response) *APIError {
	return &APIError{
		Method:     req.Method,
		Path:       req.route(),
		StatusCode: resp.StatusCode,
		Message:    errorMessage(resp.Body),
		Body:       resp.Body,
	}
}

// errorMessage picks the human readable part of the usual error payloads:
// {"message": ...}, {"error": ..., "error_description": ...} or plain text.
func errorMessage(body []byte) string {
	var payload struct {
		Message          string `json:"message"`
		Error            string `json:"error"`
		ErrorDescription string `json:"error_description"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		switch {
		case payload.Message != "":
			return payload.Message
		case payload.ErrorDescription != "":
			return payload.ErrorDescription
		case payload.Error != "":
			return payload.Error
		}
		return ""
	}
	text := strings.TrimSpace(string(body))
	if len(text) > 200 {
		text = text[:200]
	}
	return text
}
