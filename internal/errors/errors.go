package errors

import (
	"errors"
	"fmt"
)

// Common error types for the storefront client
var (
	// Session errors
	ErrSessionInvalid   = errors.New("session invalid: re-authentication required")
	ErrNoRefreshToken   = errors.New("no refresh token")
	ErrRefreshRejected  = errors.New("refresh token rejected")
	ErrNotAuthenticated = errors.New("not authenticated")

	// Token errors
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")

	// Authentication errors
	ErrInvalidCredentials = errors.New("invalid credentials")

	// Response errors
	ErrMalformedResponse = errors.New("malformed response")

	// Cart errors
	ErrEmptyCart      = errors.New("cart is empty")
	ErrInvalidAddress = errors.New("invalid address")

	// General errors
	ErrNotFound       = errors.New("not found")
	ErrInvalidRequest = errors.New("invalid request")
	ErrInternal       = errors.New("internal error")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
