package codegen

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidURL is returned by New when the URL lacks a scheme or host
	ErrInvalidURL = errors.New("invalid URL")

	// ErrInvalidMethod is returned by New for methods outside the matrix
	ErrInvalidMethod = errors.New("invalid method")

	// ErrIncompatiblePayload is matched by every *PayloadError
	ErrIncompatiblePayload = errors.New("incompatible payload")

	// ErrInvalidPayload is returned when a payload value cannot be encoded
	// for its kind
	ErrInvalidPayload = errors.New("invalid payload")

	// ErrInvalidHeaders is returned by SetHeaders for empty or list-shaped input
	ErrInvalidHeaders = errors.New("headers must be a non-empty mapping of strings")

	// ErrUnsupportedDisplayMode is returned by Render for unknown modes
	ErrUnsupportedDisplayMode = errors.New("unsupported display mode")
)

// PayloadError reports a payload kind that the request method does not accept
type PayloadError struct {
	Kind   PayloadKind
	Method Method
}

func (e *PayloadError) Error() string {
	return fmt.Sprintf("payload kind %s is not allowed for %s requests", e.Kind, e.Method)
}

func (e *PayloadError) Unwrap() error {
	return ErrIncompatiblePayload
}
