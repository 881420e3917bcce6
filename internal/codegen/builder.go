package codegen

import (
	"fmt"

	"github.com/studiowebux/curlgen/internal/types"
)

const (
	// DefaultTimeout is the CURLOPT_TIMEOUT set by SetDefaultTimeouts
	DefaultTimeout = 30

	// DefaultConnectTimeout is the CURLOPT_CONNECTTIMEOUT set by SetDefaultTimeouts
	DefaultConnectTimeout = 10
)

// Request accumulates validated request parameters and renders them as a
// PHP cURL snippet. URL and method are fixed by New. Each setter validates
// its input before touching state, so a rejected call leaves the Request
// unchanged.
//
// A Request is not safe for concurrent mutation; rendering does not modify it.
type Request struct {
	url    string
	method Method

	payloadKind PayloadKind
	payload     any

	headers *types.Fields

	timeout        int
	connectTimeout int
}

// New validates method, then rawURL, and returns a Request without payload,
// headers or timeouts.
func New(rawURL, method string) (*Request, error) {
	m, err := ParseMethod(method)
	if err != nil {
		return nil, err
	}
	if !ValidateURL(rawURL) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidURL, rawURL)
	}
	return &Request{url: rawURL, method: m}, nil
}

// SetPayload encodes raw according to kind and stores it, replacing any
// previous payload. The kind must be allowed for the request method.
//
// URL-ENCODE accepts *types.Fields, url.Values, map[string]string,
// map[string]any with scalar values, or an already encoded string.
// JSON accepts anything encoding/json can marshal. Other kinds store raw as is.
func (r *Request) SetPayload(kind string, raw any) error {
	k := NormalizePayloadKind(kind)
	if !Allows(r.method, k) {
		return &PayloadError{Kind: k, Method: r.method}
	}

	encoded, err := encodePayload(k, raw)
	if err != nil {
		return err
	}

	r.payloadKind = k
	r.payload = encoded
	return nil
}

// SetHeaders replaces the request headers with a copy of h
func (r *Request) SetHeaders(h *types.Fields) error {
	if err := ValidateHeaders(h); err != nil {
		return err
	}
	r.headers = h.Clone()
	return nil
}

// SetTimeouts sets the total and connect timeouts in seconds. Values of
// zero or less are left out of the generated code.
func (r *Request) SetTimeouts(timeout, connectTimeout int) {
	r.timeout = timeout
	r.connectTimeout = connectTimeout
}

// SetDefaultTimeouts applies DefaultTimeout and DefaultConnectTimeout
func (r *Request) SetDefaultTimeouts() {
	r.SetTimeouts(DefaultTimeout, DefaultConnectTimeout)
}

// URL returns the request URL
func (r *Request) URL() string {
	return r.url
}

// Method returns the request method
func (r *Request) Method() Method {
	return r.method
}

// PayloadKind returns the kind passed to the last successful SetPayload,
// or "" if none.
func (r *Request) PayloadKind() PayloadKind {
	return r.payloadKind
}

// HasPayload reports whether a non-empty payload is stored
func (r *Request) HasPayload() bool {
	return !isEmptyPayload(r.payload)
}

// Headers returns a copy of the headers
func (r *Request) Headers() *types.Fields {
	return r.headers.Clone()
}

// Timeouts returns the total and connect timeouts in seconds
func (r *Request) Timeouts() (timeout, connectTimeout int) {
	return r.timeout, r.connectTimeout
}
