package codegen

import (
	"fmt"
	"strings"
)

// Method is an HTTP method understood by the generator
type Method string

const (
	MethodGet     Method = "GET"
	MethodPost    Method = "POST"
	MethodPut     Method = "PUT"
	MethodDelete  Method = "DELETE"
	MethodHead    Method = "HEAD"
	MethodOptions Method = "OPTIONS"
	MethodPatch   Method = "PATCH"
	MethodCustom  Method = "CUSTOM"

	// MethodTrace can be rendered but has no payload matrix entry, so
	// ParseMethod rejects it.
	MethodTrace Method = "TRACE"
)

// methodOrder is the listing order of the matrix keys
var methodOrder = []Method{
	MethodGet,
	MethodPost,
	MethodPut,
	MethodDelete,
	MethodHead,
	MethodOptions,
	MethodPatch,
	MethodCustom,
}

// Methods returns the methods accepted by New
func Methods() []Method {
	out := make([]Method, len(methodOrder))
	copy(out, methodOrder)
	return out
}

// ParseMethod upper-cases s and checks it against the payload matrix
func ParseMethod(s string) (Method, error) {
	m := Method(strings.ToUpper(s))
	if _, ok := allowedPayloads[m]; !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidMethod, s)
	}
	return m, nil
}

func (m Method) String() string {
	return string(m)
}
