package codegen

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/studiowebux/curlgen/internal/types"
)

// ValidateHeaders checks that h is a non-empty mapping with non-empty keys.
// Keys that are exactly "0".."n-1" in order mean a list was decoded where a
// mapping was expected, and are rejected.
func ValidateHeaders(h *types.Fields) error {
	if h.Len() == 0 {
		return fmt.Errorf("%w: no headers given", ErrInvalidHeaders)
	}

	positional := true
	for i, key := range h.Keys() {
		if strings.TrimSpace(key) == "" {
			return fmt.Errorf("%w: empty header name", ErrInvalidHeaders)
		}
		if key != strconv.Itoa(i) {
			positional = false
		}
	}
	if positional {
		return fmt.Errorf("%w: got a list instead of name/value pairs", ErrInvalidHeaders)
	}
	return nil
}

// ParseHeaderLine splits a "Name: value" line
func ParseHeaderLine(line string) (string, string, error) {
	name, value, ok := strings.Cut(line, ":")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return "", "", fmt.Errorf("%w: %q is not a \"Name: value\" line", ErrInvalidHeaders, line)
	}
	return name, strings.TrimSpace(value), nil
}
