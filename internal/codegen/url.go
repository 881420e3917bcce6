package codegen

import (
	"net"
	"net/url"
	"regexp"
	"strings"
)

var (
	prefixPattern   = regexp.MustCompile(`^([A-Za-z][A-Za-z0-9+.-]*)://([^/?#]*)`)
	schemePattern   = regexp.MustCompile(`^[a-z][a-z0-9+.-]*$`)
	hostnamePattern = regexp.MustCompile(`^[A-Za-z0-9_]([A-Za-z0-9_.-]*[A-Za-z0-9_])?\.?$`)
)

// ValidateURL reports whether raw has a scheme and a host and whether the
// bare scheme://host pair is itself a well-formed URL. The path, query
// and fragment are not checked.
func ValidateURL(raw string) bool {
	m := prefixPattern.FindStringSubmatch(raw)
	if m == nil || m[2] == "" {
		return false
	}
	return validAuthority(strings.ToLower(m[1]), m[2])
}

func validAuthority(scheme, host string) bool {
	if !schemePattern.MatchString(scheme) {
		return false
	}

	u, err := url.ParseRequestURI(scheme + "://" + host)
	if err != nil || u.Host == "" {
		return false
	}

	hostname := u.Hostname()
	if hostname == "" {
		return false
	}
	if net.ParseIP(hostname) != nil {
		return true
	}
	return hostnamePattern.MatchString(hostname)
}
