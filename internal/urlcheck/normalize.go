// Package urlcheck normalizes storefront URLs and decides whether a site is a
// storefront at all.
package urlcheck

import (
	"net"
	"net/url"
	"strings"

	"github.com/JakeFAU/storefront-insights/internal/storefront"
)

// Normalize canonicalizes user input into an absolute http(s) URL: scheme
// defaults to https, the host is lowercased, and query, fragment, and
// trailing slashes are dropped.
func Normalize(raw string) (string, error) {
	input := raw
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", &storefront.InvalidURLError{Input: input, Reason: "empty"}
	}
	if strings.ContainsAny(raw, " \t\r\n") {
		return "", &storefront.InvalidURLError{Input: input, Reason: "contains whitespace"}
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", &storefront.InvalidURLError{Input: input, Reason: "unparseable"}
	}
	u.Scheme = strings.ToLower(u.Scheme)
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", &storefront.InvalidURLError{Input: input, Reason: "scheme must be http or https"}
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return "", &storefront.InvalidURLError{Input: input, Reason: "missing host"}
	}
	if !plausibleHost(host) {
		return "", &storefront.InvalidURLError{Input: input, Reason: "host is not a domain name"}
	}
	if port := u.Port(); port != "" {
		u.Host = net.JoinHostPort(host, port)
	} else {
		u.Host = host
	}
	u.User = nil
	u.RawQuery = ""
	u.ForceQuery = false
	u.Fragment = ""
	u.RawFragment = ""
	u.Path = strings.TrimRight(u.Path, "/")
	u.RawPath = ""

	return u.String(), nil
}

// Origin returns scheme://host[:port] of an already normalized URL.
func Origin(normalized string) string {
	u, err := url.Parse(normalized)
	if err != nil {
		return strings.TrimRight(normalized, "/")
	}
	return u.Scheme + "://" + u.Host
}

// SameSite reports whether candidate points at the host of base.
func SameSite(base, candidate string) bool {
	b, err := url.Parse(base)
	if err != nil {
		return false
	}
	c, err := url.Parse(candidate)
	if err != nil {
		return false
	}
	return strings.EqualFold(stripWWW(b.Hostname()), stripWWW(c.Hostname()))
}

func stripWWW(host string) string {
	return strings.TrimPrefix(strings.ToLower(host), "www.")
}

func plausibleHost(host string) bool {
	if host == "localhost" || net.ParseIP(host) != nil {
		return true
	}
	if !strings.Contains(host, ".") || strings.HasPrefix(host, ".") || strings.HasSuffix(host, ".") {
		return false
	}
	for _, r := range host {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '.':
		default:
			return false
		}
	}
	return true
}
