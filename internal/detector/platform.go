// Package detector recognizes storefront platform fingerprints and
// script-rendered page shells.
package detector

import (
	"bytes"
	"net/http"
	"strings"

	"github.com/JakeFAU/storefront-insights/internal/storefront"
)

var bodyMarkers = []string{
	"cdn.shopify.com",
	"myshopify.com",
	"shopify-section",
	"shopify.theme",
	"shopify-features",
	"shopify_checkout",
	"shopify-pay",
	"shopify_pay",
	"window.shopify",
}

var headerMarkers = []string{
	"X-ShopId",
	"X-Shopify-Stage",
	"X-Shopify-Request-Id",
}

// Match lists the platform fingerprints found in a response.
type Match struct {
	Markers []string
}

// Matched reports whether any fingerprint was found.
func (m Match) Matched() bool {
	return len(m.Markers) > 0
}

// Platform scans the response headers and body for storefront fingerprints.
// The status code is ignored: a blocked page that still carries markers counts.
func Platform(resp storefront.FetchResponse) Match {
	var found []string
	for _, name := range headerMarkers {
		if resp.Headers.Get(name) != "" {
			found = append(found, "header:"+strings.ToLower(name))
		}
	}
	if poweredBy(resp.Headers) {
		found = append(found, "header:powered-by")
	}

	lower := bytes.ToLower(resp.Body)
	for _, marker := range bodyMarkers {
		if bytes.Contains(lower, []byte(marker)) {
			found = append(found, marker)
		}
	}
	return Match{Markers: found}
}

func poweredBy(h http.Header) bool {
	for _, name := range []string{"Powered-By", "X-Powered-By"} {
		if strings.Contains(strings.ToLower(h.Get(name)), "shopify") {
			return true
		}
	}
	return false
}
