package extract

import (
	"net/url"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"

	"github.com/JakeFAU/storefront-insights/internal/storefront"
	"github.com/JakeFAU/storefront-insights/internal/urlcheck"
)

// linkKeywords match whole words of a link's path or text, so "order" never
// matches "border-rugs" and "news" never matches "newsletter".
var linkKeywords = map[storefront.LinkCategory][]string{
	storefront.LinkOrderTracking: {"track", "tracking", "order-status", "orders"},
	storefront.LinkContactUs:     {"contact", "support"},
	storefront.LinkBlog:          {"blog", "blogs", "news", "article", "articles"},
	storefront.LinkAbout:         {"about", "our-story"},
	storefront.LinkShipping:      {"shipping", "delivery"},
	storefront.LinkFAQ:           {"faq", "faqs", "help", "frequently"},
}

// Well-known storefront paths tried after links found on the home page.
var (
	PrivacyPolicyPaths = []string{"/policies/privacy-policy", "/pages/privacy-policy", "/privacy-policy", "/pages/privacy"}
	ReturnPolicyPaths  = []string{"/policies/refund-policy", "/pages/return-policy", "/pages/refund-policy", "/pages/returns", "/return-policy"}
	FAQPaths           = []string{"/pages/faq", "/pages/faqs", "/faq", "/pages/frequently-asked-questions", "/pages/help"}
	ContactPaths       = []string{"/pages/contact", "/contact", "/pages/contact-us", "/contact-us"}
)

type anchor struct {
	url  *url.URL
	href string
	text string
	// words is the path and text split into space-padded lowercase words.
	words string
}

// internalAnchors lists same-site http(s) links in document order.
func internalAnchors(doc *goquery.Document, pageURL string) []anchor {
	base, err := url.Parse(pageURL)
	if doc == nil || err != nil {
		return nil
	}
	var anchors []anchor
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		raw := s.AttrOr("href", "")
		u, ok := resolve(base, raw)
		if !ok || !urlcheck.SameSite(pageURL, u.String()) {
			return
		}
		text := strings.ToLower(CleanText(s.Text()))
		anchors = append(anchors, anchor{
			url:   u,
			href:  strings.ToLower(raw),
			text:  text,
			words: wordsOf(u.Path) + wordsOf(text),
		})
	})
	return anchors
}

// ImportantLinks categorizes same-site links by keywords in the href or the
// anchor text. The first link matching a category wins it.
func ImportantLinks(doc *goquery.Document, pageURL string) map[storefront.LinkCategory]string {
	links := make(map[storefront.LinkCategory]string)
	for _, a := range internalAnchors(doc, pageURL) {
		for _, category := range storefront.LinkCategories {
			if _, taken := links[category]; taken {
				continue
			}
			if hasWord(a.words, linkKeywords[category]...) {
				links[category] = a.url.String()
				break
			}
		}
	}
	return links
}

// wordsOf lowercases s and turns every run of non-alphanumerics into one
// space, padding both ends.
func wordsOf(s string) string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	if len(fields) == 0 {
		return ""
	}
	return " " + strings.Join(fields, " ") + " "
}

// hasWord reports whether any keyword appears in words as whole words.
func hasWord(words string, keywords ...string) bool {
	for _, kw := range keywords {
		if w := wordsOf(kw); w != "" && strings.Contains(words, w) {
			return true
		}
	}
	return false
}

// PolicyLinks returns privacy and return-policy candidates linked from the page.
func PolicyLinks(doc *goquery.Document, pageURL string) (privacy, returns []string) {
	return matchingLinks(doc, pageURL, "privacy"),
		matchingLinks(doc, pageURL, "refund", "return")
}

// FAQLinks returns FAQ page candidates linked from the page.
func FAQLinks(doc *goquery.Document, pageURL string) []string {
	return matchingLinks(doc, pageURL, "faq", "frequently")
}

// ContactLinks returns contact page candidates linked from the page.
func ContactLinks(doc *goquery.Document, pageURL string) []string {
	return matchingLinks(doc, pageURL, "contact")
}

func matchingLinks(doc *goquery.Document, pageURL string, keywords ...string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, a := range internalAnchors(doc, pageURL) {
		if !containsAny(a.href, keywords...) && !containsAny(a.text, keywords...) {
			continue
		}
		u := *a.url
		u.RawQuery = ""
		s := u.String()
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

// HeroHandles returns product handles linked from the page, in document order.
func HeroHandles(doc *goquery.Document, pageURL string, limit int) []string {
	var handles []string
	seen := make(map[string]struct{})
	for _, a := range internalAnchors(doc, pageURL) {
		if limit > 0 && len(handles) >= limit {
			break
		}
		handle, ok := productHandle(a.url.Path)
		if !ok {
			continue
		}
		if _, dup := seen[handle]; dup {
			continue
		}
		seen[handle] = struct{}{}
		handles = append(handles, handle)
	}
	return handles
}

func productHandle(p string) (string, bool) {
	segments := pathSegments(p)
	for i, seg := range segments {
		if seg != "products" || i+1 >= len(segments) {
			continue
		}
		handle := segments[i+1]
		if unescaped, err := url.PathUnescape(handle); err == nil {
			handle = unescaped
		}
		if strings.HasSuffix(handle, ".json") || strings.HasSuffix(handle, ".js") || strings.HasSuffix(handle, ".xml") {
			return "", false
		}
		return handle, handle != ""
	}
	return "", false
}

// WithFallbacks appends the well-known paths under origin to the candidates,
// dropping duplicates.
func WithFallbacks(candidates []string, origin string, paths []string) []string {
	out := make([]string, 0, len(candidates)+len(paths))
	seen := make(map[string]struct{})
	add := func(u string) {
		key := strings.TrimRight(u, "/")
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}
		out = append(out, u)
	}
	for _, c := range candidates {
		add(c)
	}
	for _, p := range paths {
		add(strings.TrimRight(origin, "/") + p)
	}
	return out
}
