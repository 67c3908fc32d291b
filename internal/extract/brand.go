package extract

import (
	"net"
	"net/url"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

const (
	minBrandNameLen     = 3
	minParagraphLen     = 60
	brandDescriptionCap = 1000
)

var titleSuffixes = []string{
	" - Online Store",
	" | Official Store",
	" Official Store",
	" Online Store",
	" Official Site",
	" Website",
	" Store",
	" Shop",
}

var titleSeparators = []string{" | ", " – ", " — ", " - ", " : "}

// BrandName picks the store's name from site metadata, the page title, or
// finally the domain. It never returns an empty string.
func BrandName(doc *goquery.Document, pageURL string) string {
	if doc != nil {
		if name := metaContent(doc, `meta[property="og:site_name"]`); len(name) >= minBrandNameLen {
			return name
		}
		if name := metaContent(doc, `meta[name="application-name"]`); len(name) >= minBrandNameLen {
			return name
		}
		if name := nameFromTitle(CleanText(doc.Find("title").First().Text())); len(name) >= minBrandNameLen {
			return name
		}
	}
	return nameFromDomain(pageURL)
}

func nameFromTitle(title string) string {
	if title == "" {
		return ""
	}
	for _, suffix := range titleSuffixes {
		if len(title) > len(suffix) && strings.EqualFold(title[len(title)-len(suffix):], suffix) {
			title = strings.TrimRight(title[:len(title)-len(suffix)], " |-–—:")
			break
		}
	}
	for _, sep := range titleSeparators {
		if i := strings.Index(title, sep); i > 0 {
			return strings.TrimSpace(title[:i])
		}
	}
	return title
}

func nameFromDomain(pageURL string) string {
	host := pageURL
	if u, err := url.Parse(pageURL); err == nil && u.Hostname() != "" {
		host = u.Hostname()
	}
	host = strings.TrimPrefix(strings.ToLower(host), "www.")
	if host == "" {
		return "Unknown Store"
	}
	if net.ParseIP(host) != nil || !strings.Contains(host, ".") {
		return host
	}
	label := strings.SplitN(host, ".", 2)[0]
	r, size := utf8.DecodeRuneInString(label)
	return string(unicode.ToUpper(r)) + label[size:]
}

// BrandDescription returns the store's self-description from meta tags, an
// about section, or the first substantial paragraph.
func BrandDescription(doc *goquery.Document) (string, bool) {
	if doc == nil {
		return "", false
	}
	for _, selector := range []string{`meta[name="description"]`, `meta[property="og:description"]`} {
		if text := metaContent(doc, selector); text != "" {
			return Truncate(text, brandDescriptionCap), true
		}
	}

	var about string
	doc.Find(`#about, [class*="about"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if s.Is("a, nav, li, script, style") {
			return true
		}
		if text := CleanText(s.Text()); len(text) >= minParagraphLen {
			about = text
			return false
		}
		return true
	})
	if about != "" {
		return Truncate(about, brandDescriptionCap), true
	}

	var paragraph string
	doc.Find("main p, body p").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if s.ParentsFiltered("header, footer, nav, form").Length() > 0 {
			return true
		}
		if text := CleanText(s.Text()); len(text) >= minParagraphLen {
			paragraph = text
			return false
		}
		return true
	})
	if paragraph != "" {
		return Truncate(paragraph, brandDescriptionCap), true
	}
	return "", false
}
